package domain

import (
	"time"
)

// DefaultReorderPoint é o limite de reposição aplicado quando o catálogo não informa um.
const DefaultReorderPoint = 10

// Product representa o item do catálogo. O núcleo de estoque apenas lê produtos.
type Product struct {
	ID            string    `json:"id"`
	SKU           string    `json:"sku"` // Stock Keeping Unit (código único de produto)
	Name          string    `json:"name"`
	CategoryID    string    `json:"category_id,omitempty"`
	UnitOfMeasure string    `json:"unit_of_measure"`
	ReorderPoint  int       `json:"reorder_point"` // Quantidade total abaixo da qual o produto é "estoque baixo"
	CreatedAt     time.Time `json:"created_at"`
}

// ProductSummary é a visão de listagem do catálogo, com o estoque somado em todas as localizações.
type ProductSummary struct {
	Product
	CategoryName string `json:"category_name,omitempty"`
	TotalStock   int    `json:"total_stock"`
}

// Category agrupa produtos no catálogo.
type Category struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// CreateProductRequest é o payload de cadastro de produto.
// InitialStock e LocationID, quando informados juntos, geram o movimento "initial".
type CreateProductRequest struct {
	SKU           string `json:"sku" validate:"required,max=100"`
	Name          string `json:"name" validate:"required,max=255"`
	CategoryID    string `json:"category_id,omitempty"`
	UnitOfMeasure string `json:"unit_of_measure" validate:"required,max=50"`
	ReorderPoint  *int   `json:"reorder_point,omitempty" validate:"omitempty,gte=0"`
	InitialStock  int    `json:"initial_stock,omitempty" validate:"gte=0"`
	LocationID    string `json:"location_id,omitempty"`
}
