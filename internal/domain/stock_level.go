package domain

import "time"

// StockKey identifica um nível de estoque: um produto em uma localização.
type StockKey struct {
	ProductID  string `json:"product_id"`
	LocationID string `json:"location_id"`
}

// String devolve a forma canônica "produto/localização", usada para ordenar bloqueios.
func (k StockKey) String() string {
	return k.ProductID + "/" + k.LocationID
}

// Less define a ordem total usada pelo motor para adquirir bloqueios sem deadlock.
func (k StockKey) Less(other StockKey) bool {
	if k.ProductID != other.ProductID {
		return k.ProductID < other.ProductID
	}
	return k.LocationID < other.LocationID
}

// StockLevel representa a quantidade em mãos de um produto em uma localização.
// A quantidade nunca é negativa; ausência de registro equivale a zero.
type StockLevel struct {
	ProductID   string    `json:"product_id"`
	LocationID  string    `json:"location_id"`
	Quantity    int       `json:"quantity"`
	LastUpdated time.Time `json:"last_updated,omitempty"`
}

// Key devolve a chave (produto, localização) do nível de estoque.
func (s StockLevel) Key() StockKey {
	return StockKey{ProductID: s.ProductID, LocationID: s.LocationID}
}

// InitialStockRequest é o payload para registrar o estoque inicial de um produto.
type InitialStockRequest struct {
	ProductID  string `json:"product_id" validate:"required"`
	LocationID string `json:"location_id" validate:"required"`
	Quantity   int    `json:"quantity" validate:"gt=0"`
}
