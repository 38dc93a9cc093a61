package domain

import "time"

// MovementKind identifica a origem de um movimento no livro-razão.
type MovementKind string

const (
	MovementReceipt    MovementKind = "receipt"
	MovementDelivery   MovementKind = "delivery"
	MovementTransfer   MovementKind = "transfer"
	MovementAdjustment MovementKind = "adjustment"
	MovementInitial    MovementKind = "initial"
)

// Valid informa se o tipo de movimento é conhecido.
func (k MovementKind) Valid() bool {
	switch k {
	case MovementReceipt, MovementDelivery, MovementTransfer, MovementAdjustment, MovementInitial:
		return true
	}
	return false
}

// Direction indica se o movimento entrou ou saiu da localização afetada.
type Direction string

const (
	DirectionIn  Direction = "in"
	DirectionOut Direction = "out"
)

// MovementRecord é uma entrada imutável do livro-razão.
// Quantity é o delta com sinal aplicado ao nível de estoque afetado.
type MovementRecord struct {
	ID             int64        `json:"id"` // Sequência de inserção
	ProductID      string       `json:"product_id"`
	ProductName    string       `json:"product_name,omitempty"` // Preenchidos na leitura
	SKU            string       `json:"sku,omitempty"`
	Kind           MovementKind `json:"type"`
	Direction      Direction    `json:"direction"`
	FromLocationID string       `json:"from_location_id,omitempty"`
	ToLocationID   string       `json:"to_location_id,omitempty"`
	Quantity       int          `json:"quantity"`
	Reference      string       `json:"reference"`
	OperationID    string       `json:"operation_id,omitempty"`
	CreatedAt      time.Time    `json:"created_at"`
}

// LocationID devolve a localização cujo estoque foi alterado pelo movimento:
// a origem para saídas, o destino para entradas. Ajustes gravam apenas o destino.
func (m MovementRecord) LocationID() string {
	if m.Direction == DirectionOut && m.FromLocationID != "" {
		return m.FromLocationID
	}
	if m.ToLocationID != "" {
		return m.ToLocationID
	}
	return m.FromLocationID
}

// DirectionOf deriva a direção de um delta: negativo é saída, zero ou positivo é entrada.
func DirectionOf(delta int) Direction {
	if delta < 0 {
		return DirectionOut
	}
	return DirectionIn
}

// Key devolve o nível de estoque afetado pelo movimento.
func (m MovementRecord) Key() StockKey {
	return StockKey{ProductID: m.ProductID, LocationID: m.LocationID()}
}

// DefaultMovementLimit é o tamanho padrão da consulta "mais recentes".
const DefaultMovementLimit = 100

// MaxMovementLimit limita o tamanho de uma página de movimentos.
const MaxMovementLimit = 1000

// MovementFilter parametriza a leitura do livro-razão.
type MovementFilter struct {
	Limit     int
	Kind      MovementKind // Vazio = todos
	ProductID string       // Vazio = todos
}
