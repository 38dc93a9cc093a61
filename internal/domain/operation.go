package domain

import (
	"fmt"
	"time"
)

// OperationKind identifica a variante de uma operação de estoque.
type OperationKind string

const (
	KindReceipt    OperationKind = "receipt"    // Entrada de fornecedor
	KindDelivery   OperationKind = "delivery"   // Saída para cliente
	KindTransfer   OperationKind = "transfer"   // Movimentação entre localizações
	KindAdjustment OperationKind = "adjustment" // Correção manual (inventário)
)

// OperationKinds lista as variantes na ordem usada por relatórios.
var OperationKinds = []OperationKind{KindReceipt, KindDelivery, KindTransfer, KindAdjustment}

// Valid informa se o tipo é uma das quatro variantes conhecidas.
func (k OperationKind) Valid() bool {
	switch k {
	case KindReceipt, KindDelivery, KindTransfer, KindAdjustment:
		return true
	}
	return false
}

// HasLines informa se a variante carrega linhas. Ajustes são uma única declaração no cabeçalho.
func (k OperationKind) HasLines() bool {
	return k != KindAdjustment
}

// OperationStatus é o estado do ciclo de vida. A única transição é draft -> done.
type OperationStatus string

const (
	StatusDraft OperationStatus = "draft"
	StatusDone  OperationStatus = "done"
)

// Header é o cabeçalho específico de cada variante de operação.
type Header interface {
	Kind() OperationKind
}

// ReceiptHeader é o cabeçalho de um recebimento.
type ReceiptHeader struct {
	SupplierName string `json:"supplier_name"`
}

func (ReceiptHeader) Kind() OperationKind { return KindReceipt }

// DeliveryHeader é o cabeçalho de uma entrega.
type DeliveryHeader struct {
	CustomerName string `json:"customer_name"`
}

func (DeliveryHeader) Kind() OperationKind { return KindDelivery }

// TransferHeader é o cabeçalho de uma transferência; origem e destino valem para todas as linhas.
type TransferHeader struct {
	FromLocationID string `json:"from_location_id"`
	ToLocationID   string `json:"to_location_id"`
}

func (TransferHeader) Kind() OperationKind { return KindTransfer }

// AdjustmentHeader é a declaração única de um ajuste: a quantidade alvo de (produto, localização).
type AdjustmentHeader struct {
	ProductID   string `json:"product_id"`
	LocationID  string `json:"location_id"`
	NewQuantity int    `json:"new_quantity"`
	Reason      string `json:"reason,omitempty"`
}

func (AdjustmentHeader) Kind() OperationKind { return KindAdjustment }

// Key devolve o nível de estoque que o ajuste corrige.
func (h AdjustmentHeader) Key() StockKey {
	return StockKey{ProductID: h.ProductID, LocationID: h.LocationID}
}

// OperationLine descreve uma mudança de quantidade pretendida.
// LocationID fica vazio em transferências (a localização vem do cabeçalho).
type OperationLine struct {
	LineNo     int    `json:"line_no"`
	ProductID  string `json:"product_id"`
	LocationID string `json:"location_id,omitempty"`
	Quantity   int    `json:"quantity"`
}

// Operation é o agregado: cabeçalho da variante, linhas e estado compartilhado.
type Operation struct {
	ID          string          `json:"id"`
	Kind        OperationKind   `json:"kind"`
	Status      OperationStatus `json:"status"`
	Header      Header          `json:"header"`
	Lines       []OperationLine `json:"lines"`
	CreatedAt   time.Time       `json:"created_at"`
	ValidatedAt *time.Time      `json:"validated_at,omitempty"`
}

// IsDone informa se a operação já foi validada.
func (o Operation) IsDone() bool {
	return o.Status == StatusDone
}

// Reference é o texto livre gravado nos movimentos gerados pela operação.
func (o Operation) Reference() string {
	switch o.Kind {
	case KindReceipt:
		return fmt.Sprintf("Receipt %s", o.ID)
	case KindDelivery:
		return fmt.Sprintf("Delivery %s", o.ID)
	case KindTransfer:
		return fmt.Sprintf("Transfer %s", o.ID)
	case KindAdjustment:
		if h, ok := o.Header.(AdjustmentHeader); ok && h.Reason != "" {
			return fmt.Sprintf("Adjustment %s: %s", o.ID, h.Reason)
		}
		return fmt.Sprintf("Adjustment %s", o.ID)
	}
	return o.ID
}

// TotalQuantity soma as quantidades das linhas.
func (o Operation) TotalQuantity() int {
	total := 0
	for _, l := range o.Lines {
		total += l.Quantity
	}
	return total
}

// OperationSummary é a visão de listagem de operações.
type OperationSummary struct {
	ID            string          `json:"id"`
	Kind          OperationKind   `json:"kind"`
	Status        OperationStatus `json:"status"`
	Header        Header          `json:"header"`
	LineCount     int             `json:"line_count"`
	TotalQuantity int             `json:"total_quantity"`
	CreatedAt     time.Time       `json:"created_at"`
	ValidatedAt   *time.Time      `json:"validated_at,omitempty"`
}

// Summary reduz a operação à visão de listagem.
func (o Operation) Summary() OperationSummary {
	return OperationSummary{
		ID:            o.ID,
		Kind:          o.Kind,
		Status:        o.Status,
		Header:        o.Header,
		LineCount:     len(o.Lines),
		TotalQuantity: o.TotalQuantity(),
		CreatedAt:     o.CreatedAt,
		ValidatedAt:   o.ValidatedAt,
	}
}

// OperationFilter filtra a listagem de operações. Campos vazios não filtram.
type OperationFilter struct {
	Kind   OperationKind
	Status OperationStatus
	Limit  int
}

// --- Payloads de entrada ---

// CreateOperationRequest é o payload de criação de uma operação em rascunho.
// Apenas os campos do cabeçalho da variante escolhida são considerados.
type CreateOperationRequest struct {
	Kind OperationKind `json:"kind" validate:"required"`

	SupplierName string `json:"supplier_name,omitempty"`
	CustomerName string `json:"customer_name,omitempty"`

	FromLocationID string `json:"from_location_id,omitempty"`
	ToLocationID   string `json:"to_location_id,omitempty"`

	ProductID   string `json:"product_id,omitempty"`
	LocationID  string `json:"location_id,omitempty"`
	NewQuantity *int   `json:"new_quantity,omitempty"`
	Reason      string `json:"reason,omitempty"`

	Lines []LineRequest `json:"lines" validate:"dive"`
}

// LineRequest é uma linha do payload de criação.
type LineRequest struct {
	ProductID  string `json:"product_id" validate:"required"`
	LocationID string `json:"location_id,omitempty"`
	Quantity   int    `json:"quantity" validate:"gt=0"`
}

// ValidationResult é a resposta de uma validação bem-sucedida.
type ValidationResult struct {
	OperationID string          `json:"operation_id"`
	Status      OperationStatus `json:"status"`
	ValidatedAt time.Time       `json:"validated_at"`
	Movements   int             `json:"movements"`
}
