package domain

// KPIs são os agregados do painel, sempre calculados a partir do estado atual.
type KPIs struct {
	TotalProducts      int `json:"total_products"`
	TotalStock         int `json:"total_stock"`
	LowStock           int `json:"low_stock"`
	PendingReceipts    int `json:"pending_receipts"`
	PendingDeliveries  int `json:"pending_deliveries"`
	PendingTransfers   int `json:"pending_transfers"`
	PendingAdjustments int `json:"pending_adjustments"`
}

// SetPending atribui a contagem de rascunhos de uma variante.
func (k *KPIs) SetPending(kind OperationKind, count int) {
	switch kind {
	case KindReceipt:
		k.PendingReceipts = count
	case KindDelivery:
		k.PendingDeliveries = count
	case KindTransfer:
		k.PendingTransfers = count
	case KindAdjustment:
		k.PendingAdjustments = count
	}
}

// ProductStockTotal é o estoque somado de um produto em todas as localizações.
type ProductStockTotal struct {
	ProductID    string `json:"product_id"`
	ReorderPoint int    `json:"reorder_point"`
	Total        int    `json:"total"`
}

// IsLow informa se o produto está no limite de reposição ou abaixo dele.
func (p ProductStockTotal) IsLow() bool {
	return p.Total <= p.ReorderPoint
}
