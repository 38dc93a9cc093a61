package domain

// Warehouse representa um armazém físico ou lógico no sistema.
type Warehouse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Location string `json:"location,omitempty"` // Endereço ou prédio
	IsActive bool   `json:"is_active"`
}

// LocationType classifica uma localização dentro do armazém.
type LocationType string

const (
	LocationStorage LocationType = "storage"
	LocationRack    LocationType = "rack"
	LocationFloor   LocationType = "floor"
)

// Location é um ponto de armazenagem que pertence a exatamente um Warehouse.
type Location struct {
	ID            string       `json:"id"`
	WarehouseID   string       `json:"warehouse_id"`
	WarehouseName string       `json:"warehouse_name,omitempty"`
	Name          string       `json:"name"`
	Type          LocationType `json:"type"`
}
