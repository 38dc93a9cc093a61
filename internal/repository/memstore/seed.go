package memstore

import (
	"github.com/google/uuid"

	"stockmaster/internal/domain"
)

// SeedDefaults cadastra as mesmas categorias, armazéns e localizações do seed do PostgreSQL.
func (s *Store) SeedDefaults() {
	for _, c := range []domain.Category{
		{Name: "Electronics", Description: "Electronic items"},
		{Name: "Furniture", Description: "Office and home furniture"},
		{Name: "Raw Materials", Description: "Manufacturing raw materials"},
	} {
		c.ID = uuid.NewString()
		s.AddCategory(c)
	}

	main := domain.Warehouse{ID: uuid.NewString(), Name: "Main Warehouse", Location: "Building A", IsActive: true}
	floor := domain.Warehouse{ID: uuid.NewString(), Name: "Production Floor", Location: "Building B", IsActive: true}
	s.AddWarehouse(main)
	s.AddWarehouse(floor)

	s.AddLocation(domain.Location{ID: uuid.NewString(), WarehouseID: main.ID, Name: "Rack A", Type: domain.LocationRack})
	s.AddLocation(domain.Location{ID: uuid.NewString(), WarehouseID: main.ID, Name: "Rack B", Type: domain.LocationRack})
	s.AddLocation(domain.Location{ID: uuid.NewString(), WarehouseID: floor.ID, Name: "Production Area", Type: domain.LocationFloor})
}
