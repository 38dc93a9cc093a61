package memstore

import (
	"context"
	"fmt"
	"sort"

	"stockmaster/internal/domain"
	apperror "stockmaster/internal/errors"
)

// AddCategory registra uma categoria (usado por testes e pelo seed em memória).
func (s *Store) AddCategory(c domain.Category) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.categories[c.ID] = c
}

// AddWarehouse registra um armazém.
func (s *Store) AddWarehouse(w domain.Warehouse) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.warehouses[w.ID] = w
}

// AddLocation registra uma localização.
func (s *Store) AddLocation(l domain.Location) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.locations[l.ID] = l
}

// AddProduct registra um produto sem verificar SKU.
func (s *Store) AddProduct(p domain.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[p.ID] = p
}

// SaveProduct grava um produto novo. SKU duplicado: ConflictError.
func (s *Store) SaveProduct(_ context.Context, p domain.Product) (domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.products {
		if existing.SKU == p.SKU {
			return domain.Product{}, apperror.NewConflictError(fmt.Sprintf("SKU '%s' já cadastrado", p.SKU))
		}
	}
	if p.CategoryID != "" {
		if _, ok := s.categories[p.CategoryID]; !ok {
			return domain.Product{}, apperror.NewNotFoundError(fmt.Sprintf("Categoria com ID %s não encontrada", p.CategoryID))
		}
	}
	s.products[p.ID] = p
	return p, nil
}

// FindProduct busca um produto pelo ID.
func (s *Store) FindProduct(_ context.Context, id string) (domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.products[id]
	if !ok {
		return domain.Product{}, apperror.NewNotFoundError(fmt.Sprintf("Produto com ID %s não encontrado", id))
	}
	return p, nil
}

// FindLocation busca uma localização pelo ID, com o nome do armazém.
func (s *Store) FindLocation(_ context.Context, id string) (domain.Location, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.locations[id]
	if !ok {
		return domain.Location{}, apperror.NewNotFoundError(fmt.Sprintf("Localização com ID %s não encontrada", id))
	}
	l.WarehouseName = s.warehouses[l.WarehouseID].Name
	return l, nil
}

// ListProducts devolve os produtos com o estoque somado, mais recentes primeiro.
func (s *Store) ListProducts(_ context.Context) ([]domain.ProductSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	totals := make(map[string]int)
	for k, l := range s.stock {
		totals[k.ProductID] += l.Quantity
	}
	out := make([]domain.ProductSummary, 0, len(s.products))
	for _, p := range s.products {
		out = append(out, domain.ProductSummary{
			Product:      p,
			CategoryName: s.categories[p.CategoryID].Name,
			TotalStock:   totals[p.ID],
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// ListCategories devolve as categorias por nome.
func (s *Store) ListCategories(_ context.Context) ([]domain.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Category, 0, len(s.categories))
	for _, c := range s.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// ListWarehouses devolve os armazéns ativos por nome.
func (s *Store) ListWarehouses(_ context.Context) ([]domain.Warehouse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Warehouse, 0, len(s.warehouses))
	for _, w := range s.warehouses {
		if w.IsActive {
			out = append(out, w)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// ListLocations devolve as localizações com o nome do armazém, ordenadas por armazém e nome.
func (s *Store) ListLocations(_ context.Context) ([]domain.Location, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Location, 0, len(s.locations))
	for _, l := range s.locations {
		l.WarehouseName = s.warehouses[l.WarehouseID].Name
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].WarehouseName != out[j].WarehouseName {
			return out[i].WarehouseName < out[j].WarehouseName
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}
