package memstore

import (
	"context"
	"sort"

	"stockmaster/internal/domain"
	"stockmaster/internal/service/reportservice"
)

// ProductTotals soma o estoque de cada produto do catálogo (produtos sem estoque somam zero).
func (s *Store) ProductTotals(_ context.Context) ([]domain.ProductStockTotal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.productTotals(), nil
}

// TotalStock soma todas as quantidades em estoque.
func (s *Store) TotalStock(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.totalStock(), nil
}

// ReadSnapshot mantém o lock de leitura durante fn, então nenhuma validação é aplicada
// entre as consultas do snapshot.
func (s *Store) ReadSnapshot(ctx context.Context, fn func(ctx context.Context, snap reportservice.Snapshot) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(ctx, lockedView{s})
}

// lockedView lê o store sem adquirir o lock; só é usada dentro de ReadSnapshot.
type lockedView struct{ s *Store }

func (v lockedView) ProductTotals(context.Context) ([]domain.ProductStockTotal, error) {
	return v.s.productTotals(), nil
}

func (v lockedView) TotalStock(context.Context) (int, error) {
	return v.s.totalStock(), nil
}

func (v lockedView) CountDrafts(context.Context) (map[domain.OperationKind]int, error) {
	return v.s.countDrafts(), nil
}

func (s *Store) productTotals() []domain.ProductStockTotal {
	totals := make(map[string]int)
	for k, l := range s.stock {
		totals[k.ProductID] += l.Quantity
	}
	out := make([]domain.ProductStockTotal, 0, len(s.products))
	for _, p := range s.products {
		out = append(out, domain.ProductStockTotal{ProductID: p.ID, ReorderPoint: p.ReorderPoint, Total: totals[p.ID]})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductID < out[j].ProductID })
	return out
}

func (s *Store) totalStock() int {
	total := 0
	for _, l := range s.stock {
		total += l.Quantity
	}
	return total
}
