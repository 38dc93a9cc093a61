package memstore

import (
	"context"
	"fmt"
	"time"

	"stockmaster/internal/domain"
	apperror "stockmaster/internal/errors"
	"stockmaster/internal/service/stockservice"
)

// WithinTx executa fn com locks exclusivos por operação e por nível de estoque.
// As escritas ficam pendentes até fn retornar sem erro e são aplicadas de uma vez;
// os locks são liberados só depois disso.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx stockservice.LedgerTx) error) error {
	tx := &ledgerTx{
		store:    s,
		held:     make(map[string]bool),
		deltas:   make(map[domain.StockKey]int),
		ensure:   make(map[domain.StockKey]bool),
		done:     make(map[string]time.Time),
		snapshot: make(map[domain.StockKey]int),
	}
	defer tx.releaseAll()

	if err := fn(ctx, tx); err != nil {
		return err
	}
	return tx.commit()
}

// GetStockLevel devolve o nível de estoque; chave ausente equivale a zero.
func (s *Store) GetStockLevel(_ context.Context, key domain.StockKey) (domain.StockLevel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if level, ok := s.stock[key]; ok {
		return level, nil
	}
	return domain.StockLevel{ProductID: key.ProductID, LocationID: key.LocationID}, nil
}

// ListMovements devolve os movimentos mais recentes primeiro, com nome e SKU do produto.
func (s *Store) ListMovements(_ context.Context, filter domain.MovementFilter) ([]domain.MovementRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.MovementRecord, 0)
	for i := len(s.movements) - 1; i >= 0; i-- {
		m := s.movements[i]
		if filter.Kind != "" && m.Kind != filter.Kind {
			continue
		}
		if filter.ProductID != "" && m.ProductID != filter.ProductID {
			continue
		}
		if p, ok := s.products[m.ProductID]; ok {
			m.ProductName, m.SKU = p.Name, p.SKU
		}
		out = append(out, m)
		if filter.Limit > 0 && len(out) == filter.Limit {
			break
		}
	}
	return out, nil
}

// StockLevels devolve uma cópia de todos os níveis de estoque.
func (s *Store) StockLevels() []domain.StockLevel {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.StockLevel, 0, len(s.stock))
	for _, l := range s.stock {
		out = append(out, l)
	}
	return out
}

type ledgerTx struct {
	store    *Store
	releases []func()
	held     map[string]bool

	snapshot  map[domain.StockKey]int
	deltas    map[domain.StockKey]int
	ensure    map[domain.StockKey]bool
	movements []domain.MovementRecord
	done      map[string]time.Time
}

func (tx *ledgerTx) lock(ctx context.Context, name string) error {
	if tx.held[name] {
		return nil
	}
	release, err := tx.store.locks.acquire(ctx, name)
	if err != nil {
		return apperror.NewDBError("Tempo esgotado aguardando bloqueio", err)
	}
	tx.held[name] = true
	tx.releases = append(tx.releases, release)
	return nil
}

func (tx *ledgerTx) releaseAll() {
	for i := len(tx.releases) - 1; i >= 0; i-- {
		tx.releases[i]()
	}
	tx.releases = nil
}

func (tx *ledgerTx) LockOperation(ctx context.Context, id string) (domain.Operation, error) {
	if err := tx.lock(ctx, "op:"+id); err != nil {
		return domain.Operation{}, err
	}
	tx.store.mu.RLock()
	defer tx.store.mu.RUnlock()
	op, ok := tx.store.operations[id]
	if !ok {
		return domain.Operation{}, apperror.NewNotFoundError(fmt.Sprintf("Operação com ID %s não encontrada", id))
	}
	return copyOperation(op), nil
}

func (tx *ledgerTx) LockStock(ctx context.Context, key domain.StockKey, ensure bool) (int, error) {
	if err := tx.lock(ctx, "stock:"+key.String()); err != nil {
		return 0, err
	}
	if ensure {
		tx.ensure[key] = true
	}
	if _, ok := tx.snapshot[key]; !ok {
		tx.store.mu.RLock()
		tx.snapshot[key] = tx.store.stock[key].Quantity
		tx.store.mu.RUnlock()
	}
	return tx.snapshot[key] + tx.deltas[key], nil
}

func (tx *ledgerTx) ApplyDelta(_ context.Context, key domain.StockKey, delta int) (int, error) {
	if !tx.held["stock:"+key.String()] {
		return 0, apperror.NewInternalError(fmt.Sprintf("ApplyDelta sem bloqueio em %s", key), nil)
	}
	current := tx.snapshot[key] + tx.deltas[key]
	if current+delta < 0 {
		return 0, apperror.NewInsufficientStockError(key.ProductID, key.LocationID, current, -delta)
	}
	tx.deltas[key] += delta
	return current + delta, nil
}

func (tx *ledgerTx) AppendMovements(_ context.Context, records []domain.MovementRecord) error {
	tx.movements = append(tx.movements, records...)
	return nil
}

func (tx *ledgerTx) MarkDone(_ context.Context, id string, at time.Time) error {
	if !tx.held["op:"+id] {
		return apperror.NewInternalError(fmt.Sprintf("MarkDone sem bloqueio na operação %s", id), nil)
	}
	tx.done[id] = at
	return nil
}

func (tx *ledgerTx) HasStockHistory(ctx context.Context, key domain.StockKey) (bool, error) {
	if err := tx.lock(ctx, "product:"+key.ProductID); err != nil {
		return false, err
	}
	tx.store.mu.RLock()
	defer tx.store.mu.RUnlock()
	if _, ok := tx.store.stock[key]; ok {
		return true, nil
	}
	for _, m := range tx.store.movements {
		if m.ProductID == key.ProductID {
			return true, nil
		}
	}
	return false, nil
}

func (tx *ledgerTx) commit() error {
	s := tx.store
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	for key := range tx.ensure {
		if _, ok := s.stock[key]; !ok {
			s.stock[key] = domain.StockLevel{ProductID: key.ProductID, LocationID: key.LocationID, LastUpdated: now}
		}
	}
	for key, delta := range tx.deltas {
		level := s.stock[key]
		level.ProductID, level.LocationID = key.ProductID, key.LocationID
		level.Quantity += delta
		level.LastUpdated = now
		s.stock[key] = level
	}
	for _, m := range tx.movements {
		s.nextMovementID++
		m.ID = s.nextMovementID
		s.movements = append(s.movements, m)
	}
	for id, at := range tx.done {
		op := s.operations[id]
		op.Status = domain.StatusDone
		validatedAt := at
		op.ValidatedAt = &validatedAt
		s.operations[id] = op
	}
	return nil
}
