package memstore

import (
	"context"
	"fmt"

	"stockmaster/internal/domain"
	apperror "stockmaster/internal/errors"
)

// CreateOperation grava cabeçalho e linhas de uma vez.
func (s *Store) CreateOperation(_ context.Context, op domain.Operation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.operations[op.ID]; exists {
		return apperror.NewConflictError(fmt.Sprintf("Operação %s já existe", op.ID))
	}
	s.operations[op.ID] = copyOperation(op)
	s.opOrder = append(s.opOrder, op.ID)
	return nil
}

// FindOperation busca a operação com suas linhas.
func (s *Store) FindOperation(_ context.Context, id string) (domain.Operation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	op, ok := s.operations[id]
	if !ok {
		return domain.Operation{}, apperror.NewNotFoundError(fmt.Sprintf("Operação com ID %s não encontrada", id))
	}
	return copyOperation(op), nil
}

// ListOperations devolve as operações mais recentes primeiro.
func (s *Store) ListOperations(_ context.Context, filter domain.OperationFilter) ([]domain.OperationSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.OperationSummary, 0)
	for i := len(s.opOrder) - 1; i >= 0; i-- {
		op := s.operations[s.opOrder[i]]
		if filter.Kind != "" && op.Kind != filter.Kind {
			continue
		}
		if filter.Status != "" && op.Status != filter.Status {
			continue
		}
		out = append(out, op.Summary())
		if filter.Limit > 0 && len(out) == filter.Limit {
			break
		}
	}
	return out, nil
}

// CountDrafts conta operações em rascunho por tipo.
func (s *Store) CountDrafts(_ context.Context) (map[domain.OperationKind]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.countDrafts(), nil
}

func (s *Store) countDrafts() map[domain.OperationKind]int {
	counts := make(map[domain.OperationKind]int)
	for _, op := range s.operations {
		if op.Status == domain.StatusDraft {
			counts[op.Kind]++
		}
	}
	return counts
}

func copyOperation(op domain.Operation) domain.Operation {
	op.Lines = append([]domain.OperationLine(nil), op.Lines...)
	if op.ValidatedAt != nil {
		at := *op.ValidatedAt
		op.ValidatedAt = &at
	}
	return op
}
