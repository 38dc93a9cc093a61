package stockservice

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"stockmaster/internal/domain"
	apperror "stockmaster/internal/errors"
	"stockmaster/internal/pkg/logger"
	"stockmaster/internal/pkg/validation"
)

// InitialStockReference é a referência gravada nos movimentos de estoque inicial.
const InitialStockReference = "Initial Stock"

// Service é o motor de validação e o ponto de leitura do estoque e do livro-razão.
type Service struct {
	store     LedgerStore
	catalog   CatalogReader
	logger    logger.Logger
	metrics   Recorder
	validator *validation.Validator
	now       func() time.Time
}

// Option configura o Service.
type Option func(*Service)

// WithMetrics registra as validações no Recorder informado.
func WithMetrics(r Recorder) Option {
	return func(s *Service) {
		if r != nil {
			s.metrics = r
		}
	}
}

// WithClock substitui o relógio usado em validated_at e nos movimentos.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService cria e retorna uma nova instância do Serviço de Estoque.
func NewService(store LedgerStore, catalog CatalogReader, logger logger.Logger, opts ...Option) *Service {
	s := &Service{
		store:     store,
		catalog:   catalog,
		logger:    logger,
		metrics:   nopRecorder{},
		validator: validation.New(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Validate executa a transição draft -> done da operação, aplicando todas as mudanças de
// estoque e gravando os movimentos em uma única unidade de trabalho.
func (s *Service) Validate(ctx context.Context, operationID string) (domain.ValidationResult, error) {
	s.logger.Debug("Iniciando validação de operação no serviço.", map[string]interface{}{"operation_id": operationID})
	start := s.now()

	if strings.TrimSpace(operationID) == "" {
		return domain.ValidationResult{}, apperror.NewValidationError("O ID da operação é obrigatório.")
	}

	var (
		result domain.ValidationResult
		kind   domain.OperationKind
	)
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx LedgerTx) error {
		op, err := tx.LockOperation(ctx, operationID)
		if err != nil {
			return err
		}
		kind = op.Kind
		if op.IsDone() {
			return apperror.NewAlreadyValidatedError(operationID)
		}

		keys, ensure, err := touchedKeys(op)
		if err != nil {
			return err
		}

		balances := make(map[domain.StockKey]int, len(keys))
		for _, k := range keys {
			qty, err := tx.LockStock(ctx, k, ensure[k])
			if err != nil {
				return err
			}
			balances[k] = qty
		}

		at := s.now().UTC()
		records, deltas, err := plan(op, balances, at)
		if err != nil {
			return err
		}

		for _, k := range keys {
			if deltas[k] == 0 {
				continue
			}
			if _, err := tx.ApplyDelta(ctx, k, deltas[k]); err != nil {
				return err
			}
		}
		if err := tx.AppendMovements(ctx, records); err != nil {
			return err
		}
		if err := tx.MarkDone(ctx, op.ID, at); err != nil {
			return err
		}

		result = domain.ValidationResult{
			OperationID: op.ID,
			Status:      domain.StatusDone,
			ValidatedAt: at,
			Movements:   len(records),
		}
		return nil
	})

	outcome := outcomeOf(err)
	s.metrics.ObserveValidation(string(kind), outcome, s.now().Sub(start))

	if err != nil {
		var insufficient *apperror.InsufficientStockError
		var already *apperror.AlreadyValidatedError
		switch {
		case errors.As(err, &insufficient):
			s.logger.Warn("Validação rejeitada por estoque insuficiente.", map[string]interface{}{
				"operation_id": operationID,
				"product_id":   insufficient.ProductID,
				"location_id":  insufficient.LocationID,
				"available":    insufficient.Available,
				"requested":    insufficient.Requested,
			})
		case errors.As(err, &already):
			s.logger.Info("Operação já validada; nada foi alterado.", map[string]interface{}{"operation_id": operationID})
		default:
			s.logger.Error(fmt.Sprintf("Falha ao validar operação %s.", operationID), err)
		}
		return domain.ValidationResult{}, err
	}

	s.metrics.AddMovements(string(kind), result.Movements)
	s.logger.Info("Operação validada com sucesso.", map[string]interface{}{
		"operation_id": result.OperationID,
		"kind":         kind,
		"movements":    result.Movements,
	})
	return result, nil
}

// GetStockLevel devolve a quantidade de um produto em uma localização (0 se nunca movimentado).
func (s *Service) GetStockLevel(ctx context.Context, productID, locationID string) (domain.StockLevel, error) {
	s.logger.Debug("Buscando nível de estoque no serviço.", map[string]interface{}{"product_id": productID, "location_id": locationID})

	if productID == "" || locationID == "" {
		return domain.StockLevel{}, apperror.NewValidationError("Produto e localização são obrigatórios.")
	}
	if err := s.ensureCatalog(ctx, productID, locationID); err != nil {
		return domain.StockLevel{}, err
	}

	level, err := s.store.GetStockLevel(ctx, domain.StockKey{ProductID: productID, LocationID: locationID})
	if err != nil {
		s.logger.Error("Falha ao buscar nível de estoque.", err)
		return domain.StockLevel{}, err
	}
	return level, nil
}

// ListMovements devolve os movimentos mais recentes primeiro.
func (s *Service) ListMovements(ctx context.Context, filter domain.MovementFilter) ([]domain.MovementRecord, error) {
	switch {
	case filter.Limit == 0:
		filter.Limit = domain.DefaultMovementLimit
	case filter.Limit < 0 || filter.Limit > domain.MaxMovementLimit:
		return nil, apperror.NewValidationError(fmt.Sprintf("O limite deve estar entre 1 e %d.", domain.MaxMovementLimit))
	}
	if filter.Kind != "" && !filter.Kind.Valid() {
		return nil, apperror.NewValidationError(fmt.Sprintf("Tipo de movimento desconhecido: %s", filter.Kind))
	}

	records, err := s.store.ListMovements(ctx, filter)
	if err != nil {
		s.logger.Error("Falha ao listar movimentos.", err)
		return nil, err
	}
	s.logger.Debug("Movimentos listados.", map[string]interface{}{"count": len(records), "kind": filter.Kind, "limit": filter.Limit})
	return records, nil
}

// SeedInitialStock registra o estoque inicial de um produto como uma entrada do tipo "initial".
// O registro só é aceito uma vez, antes de qualquer outro movimento do produto.
func (s *Service) SeedInitialStock(ctx context.Context, req domain.InitialStockRequest) (domain.StockLevel, error) {
	s.logger.Debug("Registrando estoque inicial.", map[string]interface{}{"product_id": req.ProductID, "location_id": req.LocationID, "quantity": req.Quantity})

	if err := s.validator.Struct(req); err != nil {
		return domain.StockLevel{}, err
	}
	if err := s.ensureCatalog(ctx, req.ProductID, req.LocationID); err != nil {
		return domain.StockLevel{}, err
	}

	key := domain.StockKey{ProductID: req.ProductID, LocationID: req.LocationID}
	var level domain.StockLevel
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx LedgerTx) error {
		seeded, err := tx.HasStockHistory(ctx, key)
		if err != nil {
			return err
		}
		if seeded {
			return apperror.NewConflictError(fmt.Sprintf("O produto %s já possui estoque ou movimentos; use um recebimento ou ajuste.", req.ProductID))
		}
		if _, err := tx.LockStock(ctx, key, true); err != nil {
			return err
		}
		qty, err := tx.ApplyDelta(ctx, key, req.Quantity)
		if err != nil {
			return err
		}
		at := s.now().UTC()
		rec := domain.MovementRecord{
			ProductID:    req.ProductID,
			Kind:         domain.MovementInitial,
			Direction:    domain.DirectionIn,
			ToLocationID: req.LocationID,
			Quantity:     req.Quantity,
			Reference:    InitialStockReference,
			CreatedAt:    at,
		}
		if err := tx.AppendMovements(ctx, []domain.MovementRecord{rec}); err != nil {
			return err
		}
		level = domain.StockLevel{ProductID: key.ProductID, LocationID: key.LocationID, Quantity: qty, LastUpdated: at}
		return nil
	})
	if err != nil {
		s.logger.Error("Falha ao registrar estoque inicial.", err)
		return domain.StockLevel{}, err
	}

	s.metrics.AddMovements(string(domain.MovementInitial), 1)
	s.logger.Info("Estoque inicial registrado.", map[string]interface{}{"product_id": level.ProductID, "location_id": level.LocationID, "quantity": level.Quantity})
	return level, nil
}

// ensureCatalog confirma que produto e localização existem. Sem catálogo configurado, não verifica.
func (s *Service) ensureCatalog(ctx context.Context, productID, locationID string) error {
	if s.catalog == nil {
		return nil
	}
	if _, err := s.catalog.FindProduct(ctx, productID); err != nil {
		return err
	}
	if _, err := s.catalog.FindLocation(ctx, locationID); err != nil {
		return err
	}
	return nil
}

func outcomeOf(err error) string {
	if err == nil {
		return "done"
	}
	var appErr apperror.AppError
	if errors.As(err, &appErr) {
		return strings.ToLower(appErr.Category())
	}
	return "error"
}
