package operationservice

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"stockmaster/internal/domain"
	apperror "stockmaster/internal/errors"
	"stockmaster/internal/pkg/logger"
	"stockmaster/internal/pkg/validation"
)

// OperationRepository define o contrato que o Serviço de Operações espera da persistência.
type OperationRepository interface {
	CreateOperation(ctx context.Context, op domain.Operation) error
	FindOperation(ctx context.Context, id string) (domain.Operation, error)
	ListOperations(ctx context.Context, filter domain.OperationFilter) ([]domain.OperationSummary, error)
}

// CatalogReader confirma a existência de produtos e localizações referenciados.
type CatalogReader interface {
	FindProduct(ctx context.Context, id string) (domain.Product, error)
	FindLocation(ctx context.Context, id string) (domain.Location, error)
}

// DefaultListLimit é o tamanho padrão da listagem de operações.
const DefaultListLimit = 50

// Service cria e consulta operações em rascunho. Nunca altera o estoque.
type Service struct {
	repo      OperationRepository
	catalog   CatalogReader
	logger    logger.Logger
	validator *validation.Validator
	now       func() time.Time
}

// NewService cria e retorna uma nova instância do Serviço de Operações.
func NewService(repo OperationRepository, catalog CatalogReader, logger logger.Logger) *Service {
	return &Service{
		repo:      repo,
		catalog:   catalog,
		logger:    logger,
		validator: validation.New(),
		now:       time.Now,
	}
}

// CreateOperation valida o payload e grava a operação (cabeçalho e linhas) como rascunho.
func (s *Service) CreateOperation(ctx context.Context, req domain.CreateOperationRequest) (domain.Operation, error) {
	s.logger.Debug("Iniciando criação de operação no serviço.", map[string]interface{}{"kind": req.Kind, "lines": len(req.Lines)})

	if err := s.validator.Struct(req); err != nil {
		s.logger.Warn("Payload de operação inválido.", map[string]interface{}{"error": err.Error()})
		return domain.Operation{}, err
	}

	header, err := buildHeader(req)
	if err != nil {
		s.logger.Warn("Cabeçalho de operação inválido.", map[string]interface{}{"kind": req.Kind, "error": err.Error()})
		return domain.Operation{}, err
	}
	lines, err := buildLines(req)
	if err != nil {
		s.logger.Warn("Linhas de operação inválidas.", map[string]interface{}{"kind": req.Kind, "error": err.Error()})
		return domain.Operation{}, err
	}
	if err := s.checkReferences(ctx, header, lines); err != nil {
		return domain.Operation{}, err
	}

	op := domain.Operation{
		ID:        uuid.NewString(),
		Kind:      req.Kind,
		Status:    domain.StatusDraft,
		Header:    header,
		Lines:     lines,
		CreatedAt: s.now().UTC(),
	}
	if err := s.repo.CreateOperation(ctx, op); err != nil {
		s.logger.Error("Falha ao gravar operação no repositório.", err)
		return domain.Operation{}, err
	}

	s.logger.Info("Operação criada em rascunho.", map[string]interface{}{"operation_id": op.ID, "kind": op.Kind, "lines": len(op.Lines)})
	return op, nil
}

// GetOperation busca uma operação com suas linhas.
func (s *Service) GetOperation(ctx context.Context, id string) (domain.Operation, error) {
	if _, err := uuid.Parse(id); err != nil {
		return domain.Operation{}, apperror.NewNotFoundError(fmt.Sprintf("Operação com ID %s não encontrada", id))
	}
	op, err := s.repo.FindOperation(ctx, id)
	if err != nil {
		s.logger.Info("Operação não encontrada ou falha na busca.", map[string]interface{}{"operation_id": id, "error": err.Error()})
		return domain.Operation{}, err
	}
	return op, nil
}

// ListOperations lista operações, mais recentes primeiro, filtrando por tipo e estado.
func (s *Service) ListOperations(ctx context.Context, filter domain.OperationFilter) ([]domain.OperationSummary, error) {
	if filter.Kind != "" && !filter.Kind.Valid() {
		return nil, apperror.NewValidationError(fmt.Sprintf("Tipo de operação desconhecido: %s", filter.Kind))
	}
	switch filter.Status {
	case "", domain.StatusDraft, domain.StatusDone:
	default:
		return nil, apperror.NewValidationError(fmt.Sprintf("Estado de operação desconhecido: %s", filter.Status))
	}
	if filter.Limit < 0 {
		return nil, apperror.NewValidationError("O limite não pode ser negativo.")
	}
	if filter.Limit == 0 {
		filter.Limit = DefaultListLimit
	}

	ops, err := s.repo.ListOperations(ctx, filter)
	if err != nil {
		s.logger.Error("Falha ao listar operações.", err)
		return nil, err
	}
	s.logger.Debug("Operações listadas.", map[string]interface{}{"count": len(ops)})
	return ops, nil
}

func buildHeader(req domain.CreateOperationRequest) (domain.Header, error) {
	switch req.Kind {
	case domain.KindReceipt:
		if strings.TrimSpace(req.SupplierName) == "" {
			return nil, apperror.NewValidationError("supplier_name é obrigatório para recebimentos")
		}
		return domain.ReceiptHeader{SupplierName: strings.TrimSpace(req.SupplierName)}, nil

	case domain.KindDelivery:
		if strings.TrimSpace(req.CustomerName) == "" {
			return nil, apperror.NewValidationError("customer_name é obrigatório para entregas")
		}
		return domain.DeliveryHeader{CustomerName: strings.TrimSpace(req.CustomerName)}, nil

	case domain.KindTransfer:
		if req.FromLocationID == "" || req.ToLocationID == "" {
			return nil, apperror.NewValidationError("from_location_id e to_location_id são obrigatórios para transferências")
		}
		if req.FromLocationID == req.ToLocationID {
			return nil, apperror.NewValidationError("Origem e destino da transferência devem ser diferentes")
		}
		return domain.TransferHeader{FromLocationID: req.FromLocationID, ToLocationID: req.ToLocationID}, nil

	case domain.KindAdjustment:
		if req.ProductID == "" || req.LocationID == "" {
			return nil, apperror.NewValidationError("product_id e location_id são obrigatórios para ajustes")
		}
		if req.NewQuantity == nil {
			return nil, apperror.NewValidationError("new_quantity é obrigatório para ajustes")
		}
		if *req.NewQuantity < 0 {
			return nil, apperror.NewValidationError("new_quantity deve ser maior ou igual a 0")
		}
		return domain.AdjustmentHeader{
			ProductID:   req.ProductID,
			LocationID:  req.LocationID,
			NewQuantity: *req.NewQuantity,
			Reason:      strings.TrimSpace(req.Reason),
		}, nil
	}
	return nil, apperror.NewValidationError(fmt.Sprintf("Tipo de operação desconhecido: %s", req.Kind))
}

func buildLines(req domain.CreateOperationRequest) ([]domain.OperationLine, error) {
	if !req.Kind.HasLines() {
		if len(req.Lines) > 0 {
			return nil, apperror.NewValidationError("Ajustes não aceitam linhas")
		}
		return nil, nil
	}
	if len(req.Lines) == 0 {
		return nil, apperror.NewValidationError("A operação deve ter pelo menos uma linha")
	}

	lines := make([]domain.OperationLine, 0, len(req.Lines))
	for i, l := range req.Lines {
		line := domain.OperationLine{LineNo: i + 1, ProductID: l.ProductID, Quantity: l.Quantity}
		switch req.Kind {
		case domain.KindTransfer:
			// A localização da transferência vem do cabeçalho.
		default:
			if l.LocationID == "" {
				return nil, apperror.NewValidationError(fmt.Sprintf("lines[%d].location_id é obrigatório", i))
			}
			line.LocationID = l.LocationID
		}
		lines = append(lines, line)
	}
	return lines, nil
}

// checkReferences confirma no catálogo cada produto e localização citados, uma vez cada.
func (s *Service) checkReferences(ctx context.Context, header domain.Header, lines []domain.OperationLine) error {
	if s.catalog == nil {
		return nil
	}

	products := make(map[string]struct{})
	locations := make(map[string]struct{})
	switch h := header.(type) {
	case domain.TransferHeader:
		locations[h.FromLocationID] = struct{}{}
		locations[h.ToLocationID] = struct{}{}
	case domain.AdjustmentHeader:
		products[h.ProductID] = struct{}{}
		locations[h.LocationID] = struct{}{}
	}
	for _, l := range lines {
		products[l.ProductID] = struct{}{}
		if l.LocationID != "" {
			locations[l.LocationID] = struct{}{}
		}
	}

	for id := range products {
		if _, err := s.catalog.FindProduct(ctx, id); err != nil {
			s.logger.Info("Produto referenciado não encontrado.", map[string]interface{}{"product_id": id})
			return err
		}
	}
	for id := range locations {
		if _, err := s.catalog.FindLocation(ctx, id); err != nil {
			s.logger.Info("Localização referenciada não encontrada.", map[string]interface{}{"location_id": id})
			return err
		}
	}
	return nil
}
