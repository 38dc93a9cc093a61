package stock

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"stockmaster/internal/domain"
	apperror "stockmaster/internal/errors"
	"stockmaster/internal/pkg/httpx"
	"stockmaster/internal/pkg/logger"
)

// StockService define o contrato que o Handler espera da camada de Serviço.
type StockService interface {
	Validate(ctx context.Context, operationID string) (domain.ValidationResult, error)
	GetStockLevel(ctx context.Context, productID, locationID string) (domain.StockLevel, error)
	ListMovements(ctx context.Context, filter domain.MovementFilter) ([]domain.MovementRecord, error)
	SeedInitialStock(ctx context.Context, req domain.InitialStockRequest) (domain.StockLevel, error)
}

// Handler agrupa todos os métodos de Handler de estoque.
type Handler struct {
	Service StockService
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando o Service e o Logger.
func NewHandler(svc StockService, log logger.Logger) *Handler {
	return &Handler{
		Service: svc,
		Logger:  log,
	}
}

// ValidateOperationHandler lida com a requisição POST /v1/operations/{id}/validate.
// @Summary Valida uma operação em rascunho
// @Description Aplica todas as mudanças de estoque da operação e grava os movimentos em uma única transação.
// @Tags operations
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID da operação"
// @Success 200 {object} domain.ValidationResult
// @Failure 404 {object} domain.ErrorResponse "Operação não encontrada"
// @Failure 409 {object} domain.ErrorResponse "Operação já validada"
// @Failure 422 {object} domain.ErrorResponse "Estoque insuficiente"
// @Failure 503 {object} domain.ErrorResponse "Falha de armazenamento"
// @Router /v1/operations/{id}/validate [post]
func (h *Handler) ValidateOperationHandler(w http.ResponseWriter, r *http.Request) {
	result, err := h.Service.Validate(r.Context(), chi.URLParam(r, "id"))
	httpx.Respond(w, r, h.Logger, result, err, http.StatusOK)
}

// GetStockLevelHandler lida com a requisição GET /v1/stock/{productID}/{locationID}.
// @Summary Consulta o nível de estoque
// @Description Quantidade de um produto em uma localização. Pares nunca movimentados valem 0.
// @Tags stock
// @Produce json
// @Security BearerAuth
// @Param productID path string true "ID do produto"
// @Param locationID path string true "ID da localização"
// @Success 200 {object} domain.StockLevel
// @Failure 404 {object} domain.ErrorResponse "Produto ou localização desconhecidos"
// @Router /v1/stock/{productID}/{locationID} [get]
func (h *Handler) GetStockLevelHandler(w http.ResponseWriter, r *http.Request) {
	level, err := h.Service.GetStockLevel(r.Context(), chi.URLParam(r, "productID"), chi.URLParam(r, "locationID"))
	httpx.Respond(w, r, h.Logger, level, err, http.StatusOK)
}

// ListMovementsHandler lida com a requisição GET /v1/movements.
// @Summary Lista o livro-razão
// @Description Movimentos mais recentes primeiro, filtrando opcionalmente por tipo e produto.
// @Tags stock
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Máximo de registros (padrão 100, máximo 1000)"
// @Param kind query string false "receipt, delivery, transfer, adjustment ou initial"
// @Param product_id query string false "Filtra por produto"
// @Success 200 {array} domain.MovementRecord
// @Failure 400 {object} domain.ErrorResponse "Tipo ou limite inválido"
// @Router /v1/movements [get]
func (h *Handler) ListMovementsHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := domain.MovementFilter{
		Kind:      domain.MovementKind(q.Get("kind")),
		ProductID: q.Get("product_id"),
	}
	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			httpx.Respond(w, r, h.Logger, nil, apperror.NewValidationError("limit deve ser um inteiro positivo"), http.StatusOK)
			return
		}
		filter.Limit = limit
	}

	records, err := h.Service.ListMovements(r.Context(), filter)
	httpx.Respond(w, r, h.Logger, records, err, http.StatusOK)
}

// SeedInitialStockHandler lida com a requisição POST /v1/stock/initial.
// @Summary Registra estoque inicial
// @Description Entrada do tipo "initial" com a referência "Initial Stock".
// @Tags stock
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body domain.InitialStockRequest true "Produto, localização e quantidade"
// @Success 201 {object} domain.StockLevel
// @Failure 400 {object} domain.ErrorResponse "Payload inválido"
// @Failure 404 {object} domain.ErrorResponse "Produto ou localização desconhecidos"
// @Failure 409 {object} domain.ErrorResponse "Produto já tem estoque ou movimentos"
// @Router /v1/stock/initial [post]
func (h *Handler) SeedInitialStockHandler(w http.ResponseWriter, r *http.Request) {
	var req domain.InitialStockRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Respond(w, r, h.Logger, nil, err, http.StatusCreated)
		return
	}

	level, err := h.Service.SeedInitialStock(r.Context(), req)
	httpx.Respond(w, r, h.Logger, level, err, http.StatusCreated)
}
