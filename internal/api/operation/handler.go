package operation

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"stockmaster/internal/domain"
	apperror "stockmaster/internal/errors"
	"stockmaster/internal/pkg/httpx"
	"stockmaster/internal/pkg/logger"
	"stockmaster/internal/pkg/middleware"
)

// OperationService define o contrato que o Handler espera da camada de Serviço.
type OperationService interface {
	CreateOperation(ctx context.Context, req domain.CreateOperationRequest) (domain.Operation, error)
	GetOperation(ctx context.Context, id string) (domain.Operation, error)
	ListOperations(ctx context.Context, filter domain.OperationFilter) ([]domain.OperationSummary, error)
}

// Handler agrupa os handlers de operações.
type Handler struct {
	Service OperationService
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando o Service e o Logger.
func NewHandler(svc OperationService, log logger.Logger) *Handler {
	return &Handler{
		Service: svc,
		Logger:  log,
	}
}

// CreateOperationHandler lida com a requisição POST /v1/operations.
// @Summary Cria uma operação em rascunho
// @Description Recebimento, entrega, transferência ou ajuste. Não altera o estoque até a validação.
// @Tags operations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body domain.CreateOperationRequest true "Tipo, cabeçalho e linhas"
// @Success 201 {object} domain.Operation
// @Failure 400 {object} domain.ErrorResponse "Payload inválido"
// @Failure 404 {object} domain.ErrorResponse "Produto ou localização desconhecidos"
// @Router /v1/operations [post]
func (h *Handler) CreateOperationHandler(w http.ResponseWriter, r *http.Request) {
	if claims, ok := middleware.GetUserClaimsFromContext(r.Context()); ok {
		h.Logger.Debug("Criação de operação solicitada.", map[string]interface{}{"user_id": claims.UserID})
	}

	var req domain.CreateOperationRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Respond(w, r, h.Logger, nil, err, http.StatusCreated)
		return
	}

	op, err := h.Service.CreateOperation(r.Context(), req)
	httpx.Respond(w, r, h.Logger, op, err, http.StatusCreated)
}

// GetOperationHandler lida com a requisição GET /v1/operations/{id}.
// @Summary Busca uma operação
// @Tags operations
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID da operação"
// @Success 200 {object} domain.Operation
// @Failure 404 {object} domain.ErrorResponse "Operação não encontrada"
// @Router /v1/operations/{id} [get]
func (h *Handler) GetOperationHandler(w http.ResponseWriter, r *http.Request) {
	op, err := h.Service.GetOperation(r.Context(), chi.URLParam(r, "id"))
	httpx.Respond(w, r, h.Logger, op, err, http.StatusOK)
}

// ListOperationsHandler lida com a requisição GET /v1/operations.
// @Summary Lista operações
// @Description Mais recentes primeiro, com contagem de linhas e quantidade total.
// @Tags operations
// @Produce json
// @Security BearerAuth
// @Param kind query string false "receipt, delivery, transfer ou adjustment"
// @Param status query string false "draft ou done"
// @Param limit query int false "Máximo de registros (padrão 50)"
// @Success 200 {array} domain.OperationSummary
// @Failure 400 {object} domain.ErrorResponse "Filtro inválido"
// @Router /v1/operations [get]
func (h *Handler) ListOperationsHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := domain.OperationFilter{
		Kind:   domain.OperationKind(q.Get("kind")),
		Status: domain.OperationStatus(q.Get("status")),
	}
	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			httpx.Respond(w, r, h.Logger, nil, apperror.NewValidationError("limit deve ser um inteiro"), http.StatusOK)
			return
		}
		filter.Limit = limit
	}

	ops, err := h.Service.ListOperations(r.Context(), filter)
	httpx.Respond(w, r, h.Logger, ops, err, http.StatusOK)
}
