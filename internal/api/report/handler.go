package report

import (
	"context"
	"net/http"

	"stockmaster/internal/domain"
	"stockmaster/internal/pkg/httpx"
	"stockmaster/internal/pkg/logger"
)

// ReportService calcula os indicadores do painel.
type ReportService interface {
	ComputeKPIs(ctx context.Context) (domain.KPIs, error)
}

// Handler agrupa os handlers do painel.
type Handler struct {
	Service ReportService
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando o Service e o Logger.
func NewHandler(svc ReportService, log logger.Logger) *Handler {
	return &Handler{Service: svc, Logger: log}
}

// KPIsHandler lida com a requisição GET /v1/dashboard/kpis.
// @Summary Indicadores do painel
// @Description Totais de produtos e estoque, produtos em estoque baixo e rascunhos pendentes por tipo.
// @Tags dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} domain.KPIs
// @Failure 503 {object} domain.ErrorResponse "Falha de armazenamento"
// @Router /v1/dashboard/kpis [get]
func (h *Handler) KPIsHandler(w http.ResponseWriter, r *http.Request) {
	kpis, err := h.Service.ComputeKPIs(r.Context())
	httpx.Respond(w, r, h.Logger, kpis, err, http.StatusOK)
}
