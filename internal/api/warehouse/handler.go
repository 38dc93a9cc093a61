package warehouse

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"stockmaster/internal/domain"
	"stockmaster/internal/pkg/httpx"
	"stockmaster/internal/pkg/logger"
)

// WarehouseService define o contrato que o Handler espera da camada de Serviço.
type WarehouseService interface {
	GetAllWarehouses(ctx context.Context) ([]domain.Warehouse, error)
	GetAllLocations(ctx context.Context) ([]domain.Location, error)
	GetLocationByID(ctx context.Context, id string) (domain.Location, error)
}

// Handler agrupa todos os métodos de Handler de armazéns.
type Handler struct {
	Service WarehouseService
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando o Service e o Logger.
func NewHandler(svc WarehouseService, log logger.Logger) *Handler {
	return &Handler{
		Service: svc,
		Logger:  log,
	}
}

// GetAllWarehousesHandler lida com a requisição GET /v1/warehouses.
// @Summary Lista armazéns ativos
// @Tags warehouses
// @Produce json
// @Security BearerAuth
// @Success 200 {array} domain.Warehouse
// @Router /v1/warehouses [get]
func (h *Handler) GetAllWarehousesHandler(w http.ResponseWriter, r *http.Request) {
	warehouses, err := h.Service.GetAllWarehouses(r.Context())
	httpx.Respond(w, r, h.Logger, warehouses, err, http.StatusOK)
}

// GetAllLocationsHandler lida com a requisição GET /v1/locations.
// @Summary Lista localizações
// @Description Localizações com o nome do armazém a que pertencem.
// @Tags warehouses
// @Produce json
// @Security BearerAuth
// @Success 200 {array} domain.Location
// @Router /v1/locations [get]
func (h *Handler) GetAllLocationsHandler(w http.ResponseWriter, r *http.Request) {
	locations, err := h.Service.GetAllLocations(r.Context())
	httpx.Respond(w, r, h.Logger, locations, err, http.StatusOK)
}

// GetLocationByIDHandler lida com a requisição GET /v1/locations/{id}.
// @Summary Busca uma localização
// @Tags warehouses
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID da localização"
// @Success 200 {object} domain.Location
// @Failure 400 {object} domain.ErrorResponse "ID inválido"
// @Failure 404 {object} domain.ErrorResponse "Localização não encontrada"
// @Router /v1/locations/{id} [get]
func (h *Handler) GetLocationByIDHandler(w http.ResponseWriter, r *http.Request) {
	location, err := h.Service.GetLocationByID(r.Context(), chi.URLParam(r, "id"))
	httpx.Respond(w, r, h.Logger, location, err, http.StatusOK)
}
