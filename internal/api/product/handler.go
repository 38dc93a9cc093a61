package product

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"stockmaster/internal/domain"
	"stockmaster/internal/pkg/httpx"
	"stockmaster/internal/pkg/logger"
	"stockmaster/internal/pkg/middleware"
)

// ProductService define o contrato que o Handler espera da camada de Serviço.
type ProductService interface {
	CreateProduct(ctx context.Context, req domain.CreateProductRequest) (domain.ProductSummary, error)
	GetProductByID(ctx context.Context, id string) (domain.Product, error)
	ListProducts(ctx context.Context) ([]domain.ProductSummary, error)
	ListCategories(ctx context.Context) ([]domain.Category, error)
}

// Handler agrupa todos os métodos de Handler do produto.
type Handler struct {
	Service ProductService
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando o Service e o Logger.
func NewHandler(svc ProductService, log logger.Logger) *Handler {
	return &Handler{
		Service: svc,
		Logger:  log,
	}
}

// CreateProductHandler lida com a requisição POST /v1/products.
// @Summary Cadastra um produto
// @Description Cria o produto e, com initial_stock e location_id, registra o estoque inicial.
// @Tags products
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body domain.CreateProductRequest true "Dados do produto"
// @Success 201 {object} domain.ProductSummary
// @Failure 400 {object} domain.ErrorResponse "Payload inválido"
// @Failure 404 {object} domain.ErrorResponse "Categoria ou localização desconhecidas"
// @Failure 409 {object} domain.ErrorResponse "SKU já cadastrado"
// @Router /v1/products [post]
func (h *Handler) CreateProductHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if claims, ok := middleware.GetUserClaimsFromContext(ctx); ok {
		h.Logger.Info("Tentativa de criação de produto por", map[string]interface{}{
			"user_id": claims.UserID,
			"role":    claims.Role,
		})
	}

	var req domain.CreateProductRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Respond(w, r, h.Logger, nil, err, http.StatusCreated)
		return
	}

	created, err := h.Service.CreateProduct(ctx, req)
	httpx.Respond(w, r, h.Logger, created, err, http.StatusCreated)
}

// GetProductByIDHandler lida com a requisição GET /v1/products/{id}.
// @Summary Busca um produto
// @Tags products
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID do produto"
// @Success 200 {object} domain.Product
// @Failure 400 {object} domain.ErrorResponse "ID inválido"
// @Failure 404 {object} domain.ErrorResponse "Produto não encontrado"
// @Router /v1/products/{id} [get]
func (h *Handler) GetProductByIDHandler(w http.ResponseWriter, r *http.Request) {
	product, err := h.Service.GetProductByID(r.Context(), chi.URLParam(r, "id"))
	httpx.Respond(w, r, h.Logger, product, err, http.StatusOK)
}

// ListProductsHandler lida com a requisição GET /v1/products.
// @Summary Lista produtos
// @Description Produtos com o estoque total somado em todas as localizações.
// @Tags products
// @Produce json
// @Security BearerAuth
// @Success 200 {array} domain.ProductSummary
// @Router /v1/products [get]
func (h *Handler) ListProductsHandler(w http.ResponseWriter, r *http.Request) {
	products, err := h.Service.ListProducts(r.Context())
	httpx.Respond(w, r, h.Logger, products, err, http.StatusOK)
}

// ListCategoriesHandler lida com a requisição GET /v1/categories.
// @Summary Lista categorias
// @Tags products
// @Produce json
// @Security BearerAuth
// @Success 200 {array} domain.Category
// @Router /v1/categories [get]
func (h *Handler) ListCategoriesHandler(w http.ResponseWriter, r *http.Request) {
	categories, err := h.Service.ListCategories(r.Context())
	httpx.Respond(w, r, h.Logger, categories, err, http.StatusOK)
}
