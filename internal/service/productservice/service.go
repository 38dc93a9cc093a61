package productservice

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"stockmaster/internal/domain"
	apperror "stockmaster/internal/errors"
	"stockmaster/internal/pkg/logger"
	"stockmaster/internal/pkg/validation"
)

// ProductRepository define o contrato (interface) que este Serviço espera
// da camada de Persistência (DB, Cache).
type ProductRepository interface {
	SaveProduct(ctx context.Context, product domain.Product) (domain.Product, error)
	FindProduct(ctx context.Context, id string) (domain.Product, error)
	ListProducts(ctx context.Context) ([]domain.ProductSummary, error)
	ListCategories(ctx context.Context) ([]domain.Category, error)
}

// StockSeeder registra o estoque inicial pelo caminho de escrita do livro-razão.
type StockSeeder interface {
	SeedInitialStock(ctx context.Context, req domain.InitialStockRequest) (domain.StockLevel, error)
}

// Service é o serviço do catálogo de produtos.
type Service struct {
	repo      ProductRepository
	stock     StockSeeder
	logger    logger.Logger
	validator *validation.Validator
	now       func() time.Time
}

// NewService cria e retorna uma nova instância do Serviço de Produto.
func NewService(repo ProductRepository, stock StockSeeder, logger logger.Logger) *Service {
	return &Service{
		repo:      repo,
		stock:     stock,
		logger:    logger,
		validator: validation.New(),
		now:       time.Now,
	}
}

// CreateProduct cadastra o produto e, se informado, registra o estoque inicial na localização.
func (s *Service) CreateProduct(ctx context.Context, req domain.CreateProductRequest) (domain.ProductSummary, error) {
	s.logger.Debug("Iniciando criação de produto no serviço.", map[string]interface{}{"sku": req.SKU})

	if err := s.validator.Struct(req); err != nil {
		s.logger.Warn("Payload de produto inválido.", map[string]interface{}{"sku": req.SKU, "error": err.Error()})
		return domain.ProductSummary{}, err
	}
	if req.InitialStock > 0 && req.LocationID == "" {
		return domain.ProductSummary{}, apperror.NewValidationError("location_id é obrigatório quando initial_stock é informado")
	}

	product := domain.Product{
		ID:            uuid.NewString(),
		SKU:           strings.TrimSpace(req.SKU),
		Name:          strings.TrimSpace(req.Name),
		CategoryID:    req.CategoryID,
		UnitOfMeasure: req.UnitOfMeasure,
		ReorderPoint:  domain.DefaultReorderPoint,
		CreatedAt:     s.now().UTC(),
	}
	if req.ReorderPoint != nil {
		product.ReorderPoint = *req.ReorderPoint
	}

	created, err := s.repo.SaveProduct(ctx, product)
	if err != nil {
		s.logger.Error("Falha ao salvar produto no repositório.", err)
		return domain.ProductSummary{}, err
	}
	summary := domain.ProductSummary{Product: created}

	if req.InitialStock > 0 {
		level, err := s.stock.SeedInitialStock(ctx, domain.InitialStockRequest{
			ProductID:  created.ID,
			LocationID: req.LocationID,
			Quantity:   req.InitialStock,
		})
		if err != nil {
			s.logger.Error("Produto criado, mas o estoque inicial falhou.", err)
			return domain.ProductSummary{}, err
		}
		summary.TotalStock = level.Quantity
	}

	s.logger.Info("Produto criado com sucesso.", map[string]interface{}{"product_id": created.ID, "sku": created.SKU, "initial_stock": summary.TotalStock})
	return summary, nil
}

// GetProductByID busca um produto após validar o formato do ID.
func (s *Service) GetProductByID(ctx context.Context, id string) (domain.Product, error) {
	if _, err := uuid.Parse(id); err != nil {
		return domain.Product{}, apperror.NewValidationError("O ID do produto deve ser um UUID válido.")
	}

	product, err := s.repo.FindProduct(ctx, id)
	if err != nil {
		// NotFound ou falha de armazenamento: o repositório já devolve o erro tipado.
		return domain.Product{}, err
	}
	return product, nil
}

// ListProducts lista o catálogo com o estoque total de cada produto.
func (s *Service) ListProducts(ctx context.Context) ([]domain.ProductSummary, error) {
	products, err := s.repo.ListProducts(ctx)
	if err != nil {
		s.logger.Error("Falha ao listar produtos.", err)
		return nil, err
	}
	return products, nil
}

// ListCategories lista as categorias do catálogo.
func (s *Service) ListCategories(ctx context.Context) ([]domain.Category, error) {
	categories, err := s.repo.ListCategories(ctx)
	if err != nil {
		s.logger.Error("Falha ao listar categorias.", err)
		return nil, err
	}
	return categories, nil
}
