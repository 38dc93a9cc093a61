package productservice_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"stockmaster/internal/domain"
	apperror "stockmaster/internal/errors"
	"stockmaster/internal/pkg/logger"
	"stockmaster/internal/repository/memstore"
	"stockmaster/internal/service/productservice"
	"stockmaster/internal/service/stockservice"
)

// MockProductRepository é uma implementação mock da interface ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) SaveProduct(ctx context.Context, product domain.Product) (domain.Product, error) {
	args := m.Called(ctx, product)
	if fn, ok := args.Get(0).(func(context.Context, domain.Product) domain.Product); ok {
		return fn(ctx, product), args.Error(1)
	}
	return args.Get(0).(domain.Product), args.Error(1)
}

func (m *MockProductRepository) FindProduct(ctx context.Context, id string) (domain.Product, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Product), args.Error(1)
}

func (m *MockProductRepository) ListProducts(ctx context.Context) ([]domain.ProductSummary, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.ProductSummary), args.Error(1)
}

func (m *MockProductRepository) ListCategories(ctx context.Context) ([]domain.Category, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Category), args.Error(1)
}

// MockStockSeeder é uma implementação mock da interface StockSeeder
type MockStockSeeder struct {
	mock.Mock
}

func (m *MockStockSeeder) SeedInitialStock(ctx context.Context, req domain.InitialStockRequest) (domain.StockLevel, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(domain.StockLevel), args.Error(1)
}

func intPtr(v int) *int { return &v }

// TestCreateProduct_DefaultReorderPoint testa o cadastro sem estoque inicial.
func TestCreateProduct_DefaultReorderPoint(t *testing.T) {
	mockRepo := new(MockProductRepository)
	mockStock := new(MockStockSeeder)
	svc := productservice.NewService(mockRepo, mockStock, logger.NewNop())

	mockRepo.On("SaveProduct", mock.Anything, mock.MatchedBy(func(p domain.Product) bool {
		return p.SKU == "CH-001" && p.ReorderPoint == domain.DefaultReorderPoint && p.ID != ""
	})).Return(func(_ context.Context, p domain.Product) domain.Product { return p }, nil)

	created, err := svc.CreateProduct(context.Background(), domain.CreateProductRequest{
		SKU: " CH-001 ", Name: "Cadeira", UnitOfMeasure: "un",
	})

	require.NoError(t, err)
	assert.Equal(t, "CH-001", created.SKU)
	assert.Zero(t, created.TotalStock)
	mockRepo.AssertExpectations(t)
	mockStock.AssertNotCalled(t, "SeedInitialStock", mock.Anything, mock.Anything)
}

// TestCreateProduct_WithInitialStock testa o cadastro com estoque inicial.
func TestCreateProduct_WithInitialStock(t *testing.T) {
	mockRepo := new(MockProductRepository)
	mockStock := new(MockStockSeeder)
	svc := productservice.NewService(mockRepo, mockStock, logger.NewNop())

	location := uuid.NewString()
	mockRepo.On("SaveProduct", mock.Anything, mock.MatchedBy(func(p domain.Product) bool { return p.ReorderPoint == 3 })).
		Return(func(_ context.Context, p domain.Product) domain.Product { return p }, nil)
	mockStock.On("SeedInitialStock", mock.Anything, mock.MatchedBy(func(req domain.InitialStockRequest) bool {
		return req.LocationID == location && req.Quantity == 40
	})).Return(domain.StockLevel{LocationID: location, Quantity: 40}, nil)

	created, err := svc.CreateProduct(context.Background(), domain.CreateProductRequest{
		SKU: "CH-002", Name: "Mesa", UnitOfMeasure: "un", ReorderPoint: intPtr(3), InitialStock: 40, LocationID: location,
	})

	require.NoError(t, err)
	assert.Equal(t, 40, created.TotalStock)
	mockRepo.AssertExpectations(t)
	mockStock.AssertExpectations(t)
}

// TestCreateProduct_Invalid testa payloads rejeitados antes do repositório.
func TestCreateProduct_Invalid(t *testing.T) {
	mockRepo := new(MockProductRepository)
	svc := productservice.NewService(mockRepo, new(MockStockSeeder), logger.NewNop())

	cases := map[string]domain.CreateProductRequest{
		"sem sku":               {Name: "Cadeira", UnitOfMeasure: "un"},
		"sem unidade":           {SKU: "X", Name: "Cadeira"},
		"reposição negativa":    {SKU: "X", Name: "Cadeira", UnitOfMeasure: "un", ReorderPoint: intPtr(-1)},
		"estoque negativo":      {SKU: "X", Name: "Cadeira", UnitOfMeasure: "un", InitialStock: -5},
		"estoque sem localização": {SKU: "X", Name: "Cadeira", UnitOfMeasure: "un", InitialStock: 5},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.CreateProduct(context.Background(), req)
			var vErr *apperror.ValidationError
			assert.ErrorAs(t, err, &vErr)
		})
	}
	mockRepo.AssertNotCalled(t, "SaveProduct", mock.Anything, mock.Anything)
}

// TestCreateProduct_DuplicateSKU testa o conflito de SKU contra o store em memória.
func TestCreateProduct_DuplicateSKU(t *testing.T) {
	store := memstore.New()
	stock := stockservice.NewService(store, store, logger.NewNop())
	svc := productservice.NewService(store, stock, logger.NewNop())
	ctx := context.Background()

	req := domain.CreateProductRequest{SKU: "CH-001", Name: "Cadeira", UnitOfMeasure: "un"}
	_, err := svc.CreateProduct(ctx, req)
	require.NoError(t, err)

	_, err = svc.CreateProduct(ctx, req)
	var conflict *apperror.ConflictError
	assert.ErrorAs(t, err, &conflict)
}

// TestCreateProduct_InitialStockIsRecorded testa o fluxo completo até o livro-razão.
func TestCreateProduct_InitialStockIsRecorded(t *testing.T) {
	store := memstore.New()
	stock := stockservice.NewService(store, store, logger.NewNop())
	svc := productservice.NewService(store, stock, logger.NewNop())
	ctx := context.Background()

	wh, loc := uuid.NewString(), uuid.NewString()
	store.AddWarehouse(domain.Warehouse{ID: wh, Name: "Main Warehouse", IsActive: true})
	store.AddLocation(domain.Location{ID: loc, WarehouseID: wh, Name: "Rack A", Type: domain.LocationRack})

	created, err := svc.CreateProduct(ctx, domain.CreateProductRequest{
		SKU: "CH-003", Name: "Armário", UnitOfMeasure: "un", InitialStock: 12, LocationID: loc,
	})
	require.NoError(t, err)

	level, err := stock.GetStockLevel(ctx, created.ID, loc)
	require.NoError(t, err)
	assert.Equal(t, 12, level.Quantity)

	moves, err := stock.ListMovements(ctx, domain.MovementFilter{Kind: domain.MovementInitial})
	require.NoError(t, err)
	require.Len(t, moves, 1)
	assert.Equal(t, stockservice.InitialStockReference, moves[0].Reference)

	list, err := svc.ListProducts(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 12, list[0].TotalStock)
}

// TestGetProductByID_InvalidID testa a validação de formato do ID.
func TestGetProductByID_InvalidID(t *testing.T) {
	mockRepo := new(MockProductRepository)
	svc := productservice.NewService(mockRepo, nil, logger.NewNop())

	_, err := svc.GetProductByID(context.Background(), "123")
	var vErr *apperror.ValidationError
	assert.ErrorAs(t, err, &vErr)
	mockRepo.AssertNotCalled(t, "FindProduct", mock.Anything, mock.Anything)
}

// TestGetProductByID_RepoErrors testa a propagação dos erros tipados do repositório.
func TestGetProductByID_RepoErrors(t *testing.T) {
	mockRepo := new(MockProductRepository)
	svc := productservice.NewService(mockRepo, nil, logger.NewNop())

	missing := uuid.NewString()
	broken := uuid.NewString()
	mockRepo.On("FindProduct", mock.Anything, missing).Return(domain.Product{}, apperror.NewNotFoundError("Produto não encontrado"))
	mockRepo.On("FindProduct", mock.Anything, broken).Return(domain.Product{}, apperror.NewDBError("Falha ao buscar produto", errors.New("database connection lost")))

	_, err := svc.GetProductByID(context.Background(), missing)
	var nf *apperror.NotFoundError
	assert.ErrorAs(t, err, &nf)

	_, err = svc.GetProductByID(context.Background(), broken)
	assert.True(t, apperror.IsTransient(err))
	assert.Contains(t, err.Error(), "database connection lost")
	mockRepo.AssertExpectations(t)
}

// TestListCategories_Success testa a listagem de categorias.
func TestListCategories_Success(t *testing.T) {
	mockRepo := new(MockProductRepository)
	svc := productservice.NewService(mockRepo, nil, logger.NewNop())

	expected := []domain.Category{{ID: uuid.NewString(), Name: "Electronics"}}
	mockRepo.On("ListCategories", mock.Anything).Return(expected, nil)

	categories, err := svc.ListCategories(context.Background())
	require.NoError(t, err)
	assert.Equal(t, expected, categories)
	mockRepo.AssertExpectations(t)
}
