package stockservice_test

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"stockmaster/internal/domain"
	apperror "stockmaster/internal/errors"
	"stockmaster/internal/pkg/logger"
	"stockmaster/internal/repository/memstore"
	"stockmaster/internal/service/stockservice"
)

const (
	p1 = "p1"
	p2 = "p2"
	p3 = "p3"
	l1 = "l1"
	l2 = "l2"
)

func newTestLogger() logger.Logger {
	return logger.NewNop()
}

func newEngine(t *testing.T) (*stockservice.Service, *memstore.Store) {
	t.Helper()
	store := memstore.New()
	return stockservice.NewService(store, nil, newTestLogger()), store
}

// stage grava uma operação em rascunho diretamente no store.
func stage(t *testing.T, store *memstore.Store, kind domain.OperationKind, header domain.Header, lines ...domain.OperationLine) domain.Operation {
	t.Helper()
	for i := range lines {
		lines[i].LineNo = i + 1
	}
	op := domain.Operation{
		ID:        uuid.NewString(),
		Kind:      kind,
		Status:    domain.StatusDraft,
		Header:    header,
		Lines:     lines,
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, store.CreateOperation(context.Background(), op))
	return op
}

func line(product, location string, qty int) domain.OperationLine {
	return domain.OperationLine{ProductID: product, LocationID: location, Quantity: qty}
}

func seed(t *testing.T, svc *stockservice.Service, product, location string, qty int) {
	t.Helper()
	_, err := svc.SeedInitialStock(context.Background(), domain.InitialStockRequest{ProductID: product, LocationID: location, Quantity: qty})
	require.NoError(t, err)
}

func quantity(t *testing.T, svc *stockservice.Service, product, location string) int {
	t.Helper()
	level, err := svc.GetStockLevel(context.Background(), product, location)
	require.NoError(t, err)
	return level.Quantity
}

func TestValidate_EndToEndReceiptThenDelivery(t *testing.T) {
	svc, store := newEngine(t)
	ctx := context.Background()

	receipt := stage(t, store, domain.KindReceipt, domain.ReceiptHeader{SupplierName: "Acme"}, line(p1, l1, 50))
	res, err := svc.Validate(ctx, receipt.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDone, res.Status)
	assert.False(t, res.ValidatedAt.IsZero())
	assert.Equal(t, 50, quantity(t, svc, p1, l1))

	delivery := stage(t, store, domain.KindDelivery, domain.DeliveryHeader{CustomerName: "Bob"}, line(p1, l1, 20))
	_, err = svc.Validate(ctx, delivery.ID)
	require.NoError(t, err)
	assert.Equal(t, 30, quantity(t, svc, p1, l1))

	moves, err := svc.ListMovements(ctx, domain.MovementFilter{ProductID: p1})
	require.NoError(t, err)
	require.Len(t, moves, 2)
	assert.Equal(t, domain.MovementDelivery, moves[0].Kind, "mais recente primeiro")
	assert.Equal(t, -20, moves[0].Quantity)
	assert.Equal(t, domain.DirectionOut, moves[0].Direction)
	assert.Equal(t, l1, moves[0].FromLocationID)
	assert.Equal(t, "Delivery "+delivery.ID, moves[0].Reference)
	assert.Equal(t, domain.MovementReceipt, moves[1].Kind)
	assert.Equal(t, 50, moves[1].Quantity)
	assert.Equal(t, l1, moves[1].ToLocationID)
	assert.Greater(t, moves[0].ID, moves[1].ID)

	stored, err := store.FindOperation(ctx, delivery.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDone, stored.Status)
	require.NotNil(t, stored.ValidatedAt)
}

func TestValidate_IsIdempotent(t *testing.T) {
	svc, store := newEngine(t)
	ctx := context.Background()

	op := stage(t, store, domain.KindReceipt, domain.ReceiptHeader{SupplierName: "Acme"}, line(p1, l1, 5))
	_, err := svc.Validate(ctx, op.ID)
	require.NoError(t, err)

	_, err = svc.Validate(ctx, op.ID)
	var already *apperror.AlreadyValidatedError
	require.ErrorAs(t, err, &already)
	assert.Equal(t, op.ID, already.OperationID)

	assert.Equal(t, 5, quantity(t, svc, p1, l1), "a segunda validação não pode reaplicar")
	moves, err := svc.ListMovements(ctx, domain.MovementFilter{})
	require.NoError(t, err)
	assert.Len(t, moves, 1)
}

func TestValidate_NotFound(t *testing.T) {
	svc, _ := newEngine(t)

	_, err := svc.Validate(context.Background(), uuid.NewString())

	var notFound *apperror.NotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestValidate_EmptyID(t *testing.T) {
	svc, _ := newEngine(t)

	_, err := svc.Validate(context.Background(), " ")

	var vErr *apperror.ValidationError
	assert.ErrorAs(t, err, &vErr)
}

func TestValidate_DeliveryIsAllOrNothing(t *testing.T) {
	svc, store := newEngine(t)
	ctx := context.Background()
	seed(t, svc, p1, l1, 10)
	seed(t, svc, p2, l1, 10)
	seed(t, svc, p3, l1, 1)
	before, err := svc.ListMovements(ctx, domain.MovementFilter{})
	require.NoError(t, err)

	op := stage(t, store, domain.KindDelivery, domain.DeliveryHeader{CustomerName: "Bob"},
		line(p1, l1, 5), line(p2, l1, 5), line(p3, l1, 3))

	_, err = svc.Validate(ctx, op.ID)

	var insufficient *apperror.InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, p3, insufficient.ProductID)
	assert.Equal(t, 1, insufficient.Available)
	assert.Equal(t, 3, insufficient.Requested)

	assert.Equal(t, 10, quantity(t, svc, p1, l1))
	assert.Equal(t, 10, quantity(t, svc, p2, l1))
	assert.Equal(t, 1, quantity(t, svc, p3, l1))

	after, err := svc.ListMovements(ctx, domain.MovementFilter{})
	require.NoError(t, err)
	assert.Len(t, after, len(before))

	stored, err := store.FindOperation(ctx, op.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDraft, stored.Status)
	assert.Nil(t, stored.ValidatedAt)
}

func TestValidate_DeliveryLinesShareWorkingBalance(t *testing.T) {
	svc, store := newEngine(t)
	seed(t, svc, p1, l1, 10)

	op := stage(t, store, domain.KindDelivery, domain.DeliveryHeader{CustomerName: "Bob"},
		line(p1, l1, 6), line(p1, l1, 6))

	_, err := svc.Validate(context.Background(), op.ID)

	var insufficient *apperror.InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, 4, insufficient.Available)
	assert.Equal(t, 10, quantity(t, svc, p1, l1))
}

func TestValidate_DeliveryFromAbsentLevel(t *testing.T) {
	svc, store := newEngine(t)

	op := stage(t, store, domain.KindDelivery, domain.DeliveryHeader{CustomerName: "Bob"}, line(p1, l1, 1))
	_, err := svc.Validate(context.Background(), op.ID)

	var insufficient *apperror.InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, 0, insufficient.Available)
	assert.Empty(t, store.StockLevels(), "saída rejeitada não cria nível de estoque")
}

func TestValidate_TransferMovesQuantityAndWritesTwoRecords(t *testing.T) {
	svc, store := newEngine(t)
	ctx := context.Background()
	seed(t, svc, p1, l1, 10)

	op := stage(t, store, domain.KindTransfer, domain.TransferHeader{FromLocationID: l1, ToLocationID: l2},
		domain.OperationLine{ProductID: p1, Quantity: 4})

	res, err := svc.Validate(ctx, op.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Movements)

	assert.Equal(t, 6, quantity(t, svc, p1, l1))
	assert.Equal(t, 4, quantity(t, svc, p1, l2))

	moves, err := svc.ListMovements(ctx, domain.MovementFilter{Kind: domain.MovementTransfer})
	require.NoError(t, err)
	require.Len(t, moves, 2)
	assert.Equal(t, moves[0].Reference, moves[1].Reference)
	assert.Equal(t, "Transfer "+op.ID, moves[0].Reference)
	assert.NotEqual(t, moves[0].Direction, moves[1].Direction)
	assert.Equal(t, 0, moves[0].Quantity+moves[1].Quantity)

	for _, m := range moves {
		assert.Equal(t, l1, m.FromLocationID)
		assert.Equal(t, l2, m.ToLocationID)
		if m.Direction == domain.DirectionOut {
			assert.Equal(t, l1, m.LocationID())
			assert.Equal(t, -4, m.Quantity)
		} else {
			assert.Equal(t, l2, m.LocationID())
			assert.Equal(t, 4, m.Quantity)
		}
	}
}

func TestValidate_TransferInsufficientAtSource(t *testing.T) {
	svc, store := newEngine(t)
	seed(t, svc, p1, l1, 3)

	op := stage(t, store, domain.KindTransfer, domain.TransferHeader{FromLocationID: l1, ToLocationID: l2},
		domain.OperationLine{ProductID: p1, Quantity: 4})

	_, err := svc.Validate(context.Background(), op.ID)

	var insufficient *apperror.InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, l1, insufficient.LocationID)
	assert.Equal(t, 3, quantity(t, svc, p1, l1))
	assert.Equal(t, 0, quantity(t, svc, p1, l2))
}

func TestValidate_AdjustmentDeltas(t *testing.T) {
	cases := []struct {
		name        string
		newQuantity int
		wantDelta   int
		wantDir     domain.Direction
	}{
		{"aumento", 15, 5, domain.DirectionIn},
		{"redução", 3, -7, domain.DirectionOut},
		{"sem diferença", 10, 0, domain.DirectionIn},
		{"zerar", 0, -10, domain.DirectionOut},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc, store := newEngine(t)
			ctx := context.Background()
			seed(t, svc, p1, l1, 10)

			op := stage(t, store, domain.KindAdjustment, domain.AdjustmentHeader{
				ProductID: p1, LocationID: l1, NewQuantity: tc.newQuantity, Reason: "contagem",
			})
			_, err := svc.Validate(ctx, op.ID)
			require.NoError(t, err)

			assert.Equal(t, tc.newQuantity, quantity(t, svc, p1, l1))
			moves, err := svc.ListMovements(ctx, domain.MovementFilter{Kind: domain.MovementAdjustment})
			require.NoError(t, err)
			require.Len(t, moves, 1)
			assert.Equal(t, tc.wantDelta, moves[0].Quantity)
			assert.Equal(t, tc.wantDir, moves[0].Direction)
			assert.Equal(t, l1, moves[0].ToLocationID)
			assert.Empty(t, moves[0].FromLocationID)
			assert.Equal(t, fmt.Sprintf("Adjustment %s: contagem", op.ID), moves[0].Reference)
		})
	}
}

func TestValidate_AdjustmentOnAbsentLevel(t *testing.T) {
	svc, store := newEngine(t)

	op := stage(t, store, domain.KindAdjustment, domain.AdjustmentHeader{ProductID: p1, LocationID: l2, NewQuantity: 7})
	_, err := svc.Validate(context.Background(), op.ID)
	require.NoError(t, err)

	assert.Equal(t, 7, quantity(t, svc, p1, l2))
}

func TestValidate_ConcurrentDeliveriesNeverOversell(t *testing.T) {
	for i := 0; i < 25; i++ {
		svc, store := newEngine(t)
		seed(t, svc, p1, l1, 10)
		a := stage(t, store, domain.KindDelivery, domain.DeliveryHeader{CustomerName: "A"}, line(p1, l1, 6))
		b := stage(t, store, domain.KindDelivery, domain.DeliveryHeader{CustomerName: "B"}, line(p1, l1, 6))

		var ok, insufficient atomic.Int32
		var g errgroup.Group
		for _, id := range []string{a.ID, b.ID} {
			id := id
			g.Go(func() error {
				_, err := svc.Validate(context.Background(), id)
				var ins *apperror.InsufficientStockError
				switch {
				case err == nil:
					ok.Add(1)
				case errors.As(err, &ins):
					insufficient.Add(1)
				default:
					return err
				}
				return nil
			})
		}
		require.NoError(t, g.Wait())

		assert.EqualValues(t, 1, ok.Load())
		assert.EqualValues(t, 1, insufficient.Load())
		assert.Equal(t, 4, quantity(t, svc, p1, l1))
	}
}

func TestValidate_ConcurrentSameOperationAppliesOnce(t *testing.T) {
	svc, store := newEngine(t)
	op := stage(t, store, domain.KindReceipt, domain.ReceiptHeader{SupplierName: "Acme"}, line(p1, l1, 3))

	var done, already atomic.Int32
	var g errgroup.Group
	for i := 0; i < 8; i++ {
		g.Go(func() error {
			_, err := svc.Validate(context.Background(), op.ID)
			var av *apperror.AlreadyValidatedError
			switch {
			case err == nil:
				done.Add(1)
			case errors.As(err, &av):
				already.Add(1)
			default:
				return err
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	assert.EqualValues(t, 1, done.Load())
	assert.EqualValues(t, 7, already.Load())
	assert.Equal(t, 3, quantity(t, svc, p1, l1))
}

// TestValidate_LedgerInvariantsUnderConcurrency valida que, após validações concorrentes
// arbitrárias, cada nível é não negativo e igual à soma dos deltas registrados.
func TestValidate_LedgerInvariantsUnderConcurrency(t *testing.T) {
	svc, store := newEngine(t)
	ctx := context.Background()
	rnd := rand.New(rand.NewSource(42))
	products := []string{p1, p2, p3}
	locations := []string{l1, l2}
	pick := func(xs []string) string { return xs[rnd.Intn(len(xs))] }

	var ops []domain.Operation
	for i := 0; i < 120; i++ {
		switch rnd.Intn(4) {
		case 0:
			ops = append(ops, stage(t, store, domain.KindReceipt, domain.ReceiptHeader{SupplierName: "S"},
				line(pick(products), pick(locations), 1+rnd.Intn(10)), line(pick(products), pick(locations), 1+rnd.Intn(10))))
		case 1:
			ops = append(ops, stage(t, store, domain.KindDelivery, domain.DeliveryHeader{CustomerName: "C"},
				line(pick(products), pick(locations), 1+rnd.Intn(8)), line(pick(products), pick(locations), 1+rnd.Intn(8))))
		case 2:
			from := pick(locations)
			to := l1
			if from == l1 {
				to = l2
			}
			ops = append(ops, stage(t, store, domain.KindTransfer, domain.TransferHeader{FromLocationID: from, ToLocationID: to},
				domain.OperationLine{ProductID: pick(products), Quantity: 1 + rnd.Intn(6)}))
		case 3:
			ops = append(ops, stage(t, store, domain.KindAdjustment, domain.AdjustmentHeader{
				ProductID: pick(products), LocationID: pick(locations), NewQuantity: rnd.Intn(20),
			}))
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for _, op := range ops {
		op := op
		g.Go(func() error {
			_, err := svc.Validate(gctx, op.ID)
			var ins *apperror.InsufficientStockError
			if err != nil && !errors.As(err, &ins) {
				return err
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	moves, err := svc.ListMovements(ctx, domain.MovementFilter{Limit: domain.MaxMovementLimit})
	require.NoError(t, err)
	sums := make(map[domain.StockKey]int)
	for _, m := range moves {
		sums[m.Key()] += m.Quantity
	}

	levels := store.StockLevels()
	require.NotEmpty(t, levels)
	for _, level := range levels {
		assert.GreaterOrEqual(t, level.Quantity, 0, level.Key().String())
		assert.Equal(t, sums[level.Key()], level.Quantity, level.Key().String())
	}
}

func TestListMovements_Validation(t *testing.T) {
	svc, _ := newEngine(t)
	ctx := context.Background()

	_, err := svc.ListMovements(ctx, domain.MovementFilter{Limit: domain.MaxMovementLimit + 1})
	var vErr *apperror.ValidationError
	assert.ErrorAs(t, err, &vErr)

	_, err = svc.ListMovements(ctx, domain.MovementFilter{Limit: -1})
	assert.ErrorAs(t, err, &vErr)

	_, err = svc.ListMovements(ctx, domain.MovementFilter{Kind: "teleport"})
	assert.ErrorAs(t, err, &vErr)
}

func TestListMovements_LimitAndKind(t *testing.T) {
	svc, store := newEngine(t)
	ctx := context.Background()
	for _, p := range []string{p1, p2, p3} {
		seed(t, svc, p, l1, 5)
	}
	op := stage(t, store, domain.KindDelivery, domain.DeliveryHeader{CustomerName: "Bob"}, line(p1, l1, 2))
	_, err := svc.Validate(ctx, op.ID)
	require.NoError(t, err)

	moves, err := svc.ListMovements(ctx, domain.MovementFilter{Limit: 3})
	require.NoError(t, err)
	require.Len(t, moves, 3)
	assert.Equal(t, domain.MovementDelivery, moves[0].Kind)

	initial, err := svc.ListMovements(ctx, domain.MovementFilter{Kind: domain.MovementInitial})
	require.NoError(t, err)
	assert.Len(t, initial, 3)
	for _, m := range initial {
		assert.Equal(t, stockservice.InitialStockReference, m.Reference)
	}
}

func TestSeedInitialStock_OnlyOncePerProduct(t *testing.T) {
	svc, store := newEngine(t)
	ctx := context.Background()
	seed(t, svc, p1, l1, 10)

	op := stage(t, store, domain.KindDelivery, domain.DeliveryHeader{CustomerName: "Bob"}, line(p1, l1, 4))
	_, err := svc.Validate(ctx, op.ID)
	require.NoError(t, err)

	var conflict *apperror.ConflictError
	_, err = svc.SeedInitialStock(ctx, domain.InitialStockRequest{ProductID: p1, LocationID: l1, Quantity: 10})
	assert.ErrorAs(t, err, &conflict)

	// Outra localização também é recusada: o produto já tem movimentos.
	_, err = svc.SeedInitialStock(ctx, domain.InitialStockRequest{ProductID: p1, LocationID: l2, Quantity: 10})
	assert.ErrorAs(t, err, &conflict)

	assert.Equal(t, 6, quantity(t, svc, p1, l1))
	assert.Equal(t, 0, quantity(t, svc, p1, l2))
	initial, err := svc.ListMovements(ctx, domain.MovementFilter{Kind: domain.MovementInitial, ProductID: p1})
	require.NoError(t, err)
	assert.Len(t, initial, 1)
}

func TestSeedInitialStock_RejectsExistingLevel(t *testing.T) {
	svc, store := newEngine(t)
	ctx := context.Background()

	// Um ajuste cria o nível sem estoque inicial.
	op := stage(t, store, domain.KindAdjustment, domain.AdjustmentHeader{ProductID: p1, LocationID: l1, NewQuantity: 0})
	_, err := svc.Validate(ctx, op.ID)
	require.NoError(t, err)

	_, err = svc.SeedInitialStock(ctx, domain.InitialStockRequest{ProductID: p1, LocationID: l1, Quantity: 3})
	var conflict *apperror.ConflictError
	assert.ErrorAs(t, err, &conflict)
	assert.Equal(t, 0, quantity(t, svc, p1, l1))
}

func TestSeedInitialStock_ConcurrentSeedsOnlyOneWins(t *testing.T) {
	svc, _ := newEngine(t)
	ctx := context.Background()

	var ok, conflicts atomic.Int32
	var g errgroup.Group
	for _, loc := range []string{l1, l2, l1, l2} {
		loc := loc
		g.Go(func() error {
			_, err := svc.SeedInitialStock(ctx, domain.InitialStockRequest{ProductID: p1, LocationID: loc, Quantity: 5})
			var conflict *apperror.ConflictError
			switch {
			case err == nil:
				ok.Add(1)
			case errors.As(err, &conflict):
				conflicts.Add(1)
			default:
				return err
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	assert.EqualValues(t, 1, ok.Load())
	assert.EqualValues(t, 3, conflicts.Load())
	assert.Equal(t, 5, quantity(t, svc, p1, l1)+quantity(t, svc, p1, l2))
}

func TestGetStockLevel_AbsentReadsZero(t *testing.T) {
	svc, _ := newEngine(t)

	level, err := svc.GetStockLevel(context.Background(), p1, l1)

	require.NoError(t, err)
	assert.Equal(t, 0, level.Quantity)
	assert.Equal(t, p1, level.ProductID)
}

func TestCatalogChecks(t *testing.T) {
	store := memstore.New()
	store.AddWarehouse(domain.Warehouse{ID: "w1", Name: "Main", IsActive: true})
	store.AddLocation(domain.Location{ID: l1, WarehouseID: "w1", Name: "Rack A", Type: domain.LocationRack})
	store.AddProduct(domain.Product{ID: p1, SKU: "SKU-1", Name: "Parafuso", ReorderPoint: 10})
	svc := stockservice.NewService(store, store, newTestLogger())
	ctx := context.Background()

	var notFound *apperror.NotFoundError

	_, err := svc.GetStockLevel(ctx, p1, "ghost")
	assert.ErrorAs(t, err, &notFound)

	_, err = svc.SeedInitialStock(ctx, domain.InitialStockRequest{ProductID: "ghost", LocationID: l1, Quantity: 5})
	assert.ErrorAs(t, err, &notFound)

	_, err = svc.SeedInitialStock(ctx, domain.InitialStockRequest{ProductID: p1, LocationID: l1, Quantity: 0})
	var vErr *apperror.ValidationError
	assert.ErrorAs(t, err, &vErr)

	level, err := svc.SeedInitialStock(ctx, domain.InitialStockRequest{ProductID: p1, LocationID: l1, Quantity: 5})
	require.NoError(t, err)
	assert.Equal(t, 5, level.Quantity)

	moves, err := svc.ListMovements(ctx, domain.MovementFilter{ProductID: p1})
	require.NoError(t, err)
	require.Len(t, moves, 1)
	assert.Equal(t, "Parafuso", moves[0].ProductName)
	assert.Equal(t, "SKU-1", moves[0].SKU)
}

// --- Testes com mocks de colaboradores ---

// MockLedgerStore é uma implementação mock da interface LedgerStore.
type MockLedgerStore struct {
	mock.Mock
}

func (m *MockLedgerStore) WithinTx(ctx context.Context, fn func(ctx context.Context, tx stockservice.LedgerTx) error) error {
	args := m.Called(ctx, fn)
	return args.Error(0)
}

func (m *MockLedgerStore) GetStockLevel(ctx context.Context, key domain.StockKey) (domain.StockLevel, error) {
	args := m.Called(ctx, key)
	return args.Get(0).(domain.StockLevel), args.Error(1)
}

func (m *MockLedgerStore) ListMovements(ctx context.Context, filter domain.MovementFilter) ([]domain.MovementRecord, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.MovementRecord), args.Error(1)
}

// MockRecorder registra as métricas emitidas pelo serviço.
type MockRecorder struct {
	mock.Mock
}

func (m *MockRecorder) ObserveValidation(kind, outcome string, elapsed time.Duration) {
	m.Called(kind, outcome, elapsed)
}

func (m *MockRecorder) AddMovements(kind string, n int) {
	m.Called(kind, n)
}

func TestValidate_StorageFailureIsPropagated(t *testing.T) {
	mockStore := new(MockLedgerStore)
	mockMetrics := new(MockRecorder)
	svc := stockservice.NewService(mockStore, nil, newTestLogger(), stockservice.WithMetrics(mockMetrics))

	dbErr := apperror.NewDBError("Falha ao iniciar transação", errors.New("connection refused"))
	mockStore.On("WithinTx", mock.Anything, mock.Anything).Return(dbErr)
	mockMetrics.On("ObserveValidation", "", "storage_failure", mock.AnythingOfType("time.Duration")).Return()

	_, err := svc.Validate(context.Background(), "op-1")

	assert.True(t, apperror.IsTransient(err))
	mockStore.AssertExpectations(t)
	mockMetrics.AssertExpectations(t)
}

func TestValidate_RecordsMetricsOnSuccess(t *testing.T) {
	store := memstore.New()
	mockMetrics := new(MockRecorder)
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	svc := stockservice.NewService(store, nil, newTestLogger(),
		stockservice.WithMetrics(mockMetrics), stockservice.WithClock(func() time.Time { return fixed }))

	op := stage(t, store, domain.KindReceipt, domain.ReceiptHeader{SupplierName: "Acme"}, line(p1, l1, 2), line(p2, l1, 3))
	mockMetrics.On("ObserveValidation", "receipt", "done", time.Duration(0)).Return()
	mockMetrics.On("AddMovements", "receipt", 2).Return()

	res, err := svc.Validate(context.Background(), op.ID)

	require.NoError(t, err)
	assert.Equal(t, fixed, res.ValidatedAt)
	mockMetrics.AssertExpectations(t)
}

func TestListMovements_StoreErrorIsPropagated(t *testing.T) {
	mockStore := new(MockLedgerStore)
	svc := stockservice.NewService(mockStore, nil, newTestLogger())

	mockStore.On("ListMovements", mock.Anything, domain.MovementFilter{Limit: domain.DefaultMovementLimit}).
		Return(nil, apperror.NewDBError("Falha ao listar movimentos", errors.New("timeout")))

	_, err := svc.ListMovements(context.Background(), domain.MovementFilter{})

	assert.True(t, apperror.IsTransient(err))
	mockStore.AssertExpectations(t)
}
