package reportservice

import (
	"context"

	"golang.org/x/sync/errgroup"

	"stockmaster/internal/domain"
	"stockmaster/internal/pkg/logger"
)

// StockTotals fornece os agregados do estoque.
type StockTotals interface {
	ProductTotals(ctx context.Context) ([]domain.ProductStockTotal, error)
	TotalStock(ctx context.Context) (int, error)
}

// DraftCounter conta as operações em rascunho por tipo.
type DraftCounter interface {
	CountDrafts(ctx context.Context) (map[domain.OperationKind]int, error)
}

// Snapshot responde às três consultas do painel sobre o mesmo estado.
type Snapshot interface {
	StockTotals
	DraftCounter
}

// SnapshotReader abre uma leitura consistente e a entrega a fn.
type SnapshotReader interface {
	ReadSnapshot(ctx context.Context, fn func(ctx context.Context, snap Snapshot) error) error
}

// Service calcula os indicadores do painel a partir do estado atual, sem cache.
type Service struct {
	stock     StockTotals
	drafts    DraftCounter
	snapshots SnapshotReader
	logger    logger.Logger
}

type Option func(*Service)

// WithSnapshots faz os indicadores saírem de uma única leitura consistente.
func WithSnapshots(r SnapshotReader) Option {
	return func(s *Service) {
		s.snapshots = r
	}
}

// NewService cria e retorna uma nova instância do Serviço de Relatórios.
func NewService(stock StockTotals, drafts DraftCounter, logger logger.Logger, opts ...Option) *Service {
	s := &Service{stock: stock, drafts: drafts, logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type readings struct {
	totals []domain.ProductStockTotal
	sum    int
	counts map[domain.OperationKind]int
}

// ComputeKPIs monta os indicadores. Com SnapshotReader, as três consultas leem o mesmo
// estado; sem ele, rodam em paralelo e podem refletir momentos diferentes.
func (s *Service) ComputeKPIs(ctx context.Context) (domain.KPIs, error) {
	var (
		r   readings
		err error
	)
	if s.snapshots != nil {
		err = s.snapshots.ReadSnapshot(ctx, func(ctx context.Context, snap Snapshot) error {
			var readErr error
			r, readErr = readSequential(ctx, snap)
			return readErr
		})
	} else {
		r, err = s.readParallel(ctx)
	}
	if err != nil {
		s.logger.Error("Falha ao calcular indicadores do painel.", err)
		return domain.KPIs{}, err
	}
	kpis := domain.KPIs{TotalProducts: len(r.totals), TotalStock: r.sum}
	for _, t := range r.totals {
		if t.IsLow() {
			kpis.LowStock++
		}
	}
	for _, kind := range domain.OperationKinds {
		kpis.SetPending(kind, r.counts[kind])
	}

	s.logger.Debug("Indicadores calculados.", map[string]interface{}{
		"total_products": kpis.TotalProducts,
		"total_stock":    kpis.TotalStock,
		"low_stock":      kpis.LowStock,
	})
	return kpis, nil
}

func readSequential(ctx context.Context, snap Snapshot) (readings, error) {
	var (
		r   readings
		err error
	)
	if r.totals, err = snap.ProductTotals(ctx); err != nil {
		return readings{}, err
	}
	if r.sum, err = snap.TotalStock(ctx); err != nil {
		return readings{}, err
	}
	if r.counts, err = snap.CountDrafts(ctx); err != nil {
		return readings{}, err
	}
	return r, nil
}

func (s *Service) readParallel(ctx context.Context) (readings, error) {
	var r readings
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		r.totals, err = s.stock.ProductTotals(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		r.sum, err = s.stock.TotalStock(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		r.counts, err = s.drafts.CountDrafts(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return readings{}, err
	}
	return r, nil
}
