package stockrepo

import (
	"context"
	"database/sql"

	"stockmaster/internal/domain"
	apperror "stockmaster/internal/errors"
	"stockmaster/internal/repository/operationrepo"
	"stockmaster/internal/service/reportservice"
)

// ProductTotals soma o estoque de cada produto do catálogo; produtos sem nível somam zero.
func (r *StockRepository) ProductTotals(ctx context.Context) ([]domain.ProductStockTotal, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	out, err := productTotals(ctxTimeout, r.DB)
	if err != nil {
		r.logger.Error("Falha ao somar estoque por produto no DB.", err)
		return nil, err
	}
	return out, nil
}

// TotalStock soma todas as quantidades em estoque.
func (r *StockRepository) TotalStock(ctx context.Context) (int, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	total, err := totalStock(ctxTimeout, r.DB)
	if err != nil {
		r.logger.Error("Falha ao somar estoque total no DB.", err)
		return 0, err
	}
	return total, nil
}

// ReadSnapshot abre uma transação somente leitura em REPEATABLE READ: todas as consultas
// de fn enxergam o mesmo estado confirmado.
func (r *StockRepository) ReadSnapshot(ctx context.Context, fn func(ctx context.Context, snap reportservice.Snapshot) error) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	tx, err := r.DB.BeginTx(ctxTimeout, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
	if err != nil {
		r.logger.Error("Falha ao abrir leitura consistente no DB.", err)
		return apperror.NewDBError("Falha ao abrir leitura consistente", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(ctxTimeout, snapshot{q: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return apperror.NewDBError("Falha ao encerrar leitura consistente", err)
	}
	return nil
}

type snapshot struct {
	q operationrepo.Querier
}

func (s snapshot) ProductTotals(ctx context.Context) ([]domain.ProductStockTotal, error) {
	return productTotals(ctx, s.q)
}

func (s snapshot) TotalStock(ctx context.Context) (int, error) {
	return totalStock(ctx, s.q)
}

func (s snapshot) CountDrafts(ctx context.Context) (map[domain.OperationKind]int, error) {
	return operationrepo.CountDrafts(ctx, s.q)
}

func productTotals(ctx context.Context, q operationrepo.Querier) ([]domain.ProductStockTotal, error) {
	rows, err := q.QueryContext(ctx, `
        SELECT p.id, p.reorder_point, COALESCE(SUM(s.quantity), 0)
        FROM products p
        LEFT JOIN stock_levels s ON s.product_id = p.id
        GROUP BY p.id
        ORDER BY p.id`)
	if err != nil {
		return nil, apperror.NewDBError("Falha ao somar estoque por produto", err)
	}
	defer rows.Close()

	out := make([]domain.ProductStockTotal, 0)
	for rows.Next() {
		var t domain.ProductStockTotal
		if err := rows.Scan(&t.ProductID, &t.ReorderPoint, &t.Total); err != nil {
			return nil, apperror.NewDBError("Falha ao mapear totais de estoque", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewDBError("Erro após iteração dos totais de estoque", err)
	}
	return out, nil
}

func totalStock(ctx context.Context, q operationrepo.Querier) (int, error) {
	var total int
	if err := q.QueryRowContext(ctx, `SELECT COALESCE(SUM(quantity), 0) FROM stock_levels`).Scan(&total); err != nil {
		return 0, apperror.NewDBError("Falha ao somar estoque total", err)
	}
	return total, nil
}
