package stockrepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"stockmaster/internal/domain"
	apperror "stockmaster/internal/errors"
	"stockmaster/internal/pkg/database"
	"stockmaster/internal/pkg/logger"
	"stockmaster/internal/service/stockservice"
)

// StockRepository implementa stockservice.LedgerStore sobre o PostgreSQL.
// Cada unidade de trabalho roda em READ COMMITTED com bloqueios de linha (FOR UPDATE)
// e é repetida por inteiro em caso de deadlock ou falha de serialização.
type StockRepository struct {
	DB         *sql.DB
	DBTimeout  time.Duration
	MaxRetries int
	OnRetry    func(attempt int, err error)
	logger     logger.Logger
}

// NewStockRepository cria e retorna uma nova instância do Repositório de Estoque.
func NewStockRepository(db *sql.DB, dbTimeout time.Duration, maxRetries int, logger logger.Logger) *StockRepository {
	return &StockRepository{
		DB:         db,
		DBTimeout:  dbTimeout,
		MaxRetries: maxRetries,
		logger:     logger,
	}
}

// WithinTx executa fn em uma transação e faz commit se fn não retornar erro.
func (r *StockRepository) WithinTx(ctx context.Context, fn func(ctx context.Context, tx stockservice.LedgerTx) error) error {
	onRetry := func(attempt int, err error) {
		r.logger.Warn("Repetindo transação de estoque após conflito.", map[string]interface{}{"attempt": attempt, "sqlstate": string(database.PQCode(err))})
		if r.OnRetry != nil {
			r.OnRetry(attempt, err)
		}
	}

	err := database.WithRetry(ctx, r.MaxRetries, onRetry, func(ctx context.Context) error {
		return r.runTx(ctx, fn)
	})
	if err == nil {
		return nil
	}

	var appErr apperror.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return apperror.NewDBError("Falha na transação de estoque", err)
}

func (r *StockRepository) runTx(ctx context.Context, fn func(ctx context.Context, tx stockservice.LedgerTx) error) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	sqlTx, err := r.DB.BeginTx(ctxTimeout, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		r.logger.Error("Falha ao iniciar transação de estoque.", err)
		return err
	}
	defer sqlTx.Rollback() // Sem efeito após o commit

	if err := fn(ctxTimeout, &ledgerTx{tx: sqlTx, logger: r.logger}); err != nil {
		return err
	}

	if err := sqlTx.Commit(); err != nil {
		r.logger.Error("Falha ao commitar transação de estoque.", err)
		return err
	}
	return nil
}

// GetStockLevel busca o nível de estoque; ausência de registro equivale a zero.
func (r *StockRepository) GetStockLevel(ctx context.Context, key domain.StockKey) (domain.StockLevel, error) {
	r.logger.Debug("Buscando nível de estoque no repositório.", map[string]interface{}{"product_id": key.ProductID, "location_id": key.LocationID})

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `
        SELECT product_id, location_id, quantity, last_updated
        FROM stock_levels
        WHERE product_id = $1 AND location_id = $2`

	var sl domain.StockLevel
	err := r.DB.QueryRowContext(ctxTimeout, query, key.ProductID, key.LocationID).Scan(
		&sl.ProductID, &sl.LocationID, &sl.Quantity, &sl.LastUpdated,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.StockLevel{ProductID: key.ProductID, LocationID: key.LocationID}, nil
	}
	if err != nil {
		r.logger.Error("Falha ao buscar nível de estoque no DB.", err)
		return domain.StockLevel{}, apperror.NewDBError("Falha ao buscar nível de estoque", err)
	}
	return sl, nil
}

// ListMovements lê o livro-razão do mais recente para o mais antigo.
func (r *StockRepository) ListMovements(ctx context.Context, filter domain.MovementFilter) ([]domain.MovementRecord, error) {
	r.logger.Debug("Listando movimentos no repositório.", map[string]interface{}{"kind": filter.Kind, "product_id": filter.ProductID, "limit": filter.Limit})

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	var (
		where []string
		args  []interface{}
	)
	if filter.Kind != "" {
		args = append(args, string(filter.Kind))
		where = append(where, fmt.Sprintf("m.type = $%d", len(args)))
	}
	if filter.ProductID != "" {
		args = append(args, filter.ProductID)
		where = append(where, fmt.Sprintf("m.product_id = $%d", len(args)))
	}

	query := `
        SELECT m.id, m.product_id, COALESCE(p.name, ''), COALESCE(p.sku, ''), m.type, m.direction,
               COALESCE(m.from_location_id::text, ''), COALESCE(m.to_location_id::text, ''),
               m.quantity, m.reference, COALESCE(m.operation_id::text, ''), m.created_at
        FROM move_history m
        LEFT JOIN products p ON p.id = m.product_id`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY m.id DESC"
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := r.DB.QueryContext(ctxTimeout, query, args...)
	if err != nil {
		r.logger.Error("Falha ao listar movimentos no DB.", err)
		return nil, apperror.NewDBError("Falha ao listar movimentos", err)
	}
	defer rows.Close()

	records := make([]domain.MovementRecord, 0)
	for rows.Next() {
		var m domain.MovementRecord
		if err := rows.Scan(&m.ID, &m.ProductID, &m.ProductName, &m.SKU, &m.Kind, &m.Direction, &m.FromLocationID, &m.ToLocationID,
			&m.Quantity, &m.Reference, &m.OperationID, &m.CreatedAt); err != nil {
			return nil, apperror.NewDBError("Falha ao ler movimento", err)
		}
		records = append(records, m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewDBError("Falha ao iterar movimentos", err)
	}
	return records, nil
}
