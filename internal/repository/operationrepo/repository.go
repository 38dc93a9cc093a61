package operationrepo

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
)

// Querier é satisfeito tanto por *sql.DB quanto por *sql.Tx.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// OperationRepository persiste o agregado de operação (cabeçalho + linhas).
type OperationRepository struct {
	DB        *sql.DB
	DBTimeout time.Duration
	logger    logger.Logger
}

// NewOperationRepository cria uma nova instância do OperationRepository.
func NewOperationRepository(db *sql.DB, dbTimeout time.Duration, logger logger.Logger) *OperationRepository {
	return &OperationRepository{DB: db, DBTimeout: dbTimeout, logger: logger}
}

const operationColumns = `
        o.id, o.kind, o.status, o.supplier_name, o.customer_name,
        o.from_location_id::text, o.to_location_id::text, o.product_id::text, o.location_id::text,
        o.new_quantity, o.reason, o.created_at, o.validated_at`

// CreateOperation grava cabeçalho e linhas em uma única transação.
func (r *OperationRepository) CreateOperation(ctx context.Context, op domain.Operation) error {
	r.logger.Debug("Iniciando gravação de operação no repositório.", map[string]interface{}{"operation_id": op.ID, "kind": op.Kind, "lines": len(op.Lines)})

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	tx, err := r.DB.BeginTx(ctxTimeout, nil)
	if err != nil {
		r.logger.Error("Falha ao iniciar transação de operação.", err)
		return apperror.NewDBError("Falha ao iniciar transação", err)
	}
	defer tx.Rollback()

	h := headerColumns(op.Header)
	_, err = tx.ExecContext(ctxTimeout, `
        INSERT INTO operations (id, kind, status, supplier_name, customer_name, from_location_id, to_location_id,
                                product_id, location_id, new_quantity, reason, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		op.ID, op.Kind, op.Status, h.supplier, h.customer, h.from, h.to, h.product, h.location, h.newQuantity, h.reason, op.CreatedAt,
	)
	if err != nil {
		return r.translateWriteError("Falha ao inserir operação", err)
	}

	for _, l := range op.Lines {
		_, err = tx.ExecContext(ctxTimeout, `
            INSERT INTO operation_lines (operation_id, line_no, product_id, location_id, quantity)
            VALUES ($1, $2, $3, $4, $5)`,
			op.ID, l.LineNo, l.ProductID, nullString(l.LocationID), l.Quantity,
		)
		if err != nil {
			return r.translateWriteError(fmt.Sprintf("Falha ao inserir linha %d", l.LineNo), err)
		}
	}

	if err := tx.Commit(); err != nil {
		r.logger.Error("Falha ao commitar transação de operação.", err)
		return apperror.NewDBError("Falha ao commitar transação", err)
	}

	r.logger.Info("Operação gravada com sucesso no repositório.", map[string]interface{}{"operation_id": op.ID, "kind": op.Kind})
	return nil
}

// FindOperation busca a operação com suas linhas.
func (r *OperationRepository) FindOperation(ctx context.Context, id string) (domain.Operation, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	op, err := LoadOperation(ctxTimeout, r.DB, id, false)
	if err != nil {
		var notFound *apperror.NotFoundError
		if !errors.As(err, &notFound) {
			r.logger.Error("Falha ao buscar operação no DB.", err)
		}
		return domain.Operation{}, err
	}
	return op, nil
}

// ListOperations devolve as operações mais recentes primeiro, com contagem e total das linhas.
func (r *OperationRepository) ListOperations(ctx context.Context, filter domain.OperationFilter) ([]domain.OperationSummary, error) {
	r.logger.Debug("Listando operações no repositório.", map[string]interface{}{"kind": filter.Kind, "status": filter.Status})

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	var (
		where []string
		args  []interface{}
	)
	if filter.Kind != "" {
		args = append(args, string(filter.Kind))
		where = append(where, fmt.Sprintf("o.kind = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		where = append(where, fmt.Sprintf("o.status = $%d", len(args)))
	}

	query := `SELECT` + operationColumns + `,
               COUNT(l.line_no), COALESCE(SUM(l.quantity), 0)
        FROM operations o
        LEFT JOIN operation_lines l ON l.operation_id = o.id`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " GROUP BY o.id ORDER BY o.created_at DESC, o.id"
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := r.DB.QueryContext(ctxTimeout, query, args...)
	if err != nil {
		r.logger.Error("Falha ao listar operações no DB.", err)
		return nil, apperror.NewDBError("Falha ao listar operações", err)
	}
	defer rows.Close()

	out := make([]domain.OperationSummary, 0)
	for rows.Next() {
		var (
			op        domain.Operation
			lineCount int
			total     int
		)
		if err := scanOperation(rows, &op, &lineCount, &total); err != nil {
			return nil, apperror.NewDBError("Falha ao ler operação", err)
		}
		summary := op.Summary()
		summary.LineCount = lineCount
		summary.TotalQuantity = total
		out = append(out, summary)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewDBError("Falha ao iterar operações", err)
	}
	return out, nil
}

// CountDrafts conta as operações em rascunho por tipo.
func (r *OperationRepository) CountDrafts(ctx context.Context) (map[domain.OperationKind]int, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	counts, err := CountDrafts(ctxTimeout, r.DB)
	if err != nil {
		r.logger.Error("Falha ao contar rascunhos no DB.", err)
		return nil, err
	}
	return counts, nil
}

// CountDrafts conta os rascunhos por tipo usando q, que pode ser o pool ou uma transação.
func CountDrafts(ctx context.Context, q Querier) (map[domain.OperationKind]int, error) {
	rows, err := q.QueryContext(ctx, `SELECT kind, COUNT(*) FROM operations WHERE status = 'draft' GROUP BY kind`)
	if err != nil {
		return nil, apperror.NewDBError("Falha ao contar operações em rascunho", err)
	}
	defer rows.Close()

	counts := make(map[domain.OperationKind]int)
	for rows.Next() {
		var (
			kind  domain.OperationKind
			count int
		)
		if err := rows.Scan(&kind, &count); err != nil {
			return nil, apperror.NewDBError("Falha ao ler contagem de rascunhos", err)
		}
		counts[kind] = count
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewDBError("Falha ao iterar contagem de rascunhos", err)
	}
	return counts, nil
}

// LoadOperation carrega cabeçalho e linhas. Com forUpdate, bloqueia a linha da operação
// até o fim da transação de q.
func LoadOperation(ctx context.Context, q Querier, id string, forUpdate bool) (domain.Operation, error) {
	query := `SELECT` + operationColumns + ` FROM operations o WHERE o.id = $1`
	if forUpdate {
		query += " FOR UPDATE"
	}

	var op domain.Operation
	err := scanOperation(q.QueryRowContext(ctx, query, id), &op)
	if errors.Is(err, sql.ErrNoRows) || database.IsInvalidText(err) {
		return domain.Operation{}, apperror.NewNotFoundError(fmt.Sprintf("Operação com ID %s não encontrada", id))
	}
	if err != nil {
		return domain.Operation{}, apperror.NewDBError("Falha ao buscar operação", err)
	}

	rows, err := q.QueryContext(ctx, `
        SELECT line_no, product_id::text, COALESCE(location_id::text, ''), quantity
        FROM operation_lines
        WHERE operation_id = $1
        ORDER BY line_no`, id)
	if err != nil {
		return domain.Operation{}, apperror.NewDBError("Falha ao buscar linhas da operação", err)
	}
	defer rows.Close()

	op.Lines = make([]domain.OperationLine, 0)
	for rows.Next() {
		var l domain.OperationLine
		if err := rows.Scan(&l.LineNo, &l.ProductID, &l.LocationID, &l.Quantity); err != nil {
			return domain.Operation{}, apperror.NewDBError("Falha ao ler linha da operação", err)
		}
		op.Lines = append(op.Lines, l)
	}
	if err := rows.Err(); err != nil {
		return domain.Operation{}, apperror.NewDBError("Falha ao iterar linhas da operação", err)
	}
	return op, nil
}

func (r *OperationRepository) translateWriteError(msg string, err error) error {
	switch {
	case database.IsForeignKeyViolation(err):
		return apperror.NewNotFoundError("Produto ou localização referenciados não existem")
	case database.IsUniqueViolation(err):
		return apperror.NewConflictError("Operação já existe")
	case database.IsCheckViolation(err):
		return apperror.NewValidationError("Dados da operação violam as regras do esquema")
	}
	r.logger.Error(msg+" no DB.", err)
	return apperror.NewDBError(msg, err)
}
