package stockrepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"stockmaster/internal/domain"
	apperror "stockmaster/internal/errors"
	"stockmaster/internal/pkg/database"
	"stockmaster/internal/pkg/logger"
	"stockmaster/internal/repository/operationrepo"
)

// ledgerTx implementa stockservice.LedgerTx sobre uma *sql.Tx.
type ledgerTx struct {
	tx     *sql.Tx
	logger logger.Logger
}

// LockOperation bloqueia a linha da operação (FOR UPDATE) e carrega suas linhas.
func (t *ledgerTx) LockOperation(ctx context.Context, id string) (domain.Operation, error) {
	t.logger.Debug("Bloqueando operação para validação.", map[string]interface{}{"operation_id": id})
	return operationrepo.LoadOperation(ctx, t.tx, id, true)
}

// LockStock bloqueia o nível de estoque. Com ensure, cria antes o registro zerado para que
// o bloqueio de linha exista mesmo no primeiro movimento de entrada do par.
func (t *ledgerTx) LockStock(ctx context.Context, key domain.StockKey, ensure bool) (int, error) {
	if ensure {
		_, err := t.tx.ExecContext(ctx, `
            INSERT INTO stock_levels (product_id, location_id, quantity, last_updated)
            VALUES ($1, $2, 0, now())
            ON CONFLICT (product_id, location_id) DO NOTHING`,
			key.ProductID, key.LocationID,
		)
		if err != nil {
			if database.IsForeignKeyViolation(err) {
				return 0, apperror.NewNotFoundError(fmt.Sprintf("Produto %s ou localização %s não encontrados", key.ProductID, key.LocationID))
			}
			return 0, t.dbError("Falha ao criar nível de estoque", err)
		}
	}

	var qty int
	err := t.tx.QueryRowContext(ctx, `
        SELECT quantity FROM stock_levels
        WHERE product_id = $1 AND location_id = $2
        FOR UPDATE`,
		key.ProductID, key.LocationID,
	).Scan(&qty)
	if errors.Is(err, sql.ErrNoRows) {
		// Sem registro: só leitura de saída, que será rejeitada se q > 0.
		return 0, nil
	}
	if err != nil {
		return 0, t.dbError("Falha ao bloquear nível de estoque", err)
	}
	return qty, nil
}

// ApplyDelta soma delta à quantidade do nível bloqueado.
func (t *ledgerTx) ApplyDelta(ctx context.Context, key domain.StockKey, delta int) (int, error) {
	var qty int
	err := t.tx.QueryRowContext(ctx, `
        UPDATE stock_levels
        SET quantity = quantity + $3, last_updated = now()
        WHERE product_id = $1 AND location_id = $2
        RETURNING quantity`,
		key.ProductID, key.LocationID, delta,
	).Scan(&qty)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return 0, apperror.NewInternalError(fmt.Sprintf("Nível de estoque %s não bloqueado antes da escrita", key), nil)
	case database.IsCheckViolation(err):
		// A constraint quantity >= 0 é a última barreira contra saldo negativo.
		return 0, apperror.NewInsufficientStockError(key.ProductID, key.LocationID, 0, -delta)
	case err != nil:
		return 0, t.dbError("Falha ao atualizar nível de estoque", err)
	}
	return qty, nil
}

// AppendMovements grava os movimentos na ordem recebida; a sequência BIGSERIAL preserva essa ordem.
func (t *ledgerTx) AppendMovements(ctx context.Context, records []domain.MovementRecord) error {
	if len(records) == 0 {
		return nil
	}
	stmt, err := t.tx.PrepareContext(ctx, `
        INSERT INTO move_history (product_id, type, direction, from_location_id, to_location_id,
                                  quantity, reference, operation_id, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`)
	if err != nil {
		return t.dbError("Falha ao preparar gravação de movimentos", err)
	}
	defer stmt.Close()

	for _, m := range records {
		_, err := stmt.ExecContext(ctx,
			m.ProductID, m.Kind, m.Direction, nullString(m.FromLocationID), nullString(m.ToLocationID),
			m.Quantity, m.Reference, nullString(m.OperationID), m.CreatedAt,
		)
		if err != nil {
			return t.dbError("Falha ao gravar movimento", err)
		}
	}
	return nil
}

// MarkDone conclui a operação. A condição status = 'draft' garante a transição única.
func (t *ledgerTx) MarkDone(ctx context.Context, id string, at time.Time) error {
	res, err := t.tx.ExecContext(ctx, `
        UPDATE operations SET status = 'done', validated_at = $2
        WHERE id = $1 AND status = 'draft'`, id, at)
	if err != nil {
		return t.dbError("Falha ao concluir operação", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return t.dbError("Falha ao verificar linhas afetadas", err)
	}
	if n == 0 {
		return apperror.NewAlreadyValidatedError(id)
	}
	return nil
}

// HasStockHistory trava a linha do produto com FOR NO KEY UPDATE, que serializa registros
// concorrentes sem conflitar com as chaves estrangeiras de stock_levels e move_history.
func (t *ledgerTx) HasStockHistory(ctx context.Context, key domain.StockKey) (bool, error) {
	var one int
	err := t.tx.QueryRowContext(ctx, `SELECT 1 FROM products WHERE id = $1 FOR NO KEY UPDATE`, key.ProductID).Scan(&one)
	switch {
	case errors.Is(err, sql.ErrNoRows), database.IsInvalidText(err):
		return false, apperror.NewNotFoundError(fmt.Sprintf("Produto com ID %s não encontrado", key.ProductID))
	case err != nil:
		return false, t.dbError("Falha ao bloquear produto", err)
	}

	var exists bool
	err = t.tx.QueryRowContext(ctx, `
        SELECT EXISTS (SELECT 1 FROM stock_levels WHERE product_id = $1 AND location_id = $2)
            OR EXISTS (SELECT 1 FROM move_history WHERE product_id = $1)`,
		key.ProductID, key.LocationID,
	).Scan(&exists)
	if err != nil {
		return false, t.dbError("Falha ao consultar histórico do produto", err)
	}
	return exists, nil
}

func (t *ledgerTx) dbError(msg string, err error) error {
	// Deadlocks e falhas de serialização sobem sem log de erro: a transação será repetida.
	if !database.IsRetryable(err) {
		t.logger.Error(msg+" no DB.", err)
	}
	return apperror.NewDBError(msg, err)
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
