package database

import (
	"context"
	"errors"
	"time"

	"github.com/lib/pq"
	"github.com/sethvargo/go-retry"
)

// Códigos SQLSTATE tratados explicitamente pelos repositórios.
const (
	CodeSerializationFailure pq.ErrorCode = "40001"
	CodeDeadlockDetected     pq.ErrorCode = "40P01"
	CodeUniqueViolation      pq.ErrorCode = "23505"
	CodeForeignKeyViolation  pq.ErrorCode = "23503"
	CodeCheckViolation       pq.ErrorCode = "23514"
	CodeInvalidText          pq.ErrorCode = "22P02" // ex.: UUID malformado
)

// PQCode devolve o SQLSTATE do erro do driver, ou "" se o erro não vier do PostgreSQL.
func PQCode(err error) pq.ErrorCode {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code
	}
	return ""
}

// IsRetryable informa se a transação inteira pode ser repetida sem alteração.
func IsRetryable(err error) bool {
	switch PQCode(err) {
	case CodeSerializationFailure, CodeDeadlockDetected:
		return true
	}
	return false
}

// IsUniqueViolation informa se o erro é de chave duplicada.
func IsUniqueViolation(err error) bool {
	return PQCode(err) == CodeUniqueViolation
}

// IsCheckViolation informa se o erro veio de uma constraint CHECK (ex.: quantity >= 0).
func IsCheckViolation(err error) bool {
	return PQCode(err) == CodeCheckViolation
}

// IsForeignKeyViolation informa se o erro referencia um registro inexistente.
func IsForeignKeyViolation(err error) bool {
	return PQCode(err) == CodeForeignKeyViolation
}

// IsInvalidText informa se um parâmetro não pôde ser convertido para o tipo da coluna.
func IsInvalidText(err error) bool {
	return PQCode(err) == CodeInvalidText
}

// Intervalo entre tentativas: exponencial a partir de RetryBaseDelay, limitado a RetryMaxDelay.
var (
	RetryBaseDelay = 10 * time.Millisecond
	RetryMaxDelay  = 200 * time.Millisecond
)

// WithRetry executa fn e a repete até maxRetries vezes enquanto o erro for repetível.
// onRetry (opcional) é chamado antes de cada nova tentativa. Esgotadas as tentativas,
// devolve o último erro de fn; com o contexto cancelado, devolve ctx.Err().
func WithRetry(ctx context.Context, maxRetries int, onRetry func(attempt int, err error), fn func(ctx context.Context) error) error {
	if maxRetries < 0 {
		maxRetries = 0
	}

	var (
		lastErr error
		attempt int
	)
	next := retry.WithMaxRetries(uint64(maxRetries),
		retry.WithJitter(RetryBaseDelay/2, retry.WithCappedDuration(RetryMaxDelay, retry.NewExponential(RetryBaseDelay))))
	backoff := retry.BackoffFunc(func() (time.Duration, bool) {
		d, stop := next.Next()
		if !stop {
			attempt++
			if onRetry != nil {
				onRetry(attempt, lastErr)
			}
		}
		return d, stop
	})

	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		lastErr = fn(ctx)
		if IsRetryable(lastErr) {
			return retry.RetryableError(lastErr)
		}
		return lastErr
	})
}
