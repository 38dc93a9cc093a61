package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// AppError é a interface central para todos os erros customizados do StockMaster.
// Ela permite que o código externo (Handler) acesse a Categoria e a Mensagem do erro.
type AppError interface {
	Error() string    // Implementa a interface error padrão do Go
	Category() string // Categoria do erro (e.g., "INVALID_REQUEST", "NOT_FOUND", "STORAGE_FAILURE")
	HTTPStatus() int  // Código HTTP sugerido para o Handler
	Unwrap() error    // Permite encapsular erros subjacentes (original error)
}

// --- Tipos de Erro Específicos (Erros de Domínio) ---

// ValidationError representa entrada malformada ou ausente (InvalidRequest).
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string    { return fmt.Sprintf("Erro de Validação: %s", e.Msg) }
func (e *ValidationError) Category() string { return "INVALID_REQUEST" }
func (e *ValidationError) HTTPStatus() int  { return http.StatusBadRequest } // 400
func (e *ValidationError) Unwrap() error    { return nil }

// NewValidationError cria um novo erro de validação.
func NewValidationError(msg string) AppError {
	return &ValidationError{Msg: msg}
}

// NotFoundError representa a ausência de um recurso solicitado ou referenciado.
type NotFoundError struct {
	Msg string
}

func (e *NotFoundError) Error() string    { return fmt.Sprintf("Recurso não encontrado: %s", e.Msg) }
func (e *NotFoundError) Category() string { return "NOT_FOUND" }
func (e *NotFoundError) HTTPStatus() int  { return http.StatusNotFound } // 404
func (e *NotFoundError) Unwrap() error    { return nil }

// NewNotFoundError cria um novo erro de recurso não encontrado.
func NewNotFoundError(msg string) AppError {
	return &NotFoundError{Msg: msg}
}

// ConflictError representa um conflito na regra de negócio (e.g., recurso duplicado).
type ConflictError struct {
	Msg string
}

func (e *ConflictError) Error() string    { return fmt.Sprintf("Conflito de estado: %s", e.Msg) }
func (e *ConflictError) Category() string { return "CONFLICT" }
func (e *ConflictError) HTTPStatus() int  { return http.StatusConflict } // 409
func (e *ConflictError) Unwrap() error    { return nil }

// NewConflictError cria um novo erro de conflito.
func NewConflictError(msg string) AppError {
	return &ConflictError{Msg: msg}
}

// AlreadyValidatedError indica que a operação não está mais em rascunho.
// É a guarda de idempotência da validação: nada foi alterado.
type AlreadyValidatedError struct {
	OperationID string
}

func (e *AlreadyValidatedError) Error() string {
	return fmt.Sprintf("Operação já validada: %s", e.OperationID)
}
func (e *AlreadyValidatedError) Category() string { return "ALREADY_VALIDATED" }
func (e *AlreadyValidatedError) HTTPStatus() int  { return http.StatusConflict } // 409
func (e *AlreadyValidatedError) Unwrap() error    { return nil }

// NewAlreadyValidatedError cria o erro de operação já validada.
func NewAlreadyValidatedError(operationID string) AppError {
	return &AlreadyValidatedError{OperationID: operationID}
}

// InsufficientStockError indica que uma saída excede o saldo disponível do produto.
type InsufficientStockError struct {
	ProductID  string
	LocationID string
	Available  int
	Requested  int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("Estoque insuficiente para o produto %s na localização %s (disponível %d, solicitado %d)",
		e.ProductID, e.LocationID, e.Available, e.Requested)
}
func (e *InsufficientStockError) Category() string { return "INSUFFICIENT_STOCK" }
func (e *InsufficientStockError) HTTPStatus() int  { return http.StatusUnprocessableEntity } // 422
func (e *InsufficientStockError) Unwrap() error    { return nil }

// NewInsufficientStockError cria o erro de estoque insuficiente.
func NewInsufficientStockError(productID, locationID string, available, requested int) AppError {
	return &InsufficientStockError{ProductID: productID, LocationID: locationID, Available: available, Requested: requested}
}

// UnauthorizedError representa credenciais ausentes ou inválidas.
type UnauthorizedError struct {
	Msg string
}

func (e *UnauthorizedError) Error() string    { return fmt.Sprintf("Não autorizado: %s", e.Msg) }
func (e *UnauthorizedError) Category() string { return "UNAUTHORIZED" }
func (e *UnauthorizedError) HTTPStatus() int  { return http.StatusUnauthorized } // 401
func (e *UnauthorizedError) Unwrap() error    { return nil }

// NewUnauthorizedError cria um novo erro de autenticação.
func NewUnauthorizedError(msg string) AppError {
	return &UnauthorizedError{Msg: msg}
}

// --- Tipos de Erro de Infraestrutura (Encapsulamento) ---

// StorageError representa a indisponibilidade da persistência. É transitório:
// a chamada inteira pode ser repetida, pois nenhuma escrita parcial sobrevive.
type StorageError struct {
	Msg string
	Err error
}

func (e *StorageError) Error() string    { return fmt.Sprintf("Falha de Armazenamento: %s", e.Msg) }
func (e *StorageError) Category() string { return "STORAGE_FAILURE" }
func (e *StorageError) HTTPStatus() int  { return http.StatusServiceUnavailable } // 503
func (e *StorageError) Unwrap() error    { return e.Err }

// InternalError representa falhas inesperadas no servidor, serviço ou repositório.
type InternalError struct {
	Msg string
	Err error // Erro original subjacente
}

func (e *InternalError) Error() string    { return fmt.Sprintf("Erro Interno: %s", e.Msg) }
func (e *InternalError) Category() string { return "INTERNAL_ERROR" }
func (e *InternalError) HTTPStatus() int  { return http.StatusInternalServerError } // 500
func (e *InternalError) Unwrap() error    { return e.Err }

// NewInternalError cria um erro de servidor (para falhas de lógica ou código não esperado).
func NewInternalError(msg string, err error) AppError {
	return &InternalError{Msg: msg, Err: err}
}

// NewDBError é um atalho para criar um StorageError a partir de falhas no DB.
func NewDBError(msg string, err error) AppError {
	if err == nil {
		return &StorageError{Msg: msg}
	}
	return &StorageError{Msg: fmt.Sprintf("%s (DB): %s", msg, err.Error()), Err: err}
}

// IsTransient informa se o erro pode ser resolvido apenas repetindo a chamada.
func IsTransient(err error) bool {
	var storageErr *StorageError
	return stderrors.As(err, &storageErr)
}

// --- Helper para o Handler (Tradução Final) ---

// MapToHTTPStatus recebe um erro e o traduz para o código HTTP, categoria e mensagem.
// Erros embrulhados com fmt.Errorf("%w") mantêm a categoria original.
func MapToHTTPStatus(err error) (int, string, string) {
	var appErr AppError
	if stderrors.As(err, &appErr) {
		return appErr.HTTPStatus(), appErr.Category(), appErr.Error()
	}

	// Erro não tipado: tratado como erro interno genérico.
	return http.StatusInternalServerError, "UNKNOWN_ERROR", "Ocorreu um erro inesperado."
}
