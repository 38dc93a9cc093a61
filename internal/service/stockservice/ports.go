package stockservice

import (
	"context"
	"time"

	"stockmaster/internal/domain"
)

// LedgerTx é a unidade de trabalho do motor de validação.
// Todas as leituras e escritas feitas por meio dela são confirmadas ou descartadas juntas.
type LedgerTx interface {
	// LockOperation bloqueia e carrega a operação com suas linhas. Ausente: NotFoundError.
	LockOperation(ctx context.Context, id string) (domain.Operation, error)
	// LockStock bloqueia o nível de estoque e devolve a quantidade atual (0 se ausente).
	// Com ensure, o registro é criado com quantidade zero quando ainda não existe.
	LockStock(ctx context.Context, key domain.StockKey, ensure bool) (int, error)
	// ApplyDelta soma delta ao nível bloqueado e devolve a nova quantidade.
	ApplyDelta(ctx context.Context, key domain.StockKey, delta int) (int, error)
	// AppendMovements grava os movimentos na ordem recebida.
	AppendMovements(ctx context.Context, records []domain.MovementRecord) error
	// MarkDone move a operação de draft para done.
	MarkDone(ctx context.Context, id string, at time.Time) error
	// HasStockHistory bloqueia o produto até o fim da transação e informa se o par já tem
	// nível de estoque ou se o produto já tem algum movimento.
	HasStockHistory(ctx context.Context, key domain.StockKey) (bool, error)
}

// LedgerStore é a persistência de estoque e do livro-razão usada pelo serviço.
type LedgerStore interface {
	// WithinTx executa fn em uma única transação. Qualquer erro de fn descarta tudo.
	// fn pode ser executada mais de uma vez quando a persistência repete a transação.
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx LedgerTx) error) error
	GetStockLevel(ctx context.Context, key domain.StockKey) (domain.StockLevel, error)
	ListMovements(ctx context.Context, filter domain.MovementFilter) ([]domain.MovementRecord, error)
}

// CatalogReader confirma a existência de produtos e localizações.
type CatalogReader interface {
	FindProduct(ctx context.Context, id string) (domain.Product, error)
	FindLocation(ctx context.Context, id string) (domain.Location, error)
}

// Recorder recebe as métricas do motor. *metrics.Metrics satisfaz esta interface.
type Recorder interface {
	ObserveValidation(kind, outcome string, elapsed time.Duration)
	AddMovements(kind string, n int)
}

type nopRecorder struct{}

func (nopRecorder) ObserveValidation(string, string, time.Duration) {}
func (nopRecorder) AddMovements(string, int)                        {}
