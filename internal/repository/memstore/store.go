// Package memstore implementa em memória todas as portas de persistência do StockMaster.
// É usado nos testes e com STORE_DRIVER=memory.
package memstore

import (
	"context"
	"sync"

	"stockmaster/internal/domain"
)

// Store guarda catálogo, estoque, livro-razão, operações e usuários em memória.
type Store struct {
	mu sync.RWMutex

	categories map[string]domain.Category
	products   map[string]domain.Product
	warehouses map[string]domain.Warehouse
	locations  map[string]domain.Location

	stock          map[domain.StockKey]domain.StockLevel
	movements      []domain.MovementRecord
	nextMovementID int64

	operations map[string]domain.Operation
	opOrder    []string

	users       map[string]domain.User
	usersByMail map[string]string

	locks *lockTable
}

// New cria um Store vazio.
func New() *Store {
	return &Store{
		categories:  make(map[string]domain.Category),
		products:    make(map[string]domain.Product),
		warehouses:  make(map[string]domain.Warehouse),
		locations:   make(map[string]domain.Location),
		stock:       make(map[domain.StockKey]domain.StockLevel),
		operations:  make(map[string]domain.Operation),
		users:       make(map[string]domain.User),
		usersByMail: make(map[string]string),
		locks:       newLockTable(),
	}
}

// lockTable entrega um lock exclusivo por nome. Os locks são canais de capacidade 1
// para que a espera respeite o cancelamento do contexto.
type lockTable struct {
	mu    sync.Mutex
	locks map[string]chan struct{}
}

func newLockTable() *lockTable {
	return &lockTable{locks: make(map[string]chan struct{})}
}

func (t *lockTable) get(name string) chan struct{} {
	t.mu.Lock()
	defer t.mu.Unlock()
	l, ok := t.locks[name]
	if !ok {
		l = make(chan struct{}, 1)
		t.locks[name] = l
	}
	return l
}

// acquire bloqueia até obter o lock ou o contexto ser cancelado.
func (t *lockTable) acquire(ctx context.Context, name string) (release func(), err error) {
	l := t.get(name)
	select {
	case l <- struct{}{}:
		return func() { <-l }, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
