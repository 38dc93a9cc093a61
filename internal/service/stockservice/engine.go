package stockservice

import (
	"fmt"
	"sort"
	"time"

	"stockmaster/internal/domain"
	apperror "stockmaster/internal/errors"
)

// touchedKeys devolve, em ordem de bloqueio, todos os níveis de estoque que a operação altera.
// ensure marca as chaves que podem receber entrada e por isso precisam existir antes do bloqueio.
func touchedKeys(op domain.Operation) (keys []domain.StockKey, ensure map[domain.StockKey]bool, err error) {
	ensure = make(map[domain.StockKey]bool)
	seen := make(map[domain.StockKey]bool)
	add := func(k domain.StockKey, inflow bool) {
		if !seen[k] {
			seen[k] = true
			keys = append(keys, k)
		}
		if inflow {
			ensure[k] = true
		}
	}

	switch op.Kind {
	case domain.KindReceipt:
		for _, l := range op.Lines {
			add(domain.StockKey{ProductID: l.ProductID, LocationID: l.LocationID}, true)
		}
	case domain.KindDelivery:
		for _, l := range op.Lines {
			add(domain.StockKey{ProductID: l.ProductID, LocationID: l.LocationID}, false)
		}
	case domain.KindTransfer:
		h, ok := op.Header.(domain.TransferHeader)
		if !ok {
			return nil, nil, malformed(op)
		}
		for _, l := range op.Lines {
			add(domain.StockKey{ProductID: l.ProductID, LocationID: h.FromLocationID}, false)
			add(domain.StockKey{ProductID: l.ProductID, LocationID: h.ToLocationID}, true)
		}
	case domain.KindAdjustment:
		h, ok := op.Header.(domain.AdjustmentHeader)
		if !ok {
			return nil, nil, malformed(op)
		}
		add(h.Key(), true)
	default:
		return nil, nil, malformed(op)
	}

	sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })
	return keys, ensure, nil
}

// plan aplica as linhas em ordem sobre os saldos bloqueados e devolve os movimentos a gravar
// e o delta líquido por chave. balances é atualizado como saldo de trabalho.
// A primeira saída sem saldo suficiente aborta o plano inteiro.
func plan(op domain.Operation, balances map[domain.StockKey]int, at time.Time) ([]domain.MovementRecord, map[domain.StockKey]int, error) {
	ref := op.Reference()
	deltas := make(map[domain.StockKey]int)
	var records []domain.MovementRecord

	record := func(product string, kind domain.MovementKind, from, to string, delta int) {
		records = append(records, domain.MovementRecord{
			ProductID:      product,
			Kind:           kind,
			Direction:      domain.DirectionOf(delta),
			FromLocationID: from,
			ToLocationID:   to,
			Quantity:       delta,
			Reference:      ref,
			OperationID:    op.ID,
			CreatedAt:      at,
		})
	}
	inflow := func(k domain.StockKey, q int) {
		balances[k] += q
		deltas[k] += q
	}
	outflow := func(k domain.StockKey, q int) error {
		if available := balances[k]; available < q {
			return apperror.NewInsufficientStockError(k.ProductID, k.LocationID, available, q)
		}
		balances[k] -= q
		deltas[k] -= q
		return nil
	}

	switch op.Kind {
	case domain.KindReceipt:
		for _, l := range op.Lines {
			inflow(domain.StockKey{ProductID: l.ProductID, LocationID: l.LocationID}, l.Quantity)
			record(l.ProductID, domain.MovementReceipt, "", l.LocationID, l.Quantity)
		}
	case domain.KindDelivery:
		for _, l := range op.Lines {
			if err := outflow(domain.StockKey{ProductID: l.ProductID, LocationID: l.LocationID}, l.Quantity); err != nil {
				return nil, nil, err
			}
			record(l.ProductID, domain.MovementDelivery, l.LocationID, "", -l.Quantity)
		}
	case domain.KindTransfer:
		h := op.Header.(domain.TransferHeader)
		for _, l := range op.Lines {
			from := domain.StockKey{ProductID: l.ProductID, LocationID: h.FromLocationID}
			to := domain.StockKey{ProductID: l.ProductID, LocationID: h.ToLocationID}
			if err := outflow(from, l.Quantity); err != nil {
				return nil, nil, err
			}
			inflow(to, l.Quantity)
			record(l.ProductID, domain.MovementTransfer, h.FromLocationID, h.ToLocationID, -l.Quantity)
			record(l.ProductID, domain.MovementTransfer, h.FromLocationID, h.ToLocationID, l.Quantity)
		}
	case domain.KindAdjustment:
		h := op.Header.(domain.AdjustmentHeader)
		k := h.Key()
		delta := h.NewQuantity - balances[k]
		balances[k] = h.NewQuantity
		deltas[k] += delta
		record(h.ProductID, domain.MovementAdjustment, "", h.LocationID, delta)
	}

	return records, deltas, nil
}

func malformed(op domain.Operation) error {
	return apperror.NewInternalError(fmt.Sprintf("Operação %s com cabeçalho inconsistente para o tipo %s", op.ID, op.Kind), nil)
}
