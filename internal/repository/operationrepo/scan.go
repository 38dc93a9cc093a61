package operationrepo

import (
	"database/sql"

	"stockmaster/internal/domain"
)

type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanOperation lê as colunas de operationColumns (mais extras opcionais) e monta o cabeçalho da variante.
func scanOperation(row rowScanner, op *domain.Operation, extra ...interface{}) error {
	var (
		supplier, customer, from, to, product, location, reason sql.NullString
		newQuantity                                             sql.NullInt64
		validatedAt                                             sql.NullTime
	)
	dest := []interface{}{
		&op.ID, &op.Kind, &op.Status, &supplier, &customer,
		&from, &to, &product, &location,
		&newQuantity, &reason, &op.CreatedAt, &validatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return err
	}

	if validatedAt.Valid {
		at := validatedAt.Time
		op.ValidatedAt = &at
	}

	switch op.Kind {
	case domain.KindReceipt:
		op.Header = domain.ReceiptHeader{SupplierName: supplier.String}
	case domain.KindDelivery:
		op.Header = domain.DeliveryHeader{CustomerName: customer.String}
	case domain.KindTransfer:
		op.Header = domain.TransferHeader{FromLocationID: from.String, ToLocationID: to.String}
	case domain.KindAdjustment:
		op.Header = domain.AdjustmentHeader{
			ProductID:   product.String,
			LocationID:  location.String,
			NewQuantity: int(newQuantity.Int64),
			Reason:      reason.String,
		}
	}
	return nil
}

type headerRow struct {
	supplier, customer, from, to, product, location, reason sql.NullString
	newQuantity                                             sql.NullInt64
}

// headerColumns achata o cabeçalho da variante nas colunas anuláveis da tabela operations.
func headerColumns(h domain.Header) headerRow {
	var row headerRow
	switch v := h.(type) {
	case domain.ReceiptHeader:
		row.supplier = nullString(v.SupplierName)
	case domain.DeliveryHeader:
		row.customer = nullString(v.CustomerName)
	case domain.TransferHeader:
		row.from = nullString(v.FromLocationID)
		row.to = nullString(v.ToLocationID)
	case domain.AdjustmentHeader:
		row.product = nullString(v.ProductID)
		row.location = nullString(v.LocationID)
		row.newQuantity = sql.NullInt64{Int64: int64(v.NewQuantity), Valid: true}
		row.reason = nullString(v.Reason)
	}
	return row
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
