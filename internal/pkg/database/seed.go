package database

import (
	"context"
	"database/sql"
	"fmt"
)

// Seed insere categorias, armazéns e localizações padrão. Pode ser executado várias vezes.
func Seed(ctx context.Context, db *sql.DB) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("falha ao iniciar transação de seed: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO categories (name, description) VALUES
		('Electronics', 'Electronic items'),
		('Furniture', 'Office and home furniture'),
		('Raw Materials', 'Manufacturing raw materials')
		ON CONFLICT (name) DO NOTHING`); err != nil {
		return fmt.Errorf("falha ao inserir categorias: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO warehouses (name, location) VALUES
		('Main Warehouse', 'Building A'),
		('Production Floor', 'Building B')
		ON CONFLICT (name) DO NOTHING`); err != nil {
		return fmt.Errorf("falha ao inserir armazéns: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO locations (warehouse_id, name, type)
		SELECT w.id, l.name, l.type
		FROM (VALUES
			('Main Warehouse', 'Rack A', 'rack'),
			('Main Warehouse', 'Rack B', 'rack'),
			('Production Floor', 'Production Area', 'floor')
		) AS l(warehouse, name, type)
		JOIN warehouses w ON w.name = l.warehouse
		ON CONFLICT (warehouse_id, name) DO NOTHING`); err != nil {
		return fmt.Errorf("falha ao inserir localizações: %w", err)
	}

	return tx.Commit()
}
