package database

import (
	"context"
	"database/sql"
	"embed"

	"github.com/pressly/goose/v3"
)

// Migrations contém os arquivos SQL versionados do esquema.
//
//go:embed migrations/*.sql
var Migrations embed.FS

// MigrationsDir é o diretório dentro de Migrations.
const MigrationsDir = "migrations"

// Migrate executa um comando do goose ("up", "down", "status", ...) com as migrações embutidas.
func Migrate(ctx context.Context, db *sql.DB, command string, args ...string) error {
	goose.SetBaseFS(Migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	return goose.RunContext(ctx, command, db, MigrationsDir, args...)
}
