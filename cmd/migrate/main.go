package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"stockmaster/config"
	"stockmaster/internal/pkg/database"
	"stockmaster/internal/pkg/logger"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var timeout time.Duration

	root := &cobra.Command{
		Use:          "migrate",
		Short:        "Gerencia o esquema PostgreSQL do StockMaster",
		SilenceUsage: true,
	}
	root.PersistentFlags().DurationVar(&timeout, "timeout", 2*time.Minute, "tempo máximo do comando")

	// Comandos do goose que recebem os argumentos como estão (ex: "up-to 3").
	for _, def := range []struct{ use, short string }{
		{"up", "Aplica todas as migrações pendentes"},
		{"up-to VERSION", "Aplica as migrações até a versão informada"},
		{"down", "Desfaz a última migração"},
		{"down-to VERSION", "Desfaz as migrações até a versão informada"},
		{"status", "Mostra o estado de cada migração"},
		{"version", "Mostra a versão atual do esquema"},
	} {
		command := firstWord(def.use)
		args := cobra.NoArgs
		if command != def.use {
			args = cobra.ExactArgs(1)
		}
		root.AddCommand(&cobra.Command{
			Use:   def.use,
			Short: def.short,
			Args:  args,
			RunE: func(cmd *cobra.Command, a []string) error {
				return withDB(cmd.Context(), timeout, func(ctx context.Context, db *sql.DB) error {
					if err := database.Migrate(ctx, db, command, a...); err != nil {
						return fmt.Errorf("goose %s: %w", command, err)
					}
					fmt.Fprintf(cmd.OutOrStdout(), "goose %s concluído\n", command)
					return nil
				})
			},
		})
	}

	root.AddCommand(&cobra.Command{
		Use:   "seed",
		Short: "Insere categorias, armazéns e localizações padrão",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withDB(cmd.Context(), timeout, func(ctx context.Context, db *sql.DB) error {
				if err := database.Seed(ctx, db); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "seed concluído")
				return nil
			})
		},
	})

	return root
}

// withDB carrega a configuração, abre o pool e executa fn dentro do timeout.
func withDB(parent context.Context, timeout time.Duration, fn func(ctx context.Context, db *sql.DB) error) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL deve ser definida")
	}
	log := logger.NewLogger(cfg.LogLevel, cfg.Environment)

	db, err := database.NewPostgresDB(cfg.DatabaseURL, log)
	if err != nil {
		return err
	}
	defer db.Close()

	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithTimeout(parent, timeout)
	defer cancel()
	return fn(ctx, db)
}

func firstWord(s string) string {
	for i, r := range s {
		if r == ' ' {
			return s[:i]
		}
	}
	return s
}
