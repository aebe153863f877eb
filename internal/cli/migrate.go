package cli

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"exam-runner/internal/config"
	stubmigrations "exam-runner/internal/stub/postgres/migrations"
	"github.com/spf13/cobra"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"
)

// NewMigrateStubCmd applies the stub store's database migrations.
func NewMigrateStubCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate-stub",
		Short: "Run stub store database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			return runStubMigrationsWithConfig(cmd.Context(), cfg)
		},
	}
}

func runStubMigrationsWithConfig(ctx context.Context, cfg config.Config) error {
	if cfg.Stub.Postgres.URL == "" {
		return fmt.Errorf("stub postgres url not configured")
	}

	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.Stub.Postgres.URL)))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	migrator := migrate.NewMigrator(db, stubmigrations.Migrations)

	if err := migrator.Init(ctx); err != nil {
		return err
	}

	if _, err := migrator.Migrate(ctx); err != nil {
		return err
	}
	log.Printf("stub migrations applied")
	return nil
}
