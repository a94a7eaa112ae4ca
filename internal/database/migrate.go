package database

import (
	"context"
	"fmt"

	"icarus-bknd/internal/database/migrations"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"
	"go.uber.org/zap"
)

// Migrate applies every pending embedded migration under a migration lock.
func Migrate(ctx context.Context, db *bun.DB, logr *zap.Logger) error {
	migrator := migrate.NewMigrator(db, migrations.Migrations)

	if err := migrator.Init(ctx); err != nil {
		return fmt.Errorf("init migrations: %w", err)
	}
	if err := migrator.Lock(ctx); err != nil {
		return fmt.Errorf("lock migrations: %w", err)
	}
	defer func() {
		if err := migrator.Unlock(ctx); err != nil {
			logr.Warn("failed to release migration lock", zap.Error(err))
		}
	}()

	group, err := migrator.Migrate(ctx)
	if err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	if group.IsZero() {
		logr.Info("database schema is up to date")
		return nil
	}

	logr.Info("applied migrations", zap.String("group", group.String()))
	return nil
}
