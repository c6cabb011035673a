package database

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"

	"github.com/redmonkez12/todo-api/migrations"
)

func newMigrator(ctx context.Context, db *bun.DB) (*migrate.Migrator, error) {
	m := migrate.NewMigrator(db, migrations.Migrations)
	if err := m.Init(ctx); err != nil {
		return nil, fmt.Errorf("failed to init migrations: %w", err)
	}
	return m, nil
}

// Migrate applies every pending migration as one group
func Migrate(ctx context.Context, db *bun.DB) (*migrate.MigrationGroup, error) {
	m, err := newMigrator(ctx, db)
	if err != nil {
		return nil, err
	}

	if err := m.Lock(ctx); err != nil {
		return nil, fmt.Errorf("failed to lock migrations: %w", err)
	}
	defer m.Unlock(ctx) //nolint:errcheck

	group, err := m.Migrate(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to migrate: %w", err)
	}
	return group, nil
}

// Rollback reverts the last applied migration group
func Rollback(ctx context.Context, db *bun.DB) (*migrate.MigrationGroup, error) {
	m, err := newMigrator(ctx, db)
	if err != nil {
		return nil, err
	}

	if err := m.Lock(ctx); err != nil {
		return nil, fmt.Errorf("failed to lock migrations: %w", err)
	}
	defer m.Unlock(ctx) //nolint:errcheck

	group, err := m.Rollback(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to rollback: %w", err)
	}
	return group, nil
}

// Status lists applied and pending migrations
func Status(ctx context.Context, db *bun.DB) (applied, pending migrate.MigrationSlice, err error) {
	m, err := newMigrator(ctx, db)
	if err != nil {
		return nil, nil, err
	}

	ms, err := m.MigrationsWithStatus(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read migration status: %w", err)
	}
	return ms.Applied(), ms.Unapplied(), nil
}
