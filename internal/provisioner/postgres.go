// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package provisioner

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/canonical/tenant-router/internal/logging"
	"github.com/canonical/tenant-router/internal/pool"
	"github.com/canonical/tenant-router/internal/types"
)

const pgErrCodeDuplicateDatabase = "42P04"

var _ DatabaseCreator = (*PostgresCreator)(nil)

// PostgresCreator creates tenant databases through an administrative
// connection whose credentials authorize CREATE DATABASE.
type PostgresCreator struct {
	adminDSN string
	logger   logging.LoggerInterface
}

// EnsureDatabase creates the binding's database if the server catalog does
// not list it. A database created concurrently by another worker is accepted.
func (c *PostgresCreator) EnsureDatabase(ctx context.Context, binding *types.DatabaseBinding) error {
	conn, err := pgx.Connect(ctx, c.adminDSN)
	if err != nil {
		return fmt.Errorf("failed to connect to admin database: %w", err)
	}
	defer conn.Close(context.Background())

	var exists bool
	err = conn.QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM pg_database WHERE datname = $1)", binding.DatabaseName).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to query pg_database: %w", err)
	}
	if exists {
		c.logger.Debugf("database %q already exists", binding.DatabaseName)
		return nil
	}

	// CREATE DATABASE cannot be parameterized; the name is quoted as an identifier.
	_, err = conn.Exec(ctx, fmt.Sprintf("CREATE DATABASE %s", pgx.Identifier{binding.DatabaseName}.Sanitize()))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgErrCodeDuplicateDatabase {
			return nil
		}
		return fmt.Errorf("failed to create database %q: %w", binding.DatabaseName, err)
	}

	return nil
}

func NewPostgresCreator(adminDSN string, logger logging.LoggerInterface) *PostgresCreator {
	return &PostgresCreator{
		adminDSN: adminDSN,
		logger:   logger,
	}
}

var _ MigrationRunner = (*GooseMigrator)(nil)

// GooseMigrator replays an embedded migration set against a tenant database.
// Goose records applied versions in the target database, so a replay against
// an already-migrated database is a no-op and provisioning stays idempotent.
type GooseMigrator struct {
	migrations fs.FS
	logger     logging.LoggerInterface
}

func (m *GooseMigrator) Run(ctx context.Context, binding *types.DatabaseBinding) error {
	config, err := pgx.ParseConfig(pool.BindingDSN(binding))
	if err != nil {
		return fmt.Errorf("DSN validation failed for binding %q: %w", binding.DatabaseName, err)
	}

	db := stdlib.OpenDB(*config)
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to connect to database %q: %w", binding.DatabaseName, err)
	}

	provider, err := goose.NewProvider(goose.DialectPostgres, db, m.migrations)
	if err != nil {
		return fmt.Errorf("failed to create goose provider: %w", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return err
	}

	m.logger.Debugf("applied %d migrations to database %q", len(results), binding.DatabaseName)
	return nil
}

func NewGooseMigrator(migrations fs.FS, logger logging.LoggerInterface) *GooseMigrator {
	return &GooseMigrator{
		migrations: migrations,
		logger:     logger,
	}
}
