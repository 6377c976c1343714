// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package registry

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// Sentinel errors for registry operations.
var (
	ErrNotFound = errors.New("resource not found")
	// ErrDuplicateTenant means the tenant identifier or database name collides
	// with a non-retired binding.
	ErrDuplicateTenant = errors.New("tenant or database name already exists")
	// ErrStateConflict means a compare-and-set state transition found the
	// binding in a different state than expected.
	ErrStateConflict = errors.New("binding state transition conflict")
	// ErrRegistryUnavailable means the default database is unreachable. The
	// process should reject traffic rather than guess.
	ErrRegistryUnavailable = errors.New("tenant registry unavailable")
)

// PostgreSQL error codes
const (
	pgErrCodeUniqueViolation     = "23505"
	pgErrCodeForeignKeyViolation = "23503"
)

// IsDuplicateKeyError checks if the error is a PostgreSQL unique constraint violation.
func IsDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgErrCodeUniqueViolation
	}
	return false
}

// IsForeignKeyViolation checks if the error is a PostgreSQL foreign key violation.
func IsForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgErrCodeForeignKeyViolation
	}
	return false
}

// WrapDuplicateTenantError maps a unique violation to ErrDuplicateTenant with context.
func WrapDuplicateTenantError(err error, context string) error {
	if !IsDuplicateKeyError(err) {
		return err
	}
	return fmt.Errorf("%s: %w", context, ErrDuplicateTenant)
}
