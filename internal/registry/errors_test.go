// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package registry

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestIsDuplicateKeyError(t *testing.T) {
	if !IsDuplicateKeyError(&pgconn.PgError{Code: "23505"}) {
		t.Error("expected unique violation to be a duplicate key error")
	}
	if !IsDuplicateKeyError(fmt.Errorf("insert failed: %w", &pgconn.PgError{Code: "23505"})) {
		t.Error("expected wrapped unique violation to be a duplicate key error")
	}
	if IsDuplicateKeyError(&pgconn.PgError{Code: "23503"}) {
		t.Error("foreign key violations are not duplicate key errors")
	}
	if IsDuplicateKeyError(errors.New("plain error")) {
		t.Error("plain errors are not duplicate key errors")
	}
}

func TestIsForeignKeyViolation(t *testing.T) {
	if !IsForeignKeyViolation(&pgconn.PgError{Code: "23503"}) {
		t.Error("expected foreign key violation to be detected")
	}
	if IsForeignKeyViolation(&pgconn.PgError{Code: "23505"}) {
		t.Error("unique violations are not foreign key violations")
	}
}

func TestWrapDuplicateTenantError(t *testing.T) {
	wrapped := WrapDuplicateTenantError(&pgconn.PgError{Code: "23505"}, "tenant acme")
	if !errors.Is(wrapped, ErrDuplicateTenant) {
		t.Errorf("expected ErrDuplicateTenant, got %v", wrapped)
	}

	plain := errors.New("connection reset")
	if got := WrapDuplicateTenantError(plain, "tenant acme"); !errors.Is(got, plain) {
		t.Errorf("non-duplicate errors must pass through, got %v", got)
	}
}

func TestDomainEncoding(t *testing.T) {
	testCases := []struct {
		name    string
		domains []string
		encoded string
	}{
		{name: "empty", domains: nil, encoded: ""},
		{name: "single", domains: []string{"acme.com"}, encoded: "acme.com"},
		{name: "multiple", domains: []string{"acme.com", "acme.org"}, encoded: "acme.com,acme.org"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := joinDomains(tc.domains); got != tc.encoded {
				t.Errorf("joinDomains: got %q, want %q", got, tc.encoded)
			}

			decoded := splitDomains(tc.encoded)
			if len(decoded) != len(tc.domains) {
				t.Fatalf("splitDomains: got %v, want %v", decoded, tc.domains)
			}
			for i := range decoded {
				if decoded[i] != tc.domains[i] {
					t.Errorf("splitDomains[%d]: got %q, want %q", i, decoded[i], tc.domains[i])
				}
			}
		})
	}
}
