// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package logging

import (
	"testing"
)

func TestDebugLogger(t *testing.T) {
	func() {
		_ = recover()
		NewLogger("DEBUG")
	}()
}

func TestInvalidLevel(t *testing.T) {
	func() {
		_ = recover()
		NewLogger("invalid")
	}()
}

func TestNoopLoggerSecurity(t *testing.T) {
	l := NewNoopLogger()
	l.Security().SystemStartup()
	l.Security().TenantCreated("acme", "db_acme")
	l.Security().ResolutionDenied("unresolved_tenant", "no matching rule")
	if err := l.Sync(); err != nil {
		t.Errorf("unexpected sync error: %v", err)
	}
}
