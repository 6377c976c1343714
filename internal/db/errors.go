// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package db

import (
	"errors"
)

// Sentinel errors for routed database operations.
var (
	// ErrBindingNotReady rejects any operation against a binding whose
	// lifecycle state is not Ready. No query reaches the database.
	ErrBindingNotReady = errors.New("database binding is not ready")
	// ErrBindingNotFound means the ambient binding has no registry entry.
	ErrBindingNotFound = errors.New("database binding not found")
	// ErrPoolExhausted means pool acquisition timed out. Callers may retry.
	ErrPoolExhausted = errors.New("connection pool exhausted")
)
