// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package db

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"testing"
	"time"

	"github.com/canonical/tenant-router/internal/logging"
	"github.com/canonical/tenant-router/internal/monitoring"
	"github.com/canonical/tenant-router/internal/tracing"
)

// brokenConnector refuses every connection attempt.
type brokenConnector struct {
	err error
}

func (c brokenConnector) Connect(context.Context) (driver.Conn, error) {
	return nil, c.err
}

func (c brokenConnector) Driver() driver.Driver { return nil }

// stuckConnector holds every connection attempt until the context expires,
// standing in for a pool with no free connections.
type stuckConnector struct{}

func (stuckConnector) Connect(ctx context.Context) (driver.Conn, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func (stuckConnector) Driver() driver.Driver { return nil }

// fixedPool always hands out the one client it was built with.
type fixedPool struct {
	client *DBClient
}

func (f *fixedPool) Acquire(context.Context, string) (*DBClient, error) {
	return f.client, nil
}

func (f *fixedPool) Evict(string) {}
func (f *fixedPool) Shutdown()    {}

func TestStatementFailsWhenTransactionCannotStart(t *testing.T) {
	beginErr := errors.New("connection refused")
	client := &DBClient{
		name:   "registry",
		db:     sql.OpenDB(brokenConnector{err: beginErr}),
		logger: logging.NewNoopLogger(),
	}

	var stmtErr error
	err := client.WithTx(context.Background(), func(txCtx context.Context) error {
		_, stmtErr = client.Statement(txCtx)
		return stmtErr
	})

	if stmtErr == nil {
		t.Fatal("expected an error from Statement inside the transaction")
	}
	if !errors.Is(stmtErr, beginErr) {
		t.Errorf("expected the begin failure, got %v", stmtErr)
	}
	if !errors.Is(err, beginErr) {
		t.Errorf("transaction body error must surface from WithTx, got %v", err)
	}
}

func TestReserveReportsPoolExhaustion(t *testing.T) {
	client := &DBClient{
		name:           "tenant_acme",
		db:             sql.OpenDB(stuckConnector{}),
		acquireTimeout: 20 * time.Millisecond,
		logger:         logging.NewNoopLogger(),
	}

	if err := client.reserve(context.Background()); !errors.Is(err, ErrPoolExhausted) {
		t.Errorf("expected ErrPoolExhausted, got %v", err)
	}
}

func TestReserveKeepsCallerDeadlineErrors(t *testing.T) {
	client := &DBClient{
		name:           "tenant_acme",
		db:             sql.OpenDB(stuckConnector{}),
		acquireTimeout: time.Second,
		logger:         logging.NewNoopLogger(),
	}

	// The caller's own deadline fires well before the acquire timeout; that
	// is not pool exhaustion.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	err := client.reserve(ctx)
	if errors.Is(err, ErrPoolExhausted) {
		t.Error("a caller deadline must not be reported as pool exhaustion")
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected the caller's deadline error, got %v", err)
	}
}

func TestRouterExecReportsPoolExhaustion(t *testing.T) {
	client := &DBClient{
		name:           "tenant_acme",
		db:             sql.OpenDB(stuckConnector{}),
		acquireTimeout: 20 * time.Millisecond,
		logger:         logging.NewNoopLogger(),
	}
	router := NewRouter(&fixedPool{client: client}, "registry", tracing.NewNoopTracer(), monitoring.NewNoopMonitor(), logging.NewNoopLogger())

	if _, err := router.Exec(context.Background(), "SELECT 1"); !errors.Is(err, ErrPoolExhausted) {
		t.Errorf("expected ErrPoolExhausted, got %v", err)
	}
}
