// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package db

import (
	"context"
	"database/sql"

	sq "github.com/Masterminds/squirrel"

	"github.com/canonical/tenant-router/internal/logging"
	"github.com/canonical/tenant-router/internal/monitoring"
	"github.com/canonical/tenant-router/internal/tenantctx"
	"github.com/canonical/tenant-router/internal/tracing"
)

var _ RouterInterface = (*Router)(nil)

// contextRunner is satisfied by *sql.DB and *sql.Tx.
type contextRunner interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// Router redirects every data operation to the pool named by the ambient
// tenant context. Executions with no context run against the default binding,
// so registry maintenance and cross-tenant sweeps need no special casing.
type Router struct {
	pools          PoolInterface
	defaultBinding string

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func (r *Router) resolveBinding(ctx context.Context) string {
	if tc, ok := tenantctx.GetTenant(ctx); ok {
		return tc.BindingName
	}
	return r.defaultBinding
}

// route resolves the ambient binding and acquires its client, refusing a
// binding that differs from the one owning an open transaction.
func (r *Router) route(ctx context.Context) (*DBClient, error) {
	name := r.resolveBinding(ctx)

	if txBinding, ok := tenantctx.TransactionBinding(ctx); ok && txBinding != name {
		return nil, tenantctx.ErrContextSwitchInTransaction
	}

	return r.pools.Acquire(ctx, name)
}

// Statement provides a StatementBuilderType running on the ambient binding.
// Inside a WithTx callback the open transaction is reused.
func (r *Router) Statement(ctx context.Context) (sq.StatementBuilderType, error) {
	client, err := r.route(ctx)
	if err != nil {
		return sq.StatementBuilderType{}, err
	}

	return client.Statement(ctx)
}

func (r *Router) runner(ctx context.Context) (contextRunner, error) {
	client, err := r.route(ctx)
	if err != nil {
		return nil, err
	}

	if lt := lazyTxFromContext(ctx); lt != nil {
		tx, err := lt.get()
		if err != nil {
			return nil, err
		}
		if cr, ok := tx.(contextRunner); ok {
			return cr, nil
		}
	}

	if tx := TxFromContext(ctx); tx != nil {
		if cr, ok := tx.(contextRunner); ok {
			return cr, nil
		}
	}

	if err := client.reserve(ctx); err != nil {
		return nil, err
	}

	return client.db, nil
}

func (r *Router) Exec(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	runner, err := r.runner(ctx)
	if err != nil {
		return nil, err
	}
	return runner.ExecContext(ctx, query, args...)
}

func (r *Router) Query(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	runner, err := r.runner(ctx)
	if err != nil {
		return nil, err
	}
	return runner.QueryContext(ctx, query, args...)
}

func (r *Router) QueryRow(ctx context.Context, query string, args ...interface{}) (sq.RowScanner, error) {
	runner, err := r.runner(ctx)
	if err != nil {
		return nil, err
	}
	return runner.QueryRowContext(ctx, query, args...), nil
}

// WithTx executes fn inside a transaction on the ambient binding. The
// context handed to fn is marked with the owning binding, so any attempt to
// switch tenant inside fn fails with ErrContextSwitchInTransaction and the
// transaction rolls back. Nested calls on the same binding join the open
// transaction.
func (r *Router) WithTx(ctx context.Context, fn func(context.Context) error) error {
	name := r.resolveBinding(ctx)

	if txBinding, ok := tenantctx.TransactionBinding(ctx); ok {
		if txBinding != name {
			return tenantctx.ErrContextSwitchInTransaction
		}
		return fn(ctx)
	}

	client, err := r.pools.Acquire(ctx, name)
	if err != nil {
		return err
	}

	return client.WithTx(tenantctx.WithTransactionBinding(ctx, name), fn)
}

// NewRouter creates the routing interceptor over the given pool manager.
func NewRouter(pools PoolInterface, defaultBinding string, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *Router {
	r := new(Router)

	r.pools = pools
	r.defaultBinding = defaultBinding

	r.tracer = tracer
	r.monitor = monitor
	r.logger = logger

	return r
}
