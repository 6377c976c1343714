// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

// Package tenantctx carries the ambient tenant of one logical execution.
//
// The carrier is the request/job context.Context, which is confined to the
// execution that derived it: concurrent executions never observe each
// other's tenant, with or without a shared worker pool. Application code
// never reads the tenant directly; the database router is the only reader.
package tenantctx

import (
	"context"
	"errors"
)

// ErrContextSwitchInTransaction is returned when the ambient tenant would
// change while a transaction is open on the current execution.
var ErrContextSwitchInTransaction = errors.New("tenant context switch inside open transaction")

// Define private custom types to avoid collisions
type contextKey struct{}
type txContextKey struct{}

var tenantKey = contextKey{}
var txBindingKey = txContextKey{}

// Context identifies the tenant of the current execution and caches the
// name of its database binding.
type Context struct {
	TenantID    string
	BindingName string
}

// WithTenant returns a new context bound to the given tenant. It fails with
// ErrContextSwitchInTransaction if a transaction is open on ctx for a
// different binding; re-asserting the same binding is a no-op and allowed.
func WithTenant(ctx context.Context, tc Context) (context.Context, error) {
	if binding, ok := TransactionBinding(ctx); ok && binding != tc.BindingName {
		return ctx, ErrContextSwitchInTransaction
	}
	return context.WithValue(ctx, tenantKey, &tc), nil
}

// GetTenant retrieves the ambient tenant context.
// Returns false if none is set, which implies the default binding.
func GetTenant(ctx context.Context) (Context, bool) {
	if tc, ok := ctx.Value(tenantKey).(*Context); ok && tc != nil {
		return *tc, true
	}
	return Context{}, false
}

// ClearTenant returns a context with no ambient tenant, shadowing any tenant
// set on a parent context. It fails inside an open transaction for the same
// reason a switch does.
func ClearTenant(ctx context.Context) (context.Context, error) {
	if _, ok := TransactionBinding(ctx); ok {
		return ctx, ErrContextSwitchInTransaction
	}
	return context.WithValue(ctx, tenantKey, (*Context)(nil)), nil
}

// RunAs executes fn under the given tenant context. The tenant is visible
// only to fn's derived context, so it cannot outlive the call on any exit
// path, including panics.
func RunAs(ctx context.Context, tc Context, fn func(context.Context) error) error {
	tctx, err := WithTenant(ctx, tc)
	if err != nil {
		return err
	}
	return fn(tctx)
}

// WithTransactionBinding marks ctx with the binding owning an open
// transaction. Set by the database router, never by application code.
func WithTransactionBinding(ctx context.Context, bindingName string) context.Context {
	return context.WithValue(ctx, txBindingKey, bindingName)
}

// TransactionBinding reports the binding of the transaction open on ctx, if any.
func TransactionBinding(ctx context.Context) (string, bool) {
	binding, ok := ctx.Value(txBindingKey).(string)
	return binding, ok
}
