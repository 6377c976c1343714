// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package db

import (
	"context"
	"database/sql"

	sq "github.com/Masterminds/squirrel"
)

type DBClientInterface interface {
	Statement(context.Context) (sq.StatementBuilderType, error)
	TxStatement(context.Context) (TxInterface, sq.StatementBuilderType, error)
	BeginTx(context.Context) (context.Context, TxInterface, error)
	WithTx(context.Context, func(context.Context) error) error
	Close()
}

type TxInterface interface {
	Commit() error
	Rollback() error
	sq.BaseRunner
}

// PoolInterface hands out the cached client for a binding name. Acquire
// re-checks the binding's lifecycle state on every call so that routing
// stays gated on Ready.
type PoolInterface interface {
	Acquire(ctx context.Context, bindingName string) (*DBClient, error)
	Evict(bindingName string)
	Shutdown()
}

// RouterInterface is the single choke point for application data access.
// Every operation runs against the pool selected by the ambient tenant
// context; absence of context selects the default binding.
type RouterInterface interface {
	Statement(ctx context.Context) (sq.StatementBuilderType, error)
	Exec(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	Query(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRow(ctx context.Context, query string, args ...interface{}) (sq.RowScanner, error)
	WithTx(ctx context.Context, fn func(context.Context) error) error
}
