// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package cmd

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"strings"
	"testing"

	sq "github.com/Masterminds/squirrel"
)

// errNoContext fails any execution path that drops the caller's context.
var errNoContext = errors.New("statement executed without a context")

// recordingRunner captures the context and query of each statement.
type recordingRunner struct {
	ctx     context.Context
	queries []string
}

func (r *recordingRunner) Exec(string, ...interface{}) (sql.Result, error) {
	return nil, errNoContext
}

func (r *recordingRunner) Query(string, ...interface{}) (*sql.Rows, error) {
	return nil, errNoContext
}

func (r *recordingRunner) ExecContext(ctx context.Context, query string, _ ...interface{}) (sql.Result, error) {
	r.ctx = ctx
	r.queries = append(r.queries, query)
	return driver.RowsAffected(1), nil
}

// statementRouter serves statements through the recording runner.
type statementRouter struct {
	runner *recordingRunner
}

func (s *statementRouter) Statement(context.Context) (sq.StatementBuilderType, error) {
	return sq.StatementBuilder.PlaceholderFormat(sq.Dollar).RunWith(s.runner), nil
}

func (s *statementRouter) Exec(context.Context, string, ...interface{}) (sql.Result, error) {
	return nil, errors.New("not implemented")
}

func (s *statementRouter) Query(context.Context, string, ...interface{}) (*sql.Rows, error) {
	return nil, errors.New("not implemented")
}

func (s *statementRouter) QueryRow(context.Context, string, ...interface{}) (sq.RowScanner, error) {
	return nil, errors.New("not implemented")
}

func (s *statementRouter) WithTx(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}

type jobCtxKey struct{}

func TestSweepRunsUnderJobContext(t *testing.T) {
	runner := new(recordingRunner)
	router := &statementRouter{runner: runner}

	ctx := context.WithValue(context.Background(), jobCtxKey{}, "job-7")
	if err := sweep(ctx, router, "job-7"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(runner.queries) != 1 || !strings.Contains(runner.queries[0], "sweep_markers") {
		t.Fatalf("unexpected statements: %v", runner.queries)
	}
	if runner.ctx == nil || runner.ctx.Value(jobCtxKey{}) != "job-7" {
		t.Error("the insert must carry the job's context")
	}
}
