// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package jobs

import (
	"context"
	"encoding/json"
	"time"

	"github.com/canonical/tenant-router/internal/types"
)

// Job is the unit of background work. Jobs enqueued without an ambient
// tenant context are platform jobs and bind to the default tenant on
// execution.
type Job struct {
	ID         string          `json:"id"`
	Task       string          `json:"task"`
	TenantID   string          `json:"tenant_id"`
	Payload    json.RawMessage `json:"payload"`
	EnqueuedAt time.Time       `json:"enqueued_at"`
}

// HandlerFunc executes a job under the tenant context restored by the worker.
type HandlerFunc func(ctx context.Context, job *Job) error

type DispatcherInterface interface {
	Enqueue(ctx context.Context, task string, payload interface{}) (string, error)
}

// RegistryInterface is the slice of the tenant registry the worker needs to
// re-establish and gate tenant context.
type RegistryInterface interface {
	GetBinding(ctx context.Context, tenantID string) (*types.DatabaseBinding, error)
	ListReadyBindings(ctx context.Context) ([]*types.DatabaseBinding, error)
}
