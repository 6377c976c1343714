// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

// Package jobs carries tenant context across the background-work process
// boundary. The queue is a Redis Stream with a consumer group, giving
// at-least-once delivery; the serialized payload holds the tenant
// identifier, nothing else of the context survives the hop.
package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"

	"github.com/canonical/tenant-router/internal/logging"
	"github.com/canonical/tenant-router/internal/monitoring"
	"github.com/canonical/tenant-router/internal/tenantctx"
	"github.com/canonical/tenant-router/internal/tracing"
)

var _ DispatcherInterface = (*Dispatcher)(nil)

type Dispatcher struct {
	client *redis.Client
	stream string

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

// Enqueue serializes the caller's ambient tenant identifier into the job
// payload and publishes it. Callers with no ambient context produce a
// platform job.
func (d *Dispatcher) Enqueue(ctx context.Context, task string, payload interface{}) (string, error) {
	ctx, span := d.tracer.Start(ctx, "jobs.Dispatcher.Enqueue")
	defer span.End()

	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("failed to generate job ID: %w", err)
	}

	job := Job{
		ID:         id.String(),
		Task:       task,
		EnqueuedAt: time.Now().UTC(),
	}

	if tc, ok := tenantctx.GetTenant(ctx); ok {
		job.TenantID = tc.TenantID
	}

	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return "", fmt.Errorf("failed to marshal job payload: %w", err)
		}
		job.Payload = raw
	}

	data, err := json.Marshal(&job)
	if err != nil {
		return "", fmt.Errorf("failed to marshal job: %w", err)
	}

	msgID, err := d.client.XAdd(ctx, &redis.XAddArgs{
		Stream: d.stream,
		Values: map[string]interface{}{"data": string(data)},
	}).Result()
	if err != nil {
		return "", fmt.Errorf("failed to enqueue job: %w", err)
	}

	d.logger.Debugf("enqueued job %s task %q tenant %q", job.ID, task, job.TenantID)
	return msgID, nil
}

func NewDispatcher(client *redis.Client, stream string, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *Dispatcher {
	d := new(Dispatcher)

	d.client = client
	d.stream = stream

	d.tracer = tracer
	d.monitor = monitor
	d.logger = logger

	return d
}
