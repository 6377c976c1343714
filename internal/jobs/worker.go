// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/canonical/tenant-router/internal/db"
	"github.com/canonical/tenant-router/internal/logging"
	"github.com/canonical/tenant-router/internal/monitoring"
	"github.com/canonical/tenant-router/internal/registry"
	"github.com/canonical/tenant-router/internal/tenantctx"
	"github.com/canonical/tenant-router/internal/tracing"
	"github.com/canonical/tenant-router/internal/types"
)

const readBlock = 5 * time.Second

// Worker consumes the job stream, re-establishes tenant context from the
// serialized identifier and runs the registered handler. A job whose tenant
// is Retired or Failed is dead-lettered with a reason, not retried.
type Worker struct {
	client   *redis.Client
	stream   string
	group    string
	consumer string

	registry       RegistryInterface
	defaultBinding string
	handlers       map[string]HandlerFunc

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

// Register installs the handler for a task name. Not safe to call after Run.
func (w *Worker) Register(task string, handler HandlerFunc) {
	w.handlers[task] = handler
}

func (w *Worker) deadStream() string {
	return w.stream + ":dead"
}

// ensureGroup creates the consumer group, tolerating a pre-existing one.
func (w *Worker) ensureGroup(ctx context.Context) error {
	err := w.client.XGroupCreateMkStream(ctx, w.stream, w.group, "0").Err()
	if err != nil && err.Error() != "BUSYGROUP Consumer Group name already exists" {
		return fmt.Errorf("failed to create consumer group: %w", err)
	}
	return nil
}

// Run consumes the stream until ctx is canceled.
func (w *Worker) Run(ctx context.Context) error {
	if err := w.ensureGroup(ctx); err != nil {
		return err
	}

	w.logger.Infof("worker %q consuming stream %q", w.consumer, w.stream)

	for {
		streams, err := w.client.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    w.group,
			Consumer: w.consumer,
			Streams:  []string{w.stream, ">"},
			Count:    10,
			Block:    readBlock,
		}).Result()

		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			if errors.Is(err, redis.Nil) {
				continue
			}
			w.logger.Errorf("failed to read job stream: %v", err)
			continue
		}

		for _, stream := range streams {
			for _, msg := range stream.Messages {
				w.handleMessage(ctx, msg)
			}
		}
	}
}

func (w *Worker) handleMessage(ctx context.Context, msg redis.XMessage) {
	job, err := decodeJob(msg)
	if err != nil {
		w.deadLetter(ctx, msg, nil, fmt.Sprintf("malformed job: %v", err))
		return
	}

	if err := w.process(ctx, job); err != nil {
		var dead *deadLetterError
		if errors.As(err, &dead) {
			w.deadLetter(ctx, msg, job, dead.reason)
			return
		}
		// Transient failure: leave unacked for redelivery.
		w.logger.Errorf("job %s task %q failed: %v", job.ID, job.Task, err)
		return
	}

	if err := w.client.XAck(ctx, w.stream, w.group, msg.ID).Err(); err != nil {
		w.logger.Errorf("failed to ack job %s: %v", job.ID, err)
	}
}

type deadLetterError struct {
	reason string
}

func (e *deadLetterError) Error() string {
	return e.reason
}

// process restores the tenant context and runs the handler. Context is
// confined to the handler's derived context, so it is cleared on every
// return path, panics included.
func (w *Worker) process(ctx context.Context, job *Job) (err error) {
	ctx, span := w.tracer.Start(ctx, "jobs.Worker.process")
	defer span.End()

	handler, ok := w.handlers[job.Task]
	if !ok {
		return &deadLetterError{reason: fmt.Sprintf("no handler for task %q", job.Task)}
	}

	tc, err := w.tenantContext(ctx, job)
	if err != nil {
		return err
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job %s panicked: %v", job.ID, r)
		}
	}()

	return tenantctx.RunAs(ctx, tc, func(tctx context.Context) error {
		return handler(tctx, job)
	})
}

func (w *Worker) tenantContext(ctx context.Context, job *Job) (tenantctx.Context, error) {
	if job.TenantID == "" {
		return tenantctx.Context{BindingName: w.defaultBinding}, nil
	}

	binding, err := w.registry.GetBinding(ctx, job.TenantID)
	if err != nil {
		if errors.Is(err, registry.ErrNotFound) {
			return tenantctx.Context{}, &deadLetterError{reason: fmt.Sprintf("tenant %q retired or unknown", job.TenantID)}
		}
		return tenantctx.Context{}, err
	}

	switch binding.State {
	case types.BindingReady:
		return tenantctx.Context{TenantID: job.TenantID, BindingName: binding.DatabaseName}, nil
	case types.BindingRetired, types.BindingFailed:
		return tenantctx.Context{}, &deadLetterError{reason: fmt.Sprintf("tenant %q binding in state %q", job.TenantID, binding.State)}
	default:
		// Pending or Provisioning may become Ready; let redelivery retry.
		return tenantctx.Context{}, fmt.Errorf("tenant %q binding in state %q: %w", job.TenantID, binding.State, db.ErrBindingNotReady)
	}
}

func (w *Worker) deadLetter(ctx context.Context, msg redis.XMessage, job *Job, reason string) {
	jobID := msg.ID
	if job != nil {
		jobID = job.ID
	}
	w.logger.Warnf("dead-lettering job %s: %s", jobID, reason)

	values := map[string]interface{}{"reason": reason}
	if data, ok := msg.Values["data"]; ok {
		values["data"] = data
	}

	if err := w.client.XAdd(ctx, &redis.XAddArgs{
		Stream: w.deadStream(),
		Values: values,
	}).Err(); err != nil {
		w.logger.Errorf("failed to dead-letter job %s: %v", jobID, err)
		return
	}

	if err := w.client.XAck(ctx, w.stream, w.group, msg.ID).Err(); err != nil {
		w.logger.Errorf("failed to ack dead-lettered job %s: %v", jobID, err)
	}
}

// ForEachReadyTenant runs fn once per Ready tenant, setting and clearing
// tenant context per iteration. One tenant's context is never held while
// another tenant is visited; per-tenant failures are collected, not fatal.
func (w *Worker) ForEachReadyTenant(ctx context.Context, fn func(ctx context.Context, binding *types.DatabaseBinding) error) error {
	bindings, err := w.registry.ListReadyBindings(ctx)
	if err != nil {
		return err
	}

	var errs []error
	for _, binding := range bindings {
		tc := tenantctx.Context{TenantID: binding.TenantID, BindingName: binding.DatabaseName}
		if err := tenantctx.RunAs(ctx, tc, func(tctx context.Context) error {
			return fn(tctx, binding)
		}); err != nil {
			errs = append(errs, fmt.Errorf("tenant %q: %w", binding.TenantID, err))
		}
	}

	return errors.Join(errs...)
}

func decodeJob(msg redis.XMessage) (*Job, error) {
	raw, ok := msg.Values["data"].(string)
	if !ok {
		return nil, errors.New("message has no data field")
	}

	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		return nil, err
	}
	return &job, nil
}

func NewWorker(
	client *redis.Client,
	stream, group, consumer string,
	reg RegistryInterface,
	defaultBinding string,
	tracer tracing.TracingInterface,
	monitor monitoring.MonitorInterface,
	logger logging.LoggerInterface,
) *Worker {
	w := new(Worker)

	w.client = client
	w.stream = stream
	w.group = group
	w.consumer = consumer

	w.registry = reg
	w.defaultBinding = defaultBinding
	w.handlers = make(map[string]HandlerFunc)

	w.tracer = tracer
	w.monitor = monitor
	w.logger = logger

	return w
}
