// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package provisioner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/canonical/tenant-router/internal/logging"
	"github.com/canonical/tenant-router/internal/monitoring"
	"github.com/canonical/tenant-router/internal/registry"
	"github.com/canonical/tenant-router/internal/tracing"
	"github.com/canonical/tenant-router/internal/types"
)

// ErrProvisioningFailed means database creation or migration failed; the
// binding is left in Failed and an operator must reset it to Pending to retry.
var ErrProvisioningFailed = errors.New("tenant database provisioning failed")

// markTimeout bounds the state transition recording a run's outcome.
const markTimeout = 10 * time.Second

var _ ProvisionerInterface = (*Provisioner)(nil)

type Provisioner struct {
	registry RegistryInterface
	creator  DatabaseCreator
	migrator MigrationRunner
	timeout  time.Duration

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

// Provision takes a Pending binding through database creation and schema
// migration. The Pending->Provisioning compare-and-set serializes concurrent
// callers on one binding; a CAS loss returns ErrStateConflict and nothing runs.
//
// Once past the CAS the sequence is detached from the caller's cancellation:
// it runs to Ready or Failed under its own deadline, so a dropped request
// cannot leave a half-migrated database behind an owned binding.
func (p *Provisioner) Provision(ctx context.Context, binding *types.DatabaseBinding) error {
	ctx, span := p.tracer.Start(ctx, "provisioner.Provisioner.Provision")
	defer span.End()

	if err := p.registry.TransitionBindingState(ctx, binding.DatabaseName, types.BindingPending, types.BindingProvisioning); err != nil {
		if errors.Is(err, registry.ErrStateConflict) {
			p.logger.Debugf("binding %q not pending, another worker owns it", binding.DatabaseName)
		}
		return err
	}

	runCtx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	if err := p.run(runCtx, binding); err != nil {
		// runCtx may be past its deadline at this point, which is one of the
		// ways run fails. The Failed mark gets its own deadline so the
		// binding cannot be stranded in Provisioning.
		if terr := p.markBinding(binding.DatabaseName, types.BindingFailed); terr != nil {
			p.logger.Errorf("failed to mark binding %q failed: %v", binding.DatabaseName, terr)
		}
		return fmt.Errorf("binding %q: %w: %v", binding.DatabaseName, ErrProvisioningFailed, err)
	}

	if err := p.markBinding(binding.DatabaseName, types.BindingReady); err != nil {
		return fmt.Errorf("failed to mark binding %q ready: %w", binding.DatabaseName, err)
	}

	p.logger.Infof("provisioned database %q for tenant %q", binding.DatabaseName, binding.TenantID)
	return nil
}

// markBinding records the outcome of a provisioning run under a fresh
// deadline, independent of how much of the run budget is left.
func (p *Provisioner) markBinding(bindingName string, to types.BindingState) error {
	ctx, cancel := context.WithTimeout(context.Background(), markTimeout)
	defer cancel()

	return p.registry.TransitionBindingState(ctx, bindingName, types.BindingProvisioning, to)
}

func (p *Provisioner) run(ctx context.Context, binding *types.DatabaseBinding) error {
	if err := p.creator.EnsureDatabase(ctx, binding); err != nil {
		return fmt.Errorf("ensure database: %w", err)
	}

	if err := p.migrator.Run(ctx, binding); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	return nil
}

func NewProvisioner(
	reg RegistryInterface,
	creator DatabaseCreator,
	migrator MigrationRunner,
	timeout time.Duration,
	tracer tracing.TracingInterface,
	monitor monitoring.MonitorInterface,
	logger logging.LoggerInterface,
) *Provisioner {
	p := new(Provisioner)

	p.registry = reg
	p.creator = creator
	p.migrator = migrator
	p.timeout = timeout

	p.tracer = tracer
	p.monitor = monitor
	p.logger = logger

	return p
}
