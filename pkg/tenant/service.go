// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package tenant

import (
	"context"
	"fmt"

	"github.com/canonical/tenant-router/internal/logging"
	"github.com/canonical/tenant-router/internal/monitoring"
	"github.com/canonical/tenant-router/internal/tracing"
	"github.com/canonical/tenant-router/internal/types"
)

// BindingDefaults fills database location and credentials for tenant specs
// that do not override them.
type BindingDefaults struct {
	Host     string
	Port     int
	Username string
	Password string
}

type Service struct {
	registry    RegistryInterface
	provisioner ProvisionerInterface
	pools       PoolEvictor
	defaults    BindingDefaults

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func NewService(
	registry RegistryInterface,
	provisioner ProvisionerInterface,
	pools PoolEvictor,
	defaults BindingDefaults,
	tracer tracing.TracingInterface,
	monitor monitoring.MonitorInterface,
	logger logging.LoggerInterface,
) *Service {
	return &Service{
		registry:    registry,
		provisioner: provisioner,
		pools:       pools,
		defaults:    defaults,
		tracer:      tracer,
		monitor:     monitor,
		logger:      logger,
	}
}

func (s *Service) applyDefaults(spec *types.TenantSpec) {
	if spec.Host == "" {
		spec.Host = s.defaults.Host
	}
	if spec.Port == 0 {
		spec.Port = s.defaults.Port
	}
	if spec.Username == "" {
		spec.Username = s.defaults.Username
	}
	if spec.Password == "" {
		spec.Password = s.defaults.Password
	}
}

// CreateTenant registers the tenant with a Pending binding and runs the
// provisioning sequence synchronously. A registry collision surfaces as
// ErrDuplicateTenant before anything is provisioned; a provisioning failure
// leaves the binding Failed for operator retry.
func (s *Service) CreateTenant(ctx context.Context, spec *types.TenantSpec) (*types.Tenant, error) {
	ctx, span := s.tracer.Start(ctx, "tenant.Service.CreateTenant")
	defer span.End()

	s.applyDefaults(spec)

	tenant, binding, err := s.registry.CreateTenant(ctx, spec)
	if err != nil {
		return nil, fmt.Errorf("failed to create tenant: %w", err)
	}

	s.logger.Security().TenantCreated(tenant.ID, binding.DatabaseName)

	if err := s.provisioner.Provision(ctx, binding); err != nil {
		return nil, err
	}

	return tenant, nil
}

func (s *Service) GetTenant(ctx context.Context, id string) (*types.Tenant, error) {
	ctx, span := s.tracer.Start(ctx, "tenant.Service.GetTenant")
	defer span.End()

	return s.registry.GetTenantByID(ctx, id)
}

func (s *Service) ListTenants(ctx context.Context) ([]*types.Tenant, error) {
	ctx, span := s.tracer.Start(ctx, "tenant.Service.ListTenants")
	defer span.End()

	return s.registry.ListTenants(ctx)
}

// RetireTenant marks the tenant's binding Retired and evicts its pool. The
// physical database is left intact; dropping it is operator tooling.
func (s *Service) RetireTenant(ctx context.Context, id string) error {
	ctx, span := s.tracer.Start(ctx, "tenant.Service.RetireTenant")
	defer span.End()

	binding, err := s.registry.GetBinding(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get binding for tenant %q: %w", id, err)
	}

	if err := s.registry.TransitionBindingState(ctx, binding.DatabaseName, binding.State, types.BindingRetired); err != nil {
		return fmt.Errorf("failed to retire binding %q: %w", binding.DatabaseName, err)
	}

	s.pools.Evict(binding.DatabaseName)
	s.logger.Security().TenantRetired(id)

	return nil
}

func (s *Service) AddDomain(ctx context.Context, tenantID, domain string) (*types.Domain, error) {
	ctx, span := s.tracer.Start(ctx, "tenant.Service.AddDomain")
	defer span.End()

	return s.registry.AddDomain(ctx, tenantID, domain)
}
