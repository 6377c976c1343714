// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package tenant

import (
	"context"

	"github.com/canonical/tenant-router/internal/types"
)

type ServiceInterface interface {
	CreateTenant(ctx context.Context, spec *types.TenantSpec) (*types.Tenant, error)
	GetTenant(ctx context.Context, id string) (*types.Tenant, error)
	ListTenants(ctx context.Context) ([]*types.Tenant, error)
	RetireTenant(ctx context.Context, id string) error
	AddDomain(ctx context.Context, tenantID, domain string) (*types.Domain, error)
}

type RegistryInterface interface {
	CreateTenant(ctx context.Context, spec *types.TenantSpec) (*types.Tenant, *types.DatabaseBinding, error)
	GetTenantByID(ctx context.Context, id string) (*types.Tenant, error)
	ListTenants(ctx context.Context) ([]*types.Tenant, error)
	AddDomain(ctx context.Context, tenantID, domain string) (*types.Domain, error)
	GetBinding(ctx context.Context, tenantID string) (*types.DatabaseBinding, error)
	TransitionBindingState(ctx context.Context, bindingName string, from, to types.BindingState) error
}

type ProvisionerInterface interface {
	Provision(ctx context.Context, binding *types.DatabaseBinding) error
}

// PoolEvictor drops the cached connection pool of a retired binding.
type PoolEvictor interface {
	Evict(bindingName string)
}
