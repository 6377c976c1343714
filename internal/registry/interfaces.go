// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package registry

import (
	"context"

	"github.com/canonical/tenant-router/internal/types"
)

type RegistryInterface interface {
	CreateTenant(ctx context.Context, spec *types.TenantSpec) (*types.Tenant, *types.DatabaseBinding, error)
	EnsureDefaultBinding(ctx context.Context, binding *types.DatabaseBinding) error
	GetTenantByID(ctx context.Context, id string) (*types.Tenant, error)
	LookupByDomain(ctx context.Context, domain string) (*types.Tenant, error)
	LookupByExternalID(ctx context.Context, externalID string) (*types.Tenant, error)
	ListTenants(ctx context.Context) ([]*types.Tenant, error)
	AddDomain(ctx context.Context, tenantID, domain string) (*types.Domain, error)
	GetBinding(ctx context.Context, tenantID string) (*types.DatabaseBinding, error)
	GetBindingByName(ctx context.Context, name string) (*types.DatabaseBinding, error)
	ListReadyBindings(ctx context.Context) ([]*types.DatabaseBinding, error)
	TransitionBindingState(ctx context.Context, bindingName string, from, to types.BindingState) error
	CheckAvailability(ctx context.Context) error
}
