// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package resolver

import (
	"context"
	"net/http"

	"github.com/canonical/tenant-router/internal/tenantctx"
	"github.com/canonical/tenant-router/internal/types"
)

type ResolverInterface interface {
	Resolve(r *http.Request) (tenantctx.Context, error)
}

// RegistryInterface is the slice of the tenant registry the resolver needs.
type RegistryInterface interface {
	LookupByDomain(ctx context.Context, domain string) (*types.Tenant, error)
	LookupByExternalID(ctx context.Context, externalID string) (*types.Tenant, error)
	GetBinding(ctx context.Context, tenantID string) (*types.DatabaseBinding, error)
}

// Principal is the authenticated identity attached to a request. Token
// verification belongs to the authentication collaborator; the resolver only
// consumes its verified claims.
type Principal struct {
	TenantExternalID string
	Email            string
}

// PrincipalSource extracts the verified principal from a request, if any.
type PrincipalSource interface {
	Principal(r *http.Request) (*Principal, bool)
}
