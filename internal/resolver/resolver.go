// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

// Package resolver turns inbound request metadata into a tenant context.
// Strategies run in configured order, first match wins; a request that
// resolves to nothing, or to a binding that cannot serve traffic, fails
// before any handler runs.
package resolver

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/canonical/tenant-router/internal/db"
	"github.com/canonical/tenant-router/internal/logging"
	"github.com/canonical/tenant-router/internal/monitoring"
	"github.com/canonical/tenant-router/internal/registry"
	"github.com/canonical/tenant-router/internal/tenantctx"
	"github.com/canonical/tenant-router/internal/tracing"
	"github.com/canonical/tenant-router/internal/types"
)

const (
	// AdminHeaderName marks platform-level requests that run on the default binding.
	AdminHeaderName = "X-Platform-Admin"
	// TenantHeaderName carries an explicit externally-issued tenant identifier.
	TenantHeaderName = "X-Tenant-Id"

	StrategyAdmin  = "admin"
	StrategyToken  = "token"
	StrategyDomain = "domain"
	StrategyHeader = "header"
)

var (
	// ErrUnresolvedTenant means no resolution strategy produced a tenant.
	// There is deliberately no fallback to the default tenant here.
	ErrUnresolvedTenant = errors.New("could not resolve tenant for request")
	// ErrEmailDomainNotAllowed rejects an authenticated principal whose email
	// domain is outside the tenant's allow-list.
	ErrEmailDomainNotAllowed = errors.New("principal email domain not allowed for tenant")
)

var _ ResolverInterface = (*Resolver)(nil)

type Resolver struct {
	registry       RegistryInterface
	principals     PrincipalSource
	order          []string
	defaultBinding string

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

// Resolve applies the configured strategies and returns a context value for
// the matched tenant with its binding verified Ready. Admin-marked requests
// short-circuit to the default binding.
func (rs *Resolver) Resolve(r *http.Request) (tenantctx.Context, error) {
	ctx, span := rs.tracer.Start(r.Context(), "resolver.Resolver.Resolve")
	defer span.End()

	var tenant *types.Tenant

	for _, strategy := range rs.order {
		var err error
		switch strategy {
		case StrategyAdmin:
			if r.Header.Get(AdminHeaderName) != "" {
				return tenantctx.Context{BindingName: rs.defaultBinding}, nil
			}
		case StrategyToken:
			if principal, ok := rs.principals.Principal(r); ok && principal.TenantExternalID != "" {
				tenant, err = rs.registry.LookupByExternalID(ctx, principal.TenantExternalID)
			}
		case StrategyDomain:
			if host := requestHost(r); host != "" {
				tenant, err = rs.registry.LookupByDomain(ctx, host)
			}
		case StrategyHeader:
			if externalID := r.Header.Get(TenantHeaderName); externalID != "" {
				tenant, err = rs.registry.LookupByExternalID(ctx, externalID)
			}
		default:
			return tenantctx.Context{}, fmt.Errorf("unknown resolution strategy %q", strategy)
		}

		if err != nil && !errors.Is(err, registry.ErrNotFound) {
			return tenantctx.Context{}, err
		}
		if tenant != nil {
			break
		}
	}

	if tenant == nil {
		return tenantctx.Context{}, ErrUnresolvedTenant
	}

	binding, err := rs.registry.GetBinding(ctx, tenant.ID)
	if err != nil {
		if errors.Is(err, registry.ErrNotFound) {
			return tenantctx.Context{}, fmt.Errorf("tenant %q has no binding: %w", tenant.ID, db.ErrBindingNotReady)
		}
		return tenantctx.Context{}, err
	}
	if binding.State != types.BindingReady {
		return tenantctx.Context{}, fmt.Errorf("tenant %q binding in state %q: %w", tenant.ID, binding.State, db.ErrBindingNotReady)
	}

	if err := rs.checkEmailDomain(r, tenant); err != nil {
		return tenantctx.Context{}, err
	}

	return tenantctx.Context{TenantID: tenant.ID, BindingName: binding.DatabaseName}, nil
}

// checkEmailDomain enforces the tenant's domain-restricted login policy,
// after resolution and before the context is considered set.
func (rs *Resolver) checkEmailDomain(r *http.Request, tenant *types.Tenant) error {
	if len(tenant.AllowedEmailDomains) == 0 {
		return nil
	}

	principal, ok := rs.principals.Principal(r)
	if !ok || principal.Email == "" {
		return nil
	}

	_, emailDomain, found := strings.Cut(principal.Email, "@")
	if !found {
		return fmt.Errorf("malformed principal email: %w", ErrEmailDomainNotAllowed)
	}

	for _, allowed := range tenant.AllowedEmailDomains {
		if strings.EqualFold(emailDomain, allowed) {
			return nil
		}
	}

	rs.logger.Security().ResolutionDenied("email_domain_not_allowed", fmt.Sprintf("tenant %s, domain %s", tenant.ID, emailDomain))
	return fmt.Errorf("tenant %q: %w", tenant.ID, ErrEmailDomainNotAllowed)
}

func requestHost(r *http.Request) string {
	host := r.Host
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	return host
}

func NewResolver(
	reg RegistryInterface,
	principals PrincipalSource,
	order []string,
	defaultBinding string,
	tracer tracing.TracingInterface,
	monitor monitoring.MonitorInterface,
	logger logging.LoggerInterface,
) *Resolver {
	rs := new(Resolver)

	rs.registry = reg
	rs.principals = principals
	rs.order = order
	rs.defaultBinding = defaultBinding

	rs.tracer = tracer
	rs.monitor = monitor
	rs.logger = logger

	return rs
}

var _ PrincipalSource = (*HeaderPrincipalSource)(nil)

const (
	principalTenantHeader = "X-Auth-Tenant-Id"
	principalEmailHeader  = "X-Auth-Email"
)

// HeaderPrincipalSource reads principal claims from headers set by the
// authenticating reverse proxy.
type HeaderPrincipalSource struct{}

func (s *HeaderPrincipalSource) Principal(r *http.Request) (*Principal, bool) {
	tenantID := r.Header.Get(principalTenantHeader)
	email := r.Header.Get(principalEmailHeader)
	if tenantID == "" && email == "" {
		return nil, false
	}
	return &Principal{TenantExternalID: tenantID, Email: email}, true
}

func NewHeaderPrincipalSource() *HeaderPrincipalSource {
	return new(HeaderPrincipalSource)
}
