// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package resolver

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/canonical/tenant-router/internal/db"
	"github.com/canonical/tenant-router/internal/logging"
	"github.com/canonical/tenant-router/internal/monitoring"
	"github.com/canonical/tenant-router/internal/registry"
	"github.com/canonical/tenant-router/internal/tenantctx"
	"github.com/canonical/tenant-router/internal/tracing"
	"github.com/canonical/tenant-router/internal/types"
)

type fakeRegistry struct {
	byDomain     map[string]*types.Tenant
	byExternalID map[string]*types.Tenant
	bindings     map[string]*types.DatabaseBinding
	err          error
}

func (f *fakeRegistry) LookupByDomain(_ context.Context, domain string) (*types.Tenant, error) {
	if f.err != nil {
		return nil, f.err
	}
	if t, ok := f.byDomain[domain]; ok {
		return t, nil
	}
	return nil, registry.ErrNotFound
}

func (f *fakeRegistry) LookupByExternalID(_ context.Context, externalID string) (*types.Tenant, error) {
	if f.err != nil {
		return nil, f.err
	}
	if t, ok := f.byExternalID[externalID]; ok {
		return t, nil
	}
	return nil, registry.ErrNotFound
}

func (f *fakeRegistry) GetBinding(_ context.Context, tenantID string) (*types.DatabaseBinding, error) {
	if b, ok := f.bindings[tenantID]; ok {
		return b, nil
	}
	return nil, registry.ErrNotFound
}

var defaultOrder = []string{StrategyAdmin, StrategyToken, StrategyDomain, StrategyHeader}

func newTestResolver(reg RegistryInterface, order []string) *Resolver {
	return NewResolver(
		reg,
		NewHeaderPrincipalSource(),
		order,
		"registry",
		tracing.NewNoopTracer(),
		monitoring.NewNoopMonitor(),
		logging.NewNoopLogger(),
	)
}

func acmeRegistry() *fakeRegistry {
	acme := &types.Tenant{ID: "acme", Name: "Acme"}
	return &fakeRegistry{
		byDomain:     map[string]*types.Tenant{"acme.example.com": acme},
		byExternalID: map[string]*types.Tenant{"org-acme": acme},
		bindings: map[string]*types.DatabaseBinding{
			"acme": {TenantID: "acme", DatabaseName: "tenant_acme", State: types.BindingReady},
		},
	}
}

func TestResolveByDomain(t *testing.T) {
	rs := newTestResolver(acmeRegistry(), defaultOrder)

	r := httptest.NewRequest(http.MethodGet, "http://acme.example.com/courses", nil)
	tc, err := rs.Resolve(r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tc.TenantID != "acme" || tc.BindingName != "tenant_acme" {
		t.Errorf("unexpected tenant context: %+v", tc)
	}
}

func TestResolveStripsPortFromHost(t *testing.T) {
	rs := newTestResolver(acmeRegistry(), defaultOrder)

	r := httptest.NewRequest(http.MethodGet, "http://acme.example.com:8443/courses", nil)
	tc, err := rs.Resolve(r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tc.TenantID != "acme" {
		t.Errorf("unexpected tenant: %+v", tc)
	}
}

func TestResolveByTokenClaim(t *testing.T) {
	rs := newTestResolver(acmeRegistry(), defaultOrder)

	r := httptest.NewRequest(http.MethodGet, "http://unknown.example.com/", nil)
	r.Header.Set("X-Auth-Tenant-Id", "org-acme")

	tc, err := rs.Resolve(r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tc.TenantID != "acme" {
		t.Errorf("unexpected tenant: %+v", tc)
	}
}

func TestResolveByHeader(t *testing.T) {
	rs := newTestResolver(acmeRegistry(), defaultOrder)

	r := httptest.NewRequest(http.MethodGet, "http://unknown.example.com/", nil)
	r.Header.Set(TenantHeaderName, "org-acme")

	tc, err := rs.Resolve(r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tc.TenantID != "acme" {
		t.Errorf("unexpected tenant: %+v", tc)
	}
}

// With two applicable identifiers the configured order decides; the later
// strategy is never consulted.
func TestResolvePrecedence(t *testing.T) {
	acme := &types.Tenant{ID: "acme"}
	globex := &types.Tenant{ID: "globex"}
	reg := &fakeRegistry{
		byDomain:     map[string]*types.Tenant{"acme.example.com": acme},
		byExternalID: map[string]*types.Tenant{"org-globex": globex},
		bindings: map[string]*types.DatabaseBinding{
			"acme":   {TenantID: "acme", DatabaseName: "tenant_acme", State: types.BindingReady},
			"globex": {TenantID: "globex", DatabaseName: "tenant_globex", State: types.BindingReady},
		},
	}

	r := httptest.NewRequest(http.MethodGet, "http://acme.example.com/", nil)
	r.Header.Set(TenantHeaderName, "org-globex")

	rs := newTestResolver(reg, []string{StrategyDomain, StrategyHeader})
	tc, err := rs.Resolve(r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tc.TenantID != "acme" {
		t.Errorf("expected the domain strategy to win, got %q", tc.TenantID)
	}

	rs = newTestResolver(reg, []string{StrategyHeader, StrategyDomain})
	tc, err = rs.Resolve(r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tc.TenantID != "globex" {
		t.Errorf("expected the header strategy to win, got %q", tc.TenantID)
	}
}

func TestResolveAdminMarker(t *testing.T) {
	rs := newTestResolver(acmeRegistry(), defaultOrder)

	r := httptest.NewRequest(http.MethodGet, "http://acme.example.com/api/v0/tenants", nil)
	r.Header.Set(AdminHeaderName, "true")

	tc, err := rs.Resolve(r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tc.TenantID != "" || tc.BindingName != "registry" {
		t.Errorf("admin requests must run on the default binding, got %+v", tc)
	}
}

func TestResolveUnresolvedTenant(t *testing.T) {
	rs := newTestResolver(acmeRegistry(), defaultOrder)

	r := httptest.NewRequest(http.MethodGet, "http://unknown.example.com/", nil)
	if _, err := rs.Resolve(r); !errors.Is(err, ErrUnresolvedTenant) {
		t.Errorf("expected ErrUnresolvedTenant, got %v", err)
	}
}

func TestResolveBindingNotReady(t *testing.T) {
	reg := acmeRegistry()
	reg.bindings["acme"].State = types.BindingProvisioning

	rs := newTestResolver(reg, defaultOrder)
	r := httptest.NewRequest(http.MethodGet, "http://acme.example.com/", nil)
	if _, err := rs.Resolve(r); !errors.Is(err, db.ErrBindingNotReady) {
		t.Errorf("expected ErrBindingNotReady, got %v", err)
	}
}

func TestResolveEmailDomainPolicy(t *testing.T) {
	reg := acmeRegistry()
	reg.byDomain["acme.example.com"].AllowedEmailDomains = []string{"acme.com"}

	rs := newTestResolver(reg, defaultOrder)

	testCases := []struct {
		name        string
		email       string
		expectedErr error
	}{
		{name: "allowed domain", email: "teacher@acme.com"},
		{name: "allowed domain case-insensitive", email: "teacher@ACME.com"},
		{name: "no principal email"},
		{name: "foreign domain", email: "teacher@globex.com", expectedErr: ErrEmailDomainNotAllowed},
		{name: "malformed email", email: "not-an-email", expectedErr: ErrEmailDomainNotAllowed},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "http://acme.example.com/", nil)
			if tc.email != "" {
				r.Header.Set("X-Auth-Email", tc.email)
			}

			_, err := rs.Resolve(r)
			if tc.expectedErr != nil {
				if !errors.Is(err, tc.expectedErr) {
					t.Errorf("expected %v, got %v", tc.expectedErr, err)
				}
			} else if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestResolveUnknownStrategy(t *testing.T) {
	rs := newTestResolver(acmeRegistry(), []string{"oracle"})

	r := httptest.NewRequest(http.MethodGet, "http://acme.example.com/", nil)
	if _, err := rs.Resolve(r); err == nil {
		t.Error("expected an error for an unknown strategy")
	}
}

func TestMiddlewareAttachesTenantContext(t *testing.T) {
	rs := newTestResolver(acmeRegistry(), defaultOrder)
	mdw := NewMiddleware(rs, tracing.NewNoopTracer(), monitoring.NewNoopMonitor(), logging.NewNoopLogger())

	var seen tenantctx.Context
	handler := mdw.HTTPMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = tenantctx.GetTenant(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	r := httptest.NewRequest(http.MethodGet, "http://acme.example.com/courses", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", w.Code)
	}
	if seen.TenantID != "acme" || seen.BindingName != "tenant_acme" {
		t.Errorf("handler saw wrong tenant context: %+v", seen)
	}
}

func TestMiddlewareRejections(t *testing.T) {
	testCases := []struct {
		name           string
		setupRegistry  func(*fakeRegistry)
		request        func() *http.Request
		expectedStatus int
	}{
		{
			name:          "unknown tenant",
			setupRegistry: func(*fakeRegistry) {},
			request: func() *http.Request {
				return httptest.NewRequest(http.MethodGet, "http://unknown.example.com/", nil)
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name: "binding not ready",
			setupRegistry: func(reg *fakeRegistry) {
				reg.bindings["acme"].State = types.BindingPending
			},
			request: func() *http.Request {
				return httptest.NewRequest(http.MethodGet, "http://acme.example.com/", nil)
			},
			expectedStatus: http.StatusServiceUnavailable,
		},
		{
			name: "email domain not allowed",
			setupRegistry: func(reg *fakeRegistry) {
				reg.byDomain["acme.example.com"].AllowedEmailDomains = []string{"acme.com"}
			},
			request: func() *http.Request {
				r := httptest.NewRequest(http.MethodGet, "http://acme.example.com/", nil)
				r.Header.Set("X-Auth-Email", "teacher@globex.com")
				return r
			},
			expectedStatus: http.StatusForbidden,
		},
		{
			name: "registry failure",
			setupRegistry: func(reg *fakeRegistry) {
				reg.err = registry.ErrRegistryUnavailable
			},
			request: func() *http.Request {
				return httptest.NewRequest(http.MethodGet, "http://acme.example.com/", nil)
			},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			reg := acmeRegistry()
			tc.setupRegistry(reg)

			rs := newTestResolver(reg, defaultOrder)
			mdw := NewMiddleware(rs, tracing.NewNoopTracer(), monitoring.NewNoopMonitor(), logging.NewNoopLogger())

			handler := mdw.HTTPMiddleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
				t.Error("handler must not run on a rejected request")
			}))

			w := httptest.NewRecorder()
			handler.ServeHTTP(w, tc.request())

			if w.Code != tc.expectedStatus {
				t.Errorf("expected status %d, got %d", tc.expectedStatus, w.Code)
			}
		})
	}
}
