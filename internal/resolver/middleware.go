// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package resolver

import (
	"errors"
	"net/http"

	"github.com/canonical/tenant-router/internal/db"
	"github.com/canonical/tenant-router/internal/logging"
	"github.com/canonical/tenant-router/internal/monitoring"
	"github.com/canonical/tenant-router/internal/tenantctx"
	"github.com/canonical/tenant-router/internal/tracing"
)

type Middleware struct {
	resolver ResolverInterface

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func NewMiddleware(resolver ResolverInterface, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *Middleware {
	return &Middleware{
		resolver: resolver,
		tracer:   tracer,
		monitor:  monitor,
		logger:   logger,
	}
}

// HTTPMiddleware resolves the tenant before any handler runs and attaches
// the tenant context to the request. The context lives on the derived
// request context only, so it cannot outlive the request on any exit path.
func (m *Middleware) HTTPMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, span := m.tracer.Start(r.Context(), "resolver.Middleware.HTTPMiddleware")
		defer span.End()

		tc, err := m.resolver.Resolve(r)
		if err != nil {
			m.reject(w, err)
			return
		}

		tctx, err := tenantctx.WithTenant(ctx, tc)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		next.ServeHTTP(w, r.WithContext(tctx))
	})
}

func (m *Middleware) reject(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrUnresolvedTenant):
		m.logger.Security().ResolutionDenied("unresolved_tenant", err.Error())
		http.Error(w, "unknown tenant", http.StatusNotFound)
	case errors.Is(err, db.ErrBindingNotReady):
		http.Error(w, "tenant unavailable", http.StatusServiceUnavailable)
	case errors.Is(err, ErrEmailDomainNotAllowed):
		http.Error(w, "forbidden", http.StatusForbidden)
	default:
		m.logger.Errorf("tenant resolution failed: %v", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
