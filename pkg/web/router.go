// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package web

import (
	"net/http"

	chi "github.com/go-chi/chi/v5"
	middleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/canonical/tenant-router/internal/logging"
	"github.com/canonical/tenant-router/internal/monitoring"
	"github.com/canonical/tenant-router/internal/resolver"
	"github.com/canonical/tenant-router/internal/tracing"
	"github.com/canonical/tenant-router/pkg/metrics"
	"github.com/canonical/tenant-router/pkg/status"
	"github.com/canonical/tenant-router/pkg/tenant"
)

// NewRouter wires the HTTP surface. Operational endpoints (metrics, status)
// and the admin tenant API sit outside the tenant resolution path; resolved
// application routes are mounted by the caller under the resolver middleware.
func NewRouter(
	tenantAPI *tenant.API,
	statusAPI *status.API,
	resolverMdw *resolver.Middleware,
	appHandler http.Handler,
	tracer tracing.TracingInterface,
	monitor monitoring.MonitorInterface,
	logger logging.LoggerInterface,
) http.Handler {
	router := chi.NewMux()

	middlewares := make(chi.Middlewares, 0)
	middlewares = append(
		middlewares,
		middleware.RequestID,
		monitoring.NewMiddleware(monitor, logger).ResponseTime(),
		cors.Handler(cors.Options{AllowedOrigins: []string{"*"}}),
	)

	router.Use(middlewares...)

	metrics.NewAPI(logger).RegisterEndpoints(router)
	statusAPI.RegisterEndpoints(router)
	tenantAPI.RegisterEndpoints(router)

	if appHandler != nil {
		router.Mount("/", resolverMdw.HTTPMiddleware(appHandler))
	}

	return tracing.NewMiddleware(monitor, logger).OpenTelemetry(router)
}
