// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package status

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/canonical/tenant-router/internal/logging"
	"github.com/canonical/tenant-router/internal/monitoring"
	"github.com/canonical/tenant-router/internal/tracing"
)

// RegistryChecker reports whether the default database is reachable. When it
// is not, the process degrades to rejecting traffic rather than guessing.
type RegistryChecker interface {
	CheckAvailability(ctx context.Context) error
}

type API struct {
	registry RegistryChecker

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func NewAPI(registry RegistryChecker, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *API {
	return &API{
		registry: registry,
		tracer:   tracer,
		monitor:  monitor,
		logger:   logger,
	}
}

func (a *API) RegisterEndpoints(mux *chi.Mux) {
	mux.Get("/api/v0/status", a.alive)
	mux.Get("/api/v0/version", a.version)
}

func (a *API) alive(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "status.API.alive")
	defer span.End()

	availability := 1.0
	code := http.StatusOK
	message := "ok"

	if err := a.registry.CheckAvailability(ctx); err != nil {
		a.logger.Errorf("registry availability check failed: %v", err)
		availability = 0
		code = http.StatusServiceUnavailable
		message = "tenant registry unavailable"
	}

	if err := a.monitor.SetDependencyAvailability(map[string]string{"component": "registry"}, availability); err != nil {
		a.logger.Errorf("failed to set dependency availability metric: %v", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": message})
}

func (a *API) version(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"version": Version})
}

// Version is set at build time.
var Version = "dev"
