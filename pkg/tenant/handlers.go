// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package tenant

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/canonical/tenant-router/internal/logging"
	"github.com/canonical/tenant-router/internal/provisioner"
	"github.com/canonical/tenant-router/internal/registry"
	"github.com/canonical/tenant-router/internal/types"
)

type API struct {
	service  ServiceInterface
	validate *validator.Validate
	logger   logging.LoggerInterface
}

func NewAPI(service ServiceInterface, logger logging.LoggerInterface) *API {
	return &API{
		service:  service,
		validate: validator.New(),
		logger:   logger,
	}
}

func (a *API) RegisterEndpoints(mux *chi.Mux) {
	mux.Post("/api/v0/tenants", a.createTenant)
	mux.Get("/api/v0/tenants", a.listTenants)
	mux.Get("/api/v0/tenants/{id}", a.getTenant)
	mux.Delete("/api/v0/tenants/{id}", a.retireTenant)
	mux.Post("/api/v0/tenants/{id}/domains", a.addDomain)
}

func (a *API) createTenant(w http.ResponseWriter, r *http.Request) {
	var spec types.TenantSpec
	if err := json.NewDecoder(r.Body).Decode(&spec); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := a.validate.Struct(&spec); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	tenant, err := a.service.CreateTenant(r.Context(), &spec)
	if err != nil {
		a.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(tenant)
}

func (a *API) listTenants(w http.ResponseWriter, r *http.Request) {
	tenants, err := a.service.ListTenants(r.Context())
	if err != nil {
		a.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(tenants)
}

func (a *API) getTenant(w http.ResponseWriter, r *http.Request) {
	tenant, err := a.service.GetTenant(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(tenant)
}

func (a *API) retireTenant(w http.ResponseWriter, r *http.Request) {
	if err := a.service.RetireTenant(r.Context(), chi.URLParam(r, "id")); err != nil {
		a.writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type addDomainRequest struct {
	Domain string `json:"domain" validate:"required,hostname_rfc1123"`
}

func (a *API) addDomain(w http.ResponseWriter, r *http.Request) {
	var req addDomainRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := a.validate.Struct(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	domain, err := a.service.AddDomain(r.Context(), chi.URLParam(r, "id"), req.Domain)
	if err != nil {
		a.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(domain)
}

func (a *API) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, registry.ErrDuplicateTenant):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, registry.ErrStateConflict):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, registry.ErrNotFound):
		http.Error(w, "tenant not found", http.StatusNotFound)
	case errors.Is(err, provisioner.ErrProvisioningFailed):
		a.logger.Errorf("provisioning failed: %v", err)
		http.Error(w, err.Error(), http.StatusBadGateway)
	default:
		a.logger.Errorf("tenant request failed: %v", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
