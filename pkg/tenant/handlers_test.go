// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package tenant

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.uber.org/mock/gomock"

	"github.com/canonical/tenant-router/internal/logging"
	"github.com/canonical/tenant-router/internal/provisioner"
	"github.com/canonical/tenant-router/internal/registry"
	"github.com/canonical/tenant-router/internal/types"
)

func newTestAPI(t *testing.T) (*chi.Mux, *MockServiceInterface) {
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	mockService := NewMockServiceInterface(ctrl)
	mux := chi.NewMux()
	NewAPI(mockService, logging.NewNoopLogger()).RegisterEndpoints(mux)

	return mux, mockService
}

func TestHandler_CreateTenant(t *testing.T) {
	body := `{"id":"acme","name":"Acme","database_name":"tenant_acme","domains":["acme.example.com"]}`

	testCases := []struct {
		name           string
		body           string
		setupMocks     func(*MockServiceInterface)
		expectedStatus int
	}{
		{
			name: "success",
			body: body,
			setupMocks: func(mockService *MockServiceInterface) {
				mockService.EXPECT().CreateTenant(gomock.Any(), gomock.Any()).Return(&types.Tenant{ID: "acme", Name: "Acme"}, nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "invalid json",
			body:           `{"id":`,
			setupMocks:     func(*MockServiceInterface) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "missing required fields",
			body:           `{"name":"Acme"}`,
			setupMocks:     func(*MockServiceInterface) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "duplicate tenant",
			body: body,
			setupMocks: func(mockService *MockServiceInterface) {
				mockService.EXPECT().CreateTenant(gomock.Any(), gomock.Any()).Return(nil, registry.ErrDuplicateTenant)
			},
			expectedStatus: http.StatusConflict,
		},
		{
			name: "provisioning failed",
			body: body,
			setupMocks: func(mockService *MockServiceInterface) {
				mockService.EXPECT().CreateTenant(gomock.Any(), gomock.Any()).Return(nil, provisioner.ErrProvisioningFailed)
			},
			expectedStatus: http.StatusBadGateway,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			mux, mockService := newTestAPI(t)
			tc.setupMocks(mockService)

			r := httptest.NewRequest(http.MethodPost, "/api/v0/tenants", strings.NewReader(tc.body))
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, r)

			if w.Code != tc.expectedStatus {
				t.Errorf("expected status %d, got %d: %s", tc.expectedStatus, w.Code, w.Body.String())
			}
		})
	}
}

func TestHandler_GetTenant(t *testing.T) {
	mux, mockService := newTestAPI(t)
	mockService.EXPECT().GetTenant(gomock.Any(), "acme").Return(&types.Tenant{ID: "acme", Name: "Acme"}, nil)

	r := httptest.NewRequest(http.MethodGet, "/api/v0/tenants/acme", nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", w.Code)
	}

	var tenant types.Tenant
	if err := json.NewDecoder(w.Body).Decode(&tenant); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if tenant.ID != "acme" {
		t.Errorf("unexpected tenant: %+v", tenant)
	}
}

func TestHandler_GetTenantNotFound(t *testing.T) {
	mux, mockService := newTestAPI(t)
	mockService.EXPECT().GetTenant(gomock.Any(), "ghost").Return(nil, registry.ErrNotFound)

	r := httptest.NewRequest(http.MethodGet, "/api/v0/tenants/ghost", nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, r)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", w.Code)
	}
}

func TestHandler_ListTenants(t *testing.T) {
	mux, mockService := newTestAPI(t)
	mockService.EXPECT().ListTenants(gomock.Any()).Return([]*types.Tenant{
		{ID: "acme"}, {ID: "globex"},
	}, nil)

	r := httptest.NewRequest(http.MethodGet, "/api/v0/tenants", nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", w.Code)
	}

	var tenants []*types.Tenant
	if err := json.NewDecoder(w.Body).Decode(&tenants); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(tenants) != 2 {
		t.Errorf("expected 2 tenants, got %d", len(tenants))
	}
}

func TestHandler_RetireTenant(t *testing.T) {
	mux, mockService := newTestAPI(t)
	mockService.EXPECT().RetireTenant(gomock.Any(), "acme").Return(nil)

	r := httptest.NewRequest(http.MethodDelete, "/api/v0/tenants/acme", nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, r)

	if w.Code != http.StatusNoContent {
		t.Errorf("expected status 204, got %d", w.Code)
	}
}

func TestHandler_AddDomain(t *testing.T) {
	testCases := []struct {
		name           string
		body           string
		setupMocks     func(*MockServiceInterface)
		expectedStatus int
	}{
		{
			name: "success",
			body: `{"domain":"acme.example.com"}`,
			setupMocks: func(mockService *MockServiceInterface) {
				mockService.EXPECT().AddDomain(gomock.Any(), "acme", "acme.example.com").
					Return(&types.Domain{TenantID: "acme", Domain: "acme.example.com"}, nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "missing domain",
			body:           `{}`,
			setupMocks:     func(*MockServiceInterface) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "duplicate domain",
			body: `{"domain":"acme.example.com"}`,
			setupMocks: func(mockService *MockServiceInterface) {
				mockService.EXPECT().AddDomain(gomock.Any(), "acme", "acme.example.com").
					Return(nil, registry.ErrDuplicateTenant)
			},
			expectedStatus: http.StatusConflict,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			mux, mockService := newTestAPI(t)
			tc.setupMocks(mockService)

			r := httptest.NewRequest(http.MethodPost, "/api/v0/tenants/acme/domains", strings.NewReader(tc.body))
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, r)

			if w.Code != tc.expectedStatus {
				t.Errorf("expected status %d, got %d: %s", tc.expectedStatus, w.Code, w.Body.String())
			}
		})
	}
}
