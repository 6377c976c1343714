// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package types

import (
	"slices"
	"time"
)

// BindingState is the lifecycle state of a tenant's database binding.
// Only Ready bindings may serve application traffic.
type BindingState string

const (
	BindingPending      BindingState = "pending"
	BindingProvisioning BindingState = "provisioning"
	BindingReady        BindingState = "ready"
	BindingFailed       BindingState = "failed"
	BindingRetired      BindingState = "retired"
)

func (s BindingState) IsValid() bool {
	return slices.Contains([]BindingState{
		BindingPending,
		BindingProvisioning,
		BindingReady,
		BindingFailed,
		BindingRetired,
	}, s)
}

type Tenant struct {
	ID                  string    `db:"id" json:"id"`
	Name                string    `db:"name" json:"name"`
	ExternalID          string    `db:"external_id" json:"external_id"`
	Enabled             bool      `db:"enabled" json:"enabled"`
	AllowedEmailDomains []string  `db:"allowed_email_domains" json:"allowed_email_domains"`
	CreatedAt           time.Time `db:"created_at" json:"created_at"`
}

// DatabaseBinding maps a tenant to its physical database. The binding owns
// the database; the tenant is referenced by identifier only.
type DatabaseBinding struct {
	ID           string       `db:"id" json:"id"`
	TenantID     string       `db:"tenant_id" json:"tenant_id"`
	DatabaseName string       `db:"database_name" json:"database_name"`
	Host         string       `db:"host" json:"host"`
	Port         int          `db:"port" json:"port"`
	Username     string       `db:"username" json:"username"`
	Password     string       `db:"password" json:"-"`
	State        BindingState `db:"state" json:"state"`
	IsDefault    bool         `db:"is_default" json:"is_default"`
	CreatedAt    time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time    `db:"updated_at" json:"updated_at"`
}

// Domain is an inbound identifier (usually a hostname) resolving to one tenant.
type Domain struct {
	ID        string    `db:"id" json:"id"`
	TenantID  string    `db:"tenant_id" json:"tenant_id"`
	Domain    string    `db:"domain" json:"domain"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// TenantSpec is the administrative input for creating a tenant together with
// its pending database binding.
type TenantSpec struct {
	ID                  string   `json:"id" validate:"required"`
	Name                string   `json:"name" validate:"required"`
	ExternalID          string   `json:"external_id"`
	DatabaseName        string   `json:"database_name" validate:"required"`
	Host                string   `json:"host"`
	Port                int      `json:"port"`
	Username            string   `json:"username"`
	Password            string   `json:"password"`
	Domains             []string `json:"domains" validate:"dive,hostname_rfc1123"`
	AllowedEmailDomains []string `json:"allowed_email_domains" validate:"dive,hostname_rfc1123"`
}
