// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package provisioner

import (
	"context"

	"github.com/canonical/tenant-router/internal/types"
)

type ProvisionerInterface interface {
	Provision(ctx context.Context, binding *types.DatabaseBinding) error
}

// RegistryInterface is the slice of the tenant registry the provisioner
// needs: the compare-and-set state mutator.
type RegistryInterface interface {
	TransitionBindingState(ctx context.Context, bindingName string, from, to types.BindingState) error
}

// DatabaseCreator creates the physical database when it does not exist yet.
type DatabaseCreator interface {
	EnsureDatabase(ctx context.Context, binding *types.DatabaseBinding) error
}

// MigrationRunner replays the tenant schema migration set against a database.
type MigrationRunner interface {
	Run(ctx context.Context, binding *types.DatabaseBinding) error
}
