// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

// Package migrations embeds the goose migration sets: the registry set for
// the default database and the tenantdb set replayed into every tenant
// database by the provisioner.
package migrations

import (
	"embed"
	"io/fs"
)

//go:embed registry/*.sql tenantdb/*.sql
var embedMigrations embed.FS

// Registry returns the migration set of the default database.
func Registry() fs.FS {
	sub, err := fs.Sub(embedMigrations, "registry")
	if err != nil {
		panic(err)
	}
	return sub
}

// TenantDB returns the migration set replayed into each tenant database.
func TenantDB() fs.FS {
	sub, err := fs.Sub(embedMigrations, "tenantdb")
	if err != nil {
		panic(err)
	}
	return sub
}
