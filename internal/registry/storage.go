// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

// Package registry is the durable tenant/binding/domain mapping. Its own
// storage is the default binding, bootstrapped before any other component.
package registry

import (
	"context"
	"errors"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/canonical/tenant-router/internal/db"
	"github.com/canonical/tenant-router/internal/logging"
	"github.com/canonical/tenant-router/internal/monitoring"
	"github.com/canonical/tenant-router/internal/tracing"
	"github.com/canonical/tenant-router/internal/types"
)

var _ RegistryInterface = (*Registry)(nil)

type Registry struct {
	db db.DBClientInterface

	logger  logging.LoggerInterface
	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
}

func NewRegistry(c db.DBClientInterface, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *Registry {
	r := new(Registry)

	r.db = c

	r.logger = logger
	r.tracer = tracer
	r.monitor = monitor

	return r
}

func joinDomains(domains []string) string {
	return strings.Join(domains, ",")
}

func splitDomains(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}

const tenantColumns = "id, name, external_id, enabled, allowed_email_domains, created_at"

func scanTenant(row sq.RowScanner) (*types.Tenant, error) {
	var t types.Tenant
	var allowed string
	if err := row.Scan(&t.ID, &t.Name, &t.ExternalID, &t.Enabled, &allowed, &t.CreatedAt); err != nil {
		return nil, err
	}
	t.AllowedEmailDomains = splitDomains(allowed)
	return &t, nil
}

const bindingColumns = "id, tenant_id, database_name, host, port, username, password, state, is_default, created_at, updated_at"

func scanBinding(row sq.RowScanner) (*types.DatabaseBinding, error) {
	var b types.DatabaseBinding
	if err := row.Scan(&b.ID, &b.TenantID, &b.DatabaseName, &b.Host, &b.Port, &b.Username, &b.Password, &b.State, &b.IsDefault, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, err
	}
	return &b, nil
}

// CreateTenant atomically creates the tenant, its Pending database binding
// and any inbound domains. Identifier or database name collisions surface
// as ErrDuplicateTenant.
func (r *Registry) CreateTenant(ctx context.Context, spec *types.TenantSpec) (*types.Tenant, *types.DatabaseBinding, error) {
	ctx, span := r.tracer.Start(ctx, "registry.Registry.CreateTenant")
	defer span.End()

	var tenant *types.Tenant
	var binding *types.DatabaseBinding

	err := r.db.WithTx(ctx, func(txCtx context.Context) error {
		var err error
		tenant, err = r.insertTenant(txCtx, spec)
		if err != nil {
			return err
		}

		binding, err = r.insertBinding(txCtx, spec)
		if err != nil {
			return err
		}

		for _, d := range spec.Domains {
			if _, err := r.insertDomain(txCtx, spec.ID, d); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	return tenant, binding, nil
}

func (r *Registry) insertTenant(ctx context.Context, spec *types.TenantSpec) (*types.Tenant, error) {
	stmt, err := r.db.Statement(ctx)
	if err != nil {
		return nil, err
	}

	row := stmt.
		Insert("tenants").
		Columns("id", "name", "external_id", "enabled", "allowed_email_domains").
		Values(spec.ID, spec.Name, spec.ExternalID, true, joinDomains(spec.AllowedEmailDomains)).
		Suffix("RETURNING " + tenantColumns).
		QueryRowContext(ctx)

	tenant, err := scanTenant(row)
	if err != nil {
		if IsDuplicateKeyError(err) {
			return nil, WrapDuplicateTenantError(err, fmt.Sprintf("tenant %q", spec.ID))
		}
		return nil, fmt.Errorf("failed to insert tenant: %w", err)
	}
	return tenant, nil
}

func (r *Registry) insertBinding(ctx context.Context, spec *types.TenantSpec) (*types.DatabaseBinding, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate binding ID: %w", err)
	}

	stmt, err := r.db.Statement(ctx)
	if err != nil {
		return nil, err
	}

	row := stmt.
		Insert("database_bindings").
		Columns("id", "tenant_id", "database_name", "host", "port", "username", "password", "state", "is_default").
		Values(id.String(), spec.ID, spec.DatabaseName, spec.Host, spec.Port, spec.Username, spec.Password, types.BindingPending, false).
		Suffix("RETURNING " + bindingColumns).
		QueryRowContext(ctx)

	binding, err := scanBinding(row)
	if err != nil {
		if IsDuplicateKeyError(err) {
			return nil, WrapDuplicateTenantError(err, fmt.Sprintf("database %q", spec.DatabaseName))
		}
		return nil, fmt.Errorf("failed to insert binding: %w", err)
	}
	return binding, nil
}

func (r *Registry) insertDomain(ctx context.Context, tenantID, domain string) (*types.Domain, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate domain ID: %w", err)
	}

	stmt, err := r.db.Statement(ctx)
	if err != nil {
		return nil, err
	}

	var d types.Domain
	err = stmt.
		Insert("domains").
		Columns("id", "tenant_id", "domain").
		Values(id.String(), tenantID, domain).
		Suffix("RETURNING id, tenant_id, domain, created_at").
		QueryRowContext(ctx).
		Scan(&d.ID, &d.TenantID, &d.Domain, &d.CreatedAt)

	if err != nil {
		if IsDuplicateKeyError(err) {
			return nil, WrapDuplicateTenantError(err, fmt.Sprintf("domain %q", domain))
		}
		if IsForeignKeyViolation(err) {
			return nil, fmt.Errorf("tenant %q: %w", tenantID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to insert domain: %w", err)
	}

	return &d, nil
}

// AddDomain attaches an additional inbound domain to an existing tenant.
func (r *Registry) AddDomain(ctx context.Context, tenantID, domain string) (*types.Domain, error) {
	ctx, span := r.tracer.Start(ctx, "registry.Registry.AddDomain")
	defer span.End()

	return r.insertDomain(ctx, tenantID, domain)
}

// PlatformTenantID owns the default binding, the database the registry
// itself lives in.
const PlatformTenantID = "platform"

// EnsureDefaultBinding records the platform's own database as a Ready
// default binding. Rows are only written when missing, so repeated process
// starts leave an existing registration untouched.
func (r *Registry) EnsureDefaultBinding(ctx context.Context, binding *types.DatabaseBinding) error {
	ctx, span := r.tracer.Start(ctx, "registry.Registry.EnsureDefaultBinding")
	defer span.End()

	id, err := uuid.NewV7()
	if err != nil {
		return fmt.Errorf("failed to generate binding ID: %w", err)
	}

	return r.db.WithTx(ctx, func(txCtx context.Context) error {
		stmt, err := r.db.Statement(txCtx)
		if err != nil {
			return err
		}

		if _, err := stmt.
			Insert("tenants").
			Columns("id", "name", "external_id", "enabled", "allowed_email_domains").
			Values(PlatformTenantID, "Platform", "", true, "").
			Suffix("ON CONFLICT (id) DO NOTHING").
			ExecContext(txCtx); err != nil {
			return fmt.Errorf("failed to ensure platform tenant: %w", err)
		}

		if _, err := stmt.
			Insert("database_bindings").
			Columns("id", "tenant_id", "database_name", "host", "port", "username", "password", "state", "is_default").
			Values(id.String(), PlatformTenantID, binding.DatabaseName, binding.Host, binding.Port, binding.Username, binding.Password, types.BindingReady, true).
			Suffix("ON CONFLICT (database_name) WHERE state <> 'retired' DO NOTHING").
			ExecContext(txCtx); err != nil {
			return fmt.Errorf("failed to ensure default binding: %w", err)
		}

		return nil
	})
}

func (r *Registry) GetTenantByID(ctx context.Context, id string) (*types.Tenant, error) {
	ctx, span := r.tracer.Start(ctx, "registry.Registry.GetTenantByID")
	defer span.End()

	stmt, err := r.db.Statement(ctx)
	if err != nil {
		return nil, err
	}

	row := stmt.
		Select(tenantColumns).
		From("tenants").
		Where(sq.Eq{"id": id}).
		QueryRowContext(ctx)

	tenant, err := scanTenant(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get tenant: %w", err)
	}

	return tenant, nil
}

// LookupByDomain resolves an inbound hostname to its tenant.
func (r *Registry) LookupByDomain(ctx context.Context, domain string) (*types.Tenant, error) {
	ctx, span := r.tracer.Start(ctx, "registry.Registry.LookupByDomain")
	defer span.End()

	stmt, err := r.db.Statement(ctx)
	if err != nil {
		return nil, err
	}

	row := stmt.
		Select("t.id", "t.name", "t.external_id", "t.enabled", "t.allowed_email_domains", "t.created_at").
		From("tenants t").
		Join("domains d ON t.id = d.tenant_id").
		Where(sq.Eq{"d.domain": domain}).
		QueryRowContext(ctx)

	tenant, err := scanTenant(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to lookup tenant by domain: %w", err)
	}

	return tenant, nil
}

// LookupByExternalID resolves an externally-issued tenant identifier.
func (r *Registry) LookupByExternalID(ctx context.Context, externalID string) (*types.Tenant, error) {
	ctx, span := r.tracer.Start(ctx, "registry.Registry.LookupByExternalID")
	defer span.End()

	stmt, err := r.db.Statement(ctx)
	if err != nil {
		return nil, err
	}

	row := stmt.
		Select(tenantColumns).
		From("tenants").
		Where(sq.Eq{"external_id": externalID}).
		QueryRowContext(ctx)

	tenant, err := scanTenant(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to lookup tenant by external id: %w", err)
	}

	return tenant, nil
}

func (r *Registry) ListTenants(ctx context.Context) ([]*types.Tenant, error) {
	ctx, span := r.tracer.Start(ctx, "registry.Registry.ListTenants")
	defer span.End()

	stmt, err := r.db.Statement(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := stmt.
		Select(tenantColumns).
		From("tenants").
		OrderBy("created_at").
		QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tenants: %w", err)
	}
	defer rows.Close()

	var tenants []*types.Tenant
	for rows.Next() {
		var t types.Tenant
		var allowed string
		if err := rows.Scan(&t.ID, &t.Name, &t.ExternalID, &t.Enabled, &allowed, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan tenant: %w", err)
		}
		t.AllowedEmailDomains = splitDomains(allowed)
		tenants = append(tenants, &t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tenant rows: %w", err)
	}

	return tenants, nil
}

// GetBinding returns the non-retired binding of a tenant.
func (r *Registry) GetBinding(ctx context.Context, tenantID string) (*types.DatabaseBinding, error) {
	ctx, span := r.tracer.Start(ctx, "registry.Registry.GetBinding")
	defer span.End()

	stmt, err := r.db.Statement(ctx)
	if err != nil {
		return nil, err
	}

	row := stmt.
		Select(bindingColumns).
		From("database_bindings").
		Where(sq.Eq{"tenant_id": tenantID}).
		Where(sq.NotEq{"state": types.BindingRetired}).
		QueryRowContext(ctx)

	binding, err := scanBinding(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get binding: %w", err)
	}

	return binding, nil
}

func (r *Registry) GetBindingByName(ctx context.Context, name string) (*types.DatabaseBinding, error) {
	ctx, span := r.tracer.Start(ctx, "registry.Registry.GetBindingByName")
	defer span.End()

	stmt, err := r.db.Statement(ctx)
	if err != nil {
		return nil, err
	}

	row := stmt.
		Select(bindingColumns).
		From("database_bindings").
		Where(sq.Eq{"database_name": name}).
		Where(sq.NotEq{"state": types.BindingRetired}).
		QueryRowContext(ctx)

	binding, err := scanBinding(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get binding by name: %w", err)
	}

	return binding, nil
}

// ListReadyBindings returns every binding able to serve traffic, used to
// warm the pool cache at process start and by fan-out jobs.
func (r *Registry) ListReadyBindings(ctx context.Context) ([]*types.DatabaseBinding, error) {
	ctx, span := r.tracer.Start(ctx, "registry.Registry.ListReadyBindings")
	defer span.End()

	stmt, err := r.db.Statement(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := stmt.
		Select(bindingColumns).
		From("database_bindings").
		Where(sq.Eq{"state": types.BindingReady}).
		OrderBy("database_name").
		QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list ready bindings: %w", err)
	}
	defer rows.Close()

	var bindings []*types.DatabaseBinding
	for rows.Next() {
		var b types.DatabaseBinding
		if err := rows.Scan(&b.ID, &b.TenantID, &b.DatabaseName, &b.Host, &b.Port, &b.Username, &b.Password, &b.State, &b.IsDefault, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan binding: %w", err)
		}
		bindings = append(bindings, &b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating binding rows: %w", err)
	}

	return bindings, nil
}

// TransitionBindingState is the only permitted mutator of binding state.
// The compare-and-set serializes concurrent transitions on one binding; a
// mismatch on the expected state returns ErrStateConflict.
func (r *Registry) TransitionBindingState(ctx context.Context, bindingName string, from, to types.BindingState) error {
	ctx, span := r.tracer.Start(ctx, "registry.Registry.TransitionBindingState")
	defer span.End()

	if !from.IsValid() || !to.IsValid() {
		return fmt.Errorf("invalid binding state transition %q -> %q", from, to)
	}

	stmt, err := r.db.Statement(ctx)
	if err != nil {
		return err
	}

	res, err := stmt.
		Update("database_bindings").
		Set("state", to).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"database_name": bindingName, "state": from}).
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to transition binding state: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("binding %q not in state %q: %w", bindingName, from, ErrStateConflict)
	}

	return nil
}

// CheckAvailability verifies the default database is reachable.
func (r *Registry) CheckAvailability(ctx context.Context) error {
	stmt, err := r.db.Statement(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRegistryUnavailable, err)
	}

	var one int
	err = stmt.
		Select("1").
		QueryRowContext(ctx).
		Scan(&one)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRegistryUnavailable, err)
	}
	return nil
}
