// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

// Package pool lazily opens and caches one connection pool per database
// binding. Reads are lock-free apart from a short RWMutex hold; first-use
// construction of a pool is deduplicated per binding, so a burst of
// first-ever requests for a tenant builds exactly one pool.
package pool

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/canonical/tenant-router/internal/db"
	"github.com/canonical/tenant-router/internal/logging"
	"github.com/canonical/tenant-router/internal/monitoring"
	"github.com/canonical/tenant-router/internal/registry"
	"github.com/canonical/tenant-router/internal/tracing"
	"github.com/canonical/tenant-router/internal/types"
)

var _ db.PoolInterface = (*Manager)(nil)

// BindingSource looks up database bindings, usually backed by the tenant
// registry on the default binding.
type BindingSource interface {
	GetBindingByName(ctx context.Context, name string) (*types.DatabaseBinding, error)
	ListReadyBindings(ctx context.Context) ([]*types.DatabaseBinding, error)
}

type Manager struct {
	bindings BindingSource
	template db.Config

	mu      sync.RWMutex
	clients map[string]*db.DBClient
	// seeded marks clients registered through Seed. They are handed out
	// without a registry lookup: the seeded default client is the registry's
	// own storage, so gating it on a registry read would be circular.
	seeded map[string]bool
	group  singleflight.Group

	// newClient is swappable in tests to count pool constructions.
	newClient func(name string, cfg db.Config) (*db.DBClient, error)

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

// BindingDSN renders the connection string of a binding.
func BindingDSN(b *types.DatabaseBinding) string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(b.Username, b.Password),
		Host:   net.JoinHostPort(b.Host, strconv.Itoa(b.Port)),
		Path:   "/" + b.DatabaseName,
	}
	return u.String()
}

func (m *Manager) clientConfig(b *types.DatabaseBinding) db.Config {
	cfg := m.template
	cfg.DSN = BindingDSN(b)
	return cfg
}

// Acquire returns the cached client for the binding, opening it on first
// use. The binding's lifecycle state is re-read on every call; anything
// other than Ready is rejected before a query can reach the database.
// Seeded clients skip the state check, their lifecycle belongs to the
// process, not the registry.
func (m *Manager) Acquire(ctx context.Context, bindingName string) (*db.DBClient, error) {
	m.mu.RLock()
	client, seeded := m.clients[bindingName], m.seeded[bindingName]
	m.mu.RUnlock()
	if seeded && client != nil {
		return client, nil
	}

	binding, err := m.bindings.GetBindingByName(ctx, bindingName)
	if err != nil {
		if errors.Is(err, registry.ErrNotFound) {
			return nil, fmt.Errorf("binding %q: %w", bindingName, db.ErrBindingNotFound)
		}
		return nil, err
	}

	if binding.State != types.BindingReady {
		return nil, fmt.Errorf("binding %q is in state %q: %w", bindingName, binding.State, db.ErrBindingNotReady)
	}

	m.mu.RLock()
	client, ok := m.clients[bindingName]
	m.mu.RUnlock()
	if ok {
		return client, nil
	}

	v, err, _ := m.group.Do(bindingName, func() (interface{}, error) {
		m.mu.RLock()
		client, ok := m.clients[bindingName]
		m.mu.RUnlock()
		if ok {
			return client, nil
		}

		client, err := m.newClient(bindingName, m.clientConfig(binding))
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				return nil, fmt.Errorf("opening pool for binding %q: %w", bindingName, db.ErrPoolExhausted)
			}
			return nil, err
		}

		m.mu.Lock()
		m.clients[bindingName] = client
		m.mu.Unlock()

		m.logger.Infof("opened connection pool for binding %q", bindingName)
		return client, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*db.DBClient), nil
}

// Seed inserts an already-open client into the cache, used to register the
// bootstrapped default binding client. Seeded clients are served without
// consulting the registry.
func (m *Manager) Seed(bindingName string, client *db.DBClient) {
	m.mu.Lock()
	m.clients[bindingName] = client
	m.seeded[bindingName] = true
	m.mu.Unlock()
}

// WarmUp primes the cache with a pool for every Ready binding. Failures are
// logged per binding and do not abort the warm-up.
func (m *Manager) WarmUp(ctx context.Context) {
	bindings, err := m.bindings.ListReadyBindings(ctx)
	if err != nil {
		m.logger.Errorf("failed to list ready bindings for warm-up: %v", err)
		return
	}

	for _, b := range bindings {
		if _, err := m.Acquire(ctx, b.DatabaseName); err != nil {
			m.logger.Errorf("failed to warm up pool for binding %q: %v", b.DatabaseName, err)
		}
	}
}

// Evict closes the pool of a binding and drops it from the cache. Invoked
// when a binding retires and at shutdown.
func (m *Manager) Evict(bindingName string) {
	m.mu.Lock()
	client, ok := m.clients[bindingName]
	delete(m.clients, bindingName)
	delete(m.seeded, bindingName)
	m.mu.Unlock()

	if ok {
		client.Close()
		m.logger.Infof("evicted connection pool for binding %q", bindingName)
	}
}

// Shutdown evicts every cached pool.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	clients := m.clients
	m.clients = make(map[string]*db.DBClient)
	m.seeded = make(map[string]bool)
	m.mu.Unlock()

	for name, client := range clients {
		client.Close()
		m.logger.Debugf("closed connection pool for binding %q", name)
	}
}

// NewManager creates a pool manager applying the template configuration to
// every per-binding pool it opens.
func NewManager(bindings BindingSource, template db.Config, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *Manager {
	m := new(Manager)

	m.bindings = bindings
	m.template = template
	m.clients = make(map[string]*db.DBClient)
	m.seeded = make(map[string]bool)
	m.newClient = func(name string, cfg db.Config) (*db.DBClient, error) {
		return db.NewDBClient(name, cfg, tracer, monitor, logger)
	}

	m.tracer = tracer
	m.monitor = monitor
	m.logger = logger

	return m
}
