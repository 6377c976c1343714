// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package tenantctx

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
)

func TestWithTenantAndGetTenant(t *testing.T) {
	ctx := context.Background()

	if _, ok := GetTenant(ctx); ok {
		t.Error("expected no tenant on a fresh context")
	}

	tctx, err := WithTenant(ctx, Context{TenantID: "acme", BindingName: "tenant_acme"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tc, ok := GetTenant(tctx)
	if !ok {
		t.Fatal("expected tenant to be set")
	}
	if tc.TenantID != "acme" || tc.BindingName != "tenant_acme" {
		t.Errorf("unexpected tenant context: %+v", tc)
	}

	// The parent context stays untouched.
	if _, ok := GetTenant(ctx); ok {
		t.Error("parent context must not observe the derived tenant")
	}
}

func TestWithTenantOverride(t *testing.T) {
	ctx, err := WithTenant(context.Background(), Context{TenantID: "acme", BindingName: "tenant_acme"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx, err = WithTenant(ctx, Context{TenantID: "globex", BindingName: "tenant_globex"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tc, _ := GetTenant(ctx)
	if tc.TenantID != "globex" {
		t.Errorf("expected the most recent tenant, got %q", tc.TenantID)
	}
}

func TestClearTenantShadowsParent(t *testing.T) {
	ctx, err := WithTenant(context.Background(), Context{TenantID: "acme", BindingName: "tenant_acme"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cleared, err := ClearTenant(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, ok := GetTenant(cleared); ok {
		t.Error("cleared context must not resolve a tenant")
	}
	if _, ok := GetTenant(ctx); !ok {
		t.Error("clearing a child must not affect the parent")
	}
}

func TestWithTenantInsideTransaction(t *testing.T) {
	ctx, err := WithTenant(context.Background(), Context{TenantID: "acme", BindingName: "tenant_acme"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ctx = WithTransactionBinding(ctx, "tenant_acme")

	// Re-asserting the same binding is allowed.
	if _, err := WithTenant(ctx, Context{TenantID: "acme", BindingName: "tenant_acme"}); err != nil {
		t.Errorf("re-asserting the owning binding must succeed, got %v", err)
	}

	// Switching to another binding is not.
	if _, err := WithTenant(ctx, Context{TenantID: "globex", BindingName: "tenant_globex"}); !errors.Is(err, ErrContextSwitchInTransaction) {
		t.Errorf("expected ErrContextSwitchInTransaction, got %v", err)
	}

	if _, err := ClearTenant(ctx); !errors.Is(err, ErrContextSwitchInTransaction) {
		t.Errorf("expected ErrContextSwitchInTransaction on clear, got %v", err)
	}
}

func TestRunAsConfinement(t *testing.T) {
	ctx := context.Background()

	err := RunAs(ctx, Context{TenantID: "acme", BindingName: "tenant_acme"}, func(tctx context.Context) error {
		tc, ok := GetTenant(tctx)
		if !ok || tc.TenantID != "acme" {
			t.Errorf("expected acme inside RunAs, got %+v", tc)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, ok := GetTenant(ctx); ok {
		t.Error("tenant must not outlive RunAs")
	}
}

func TestRunAsPropagatesError(t *testing.T) {
	wantErr := errors.New("boom")
	err := RunAs(context.Background(), Context{TenantID: "acme"}, func(context.Context) error {
		return wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Errorf("expected handler error, got %v", err)
	}
}

// Concurrent executions sharing a parent context must never observe each
// other's tenant.
func TestConcurrentIsolation(t *testing.T) {
	parent := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()

			id := fmt.Sprintf("tenant-%d", i)
			err := RunAs(parent, Context{TenantID: id, BindingName: id}, func(ctx context.Context) error {
				for j := 0; j < 50; j++ {
					tc, ok := GetTenant(ctx)
					if !ok || tc.TenantID != id {
						return fmt.Errorf("tenant leaked across executions: got %+v, want %s", tc, id)
					}
				}
				return nil
			})
			if err != nil {
				t.Error(err)
			}
		}(i)
	}
	wg.Wait()

	if _, ok := GetTenant(parent); ok {
		t.Error("parent context must stay tenant-free")
	}
}

func TestTransactionBinding(t *testing.T) {
	ctx := context.Background()

	if _, ok := TransactionBinding(ctx); ok {
		t.Error("expected no transaction binding on a fresh context")
	}

	ctx = WithTransactionBinding(ctx, "tenant_acme")
	binding, ok := TransactionBinding(ctx)
	if !ok || binding != "tenant_acme" {
		t.Errorf("unexpected transaction binding: %q, %v", binding, ok)
	}
}
