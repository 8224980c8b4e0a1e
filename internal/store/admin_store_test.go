package store

import (
	"context"
	"database/sql"
	"strings"
	"testing"
)

func TestAdminStoreIsAdminNoRow(t *testing.T) {
	ctx := context.Background()
	store := NewAdminStore(stubDB{
		getFn: func(context.Context, any, string, ...any) error {
			return sql.ErrNoRows
		},
	})
	isAdmin, isSuper, err := store.IsAdmin(ctx, "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if isAdmin || isSuper {
		t.Fatalf("expected non-admin, got %v/%v", isAdmin, isSuper)
	}
}

func TestAdminStoreIsAdminSuper(t *testing.T) {
	ctx := context.Background()
	store := NewAdminStore(stubDB{
		getFn: func(_ context.Context, dest any, query string, args ...any) error {
			if !strings.Contains(query, "FROM admins") {
				t.Fatalf("unexpected query: %s", query)
			}
			*dest.(*bool) = true
			return nil
		},
	})
	isAdmin, isSuper, err := store.IsAdmin(ctx, "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !isAdmin || !isSuper {
		t.Fatalf("expected super admin, got %v/%v", isAdmin, isSuper)
	}
}

func TestAdminStoreHasRole(t *testing.T) {
	ctx := context.Background()
	store := NewAdminStore(stubDB{
		getFn: func(_ context.Context, dest any, query string, args ...any) error {
			if !strings.Contains(query, "FROM admin_roles") {
				t.Fatalf("unexpected query: %s", query)
			}
			if len(args) != 2 || args[0] != "user-1" || args[1] != "CanEmit" {
				t.Fatalf("unexpected args: %#v", args)
			}
			*dest.(*int) = 1
			return nil
		},
	})
	hasRole, err := store.HasRole(ctx, "user-1", "CanEmit")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !hasRole {
		t.Fatalf("expected role to be present")
	}
}

func TestAdminStoreCreateAdmin(t *testing.T) {
	ctx := context.Background()
	createdBy := "user-0"
	execer := stubExecer{
		execFn: func(_ context.Context, query string, args ...any) (sql.Result, error) {
			if !strings.Contains(query, "INSERT INTO admins") {
				t.Fatalf("unexpected query: %s", query)
			}
			if len(args) != 3 || args[0] != "user-1" || args[1] != false {
				t.Fatalf("unexpected args: %#v", args)
			}
			return stubResult{rows: 1}, nil
		},
	}
	store := NewAdminStore(stubDB{})
	if err := store.CreateAdmin(ctx, execer, "user-1", false, &createdBy); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestAdminStoreGrantRole(t *testing.T) {
	ctx := context.Background()
	execer := stubExecer{
		execFn: func(_ context.Context, query string, args ...any) (sql.Result, error) {
			if !strings.Contains(query, "INSERT INTO admin_roles") || !strings.Contains(query, "ON CONFLICT DO NOTHING") {
				t.Fatalf("unexpected query: %s", query)
			}
			return stubResult{rows: 1}, nil
		},
	}
	store := NewAdminStore(stubDB{})
	if err := store.GrantRole(ctx, execer, "user-1", "CanDistribute"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestAdminStoreHasAnyAdmin(t *testing.T) {
	ctx := context.Background()
	store := NewAdminStore(stubDB{
		getFn: func(_ context.Context, dest any, query string, args ...any) error {
			*dest.(*int) = 0
			return nil
		},
	})
	hasAny, err := store.HasAnyAdmin(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hasAny {
		t.Fatalf("expected no admins")
	}
}
