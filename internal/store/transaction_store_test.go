package store

import (
	"context"
	"database/sql"
	"strings"
	"testing"
)

func TestTransactionStoreCreate(t *testing.T) {
	ctx := context.Background()
	from := "user-1"
	execer := stubExecer{
		execFn: func(_ context.Context, query string, args ...any) (sql.Result, error) {
			if !strings.Contains(query, "INSERT INTO transactions") {
				t.Fatalf("unexpected query: %s", query)
			}
			if len(args) != 9 {
				t.Fatalf("expected 9 args, got %d", len(args))
			}
			if args[0] != "tx-1" || args[1] != "TRANSFER" || args[2] != "COIN" {
				t.Fatalf("unexpected args: %#v", args)
			}
			if ptr, ok := args[3].(*string); !ok || *ptr != "user-1" {
				t.Fatalf("unexpected from arg: %#v", args[3])
			}
			if args[5] != int64(5000) || args[6] != int64(5) || args[7] != int64(4995) {
				t.Fatalf("unexpected amount args: %#v", args)
			}
			return stubResult{rows: 1}, nil
		},
	}
	store := NewTransactionStore(stubDB{})
	err := store.Create(ctx, execer, TransactionInput{
		ID: "tx-1", Type: "TRANSFER", Asset: "COIN", FromUserID: &from, ToUserID: "user-2",
		AmountMinor: 5000, FeeMinor: 5, NetMinor: 4995, Description: "rent",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestTransactionStoreCreateEmission(t *testing.T) {
	ctx := context.Background()
	execer := stubExecer{
		execFn: func(_ context.Context, query string, args ...any) (sql.Result, error) {
			if ptr, ok := args[3].(*string); ok && ptr != nil {
				t.Fatalf("expected nil from_user_id, got %#v", args[3])
			}
			return stubResult{rows: 1}, nil
		},
	}
	store := NewTransactionStore(stubDB{})
	err := store.Create(ctx, execer, TransactionInput{
		ID: "tx-1", Type: "EMISSION", Asset: "COIN", ToUserID: "user-2",
		AmountMinor: 100000, NetMinor: 100000,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestTransactionStoreListByUser(t *testing.T) {
	ctx := context.Background()
	store := NewTransactionStore(stubDB{
		selectFn: func(_ context.Context, dest any, query string, args ...any) error {
			if !strings.Contains(query, "from_user_id = $1 OR t.to_user_id = $1") {
				t.Fatalf("unexpected query: %s", query)
			}
			if strings.Contains(query, "AND t.type") {
				t.Fatalf("unexpected type filter: %s", query)
			}
			if len(args) != 3 || args[0] != "user-1" || args[1] != 20 || args[2] != 0 {
				t.Fatalf("unexpected args: %#v", args)
			}
			*dest.(*[]transactionRow) = []transactionRow{{ID: "tx-1", Type: "TRANSFER", ToUserID: "user-1", AmountMinor: 5000}}
			return nil
		},
	})
	rows, err := store.ListByUser(ctx, "user-1", "", 20, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 1 || rows[0]["id"] != "tx-1" || rows[0]["amount_minor"] != int64(5000) {
		t.Fatalf("unexpected rows: %#v", rows)
	}
	if rows[0]["from_user_id"] != "" {
		t.Fatalf("expected empty from_user_id, got %#v", rows[0]["from_user_id"])
	}
}

func TestTransactionStoreListByUserWithTypeFilter(t *testing.T) {
	ctx := context.Background()
	store := NewTransactionStore(stubDB{
		selectFn: func(_ context.Context, dest any, query string, args ...any) error {
			if !strings.Contains(query, "AND t.type = $2") {
				t.Fatalf("expected type filter: %s", query)
			}
			if !strings.Contains(query, "LIMIT $3 OFFSET $4") {
				t.Fatalf("unexpected pagination params: %s", query)
			}
			if len(args) != 4 || args[1] != "DIVIDEND" {
				t.Fatalf("unexpected args: %#v", args)
			}
			return nil
		},
	})
	if _, err := store.ListByUser(ctx, "user-1", "DIVIDEND", 20, 40); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestTransactionStoreListRecentByType(t *testing.T) {
	ctx := context.Background()
	store := NewTransactionStore(stubDB{
		selectFn: func(_ context.Context, dest any, query string, args ...any) error {
			if !strings.Contains(query, "WHERE t.type = $1") {
				t.Fatalf("unexpected query: %s", query)
			}
			if len(args) != 2 || args[0] != "EMISSION" || args[1] != 10 {
				t.Fatalf("unexpected args: %#v", args)
			}
			return nil
		},
	})
	if _, err := store.ListRecentByType(ctx, "EMISSION", 10); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
