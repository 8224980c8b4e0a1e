package store

import (
	"context"
	"database/sql"
	"strings"
	"testing"
)

func TestRateStoreListActive(t *testing.T) {
	ctx := context.Background()
	store := NewRateStore(stubDB{
		selectFn: func(_ context.Context, dest any, query string, args ...any) error {
			if !strings.Contains(query, "WHERE is_active = TRUE") {
				t.Fatalf("unexpected query: %s", query)
			}
			*dest.(*[]RateRow) = []RateRow{{ID: "rate-1", Currency: "EUR", Rate: "0.920000"}}
			return nil
		},
	})
	rows, err := store.ListActive(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 1 || rows[0].Currency != "EUR" {
		t.Fatalf("unexpected rows: %#v", rows)
	}
}

func TestRateStoreSetRateRetiresThenInserts(t *testing.T) {
	ctx := context.Background()
	retired := false
	tx := stubTx{
		execFn: func(_ context.Context, query string, args ...any) (sql.Result, error) {
			if !strings.Contains(query, "SET is_active = FALSE") {
				t.Fatalf("unexpected query: %s", query)
			}
			if len(args) != 1 || args[0] != "EUR" {
				t.Fatalf("unexpected args: %#v", args)
			}
			retired = true
			return stubResult{rows: 1}, nil
		},
		getFn: func(_ context.Context, dest any, query string, args ...any) error {
			if !retired {
				t.Fatalf("insert ran before previous rate was retired")
			}
			if !strings.Contains(query, "INSERT INTO exchange_rates") {
				t.Fatalf("unexpected query: %s", query)
			}
			if len(args) != 3 || args[0] != "EUR" || args[1] != "0.920000" || args[2] != "admin-1" {
				t.Fatalf("unexpected args: %#v", args)
			}
			*dest.(*string) = "rate-2"
			return nil
		},
	}
	store := NewRateStore(stubDB{})
	id, err := store.SetRate(ctx, tx, "EUR", "0.920000", "admin-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != "rate-2" {
		t.Fatalf("unexpected id: %s", id)
	}
}
