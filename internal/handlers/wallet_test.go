package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"altyn/internal/models"
)

func TestGetWalletIncludesPendingDividends(t *testing.T) {
	handler := newTestHandler(stubReconcileDB{}, fakeTxRunner{},
		stubUserStore{},
		stubWalletStore{
			getFn: func(ctx context.Context, userID string) (models.Wallet, error) {
				if userID != "user-1" {
					t.Fatalf("unexpected user id: %s", userID)
				}
				return models.Wallet{UserID: userID, CoinMinor: 10000, TokenMinor: 3000}, nil
			},
		},
		stubTreasuryStore{
			getFn: func(ctx context.Context) (models.TreasuryStats, error) {
				return models.TreasuryStats{CollectedFeesMinor: 100000, CirculationMinor: 500000, TokenSupplyMinor: 10000}, nil
			},
		},
		stubTransactionStore{}, stubReceiptStore{}, stubDividendStore{},
		stubAdminStore{}, stubAuditStore{}, stubRateStore{},
		stubLedgerService{}, stubRateService{})

	req := authedRequest(t, http.MethodGet, "/wallet", nil, "user-1")
	rr := serveAuthed(t, handler.GetWallet, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var payload map[string]any
	if err := json.NewDecoder(rr.Body).Decode(&payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if payload["coin_balance"] != "100.00" {
		t.Fatalf("expected coin_balance 100.00, got %v", payload["coin_balance"])
	}
	if payload["token_percentage"] != "30.0000" {
		t.Fatalf("expected token_percentage 30.0000, got %v", payload["token_percentage"])
	}
	// Holder of 30% of the supply is owed 30% of the fee pool.
	if payload["pending_dividends"] != "300.00" {
		t.Fatalf("expected pending_dividends 300.00, got %v", payload["pending_dividends"])
	}
}

func TestGetPortfolioValuations(t *testing.T) {
	handler := newTestHandler(stubReconcileDB{}, fakeTxRunner{},
		stubUserStore{},
		stubWalletStore{
			getFn: func(ctx context.Context, userID string) (models.Wallet, error) {
				return models.Wallet{UserID: userID, CoinMinor: 10000, TokenMinor: 500}, nil
			},
		},
		stubTreasuryStore{}, stubTransactionStore{}, stubReceiptStore{}, stubDividendStore{},
		stubAdminStore{}, stubAuditStore{}, stubRateStore{},
		stubLedgerService{},
		stubRateService{
			currenciesFn: func() []string { return []string{"USD", "KZT"} },
			convertFn: func(amountMinor int64, currency string) (int64, error) {
				if currency == "KZT" {
					return amountMinor * 470, nil
				}
				return amountMinor, nil
			},
		})

	req := authedRequest(t, http.MethodGet, "/wallet/portfolio", nil, "user-1")
	rr := serveAuthed(t, handler.GetPortfolio, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var payload struct {
		CoinBalance string            `json:"coin_balance"`
		Valuations  map[string]string `json:"valuations"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if payload.CoinBalance != "100.00" {
		t.Fatalf("expected coin_balance 100.00, got %s", payload.CoinBalance)
	}
	if payload.Valuations["USD"] != "100.00" {
		t.Fatalf("expected USD valuation 100.00, got %s", payload.Valuations["USD"])
	}
	if payload.Valuations["KZT"] != "47000.00" {
		t.Fatalf("expected KZT valuation 47000.00, got %s", payload.Valuations["KZT"])
	}
}

func TestListTransactionsPassesFilter(t *testing.T) {
	var gotType string
	var gotLimit, gotOffset int
	handler := newTestHandler(stubReconcileDB{}, fakeTxRunner{},
		stubUserStore{}, stubWalletStore{}, stubTreasuryStore{},
		stubTransactionStore{
			listByUserFn: func(ctx context.Context, userID, txType string, limit, offset int) ([]map[string]any, error) {
				gotType = txType
				gotLimit = limit
				gotOffset = offset
				return []map[string]any{{"id": "tx-1", "type": "TRANSFER", "amount_minor": int64(5000)}}, nil
			},
		},
		stubReceiptStore{}, stubDividendStore{},
		stubAdminStore{}, stubAuditStore{}, stubRateStore{},
		stubLedgerService{}, stubRateService{})

	req := authedRequest(t, http.MethodGet, "/transactions?type=TRANSFER&page=3&limit=10", nil, "user-1")
	rr := serveAuthed(t, handler.ListTransactions, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if gotType != "TRANSFER" || gotLimit != 10 || gotOffset != 20 {
		t.Fatalf("expected type=TRANSFER limit=10 offset=20, got %s/%d/%d", gotType, gotLimit, gotOffset)
	}
	var rows []map[string]any
	if err := json.NewDecoder(rr.Body).Decode(&rows); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(rows) != 1 || rows[0]["amount"] != "50.00" {
		t.Fatalf("expected normalized amount 50.00, got %v", rows)
	}
}

func TestGetRates(t *testing.T) {
	handler := newTestHandler(stubReconcileDB{}, fakeTxRunner{},
		stubUserStore{}, stubWalletStore{}, stubTreasuryStore{},
		stubTransactionStore{}, stubReceiptStore{}, stubDividendStore{},
		stubAdminStore{}, stubAuditStore{}, stubRateStore{},
		stubLedgerService{},
		stubRateService{
			ratesFn: func() map[string]string {
				return map[string]string{"USD": "1.000000", "KZT": "470.500000"}
			},
		})

	req := authedRequest(t, http.MethodGet, "/rates", nil, "user-1")
	rr := serveAuthed(t, handler.GetRates, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var payload struct {
		Base  string            `json:"base"`
		Rates map[string]string `json:"rates"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if payload.Base != "COIN" {
		t.Fatalf("expected base COIN, got %s", payload.Base)
	}
	if payload.Rates["KZT"] != "470.500000" {
		t.Fatalf("expected KZT rate 470.500000, got %s", payload.Rates["KZT"])
	}
}
