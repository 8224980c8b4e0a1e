package handlers

import (
	"net/http"

	"altyn/internal/middleware"
	"altyn/internal/money"
)

func (h *Handler) GetWallet(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	wallet, err := h.wallets.Get(r.Context(), userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load wallet")
		return
	}
	stats, err := h.treasury.Get(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load treasury")
		return
	}
	// pending_dividends is the holder's share of the current fee pool, i.e.
	// what the next distribution run would credit.
	pending := money.ShareMinor(stats.CollectedFeesMinor, wallet.TokenMinor, stats.TokenSupplyMinor)
	respondJSON(w, http.StatusOK, map[string]any{
		"user_id":           userID,
		"coin_balance":      money.FormatMinor(wallet.CoinMinor),
		"token_balance":     money.FormatMinor(wallet.TokenMinor),
		"token_percentage":  money.Percentage(wallet.TokenMinor, stats.TokenSupplyMinor),
		"pending_dividends": money.FormatMinor(pending),
	})
}

func (h *Handler) GetPortfolio(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	wallet, err := h.wallets.Get(r.Context(), userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load wallet")
		return
	}
	valuations := make(map[string]string)
	for _, currency := range h.rates.Currencies() {
		converted, err := h.rates.Convert(wallet.CoinMinor, currency)
		if err != nil {
			continue
		}
		valuations[currency] = money.FormatMinor(converted)
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"user_id":       userID,
		"coin_balance":  money.FormatMinor(wallet.CoinMinor),
		"token_balance": money.FormatMinor(wallet.TokenMinor),
		"valuations":    valuations,
	})
}

func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	query := r.URL.Query()
	txType := query.Get("type")
	page := parseInt(query.Get("page"), 1)
	limit := parseInt(query.Get("limit"), 20)
	offset := (page - 1) * limit
	transactions, err := h.transactions.ListByUser(r.Context(), userID, txType, limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load transactions")
		return
	}
	respondJSON(w, http.StatusOK, normalizeTransactions(transactions))
}

func (h *Handler) ListTokenHolders(w http.ResponseWriter, r *http.Request) {
	limit := parseInt(r.URL.Query().Get("limit"), 50)
	holders, err := h.wallets.TokenHolders(r.Context(), limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load token holders")
		return
	}
	stats, err := h.treasury.Get(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load treasury")
		return
	}
	normalized := make([]map[string]any, 0, len(holders))
	for rank, holder := range holders {
		normalized = append(normalized, map[string]any{
			"rank":             rank + 1,
			"user_id":          holder.UserID,
			"username":         holder.Username,
			"token_balance":    money.FormatMinor(holder.TokenMinor),
			"token_percentage": money.Percentage(holder.TokenMinor, stats.TokenSupplyMinor),
		})
	}
	respondJSON(w, http.StatusOK, normalized)
}

func (h *Handler) GetRates(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"base":  "COIN",
		"rates": h.rates.Rates(),
	})
}

func normalizeTransactions(rows []map[string]any) []map[string]any {
	normalized := make([]map[string]any, 0, len(rows))
	for _, row := range rows {
		normalized = append(normalized, map[string]any{
			"id":            valueToString(row["id"]),
			"type":          valueToString(row["type"]),
			"asset":         valueToString(row["asset"]),
			"from_user_id":  valueToString(row["from_user_id"]),
			"from_username": valueToString(row["from_username"]),
			"to_user_id":    valueToString(row["to_user_id"]),
			"to_username":   valueToString(row["to_username"]),
			"amount":        valueToMoney(row["amount_minor"]),
			"fee":           valueToMoney(row["fee_minor"]),
			"net_amount":    valueToMoney(row["net_minor"]),
			"description":   valueToString(row["description"]),
			"created_at":    row["created_at"],
		})
	}
	return normalized
}
