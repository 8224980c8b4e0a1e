package handlers

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"strings"

	"altyn/internal/auth"
	"altyn/internal/middleware"
	"altyn/internal/models"
	"altyn/internal/money"
	"altyn/internal/services"
	"altyn/internal/websocket"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

type emitRequest struct {
	TargetUserID string `json:"target_user_id" validate:"required"`
	Asset        string `json:"asset" validate:"omitempty,oneof=COIN TOKEN"`
	Amount       string `json:"amount" validate:"required"`
	Description  string `json:"description"`
}

func (h *Handler) Emit(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req emitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if err := validateInput(req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	amountMinor, err := parseAmountMinor(req.Amount)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_amount")
		return
	}
	asset := req.Asset
	if asset == "" {
		asset = models.AssetCoin
	}
	transaction, err := h.ledger.Emit(r.Context(), services.EmissionRequest{
		AdminUserID:  userID,
		TargetUserID: req.TargetUserID,
		Asset:        asset,
		AmountMinor:  amountMinor,
		Description:  req.Description,
	})
	if err != nil {
		if err == services.ErrUnauthorized {
			respondError(w, http.StatusForbidden, "admin_required")
			return
		}
		if err == services.ErrInvalidAmount {
			respondError(w, http.StatusBadRequest, "invalid_amount")
			return
		}
		respondError(w, http.StatusInternalServerError, "emission_failed")
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{
		"transaction_id": transaction.ID,
		"asset":          transaction.Asset,
		"amount":         money.FormatMinor(transaction.AmountMinor),
	})
}

func (h *Handler) DistributeDividends(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	payout, err := h.ledger.Distribute(r.Context(), userID)
	if err != nil {
		switch err {
		case services.ErrUnauthorized:
			respondError(w, http.StatusForbidden, "admin_required")
		case services.ErrNothingToDistribute:
			respondError(w, http.StatusBadRequest, "nothing_to_distribute")
		default:
			respondError(w, http.StatusInternalServerError, "distribution_failed")
		}
		return
	}
	details := make([]map[string]any, 0, len(payout.Details))
	for _, share := range payout.Details {
		details = append(details, map[string]any{
			"user_id":          share.UserID,
			"token_percentage": share.TokenPercentage,
			"amount":           money.FormatMinor(share.AmountMinor),
		})
	}
	respondJSON(w, http.StatusCreated, map[string]any{
		"payout_id":            payout.ID,
		"total_distributed":    money.FormatMinor(payout.TotalMinor),
		"holders_count":        payout.HoldersCount,
		"distribution_details": details,
	})
}

func (h *Handler) ListDividendPayouts(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	limit := parseInt(query.Get("limit"), 50)
	page := parseInt(query.Get("page"), 1)
	offset := (page - 1) * limit
	rows, err := h.dividends.List(r.Context(), limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load dividend payouts")
		return
	}
	respondJSON(w, http.StatusOK, rows)
}

func (h *Handler) TreasuryStats(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	overview, err := h.ledger.TreasuryStats(r.Context(), userID)
	if err != nil {
		if err == services.ErrUnauthorized {
			respondError(w, http.StatusForbidden, "admin_required")
			return
		}
		respondError(w, http.StatusInternalServerError, "unable to load treasury stats")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"collected_fees":             money.FormatMinor(overview.Stats.CollectedFeesMinor),
		"total_coins_in_circulation": money.FormatMinor(overview.Stats.CirculationMinor),
		"total_token_supply":         money.FormatMinor(overview.Stats.TokenSupplyMinor),
		"recent_emissions":           normalizeTransactions(overview.RecentEmissions),
		"recent_dividends":           normalizeTransactions(overview.RecentDividends),
	})
}

func (h *Handler) AdminListTransactions(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	limit := parseInt(query.Get("limit"), 50)
	page := parseInt(query.Get("page"), 1)
	offset := (page - 1) * limit
	rows, err := h.transactions.ListAll(r.Context(), limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load transactions")
		return
	}
	respondJSON(w, http.StatusOK, normalizeTransactions(rows))
}

func (h *Handler) ListAuditLogs(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	limit := parseInt(query.Get("limit"), 50)
	page := parseInt(query.Get("page"), 1)
	offset := (page - 1) * limit
	rows, err := h.audit.List(r.Context(), limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load audit logs")
		return
	}
	respondJSON(w, http.StatusOK, rows)
}

// Reconcile checks the conservation invariant: every wallet's COIN balance
// must equal its net position in the transaction log, and the global sum of
// wallet balances plus the fee pool must equal total circulation.
func (h *Handler) Reconcile(w http.ResponseWriter, r *http.Request) {
	type reconRow struct {
		UserID        string `db:"user_id"`
		WalletBalance int64  `db:"wallet_balance"`
		LedgerBalance int64  `db:"ledger_balance"`
		Difference    int64  `db:"difference"`
	}
	var rows []reconRow
	query := `
		SELECT w.user_id,
		       w.coin_minor AS wallet_balance,
		       COALESCE((SELECT SUM(t.net_minor) FROM transactions t
		                 WHERE t.to_user_id = w.user_id AND t.asset = 'COIN'), 0)
		     - COALESCE((SELECT SUM(t.amount_minor) FROM transactions t
		                 WHERE t.from_user_id = w.user_id AND t.asset = 'COIN'), 0) AS ledger_balance,
		       w.coin_minor
		     - (COALESCE((SELECT SUM(t.net_minor) FROM transactions t
		                  WHERE t.to_user_id = w.user_id AND t.asset = 'COIN'), 0)
		      - COALESCE((SELECT SUM(t.amount_minor) FROM transactions t
		                  WHERE t.from_user_id = w.user_id AND t.asset = 'COIN'), 0)) AS difference
		FROM wallets w
		ORDER BY w.user_id
	`
	if err := h.reconcileDB.SelectContext(r.Context(), &rows, query); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to reconcile balances")
		return
	}
	normalized := make([]map[string]any, 0, len(rows))
	for _, row := range rows {
		normalized = append(normalized, map[string]any{
			"user_id":        row.UserID,
			"wallet_balance": money.FormatMinor(row.WalletBalance),
			"ledger_balance": money.FormatMinor(row.LedgerBalance),
			"difference":     money.FormatMinor(row.Difference),
		})
	}
	coinSum, err := h.wallets.SumCoinMinor(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to reconcile balances")
		return
	}
	stats, err := h.treasury.Get(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to reconcile balances")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"wallets": normalized,
		"global": map[string]any{
			"wallet_coin_sum": money.FormatMinor(coinSum),
			"collected_fees":  money.FormatMinor(stats.CollectedFeesMinor),
			"circulation":     money.FormatMinor(stats.CirculationMinor),
			"conserved":       coinSum+stats.CollectedFeesMinor == stats.CirculationMinor,
		},
	})
}

type setRateRequest struct {
	Currency string `json:"currency" validate:"required,len=3,alpha"`
	Rate     string `json:"rate" validate:"required"`
}

func (h *Handler) SetRate(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req setRateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if err := validateInput(req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	currency := strings.ToUpper(req.Currency)
	if currency == "USD" {
		respondError(w, http.StatusBadRequest, "usd_rate_fixed")
		return
	}
	rate, err := decimal.NewFromString(req.Rate)
	if err != nil || rate.LessThanOrEqual(decimal.Zero) {
		respondError(w, http.StatusBadRequest, "invalid_rate")
		return
	}
	err = h.txRunner.WithTx(r.Context(), func(tx *sqlx.Tx) error {
		rateID, err := h.rateStore.SetRate(r.Context(), tx, currency, rate.StringFixed(6), userID)
		if err != nil {
			return err
		}
		data, _ := json.Marshal(map[string]string{
			"currency": currency,
			"rate":     rate.StringFixed(6),
		})
		return h.audit.Log(r.Context(), tx, userID, "set_rate", "exchange_rate", rateID, string(data))
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to set rate")
		return
	}
	if err := h.rates.Refresh(r.Context()); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to reload rates")
		return
	}
	respondJSON(w, http.StatusCreated, map[string]string{"status": "rate_set"})
}

type promoteRequest struct {
	Identifier string `json:"identifier"`
}

func (h *Handler) PromoteAdmin(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	_, isSuper, err := h.admin.IsAdmin(r.Context(), userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to verify admin")
		return
	}
	if !isSuper {
		respondError(w, http.StatusForbidden, "super_admin_required")
		return
	}
	var req promoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Identifier == "" {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	targetUserID, err := h.resolveUserID(r.Context(), req.Identifier)
	if err != nil {
		if err == sql.ErrNoRows {
			respondError(w, http.StatusNotFound, "user not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "unable to resolve user")
		return
	}
	err = h.txRunner.WithTx(r.Context(), func(tx *sqlx.Tx) error {
		if err := h.admin.CreateAdmin(r.Context(), tx, targetUserID, false, &userID); err != nil {
			return err
		}
		data, _ := json.Marshal(map[string]string{
			"target_user_id": targetUserID,
		})
		return h.audit.Log(r.Context(), tx, userID, "promote_admin", "admin", targetUserID, string(data))
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to promote admin")
		return
	}
	respondJSON(w, http.StatusCreated, map[string]string{"status": "promoted"})
}

type grantRoleRequest struct {
	AdminUserID string `json:"admin_user_id"`
	Role        string `json:"role"`
}

func (h *Handler) GrantRole(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	_, isSuper, err := h.admin.IsAdmin(r.Context(), userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to verify admin")
		return
	}
	if !isSuper {
		respondError(w, http.StatusForbidden, "super_admin_required")
		return
	}
	var req grantRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.AdminUserID == "" || req.Role == "" {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	isAdmin, targetSuper, err := h.admin.IsAdmin(r.Context(), req.AdminUserID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to verify target admin")
		return
	}
	if !isAdmin {
		respondError(w, http.StatusBadRequest, "target is not an admin")
		return
	}
	if targetSuper {
		respondError(w, http.StatusBadRequest, "cannot assign roles to super admin")
		return
	}
	err = h.txRunner.WithTx(r.Context(), func(tx *sqlx.Tx) error {
		if err := h.admin.GrantRole(r.Context(), tx, req.AdminUserID, req.Role); err != nil {
			return err
		}
		data, _ := json.Marshal(map[string]string{
			"admin_user_id": req.AdminUserID,
			"role":          req.Role,
		})
		return h.audit.Log(r.Context(), tx, userID, "grant_role", "admin_role", req.AdminUserID, string(data))
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to grant role")
		return
	}
	respondJSON(w, http.StatusCreated, map[string]string{"status": "role_granted"})
}

func (h *Handler) WSBalances(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		authHeader := r.Header.Get("Authorization")
		if strings.HasPrefix(authHeader, "Bearer ") {
			token = strings.TrimPrefix(authHeader, "Bearer ")
		}
	}
	if token == "" {
		respondError(w, http.StatusUnauthorized, "missing token")
		return
	}
	claims, err := auth.ParseToken(h.cfg.JWTSecret, token)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "invalid token")
		return
	}
	websocket.ServeWS(w, r, h.hub, claims.UserID)
}

// resolveUserID accepts either a user ID or a username.
func (h *Handler) resolveUserID(ctx context.Context, identifier string) (string, error) {
	user, err := h.users.GetByID(ctx, identifier)
	if err == nil {
		return valueToString(user["id"]), nil
	}
	if err != sql.ErrNoRows {
		return "", err
	}
	user, err = h.users.GetByUsername(ctx, identifier)
	if err != nil {
		return "", err
	}
	return valueToString(user["id"]), nil
}
