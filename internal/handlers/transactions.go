package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"strings"

	"altyn/internal/middleware"
	"altyn/internal/money"
	"altyn/internal/services"
)

type transferRequest struct {
	ToUserID    string `json:"to_user_id"`
	ToUsername  string `json:"to_username"`
	Amount      string `json:"amount" validate:"required"`
	Description string `json:"description"`
}

func (h *Handler) Transfer(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req transferRequest
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
	toUserID := strings.TrimSpace(req.ToUserID)
	if toUserID == "" {
		if req.ToUsername == "" {
			respondError(w, http.StatusBadRequest, "recipient is required")
			return
		}
		recipient, err := h.users.GetByUsername(r.Context(), req.ToUsername)
		if err != nil {
			if err == sql.ErrNoRows {
				respondError(w, http.StatusNotFound, "recipient not found")
				return
			}
			respondError(w, http.StatusInternalServerError, "unable to resolve recipient")
			return
		}
		toUserID = valueToString(recipient["id"])
	} else {
		// A raw ID still has to name an existing user before any wallet row
		// is touched on its behalf.
		if _, err := h.users.GetByID(r.Context(), toUserID); err != nil {
			if err == sql.ErrNoRows {
				respondError(w, http.StatusNotFound, "recipient not found")
				return
			}
			respondError(w, http.StatusInternalServerError, "unable to resolve recipient")
			return
		}
	}
	transaction, err := h.ledger.Transfer(r.Context(), services.TransferRequest{
		FromUserID:  userID,
		ToUserID:    toUserID,
		AmountMinor: amountMinor,
		Description: req.Description,
	})
	if err != nil {
		respondTransferError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{
		"transaction_id": transaction.ID,
		"amount":         money.FormatMinor(transaction.AmountMinor),
		"fee":            money.FormatMinor(transaction.FeeMinor),
		"net_amount":     money.FormatMinor(transaction.NetMinor),
	})
}

func respondTransferError(w http.ResponseWriter, err error) {
	switch err {
	case services.ErrInsufficientFunds:
		respondError(w, http.StatusBadRequest, "insufficient_funds")
	case services.ErrInvalidAmount:
		respondError(w, http.StatusBadRequest, "invalid_amount")
	case services.ErrSelfTransfer:
		respondError(w, http.StatusBadRequest, "self_transfer_not_allowed")
	case services.ErrTokenTransferBlocked:
		respondError(w, http.StatusBadRequest, "token_transfer_not_allowed")
	case services.ErrUserNotFound:
		respondError(w, http.StatusNotFound, "user_not_found")
	case services.ErrInvalidPaymentType:
		respondError(w, http.StatusBadRequest, "invalid_payment_type")
	default:
		respondError(w, http.StatusInternalServerError, "transfer_failed")
	}
}
