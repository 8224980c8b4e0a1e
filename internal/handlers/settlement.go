package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"

	"altyn/internal/middleware"
	"altyn/internal/money"
	"altyn/internal/services"

	"github.com/go-chi/chi/v5"
)

type payRequest struct {
	SellerID    string `json:"seller_id" validate:"required"`
	Amount      string `json:"amount" validate:"required"`
	PaymentType string `json:"payment_type" validate:"required,oneof=marketplace service"`
	Description string `json:"description"`
}

func (h *Handler) Pay(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req payRequest
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
	settlement, err := h.ledger.Pay(r.Context(), services.PayRequest{
		BuyerID:     userID,
		SellerID:    req.SellerID,
		AmountMinor: amountMinor,
		PaymentType: req.PaymentType,
		Description: req.Description,
	})
	if err != nil {
		respondTransferError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{
		"transaction_id": settlement.Transaction.ID,
		"receipt": map[string]any{
			"receipt_id":  settlement.Receipt.ID,
			"type":        settlement.Receipt.Type,
			"buyer_name":  settlement.Receipt.BuyerName,
			"seller_name": settlement.Receipt.SellerName,
			"total_paid":  money.FormatMinor(settlement.Receipt.TotalMinor),
			"fee_amount":  money.FormatMinor(settlement.Receipt.FeeMinor),
			"status":      settlement.Receipt.Status,
		},
	})
}

func (h *Handler) GetReceipt(w http.ResponseWriter, r *http.Request) {
	receiptID := chi.URLParam(r, "id")
	receipt, err := h.receipts.GetByID(r.Context(), receiptID)
	if err != nil {
		if err == sql.ErrNoRows {
			respondError(w, http.StatusNotFound, "receipt not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "unable to load receipt")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"receipt_id":     receipt.ID,
		"transaction_id": receipt.TransactionID,
		"type":           receipt.Type,
		"buyer_name":     receipt.BuyerName,
		"seller_name":    receipt.SellerName,
		"total_paid":     money.FormatMinor(receipt.TotalMinor),
		"fee_amount":     money.FormatMinor(receipt.FeeMinor),
		"status":         receipt.Status,
		"date":           receipt.CreatedAt,
	})
}
