package services

import (
	"context"
	"database/sql"
	"encoding/json"

	"altyn/internal/models"
	"altyn/internal/store"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const (
	PaymentMarketplace = "marketplace"
	PaymentService     = "service"
)

type PayRequest struct {
	BuyerID     string
	SellerID    string
	AmountMinor int64
	PaymentType string
	Description string
}

type Settlement struct {
	Transaction models.Transaction
	Receipt     models.Receipt
}

// Pay settles a marketplace or service purchase in COIN and issues a receipt
// in the same transaction as the balance movement. A failed settlement
// produces no receipt; the calling module must treat "no receipt" as "nothing
// happened" and leave its listing state untouched.
func (s *LedgerService) Pay(ctx context.Context, req PayRequest) (Settlement, error) {
	txType, err := paymentTxType(req.PaymentType)
	if err != nil {
		return Settlement{}, err
	}
	spec := transferSpec{
		Type:        txType,
		FromUserID:  req.BuyerID,
		ToUserID:    req.SellerID,
		AmountMinor: req.AmountMinor,
		Description: req.Description,
	}
	if err := spec.validate(); err != nil {
		return Settlement{}, err
	}
	buyerName, err := s.resolveUsername(ctx, req.BuyerID)
	if err != nil {
		return Settlement{}, err
	}
	sellerName, err := s.resolveUsername(ctx, req.SellerID)
	if err != nil {
		return Settlement{}, err
	}

	var result transferResult
	var receipt models.Receipt
	err = s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		var err error
		result, err = s.applyTransfer(ctx, tx, spec)
		if err != nil {
			return err
		}
		receipt = models.Receipt{
			ID:            uuid.NewString(),
			TransactionID: result.Transaction.ID,
			Type:          txType,
			BuyerName:     buyerName,
			SellerName:    sellerName,
			TotalMinor:    result.Transaction.AmountMinor,
			FeeMinor:      result.Transaction.FeeMinor,
			Status:        models.ReceiptCompleted,
		}
		if err := s.receipts.Create(ctx, tx, store.ReceiptInput{
			ID:            receipt.ID,
			TransactionID: receipt.TransactionID,
			Type:          receipt.Type,
			BuyerName:     receipt.BuyerName,
			SellerName:    receipt.SellerName,
			TotalMinor:    receipt.TotalMinor,
			FeeMinor:      receipt.FeeMinor,
			Status:        receipt.Status,
		}); err != nil {
			return err
		}
		data, _ := json.Marshal(map[string]string{
			"transaction_id": result.Transaction.ID,
			"receipt_id":     receipt.ID,
			"payment_type":   req.PaymentType,
		})
		return s.audit.Log(ctx, tx, req.BuyerID, "settle_payment", "receipt", receipt.ID, string(data))
	})
	if err != nil {
		return Settlement{}, err
	}
	s.broadcastCoin(req.BuyerID, result.FromBalanceAfter)
	s.broadcastCoin(req.SellerID, result.ToBalanceAfter)
	return Settlement{Transaction: result.Transaction, Receipt: receipt}, nil
}

func paymentTxType(paymentType string) (string, error) {
	switch paymentType {
	case PaymentMarketplace:
		return models.TxMarketplacePurchase, nil
	case PaymentService:
		return models.TxServicePayment, nil
	default:
		return "", ErrInvalidPaymentType
	}
}

func (s *LedgerService) resolveUsername(ctx context.Context, userID string) (string, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", ErrUserNotFound
		}
		return "", err
	}
	name, _ := user["username"].(string)
	return name, nil
}
