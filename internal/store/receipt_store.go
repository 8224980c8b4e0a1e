package store

import (
	"context"

	"altyn/internal/models"
)

type ReceiptStore struct {
	db DB
}

func NewReceiptStore(db DB) *ReceiptStore {
	return &ReceiptStore{db: db}
}

type ReceiptInput struct {
	ID            string
	TransactionID string
	Type          string
	BuyerName     string
	SellerName    string
	TotalMinor    int64
	FeeMinor      int64
	Status        string
}

func (s *ReceiptStore) Create(ctx context.Context, tx Execer, input ReceiptInput) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO receipts (id, transaction_id, type, buyer_name, seller_name, total_minor, fee_minor, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, input.ID, input.TransactionID, input.Type, input.BuyerName, input.SellerName,
		input.TotalMinor, input.FeeMinor, input.Status)
	return err
}

func (s *ReceiptStore) GetByID(ctx context.Context, receiptID string) (models.Receipt, error) {
	var row models.Receipt
	err := s.db.GetContext(ctx, &row, `
		SELECT id, transaction_id, type, buyer_name, seller_name, total_minor, fee_minor, status, created_at
		FROM receipts
		WHERE id = $1
	`, receiptID)
	if err != nil {
		return models.Receipt{}, err
	}
	return row, nil
}
