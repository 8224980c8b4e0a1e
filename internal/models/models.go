package models

import "time"

const (
	AssetCoin  = "COIN"
	AssetToken = "TOKEN"
)

const (
	TxTransfer            = "TRANSFER"
	TxEmission            = "EMISSION"
	TxDividend            = "DIVIDEND"
	TxMarketplacePurchase = "MARKETPLACE_PURCHASE"
	TxServicePayment      = "SERVICE_PAYMENT"
)

const (
	ReceiptCompleted = "COMPLETED"
	ReceiptFailed    = "FAILED"
)

type User struct {
	ID           string    `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

type Wallet struct {
	UserID     string    `db:"user_id" json:"user_id"`
	CoinMinor  int64     `db:"coin_minor" json:"coin_minor"`
	TokenMinor int64     `db:"token_minor" json:"token_minor"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

type Transaction struct {
	ID          string    `db:"id" json:"id"`
	Type        string    `db:"type" json:"type"`
	Asset       string    `db:"asset" json:"asset"`
	FromUserID  *string   `db:"from_user_id" json:"from_user_id,omitempty"`
	ToUserID    string    `db:"to_user_id" json:"to_user_id"`
	AmountMinor int64     `db:"amount_minor" json:"amount_minor"`
	FeeMinor    int64     `db:"fee_minor" json:"fee_minor"`
	NetMinor    int64     `db:"net_minor" json:"net_minor"`
	Description string    `db:"description" json:"description"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// TreasuryStats is the singleton treasury row. The conservation invariant is
// sum(wallet coin_minor) + CollectedFeesMinor == CirculationMinor.
type TreasuryStats struct {
	CollectedFeesMinor int64 `db:"collected_fees_minor" json:"collected_fees_minor"`
	CirculationMinor   int64 `db:"circulation_minor" json:"circulation_minor"`
	TokenSupplyMinor   int64 `db:"token_supply_minor" json:"token_supply_minor"`
}

type Receipt struct {
	ID            string    `db:"id" json:"receipt_id"`
	TransactionID string    `db:"transaction_id" json:"transaction_id"`
	Type          string    `db:"type" json:"type"`
	BuyerName     string    `db:"buyer_name" json:"buyer_name"`
	SellerName    string    `db:"seller_name" json:"seller_name"`
	TotalMinor    int64     `db:"total_minor" json:"total_minor"`
	FeeMinor      int64     `db:"fee_minor" json:"fee_minor"`
	Status        string    `db:"status" json:"status"`
	CreatedAt     time.Time `db:"created_at" json:"date"`
}

type DividendPayout struct {
	ID           string          `json:"id"`
	TotalMinor   int64           `json:"total_minor"`
	HoldersCount int             `json:"holders_count"`
	Details      []DividendShare `json:"distribution_details"`
	CreatedAt    time.Time       `json:"created_at"`
}

type DividendShare struct {
	UserID          string `json:"user_id"`
	TokenPercentage string `json:"token_percentage"`
	AmountMinor     int64  `json:"amount_minor"`
}
