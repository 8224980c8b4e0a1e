package handlers

import (
	"context"

	"altyn/internal/models"
	"altyn/internal/services"
	"altyn/internal/store"
)

type UserStore interface {
	Create(ctx context.Context, tx store.Execer, id, username, email, passwordHash string) error
	GetByEmail(ctx context.Context, email string) (map[string]any, error)
	GetByUsername(ctx context.Context, username string) (map[string]any, error)
	GetByID(ctx context.Context, userID string) (map[string]any, error)
}

type WalletStore interface {
	Get(ctx context.Context, userID string) (models.Wallet, error)
	Ensure(ctx context.Context, tx store.Execer, userID string) error
	TokenHolders(ctx context.Context, limit int) ([]store.TokenHolder, error)
	SumCoinMinor(ctx context.Context) (int64, error)
}

type TreasuryStore interface {
	Get(ctx context.Context) (models.TreasuryStats, error)
}

type TransactionStore interface {
	ListByUser(ctx context.Context, userID, txType string, limit, offset int) ([]map[string]any, error)
	ListAll(ctx context.Context, limit, offset int) ([]map[string]any, error)
}

type ReceiptStore interface {
	GetByID(ctx context.Context, receiptID string) (models.Receipt, error)
}

type DividendStore interface {
	List(ctx context.Context, limit, offset int) ([]map[string]any, error)
}

type AdminStore interface {
	IsAdmin(ctx context.Context, userID string) (bool, bool, error)
	HasRole(ctx context.Context, userID, role string) (bool, error)
	CreateAdmin(ctx context.Context, tx store.Execer, userID string, isSuper bool, createdBy *string) error
	GrantRole(ctx context.Context, tx store.Execer, adminUserID, role string) error
	HasAnyAdmin(ctx context.Context) (bool, error)
}

type AuditStore interface {
	Log(ctx context.Context, tx store.Execer, actorID, action, entityType, entityID, data string) error
	List(ctx context.Context, limit, offset int) ([]map[string]any, error)
}

type RateStore interface {
	SetRate(ctx context.Context, tx store.Tx, currency, rate, actorID string) (string, error)
}

type LedgerService interface {
	Transfer(ctx context.Context, req services.TransferRequest) (models.Transaction, error)
	Pay(ctx context.Context, req services.PayRequest) (services.Settlement, error)
	Emit(ctx context.Context, req services.EmissionRequest) (models.Transaction, error)
	Distribute(ctx context.Context, adminUserID string) (models.DividendPayout, error)
	TreasuryStats(ctx context.Context, adminUserID string) (services.TreasuryOverview, error)
}

type RateService interface {
	Rates() map[string]string
	Convert(amountMinor int64, currency string) (int64, error)
	Currencies() []string
	Refresh(ctx context.Context) error
}
