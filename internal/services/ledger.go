package services

import (
	"context"
	"encoding/json"

	"altyn/internal/db"
	"altyn/internal/models"
	"altyn/internal/money"
	"altyn/internal/store"
	"altyn/internal/websocket"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// LedgerService is the only write path into wallets and the treasury. Each
// operation runs as one serializable transaction: balance mutation, treasury
// update and transaction-log append commit together or roll back together.
type LedgerService struct {
	txRunner  db.TxRunner
	wallets   WalletStore
	treasury  TreasuryStore
	txLog     TransactionStore
	receipts  ReceiptStore
	dividends DividendStore
	users     UserStore
	admins    AdminStore
	audit     AuditStore
	hub       BalanceHub
}

type WalletStore interface {
	Get(ctx context.Context, userID string) (models.Wallet, error)
	Ensure(ctx context.Context, tx store.Execer, userID string) error
	GetForUpdate(ctx context.Context, tx store.Getter, userID string) (models.Wallet, error)
	Credit(ctx context.Context, tx store.Execer, userID, asset string, amountMinor int64) error
	Debit(ctx context.Context, tx store.Execer, userID, asset string, amountMinor int64) (int64, error)
	TokenHoldersForUpdate(ctx context.Context, tx store.Selecter) ([]models.Wallet, error)
}

type TreasuryStore interface {
	Get(ctx context.Context) (models.TreasuryStats, error)
	GetForUpdate(ctx context.Context, tx store.Getter) (models.TreasuryStats, error)
	AddFees(ctx context.Context, tx store.Execer, deltaMinor int64) error
	AddCirculation(ctx context.Context, tx store.Execer, deltaMinor int64) error
	AddTokenSupply(ctx context.Context, tx store.Execer, deltaMinor int64) error
}

type TransactionStore interface {
	Create(ctx context.Context, tx store.Execer, input store.TransactionInput) error
	ListRecentByType(ctx context.Context, txType string, limit int) ([]map[string]any, error)
}

type ReceiptStore interface {
	Create(ctx context.Context, tx store.Execer, input store.ReceiptInput) error
}

type DividendStore interface {
	Create(ctx context.Context, tx store.Execer, input store.DividendPayoutInput) error
}

type UserStore interface {
	GetByID(ctx context.Context, userID string) (map[string]any, error)
}

type AdminStore interface {
	IsAdmin(ctx context.Context, userID string) (bool, bool, error)
}

type AuditStore interface {
	Log(ctx context.Context, tx store.Execer, actorID, action, entityType, entityID, data string) error
}

type BalanceHub interface {
	BroadcastBalance(userID string, update websocket.BalanceUpdate)
}

func NewLedgerService(txRunner db.TxRunner, wallets WalletStore, treasury TreasuryStore, txLog TransactionStore, receipts ReceiptStore, dividends DividendStore, users UserStore, admins AdminStore, audit AuditStore, hub BalanceHub) *LedgerService {
	return &LedgerService{
		txRunner:  txRunner,
		wallets:   wallets,
		treasury:  treasury,
		txLog:     txLog,
		receipts:  receipts,
		dividends: dividends,
		users:     users,
		admins:    admins,
		audit:     audit,
		hub:       hub,
	}
}

type TransferRequest struct {
	FromUserID  string
	ToUserID    string
	AmountMinor int64
	Description string
}

// Transfer moves COIN between two user wallets. The sender is debited the
// gross amount, the recipient is credited the net, and the fee accrues to the
// treasury pool.
func (s *LedgerService) Transfer(ctx context.Context, req TransferRequest) (models.Transaction, error) {
	spec := transferSpec{
		Type:        models.TxTransfer,
		FromUserID:  req.FromUserID,
		ToUserID:    req.ToUserID,
		AmountMinor: req.AmountMinor,
		Description: req.Description,
	}
	if err := spec.validate(); err != nil {
		return models.Transaction{}, err
	}
	var result transferResult
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		var err error
		result, err = s.applyTransfer(ctx, tx, spec)
		if err != nil {
			return err
		}
		data, _ := json.Marshal(map[string]string{"transaction_id": result.Transaction.ID})
		return s.audit.Log(ctx, tx, req.FromUserID, "transfer", "transaction", result.Transaction.ID, string(data))
	})
	if err != nil {
		return models.Transaction{}, err
	}
	s.broadcastCoin(req.FromUserID, result.FromBalanceAfter)
	s.broadcastCoin(req.ToUserID, result.ToBalanceAfter)
	return result.Transaction, nil
}

type transferSpec struct {
	Type        string
	FromUserID  string
	ToUserID    string
	AmountMinor int64
	Description string
}

func (t transferSpec) validate() error {
	if t.AmountMinor <= 0 {
		return ErrInvalidAmount
	}
	if t.FromUserID == t.ToUserID {
		return ErrSelfTransfer
	}
	return nil
}

type transferResult struct {
	Transaction      models.Transaction
	FromBalanceAfter int64
	ToBalanceAfter   int64
}

// applyTransfer performs the debit-gross / credit-net / fee-accrual / log-append
// sequence inside the caller's transaction. Wallet rows are locked in user-ID
// order so two crossing transfers cannot deadlock.
func (s *LedgerService) applyTransfer(ctx context.Context, tx *sqlx.Tx, spec transferSpec) (transferResult, error) {
	firstID, secondID := orderedIDs(spec.FromUserID, spec.ToUserID)
	if err := s.wallets.Ensure(ctx, tx, firstID); err != nil {
		return transferResult{}, err
	}
	if err := s.wallets.Ensure(ctx, tx, secondID); err != nil {
		return transferResult{}, err
	}
	first, err := s.wallets.GetForUpdate(ctx, tx, firstID)
	if err != nil {
		return transferResult{}, err
	}
	second, err := s.wallets.GetForUpdate(ctx, tx, secondID)
	if err != nil {
		return transferResult{}, err
	}
	from, to := first, second
	if from.UserID != spec.FromUserID {
		from, to = second, first
	}
	if from.CoinMinor < spec.AmountMinor {
		return transferResult{}, ErrInsufficientFunds
	}
	feeMinor := money.FeeMinor(spec.AmountMinor)
	netMinor := spec.AmountMinor - feeMinor

	changed, err := s.wallets.Debit(ctx, tx, spec.FromUserID, models.AssetCoin, spec.AmountMinor)
	if err != nil {
		return transferResult{}, err
	}
	if changed == 0 {
		return transferResult{}, ErrInsufficientFunds
	}
	if err := s.wallets.Credit(ctx, tx, spec.ToUserID, models.AssetCoin, netMinor); err != nil {
		return transferResult{}, err
	}
	if feeMinor > 0 {
		if err := s.treasury.AddFees(ctx, tx, feeMinor); err != nil {
			return transferResult{}, err
		}
	}
	transaction := models.Transaction{
		ID:          uuid.NewString(),
		Type:        spec.Type,
		Asset:       models.AssetCoin,
		FromUserID:  &spec.FromUserID,
		ToUserID:    spec.ToUserID,
		AmountMinor: spec.AmountMinor,
		FeeMinor:    feeMinor,
		NetMinor:    netMinor,
		Description: spec.Description,
	}
	if err := s.txLog.Create(ctx, tx, store.TransactionInput{
		ID:          transaction.ID,
		Type:        transaction.Type,
		Asset:       transaction.Asset,
		FromUserID:  transaction.FromUserID,
		ToUserID:    transaction.ToUserID,
		AmountMinor: transaction.AmountMinor,
		FeeMinor:    transaction.FeeMinor,
		NetMinor:    transaction.NetMinor,
		Description: transaction.Description,
	}); err != nil {
		return transferResult{}, err
	}
	return transferResult{
		Transaction:      transaction,
		FromBalanceAfter: from.CoinMinor - spec.AmountMinor,
		ToBalanceAfter:   to.CoinMinor + netMinor,
	}, nil
}

func (s *LedgerService) requireAdmin(ctx context.Context, userID string) error {
	isAdmin, _, err := s.admins.IsAdmin(ctx, userID)
	if err != nil {
		return err
	}
	if !isAdmin {
		return ErrUnauthorized
	}
	return nil
}

func (s *LedgerService) broadcastCoin(userID string, balanceMinor int64) {
	s.hub.BroadcastBalance(userID, websocket.BalanceUpdate{
		Asset:   models.AssetCoin,
		Balance: money.FormatMinor(balanceMinor),
	})
}

func orderedIDs(firstID, secondID string) (string, string) {
	if firstID <= secondID {
		return firstID, secondID
	}
	return secondID, firstID
}
