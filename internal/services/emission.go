package services

import (
	"context"
	"encoding/json"

	"altyn/internal/models"
	"altyn/internal/money"
	"altyn/internal/store"
	"altyn/internal/websocket"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type EmissionRequest struct {
	AdminUserID  string
	TargetUserID string
	Asset        string
	AmountMinor  int64
	Description  string
}

// Emit mints new supply into a target wallet. COIN emission grows total
// circulation; TOKEN emission grows total token supply and is the only way
// equity enters the ledger, since user-to-user TOKEN transfers are blocked.
func (s *LedgerService) Emit(ctx context.Context, req EmissionRequest) (models.Transaction, error) {
	if req.AmountMinor <= 0 {
		return models.Transaction{}, ErrInvalidAmount
	}
	if req.Asset != models.AssetCoin && req.Asset != models.AssetToken {
		return models.Transaction{}, store.ErrUnknownAsset
	}
	if err := s.requireAdmin(ctx, req.AdminUserID); err != nil {
		return models.Transaction{}, err
	}
	transaction := models.Transaction{
		ID:          uuid.NewString(),
		Type:        models.TxEmission,
		Asset:       req.Asset,
		ToUserID:    req.TargetUserID,
		AmountMinor: req.AmountMinor,
		NetMinor:    req.AmountMinor,
		Description: req.Description,
	}
	var balanceAfter int64
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := s.wallets.Ensure(ctx, tx, req.TargetUserID); err != nil {
			return err
		}
		wallet, err := s.wallets.GetForUpdate(ctx, tx, req.TargetUserID)
		if err != nil {
			return err
		}
		if err := s.wallets.Credit(ctx, tx, req.TargetUserID, req.Asset, req.AmountMinor); err != nil {
			return err
		}
		if req.Asset == models.AssetCoin {
			balanceAfter = wallet.CoinMinor + req.AmountMinor
			if err := s.treasury.AddCirculation(ctx, tx, req.AmountMinor); err != nil {
				return err
			}
		} else {
			balanceAfter = wallet.TokenMinor + req.AmountMinor
			if err := s.treasury.AddTokenSupply(ctx, tx, req.AmountMinor); err != nil {
				return err
			}
		}
		if err := s.txLog.Create(ctx, tx, store.TransactionInput{
			ID:          transaction.ID,
			Type:        transaction.Type,
			Asset:       transaction.Asset,
			ToUserID:    transaction.ToUserID,
			AmountMinor: transaction.AmountMinor,
			NetMinor:    transaction.NetMinor,
			Description: transaction.Description,
		}); err != nil {
			return err
		}
		data, _ := json.Marshal(map[string]string{
			"target_user_id": req.TargetUserID,
			"asset":          req.Asset,
			"amount":         money.FormatMinor(req.AmountMinor),
		})
		return s.audit.Log(ctx, tx, req.AdminUserID, "emit", "transaction", transaction.ID, string(data))
	})
	if err != nil {
		return models.Transaction{}, err
	}
	s.hub.BroadcastBalance(req.TargetUserID, websocket.BalanceUpdate{
		Asset:   req.Asset,
		Balance: money.FormatMinor(balanceAfter),
	})
	return transaction, nil
}

// TreasuryOverview is the admin stats read: pool and supply counters plus
// recent emission and dividend activity.
type TreasuryOverview struct {
	Stats           models.TreasuryStats
	RecentEmissions []map[string]any
	RecentDividends []map[string]any
}

func (s *LedgerService) TreasuryStats(ctx context.Context, adminUserID string) (TreasuryOverview, error) {
	if err := s.requireAdmin(ctx, adminUserID); err != nil {
		return TreasuryOverview{}, err
	}
	stats, err := s.treasury.Get(ctx)
	if err != nil {
		return TreasuryOverview{}, err
	}
	emissions, err := s.txLog.ListRecentByType(ctx, models.TxEmission, 10)
	if err != nil {
		return TreasuryOverview{}, err
	}
	dividends, err := s.txLog.ListRecentByType(ctx, models.TxDividend, 10)
	if err != nil {
		return TreasuryOverview{}, err
	}
	return TreasuryOverview{
		Stats:           stats,
		RecentEmissions: emissions,
		RecentDividends: dividends,
	}, nil
}
