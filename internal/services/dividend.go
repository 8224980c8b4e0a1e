package services

import (
	"context"
	"encoding/json"

	"altyn/internal/models"
	"altyn/internal/money"
	"altyn/internal/store"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Distribute pays the accumulated fee pool out to TOKEN holders pro rata.
// The treasury row lock taken first serializes the run against any transfer
// that would add to the pool mid-distribution. Each payout is floored to the
// cent and the remainder goes to the largest holder, so every share stays
// non-negative and the pool drains to exactly zero.
func (s *LedgerService) Distribute(ctx context.Context, adminUserID string) (models.DividendPayout, error) {
	if err := s.requireAdmin(ctx, adminUserID); err != nil {
		return models.DividendPayout{}, err
	}
	var payout models.DividendPayout
	var credited []models.DividendShare
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		payout = models.DividendPayout{}
		credited = credited[:0]

		stats, err := s.treasury.GetForUpdate(ctx, tx)
		if err != nil {
			return err
		}
		if stats.CollectedFeesMinor <= 0 {
			return ErrNothingToDistribute
		}
		holders, err := s.wallets.TokenHoldersForUpdate(ctx, tx)
		if err != nil {
			return err
		}
		if len(holders) == 0 || stats.TokenSupplyMinor <= 0 {
			return ErrNothingToDistribute
		}

		pool := stats.CollectedFeesMinor
		supply := stats.TokenSupplyMinor
		shares := make([]models.DividendShare, len(holders))
		var distributed int64
		for i, holder := range holders {
			amount := money.ShareMinor(pool, holder.TokenMinor, supply)
			shares[i] = models.DividendShare{
				UserID:          holder.UserID,
				TokenPercentage: money.Percentage(holder.TokenMinor, supply),
				AmountMinor:     amount,
			}
			distributed += amount
		}
		// Floored shares never exceed the pool, so the remainder is
		// non-negative. Holders are ordered largest first; it lands there.
		shares[0].AmountMinor += pool - distributed

		for _, share := range shares {
			if share.AmountMinor <= 0 {
				continue
			}
			if err := s.wallets.Credit(ctx, tx, share.UserID, models.AssetCoin, share.AmountMinor); err != nil {
				return err
			}
			if err := s.txLog.Create(ctx, tx, store.TransactionInput{
				ID:          uuid.NewString(),
				Type:        models.TxDividend,
				Asset:       models.AssetCoin,
				ToUserID:    share.UserID,
				AmountMinor: share.AmountMinor,
				NetMinor:    share.AmountMinor,
				Description: "Dividend distribution",
			}); err != nil {
				return err
			}
			credited = append(credited, share)
		}
		if err := s.treasury.AddFees(ctx, tx, -pool); err != nil {
			return err
		}

		payout = models.DividendPayout{
			ID:           uuid.NewString(),
			TotalMinor:   pool,
			HoldersCount: len(holders),
			Details:      shares,
		}
		details, err := json.Marshal(shares)
		if err != nil {
			return err
		}
		if err := s.dividends.Create(ctx, tx, store.DividendPayoutInput{
			ID:           payout.ID,
			TotalMinor:   payout.TotalMinor,
			HoldersCount: payout.HoldersCount,
			Details:      string(details),
		}); err != nil {
			return err
		}
		data, _ := json.Marshal(map[string]any{
			"payout_id":     payout.ID,
			"total":         money.FormatMinor(pool),
			"holders_count": len(holders),
		})
		return s.audit.Log(ctx, tx, adminUserID, "distribute_dividends", "dividend_payout", payout.ID, string(data))
	})
	if err != nil {
		return models.DividendPayout{}, err
	}
	for _, share := range credited {
		wallet, err := s.wallets.Get(ctx, share.UserID)
		if err != nil {
			continue
		}
		s.broadcastCoin(share.UserID, wallet.CoinMinor)
	}
	return payout, nil
}
