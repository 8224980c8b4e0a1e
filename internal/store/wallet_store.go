package store

import (
	"context"
	"database/sql"
	"errors"

	"altyn/internal/models"
)

type WalletStore struct {
	db DB
}

var ErrUnknownAsset = errors.New("unknown asset")

func NewWalletStore(db DB) *WalletStore {
	return &WalletStore{db: db}
}

type TokenHolder struct {
	UserID     string `db:"user_id"`
	Username   string `db:"username"`
	TokenMinor int64  `db:"token_minor"`
}

// Get returns a zero-balance wallet for unknown users: wallets are created
// lazily on first credit, so an absent row reads as empty, never as an error.
func (s *WalletStore) Get(ctx context.Context, userID string) (models.Wallet, error) {
	var row models.Wallet
	err := s.db.GetContext(ctx, &row, `
		SELECT user_id, coin_minor, token_minor, created_at
		FROM wallets
		WHERE user_id = $1
	`, userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.Wallet{UserID: userID}, nil
		}
		return models.Wallet{}, err
	}
	return row, nil
}

// Ensure makes the wallet row exist so it can be locked and mutated.
func (s *WalletStore) Ensure(ctx context.Context, tx Execer, userID string) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO wallets (user_id)
		VALUES ($1)
		ON CONFLICT (user_id) DO NOTHING
	`, userID)
	return err
}

func (s *WalletStore) GetForUpdate(ctx context.Context, tx Getter, userID string) (models.Wallet, error) {
	var row models.Wallet
	err := tx.GetContext(ctx, &row, `
		SELECT user_id, coin_minor, token_minor, created_at
		FROM wallets
		WHERE user_id = $1
		FOR UPDATE
	`, userID)
	if err != nil {
		return models.Wallet{}, err
	}
	return row, nil
}

// Credit upserts the wallet and increments the asset balance in one statement.
func (s *WalletStore) Credit(ctx context.Context, tx Execer, userID, asset string, amountMinor int64) error {
	column, err := balanceColumn(asset)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO wallets (user_id, `+column+`)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE
		SET `+column+` = wallets.`+column+` + $2, updated_at = NOW()
	`, userID, amountMinor)
	return err
}

// Debit decrements the balance only when it covers the amount; the check and
// the mutation are one statement, so a concurrent overdraft is impossible.
// Returns the number of rows changed: 0 means insufficient funds.
func (s *WalletStore) Debit(ctx context.Context, tx Execer, userID, asset string, amountMinor int64) (int64, error) {
	column, err := balanceColumn(asset)
	if err != nil {
		return 0, err
	}
	res, err := tx.ExecContext(ctx, `
		UPDATE wallets
		SET `+column+` = `+column+` - $2, updated_at = NOW()
		WHERE user_id = $1 AND `+column+` >= $2
	`, userID, amountMinor)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// TokenHoldersForUpdate locks every wallet with a TOKEN position for the
// duration of a dividend run, largest position first so the rounding residual
// lands on the biggest holder, user_id as the stable tie-break.
func (s *WalletStore) TokenHoldersForUpdate(ctx context.Context, tx Selecter) ([]models.Wallet, error) {
	var rows []models.Wallet
	err := tx.SelectContext(ctx, &rows, `
		SELECT user_id, coin_minor, token_minor, created_at
		FROM wallets
		WHERE token_minor > 0
		ORDER BY token_minor DESC, user_id
		FOR UPDATE
	`)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *WalletStore) TokenHolders(ctx context.Context, limit int) ([]TokenHolder, error) {
	var rows []TokenHolder
	err := s.db.SelectContext(ctx, &rows, `
		SELECT w.user_id, COALESCE(u.username, '') AS username, w.token_minor
		FROM wallets w
		LEFT JOIN users u ON u.id = w.user_id
		WHERE w.token_minor > 0
		ORDER BY w.token_minor DESC, w.user_id
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *WalletStore) SumCoinMinor(ctx context.Context) (int64, error) {
	var sum int64
	err := s.db.GetContext(ctx, &sum, `
		SELECT COALESCE(SUM(coin_minor), 0)
		FROM wallets
	`)
	return sum, err
}

func balanceColumn(asset string) (string, error) {
	switch asset {
	case models.AssetCoin:
		return "coin_minor", nil
	case models.AssetToken:
		return "token_minor", nil
	default:
		return "", ErrUnknownAsset
	}
}
