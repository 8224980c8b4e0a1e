package store

import (
	"context"

	"altyn/internal/models"
)

// TreasuryStore owns the singleton treasury row. Nothing else writes the fee
// pool or the supply counters; callers that read-then-zero the pool take the
// row lock first so distributions serialize against fee-crediting transfers.
type TreasuryStore struct {
	db DB
}

func NewTreasuryStore(db DB) *TreasuryStore {
	return &TreasuryStore{db: db}
}

func (s *TreasuryStore) Get(ctx context.Context) (models.TreasuryStats, error) {
	var row models.TreasuryStats
	err := s.db.GetContext(ctx, &row, `
		SELECT collected_fees_minor, circulation_minor, token_supply_minor
		FROM treasury
		WHERE id = 1
	`)
	if err != nil {
		return models.TreasuryStats{}, err
	}
	return row, nil
}

func (s *TreasuryStore) GetForUpdate(ctx context.Context, tx Getter) (models.TreasuryStats, error) {
	var row models.TreasuryStats
	err := tx.GetContext(ctx, &row, `
		SELECT collected_fees_minor, circulation_minor, token_supply_minor
		FROM treasury
		WHERE id = 1
		FOR UPDATE
	`)
	if err != nil {
		return models.TreasuryStats{}, err
	}
	return row, nil
}

func (s *TreasuryStore) AddFees(ctx context.Context, tx Execer, deltaMinor int64) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE treasury
		SET collected_fees_minor = collected_fees_minor + $1, updated_at = NOW()
		WHERE id = 1
	`, deltaMinor)
	return err
}

func (s *TreasuryStore) AddCirculation(ctx context.Context, tx Execer, deltaMinor int64) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE treasury
		SET circulation_minor = circulation_minor + $1, updated_at = NOW()
		WHERE id = 1
	`, deltaMinor)
	return err
}

func (s *TreasuryStore) AddTokenSupply(ctx context.Context, tx Execer, deltaMinor int64) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE treasury
		SET token_supply_minor = token_supply_minor + $1, updated_at = NOW()
		WHERE id = 1
	`, deltaMinor)
	return err
}
