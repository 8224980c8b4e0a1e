package store

import "context"

// RateStore holds display-currency conversion rates for the USD-pegged COIN.
// Rates are versioned: setting a rate inserts a new active row and retires the
// previous one, so historical valuations stay reproducible.
type RateStore struct {
	db DB
}

type RateRow struct {
	ID       string `db:"id"`
	Currency string `db:"currency"`
	Rate     string `db:"rate"`
}

func NewRateStore(db DB) *RateStore {
	return &RateStore{db: db}
}

func (s *RateStore) ListActive(ctx context.Context) ([]RateRow, error) {
	var rows []RateRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, currency, rate
		FROM exchange_rates
		WHERE is_active = TRUE
		ORDER BY currency
	`)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *RateStore) SetRate(ctx context.Context, tx Tx, currency, rate, actorID string) (string, error) {
	// Retire the previous active row first: a partial unique index allows at
	// most one active rate per currency.
	_, err := tx.ExecContext(ctx, `
		UPDATE exchange_rates
		SET is_active = FALSE, deleted_at = NOW()
		WHERE currency = $1 AND is_active = TRUE
	`, currency)
	if err != nil {
		return "", err
	}
	var id string
	err = tx.GetContext(ctx, &id, `
		INSERT INTO exchange_rates (id, currency, rate, is_active, created_by)
		VALUES (gen_random_uuid()::text, $1, $2, TRUE, $3)
		RETURNING id
	`, currency, rate, actorID)
	if err != nil {
		return "", err
	}
	return id, nil
}
