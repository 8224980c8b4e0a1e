package store

import "context"

type DividendStore struct {
	db DB
}

func NewDividendStore(db DB) *DividendStore {
	return &DividendStore{db: db}
}

type DividendPayoutInput struct {
	ID           string
	TotalMinor   int64
	HoldersCount int
	Details      string
}

type dividendRow struct {
	ID           string `db:"id"`
	TotalMinor   int64  `db:"total_minor"`
	HoldersCount int    `db:"holders_count"`
	Details      string `db:"details"`
	CreatedAt    any    `db:"created_at"`
}

func (s *DividendStore) Create(ctx context.Context, tx Execer, input DividendPayoutInput) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO dividend_payouts (id, total_minor, holders_count, details)
		VALUES ($1, $2, $3, $4)
	`, input.ID, input.TotalMinor, input.HoldersCount, input.Details)
	return err
}

func (s *DividendStore) List(ctx context.Context, limit, offset int) ([]map[string]any, error) {
	var rows []dividendRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, total_minor, holders_count, details, created_at
		FROM dividend_payouts
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, err
	}
	payouts := make([]map[string]any, 0, len(rows))
	for _, row := range rows {
		payouts = append(payouts, map[string]any{
			"id":            row.ID,
			"total_minor":   row.TotalMinor,
			"holders_count": row.HoldersCount,
			"details":       row.Details,
			"created_at":    row.CreatedAt,
		})
	}
	return payouts, nil
}
