package store

import (
	"context"
	"fmt"
)

type TransactionStore struct {
	db DB
}

func NewTransactionStore(db DB) *TransactionStore {
	return &TransactionStore{db: db}
}

type TransactionInput struct {
	ID          string
	Type        string
	Asset       string
	FromUserID  *string
	ToUserID    string
	AmountMinor int64
	FeeMinor    int64
	NetMinor    int64
	Description string
}

type transactionRow struct {
	ID           string  `db:"id"`
	Type         string  `db:"type"`
	Asset        string  `db:"asset"`
	FromUserID   *string `db:"from_user_id"`
	FromUsername *string `db:"from_username"`
	ToUserID     string  `db:"to_user_id"`
	ToUsername   *string `db:"to_username"`
	AmountMinor  int64   `db:"amount_minor"`
	FeeMinor     int64   `db:"fee_minor"`
	NetMinor     int64   `db:"net_minor"`
	Description  string  `db:"description"`
	CreatedAt    any     `db:"created_at"`
}

// Create appends one immutable log entry. There is no update or delete path:
// corrections are new compensating transactions.
func (s *TransactionStore) Create(ctx context.Context, tx Execer, input TransactionInput) error {
	query := `
		INSERT INTO transactions (id, type, asset, from_user_id, to_user_id, amount_minor, fee_minor, net_minor, description)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := tx.ExecContext(ctx, query,
		input.ID, input.Type, input.Asset, input.FromUserID, input.ToUserID,
		input.AmountMinor, input.FeeMinor, input.NetMinor, input.Description,
	)
	return err
}

func (s *TransactionStore) ListByUser(ctx context.Context, userID, txType string, limit, offset int) ([]map[string]any, error) {
	var rows []transactionRow
	query := `
		SELECT t.id, t.type, t.asset, t.from_user_id, fu.username AS from_username,
		       t.to_user_id, tu.username AS to_username,
		       t.amount_minor, t.fee_minor, t.net_minor, t.description, t.created_at
		FROM transactions t
		LEFT JOIN users fu ON fu.id = t.from_user_id
		LEFT JOIN users tu ON tu.id = t.to_user_id
		WHERE (t.from_user_id = $1 OR t.to_user_id = $1)
	`
	args := []any{userID}
	param := 2
	if txType != "" {
		query += " AND t.type = $2"
		args = append(args, txType)
		param = 3
	}
	query += " ORDER BY t.created_at DESC LIMIT $" + itoa(param) + " OFFSET $" + itoa(param+1)
	args = append(args, limit, offset)
	err := s.db.SelectContext(ctx, &rows, query, args...)
	if err != nil {
		return nil, err
	}
	return transactionRowsToMaps(rows), nil
}

func (s *TransactionStore) ListAll(ctx context.Context, limit, offset int) ([]map[string]any, error) {
	var rows []transactionRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT t.id, t.type, t.asset, t.from_user_id, fu.username AS from_username,
		       t.to_user_id, tu.username AS to_username,
		       t.amount_minor, t.fee_minor, t.net_minor, t.description, t.created_at
		FROM transactions t
		LEFT JOIN users fu ON fu.id = t.from_user_id
		LEFT JOIN users tu ON tu.id = t.to_user_id
		ORDER BY t.created_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, err
	}
	return transactionRowsToMaps(rows), nil
}

// ListRecentByType feeds the treasury stats view with recent emission and
// dividend activity.
func (s *TransactionStore) ListRecentByType(ctx context.Context, txType string, limit int) ([]map[string]any, error) {
	var rows []transactionRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT t.id, t.type, t.asset, t.from_user_id, fu.username AS from_username,
		       t.to_user_id, tu.username AS to_username,
		       t.amount_minor, t.fee_minor, t.net_minor, t.description, t.created_at
		FROM transactions t
		LEFT JOIN users fu ON fu.id = t.from_user_id
		LEFT JOIN users tu ON tu.id = t.to_user_id
		WHERE t.type = $1
		ORDER BY t.created_at DESC
		LIMIT $2
	`, txType, limit)
	if err != nil {
		return nil, err
	}
	return transactionRowsToMaps(rows), nil
}

func itoa(value int) string {
	return fmt.Sprintf("%d", value)
}

func transactionRowsToMaps(rows []transactionRow) []map[string]any {
	maps := make([]map[string]any, 0, len(rows))
	for _, row := range rows {
		maps = append(maps, map[string]any{
			"id":            row.ID,
			"type":          row.Type,
			"asset":         row.Asset,
			"from_user_id":  derefStringPtr(row.FromUserID),
			"from_username": derefStringPtr(row.FromUsername),
			"to_user_id":    row.ToUserID,
			"to_username":   derefStringPtr(row.ToUsername),
			"amount_minor":  row.AmountMinor,
			"fee_minor":     row.FeeMinor,
			"net_minor":     row.NetMinor,
			"description":   row.Description,
			"created_at":    row.CreatedAt,
		})
	}
	return maps
}
