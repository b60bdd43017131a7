package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/VetSecItPro/rowan-ledger/internal/models"
	"github.com/VetSecItPro/rowan-ledger/internal/money"
	"github.com/VetSecItPro/rowan-ledger/internal/storage"
)

const splitColumns = `id, space_id, expense_id, user_id, amount_owed, amount_paid,
	percentage, is_payer, status, settled_at, created_at`

// ReadSplit retrieves a single split row by ID.
func (s *SQLiteStore) ReadSplit(ctx context.Context, splitID string) (*models.ExpenseSplit, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+splitColumns+" FROM expense_splits WHERE id = ?", splitID)
	split, err := scanSplit(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("split %s: %w", splitID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get split: %w", err)
	}
	return split, nil
}

// ReadSplits retrieves the split rows of one expense, payer first.
func (s *SQLiteStore) ReadSplits(ctx context.Context, expenseID string) ([]*models.ExpenseSplit, error) {
	return s.querySplits(ctx,
		"SELECT "+splitColumns+" FROM expense_splits WHERE expense_id = ? ORDER BY is_payer DESC, user_id",
		expenseID)
}

// ReadSplitsBySpace retrieves every split row in a household.
func (s *SQLiteStore) ReadSplitsBySpace(ctx context.Context, spaceID string) ([]*models.ExpenseSplit, error) {
	return s.querySplits(ctx,
		"SELECT "+splitColumns+" FROM expense_splits WHERE space_id = ? ORDER BY expense_id, is_payer DESC, user_id",
		spaceID)
}

// WriteSplits upserts split rows keyed by (expense_id, user_id), assigning
// IDs and creation timestamps to new rows.
func (s *SQLiteStore) WriteSplits(ctx context.Context, rows []*models.ExpenseSplit) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, row := range rows {
		// Keep the stored row ID stable across recalculations.
		var existingID string
		err := tx.QueryRowContext(ctx,
			"SELECT id FROM expense_splits WHERE expense_id = ? AND user_id = ?",
			row.ExpenseID, row.UserID,
		).Scan(&existingID)
		switch {
		case err == sql.ErrNoRows:
			if row.ID == "" {
				row.ID = uuid.New().String()
			}
			if row.CreatedAt == 0 {
				row.CreatedAt = time.Now().Unix()
			}
		case err != nil:
			return fmt.Errorf("failed to look up split: %w", err)
		default:
			row.ID = existingID
		}

		var pct interface{}
		if row.Percentage != nil {
			pct = row.Percentage.String()
		}
		var settledAt interface{}
		if row.SettledAt != nil {
			settledAt = row.SettledAt.Unix()
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO expense_splits (id, space_id, expense_id, user_id, amount_owed,
				amount_paid, percentage, is_payer, status, settled_at, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT (expense_id, user_id) DO UPDATE SET
				space_id = excluded.space_id,
				amount_owed = excluded.amount_owed,
				amount_paid = excluded.amount_paid,
				percentage = excluded.percentage,
				is_payer = excluded.is_payer,
				status = excluded.status,
				settled_at = excluded.settled_at`,
			row.ID, row.SpaceID, row.ExpenseID, row.UserID,
			row.AmountOwed.String(), row.AmountPaid.String(),
			pct, boolToInt(row.IsPayer), string(row.Status), settledAt, row.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to upsert split: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// DeleteSplits removes the split rows of one expense.
func (s *SQLiteStore) DeleteSplits(ctx context.Context, expenseID string) error {
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM expense_splits WHERE expense_id = ?", expenseID)
	if err != nil {
		return fmt.Errorf("failed to delete splits: %w", err)
	}
	return nil
}

func (s *SQLiteStore) querySplits(ctx context.Context, query string, args ...interface{}) ([]*models.ExpenseSplit, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query splits: %w", err)
	}
	defer rows.Close()

	var splits []*models.ExpenseSplit
	for rows.Next() {
		split, err := scanSplit(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan split: %w", err)
		}
		splits = append(splits, split)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate splits: %w", err)
	}
	return splits, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSplit(r rowScanner) (*models.ExpenseSplit, error) {
	split := &models.ExpenseSplit{}
	var owed, paid, status string
	var pct sql.NullString
	var settledAt sql.NullInt64
	var isPayer int

	err := r.Scan(&split.ID, &split.SpaceID, &split.ExpenseID, &split.UserID,
		&owed, &paid, &pct, &isPayer, &status, &settledAt, &split.CreatedAt)
	if err != nil {
		return nil, err
	}

	if split.AmountOwed, err = money.ParseAmount(owed); err != nil {
		return nil, fmt.Errorf("stored amount_owed: %w", err)
	}
	if split.AmountPaid, err = money.ParseAmount(paid); err != nil {
		return nil, fmt.Errorf("stored amount_paid: %w", err)
	}
	if pct.Valid {
		p, err := money.ParsePercent(pct.String)
		if err != nil {
			return nil, fmt.Errorf("stored percentage: %w", err)
		}
		split.Percentage = &p
	}
	if settledAt.Valid {
		ts := time.Unix(settledAt.Int64, 0).UTC()
		split.SettledAt = &ts
	}
	split.IsPayer = isPayer != 0
	split.Status = models.SplitStatus(status)
	return split, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
