package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/VetSecItPro/rowan-ledger/internal/models"
	"github.com/VetSecItPro/rowan-ledger/internal/money"
)

// WriteSettlement appends a settlement record and its expense links.
// Settlements are append-only; there is no update path.
func (s *SQLiteStore) WriteSettlement(ctx context.Context, settlement *models.Settlement) error {
	if settlement.ID == "" {
		settlement.ID = uuid.New().String()
	}
	if settlement.CreatedAt == 0 {
		settlement.CreatedAt = time.Now().Unix()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO settlements (id, space_id, from_user_id, to_user_id, amount,
			applied_amount, settlement_date, payment_method, reference_number, note,
			created_at, created_by)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		settlement.ID, settlement.SpaceID, settlement.FromUserID, settlement.ToUserID,
		settlement.Amount.String(), settlement.AppliedAmount.String(),
		settlement.SettlementDate.Unix(),
		nullable(settlement.PaymentMethod), nullable(settlement.ReferenceNumber),
		nullable(settlement.Note),
		settlement.CreatedAt, settlement.CreatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to insert settlement: %w", err)
	}

	for i, expenseID := range settlement.ExpenseIDs {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO settlement_expenses (settlement_id, expense_id, position) VALUES (?, ?, ?)",
			settlement.ID, expenseID, i,
		)
		if err != nil {
			return fmt.Errorf("failed to insert settlement expense link: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// ReadSettlements retrieves settlements for a household, newest first.
// A non-positive limit returns all of them.
func (s *SQLiteStore) ReadSettlements(ctx context.Context, spaceID string, limit int) ([]*models.Settlement, error) {
	query := `SELECT id, space_id, from_user_id, to_user_id, amount, applied_amount,
		settlement_date, payment_method, reference_number, note, created_at, created_by
		FROM settlements WHERE space_id = ?
		ORDER BY settlement_date DESC, created_at DESC`
	args := []interface{}{spaceID}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list settlements: %w", err)
	}
	defer rows.Close()

	var settlements []*models.Settlement
	for rows.Next() {
		settlement, err := scanSettlement(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan settlement: %w", err)
		}
		settlements = append(settlements, settlement)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate settlements: %w", err)
	}

	for _, settlement := range settlements {
		if err := s.loadSettlementExpenses(ctx, settlement); err != nil {
			return nil, err
		}
	}
	return settlements, nil
}

func (s *SQLiteStore) loadSettlementExpenses(ctx context.Context, settlement *models.Settlement) error {
	rows, err := s.db.QueryContext(ctx,
		"SELECT expense_id FROM settlement_expenses WHERE settlement_id = ? ORDER BY position",
		settlement.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to get settlement expenses: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var expenseID string
		if err := rows.Scan(&expenseID); err != nil {
			return fmt.Errorf("failed to scan settlement expense: %w", err)
		}
		settlement.ExpenseIDs = append(settlement.ExpenseIDs, expenseID)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate settlement expenses: %w", err)
	}
	return nil
}

func scanSettlement(r rowScanner) (*models.Settlement, error) {
	settlement := &models.Settlement{}
	var amount, applied string
	var settlementDate int64
	var method, reference, note sql.NullString

	err := r.Scan(&settlement.ID, &settlement.SpaceID, &settlement.FromUserID,
		&settlement.ToUserID, &amount, &applied, &settlementDate,
		&method, &reference, &note, &settlement.CreatedAt, &settlement.CreatedBy)
	if err != nil {
		return nil, err
	}

	if settlement.Amount, err = money.ParseAmount(amount); err != nil {
		return nil, fmt.Errorf("stored amount: %w", err)
	}
	if settlement.AppliedAmount, err = money.ParseAmount(applied); err != nil {
		return nil, fmt.Errorf("stored applied_amount: %w", err)
	}
	settlement.SettlementDate = time.Unix(settlementDate, 0).UTC()
	settlement.PaymentMethod = method.String
	settlement.ReferenceNumber = reference.String
	settlement.Note = note.String
	return settlement, nil
}

func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
