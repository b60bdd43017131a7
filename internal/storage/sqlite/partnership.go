package sqlite

import (
	"context"
	"fmt"

	"github.com/VetSecItPro/rowan-ledger/internal/models"
	"github.com/VetSecItPro/rowan-ledger/internal/money"
	"github.com/VetSecItPro/rowan-ledger/internal/storage"
)

// ReadPartnership retrieves the household's declared incomes.
func (s *SQLiteStore) ReadPartnership(ctx context.Context, spaceID string) (*models.PartnershipBalance, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT user_id, monthly_income FROM partnership_incomes WHERE space_id = ?",
		spaceID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get partnership: %w", err)
	}
	defer rows.Close()

	incomes := make(map[string]money.Amount)
	for rows.Next() {
		var userID, income string
		if err := rows.Scan(&userID, &income); err != nil {
			return nil, fmt.Errorf("failed to scan partnership income: %w", err)
		}
		amount, err := money.ParseAmount(income)
		if err != nil {
			return nil, fmt.Errorf("stored monthly_income: %w", err)
		}
		incomes[userID] = amount
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate partnership incomes: %w", err)
	}

	if len(incomes) == 0 {
		return nil, fmt.Errorf("partnership for space %s: %w", spaceID, storage.ErrNotFound)
	}
	return &models.PartnershipBalance{SpaceID: spaceID, MonthlyIncomes: incomes}, nil
}

// WritePartnership replaces the household's declared incomes.
func (s *SQLiteStore) WritePartnership(ctx context.Context, partnership *models.PartnershipBalance) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM partnership_incomes WHERE space_id = ?", partnership.SpaceID); err != nil {
		return fmt.Errorf("failed to clear partnership incomes: %w", err)
	}
	for userID, income := range partnership.MonthlyIncomes {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO partnership_incomes (space_id, user_id, monthly_income) VALUES (?, ?, ?)",
			partnership.SpaceID, userID, income.String()); err != nil {
			return fmt.Errorf("failed to insert partnership income: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
