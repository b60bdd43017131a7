package sqlite

import "database/sql"

// migrations contains the SQL statements to set up the database schema.
// These run on startup to ensure tables exist.
// Monetary columns are TEXT holding exact decimal strings; REAL would break
// the cent-sum invariant.
const schema = `
CREATE TABLE IF NOT EXISTS expense_splits (
    id TEXT PRIMARY KEY,
    space_id TEXT NOT NULL,
    expense_id TEXT NOT NULL,
    user_id TEXT NOT NULL,
    amount_owed TEXT NOT NULL,
    amount_paid TEXT NOT NULL,
    percentage TEXT,
    is_payer INTEGER NOT NULL DEFAULT 0,
    status TEXT NOT NULL,
    settled_at INTEGER,
    created_at INTEGER NOT NULL,
    UNIQUE (expense_id, user_id)
);

CREATE TABLE IF NOT EXISTS settlements (
    id TEXT PRIMARY KEY,
    space_id TEXT NOT NULL,
    from_user_id TEXT NOT NULL,
    to_user_id TEXT NOT NULL,
    amount TEXT NOT NULL,
    applied_amount TEXT NOT NULL,
    settlement_date INTEGER NOT NULL,
    payment_method TEXT,
    reference_number TEXT,
    note TEXT,
    created_at INTEGER NOT NULL,
    created_by TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS settlement_expenses (
    settlement_id TEXT NOT NULL,
    expense_id TEXT NOT NULL,
    position INTEGER NOT NULL,
    PRIMARY KEY (settlement_id, expense_id),
    FOREIGN KEY (settlement_id) REFERENCES settlements(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS partnership_incomes (
    space_id TEXT NOT NULL,
    user_id TEXT NOT NULL,
    monthly_income TEXT NOT NULL,
    PRIMARY KEY (space_id, user_id)
);

CREATE INDEX IF NOT EXISTS idx_expense_splits_expense_id ON expense_splits(expense_id);
CREATE INDEX IF NOT EXISTS idx_expense_splits_space_id ON expense_splits(space_id);
CREATE INDEX IF NOT EXISTS idx_settlements_space_id ON settlements(space_id);
CREATE INDEX IF NOT EXISTS idx_settlement_expenses_settlement_id ON settlement_expenses(settlement_id);
`

// runMigrations executes the schema setup.
func runMigrations(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
