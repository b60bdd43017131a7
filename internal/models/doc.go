// Package models defines the domain records for the expense-splitting and
// settlement ledger.
//
// # Records
//
//   - ExpenseSplit: one party's obligation for one shared expense, with
//     payment and status tracking
//   - Settlement: an immutable payment event between two parties, optionally
//     credited against specific expenses
//   - PartnershipBalance: per-household incomes used by the income-based
//     split strategy
//   - BalanceSummary / SettlementTrendBucket: derived projections, computed
//     on demand and never persisted
//
// # Design Principles
//
//  1. All monetary fields use the money value types; no float64 anywhere.
//  2. Records reference each other by ID string, never by pointer.
//  3. The ledger never reads ambient session state: space and party IDs are
//     explicit fields and parameters everywhere.
//  4. Split status is always derived from amount_paid vs amount_owed
//     (DeriveStatus); it is stored for querying but never trusted over the
//     amounts.
package models
