// Package metrics exposes Prometheus counters for ledger activity. The
// embedding application decides how to serve or push the default registry.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PaymentsRecorded counts successful split payment recordings.
	PaymentsRecorded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ledger_payments_recorded_total",
		Help: "Number of payments recorded against expense splits.",
	})

	// SettlementsCreated counts settlement records written.
	SettlementsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ledger_settlements_created_total",
		Help: "Number of settlement records created.",
	})

	// SplitsRecalculated counts split recalculations after expense edits.
	SplitsRecalculated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ledger_splits_recalculated_total",
		Help: "Number of expense split recalculations.",
	})

	// Reconciliations counts optimistic-mutation outcomes in the syncer,
	// labeled confirmed, reverted, or refreshed.
	Reconciliations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_reconciliations_total",
		Help: "Number of sync reconciliation outcomes by kind.",
	}, []string{"outcome"})
)
