// Package syncer presents a consistent local view of a household's split
// rows while the durable store is external. Mutations are applied
// optimistically and reconciled against the store: a rejected write reverts
// the local change and triggers a full reload, and remote change
// notifications refresh the view wholesale rather than merging.
//
// Each expense moves through a small state machine: Idle, Pending (a local
// mutation awaiting the store's verdict, with the pre-mutation snapshot
// held for revert), and a view-wide Reconciling state during reloads. A
// second mutation on a Pending expense is rejected with ErrNotReady, never
// queued.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/VetSecItPro/rowan-ledger/internal/metrics"
	"github.com/VetSecItPro/rowan-ledger/internal/models"
	"github.com/VetSecItPro/rowan-ledger/internal/storage"
)

var (
	// ErrNotReady rejects a mutation while another one on the same expense
	// (or a view reload) is still in flight.
	ErrNotReady = errors.New("a prior mutation is still awaiting the store")

	// ErrUnknownSplit rejects a mutation on a split the view does not hold.
	ErrUnknownSplit = errors.New("split not present in local view")
)

// Manager maintains the optimistic local view for one household.
// The view itself is guarded for concurrent readers; the mutation path
// assumes the single-threaded, event-driven caller the ledger is designed
// for.
type Manager struct {
	store   storage.Store
	spaceID string

	mu          sync.Mutex
	view        map[string]*models.ExpenseSplit // by split ID
	pending     map[string][]*models.ExpenseSplit // expense ID -> pre-mutation snapshot
	reconciling bool
	stale       bool
}

// New creates a Manager for the household. Call Load before use.
func New(store storage.Store, spaceID string) *Manager {
	return &Manager{
		store:   store,
		spaceID: spaceID,
		view:    make(map[string]*models.ExpenseSplit),
		pending: make(map[string][]*models.ExpenseSplit),
	}
}

// Load replaces the local view with the store's current contents.
func (m *Manager) Load(ctx context.Context) error {
	return m.reload(ctx)
}

// Splits returns a copy of the local view, ordered by expense then user.
func (m *Manager) Splits() []*models.ExpenseSplit {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*models.ExpenseSplit, 0, len(m.view))
	for _, row := range m.view {
		out = append(out, row.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ExpenseID != out[j].ExpenseID {
			return out[i].ExpenseID < out[j].ExpenseID
		}
		return out[i].UserID < out[j].UserID
	})
	return out
}

// Split returns a copy of one split row from the local view.
func (m *Manager) Split(splitID string) (*models.ExpenseSplit, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.view[splitID]
	if !ok {
		return nil, false
	}
	return row.Clone(), true
}

// Stale reports whether the last reload failed, leaving the view possibly
// behind the store. Prior confirmed state stays visible; callers surface a
// retry prompt rather than crashing.
func (m *Manager) Stale() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stale
}

// Mutate optimistically applies mutate to one split and confirms it against
// the store. On rejection the local change is reverted and the whole view is
// reloaded; no partial state is guessed.
func (m *Manager) Mutate(ctx context.Context, splitID string, mutate func(*models.ExpenseSplit) error) error {
	m.mu.Lock()
	if m.reconciling {
		m.mu.Unlock()
		return ErrNotReady
	}
	cur, ok := m.view[splitID]
	if !ok {
		m.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrUnknownSplit, splitID)
	}
	expenseID := cur.ExpenseID
	if _, inFlight := m.pending[expenseID]; inFlight {
		m.mu.Unlock()
		return ErrNotReady
	}

	snapshot := m.snapshotExpenseLocked(expenseID)
	updated := cur.Clone()
	if err := mutate(updated); err != nil {
		m.mu.Unlock()
		return err
	}
	m.view[splitID] = updated
	m.pending[expenseID] = snapshot
	m.mu.Unlock()

	err := m.store.WriteSplits(ctx, []*models.ExpenseSplit{updated.Clone()})
	return m.resolve(ctx, expenseID, snapshot, err)
}

// Add optimistically inserts the split rows of one newly shared expense.
// Rows without IDs get one assigned locally so the optimistic view and the
// store agree.
func (m *Manager) Add(ctx context.Context, rows []*models.ExpenseSplit) error {
	if len(rows) == 0 {
		return nil
	}
	expenseID := rows[0].ExpenseID
	for _, row := range rows {
		if row.ExpenseID != expenseID {
			return fmt.Errorf("rows span expenses %s and %s", expenseID, row.ExpenseID)
		}
	}

	m.mu.Lock()
	if m.reconciling {
		m.mu.Unlock()
		return ErrNotReady
	}
	if _, inFlight := m.pending[expenseID]; inFlight {
		m.mu.Unlock()
		return ErrNotReady
	}
	snapshot := m.snapshotExpenseLocked(expenseID)
	inserted := make([]*models.ExpenseSplit, len(rows))
	for i, row := range rows {
		clone := row.Clone()
		if clone.ID == "" {
			clone.ID = uuid.New().String()
		}
		m.view[clone.ID] = clone
		inserted[i] = clone.Clone()
	}
	m.pending[expenseID] = snapshot
	m.mu.Unlock()

	err := m.store.WriteSplits(ctx, inserted)
	return m.resolve(ctx, expenseID, snapshot, err)
}

// Remove optimistically drops an expense's split rows, the local side of
// toggling the expense away from shared ownership.
func (m *Manager) Remove(ctx context.Context, expenseID string) error {
	m.mu.Lock()
	if m.reconciling {
		m.mu.Unlock()
		return ErrNotReady
	}
	if _, inFlight := m.pending[expenseID]; inFlight {
		m.mu.Unlock()
		return ErrNotReady
	}
	snapshot := m.snapshotExpenseLocked(expenseID)
	for _, row := range snapshot {
		delete(m.view, row.ID)
	}
	m.pending[expenseID] = snapshot
	m.mu.Unlock()

	err := m.store.DeleteSplits(ctx, expenseID)
	return m.resolve(ctx, expenseID, snapshot, err)
}

// HandleChange processes one change notification from the external stream.
// Notifications about an expense with a mutation in flight are ignored; the
// mutation's own resolution reconciles them. Anything else refreshes the
// view wholesale.
func (m *Manager) HandleChange(ctx context.Context, ev storage.ChangeEvent) error {
	if ev.SpaceID != m.spaceID {
		return nil
	}
	m.mu.Lock()
	_, related := m.pending[ev.EntityID]
	m.mu.Unlock()
	if related {
		return nil
	}

	metrics.Reconciliations.WithLabelValues("refreshed").Inc()
	return m.reload(ctx)
}

// Run subscribes to the household's change stream and refreshes the view
// until ctx is done or the stream closes.
func (m *Manager) Run(ctx context.Context, notifier storage.Notifier) error {
	ch, err := notifier.Subscribe(ctx, m.spaceID)
	if err != nil {
		return fmt.Errorf("failed to subscribe: %w", err)
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-ch:
			if !ok {
				return nil
			}
			if err := m.HandleChange(ctx, ev); err != nil {
				slog.Warn("change refresh failed, view marked stale",
					"space_id", m.spaceID, "error", err)
			}
		}
	}
}

// resolve finishes an optimistic mutation once the store call returned.
func (m *Manager) resolve(ctx context.Context, expenseID string, snapshot []*models.ExpenseSplit, storeErr error) error {
	m.mu.Lock()
	delete(m.pending, expenseID)
	if storeErr == nil {
		m.mu.Unlock()
		metrics.Reconciliations.WithLabelValues("confirmed").Inc()
		return nil
	}

	// Revert to the snapshot, then reload the whole view: the store is the
	// source of truth and no partial state is guessed.
	for id, row := range m.view {
		if row.ExpenseID == expenseID {
			delete(m.view, id)
		}
	}
	for _, row := range snapshot {
		m.view[row.ID] = row
	}
	m.mu.Unlock()
	metrics.Reconciliations.WithLabelValues("reverted").Inc()

	if reloadErr := m.reload(ctx); reloadErr != nil {
		slog.Warn("reload after revert failed, view marked stale",
			"space_id", m.spaceID, "error", reloadErr)
	}
	return fmt.Errorf("mutation rejected by store: %w", storeErr)
}

// reload replaces the view with the store's contents, preserving the
// optimistic rows of any expense still awaiting resolution.
func (m *Manager) reload(ctx context.Context) error {
	m.mu.Lock()
	m.reconciling = true
	m.mu.Unlock()

	rows, err := m.store.ReadSplitsBySpace(ctx, m.spaceID)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.reconciling = false
	if err != nil {
		m.stale = true
		return fmt.Errorf("failed to reload view: %w", err)
	}

	fresh := make(map[string]*models.ExpenseSplit, len(rows))
	for _, row := range rows {
		fresh[row.ID] = row.Clone()
	}
	for expenseID := range m.pending {
		for id, row := range fresh {
			if row.ExpenseID == expenseID {
				delete(fresh, id)
			}
		}
		for id, row := range m.view {
			if row.ExpenseID == expenseID {
				fresh[id] = row
			}
		}
	}
	m.view = fresh
	m.stale = false
	return nil
}

// snapshotExpenseLocked clones an expense's current rows; callers hold mu.
func (m *Manager) snapshotExpenseLocked(expenseID string) []*models.ExpenseSplit {
	var out []*models.ExpenseSplit
	for _, row := range m.view {
		if row.ExpenseID == expenseID {
			out = append(out, row.Clone())
		}
	}
	return out
}
