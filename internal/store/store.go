// Package store holds the in-memory authoritative BusinessState for the
// running session. It merges the remote read at startup, the local
// snapshot fallback, and optimistic user mutations, and mirrors writes
// to the remote store without ever blocking or rolling back on failure.
package store

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Juanpi2024/yeca-app-agendas/internal/core"
	"github.com/google/uuid"
)

// DefaultSnapshotKey matches the storage key the original web client used,
// so an existing local snapshot survives the migration.
const DefaultSnapshotKey = "agenda_pro_data_v2"

const (
	defaultLoadTimeout   = 10 * time.Second
	defaultMirrorTimeout = 30 * time.Second
)

var ErrOrderNotFound = errors.New("order not found")

type (
	// RemoteReader is the startup read surface of the remote store.
	RemoteReader interface {
		GetTransactions(ctx context.Context) ([]core.Transaction, error)
		GetOrders(ctx context.Context) ([]core.Order, error)
	}

	// Mirror receives best-effort echoes of local mutations. Implementations
	// either write to the remote store directly or enqueue for a worker.
	// Errors are reported, logged and dropped; local state is never rolled
	// back (availability over consistency, matching the original client).
	Mirror interface {
		AddTransaction(ctx context.Context, t core.Transaction) error
		AddOrder(ctx context.Context, o core.Order) error
		UpdateOrder(ctx context.Context, o core.Order) error
		DeleteOrder(ctx context.Context, id string) error
	}

	// Snapshots persists the last-known-good state for offline startup.
	Snapshots interface {
		Save(ctx context.Context, key string, state core.BusinessState) error
		Load(ctx context.Context, key string) (core.BusinessState, bool, error)
	}

	TransactionDraft struct {
		Type        core.TransactionType
		Amount      core.Money
		Description string
		Category    string
		Date        core.Date
	}

	OrderDraft struct {
		ClientName   string
		ProductType  string
		Value        core.Money
		Details      string
		DeliveryDate core.Date
	}
)

type Store struct {
	remote    RemoteReader
	mirror    Mirror
	snapshots Snapshots

	snapshotKey   string
	loadTimeout   time.Duration
	mirrorTimeout time.Duration

	// Injected for determinism in tests.
	now           func() time.Time
	newID         func() string
	onMirrorError func(op string, err error)

	mu      sync.Mutex
	state   core.BusinessState
	loading bool
	loaded  bool

	wg sync.WaitGroup // outstanding mirror goroutines, drained by Wait
}

// Options tune the store; zero values select defaults.
type Options struct {
	SnapshotKey   string
	LoadTimeout   time.Duration
	MirrorTimeout time.Duration
	Now           func() time.Time
	NewID         func() string
	// OnMirrorError observes mirror failures (e.g. a metrics counter).
	OnMirrorError func(op string, err error)
}

func New(remote RemoteReader, mirror Mirror, snapshots Snapshots, opts Options) *Store {
	s := &Store{
		remote:        remote,
		mirror:        mirror,
		snapshots:     snapshots,
		snapshotKey:   opts.SnapshotKey,
		loadTimeout:   opts.LoadTimeout,
		mirrorTimeout: opts.MirrorTimeout,
		now:           opts.Now,
		newID:         opts.NewID,
		onMirrorError: opts.OnMirrorError,
	}
	if s.snapshotKey == "" {
		s.snapshotKey = DefaultSnapshotKey
	}
	if s.loadTimeout <= 0 {
		s.loadTimeout = defaultLoadTimeout
	}
	if s.mirrorTimeout <= 0 {
		s.mirrorTimeout = defaultMirrorTimeout
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.newID == nil {
		s.newID = uuid.NewString
	}
	return s
}

// Load fetches both remote collections concurrently and adopts them as
// the session state. Both reads must succeed as a pair; on any fault the
// previously persisted snapshot is adopted instead, and with no snapshot
// the state stays at its empty default. Load returns within the
// configured timeout: a slow fetch only releases the loading flag, the
// fetch itself keeps running and a late success still applies.
func (s *Store) Load(ctx context.Context) {
	s.mu.Lock()
	s.loading = true
	s.mu.Unlock()

	type result struct {
		txns   []core.Transaction
		orders []core.Order
		err    error
	}

	done := make(chan result, 1)
	go func() {
		var r result
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			t, err := s.remote.GetTransactions(gctx)
			r.txns = t
			return err
		})
		g.Go(func() error {
			o, err := s.remote.GetOrders(gctx)
			r.orders = o
			return err
		})
		r.err = g.Wait()
		done <- r
	}()

	select {
	case r := <-done:
		s.finishLoad(ctx, r.txns, r.orders, r.err)
	case <-time.After(s.loadTimeout):
		s.mu.Lock()
		s.loading = false
		// Mutations made from here on must reach the snapshot store, the
		// sole fallback for the next startup, even if the fetch never
		// returns.
		s.loaded = true
		s.mu.Unlock()
		slog.WarnContext(ctx, "Load exceeded safety timeout, releasing loading state",
			"timeout", s.loadTimeout)
		// The fetch is not cancelled; a late result still applies.
		go func() {
			r := <-done
			s.finishLoad(context.WithoutCancel(ctx), r.txns, r.orders, r.err)
		}()
	}
}

func (s *Store) finishLoad(ctx context.Context, txns []core.Transaction, orders []core.Order, err error) {
	if err == nil {
		s.mu.Lock()
		s.state = core.BusinessState{Transactions: txns, Orders: orders}
		s.loading = false
		s.loaded = true
		snap := s.state.Clone()
		s.mu.Unlock()

		slog.InfoContext(ctx, "Adopted remote state",
			"transactions", len(txns),
			"orders", len(orders))
		s.persist(ctx, snap)
		return
	}

	slog.WarnContext(ctx, "Remote load failed, falling back to local snapshot", "error", err)

	cached, ok, cacheErr := s.snapshots.Load(ctx, s.snapshotKey)
	if cacheErr != nil {
		slog.ErrorContext(ctx, "Snapshot read failed", "error", cacheErr, "key", s.snapshotKey)
	}

	s.mu.Lock()
	if ok {
		s.state = cached
	}
	s.loading = false
	s.loaded = true
	s.mu.Unlock()

	if ok {
		slog.InfoContext(ctx, "Adopted cached snapshot",
			"transactions", len(cached.Transactions),
			"orders", len(cached.Orders))
	} else {
		slog.InfoContext(ctx, "No snapshot available, starting empty")
	}
}

// SetMirrorErrorHook installs an observer for mirror failures. The HTTP
// layer uses it for a metrics counter after both sides are constructed.
func (s *Store) SetMirrorErrorHook(fn func(op string, err error)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onMirrorError = fn
}

// Loading reports whether the startup load still blocks the UI.
func (s *Store) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// State returns a copy of the current BusinessState.
func (s *Store) State() core.BusinessState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// AddTransaction assigns a fresh id, prepends the record optimistically
// and mirrors the add to the remote store without awaiting it.
func (s *Store) AddTransaction(ctx context.Context, d TransactionDraft) (core.Transaction, error) {
	t := core.Transaction{
		ID:          s.newID(),
		Type:        d.Type,
		Amount:      d.Amount,
		Description: d.Description,
		Category:    d.Category,
		Date:        d.Date,
	}
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}

	s.mu.Lock()
	s.state.Transactions = append([]core.Transaction{t}, s.state.Transactions...)
	snap := s.state.Clone()
	s.mu.Unlock()

	s.persist(ctx, snap)
	s.fireMirror(ctx, "addTransaction", func(mctx context.Context) error {
		return s.mirror.AddTransaction(mctx, t)
	})
	return t, nil
}

// AddOrder assigns id, pending status and creation time, prepends the
// order and mirrors the add.
func (s *Store) AddOrder(ctx context.Context, d OrderDraft) (core.Order, error) {
	o := core.Order{
		ID:           s.newID(),
		ClientName:   d.ClientName,
		ProductType:  d.ProductType,
		Value:        d.Value,
		Details:      d.Details,
		DeliveryDate: d.DeliveryDate,
		Status:       core.StatusPending,
		CreatedAt:    s.now().UTC(),
	}
	if err := o.Validate(); err != nil {
		return core.Order{}, err
	}

	s.mu.Lock()
	s.state.Orders = append([]core.Order{o}, s.state.Orders...)
	snap := s.state.Clone()
	s.mu.Unlock()

	s.persist(ctx, snap)
	s.fireMirror(ctx, "addOrder", func(mctx context.Context) error {
		return s.mirror.AddOrder(mctx, o)
	})
	return o, nil
}

// DeleteTransaction removes the matching record from local state only;
// the remote store keeps its row. Absent ids are a silent no-op.
func (s *Store) DeleteTransaction(ctx context.Context, id string) bool {
	s.mu.Lock()
	removed := false
	for i, t := range s.state.Transactions {
		if t.ID == id {
			s.state.Transactions = append(s.state.Transactions[:i], s.state.Transactions[i+1:]...)
			removed = true
			break
		}
	}
	var snap core.BusinessState
	if removed {
		snap = s.state.Clone()
	}
	s.mu.Unlock()

	if removed {
		s.persist(ctx, snap)
	}
	return removed
}

// UpdateOrderStatus transitions the matching order and mirrors the full
// updated record remotely.
func (s *Store) UpdateOrderStatus(ctx context.Context, id string, status core.OrderStatus) (core.Order, error) {
	if !status.Valid() {
		return core.Order{}, core.ErrInvalidStatus
	}

	s.mu.Lock()
	var updated core.Order
	found := false
	for i := range s.state.Orders {
		if s.state.Orders[i].ID == id {
			s.state.Orders[i].Status = status
			updated = s.state.Orders[i]
			found = true
			break
		}
	}
	var snap core.BusinessState
	if found {
		snap = s.state.Clone()
	}
	s.mu.Unlock()

	if !found {
		return core.Order{}, ErrOrderNotFound
	}

	s.persist(ctx, snap)
	s.fireMirror(ctx, "updateOrder", func(mctx context.Context) error {
		return s.mirror.UpdateOrder(mctx, updated)
	})
	return updated, nil
}

// DeleteOrder removes the matching order locally and mirrors the delete.
func (s *Store) DeleteOrder(ctx context.Context, id string) bool {
	s.mu.Lock()
	removed := false
	for i, o := range s.state.Orders {
		if o.ID == id {
			s.state.Orders = append(s.state.Orders[:i], s.state.Orders[i+1:]...)
			removed = true
			break
		}
	}
	var snap core.BusinessState
	if removed {
		snap = s.state.Clone()
	}
	s.mu.Unlock()

	if !removed {
		return false
	}

	s.persist(ctx, snap)
	s.fireMirror(ctx, "deleteOrder", func(mctx context.Context) error {
		return s.mirror.DeleteOrder(mctx, id)
	})
	return true
}

// persist writes the snapshot once the loading flag has cleared, whether
// by a finished load or by the safety timeout. It is the sole fallback
// path for the next startup, so failures are loud.
func (s *Store) persist(ctx context.Context, snap core.BusinessState) {
	s.mu.Lock()
	loaded := s.loaded
	s.mu.Unlock()
	if !loaded {
		return
	}
	if err := s.snapshots.Save(ctx, s.snapshotKey, snap); err != nil {
		slog.ErrorContext(ctx, "Snapshot write failed, next offline start will be stale",
			"error", err, "key", s.snapshotKey)
	}
}

// fireMirror spawns the remote echo of a mutation. The goroutine detaches
// from the caller's cancellation so an HTTP response ending does not abort
// the write; failures are logged and counted, never surfaced.
func (s *Store) fireMirror(ctx context.Context, op string, call func(context.Context) error) {
	if s.mirror == nil {
		return
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		mctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.mirrorTimeout)
		defer cancel()
		if err := call(mctx); err != nil {
			slog.ErrorContext(mctx, "Remote mirror failed, keeping local record",
				"operation", op, "error", err)
			s.mu.Lock()
			hook := s.onMirrorError
			s.mu.Unlock()
			if hook != nil {
				hook(op, err)
			}
		}
	}()
}

// Wait blocks until all in-flight mirror calls finish. Used on shutdown
// and by tests; normal operation never waits.
func (s *Store) Wait() {
	s.wg.Wait()
}
