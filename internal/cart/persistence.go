package cart

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/pizzaro/pizzaro-backend/pkg/logger"
	"github.com/pizzaro/pizzaro-backend/pkg/metrics"
)

const writeTimeout = 5 * time.Second

// Storage is the durable key-value backend a cart token persists into, plus
// the change feed other holders of the same token publish on.
type Storage interface {
	LoadCart(ctx context.Context, token string) (string, bool, error)
	StoreCart(ctx context.Context, token, value, origin string) error
	DropCart(ctx context.Context, token, origin string) error
	SubscribeCartChanges(ctx context.Context, token, origin string, fn func(value string, present bool)) (func(), error)
}

// Adapter persists one cart token's state. Writes are debounced: rapid
// mutations reschedule a single pending timer, and the snapshot captured last
// is the one that lands. The final state is never dropped — a pending write
// always fires with the latest snapshot, and Flush forces it through
// immediately.
type Adapter struct {
	storage  Storage
	token    string
	origin   string
	debounce time.Duration
	log      *logger.Logger
	metrics  *metrics.CartMetrics

	mu      sync.Mutex
	timer   *time.Timer
	pending *State
}

// NewAdapter builds a persistence adapter for one cart token. The origin id
// tags this instance's writes on the change feed so it can skip its own echo.
func NewAdapter(storage Storage, token, origin string, debounce time.Duration, log *logger.Logger, cartMetrics *metrics.CartMetrics) *Adapter {
	if debounce <= 0 {
		debounce = 200 * time.Millisecond
	}
	return &Adapter{
		storage:  storage,
		token:    token,
		origin:   origin,
		debounce: debounce,
		log:      log,
		metrics:  cartMetrics,
	}
}

// Load reads the persisted state. Absent, corrupted, or unreadable snapshots
// degrade to an empty cart rather than failing the caller. Items persisted
// without an id get a fresh one.
func (a *Adapter) Load(ctx context.Context) State {
	raw, found, err := a.storage.LoadCart(ctx, a.token)
	if err != nil {
		a.warn(ctx, "cart load failed, starting empty", err)
		return emptyState()
	}
	if !found {
		a.metrics.IncLoadMiss()
		return emptyState()
	}

	var state State
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		a.warn(ctx, "cart snapshot corrupted, starting empty", err)
		return emptyState()
	}
	if state.Items == nil {
		state.Items = []LineItem{}
	}
	for i := range state.Items {
		if state.Items[i].ID == "" {
			state.Items[i].ID = newItemID()
		}
	}
	return state
}

// Schedule captures the snapshot and (re)arms the debounce timer. Each call
// within the window replaces the pending snapshot; the timer is rescheduled,
// not multiplied.
func (a *Adapter) Schedule(state State) {
	a.mu.Lock()
	defer a.mu.Unlock()

	snapshot := state.clone()
	a.pending = &snapshot

	if a.timer != nil {
		a.timer.Reset(a.debounce)
		return
	}
	a.timer = time.AfterFunc(a.debounce, a.firePending)
}

// Flush writes any pending snapshot immediately and cancels the timer.
func (a *Adapter) Flush(ctx context.Context) error {
	a.mu.Lock()
	if a.timer != nil {
		a.timer.Stop()
	}
	pending := a.pending
	a.pending = nil
	a.mu.Unlock()

	if pending == nil {
		return nil
	}
	return a.write(ctx, *pending)
}

// Drop deletes the persisted snapshot and discards any pending write.
func (a *Adapter) Drop(ctx context.Context) error {
	a.mu.Lock()
	if a.timer != nil {
		a.timer.Stop()
	}
	a.pending = nil
	a.mu.Unlock()

	return a.storage.DropCart(ctx, a.token, a.origin)
}

// Subscribe wires fn to external rewrites of this token's snapshot. Writes
// tagged with this adapter's own origin are skipped by the storage layer. The
// returned stop function cancels the subscription.
func (a *Adapter) Subscribe(ctx context.Context, fn func(State)) (func(), error) {
	return a.storage.SubscribeCartChanges(ctx, a.token, a.origin, func(value string, present bool) {
		if !present {
			fn(emptyState())
			return
		}
		var state State
		if err := json.Unmarshal([]byte(value), &state); err != nil {
			a.warn(ctx, "ignoring malformed cart change", err)
			return
		}
		if state.Items == nil {
			state.Items = []LineItem{}
		}
		fn(state)
	})
}

// Close flushes the pending snapshot with a short background deadline.
func (a *Adapter) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	return a.Flush(ctx)
}

func (a *Adapter) firePending() {
	a.mu.Lock()
	pending := a.pending
	a.pending = nil
	a.mu.Unlock()

	if pending == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	if err := a.write(ctx, *pending); err != nil {
		// In-memory state stays authoritative; durability is retried on the
		// next mutation.
		a.warn(ctx, "cart save failed", err)
	}
}

func (a *Adapter) write(ctx context.Context, state State) error {
	payload, err := json.Marshal(state)
	if err != nil {
		return err
	}

	started := time.Now()
	err = a.storage.StoreCart(ctx, a.token, string(payload), a.origin)
	a.metrics.ObserveSave(err, time.Since(started))
	return err
}

func (a *Adapter) warn(ctx context.Context, msg string, err error) {
	if a.log == nil {
		return
	}
	ctx = a.log.WithCartToken(ctx, a.token)
	a.log.Warn(a.log.WithField(ctx, "error", err.Error()), msg)
}

func emptyState() State {
	return State{Items: []LineItem{}}
}
