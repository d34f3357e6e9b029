package cart

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pizzaro/pizzaro-backend/pkg/logger"
	"github.com/pizzaro/pizzaro-backend/pkg/metrics"
)

// Manager hands out one live cart per token. The first request for a token
// loads its persisted state, seeds a store, and subscribes to the token's
// change feed; later requests on this instance share the same handle. Updates
// written by other instances arrive through the feed and replace local state
// wholesale (last writer wins; concurrent edits across instances are not
// merged).
type Manager struct {
	storage     Storage
	debounce    time.Duration
	log         *logger.Logger
	cartMetrics *metrics.CartMetrics
	origin      string

	mu      sync.Mutex
	handles map[string]*Handle
}

// Handle bundles the live store for one token with its persistence adapter.
type Handle struct {
	Token string
	Store *Store

	adapter *Adapter
	stop    func()
}

// NewManager builds a cart manager backed by the provided storage.
func NewManager(storage Storage, debounce time.Duration, log *logger.Logger, cartMetrics *metrics.CartMetrics) (*Manager, error) {
	if storage == nil {
		return nil, fmt.Errorf("cart storage required")
	}
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Manager{
		storage:     storage,
		debounce:    debounce,
		log:         log,
		cartMetrics: cartMetrics,
		origin:      uuid.NewString(),
		handles:     make(map[string]*Handle),
	}, nil
}

// Get returns the live handle for the token, creating and loading it on first
// use.
func (m *Manager) Get(ctx context.Context, token string) (*Handle, error) {
	if token == "" {
		return nil, fmt.Errorf("cart token required")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if handle, ok := m.handles[token]; ok {
		return handle, nil
	}

	adapter := NewAdapter(m.storage, token, m.origin, m.debounce, m.log, m.cartMetrics)
	initial := adapter.Load(ctx)

	store := NewStore(initial, adapter.Schedule)

	stop, err := adapter.Subscribe(context.Background(), store.Replace)
	if err != nil {
		return nil, fmt.Errorf("subscribe cart changes: %w", err)
	}

	handle := &Handle{
		Token:   token,
		Store:   store,
		adapter: adapter,
		stop:    stop,
	}
	m.handles[token] = handle
	return handle, nil
}

// Flush forces the pending snapshot for the token through immediately. It is
// a no-op for tokens with no live handle.
func (m *Manager) Flush(ctx context.Context, token string) error {
	m.mu.Lock()
	handle, ok := m.handles[token]
	m.mu.Unlock()

	if !ok {
		return nil
	}
	return handle.adapter.Flush(ctx)
}

// Release flushes and detaches the token's handle, dropping it from memory.
// The persisted snapshot stays put; the next Get reloads it.
func (m *Manager) Release(ctx context.Context, token string) error {
	m.mu.Lock()
	handle, ok := m.handles[token]
	if ok {
		delete(m.handles, token)
	}
	m.mu.Unlock()

	if !ok {
		return nil
	}
	handle.stop()
	return handle.adapter.Flush(ctx)
}

// Close flushes and detaches every live handle.
func (m *Manager) Close() error {
	m.mu.Lock()
	handles := make([]*Handle, 0, len(m.handles))
	for _, handle := range m.handles {
		handles = append(handles, handle)
	}
	m.handles = make(map[string]*Handle)
	m.mu.Unlock()

	var firstErr error
	for _, handle := range handles {
		handle.stop()
		if err := handle.adapter.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Flush writes this handle's pending snapshot immediately.
func (h *Handle) Flush(ctx context.Context) error {
	return h.adapter.Flush(ctx)
}

// Drop deletes the handle's persisted snapshot and clears the live store.
func (h *Handle) Drop(ctx context.Context) error {
	h.Store.Replace(State{Items: []LineItem{}})
	return h.adapter.Drop(ctx)
}
