package cart

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"
)

type fakeStorage struct {
	mu      sync.Mutex
	data    map[string]string
	writes  []string
	drops   int
	loadErr error
	handler func(value string, present bool)
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{data: make(map[string]string)}
}

func (f *fakeStorage) LoadCart(_ context.Context, token string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loadErr != nil {
		return "", false, f.loadErr
	}
	value, ok := f.data[token]
	return value, ok, nil
}

func (f *fakeStorage) StoreCart(_ context.Context, token, value, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[token] = value
	f.writes = append(f.writes, value)
	return nil
}

func (f *fakeStorage) DropCart(_ context.Context, token, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.data, token)
	f.drops++
	return nil
}

func (f *fakeStorage) SubscribeCartChanges(_ context.Context, _, _ string, fn func(value string, present bool)) (func(), error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handler = fn
	return func() {}, nil
}

func (f *fakeStorage) writeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.writes)
}

func (f *fakeStorage) lastWrite() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.writes) == 0 {
		return ""
	}
	return f.writes[len(f.writes)-1]
}

func (f *fakeStorage) emit(value string, present bool) {
	f.mu.Lock()
	handler := f.handler
	f.mu.Unlock()
	if handler != nil {
		handler(value, present)
	}
}

func testAdapter(storage Storage, debounce time.Duration) *Adapter {
	return NewAdapter(storage, "tok-1", "origin-a", debounce, nil, nil)
}

func TestLoadMissingSnapshotReturnsEmpty(t *testing.T) {
	adapter := testAdapter(newFakeStorage(), time.Millisecond)

	state := adapter.Load(context.Background())
	if state.Items == nil || len(state.Items) != 0 {
		t.Fatalf("expected empty state, got %+v", state)
	}
}

func TestLoadCorruptedSnapshotReturnsEmpty(t *testing.T) {
	storage := newFakeStorage()
	storage.data["tok-1"] = "{not json"
	adapter := testAdapter(storage, time.Millisecond)

	state := adapter.Load(context.Background())
	if len(state.Items) != 0 {
		t.Fatalf("expected empty state for corrupted snapshot, got %+v", state)
	}
}

func TestLoadErrorDegradesToEmpty(t *testing.T) {
	storage := newFakeStorage()
	storage.loadErr = errors.New("backend down")
	adapter := testAdapter(storage, time.Millisecond)

	state := adapter.Load(context.Background())
	if len(state.Items) != 0 {
		t.Fatalf("expected empty state on load error, got %+v", state)
	}
}

func TestLoadBackfillsMissingIDs(t *testing.T) {
	storage := newFakeStorage()
	storage.data["tok-1"] = `{"items":[{"name":"Pepperoni","count":2},{"id":"keep-me","name":"Cola","count":1}]}`
	adapter := testAdapter(storage, time.Millisecond)

	state := adapter.Load(context.Background())
	if len(state.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(state.Items))
	}
	if state.Items[0].ID == "" {
		t.Fatal("missing id should be backfilled")
	}
	if state.Items[1].ID != "keep-me" {
		t.Fatalf("existing id must survive, got %q", state.Items[1].ID)
	}
	if state.Items[0].Name != "Pepperoni" || state.Items[0].Count != 2 {
		t.Fatalf("fields lost in round trip: %+v", state.Items[0])
	}
}

func TestScheduleCoalescesRapidMutations(t *testing.T) {
	storage := newFakeStorage()
	adapter := testAdapter(storage, 40*time.Millisecond)

	for i := 1; i <= 5; i++ {
		adapter.Schedule(State{Items: []LineItem{{ID: "a", Name: "Pepperoni", Count: i}}})
		time.Sleep(2 * time.Millisecond)
	}

	deadline := time.After(time.Second)
	for storage.writeCount() == 0 {
		select {
		case <-deadline:
			t.Fatal("debounced write never fired")
		case <-time.After(5 * time.Millisecond):
		}
	}
	// Give a straggler timer a chance to misfire before counting.
	time.Sleep(80 * time.Millisecond)

	if got := storage.writeCount(); got != 1 {
		t.Fatalf("expected exactly one coalesced write, got %d", got)
	}

	var persisted State
	if err := json.Unmarshal([]byte(storage.lastWrite()), &persisted); err != nil {
		t.Fatalf("unmarshal persisted state: %v", err)
	}
	if persisted.Items[0].Count != 5 {
		t.Fatalf("last snapshot must win, got count %d", persisted.Items[0].Count)
	}
}

func TestFlushWritesPendingImmediately(t *testing.T) {
	storage := newFakeStorage()
	adapter := testAdapter(storage, time.Hour)

	adapter.Schedule(State{Items: []LineItem{{ID: "a", Name: "Cola", Count: 1}}})
	if err := adapter.Flush(context.Background()); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	if got := storage.writeCount(); got != 1 {
		t.Fatalf("expected one write after flush, got %d", got)
	}
	if err := adapter.Flush(context.Background()); err != nil {
		t.Fatalf("second Flush: %v", err)
	}
	if got := storage.writeCount(); got != 1 {
		t.Fatalf("flush without pending state must not write, got %d writes", got)
	}
}

func TestDropDiscardsPendingAndDeletes(t *testing.T) {
	storage := newFakeStorage()
	storage.data["tok-1"] = `{"items":[]}`
	adapter := testAdapter(storage, time.Hour)

	adapter.Schedule(State{Items: []LineItem{{ID: "a", Name: "Cola", Count: 1}}})
	if err := adapter.Drop(context.Background()); err != nil {
		t.Fatalf("Drop: %v", err)
	}

	if storage.drops != 1 {
		t.Fatalf("expected one drop, got %d", storage.drops)
	}
	if got := storage.writeCount(); got != 0 {
		t.Fatalf("pending write must be discarded on drop, got %d writes", got)
	}
}

func TestSubscribeReplacesStateLastWriterWins(t *testing.T) {
	storage := newFakeStorage()
	adapter := testAdapter(storage, time.Millisecond)

	var mu sync.Mutex
	var observed []State
	stop, err := adapter.Subscribe(context.Background(), func(s State) {
		mu.Lock()
		observed = append(observed, s)
		mu.Unlock()
	})
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	defer stop()

	storage.emit(`{"items":[{"id":"x","name":"Pepperoni","count":2}]}`, true)
	storage.emit(`not json`, true)
	storage.emit("", false)

	mu.Lock()
	defer mu.Unlock()
	if len(observed) != 2 {
		t.Fatalf("expected 2 applied changes (malformed skipped), got %d", len(observed))
	}
	if observed[0].Items[0].Name != "Pepperoni" {
		t.Fatalf("first change lost: %+v", observed[0])
	}
	if len(observed[1].Items) != 0 {
		t.Fatalf("cleared key must empty the cart, got %+v", observed[1])
	}
}
