package cart

import (
	"context"
	"encoding/json"
	"io"
	"testing"
	"time"

	"github.com/pizzaro/pizzaro-backend/pkg/logger"
)

func testManager(t *testing.T, storage Storage) *Manager {
	t.Helper()
	log := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	manager, err := NewManager(storage, 10*time.Millisecond, log, nil)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	return manager
}

func TestManagerGetSharesHandlePerToken(t *testing.T) {
	manager := testManager(t, newFakeStorage())

	first, err := manager.Get(context.Background(), "tok-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	second, err := manager.Get(context.Background(), "tok-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if first != second {
		t.Fatal("same token must share one handle")
	}

	other, err := manager.Get(context.Background(), "tok-2")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if other == first {
		t.Fatal("distinct tokens must not share a handle")
	}
}

func TestManagerGetRequiresToken(t *testing.T) {
	manager := testManager(t, newFakeStorage())
	if _, err := manager.Get(context.Background(), ""); err == nil {
		t.Fatal("expected error for empty token")
	}
}

func TestManagerLoadsPersistedState(t *testing.T) {
	storage := newFakeStorage()
	storage.data["tok-1"] = `{"items":[{"id":"a","name":"Pepperoni","count":2}]}`
	manager := testManager(t, storage)

	handle, err := manager.Get(context.Background(), "tok-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	items := handle.Store.Items()
	if len(items) != 1 || items[0].Name != "Pepperoni" || items[0].Count != 2 {
		t.Fatalf("persisted state not loaded: %+v", items)
	}
}

func TestManagerMutationPersistsThroughDebounce(t *testing.T) {
	storage := newFakeStorage()
	manager := testManager(t, storage)

	handle, err := manager.Get(context.Background(), "tok-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	handle.Store.AddItem(LineItem{Name: "Cola", SectionID: 5, CostCents: 9900})

	if err := manager.Flush(context.Background(), "tok-1"); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	var persisted State
	if err := json.Unmarshal([]byte(storage.lastWrite()), &persisted); err != nil {
		t.Fatalf("unmarshal persisted state: %v", err)
	}
	if len(persisted.Items) != 1 || persisted.Items[0].Name != "Cola" {
		t.Fatalf("mutation not persisted: %+v", persisted)
	}
}

func TestManagerAppliesExternalChanges(t *testing.T) {
	storage := newFakeStorage()
	manager := testManager(t, storage)

	handle, err := manager.Get(context.Background(), "tok-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	handle.Store.AddItem(LineItem{Name: "Cola", SectionID: 5})

	storage.emit(`{"items":[{"id":"z","name":"Margherita","count":3}]}`, true)

	items := handle.Store.Items()
	if len(items) != 1 || items[0].Name != "Margherita" || items[0].Count != 3 {
		t.Fatalf("external change must replace local state, got %+v", items)
	}
}

func TestManagerReleaseFlushesAndDetaches(t *testing.T) {
	storage := newFakeStorage()
	manager := testManager(t, storage)

	handle, err := manager.Get(context.Background(), "tok-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	handle.Store.AddItem(LineItem{Name: "Cola", SectionID: 5})

	if err := manager.Release(context.Background(), "tok-1"); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if storage.writeCount() == 0 {
		t.Fatal("release must flush the pending snapshot")
	}

	fresh, err := manager.Get(context.Background(), "tok-1")
	if err != nil {
		t.Fatalf("Get after release: %v", err)
	}
	if fresh == handle {
		t.Fatal("released handle must not be reused")
	}
	if got := fresh.Store.Items(); len(got) != 1 || got[0].Name != "Cola" {
		t.Fatalf("reloaded state lost the flushed snapshot: %+v", got)
	}
}

func TestHandleDropClearsStoreAndStorage(t *testing.T) {
	storage := newFakeStorage()
	storage.data["tok-1"] = `{"items":[{"id":"a","name":"Cola","count":1}]}`
	manager := testManager(t, storage)

	handle, err := manager.Get(context.Background(), "tok-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if err := handle.Drop(context.Background()); err != nil {
		t.Fatalf("Drop: %v", err)
	}
	if got := handle.Store.Items(); len(got) != 0 {
		t.Fatalf("store must be emptied on drop, got %+v", got)
	}
	if storage.drops != 1 {
		t.Fatalf("expected one storage drop, got %d", storage.drops)
	}
}
