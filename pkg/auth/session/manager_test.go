package session

import (
	"context"
	"testing"
	"time"

	redislib "github.com/redis/go-redis/v9"
)

type fakeStore struct {
	values map[string]string
}

func newFakeStore() *fakeStore {
	return &fakeStore{values: map[string]string{}}
}

func (f *fakeStore) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	f.values[key] = "1"
	return nil
}

func (f *fakeStore) Get(ctx context.Context, key string) (string, error) {
	v, ok := f.values[key]
	if !ok {
		return "", redislib.Nil
	}
	return v, nil
}

func (f *fakeStore) Del(ctx context.Context, keys ...string) error {
	for _, k := range keys {
		delete(f.values, k)
	}
	return nil
}

type fakeKeyer struct{}

func (fakeKeyer) SessionKey(accessID string) string { return "session:" + accessID }

func newTestManager() (*Manager, *fakeStore) {
	store := newFakeStore()
	return &Manager{store: store, keyer: fakeKeyer{}}, store
}

func TestSessionLifecycle(t *testing.T) {
	t.Parallel()

	mgr, _ := newTestManager()
	ctx := context.Background()

	if err := mgr.Create(ctx, "jti-1", time.Minute); err != nil {
		t.Fatalf("create: %v", err)
	}

	ok, err := mgr.HasSession(ctx, "jti-1")
	if err != nil || !ok {
		t.Fatalf("expected live session, got ok=%v err=%v", ok, err)
	}

	if err := mgr.Revoke(ctx, "jti-1"); err != nil {
		t.Fatalf("revoke: %v", err)
	}

	ok, err = mgr.HasSession(ctx, "jti-1")
	if err != nil {
		t.Fatalf("has session after revoke: %v", err)
	}
	if ok {
		t.Fatal("expected session to be gone after revoke")
	}
}

func TestHasSessionMissingID(t *testing.T) {
	t.Parallel()

	mgr, _ := newTestManager()
	ok, err := mgr.HasSession(context.Background(), "  ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatal("blank access id must not have a session")
	}
}

func TestCreateValidatesInput(t *testing.T) {
	t.Parallel()

	mgr, _ := newTestManager()
	if err := mgr.Create(context.Background(), "", time.Minute); err == nil {
		t.Fatal("expected error for empty access id")
	}
	if err := mgr.Create(context.Background(), "jti", 0); err == nil {
		t.Fatal("expected error for non-positive ttl")
	}
}
