package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func TestIncrWithTTL(t *testing.T) {
	ctx := context.Background()
	mock := newMockCmdable()
	client := &Client{store: mock}

	count, err := client.IncrWithTTL(ctx, "pz:rate_limit:otp", time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected counter 1 got %d", count)
	}
	if len(mock.expireCalls) != 1 {
		t.Fatalf("expected expire for first increment")
	}

	count, err = client.IncrWithTTL(ctx, "pz:rate_limit:otp", time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected counter 2 got %d", count)
	}
	if len(mock.expireCalls) != 1 {
		t.Fatalf("expire should not be set again")
	}
}

func TestCartStoreAndLoad(t *testing.T) {
	ctx := context.Background()
	mock := newMockCmdable()
	client := &Client{store: mock}

	value, ok, err := client.LoadCart(ctx, "token-1")
	if err != nil {
		t.Fatalf("load empty: %v", err)
	}
	if ok || value != "" {
		t.Fatalf("expected missing cart, got ok=%v value=%q", ok, value)
	}

	if err := client.StoreCart(ctx, "token-1", `{"items":[]}`, "origin-a"); err != nil {
		t.Fatalf("store: %v", err)
	}

	value, ok, err = client.LoadCart(ctx, "token-1")
	if err != nil || !ok {
		t.Fatalf("load after store: ok=%v err=%v", ok, err)
	}
	if value != `{"items":[]}` {
		t.Fatalf("unexpected value %q", value)
	}

	if len(mock.published) != 1 {
		t.Fatalf("expected one change notification, got %d", len(mock.published))
	}
	var change cartChange
	if err := json.Unmarshal([]byte(mock.published[0].payload), &change); err != nil {
		t.Fatalf("bad change payload: %v", err)
	}
	if change.Origin != "origin-a" || !change.Present {
		t.Fatalf("unexpected change: %+v", change)
	}
}

func TestDropCartPublishesAbsence(t *testing.T) {
	ctx := context.Background()
	mock := newMockCmdable()
	client := &Client{store: mock}

	if err := client.StoreCart(ctx, "token-1", `{"items":[]}`, "a"); err != nil {
		t.Fatalf("store: %v", err)
	}
	if err := client.DropCart(ctx, "token-1", "a"); err != nil {
		t.Fatalf("drop: %v", err)
	}

	_, ok, err := client.LoadCart(ctx, "token-1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if ok {
		t.Fatal("expected cart to be gone")
	}

	var change cartChange
	if err := json.Unmarshal([]byte(mock.published[1].payload), &change); err != nil {
		t.Fatalf("bad change payload: %v", err)
	}
	if change.Present {
		t.Fatal("expected absence notification")
	}
}

func TestKeyBuilders(t *testing.T) {
	client := &Client{}
	if got := client.CartKey("abc"); got != "pz:cart:abc" {
		t.Fatalf("unexpected cart key %s", got)
	}
	if got := client.RateLimitKey("scope"); got != "pz:rate_limit:scope" {
		t.Fatalf("unexpected rate limit key %s", got)
	}
	if got := client.OTPKey("user@example.com"); got != "pz:otp:user@example.com" {
		t.Fatalf("unexpected otp key %s", got)
	}
	if got := client.SessionKey("jti"); got != "pz:session:jti" {
		t.Fatalf("unexpected session key %s", got)
	}
}

type mockCmdable struct {
	data        map[string]string
	incr        map[string]int64
	expireCalls []expireCall
	published   []publishCall
}

type expireCall struct {
	key string
	ttl time.Duration
}

type publishCall struct {
	channel string
	payload string
}

func newMockCmdable() *mockCmdable {
	return &mockCmdable{
		data: make(map[string]string),
		incr: make(map[string]int64),
	}
}

func (m *mockCmdable) Ping(context.Context) *redis.StatusCmd {
	return redis.NewStatusResult("PONG", nil)
}

func (m *mockCmdable) Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd {
	m.data[key] = fmt.Sprint(value)
	return redis.NewStatusResult("OK", nil)
}

func (m *mockCmdable) Get(ctx context.Context, key string) *redis.StringCmd {
	v, ok := m.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (m *mockCmdable) GetDel(ctx context.Context, key string) *redis.StringCmd {
	v, ok := m.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	delete(m.data, key)
	return redis.NewStringResult(v, nil)
}

func (m *mockCmdable) SetNX(ctx context.Context, key string, value any, expiration time.Duration) *redis.BoolCmd {
	if _, exists := m.data[key]; exists {
		return redis.NewBoolResult(false, nil)
	}
	m.data[key] = fmt.Sprint(value)
	return redis.NewBoolResult(true, nil)
}

func (m *mockCmdable) Incr(ctx context.Context, key string) *redis.IntCmd {
	m.incr[key]++
	return redis.NewIntResult(m.incr[key], nil)
}

func (m *mockCmdable) Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd {
	m.expireCalls = append(m.expireCalls, expireCall{key: key, ttl: expiration})
	return redis.NewBoolResult(true, nil)
}

func (m *mockCmdable) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	for _, key := range keys {
		delete(m.data, key)
	}
	return redis.NewIntResult(int64(len(keys)), nil)
}

func (m *mockCmdable) Publish(ctx context.Context, channel string, message any) *redis.IntCmd {
	m.published = append(m.published, publishCall{channel: channel, payload: fmt.Sprintf("%s", message)})
	return redis.NewIntResult(1, nil)
}
