package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// cartChange is the message published whenever an execution context rewrites
// a cart key, so every other holder of the same cart observes the new value.
type cartChange struct {
	Origin  string `json:"origin"`
	Present bool   `json:"present"`
	Value   string `json:"value,omitempty"`
}

// LoadCart reads the serialized cart stored for the token. The second return
// is false when no cart has been persisted yet.
func (c *Client) LoadCart(ctx context.Context, token string) (string, bool, error) {
	value, err := c.Get(ctx, c.CartKey(token))
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, err
	}
	return value, true, nil
}

// StoreCart persists the serialized cart and notifies other subscribers of
// the same token. The origin id lets a writer ignore its own echo.
func (c *Client) StoreCart(ctx context.Context, token, value, origin string) error {
	if err := c.Set(ctx, c.CartKey(token), value, 0); err != nil {
		return err
	}
	return c.publishCartChange(ctx, token, cartChange{Origin: origin, Present: true, Value: value})
}

// DropCart removes the persisted cart and notifies subscribers the key is gone.
func (c *Client) DropCart(ctx context.Context, token, origin string) error {
	if err := c.Del(ctx, c.CartKey(token)); err != nil {
		return err
	}
	return c.publishCartChange(ctx, token, cartChange{Origin: origin, Present: false})
}

func (c *Client) publishCartChange(ctx context.Context, token string, change cartChange) error {
	payload, err := json.Marshal(change)
	if err != nil {
		return fmt.Errorf("marshal cart change: %w", err)
	}
	return c.store.Publish(ctx, c.cartChannel(token), payload).Err()
}

// SubscribeCartChanges delivers every external rewrite of the token's cart key
// to fn. Changes published with the same origin id are skipped. The returned
// stop function cancels the subscription.
func (c *Client) SubscribeCartChanges(ctx context.Context, token, origin string, fn func(value string, present bool)) (func(), error) {
	if c.raw == nil {
		return nil, errors.New("redis client not initialized")
	}
	if fn == nil {
		return nil, errors.New("change handler is required")
	}

	sub := c.raw.Subscribe(ctx, c.cartChannel(token))
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("subscribe cart channel: %w", err)
	}

	go func() {
		for msg := range sub.Channel() {
			var change cartChange
			if err := json.Unmarshal([]byte(msg.Payload), &change); err != nil {
				continue
			}
			if change.Origin == origin {
				continue
			}
			fn(change.Value, change.Present)
		}
	}()

	return func() { _ = sub.Close() }, nil
}
