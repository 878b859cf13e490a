// Package storage defines the durable key-value contract the registry and
// task store persist through. Each backend lives in its own subpackage.
package storage

import (
	"context"
	"encoding/json"
	"fmt"
)

// Keys used by the application. Each holds a JSON array.
const (
	StatusesKey = "statuses"
	TasksKey    = "todos"
)

// KV is an opaque durable store with get/set semantics.
type KV interface {
	// Get returns ok=false when the key has never been written.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
}

// ReadJSON loads key and decodes it into dst. found is false when the key is absent.
func ReadJSON(ctx context.Context, kv KV, key string, dst any) (found bool, err error) {
	raw, ok, err := kv.Get(ctx, key)
	if err != nil {
		return false, fmt.Errorf("read %s: %w", key, err)
	}
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return true, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

// WriteJSON encodes v and stores it under key.
func WriteJSON(ctx context.Context, kv KV, key string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := kv.Set(ctx, key, string(payload)); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}
