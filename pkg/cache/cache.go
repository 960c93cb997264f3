package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// NoExpiry is returned by TTLReader for keys without an expiration.
const NoExpiry time.Duration = -1

// Eviction policy names understood by Configurer implementations.
const (
	PolicyAllKeysLRU = "allkeys-lru"
	PolicyNoEviction = "noeviction"
)

// Store is the backing key-value store the Client talks to.
//
// TTL semantics for Set are resolved by the Client before reaching the store:
//   - Positive duration: item expires after this duration
//   - Zero or negative: item never expires
type Store interface {
	// Get retrieves a value by key.
	// Returns ErrNotFound if the key does not exist or has expired.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value with the given TTL.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes keys. Missing keys are not an error.
	Delete(ctx context.Context, keys ...string) error

	// Has checks whether a key exists and has not expired.
	Has(ctx context.Context, key string) (bool, error)

	// Close releases resources held by the store.
	Close() error
}

// KeyLister is implemented by stores that can enumerate keys matching a
// glob pattern ("*" and "?" wildcards).
type KeyLister interface {
	Keys(ctx context.Context, pattern string) ([]string, error)
}

// TTLReader is implemented by stores that report the remaining lifetime of a key.
// It returns ErrNotFound for missing keys and NoExpiry for persistent ones.
type TTLReader interface {
	TTL(ctx context.Context, key string) (time.Duration, error)
}

// Configurer is implemented by stores that accept runtime configuration
// commands, such as Redis CONFIG SET.
type Configurer interface {
	ConfigSet(ctx context.Context, parameter, value string) error
}

// MemoryReporter is implemented by stores that report memory usage.
type MemoryReporter interface {
	MemoryUsage(ctx context.Context) (MemoryInfo, error)
}

// MemoryInfo describes store memory consumption.
type MemoryInfo struct {
	UsedHuman string `json:"used_human"`
	Policy    string `json:"policy"`
	UsedBytes int64  `json:"used_bytes"`
	MaxBytes  int64  `json:"max_bytes"`
}

// WarmupEntry is a key, value and TTL triple written ahead of demand.
// A zero TTL uses the client's default.
type WarmupEntry struct {
	Value any
	Key   string
	TTL   time.Duration
}

// Marshaler serializes and deserializes cache values.
type Marshaler interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
}

// JSONMarshaler is the default Marshaler.
// Byte slices and json.RawMessage are stored as-is.
type JSONMarshaler struct{}

func (JSONMarshaler) Marshal(v any) ([]byte, error) {
	switch val := v.(type) {
	case []byte:
		return val, nil
	case json.RawMessage:
		return val, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, errors.Join(ErrMarshal, err)
	}
	return data, nil
}

func (JSONMarshaler) Unmarshal(data []byte, v any) error {
	if raw, ok := v.(*[]byte); ok {
		*raw = append((*raw)[:0], data...)
		return nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return errors.Join(ErrUnmarshal, err)
	}
	return nil
}
