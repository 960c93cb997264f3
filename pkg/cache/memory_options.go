package cache

import "time"

// MemoryOption configures the in-memory store.
type MemoryOption func(*memoryOptions)

type memoryOptions struct {
	policy          string
	cleanupInterval time.Duration
	maxEntries      int
}

func defaultMemoryOptions() *memoryOptions {
	return &memoryOptions{
		policy:          PolicyAllKeysLRU,
		cleanupInterval: time.Minute,
		maxEntries:      0, // 0 = unlimited
	}
}

// WithCleanupInterval sets how often expired entries are removed
// by the background janitor goroutine. Zero disables the janitor.
// Default: 1 minute.
func WithCleanupInterval(d time.Duration) MemoryOption {
	return func(o *memoryOptions) {
		o.cleanupInterval = d
	}
}

// WithMaxEntries sets the maximum number of entries in the store.
// What happens at the limit depends on the eviction policy.
// Zero means unlimited.
// Default: 0 (unlimited).
func WithMaxEntries(n int) MemoryOption {
	return func(o *memoryOptions) {
		o.maxEntries = n
	}
}

// WithEvictionPolicy sets the initial eviction policy
// (PolicyAllKeysLRU or PolicyNoEviction).
// Default: PolicyAllKeysLRU.
func WithEvictionPolicy(policy string) MemoryOption {
	return func(o *memoryOptions) {
		if policy == PolicyAllKeysLRU || policy == PolicyNoEviction {
			o.policy = policy
		}
	}
}
