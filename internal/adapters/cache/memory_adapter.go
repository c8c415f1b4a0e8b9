package cache

import (
	"context"
	"sync"
	"time"

	"github.com/zatekoja/businesstrust/backend/internal/domain/providers"
)

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// MemoryAdapter is an in-process CacheProvider used when Redis is disabled
type MemoryAdapter struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

var _ providers.CacheProvider = (*MemoryAdapter)(nil)

// NewMemoryAdapter creates an empty in-process cache
func NewMemoryAdapter() *MemoryAdapter {
	return &MemoryAdapter{entries: make(map[string]memoryEntry), now: time.Now}
}

// Get returns providers.ErrCacheMiss for absent or expired keys
func (a *MemoryAdapter) Get(ctx context.Context, key string) ([]byte, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	e, ok := a.lookup(key)
	if !ok {
		return nil, providers.ErrCacheMiss
	}
	out := make([]byte, len(e.value))
	copy(out, e.value)
	return out, nil
}

// Set stores value; expirationSeconds <= 0 means no expiry
func (a *MemoryAdapter) Set(ctx context.Context, key string, value []byte, expirationSeconds int) error {
	e := memoryEntry{value: append([]byte(nil), value...)}
	if expirationSeconds > 0 {
		e.expiresAt = a.now().Add(time.Duration(expirationSeconds) * time.Second)
	}

	a.mu.Lock()
	a.entries[key] = e
	a.mu.Unlock()
	return nil
}

// Delete removes a key
func (a *MemoryAdapter) Delete(ctx context.Context, key string) error {
	a.mu.Lock()
	delete(a.entries, key)
	a.mu.Unlock()
	return nil
}

// Exists reports whether a live key is present
func (a *MemoryAdapter) Exists(ctx context.Context, key string) (bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	_, ok := a.lookup(key)
	return ok, nil
}

// DeletePattern removes keys matching a glob pattern
func (a *MemoryAdapter) DeletePattern(ctx context.Context, pattern string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	for key := range a.entries {
		if matchGlob(pattern, key) {
			delete(a.entries, key)
		}
	}
	return nil
}

func (a *MemoryAdapter) lookup(key string) (memoryEntry, bool) {
	e, ok := a.entries[key]
	if !ok {
		return memoryEntry{}, false
	}
	if !e.expiresAt.IsZero() && !a.now().Before(e.expiresAt) {
		delete(a.entries, key)
		return memoryEntry{}, false
	}
	return e, true
}

// matchGlob matches Redis-style patterns where '*' spans any run of
// characters (including '/') and '?' matches one character
func matchGlob(pattern, s string) bool {
	p, str := []rune(pattern), []rune(s)
	pi, si := 0, 0
	star, mark := -1, 0
	for si < len(str) {
		switch {
		case pi < len(p) && (p[pi] == '?' || p[pi] == str[si]):
			pi++
			si++
		case pi < len(p) && p[pi] == '*':
			star, mark = pi, si
			pi++
		case star >= 0:
			pi = star + 1
			mark++
			si = mark
		default:
			return false
		}
	}
	for pi < len(p) && p[pi] == '*' {
		pi++
	}
	return pi == len(p)
}
