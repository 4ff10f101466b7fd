package data

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"expansion-prep/internal/model"
)

var cacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "expansion_prep_case_cache_lookups_total",
	Help: "Case cache lookups by result.",
}, []string{"result"})

// CacheEntry is a loaded case and its expiry.
type CacheEntry struct {
	Case      *model.Case
	ExpiresAt time.Time
}

func (e *CacheEntry) expired(now time.Time) bool { return !now.Before(e.ExpiresAt) }

// CaseCache keeps parsed cases in memory so repeated runs against the same
// case directory skip CSV decoding. A nil *CaseCache is valid and caches nothing.
//
// Cached cases are shared: callers must not mutate them.
type CaseCache struct {
	mu    sync.RWMutex
	store map[string]*CacheEntry
	ttl   time.Duration
	done  chan struct{}
	once  sync.Once
	now   func() time.Time
}

// NewCaseCache starts a cache whose entries live for ttl. Close stops the
// background cleanup.
func NewCaseCache(ttl time.Duration) *CaseCache {
	if ttl <= 0 {
		ttl = time.Hour
	}
	c := &CaseCache{
		store: make(map[string]*CacheEntry),
		ttl:   ttl,
		done:  make(chan struct{}),
		now:   time.Now,
	}
	go c.cleanup(5 * time.Minute)
	return c
}

// Load returns the case from the cache or reads it from disk.
func (c *CaseCache) Load(dir, name string) (*model.Case, error) {
	key := GenerateCacheKey(dir, name)
	if cs, ok := c.Get(key); ok {
		cacheLookups.WithLabelValues("hit").Inc()
		return cs, nil
	}
	if c != nil {
		cacheLookups.WithLabelValues("miss").Inc()
	}
	cs, err := LoadCase(dir, name)
	if err != nil {
		return nil, err
	}
	c.Set(key, cs)
	return cs, nil
}

// Get retrieves a cached case if available and not expired.
func (c *CaseCache) Get(key string) (*model.Case, bool) {
	if c == nil {
		return nil, false
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	if e, ok := c.store[key]; ok && !e.expired(c.now()) {
		return e.Case, true
	}
	return nil, false
}

func (c *CaseCache) Set(key string, cs *model.Case) {
	if c == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.store[key] = &CacheEntry{Case: cs, ExpiresAt: c.now().Add(c.ttl)}
}

// Clear removes all entries.
func (c *CaseCache) Clear() {
	if c == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.store = make(map[string]*CacheEntry)
}

func (c *CaseCache) Len() int {
	if c == nil {
		return 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.store)
}

func (c *CaseCache) Close() {
	if c == nil {
		return
	}
	c.once.Do(func() { close(c.done) })
}

func (c *CaseCache) cleanup(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			c.evict()
		}
	}
}

func (c *CaseCache) evict() {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	for k, e := range c.store {
		if e.expired(now) {
			delete(c.store, k)
		}
	}
}

// GenerateCacheKey creates a cache key from the case location.
func GenerateCacheKey(dir, name string) string {
	abs, err := filepath.Abs(dir)
	if err != nil {
		abs = dir
	}
	hash := sha256.Sum256([]byte(fmt.Sprintf("%s:%s", filepath.Clean(abs), name)))
	return hex.EncodeToString(hash[:])
}
