package cache

import (
	"sync"

	"github.com/jellydator/ttlcache/v3"
)

// Table maps keys to entries. Entries are created on first reference and never removed.
type Table interface {
	// Returns the entry for the key, creating it if it doesn't exist.
	// created is true for exactly one caller per key.
	GetOrCreate(key string) (entry *Entry, created bool)
	Len() int
}

type basicTable struct {
	entries map[string]*Entry
	mu      sync.Mutex
}

func (t *basicTable) GetOrCreate(key string) (*Entry, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if entry, ok := t.entries[key]; ok {
		return entry, false
	}

	entry := newEntry(key)
	t.entries[key] = entry
	return entry, true
}

func (t *basicTable) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}

func NewBasicTable() *basicTable {
	return &basicTable{
		entries: make(map[string]*Entry),
	}
}

type ttlTable struct {
	cache *ttlcache.Cache[string, *Entry]
}

func (t *ttlTable) GetOrCreate(key string) (*Entry, bool) {
	// GetOrSet runs under the cache's lock, so only one entry is ever stored per key
	item, existed := t.cache.GetOrSet(key, newEntry(key))
	return item.Value(), !existed
}

func (t *ttlTable) Len() int {
	return t.cache.Len()
}

// A table backed by ttlcache. Entries never expire, and the cache is not started since there
// is nothing to clean up.
func NewTTLTable() *ttlTable {
	entries := ttlcache.New[string, *Entry](
		ttlcache.WithTTL[string, *Entry](ttlcache.NoTTL),
		ttlcache.WithDisableTouchOnHit[string, *Entry](),
	)
	return &ttlTable{cache: entries}
}

// Type assertions
var _ Table = (*basicTable)(nil)
var _ Table = (*ttlTable)(nil)
