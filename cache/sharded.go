package cache

import (
	"sync"
	"sync/atomic"
)

const (
	// ShardCount is the number of independently locked shards.
	// It must be a power of two.
	ShardCount = 16

	// DefaultCapacity is the per-shard entry limit used when none is given.
	DefaultCapacity = 32

	shardMask = ShardCount - 1
)

// Hasher picks the shard of a key.
type Hasher[K any] func(K) uint64

// Sharded is a concurrent LRU map split into ShardCount shards, each with
// its own lock and its own capacity. Keys in different shards never contend.
type Sharded[K comparable, V any] struct {
	shards   [ShardCount]shard[K, V]
	hash     Hasher[K]
	capacity int

	hits      atomic.Uint64
	misses    atomic.Uint64
	evictions atomic.Uint64
}

type shard[K comparable, V any] struct {
	mu      sync.Mutex
	entries map[K]*entry[K, V]
	order   recency[K]
}

type entry[K comparable, V any] struct {
	value V
	node  *node[K]
}

// NewSharded returns an empty map holding up to capacity entries per shard.
// capacity <= 0 selects DefaultCapacity.
func NewSharded[K comparable, V any](capacity int, hash Hasher[K]) *Sharded[K, V] {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	s := &Sharded[K, V]{hash: hash, capacity: capacity}
	for i := range s.shards {
		s.shards[i].entries = make(map[K]*entry[K, V])
	}
	return s
}

func (s *Sharded[K, V]) shardFor(key K) *shard[K, V] {
	return &s.shards[s.hash(key)&shardMask]
}

// Get returns the value for key and marks it recently used.
func (s *Sharded[K, V]) Get(key K) (V, bool) {
	sh := s.shardFor(key)
	sh.mu.Lock()
	e, ok := sh.entries[key]
	if ok {
		sh.order.touch(e.node)
	}
	sh.mu.Unlock()

	if !ok {
		s.misses.Add(1)
		var zero V
		return zero, false
	}
	s.hits.Add(1)
	return e.value, true
}

// Add stores value under key, evicting the shard's least recently used
// entries when it is full.
func (s *Sharded[K, V]) Add(key K, value V) {
	sh := s.shardFor(key)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	if e, ok := sh.entries[key]; ok {
		e.value = value
		sh.order.touch(e.node)
		return
	}
	for sh.order.len() >= s.capacity {
		old, ok := sh.order.evict()
		if !ok {
			break
		}
		delete(sh.entries, old)
		s.evictions.Add(1)
	}
	sh.entries[key] = &entry[K, V]{value: value, node: sh.order.push(key)}
}

// Remove deletes key and reports whether it was present.
func (s *Sharded[K, V]) Remove(key K) bool {
	sh := s.shardFor(key)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	e, ok := sh.entries[key]
	if ok {
		sh.order.remove(e.node)
		delete(sh.entries, key)
	}
	return ok
}

// Purge removes every entry. Statistics are kept.
func (s *Sharded[K, V]) Purge() {
	for i := range s.shards {
		sh := &s.shards[i]
		sh.mu.Lock()
		sh.entries = make(map[K]*entry[K, V])
		sh.order = recency[K]{}
		sh.mu.Unlock()
	}
}

// Len returns the number of entries across all shards.
func (s *Sharded[K, V]) Len() int {
	n := 0
	for i := range s.shards {
		sh := &s.shards[i]
		sh.mu.Lock()
		n += len(sh.entries)
		sh.mu.Unlock()
	}
	return n
}

// Stats is a snapshot of cache counters.
type Stats struct {
	Len       int
	Capacity  int // total, across shards
	Hits      uint64
	Misses    uint64
	Evictions uint64

	// Shared counts Compile calls whose result came from a compilation
	// shared with another caller. Only Cache sets it.
	Shared uint64
}

// HitRate returns Hits / (Hits + Misses), or 0 before any lookup.
func (st Stats) HitRate() float64 {
	total := st.Hits + st.Misses
	if total == 0 {
		return 0
	}
	return float64(st.Hits) / float64(total)
}

// Stats returns the current counters.
func (s *Sharded[K, V]) Stats() Stats {
	return Stats{
		Len:       s.Len(),
		Capacity:  s.capacity * ShardCount,
		Hits:      s.hits.Load(),
		Misses:    s.misses.Load(),
		Evictions: s.evictions.Load(),
	}
}
