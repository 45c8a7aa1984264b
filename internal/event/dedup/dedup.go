// Package dedup suppresses repeated accessibility events.
//
// Events are indexed by event.Hash. The hash is only a pre-filter: some
// variants (Object PropertyChange) hash a narrower key than they compare,
// so every hash hit is confirmed with event.Equal before an event is
// treated as a duplicate.
package dedup

import (
	"sync"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/dshills/a11ybus/internal/event"
)

// Config configures a Set.
type Config struct {
	// MaxBuckets bounds the number of distinct hashes retained. The least
	// recently used bucket is evicted first.
	MaxBuckets int

	// TTL expires entries older than this. Zero keeps entries until they
	// are evicted.
	TTL time.Duration
}

// DefaultConfig returns the default set configuration.
func DefaultConfig() Config {
	return Config{
		MaxBuckets: 4096,
		TTL:        2 * time.Second,
	}
}

type entry struct {
	ev    event.Event
	added time.Time
}

// Set remembers recently seen events. It is safe for concurrent use.
type Set struct {
	mu      sync.Mutex
	config  Config
	buckets *lru.Cache[uint64, []entry]
	now     func() time.Time

	// dropping is set while entries are removed on purpose, so the evict
	// callback only counts capacity evictions.
	dropping bool

	// Stats (atomic for thread-safe access without holding locks)
	hits       atomic.Uint64
	misses     atomic.Uint64
	collisions atomic.Uint64
	evictions  atomic.Uint64
}

// New creates a set.
func New(config Config) *Set {
	if config.MaxBuckets <= 0 {
		config.MaxBuckets = DefaultConfig().MaxBuckets
	}

	s := &Set{config: config, now: time.Now}
	// NewWithEvict only fails for a non-positive size.
	s.buckets, _ = lru.NewWithEvict[uint64, []entry](config.MaxBuckets, func(uint64, []entry) {
		if !s.dropping {
			s.evictions.Add(1)
		}
	})
	return s
}

// Seen reports whether an equal event is already in the set. If not, ev is
// added.
func (s *Set) Seen(ev event.Event) bool {
	h := event.Hash(ev)
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	bucket, _ := s.buckets.Get(h)
	bucket = s.live(bucket, now)

	for _, e := range bucket {
		if event.Equal(e.ev, ev) {
			s.hits.Add(1)
			return true
		}
	}
	if len(bucket) > 0 {
		// Same hash, different event.
		s.collisions.Add(1)
	}

	s.misses.Add(1)
	s.buckets.Add(h, append(bucket, entry{ev: ev, added: now}))
	return false
}

// Contains reports whether an equal event is in the set without adding it.
func (s *Set) Contains(ev event.Event) bool {
	h := event.Hash(ev)
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	bucket, _ := s.buckets.Peek(h)
	for _, e := range s.live(bucket, now) {
		if event.Equal(e.ev, ev) {
			return true
		}
	}
	return false
}

// Remove deletes an equal event from the set.
func (s *Set) Remove(ev event.Event) bool {
	h := event.Hash(ev)

	s.mu.Lock()
	defer s.mu.Unlock()

	bucket, ok := s.buckets.Peek(h)
	if !ok {
		return false
	}
	for i, e := range bucket {
		if event.Equal(e.ev, ev) {
			rest := append(bucket[:i:i], bucket[i+1:]...)
			if len(rest) == 0 {
				s.dropping = true
				s.buckets.Remove(h)
				s.dropping = false
			} else {
				s.buckets.Add(h, rest)
			}
			return true
		}
	}
	return false
}

// live drops expired entries from a bucket.
func (s *Set) live(bucket []entry, now time.Time) []entry {
	if s.config.TTL <= 0 || len(bucket) == 0 {
		return bucket
	}
	out := bucket[:0:0]
	for _, e := range bucket {
		if now.Sub(e.added) < s.config.TTL {
			out = append(out, e)
		}
	}
	return out
}

// Len returns the number of retained events, including expired entries not
// yet collected.
func (s *Set) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, h := range s.buckets.Keys() {
		bucket, _ := s.buckets.Peek(h)
		n += len(bucket)
	}
	return n
}

// Reset empties the set.
func (s *Set) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.dropping = true
	s.buckets.Purge()
	s.dropping = false
}

// Stats contains set statistics.
type Stats struct {
	// Hits counts events found to be duplicates.
	Hits uint64

	// Misses counts events added as new.
	Misses uint64

	// Collisions counts new events whose hash matched a retained,
	// unequal event.
	Collisions uint64

	// Evictions counts buckets dropped for capacity.
	Evictions uint64
}

// Stats returns set statistics.
func (s *Set) Stats() Stats {
	return Stats{
		Hits:       s.hits.Load(),
		Misses:     s.misses.Load(),
		Collisions: s.collisions.Load(),
		Evictions:  s.evictions.Load(),
	}
}
