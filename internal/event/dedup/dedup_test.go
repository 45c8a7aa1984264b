package dedup

import (
	"sync"
	"testing"
	"time"

	"github.com/dshills/a11ybus/internal/event"
	"github.com/dshills/a11ybus/internal/event/events"
)

var testItem = event.Accessible{Name: ":1.8", Path: "/org/a11y/atspi/accessible/4"}

func newTestSet(config Config) (*Set, *time.Time) {
	s := New(config)
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	s.now = func() time.Time { return now }
	return s, &now
}

func TestSeen(t *testing.T) {
	s, _ := newTestSet(Config{MaxBuckets: 16})

	ev := events.StateChanged{Item: testItem, State: events.StateFocused, Enabled: 1}
	if s.Seen(ev) {
		t.Error("expected first sighting to be new")
	}
	if !s.Seen(ev) {
		t.Error("expected second sighting to be a duplicate")
	}
	if s.Seen(events.StateChanged{Item: testItem, State: events.StateFocused, Enabled: 0}) {
		t.Error("expected a different event to be new")
	}

	stats := s.Stats()
	if stats.Hits != 1 || stats.Misses != 2 {
		t.Errorf("unexpected stats: %+v", stats)
	}
	if s.Len() != 2 {
		t.Errorf("expected 2 entries, got %d", s.Len())
	}
}

func TestHashCollisionIsNotADuplicate(t *testing.T) {
	s, _ := newTestSet(Config{MaxBuckets: 16})

	a := events.ObjectPropertyChange{Item: testItem, Property: events.KeyName, Value: events.NameProperty("a")}
	b := events.ObjectPropertyChange{Item: testItem, Property: events.KeyName, Value: events.NameProperty("b")}

	if event.Hash(a) != event.Hash(b) {
		t.Fatal("expected the two events to share a hash")
	}

	if s.Seen(a) {
		t.Error("expected a to be new")
	}
	if s.Seen(b) {
		t.Error("expected b to be new despite the hash match")
	}
	if !s.Seen(b) {
		t.Error("expected b to be a duplicate the second time")
	}
	if !s.Contains(a) || !s.Contains(b) {
		t.Error("expected both events to be retained")
	}
	if s.Stats().Collisions != 1 {
		t.Errorf("expected 1 collision, got %d", s.Stats().Collisions)
	}
}

func TestTTL(t *testing.T) {
	s, now := newTestSet(Config{MaxBuckets: 16, TTL: time.Second})

	ev := events.Focus{Item: testItem}
	s.Seen(ev)

	*now = now.Add(500 * time.Millisecond)
	if !s.Seen(ev) {
		t.Error("expected duplicate within TTL")
	}

	*now = now.Add(time.Second)
	if s.Contains(ev) {
		t.Error("expected entry to expire")
	}
	if s.Seen(ev) {
		t.Error("expected expired event to be new again")
	}
}

func TestCapacityEviction(t *testing.T) {
	s, _ := newTestSet(Config{MaxBuckets: 2})

	for i := int32(0); i < 3; i++ {
		s.Seen(events.TextCaretMoved{Item: testItem, Position: i})
	}

	if s.Contains(events.TextCaretMoved{Item: testItem, Position: 0}) {
		t.Error("expected the oldest bucket to be evicted")
	}
	if !s.Contains(events.TextCaretMoved{Item: testItem, Position: 2}) {
		t.Error("expected the newest event to be retained")
	}
	if s.Stats().Evictions != 1 {
		t.Errorf("expected 1 eviction, got %d", s.Stats().Evictions)
	}
}

func TestRemoveAndReset(t *testing.T) {
	s, _ := newTestSet(Config{MaxBuckets: 16})

	a := events.MouseAbs{Item: testItem, X: 1, Y: 2}
	b := events.MouseAbs{Item: testItem, X: 3, Y: 4}
	s.Seen(a)
	s.Seen(b)

	if !s.Remove(a) {
		t.Error("expected Remove to succeed")
	}
	if s.Remove(a) {
		t.Error("expected second Remove to fail")
	}
	if s.Contains(a) {
		t.Error("expected a to be gone")
	}

	s.Reset()
	if s.Len() != 0 {
		t.Errorf("expected empty set, got %d", s.Len())
	}
	if s.Stats().Evictions != 0 {
		t.Errorf("expected explicit removal not to count as eviction, got %d", s.Stats().Evictions)
	}
}

func TestDefaultConfig(t *testing.T) {
	s := New(Config{})
	if s.config.MaxBuckets != DefaultConfig().MaxBuckets {
		t.Errorf("expected default capacity, got %d", s.config.MaxBuckets)
	}
}

func TestSeenConcurrent(t *testing.T) {
	s := New(DefaultConfig())
	ev := events.Focus{Item: testItem}

	var wg sync.WaitGroup
	var mu sync.Mutex
	fresh := 0
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if !s.Seen(ev) {
				mu.Lock()
				fresh++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if fresh != 1 {
		t.Errorf("expected exactly one new sighting, got %d", fresh)
	}
}
