package router

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/dshills/a11ybus/internal/event"
)

// Router is a registry of subscriptions keyed by registry tag or signal
// key, with synchronous priority-ordered delivery.
type Router struct {
	mu      sync.RWMutex
	subs    map[string][]*Subscription
	byID    map[string]*Subscription
	seq     uint64
	catalog Catalog
	exec    executor

	// Stats
	routed    atomic.Uint64
	delivered atomic.Uint64
	failed    atomic.Uint64
	panicked  atomic.Uint64
	skipped   atomic.Uint64
	unmatched atomic.Uint64
}

// Option configures a Router.
type Option func(*Router)

// WithCatalog validates subscription keys against the groups and signals
// known to c.
func WithCatalog(c Catalog) Option {
	return func(r *Router) {
		r.catalog = c
	}
}

// WithPanicHandler sets a callback for recovered handler panics.
func WithPanicHandler(h PanicHandler) Option {
	return func(r *Router) {
		r.exec.panicHandler = h
	}
}

// WithTimeout bounds each handler call with a context deadline.
// Handlers must respect context cancellation for this to be effective.
func WithTimeout(d time.Duration) Option {
	return func(r *Router) {
		r.exec.timeout = d
	}
}

// New creates a router.
func New(opts ...Option) *Router {
	r := &Router{
		subs: make(map[string][]*Subscription),
		byID: make(map[string]*Subscription),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Subscribe registers handler under key. See the package documentation for
// the key forms.
func (r *Router) Subscribe(key string, handler Handler, opts ...SubscriptionOption) (*Subscription, error) {
	if key == "" {
		return nil, ErrEmptyKey
	}
	if handler == nil {
		return nil, ErrNilHandler
	}
	if err := r.validateKey(key); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.seq++
	sub := newSubscription(uuid.New().String(), key, r.seq, handler, opts...)

	subs := append(r.subs[key], sub)
	sortByPriority(subs)
	r.subs[key] = subs
	r.byID[sub.id] = sub

	return sub, nil
}

// SubscribeFunc is Subscribe for a plain function.
func (r *Router) SubscribeFunc(key string, fn func(ctx context.Context, ev event.Event) error, opts ...SubscriptionOption) (*Subscription, error) {
	if fn == nil {
		return nil, ErrNilHandler
	}
	return r.Subscribe(key, HandlerFunc(fn), opts...)
}

func (r *Router) validateKey(key string) error {
	if key == AllKey || r.catalog == nil {
		return nil
	}
	if strings.HasSuffix(key, ":") {
		if r.catalog.GroupByTag(key) == nil {
			return fmt.Errorf("%w: no group tagged %q", ErrUnknownKey, key)
		}
		return nil
	}
	if r.catalog.SignalByKey(key) == nil {
		return fmt.Errorf("%w: no signal %q", ErrUnknownKey, key)
	}
	return nil
}

// Unsubscribe removes a subscription by ID.
func (r *Router) Unsubscribe(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	sub, exists := r.byID[id]
	if !exists {
		return false
	}
	sub.Cancel()
	r.removeLocked(sub)
	return true
}

func (r *Router) removeLocked(sub *Subscription) {
	subs := r.subs[sub.key]
	for i, s := range subs {
		if s == sub {
			r.subs[sub.key] = append(subs[:i:i], subs[i+1:]...)
			break
		}
	}
	if len(r.subs[sub.key]) == 0 {
		delete(r.subs, sub.key)
	}
	delete(r.byID, sub.id)
}

// Match returns the subscriptions that would receive ev, in delivery
// order. Paused and cancelled subscriptions are included; delivery skips
// them.
func (r *Router) Match(ev event.Event) []*Subscription {
	sig := ev.Signal()

	r.mu.RLock()
	defer r.mu.RUnlock()

	var all []*Subscription
	all = append(all, r.subs[AllKey]...)
	all = append(all, r.subs[sig.RegistryTag()]...)
	all = append(all, r.subs[sig.Key()]...)
	if len(all) == 0 {
		return nil
	}

	out := make([]*Subscription, len(all))
	copy(out, all)
	sortByPriority(out)
	return out
}

// Route delivers ev to every matching active subscription. Handler errors
// and recovered panics are joined into the returned error. If ctx is
// cancelled, remaining handlers are skipped and ctx.Err() is included.
func (r *Router) Route(ctx context.Context, ev event.Event) error {
	r.routed.Add(1)

	subs := r.Match(ev)
	if len(subs) == 0 {
		r.unmatched.Add(1)
		return nil
	}

	var errs []error
	var cancelled bool
	for _, sub := range subs {
		if ctx.Err() != nil {
			r.skipped.Add(1)
			cancelled = true
			continue
		}
		if !sub.shouldDeliver(ev) {
			continue
		}

		result := r.exec.execute(ctx, ev, sub.handler)
		switch {
		case result.Skipped:
			r.skipped.Add(1)
			cancelled = true
		case result.Panicked:
			r.panicked.Add(1)
			errs = append(errs, &PanicError{
				SubscriptionID: sub.id,
				Value:          result.PanicValue,
				Stack:          result.PanicStack,
			})
		case result.Error != nil:
			r.failed.Add(1)
			errs = append(errs, result.Error)
		default:
			r.delivered.Add(1)
		}
	}
	if cancelled {
		errs = append(errs, ctx.Err())
	}

	r.pruneCancelled(subs)
	return errors.Join(errs...)
}

func (r *Router) pruneCancelled(subs []*Subscription) {
	var dead []*Subscription
	for _, s := range subs {
		if s.IsCancelled() {
			dead = append(dead, s)
		}
	}
	if len(dead) == 0 {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range dead {
		if _, ok := r.byID[s.id]; ok {
			r.removeLocked(s)
		}
	}
}

// Count returns the number of registered subscriptions.
func (r *Router) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.byID)
}

// Keys returns the keys with at least one subscription, sorted.
func (r *Router) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	keys := make([]string, 0, len(r.subs))
	for k := range r.subs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Stats returns routing statistics.
// Note: Stats are read without a mutex, so values may be slightly inconsistent
// if stats are being updated concurrently.
func (r *Router) Stats() Stats {
	return Stats{
		Routed:    r.routed.Load(),
		Delivered: r.delivered.Load(),
		Failed:    r.failed.Load(),
		Panicked:  r.panicked.Load(),
		Skipped:   r.skipped.Load(),
		Unmatched: r.unmatched.Load(),
	}
}

// Stats contains router statistics.
type Stats struct {
	// Routed is the number of Route calls.
	Routed uint64

	// Delivered is the number of successful handler executions.
	Delivered uint64

	// Failed is the number of handlers that returned errors.
	Failed uint64

	// Panicked is the number of handlers that panicked.
	Panicked uint64

	// Skipped is the number of handlers skipped because the context ended.
	Skipped uint64

	// Unmatched is the number of events with no subscriber.
	Unmatched uint64
}

// sortByPriority orders by priority, then by subscription order.
func sortByPriority(subs []*Subscription) {
	sort.SliceStable(subs, func(i, j int) bool {
		if subs[i].config.Priority != subs[j].config.Priority {
			return subs[i].config.Priority < subs[j].config.Priority
		}
		return subs[i].seq < subs[j].seq
	})
}
