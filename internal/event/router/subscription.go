package router

import (
	"sync/atomic"

	"github.com/dshills/a11ybus/internal/event"
)

// SubscriptionState represents the state of a subscription.
type SubscriptionState int32

const (
	// SubscriptionStateActive means the subscription is receiving events.
	SubscriptionStateActive SubscriptionState = iota

	// SubscriptionStatePaused means the subscription is temporarily not receiving events.
	SubscriptionStatePaused

	// SubscriptionStateCancelled means the subscription has been permanently cancelled.
	SubscriptionStateCancelled
)

// String returns a human-readable state name.
func (s SubscriptionState) String() string {
	switch s {
	case SubscriptionStateActive:
		return "active"
	case SubscriptionStatePaused:
		return "paused"
	case SubscriptionStateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// SubscriptionConfig contains configuration for a subscription.
type SubscriptionConfig struct {
	// Priority determines execution order (lower values execute first).
	Priority Priority

	// Filter is an optional predicate. If set, events are only delivered
	// if Filter returns true.
	Filter FilterFunc

	// Once cancels the subscription after the first delivered event.
	Once bool
}

// DefaultSubscriptionConfig returns a default subscription configuration.
func DefaultSubscriptionConfig() SubscriptionConfig {
	return SubscriptionConfig{Priority: PriorityNormal}
}

// SubscriptionOption is a function that configures a subscription.
type SubscriptionOption func(*SubscriptionConfig)

// WithPriority sets the subscription priority.
func WithPriority(p Priority) SubscriptionOption {
	return func(c *SubscriptionConfig) {
		c.Priority = p
	}
}

// WithFilter sets a filter predicate.
func WithFilter(f FilterFunc) SubscriptionOption {
	return func(c *SubscriptionConfig) {
		c.Filter = f
	}
}

// WithOnce sets the subscription to auto-cancel after the first event.
func WithOnce() SubscriptionOption {
	return func(c *SubscriptionConfig) {
		c.Once = true
	}
}

// Subscription is a registered handler. Its lifecycle methods are safe
// for concurrent use.
type Subscription struct {
	id      string
	key     string
	seq     uint64
	handler Handler
	config  SubscriptionConfig
	state   atomic.Int32
}

func newSubscription(id, key string, seq uint64, h Handler, opts ...SubscriptionOption) *Subscription {
	config := DefaultSubscriptionConfig()
	for _, opt := range opts {
		opt(&config)
	}

	s := &Subscription{
		id:      id,
		key:     key,
		seq:     seq,
		handler: h,
		config:  config,
	}
	s.state.Store(int32(SubscriptionStateActive))
	return s
}

// ID returns the subscription ID.
func (s *Subscription) ID() string { return s.id }

// Key returns the subscribed key.
func (s *Subscription) Key() string { return s.key }

// Config returns the subscription configuration.
func (s *Subscription) Config() SubscriptionConfig { return s.config }

// State returns the current subscription state.
func (s *Subscription) State() SubscriptionState {
	return SubscriptionState(s.state.Load())
}

// IsActive returns true if the subscription is active.
func (s *Subscription) IsActive() bool {
	return s.State() == SubscriptionStateActive
}

// IsCancelled returns true if the subscription is cancelled.
func (s *Subscription) IsCancelled() bool {
	return s.State() == SubscriptionStateCancelled
}

// Pause temporarily stops event delivery.
func (s *Subscription) Pause() {
	s.state.CompareAndSwap(int32(SubscriptionStateActive), int32(SubscriptionStatePaused))
}

// Resume restarts event delivery.
func (s *Subscription) Resume() {
	s.state.CompareAndSwap(int32(SubscriptionStatePaused), int32(SubscriptionStateActive))
}

// Cancel permanently cancels the subscription. The router drops cancelled
// subscriptions on its next Route or Unsubscribe.
func (s *Subscription) Cancel() {
	s.state.Store(int32(SubscriptionStateCancelled))
}

// shouldDeliver reports whether ev should be delivered. For Once
// subscriptions it also claims the single delivery.
func (s *Subscription) shouldDeliver(ev event.Event) bool {
	if !s.IsActive() {
		return false
	}
	if s.config.Filter != nil && !s.config.Filter(ev) {
		return false
	}
	if s.config.Once {
		return s.state.CompareAndSwap(int32(SubscriptionStateActive), int32(SubscriptionStateCancelled))
	}
	return true
}
