package router

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dshills/a11ybus/internal/event"
)

// AllKey subscribes to every routed event.
const AllKey = "*"

// Sentinel errors for the router package.
var (
	// ErrEmptyKey is returned when subscribing with an empty key.
	ErrEmptyKey = errors.New("subscription key is empty")

	// ErrUnknownKey is returned when a catalog is configured and the key
	// names no known group or signal.
	ErrUnknownKey = errors.New("unknown subscription key")

	// ErrNilHandler is returned when subscribing without a handler.
	ErrNilHandler = errors.New("handler is nil")
)

// Priority determines handler execution order.
// Lower values execute first.
type Priority int

const (
	// PriorityCritical is for handlers that must observe events first,
	// such as deduplication.
	PriorityCritical Priority = 0

	// PriorityHigh is for filtering and bookkeeping handlers.
	PriorityHigh Priority = 100

	// PriorityNormal is the default priority.
	PriorityNormal Priority = 200

	// PriorityLow is for sinks, logging and statistics that run last.
	PriorityLow Priority = 300
)

// String returns a human-readable priority name.
func (p Priority) String() string {
	switch {
	case p <= PriorityCritical:
		return "critical"
	case p <= PriorityHigh:
		return "high"
	case p <= PriorityNormal:
		return "normal"
	default:
		return "low"
	}
}

// Handler processes a routed event.
type Handler interface {
	Handle(ctx context.Context, ev event.Event) error
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(ctx context.Context, ev event.Event) error

// Handle calls f(ctx, ev).
func (f HandlerFunc) Handle(ctx context.Context, ev event.Event) error {
	return f(ctx, ev)
}

// FilterFunc is a predicate deciding whether a subscription receives an
// event.
type FilterFunc func(ev event.Event) bool

// Catalog resolves subscription keys. *dispatch.Dispatcher implements it.
type Catalog interface {
	GroupByTag(tag string) *event.Group
	SignalByKey(key string) *event.Signal
}

// PanicHandler is called when a handler panics during execution.
type PanicHandler func(ev event.Event, panicValue any, stack []byte)

// PanicError reports a recovered handler panic.
type PanicError struct {
	// SubscriptionID identifies the panicking subscription.
	SubscriptionID string

	// Value is the value passed to panic().
	Value any

	// Stack is the stack trace at the point of panic.
	Stack []byte
}

// Error implements the error interface.
func (e *PanicError) Error() string {
	return fmt.Sprintf("handler %s panicked: %v", e.SubscriptionID, e.Value)
}

// Result represents the outcome of one handler execution.
type Result struct {
	// Success is true if the handler completed without error or panic.
	Success bool

	// Error is the error returned by the handler, if any.
	Error error

	// Panicked is true if the handler panicked.
	Panicked bool

	// PanicValue is the value passed to panic(), if Panicked is true.
	PanicValue any

	// PanicStack is the stack trace at the point of panic.
	PanicStack []byte

	// Duration is how long the handler took to execute.
	Duration time.Duration

	// Skipped is true if the handler was not executed (e.g., context cancelled).
	Skipped bool
}

// IsSuccess returns true if the result indicates successful execution.
func (r Result) IsSuccess() bool {
	return r.Success && !r.Panicked && r.Error == nil
}

// IsError returns true if the result indicates an error (not panic).
func (r Result) IsError() bool {
	return r.Error != nil && !r.Panicked
}

// IsPanic returns true if the result indicates a panic.
func (r Result) IsPanic() bool {
	return r.Panicked
}
