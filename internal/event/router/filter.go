package router

import (
	"strings"

	"github.com/dshills/a11ybus/internal/event"
)

// Common filter predicates for subscriptions.

// FilterBySender only allows events whose source has the given bus name.
func FilterBySender(name string) FilterFunc {
	return func(ev event.Event) bool {
		return ev.Source().Name == name
	}
}

// FilterBySenders only allows events from one of the given bus names.
func FilterBySenders(names ...string) FilterFunc {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return func(ev event.Event) bool {
		return set[ev.Source().Name]
	}
}

// FilterExcludeSender drops events from the given bus name.
func FilterExcludeSender(name string) FilterFunc {
	return func(ev event.Event) bool {
		return ev.Source().Name != name
	}
}

// FilterByPathPrefix only allows events whose source path starts with prefix.
func FilterByPathPrefix(prefix string) FilterFunc {
	return func(ev event.Event) bool {
		return strings.HasPrefix(ev.Source().Path, prefix)
	}
}

// FilterByInterface only allows events of one interface group.
func FilterByInterface(iface string) FilterFunc {
	return func(ev event.Event) bool {
		return ev.Signal().Interface() == iface
	}
}

// FilterByKeys allows events whose registry tag or signal key is listed,
// or any event if AllKey is listed.
func FilterByKeys(keys ...string) FilterFunc {
	set := make(map[string]bool, len(keys))
	for _, k := range keys {
		if k == AllKey {
			return FilterAll()
		}
		set[k] = true
	}
	return func(ev event.Event) bool {
		sig := ev.Signal()
		return set[sig.RegistryTag()] || set[sig.Key()]
	}
}

// FilterVariant applies predicate to events of variant T and rejects the
// rest.
func FilterVariant[T event.Event](predicate func(T) bool) FilterFunc {
	return func(ev event.Event) bool {
		v, ok := ev.(T)
		return ok && predicate(v)
	}
}

// FilterAnd combines multiple filters with AND logic.
// All filters must pass for the event to be delivered.
func FilterAnd(filters ...FilterFunc) FilterFunc {
	return func(ev event.Event) bool {
		for _, f := range filters {
			if f != nil && !f(ev) {
				return false
			}
		}
		return true
	}
}

// FilterOr combines multiple filters with OR logic.
// At least one filter must pass for the event to be delivered.
func FilterOr(filters ...FilterFunc) FilterFunc {
	return func(ev event.Event) bool {
		for _, f := range filters {
			if f != nil && f(ev) {
				return true
			}
		}
		return false
	}
}

// FilterNot negates a filter.
func FilterNot(filter FilterFunc) FilterFunc {
	return func(ev event.Event) bool {
		return !filter(ev)
	}
}

// FilterAll allows all events (no filtering).
func FilterAll() FilterFunc {
	return func(event.Event) bool { return true }
}

// FilterNone blocks all events.
func FilterNone() FilterFunc {
	return func(event.Event) bool { return false }
}
