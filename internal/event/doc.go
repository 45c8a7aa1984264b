// Package event provides the wire model and codec contract for accessibility
// bus events.
//
// Every accessibility event travels over the bus as a signal whose body has
// the same untyped shape: a string kind, two signed 32-bit details, one
// dynamically-typed value and a string-keyed property map. This package
// defines that shape (Body), the dynamic value (Value), the opaque object
// reference every event concerns (Accessible), and the transport-neutral
// message (Message).
//
// # Architecture
//
//	incoming Message ──► dispatch.Dispatcher ──► Group ──► Signal.Decode ──► Event
//	                        (by interface)     (by member)
//
//	Event ──► Event.Body() + Signal metadata ──► outgoing Message
//
// Typed event records live in the events subpackage, one sealed interface
// per bus interface (ObjectEvent, WindowEvent, ...). Each record implements
// Event:
//
//	Source() Accessible  // the object the event concerns
//	Signal() *Signal     // static interface/member/match-rule/registry-tag
//	Body() Body          // encode; total, never fails
//
// Decoding is table driven. A Group owns an immutable member table built
// once at package initialisation; each entry pairs a member name with a
// DecodeFunc.
//
// # Identity
//
// Equal compares two events field by field, including dynamic payloads.
// Hash is an xxhash digest over the same fields, except for variants that
// implement Hasher to hash a narrower key. A hash match is therefore only a
// pre-filter; callers indexing events by hash must confirm with Equal.
//
// # Thread Safety
//
// Values, bodies, messages and event records are immutable after
// construction. Groups are read-only after NewGroup returns. All decode and
// encode paths are pure and safe for concurrent use.
//
// # Subpackages
//
//   - events: typed event records, the property sub-codec, roles and states
//   - dispatch: interface/member dispatch and encoding to outgoing messages
//   - matchrule: D-Bus match rule construction and parsing
//   - dedup: hash-prefiltered event set
//   - router: listener registry keyed by registry tag
//   - script: Lua predicate filter
package event
