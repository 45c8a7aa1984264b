// Package matchrule builds, parses and evaluates D-Bus match rules.
//
// A match rule is the filter expression the bus daemon uses to decide which
// signals a connection receives:
//
//	type='signal',interface='org.a11y.atspi.Event.Object'
//	type='signal',interface='org.a11y.atspi.Event.Object',member='StateChanged'
//
// Only the keys used for accessibility event subscriptions are supported:
// type, interface, member, path and sender. Values must be single-quoted and
// may not contain quotes.
package matchrule
