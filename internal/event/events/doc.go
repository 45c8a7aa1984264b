// Package events defines the strongly-typed AT-SPI event records.
//
// Each bus interface is a group: a sealed interface type (ObjectEvent,
// WindowEvent, ...) implemented by one struct per member. The group's
// member table, built with event.NewGroup, is the single source of member
// names, match rules and decoders:
//
//   - Object events: property, state, children and text changes
//   - Window events: window lifecycle and stacking
//   - Document events: load and content changes
//   - Focus events: legacy focus notification
//   - Mouse events: pointer motion and buttons
//   - Keyboard events: modifier changes
//   - Terminal events: terminal geometry and content
//
// # Decoding
//
// Records are normally produced by the dispatch package, but a group's
// signal can be used directly:
//
//	sig := events.ObjectGroup.Signal("StateChanged")
//	ev, err := sig.Decode(item, body)
//	if err != nil {
//	    return err
//	}
//	sc := ev.(events.StateChanged)
//
// # Encoding
//
// Every record implements event.Event; Body returns the wire form and
// Signal carries the interface and member to send it under.
//
// # Property Changes
//
// Object PropertyChange carries a Property, decoded from the body by
// DecodeProperty. Property names outside the known table decode to an
// Other property holding the raw value, so new toolkit properties never
// cause a decode failure.
package events
