package events

import "github.com/dshills/a11ybus/internal/event"

// Focus interface identity.
const (
	FocusInterface = "org.a11y.atspi.Event.Focus"
	FocusTag       = "Focus:"
)

// FocusEvent is any event of the Focus interface.
type FocusEvent interface {
	event.Event
	isFocusEvent()
}

// FocusGroup is the member table of the Focus interface.
var FocusGroup = event.NewGroup("Focus", FocusInterface, FocusTag,
	event.SignalSpec{Member: "Focus", Decode: itemOnly[Focus]},
)

func focusSignal(member string) *event.Signal { return FocusGroup.Signal(member) }

// Focus is the legacy focus notification. Newer toolkits report focus as a
// StateChanged event for the focused state.
type Focus struct{ Item event.Accessible }

func (e Focus) Source() event.Accessible { return e.Item }
func (Focus) Signal() *event.Signal      { return focusSignal("Focus") }
func (Focus) Body() event.Body           { return emptyBody() }
func (Focus) isFocusEvent()              {}
