package events

import "github.com/dshills/a11ybus/internal/event"

// Keyboard interface identity.
const (
	KeyboardInterface = "org.a11y.atspi.Event.Keyboard"
	KeyboardTag       = "Keyboard:"
)

// KeyboardEvent is any event of the Keyboard interface.
type KeyboardEvent interface {
	event.Event
	isKeyboardEvent()
}

// KeyboardGroup is the member table of the Keyboard interface.
var KeyboardGroup = event.NewGroup("Keyboard", KeyboardInterface, KeyboardTag,
	event.SignalSpec{Member: "Modifiers", Decode: decodeKeyboardModifiers},
)

func keyboardSignal(member string) *event.Signal { return KeyboardGroup.Signal(member) }

// KeyboardModifiers reports a change in the locked or latched modifier
// mask.
type KeyboardModifiers struct {
	Item              event.Accessible
	PreviousModifiers int32
	CurrentModifiers  int32
}

func decodeKeyboardModifiers(item event.Accessible, body event.Body) (event.Event, error) {
	return KeyboardModifiers{
		Item:              item,
		PreviousModifiers: body.Detail1,
		CurrentModifiers:  body.Detail2,
	}, nil
}

func (e KeyboardModifiers) Source() event.Accessible { return e.Item }
func (KeyboardModifiers) Signal() *event.Signal      { return keyboardSignal("Modifiers") }
func (KeyboardModifiers) isKeyboardEvent()           {}

func (e KeyboardModifiers) Body() event.Body {
	b := event.NewBody()
	b.Detail1 = e.PreviousModifiers
	b.Detail2 = e.CurrentModifiers
	return b
}
