package events

import "github.com/dshills/a11ybus/internal/event"

// Mouse interface identity.
const (
	MouseInterface = "org.a11y.atspi.Event.Mouse"
	MouseTag       = "Mouse:"
)

// MouseEvent is any event of the Mouse interface.
type MouseEvent interface {
	event.Event
	isMouseEvent()
}

// MouseGroup is the member table of the Mouse interface.
var MouseGroup = event.NewGroup("Mouse", MouseInterface, MouseTag,
	event.SignalSpec{Member: "Abs", Decode: decodeMouseAbs},
	event.SignalSpec{Member: "Rel", Decode: decodeMouseRel},
	event.SignalSpec{Member: "Button", Decode: decodeMouseButton},
)

func mouseSignal(member string) *event.Signal { return MouseGroup.Signal(member) }

// MouseAbs reports pointer motion in absolute screen coordinates.
type MouseAbs struct {
	Item event.Accessible
	X    int32
	Y    int32
}

func decodeMouseAbs(item event.Accessible, body event.Body) (event.Event, error) {
	return MouseAbs{Item: item, X: body.Detail1, Y: body.Detail2}, nil
}

func (e MouseAbs) Source() event.Accessible { return e.Item }
func (MouseAbs) Signal() *event.Signal      { return mouseSignal("Abs") }
func (MouseAbs) isMouseEvent()              {}

func (e MouseAbs) Body() event.Body {
	b := event.NewBody()
	b.Detail1 = e.X
	b.Detail2 = e.Y
	return b
}

// MouseRel reports pointer motion relative to the previous position.
type MouseRel struct {
	Item event.Accessible
	X    int32
	Y    int32
}

func decodeMouseRel(item event.Accessible, body event.Body) (event.Event, error) {
	return MouseRel{Item: item, X: body.Detail1, Y: body.Detail2}, nil
}

func (e MouseRel) Source() event.Accessible { return e.Item }
func (MouseRel) Signal() *event.Signal      { return mouseSignal("Rel") }
func (MouseRel) isMouseEvent()              {}

func (e MouseRel) Body() event.Body {
	b := event.NewBody()
	b.Detail1 = e.X
	b.Detail2 = e.Y
	return b
}

// MouseButton reports a button press or release. Detail names the button
// and action, e.g. "1p" or "3r".
type MouseButton struct {
	Item   event.Accessible
	Detail string
	MouseX int32
	MouseY int32
}

func decodeMouseButton(item event.Accessible, body event.Body) (event.Event, error) {
	return MouseButton{
		Item:   item,
		Detail: body.Kind,
		MouseX: body.Detail1,
		MouseY: body.Detail2,
	}, nil
}

func (e MouseButton) Source() event.Accessible { return e.Item }
func (MouseButton) Signal() *event.Signal      { return mouseSignal("Button") }
func (MouseButton) isMouseEvent()              {}

func (e MouseButton) Body() event.Body {
	b := event.NewBody()
	b.Kind = e.Detail
	b.Detail1 = e.MouseX
	b.Detail2 = e.MouseY
	return b
}
