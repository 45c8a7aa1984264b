package events

import "github.com/dshills/a11ybus/internal/event"

// Window interface identity.
const (
	WindowInterface = "org.a11y.atspi.Event.Window"
	WindowTag       = "Window:"
)

// WindowEvent is any event of the Window interface.
type WindowEvent interface {
	event.Event
	isWindowEvent()
}

// WindowGroup is the member table of the Window interface.
var WindowGroup = event.NewGroup("Window", WindowInterface, WindowTag,
	event.SignalSpec{Member: "PropertyChange", Decode: decodeWindowPropertyChange},
	event.SignalSpec{Member: "Minimize", Decode: itemOnly[WindowMinimize]},
	event.SignalSpec{Member: "Maximize", Decode: itemOnly[WindowMaximize]},
	event.SignalSpec{Member: "Restore", Decode: itemOnly[WindowRestore]},
	event.SignalSpec{Member: "Close", Decode: itemOnly[WindowClose]},
	event.SignalSpec{Member: "Create", Decode: itemOnly[WindowCreate]},
	event.SignalSpec{Member: "Reparent", Decode: itemOnly[WindowReparent]},
	event.SignalSpec{Member: "DesktopCreate", Decode: itemOnly[WindowDesktopCreate]},
	event.SignalSpec{Member: "DesktopDestroy", Decode: itemOnly[WindowDesktopDestroy]},
	event.SignalSpec{Member: "Destroy", Decode: itemOnly[WindowDestroy]},
	event.SignalSpec{Member: "Activate", Decode: itemOnly[WindowActivate]},
	event.SignalSpec{Member: "Deactivate", Decode: itemOnly[WindowDeactivate]},
	event.SignalSpec{Member: "Raise", Decode: itemOnly[WindowRaise]},
	event.SignalSpec{Member: "Lower", Decode: itemOnly[WindowLower]},
	event.SignalSpec{Member: "Move", Decode: itemOnly[WindowMove]},
	event.SignalSpec{Member: "Resize", Decode: itemOnly[WindowResize]},
	event.SignalSpec{Member: "Shade", Decode: itemOnly[WindowShade]},
	event.SignalSpec{Member: "uUshade", Decode: itemOnly[WindowUnshade]},
	event.SignalSpec{Member: "Restyle", Decode: itemOnly[WindowRestyle]},
)

func windowSignal(member string) *event.Signal { return WindowGroup.Signal(member) }

// WindowPropertyChange reports a change to a window property named by
// Property.
type WindowPropertyChange struct {
	Item     event.Accessible
	Property string
}

func decodeWindowPropertyChange(item event.Accessible, body event.Body) (event.Event, error) {
	return WindowPropertyChange{Item: item, Property: body.Kind}, nil
}

func (e WindowPropertyChange) Source() event.Accessible { return e.Item }
func (WindowPropertyChange) Signal() *event.Signal      { return windowSignal("PropertyChange") }
func (WindowPropertyChange) isWindowEvent()             {}

func (e WindowPropertyChange) Body() event.Body {
	b := event.NewBody()
	b.Kind = e.Property
	return b
}

// Item-only Window events.

// WindowMinimize reports that the window was minimized.
type WindowMinimize struct{ Item event.Accessible }

func (e WindowMinimize) Source() event.Accessible { return e.Item }
func (WindowMinimize) Signal() *event.Signal      { return windowSignal("Minimize") }
func (WindowMinimize) Body() event.Body           { return emptyBody() }
func (WindowMinimize) isWindowEvent()             {}

// WindowMaximize reports that the window was maximized.
type WindowMaximize struct{ Item event.Accessible }

func (e WindowMaximize) Source() event.Accessible { return e.Item }
func (WindowMaximize) Signal() *event.Signal      { return windowSignal("Maximize") }
func (WindowMaximize) Body() event.Body           { return emptyBody() }
func (WindowMaximize) isWindowEvent()             {}

// WindowRestore reports that the window was restored from a minimized or maximized state.
type WindowRestore struct{ Item event.Accessible }

func (e WindowRestore) Source() event.Accessible { return e.Item }
func (WindowRestore) Signal() *event.Signal      { return windowSignal("Restore") }
func (WindowRestore) Body() event.Body           { return emptyBody() }
func (WindowRestore) isWindowEvent()             {}

// WindowClose reports that the window was closed.
type WindowClose struct{ Item event.Accessible }

func (e WindowClose) Source() event.Accessible { return e.Item }
func (WindowClose) Signal() *event.Signal      { return windowSignal("Close") }
func (WindowClose) Body() event.Body           { return emptyBody() }
func (WindowClose) isWindowEvent()             {}

// WindowCreate reports that the window was created.
type WindowCreate struct{ Item event.Accessible }

func (e WindowCreate) Source() event.Accessible { return e.Item }
func (WindowCreate) Signal() *event.Signal      { return windowSignal("Create") }
func (WindowCreate) Body() event.Body           { return emptyBody() }
func (WindowCreate) isWindowEvent()             {}

// WindowReparent reports that the window was reparented.
type WindowReparent struct{ Item event.Accessible }

func (e WindowReparent) Source() event.Accessible { return e.Item }
func (WindowReparent) Signal() *event.Signal      { return windowSignal("Reparent") }
func (WindowReparent) Body() event.Body           { return emptyBody() }
func (WindowReparent) isWindowEvent()             {}

// WindowDesktopCreate reports that a desktop was created.
type WindowDesktopCreate struct{ Item event.Accessible }

func (e WindowDesktopCreate) Source() event.Accessible { return e.Item }
func (WindowDesktopCreate) Signal() *event.Signal      { return windowSignal("DesktopCreate") }
func (WindowDesktopCreate) Body() event.Body           { return emptyBody() }
func (WindowDesktopCreate) isWindowEvent()             {}

// WindowDesktopDestroy reports that a desktop was destroyed.
type WindowDesktopDestroy struct{ Item event.Accessible }

func (e WindowDesktopDestroy) Source() event.Accessible { return e.Item }
func (WindowDesktopDestroy) Signal() *event.Signal      { return windowSignal("DesktopDestroy") }
func (WindowDesktopDestroy) Body() event.Body           { return emptyBody() }
func (WindowDesktopDestroy) isWindowEvent()             {}

// WindowDestroy reports that the window was destroyed.
type WindowDestroy struct{ Item event.Accessible }

func (e WindowDestroy) Source() event.Accessible { return e.Item }
func (WindowDestroy) Signal() *event.Signal      { return windowSignal("Destroy") }
func (WindowDestroy) Body() event.Body           { return emptyBody() }
func (WindowDestroy) isWindowEvent()             {}

// WindowActivate reports that the window became active.
type WindowActivate struct{ Item event.Accessible }

func (e WindowActivate) Source() event.Accessible { return e.Item }
func (WindowActivate) Signal() *event.Signal      { return windowSignal("Activate") }
func (WindowActivate) Body() event.Body           { return emptyBody() }
func (WindowActivate) isWindowEvent()             {}

// WindowDeactivate reports that the window lost activation.
type WindowDeactivate struct{ Item event.Accessible }

func (e WindowDeactivate) Source() event.Accessible { return e.Item }
func (WindowDeactivate) Signal() *event.Signal      { return windowSignal("Deactivate") }
func (WindowDeactivate) Body() event.Body           { return emptyBody() }
func (WindowDeactivate) isWindowEvent()             {}

// WindowRaise reports that the window was raised.
type WindowRaise struct{ Item event.Accessible }

func (e WindowRaise) Source() event.Accessible { return e.Item }
func (WindowRaise) Signal() *event.Signal      { return windowSignal("Raise") }
func (WindowRaise) Body() event.Body           { return emptyBody() }
func (WindowRaise) isWindowEvent()             {}

// WindowLower reports that the window was lowered.
type WindowLower struct{ Item event.Accessible }

func (e WindowLower) Source() event.Accessible { return e.Item }
func (WindowLower) Signal() *event.Signal      { return windowSignal("Lower") }
func (WindowLower) Body() event.Body           { return emptyBody() }
func (WindowLower) isWindowEvent()             {}

// WindowMove reports that the window moved.
type WindowMove struct{ Item event.Accessible }

func (e WindowMove) Source() event.Accessible { return e.Item }
func (WindowMove) Signal() *event.Signal      { return windowSignal("Move") }
func (WindowMove) Body() event.Body           { return emptyBody() }
func (WindowMove) isWindowEvent()             {}

// WindowResize reports that the window was resized.
type WindowResize struct{ Item event.Accessible }

func (e WindowResize) Source() event.Accessible { return e.Item }
func (WindowResize) Signal() *event.Signal      { return windowSignal("Resize") }
func (WindowResize) Body() event.Body           { return emptyBody() }
func (WindowResize) isWindowEvent()             {}

// WindowShade reports that the window was shaded.
type WindowShade struct{ Item event.Accessible }

func (e WindowShade) Source() event.Accessible { return e.Item }
func (WindowShade) Signal() *event.Signal      { return windowSignal("Shade") }
func (WindowShade) Body() event.Body           { return emptyBody() }
func (WindowShade) isWindowEvent()             {}

// WindowUnshade reports that the window was unshaded. The wire member is spelled "uUshade".
type WindowUnshade struct{ Item event.Accessible }

func (e WindowUnshade) Source() event.Accessible { return e.Item }
func (WindowUnshade) Signal() *event.Signal      { return windowSignal("uUshade") }
func (WindowUnshade) Body() event.Body           { return emptyBody() }
func (WindowUnshade) isWindowEvent()             {}

// WindowRestyle reports that the window's style changed.
type WindowRestyle struct{ Item event.Accessible }

func (e WindowRestyle) Source() event.Accessible { return e.Item }
func (WindowRestyle) Signal() *event.Signal      { return windowSignal("Restyle") }
func (WindowRestyle) Body() event.Body           { return emptyBody() }
func (WindowRestyle) isWindowEvent()             {}
