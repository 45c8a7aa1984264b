package events

import "github.com/dshills/a11ybus/internal/event"

// Terminal interface identity.
const (
	TerminalInterface = "org.a11y.atspi.Event.Terminal"
	TerminalTag       = "Terminal:"
)

// TerminalEvent is any event of the Terminal interface.
type TerminalEvent interface {
	event.Event
	isTerminalEvent()
}

// TerminalGroup is the member table of the Terminal interface.
var TerminalGroup = event.NewGroup("Terminal", TerminalInterface, TerminalTag,
	event.SignalSpec{Member: "LineChanged", Decode: itemOnly[TerminalLineChanged]},
	event.SignalSpec{Member: "ColumnCountChanged", Decode: itemOnly[TerminalColumnCountChanged]},
	event.SignalSpec{Member: "LineCountChanged", Decode: itemOnly[TerminalLineCountChanged]},
	event.SignalSpec{Member: "ApplicationChanged", Decode: itemOnly[TerminalApplicationChanged]},
	event.SignalSpec{Member: "CharWidthChanged", Decode: itemOnly[TerminalCharWidthChanged]},
)

func terminalSignal(member string) *event.Signal { return TerminalGroup.Signal(member) }

// TerminalLineChanged reports that a terminal line changed.
type TerminalLineChanged struct{ Item event.Accessible }

func (e TerminalLineChanged) Source() event.Accessible { return e.Item }
func (TerminalLineChanged) Signal() *event.Signal      { return terminalSignal("LineChanged") }
func (TerminalLineChanged) Body() event.Body           { return emptyBody() }
func (TerminalLineChanged) isTerminalEvent()           {}

// TerminalColumnCountChanged reports a change in the number of terminal columns.
type TerminalColumnCountChanged struct{ Item event.Accessible }

func (e TerminalColumnCountChanged) Source() event.Accessible { return e.Item }
func (TerminalColumnCountChanged) Signal() *event.Signal      { return terminalSignal("ColumnCountChanged") }
func (TerminalColumnCountChanged) Body() event.Body           { return emptyBody() }
func (TerminalColumnCountChanged) isTerminalEvent()           {}

// TerminalLineCountChanged reports a change in the number of terminal lines.
type TerminalLineCountChanged struct{ Item event.Accessible }

func (e TerminalLineCountChanged) Source() event.Accessible { return e.Item }
func (TerminalLineCountChanged) Signal() *event.Signal      { return terminalSignal("LineCountChanged") }
func (TerminalLineCountChanged) Body() event.Body           { return emptyBody() }
func (TerminalLineCountChanged) isTerminalEvent()           {}

// TerminalApplicationChanged reports that the application running in the terminal changed.
type TerminalApplicationChanged struct{ Item event.Accessible }

func (e TerminalApplicationChanged) Source() event.Accessible { return e.Item }
func (TerminalApplicationChanged) Signal() *event.Signal      { return terminalSignal("ApplicationChanged") }
func (TerminalApplicationChanged) Body() event.Body           { return emptyBody() }
func (TerminalApplicationChanged) isTerminalEvent()           {}

// TerminalCharWidthChanged reports a change in the terminal's character width.
type TerminalCharWidthChanged struct{ Item event.Accessible }

func (e TerminalCharWidthChanged) Source() event.Accessible { return e.Item }
func (TerminalCharWidthChanged) Signal() *event.Signal      { return terminalSignal("CharWidthChanged") }
func (TerminalCharWidthChanged) Body() event.Body           { return emptyBody() }
func (TerminalCharWidthChanged) isTerminalEvent()           {}
