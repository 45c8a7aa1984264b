package events

import (
	"github.com/cespare/xxhash/v2"

	"github.com/dshills/a11ybus/internal/event"
)

// Object interface identity.
const (
	ObjectInterface = "org.a11y.atspi.Event.Object"
	ObjectTag       = "Object:"
)

// ObjectEvent is any event of the Object interface.
type ObjectEvent interface {
	event.Event
	isObjectEvent()
}

// ObjectGroup is the member table of the Object interface.
var ObjectGroup = event.NewGroup("Object", ObjectInterface, ObjectTag,
	event.SignalSpec{Member: "PropertyChange", Decode: decodeObjectPropertyChange},
	event.SignalSpec{Member: "BoundsChanged", Decode: itemOnly[BoundsChanged]},
	event.SignalSpec{Member: "LinkSelected", Decode: itemOnly[LinkSelected]},
	event.SignalSpec{Member: "StateChanged", Decode: decodeStateChanged},
	event.SignalSpec{Member: "ChildrenChanged", Decode: decodeChildrenChanged},
	event.SignalSpec{Member: "VisibleDataChanged", Decode: itemOnly[VisibleDataChanged]},
	event.SignalSpec{Member: "SelectionChanged", Decode: itemOnly[SelectionChanged]},
	event.SignalSpec{Member: "ModelChanged", Decode: itemOnly[ModelChanged]},
	event.SignalSpec{Member: "ActiveDescendantChanged", Decode: decodeActiveDescendantChanged},
	event.SignalSpec{Member: "Announcement", Decode: decodeAnnouncement},
	event.SignalSpec{Member: "AttributesChanged", Decode: itemOnly[AttributesChanged]},
	event.SignalSpec{Member: "RowInserted", Decode: itemOnly[RowInserted]},
	event.SignalSpec{Member: "RowReordered", Decode: itemOnly[RowReordered]},
	event.SignalSpec{Member: "RowDeleted", Decode: itemOnly[RowDeleted]},
	event.SignalSpec{Member: "ColumnInserted", Decode: itemOnly[ColumnInserted]},
	event.SignalSpec{Member: "ColumnReordered", Decode: itemOnly[ColumnReordered]},
	event.SignalSpec{Member: "ColumnDeleted", Decode: itemOnly[ColumnDeleted]},
	event.SignalSpec{Member: "TextBoundsChanged", Decode: itemOnly[TextBoundsChanged]},
	event.SignalSpec{Member: "TextSelectionChanged", Decode: itemOnly[TextSelectionChanged]},
	event.SignalSpec{Member: "TextChanged", Decode: decodeTextChanged},
	event.SignalSpec{Member: "TextAttributesChanged", Decode: itemOnly[TextAttributesChanged]},
	event.SignalSpec{Member: "TextCaretMoved", Decode: decodeTextCaretMoved},
)

func objectSignal(member string) *event.Signal { return ObjectGroup.Signal(member) }

// ObjectPropertyChange reports a change to one of the object's properties.
//
// Property is the wire key and Value the decoded new value. Hashing covers
// only the item and Property, so two events with the same key and
// different values hash equal but compare unequal.
type ObjectPropertyChange struct {
	Item     event.Accessible
	Property string
	Value    Property
}

func decodeObjectPropertyChange(item event.Accessible, body event.Body) (event.Event, error) {
	value, err := DecodeProperty(body)
	if err != nil {
		return nil, err
	}
	return ObjectPropertyChange{Item: item, Property: body.Kind, Value: value}, nil
}

func (e ObjectPropertyChange) Source() event.Accessible { return e.Item }
func (ObjectPropertyChange) Signal() *event.Signal      { return objectSignal("PropertyChange") }
func (ObjectPropertyChange) isObjectEvent()             {}

func (e ObjectPropertyChange) Body() event.Body {
	b := event.NewBody()
	b.Kind = e.Property
	b.AnyData = e.Value.Encode()
	return b
}

// Equal compares every field, including the property value.
func (e ObjectPropertyChange) Equal(other event.Event) bool {
	o, ok := other.(ObjectPropertyChange)
	return ok && e.Item == o.Item && e.Property == o.Property && e.Value.Equal(o.Value)
}

// HashFields hashes the property name only.
func (e ObjectPropertyChange) HashFields(d *xxhash.Digest) {
	_, _ = d.WriteString(e.Property)
}

// StateChanged reports a state being set or cleared. Enabled is 1 when the
// state was set and 0 when it was cleared.
type StateChanged struct {
	Item    event.Accessible
	State   State
	Enabled int32
}

func decodeStateChanged(item event.Accessible, body event.Body) (event.Event, error) {
	return StateChanged{Item: item, State: ParseState(body.Kind), Enabled: body.Detail1}, nil
}

func (e StateChanged) Source() event.Accessible { return e.Item }
func (StateChanged) Signal() *event.Signal      { return objectSignal("StateChanged") }
func (StateChanged) isObjectEvent()             {}

func (e StateChanged) Body() event.Body {
	b := event.NewBody()
	b.Kind = e.State.String()
	b.Detail1 = e.Enabled
	return b
}

// ChildrenChanged reports a child being added to or removed from the
// object. Operation is "add" or "remove"; IndexInParent is the child's
// position.
type ChildrenChanged struct {
	Item          event.Accessible
	Operation     string
	IndexInParent int32
	Child         event.Accessible
}

func decodeChildrenChanged(item event.Accessible, body event.Body) (event.Event, error) {
	child, err := anyAccessible(ObjectInterface, "ChildrenChanged", "Child", body)
	if err != nil {
		return nil, err
	}
	return ChildrenChanged{
		Item:          item,
		Operation:     body.Kind,
		IndexInParent: body.Detail1,
		Child:         child,
	}, nil
}

func (e ChildrenChanged) Source() event.Accessible { return e.Item }
func (ChildrenChanged) Signal() *event.Signal      { return objectSignal("ChildrenChanged") }
func (ChildrenChanged) isObjectEvent()             {}

func (e ChildrenChanged) Body() event.Body {
	b := event.NewBody()
	b.Kind = e.Operation
	b.Detail1 = e.IndexInParent
	b.AnyData = e.Child.Value()
	return b
}

// ActiveDescendantChanged reports a new active descendant in a container
// that manages its descendants.
type ActiveDescendantChanged struct {
	Item  event.Accessible
	Child event.Accessible
}

func decodeActiveDescendantChanged(item event.Accessible, body event.Body) (event.Event, error) {
	child, err := anyAccessible(ObjectInterface, "ActiveDescendantChanged", "Child", body)
	if err != nil {
		return nil, err
	}
	return ActiveDescendantChanged{Item: item, Child: child}, nil
}

func (e ActiveDescendantChanged) Source() event.Accessible { return e.Item }
func (ActiveDescendantChanged) Signal() *event.Signal {
	return objectSignal("ActiveDescendantChanged")
}
func (ActiveDescendantChanged) isObjectEvent() {}

func (e ActiveDescendantChanged) Body() event.Body {
	b := event.NewBody()
	b.AnyData = e.Child.Value()
	return b
}

// Announcement asks assistive technology to present Text to the user.
type Announcement struct {
	Item event.Accessible
	Text string
}

func decodeAnnouncement(item event.Accessible, body event.Body) (event.Event, error) {
	return Announcement{Item: item, Text: body.Kind}, nil
}

func (e Announcement) Source() event.Accessible { return e.Item }
func (Announcement) Signal() *event.Signal      { return objectSignal("Announcement") }
func (Announcement) isObjectEvent()             {}

func (e Announcement) Body() event.Body {
	b := event.NewBody()
	b.Kind = e.Text
	return b
}

// TextChanged reports inserted or deleted text. Operation is "insert" or
// "delete", optionally with a "/system" suffix.
type TextChanged struct {
	Item      event.Accessible
	Operation string
	StartPos  int32
	Length    int32
	Text      string
}

func decodeTextChanged(item event.Accessible, body event.Body) (event.Event, error) {
	text, err := anyString(ObjectInterface, "TextChanged", "Text", body)
	if err != nil {
		return nil, err
	}
	return TextChanged{
		Item:      item,
		Operation: body.Kind,
		StartPos:  body.Detail1,
		Length:    body.Detail2,
		Text:      text,
	}, nil
}

func (e TextChanged) Source() event.Accessible { return e.Item }
func (TextChanged) Signal() *event.Signal      { return objectSignal("TextChanged") }
func (TextChanged) isObjectEvent()             {}

func (e TextChanged) Body() event.Body {
	b := event.NewBody()
	b.Kind = e.Operation
	b.Detail1 = e.StartPos
	b.Detail2 = e.Length
	b.AnyData = event.String(e.Text)
	return b
}

// TextCaretMoved reports the caret's new character offset.
type TextCaretMoved struct {
	Item     event.Accessible
	Position int32
}

func decodeTextCaretMoved(item event.Accessible, body event.Body) (event.Event, error) {
	return TextCaretMoved{Item: item, Position: body.Detail1}, nil
}

func (e TextCaretMoved) Source() event.Accessible { return e.Item }
func (TextCaretMoved) Signal() *event.Signal      { return objectSignal("TextCaretMoved") }
func (TextCaretMoved) isObjectEvent()             {}

func (e TextCaretMoved) Body() event.Body {
	b := event.NewBody()
	b.Detail1 = e.Position
	return b
}

// Item-only Object events.

// BoundsChanged reports that the object's extents changed.
type BoundsChanged struct{ Item event.Accessible }

func (e BoundsChanged) Source() event.Accessible { return e.Item }
func (BoundsChanged) Signal() *event.Signal      { return objectSignal("BoundsChanged") }
func (BoundsChanged) Body() event.Body           { return emptyBody() }
func (BoundsChanged) isObjectEvent()             {}

// LinkSelected reports that a hyperlink in the object was activated.
type LinkSelected struct{ Item event.Accessible }

func (e LinkSelected) Source() event.Accessible { return e.Item }
func (LinkSelected) Signal() *event.Signal      { return objectSignal("LinkSelected") }
func (LinkSelected) Body() event.Body           { return emptyBody() }
func (LinkSelected) isObjectEvent()             {}

// VisibleDataChanged reports that the visible content of the object changed.
type VisibleDataChanged struct{ Item event.Accessible }

func (e VisibleDataChanged) Source() event.Accessible { return e.Item }
func (VisibleDataChanged) Signal() *event.Signal      { return objectSignal("VisibleDataChanged") }
func (VisibleDataChanged) Body() event.Body           { return emptyBody() }
func (VisibleDataChanged) isObjectEvent()             {}

// SelectionChanged reports that the object's selected children changed.
type SelectionChanged struct{ Item event.Accessible }

func (e SelectionChanged) Source() event.Accessible { return e.Item }
func (SelectionChanged) Signal() *event.Signal      { return objectSignal("SelectionChanged") }
func (SelectionChanged) Body() event.Body           { return emptyBody() }
func (SelectionChanged) isObjectEvent()             {}

// ModelChanged reports that the object's underlying model was replaced.
type ModelChanged struct{ Item event.Accessible }

func (e ModelChanged) Source() event.Accessible { return e.Item }
func (ModelChanged) Signal() *event.Signal      { return objectSignal("ModelChanged") }
func (ModelChanged) Body() event.Body           { return emptyBody() }
func (ModelChanged) isObjectEvent()             {}

// AttributesChanged reports that the object's attributes changed.
type AttributesChanged struct{ Item event.Accessible }

func (e AttributesChanged) Source() event.Accessible { return e.Item }
func (AttributesChanged) Signal() *event.Signal      { return objectSignal("AttributesChanged") }
func (AttributesChanged) Body() event.Body           { return emptyBody() }
func (AttributesChanged) isObjectEvent()             {}

// RowInserted reports that a table row was inserted.
type RowInserted struct{ Item event.Accessible }

func (e RowInserted) Source() event.Accessible { return e.Item }
func (RowInserted) Signal() *event.Signal      { return objectSignal("RowInserted") }
func (RowInserted) Body() event.Body           { return emptyBody() }
func (RowInserted) isObjectEvent()             {}

// RowReordered reports that table rows were reordered.
type RowReordered struct{ Item event.Accessible }

func (e RowReordered) Source() event.Accessible { return e.Item }
func (RowReordered) Signal() *event.Signal      { return objectSignal("RowReordered") }
func (RowReordered) Body() event.Body           { return emptyBody() }
func (RowReordered) isObjectEvent()             {}

// RowDeleted reports that a table row was deleted.
type RowDeleted struct{ Item event.Accessible }

func (e RowDeleted) Source() event.Accessible { return e.Item }
func (RowDeleted) Signal() *event.Signal      { return objectSignal("RowDeleted") }
func (RowDeleted) Body() event.Body           { return emptyBody() }
func (RowDeleted) isObjectEvent()             {}

// ColumnInserted reports that a table column was inserted.
type ColumnInserted struct{ Item event.Accessible }

func (e ColumnInserted) Source() event.Accessible { return e.Item }
func (ColumnInserted) Signal() *event.Signal      { return objectSignal("ColumnInserted") }
func (ColumnInserted) Body() event.Body           { return emptyBody() }
func (ColumnInserted) isObjectEvent()             {}

// ColumnReordered reports that table columns were reordered.
type ColumnReordered struct{ Item event.Accessible }

func (e ColumnReordered) Source() event.Accessible { return e.Item }
func (ColumnReordered) Signal() *event.Signal      { return objectSignal("ColumnReordered") }
func (ColumnReordered) Body() event.Body           { return emptyBody() }
func (ColumnReordered) isObjectEvent()             {}

// ColumnDeleted reports that a table column was deleted.
type ColumnDeleted struct{ Item event.Accessible }

func (e ColumnDeleted) Source() event.Accessible { return e.Item }
func (ColumnDeleted) Signal() *event.Signal      { return objectSignal("ColumnDeleted") }
func (ColumnDeleted) Body() event.Body           { return emptyBody() }
func (ColumnDeleted) isObjectEvent()             {}

// TextBoundsChanged reports that the bounds of the object's text changed.
type TextBoundsChanged struct{ Item event.Accessible }

func (e TextBoundsChanged) Source() event.Accessible { return e.Item }
func (TextBoundsChanged) Signal() *event.Signal      { return objectSignal("TextBoundsChanged") }
func (TextBoundsChanged) Body() event.Body           { return emptyBody() }
func (TextBoundsChanged) isObjectEvent()             {}

// TextSelectionChanged reports that the text selection changed.
type TextSelectionChanged struct{ Item event.Accessible }

func (e TextSelectionChanged) Source() event.Accessible { return e.Item }
func (TextSelectionChanged) Signal() *event.Signal      { return objectSignal("TextSelectionChanged") }
func (TextSelectionChanged) Body() event.Body           { return emptyBody() }
func (TextSelectionChanged) isObjectEvent()             {}

// TextAttributesChanged reports that text attributes changed.
type TextAttributesChanged struct{ Item event.Accessible }

func (e TextAttributesChanged) Source() event.Accessible { return e.Item }
func (TextAttributesChanged) Signal() *event.Signal      { return objectSignal("TextAttributesChanged") }
func (TextAttributesChanged) Body() event.Body           { return emptyBody() }
func (TextAttributesChanged) isObjectEvent()             {}
