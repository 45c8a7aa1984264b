package events

import "github.com/dshills/a11ybus/internal/event"

// itemOnlyRecord is the shape shared by every variant without fields.
type itemOnlyRecord = struct{ Item event.Accessible }

// itemOnly decodes any variant whose only field is its item. The body is
// ignored.
func itemOnly[E interface {
	~struct{ Item event.Accessible }
	event.Event
}](item event.Accessible, _ event.Body) (event.Event, error) {
	return E(itemOnlyRecord{Item: item}), nil
}

// anyString projects body.AnyData for a string field.
func anyString(iface, member, field string, body event.Body) (string, error) {
	s, ok := body.AnyData.AsString()
	if !ok {
		return "", &event.ShapeError{
			Interface: iface,
			Member:    member,
			Field:     field,
			Want:      event.KindString.String(),
			Got:       body.AnyData.Kind(),
		}
	}
	return s, nil
}

// anyAccessible projects body.AnyData for an accessible reference field.
func anyAccessible(iface, member, field string, body event.Body) (event.Accessible, error) {
	a, ok := body.AnyData.AsAccessible()
	if !ok {
		return event.Accessible{}, &event.ShapeError{
			Interface: iface,
			Member:    member,
			Field:     field,
			Want:      "accessible",
			Got:       body.AnyData.Kind(),
		}
	}
	return a, nil
}

// emptyBody is the encoding of a variant with no payload fields.
func emptyBody() event.Body { return event.NewBody() }

// Groups returns every event group in a stable order.
func Groups() []*event.Group {
	return []*event.Group{
		ObjectGroup,
		WindowGroup,
		DocumentGroup,
		FocusGroup,
		MouseGroup,
		KeyboardGroup,
		TerminalGroup,
	}
}
