package atspibus

import (
	"errors"
	"fmt"
	"strings"

	"github.com/godbus/dbus/v5"

	"github.com/dshills/a11ybus/internal/event"
)

// Errors returned when a signal does not carry an event body.
var (
	ErrSignalName    = errors.New("signal name has no interface")
	ErrBodySignature = errors.New("unexpected event body signature")
)

// BodySignature is the D-Bus signature of an event body.
const BodySignature = "siiva{sv}"

// BodyError describes the argument that broke the body signature.
type BodyError struct {
	Index int
	Want  string
	Got   any
}

func (e *BodyError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("event body: want %s, got %d arguments", BodySignature, e.Got)
	}
	return fmt.Sprintf("event body argument %d: want %s, got %T", e.Index, e.Want, e.Got)
}

func (e *BodyError) Is(target error) bool { return target == ErrBodySignature }

// MessageFromSignal converts a received signal.
func MessageFromSignal(sig *dbus.Signal) (event.Message, error) {
	i := strings.LastIndexByte(sig.Name, '.')
	if i <= 0 {
		return event.Message{}, fmt.Errorf("%w: %q", ErrSignalName, sig.Name)
	}

	body, err := BodyFromArgs(sig.Body)
	if err != nil {
		return event.Message{}, fmt.Errorf("%s: %w", sig.Name, err)
	}

	return event.Message{
		Interface: sig.Name[:i],
		Member:    sig.Name[i+1:],
		Sender:    sig.Sender,
		Path:      string(sig.Path),
		Body:      body,
	}, nil
}

// BodyFromArgs decodes the (siiva{sv}) arguments of an event signal. The
// trailing properties dictionary is optional.
func BodyFromArgs(args []any) (event.Body, error) {
	if len(args) != 4 && len(args) != 5 {
		return event.Body{}, &BodyError{Index: -1, Got: len(args)}
	}

	body := event.NewBody()

	kind, ok := args[0].(string)
	if !ok {
		return event.Body{}, &BodyError{Index: 0, Want: "string", Got: args[0]}
	}
	body.Kind = kind

	if body.Detail1, ok = args[1].(int32); !ok {
		return event.Body{}, &BodyError{Index: 1, Want: "int32", Got: args[1]}
	}
	if body.Detail2, ok = args[2].(int32); !ok {
		return event.Body{}, &BodyError{Index: 2, Want: "int32", Got: args[2]}
	}

	variant, ok := args[3].(dbus.Variant)
	if !ok {
		return event.Body{}, &BodyError{Index: 3, Want: "variant", Got: args[3]}
	}
	anyData, err := ValueFromGo(variant)
	if err != nil {
		return event.Body{}, fmt.Errorf("any_data: %w", err)
	}
	body.AnyData = anyData

	if len(args) == 5 {
		props, ok := args[4].(map[string]dbus.Variant)
		if !ok {
			return event.Body{}, &BodyError{Index: 4, Want: "a{sv}", Got: args[4]}
		}
		dict, err := dictFromGo(props)
		if err != nil {
			return event.Body{}, fmt.Errorf("properties: %w", err)
		}
		body.Properties, _ = dict.AsDict()
	}

	return body, nil
}

// ArgsFromBody returns the signal arguments for a body, always including
// the properties dictionary.
func ArgsFromBody(b event.Body) ([]any, error) {
	anyData := b.AnyData
	if !anyData.IsValid() {
		anyData = event.Byte(0)
	}
	x, err := ToGo(anyData)
	if err != nil {
		return nil, fmt.Errorf("any_data: %w", err)
	}
	props, err := DictToGo(b.Properties)
	if err != nil {
		return nil, fmt.Errorf("properties: %w", err)
	}
	return []any{b.Kind, b.Detail1, b.Detail2, dbus.MakeVariant(x), props}, nil
}

// SignalName joins a message's interface and member.
func SignalName(msg event.Message) string {
	return msg.Interface + "." + msg.Member
}
