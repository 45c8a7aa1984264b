package event

// Body is the untyped payload shared by every accessibility event signal.
// Field meaning is defined per variant.
type Body struct {
	// Kind is a discriminator or operation tag (e.g., "add", "focused",
	// "accessible-name").
	Kind string `json:"kind"`

	// Detail1 and Detail2 are numeric parameters.
	Detail1 int32 `json:"detail1"`
	Detail2 int32 `json:"detail2"`

	// AnyData is the variant's primary payload.
	AnyData Value `json:"any_data"`

	// Properties carries auxiliary annotations. No variant reads it and
	// encoders emit it empty; it is kept so bodies pass through intact.
	Properties map[string]Value `json:"properties"`
}

// NewBody returns the body encoders start from: empty kind, zero details,
// a zero byte placeholder in AnyData and an empty property map.
func NewBody() Body {
	return Body{
		AnyData:    Byte(0),
		Properties: map[string]Value{},
	}
}

// Equal reports whether two bodies carry the same fields. A nil property map
// equals an empty one.
func (b Body) Equal(other Body) bool {
	if b.Kind != other.Kind || b.Detail1 != other.Detail1 || b.Detail2 != other.Detail2 {
		return false
	}
	if !b.AnyData.Equal(other.AnyData) {
		return false
	}
	if len(b.Properties) != len(other.Properties) {
		return false
	}
	for k, v := range b.Properties {
		ov, ok := other.Properties[k]
		if !ok || !v.Equal(ov) {
			return false
		}
	}
	return true
}

// Message is the transport-neutral form of a signal, used for both incoming
// and outgoing traffic.
type Message struct {
	// Interface is the D-Bus interface (e.g., "org.a11y.atspi.Event.Object").
	Interface string `json:"interface"`

	// Member is the signal name. Empty means the message carried none.
	Member string `json:"member,omitempty"`

	// Sender is the unique bus name of the emitting application.
	Sender string `json:"sender"`

	// Path is the object path of the emitting object.
	Path string `json:"path"`

	// Body is the signal payload.
	Body Body `json:"body"`
}

// Item returns the accessible reference carried by the message header.
func (m Message) Item() Accessible {
	return Accessible{Name: m.Sender, Path: m.Path}
}

// HasMember reports whether the message names a member.
func (m Message) HasMember() bool {
	return m.Member != ""
}
