package events

import (
	"fmt"

	"github.com/dshills/a11ybus/internal/event"
)

// PropertyKind identifies which property a Property value holds.
type PropertyKind uint8

// Property kinds. PropertyOther covers every key outside the known table.
const (
	PropertyOther PropertyKind = iota
	PropertyName
	PropertyDescription
	PropertyRole
	PropertyParent
	PropertyTableCaption
	PropertyTableColumnDescription
	PropertyTableColumnHeader
	PropertyTableRowDescription
	PropertyTableRowHeader
	PropertyTableSummary
)

// Wire keys of the known properties.
const (
	KeyName                   = "accessible-name"
	KeyDescription            = "accessible-description"
	KeyRole                   = "accessible-role"
	KeyParent                 = "accessible-parent"
	KeyTableCaption           = "accessible-table-caption"
	KeyTableColumnDescription = "table-column-description"
	KeyTableColumnHeader      = "table-column-header"
	KeyTableRowDescription    = "table-row-description"
	KeyTableRowHeader         = "table-row-header"
	KeyTableSummary           = "table-summary"
)

var propertyKeys = [...]string{
	PropertyOther:                  "",
	PropertyName:                   KeyName,
	PropertyDescription:            KeyDescription,
	PropertyRole:                   KeyRole,
	PropertyParent:                 KeyParent,
	PropertyTableCaption:           KeyTableCaption,
	PropertyTableColumnDescription: KeyTableColumnDescription,
	PropertyTableColumnHeader:      KeyTableColumnHeader,
	PropertyTableRowDescription:    KeyTableRowDescription,
	PropertyTableRowHeader:         KeyTableRowHeader,
	PropertyTableSummary:           KeyTableSummary,
}

var propertyKinds = func() map[string]PropertyKind {
	m := make(map[string]PropertyKind, len(propertyKeys))
	for k, key := range propertyKeys {
		if key != "" {
			m[key] = PropertyKind(k)
		}
	}
	return m
}()

// Key returns the wire key of a known kind, or "" for PropertyOther.
func (k PropertyKind) Key() string {
	if int(k) >= len(propertyKeys) {
		return ""
	}
	return propertyKeys[k]
}

// String returns the wire key, or "other".
func (k PropertyKind) String() string {
	if key := k.Key(); key != "" {
		return key
	}
	return "other"
}

// isText reports whether the kind carries a string payload.
func (k PropertyKind) isText() bool {
	switch k {
	case PropertyName, PropertyDescription, PropertyTableCaption,
		PropertyTableColumnDescription, PropertyTableColumnHeader,
		PropertyTableRowDescription, PropertyTableRowHeader, PropertyTableSummary:
		return true
	}
	return false
}

// Property is the new value carried by an Object PropertyChange event.
// The zero Property is an Other with an empty key and an invalid value.
type Property struct {
	kind   PropertyKind
	key    string
	text   string
	role   Role
	parent event.Accessible
	raw    event.Value
}

// NameProperty returns an accessible-name property.
func NameProperty(name string) Property { return textProperty(PropertyName, name) }

// DescriptionProperty returns an accessible-description property.
func DescriptionProperty(desc string) Property { return textProperty(PropertyDescription, desc) }

// RoleProperty returns an accessible-role property.
func RoleProperty(r Role) Property { return Property{kind: PropertyRole, role: r} }

// ParentProperty returns an accessible-parent property.
func ParentProperty(parent event.Accessible) Property {
	return Property{kind: PropertyParent, parent: parent}
}

// TableCaptionProperty returns an accessible-table-caption property.
func TableCaptionProperty(s string) Property { return textProperty(PropertyTableCaption, s) }

// TableColumnDescriptionProperty returns a table-column-description property.
func TableColumnDescriptionProperty(s string) Property {
	return textProperty(PropertyTableColumnDescription, s)
}

// TableColumnHeaderProperty returns a table-column-header property.
func TableColumnHeaderProperty(s string) Property {
	return textProperty(PropertyTableColumnHeader, s)
}

// TableRowDescriptionProperty returns a table-row-description property.
func TableRowDescriptionProperty(s string) Property {
	return textProperty(PropertyTableRowDescription, s)
}

// TableRowHeaderProperty returns a table-row-header property.
func TableRowHeaderProperty(s string) Property { return textProperty(PropertyTableRowHeader, s) }

// TableSummaryProperty returns a table-summary property.
func TableSummaryProperty(s string) Property { return textProperty(PropertyTableSummary, s) }

// OtherProperty returns a property outside the known table. The raw value
// is kept unconverted.
func OtherProperty(key string, raw event.Value) Property {
	return Property{kind: PropertyOther, key: key, raw: raw}
}

func textProperty(kind PropertyKind, s string) Property {
	return Property{kind: kind, text: s}
}

// DecodeProperty selects a property by body.Kind and converts body.AnyData
// to that property's payload type. Unknown keys never fail; they produce an
// Other property. A known key with the wrong payload shape, or a role code
// outside the enumeration, returns a *event.PropertyError.
func DecodeProperty(body event.Body) (Property, error) {
	key := body.Kind
	kind, known := propertyKinds[key]
	if !known {
		return OtherProperty(key, body.AnyData), nil
	}

	switch {
	case kind.isText():
		s, ok := body.AnyData.AsString()
		if !ok {
			return Property{}, payloadMismatch(key, "string", body.AnyData)
		}
		return textProperty(kind, s), nil

	case kind == PropertyRole:
		code, ok := body.AnyData.AsUint32()
		if !ok {
			return Property{}, payloadMismatch(key, "uint32", body.AnyData)
		}
		r, err := RoleFromCode(code)
		if err != nil {
			return Property{}, &event.PropertyError{Key: key, Reason: err.Error()}
		}
		return RoleProperty(r), nil

	case kind == PropertyParent:
		parent, ok := body.AnyData.AsAccessible()
		if !ok {
			return Property{}, payloadMismatch(key, "accessible", body.AnyData)
		}
		return ParentProperty(parent), nil
	}

	return OtherProperty(key, body.AnyData), nil
}

func payloadMismatch(key, want string, got event.Value) error {
	return &event.PropertyError{
		Key:    key,
		Reason: fmt.Sprintf("expected %s, got %s", want, got.Kind()),
	}
}

// Kind returns which property p holds.
func (p Property) Kind() PropertyKind { return p.kind }

// Key returns the wire key: the table key for known kinds, the stored key
// for Other.
func (p Property) Key() string {
	if p.kind == PropertyOther {
		return p.key
	}
	return p.kind.Key()
}

// Text returns the string payload of a text-valued property.
func (p Property) Text() (string, bool) {
	if !p.kind.isText() {
		return "", false
	}
	return p.text, true
}

// Role returns the payload of an accessible-role property.
func (p Property) Role() (Role, bool) {
	if p.kind != PropertyRole {
		return RoleInvalid, false
	}
	return p.role, true
}

// Parent returns the payload of an accessible-parent property.
func (p Property) Parent() (event.Accessible, bool) {
	if p.kind != PropertyParent {
		return event.Accessible{}, false
	}
	return p.parent, true
}

// Raw returns the unconverted value of an Other property.
func (p Property) Raw() (event.Value, bool) {
	if p.kind != PropertyOther {
		return event.Value{}, false
	}
	return p.raw, true
}

// Encode projects the property back to its wire value. Other re-emits its
// raw value; the key travels separately as the body kind.
func (p Property) Encode() event.Value {
	switch {
	case p.kind.isText():
		return event.String(p.text)
	case p.kind == PropertyRole:
		return event.Uint32(p.role.Code())
	case p.kind == PropertyParent:
		return p.parent.Value()
	}
	return p.raw
}

// Equal reports whether two properties hold the same kind and payload.
func (p Property) Equal(other Property) bool {
	if p.kind != other.kind {
		return false
	}
	switch {
	case p.kind.isText():
		return p.text == other.text
	case p.kind == PropertyRole:
		return p.role == other.role
	case p.kind == PropertyParent:
		return p.parent == other.parent
	}
	return p.key == other.key && p.raw.Equal(other.raw)
}

// String returns a short description, e.g. "accessible-role(menu bar)".
func (p Property) String() string {
	switch {
	case p.kind.isText():
		return fmt.Sprintf("%s(%q)", p.kind, p.text)
	case p.kind == PropertyRole:
		return fmt.Sprintf("%s(%s)", p.kind, p.role)
	case p.kind == PropertyParent:
		return fmt.Sprintf("%s(%s)", p.kind, p.parent)
	}
	return fmt.Sprintf("other(%q, %s)", p.key, p.raw)
}
