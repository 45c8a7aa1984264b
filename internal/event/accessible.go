package event

import "github.com/cespare/xxhash/v2"

// Accessible identifies the object an event concerns: the unique bus name
// of the application that owns it and its object path. The core never
// interprets either part.
type Accessible struct {
	// Name is the sender's unique bus name (e.g., ":1.42").
	Name string `json:"name" yaml:"name"`

	// Path is the object path (e.g., "/org/a11y/atspi/accessible/12").
	Path string `json:"path" yaml:"path"`
}

// String returns "name:path".
func (a Accessible) String() string {
	return a.Name + ":" + a.Path
}

// IsZero reports whether both parts are empty.
func (a Accessible) IsZero() bool {
	return a == Accessible{}
}

// Value returns the (so) struct form used inside any_data.
func (a Accessible) Value() Value {
	return Struct(String(a.Name), ObjectPath(a.Path))
}

// HashTo writes a digest of a into d.
func (a Accessible) HashTo(d *xxhash.Digest) {
	hashString(d, a.Name)
	hashString(d, a.Path)
}
