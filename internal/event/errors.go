package event

import (
	"errors"
	"fmt"
)

// Sentinel errors for decoding.
var (
	// ErrPayloadShape is matched by errors whose any_data value had the
	// wrong runtime shape for the variant's field.
	ErrPayloadShape = errors.New("payload shape mismatch")

	// ErrPropertyPayload is matched by errors whose property-change payload
	// did not fit the recognised property key.
	ErrPropertyPayload = errors.New("property payload mismatch")
)

// ShapeError reports a variant field that could not be projected from the
// body's any_data value.
type ShapeError struct {
	// Interface and Member identify the variant being decoded.
	Interface string
	Member    string

	// Field is the record field being populated.
	Field string

	// Want is the expected kind, Got the kind received.
	Want string
	Got  Kind
}

// Error implements the error interface.
func (e *ShapeError) Error() string {
	return fmt.Sprintf("decoding %s.%s field %s: expected %s, got %s",
		e.Interface, e.Member, e.Field, e.Want, e.Got)
}

// Is allows errors.Is to match ShapeError with ErrPayloadShape.
func (e *ShapeError) Is(target error) bool {
	return target == ErrPayloadShape
}

// PropertyError reports a recognised property key whose payload did not
// convert.
type PropertyError struct {
	// Key is the property name taken from the body kind.
	Key string

	// Reason is a short description of what did not fit.
	Reason string
}

// Error implements the error interface.
func (e *PropertyError) Error() string {
	if e.Reason == "" {
		return "property " + e.Key + ": " + ErrPropertyPayload.Error()
	}
	return "property " + e.Key + ": " + ErrPropertyPayload.Error() + ": " + e.Reason
}

// Is allows errors.Is to match PropertyError with ErrPropertyPayload.
func (e *PropertyError) Is(target error) bool {
	return target == ErrPropertyPayload
}
