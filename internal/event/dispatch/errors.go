package dispatch

import (
	"errors"
	"fmt"
)

// Sentinel errors for the dispatch package.
var (
	// ErrUnknownInterface is matched by errors for messages whose interface
	// has no registered group.
	ErrUnknownInterface = errors.New("unknown interface")

	// ErrMissingMember is returned for messages without a member name.
	ErrMissingMember = errors.New("message has no member")

	// ErrUnknownMember is matched by errors for members the group does not
	// declare.
	ErrUnknownMember = errors.New("unknown member")

	// ErrDuplicateGroup is returned by New when two groups share an
	// interface or registry tag.
	ErrDuplicateGroup = errors.New("duplicate group")
)

// UnknownInterfaceError reports a message for an unregistered interface.
type UnknownInterfaceError struct {
	Interface string
}

// Error implements the error interface.
func (e *UnknownInterfaceError) Error() string {
	return fmt.Sprintf("%s: %q", ErrUnknownInterface, e.Interface)
}

// Is allows errors.Is to match UnknownInterfaceError with ErrUnknownInterface.
func (e *UnknownInterfaceError) Is(target error) bool {
	return target == ErrUnknownInterface
}

// UnknownMemberError reports a member outside its group's table.
type UnknownMemberError struct {
	Interface string
	Member    string
}

// Error implements the error interface.
func (e *UnknownMemberError) Error() string {
	return fmt.Sprintf("%s %q on %s", ErrUnknownMember, e.Member, e.Interface)
}

// Is allows errors.Is to match UnknownMemberError with ErrUnknownMember.
func (e *UnknownMemberError) Is(target error) bool {
	return target == ErrUnknownMember
}

// DecodeError wraps a variant decoder failure with the signal it came from.
type DecodeError struct {
	// Signal is "interface.member".
	Signal string
	Err    error
}

// Error implements the error interface.
func (e *DecodeError) Error() string {
	return "decode " + e.Signal + ": " + e.Err.Error()
}

// Unwrap returns the decoder error.
func (e *DecodeError) Unwrap() error {
	return e.Err
}
