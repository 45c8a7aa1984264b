// Package dispatch selects the decoder for an incoming bus message.
//
// Dispatch is two-tier: the message's interface selects an event group,
// then its member selects a signal within that group. Both lookups are
// exact and case-sensitive. The tables are built once and never mutated,
// so a Dispatcher is safe for unlimited concurrent use without locking.
//
// # Errors
//
// Decode fails predictably on input it cannot place:
//
//   - an interface with no group: *UnknownInterfaceError (ErrUnknownInterface)
//   - a message without a member: ErrMissingMember
//   - a member the group does not declare: *UnknownMemberError (ErrUnknownMember)
//
// Payload errors from the variant decoder (event.ErrPayloadShape,
// event.ErrPropertyPayload) are returned wrapped. Callers decide whether to
// drop, log or escalate; the dispatcher never retries.
//
// # Usage
//
//	ev, err := dispatch.Default().Decode(msg)
//	if err != nil {
//	    return err
//	}
//	switch ev := ev.(type) {
//	case events.StateChanged:
//	    // ...
//	}
//
// Encode is the inverse:
//
//	msg := dispatch.Encode(events.Focus{Item: item})
package dispatch
