package dispatch

import (
	"fmt"
	"strings"
	"sync"

	"github.com/dshills/a11ybus/internal/event"
	"github.com/dshills/a11ybus/internal/event/events"
)

// Dispatcher maps (interface, member) pairs to variant decoders.
// It is immutable after New returns.
type Dispatcher struct {
	groups  []*event.Group
	byIface map[string]*event.Group
	byTag   map[string]*event.Group
}

// New builds a dispatcher over groups. Interfaces and registry tags must
// be unique.
func New(groups ...*event.Group) (*Dispatcher, error) {
	d := &Dispatcher{
		groups:  make([]*event.Group, 0, len(groups)),
		byIface: make(map[string]*event.Group, len(groups)),
		byTag:   make(map[string]*event.Group, len(groups)),
	}

	for _, g := range groups {
		if _, dup := d.byIface[g.Interface()]; dup {
			return nil, fmt.Errorf("%w: interface %s", ErrDuplicateGroup, g.Interface())
		}
		if _, dup := d.byTag[g.RegistryTag()]; dup {
			return nil, fmt.Errorf("%w: registry tag %s", ErrDuplicateGroup, g.RegistryTag())
		}
		d.groups = append(d.groups, g)
		d.byIface[g.Interface()] = g
		d.byTag[g.RegistryTag()] = g
	}

	return d, nil
}

// Default returns the dispatcher over every AT-SPI event group. It is
// built on first use.
var Default = sync.OnceValue(func() *Dispatcher {
	d, err := New(events.Groups()...)
	if err != nil {
		panic(err)
	}
	return d
})

// Lookup resolves a message's interface and member to a signal.
func (d *Dispatcher) Lookup(iface, member string) (*event.Signal, error) {
	g, ok := d.byIface[iface]
	if !ok {
		return nil, &UnknownInterfaceError{Interface: iface}
	}
	if member == "" {
		return nil, ErrMissingMember
	}
	sig := g.Signal(member)
	if sig == nil {
		return nil, &UnknownMemberError{Interface: iface, Member: member}
	}
	return sig, nil
}

// Decode turns an incoming message into a typed event. The message's
// sender and path become the event's item.
func (d *Dispatcher) Decode(msg event.Message) (event.Event, error) {
	sig, err := d.Lookup(msg.Interface, msg.Member)
	if err != nil {
		return nil, err
	}

	ev, err := sig.Decode(msg.Item(), msg.Body)
	if err != nil {
		return nil, &DecodeError{Signal: sig.String(), Err: err}
	}
	return ev, nil
}

// Group returns the group registered for an interface, or nil.
func (d *Dispatcher) Group(iface string) *event.Group {
	return d.byIface[iface]
}

// GroupByTag returns the group with the given registry tag, or nil.
func (d *Dispatcher) GroupByTag(tag string) *event.Group {
	return d.byTag[tag]
}

// SignalByKey resolves a signal key such as "Object:StateChanged", or
// returns nil.
func (d *Dispatcher) SignalByKey(key string) *event.Signal {
	i := strings.IndexByte(key, ':')
	if i < 0 {
		return nil
	}
	g := d.byTag[key[:i+1]]
	if g == nil {
		return nil
	}
	return g.Signal(key[i+1:])
}

// Groups returns the registered groups in registration order.
func (d *Dispatcher) Groups() []*event.Group {
	out := make([]*event.Group, len(d.groups))
	copy(out, d.groups)
	return out
}

// Signals returns every signal of every group.
func (d *Dispatcher) Signals() []*event.Signal {
	var out []*event.Signal
	for _, g := range d.groups {
		out = append(out, g.Signals()...)
	}
	return out
}

// MatchRules returns one interface-wide match rule per group.
func (d *Dispatcher) MatchRules() []string {
	out := make([]string, len(d.groups))
	for i, g := range d.groups {
		out[i] = g.MatchRule()
	}
	return out
}

// Encode builds the outgoing message for an event: interface and member
// from its signal, sender and path from its item.
func Encode(e event.Event) event.Message {
	sig := e.Signal()
	item := e.Source()
	return event.Message{
		Interface: sig.Interface(),
		Member:    sig.Member(),
		Sender:    item.Name,
		Path:      item.Path,
		Body:      e.Body(),
	}
}
