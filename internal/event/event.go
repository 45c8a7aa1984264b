package event

import (
	"fmt"

	"github.com/dshills/a11ybus/internal/event/matchrule"
)

// Event is a typed accessibility event record.
//
// Implementations are immutable value types. Encoding through Body is total:
// it populates the fields the variant declares and leaves the rest at the
// zero values of NewBody.
type Event interface {
	// Source returns the object the event concerns.
	Source() Accessible

	// Signal returns the variant's static metadata.
	Signal() *Signal

	// Body encodes the record into wire form.
	Body() Body
}

// DecodeFunc builds a typed record from an accessible reference and a body.
// It reads only the fields the variant declares.
type DecodeFunc func(item Accessible, body Body) (Event, error)

// SignalSpec is one row of a group's member table.
type SignalSpec struct {
	Member string
	Decode DecodeFunc
}

// Signal is the static metadata of one event variant.
type Signal struct {
	group     *Group
	member    string
	matchRule string
	decode    DecodeFunc
}

// Group returns the interface group the signal belongs to.
func (s *Signal) Group() *Group { return s.group }

// Interface returns the D-Bus interface name.
func (s *Signal) Interface() string { return s.group.iface }

// Member returns the D-Bus member name.
func (s *Signal) Member() string { return s.member }

// MatchRule returns the rule selecting only this signal.
func (s *Signal) MatchRule() string { return s.matchRule }

// RegistryTag returns the owning group's registry tag.
func (s *Signal) RegistryTag() string { return s.group.tag }

// Key returns the registry tag joined with the member, e.g.
// "Object:StateChanged". It is unique across groups.
func (s *Signal) Key() string { return s.group.tag + s.member }

// Decode runs the variant's decoder.
func (s *Signal) Decode(item Accessible, body Body) (Event, error) {
	return s.decode(item, body)
}

// String returns "interface.member".
func (s *Signal) String() string { return s.group.iface + "." + s.member }

// Group is the closed set of event variants for one bus interface.
// Groups are immutable once NewGroup returns.
type Group struct {
	name      string
	iface     string
	tag       string
	matchRule string
	signals   []*Signal
	byMember  map[string]*Signal
}

// NewGroup builds a group from its member table. It panics on an empty or
// duplicate member, since group tables are static data.
func NewGroup(name, iface, tag string, specs ...SignalSpec) *Group {
	g := &Group{
		name:      name,
		iface:     iface,
		tag:       tag,
		matchRule: matchrule.ForInterface(iface).String(),
		signals:   make([]*Signal, 0, len(specs)),
		byMember:  make(map[string]*Signal, len(specs)),
	}

	for _, spec := range specs {
		if spec.Member == "" || spec.Decode == nil {
			panic(fmt.Sprintf("event: group %s has an incomplete signal spec", name))
		}
		if _, dup := g.byMember[spec.Member]; dup {
			panic(fmt.Sprintf("event: group %s declares %s twice", name, spec.Member))
		}
		sig := &Signal{
			group:     g,
			member:    spec.Member,
			matchRule: matchrule.ForSignal(iface, spec.Member).String(),
			decode:    spec.Decode,
		}
		g.signals = append(g.signals, sig)
		g.byMember[spec.Member] = sig
	}

	return g
}

// Name returns the short group name (e.g., "Object").
func (g *Group) Name() string { return g.name }

// Interface returns the D-Bus interface name.
func (g *Group) Interface() string { return g.iface }

// RegistryTag returns the stable tag external registries index by
// (e.g., "Object:").
func (g *Group) RegistryTag() string { return g.tag }

// MatchRule returns the rule selecting every signal of the interface.
func (g *Group) MatchRule() string { return g.matchRule }

// Signal returns the signal for a member, or nil. Lookup is exact and
// case-sensitive.
func (g *Group) Signal(member string) *Signal {
	return g.byMember[member]
}

// Signals returns the member table in declaration order.
func (g *Group) Signals() []*Signal {
	out := make([]*Signal, len(g.signals))
	copy(out, g.signals)
	return out
}

// Members returns the member names in declaration order.
func (g *Group) Members() []string {
	out := make([]string, len(g.signals))
	for i, s := range g.signals {
		out[i] = s.member
	}
	return out
}

// Len returns the number of variants in the group.
func (g *Group) Len() int { return len(g.signals) }
