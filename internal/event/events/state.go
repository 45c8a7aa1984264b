package events

// State is an AT-SPI object state. On the wire a StateChanged signal names
// the state in its kind field using the kebab-case names below.
type State uint32

// States in wire-code order.
const (
	StateInvalid State = iota
	StateActive
	StateArmed
	StateBusy
	StateChecked
	StateCollapsed
	StateDefunct
	StateEditable
	StateEnabled
	StateExpandable
	StateExpanded
	StateFocusable
	StateFocused
	StateHasTooltip
	StateHorizontal
	StateIconified
	StateModal
	StateMultiLine
	StateMultiselectable
	StateOpaque
	StatePressed
	StateResizable
	StateSelectable
	StateSelected
	StateSensitive
	StateShowing
	StateSingleLine
	StateStale
	StateTransient
	StateVertical
	StateVisible
	StateManagesDescendants
	StateIndeterminate
	StateRequired
	StateTruncated
	StateAnimated
	StateInvalidEntry
	StateSupportsAutocompletion
	StateSelectableText
	StateIsDefault
	StateVisited
	StateCheckable
	StateHasPopup
	StateReadOnly
)

// stateCount is one past the highest defined state.
const stateCount = uint32(StateReadOnly) + 1

var stateNames = [stateCount]string{
	"invalid",
	"active",
	"armed",
	"busy",
	"checked",
	"collapsed",
	"defunct",
	"editable",
	"enabled",
	"expandable",
	"expanded",
	"focusable",
	"focused",
	"has-tooltip",
	"horizontal",
	"iconified",
	"modal",
	"multi-line",
	"multiselectable",
	"opaque",
	"pressed",
	"resizable",
	"selectable",
	"selected",
	"sensitive",
	"showing",
	"single-line",
	"stale",
	"transient",
	"vertical",
	"visible",
	"manages-descendants",
	"indeterminate",
	"required",
	"truncated",
	"animated",
	"invalid-entry",
	"supports-autocompletion",
	"selectable-text",
	"is-default",
	"visited",
	"checkable",
	"has-popup",
	"read-only",
}

var statesByName = func() map[string]State {
	m := make(map[string]State, stateCount)
	for i, name := range stateNames {
		m[name] = State(i)
	}
	return m
}()

// ParseState maps a wire name to a State. Unknown names map to
// StateInvalid rather than failing.
func ParseState(name string) State {
	if s, ok := statesByName[name]; ok {
		return s
	}
	return StateInvalid
}

// LookupState is like ParseState but reports whether the name was known.
func LookupState(name string) (State, bool) {
	s, ok := statesByName[name]
	return s, ok
}

// IsValid reports whether s is inside the enumeration.
func (s State) IsValid() bool {
	return uint32(s) < stateCount
}

// String returns the wire name. Values outside the enumeration render as
// "invalid" so that encoding stays total.
func (s State) String() string {
	if !s.IsValid() {
		return stateNames[StateInvalid]
	}
	return stateNames[s]
}
