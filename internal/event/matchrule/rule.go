package matchrule

import (
	"errors"
	"fmt"
	"strings"
)

// TypeSignal is the only message type accessibility subscriptions use.
const TypeSignal = "signal"

// Errors returned by Parse.
var (
	// ErrEmptyRule is returned when the rule string has no clauses.
	ErrEmptyRule = errors.New("empty match rule")

	// ErrMalformedClause is returned when a clause is not key='value'.
	ErrMalformedClause = errors.New("malformed match rule clause")

	// ErrUnsupportedKey is returned for keys other than type, interface,
	// member, path and sender.
	ErrUnsupportedKey = errors.New("unsupported match rule key")

	// ErrDuplicateKey is returned when a key appears more than once.
	ErrDuplicateKey = errors.New("duplicate match rule key")
)

// Rule is a parsed match rule. Empty fields match any value.
type Rule struct {
	Type      string
	Interface string
	Member    string
	Path      string
	Sender    string
}

// ForInterface returns the rule selecting every signal of an interface.
func ForInterface(iface string) Rule {
	return Rule{Type: TypeSignal, Interface: iface}
}

// ForSignal returns the rule selecting one member of an interface.
func ForSignal(iface, member string) Rule {
	return Rule{Type: TypeSignal, Interface: iface, Member: member}
}

// String renders the rule in canonical clause order:
// type, interface, member, path, sender.
func (r Rule) String() string {
	var b strings.Builder
	write := func(key, value string) {
		if value == "" {
			return
		}
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(key)
		b.WriteString("='")
		b.WriteString(value)
		b.WriteByte('\'')
	}
	write("type", r.Type)
	write("interface", r.Interface)
	write("member", r.Member)
	write("path", r.Path)
	write("sender", r.Sender)
	return b.String()
}

// IsZero reports whether the rule has no clauses.
func (r Rule) IsZero() bool {
	return r == Rule{}
}

// Matches reports whether a signal with the given header fields would be
// delivered under this rule.
func (r Rule) Matches(iface, member, sender, path string) bool {
	if r.Type != "" && r.Type != TypeSignal {
		return false
	}
	return field(r.Interface, iface) &&
		field(r.Member, member) &&
		field(r.Sender, sender) &&
		field(r.Path, path)
}

// Covers reports whether every signal matched by other is also matched by r.
func (r Rule) Covers(other Rule) bool {
	return field(r.Type, other.Type) &&
		field(r.Interface, other.Interface) &&
		field(r.Member, other.Member) &&
		field(r.Path, other.Path) &&
		field(r.Sender, other.Sender)
}

func field(want, got string) bool {
	return want == "" || want == got
}

// Parse parses a rule string produced by String or written by hand.
// Whitespace around clauses is ignored.
func Parse(s string) (Rule, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Rule{}, ErrEmptyRule
	}

	var r Rule
	seen := make(map[string]bool)

	for _, clause := range splitClauses(s) {
		clause = strings.TrimSpace(clause)
		key, value, ok := strings.Cut(clause, "=")
		if !ok {
			return Rule{}, fmt.Errorf("%w: %q", ErrMalformedClause, clause)
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		if len(value) < 2 || value[0] != '\'' || value[len(value)-1] != '\'' {
			return Rule{}, fmt.Errorf("%w: %q", ErrMalformedClause, clause)
		}
		value = value[1 : len(value)-1]
		if strings.ContainsAny(value, "'\\") {
			return Rule{}, fmt.Errorf("%w: %q", ErrMalformedClause, clause)
		}

		if seen[key] {
			return Rule{}, fmt.Errorf("%w: %s", ErrDuplicateKey, key)
		}
		seen[key] = true

		switch key {
		case "type":
			r.Type = value
		case "interface":
			r.Interface = value
		case "member":
			r.Member = value
		case "path":
			r.Path = value
		case "sender":
			r.Sender = value
		default:
			return Rule{}, fmt.Errorf("%w: %s", ErrUnsupportedKey, key)
		}
	}

	return r, nil
}

// MustParse is like Parse but panics on error. Intended for static rules.
func MustParse(s string) Rule {
	r, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return r
}

// splitClauses splits on commas that are outside quotes.
func splitClauses(s string) []string {
	var parts []string
	quoted := false
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\'':
			quoted = !quoted
		case ',':
			if !quoted {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	return append(parts, s[start:])
}
