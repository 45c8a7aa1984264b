package event

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
)

// Equaler is implemented by variants whose fields are not comparable with
// ==, typically because they hold a Value.
type Equaler interface {
	Equal(other Event) bool
}

// Hasher is implemented by variants that hash a narrower key than their
// full field set. HashFields writes everything except the signal identity
// and item, which Hash always includes.
type Hasher interface {
	HashFields(d *xxhash.Digest)
}

// Equal reports whether a and b are the same variant with equal fields.
// Variants that do not implement Equaler must be comparable.
func Equal(a, b Event) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if eq, ok := a.(Equaler); ok {
		return eq.Equal(b)
	}
	if _, ok := b.(Equaler); ok {
		return false
	}
	return a == b
}

// Hash returns a 64-bit digest of an event. Equal events hash equal; the
// converse does not hold for variants implementing Hasher.
func Hash(e Event) uint64 {
	d := xxhash.New()
	sig := e.Signal()
	hashString(d, sig.Interface())
	hashString(d, sig.Member())
	e.Source().HashTo(d)

	if h, ok := e.(Hasher); ok {
		h.HashFields(d)
		return d.Sum64()
	}

	body := e.Body()
	hashString(d, body.Kind)
	var buf [8]byte
	binary.LittleEndian.PutUint32(buf[:4], uint32(body.Detail1))
	binary.LittleEndian.PutUint32(buf[4:], uint32(body.Detail2))
	_, _ = d.Write(buf[:])
	body.AnyData.HashTo(d)
	return d.Sum64()
}
