package event

import (
	"encoding/binary"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Kind identifies the runtime shape of a Value. Kinds are named after the
// D-Bus type code they carry on the wire.
type Kind byte

// Value kinds.
const (
	KindInvalid    Kind = 0
	KindByte       Kind = 'y'
	KindBool       Kind = 'b'
	KindInt16      Kind = 'n'
	KindUint16     Kind = 'q'
	KindInt32      Kind = 'i'
	KindUint32     Kind = 'u'
	KindInt64      Kind = 'x'
	KindUint64     Kind = 't'
	KindDouble     Kind = 'd'
	KindString     Kind = 's'
	KindObjectPath Kind = 'o'
	KindSignature  Kind = 'g'
	KindArray      Kind = 'a'
	KindStruct     Kind = 'r'
	KindDict       Kind = 'e'
)

var kindNames = map[Kind]string{
	KindInvalid:    "invalid",
	KindByte:       "byte",
	KindBool:       "bool",
	KindInt16:      "int16",
	KindUint16:     "uint16",
	KindInt32:      "int32",
	KindUint32:     "uint32",
	KindInt64:      "int64",
	KindUint64:     "uint64",
	KindDouble:     "double",
	KindString:     "string",
	KindObjectPath: "objectpath",
	KindSignature:  "signature",
	KindArray:      "array",
	KindStruct:     "struct",
	KindDict:       "dict",
}

// String returns a human-readable kind name.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown(" + strconv.Itoa(int(k)) + ")"
}

// Code returns the single-character wire code, or "" for KindInvalid.
func (k Kind) Code() string {
	if k == KindInvalid {
		return ""
	}
	return string(rune(k))
}

// KindFromCode returns the kind for a wire code.
func KindFromCode(code string) (Kind, bool) {
	if len(code) != 1 {
		return KindInvalid, false
	}
	k := Kind(code[0])
	if _, ok := kindNames[k]; !ok || k == KindInvalid {
		return KindInvalid, false
	}
	return k, true
}

// Value is a dynamically-typed wire value. The zero Value is invalid.
//
// Values are immutable: constructors copy their inputs and accessors return
// copies of composite contents.
type Value struct {
	kind  Kind
	num   uint64
	str   string
	elems []Value
	dict  map[string]Value
}

// Byte returns a byte value.
func Byte(v uint8) Value { return Value{kind: KindByte, num: uint64(v)} }

// Bool returns a boolean value.
func Bool(v bool) Value {
	var n uint64
	if v {
		n = 1
	}
	return Value{kind: KindBool, num: n}
}

// Int16 returns a signed 16-bit value.
func Int16(v int16) Value { return Value{kind: KindInt16, num: uint64(int64(v))} }

// Uint16 returns an unsigned 16-bit value.
func Uint16(v uint16) Value { return Value{kind: KindUint16, num: uint64(v)} }

// Int32 returns a signed 32-bit value.
func Int32(v int32) Value { return Value{kind: KindInt32, num: uint64(int64(v))} }

// Uint32 returns an unsigned 32-bit value.
func Uint32(v uint32) Value { return Value{kind: KindUint32, num: uint64(v)} }

// Int64 returns a signed 64-bit value.
func Int64(v int64) Value { return Value{kind: KindInt64, num: uint64(v)} }

// Uint64 returns an unsigned 64-bit value.
func Uint64(v uint64) Value { return Value{kind: KindUint64, num: v} }

// Double returns a floating-point value.
func Double(v float64) Value { return Value{kind: KindDouble, num: math.Float64bits(v)} }

// String returns a string value.
func String(v string) Value { return Value{kind: KindString, str: v} }

// ObjectPath returns an object path value.
func ObjectPath(v string) Value { return Value{kind: KindObjectPath, str: v} }

// Signature returns a type signature value.
func Signature(v string) Value { return Value{kind: KindSignature, str: v} }

// Array returns an array value holding copies of elems.
func Array(elems ...Value) Value {
	return Value{kind: KindArray, elems: cloneValues(elems)}
}

// Struct returns a struct value whose fields are copies of fields.
func Struct(fields ...Value) Value {
	return Value{kind: KindStruct, elems: cloneValues(fields)}
}

// Dict returns a string-keyed dictionary value holding a copy of m.
func Dict(m map[string]Value) Value {
	return Value{kind: KindDict, dict: cloneDict(m)}
}

// Kind returns the value's kind.
func (v Value) Kind() Kind { return v.kind }

// IsValid reports whether v holds a value.
func (v Value) IsValid() bool { return v.kind != KindInvalid }

// AsByte projects a byte value.
func (v Value) AsByte() (uint8, bool) {
	if v.kind != KindByte {
		return 0, false
	}
	return uint8(v.num), true
}

// AsBool projects a boolean value.
func (v Value) AsBool() (bool, bool) {
	if v.kind != KindBool {
		return false, false
	}
	return v.num != 0, true
}

// AsInt16 projects a signed 16-bit value.
func (v Value) AsInt16() (int16, bool) {
	if v.kind != KindInt16 {
		return 0, false
	}
	return int16(int64(v.num)), true
}

// AsUint16 projects an unsigned 16-bit value.
func (v Value) AsUint16() (uint16, bool) {
	if v.kind != KindUint16 {
		return 0, false
	}
	return uint16(v.num), true
}

// AsInt32 projects a signed 32-bit value.
func (v Value) AsInt32() (int32, bool) {
	if v.kind != KindInt32 {
		return 0, false
	}
	return int32(int64(v.num)), true
}

// AsUint32 projects an unsigned 32-bit value.
func (v Value) AsUint32() (uint32, bool) {
	if v.kind != KindUint32 {
		return 0, false
	}
	return uint32(v.num), true
}

// AsInt64 projects a signed 64-bit value.
func (v Value) AsInt64() (int64, bool) {
	if v.kind != KindInt64 {
		return 0, false
	}
	return int64(v.num), true
}

// AsUint64 projects an unsigned 64-bit value.
func (v Value) AsUint64() (uint64, bool) {
	if v.kind != KindUint64 {
		return 0, false
	}
	return v.num, true
}

// AsDouble projects a floating-point value.
func (v Value) AsDouble() (float64, bool) {
	if v.kind != KindDouble {
		return 0, false
	}
	return math.Float64frombits(v.num), true
}

// AsString projects a string value. Object paths and signatures are not
// strings for this purpose.
func (v Value) AsString() (string, bool) {
	if v.kind != KindString {
		return "", false
	}
	return v.str, true
}

// AsObjectPath projects an object path value.
func (v Value) AsObjectPath() (string, bool) {
	if v.kind != KindObjectPath {
		return "", false
	}
	return v.str, true
}

// AsSignature projects a signature value.
func (v Value) AsSignature() (string, bool) {
	if v.kind != KindSignature {
		return "", false
	}
	return v.str, true
}

// Elems returns a copy of an array's elements or a struct's fields.
func (v Value) Elems() ([]Value, bool) {
	if v.kind != KindArray && v.kind != KindStruct {
		return nil, false
	}
	return cloneValues(v.elems), true
}

// Len returns the number of elements of an array, struct or dict.
func (v Value) Len() int {
	if v.kind == KindDict {
		return len(v.dict)
	}
	return len(v.elems)
}

// AsDict returns a copy of a dictionary's entries.
func (v Value) AsDict() (map[string]Value, bool) {
	if v.kind != KindDict {
		return nil, false
	}
	return cloneDict(v.dict), true
}

// AsAccessible projects a (so) struct: a bus name and an object path.
func (v Value) AsAccessible() (Accessible, bool) {
	if v.kind != KindStruct || len(v.elems) != 2 {
		return Accessible{}, false
	}
	name, ok := v.elems[0].AsString()
	if !ok {
		return Accessible{}, false
	}
	path, ok := v.elems[1].AsObjectPath()
	if !ok {
		return Accessible{}, false
	}
	return Accessible{Name: name, Path: path}, true
}

// Equal reports whether two values have the same kind and contents.
// Doubles compare numerically, so NaN is never equal to itself.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindInvalid:
		return true
	case KindDouble:
		return math.Float64frombits(v.num) == math.Float64frombits(other.num)
	case KindString, KindObjectPath, KindSignature:
		return v.str == other.str
	case KindArray, KindStruct:
		if len(v.elems) != len(other.elems) {
			return false
		}
		for i := range v.elems {
			if !v.elems[i].Equal(other.elems[i]) {
				return false
			}
		}
		return true
	case KindDict:
		if len(v.dict) != len(other.dict) {
			return false
		}
		for k, a := range v.dict {
			b, ok := other.dict[k]
			if !ok || !a.Equal(b) {
				return false
			}
		}
		return true
	default:
		return v.num == other.num
	}
}

// HashTo writes a digest of v into d. Values that are Equal write the same
// bytes; dictionary entries are written in key order.
func (v Value) HashTo(d *xxhash.Digest) {
	var buf [8]byte
	_, _ = d.Write([]byte{byte(v.kind)})

	switch v.kind {
	case KindInvalid:
	case KindDouble:
		f := math.Float64frombits(v.num)
		if f == 0 {
			f = 0 // fold -0 into +0
		}
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(f))
		_, _ = d.Write(buf[:])
	case KindString, KindObjectPath, KindSignature:
		hashString(d, v.str)
	case KindArray, KindStruct:
		binary.LittleEndian.PutUint64(buf[:], uint64(len(v.elems)))
		_, _ = d.Write(buf[:])
		for _, e := range v.elems {
			e.HashTo(d)
		}
	case KindDict:
		keys := make([]string, 0, len(v.dict))
		for k := range v.dict {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		binary.LittleEndian.PutUint64(buf[:], uint64(len(keys)))
		_, _ = d.Write(buf[:])
		for _, k := range keys {
			hashString(d, k)
			v.dict[k].HashTo(d)
		}
	default:
		binary.LittleEndian.PutUint64(buf[:], v.num)
		_, _ = d.Write(buf[:])
	}
}

// String returns a debug representation such as uint32(34) or
// struct(string(":1.2"), objectpath("/a")).
func (v Value) String() string {
	var b strings.Builder
	v.format(&b)
	return b.String()
}

func (v Value) format(b *strings.Builder) {
	b.WriteString(v.kind.String())
	b.WriteByte('(')
	switch v.kind {
	case KindInvalid:
	case KindBool:
		b.WriteString(strconv.FormatBool(v.num != 0))
	case KindInt16, KindInt32, KindInt64:
		b.WriteString(strconv.FormatInt(int64(v.num), 10))
	case KindDouble:
		b.WriteString(strconv.FormatFloat(math.Float64frombits(v.num), 'g', -1, 64))
	case KindString, KindObjectPath, KindSignature:
		b.WriteString(strconv.Quote(v.str))
	case KindArray, KindStruct:
		for i, e := range v.elems {
			if i > 0 {
				b.WriteString(", ")
			}
			e.format(b)
		}
	case KindDict:
		keys := make([]string, 0, len(v.dict))
		for k := range v.dict {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for i, k := range keys {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(strconv.Quote(k))
			b.WriteString(": ")
			v.dict[k].format(b)
		}
	default:
		b.WriteString(strconv.FormatUint(v.num, 10))
	}
	b.WriteByte(')')
}

func hashString(d *xxhash.Digest, s string) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(len(s)))
	_, _ = d.Write(buf[:])
	_, _ = d.WriteString(s)
}

func cloneValues(src []Value) []Value {
	if src == nil {
		return nil
	}
	dst := make([]Value, len(src))
	copy(dst, src)
	return dst
}

func cloneDict(src map[string]Value) map[string]Value {
	dst := make(map[string]Value, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
