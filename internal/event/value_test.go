package event

import (
	"math"
	"testing"

	"github.com/cespare/xxhash/v2"
)

func hashOf(v Value) uint64 {
	d := xxhash.New()
	v.HashTo(d)
	return d.Sum64()
}

func TestValue_Projections(t *testing.T) {
	if n, ok := Uint32(34).AsUint32(); !ok || n != 34 {
		t.Errorf("expected 34, got %v (ok=%v)", n, ok)
	}
	if _, ok := Int32(34).AsUint32(); ok {
		t.Error("int32 should not project to uint32")
	}
	if n, ok := Int32(-7).AsInt32(); !ok || n != -7 {
		t.Errorf("expected -7, got %v", n)
	}
	if n, ok := Int16(-3).AsInt16(); !ok || n != -3 {
		t.Errorf("expected -3, got %v", n)
	}
	if n, ok := Int64(math.MinInt64).AsInt64(); !ok || n != math.MinInt64 {
		t.Errorf("expected MinInt64, got %v", n)
	}
	if n, ok := Uint64(math.MaxUint64).AsUint64(); !ok || n != math.MaxUint64 {
		t.Errorf("expected MaxUint64, got %v", n)
	}
	if s, ok := String("hi").AsString(); !ok || s != "hi" {
		t.Errorf("expected hi, got %q", s)
	}
	if _, ok := ObjectPath("/a").AsString(); ok {
		t.Error("object path should not project to string")
	}
	if p, ok := ObjectPath("/a").AsObjectPath(); !ok || p != "/a" {
		t.Errorf("expected /a, got %q", p)
	}
	if b, ok := Bool(true).AsBool(); !ok || !b {
		t.Error("expected true")
	}
	if f, ok := Double(1.5).AsDouble(); !ok || f != 1.5 {
		t.Errorf("expected 1.5, got %v", f)
	}
	if b, ok := Byte(0).AsByte(); !ok || b != 0 {
		t.Errorf("expected 0, got %v", b)
	}
	if _, ok := (Value{}).AsByte(); ok {
		t.Error("invalid value should not project")
	}
}

func TestValue_AsAccessible(t *testing.T) {
	want := Accessible{Name: ":1.23", Path: "/org/a11y/atspi/accessible/5"}

	got, ok := want.Value().AsAccessible()
	if !ok || got != want {
		t.Errorf("expected %v, got %v (ok=%v)", want, got, ok)
	}

	bad := []Value{
		String(":1.23"),
		Struct(String(":1.23")),
		Struct(String(":1.23"), String("/path")),
		Struct(ObjectPath("/path"), String(":1.23")),
		Array(String(":1.23"), ObjectPath("/path")),
	}
	for _, v := range bad {
		if _, ok := v.AsAccessible(); ok {
			t.Errorf("%v should not project to an accessible", v)
		}
	}
}

func TestValue_Equal(t *testing.T) {
	tests := []struct {
		name string
		a, b Value
		want bool
	}{
		{"same scalar", Uint32(1), Uint32(1), true},
		{"different scalar", Uint32(1), Uint32(2), false},
		{"kind differs", Uint32(1), Int32(1), false},
		{"strings", String("a"), String("a"), true},
		{"string vs path", String("/a"), ObjectPath("/a"), false},
		{"invalid", Value{}, Value{}, true},
		{"nan", Double(math.NaN()), Double(math.NaN()), false},
		{"signed zero", Double(0), Double(math.Copysign(0, -1)), true},
		{"arrays", Array(Int32(1), String("x")), Array(Int32(1), String("x")), true},
		{"array length", Array(Int32(1)), Array(Int32(1), Int32(2)), false},
		{"array vs struct", Array(Int32(1)), Struct(Int32(1)), false},
		{"empty arrays", Array(), Array(), true},
		{"dicts", Dict(map[string]Value{"a": Bool(true)}), Dict(map[string]Value{"a": Bool(true)}), true},
		{"dict values", Dict(map[string]Value{"a": Bool(true)}), Dict(map[string]Value{"a": Bool(false)}), false},
		{"dict keys", Dict(map[string]Value{"a": Bool(true)}), Dict(map[string]Value{"b": Bool(true)}), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Equal(tt.b); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestValue_HashConsistentWithEqual(t *testing.T) {
	pairs := [][2]Value{
		{Uint32(34), Uint32(34)},
		{Double(0), Double(math.Copysign(0, -1))},
		{Struct(String(":1.1"), ObjectPath("/a")), Struct(String(":1.1"), ObjectPath("/a"))},
		{
			Dict(map[string]Value{"x": Int32(1), "y": Int32(2), "z": Int32(3)}),
			Dict(map[string]Value{"z": Int32(3), "y": Int32(2), "x": Int32(1)}),
		},
	}
	for _, p := range pairs {
		if !p[0].Equal(p[1]) {
			t.Fatalf("%v and %v should be equal", p[0], p[1])
		}
		if hashOf(p[0]) != hashOf(p[1]) {
			t.Errorf("equal values %v hash differently", p[0])
		}
	}

	if hashOf(Uint32(1)) == hashOf(Int32(1)) {
		t.Error("kind should contribute to the hash")
	}
	if hashOf(Array(String("ab"), String("c"))) == hashOf(Array(String("a"), String("bc"))) {
		t.Error("string boundaries should contribute to the hash")
	}
}

func TestValue_Immutable(t *testing.T) {
	elems := []Value{Int32(1)}
	arr := Array(elems...)
	elems[0] = Int32(99)

	got, _ := arr.Elems()
	if n, _ := got[0].AsInt32(); n != 1 {
		t.Errorf("array should not alias its input, got %d", n)
	}

	got[0] = Int32(42)
	again, _ := arr.Elems()
	if n, _ := again[0].AsInt32(); n != 1 {
		t.Errorf("Elems should return a copy, got %d", n)
	}

	m := map[string]Value{"k": String("v")}
	dict := Dict(m)
	m["k"] = String("changed")
	d, _ := dict.AsDict()
	if s, _ := d["k"].AsString(); s != "v" {
		t.Errorf("dict should not alias its input, got %q", s)
	}
}

func TestValue_String(t *testing.T) {
	tests := []struct {
		value    Value
		expected string
	}{
		{Uint32(34), "uint32(34)"},
		{Int32(-1), "int32(-1)"},
		{String("a"), `string("a")`},
		{Bool(true), "bool(true)"},
		{Value{}, "invalid()"},
		{Accessible{Name: ":1.2", Path: "/a"}.Value(), `struct(string(":1.2"), objectpath("/a"))`},
		{Dict(map[string]Value{"b": Byte(2), "a": Byte(1)}), `dict("a": byte(1), "b": byte(2))`},
	}

	for _, tt := range tests {
		if got := tt.value.String(); got != tt.expected {
			t.Errorf("expected %s, got %s", tt.expected, got)
		}
	}
}

func TestKind_Code(t *testing.T) {
	for _, k := range []Kind{KindByte, KindBool, KindInt16, KindUint16, KindInt32, KindUint32, KindInt64, KindUint64, KindDouble, KindString, KindObjectPath, KindSignature, KindArray, KindStruct, KindDict} {
		got, ok := KindFromCode(k.Code())
		if !ok || got != k {
			t.Errorf("KindFromCode(%q) = %v, %v", k.Code(), got, ok)
		}
	}
	if _, ok := KindFromCode(""); ok {
		t.Error("empty code should not resolve")
	}
	if _, ok := KindFromCode("z"); ok {
		t.Error("unknown code should not resolve")
	}
	if KindInvalid.Code() != "" {
		t.Error("invalid kind should have no code")
	}
}
