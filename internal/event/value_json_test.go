package event

import (
	"encoding/json"
	"math"
	"strings"
	"testing"
)

func TestValue_JSONRoundTrip(t *testing.T) {
	values := []Value{
		{},
		Byte(0),
		Bool(true),
		Int16(-12),
		Uint16(65535),
		Int32(math.MinInt32),
		Uint32(34),
		Int64(math.MinInt64),
		Uint64(math.MaxUint64),
		Double(2.25),
		String("hello"),
		ObjectPath("/org/a11y/atspi/accessible/root"),
		Signature("(so)"),
		Array(),
		Array(Int32(1), Int32(2)),
		Accessible{Name: ":1.9", Path: "/p"}.Value(),
		Dict(map[string]Value{"nested": Array(String("x"))}),
	}

	for _, want := range values {
		t.Run(want.String(), func(t *testing.T) {
			data, err := json.Marshal(want)
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			var got Value
			if err := json.Unmarshal(data, &got); err != nil {
				t.Fatalf("unmarshal %s: %v", data, err)
			}
			if !got.Equal(want) {
				t.Errorf("expected %v, got %v (json %s)", want, got, data)
			}
		})
	}
}

func TestValue_MarshalJSONShape(t *testing.T) {
	data, err := json.Marshal(Uint32(34))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `{"type":"u","value":34}` {
		t.Errorf("unexpected json %s", data)
	}

	data, err = json.Marshal(Value{})
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "null" {
		t.Errorf("expected null, got %s", data)
	}
}

func TestValue_JSONNonFinite(t *testing.T) {
	tests := []struct {
		name string
		in   float64
		want string
	}{
		{"nan", math.NaN(), `{"type":"d","value":"NaN"}`},
		{"positive infinity", math.Inf(1), `{"type":"d","value":"+Inf"}`},
		{"negative infinity", math.Inf(-1), `{"type":"d","value":"-Inf"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(Double(tt.in))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if string(data) != tt.want {
				t.Errorf("expected %s, got %s", tt.want, data)
			}

			var v Value
			if err := json.Unmarshal(data, &v); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			got, ok := v.AsDouble()
			if !ok {
				t.Fatalf("expected a double, got %s", v)
			}
			if math.Float64bits(got) != math.Float64bits(tt.in) && !(math.IsNaN(got) && math.IsNaN(tt.in)) {
				t.Errorf("expected %v, got %v", tt.in, got)
			}
		})
	}
}

func TestValue_UnmarshalJSONErrors(t *testing.T) {
	inputs := []string{
		`{"type":"z","value":1}`,
		`{"type":"u","value":-1}`,
		`{"type":"y","value":300}`,
		`{"type":"s","value":5}`,
		`{"type":"u"}`,
		`{"type":"d","value":"Infinity"}`,
		`[1,2]`,
	}
	for _, in := range inputs {
		var v Value
		if err := json.Unmarshal([]byte(in), &v); err == nil {
			t.Errorf("expected error for %s, got %v", in, v)
		}
	}
}

func TestValue_UnmarshalJSONLargeIntegers(t *testing.T) {
	var v Value
	in := `{"type":"t","value":18446744073709551615}`
	if err := json.NewDecoder(strings.NewReader(in)).Decode(&v); err != nil {
		t.Fatal(err)
	}
	if n, ok := v.AsUint64(); !ok || n != math.MaxUint64 {
		t.Errorf("expected MaxUint64, got %v", v)
	}
}
