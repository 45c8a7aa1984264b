package event

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
)

// jsonValue is the JSON envelope of a Value: {"type":"u","value":34}.
type jsonValue struct {
	Type  string          `json:"type"`
	Value json.RawMessage `json:"value,omitempty"`
}

// MarshalJSON implements json.Marshaler. The invalid value encodes as null.
func (v Value) MarshalJSON() ([]byte, error) {
	if v.kind == KindInvalid {
		return []byte("null"), nil
	}

	var payload any
	switch v.kind {
	case KindByte, KindUint16, KindUint32, KindUint64:
		payload = v.num
	case KindInt16, KindInt32, KindInt64:
		payload = int64(v.num)
	case KindBool:
		payload = v.num != 0
	case KindDouble:
		f := math.Float64frombits(v.num)
		switch {
		case math.IsNaN(f):
			payload = "NaN"
		case math.IsInf(f, 1):
			payload = "+Inf"
		case math.IsInf(f, -1):
			payload = "-Inf"
		default:
			payload = f
		}
	case KindString, KindObjectPath, KindSignature:
		payload = v.str
	case KindArray, KindStruct:
		elems := v.elems
		if elems == nil {
			elems = []Value{}
		}
		payload = elems
	case KindDict:
		payload = v.dict
	default:
		return nil, fmt.Errorf("marshal value: unknown kind %s", v.kind)
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(jsonValue{Type: v.kind.Code(), Value: raw})
}

// UnmarshalJSON implements json.Unmarshaler.
func (v *Value) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*v = Value{}
		return nil
	}

	var env jsonValue
	if err := json.Unmarshal(data, &env); err != nil {
		return err
	}
	kind, ok := KindFromCode(env.Type)
	if !ok {
		return fmt.Errorf("unmarshal value: unknown type %q", env.Type)
	}

	decoded, err := decodeJSONPayload(kind, env.Value)
	if err != nil {
		return fmt.Errorf("unmarshal %s value: %w", kind, err)
	}
	*v = decoded
	return nil
}

func decodeJSONPayload(kind Kind, raw json.RawMessage) (Value, error) {
	switch kind {
	case KindByte:
		var n uint8
		err := json.Unmarshal(raw, &n)
		return Byte(n), err
	case KindBool:
		var b bool
		err := json.Unmarshal(raw, &b)
		return Bool(b), err
	case KindInt16:
		var n int16
		err := json.Unmarshal(raw, &n)
		return Int16(n), err
	case KindUint16:
		var n uint16
		err := json.Unmarshal(raw, &n)
		return Uint16(n), err
	case KindInt32:
		var n int32
		err := json.Unmarshal(raw, &n)
		return Int32(n), err
	case KindUint32:
		var n uint32
		err := json.Unmarshal(raw, &n)
		return Uint32(n), err
	case KindInt64:
		var n int64
		err := json.Unmarshal(raw, &n)
		return Int64(n), err
	case KindUint64:
		var n uint64
		err := json.Unmarshal(raw, &n)
		return Uint64(n), err
	case KindDouble:
		return decodeJSONDouble(raw)
	case KindString:
		var s string
		err := json.Unmarshal(raw, &s)
		return String(s), err
	case KindObjectPath:
		var s string
		err := json.Unmarshal(raw, &s)
		return ObjectPath(s), err
	case KindSignature:
		var s string
		err := json.Unmarshal(raw, &s)
		return Signature(s), err
	case KindArray, KindStruct:
		var elems []Value
		if err := json.Unmarshal(raw, &elems); err != nil {
			return Value{}, err
		}
		return Value{kind: kind, elems: elems}, nil
	case KindDict:
		var m map[string]Value
		if err := json.Unmarshal(raw, &m); err != nil {
			return Value{}, err
		}
		return Dict(m), nil
	}
	return Value{}, fmt.Errorf("unsupported kind")
}

// decodeJSONDouble accepts a JSON number or one of the strings "NaN",
// "+Inf" and "-Inf", which JSON numbers cannot express.
func decodeJSONDouble(raw json.RawMessage) (Value, error) {
	var name string
	if err := json.Unmarshal(raw, &name); err == nil {
		switch name {
		case "NaN":
			return Double(math.NaN()), nil
		case "+Inf":
			return Double(math.Inf(1)), nil
		case "-Inf":
			return Double(math.Inf(-1)), nil
		}
		return Value{}, fmt.Errorf("invalid double %q", name)
	}

	var f float64
	err := json.Unmarshal(raw, &f)
	return Double(f), err
}
