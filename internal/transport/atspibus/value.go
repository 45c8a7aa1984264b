package atspibus

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"

	"github.com/godbus/dbus/v5"

	"github.com/dshills/a11ybus/internal/event"
)

// ErrUnsupportedType is matched by errors for Go values with no dynamic
// value counterpart.
var ErrUnsupportedType = errors.New("unsupported value type")

// ValueFromGo converts a value decoded by godbus. Variants are unwrapped;
// []interface{} is a struct, as godbus decodes structs inside variants;
// other slices are arrays and string-keyed maps are dictionaries.
func ValueFromGo(v any) (event.Value, error) {
	switch x := v.(type) {
	case dbus.Variant:
		return ValueFromGo(x.Value())
	case byte:
		return event.Byte(x), nil
	case bool:
		return event.Bool(x), nil
	case int16:
		return event.Int16(x), nil
	case uint16:
		return event.Uint16(x), nil
	case int32:
		return event.Int32(x), nil
	case uint32:
		return event.Uint32(x), nil
	case int64:
		return event.Int64(x), nil
	case uint64:
		return event.Uint64(x), nil
	case float64:
		return event.Double(x), nil
	case string:
		return event.String(x), nil
	case dbus.ObjectPath:
		return event.ObjectPath(string(x)), nil
	case dbus.Signature:
		return event.Signature(x.String()), nil
	case []any:
		fields, err := valuesFromGo(x)
		if err != nil {
			return event.Value{}, err
		}
		return event.Struct(fields...), nil
	case map[string]dbus.Variant:
		return dictFromGo(x)
	case nil:
		return event.Value{}, fmt.Errorf("%w: nil", ErrUnsupportedType)
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		elems := make([]event.Value, rv.Len())
		for i := range elems {
			e, err := ValueFromGo(rv.Index(i).Interface())
			if err != nil {
				return event.Value{}, fmt.Errorf("element %d: %w", i, err)
			}
			elems[i] = e
		}
		return event.Array(elems...), nil

	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return event.Value{}, fmt.Errorf("%w: %T", ErrUnsupportedType, v)
		}
		m := make(map[string]event.Value, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			e, err := ValueFromGo(iter.Value().Interface())
			if err != nil {
				return event.Value{}, fmt.Errorf("key %q: %w", iter.Key().String(), err)
			}
			m[iter.Key().String()] = e
		}
		return event.Dict(m), nil

	case reflect.Struct:
		fields := make([]event.Value, rv.NumField())
		for i := range fields {
			f, err := ValueFromGo(rv.Field(i).Interface())
			if err != nil {
				return event.Value{}, fmt.Errorf("field %d: %w", i, err)
			}
			fields[i] = f
		}
		return event.Struct(fields...), nil
	}

	return event.Value{}, fmt.Errorf("%w: %T", ErrUnsupportedType, v)
}

func valuesFromGo(src []any) ([]event.Value, error) {
	out := make([]event.Value, len(src))
	for i, x := range src {
		v, err := ValueFromGo(x)
		if err != nil {
			return nil, fmt.Errorf("field %d: %w", i, err)
		}
		out[i] = v
	}
	return out, nil
}

func dictFromGo(src map[string]dbus.Variant) (event.Value, error) {
	m := make(map[string]event.Value, len(src))
	for k, x := range src {
		v, err := ValueFromGo(x)
		if err != nil {
			return event.Value{}, fmt.Errorf("key %q: %w", k, err)
		}
		m[k] = v
	}
	return event.Dict(m), nil
}

// ToGo converts a dynamic value to the Go form godbus encodes with the
// same signature. Structs become generated struct types; homogeneous
// arrays become typed slices and other arrays become []dbus.Variant.
func ToGo(v event.Value) (any, error) {
	switch v.Kind() {
	case event.KindByte:
		x, _ := v.AsByte()
		return x, nil
	case event.KindBool:
		x, _ := v.AsBool()
		return x, nil
	case event.KindInt16:
		x, _ := v.AsInt16()
		return x, nil
	case event.KindUint16:
		x, _ := v.AsUint16()
		return x, nil
	case event.KindInt32:
		x, _ := v.AsInt32()
		return x, nil
	case event.KindUint32:
		x, _ := v.AsUint32()
		return x, nil
	case event.KindInt64:
		x, _ := v.AsInt64()
		return x, nil
	case event.KindUint64:
		x, _ := v.AsUint64()
		return x, nil
	case event.KindDouble:
		x, _ := v.AsDouble()
		return x, nil
	case event.KindString:
		x, _ := v.AsString()
		return x, nil
	case event.KindObjectPath:
		x, _ := v.AsObjectPath()
		return dbus.ObjectPath(x), nil
	case event.KindSignature:
		x, _ := v.AsSignature()
		sig, err := dbus.ParseSignature(x)
		if err != nil {
			return nil, err
		}
		return sig, nil
	case event.KindArray:
		elems, _ := v.Elems()
		return arrayToGo(elems)
	case event.KindStruct:
		elems, _ := v.Elems()
		return structToGo(elems)
	case event.KindDict:
		m, _ := v.AsDict()
		return DictToGo(m)
	}
	return nil, fmt.Errorf("%w: %s value", ErrUnsupportedType, v.Kind())
}

// DictToGo converts a property map to a{sv}.
func DictToGo(m map[string]event.Value) (map[string]dbus.Variant, error) {
	out := make(map[string]dbus.Variant, len(m))
	for k, v := range m {
		x, err := ToGo(v)
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", k, err)
		}
		out[k] = dbus.MakeVariant(x)
	}
	return out, nil
}

func arrayToGo(elems []event.Value) (any, error) {
	xs := make([]any, len(elems))
	var typ reflect.Type
	homogeneous := len(elems) > 0
	for i, e := range elems {
		x, err := ToGo(e)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		xs[i] = x
		t := reflect.TypeOf(x)
		if i == 0 {
			typ = t
		} else if t != typ {
			homogeneous = false
		}
	}

	if !homogeneous {
		out := make([]dbus.Variant, len(xs))
		for i, x := range xs {
			out[i] = dbus.MakeVariant(x)
		}
		return out, nil
	}

	out := reflect.MakeSlice(reflect.SliceOf(typ), len(xs), len(xs))
	for i, x := range xs {
		out.Index(i).Set(reflect.ValueOf(x))
	}
	return out.Interface(), nil
}

func structToGo(elems []event.Value) (any, error) {
	if len(elems) == 0 {
		return nil, fmt.Errorf("%w: empty struct", ErrUnsupportedType)
	}

	fields := make([]reflect.StructField, len(elems))
	xs := make([]reflect.Value, len(elems))
	for i, e := range elems {
		x, err := ToGo(e)
		if err != nil {
			return nil, fmt.Errorf("field %d: %w", i, err)
		}
		xs[i] = reflect.ValueOf(x)
		fields[i] = reflect.StructField{Name: "F" + strconv.Itoa(i), Type: xs[i].Type()}
	}

	out := reflect.New(reflect.StructOf(fields)).Elem()
	for i, x := range xs {
		out.Field(i).Set(x)
	}
	return out.Interface(), nil
}
