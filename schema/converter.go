package schema

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"sync"
	"time"

	"github.com/aarondl/null/v8"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// ConvertFunc converts a raw column value into a value of a fixed target type.
type ConvertFunc[T any] func(value any) (T, error)

// converters maps a target reflect.Type to func(any) (any, error).
// Written during init and by RegisterConverter, read concurrently afterwards.
var converters sync.Map

// RegisterConverter installs the converter used for target type T. It
// replaces any converter previously registered for T.
func RegisterConverter[T any](fn ConvertFunc[T]) {
	converters.Store(reflect.TypeFor[T](), func(v any) (any, error) {
		return fn(v)
	})
}

func init() {
	RegisterConverter(convertUUID)
	RegisterConverter(convertULID)
	RegisterConverter(convertTime)
	RegisterConverter(convertRawJSON)

	RegisterConverter(nullable(null.StringFrom))
	RegisterConverter(nullable(null.Int64From))
	RegisterConverter(nullable(null.Int32From))
	RegisterConverter(nullable(null.IntFrom))
	RegisterConverter(nullable(null.Float64From))
	RegisterConverter(nullable(null.BoolFrom))
	RegisterConverter(nullable(null.TimeFrom))
	RegisterConverter(nullable(null.BytesFrom))
}

// Convert converts a raw column value to type to. A nil value yields the zero
// value of to; non-nil pointers are followed.
func Convert(value any, to reflect.Type) (reflect.Value, error) {
	if value == nil {
		return reflect.Zero(to), nil
	}

	v := reflect.ValueOf(value)
	if v.Type().AssignableTo(to) {
		return v, nil
	}

	if fn, ok := converters.Load(to); ok {
		out, err := fn.(func(any) (any, error))(value)
		if err != nil {
			return reflect.Value{}, fmt.Errorf("convert %T to %s: %w", value, to, err)
		}
		return reflect.ValueOf(out), nil
	}

	if v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return reflect.Zero(to), nil
		}
		return Convert(v.Elem().Interface(), to)
	}

	if to.Kind() == reflect.Ptr {
		elem, err := Convert(value, to.Elem())
		if err != nil {
			return reflect.Value{}, err
		}
		ptr := reflect.New(to.Elem())
		ptr.Elem().Set(elem)
		return ptr, nil
	}

	if out, ok := convertKind(v, to); ok {
		return out, nil
	}
	return reflect.Value{}, fmt.Errorf("cannot convert %T to %s", value, to)
}

// convertKind handles conversions between basic kinds that reflect allows
// but that keep their meaning: numeric widening/narrowing within range,
// []byte <-> string and named types over the same underlying kind.
func convertKind(v reflect.Value, to reflect.Type) (reflect.Value, bool) {
	from := v.Type()

	switch {
	case isNumeric(from.Kind()) && isNumeric(to.Kind()):
		if !numberFits(v, to) {
			return reflect.Value{}, false
		}
		return v.Convert(to), true

	case to.Kind() == reflect.String && from.Kind() == reflect.String:
		return v.Convert(to), true

	case to.Kind() == reflect.String && from.Kind() == reflect.Slice && from.Elem().Kind() == reflect.Uint8:
		return reflect.ValueOf(string(v.Bytes())).Convert(to), true

	case to.Kind() == reflect.Slice && to.Elem().Kind() == reflect.Uint8 && from.Kind() == reflect.String:
		return reflect.ValueOf([]byte(v.String())).Convert(to), true

	case to.Kind() == reflect.Bool && from.Kind() == reflect.Bool:
		return v.Convert(to), true

	case to.Kind() == reflect.Bool && isInteger(from.Kind()):
		return reflect.ValueOf(!v.IsZero()).Convert(to), true

	case isNumeric(to.Kind()) && from.Kind() == reflect.String:
		return parseNumber(v.String(), to)

	case from.ConvertibleTo(to) && from.Kind() == to.Kind():
		return v.Convert(to), true
	}
	return reflect.Value{}, false
}

func isInteger(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	}
	return false
}

func isSigned(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return true
	}
	return false
}

func isNumeric(k reflect.Kind) bool {
	return isInteger(k) || k == reflect.Float32 || k == reflect.Float64
}

// numberFits reports whether v converts to a value of type to that reads
// back as the same number. Integers must be in range and keep their sign;
// floats going into integers must be whole.
func numberFits(v reflect.Value, to reflect.Type) bool {
	target := reflect.Zero(to)
	toInt, toSigned := isInteger(to.Kind()), isSigned(to.Kind())

	switch from := v.Kind(); {
	case isSigned(from):
		n := v.Int()
		switch {
		case toSigned:
			return !target.OverflowInt(n)
		case toInt:
			return n >= 0 && !target.OverflowUint(uint64(n))
		}
		return true

	case isInteger(from):
		n := v.Uint()
		switch {
		case toSigned:
			return n <= math.MaxInt64 && !target.OverflowInt(int64(n))
		case toInt:
			return !target.OverflowUint(n)
		}
		return true
	}

	f := v.Float()
	if !toInt {
		return math.IsNaN(f) || math.IsInf(f, 0) || !target.OverflowFloat(f)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return false
	}
	bits := to.Bits()
	if toSigned {
		limit := math.Ldexp(1, bits-1)
		return f >= -limit && f < limit
	}
	return f >= 0 && f < math.Ldexp(1, bits)
}

func parseNumber(s string, to reflect.Type) (reflect.Value, bool) {
	out := reflect.New(to).Elem()
	switch to.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(s, 10, to.Bits())
		if err != nil {
			return reflect.Value{}, false
		}
		out.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(s, 10, to.Bits())
		if err != nil {
			return reflect.Value{}, false
		}
		out.SetUint(n)
	default:
		f, err := strconv.ParseFloat(s, to.Bits())
		if err != nil {
			return reflect.Value{}, false
		}
		out.SetFloat(f)
	}
	return out, true
}

// nullable adapts a null.XxxFrom constructor into a converter for the
// corresponding null type.
func nullable[T, V any](from func(V) T) ConvertFunc[T] {
	target := reflect.TypeFor[V]()
	return func(value any) (T, error) {
		v, err := Convert(value, target)
		if err != nil {
			var zero T
			return zero, err
		}
		return from(v.Interface().(V)), nil
	}
}

func convertUUID(value any) (uuid.UUID, error) {
	switch v := value.(type) {
	case [16]byte:
		return uuid.UUID(v), nil
	case string:
		return uuid.Parse(v)
	case []byte:
		if len(v) == 16 {
			return uuid.FromBytes(v)
		}
		return uuid.ParseBytes(v)
	}
	return uuid.Nil, fmt.Errorf("unsupported source %T", value)
}

func convertULID(value any) (ulid.ULID, error) {
	switch v := value.(type) {
	case [16]byte:
		return ulid.ULID(v), nil
	case string:
		return ulid.Parse(v)
	case []byte:
		var id ulid.ULID
		if len(v) == 16 {
			copy(id[:], v)
			return id, nil
		}
		err := id.UnmarshalText(v)
		return id, err
	}
	return ulid.ULID{}, fmt.Errorf("unsupported source %T", value)
}

func convertTime(value any) (time.Time, error) {
	switch v := value.(type) {
	case string:
		return time.Parse(time.RFC3339Nano, v)
	case []byte:
		return time.Parse(time.RFC3339Nano, string(v))
	case int64:
		return time.Unix(v, 0).UTC(), nil
	}
	return time.Time{}, fmt.Errorf("unsupported source %T", value)
}

func convertRawJSON(value any) (json.RawMessage, error) {
	switch v := value.(type) {
	case string:
		return json.RawMessage(v), nil
	case []byte:
		return json.RawMessage(v), nil
	}
	b, err := json.Marshal(value)
	return json.RawMessage(b), err
}
