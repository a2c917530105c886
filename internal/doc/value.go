package doc

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"slices"
	"strconv"
	"unicode/utf16"
	"unicode/utf8"
)

// Value is a sealed interface representing a document node.
// Only Null, Bool, Number, String, Array and Object implement it.
type Value interface {
	docValue() // Sealed
}

// Null represents a JSON null.
// An explicit type keeps nil out of documents.
type Null struct{}

func (Null) docValue() {}

// MarshalJSON implements json.Marshaler for Null.
func (Null) MarshalJSON() ([]byte, error) {
	return []byte("null"), nil
}

// Bool represents a boolean.
type Bool bool

func (Bool) docValue() {}

// Number represents a finite JSON number.
type Number float64

func (Number) docValue() {}

// String represents a string. Contents are kept byte-for-byte.
type String string

func (String) docValue() {}

// Array is an ordered sequence of values.
type Array []Value

func (Array) docValue() {}

// Object maps string keys to values. Use SortedKeys() for deterministic iteration.
type Object map[string]Value

func (Object) docValue() {}

// Kind names the variant held by a Value.
type Kind int

const (
	KindInvalid Kind = iota
	KindNull
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "boolean"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "invalid"
	}
}

// KindOf reports the variant of v. A nil Value is KindInvalid.
func KindOf(v Value) Kind {
	switch v.(type) {
	case Null:
		return KindNull
	case Bool:
		return KindBool
	case Number:
		return KindNumber
	case String:
		return KindString
	case Array:
		return KindArray
	case Object:
		return KindObject
	default:
		return KindInvalid
	}
}

// Pair is a key-value pair for Object construction.
type Pair struct {
	Key   string
	Value Value
}

// O is shorthand for Pair.
// Example: NewObject(O("title", String("Hello")), O("count", Number(2)))
func O(key string, value Value) Pair {
	return Pair{Key: key, Value: value}
}

// NewObject builds an Object from pairs. Later pairs overwrite earlier ones.
func NewObject(pairs ...Pair) Object {
	obj := make(Object, len(pairs))
	for _, p := range pairs {
		obj[p.Key] = p.Value
	}
	return obj
}

// Strings builds an Array of String values.
func Strings(ss ...string) Array {
	arr := make(Array, len(ss))
	for i, s := range ss {
		arr[i] = String(s)
	}
	return arr
}

// SortedKeys returns keys in RFC 8785 canonical order (UTF-16 code units).
// Go's sort.Strings compares UTF-8 bytes, which orders some keys differently.
func (obj Object) SortedKeys() []string {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareKeysRFC8785)
	return keys
}

// compareKeysRFC8785 compares strings by UTF-16 code units.
func compareKeysRFC8785(a, b string) int {
	a16 := utf16.Encode([]rune(a))
	b16 := utf16.Encode([]rune(b))

	minLen := min(len(a16), len(b16))
	for i := 0; i < minLen; i++ {
		if a16[i] != b16[i] {
			if a16[i] < b16[i] {
				return -1
			}
			return 1
		}
	}

	if len(a16) < len(b16) {
		return -1
	}
	if len(a16) > len(b16) {
		return 1
	}
	return 0
}

// Validation failures reported by Validate.
var (
	ErrNilValue    = errors.New("nil value")
	ErrNonFinite   = errors.New("number is not finite")
	ErrInvalidUTF8 = errors.New("string is not valid UTF-8")
)

// Validate walks v and reports the first value that cannot be serialized.
// The error names the offending location, e.g. `$.plans[1].price: number is not finite`.
func Validate(v Value) error {
	return validate(v, "$")
}

func validate(v Value, at string) error {
	switch val := v.(type) {
	case nil:
		return fmt.Errorf("%s: %w", at, ErrNilValue)
	case Null, Bool:
		return nil
	case Number:
		if math.IsNaN(float64(val)) || math.IsInf(float64(val), 0) {
			return fmt.Errorf("%s: %w", at, ErrNonFinite)
		}
		return nil
	case String:
		if !utf8.ValidString(string(val)) {
			return fmt.Errorf("%s: %w", at, ErrInvalidUTF8)
		}
		return nil
	case Array:
		for i, elem := range val {
			if err := validate(elem, fmt.Sprintf("%s[%d]", at, i)); err != nil {
				return err
			}
		}
		return nil
	case Object:
		for _, k := range val.SortedKeys() {
			if !utf8.ValidString(k) {
				return fmt.Errorf("%s: key %q: %w", at, k, ErrInvalidUTF8)
			}
			if err := validate(val[k], at+"."+k); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("%s: unknown value type %T", at, v)
	}
}

// Clone returns a deep copy of v. The copy shares no containers with v.
func Clone(v Value) Value {
	switch val := v.(type) {
	case Array:
		if val == nil {
			return Array(nil)
		}
		out := make(Array, len(val))
		for i, elem := range val {
			out[i] = Clone(elem)
		}
		return out
	case Object:
		if val == nil {
			return Object(nil)
		}
		out := make(Object, len(val))
		for k, elem := range val {
			out[k] = Clone(elem)
		}
		return out
	default:
		// Scalars are immutable values.
		return v
	}
}

// Equal reports structural equality. Arrays compare in order, objects
// regardless of key order, numbers by value.
func Equal(a, b Value) bool {
	switch av := a.(type) {
	case nil:
		return b == nil
	case Null:
		_, ok := b.(Null)
		return ok
	case Bool:
		bv, ok := b.(Bool)
		return ok && av == bv
	case Number:
		bv, ok := b.(Number)
		return ok && av == bv
	case String:
		bv, ok := b.(String)
		return ok && av == bv
	case Array:
		bv, ok := b.(Array)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !Equal(av[i], bv[i]) {
				return false
			}
		}
		return true
	case Object:
		bv, ok := b.(Object)
		if !ok || len(av) != len(bv) {
			return false
		}
		for k, elem := range av {
			other, ok := bv[k]
			if !ok || !Equal(elem, other) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// Parse decodes JSON text into a Value. Input that is not valid UTF-8 is
// rejected with ErrInvalidUTF8. Numbers are read through json.Number so large integers keep their digits
// until conversion. Trailing data after the first value is rejected.
func Parse(data []byte) (Value, error) {
	// encoding/json would silently replace invalid bytes with U+FFFD.
	if !utf8.Valid(data) {
		return nil, ErrInvalidUTF8
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("unexpected data after top-level value")
	}

	return FromAny(raw)
}

// FromAny converts a decoded JSON or YAML tree into a Value.
func FromAny(v any) (Value, error) {
	switch val := v.(type) {
	case nil:
		return Null{}, nil
	case Value:
		if err := Validate(val); err != nil {
			return nil, err
		}
		return Clone(val), nil
	case bool:
		return Bool(val), nil
	case string:
		if !utf8.ValidString(val) {
			return nil, ErrInvalidUTF8
		}
		return String(val), nil
	case json.Number:
		f, err := strconv.ParseFloat(string(val), 64)
		if err != nil {
			return nil, fmt.Errorf("number %s: %w", val, err)
		}
		return finite(f)
	case float64:
		return finite(val)
	case float32:
		return finite(float64(val))
	case int:
		return Number(val), nil
	case int64:
		return Number(val), nil
	case int32:
		return Number(val), nil
	case uint64:
		return Number(val), nil
	case uint:
		return Number(val), nil
	case []any:
		arr := make(Array, len(val))
		for i, elem := range val {
			docElem, err := FromAny(elem)
			if err != nil {
				return nil, fmt.Errorf("array[%d]: %w", i, err)
			}
			arr[i] = docElem
		}
		return arr, nil
	case []string:
		return Strings(val...), nil
	case map[string]any:
		obj := make(Object, len(val))
		for k, elem := range val {
			docElem, err := FromAny(elem)
			if err != nil {
				return nil, fmt.Errorf("object[%q]: %w", k, err)
			}
			obj[k] = docElem
		}
		return obj, nil
	case map[any]any:
		obj := make(Object, len(val))
		for k, elem := range val {
			key, ok := k.(string)
			if !ok {
				return nil, fmt.Errorf("object key %v: keys must be strings, got %T", k, k)
			}
			docElem, err := FromAny(elem)
			if err != nil {
				return nil, fmt.Errorf("object[%q]: %w", key, err)
			}
			obj[key] = docElem
		}
		return obj, nil
	default:
		return nil, fmt.Errorf("unsupported type: %T", v)
	}
}

func finite(f float64) (Value, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, ErrNonFinite
	}
	return Number(f), nil
}

// ToAny converts v into plain Go values (nil, bool, float64, string,
// []any, map[string]any). It is the inverse of FromAny.
func ToAny(v Value) any {
	switch val := v.(type) {
	case Bool:
		return bool(val)
	case Number:
		return float64(val)
	case String:
		return string(val)
	case Array:
		out := make([]any, len(val))
		for i, elem := range val {
			out[i] = ToAny(elem)
		}
		return out
	case Object:
		out := make(map[string]any, len(val))
		for k, elem := range val {
			out[k] = ToAny(elem)
		}
		return out
	default:
		return nil
	}
}

// UnmarshalJSON implements json.Unmarshaler for Object.
func (obj *Object) UnmarshalJSON(data []byte) error {
	v, err := Parse(data)
	if err != nil {
		return err
	}
	o, ok := v.(Object)
	if !ok {
		return fmt.Errorf("expected JSON object, got %s", KindOf(v))
	}
	*obj = o
	return nil
}

// UnmarshalJSON implements json.Unmarshaler for Array.
func (arr *Array) UnmarshalJSON(data []byte) error {
	v, err := Parse(data)
	if err != nil {
		return err
	}
	a, ok := v.(Array)
	if !ok {
		return fmt.Errorf("expected JSON array, got %s", KindOf(v))
	}
	*arr = a
	return nil
}

// MarshalJSON implements json.Marshaler for Object using canonical output.
func (obj Object) MarshalJSON() ([]byte, error) {
	return MarshalCanonical(obj)
}

// MarshalJSON implements json.Marshaler for Array using canonical output.
func (arr Array) MarshalJSON() ([]byte, error) {
	return MarshalCanonical(arr)
}

// Raw wraps a Value so it can be embedded as a JSON field of any kind.
// The zero Raw marshals as null.
type Raw struct {
	Value Value
}

// MarshalJSON implements json.Marshaler for Raw.
func (r Raw) MarshalJSON() ([]byte, error) {
	if r.Value == nil {
		return []byte("null"), nil
	}
	return MarshalCanonical(r.Value)
}

// UnmarshalJSON implements json.Unmarshaler for Raw.
func (r *Raw) UnmarshalJSON(data []byte) error {
	v, err := Parse(data)
	if err != nil {
		return err
	}
	r.Value = v
	return nil
}
