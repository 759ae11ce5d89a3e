// Package canon produces a deterministic, key-order-independent string
// form of JSON-like values. Two values stringify identically iff they
// are deeply equal up to object key ordering. This is the single
// serialization used anywhere the console needs deep equality: dirty
// detection, set comparison, snapshot hashing.
package canon

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
)

// Stringify serializes v into canonical form.
//
// Rules:
//   - nil serializes to the literal "null"
//   - scalars use standard JSON encoding (no HTML escaping)
//   - arrays serialize element-wise in order (order is significant)
//   - object keys are sorted lexicographically, recursively
//
// Accepts the value shapes encoding/json produces (map[string]any,
// []any, string, bool, float64, json.Number) plus native Go ints and
// typed structs, which are flattened through a JSON round-trip.
func Stringify(v any) (string, error) {
	b, err := marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// MustStringify is Stringify for values already known to be JSON-safe.
// Panics on unserializable input; callers feeding form-bound values
// should prefer Stringify.
func MustStringify(v any) string {
	s, err := Stringify(v)
	if err != nil {
		panic(fmt.Sprintf("canon: %v", err))
	}
	return s
}

// Equal reports whether a and b are deeply equal up to key ordering.
// Unserializable values are never equal to anything.
func Equal(a, b any) bool {
	sa, err := Stringify(a)
	if err != nil {
		return false
	}
	sb, err := Stringify(b)
	if err != nil {
		return false
	}
	return sa == sb
}

func marshal(v any) ([]byte, error) {
	switch val := v.(type) {
	case nil:
		return []byte("null"), nil
	case string:
		return marshalScalar(val)
	case bool:
		if val {
			return []byte("true"), nil
		}
		return []byte("false"), nil
	case int:
		return []byte(fmt.Sprintf("%d", val)), nil
	case int32:
		return []byte(fmt.Sprintf("%d", val)), nil
	case int64:
		return []byte(fmt.Sprintf("%d", val)), nil
	case float32:
		return marshalScalar(val)
	case float64:
		return marshalScalar(val)
	case json.Number:
		// Numbers pass through verbatim so "1" and 1 stay distinct
		// as strings vs numbers but 1 and 1 agree across decodes.
		return []byte(val.String()), nil
	case []any:
		return marshalArray(val)
	case []string:
		arr := make([]any, len(val))
		for i, s := range val {
			arr[i] = s
		}
		return marshalArray(arr)
	case map[string]any:
		return marshalObject(val)
	default:
		// Structs and other typed values: flatten through encoding/json
		// into the generic shapes above, then re-canonicalize.
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("canon: unsupported value %T: %w", v, err)
		}
		var generic any
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.UseNumber()
		if err := dec.Decode(&generic); err != nil {
			return nil, fmt.Errorf("canon: re-decode %T: %w", v, err)
		}
		return marshal(generic)
	}
}

// marshalScalar encodes a scalar with HTML escaping disabled so that
// <, > and & survive verbatim.
func marshalScalar(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	result := buf.Bytes()
	// json.Encoder appends a trailing newline.
	if len(result) > 0 && result[len(result)-1] == '\n' {
		result = result[:len(result)-1]
	}
	return result, nil
}

func marshalArray(arr []any) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, elem := range arr {
		if i > 0 {
			buf.WriteByte(',')
		}
		elemBytes, err := marshal(elem)
		if err != nil {
			return nil, fmt.Errorf("array[%d]: %w", i, err)
		}
		buf.Write(elemBytes)
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

func marshalObject(obj map[string]any) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		keyBytes, err := marshalScalar(k)
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", k, err)
		}
		buf.Write(keyBytes)
		buf.WriteByte(':')

		valBytes, err := marshal(obj[k])
		if err != nil {
			return nil, fmt.Errorf("value for key %q: %w", k, err)
		}
		buf.Write(valBytes)
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}
