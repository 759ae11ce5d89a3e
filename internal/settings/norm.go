package settings

import (
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/roach88/quill/internal/canon"
)

// NormString coerces v to a whitespace-trimmed string. nil becomes "".
// Raw equality on form-bound values is unreliable: optional text fields
// arrive as null vs "", numbers arrive as numeric strings. Every string
// comparison in the dirty evaluators goes through here.
func NormString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(s)
	case json.Number:
		return strings.TrimSpace(s.String())
	case bool:
		if s {
			return "true"
		}
		return "false"
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(s), 'f', -1, 32)
	case int:
		return strconv.Itoa(s)
	case int32:
		return strconv.FormatInt(int64(s), 10)
	case int64:
		return strconv.FormatInt(s, 10)
	default:
		out, err := canon.Stringify(v)
		if err != nil {
			return ""
		}
		return strings.TrimSpace(out)
	}
}

// NormNumber coerces v to a number, falling back when the result is not
// finite or v does not parse. Empty strings and nil fall back too.
func NormNumber(v any, fallback float64) float64 {
	switch n := v.(type) {
	case nil:
		return fallback
	case float64:
		return finiteOr(n, fallback)
	case float32:
		return finiteOr(float64(n), fallback)
	case int:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case bool:
		if n {
			return 1
		}
		return 0
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return fallback
		}
		return finiteOr(f, fallback)
	case string:
		trimmed := strings.TrimSpace(n)
		if trimmed == "" {
			return fallback
		}
		f, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return fallback
		}
		return finiteOr(f, fallback)
	default:
		return fallback
	}
}

func finiteOr(f, fallback float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return fallback
	}
	return f
}

// SetsEqual compares two lists ignoring order but preserving
// duplicates: every element is stringified, both lists are sorted, and
// the results compared element-wise. Multi-select fields arrive in
// UI-dependent order; membership is what matters.
func SetsEqual(a, b []any) bool {
	if len(a) != len(b) {
		return false
	}
	sa, ok := stringifyAll(a)
	if !ok {
		return false
	}
	sb, ok := stringifyAll(b)
	if !ok {
		return false
	}
	slices.Sort(sa)
	slices.Sort(sb)
	return slices.Equal(sa, sb)
}

// StringSetsEqual is SetsEqual for plain string lists.
func StringSetsEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	sa := append([]string(nil), a...)
	sb := append([]string(nil), b...)
	slices.Sort(sa)
	slices.Sort(sb)
	return slices.Equal(sa, sb)
}

// StringList accepts a decoded YAML/JSON sequence or the server's
// comma-separated string encoding of a multi-select field.
func StringList(v any) ([]string, error) {
	switch list := v.(type) {
	case nil:
		return nil, nil
	case []string:
		return append([]string(nil), list...), nil
	case []any:
		out := make([]string, len(list))
		for i, elem := range list {
			out[i] = NormString(elem)
		}
		return out, nil
	case string:
		if strings.TrimSpace(list) == "" {
			return nil, nil
		}
		parts := strings.Split(list, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				out = append(out, trimmed)
			}
		}
		return out, nil
	default:
		return nil, fmt.Errorf("expected a list, got %T", v)
	}
}

func stringifyAll(vals []any) ([]string, bool) {
	out := make([]string, len(vals))
	for i, v := range vals {
		s, err := canon.Stringify(v)
		if err != nil {
			return nil, false
		}
		out[i] = s
	}
	return out, true
}

// FormatToggle renders a 0/1 toggle the way the save actions expect.
func FormatToggle(v int64) string {
	if v != 0 {
		return "1"
	}
	return "0"
}

// FormatNumber renders a number without a trailing ".0" for integral
// values, matching the server's loose numeric encoding.
func FormatNumber(f float64) string {
	if f == math.Trunc(f) && !math.IsInf(f, 0) {
		return fmt.Sprintf("%d", int64(f))
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
