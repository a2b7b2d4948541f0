package schema

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/spf13/cast"
)

// numberToken matches the first numeric token in a string carrying units,
// e.g. "5000 mAh" or "₹79,999".
var numberToken = regexp.MustCompile(`[-+]?\d[\d,]*(?:\.\d+)?`)

// Coerce converts a raw value into the canonical kind's representation.
// Rules, in order of application per kind:
//
//   - string: any scalar via cast
//   - number: numeric types directly; strings have units stripped first
//   - bool: yes/no/true/false variants
//   - string_list: lists element-wise; scalars lift to a one-element list
//   - group: nested mappings pass through
func Coerce(value any, kind Kind) (any, error) {
	switch kind {
	case KindString:
		s, err := cast.ToStringE(value)
		if err != nil {
			return nil, err
		}
		return strings.TrimSpace(s), nil

	case KindNumber:
		return coerceNumber(value)

	case KindBool:
		return coerceBool(value)

	case KindStringList:
		return coerceStringList(value)

	case KindGroup:
		m, ok := value.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("expected nested mapping, got %T", value)
		}
		return m, nil

	default:
		return nil, fmt.Errorf("unknown kind %q", kind)
	}
}

func coerceNumber(value any) (float64, error) {
	switch v := value.(type) {
	case string:
		token := numberToken.FindString(v)
		if token == "" {
			return 0, fmt.Errorf("no numeric token in %q", v)
		}
		token = strings.ReplaceAll(token, ",", "")
		return cast.ToFloat64E(token)
	default:
		return cast.ToFloat64E(value)
	}
}

func coerceBool(value any) (bool, error) {
	switch v := value.(type) {
	case bool:
		return v, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "yes", "y", "true", "1":
			return true, nil
		case "no", "n", "false", "0":
			return false, nil
		default:
			return cast.ToBoolE(v)
		}
	default:
		return cast.ToBoolE(value)
	}
}

func coerceStringList(value any) ([]string, error) {
	switch v := value.(type) {
	case []string:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s := strings.TrimSpace(item); s != "" {
				out = append(out, s)
			}
		}
		return out, nil
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, err := cast.ToStringE(item)
			if err != nil {
				return nil, fmt.Errorf("list element %v: %w", item, err)
			}
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
		return out, nil
	case map[string]any:
		return nil, fmt.Errorf("expected list or scalar, got nested mapping")
	default:
		// Scalar lifts to a single-element list.
		s, err := cast.ToStringE(value)
		if err != nil {
			return nil, err
		}
		if s = strings.TrimSpace(s); s == "" {
			return []string{}, nil
		}
		return []string{s}, nil
	}
}
