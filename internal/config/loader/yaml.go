package loader

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

func decodeYAML(source string, data []byte) (any, error) {
	var v any
	if err := yaml.Unmarshal(data, &v); err != nil {
		perr := &ParseError{Path: source, Message: err.Error(), Err: err}
		var typeErr *yaml.TypeError
		if errors.As(err, &typeErr) {
			perr.Message = fmt.Sprintf("%v", typeErr.Errors)
		}
		return nil, perr
	}
	return normalize(v), nil
}

// normalize rewrites map[any]any nodes, which yaml produces for non-string
// keys, into map[string]any.
func normalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, val := range t {
			t[k] = normalize(val)
		}
		return t
	case map[any]any:
		m := make(map[string]any, len(t))
		for k, val := range t {
			m[fmt.Sprint(k)] = normalize(val)
		}
		return m
	case []any:
		for i, val := range t {
			t[i] = normalize(val)
		}
		return t
	default:
		return v
	}
}
