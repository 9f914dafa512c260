// Package layer holds the map helpers used to merge configuration fragments.
package layer

import "strings"

// DeepMerge folds fragment into base and returns base. A key holding a map on
// both sides merges key by key, so two fragments naming different targets of
// one task end up side by side. Any other value from fragment, lists
// included, takes the place of what base held. fragment is never aliased by
// the result.
func DeepMerge(base, fragment map[string]any) map[string]any {
	if base == nil {
		base = make(map[string]any, len(fragment))
	}
	for key, next := range fragment {
		base[key] = mergeValue(base[key], next)
	}
	return base
}

func mergeValue(prev, next any) any {
	nextMap, ok := next.(map[string]any)
	if !ok {
		return copyValue(next)
	}
	prevMap, ok := prev.(map[string]any)
	if !ok {
		return copyValue(nextMap)
	}
	return DeepMerge(prevMap, nextMap)
}

// Clone returns a copy of m sharing no maps or lists with it.
func Clone(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out, _ := copyValue(m).(map[string]any)
	return out
}

func copyValue(v any) any {
	switch v := v.(type) {
	case map[string]any:
		if v == nil {
			return v
		}
		out := make(map[string]any, len(v))
		for k, item := range v {
			out[k] = copyValue(item)
		}
		return out
	case []any:
		if v == nil {
			return v
		}
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = copyValue(item)
		}
		return out
	default:
		return v
	}
}

// GetByPath reads a dotted path such as "build.dist.src". An empty path
// returns data itself.
func GetByPath(data map[string]any, path string) (any, bool) {
	if data == nil {
		return nil, false
	}
	if path == "" {
		return data, true
	}

	var cur any = data
	for _, key := range strings.Split(path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		if cur, ok = m[key]; !ok {
			return nil, false
		}
	}
	return cur, true
}

// SetByPath writes value at a dotted path. Missing or non-map intermediate
// keys are replaced with empty maps.
func SetByPath(data map[string]any, path string, value any) {
	if data == nil || path == "" {
		return
	}

	keys := strings.Split(path, ".")
	last := len(keys) - 1
	cur := data
	for _, key := range keys[:last] {
		child, ok := cur[key].(map[string]any)
		if !ok {
			child = map[string]any{}
			cur[key] = child
		}
		cur = child
	}
	cur[keys[last]] = value
}
