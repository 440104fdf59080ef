// Package tree reads and writes dotted paths in decoded JSON-like values.
//
// A tree is built from map[string]any, []any and scalars. Path segments
// are separated by '.', and a numeric segment indexes a sequence.
package tree

import (
	"strconv"
	"strings"
)

// Get returns the value at path, or false if any segment is missing.
func Get(root map[string]any, path string) (any, bool) {
	if path == "" {
		return root, true
	}
	var cur any = root
	for _, seg := range strings.Split(path, ".") {
		switch node := cur.(type) {
		case map[string]any:
			v, ok := node[seg]
			if !ok {
				return nil, false
			}
			cur = v
		case []any:
			i, err := strconv.Atoi(seg)
			if err != nil {
				return nil, false
			}
			if i < 0 {
				i += len(node)
			}
			if i < 0 || i >= len(node) {
				return nil, false
			}
			cur = node[i]
		default:
			return nil, false
		}
	}
	return cur, true
}

// Has reports whether path resolves to a non-nil value.
func Has(root map[string]any, path string) bool {
	v, ok := Get(root, path)
	return ok && v != nil
}

// Set writes value at path, creating intermediate maps as needed.
// It returns false if an existing non-map value is in the way.
func Set(root map[string]any, path string, value any) bool {
	segs := strings.Split(path, ".")
	cur := root
	for _, seg := range segs[:len(segs)-1] {
		next, ok := cur[seg]
		if !ok || next == nil {
			m := map[string]any{}
			cur[seg] = m
			cur = m
			continue
		}
		m, ok := next.(map[string]any)
		if !ok {
			return false
		}
		cur = m
	}
	cur[segs[len(segs)-1]] = value
	return true
}

// Clone deep-copies maps and sequences. Scalars are shared.
func Clone(v any) any {
	switch node := v.(type) {
	case map[string]any:
		return CloneMap(node)
	case []any:
		out := make([]any, len(node))
		for i, e := range node {
			out[i] = Clone(e)
		}
		return out
	default:
		return v
	}
}

// CloneMap deep-copies a map.
func CloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, e := range m {
		out[k] = Clone(e)
	}
	return out
}
