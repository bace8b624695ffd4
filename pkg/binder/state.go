package binder

import (
	"fmt"
	"strings"

	"github.com/anders-frisk/JSBinder/pkg/evaluator"
)

// State ownership: the runtime instance owns the state tree exclusively.
// External callers replace subtrees through Merge, the single mutation
// entry point, and read through Value/State which hand out defensive
// copies. A merge flags needs-refresh instead of re-rendering
// synchronously, which prevents reentrant render-during-render bugs.

// Merge replaces or deep-merges the subtree at path with value and marks
// the runtime for refresh. An empty path addresses the root; maps merge
// recursively, everything else replaces. The incoming value is copied, so
// the caller keeps no handle into the state tree.
func (b *Binder) Merge(path string, value interface{}) error {
	v := deepCopy(value)

	if strings.TrimSpace(path) == "" {
		m, ok := v.(map[string]interface{})
		if !ok {
			return fmt.Errorf("root merge requires a mapping, got %T", value)
		}
		mergeMap(b.state, m)
		b.needsRefresh = true
		return nil
	}

	parent, last, err := walkToParent(b.state, path)
	if err != nil {
		return err
	}

	if existing, ok := parent[last].(map[string]interface{}); ok {
		if m, isMap := v.(map[string]interface{}); isMap {
			mergeMap(existing, m)
			b.needsRefresh = true
			return nil
		}
	}
	parent[last] = v
	b.needsRefresh = true
	return nil
}

// Delete removes the value at path and marks the runtime for refresh.
func (b *Binder) Delete(path string) error {
	parent, last, err := walkToParent(b.state, path)
	if err != nil {
		return err
	}
	delete(parent, last)
	b.needsRefresh = true
	return nil
}

// Value resolves path against the state tree and returns a defensive copy
// of the result. Absent paths yield nil.
func (b *Binder) Value(path string) (interface{}, error) {
	v, err := evaluator.Resolve(path, &evaluator.Context{State: b.state, Indexes: b.indexes})
	if err != nil {
		return nil, err
	}
	return deepCopy(v), nil
}

// State returns a defensive deep copy of the whole state tree.
func (b *Binder) State() map[string]interface{} {
	return deepCopy(b.state).(map[string]interface{})
}

// walkToParent descends dotted segments of path, materializing intermediate
// maps, and returns the parent map plus the final segment name.
func walkToParent(root map[string]interface{}, path string) (map[string]interface{}, string, error) {
	segs := strings.Split(path, ".")
	parent := root
	for _, seg := range segs[:len(segs)-1] {
		next, ok := parent[seg]
		if !ok {
			m := make(map[string]interface{})
			parent[seg] = m
			parent = m
			continue
		}
		m, ok := next.(map[string]interface{})
		if !ok {
			return nil, "", fmt.Errorf("path %q crosses a non-mapping at %q", path, seg)
		}
		parent = m
	}
	return parent, segs[len(segs)-1], nil
}

// mergeMap recursively merges src into dst.
func mergeMap(dst, src map[string]interface{}) {
	for k, v := range src {
		if dm, ok := dst[k].(map[string]interface{}); ok {
			if sm, ok := v.(map[string]interface{}); ok {
				mergeMap(dm, sm)
				continue
			}
		}
		dst[k] = v
	}
}

// deepCopy clones mapping and sequence nodes; scalars are returned as-is.
func deepCopy(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, e := range t {
			out[k] = deepCopy(e)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, e := range t {
			out[i] = deepCopy(e)
		}
		return out
	default:
		return v
	}
}
