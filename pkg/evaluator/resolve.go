package evaluator

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/anders-frisk/JSBinder/pkg/types"
)

// Path resolution: turns a raw dotted/bracketed access string into a value
// lookup against the state tree. Absence along the path never raises; it
// propagates as undefined (nil).

// forbiddenSegments are property names that would traverse into shared
// structure on a prototype-based host. They are rejected outright so an
// expression can never reach them, on any host.
var forbiddenSegments = map[string]struct{}{
	"__proto__":   {},
	"constructor": {},
	"prototype":   {},
}

// Resolve looks up the raw path against the state tree.
//
// Literal recognition short-circuits path resolution entirely: integers,
// floats, quoted strings, true/false/null/undefined, NaN and Infinity are
// returned as values without touching the state. Index placeholders of the
// form {tok} are replaced via the index map before segmentation; an unknown
// placeholder resolves the whole path to undefined.
func Resolve(path string, evalCtx *Context) (interface{}, error) {
	raw := strings.TrimSpace(path)
	if raw == "" {
		return nil, nil
	}

	if v, ok := recognizeLiteral(raw); ok {
		return v, nil
	}

	substituted, ok := substitutePlaceholders(raw, evalCtx.Indexes)
	if !ok {
		return nil, nil
	}
	if substituted != raw {
		// A path that collapses to a bare literal after substitution
		// (e.g. "{tok}" in a range repeater) is a literal, not a lookup.
		if v, isLit := recognizeLiteral(substituted); isLit {
			return v, nil
		}
	}
	raw = substituted

	segments, err := segmentPath(raw)
	if err != nil {
		return nil, err
	}

	// Forbidden segments are rejected regardless of what the state holds;
	// absence must not mask the violation.
	for _, seg := range segments {
		if _, forbidden := forbiddenSegments[seg.key]; forbidden {
			return nil, types.NewError(types.ErrForbiddenPath, fmt.Sprintf("forbidden path segment %q", seg.key), -1)
		}
	}

	current := evalCtx.State
	for _, seg := range segments {
		if current == nil {
			return nil, nil
		}
		current = lookupSegment(current, seg)
	}

	return current, nil
}

// recognizeLiteral maps literal path tokens to their values.
func recognizeLiteral(raw string) (interface{}, bool) {
	switch raw {
	case "true":
		return true, true
	case "false":
		return false, true
	case "null":
		return types.NullValue, true
	case "undefined":
		return nil, true
	case "NaN":
		return math.NaN(), true
	case "Infinity":
		return math.Inf(1), true
	}

	if len(raw) >= 2 {
		if q := raw[0]; (q == '\'' || q == '"') && raw[len(raw)-1] == q {
			return raw[1 : len(raw)-1], true
		}
	}

	if c := raw[0]; c == '-' || c == '+' || (c >= '0' && c <= '9') {
		if f, err := strconv.ParseFloat(raw, 64); err == nil {
			return f, true
		}
	}

	return nil, false
}

// substitutePlaceholders replaces every {tok} with the token's current
// numeric index. Returns ok=false when a token is not present in the map.
func substitutePlaceholders(raw string, indexes IndexMap) (string, bool) {
	if !strings.Contains(raw, "{") {
		return raw, true
	}

	var b strings.Builder
	b.Grow(len(raw))
	for i := 0; i < len(raw); i++ {
		if raw[i] != '{' {
			b.WriteByte(raw[i])
			continue
		}
		end := strings.IndexByte(raw[i:], '}')
		if end < 0 {
			b.WriteString(raw[i:])
			break
		}
		tok := raw[i+1 : i+end]
		idx, ok := indexes[tok]
		if !ok {
			return "", false
		}
		b.WriteString(strconv.Itoa(idx))
		i += end
	}
	return b.String(), true
}

// segment is one step of a path: either a string key or a numeric index.
type segment struct {
	key     string
	index   int
	isIndex bool
}

// segmentPath splits a substituted path into segments. Dots separate keys;
// bracket groups hold an integer index or a quoted key.
func segmentPath(raw string) ([]segment, error) {
	var segs []segment
	i := 0
	for i < len(raw) {
		switch raw[i] {
		case '.':
			i++
		case '[':
			end := strings.IndexByte(raw[i:], ']')
			if end < 0 {
				return nil, types.NewError(types.ErrBracketNotClosed, fmt.Sprintf("unterminated bracket in path %q", raw), -1)
			}
			inner := strings.TrimSpace(raw[i+1 : i+end])
			segs = append(segs, bracketSegment(inner))
			i += end + 1
		default:
			j := i
			for j < len(raw) && raw[j] != '.' && raw[j] != '[' {
				j++
			}
			segs = append(segs, segment{key: raw[i:j]})
			i = j
		}
	}
	return segs, nil
}

// bracketSegment interprets the content of one bracket group.
func bracketSegment(inner string) segment {
	if len(inner) >= 2 {
		if q := inner[0]; (q == '\'' || q == '"') && inner[len(inner)-1] == q {
			return segment{key: inner[1 : len(inner)-1]}
		}
	}
	if idx, err := strconv.Atoi(inner); err == nil {
		return segment{index: idx, isIndex: true}
	}
	return segment{key: inner}
}

// lookupSegment applies one segment to the current value.
// Any mismatch (wrong container kind, missing key, index out of range)
// yields undefined.
func lookupSegment(current interface{}, seg segment) interface{} {
	if seg.isIndex {
		list, ok := current.([]interface{})
		if !ok || seg.index < 0 || seg.index >= len(list) {
			return nil
		}
		return list[seg.index]
	}

	switch c := current.(type) {
	case map[string]interface{}:
		return c[seg.key]
	case []interface{}:
		// A numeric key applied to a sequence acts as an index.
		if idx, err := strconv.Atoi(seg.key); err == nil && idx >= 0 && idx < len(c) {
			return c[idx]
		}
		if seg.key == "length" {
			return float64(len(c))
		}
		return nil
	case string:
		if seg.key == "length" {
			return float64(len(c))
		}
		return nil
	default:
		return nil
	}
}
