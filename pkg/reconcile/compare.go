package reconcile

import (
	"strconv"
	"strings"
	"sync"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Comparer implements the mixed alphanumeric sort-key comparison:
// numeric values compare numerically and sort after all non-numeric values;
// non-numeric values compare through a locale-aware, case-insensitive,
// numeric-substring-aware collator.
type Comparer struct {
	mu sync.Mutex
	c  *collate.Collator
}

// NewComparer creates a Comparer for the given locale.
func NewComparer(tag language.Tag) *Comparer {
	return &Comparer{
		c: collate.New(tag, collate.Loose, collate.Numeric),
	}
}

// NewDefaultComparer creates a locale-neutral Comparer.
func NewDefaultComparer() *Comparer {
	return NewComparer(language.Und)
}

// Compare returns -1, 0 or +1 ordering a before/equal/after b.
func (cmp *Comparer) Compare(a, b interface{}) int {
	af, aNum := numericValue(a)
	bf, bNum := numericValue(b)

	switch {
	case aNum && bNum:
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		default:
			return 0
		}
	case aNum:
		return 1 // numeric sorts after non-numeric
	case bNum:
		return -1
	default:
		cmp.mu.Lock()
		defer cmp.mu.Unlock()
		return cmp.c.CompareString(displayString(a), displayString(b))
	}
}

// numericValue reports whether v is a number or a numeric string, and its
// numeric value.
func numericValue(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint64:
		return float64(n), true
	case string:
		s := strings.TrimSpace(n)
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// displayString renders a value for collation or distinct-key bucketing.
func displayString(v interface{}) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case bool:
		if s {
			return "true"
		}
		return "false"
	default:
		if f, ok := numericValue(v); ok {
			return strconv.FormatFloat(f, 'f', -1, 64)
		}
		return ""
	}
}
