// Package reconcile computes minimal add/remove/move operations that
// transform a previous ordered, keyed node list into a new target one.
//
// The package is pure: it never touches display nodes. The binder feeds it
// snapshots (previous keys, pipeline items) and applies the returned
// operations to the live tree, firing add/remove notifications as it goes.
package reconcile

import "strconv"

// Move relocates a surviving key so that it immediately follows After.
// An empty After means the key moves to the front.
type Move struct {
	Key   string
	After string
}

// Result describes the minimal operations for one reconciliation.
type Result struct {
	// Added lists keys absent from the previous set, in target order.
	Added []string
	// Removed lists keys absent from the target set, in previous order.
	Removed []string
	// Moves lists relocations of surviving keys, emitted only when a node
	// is not already immediately following the last-placed one.
	Moves []Move
	// FinalOrder is the ordered target key list after duplicate pruning.
	FinalOrder []string
	// Duplicates lists target keys dropped because an earlier item already
	// produced the same key. Duplicate keys are a caller error; the
	// first-seen occurrence wins deterministically.
	Duplicates []string
}

// Diff computes the minimal operations transforming previous into target.
//
// Set difference runs by key, not by position. The move pass walks the
// target order once and relocates a node only when it is not already
// immediately following the last-placed node, which minimizes physical
// moves: previous [a,b,c] against target [a,c,b] yields no adds, no
// removes and exactly one move.
func Diff(previous, target []string) Result {
	var res Result

	prevSet := make(map[string]struct{}, len(previous))
	for _, k := range previous {
		prevSet[k] = struct{}{}
	}

	// Prune duplicate target keys, keeping the first occurrence.
	seen := make(map[string]struct{}, len(target))
	final := make([]string, 0, len(target))
	for _, k := range target {
		if _, dup := seen[k]; dup {
			res.Duplicates = append(res.Duplicates, k)
			continue
		}
		seen[k] = struct{}{}
		final = append(final, k)
	}
	res.FinalOrder = final

	// removed = previous − target
	working := make([]string, 0, len(previous))
	for _, k := range previous {
		if _, ok := seen[k]; ok {
			working = append(working, k)
		} else {
			res.Removed = append(res.Removed, k)
		}
	}

	// Walk the target order; insert fresh keys and move survivors only
	// when out of place.
	last := -1 // index in working of the last-placed key
	for _, k := range final {
		if _, existed := prevSet[k]; !existed {
			res.Added = append(res.Added, k)
			working = insertAt(working, last+1, k)
			last++
			continue
		}

		pos := indexOf(working, k)
		if pos == last+1 {
			last = pos
			continue
		}

		after := ""
		if last >= 0 {
			after = working[last]
		}
		res.Moves = append(res.Moves, Move{Key: k, After: after})
		working = append(working[:pos], working[pos+1:]...)
		working = insertAt(working, last+1, k)
		last++
	}

	return res
}

// RangeKeys builds the target key list for range-based repetition: the
// integers in [from, to], each filtered by the optional predicate. The
// add/remove/reuse algorithm is the same one collection repeaters use;
// sort/distinct/skip/limit do not apply to the range form.
func RangeKeys(from, to int, pred func(int) bool) []string {
	if to < from {
		return nil
	}
	keys := make([]string, 0, to-from+1)
	for i := from; i <= to; i++ {
		if pred != nil && !pred(i) {
			continue
		}
		keys = append(keys, strconv.Itoa(i))
	}
	return keys
}

func indexOf(keys []string, k string) int {
	for i, key := range keys {
		if key == k {
			return i
		}
	}
	return -1
}

func insertAt(keys []string, i int, k string) []string {
	keys = append(keys, "")
	copy(keys[i+1:], keys[i:])
	keys[i] = k
	return keys
}
