package reconcile

import "sort"

// Item is one source element flowing through the repeater pipeline,
// together with the values its key/filter/sort/distinct expressions
// evaluated to. The caller (the binder's repeater update) evaluates the
// expressions; the pipeline only orders and prunes.
type Item struct {
	Key         string      // computed unique key
	Index       int         // index in the source sequence
	Value       interface{} // snapshot of the source item
	SortKey     interface{} // evaluated sort-key expression, if any
	DistinctKey interface{} // evaluated distinct-key expression, if any
	Keep        bool        // evaluated filter expression (true when no filter)
}

// PipelineOptions selects which stages apply. The stage order is fixed:
// filter → sort → distinct → skip → limit.
type PipelineOptions struct {
	// Sort enables the sort stage using Comparer over Item.SortKey.
	Sort bool
	// Comparer orders sort keys; nil falls back to the default comparer.
	Comparer *Comparer
	// Distinct enables the distinct stage over Item.DistinctKey, keeping
	// the last occurrence of each distinct value in source order.
	Distinct bool
	// Skip drops the first n items after filter/sort/distinct. Negative
	// means no skip.
	Skip int
	// Limit caps the item count after skip. Negative means no limit.
	Limit int
}

// Apply runs the repeater pipeline over items and returns the ordered
// target list. The input slice is not modified.
func Apply(items []Item, opts PipelineOptions) []Item {
	out := make([]Item, 0, len(items))
	for _, it := range items {
		if it.Keep {
			out = append(out, it)
		}
	}

	if opts.Sort {
		cmp := opts.Comparer
		if cmp == nil {
			cmp = NewDefaultComparer()
		}
		sort.SliceStable(out, func(i, j int) bool {
			return cmp.Compare(out[i].SortKey, out[j].SortKey) < 0
		})
	}

	if opts.Distinct {
		out = distinctLast(out)
	}

	if opts.Skip > 0 {
		if opts.Skip >= len(out) {
			out = out[:0]
		} else {
			out = out[opts.Skip:]
		}
	}

	if opts.Limit >= 0 && opts.Limit < len(out) {
		out = out[:opts.Limit]
	}

	return out
}

// distinctLast keeps, for each distinct key value, the occurrence with the
// highest source index (the last one in source order). The relative order
// of the surviving items is preserved.
func distinctLast(items []Item) []Item {
	winners := make(map[string]int, len(items))
	for _, it := range items {
		k := displayString(it.DistinctKey)
		if prev, ok := winners[k]; !ok || it.Index > prev {
			winners[k] = it.Index
		}
	}

	out := items[:0:0]
	for _, it := range items {
		if winners[displayString(it.DistinctKey)] == it.Index {
			out = append(out, it)
		}
	}
	return out
}
