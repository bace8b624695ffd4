package evaluator

// Exported value helpers for collaborators (the binder and its directive
// handlers) so they share the evaluator's coercion semantics instead of
// reimplementing them.

// Display returns the display string form of a value: "undefined" for nil,
// "null" for explicit null, host-style number formatting for numerics.
func Display(v interface{}) string {
	return toString(v)
}

// Truthy reports host-language truthiness of v.
func Truthy(v interface{}) bool {
	return truthy(v)
}

// Number converts v to a float64 using host coercion rules.
func Number(v interface{}) float64 {
	return toNumber(v)
}

// Identical reports whether two values are indistinguishable for change
// detection: scalars compare by value, objects and arrays by reference
// identity (no deep comparison).
func Identical(a, b interface{}) bool {
	return strictEqual(a, b)
}
