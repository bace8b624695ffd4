package evaluator

// IndexMap is the side table from synthetic per-item key to resolved numeric
// source index. The resolver consults it when a path contains an index
// placeholder of the form {tok}. Entries are overwritten on every refresh
// cycle and never removed; lookups are always freshly keyed.
type IndexMap map[string]int

// Context carries the inputs of a single evaluation: the state tree and the
// index map. It is an explicit parameter rather than ambient state so the
// evaluator stays testable in isolation from any host document model.
type Context struct {
	// State is the root of the state tree. The runtime instance owns it
	// exclusively; the evaluator only reads it.
	State interface{}

	// Indexes maps placeholder tokens to source indices.
	Indexes IndexMap
}

// NewContext creates an evaluation context over state with an empty index map.
func NewContext(state interface{}) *Context {
	return &Context{
		State:   state,
		Indexes: make(IndexMap),
	}
}

// WithIndexes returns a copy of the context using the given index map.
func (c *Context) WithIndexes(indexes IndexMap) *Context {
	return &Context{
		State:   c.State,
		Indexes: indexes,
	}
}
