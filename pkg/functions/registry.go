// Package functions provides the registry for user-defined custom functions.
//
// Custom functions are invoked from binding expressions with the "$" sigil
// and exactly one already-evaluated argument:
//
//	reg := functions.NewRegistry()
//	reg.Register("upper", func(v interface{}) (interface{}, error) {
//	    s, _ := v.(string)
//	    return strings.ToUpper(s), nil
//	})
//	// expression: $upper(user.name)
//
// Calling a name that has not been registered is an evaluation-time error,
// not a parse error, because registration may happen after compilation.
package functions

import (
	"fmt"
	"regexp"
	"sync"
)

// Func is the signature for user-defined custom functions.
// v is the single evaluated argument. The function should return a
// JSON-compatible value or an error.
type Func func(v interface{}) (interface{}, error)

// identifierRe is the identifier grammar a function name must match.
var identifierRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Registry holds named custom functions.
// Safe for concurrent use by multiple goroutines.
type Registry struct {
	mu  sync.RWMutex
	fns map[string]Func
}

// NewRegistry creates an empty function registry.
func NewRegistry() *Registry {
	return &Registry{
		fns: make(map[string]Func),
	}
}

// Register adds fn under name. Registering an existing name overwrites it
// silently. The name must match the identifier grammar.
func (r *Registry) Register(name string, fn Func) error {
	if !identifierRe.MatchString(name) {
		return fmt.Errorf("invalid function name %q", name)
	}
	if fn == nil {
		return fmt.Errorf("nil function for %q", name)
	}
	r.mu.Lock()
	r.fns[name] = fn
	r.mu.Unlock()
	return nil
}

// Def pairs a function name with its implementation, for bulk registration
// of extension packs.
type Def struct {
	Name string
	Fn   Func
}

// RegisterAll registers every definition, stopping at the first error.
func (r *Registry) RegisterAll(defs ...Def) error {
	for _, d := range defs {
		if err := r.Register(d.Name, d.Fn); err != nil {
			return err
		}
	}
	return nil
}

// Lookup returns the function registered under name, or (nil, false).
func (r *Registry) Lookup(name string) (Func, bool) {
	r.mu.RLock()
	fn, ok := r.fns[name]
	r.mu.RUnlock()
	return fn, ok
}

// Len returns the number of registered functions.
func (r *Registry) Len() int {
	r.mu.RLock()
	n := len(r.fns)
	r.mu.RUnlock()
	return n
}
