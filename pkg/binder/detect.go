package binder

import "github.com/anders-frisk/JSBinder/pkg/evaluator"

// Detector is the per-binding single-slot memo that gates observable
// writes. Check returns true on the first call and whenever the value
// differs from the last observed one; otherwise the caller must skip its
// write. Objects and arrays compare by reference identity, never deeply.
// This is what makes repeated refreshes with unchanged inputs idempotent.
type Detector struct {
	seen bool
	last interface{}
}

// Check records value and reports whether the caller should proceed with
// its write.
func (d *Detector) Check(value interface{}) bool {
	if d.seen && evaluator.Identical(d.last, value) {
		return false
	}
	d.seen = true
	d.last = value
	return true
}

// Reset returns the detector to its never-checked state.
func (d *Detector) Reset() {
	d.seen = false
	d.last = nil
}
