// Package binder is the JSBinder runtime: it scans a display-node tree for
// binding directives, compiles their expressions, and keeps the tree
// synchronized with a state tree through coalesced refresh passes.
//
// The runtime is cooperative and single-threaded: all methods of a Binder
// must be called from one goroutine (Run drives Flush from its own loop and
// is meant to be the sole driver when used). Mutations mark the instance
// dirty; Flush performs one bounded fixed-point register/refresh cycle.
//
// # Example
//
//	b := binder.New()
//	root, _ := b.MountHTML(`<p b-text="user.name"></p>`)
//	_ = b.Merge("user", map[string]interface{}{"name": "Ada"})
//	_ = b.Flush()
//	html := root.Render()
package binder

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/anders-frisk/JSBinder/pkg/cache"
	"github.com/anders-frisk/JSBinder/pkg/dom"
	"github.com/anders-frisk/JSBinder/pkg/evaluator"
	"github.com/anders-frisk/JSBinder/pkg/functions"
	"github.com/anders-frisk/JSBinder/pkg/parser"
	"github.com/anders-frisk/JSBinder/pkg/reconcile"
	"github.com/anders-frisk/JSBinder/pkg/types"
)

// Options configures a Binder.
type Options struct {
	// Logger for structured logging.
	Logger *slog.Logger
	// Functions is the custom-function table shared with the evaluator.
	// When nil a fresh empty registry is created.
	Functions *functions.Registry
	// CacheSize caps the compiled-expression LRU cache.
	CacheSize int
	// Comparer orders repeater sort keys; nil uses the locale-neutral one.
	Comparer *reconcile.Comparer
	// OnAdd fires after a repeater instance enters the tree.
	OnAdd func(*dom.Node)
	// OnRemove fires after a repeater instance leaves the tree.
	OnRemove func(*dom.Node)
	// MaxPasses bounds the register/refresh fixed-point loop in Flush.
	MaxPasses int
}

// Option configures binder behavior.
type Option func(*Options)

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Options) { o.Logger = logger }
}

// WithFunctions attaches an external custom-function registry.
func WithFunctions(reg *functions.Registry) Option {
	return func(o *Options) { o.Functions = reg }
}

// WithCacheSize sets the compiled-expression cache capacity.
func WithCacheSize(n int) Option {
	return func(o *Options) { o.CacheSize = n }
}

// WithComparer sets the repeater sort-key comparer.
func WithComparer(cmp *reconcile.Comparer) Option {
	return func(o *Options) { o.Comparer = cmp }
}

// WithOnAdd registers the instance-added notification.
func WithOnAdd(fn func(*dom.Node)) Option {
	return func(o *Options) { o.OnAdd = fn }
}

// WithOnRemove registers the instance-removed notification.
func WithOnRemove(fn func(*dom.Node)) Option {
	return func(o *Options) { o.OnRemove = fn }
}

// WithMaxPasses bounds the Flush fixed-point loop.
func WithMaxPasses(n int) Option {
	return func(o *Options) { o.MaxPasses = n }
}

// Binder owns one display tree, one state tree and the bindings between
// them.
type Binder struct {
	logger   *slog.Logger
	ev       *evaluator.Evaluator
	cache    *cache.Cache
	comparer *reconcile.Comparer
	onAdd    func(*dom.Node)
	onRemove func(*dom.Node)

	root    *dom.Node
	state   map[string]interface{}
	indexes evaluator.IndexMap

	registered map[string]struct{} // node IDs already scanned for directives
	managed    map[string]struct{} // element IDs whose children are runtime output
	bindings   []*binding
	repeaters  []*repeater

	needsRefresh bool
	flushing     bool
	structural   bool
	maxPasses    int
}

// New creates a Binder with no mounted tree.
func New(opts ...Option) *Binder {
	o := Options{
		CacheSize: 256,
		MaxPasses: 5,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.Functions == nil {
		o.Functions = functions.NewRegistry()
	}
	if o.Comparer == nil {
		o.Comparer = reconcile.NewDefaultComparer()
	}

	return &Binder{
		logger:     o.Logger,
		ev:         evaluator.New(evaluator.WithLogger(o.Logger), evaluator.WithFunctions(o.Functions)),
		cache:      cache.New(o.CacheSize),
		comparer:   o.Comparer,
		onAdd:      o.OnAdd,
		onRemove:   o.OnRemove,
		state:      make(map[string]interface{}),
		indexes:    make(evaluator.IndexMap),
		registered: make(map[string]struct{}),
		managed:    make(map[string]struct{}),
		maxPasses:  o.MaxPasses,
	}
}

// RegisterFunction adds a custom function callable as $name(arg) from
// binding expressions.
func (b *Binder) RegisterFunction(name string, fn functions.Func) error {
	return b.ev.RegisterFunction(name, fn)
}

// Root returns the mounted display root, or nil.
func (b *Binder) Root() *dom.Node {
	return b.root
}

// Render serializes the mounted tree.
func (b *Binder) Render() string {
	if b.root == nil {
		return ""
	}
	return b.root.Render()
}

// Mount attaches a display tree, discarding any previous one along with its
// bindings, and runs the initial register/refresh cycle.
func (b *Binder) Mount(root *dom.Node) error {
	b.root = root
	b.bindings = nil
	b.repeaters = nil
	b.registered = make(map[string]struct{})
	b.managed = make(map[string]struct{})
	b.indexes = make(evaluator.IndexMap)
	b.needsRefresh = true
	return b.Flush()
}

// MountHTML parses a template fragment and mounts it. A fragment with a
// single top-level element becomes the root directly; otherwise the nodes
// are wrapped in a div.
func (b *Binder) MountHTML(fragment string) (*dom.Node, error) {
	nodes, err := dom.ParseFragment(fragment)
	if err != nil {
		return nil, err
	}

	var root *dom.Node
	if len(nodes) == 1 && nodes[0].Kind == dom.KindElement {
		root = nodes[0]
	} else {
		root = dom.NewElement("div")
		for _, n := range nodes {
			root.AppendChild(n)
		}
	}
	if err := b.Mount(root); err != nil {
		return nil, err
	}
	return root, nil
}

// Invalidate marks the instance dirty without refreshing.
func (b *Binder) Invalidate() {
	b.needsRefresh = true
}

// Flush runs register/refresh cycles until the tree stabilizes. Structural
// changes (repeater adds/removes) and state mutations performed by custom
// functions mid-pass trigger a follow-up cycle; the loop is bounded, and
// exceeding the bound is reported as an error since well-behaved bindings
// always reach a fixed point.
//
// A Flush entered while one is already running (through a notification
// callback, for instance) only marks the instance dirty.
func (b *Binder) Flush() error {
	if b.flushing {
		b.needsRefresh = true
		return nil
	}
	if b.root == nil {
		return fmt.Errorf("no display tree mounted")
	}

	b.flushing = true
	defer func() { b.flushing = false }()

	for pass := 0; pass < b.maxPasses; pass++ {
		b.needsRefresh = false
		b.structural = false
		b.prune()
		b.registerTree(b.root, nil)
		b.refreshPass()
		if !b.structural && !b.needsRefresh {
			return nil
		}
	}

	b.logger.Error("refresh did not stabilize", "passes", b.maxPasses)
	return fmt.Errorf("refresh did not stabilize after %d passes", b.maxPasses)
}

// Tick flushes when the instance is dirty. It is the poll step Run drives.
func (b *Binder) Tick() error {
	if !b.needsRefresh {
		return nil
	}
	return b.Flush()
}

// Run polls Tick at the given interval until ctx is cancelled. Errors from
// individual flushes are logged, not fatal.
func (b *Binder) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := b.Tick(); err != nil {
				b.logger.Error("refresh failed", "error", err)
			}
		}
	}
}

// evalContext builds the evaluation context over the live state and index
// map.
func (b *Binder) evalContext() *evaluator.Context {
	return &evaluator.Context{State: b.state, Indexes: b.indexes}
}

// compile parses source through the LRU cache, then applies the scope
// rewrite. The cache holds the unrewritten form, so identical directive
// text across template instances parses once.
func (b *Binder) compile(source string, rewrite func(string) string) (*types.Expression, error) {
	expr, err := b.cache.GetOrCompile(strings.TrimSpace(source), parser.Parse)
	if err != nil {
		return nil, err
	}
	if rewrite != nil {
		expr = expr.Rewrite(rewrite)
	}
	return expr, nil
}

// registerTree scans the subtree under n for directives, registering each
// node at most once. Descent stops at repeater hosts (their children are
// managed instances) and at managed value targets (their children are
// runtime output, not template text).
func (b *Binder) registerTree(n *dom.Node, rewrite func(string) string) {
	if _, done := b.registered[n.ID]; !done {
		b.registered[n.ID] = struct{}{}
		if err := b.registerNode(n, rewrite); err != nil {
			b.logger.Warn("binding registration failed",
				"node", n.Tag, "error", err)
		}
	}

	if n.Kind != dom.KindElement {
		return
	}
	if _, ok := n.Attr("b-each"); ok {
		return
	}
	if _, ok := n.Attr("b-range"); ok {
		return
	}
	if _, ok := b.managed[n.ID]; ok {
		return
	}
	for _, c := range n.Children() {
		b.registerTree(c, rewrite)
	}
}

// registerNode registers the directives found on a single node.
func (b *Binder) registerNode(n *dom.Node, rewrite func(string) string) error {
	scopedCompile := func(src string) (*types.Expression, error) {
		return b.compile(src, rewrite)
	}

	if n.Kind == dom.KindText {
		parts, ok, err := compileInterpolation(n.Text, scopedCompile)
		if err != nil {
			return err
		}
		if ok {
			b.bindings = append(b.bindings, &binding{kind: bindInterp, target: n, parts: parts})
		}
		return nil
	}

	names := make([]string, 0, len(n.Attrs))
	for name := range n.Attrs {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		val := n.Attrs[name]
		switch {
		case name == "b-if":
			expr, err := b.compile(val, rewrite)
			if err != nil {
				return err
			}
			b.bindings = append(b.bindings, &binding{kind: bindCond, target: n, expr: expr})

		case name == "b-text":
			expr, err := b.compile(val, rewrite)
			if err != nil {
				return err
			}
			b.bindings = append(b.bindings, &binding{kind: bindValue, target: n, expr: expr, write: setTextContent})
			b.managed[n.ID] = struct{}{}

		case name == "b-value":
			expr, err := b.compile(val, rewrite)
			if err != nil {
				return err
			}
			tk := classifyTarget(n)
			b.bindings = append(b.bindings, &binding{kind: bindValue, target: n, expr: expr, write: valueWriter(tk)})
			if tk == targetTextContainer {
				b.managed[n.ID] = struct{}{}
			}

		case name == "b-checked":
			expr, err := b.compile(val, rewrite)
			if err != nil {
				return err
			}
			b.bindings = append(b.bindings, &binding{kind: bindValue, target: n, expr: expr, write: valueWriter(targetCheckableInput)})

		case name == "b-src":
			expr, err := b.compile(val, rewrite)
			if err != nil {
				return err
			}
			b.bindings = append(b.bindings, &binding{kind: bindValue, target: n, expr: expr, write: valueWriter(targetSourceRef)})

		case strings.HasPrefix(name, "b-attr-"):
			expr, err := b.compile(val, rewrite)
			if err != nil {
				return err
			}
			b.bindings = append(b.bindings, &binding{kind: bindAttr, target: n, expr: expr, attrName: strings.TrimPrefix(name, "b-attr-")})

		case strings.HasPrefix(name, "b-class-"):
			expr, err := b.compile(val, rewrite)
			if err != nil {
				return err
			}
			b.bindings = append(b.bindings, &binding{kind: bindClass, target: n, expr: expr, attrName: strings.TrimPrefix(name, "b-class-")})

		case strings.HasPrefix(name, "b-style-"):
			expr, err := b.compile(val, rewrite)
			if err != nil {
				return err
			}
			b.bindings = append(b.bindings, &binding{kind: bindStyle, target: n, expr: expr, attrName: strings.TrimPrefix(name, "b-style-")})

		case strings.HasPrefix(name, "b-"):
			// Repeat directives and their modifiers are handled below.

		default:
			parts, ok, err := compileInterpolation(val, scopedCompile)
			if err != nil {
				return err
			}
			if ok {
				b.bindings = append(b.bindings, &binding{kind: bindInterp, target: n, attrName: name, parts: parts})
			}
		}
	}

	identity := rewrite
	if identity == nil {
		identity = func(p string) string { return p }
	}
	if _, ok := n.Attr("b-each"); ok {
		r, err := newRepeater(b, n, false, identity)
		if err != nil {
			return err
		}
		b.repeaters = append(b.repeaters, r)
	} else if _, ok := n.Attr("b-range"); ok {
		r, err := newRepeater(b, n, true, identity)
		if err != nil {
			return err
		}
		b.repeaters = append(b.repeaters, r)
	}

	return nil
}

// refreshPass re-evaluates every live binding in the fixed directive order:
// conditionals, collection repeaters, range repeaters, interpolations,
// value bindings deepest-first, then attribute/class/style bindings.
// A failing binding is logged and skipped; its previous output stays.
func (b *Binder) refreshPass() {
	evalCtx := b.evalContext()

	run := func(bd *binding) {
		if err := bd.update(b.ev, evalCtx); err != nil {
			b.logger.Warn("binding update failed",
				"node", bd.target.Tag, "error", err)
		}
	}

	for i := 0; i < len(b.bindings); i++ {
		if b.bindings[i].kind == bindCond {
			run(b.bindings[i])
		}
	}

	for i := 0; i < len(b.repeaters); i++ {
		if !b.repeaters[i].isRange {
			if err := b.repeaters[i].update(b); err != nil {
				b.logger.Warn("repeater update failed",
					"source", b.repeaters[i].sourcePath, "error", err)
			}
		}
	}
	for i := 0; i < len(b.repeaters); i++ {
		if b.repeaters[i].isRange {
			if err := b.repeaters[i].update(b); err != nil {
				b.logger.Warn("range repeater update failed", "error", err)
			}
		}
	}

	for i := 0; i < len(b.bindings); i++ {
		if b.bindings[i].kind == bindInterp {
			run(b.bindings[i])
		}
	}

	// Value bindings run parents-last so a container rewrite cannot clobber
	// a child value written in the same pass.
	values := make([]*binding, 0)
	for _, bd := range b.bindings {
		if bd.kind == bindValue {
			values = append(values, bd)
		}
	}
	sort.SliceStable(values, func(i, j int) bool {
		return values[i].target.Depth() > values[j].target.Depth()
	})
	for _, bd := range values {
		run(bd)
	}

	for i := 0; i < len(b.bindings); i++ {
		switch b.bindings[i].kind {
		case bindAttr, bindClass, bindStyle:
			run(b.bindings[i])
		}
	}
}

// prune drops bindings and repeaters whose target left the live tree, and
// shrinks the bookkeeping sets to nodes still attached. Pruning is lazy:
// it runs at the start of a flush cycle, not at detach time.
func (b *Binder) prune() {
	live := make(map[string]struct{}, len(b.registered))
	b.root.Walk(func(n *dom.Node) bool {
		if _, ok := b.registered[n.ID]; ok {
			live[n.ID] = struct{}{}
		}
		return true
	})
	b.registered = live

	for id := range b.managed {
		if _, ok := live[id]; !ok {
			delete(b.managed, id)
		}
	}

	kept := b.bindings[:0]
	for _, bd := range b.bindings {
		if bd.target.Attached(b.root) {
			kept = append(kept, bd)
		}
	}
	b.bindings = kept

	keptReps := b.repeaters[:0]
	for _, r := range b.repeaters {
		if r.host.Attached(b.root) {
			keptReps = append(keptReps, r)
			continue
		}
		for _, it := range r.items {
			delete(b.indexes, it.token)
		}
	}
	b.repeaters = keptReps
}

// logf is the repeater's per-item warning hook.
func (b *Binder) logf(msg, source string, index int, err error) {
	b.logger.Warn(msg, "source", source, "index", index, "error", err)
}

// notifyAdd fires the instance-added callback.
func (b *Binder) notifyAdd(n *dom.Node) {
	if b.onAdd != nil {
		b.onAdd(n)
	}
}

// notifyRemove fires the instance-removed callback.
func (b *Binder) notifyRemove(n *dom.Node) {
	if b.onRemove != nil {
		b.onRemove(n)
	}
}
