package binder

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/anders-frisk/JSBinder/pkg/dom"
	"github.com/anders-frisk/JSBinder/pkg/evaluator"
	"github.com/anders-frisk/JSBinder/pkg/reconcile"
	"github.com/anders-frisk/JSBinder/pkg/types"
)

// repeater materializes one template instance per source item (collection
// form) or per integer (range form) under its host element. Surviving keys
// keep their node instance across refreshes; only membership and order
// changes touch the tree.
type repeater struct {
	host     *dom.Node
	template *dom.Node // single element template, detached from host at registration
	alias    string
	isRange  bool

	// sourcePath is the raw source sequence path, already rewritten by any
	// enclosing repeater scope. Unused by the range form.
	sourcePath string

	// outer is the enclosing scope rewrite, composed into every item
	// registration so templates can still reference enclosing aliases.
	outer func(string) string

	// scratch is the placeholder token the pipeline expressions below are
	// bound to. It holds the candidate index only while update runs.
	scratch string

	key      *types.Expression
	filter   *types.Expression
	sortKey  *types.Expression
	distinct *types.Expression
	skip     int
	limit    int

	from *types.Expression // range form
	to   *types.Expression

	items []*repeatItem // current instances, in display order
}

// repeatItem is one live template instance.
type repeatItem struct {
	key   string
	token string // index-map token; placeholder paths in the subtree use it
	node  *dom.Node
}

// aliasRewrite returns a path rewrite mapping occurrences of @alias to
// base. Only exact matches and matches followed by a member or bracket
// access are rewritten; a longer identifier sharing the prefix is not.
func aliasRewrite(alias, base string) func(string) string {
	sigil := "@" + alias
	return func(p string) string {
		if !strings.HasPrefix(p, sigil) {
			return p
		}
		rest := p[len(sigil):]
		if rest == "" {
			return base
		}
		if rest[0] == '.' || rest[0] == '[' {
			return base + rest
		}
		return p
	}
}

// newRepeater registers the repeat directive found on host. The template is
// the host's single element child; it is detached here and host children
// are managed by the repeater from then on. rewrite is the enclosing scope
// rewrite (identity at the top level).
func newRepeater(b *Binder, host *dom.Node, isRange bool, rewrite func(string) string) (*repeater, error) {
	r := &repeater{
		host:    host,
		isRange: isRange,
		outer:   rewrite,
		scratch: uuid.NewString(),
		skip:    0,
		limit:   -1,
	}

	r.alias = "item"
	if v, ok := host.Attr("b-alias"); ok {
		r.alias = strings.TrimSpace(v)
	}

	var template *dom.Node
	for _, c := range host.Children() {
		if c.Kind != dom.KindElement {
			continue
		}
		if template != nil {
			return nil, fmt.Errorf("repeat host <%s> has more than one element child", host.Tag)
		}
		template = c
	}
	if template == nil {
		return nil, fmt.Errorf("repeat host <%s> has no element child to use as template", host.Tag)
	}
	for _, c := range append([]*dom.Node(nil), host.Children()...) {
		c.Detach()
	}
	r.template = template

	// Pipeline expressions run once per candidate with the scratch token
	// bound, so the alias resolves through the scratch index.
	var base string
	if isRange {
		base = "{" + r.scratch + "}"
		fromSrc, _ := host.Attr("b-from")
		toSrc, _ := host.Attr("b-to")
		var err error
		if r.from, err = b.compile(fromSrc, rewrite); err != nil {
			return nil, err
		}
		if r.to, err = b.compile(toSrc, rewrite); err != nil {
			return nil, err
		}
	} else {
		src, _ := host.Attr("b-each")
		r.sourcePath = rewrite(strings.TrimSpace(src))
		base = r.sourcePath + "[{" + r.scratch + "}]"
	}
	scoped := func(p string) string { return aliasRewrite(r.alias, base)(rewrite(p)) }

	compileAttr := func(name string) (*types.Expression, error) {
		src, ok := host.Attr(name)
		if !ok {
			return nil, nil
		}
		return b.compile(src, scoped)
	}

	var err error
	if r.filter, err = compileAttr("b-filter"); err != nil {
		return nil, err
	}
	if !isRange {
		if r.key, err = compileAttr("b-key"); err != nil {
			return nil, err
		}
		if r.key == nil {
			// Without an explicit key the item's own display value keys it.
			if r.key, err = b.compile("@"+r.alias, scoped); err != nil {
				return nil, err
			}
		}
		if r.sortKey, err = compileAttr("b-sort"); err != nil {
			return nil, err
		}
		if r.distinct, err = compileAttr("b-distinct"); err != nil {
			return nil, err
		}
		if v, ok := host.Attr("b-skip"); ok {
			if r.skip, err = strconv.Atoi(strings.TrimSpace(v)); err != nil {
				return nil, fmt.Errorf("b-skip: %w", err)
			}
		}
		if v, ok := host.Attr("b-limit"); ok {
			if r.limit, err = strconv.Atoi(strings.TrimSpace(v)); err != nil {
				return nil, fmt.Errorf("b-limit: %w", err)
			}
		}
	}

	return r, nil
}

// update re-evaluates the source, runs the pipeline and reconciles the
// host's children against the target key list.
func (r *repeater) update(b *Binder) error {
	if r.isRange {
		return r.updateRange(b)
	}
	return r.updateCollection(b)
}

func (r *repeater) updateCollection(b *Binder) error {
	evalCtx := b.evalContext()
	src, err := evaluator.Resolve(r.sourcePath, evalCtx)
	if err != nil {
		return err
	}
	list, _ := src.([]interface{}) // absent or non-sequence source repeats nothing

	items := make([]reconcile.Item, 0, len(list))
	for i, v := range list {
		b.indexes[r.scratch] = i
		it := reconcile.Item{Index: i, Value: v, Keep: true}

		if r.filter != nil {
			fv, ferr := b.ev.Eval(r.filter, evalCtx)
			if ferr != nil {
				b.logf("repeater filter failed", r.sourcePath, i, ferr)
				it.Keep = false
			} else {
				it.Keep = evaluator.Truthy(fv)
			}
		}
		kv, kerr := b.ev.Eval(r.key, evalCtx)
		if kerr != nil {
			b.logf("repeater key failed", r.sourcePath, i, kerr)
			continue
		}
		it.Key = evaluator.Display(kv)
		if r.sortKey != nil {
			if it.SortKey, err = b.ev.Eval(r.sortKey, evalCtx); err != nil {
				b.logf("repeater sort key failed", r.sourcePath, i, err)
				continue
			}
		}
		if r.distinct != nil {
			if it.DistinctKey, err = b.ev.Eval(r.distinct, evalCtx); err != nil {
				b.logf("repeater distinct key failed", r.sourcePath, i, err)
				continue
			}
		}
		items = append(items, it)
	}
	delete(b.indexes, r.scratch)

	target := reconcile.Apply(items, reconcile.PipelineOptions{
		Sort:     r.sortKey != nil,
		Comparer: b.comparer,
		Distinct: r.distinct != nil,
		Skip:     r.skip,
		Limit:    r.limit,
	})

	keys := make([]string, len(target))
	srcIndex := make(map[string]int, len(target))
	for i, it := range target {
		keys[i] = it.Key
		if _, dup := srcIndex[it.Key]; !dup {
			srcIndex[it.Key] = it.Index
		}
	}

	r.apply(b, keys, srcIndex)
	return nil
}

func (r *repeater) updateRange(b *Binder) error {
	evalCtx := b.evalContext()
	from, ok, err := r.rangeBound(b, r.from, evalCtx)
	if err != nil || !ok {
		return err
	}
	to, ok, err := r.rangeBound(b, r.to, evalCtx)
	if err != nil || !ok {
		return err
	}

	var pred func(int) bool
	if r.filter != nil {
		pred = func(i int) bool {
			b.indexes[r.scratch] = i
			v, perr := b.ev.Eval(r.filter, evalCtx)
			if perr != nil {
				b.logf("range filter failed", "", i, perr)
				return false
			}
			return evaluator.Truthy(v)
		}
	}
	keys := reconcile.RangeKeys(from, to, pred)
	delete(b.indexes, r.scratch)

	srcIndex := make(map[string]int, len(keys))
	for _, k := range keys {
		i, _ := strconv.Atoi(k)
		srcIndex[k] = i
	}

	r.apply(b, keys, srcIndex)
	return nil
}

// rangeBound evaluates one range endpoint. A non-numeric endpoint disables
// the range for this pass; existing instances stay put.
func (r *repeater) rangeBound(b *Binder, expr *types.Expression, evalCtx *evaluator.Context) (int, bool, error) {
	if expr == nil {
		return 0, false, nil
	}
	v, err := b.ev.Eval(expr, evalCtx)
	if err != nil {
		return 0, false, err
	}
	f := evaluator.Number(v)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false, nil
	}
	return int(f), true, nil
}

// apply reconciles live instances against the target key order, reusing
// node instances for surviving keys and touching the tree only where the
// diff requires it.
func (r *repeater) apply(b *Binder, keys []string, srcIndex map[string]int) {
	prev := make([]string, len(r.items))
	byKey := make(map[string]*repeatItem, len(r.items))
	for i, it := range r.items {
		prev[i] = it.key
		byKey[it.key] = it
	}

	res := reconcile.Diff(prev, keys)
	for _, k := range res.Duplicates {
		b.logger.Warn("duplicate repeater key, keeping first occurrence",
			"key", k, "source", r.sourcePath)
	}

	for _, k := range res.Removed {
		it := byKey[k]
		it.node.Detach()
		delete(b.indexes, it.token)
		delete(byKey, k)
		b.structural = true
		b.notifyRemove(it.node)
	}

	next := make([]*repeatItem, 0, len(res.FinalOrder))
	var lastPlaced *dom.Node
	for _, k := range res.FinalOrder {
		it, survives := byKey[k]
		if !survives {
			it = r.instantiate(b, k, srcIndex[k])
			r.host.InsertAfter(it.node, lastPlaced)
			b.structural = true
			b.notifyAdd(it.node)
		} else {
			b.indexes[it.token] = srcIndex[k]
			want := 0
			if lastPlaced != nil {
				want = r.host.IndexOf(lastPlaced) + 1
			}
			if r.host.IndexOf(it.node) != want {
				it.node.Detach()
				r.host.InsertAfter(it.node, lastPlaced)
			}
		}
		lastPlaced = it.node
		next = append(next, it)
	}
	r.items = next
}

// instantiate clones the template for a fresh key, binds its token into the
// index map and registers the clone's directives with the alias rewritten
// to an indexed source access.
func (r *repeater) instantiate(b *Binder, key string, srcIndex int) *repeatItem {
	token := uuid.NewString()
	b.indexes[token] = srcIndex

	var base string
	if r.isRange {
		base = "{" + token + "}"
	} else {
		base = r.sourcePath + "[{" + token + "}]"
	}

	node := r.template.Clone()
	scoped := aliasRewrite(r.alias, base)
	b.registerTree(node, func(p string) string { return scoped(r.outer(p)) })
	return &repeatItem{key: key, token: token, node: node}
}
