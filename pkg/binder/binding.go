package binder

import (
	"regexp"
	"sort"
	"strings"

	"github.com/anders-frisk/JSBinder/pkg/dom"
	"github.com/anders-frisk/JSBinder/pkg/evaluator"
	"github.com/anders-frisk/JSBinder/pkg/types"
)

// bindingKind identifies a directive kind. Within one refresh pass the
// kinds update in a fixed declared order (see Binder.refreshPass).
type bindingKind uint8

const (
	bindCond   bindingKind = iota // b-if
	bindInterp                   // {{ expr }} in text or attribute values
	bindValue                    // b-value / b-text / b-checked / b-src, dispatched by target kind
	bindAttr                     // b-attr-*
	bindClass                    // b-class-*
	bindStyle                    // b-style-*
)

// targetKind is the closed variant the value directive dispatches on.
// The handler is selected once per binding at registration time, never
// re-inspected during a pass.
type targetKind uint8

const (
	targetTextContainer targetKind = iota
	targetValueInput
	targetCheckableInput
	targetSourceRef
)

// binding associates a target display node, a compiled expression and a
// change-detector slot. Created during a register pass; pruned lazily once
// its target leaves the live tree.
type binding struct {
	kind   bindingKind
	target *dom.Node
	expr   *types.Expression
	detect Detector

	attrName string        // attribute suffix for bindAttr/bindClass/bindStyle, or the interpolated attribute
	write    func(*dom.Node, interface{}) // value handler, chosen at registration for bindValue
	parts    []textPart    // interpolation parts for bindInterp
}

// textPart is one segment of an interpolated text: either static text or a
// compiled expression.
type textPart struct {
	static string
	expr   *types.Expression
}

// interpRe matches {{ expr }} occurrences.
var interpRe = regexp.MustCompile(`\{\{(.*?)\}\}`)

// classifyTarget maps an element to its value-directive variant.
func classifyTarget(n *dom.Node) targetKind {
	switch n.Tag {
	case "input":
		t, _ := n.Attr("type")
		if t == "checkbox" || t == "radio" {
			return targetCheckableInput
		}
		return targetValueInput
	case "textarea", "select":
		return targetValueInput
	case "img", "iframe", "frame":
		return targetSourceRef
	default:
		return targetTextContainer
	}
}

// valueWriter returns the write handler for a target kind.
func valueWriter(kind targetKind) func(*dom.Node, interface{}) {
	switch kind {
	case targetValueInput:
		return func(n *dom.Node, v interface{}) {
			n.SetAttr("value", evaluator.Display(v))
		}
	case targetCheckableInput:
		return func(n *dom.Node, v interface{}) {
			if evaluator.Truthy(v) {
				n.SetAttr("checked", "checked")
			} else {
				n.RemoveAttr("checked")
			}
		}
	case targetSourceRef:
		return func(n *dom.Node, v interface{}) {
			n.SetAttr("src", evaluator.Display(v))
		}
	default:
		return setTextContent
	}
}

// setTextContent replaces the element's children with a single text node.
func setTextContent(n *dom.Node, v interface{}) {
	for _, c := range append([]*dom.Node(nil), n.Children()...) {
		c.Detach()
	}
	n.AppendChild(dom.NewText(evaluator.Display(v)))
}

// update re-evaluates the binding and writes to its target when the change
// detector reports a difference. Evaluation errors are returned to the
// caller, which logs and skips this one binding; the previous rendered
// output stays in place (fail-safe, not fail-blank).
func (bd *binding) update(ev *evaluator.Evaluator, evalCtx *evaluator.Context) error {
	switch bd.kind {
	case bindInterp:
		return bd.updateInterp(ev, evalCtx)
	case bindCond:
		v, err := ev.Eval(bd.expr, evalCtx)
		if err != nil {
			return err
		}
		show := evaluator.Truthy(v)
		if !bd.detect.Check(show) {
			return nil
		}
		bd.target.Hidden = !show
		return nil
	default:
		v, err := ev.Eval(bd.expr, evalCtx)
		if err != nil {
			return err
		}
		if !bd.detect.Check(v) {
			return nil
		}
		bd.apply(v)
		return nil
	}
}

// apply performs the observable write for an already-gated value.
func (bd *binding) apply(v interface{}) {
	switch bd.kind {
	case bindValue:
		bd.write(bd.target, v)
	case bindAttr:
		if v == nil {
			bd.target.RemoveAttr(bd.attrName)
			return
		}
		bd.target.SetAttr(bd.attrName, evaluator.Display(v))
	case bindClass:
		setClass(bd.target, bd.attrName, evaluator.Truthy(v))
	case bindStyle:
		setStyleProp(bd.target, bd.attrName, v)
	}
}

// updateInterp composes the interpolated string and writes it when changed.
func (bd *binding) updateInterp(ev *evaluator.Evaluator, evalCtx *evaluator.Context) error {
	var sb strings.Builder
	for _, part := range bd.parts {
		if part.expr == nil {
			sb.WriteString(part.static)
			continue
		}
		v, err := ev.Eval(part.expr, evalCtx)
		if err != nil {
			return err
		}
		sb.WriteString(evaluator.Display(v))
	}

	text := sb.String()
	if !bd.detect.Check(text) {
		return nil
	}
	if bd.attrName != "" {
		bd.target.SetAttr(bd.attrName, text)
	} else {
		bd.target.Text = text
	}
	return nil
}

// compileInterpolation splits s into static and expression parts.
// Returns ok=false when s contains no interpolation markers.
func compileInterpolation(s string, compile func(string) (*types.Expression, error)) ([]textPart, bool, error) {
	locs := interpRe.FindAllStringSubmatchIndex(s, -1)
	if len(locs) == 0 {
		return nil, false, nil
	}

	var parts []textPart
	prev := 0
	for _, loc := range locs {
		if loc[0] > prev {
			parts = append(parts, textPart{static: s[prev:loc[0]]})
		}
		expr, err := compile(strings.TrimSpace(s[loc[2]:loc[3]]))
		if err != nil {
			return nil, true, err
		}
		parts = append(parts, textPart{expr: expr})
		prev = loc[1]
	}
	if prev < len(s) {
		parts = append(parts, textPart{static: s[prev:]})
	}
	return parts, true, nil
}

// setClass adds or removes one class name in the class attribute.
func setClass(n *dom.Node, name string, on bool) {
	current, _ := n.Attr("class")
	classes := strings.Fields(current)
	found := false
	out := classes[:0]
	for _, c := range classes {
		if c == name {
			found = true
			if !on {
				continue
			}
		}
		out = append(out, c)
	}
	if on && !found {
		out = append(out, name)
	}
	if len(out) == 0 {
		n.RemoveAttr("class")
		return
	}
	n.SetAttr("class", strings.Join(out, " "))
}

// setStyleProp sets or removes one property in the style attribute.
// Properties render sorted so output is deterministic.
func setStyleProp(n *dom.Node, prop string, v interface{}) {
	current, _ := n.Attr("style")
	props := make(map[string]string)
	for _, decl := range strings.Split(current, ";") {
		if name, val, ok := strings.Cut(decl, ":"); ok {
			props[strings.TrimSpace(name)] = strings.TrimSpace(val)
		}
	}

	if v == nil {
		delete(props, prop)
	} else {
		props[prop] = evaluator.Display(v)
	}

	if len(props) == 0 {
		n.RemoveAttr("style")
		return
	}
	names := make([]string, 0, len(props))
	for name := range props {
		names = append(names, name)
	}
	sort.Strings(names)
	decls := make([]string, 0, len(names))
	for _, name := range names {
		decls = append(decls, name+": "+props[name])
	}
	n.SetAttr("style", strings.Join(decls, "; "))
}
