package binder_test

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/anders-frisk/JSBinder/pkg/binder"
	"github.com/anders-frisk/JSBinder/pkg/dom"
)

// Helper functions

func mustMount(t *testing.T, b *binder.Binder, template string) *dom.Node {
	t.Helper()
	root, err := b.MountHTML(template)
	if err != nil {
		t.Fatalf("MountHTML: %v", err)
	}
	return root
}

func mustMerge(t *testing.T, b *binder.Binder, path string, value interface{}) {
	t.Helper()
	if err := b.Merge(path, value); err != nil {
		t.Fatalf("Merge(%q): %v", path, err)
	}
	if err := b.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
}

// elementsByTag returns the elements with the given tag in document order.
func elementsByTag(root *dom.Node, tag string) []*dom.Node {
	var out []*dom.Node
	root.Walk(func(n *dom.Node) bool {
		if n.Kind == dom.KindElement && n.Tag == tag {
			out = append(out, n)
		}
		return true
	})
	return out
}

// textOf concatenates the text content of a subtree.
func textOf(n *dom.Node) string {
	var sb strings.Builder
	n.Walk(func(c *dom.Node) bool {
		if c.Kind == dom.KindText {
			sb.WriteString(c.Text)
		}
		return true
	})
	return sb.String()
}

func textsByTag(root *dom.Node, tag string) []string {
	var out []string
	for _, n := range elementsByTag(root, tag) {
		out = append(out, strings.TrimSpace(textOf(n)))
	}
	return out
}

func planets() []interface{} {
	return []interface{}{
		map[string]interface{}{"name": "Saturn", "type": "Gas", "moons": float64(146)},
		map[string]interface{}{"name": "Mars", "type": "Rock", "moons": float64(2)},
		map[string]interface{}{"name": "Jupiter", "type": "Gas", "moons": float64(95)},
	}
}

// Text and interpolation bindings

func TestTextBinding(t *testing.T) {
	b := binder.New()
	root := mustMount(t, b, `<p b-text="user.name"></p>`)

	mustMerge(t, b, "user", map[string]interface{}{"name": "Ada"})
	if got := textOf(root); got != "Ada" {
		t.Errorf("expected %q, got %q", "Ada", got)
	}

	mustMerge(t, b, "user.name", "Grace")
	if got := textOf(root); got != "Grace" {
		t.Errorf("expected %q after update, got %q", "Grace", got)
	}
}

func TestTextInterpolation(t *testing.T) {
	b := binder.New()
	root := mustMount(t, b, `<p>Hello {{user.name}}, you have {{count}} messages</p>`)

	mustMerge(t, b, "", map[string]interface{}{
		"user":  map[string]interface{}{"name": "Ada"},
		"count": float64(3),
	})
	want := "Hello Ada, you have 3 messages"
	if got := textOf(root); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestAttributeInterpolation(t *testing.T) {
	b := binder.New()
	root := mustMount(t, b, `<a href="/users/{{user.id}}">profile</a>`)

	mustMerge(t, b, "user", map[string]interface{}{"id": float64(7)})
	a := elementsByTag(root, "a")[0]
	if v, _ := a.Attr("href"); v != "/users/7" {
		t.Errorf("expected interpolated href, got %q", v)
	}
}

// Conditionals

func TestConditionalBinding(t *testing.T) {
	b := binder.New()
	root := mustMount(t, b, `<div><p b-if="user.admin">admin panel</p></div>`)

	mustMerge(t, b, "user", map[string]interface{}{"admin": false})
	if strings.Contains(root.Render(), "admin panel") {
		t.Error("falsy condition must hide the element")
	}

	mustMerge(t, b, "user.admin", true)
	if !strings.Contains(root.Render(), "admin panel") {
		t.Error("truthy condition must show the element")
	}
}

// Value bindings

func TestValueBindingInput(t *testing.T) {
	b := binder.New()
	root := mustMount(t, b, `<input b-value="form.email">`)

	mustMerge(t, b, "form", map[string]interface{}{"email": "a@b.se"})
	in := elementsByTag(root, "input")[0]
	if v, _ := in.Attr("value"); v != "a@b.se" {
		t.Errorf("expected value attribute, got %q", v)
	}
}

func TestValueBindingCheckbox(t *testing.T) {
	b := binder.New()
	root := mustMount(t, b, `<input type="checkbox" b-value="form.agree">`)
	in := elementsByTag(root, "input")[0]

	mustMerge(t, b, "form", map[string]interface{}{"agree": true})
	if _, ok := in.Attr("checked"); !ok {
		t.Error("truthy value must set checked")
	}

	mustMerge(t, b, "form.agree", false)
	if _, ok := in.Attr("checked"); ok {
		t.Error("falsy value must remove checked")
	}
}

func TestCheckedBinding(t *testing.T) {
	b := binder.New()
	root := mustMount(t, b, `<input type="checkbox" value="tos" b-checked="form.agree">`)
	in := elementsByTag(root, "input")[0]

	mustMerge(t, b, "form", map[string]interface{}{"agree": true})
	if _, ok := in.Attr("checked"); !ok {
		t.Error("b-checked must set checked independently of b-value")
	}
	if v, _ := in.Attr("value"); v != "tos" {
		t.Errorf("b-checked must leave the value attribute alone, got %q", v)
	}
}

func TestSrcBinding(t *testing.T) {
	b := binder.New()
	root := mustMount(t, b, `<img b-src="avatar">`)

	mustMerge(t, b, "avatar", "/img/ada.png")
	img := elementsByTag(root, "img")[0]
	if v, _ := img.Attr("src"); v != "/img/ada.png" {
		t.Errorf("expected src attribute, got %q", v)
	}
}

func TestValueBindingImage(t *testing.T) {
	b := binder.New()
	root := mustMount(t, b, `<img b-value="avatar">`)

	mustMerge(t, b, "avatar", "/img/ada.png")
	img := elementsByTag(root, "img")[0]
	if v, _ := img.Attr("src"); v != "/img/ada.png" {
		t.Errorf("expected src attribute, got %q", v)
	}
}

// Attribute, class and style bindings

func TestAttrBinding(t *testing.T) {
	b := binder.New()
	root := mustMount(t, b, `<p b-attr-title="hint"></p>`)
	p := elementsByTag(root, "p")[0]

	mustMerge(t, b, "hint", "tooltip")
	if v, _ := p.Attr("title"); v != "tooltip" {
		t.Errorf("expected title attribute, got %q", v)
	}

	mustMerge(t, b, "hint", nil)
	if _, ok := p.Attr("title"); ok {
		t.Error("undefined must remove the attribute")
	}
}

func TestClassBinding(t *testing.T) {
	b := binder.New()
	root := mustMount(t, b, `<p class="base" b-class-active="on"></p>`)
	p := elementsByTag(root, "p")[0]

	mustMerge(t, b, "on", true)
	if v, _ := p.Attr("class"); v != "base active" {
		t.Errorf("expected class toggled on, got %q", v)
	}

	mustMerge(t, b, "on", false)
	if v, _ := p.Attr("class"); v != "base" {
		t.Errorf("expected class toggled off, got %q", v)
	}
}

func TestStyleBinding(t *testing.T) {
	b := binder.New()
	root := mustMount(t, b, `<p b-style-color="theme.fg"></p>`)
	p := elementsByTag(root, "p")[0]

	mustMerge(t, b, "theme", map[string]interface{}{"fg": "red"})
	if v, _ := p.Attr("style"); v != "color: red" {
		t.Errorf("expected style property, got %q", v)
	}

	mustMerge(t, b, "theme.fg", nil)
	if _, ok := p.Attr("style"); ok {
		t.Error("undefined must remove the last style property")
	}
}

// Repeaters

func TestRepeaterBasic(t *testing.T) {
	b := binder.New()
	root := mustMount(t, b, `
		<ul b-each="planets" b-key="@p.name" b-alias="p">
			<li>{{@p.name}}</li>
		</ul>`)

	mustMerge(t, b, "planets", planets())
	want := []string{"Saturn", "Mars", "Jupiter"}
	if diff := cmp.Diff(want, textsByTag(root, "li")); diff != "" {
		t.Errorf("item order mismatch (-want +got):\n%s", diff)
	}
}

func TestRepeaterAddRemove(t *testing.T) {
	b := binder.New()
	root := mustMount(t, b, `
		<ul b-each="planets" b-key="@p.name" b-alias="p">
			<li>{{@p.name}}</li>
		</ul>`)
	mustMerge(t, b, "planets", planets())

	grown := append(planets(), map[string]interface{}{"name": "Neptune", "type": "Ice"})
	mustMerge(t, b, "planets", grown)
	if diff := cmp.Diff([]string{"Saturn", "Mars", "Jupiter", "Neptune"}, textsByTag(root, "li")); diff != "" {
		t.Errorf("after add (-want +got):\n%s", diff)
	}

	mustMerge(t, b, "planets", planets()[1:])
	if diff := cmp.Diff([]string{"Mars", "Jupiter"}, textsByTag(root, "li")); diff != "" {
		t.Errorf("after remove (-want +got):\n%s", diff)
	}
}

func TestRepeaterPreservesNodeIdentity(t *testing.T) {
	b := binder.New()
	root := mustMount(t, b, `
		<ul b-each="planets" b-key="@p.name" b-alias="p">
			<li>{{@p.name}}</li>
		</ul>`)
	mustMerge(t, b, "planets", planets())

	before := make(map[string]string)
	for _, li := range elementsByTag(root, "li") {
		before[strings.TrimSpace(textOf(li))] = li.ID
	}

	// Reverse the list: every surviving key must keep its node instance.
	src := planets()
	reversed := []interface{}{src[2], src[1], src[0]}
	mustMerge(t, b, "planets", reversed)

	for _, li := range elementsByTag(root, "li") {
		name := strings.TrimSpace(textOf(li))
		if before[name] != li.ID {
			t.Errorf("node for %q was recreated instead of moved", name)
		}
	}
	if diff := cmp.Diff([]string{"Jupiter", "Mars", "Saturn"}, textsByTag(root, "li")); diff != "" {
		t.Errorf("after reorder (-want +got):\n%s", diff)
	}
}

func TestRepeaterItemValueUpdates(t *testing.T) {
	b := binder.New()
	root := mustMount(t, b, `
		<ul b-each="planets" b-key="@p.name" b-alias="p">
			<li>{{@p.name}}: {{@p.moons}}</li>
		</ul>`)
	mustMerge(t, b, "planets", planets())

	before := elementsByTag(root, "li")[0].ID

	// Replacing the source with updated field values refreshes the
	// existing items in place.
	updated := planets()
	updated[0].(map[string]interface{})["moons"] = float64(200)
	mustMerge(t, b, "planets", updated)

	lis := elementsByTag(root, "li")
	if got := strings.TrimSpace(textOf(lis[0])); got != "Saturn: 200" {
		t.Errorf("expected updated moon count, got %q", got)
	}
	if lis[0].ID != before {
		t.Error("a field update must not recreate the item node")
	}
}

func TestRepeaterPipeline(t *testing.T) {
	b := binder.New()
	root := mustMount(t, b, `
		<ul b-each="planets" b-key="@p.name" b-alias="p"
		    b-filter="@p.type == 'Gas'" b-sort="@p.name">
			<li>{{@p.name}}</li>
		</ul>`)
	mustMerge(t, b, "planets", planets())

	if diff := cmp.Diff([]string{"Jupiter", "Saturn"}, textsByTag(root, "li")); diff != "" {
		t.Errorf("filtered, sorted items (-want +got):\n%s", diff)
	}
}

func TestRepeaterSkipLimit(t *testing.T) {
	b := binder.New()
	root := mustMount(t, b, `
		<ul b-each="planets" b-key="@p.name" b-alias="p" b-skip="1" b-limit="1">
			<li>{{@p.name}}</li>
		</ul>`)
	mustMerge(t, b, "planets", planets())

	if diff := cmp.Diff([]string{"Mars"}, textsByTag(root, "li")); diff != "" {
		t.Errorf("skip/limit items (-want +got):\n%s", diff)
	}
}

func TestRepeaterDuplicateKeysKeepFirst(t *testing.T) {
	b := binder.New()
	root := mustMount(t, b, `
		<ul b-each="tags" b-key="@t" b-alias="t">
			<li>{{@t}}</li>
		</ul>`)
	mustMerge(t, b, "tags", []interface{}{"go", "web", "go"})

	if diff := cmp.Diff([]string{"go", "web"}, textsByTag(root, "li")); diff != "" {
		t.Errorf("duplicate keys must keep first occurrence (-want +got):\n%s", diff)
	}
}

func TestRepeaterDistinct(t *testing.T) {
	b := binder.New()
	root := mustMount(t, b, `
		<ul b-each="planets" b-key="@p.name" b-alias="p" b-distinct="@p.type">
			<li>{{@p.name}}</li>
		</ul>`)
	mustMerge(t, b, "planets", planets())

	// Per type the last source occurrence wins: Jupiter (Gas) over Saturn.
	if diff := cmp.Diff([]string{"Mars", "Jupiter"}, textsByTag(root, "li")); diff != "" {
		t.Errorf("distinct items (-want +got):\n%s", diff)
	}
}

func TestRepeaterNested(t *testing.T) {
	b := binder.New()
	root := mustMount(t, b, `
		<div b-each="groups" b-key="@g.name" b-alias="g">
			<section>
				<h2>{{@g.name}}</h2>
				<ul b-each="@g.members" b-key="@m" b-alias="m">
					<li>{{@g.name}}/{{@m}}</li>
				</ul>
			</section>
		</div>`)

	mustMerge(t, b, "groups", []interface{}{
		map[string]interface{}{"name": "core", "members": []interface{}{"ada", "grace"}},
		map[string]interface{}{"name": "infra", "members": []interface{}{"linus"}},
	})

	want := []string{"core/ada", "core/grace", "infra/linus"}
	if diff := cmp.Diff(want, textsByTag(root, "li")); diff != "" {
		t.Errorf("nested items (-want +got):\n%s", diff)
	}
}

// Range repetition

func TestRangeRepeater(t *testing.T) {
	b := binder.New()
	root := mustMount(t, b, `
		<ul b-range b-from="1" b-to="pages" b-alias="i">
			<li>{{@i}}</li>
		</ul>`)

	mustMerge(t, b, "pages", float64(3))
	if diff := cmp.Diff([]string{"1", "2", "3"}, textsByTag(root, "li")); diff != "" {
		t.Errorf("range items (-want +got):\n%s", diff)
	}

	mustMerge(t, b, "pages", float64(2))
	if diff := cmp.Diff([]string{"1", "2"}, textsByTag(root, "li")); diff != "" {
		t.Errorf("shrunk range (-want +got):\n%s", diff)
	}
}

func TestRangeRepeaterFilter(t *testing.T) {
	b := binder.New()
	root := mustMount(t, b, `
		<ul b-range b-from="0" b-to="5" b-alias="i" b-filter="@i % 2 == 0">
			<li>{{@i}}</li>
		</ul>`)
	if err := b.Flush(); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"0", "2", "4"}, textsByTag(root, "li")); diff != "" {
		t.Errorf("filtered range (-want +got):\n%s", diff)
	}
}

// Notifications

func TestOnAddOnRemove(t *testing.T) {
	var added, removed int
	b := binder.New(
		binder.WithOnAdd(func(*dom.Node) { added++ }),
		binder.WithOnRemove(func(*dom.Node) { removed++ }),
	)
	mustMount(t, b, `
		<ul b-each="tags" b-key="@t" b-alias="t">
			<li>{{@t}}</li>
		</ul>`)

	mustMerge(t, b, "tags", []interface{}{"a", "b", "c"})
	if added != 3 || removed != 0 {
		t.Fatalf("expected 3 adds, got %d adds %d removes", added, removed)
	}

	mustMerge(t, b, "tags", []interface{}{"b"})
	if removed != 2 {
		t.Errorf("expected 2 removes, got %d", removed)
	}

	// A reorder-free refresh fires nothing.
	before := added + removed
	mustMerge(t, b, "tags", []interface{}{"b"})
	if added+removed != before {
		t.Error("stable refresh must not fire notifications")
	}
}

// State ownership

func TestMergeDefensiveCopies(t *testing.T) {
	b := binder.New()
	mustMount(t, b, `<p b-text="user.name"></p>`)

	in := map[string]interface{}{"name": "Ada"}
	mustMerge(t, b, "user", in)

	// Mutating the caller's map after the merge must not leak in.
	in["name"] = "changed"
	v, err := b.Value("user.name")
	if err != nil {
		t.Fatal(err)
	}
	if v != "Ada" {
		t.Errorf("state must hold a copy, got %v", v)
	}

	// Mutating a read-out snapshot must not leak either.
	snap := b.State()
	snap["user"].(map[string]interface{})["name"] = "changed"
	if v, _ := b.Value("user.name"); v != "Ada" {
		t.Errorf("reads must hand out copies, got %v", v)
	}
}

func TestMergeSemantics(t *testing.T) {
	b := binder.New()
	mustMount(t, b, `<p></p>`)

	mustMerge(t, b, "cfg", map[string]interface{}{"a": float64(1), "nested": map[string]interface{}{"x": float64(1)}})
	mustMerge(t, b, "cfg", map[string]interface{}{"b": float64(2), "nested": map[string]interface{}{"y": float64(2)}})

	state := b.State()
	want := map[string]interface{}{
		"cfg": map[string]interface{}{
			"a": float64(1),
			"b": float64(2),
			"nested": map[string]interface{}{
				"x": float64(1),
				"y": float64(2),
			},
		},
	}
	if diff := cmp.Diff(want, state); diff != "" {
		t.Errorf("merge semantics (-want +got):\n%s", diff)
	}

	// A scalar replaces a subtree.
	mustMerge(t, b, "cfg.nested", "flat")
	if v, _ := b.Value("cfg.nested"); v != "flat" {
		t.Errorf("expected scalar replacement, got %v", v)
	}
}

func TestMergeRootRequiresMapping(t *testing.T) {
	b := binder.New()
	if err := b.Merge("", "scalar"); err == nil {
		t.Fatal("expected error for scalar root merge")
	}
}

func TestDelete(t *testing.T) {
	b := binder.New()
	mustMount(t, b, `<p b-text="user.name"></p>`)
	mustMerge(t, b, "user", map[string]interface{}{"name": "Ada"})

	if err := b.Delete("user.name"); err != nil {
		t.Fatal(err)
	}
	if err := b.Flush(); err != nil {
		t.Fatal(err)
	}
	if v, _ := b.Value("user.name"); v != nil {
		t.Errorf("expected undefined after delete, got %v", v)
	}
}

// Scheduler

func TestFlushIdempotent(t *testing.T) {
	b := binder.New()
	root := mustMount(t, b, `
		<ul b-each="tags" b-key="@t" b-alias="t">
			<li>{{@t}}</li>
		</ul>`)
	mustMerge(t, b, "tags", []interface{}{"a", "b"})

	before := root.Render()
	for i := 0; i < 3; i++ {
		if err := b.Flush(); err != nil {
			t.Fatal(err)
		}
	}
	if got := root.Render(); got != before {
		t.Errorf("repeated flush must be idempotent:\nbefore: %s\nafter:  %s", before, got)
	}
}

func TestTickOnlyWhenDirty(t *testing.T) {
	b := binder.New()
	root := mustMount(t, b, `<p b-text="msg"></p>`)

	if err := b.Merge("msg", "hi"); err != nil {
		t.Fatal(err)
	}
	// Merge alone must not render.
	if got := textOf(root); got == "hi" {
		t.Error("merge must not refresh synchronously")
	}
	if err := b.Tick(); err != nil {
		t.Fatal(err)
	}
	if got := textOf(root); got != "hi" {
		t.Errorf("tick must flush pending changes, got %q", got)
	}
}

func TestFailingBindingIsIsolated(t *testing.T) {
	b := binder.New()
	// $nope is never registered: that binding fails every pass, the
	// sibling keeps working.
	root := mustMount(t, b, `<div><p b-text="$nope(1)"></p><span b-text="msg"></span></div>`)

	mustMerge(t, b, "msg", "alive")
	if !strings.Contains(root.Render(), "alive") {
		t.Error("a failing binding must not block its siblings")
	}
}

// Custom functions through the binder

func TestBinderCustomFunction(t *testing.T) {
	b := binder.New()
	err := b.RegisterFunction("excite", func(v interface{}) (interface{}, error) {
		return strings.ToUpper(v.(string)) + "!", nil
	})
	if err != nil {
		t.Fatal(err)
	}

	root := mustMount(t, b, `<p b-text="$excite(word)"></p>`)
	mustMerge(t, b, "word", "go")
	if got := textOf(root); got != "GO!" {
		t.Errorf("expected %q, got %q", "GO!", got)
	}
}

// Manifest

func TestManifest(t *testing.T) {
	b := binder.New()
	root := mustMount(t, b, `<div><p id="greet"></p><ul id="list"></ul></div>`)

	m, err := binder.LoadManifest(strings.NewReader(`
bindings:
  - node: greet
    directive: text
    expression: user.name
`))
	if err != nil {
		t.Fatal(err)
	}
	if err := b.ApplyManifest(m); err != nil {
		t.Fatal(err)
	}

	mustMerge(t, b, "user", map[string]interface{}{"name": "Ada"})
	if !strings.Contains(root.Render(), "Ada") {
		t.Error("manifest binding must behave like an inline directive")
	}
}

func TestManifestMissingTarget(t *testing.T) {
	b := binder.New()
	mustMount(t, b, `<p id="x"></p>`)

	m := &binder.Manifest{Bindings: []binder.ManifestBinding{
		{Node: "nope", Directive: "text", Expression: "a"},
	}}
	if err := b.ApplyManifest(m); err == nil {
		t.Fatal("expected error for unknown target id")
	}
}

func TestManifestValidation(t *testing.T) {
	if _, err := binder.LoadManifest(strings.NewReader("bindings:\n  - directive: text\n")); err == nil {
		t.Error("expected error for missing node id")
	}
	if _, err := binder.LoadManifest(strings.NewReader("bindings:\n  - node: x\n")); err == nil {
		t.Error("expected error for missing directive")
	}
}
