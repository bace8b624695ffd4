package dom_test

import (
	"strings"
	"testing"

	"github.com/anders-frisk/JSBinder/pkg/dom"
)

func TestParseFragmentAndRender(t *testing.T) {
	nodes, err := dom.ParseFragment(`<div class="box"><p>hello</p></div>`)
	if err != nil {
		t.Fatal(err)
	}
	if len(nodes) != 1 {
		t.Fatalf("expected 1 node, got %d", len(nodes))
	}
	got := nodes[0].Render()
	want := `<div class="box"><p>hello</p></div>`
	if got != want {
		t.Errorf("expected %s, got %s", want, got)
	}
}

func TestParseFragmentShapes(t *testing.T) {
	tests := []struct {
		name     string
		fragment string
		nodes    int
	}{
		{"single element", "<p>hello</p>", 1},
		{"multiple top-level nodes", "<h1>t</h1><p>b</p>", 2},
		{"void element", `<input type="text">`, 1},
		{"bare text", "hello", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nodes, err := dom.ParseFragment(tt.fragment)
			if err != nil {
				t.Fatalf("ParseFragment(%q): %v", tt.fragment, err)
			}
			if len(nodes) != tt.nodes {
				t.Errorf("expected %d nodes, got %d", tt.nodes, len(nodes))
			}
		})
	}
}

func TestParseFragmentDropsWhitespace(t *testing.T) {
	nodes, err := dom.ParseFragment("<ul>\n\t<li>a</li>\n\t<li>b</li>\n</ul>")
	if err != nil {
		t.Fatal(err)
	}
	if len(nodes[0].Children()) != 2 {
		t.Errorf("expected 2 children, got %d", len(nodes[0].Children()))
	}
}

func TestRenderEscapes(t *testing.T) {
	n := dom.NewElement("p")
	n.AppendChild(dom.NewText(`<script>"x"</script>`))
	if got := n.Render(); strings.Contains(got, "<script>") {
		t.Errorf("text content must be escaped, got %s", got)
	}
}

func TestRenderHidden(t *testing.T) {
	n := dom.NewElement("p")
	n.Hidden = true
	if got := n.Render(); got != "" {
		t.Errorf("hidden node must render nothing, got %s", got)
	}
}

func TestRenderSortsAttributes(t *testing.T) {
	n := dom.NewElement("a")
	n.SetAttr("z", "1")
	n.SetAttr("a", "2")
	if got := n.Render(); got != `<a a="2" z="1"></a>` {
		t.Errorf("attributes must render sorted, got %s", got)
	}
}

func TestInsertAfter(t *testing.T) {
	parent := dom.NewElement("ul")
	a, b, c := dom.NewElement("li"), dom.NewElement("li"), dom.NewElement("li")
	parent.AppendChild(a)
	parent.AppendChild(b)

	parent.InsertAfter(c, a)
	if parent.IndexOf(c) != 1 || parent.IndexOf(b) != 2 {
		t.Errorf("expected a,c,b order")
	}

	parent.InsertAfter(b, nil)
	if parent.IndexOf(b) != 0 {
		t.Errorf("nil ref must insert at front, got index %d", parent.IndexOf(b))
	}
}

func TestDetachAndAttached(t *testing.T) {
	root := dom.NewElement("div")
	child := dom.NewElement("p")
	grand := dom.NewElement("span")
	root.AppendChild(child)
	child.AppendChild(grand)

	if !grand.Attached(root) {
		t.Fatal("expected grandchild attached")
	}
	child.Detach()
	if grand.Attached(root) {
		t.Error("detaching the parent must detach the subtree")
	}
	if child.Parent() != nil {
		t.Error("detached node must have no parent")
	}
	if len(root.Children()) != 0 {
		t.Error("root must have no children after detach")
	}
}

func TestAppendChildReparents(t *testing.T) {
	p1, p2 := dom.NewElement("div"), dom.NewElement("div")
	c := dom.NewElement("p")
	p1.AppendChild(c)
	p2.AppendChild(c)
	if len(p1.Children()) != 0 {
		t.Error("append must detach from the previous parent")
	}
	if c.Parent() != p2 {
		t.Error("expected new parent")
	}
}

func TestCloneFreshIdentity(t *testing.T) {
	orig := dom.NewElement("li")
	orig.SetAttr("class", "item")
	orig.AppendChild(dom.NewText("x"))

	clone := orig.Clone()
	if clone.ID == orig.ID {
		t.Error("clone must get a fresh identity")
	}
	if clone.Children()[0].ID == orig.Children()[0].ID {
		t.Error("cloned children must get fresh identities")
	}

	clone.SetAttr("class", "changed")
	if v, _ := orig.Attr("class"); v != "item" {
		t.Error("clone attribute map must be independent")
	}
}

func TestDepth(t *testing.T) {
	root := dom.NewElement("div")
	child := dom.NewElement("p")
	grand := dom.NewText("x")
	root.AppendChild(child)
	child.AppendChild(grand)
	if root.Depth() != 0 || child.Depth() != 1 || grand.Depth() != 2 {
		t.Errorf("unexpected depths %d/%d/%d", root.Depth(), child.Depth(), grand.Depth())
	}
}

func TestWalkStopsDescent(t *testing.T) {
	root := dom.NewElement("div")
	skip := dom.NewElement("ul")
	inner := dom.NewElement("li")
	root.AppendChild(skip)
	skip.AppendChild(inner)

	visited := map[string]bool{}
	root.Walk(func(n *dom.Node) bool {
		visited[n.ID] = true
		return n != skip
	})
	if visited[inner.ID] {
		t.Error("returning false must stop descent into the subtree")
	}
}
