package binder

import (
	"fmt"
	"io"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/anders-frisk/JSBinder/pkg/dom"
)

// Manifest declares bindings externally instead of inline in the template.
// Each entry targets an element by its id attribute and attaches one
// directive to it. Applying a manifest writes the same b-* attributes a
// template author would, so manifest bindings and inline bindings behave
// identically from the register pass onward.
type Manifest struct {
	Bindings []ManifestBinding `yaml:"bindings"`
}

// ManifestBinding is one declared binding.
type ManifestBinding struct {
	// Node is the id attribute of the target element.
	Node string `yaml:"node"`
	// Directive is the directive name without the b- prefix: "if", "text",
	// "value", "each", "range", "attr-<name>", "class-<name>",
	// "style-<name>".
	Directive string `yaml:"directive"`
	// Expression is the binding expression source.
	Expression string `yaml:"expression"`

	// Repeat modifiers, meaningful for "each" and "range".
	Key      string `yaml:"key,omitempty"`
	Alias    string `yaml:"alias,omitempty"`
	Filter   string `yaml:"filter,omitempty"`
	Sort     string `yaml:"sort,omitempty"`
	Distinct string `yaml:"distinct,omitempty"`
	Skip     *int   `yaml:"skip,omitempty"`
	Limit    *int   `yaml:"limit,omitempty"`
	From     string `yaml:"from,omitempty"`
	To       string `yaml:"to,omitempty"`
}

// LoadManifest decodes a YAML manifest.
func LoadManifest(r io.Reader) (*Manifest, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var m Manifest
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("decoding manifest: %w", err)
	}
	for i, mb := range m.Bindings {
		if mb.Node == "" {
			return nil, fmt.Errorf("manifest binding %d: missing node id", i)
		}
		if mb.Directive == "" {
			return nil, fmt.Errorf("manifest binding %d: missing directive", i)
		}
	}
	return &m, nil
}

// ApplyManifest attaches the manifest's bindings to the mounted tree and
// marks the instance dirty. Targets are matched by id attribute; a missing
// target is an error.
func (b *Binder) ApplyManifest(m *Manifest) error {
	if b.root == nil {
		return fmt.Errorf("no display tree mounted")
	}

	for i, mb := range m.Bindings {
		target := findByID(b.root, mb.Node)
		if target == nil {
			return fmt.Errorf("manifest binding %d: no element with id %q", i, mb.Node)
		}

		target.SetAttr("b-"+mb.Directive, mb.Expression)
		setOptAttr(target, "b-key", mb.Key)
		setOptAttr(target, "b-alias", mb.Alias)
		setOptAttr(target, "b-filter", mb.Filter)
		setOptAttr(target, "b-sort", mb.Sort)
		setOptAttr(target, "b-distinct", mb.Distinct)
		setOptAttr(target, "b-from", mb.From)
		setOptAttr(target, "b-to", mb.To)
		if mb.Skip != nil {
			target.SetAttr("b-skip", strconv.Itoa(*mb.Skip))
		}
		if mb.Limit != nil {
			target.SetAttr("b-limit", strconv.Itoa(*mb.Limit))
		}

		// The node may have been registered before the manifest arrived;
		// clear the mark so the next pass picks the new directives up.
		delete(b.registered, target.ID)
	}

	b.needsRefresh = true
	return nil
}

func setOptAttr(n *dom.Node, name, value string) {
	if value != "" {
		n.SetAttr(name, value)
	}
}

func findByID(root *dom.Node, id string) *dom.Node {
	var found *dom.Node
	root.Walk(func(n *dom.Node) bool {
		if found != nil {
			return false
		}
		if v, ok := n.Attr("id"); ok && v == id {
			found = n
			return false
		}
		return true
	})
	return found
}
