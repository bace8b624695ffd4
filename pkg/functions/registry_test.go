package functions_test

import (
	"testing"

	"github.com/anders-frisk/JSBinder/pkg/functions"
)

func ident(v interface{}) (interface{}, error) { return v, nil }

func TestRegistryRegisterLookup(t *testing.T) {
	reg := functions.NewRegistry()
	if err := reg.Register("upper", ident); err != nil {
		t.Fatal(err)
	}
	if _, ok := reg.Lookup("upper"); !ok {
		t.Fatal("expected registered function")
	}
	if _, ok := reg.Lookup("missing"); ok {
		t.Fatal("expected miss for unregistered name")
	}
	if got := reg.Len(); got != 1 {
		t.Fatalf("expected 1 function, got %d", got)
	}
}

func TestRegistryOverwrite(t *testing.T) {
	reg := functions.NewRegistry()
	_ = reg.Register("f", func(interface{}) (interface{}, error) { return "old", nil })
	_ = reg.Register("f", func(interface{}) (interface{}, error) { return "new", nil })

	fn, _ := reg.Lookup("f")
	v, _ := fn(nil)
	if v != "new" {
		t.Errorf("later registration must win, got %v", v)
	}
	if got := reg.Len(); got != 1 {
		t.Errorf("overwrite must not grow the registry, got %d", got)
	}
}

func TestRegistryInvalidNames(t *testing.T) {
	reg := functions.NewRegistry()
	for _, name := range []string{"", "1abc", "has-dash", "has space", "$sigil"} {
		if err := reg.Register(name, ident); err == nil {
			t.Errorf("expected error for name %q", name)
		}
	}
	for _, name := range []string{"f", "_private", "camelCase", "x2"} {
		if err := reg.Register(name, ident); err != nil {
			t.Errorf("unexpected error for name %q: %v", name, err)
		}
	}
}

func TestRegistryNilFunc(t *testing.T) {
	reg := functions.NewRegistry()
	if err := reg.Register("f", nil); err == nil {
		t.Fatal("expected error for nil function")
	}
}

func TestRegistryRegisterAll(t *testing.T) {
	reg := functions.NewRegistry()
	err := reg.RegisterAll(
		functions.Def{Name: "a", Fn: ident},
		functions.Def{Name: "b", Fn: ident},
	)
	if err != nil {
		t.Fatal(err)
	}
	if got := reg.Len(); got != 2 {
		t.Fatalf("expected 2 functions, got %d", got)
	}

	err = reg.RegisterAll(functions.Def{Name: "bad name", Fn: ident})
	if err == nil {
		t.Fatal("expected error from invalid definition")
	}
}
