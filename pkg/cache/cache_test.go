package cache_test

import (
	"fmt"
	"testing"

	"github.com/anders-frisk/JSBinder/pkg/cache"
	"github.com/anders-frisk/JSBinder/pkg/parser"
	"github.com/anders-frisk/JSBinder/pkg/types"
)

func TestCacheNew(t *testing.T) {
	c := cache.New(10)
	if got := c.Len(); got != 0 {
		t.Fatalf("expected empty cache, got %d", got)
	}
	if got := c.Capacity(); got != 10 {
		t.Fatalf("expected capacity 10, got %d", got)
	}
}

func TestCacheDefaultCapacity(t *testing.T) {
	c := cache.New(0)
	if got := c.Capacity(); got != 256 {
		t.Fatalf("expected default capacity 256, got %d", got)
	}
}

func TestCacheSetGet(t *testing.T) {
	c := cache.New(4)
	expr, err := parser.Parse("user.name")
	if err != nil {
		t.Fatal(err)
	}
	c.Set("user.name", expr)
	if got := c.Len(); got != 1 {
		t.Fatalf("expected 1 entry, got %d", got)
	}
	got, ok := c.Get("user.name")
	if !ok {
		t.Fatal("expected cache hit")
	}
	if got != expr {
		t.Fatal("expected the same expression instance")
	}
	if _, ok := c.Get("other"); ok {
		t.Fatal("expected cache miss")
	}
}

func TestCacheEviction(t *testing.T) {
	c := cache.New(2)
	for i := 0; i < 3; i++ {
		src := fmt.Sprintf("field%d", i)
		expr, _ := parser.Parse(src)
		c.Set(src, expr)
	}
	if got := c.Len(); got != 2 {
		t.Fatalf("expected 2 entries after eviction, got %d", got)
	}
	if _, ok := c.Get("field0"); ok {
		t.Fatal("expected oldest entry evicted")
	}
	if _, ok := c.Get("field2"); !ok {
		t.Fatal("expected newest entry present")
	}
}

func TestCacheLRUOrder(t *testing.T) {
	c := cache.New(2)
	e0, _ := parser.Parse("a")
	e1, _ := parser.Parse("b")
	c.Set("a", e0)
	c.Set("b", e1)

	// Touch "a" so "b" becomes the eviction candidate.
	c.Get("a")
	e2, _ := parser.Parse("c")
	c.Set("c", e2)

	if _, ok := c.Get("a"); !ok {
		t.Fatal("recently used entry must survive")
	}
	if _, ok := c.Get("b"); ok {
		t.Fatal("least recently used entry must be evicted")
	}
}

func TestCacheGetOrCompile(t *testing.T) {
	c := cache.New(4)
	calls := 0
	compile := func(src string) (*types.Expression, error) {
		calls++
		return parser.Parse(src)
	}

	if _, err := c.GetOrCompile("x + 1", compile); err != nil {
		t.Fatal(err)
	}
	if _, err := c.GetOrCompile("x + 1", compile); err != nil {
		t.Fatal(err)
	}
	if calls != 1 {
		t.Fatalf("expected 1 compile call, got %d", calls)
	}
}

func TestCacheGetOrCompileErrorNotCached(t *testing.T) {
	c := cache.New(4)
	if _, err := c.GetOrCompile("a +", parser.Parse); err == nil {
		t.Fatal("expected compile error")
	}
	if got := c.Len(); got != 0 {
		t.Fatalf("errors must not be cached, got %d entries", got)
	}
}

func TestCacheClear(t *testing.T) {
	c := cache.New(4)
	expr, _ := parser.Parse("a")
	c.Set("a", expr)
	c.Clear()
	if got := c.Len(); got != 0 {
		t.Fatalf("expected empty cache after clear, got %d", got)
	}
}
