package cache

import (
	"testing"

	"github.com/barnforge/scriptcore/compile"
)

func TestHashSourceIsStableAndContentSensitive(t *testing.T) {
	a := HashSource(`return 1;`)
	b := HashSource(`return 1;`)
	c := HashSource(`return 2;`)
	if a != b {
		t.Fatalf("expected identical source to hash identically")
	}
	if a == c {
		t.Fatalf("expected different source to hash differently")
	}
}

func TestVerbCacheHitAndMiss(t *testing.T) {
	c := New()
	unit := &compile.CompiledUnit{}
	hash := HashSource(`return 1;`)
	c.SetVerb("v1", hash, unit)

	if got, ok := c.GetVerb("v1", hash); !ok || got != unit {
		t.Fatalf("expected cache hit with matching hash")
	}
	if _, ok := c.GetVerb("v1", HashSource(`return 2;`)); ok {
		t.Fatalf("expected cache miss on stale hash")
	}
	if _, ok := c.GetVerb("missing", hash); ok {
		t.Fatalf("expected miss for unknown id")
	}
}

func TestInvalidateAndClear(t *testing.T) {
	c := New()
	hash := HashSource(`x`)
	c.SetVerb("v1", hash, &compile.CompiledUnit{})
	c.SetFunction("f1", hash, &compile.CompiledUnit{})

	c.InvalidateVerb("v1")
	if _, ok := c.GetVerb("v1", hash); ok {
		t.Fatalf("expected v1 to be invalidated")
	}
	if _, ok := c.GetFunction("f1", hash); !ok {
		t.Fatalf("expected f1 to remain after verb invalidation")
	}

	c.Clear()
	if _, ok := c.GetFunction("f1", hash); ok {
		t.Fatalf("expected Clear to remove all entries")
	}
}

func TestSizeReportsPerNamespaceCounts(t *testing.T) {
	c := New()
	hash := HashSource(`x`)
	c.SetVerb("v1", hash, &compile.CompiledUnit{})
	c.SetVerb("v2", hash, &compile.CompiledUnit{})
	c.SetFunction("f1", hash, &compile.CompiledUnit{})

	verbs, functions := c.Size()
	if verbs != 2 || functions != 1 {
		t.Fatalf("got verbs=%d functions=%d, want 2 and 1", verbs, functions)
	}
}
