package store

import (
	"testing"

	"github.com/barnforge/scriptcore/types"
)

// §8 law 4: property round-trip.
func TestSetProperty_ThenGetProperty_ReturnsWrittenValue(t *testing.T) {
	st := NewInMemoryStore()
	obj := &GameObject{ID: 1, DbRef: 1}
	st.AddObject(obj)

	st.SetProperty(obj, "description", types.String("a dusty room"))
	got, ok := st.GetProperty(obj, "description")
	if !ok {
		t.Fatalf("expected property to be found after SetProperty")
	}
	if !got.Equal(types.String("a dusty room")) {
		t.Fatalf("expected %q, got %q", "a dusty room", got.String())
	}

	// Idempotent on repeated reads with no intervening write.
	again, ok := st.GetProperty(obj, "description")
	if !ok || !again.Equal(got) {
		t.Fatalf("expected repeated read to return the same value")
	}
}

// A property without its own value, or explicitly Clear, falls through
// to the owning class chain's default.
func TestGetProperty_ClearFallsThroughToClassDefault(t *testing.T) {
	st := NewInMemoryStore()
	parent := &ObjectClass{ID: "root", Name: "Root"}
	parent.SetClassDefault("strength", types.Int(10))
	st.AddClass(parent)

	obj := &GameObject{ID: 1, DbRef: 1, ClassID: "root"}
	st.AddObject(obj)

	got, ok := st.GetProperty(obj, "strength")
	if !ok || got.Int() != 10 {
		t.Fatalf("expected class default 10, got %+v ok=%v", got, ok)
	}

	st.SetProperty(obj, "strength", types.Int(99))
	got, ok = st.GetProperty(obj, "strength")
	if !ok || got.Int() != 99 {
		t.Fatalf("expected own value 99 to win over class default, got %+v", got)
	}

	// Clearing the own property reverts to the class default.
	obj.Properties["strength"].Clear = true
	got, ok = st.GetProperty(obj, "strength")
	if !ok || got.Int() != 10 {
		t.Fatalf("expected cleared property to fall back to class default 10, got %+v", got)
	}
}

// §8 law 5 / §3 invariant: a descendant class's verb always masks a
// same-named verb further up the chain.
func TestFindVerbsByObjectID_DescendantMasksAncestor(t *testing.T) {
	st := NewInMemoryStore()
	grandparent := &ObjectClass{ID: "c0", Name: "C0"}
	grandparent.Verbs = map[string]*Verb{"look": {ID: "gp-look", Name: "look", Source: "return 0;"}}
	parent := &ObjectClass{ID: "c1", Name: "C1", ParentID: "c0"}
	parent.Verbs = map[string]*Verb{"look": {ID: "p-look", Name: "look", Source: "return 1;"}}
	st.AddClass(grandparent)
	st.AddClass(parent)

	obj := &GameObject{ID: 1, DbRef: 1, ClassID: "c1"}
	st.AddObject(obj)

	verb, err := st.LookupVerb(obj.ID, "look")
	if err != nil {
		t.Fatalf("lookup verb: %v", err)
	}
	if verb.ID != "p-look" {
		t.Fatalf("expected the closer class's verb (p-look) to mask the grandparent's, got %s", verb.ID)
	}

	verbs := st.FindVerbsByObjectID(obj.ID)
	count := 0
	for _, v := range verbs {
		if v.Name == "look" {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("expected exactly one 'look' verb in the reachable set, got %d", count)
	}
}

// Verb lookup matches case-insensitively on name and on any alias.
func TestVerb_MatchesName_CaseInsensitiveAndByAlias(t *testing.T) {
	v := &Verb{Name: "say", Aliases: []string{"\"", "speak"}}
	if !v.MatchesName("SAY") {
		t.Fatalf("expected case-insensitive name match")
	}
	if !v.MatchesName("Speak") {
		t.Fatalf("expected case-insensitive alias match")
	}
	if v.MatchesName("shout") {
		t.Fatalf("expected no match for an unrelated name")
	}
}

// A missing object yields a tombstone with the _isNullObject marker, per
// §4.5's contract that reads of This/Player/Caller never fail outright.
func TestTombstone_CarriesIsNullObjectMarker(t *testing.T) {
	ts := Tombstone(types.ObjID(42))
	if !ts.IsTombstone() {
		t.Fatalf("expected IsTombstone to be true")
	}
	name, ok := ts.Properties["name"]
	if !ok || name.Value.Str() == "" {
		t.Fatalf("expected a non-empty synthesized name property")
	}
}

// A recycled object is invisible to GetObject and GetObjectByDbRef.
func TestGetObject_RecycledObjectIsInvisible(t *testing.T) {
	st := NewInMemoryStore()
	obj := &GameObject{ID: 1, DbRef: 7, Recycled: true}
	st.AddObject(obj)

	if got := st.GetObject(1); got != nil {
		t.Fatalf("expected recycled object to be invisible to GetObject, got %+v", got)
	}
	if got := st.GetObjectByDbRef(7); got != nil {
		t.Fatalf("expected recycled object to be invisible to GetObjectByDbRef, got %+v", got)
	}
}

func TestInheritsFrom_WalksParentChain(t *testing.T) {
	st := NewInMemoryStore()
	st.AddClass(&ObjectClass{ID: "c0", Name: "C0"})
	st.AddClass(&ObjectClass{ID: "c1", Name: "C1", ParentID: "c0"})
	st.AddClass(&ObjectClass{ID: "c2", Name: "C2", ParentID: "c1"})

	if !st.InheritsFrom("c2", "c0") {
		t.Fatalf("expected c2 to inherit from c0 transitively")
	}
	if st.InheritsFrom("c0", "c2") {
		t.Fatalf("did not expect c0 to inherit from its own descendant")
	}
	if !st.InheritsFrom("c2", "c2") {
		t.Fatalf("expected a class to inherit from itself")
	}
}
