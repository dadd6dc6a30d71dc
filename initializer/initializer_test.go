package initializer

import (
	"context"
	"testing"

	"github.com/barnforge/scriptcore/cache"
	"github.com/barnforge/scriptcore/compile"
	"github.com/barnforge/scriptcore/store"
	"github.com/barnforge/scriptcore/types"
)

func newFixtureStore() *store.InMemoryStore {
	st := store.NewInMemoryStore()
	st.AddObject(&store.GameObject{
		ID:      types.ObjID(1),
		ClassID: "room",
		Verbs: map[string]*store.Verb{
			"look": {ID: "v-look", OwnerID: types.ObjID(1), Name: "look", Pattern: "look", Source: `notify(Player, "ok");`},
		},
		Functions: map[string]*store.Function{
			"describe": {ID: "f-describe", OwnerID: types.ObjID(1), Name: "describe", ReturnType: "string", Source: `return "a room";`},
		},
	})
	st.AddObject(&store.GameObject{
		ID:      types.ObjID(2),
		ClassID: "room",
		Verbs: map[string]*store.Verb{
			"broken": {ID: "v-broken", OwnerID: types.ObjID(2), Name: "broken", Pattern: "broken", Source: `this is not valid syntax )))`},
		},
	})
	st.AddClass(&store.ObjectClass{
		ID: "room",
		Verbs: map[string]*store.Verb{
			"inherited": {ID: "v-inherited", OwnerID: types.Nothing, Name: "inherited", Pattern: "inherited", Source: `return;`},
		},
	})
	return st
}

func TestRunCompilesEveryArtifactOnce(t *testing.T) {
	st := newFixtureStore()
	c := cache.New()
	p := compile.NewPrecompiler(compile.DefaultOptions())
	ini := New(st, c, p, nil)

	report, err := ini.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	// look, broken, inherited: 3 verbs total, one fails.
	if report.VerbsCompiled != 2 {
		t.Fatalf("expected 2 verbs compiled, got %d", report.VerbsCompiled)
	}
	if report.VerbsFailed != 1 {
		t.Fatalf("expected 1 verb failed, got %d", report.VerbsFailed)
	}
	if report.FunctionsCompiled != 1 {
		t.Fatalf("expected 1 function compiled, got %d", report.FunctionsCompiled)
	}
	if len(report.Failures) != 1 || report.Failures[0].Name != "broken" {
		t.Fatalf("expected one recorded failure for %q, got %+v", "broken", report.Failures)
	}

	nVerbs, nFuncs := c.Size()
	if nVerbs != 2 {
		t.Fatalf("expected cache to hold 2 compiled verbs, got %d", nVerbs)
	}
	if nFuncs != 1 {
		t.Fatalf("expected cache to hold 1 compiled function, got %d", nFuncs)
	}
}

func TestRunDeduplicatesInheritedVerbAcrossInstances(t *testing.T) {
	st := store.NewInMemoryStore()
	st.AddClass(&store.ObjectClass{
		ID: "widget",
		Verbs: map[string]*store.Verb{
			"ping": {ID: "v-ping", OwnerID: types.Nothing, Name: "ping", Pattern: "ping", Source: `return;`},
		},
	})
	for i := 1; i <= 5; i++ {
		st.AddObject(&store.GameObject{ID: types.ObjID(i), ClassID: "widget"})
	}

	c := cache.New()
	p := compile.NewPrecompiler(compile.DefaultOptions())
	ini := New(st, c, p, nil)

	report, err := ini.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.VerbsCompiled != 1 {
		t.Fatalf("expected the shared class verb to compile exactly once, got %d", report.VerbsCompiled)
	}
}
