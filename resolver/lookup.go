package resolver

import (
	"fmt"
	"strings"

	"github.com/barnforge/scriptcore/store"
	"github.com/barnforge/scriptcore/types"
)

// LookupVerb resolves a single verb by name against id's inheritance
// chain (§4.8), preferring the closest definition FindVerbsByObjectID
// already orders for. It is the engine-facing counterpart of the
// store's own chain walk, expressed only against the Store contract so
// the engine never depends on a concrete store implementation.
func LookupVerb(st store.Store, id types.ObjID, name string) (*store.Verb, error) {
	for _, v := range st.FindVerbsByObjectID(id) {
		if v.MatchesName(name) {
			return v, nil
		}
	}
	return nil, fmt.Errorf("verb %q not found on %s", name, id)
}

// LookupFunction mirrors LookupVerb for functions, matching by name
// only since functions carry no alias list.
func LookupFunction(st store.Store, id types.ObjID, name string, includeInherited bool) (*store.Function, error) {
	for _, f := range st.FindFunctionsForObject(id, includeInherited) {
		if strings.EqualFold(f.Name, name) {
			return f, nil
		}
	}
	return nil, fmt.Errorf("function %q not found on %s", name, id)
}
