// Package resolver implements ObjectResolver (§4.8): the name/reference
// resolution chain scripts and the engine use to turn a bare word like
// "me", "#5", or a player's name into a concrete GameObject.
package resolver

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/barnforge/scriptcore/store"
	"github.com/barnforge/scriptcore/types"
)

// ObjectResolver resolves references against a Store.
type ObjectResolver struct {
	St         store.Store
	SystemObjD types.ObjID
}

// New creates a resolver bound to a store, with a designated system
// object used for the "system" literal keyword.
func New(st store.Store, systemObjID types.ObjID) *ObjectResolver {
	return &ObjectResolver{St: st, SystemObjD: systemObjID}
}

// ResolveObject implements the first-match resolution chain (§4.8).
// callerPlayer is the invocation's Player: it answers "me"/"here" and is
// the base for the relative lookups in the player's current location and
// inventory. With a nil callerPlayer, "me"/"here" fail and the location
// and inventory steps are skipped.
func (r *ObjectResolver) ResolveObject(ref string, callerPlayer *store.GameObject) (*store.GameObject, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, fmt.Errorf("resolve object: empty reference")
	}

	switch strings.ToLower(ref) {
	case "me":
		if callerPlayer == nil {
			return nil, fmt.Errorf("resolve object %q: no caller player in scope", ref)
		}
		return callerPlayer, nil
	case "here":
		if callerPlayer == nil {
			return nil, fmt.Errorf("resolve object %q: no caller player in scope", ref)
		}
		loc := r.St.GetObject(callerPlayer.Location)
		if loc == nil {
			return nil, fmt.Errorf("resolve object %q: location not found", ref)
		}
		return loc, nil
	case "system":
		if obj := r.St.GetObject(r.SystemObjD); obj != nil {
			return obj, nil
		}
		return nil, fmt.Errorf("resolve object %q: system object not configured", ref)
	}

	if strings.HasPrefix(ref, "#") {
		n, err := strconv.ParseInt(ref[1:], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("resolve object %q: invalid dbref", ref)
		}
		if obj := r.St.GetObjectByDbRef(n); obj != nil {
			return obj, nil
		}
		return nil, fmt.Errorf("resolve object %q: no object with that dbref", ref)
	}

	if className, ok := classSyntax(ref); ok {
		if c := r.St.GetClassByName(className); c != nil {
			return classPlaceholder(c), nil
		}
		return nil, fmt.Errorf("resolve object %q: no class named %q", ref, className)
	}

	if c := r.St.GetClass(ref); c != nil {
		return classPlaceholder(c), nil
	}

	for _, p := range r.St.GetOnlinePlayers() {
		if name, ok := r.St.GetProperty(&p.GameObject, "name"); ok && strings.Contains(strings.ToLower(name.Str()), strings.ToLower(ref)) {
			return &p.GameObject, nil
		}
	}

	if callerPlayer != nil {
		if obj := r.findByNameOrDescription(r.St.GetObjectsInLocation(callerPlayer.Location), ref); obj != nil {
			return obj, nil
		}
		if obj := r.findByNameOrDescription(r.St.GetObjectsInLocation(callerPlayer.ID), ref); obj != nil {
			return obj, nil
		}
	}
	if obj := r.findByNameOrDescription(r.St.GetAllObjects(), ref); obj != nil {
		return obj, nil
	}

	if c := r.St.GetClassByName(ref); c != nil {
		return classPlaceholder(c), nil
	}

	return nil, fmt.Errorf("resolve object %q: no match", ref)
}

// ResolveByID resolves a `$IDENT`-style reference (§4.1 rule 2, §6's
// GetObjectById surface op): the system object's own property named id
// must hold an object reference. This mirrors the teacher's own
// #0.prop corification (vm/verbs.go's getPrimitivePrototype,
// parser/unparse.go's `$prop` <-> `#0.prop` round-trip) rather than a
// separate string-id registry — `$name` is sugar for "the property
// named name on the system object", nothing more.
func (r *ObjectResolver) ResolveByID(id string) (*store.GameObject, error) {
	sys := r.St.GetObject(r.SystemObjD)
	if sys == nil {
		return nil, fmt.Errorf("resolve id %q: system object not configured", id)
	}
	v, ok := r.St.GetProperty(sys, id)
	if !ok || v.Kind() != types.KindObject {
		return nil, fmt.Errorf("resolve id %q: no such property on the system object", id)
	}
	obj := r.St.GetObject(v.Obj())
	if obj == nil {
		return nil, fmt.Errorf("resolve id %q: target object %s not found", id, v.Obj())
	}
	return obj, nil
}

// findByNameOrDescription prefers a prefix match on name/shortdesc, then
// falls back to containment (§4.8 step 6).
func (r *ObjectResolver) findByNameOrDescription(candidates []*store.GameObject, ref string) *store.GameObject {
	needle := strings.ToLower(ref)
	var containment *store.GameObject
	for _, obj := range candidates {
		for _, prop := range []string{"name", "shortdesc"} {
			v, ok := r.St.GetProperty(obj, prop)
			if !ok || v.Kind() != types.KindString {
				continue
			}
			val := strings.ToLower(v.Str())
			if strings.HasPrefix(val, needle) {
				return obj
			}
			if containment == nil && strings.Contains(val, needle) {
				containment = obj
			}
		}
	}
	return containment
}

func classSyntax(ref string) (string, bool) {
	if strings.HasPrefix(ref, "class:") {
		return ref[len("class:"):], true
	}
	if strings.HasSuffix(strings.ToLower(ref), ".class") {
		return ref[:len(ref)-len(".class")], true
	}
	return "", false
}

// classPlaceholder renders a class reference as a synthetic object the
// scripting language can hold and pass around, since the host language
// does not have a distinct "class reference" value kind.
func classPlaceholder(c *store.ObjectClass) *store.GameObject {
	return &store.GameObject{
		ID:       types.Nothing,
		ClassID:  c.ID,
		Location: types.Nothing,
		Properties: map[string]*store.Property{
			"name": {Name: "name", Value: types.String(c.Name)},
		},
	}
}
