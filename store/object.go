// Package store defines the object/property store contract the engine
// consumes (§6) plus a reference in-memory implementation (§3's data
// model). The store's own persistence format is an external collaborator
// per spec.md §1; this package exists so the rest of the module has
// something concrete and testable to run against.
package store

import (
	"strings"

	"github.com/barnforge/scriptcore/types"
)

// AccessModifier is a Function's visibility, per the data model (§3).
type AccessModifier int

const (
	Public AccessModifier = iota
	Private
	Protected
	Internal
)

func (a AccessModifier) String() string {
	switch a {
	case Private:
		return "private"
	case Protected:
		return "protected"
	case Internal:
		return "internal"
	default:
		return "public"
	}
}

// Verb is a named, pattern-triggered script attached to an object or
// class.
type Verb struct {
	ID      string
	OwnerID types.ObjID
	Name    string
	Aliases []string
	Pattern string
	Source  string
}

// MatchesName reports whether name equals the verb's name or any alias,
// case-insensitively (§4.8).
func (v *Verb) MatchesName(name string) bool {
	if strings.EqualFold(v.Name, name) {
		return true
	}
	for _, a := range v.Aliases {
		if strings.EqualFold(a, name) {
			return true
		}
	}
	return false
}

// Function is a named script with a declared signature, invoked
// programmatically from other scripts.
type Function struct {
	ID             string
	OwnerID        types.ObjID
	Name           string
	ParameterNames []string
	ParameterTypes []string
	ReturnType     string
	Access         AccessModifier
	Source         string
}

// ObjectClass is a single-inheritance template providing default verbs,
// functions, and properties.
type ObjectClass struct {
	ID       string
	Name     string
	ParentID string // empty = root

	Verbs     map[string]*Verb
	Functions map[string]*Function

	defaults map[string]types.Value // default property values inherited by instances
}

// GameObject is an in-world entity: properties, a class, a location, and
// optional contents.
type GameObject struct {
	ID       types.ObjID
	DbRef    int64
	ClassID  string
	OwnerID  types.ObjID
	Location types.ObjID
	Contents []types.ObjID

	Properties map[string]*Property
	Verbs      map[string]*Verb
	Functions  map[string]*Function

	Permissions map[string]bool // e.g. "admin"

	// Recycled marks an object whose slot has been returned to the store;
	// a recycled object is never resolved or returned by lookups.
	Recycled bool
}

// IsTombstone reports whether this GameObject is a synthesized stand-in
// for a missing object (§4.5's "_isNullObject" marker).
func (g *GameObject) IsTombstone() bool {
	if g == nil {
		return true
	}
	if g.Properties == nil {
		return false
	}
	_, ok := g.Properties["_isNullObject"]
	return ok
}

// Tombstone synthesizes a placeholder GameObject for a missing id, per
// §4.5's contract that reads of This/Player/Caller never fail.
func Tombstone(id types.ObjID) *GameObject {
	return &GameObject{
		ID:       id,
		Location: types.Nothing,
		Properties: map[string]*Property{
			"_isNullObject": {Name: "_isNullObject", Value: types.Bool(true)},
			"name":          {Name: "name", Value: types.String("<missing object " + id.String() + ">")},
		},
		Verbs:     map[string]*Verb{},
		Functions: map[string]*Function{},
	}
}

// HasPermission reports whether the object carries a named permission
// (used by §4.6 step 3 to pick AdminGlobals vs UserGlobals).
func (g *GameObject) HasPermission(name string) bool {
	if g == nil || g.Permissions == nil {
		return false
	}
	return g.Permissions[name]
}

// Property is a single string-keyed, typed slot on an object. Clear
// marks a property that currently inherits its value from the parent
// class chain rather than holding its own (a LambdaMOO-family feature
// reinstated per SPEC_FULL.md's supplemented-features section).
type Property struct {
	Name  string
	Value types.Value
	Clear bool
}

// Player specializes GameObject with a session handle. Session/transport
// wiring itself is out of scope (§1); only the reference carried here
// matters to the core.
type Player struct {
	GameObject
	SessionHandle  string
	CredentialHash string
}

