package script

import "github.com/barnforge/scriptcore/types"

// Environment is a lexically-scoped variable binding table. The
// prologue the precompiler injects (pattern-variable locals for verbs,
// parameter locals for functions) lives in the outermost scope created
// for an invocation; nested blocks never introduce new scopes in this
// trimmed language, matching how verb and function bodies are flat
// statement lists rather than block-scoped like a general host language.
type Environment struct {
	vars   map[string]types.Value
	parent *Environment
}

// NewEnvironment creates a root environment with no parent.
func NewEnvironment() *Environment {
	return &Environment{vars: make(map[string]types.Value)}
}

// NewChildEnvironment creates a nested scope, used to isolate locals a
// host call's prologue defines from the caller's own locals.
func NewChildEnvironment(parent *Environment) *Environment {
	return &Environment{vars: make(map[string]types.Value), parent: parent}
}

// Get looks up a variable, searching outward through parent scopes.
func (e *Environment) Get(name string) (types.Value, bool) {
	if v, ok := e.vars[name]; ok {
		return v, true
	}
	if e.parent != nil {
		return e.parent.Get(name)
	}
	return types.Null, false
}

// Set assigns to an existing binding if one is visible, otherwise
// defines it in the current scope (the host language has no separate
// declaration syntax; first assignment defines).
func (e *Environment) Set(name string, value types.Value) {
	for env := e; env != nil; env = env.parent {
		if _, ok := env.vars[name]; ok {
			env.vars[name] = value
			return
		}
	}
	e.vars[name] = value
}

// Define always binds in the current scope, used by the engine to bind
// an invocation's globals (This, Player, Args, ...) before the script
// runs.
func (e *Environment) Define(name string, value types.Value) {
	e.vars[name] = value
}
