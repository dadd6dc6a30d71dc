package engine

import (
	"strings"

	"github.com/barnforge/scriptcore/store"
	"github.com/barnforge/scriptcore/types"
)

// checkAccess enforces a Function's access modifier (§4.6 step 2).
// callerThis is the invoking frame's This; at the top level that is the
// actor itself, per spec.md's normative "top-level caller is the actor".
func (e *Engine) checkAccess(fn *store.Function, thisObj, callerThis *store.GameObject) *Error {
	switch fn.Access {
	case store.Private:
		if callerThis == nil || callerThis.ID != thisObj.ID {
			return newError(types.ErrAccessDenied, "Function %q is private to %s", fn.Name, displayNameOrID(thisObj))
		}
	case store.Protected:
		if callerThis == nil || callerThis.ClassID != thisObj.ClassID {
			return newError(types.ErrAccessDenied, "Function %q is protected on %s", fn.Name, displayNameOrID(thisObj))
		}
	case store.Internal:
		// An owner-less This tolerates any caller, mirroring the Public
		// check's tolerance for a missing owner (spec.md §9's open
		// question, resolved here the same way for both paths since
		// Internal's check is itself an owner comparison).
		if thisObj.OwnerID != types.Nothing {
			if callerThis == nil || callerThis.OwnerID != thisObj.OwnerID {
				return newError(types.ErrAccessDenied, "Function %q is internal to %s's owner", fn.Name, displayNameOrID(thisObj))
			}
		}
	}
	return nil
}

func displayNameOrID(obj *store.GameObject) string {
	if obj == nil {
		return "<nil>"
	}
	if obj.Properties != nil {
		if p, ok := obj.Properties["name"]; ok && p.Value.Kind() == types.KindString && p.Value.Str() != "" {
			return p.Value.Str()
		}
	}
	return obj.ID.String()
}

// checkArity validates the positional argument count against a
// Function's declared parameters, then each argument's runtime kind
// against the declared type name (§4.6 step 3).
func checkArity(fn *store.Function, args []types.Value) *Error {
	if len(args) != len(fn.ParameterTypes) {
		return newError(types.ErrArityMismatch, "function %q expects %d argument(s), got %d", fn.Name, len(fn.ParameterTypes), len(args))
	}
	for i, typeName := range fn.ParameterTypes {
		if !valueMatchesType(args[i], typeName) {
			return newError(types.ErrTypeMismatch, "function %q parameter %q expects %s, got %s", fn.Name, paramName(fn, i), typeName, args[i].Kind())
		}
	}
	return nil
}

func paramName(fn *store.Function, i int) string {
	if i < len(fn.ParameterNames) {
		return fn.ParameterNames[i]
	}
	return "?"
}

// typeAcceptors maps the standard declared-type names (§4.6 step 3) to a
// predicate over a Value's runtime Kind. Names not present here are
// unknown and accept any value, null included.
var typeAcceptors = map[string]func(types.Value) bool{
	"string":      func(v types.Value) bool { return v.Kind() == types.KindString },
	"int":         func(v types.Value) bool { return v.Kind() == types.KindInt },
	"bool":        func(v types.Value) bool { return v.Kind() == types.KindBool },
	"float":       func(v types.Value) bool { return v.Kind() == types.KindFloat },
	"double":      func(v types.Value) bool { return v.Kind() == types.KindFloat },
	"decimal":     func(v types.Value) bool { return v.Kind() == types.KindFloat },
	"player":      func(v types.Value) bool { return v.Kind() == types.KindObject },
	"gameobject":  func(v types.Value) bool { return v.Kind() == types.KindObject },
	"objectclass": func(v types.Value) bool { return v.Kind() == types.KindObject },
	"object":      func(v types.Value) bool { return true },
}

// valueMatchesType applies §4.6 step 3's type-matching rule: unknown
// type names accept anything, and a "?"-suffixed nullable type name
// accepts null in addition to its base type.
func valueMatchesType(v types.Value, typeName string) bool {
	nullable := strings.HasSuffix(typeName, "?")
	base := strings.ToLower(strings.TrimSuffix(typeName, "?"))
	accept, known := typeAcceptors[base]
	if v.IsNull() {
		return nullable || base == "" || !known
	}
	if known {
		return accept(v)
	}
	return true
}
