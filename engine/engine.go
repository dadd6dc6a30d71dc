// Package engine implements the ScriptEngine (§4.6): it orchestrates one
// verb or function call end to end — compile-or-fetch, bind the
// execution context, push a script-stack frame, run under a deadline and
// recursion bound, classify the result, and translate failures into the
// closed error taxonomy (§7). It is the only package that wires together
// the store, resolver, cache, compiler, runtime and trace packages, so
// it is also where the cyclic player-manager/object-manager style
// dependency the original system had is resolved: runtime depends on
// engine only through the narrow Invoker interface, and engine is built
// from already-constructed collaborators rather than reaching for
// globals (§9).
package engine

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/barnforge/scriptcore/cache"
	"github.com/barnforge/scriptcore/compile"
	"github.com/barnforge/scriptcore/config"
	"github.com/barnforge/scriptcore/resolver"
	"github.com/barnforge/scriptcore/runtime"
	"github.com/barnforge/scriptcore/script"
	"github.com/barnforge/scriptcore/store"
	"github.com/barnforge/scriptcore/trace"
	"github.com/barnforge/scriptcore/types"
)

// Engine is the construction-time injected bundle §9 calls for in place
// of global singletons (DbProvider.Instance, Logger, Config): one Engine
// owns one Cache, one Store, one Resolver and one Logger, and every
// invocation is served from those fixed collaborators.
type Engine struct {
	Store       store.Store
	Cache       *cache.CompilationCache
	Resolver    *resolver.ObjectResolver
	Precompiler *compile.Precompiler
	Config      config.Options
	Logger      *trace.Logger
}

// New wires an Engine. The Cache is always created fresh: it is a
// process-lifetime, in-memory structure per spec.md §1's non-goal of a
// persisted compilation cache.
func New(st store.Store, res *resolver.ObjectResolver, cfg config.Options, logger *trace.Logger) *Engine {
	return &Engine{
		Store:    st,
		Cache:    cache.New(),
		Resolver: res,
		Precompiler: compile.NewPrecompiler(compile.Options{
			WarningsAsErrors:     cfg.WarningsAsErrors,
			FilteredWarningCodes: cfg.FilteredWarningCodeSet(),
		}),
		Config: cfg,
		Logger: logger,
	}
}

// ExecuteVerb runs verb for actor, following §4.6's ExecuteVerb steps.
// ctx carries the caller's own cancellation (e.g. a session shutting
// down); the engine derives its own MaxExecutionTimeMs deadline from it.
func (e *Engine) ExecuteVerb(ctx context.Context, verb *store.Verb, input string, actor *store.Player, cp runtime.CommandProcessor, thisObjectID *types.ObjID, variables map[string]string) (success bool, text string, err error) {
	thisID := verb.OwnerID
	if thisObjectID != nil {
		thisID = *thisObjectID
	}
	thisObj := e.objectOrTombstone(thisID, "ExecuteVerb: this object %s not found, using tombstone", thisID)
	actorObj := e.objectOrTombstone(actor.ID, "ExecuteVerb: actor %s not found, using tombstone", actor.ID)

	g := runtime.Globals{
		Player:           actorObj,
		This:             thisObj,
		Caller:           nil,
		Admin:            thisObj.HasPermission("admin"),
		CallDepth:        1,
		CommandProcessor: cp,
		Input:            input,
		Args:             tokenizeArgs(input),
		Verb:             verb.Name,
		Variables:        variables,
	}

	deadline, cancel := context.WithTimeout(ctx, e.Config.ExecutionTimeout())
	defer cancel()

	stack := trace.NewStack()
	ec := runtime.NewExecutionContext(g, e.Store, e.Resolver, e, stack, e.Logger, 0)
	ec.Deadline = deadline

	inv := newInvocation(thisID, verb.Name, true, 1)
	if e.Logger != nil {
		e.Logger.VerbCall(thisObj.ID, verb.Name, nil, actorObj.ID, types.Nothing)
	}

	value, cerr := e.runVerb(ec, inv, verb)
	if cerr != nil {
		return false, "", cerr
	}
	if e.Logger != nil {
		e.Logger.VerbReturn(thisObj.ID, verb.Name, value)
	}
	if value.Kind() == types.KindBool {
		return value.Bool(), "", nil
	}
	return true, value.String(), nil
}

// ExecuteFunction runs fn for actor, following §4.6's ExecuteFunction
// steps: access control and arity/type validation happen synchronously
// in the Preparing state, before any compile or execute work.
func (e *Engine) ExecuteFunction(ctx context.Context, fn *store.Function, parameters []types.Value, actor *store.Player, cp runtime.CommandProcessor, thisObjectID *types.ObjID) (types.Value, error) {
	thisID := fn.OwnerID
	if thisObjectID != nil {
		thisID = *thisObjectID
	}
	thisObj := e.Store.GetObject(thisID)
	if thisObj == nil {
		return types.Null, newError(types.ErrContext, "ExecuteFunction: this object %s not found", thisID)
	}
	actorObj := e.objectOrTombstone(actor.ID, "ExecuteFunction: actor %s not found, using tombstone", actor.ID)

	if cerr := e.checkAccess(fn, thisObj, actorObj); cerr != nil {
		return types.Null, cerr
	}
	if cerr := checkArity(fn, parameters); cerr != nil {
		return types.Null, cerr
	}

	named := map[string]types.Value{}
	for i, name := range fn.ParameterNames {
		named[name] = parameters[i]
	}

	g := runtime.Globals{
		Player:           actorObj,
		This:             thisObj,
		Caller:           nil,
		Admin:            thisObj.HasPermission("admin"),
		CallDepth:        1,
		CommandProcessor: cp,
		Parameters:       parameters,
		NamedParameters:  named,
	}

	deadline, cancel := context.WithTimeout(ctx, e.Config.ExecutionTimeout())
	defer cancel()

	stack := trace.NewStack()
	ec := runtime.NewExecutionContext(g, e.Store, e.Resolver, e, stack, e.Logger, 0)
	ec.Deadline = deadline

	inv := newInvocation(thisID, fn.Name, false, 1)

	value, cerr := e.runFunction(ec, inv, fn)
	if cerr != nil {
		return types.Null, cerr
	}
	if !valueMatchesType(value, fn.ReturnType) && e.Logger != nil {
		e.Logger.Exception(thisObj.ID, fn.Name, types.ErrTypeMismatch,
			fmt.Sprintf("return value %s does not match declared return type %q", value.Kind(), fn.ReturnType))
	}
	return value, nil
}

// runVerb is the shared compile/run/cache/cleanup path for a verb
// invocation, used by both ExecuteVerb and nested CallVerb calls.
func (e *Engine) runVerb(ec *runtime.ExecutionContext, inv *Invocation, verb *store.Verb) (types.Value, *Error) {
	if inv.CallDepth > e.Config.MaxCallDepth {
		return types.Null, newError(types.ErrRecursionLimit, "call depth %d exceeds MaxCallDepth %d invoking verb %q", inv.CallDepth, e.Config.MaxCallDepth, verb.Name)
	}

	hash := cache.HashSource(verb.Source)
	unit, ok := e.Cache.GetVerb(verb.ID, hash)
	if !ok {
		result := e.Precompiler.PrecompileVerb(verb.Source, verb.Pattern, nil)
		if !result.Success {
			return types.Null, newError(types.ErrCompilationFailed, "%s", formatDiagnostics(verb.Name, result.Diagnostics))
		}
		unit = result.Unit
	}

	frame := &trace.Frame{Kind: trace.FrameVerb, ObjectID: ec.This.ID, ObjectName: displayName(e.Store, ec.This), Name: verb.Name}
	ec.Stack.Push(frame)
	defer ec.Stack.Pop()

	inv.state = stateRunning
	value, evalErr := e.run(ec, unit)
	if evalErr != nil {
		return types.Null, e.translateFailure(ec, inv, verb.Source, unit, evalErr)
	}
	inv.state = stateSucceeded
	e.Cache.SetVerb(verb.ID, hash, unit)
	return value, nil
}

// runFunction mirrors runVerb for a function invocation.
func (e *Engine) runFunction(ec *runtime.ExecutionContext, inv *Invocation, fn *store.Function) (types.Value, *Error) {
	if inv.CallDepth > e.Config.MaxCallDepth {
		return types.Null, newError(types.ErrRecursionLimit, "call depth %d exceeds MaxCallDepth %d invoking function %q", inv.CallDepth, e.Config.MaxCallDepth, fn.Name)
	}

	hash := cache.HashSource(fn.Source)
	unit, ok := e.Cache.GetFunction(fn.ID, hash)
	if !ok {
		result := e.Precompiler.PrecompileFunction(fn.Source, fn.ParameterNames, fn.ParameterTypes, fn.ReturnType)
		if !result.Success {
			return types.Null, newError(types.ErrCompilationFailed, "%s", formatDiagnostics(fn.Name, result.Diagnostics))
		}
		unit = result.Unit
	}

	frame := &trace.Frame{Kind: trace.FrameFunction, ObjectID: ec.This.ID, ObjectName: displayName(e.Store, ec.This), Name: fn.Name}
	ec.Stack.Push(frame)
	defer ec.Stack.Pop()

	inv.state = stateRunning
	value, evalErr := e.run(ec, unit)
	if evalErr != nil {
		return types.Null, e.translateFailure(ec, inv, fn.Source, unit, evalErr)
	}
	inv.state = stateSucceeded
	e.Cache.SetFunction(fn.ID, hash, unit)
	return value, nil
}

// run binds a fresh variable environment holding the invocation's
// globals, then tree-walks the compiled unit (prologue plus user
// statements, §4.6 step 8). Only the globals are Defined up front; the
// prologue's pattern/parameter locals come into being through the
// evaluator's first-assignment-defines rule like any other local.
func (e *Engine) run(ec *runtime.ExecutionContext, unit *compile.CompiledUnit) (types.Value, *script.EvalError) {
	env := script.NewEnvironment()
	bindGlobals(env, ec)
	ev := script.NewEvaluator(env, ec)
	result := ev.Run(unit.Program)
	if result.Failed() {
		return types.Null, result.Err
	}
	return result.Value, nil
}

// bindGlobals defines the Globals surface §4.5 lists as script-visible
// bare identifiers (This, Player, Caller, Location, me, here, Args,
// Input, Verb, Parameters), ahead of running the prologue and user
// body. Pattern variables and named function parameters are bound
// separately by the prologue's own VariablesGet/GetParameter calls
// (§4.2), so they are not duplicated here.
func bindGlobals(env *script.Environment, ec *runtime.ExecutionContext) {
	env.Define("This", types.Object(ec.This.ID))
	if ec.Player != nil {
		env.Define("Player", types.Object(ec.Player.ID))
		env.Define("me", types.Object(ec.Player.ID))
		env.Define("Location", types.Object(ec.Player.Location))
		env.Define("here", types.Object(ec.Player.Location))
	}
	if ec.Caller != nil {
		env.Define("Caller", types.Object(ec.Caller.ID))
	} else if ec.Player != nil {
		env.Define("Caller", types.Object(ec.Player.ID))
	}

	env.Define("Input", types.String(ec.Input))
	env.Define("Verb", types.String(ec.Verb))
	args := make([]types.Value, len(ec.Args))
	for i, a := range ec.Args {
		args[i] = types.String(a)
	}
	env.Define("Args", types.List(args))
	env.Define("Parameters", types.List(append([]types.Value{}, ec.Parameters...)))
}

// translateFailure maps an EvalError into the closed engine.Error
// taxonomy, records the failure onto the invocation's script stack with
// a user-source-relative line number and excerpt, and logs the
// exception (§4.7, §7).
func (e *Engine) translateFailure(ec *runtime.ExecutionContext, inv *Invocation, rawSource string, unit *compile.CompiledUnit, evalErr *script.EvalError) *Error {
	kind := errorKindFromEval(evalErr.Kind)

	recovered := trace.RecoverLine(evalErr, evalErr.Message, rawSource)
	line := recovered - unit.LineOffset
	inPrologue := line < 1
	if inPrologue {
		line = recovered
	}
	ec.Stack.RecordFailure(line, evalErr.Message, rawSource)

	if kind == types.ErrTimeout {
		inv.state = stateTimedOut
	} else {
		inv.state = stateFailed
	}
	if e.Logger != nil {
		e.Logger.Exception(ec.This.ID, inv.Name, kind, evalErr.Message)
	}
	cerr := wrapError(kind, evalErr, "%s", evalErr.Message)
	cerr.Trace = ec.Stack.PlainText()
	cerr.TraceMarkup = ec.Stack.Markup()
	return cerr
}

// CallVerb implements runtime.Invoker: a nested verb-to-verb call (§4.5,
// §6). Variables stays empty for a programmatic call — there is no
// input line to extract `{name}` slots from — so any pattern-variable
// locals the callee's prologue declares read as the empty string; this
// mirrors how the verb is written to be triggered by a command line,
// not invoked with positional arguments.
func (e *Engine) CallVerb(ref, name string, args []types.Value, callerCtx *runtime.ExecutionContext) (types.Value, *script.EvalError) {
	target, err := e.resolveRef(ref, callerCtx)
	if err != nil {
		return types.Null, &script.EvalError{Kind: types.ErrResolutionFailed, Message: err.Error()}
	}
	verb, err := resolver.LookupVerb(e.Store, target.ID, name)
	if err != nil {
		return types.Null, &script.EvalError{Kind: types.ErrResolutionFailed, Message: err.Error()}
	}

	ec := e.childContext(callerCtx, target)
	ec.Input = ""
	ec.Args = stringifyArgs(args)
	ec.Verb = verb.Name
	ec.Variables = nil

	inv := newInvocation(target.ID, verb.Name, true, ec.CallDepth)
	value, cerr := e.runVerb(ec, inv, verb)
	if cerr != nil {
		return types.Null, asEvalError(cerr)
	}
	return value, nil
}

// CallFunction implements runtime.Invoker: resolve ref, then dispatch
// exactly like CallFunctionOnObject.
func (e *Engine) CallFunction(ref, name string, args []types.Value, callerCtx *runtime.ExecutionContext) (types.Value, *script.EvalError) {
	target, err := e.resolveRef(ref, callerCtx)
	if err != nil {
		return types.Null, &script.EvalError{Kind: types.ErrResolutionFailed, Message: err.Error()}
	}
	return e.callFunctionOn(target, name, args, callerCtx)
}

// CallFunctionOnObject implements runtime.Invoker: the preprocessor's
// rewrite target for `ident.Method(args)` on a GameObject-typed local
// (§4.1 rule 3).
func (e *Engine) CallFunctionOnObject(target *store.GameObject, name string, args []types.Value, callerCtx *runtime.ExecutionContext) (types.Value, *script.EvalError) {
	return e.callFunctionOn(target, name, args, callerCtx)
}

func (e *Engine) callFunctionOn(target *store.GameObject, name string, args []types.Value, callerCtx *runtime.ExecutionContext) (types.Value, *script.EvalError) {
	fn, err := resolver.LookupFunction(e.Store, target.ID, name, true)
	if err != nil {
		return types.Null, &script.EvalError{Kind: types.ErrResolutionFailed, Message: err.Error()}
	}

	if cerr := e.checkAccess(fn, target, callerCtx.This); cerr != nil {
		return types.Null, asEvalError(cerr)
	}
	if cerr := checkArity(fn, args); cerr != nil {
		return types.Null, asEvalError(cerr)
	}

	named := map[string]types.Value{}
	for i, pname := range fn.ParameterNames {
		named[pname] = args[i]
	}

	ec := e.childContext(callerCtx, target)
	ec.Parameters = args
	ec.NamedParameters = named

	inv := newInvocation(target.ID, fn.Name, false, ec.CallDepth)
	value, cerr := e.runFunction(ec, inv, fn)
	if cerr != nil {
		return types.Null, asEvalError(cerr)
	}
	if !valueMatchesType(value, fn.ReturnType) && e.Logger != nil {
		e.Logger.Exception(target.ID, fn.Name, types.ErrTypeMismatch,
			fmt.Sprintf("return value %s does not match declared return type %q", value.Kind(), fn.ReturnType))
	}
	return value, nil
}

// childContext derives a nested invocation's ExecutionContext from its
// caller's: the previous This becomes the new Caller, CallDepth
// increases by one, and the shared collaborators (Store, Resolver,
// Stack, Logger, Deadline) are threaded through unchanged so the whole
// invocation tree shares one script stack and one wall-clock deadline
// (§4.5, §5) — the Go call stack itself is what "restores the previous
// context on return" in place of the source system's ambient
// thread-local slot.
func (e *Engine) childContext(callerCtx *runtime.ExecutionContext, target *store.GameObject) *runtime.ExecutionContext {
	g := runtime.Globals{
		Player:           callerCtx.Player,
		This:             target,
		Caller:           callerCtx.This,
		Admin:            target.HasPermission("admin"),
		CallDepth:        callerCtx.CallDepth + 1,
		CommandProcessor: callerCtx.CommandProcessor,
	}
	ec := runtime.NewExecutionContext(g, e.Store, e.Resolver, e, callerCtx.Stack, e.Logger, 0)
	ec.Deadline = callerCtx.Deadline
	return ec
}

// resolveRef resolves a call-site reference string to a GameObject,
// recognizing the "this"/"caller" relative keywords the invocation
// surface's sugar (§6: ThisVerb, Me, Here, ...) builds on top of before
// falling back to the general ObjectResolver chain (§4.8).
func (e *Engine) resolveRef(ref string, callerCtx *runtime.ExecutionContext) (*store.GameObject, error) {
	switch strings.ToLower(strings.TrimSpace(ref)) {
	case "this":
		return callerCtx.This, nil
	case "caller":
		if callerCtx.Caller != nil {
			return callerCtx.Caller, nil
		}
		return callerCtx.Player, nil
	}
	if strings.HasPrefix(ref, "#") {
		if n, perr := strconv.ParseInt(ref[1:], 10, 64); perr == nil {
			if obj := e.Store.GetObjectByDbRef(n); obj != nil {
				return obj, nil
			}
			return nil, fmt.Errorf("no object with dbref %s", ref)
		}
	}
	return e.Resolver.ResolveObject(ref, callerCtx.Player)
}

// objectOrTombstone logs a warning and synthesizes a tombstone when id
// is absent from the store (§4.6 step 2).
func (e *Engine) objectOrTombstone(id types.ObjID, format string, args ...any) *store.GameObject {
	if obj := e.Store.GetObject(id); obj != nil {
		return obj
	}
	if e.Logger != nil {
		e.Logger.Exception(id, "", types.ErrContext, fmt.Sprintf(format, args...))
	}
	return store.Tombstone(id)
}

func asEvalError(err *Error) *script.EvalError {
	return &script.EvalError{Kind: err.Kind, Message: err.Message}
}

func displayName(st store.Store, obj *store.GameObject) string {
	if obj == nil {
		return "<nil>"
	}
	if v, ok := st.GetProperty(obj, "name"); ok && v.Kind() == types.KindString && v.Str() != "" {
		return v.Str()
	}
	return obj.ID.String()
}

// tokenizeArgs splits a verb's raw input line on whitespace and drops
// the leading verb-name token, matching §4.6 step 4's "Args =
// tokenize(input) with the verb name removed".
func tokenizeArgs(input string) []string {
	fields := strings.Fields(input)
	if len(fields) == 0 {
		return nil
	}
	return fields[1:]
}

func stringifyArgs(args []types.Value) []string {
	out := make([]string, len(args))
	for i, a := range args {
		out[i] = a.String()
	}
	return out
}

func formatDiagnostics(name string, diags []compile.DiagnosticInfo) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d diagnostic(s) compiling %q", len(diags), name)
	for _, d := range diags {
		fmt.Fprintf(&b, "; %d:%d: %s", d.Line, d.Column, d.Message)
	}
	return b.String()
}
