// Package runtime implements ExecutionContext and Globals (§4.5): the
// per-invocation state a running script sees, and the Host
// implementation the script evaluator calls back into for object
// resolution, property access, messaging and nested calls.
package runtime

import (
	"context"
	"fmt"

	"github.com/barnforge/scriptcore/resolver"
	"github.com/barnforge/scriptcore/script"
	"github.com/barnforge/scriptcore/store"
	"github.com/barnforge/scriptcore/trace"
	"github.com/barnforge/scriptcore/types"
)

// CommandProcessor is the output sink for player-visible messages (§6).
type CommandProcessor interface {
	SendToPlayer(message string, sessionHandle string)
}

// Invoker performs nested verb/function calls. It is implemented by the
// engine package; runtime depends on it only through this interface so
// that script -> runtime -> engine never becomes a cycle (engine is the
// only package that depends on all three).
type Invoker interface {
	CallVerb(ref, name string, args []types.Value, ctx *ExecutionContext) (types.Value, *script.EvalError)
	CallFunction(ref, name string, args []types.Value, ctx *ExecutionContext) (types.Value, *script.EvalError)
	CallFunctionOnObject(target *store.GameObject, name string, args []types.Value, ctx *ExecutionContext) (types.Value, *script.EvalError)
}

// Globals holds the invocation attributes §4.5 enumerates. Verb-specific
// fields (Input, Args, Verb, Variables) and function-specific fields
// (Parameters, NamedParameters) are left zero-valued for the frame kind
// that does not apply.
type Globals struct {
	Player *store.GameObject
	This   *store.GameObject
	Caller *store.GameObject

	// Admin marks that This carries the "admin" permission at invocation
	// time (§4.6 step 3). AdminGlobals and UserGlobals are functionally
	// identical per spec.md's open question; this flag is the marker a
	// permission-dependent helper could someday branch on.
	Admin bool

	CallDepth        int
	CommandProcessor CommandProcessor

	Input     string
	Args      []string
	Verb      string
	Variables map[string]string

	Parameters      []types.Value
	NamedParameters map[string]types.Value
}

// ExecutionContext is the per-invocation Host the evaluator runs
// against.
type ExecutionContext struct {
	Globals

	Store    store.Store
	Resolver *resolver.ObjectResolver
	Invoker  Invoker
	Stack    *trace.Stack
	Logger   *trace.Logger

	// Deadline is the engine's per-invocation cancellation token (§5):
	// checked cooperatively at every statement and loop iteration, since
	// the language has no blocking operations of its own to select on.
	Deadline context.Context

	MaxTicks int
	ticks    int

	tombstones map[types.ObjID]*store.GameObject
}

// NewExecutionContext creates a context ready to run one invocation.
func NewExecutionContext(g Globals, st store.Store, res *resolver.ObjectResolver, inv Invoker, stack *trace.Stack, logger *trace.Logger, maxTicks int) *ExecutionContext {
	return &ExecutionContext{
		Globals:    g,
		Store:      st,
		Resolver:   res,
		Invoker:    inv,
		Stack:      stack,
		Logger:     logger,
		MaxTicks:   maxTicks,
		tombstones: map[types.ObjID]*store.GameObject{},
	}
}

// ConsumeTick implements script.Host: enforces the execution tick
// budget used as the recursion-limit backstop for unbounded loops, and
// checks the invocation's deadline. The tick-granularity check is the
// language's only safe point, so it is also where MaxExecutionTime
// cancellation actually takes effect (§5's "at the next safe point").
func (c *ExecutionContext) ConsumeTick(pos script.Position) *script.EvalError {
	if c.Deadline != nil {
		select {
		case <-c.Deadline.Done():
			return &script.EvalError{Kind: types.ErrTimeout, Message: "execution time budget exceeded", Pos: pos}
		default:
		}
	}
	c.ticks++
	if c.MaxTicks > 0 && c.ticks > c.MaxTicks {
		return &script.EvalError{Kind: types.ErrRecursionLimit, Message: "execution tick budget exceeded", Pos: pos}
	}
	return nil
}

// ObjectOrTombstone resolves an ObjID to a GameObject, synthesizing and
// caching a tombstone (§4.5) when the store has no such object.
func (c *ExecutionContext) ObjectOrTombstone(id types.ObjID) *store.GameObject {
	if obj := c.Store.GetObject(id); obj != nil {
		return obj
	}
	if t, ok := c.tombstones[id]; ok {
		return t
	}
	t := store.Tombstone(id)
	c.tombstones[id] = t
	return t
}

func objectError(pos script.Position, format string, args ...any) *script.EvalError {
	return &script.EvalError{Kind: types.ErrResolutionFailed, Message: fmt.Sprintf(format, args...), Pos: pos}
}
