package runtime

import (
	"testing"

	"github.com/barnforge/scriptcore/resolver"
	"github.com/barnforge/scriptcore/script"
	"github.com/barnforge/scriptcore/store"
	"github.com/barnforge/scriptcore/trace"
	"github.com/barnforge/scriptcore/types"
)

type stubInvoker struct {
	calledName string
	calledArgs []types.Value
	result     types.Value
}

func (s *stubInvoker) CallVerb(ref, name string, args []types.Value, ctx *ExecutionContext) (types.Value, *script.EvalError) {
	s.calledName = name
	s.calledArgs = args
	return s.result, nil
}

func (s *stubInvoker) CallFunction(ref, name string, args []types.Value, ctx *ExecutionContext) (types.Value, *script.EvalError) {
	s.calledName = name
	s.calledArgs = args
	return s.result, nil
}

func (s *stubInvoker) CallFunctionOnObject(target *store.GameObject, name string, args []types.Value, ctx *ExecutionContext) (types.Value, *script.EvalError) {
	s.calledName = name
	s.calledArgs = args
	return s.result, nil
}

type stubCommandProcessor struct {
	sent    []string
	session []string
}

func (s *stubCommandProcessor) SendToPlayer(message, sessionHandle string) {
	s.sent = append(s.sent, message)
	s.session = append(s.session, sessionHandle)
}

func newTestContext(t *testing.T) (*ExecutionContext, *store.InMemoryStore, *stubInvoker, *stubCommandProcessor) {
	t.Helper()
	st := store.NewInMemoryStore()
	player := &store.Player{
		GameObject:    store.GameObject{ID: 1, DbRef: 1, Location: 2},
		SessionHandle: "sess-1",
	}
	st.AddPlayer(player)
	room := &store.GameObject{ID: 2, DbRef: 2, Location: types.Nothing}
	st.AddObject(room)

	res := resolver.New(st, types.Nothing)
	inv := &stubInvoker{result: types.String("ok")}
	cp := &stubCommandProcessor{}

	ctx := NewExecutionContext(Globals{
		Player:           &player.GameObject,
		This:             room,
		CommandProcessor: cp,
		Variables:        map[string]string{"target": "sword"},
		NamedParameters:  map[string]types.Value{"amount": types.Int(5)},
	}, st, res, inv, trace.NewStack(), trace.NewLogger(nil, nil), 10)

	return ctx, st, inv, cp
}

func TestConsumeTickEnforcesBudget(t *testing.T) {
	ctx, _, _, _ := newTestContext(t)
	ctx.MaxTicks = 2
	if err := ctx.ConsumeTick(script.Position{}); err != nil {
		t.Fatalf("unexpected error on first tick: %v", err)
	}
	if err := ctx.ConsumeTick(script.Position{}); err != nil {
		t.Fatalf("unexpected error on second tick: %v", err)
	}
	err := ctx.ConsumeTick(script.Position{})
	if err == nil || err.Kind != types.ErrRecursionLimit {
		t.Fatalf("expected recursion limit error, got %v", err)
	}
}

func TestObjectOrTombstoneCachesSyntheticObject(t *testing.T) {
	ctx, _, _, _ := newTestContext(t)
	missing := types.ObjID(999)
	t1 := ctx.ObjectOrTombstone(missing)
	t2 := ctx.ObjectOrTombstone(missing)
	if !t1.IsTombstone() {
		t.Fatal("expected synthesized tombstone")
	}
	if t1 != t2 {
		t.Fatal("expected the same cached tombstone instance on repeated lookups")
	}
}

func TestGetSetPropertyRoundTrip(t *testing.T) {
	ctx, _, _, _ := newTestContext(t)
	target := types.Object(2)
	if err := ctx.SetProperty(target, "shortdesc", types.String("a dusty room"), script.Position{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	v, err := ctx.GetProperty(target, "shortdesc", script.Position{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Str() != "a dusty room" {
		t.Fatalf("got %q", v.Str())
	}
}

func TestGetPropertyRejectsNonObjectTarget(t *testing.T) {
	ctx, _, _, _ := newTestContext(t)
	_, err := ctx.GetProperty(types.Int(5), "name", script.Position{})
	if err == nil || err.Kind != types.ErrTypeMismatch {
		t.Fatalf("expected type mismatch error, got %v", err)
	}
}

func TestCallDispatchesGetObjectByDbRef(t *testing.T) {
	ctx, _, _, _ := newTestContext(t)
	v, err := ctx.Call("GetObjectByDbRef", []types.Value{types.Int(2)}, script.Position{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Kind() != types.KindObject || v.Obj() != 2 {
		t.Fatalf("got %v", v)
	}
}

func TestCallDispatchesVariablesGetAndGetParameter(t *testing.T) {
	ctx, _, _, _ := newTestContext(t)
	v, err := ctx.Call("VariablesGet", []types.Value{types.String("target")}, script.Position{})
	if err != nil || v.Str() != "sword" {
		t.Fatalf("got %v, err %v", v, err)
	}
	v, err = ctx.Call("GetParameter", []types.Value{types.String("amount")}, script.Position{})
	if err != nil || v.Int() != 5 {
		t.Fatalf("got %v, err %v", v, err)
	}
	_, err = ctx.Call("GetParameter", []types.Value{types.String("missing")}, script.Position{})
	if err == nil || err.Kind != types.ErrArityMismatch {
		t.Fatalf("expected arity mismatch, got %v", err)
	}
}

func TestCallDelegatesNestedCallsToInvoker(t *testing.T) {
	ctx, _, inv, _ := newTestContext(t)
	v, err := ctx.Call("CallFunctionOnObject", []types.Value{types.Object(2), types.String("Look"), types.Int(1)}, script.Position{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inv.calledName != "Look" || len(inv.calledArgs) != 1 {
		t.Fatalf("invoker not called as expected: %+v", inv)
	}
	if v.Str() != "ok" {
		t.Fatalf("got %v", v)
	}
}

func TestCallNotifySendsThroughCommandProcessor(t *testing.T) {
	ctx, _, _, cp := newTestContext(t)
	_, err := ctx.Call("Say", []types.Value{types.String("hello")}, script.Position{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cp.sent) != 1 || cp.sent[0] != "hello" || cp.session[0] != "sess-1" {
		t.Fatalf("got %+v", cp)
	}
}

func TestCallSayToRoomExcludesSelfWhenRequested(t *testing.T) {
	ctx, st, _, cp := newTestContext(t)
	other := &store.Player{
		GameObject:    store.GameObject{ID: 3, DbRef: 3, Location: 2},
		SessionHandle: "sess-2",
	}
	st.AddPlayer(other)

	_, err := ctx.Call("SayToRoom", []types.Value{types.String("a bell rings"), types.Bool(true)}, script.Position{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cp.sent) != 1 || cp.session[0] != "sess-2" {
		t.Fatalf("expected only the other player notified, got %+v", cp)
	}
}

func TestCallUnknownNameReturnsResolutionError(t *testing.T) {
	ctx, _, _, _ := newTestContext(t)
	_, err := ctx.Call("NotARealBuiltin", nil, script.Position{})
	if err == nil || err.Kind != types.ErrResolutionFailed {
		t.Fatalf("expected resolution failed, got %v", err)
	}
}
