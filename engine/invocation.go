package engine

import (
	"github.com/google/uuid"

	"github.com/barnforge/scriptcore/trace"
	"github.com/barnforge/scriptcore/types"
)

// invocationState names the per-call state machine (§4.6).
type invocationState int

const (
	stateIdle invocationState = iota
	statePreparing
	stateCompiling
	stateRunning
	stateSucceeded
	stateFailed
	stateTimedOut
)

func (s invocationState) String() string {
	switch s {
	case statePreparing:
		return "preparing"
	case stateCompiling:
		return "compiling"
	case stateRunning:
		return "running"
	case stateSucceeded:
		return "succeeded"
	case stateFailed:
		return "failed"
	case stateTimedOut:
		return "timed-out"
	default:
		return "idle"
	}
}

// Invocation identifies one ExecuteVerb/ExecuteFunction call. Each one
// gets a random UUID in ID, standing in for the goroutine id Go does not
// expose; neither the logger nor the stack frames record it.
type Invocation struct {
	ID       uuid.UUID
	ThisID   types.ObjID
	Name     string
	IsVerb   bool
	state    invocationState
	CallDepth int
}

func newInvocation(thisID types.ObjID, name string, isVerb bool, callDepth int) *Invocation {
	return &Invocation{ID: uuid.New(), ThisID: thisID, Name: name, IsVerb: isVerb, CallDepth: callDepth, state: statePreparing}
}

func (inv *Invocation) frameKind() trace.FrameKind {
	if inv.IsVerb {
		return trace.FrameVerb
	}
	return trace.FrameFunction
}
