package engine

import (
	"fmt"

	"github.com/barnforge/scriptcore/types"
)

// Error is the engine's typed failure (§7): a closed kind taxonomy plus
// a message and an optional wrapped cause. Engine callers switch on Kind
// rather than string-matching messages.
type Error struct {
	Kind    types.ErrorKind
	Message string
	Cause   error

	// Trace is the formatted script stack (§4.7) at the moment of
	// failure, innermost frame first, each line carrying the failing
	// line number once RecordFailure has annotated it. Empty for errors
	// raised before any frame was pushed (e.g. recursion-limit rejection
	// at the call-depth check, per §8 scenario C's "no further compile
	// attempts" rule).
	Trace string

	// TraceMarkup is the same stack rendered via Stack.Markup() (§4.7's
	// marked-up, user-facing form) instead of Stack.PlainText(). Empty
	// under the same conditions as Trace.
	TraceMarkup string
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// Headline renders the short "kind and root message" form §7 specifies
// for user-visible failure reporting, deliberately omitting Cause: the
// wrapped EvalError's own Error() string repeats the same message with
// a line:column prefix, which belongs in the script stack trace (§4.7),
// not the headline.
func (e *Error) Headline() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func newError(kind types.ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func wrapError(kind types.ErrorKind, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// errorKindFromEval maps a script.EvalError's kind onto the engine's
// kind, folding everything into SCRIPT_RUNTIME per §7's propagation
// policy except the closed kinds an EvalError can already carry (e.g.
// RECURSION_LIMIT from ConsumeTick), which pass through unchanged.
func errorKindFromEval(kind types.ErrorKind) types.ErrorKind {
	switch kind {
	case types.ErrRecursionLimit, types.ErrResolutionFailed, types.ErrArityMismatch, types.ErrTypeMismatch, types.ErrAccessDenied, types.ErrTimeout:
		return kind
	default:
		return types.ErrScriptRuntime
	}
}
