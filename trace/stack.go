package trace

import (
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/barnforge/scriptcore/script"
	"github.com/barnforge/scriptcore/types"
)

// FrameKind distinguishes a verb frame from a function frame, which
// changes both the lookup chain and the formatting separator (§4.7).
type FrameKind int

const (
	FrameVerb FrameKind = iota
	FrameFunction
)

func (k FrameKind) String() string {
	if k == FrameFunction {
		return "function"
	}
	return "verb"
}

// Frame is one entry of a ScriptStackTrace.
type Frame struct {
	Kind       FrameKind
	ObjectID   types.ObjID
	ObjectName string
	Name       string
	Line       int // 0 means unknown
	FailMsg    string
	Excerpt    string
}

// Stack is a per-invocation ScriptStackTrace. Unlike the teacher's
// global thread-local tracer, each top-level invocation owns one Stack
// and threads it through nested calls explicitly, since Go goroutines
// have no implicit thread-local storage to hang it off of.
type Stack struct {
	mu     sync.Mutex
	frames []*Frame
}

// NewStack creates an empty stack for one invocation.
func NewStack() *Stack {
	return &Stack{}
}

// Push adds a new innermost frame.
func (s *Stack) Push(f *Frame) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frames = append(s.frames, f)
}

// Pop removes the innermost frame. Called in the invocation's cleanup
// path regardless of outcome (§4.7).
func (s *Stack) Pop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.frames) > 0 {
		s.frames = s.frames[:len(s.frames)-1]
	}
}

// RecordFailure annotates the innermost frame with a line number and a
// short source excerpt, for readable error context (§4.7).
func (s *Stack) RecordFailure(line int, message, source string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.frames) == 0 {
		return
	}
	top := s.frames[len(s.frames)-1]
	top.Line = line
	top.FailMsg = message
	top.Excerpt = excerptAround(source, line)
}

// regexLinePattern extracts a line number from a host-exception-style
// message, the (b) fallback in §4.7's recovery order.
var regexLinePattern = regexp.MustCompile(`line (\d+)`)

// RecoverLine implements §4.7's line-number recovery order: exact
// compiler diagnostic position first, then a regex-extracted line
// number from the error text, then a heuristic scan of the user source
// for the first line containing a dot-call expression, and finally 0
// (unknown).
func RecoverLine(evalErr *script.EvalError, rawMessage, userSource string) int {
	if evalErr != nil && evalErr.Pos.Line > 0 {
		return evalErr.Pos.Line
	}
	if m := regexLinePattern.FindStringSubmatch(rawMessage); m != nil {
		var n int
		fmt.Sscanf(m[1], "%d", &n)
		if n > 0 {
			return n
		}
	}
	for i, line := range strings.Split(userSource, "\n") {
		if strings.Contains(line, ".") {
			return i + 1
		}
	}
	return 0
}

func excerptAround(source string, line int) string {
	if line <= 0 {
		return ""
	}
	lines := strings.Split(source, "\n")
	if line > len(lines) {
		return ""
	}
	return strings.TrimSpace(lines[line-1])
}

// PlainText renders up to the four innermost frames, for logs.
func (s *Stack) PlainText() string {
	return s.format(false)
}

// Markup renders up to the four innermost frames, for end-user display.
// Both formats use the same separator between object and member name
// (§4.7): "." for functions, ":" for verbs. They differ only in that the
// markup form wraps the object name in ** for a UI to style.
func (s *Stack) Markup() string {
	return s.format(true)
}

func (s *Stack) format(markup bool) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.frames)
	start := 0
	if n > 4 {
		start = n - 4
	}
	var lines []string
	for i := n - 1; i >= start; i-- {
		f := s.frames[i]
		sep := ":"
		if f.Kind == FrameFunction {
			sep = "."
		}
		objName := f.ObjectName
		if markup {
			objName = "**" + objName + "**"
		}
		lines = append(lines, fmt.Sprintf("%s %s%s%s (line %d)", f.Kind, objName, sep, f.Name, f.Line))
	}
	return strings.Join(lines, "\n")
}
