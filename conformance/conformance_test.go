package conformance

import (
	"strings"
	"testing"
	"time"

	"github.com/barnforge/scriptcore/types"
)

func loadOrFatal(t *testing.T, name string) Scenario {
	t.Helper()
	s, err := LoadScenario("testdata/" + name)
	if err != nil {
		t.Fatalf("load %s: %v", name, err)
	}
	return s
}

// A. Echo verb: one message delivered, verb returns (true, "").
func TestScenarioA_EchoVerb(t *testing.T) {
	s := loadOrFatal(t, "a_echo_verb.yaml")
	result, err := Run(s)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !result.Success {
		t.Fatalf("expected success, got failure: %+v", result)
	}
	if result.Text != "" {
		t.Fatalf("expected empty text, got %q", result.Text)
	}
	if len(result.Notify) != 1 || result.Notify[0] != "You say: hello world" {
		t.Fatalf("expected exactly one notify %q, got %v", "You say: hello world", result.Notify)
	}
}

// B. Nested function call with access control: ACCESS_DENIED before the
// callee's own body runs.
func TestScenarioB_NestedFunctionAccessControl(t *testing.T) {
	s := loadOrFatal(t, "b_nested_function_access_control.yaml")
	result, err := Run(s)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result.ErrorKind != "ACCESS_DENIED" {
		t.Fatalf("expected ACCESS_DENIED, got %+v", result)
	}
	if !strings.Contains(result.Headline, "private") {
		t.Fatalf("expected headline to mention privacy, got %q", result.Headline)
	}
}

// C. Recursion limit: exceeding MaxCallDepth raises RECURSION_LIMIT and
// the outermost caller sees exactly one failure.
func TestScenarioC_RecursionLimit(t *testing.T) {
	s := loadOrFatal(t, "c_recursion_limit.yaml")
	result, err := Run(s)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result.ErrorKind != "RECURSION_LIMIT" {
		t.Fatalf("expected RECURSION_LIMIT, got %+v", result)
	}
}

// D. Timeout: an infinite loop returns TIMEOUT promptly, and a
// subsequent call on the same engine succeeds normally (stack
// discipline held across the timed-out invocation).
func TestScenarioD_Timeout(t *testing.T) {
	s := loadOrFatal(t, "d_timeout.yaml")
	f, err := Build(s)
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	start := time.Now()
	result, err := f.ExecuteVerbInput(types.ObjID(s.VerbObjectID), "spin", "spin")
	if err != nil {
		t.Fatalf("execute spin: %v", err)
	}
	if result.ErrorKind != "TIMEOUT" {
		t.Fatalf("expected TIMEOUT, got %+v", result)
	}
	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Fatalf("timeout took too long to surface: %v", elapsed)
	}

	after, err := f.ExecuteVerbInput(types.ObjID(s.VerbObjectID), "ping", "ping")
	if err != nil {
		t.Fatalf("execute ping: %v", err)
	}
	if !after.Success {
		t.Fatalf("expected the next call to succeed after a timeout, got %+v", after)
	}
}

// E. Cache reuse across inputs: the verb compiles once and both
// differently-parameterized runs see their own Variables.
func TestScenarioE_CacheReuseAcrossInputs(t *testing.T) {
	s := loadOrFatal(t, "e_cache_reuse.yaml")
	f, err := Build(s)
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	first, err := f.ExecuteVerbInput(types.ObjID(s.VerbObjectID), s.VerbName, "greet Ada")
	if err != nil {
		t.Fatalf("execute first: %v", err)
	}
	if len(first.Notify) != 1 || first.Notify[0] != "Hi, Ada" {
		t.Fatalf("expected %q, got %v", "Hi, Ada", first.Notify)
	}

	nVerbs, _ := f.Engine.Cache.Size()
	if nVerbs != 1 {
		t.Fatalf("expected exactly one compiled verb after the first run, got %d", nVerbs)
	}

	second, err := f.ExecuteVerbInput(types.ObjID(s.VerbObjectID), s.VerbName, "greet Bob")
	if err != nil {
		t.Fatalf("execute second: %v", err)
	}
	if len(second.Notify) != 1 || second.Notify[0] != "Hi, Bob" {
		t.Fatalf("expected %q, got %v", "Hi, Bob", second.Notify)
	}

	nVerbs, _ = f.Engine.Cache.Size()
	if nVerbs != 1 {
		t.Fatalf("expected the cache to still hold exactly one compiled verb, got %d", nVerbs)
	}
}

// F. Error reporting with context: headline and stack both attribute
// the failure to the correct user-source line.
func TestScenarioF_ErrorReportingWithContext(t *testing.T) {
	s := loadOrFatal(t, "f_error_reporting_with_context.yaml")
	result, err := Run(s)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result.ErrorKind != s.Expect.ErrorKind {
		t.Fatalf("expected error kind %q, got %q", s.Expect.ErrorKind, result.ErrorKind)
	}
	if result.Headline != s.Expect.Headline {
		t.Fatalf("expected headline %q, got %q", s.Expect.Headline, result.Headline)
	}
	if !strings.Contains(result.Trace, s.Expect.StackContains) {
		t.Fatalf("expected trace to contain %q, got %q", s.Expect.StackContains, result.Trace)
	}
}
