// Package conformance runs the end-to-end scenarios (§8) against the
// fully wired stack: store, resolver, cache, precompiler and engine
// assembled fresh per scenario from a YAML fixture, adapted from the
// teacher's conformance/schema.go and loader.go.
package conformance

// Scenario is one fixture file: an object graph, the verb to run and
// its input line, and the expected outcome.
type Scenario struct {
	Name        string           `yaml:"name"`
	Description string           `yaml:"description,omitempty"`
	MaxCallDepth int             `yaml:"max_call_depth,omitempty"`
	MaxExecutionTimeMs int       `yaml:"max_execution_time_ms,omitempty"`
	Objects     []ObjectFixture  `yaml:"objects"`

	VerbObjectID int64  `yaml:"verb_object_id"`
	VerbName     string `yaml:"verb_name"`
	ActorID      int64  `yaml:"actor_id"`
	Input        string `yaml:"input"`

	Expect Expectation `yaml:"expect"`
}

// ObjectFixture describes one GameObject and the verbs/functions
// attached directly to it.
type ObjectFixture struct {
	ID        int64             `yaml:"id"`
	Name      string            `yaml:"name,omitempty"`
	OwnerID   int64             `yaml:"owner_id"`
	HasOwner  bool              `yaml:"has_owner,omitempty"`
	Verbs     []VerbFixture     `yaml:"verbs,omitempty"`
	Functions []FunctionFixture `yaml:"functions,omitempty"`
}

// VerbFixture is one Verb's pattern and source.
type VerbFixture struct {
	Name    string `yaml:"name"`
	Pattern string `yaml:"pattern"`
	Source  string `yaml:"source"`
}

// FunctionFixture is one Function's signature and source.
type FunctionFixture struct {
	Name           string   `yaml:"name"`
	Access         string   `yaml:"access,omitempty"` // public|private|protected|internal
	ParameterNames []string `yaml:"parameter_names,omitempty"`
	ParameterTypes []string `yaml:"parameter_types,omitempty"`
	ReturnType     string   `yaml:"return_type,omitempty"`
	Source         string   `yaml:"source"`
}

// Expectation is what a scenario asserts about the run's outcome.
// Fields left at their zero value are not checked.
type Expectation struct {
	Success       *bool    `yaml:"success,omitempty"`
	Text          string   `yaml:"text,omitempty"`
	Notify        []string `yaml:"notify,omitempty"`
	ErrorKind     string   `yaml:"error_kind,omitempty"`
	Headline      string   `yaml:"headline,omitempty"`
	StackContains string   `yaml:"stack_contains,omitempty"`
	WithinMs      int      `yaml:"within_ms,omitempty"`
}
