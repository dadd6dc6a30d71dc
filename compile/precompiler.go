// Package compile implements the Precompiler (§4.2): it takes
// preprocessed source plus a prologue describing the invocation shape
// (pattern variables for a verb, typed parameters for a function) and
// produces a CompiledUnit ready for the cache and the engine.
package compile

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/barnforge/scriptcore/preprocess"
	"github.com/barnforge/scriptcore/script"
)

// Severity distinguishes a hard error from a filtered-by-default warning.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
)

// DiagnosticInfo is a single compiler diagnostic, already remapped to
// the user's original source line where possible (§4.2).
type DiagnosticInfo struct {
	Line       int
	Column     int
	Message    string
	Severity   Severity
	Code       string
	InPrologue bool
}

// CompiledUnit is the artifact the cache stores and the engine runs: the
// parsed program (prologue statements followed by the user body) plus
// enough bookkeeping to map runtime errors back to user-visible lines.
type CompiledUnit struct {
	Program      *script.Program
	LineOffset   int
	SourceHash   string
	PreparedSrc  string // prologue + preprocessed body, for stack-trace excerpts
}

// CompilationResult is the Precompiler's output.
type CompilationResult struct {
	Unit        *CompiledUnit
	Diagnostics []DiagnosticInfo
	Success     bool
}

// Options configures warning policy, mirroring config.Options'
// WarningsAsErrors/FilteredWarningCodes knobs (§6) without compile
// importing the config package back.
type Options struct {
	WarningsAsErrors     bool
	FilteredWarningCodes map[string]bool
}

// DefaultOptions matches the spec's stated defaults.
func DefaultOptions() Options {
	return Options{
		WarningsAsErrors: true,
		FilteredWarningCodes: map[string]bool{
			"nullable-assignment":     true,
			"nullable-member-access":  true,
		},
	}
}

// Precompiler turns source into CompilationResults.
type Precompiler struct {
	Opts Options
}

// NewPrecompiler creates a Precompiler with the given policy.
func NewPrecompiler(opts Options) *Precompiler {
	return &Precompiler{Opts: opts}
}

var identDotPattern = regexp.MustCompile(`\b([A-Za-z_][A-Za-z0-9_]*)\.`)

// reservedGlobals are identifiers the auto-resolve prologue never
// shadows: they are already part of the Globals surface (§4.5) or
// reserved words of the host language.
var reservedGlobals = map[string]bool{
	"This": true, "Player": true, "Caller": true, "Location": true,
	"Args": true, "Input": true, "Verb": true, "Variables": true,
	"Parameters": true, "me": true, "here": true, "player": true,
	"true": true, "false": true, "null": true,
}

// wellKnownStaticTypes are never treated as auto-resolvable identifiers
// even though they may appear as `Name.Member`.
var wellKnownStaticTypes = map[string]bool{
	"GameObject": true, "Room": true, "Player": true, "Exit": true,
	"Item": true, "Container": true, "ObjectResolver": true,
	"Math": true, "String": true,
}

// PrecompileVerb builds the prologue for a pattern-triggered verb body
// and compiles the resulting unit (§4.2).
func (p *Precompiler) PrecompileVerb(source, pattern string, variables map[string]string) CompilationResult {
	patternVars := variables
	if patternVars == nil {
		patternVars = extractPatternVariables(pattern)
	}

	preprocessed := preprocess.Preprocess(source)

	var prologue []string
	names := sortedKeys(patternVars)
	for _, name := range names {
		prologue = append(prologue, fmt.Sprintf("%s = VariablesGet(%q);", name, name))
	}

	declared := map[string]bool{}
	for _, name := range names {
		declared[name] = true
	}
	for _, ident := range autoResolvableIdents(preprocessed, declared) {
		prologue = append(prologue, fmt.Sprintf("%s = ResolveRequired(%q);", ident, ident))
	}

	return p.compile(prologue, preprocessed)
}

// PrecompileFunction builds the typed-parameter prologue for a function
// body and compiles the resulting unit (§4.2).
func (p *Precompiler) PrecompileFunction(source string, paramNames, paramTypes []string, returnType string) CompilationResult {
	preprocessed := preprocess.Preprocess(source)

	var prologue []string
	for _, name := range paramNames {
		prologue = append(prologue, fmt.Sprintf("%s = GetParameter(%q);", name, name))
	}

	return p.compile(prologue, preprocessed)
}

func (p *Precompiler) compile(prologue []string, preprocessedBody string) CompilationResult {
	prologueSrc := strings.Join(prologue, "\n")
	lineOffset := len(prologue)

	var full strings.Builder
	if prologueSrc != "" {
		full.WriteString(prologueSrc)
		full.WriteString("\n")
	}
	full.WriteString(preprocessedBody)

	parser := script.NewParser(full.String())
	program, errs := parser.ParseProgram()

	diags := make([]DiagnosticInfo, 0, len(errs))
	for _, e := range errs {
		inPrologue := e.Pos.Line <= lineOffset
		line := e.Pos.Line
		if !inPrologue {
			line -= lineOffset
		}
		diags = append(diags, DiagnosticInfo{
			Line:       line,
			Column:     e.Pos.Column,
			Message:    e.Message,
			Severity:   SeverityError,
			InPrologue: inPrologue,
		})
	}

	filtered := make([]DiagnosticInfo, 0, len(diags))
	errorCount := 0
	for _, d := range diags {
		if d.Severity == SeverityWarning && p.Opts.FilteredWarningCodes[d.Code] {
			continue
		}
		filtered = append(filtered, d)
		if d.Severity == SeverityError || p.Opts.WarningsAsErrors {
			errorCount++
		}
	}

	success := errorCount == 0
	var unit *CompiledUnit
	if success {
		unit = &CompiledUnit{
			Program:     program,
			LineOffset:  lineOffset,
			PreparedSrc: full.String(),
		}
	}

	return CompilationResult{Unit: unit, Diagnostics: filtered, Success: success}
}

// extractPatternVariables pulls `{name}` slot names out of a verb
// pattern into a set; the map carries no order, so callers sort the
// names they need in a stable order.
func extractPatternVariables(pattern string) map[string]string {
	vars := map[string]string{}
	if pattern == "" {
		return vars
	}
	var name strings.Builder
	inSlot := false
	for _, r := range pattern {
		switch {
		case r == '{':
			inSlot = true
			name.Reset()
		case r == '}':
			if inSlot && name.Len() > 0 {
				vars[name.String()] = ""
			}
			inSlot = false
		case inSlot:
			name.WriteRune(r)
		}
	}
	return vars
}

// autoResolvableIdents scans preprocessed source for `ident.member`
// occurrences not already accounted for by declared pattern-variable
// locals, reserved globals, or well-known static types (§4.2).
func autoResolvableIdents(source string, declared map[string]bool) []string {
	seen := map[string]bool{}
	var out []string
	for _, m := range identDotPattern.FindAllStringSubmatch(source, -1) {
		ident := m[1]
		if declared[ident] || reservedGlobals[ident] || wellKnownStaticTypes[ident] {
			continue
		}
		if len(ident) == 1 {
			continue // short single-letter identifiers are assumed lambda-local
		}
		if seen[ident] {
			continue
		}
		seen[ident] = true
		out = append(out, ident)
	}
	sort.Strings(out)
	return out
}

func sortedKeys(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
