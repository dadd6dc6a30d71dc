// Package initializer implements the CompilationInitializer (§4.4): a
// one-shot startup warm-up that compiles every stored verb and function
// into the cache before the first external command is accepted, so
// first-call latency never includes a compile.
package initializer

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/barnforge/scriptcore/cache"
	"github.com/barnforge/scriptcore/compile"
	"github.com/barnforge/scriptcore/store"
	"github.com/barnforge/scriptcore/trace"
	"github.com/barnforge/scriptcore/types"
)

// Report summarizes one warm-up run, per-category compiled/failed
// counts plus the individual failures (artifact name and first
// diagnostic message) for a caller that wants more than the log line.
type Report struct {
	VerbsCompiled     int
	VerbsFailed       int
	FunctionsCompiled int
	FunctionsFailed   int
	Failures          []Failure
}

// Failure names one artifact that failed to compile during warm-up.
type Failure struct {
	Kind    string // "verb" or "function"
	Name    string
	Message string
}

// Initializer warms a CompilationCache from a Store using a Precompiler.
type Initializer struct {
	Store       store.Store
	Cache       *cache.CompilationCache
	Precompiler *compile.Precompiler
	Logger      *trace.Logger

	// Concurrency bounds how many artifacts compile at once. Zero
	// defaults to 4, mirroring a modest worker pool rather than
	// compiling the whole store on one goroutine or unboundedly wide.
	Concurrency int
}

// New creates an Initializer with its dependencies.
func New(st store.Store, c *cache.CompilationCache, p *compile.Precompiler, logger *trace.Logger) *Initializer {
	return &Initializer{Store: st, Cache: c, Precompiler: p, Logger: logger, Concurrency: 4}
}

// Run walks every reachable verb and function in the store exactly once
// (deduplicated by ID, since class-level artifacts are reachable through
// every instance of that class) and compiles it into the cache. An
// individual artifact's failure is recorded and logged but never aborts
// the run; ctx cancellation stops dispatching new work and returns the
// partial report.
func (ini *Initializer) Run(ctx context.Context) (Report, error) {
	verbs, functions := ini.collect()

	limit := ini.Concurrency
	if limit <= 0 {
		limit = 4
	}

	var report Report
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for _, v := range verbs {
		v := v
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			ok, msg := ini.compileVerb(v)
			mu.Lock()
			if ok {
				report.VerbsCompiled++
			} else {
				report.VerbsFailed++
				report.Failures = append(report.Failures, Failure{Kind: "verb", Name: v.Name, Message: msg})
			}
			mu.Unlock()
			return nil
		})
	}
	for _, f := range functions {
		f := f
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			ok, msg := ini.compileFunction(f)
			mu.Lock()
			if ok {
				report.FunctionsCompiled++
			} else {
				report.FunctionsFailed++
				report.Failures = append(report.Failures, Failure{Kind: "function", Name: f.Name, Message: msg})
			}
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return report, fmt.Errorf("warm-up interrupted: %w", err)
	}
	return report, nil
}

func (ini *Initializer) compileVerb(v *store.Verb) (ok bool, message string) {
	result := ini.Precompiler.PrecompileVerb(v.Source, v.Pattern, nil)
	if !result.Success {
		msg := firstDiagnostic(v.Name, result.Diagnostics)
		if ini.Logger != nil {
			ini.Logger.Exception(v.OwnerID, v.Name, types.ErrCompilationFailed, msg)
		}
		return false, msg
	}
	ini.Cache.SetVerb(v.ID, cache.HashSource(v.Source), result.Unit)
	return true, ""
}

func (ini *Initializer) compileFunction(f *store.Function) (ok bool, message string) {
	result := ini.Precompiler.PrecompileFunction(f.Source, f.ParameterNames, f.ParameterTypes, f.ReturnType)
	if !result.Success {
		msg := firstDiagnostic(f.Name, result.Diagnostics)
		if ini.Logger != nil {
			ini.Logger.Exception(f.OwnerID, f.Name, types.ErrCompilationFailed, msg)
		}
		return false, msg
	}
	ini.Cache.SetFunction(f.ID, cache.HashSource(f.Source), result.Unit)
	return true, ""
}

// collect gathers every verb and function reachable from any stored
// object or class, deduplicated by ID: FindVerbsByObjectID/
// FindFunctionsForObject walk the inheritance chain, so the same
// class-level artifact is reachable through every instance of that
// class and must not be compiled once per instance.
func (ini *Initializer) collect() ([]*store.Verb, []*store.Function) {
	verbSeen := map[string]bool{}
	fnSeen := map[string]bool{}
	var verbs []*store.Verb
	var functions []*store.Function

	addVerbs := func(vs []*store.Verb) {
		for _, v := range vs {
			if !verbSeen[v.ID] {
				verbSeen[v.ID] = true
				verbs = append(verbs, v)
			}
		}
	}
	addFunctions := func(fs []*store.Function) {
		for _, f := range fs {
			if !fnSeen[f.ID] {
				fnSeen[f.ID] = true
				functions = append(functions, f)
			}
		}
	}

	for _, obj := range ini.Store.GetAllObjects() {
		addVerbs(ini.Store.FindVerbsByObjectID(obj.ID))
		addFunctions(ini.Store.FindFunctionsForObject(obj.ID, true))
	}
	for _, c := range ini.Store.GetAllObjectClasses() {
		for _, v := range c.Verbs {
			addVerbs([]*store.Verb{v})
		}
		for _, f := range c.Functions {
			addFunctions([]*store.Function{f})
		}
	}
	return verbs, functions
}

func firstDiagnostic(name string, diags []compile.DiagnosticInfo) string {
	if len(diags) == 0 {
		return fmt.Sprintf("%q: compilation failed with no diagnostics", name)
	}
	d := diags[0]
	var b strings.Builder
	fmt.Fprintf(&b, "%q: %d:%d: %s", name, d.Line, d.Column, d.Message)
	return b.String()
}
