// Command scriptcore-demo wires a store, a compilation cache, the
// precompiler, the initializer and the engine together and runs one
// verb end to end, the way cmd/barn wires a database, a server and a
// VM together but trimmed to this core's scope: no listener, no
// sessions, just one call against a small YAML-described world.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/barnforge/scriptcore/conformance"
	"github.com/barnforge/scriptcore/initializer"
	"github.com/barnforge/scriptcore/trace"
	"github.com/barnforge/scriptcore/types"
)

func main() {
	worldPath := flag.String("world", "cmd/scriptcore-demo/testdata/world.yaml", "YAML world fixture to load")
	verbName := flag.String("verb", "", "verb name to run (defaults to the world's own verb_name)")
	input := flag.String("input", "", "command line to feed the verb (defaults to the world's own input)")
	traceEnabled := flag.Bool("trace", false, "log verb calls and exceptions to stderr")
	traceFilter := flag.String("trace-filter", "", "comma-separated glob filters for -trace (e.g. 'look,say_*')")
	flag.Parse()

	world, err := conformance.LoadScenario(*worldPath)
	if err != nil {
		log.Fatalf("load world %s: %v", *worldPath, err)
	}

	var logger *trace.Logger
	if *traceEnabled {
		var filters []string
		if *traceFilter != "" {
			for _, f := range strings.Split(*traceFilter, ",") {
				filters = append(filters, strings.TrimSpace(f))
			}
		}
		logger = trace.NewLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)), filters)
	} else {
		logger = trace.NewLogger(nil, nil)
	}

	fixture, err := conformance.Build(world)
	if err != nil {
		log.Fatalf("build world: %v", err)
	}

	init := initializer.New(fixture.Store, fixture.Engine.Cache, fixture.Engine.Precompiler, logger)
	report, err := init.Run(context.Background())
	if err != nil {
		log.Fatalf("warm up cache: %v", err)
	}
	log.Printf("precompiled %d verbs (%d failed), %d functions (%d failed)",
		report.VerbsCompiled, report.VerbsFailed, report.FunctionsCompiled, report.FunctionsFailed)
	for _, f := range report.Failures {
		log.Printf("  %s %s: %s", f.Kind, f.Name, f.Message)
	}

	runVerb := world.VerbName
	if *verbName != "" {
		runVerb = *verbName
	}
	runInput := world.Input
	if *input != "" {
		runInput = *input
	}

	result, err := fixture.ExecuteVerbInput(types.ObjID(world.VerbObjectID), runVerb, runInput)
	if err != nil {
		log.Fatalf("execute %s: %v", runVerb, err)
	}

	for _, line := range result.Notify {
		fmt.Println(line)
	}
	if result.Text != "" {
		fmt.Println(result.Text)
	}
	if !result.Success {
		fmt.Fprintf(os.Stderr, "%s\n", result.Headline)
		if result.Trace != "" {
			fmt.Fprintln(os.Stderr, result.Trace)
		}
		os.Exit(1)
	}
}
