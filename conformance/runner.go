package conformance

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/barnforge/scriptcore/config"
	"github.com/barnforge/scriptcore/engine"
	"github.com/barnforge/scriptcore/resolver"
	"github.com/barnforge/scriptcore/store"
	"github.com/barnforge/scriptcore/trace"
	"github.com/barnforge/scriptcore/types"
)

// Result is a scenario's observed outcome, shaped to compare directly
// against an Expectation.
type Result struct {
	Success   bool
	Text      string
	Notify    []string
	ErrorKind string
	Headline  string
	Trace     string
	Elapsed   time.Duration
}

// recordingProcessor is the CommandProcessor stand-in: it just appends
// every message it is handed, in delivery order.
type recordingProcessor struct {
	messages []string
}

func (r *recordingProcessor) SendToPlayer(message string, sessionHandle string) {
	r.messages = append(r.messages, message)
}

// Fixture is a scenario's assembled store plus the engine and actor
// built to run against it, exposed so a test can drive more than one
// ExecuteVerb call against the same engine (e.g. to observe cache
// reuse across inputs).
type Fixture struct {
	Store  *store.InMemoryStore
	Engine *engine.Engine
	Player *store.Player
}

// ExecuteVerbInput runs name's verb once with input, returning a Result.
func (f *Fixture) ExecuteVerbInput(thisObjectID types.ObjID, name, input string) (Result, error) {
	verb, err := resolver.LookupVerb(f.Store, thisObjectID, name)
	if err != nil {
		return Result{}, fmt.Errorf("lookup verb %q: %w", name, err)
	}
	variables, _ := resolver.MatchPattern(verb.Pattern, input)

	cp := &recordingProcessor{}
	start := time.Now()
	success, text, cerr := f.Engine.ExecuteVerb(context.Background(), verb, input, f.Player, cp, &thisObjectID, variables)
	elapsed := time.Since(start)

	result := Result{Success: success, Text: text, Notify: cp.messages, Elapsed: elapsed}
	if cerr != nil {
		if ee, ok := cerr.(*engine.Error); ok {
			result.ErrorKind = ee.Kind.String()
			result.Headline = ee.Headline()
			result.Trace = ee.Trace
		} else {
			result.ErrorKind = "UNKNOWN"
			result.Headline = cerr.Error()
		}
	}
	return result, nil
}

// Build assembles a store, resolver, cache, precompiler and engine from
// a scenario's fixture, without running anything, so a caller can drive
// the engine through more than one invocation (e.g. §8 scenario E's
// cache-reuse-across-inputs check).
func Build(s Scenario) (*Fixture, error) {
	st := store.NewInMemoryStore()
	accessByName := map[string]store.AccessModifier{
		"private":   store.Private,
		"protected": store.Protected,
		"internal":  store.Internal,
		"public":    store.Public,
	}

	for _, of := range s.Objects {
		obj := &store.GameObject{
			ID:        types.ObjID(of.ID),
			DbRef:     of.ID,
			OwnerID:   types.ObjID(of.OwnerID),
			Verbs:     map[string]*store.Verb{},
			Functions: map[string]*store.Function{},
		}
		if !of.HasOwner {
			obj.OwnerID = types.Nothing
		}
		if of.Name != "" {
			obj.Properties = map[string]*store.Property{
				"name": {Name: "name", Value: types.String(of.Name)},
			}
		}
		for _, vf := range of.Verbs {
			obj.Verbs[strings.ToLower(vf.Name)] = &store.Verb{
				ID: fmt.Sprintf("%d:%s", of.ID, vf.Name), OwnerID: obj.ID,
				Name: vf.Name, Pattern: vf.Pattern, Source: vf.Source,
			}
		}
		for _, ff := range of.Functions {
			obj.Functions[strings.ToLower(ff.Name)] = &store.Function{
				ID: fmt.Sprintf("%d:%s", of.ID, ff.Name), OwnerID: obj.ID,
				Name: ff.Name, ParameterNames: ff.ParameterNames, ParameterTypes: ff.ParameterTypes,
				ReturnType: ff.ReturnType, Access: accessByName[strings.ToLower(ff.Access)], Source: ff.Source,
			}
		}
		st.AddObject(obj)
	}

	actorID := types.ObjID(s.ActorID)
	player := &store.Player{
		GameObject:    store.GameObject{ID: actorID},
		SessionHandle: "conformance-session",
	}
	if existing := st.GetObject(actorID); existing != nil {
		player.GameObject = *existing
	}
	st.AddPlayer(player)

	cfg := config.Default()
	if s.MaxCallDepth > 0 {
		cfg.MaxCallDepth = s.MaxCallDepth
	}
	if s.MaxExecutionTimeMs > 0 {
		cfg.MaxExecutionTimeMs = s.MaxExecutionTimeMs
	}

	logger := trace.NewLogger(nil, nil)
	res := resolver.New(st, types.Nothing)
	eng := engine.New(st, res, cfg, logger)

	return &Fixture{Store: st, Engine: eng, Player: player}, nil
}

// Run builds a fixture and executes its scenario's verb exactly once,
// the shape every single-shot §8 scenario needs.
func Run(s Scenario) (Result, error) {
	f, err := Build(s)
	if err != nil {
		return Result{}, err
	}
	return f.ExecuteVerbInput(types.ObjID(s.VerbObjectID), s.VerbName, s.Input)
}
