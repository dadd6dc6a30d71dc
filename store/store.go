package store

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/barnforge/scriptcore/types"
)

// Store is the object/property store contract the core consumes (§6).
// Implementations are expected to be safe for concurrent use; the core
// never assumes exclusive access to a given id.
type Store interface {
	GetObject(id types.ObjID) *GameObject
	GetObjectByDbRef(n int64) *GameObject
	GetAllObjects() []*GameObject
	GetObjectsInLocation(loc types.ObjID) []*GameObject

	GetClass(id string) *ObjectClass
	GetClassByName(name string) *ObjectClass
	GetAllObjectClasses() []*ObjectClass
	InheritsFrom(childClassID, parentClassID string) bool

	GetProperty(obj *GameObject, name string) (types.Value, bool)
	SetProperty(obj *GameObject, name string, value types.Value)

	FindVerbsByObjectID(id types.ObjID) []*Verb
	FindFunctionsForObject(id types.ObjID, includeInherited bool) []*Function

	GetOnlinePlayers() []*Player
}

// InMemoryStore is a reference implementation of Store, good enough to
// exercise every operation the engine performs. It is not a persistence
// layer: nothing here survives a restart, matching spec.md's framing of
// the real store as an external collaborator whose on-disk format is out
// of scope.
type InMemoryStore struct {
	mu      sync.RWMutex
	objects map[types.ObjID]*GameObject
	classes map[string]*ObjectClass
	players map[types.ObjID]*Player
}

// NewInMemoryStore creates an empty store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		objects: make(map[types.ObjID]*GameObject),
		classes: make(map[string]*ObjectClass),
		players: make(map[types.ObjID]*Player),
	}
}

// AddClass registers a class, keyed by its ID.
func (s *InMemoryStore) AddClass(c *ObjectClass) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.Verbs == nil {
		c.Verbs = map[string]*Verb{}
	}
	if c.Functions == nil {
		c.Functions = map[string]*Function{}
	}
	s.classes[c.ID] = c
}

// AddObject registers an object, keyed by its ID and dbref.
func (s *InMemoryStore) AddObject(o *GameObject) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if o.Properties == nil {
		o.Properties = map[string]*Property{}
	}
	if o.Verbs == nil {
		o.Verbs = map[string]*Verb{}
	}
	if o.Functions == nil {
		o.Functions = map[string]*Function{}
	}
	s.objects[o.ID] = o
}

// AddPlayer registers a player object, both under the object map and the
// online-players index.
func (s *InMemoryStore) AddPlayer(p *Player) {
	s.AddObject(&p.GameObject)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.players[p.ID] = p
}

func (s *InMemoryStore) GetObject(id types.ObjID) *GameObject {
	s.mu.RLock()
	defer s.mu.RUnlock()
	obj, ok := s.objects[id]
	if !ok || obj.Recycled {
		return nil
	}
	return obj
}

func (s *InMemoryStore) GetObjectByDbRef(n int64) *GameObject {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, obj := range s.objects {
		if obj.DbRef == n && !obj.Recycled {
			return obj
		}
	}
	return nil
}

func (s *InMemoryStore) GetAllObjects() []*GameObject {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*GameObject, 0, len(s.objects))
	for _, obj := range s.objects {
		if !obj.Recycled {
			out = append(out, obj)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *InMemoryStore) GetObjectsInLocation(loc types.ObjID) []*GameObject {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*GameObject
	for _, obj := range s.objects {
		if !obj.Recycled && obj.Location == loc {
			out = append(out, obj)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *InMemoryStore) GetClass(id string) *ObjectClass {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.classes[id]
}

func (s *InMemoryStore) GetClassByName(name string) *ObjectClass {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.classes {
		if strings.EqualFold(c.Name, name) {
			return c
		}
	}
	return nil
}

func (s *InMemoryStore) GetAllObjectClasses() []*ObjectClass {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*ObjectClass, 0, len(s.classes))
	for _, c := range s.classes {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// InheritsFrom walks the parent-class chain and reports whether
// parentClassID appears in it (a class always "inherits from" itself).
func (s *InMemoryStore) InheritsFrom(childClassID, parentClassID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := map[string]bool{}
	id := childClassID
	for id != "" {
		if id == parentClassID {
			return true
		}
		if seen[id] {
			return false // cycle guard; class chains must be acyclic
		}
		seen[id] = true
		c := s.classes[id]
		if c == nil {
			return false
		}
		id = c.ParentID
	}
	return false
}

// GetProperty reads a property, idempotent on repeated reads (§8-4): an
// object's own non-cleared property wins; a cleared or absent property
// falls through to the owning class chain's default.
func (s *InMemoryStore) GetProperty(obj *GameObject, name string) (types.Value, bool) {
	if obj == nil {
		return types.Null, false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if p, ok := obj.Properties[name]; ok && !p.Clear {
		return p.Value, true
	}
	classID := obj.ClassID
	for classID != "" {
		c := s.classes[classID]
		if c == nil {
			break
		}
		if def, ok := classDefault(c, name); ok {
			return def, true
		}
		classID = c.ParentID
	}
	return types.Null, false
}

// SetProperty writes a property on the object itself. Writes are
// observable to subsequent reads within the same or later frames (§8-4)
// because the store holds the single copy of record.
func (s *InMemoryStore) SetProperty(obj *GameObject, name string, value types.Value) {
	if obj == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if obj.Properties == nil {
		obj.Properties = map[string]*Property{}
	}
	obj.Properties[name] = &Property{Name: name, Value: value}
}

// classDefault looks up a class-level default property value; classes
// are the end of the inheritance chain for their own defaults.
func classDefault(c *ObjectClass, name string) (types.Value, bool) {
	if c.defaults == nil {
		return types.Null, false
	}
	v, ok := c.defaults[name]
	return v, ok
}

// SetClassDefault sets the default value inherited by instances of c
// (and its descendants) that never set or explicitly Clear the named
// property.
func (c *ObjectClass) SetClassDefault(name string, value types.Value) {
	if c.defaults == nil {
		c.defaults = map[string]types.Value{}
	}
	c.defaults[name] = value
}

// FindVerbsByObjectID returns the verbs reachable from id by walking
// object -> class -> parent class -> ... A descendant's verb always
// shadows a same-named ancestor's (§3's inheritance invariant, §8-5):
// the returned slice contains at most one verb per name, preferring the
// closest definition.
func (s *InMemoryStore) FindVerbsByObjectID(id types.ObjID) []*Verb {
	s.mu.RLock()
	defer s.mu.RUnlock()
	obj := s.objects[id]
	if obj == nil {
		return nil
	}
	seen := map[string]bool{}
	var out []*Verb
	for _, v := range obj.Verbs {
		key := strings.ToLower(v.Name)
		if !seen[key] {
			seen[key] = true
			out = append(out, v)
		}
	}
	classID := obj.ClassID
	for classID != "" {
		c := s.classes[classID]
		if c == nil {
			break
		}
		for _, v := range c.Verbs {
			key := strings.ToLower(v.Name)
			if !seen[key] {
				seen[key] = true
				out = append(out, v)
			}
		}
		classID = c.ParentID
	}
	return out
}

// FindFunctionsForObject mirrors FindVerbsByObjectID for functions. When
// includeInherited is false, only functions declared directly on the
// object are returned.
func (s *InMemoryStore) FindFunctionsForObject(id types.ObjID, includeInherited bool) []*Function {
	s.mu.RLock()
	defer s.mu.RUnlock()
	obj := s.objects[id]
	if obj == nil {
		return nil
	}
	seen := map[string]bool{}
	var out []*Function
	for _, f := range obj.Functions {
		key := strings.ToLower(f.Name)
		if !seen[key] {
			seen[key] = true
			out = append(out, f)
		}
	}
	if !includeInherited {
		return out
	}
	classID := obj.ClassID
	for classID != "" {
		c := s.classes[classID]
		if c == nil {
			break
		}
		for _, f := range c.Functions {
			key := strings.ToLower(f.Name)
			if !seen[key] {
				seen[key] = true
				out = append(out, f)
			}
		}
		classID = c.ParentID
	}
	return out
}

func (s *InMemoryStore) GetOnlinePlayers() []*Player {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Player
	for _, p := range s.players {
		if p.SessionHandle != "" && !p.Recycled {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// LookupVerb resolves a single verb by name against an object's
// inheritance chain (object -> class -> parent chain), case-insensitive
// on name and aliases, stopping at the first match (§3, §4.8).
func (s *InMemoryStore) LookupVerb(id types.ObjID, name string) (*Verb, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	obj := s.objects[id]
	if obj == nil {
		return nil, fmt.Errorf("object %s not found", id)
	}
	for _, v := range obj.Verbs {
		if v.MatchesName(name) {
			return v, nil
		}
	}
	classID := obj.ClassID
	for classID != "" {
		c := s.classes[classID]
		if c == nil {
			break
		}
		for _, v := range c.Verbs {
			if v.MatchesName(name) {
				return v, nil
			}
		}
		classID = c.ParentID
	}
	return nil, fmt.Errorf("verb %q not found on %s", name, id)
}

// LookupFunction resolves a single function by name, matching by name
// only (no alias list on functions), walking the same chain as verbs.
func (s *InMemoryStore) LookupFunction(id types.ObjID, name string) (*Function, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	obj := s.objects[id]
	if obj == nil {
		return nil, fmt.Errorf("object %s not found", id)
	}
	for _, f := range obj.Functions {
		if strings.EqualFold(f.Name, name) {
			return f, nil
		}
	}
	classID := obj.ClassID
	for classID != "" {
		c := s.classes[classID]
		if c == nil {
			break
		}
		for _, f := range c.Functions {
			if strings.EqualFold(f.Name, name) {
				return f, nil
			}
		}
		classID = c.ParentID
	}
	return nil, fmt.Errorf("function %q not found on %s", name, id)
}
