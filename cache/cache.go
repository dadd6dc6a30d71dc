// Package cache implements the CompilationCache (§4.3): a keyed store
// with separate verb and function namespaces, gated on the raw source's
// content hash so a stale compiled unit is never served to a caller
// whose source has since changed.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"

	"github.com/barnforge/scriptcore/compile"
)

// entry holds one cached compiled unit alongside its provenance.
type entry struct {
	unit       *compile.CompiledUnit
	hash       string
	insertedAt time.Time
}

// CompilationCache is safe for concurrent use: reads take a read lock,
// writes (Set/Invalidate/Clear) take a write lock and atomically replace
// the relevant entry (§4.3).
type CompilationCache struct {
	mu        sync.RWMutex
	verbs     map[string]entry
	functions map[string]entry
}

// New creates an empty cache.
func New() *CompilationCache {
	return &CompilationCache{
		verbs:     make(map[string]entry),
		functions: make(map[string]entry),
	}
}

// HashSource computes the cache key's content hash: SHA-256 of the raw
// user source, hex-encoded, lower-case.
func HashSource(rawSource string) string {
	sum := sha256.Sum256([]byte(rawSource))
	return hex.EncodeToString(sum[:])
}

// GetVerb returns the cached unit for id only if currentHash matches
// the hash it was stored under; a mismatch is treated as a cache miss,
// not an automatic eviction (§4.3).
func (c *CompilationCache) GetVerb(id, currentHash string) (*compile.CompiledUnit, bool) {
	return get(&c.mu, c.verbs, id, currentHash)
}

// SetVerb installs a compiled unit for id, keyed by its source hash.
func (c *CompilationCache) SetVerb(id, hash string, unit *compile.CompiledUnit) {
	set(&c.mu, c.verbs, id, hash, unit)
}

// InvalidateVerb removes a single verb's cache entry.
func (c *CompilationCache) InvalidateVerb(id string) {
	invalidate(&c.mu, c.verbs, id)
}

// GetFunction mirrors GetVerb for the function namespace.
func (c *CompilationCache) GetFunction(id, currentHash string) (*compile.CompiledUnit, bool) {
	return get(&c.mu, c.functions, id, currentHash)
}

// SetFunction mirrors SetVerb for the function namespace.
func (c *CompilationCache) SetFunction(id, hash string, unit *compile.CompiledUnit) {
	set(&c.mu, c.functions, id, hash, unit)
}

// InvalidateFunction mirrors InvalidateVerb for the function namespace.
func (c *CompilationCache) InvalidateFunction(id string) {
	invalidate(&c.mu, c.functions, id)
}

// Clear empties both namespaces.
func (c *CompilationCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.verbs = make(map[string]entry)
	c.functions = make(map[string]entry)
}

// Size reports the number of live entries in each namespace, useful for
// initializer warm-up logging and administrative inspection.
func (c *CompilationCache) Size() (verbs, functions int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.verbs), len(c.functions)
}

func get(mu *sync.RWMutex, m map[string]entry, id, currentHash string) (*compile.CompiledUnit, bool) {
	mu.RLock()
	defer mu.RUnlock()
	e, ok := m[id]
	if !ok || e.hash != currentHash {
		return nil, false
	}
	return e.unit, true
}

func set(mu *sync.RWMutex, m map[string]entry, id, hash string, unit *compile.CompiledUnit) {
	mu.Lock()
	defer mu.Unlock()
	m[id] = entry{unit: unit, hash: hash, insertedAt: time.Now()}
}

func invalidate(mu *sync.RWMutex, m map[string]entry, id string) {
	mu.Lock()
	defer mu.Unlock()
	delete(m, id)
}
