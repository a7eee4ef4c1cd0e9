// Package kg is the read-only knowledge graph the entity linker and tracker
// consult. It resolves names and aliases to entities and exposes the whole
// catalog for building surface-form matchers.
package kg

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/BTreeMap/DialogCore/internal/models"
)

// ErrNotFound is returned when no entity has the given name or alias.
var ErrNotFound = errors.New("entity not found")

// Entry is one catalog node with its surface aliases.
type Entry struct {
	Entity  *models.Entity
	Aliases []string
}

// Graph is the knowledge-graph surface the dialog core reads.
type Graph interface {
	// Lookup resolves a canonical name, case-insensitively.
	Lookup(ctx context.Context, name string) (*models.Entity, error)
	// LookupAlias resolves a canonical name or any alias.
	LookupAlias(ctx context.Context, alias string) (*models.Entity, error)
	// Aliases returns the aliases of a canonical name.
	Aliases(ctx context.Context, name string) ([]string, error)
	// Catalog lists every entry, sorted by canonical name.
	Catalog(ctx context.Context) ([]Entry, error)
	Close(ctx context.Context) error
}

// MemoryGraph is an in-process Graph backed by maps.
type MemoryGraph struct {
	mu      sync.RWMutex
	byName  map[string]Entry
	byAlias map[string]string
}

// NewMemoryGraph builds a graph from entries. Later entries replace earlier
// ones with the same name.
func NewMemoryGraph(entries ...Entry) *MemoryGraph {
	g := &MemoryGraph{
		byName:  make(map[string]Entry),
		byAlias: make(map[string]string),
	}
	for _, e := range entries {
		g.Add(e)
	}
	return g
}

func key(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

// Add inserts or replaces an entry.
func (g *MemoryGraph) Add(e Entry) {
	if e.Entity == nil || e.Entity.Name == "" {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	k := key(e.Entity.Name)
	g.byName[k] = e
	g.byAlias[k] = k
	if t := key(e.Entity.Talkable()); t != "" {
		if _, taken := g.byAlias[t]; !taken {
			g.byAlias[t] = k
		}
	}
	for _, a := range e.Aliases {
		if ak := key(a); ak != "" {
			g.byAlias[ak] = k
		}
	}
}

func (g *MemoryGraph) Lookup(_ context.Context, name string) (*models.Entity, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	e, ok := g.byName[key(name)]
	if !ok {
		return nil, ErrNotFound
	}
	return e.Entity, nil
}

func (g *MemoryGraph) LookupAlias(_ context.Context, alias string) (*models.Entity, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	k, ok := g.byAlias[key(alias)]
	if !ok {
		return nil, ErrNotFound
	}
	return g.byName[k].Entity, nil
}

func (g *MemoryGraph) Aliases(_ context.Context, name string) ([]string, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	e, ok := g.byName[key(name)]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]string(nil), e.Aliases...), nil
}

func (g *MemoryGraph) Catalog(_ context.Context) ([]Entry, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]Entry, 0, len(g.byName))
	for _, e := range g.byName {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Entity.Name < out[j].Entity.Name })
	return out, nil
}

func (g *MemoryGraph) Close(context.Context) error { return nil }

// SurfaceForms lists the lowercase strings under which an entry may be
// mentioned: its talkable name and aliases.
func SurfaceForms(e Entry) []string {
	seen := map[string]bool{}
	var out []string
	add := func(s string) {
		k := key(s)
		if k != "" && !seen[k] {
			seen[k] = true
			out = append(out, k)
		}
	}
	add(e.Entity.Talkable())
	for _, a := range e.Aliases {
		add(a)
	}
	return out
}
