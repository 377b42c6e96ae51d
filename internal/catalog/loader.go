package catalog

import (
	"context"
	"fmt"
	"sync"

	"github.com/qg-labs/qgi/internal/registry"
)

// Snapshot is a loaded catalog: where its checkout lives and what it holds.
type Snapshot struct {
	Name      string
	Dir       string
	Artifacts []*registry.Artifact
	Warnings  []string
}

// Find returns the named artifact from the snapshot.
func (s *Snapshot) Find(name string) (*registry.Artifact, error) {
	a, err := registry.Find(s.Artifacts, name)
	if err != nil {
		return nil, fmt.Errorf("%s catalog: %w", s.Name, err)
	}
	return a, nil
}

// Loader loads a catalog by name.
type Loader interface {
	Load(ctx context.Context, name string) (*Snapshot, error)
}

// Manager loads each configured catalog at most once per process.
type Manager struct {
	mu     sync.Mutex
	caches map[string]*Cache
	loaded map[string]*Snapshot
}

// NewManager returns a manager over the given caches.
func NewManager(caches ...*Cache) *Manager {
	m := &Manager{
		caches: make(map[string]*Cache, len(caches)),
		loaded: make(map[string]*Snapshot),
	}
	for _, c := range caches {
		m.caches[c.Name] = c
	}
	return m
}

// Cache returns the cache registered under name.
func (m *Manager) Cache(name string) (*Cache, error) {
	c, ok := m.caches[name]
	if !ok {
		return nil, fmt.Errorf("unknown catalog %q", name)
	}
	return c, nil
}

// Load clones or pulls the named catalog on first use and returns its
// artifacts. Later calls return the same snapshot.
func (m *Manager) Load(ctx context.Context, name string) (*Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.loaded[name]; ok {
		return s, nil
	}

	c, err := m.Cache(name)
	if err != nil {
		return nil, err
	}
	if err := c.Load(ctx); err != nil {
		return nil, err
	}

	artifacts, warnings, err := c.Artifacts()
	if err != nil {
		return nil, fmt.Errorf("reading %s catalog: %w", name, err)
	}

	s := &Snapshot{Name: name, Dir: c.Dir, Artifacts: artifacts, Warnings: warnings}
	m.loaded[name] = s
	return s, nil
}
