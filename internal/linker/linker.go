package linker

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/gofrs/flock"

	"github.com/qg-labs/qgi/internal/userdata"
)

// ErrNotLinked is returned when unlinking a project that is not linked.
var ErrNotLinked = errors.New("not linked")

// Store is the link registry file.
type Store struct {
	Path string
}

// NewStore returns the store at ~/.qgi/links.yaml.
func NewStore() (*Store, error) {
	path, err := userdata.GetLinksPath()
	if err != nil {
		return nil, err
	}
	return &Store{Path: path}, nil
}

// withLock runs fn while holding the registry lock. The lock file sits
// next to the registry so it survives the atomic rename on save.
func (s *Store) withLock(fn func() error) error {
	if err := userdata.EnsureDir(filepath.Dir(s.Path)); err != nil {
		return err
	}
	lock := flock.New(s.Path + ".lock")
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("locking %s: %w", s.Path, err)
	}
	defer lock.Unlock() //nolint:errcheck

	return fn()
}

// update loads the registry, applies fn and saves the result if fn
// reports a change.
func (s *Store) update(fn func(Links) (bool, error)) error {
	return s.withLock(func() error {
		links, err := load(s.Path)
		if err != nil {
			return err
		}
		changed, err := fn(links)
		if err != nil || !changed {
			return err
		}
		return save(s.Path, links)
	})
}

// Load returns the whole registry.
func (s *Store) Load() (Links, error) {
	var links Links
	err := s.withLock(func() error {
		var err error
		links, err = load(s.Path)
		return err
	})
	return links, err
}

// Link records that project uses the artifact. It returns false when the
// link already existed.
func (s *Store) Link(catalog, name, project string) (bool, error) {
	project, err := filepath.Abs(project)
	if err != nil {
		return false, fmt.Errorf("resolving %s: %w", project, err)
	}

	added := false
	err = s.update(func(links Links) (bool, error) {
		if links[catalog] == nil {
			links[catalog] = map[string]*Entry{}
		}
		e := links.entry(catalog, name)
		if e == nil {
			e = &Entry{}
			links[catalog][name] = e
		}
		if e.Projects == nil {
			e.Projects = map[string]struct{}{}
		}
		if _, ok := e.Projects[project]; ok {
			return false, nil
		}
		e.Projects[project] = struct{}{}
		added = true
		return true, nil
	})
	return added, err
}

// Unlink removes project from the artifact's links. The artifact entry is
// dropped once no projects remain, and the catalog once it has no entries.
func (s *Store) Unlink(catalog, name, project string) error {
	project, err := filepath.Abs(project)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", project, err)
	}

	return s.update(func(links Links) (bool, error) {
		e := links.entry(catalog, name)
		if e == nil {
			return false, fmt.Errorf("%s %w to %s", name, ErrNotLinked, project)
		}
		if _, ok := e.Projects[project]; !ok {
			return false, fmt.Errorf("%s %w to %s", name, ErrNotLinked, project)
		}

		delete(e.Projects, project)
		if len(e.Projects) == 0 {
			delete(links[catalog], name)
		}
		if len(links[catalog]) == 0 {
			delete(links, catalog)
		}
		return true, nil
	})
}

// Projects returns the sorted project paths linked to an artifact.
func (s *Store) Projects(catalog, name string) ([]string, error) {
	links, err := s.Load()
	if err != nil {
		return nil, err
	}
	e := links.entry(catalog, name)
	if e == nil {
		return nil, nil
	}
	projects := make([]string, 0, len(e.Projects))
	for p := range e.Projects {
		projects = append(projects, p)
	}
	sort.Strings(projects)
	return projects, nil
}

// Linked returns the sorted names of a catalog's artifacts that have at
// least one linked project.
func (s *Store) Linked(catalog string) ([]string, error) {
	links, err := s.Load()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(links[catalog]))
	for name, e := range links[catalog] {
		if e != nil && len(e.Projects) > 0 {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

// LinkedTo returns the sorted names of a catalog's artifacts linked to
// project.
func (s *Store) LinkedTo(catalog, project string) ([]string, error) {
	project, err := filepath.Abs(project)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", project, err)
	}
	links, err := s.Load()
	if err != nil {
		return nil, err
	}
	var names []string
	for name, e := range links[catalog] {
		if e == nil {
			continue
		}
		if _, ok := e.Projects[project]; ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}
