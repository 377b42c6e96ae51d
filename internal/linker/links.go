package linker

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/renameio/v2"
	"go.yaml.in/yaml/v3"

	"github.com/qg-labs/qgi/internal/userdata"
)

// Entry is the set of projects linked to one artifact.
type Entry struct {
	Projects map[string]struct{} `yaml:"projects"`
}

// Links maps catalog -> artifact name -> entry.
type Links map[string]map[string]*Entry

func (l Links) entry(catalog, name string) *Entry {
	return l[catalog][name]
}

// load reads the links file. A missing file is an empty registry.
func load(path string) (Links, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Links{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading links: %w", err)
	}

	links := Links{}
	if err := yaml.Unmarshal(data, &links); err != nil {
		return nil, fmt.Errorf("parsing links %s: %w", path, err)
	}
	if links == nil {
		links = Links{}
	}
	return links, nil
}

// save writes the links file atomically.
func save(path string, links Links) error {
	data, err := yaml.Marshal(links)
	if err != nil {
		return fmt.Errorf("marshaling links: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), userdata.DirPermNormal); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(path), err)
	}
	if err := renameio.WriteFile(path, data, userdata.FilePermNormal); err != nil {
		return fmt.Errorf("writing links: %w", err)
	}
	return nil
}
