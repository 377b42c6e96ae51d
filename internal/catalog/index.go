package catalog

import (
	"encoding/json"
	"os"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/google/renameio/v2"

	"github.com/qg-labs/qgi/internal/registry"
	"github.com/qg-labs/qgi/internal/userdata"
)

const (
	// indexSuffix names the discovery index kept next to the checkout,
	// e.g. ~/.qgi/cache/com.index.json.
	indexSuffix = ".index.json"

	// indexFormat changes whenever the cached fields change meaning.
	indexFormat = 1
)

// index holds a catalog's discovered artifacts along with the commit they
// were discovered at. A different HEAD invalidates it.
type index struct {
	Format    int                  `json:"format"`
	Commit    string               `json:"commit"`
	Artifacts []*registry.Artifact `json:"artifacts"`
	Warnings  []string             `json:"warnings,omitempty"`
	CachedAt  time.Time            `json:"cached_at"`
}

func (c *Cache) indexPath() string {
	return c.Dir + indexSuffix
}

// Artifacts lists the artifacts in the cache. Discovery results are reused
// from the index while the checkout's HEAD is unchanged; a directory that
// is not a git checkout is always scanned.
func (c *Cache) Artifacts() ([]*registry.Artifact, []string, error) {
	commit := headCommit(c.Dir)
	if commit == "" {
		return registry.Discover(c.Dir, c.Name)
	}

	if idx, err := loadIndex(c.indexPath()); err == nil && idx.valid(commit) {
		return idx.Artifacts, idx.Warnings, nil
	}

	artifacts, warnings, err := registry.Discover(c.Dir, c.Name)
	if err != nil {
		return nil, nil, err
	}

	// The index is best effort.
	_ = writeIndex(c.indexPath(), &index{
		Format:    indexFormat,
		Commit:    commit,
		Artifacts: artifacts,
		Warnings:  warnings,
		CachedAt:  time.Now(),
	})
	return artifacts, warnings, nil
}

func (idx *index) valid(commit string) bool {
	return idx.Format == indexFormat && idx.Commit == commit
}

func headCommit(dir string) string {
	repo, err := git.PlainOpen(dir)
	if err != nil {
		return ""
	}
	head, err := repo.Head()
	if err != nil {
		return ""
	}
	return head.Hash().String()
}

func loadIndex(path string) (*index, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var idx index
	if err := json.Unmarshal(data, &idx); err != nil {
		return nil, err
	}
	return &idx, nil
}

func writeIndex(path string, idx *index) error {
	data, err := json.MarshalIndent(idx, "", "  ")
	if err != nil {
		return err
	}
	return renameio.WriteFile(path, data, userdata.FilePermNormal)
}
