package registry

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/qg-labs/qgi/internal/manifest"
)

// ErrNotFound is returned when an artifact name is not in a catalog.
var ErrNotFound = errors.New("artifact not found")

// discoveryPattern maps a glob (relative to the repository root) to the
// kind of artifact its matches describe.
type discoveryPattern struct {
	glob string
	kind Kind
}

var catalogPatterns = map[string][]discoveryPattern{
	CatalogCom: {
		{glob: "src/components/*/package.json", kind: KindComponent},
		{glob: "src/utils/*.package.json", kind: KindUtil},
	},
	CatalogBlock: {
		{glob: "src/pages/*/package.json", kind: KindBlock},
	},
}

// Catalogs returns the known catalog names.
func Catalogs() []string {
	return []string{CatalogCom, CatalogBlock}
}

// IsCatalog reports whether name is a known catalog.
func IsCatalog(name string) bool {
	_, ok := catalogPatterns[name]
	return ok
}

// Discover lists the artifacts of a catalog under root, sorted by name.
// Package files that fail to parse or validate are skipped and reported in
// the returned warnings. A missing root yields an empty list.
func Discover(root, catalog string) ([]*Artifact, []string, error) {
	patterns, ok := catalogPatterns[catalog]
	if !ok {
		return nil, nil, fmt.Errorf("unknown catalog %q", catalog)
	}

	if _, err := os.Stat(root); errors.Is(err, fs.ErrNotExist) {
		return nil, nil, nil
	}

	fsys := os.DirFS(root)
	var artifacts []*Artifact
	var warnings []string

	for _, p := range patterns {
		matches, err := doublestar.Glob(fsys, p.glob)
		if err != nil {
			return nil, nil, fmt.Errorf("globbing %s in %s: %w", p.glob, root, err)
		}
		for _, rel := range matches {
			file := filepath.Join(root, filepath.FromSlash(rel))
			a, warn := loadArtifact(file, catalog, p.kind)
			if a != nil && p.kind != KindUtil {
				a.Dir = path.Dir(rel)
			}
			if warn != "" {
				warnings = append(warnings, warn)
				continue
			}
			artifacts = append(artifacts, a)
		}
	}

	sort.Slice(artifacts, func(i, j int) bool {
		return artifacts[i].Name < artifacts[j].Name
	})
	return artifacts, warnings, nil
}

func loadArtifact(path, catalog string, kind Kind) (*Artifact, string) {
	result, err := manifest.ValidateFile(path)
	if err != nil {
		return nil, fmt.Sprintf("skipping %s: %v", path, err)
	}
	if !result.Valid {
		issues := make([]string, len(result.Issues))
		for i, issue := range result.Issues {
			issues[i] = issue.String()
		}
		return nil, fmt.Sprintf("skipping %s: %s", path, strings.Join(issues, "; "))
	}

	pkg, err := manifest.ParseFile(path)
	if err != nil {
		return nil, fmt.Sprintf("skipping %s: %v", path, err)
	}

	return &Artifact{
		Package:      *pkg,
		Kind:         kind,
		Catalog:      catalog,
		ManifestPath: path,
	}, ""
}

// Find returns the artifact with the given name.
func Find(list []*Artifact, name string) (*Artifact, error) {
	for _, a := range list {
		if a.Name == name {
			return a, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
}

// FindAll resolves every name, failing on the first unknown one.
func FindAll(list []*Artifact, names []string) ([]*Artifact, error) {
	result := make([]*Artifact, 0, len(names))
	for _, name := range names {
		a, err := Find(list, name)
		if err != nil {
			return nil, err
		}
		result = append(result, a)
	}
	return result, nil
}
