package registry

import (
	"github.com/qg-labs/qgi/internal/manifest"
)

// Catalog names. Each catalog is backed by its own git repository.
const (
	CatalogCom   = "com"
	CatalogBlock = "block"
)

// Kind identifies how an artifact is laid out on disk.
type Kind string

const (
	KindComponent Kind = "component" // src/components/<Pascal>/
	KindUtil      Kind = "util"      // src/utils/<short>.*
	KindBlock     Kind = "block"     // src/pages/<Pascal>/
)

// Artifact is a shared unit found in a catalog checkout or a project.
type Artifact struct {
	manifest.Package
	Kind         Kind
	Catalog      string
	ManifestPath string // absolute path to the describing package.json
	Dir          string // component or block directory relative to the root, slash-separated
}

// Scopes holds the name prefixes that mark internal artifacts.
type Scopes struct {
	Internal string // e.g. "@qg-"
	Block    string // e.g. "@qg-block"
}

// Dependency is one entry of an artifact's dependency map after
// classification.
type Dependency struct {
	Name     string
	Version  string // declared version with range markers stripped
	Declared string // declared version as written
	Present  string // version the project has, empty if absent
}

// Spec returns the npm install argument, e.g. "dayjs@1.11.10".
func (d Dependency) Spec() string {
	return d.Name + "@" + d.Version
}

// InstallPlan is the outcome of classifying an artifact's dependencies.
type InstallPlan struct {
	Artifact  *Artifact
	Satisfied []Dependency
	Install   []Dependency // external, absent from the project
	Update    []Dependency // external, present at a lower version
	Internal  []Dependency // shared artifacts to install recursively
	Warnings  []string
}

// DependencyNode represents an artifact in the internal dependency tree.
type DependencyNode struct {
	Name     string
	Version  string
	Catalog  string
	External int // number of non-internal dependencies
	Children []*DependencyNode
	Deduped  bool // already shown earlier in the tree
	Missing  bool // not found in its catalog
}
