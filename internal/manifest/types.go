package manifest

import (
	"encoding/json"
	"strings"
)

// Repository is the package.json "repository" field.
type Repository struct {
	Type string `json:"type,omitempty"`
	URL  string `json:"url,omitempty"`
}

// UnmarshalJSON accepts the object form and npm's string shorthand
// ("github:org/repo", "org/repo" or a URL), which is kept as URL.
func (r *Repository) UnmarshalJSON(data []byte) error {
	var shorthand string
	if err := json.Unmarshal(data, &shorthand); err == nil {
		*r = Repository{URL: shorthand}
		return nil
	}
	type object Repository
	var o object
	if err := json.Unmarshal(data, &o); err != nil {
		return err
	}
	*r = Repository(o)
	return nil
}

// Package is the package.json describing a shared artifact.
type Package struct {
	Name         string            `json:"name"`
	Version      string            `json:"version"`
	Feature      string            `json:"feature,omitempty"`
	Description  string            `json:"description,omitempty"`
	Repository   *Repository       `json:"repository,omitempty"`
	License      string            `json:"license,omitempty"`
	Dependencies map[string]string `json:"dependencies,omitempty"`
}

// Group returns the scope part of the name ("@qg-com" for "@qg-com/button").
// Unscoped names return "".
func (p *Package) Group() string {
	group, _, ok := strings.Cut(p.Name, "/")
	if !ok {
		return ""
	}
	return group
}

// ShortName returns the part after the scope ("button" for "@qg-com/button").
// Unscoped names are returned unchanged.
func (p *Package) ShortName() string {
	_, short, ok := strings.Cut(p.Name, "/")
	if !ok {
		return p.Name
	}
	return short
}

// ProjectPackage is the subset of a consumer project's package.json the
// installer reads.
type ProjectPackage struct {
	Name            string            `json:"name"`
	Version         string            `json:"version"`
	Dependencies    map[string]string `json:"dependencies,omitempty"`
	DevDependencies map[string]string `json:"devDependencies,omitempty"`
}

// AllDependencies merges dependencies and devDependencies. devDependencies
// win on conflict.
func (p *ProjectPackage) AllDependencies() map[string]string {
	deps := make(map[string]string, len(p.Dependencies)+len(p.DevDependencies))
	for k, v := range p.Dependencies {
		deps[k] = v
	}
	for k, v := range p.DevDependencies {
		deps[k] = v
	}
	return deps
}
