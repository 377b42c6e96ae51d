package registry

import (
	"errors"
	"fmt"
	"io"
	"sort"
)

// LookupFunc resolves an internal dependency name within a catalog.
// It returns an error wrapping ErrNotFound when the name is unknown.
type LookupFunc func(catalog, name string) (*Artifact, error)

// BuildDependencyTree walks the internal dependencies of root. Artifacts
// reached more than once are marked Deduped and not expanded again; names
// the lookup cannot find become Missing leaves.
func BuildDependencyTree(root *Artifact, scopes Scopes, lookup LookupFunc) (*DependencyNode, error) {
	seen := make(map[string]bool)
	return buildNode(root, scopes, lookup, seen)
}

func buildNode(a *Artifact, scopes Scopes, lookup LookupFunc, seen map[string]bool) (*DependencyNode, error) {
	node := &DependencyNode{
		Name:    a.Name,
		Version: a.Version,
		Catalog: a.Catalog,
	}

	if seen[a.Name] {
		node.Deduped = true
		return node, nil
	}
	seen[a.Name] = true

	names := make([]string, 0, len(a.Dependencies))
	for name := range a.Dependencies {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if !IsInternal(name, scopes) {
			node.External++
			continue
		}

		catalog := CatalogFor(name, scopes)
		dep, err := lookup(catalog, name)
		if errors.Is(err, ErrNotFound) {
			node.Children = append(node.Children, &DependencyNode{
				Name:    name,
				Version: StripRange(a.Dependencies[name]),
				Catalog: catalog,
				Missing: true,
			})
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("resolving %s: %w", name, err)
		}

		child, err := buildNode(dep, scopes, lookup, seen)
		if err != nil {
			return nil, err
		}
		node.Children = append(node.Children, child)
	}

	return node, nil
}

// PrintTree prints the dependency tree with box-drawing characters.
func PrintTree(w io.Writer, node *DependencyNode) {
	if node == nil {
		return
	}
	fmt.Fprintf(w, "  %s\n", nodeLabel(node))
	printChildren(w, node, "  ")
}

func printChildren(w io.Writer, node *DependencyNode, prefix string) {
	for i, child := range node.Children {
		last := i == len(node.Children)-1

		connector := "├── "
		next := prefix + "│   "
		if last {
			connector = "└── "
			next = prefix + "    "
		}

		fmt.Fprintf(w, "%s%s%s\n", prefix, connector, nodeLabel(child))
		printChildren(w, child, next)
	}
}

func nodeLabel(node *DependencyNode) string {
	label := fmt.Sprintf("%s@%s [%s]", node.Name, node.Version, node.Catalog)
	switch {
	case node.Missing:
		label += " (missing)"
	case node.Deduped:
		label += " (deduped)"
	case node.External > 0:
		label += fmt.Sprintf(" +%d npm", node.External)
	}
	return label
}
