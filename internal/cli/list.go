package cli

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/qg-labs/qgi/internal/registry"
)

// listEntry represents a catalog artifact for display.
type listEntry struct {
	Name        string   `json:"name"`
	Kind        string   `json:"kind"`
	Version     string   `json:"version"`
	Feature     string   `json:"feature,omitempty"`
	Description string   `json:"description,omitempty"`
	Projects    []string `json:"projects,omitempty"`
}

func newListCmd(name string) *cobra.Command {
	var (
		linkedOnly bool
		asJSON     bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: fmt.Sprintf("List artifacts in the %s catalog", name),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newCatalogEnv(cmd, name)
			if err != nil {
				return err
			}
			snap, err := env.load(cmd.Context())
			if err != nil {
				return err
			}

			var entries []listEntry
			for _, a := range snap.Artifacts {
				projects, err := env.links.Projects(name, a.Name)
				if err != nil {
					return err
				}
				if linkedOnly && len(projects) == 0 {
					continue
				}
				entries = append(entries, listEntry{
					Name:        a.Name,
					Kind:        string(a.Kind),
					Version:     a.Version,
					Feature:     a.Feature,
					Description: a.Description,
					Projects:    projects,
				})
			}

			out := cmd.OutOrStdout()
			if asJSON {
				if entries == nil {
					entries = []listEntry{}
				}
				data, err := json.MarshalIndent(entries, "", "  ")
				if err != nil {
					return fmt.Errorf("marshaling list: %w", err)
				}
				fmt.Fprintln(out, string(data))
				return nil
			}

			if len(entries) == 0 {
				if linkedOnly {
					fmt.Fprintf(out, "No linked %s artifacts.\n", name)
				} else {
					fmt.Fprintf(out, "The %s catalog is empty.\n", name)
				}
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tKIND\tVERSION\tFEATURE\tLINKED")
			for _, e := range entries {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\n", e.Name, e.Kind, e.Version, valueOr(e.Feature, "-"), len(e.Projects))
			}
			return w.Flush()
		},
	}
	cmd.Flags().BoolVar(&linkedOnly, "linked", false, "Only show artifacts linked to a project")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output in JSON format")
	return cmd
}

func newTreeCmd(name string) *cobra.Command {
	return &cobra.Command{
		Use:   "tree <name>",
		Short: "Show the shared dependencies of an artifact",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			env, err := newCatalogEnv(cmd, name)
			if err != nil {
				return err
			}
			snap, err := env.load(ctx)
			if err != nil {
				return err
			}
			root, err := snap.Find(args[0])
			if err != nil {
				return err
			}

			lookup := func(catalogName, dep string) (*registry.Artifact, error) {
				s, err := env.manager.Load(ctx, catalogName)
				if err != nil {
					return nil, err
				}
				return registry.Find(s.Artifacts, dep)
			}

			tree, err := registry.BuildDependencyTree(root, env.installer.Scopes, lookup)
			if err != nil {
				return err
			}
			registry.PrintTree(cmd.OutOrStdout(), tree)
			return nil
		},
	}
}
