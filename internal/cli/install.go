package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/qg-labs/qgi/internal/installer"
	"github.com/qg-labs/qgi/internal/registry"
	"github.com/qg-labs/qgi/internal/userdata"
)

// commitFlags are shared by install and sync.
type commitFlags struct {
	overwrite  bool
	autoCommit bool
	message    string
}

func (f *commitFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.overwrite, "overwrite", false, "Install over existing files that are not shared artifacts")
	cmd.Flags().BoolVar(&f.autoCommit, "auto-commit", false, "Commit, pull and push the project after each artifact")
	cmd.Flags().StringVarP(&f.message, "message", "m", "", "Commit message (default \"chore(<catalog>): <action> <name>\")")
}

func (f *commitFlags) options() installer.Options {
	opts := installer.Options{Overwrite: f.overwrite}
	if f.autoCommit || f.message != "" {
		opts.Commit = &installer.CommitOptions{Message: f.message}
	}
	return opts
}

type installFlags struct {
	commitFlags
	urls   urlFlags
	link   bool
	yes    bool
	dryRun bool
}

func newInstallCmd(name string) *cobra.Command {
	var f installFlags
	cmd := &cobra.Command{
		Use:   "install [names...]",
		Short: fmt.Sprintf("Install %s artifacts into the current project", name),
		Long: fmt.Sprintf(`Install artifacts from the %s catalog into the project containing the
current directory.

Each artifact's npm dependencies are reconciled with the project's
package.json: missing packages are installed, older ones updated, and shared
artifacts it depends on are installed first. Without names, pick them
interactively.`, name),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInstall(cmd, name, args, &f)
		},
	}
	f.commitFlags.register(cmd)
	f.urls.register(cmd)
	cmd.Flags().BoolVar(&f.link, "link", false, "Link the project to the installed artifacts for later sync")
	cmd.Flags().BoolVarP(&f.yes, "yes", "y", false, "Skip the confirmation prompt")
	cmd.Flags().BoolVar(&f.dryRun, "dry-run", false, "Print install plans without changing anything")
	return cmd
}

func runInstall(cmd *cobra.Command, name string, args []string, f *installFlags) error {
	out := cmd.OutOrStdout()
	ctx := cmd.Context()

	cwd, err := os.Getwd()
	if err != nil {
		return err
	}
	project, err := userdata.FindProjectRoot(cwd)
	if err != nil {
		return err
	}

	if err := f.urls.apply(name); err != nil {
		return err
	}
	env, err := newCatalogEnv(cmd, name)
	if err != nil {
		return err
	}
	snap, err := env.load(ctx)
	if err != nil {
		return err
	}

	names, err := chooseNames(fmt.Sprintf("Select %s artifacts to install", name), args,
		artifactOptions(artifactNames(snap.Artifacts), snap.Artifacts))
	if err != nil {
		return err
	}
	artifacts, err := registry.FindAll(snap.Artifacts, names)
	if err != nil {
		return err
	}

	if !f.dryRun {
		fmt.Fprintf(out, "Installing into %s:\n", project)
		for _, a := range artifacts {
			fmt.Fprintf(out, "  %s@%s\n", a.Name, a.Version)
		}
		ok, err := confirm("Proceed with installation?", f.yes)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(out, "Installation cancelled.")
			return nil
		}
	}

	opts := f.options()
	opts.DryRun = f.dryRun
	results, installErr := env.installer.Install(ctx, project, artifacts, opts)
	if f.dryRun {
		return installErr
	}

	fmt.Fprintln(out)
	printResults(out, results, "")

	if f.link {
		for _, r := range results {
			if r.Skipped != nil || r.Files == nil {
				continue
			}
			added, err := env.links.Link(name, r.Artifact.Name, project)
			if err != nil {
				return err
			}
			if added {
				fmt.Fprintf(out, "Linked %s to %s.\n", r.Artifact.Name, project)
			}
		}
	}

	return installErr
}

// printResults prints one line per artifact, nesting shared dependencies.
func printResults(w io.Writer, results []*installer.Result, indent string) {
	for _, r := range results {
		label := fmt.Sprintf("%s@%s", r.Artifact.Name, r.Artifact.Version)
		switch {
		case r.Skipped != nil:
			fmt.Fprintf(w, "%s  \u2717 %s skipped: %v\n", indent, label, r.Skipped)
		case r.Files == nil:
			fmt.Fprintf(w, "%s  \u2717 %s not completed\n", indent, label)
		default:
			var changes []string
			if r.Plan != nil {
				if n := len(r.Plan.Install); n > 0 {
					changes = append(changes, fmt.Sprintf("%d npm installed", n))
				}
				if n := len(r.Plan.Update); n > 0 {
					changes = append(changes, fmt.Sprintf("%d npm updated", n))
				}
			}
			suffix := ""
			if len(changes) > 0 {
				suffix = " (" + strings.Join(changes, ", ") + ")"
			}
			fmt.Fprintf(w, "%s  \u2713 %s%s\n", indent, label, suffix)
		}
		printResults(w, r.Deps, indent+"  ")
	}
}
