package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/qg-labs/qgi/internal/installer"
	"github.com/qg-labs/qgi/internal/linker"
	"github.com/qg-labs/qgi/internal/registry"
	"github.com/qg-labs/qgi/internal/userdata"
)

func newSyncCmd(name string) *cobra.Command {
	var (
		f    commitFlags
		urls urlFlags
	)
	cmd := &cobra.Command{
		Use:   "sync [names...]",
		Short: fmt.Sprintf("Reinstall linked %s artifacts into every linked project", name),
		Long: `Update every project linked to the given artifacts with the catalog's
current version. Projects are updated concurrently; a failure in one project
does not stop the others. Without names, pick from the linked artifacts.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			ctx := cmd.Context()

			if err := urls.apply(name); err != nil {
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

			linked, err := env.links.Linked(name)
			if err != nil {
				return err
			}
			names, err := chooseNames(fmt.Sprintf("Select %s artifacts to sync", name), args,
				artifactOptions(linked, snap.Artifacts))
			if err != nil {
				return err
			}
			artifacts, err := registry.FindAll(snap.Artifacts, names)
			if err != nil {
				return err
			}

			results, syncErr := env.installer.Sync(ctx, artifacts, env.links, f.options())
			for _, r := range results {
				fmt.Fprintf(out, "%s:\n", r.Project)
				printResults(out, []*installer.Result{r}, "")
			}
			return syncErr
		},
	}
	f.register(cmd)
	urls.register(cmd)
	return cmd
}

func newUnlinkCmd(name string) *cobra.Command {
	return &cobra.Command{
		Use:   "unlink [names...]",
		Short: fmt.Sprintf("Stop syncing %s artifacts into the current project", name),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			cwd, err := os.Getwd()
			if err != nil {
				return err
			}
			project, err := userdata.FindProjectRoot(cwd)
			if err != nil {
				return err
			}

			env, err := newCatalogEnv(cmd, name)
			if err != nil {
				return err
			}
			snap, err := env.load(cmd.Context())
			if err != nil {
				return err
			}

			linked, err := env.links.LinkedTo(name, project)
			if err != nil {
				return err
			}
			names, err := chooseNames(fmt.Sprintf("Select %s artifacts to unlink", name), args,
				artifactOptions(linked, snap.Artifacts))
			if err != nil {
				return err
			}

			for _, n := range names {
				err := env.links.Unlink(name, n, project)
				if errors.Is(err, linker.ErrNotLinked) {
					fmt.Fprintf(out, "%s is not linked to %s.\n", n, project)
					continue
				}
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Unlinked %s from %s.\n", n, project)
			}
			return nil
		},
	}
}
