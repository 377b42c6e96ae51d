package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/qg-labs/qgi/internal/config"
	"github.com/qg-labs/qgi/internal/manifest"
	"github.com/qg-labs/qgi/internal/npm"
	"github.com/qg-labs/qgi/internal/userdata"
)

var outdatedAll bool

var outdatedCmd = &cobra.Command{
	Use:   "outdated [names...]",
	Short: "Check the project's npm dependencies against the registry",
	Long: `Compare the versions in the project's package.json with the latest
versions published on the npm registry (npm.registry in the config, default
registry.npmjs.org). Shared artifacts are skipped.`,
	RunE: runOutdated,
}

func init() {
	outdatedCmd.Flags().BoolVar(&outdatedAll, "all", false, "Show up-to-date dependencies too")
	rootCmd.AddCommand(outdatedCmd)
}

func runOutdated(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return err
	}
	project, err := userdata.FindProjectRoot(cwd)
	if err != nil {
		return err
	}
	pkg, err := manifest.ParseProject(filepath.Join(project, userdata.PackageJSON))
	if err != nil {
		return err
	}

	deps := pkg.AllDependencies()
	if len(args) > 0 {
		wanted := make(map[string]string, len(args))
		for _, name := range args {
			v, ok := deps[name]
			if !ok {
				return fmt.Errorf("%s is not a dependency of %s", name, project)
			}
			wanted[name] = v
		}
		deps = wanted
	}
	for name := range deps {
		if strings.HasPrefix(name, config.Scope()) {
			delete(deps, name)
		}
	}

	checker, err := npm.NewChecker(config.Get(config.KeyNpmRegistry))
	if err != nil {
		return err
	}
	statuses, err := checker.Check(cmd.Context(), deps)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	shown := statuses
	if !outdatedAll {
		shown = npm.OnlyOutdated(statuses)
	}
	if len(shown) == 0 {
		fmt.Fprintf(out, "All %d dependencies are up to date.\n", len(statuses))
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PACKAGE\tCURRENT\tLATEST")
	for _, st := range shown {
		latest := st.Latest
		if st.Err != nil {
			latest = "? (" + st.Err.Error() + ")"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", st.Name, st.Current, latest)
	}
	return w.Flush()
}
