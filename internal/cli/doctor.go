package cli

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/qg-labs/qgi/internal/catalog"
	"github.com/qg-labs/qgi/internal/config"
	"github.com/qg-labs/qgi/internal/linker"
	"github.com/qg-labs/qgi/internal/manifest"
	"github.com/qg-labs/qgi/internal/registry"
	"github.com/qg-labs/qgi/internal/userdata"
	"github.com/qg-labs/qgi/internal/vcs"
)

var doctorCheckManifest string

func init() {
	doctorCmd.Flags().StringVar(&doctorCheckManifest, "check-manifest", "", "Validate an artifact package.json at the given path")
	rootCmd.AddCommand(doctorCmd)
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check the tools, caches and project qgi depends on",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if doctorCheckManifest != "" {
			return runManifestCheck(out, doctorCheckManifest)
		}

		runRuntimeCheck(out)
		runCatalogCheck(out)
		runProjectCheck(out)
		runLinksCheck(out)
		return nil
	},
}

func runRuntimeCheck(w io.Writer) {
	fmt.Fprintln(w, "Runtime check:")
	checkBinary(w, "git")
	checkBinary(w, "node")
	checkBinary(w, valueOr(config.Get(config.KeyNpmClient), "npm"))
}

func checkBinary(w io.Writer, name string) {
	path, err := exec.LookPath(name)
	if err != nil {
		fmt.Fprintf(w, "  [MISS] %s not found\n", name)
		return
	}
	fmt.Fprintf(w, "  [ OK ] %s found at %s\n", name, path)
}

func runCatalogCheck(w io.Writer) {
	fmt.Fprintln(w, "Catalog check:")
	for _, name := range registry.Catalogs() {
		c, err := catalog.NewCache(name, config.CatalogURL(name))
		if err != nil {
			fmt.Fprintf(w, "  [FAIL] %s: %v\n", name, err)
			continue
		}
		if c.URL == "" {
			fmt.Fprintf(w, "  [WARN] %s: no repository URL (set %s)\n", name, config.URLKey(name))
		}
		if !c.Exists() {
			fmt.Fprintf(w, "  [INFO] %s: not cloned yet\n", name)
			continue
		}

		artifacts, warnings, err := c.Artifacts()
		if err != nil {
			fmt.Fprintf(w, "  [FAIL] %s: %v\n", name, err)
			continue
		}
		fmt.Fprintf(w, "  [ OK ] %s: %d artifacts in %s\n", name, len(artifacts), c.Dir)
		for _, warning := range warnings {
			fmt.Fprintf(w, "  [WARN] %s\n", warning)
		}
		if c.IsStale(catalog.DefaultMaxAge) {
			fmt.Fprintf(w, "  [WARN] %s: cache is stale\n", name)
		}
	}
}

func runProjectCheck(w io.Writer) {
	fmt.Fprintln(w, "Project check:")
	cwd, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(w, "  [WARN] %v\n", err)
		return
	}
	project, err := userdata.FindProjectRoot(cwd)
	if err != nil {
		fmt.Fprintf(w, "  [INFO] %v\n", err)
		return
	}
	if _, err := manifest.ParseProject(filepath.Join(project, userdata.PackageJSON)); err != nil {
		fmt.Fprintf(w, "  [FAIL] %v\n", err)
		return
	}
	fmt.Fprintf(w, "  [ OK ] project at %s\n", project)

	if vcs.IsRepo(project) {
		fmt.Fprintln(w, "  [ OK ] git repository (--auto-commit available)")
	} else {
		fmt.Fprintln(w, "  [INFO] not a git repository (--auto-commit unavailable)")
	}
}

func runLinksCheck(w io.Writer) {
	fmt.Fprintln(w, "Links check:")
	store, err := linker.NewStore()
	if err != nil {
		fmt.Fprintf(w, "  [WARN] %v\n", err)
		return
	}
	total := 0
	for _, name := range registry.Catalogs() {
		names, err := store.Linked(name)
		if err != nil {
			fmt.Fprintf(w, "  [FAIL] %v\n", err)
			return
		}
		for _, artifact := range names {
			projects, err := store.Projects(name, artifact)
			if err != nil {
				fmt.Fprintf(w, "  [FAIL] %v\n", err)
				return
			}
			for _, project := range projects {
				total++
				if _, err := os.Stat(project); err != nil {
					fmt.Fprintf(w, "  [WARN] %s is linked to missing project %s\n", artifact, project)
				}
			}
		}
	}
	fmt.Fprintf(w, "  [ OK ] %d links in %s\n", total, store.Path)
}

func runManifestCheck(w io.Writer, path string) error {
	fmt.Fprintf(w, "Manifest validation: %s\n", path)

	result, err := manifest.ValidateFile(path)
	if err != nil {
		fmt.Fprintf(w, "  [FAIL] %v\n", err)
		return fmt.Errorf("manifest validation failed: %w", err)
	}

	if result.Valid {
		pkg, err := manifest.ParseFile(path)
		if err != nil {
			fmt.Fprintln(w, "  [ OK ] Valid package file")
			return nil
		}
		fmt.Fprintf(w, "  [ OK ] Valid package file: %s (v%s, %d dependencies)\n",
			pkg.Name, pkg.Version, len(pkg.Dependencies))
		return nil
	}

	for _, issue := range result.Issues {
		fmt.Fprintf(w, "  [FAIL] %s\n", issue)
	}
	return fmt.Errorf("manifest validation failed: %d issues", len(result.Issues))
}
