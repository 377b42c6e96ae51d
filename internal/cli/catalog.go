package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/qg-labs/qgi/internal/branding"
	"github.com/qg-labs/qgi/internal/catalog"
	"github.com/qg-labs/qgi/internal/config"
	"github.com/qg-labs/qgi/internal/registry"
)

func init() {
	rootCmd.AddCommand(newCatalogCmd(registry.CatalogCom, "Manage shared components and utils"))
	rootCmd.AddCommand(newCatalogCmd(registry.CatalogBlock, "Manage shared page blocks"))
}

// newCatalogCmd builds the command group for one catalog.
func newCatalogCmd(name, short string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   name,
		Short: short,
		Long: fmt.Sprintf(`%s

Artifacts come from the %s catalog repository, cloned to ~/%s/cache/%s.
Every subcommand except clear and status clones or pulls it first.`,
			short, name, branding.HomeDir(), name),
	}

	cmd.AddCommand(
		newInstallCmd(name),
		newSyncCmd(name),
		newUnlinkCmd(name),
		newListCmd(name),
		newTreeCmd(name),
		newUpdateCmd(name),
		newClearCmd(name),
		newStatusCmd(name),
	)
	return cmd
}

func newUpdateCmd(name string) *cobra.Command {
	var urls urlFlags
	cmd := &cobra.Command{
		Use:   "update",
		Short: fmt.Sprintf("Clone or pull the %s catalog", name),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := urls.apply(name); err != nil {
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
			fmt.Fprintf(cmd.OutOrStdout(), "%s catalog up to date at %s (%d artifacts).\n",
				name, snap.Dir, len(snap.Artifacts))
			return nil
		},
	}
	urls.register(cmd)
	return cmd
}

func newClearCmd(name string) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: fmt.Sprintf("Remove the local %s catalog cache", name),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := catalog.NewCache(name, config.CatalogURL(name))
			if err != nil {
				return err
			}
			if err := c.Clear(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s.\n", c.Dir)
			return nil
		},
	}
}

func newStatusCmd(name string) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: fmt.Sprintf("Show %s catalog cache status and location", name),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			c, err := catalog.NewCache(name, config.CatalogURL(name))
			if err != nil {
				return err
			}

			fmt.Fprintf(out, "Cache path:   %s\n", c.Dir)
			fmt.Fprintf(out, "Repo URL:     %s\n", valueOr(c.URL, "(not configured)"))

			if !c.Exists() {
				fmt.Fprintln(out, "Status:       not cloned")
				fmt.Fprintf(out, "\nRun '%s %s update' to clone it.\n", branding.CLIName(), name)
				return nil
			}

			lastUpdated := catalog.ReadFreshnessMarker(c.Dir)
			if lastUpdated.IsZero() {
				fmt.Fprintln(out, "Last updated: unknown")
			} else {
				age := time.Since(lastUpdated).Truncate(time.Minute)
				fmt.Fprintf(out, "Last updated: %s (%s ago)\n", lastUpdated.Format(time.RFC3339), age)
			}

			artifacts, warnings, err := c.Artifacts()
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Artifacts:    %d", len(artifacts))
			if len(warnings) > 0 {
				fmt.Fprintf(out, " (%d invalid package files)", len(warnings))
			}
			fmt.Fprintln(out)

			if c.IsStale(catalog.DefaultMaxAge) {
				fmt.Fprintf(out, "Status:       stale (run '%s %s update')\n", branding.CLIName(), name)
			} else {
				fmt.Fprintln(out, "Status:       up to date")
			}
			return nil
		},
	}
}

func valueOr(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}
