package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/qg-labs/qgi/internal/branding"
	"github.com/qg-labs/qgi/internal/catalog"
	"github.com/qg-labs/qgi/internal/config"
	"github.com/qg-labs/qgi/internal/logger"
	"github.com/qg-labs/qgi/internal/registry"
	"github.com/qg-labs/qgi/internal/userdata"
)

var (
	buildVersion string
	buildCommit  string
	buildDate    string

	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   branding.CLIName(),
	Short: branding.Description(),
	Long: branding.DisplayName() + ` installs shared components, utils and page blocks from the central
catalog repositories into your project, keeps their npm dependencies in step,
and remembers which projects use which artifacts so they can be synced later.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "version" {
			return nil
		}
		if err := config.Load(); err != nil {
			return err
		}

		level := logLevel
		if level == "" {
			level = config.Get(config.KeyLogLevel)
		}
		if err := logger.SetLevel(level); err != nil {
			return fmt.Errorf("invalid log level %q: %w", level, err)
		}

		warnStaleCaches()
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
}

// warnStaleCaches prints a hint for cloned catalogs that have not been
// refreshed recently. No network access.
func warnStaleCaches() {
	for _, name := range registry.Catalogs() {
		dir, err := userdata.GetCacheDir(name)
		if err != nil {
			continue
		}
		c := &catalog.Cache{Name: name, Dir: dir}
		if c.Exists() && c.IsStale(catalog.DefaultMaxAge) {
			logger.Default().Warn(fmt.Sprintf("%s catalog is more than 7 days old; run '%s %s update'",
				name, branding.CLIName(), name))
		}
	}
}

// Execute runs the root command with build info injected via ldflags.
func Execute(version, commit, date string) error {
	buildVersion = version
	buildCommit = commit
	buildDate = date

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		logger.Default().Error(err)
	}
	return err
}
