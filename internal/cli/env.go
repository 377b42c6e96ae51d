package cli

import (
	"context"
	"fmt"
	"io"

	charm "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/qg-labs/qgi/internal/catalog"
	"github.com/qg-labs/qgi/internal/config"
	"github.com/qg-labs/qgi/internal/installer"
	"github.com/qg-labs/qgi/internal/linker"
	"github.com/qg-labs/qgi/internal/logger"
	"github.com/qg-labs/qgi/internal/npm"
	"github.com/qg-labs/qgi/internal/registry"
	"github.com/qg-labs/qgi/internal/vcs"
)

// catalogEnv bundles the collaborators a catalog subcommand works with.
type catalogEnv struct {
	name      string
	manager   *catalog.Manager
	links     *linker.Store
	installer *installer.Installer
	log       *charm.Logger
}

// urlFlags are the repository override flags shared by catalog commands.
type urlFlags struct {
	url  string
	save bool
}

func (f *urlFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.url, "url", "", "Catalog repository URL for this run")
	cmd.Flags().BoolVar(&f.save, "save", false, "Persist --url to the config file")
}

// apply overrides the catalog URL for this process and persists it when
// --save is set.
func (f *urlFlags) apply(name string) error {
	if f.url == "" {
		if f.save {
			return fmt.Errorf("--save requires --url")
		}
		return nil
	}
	if f.save {
		return config.Set(config.URLKey(name), f.url)
	}
	config.Override(config.URLKey(name), f.url)
	return nil
}

func newCatalogEnv(cmd *cobra.Command, name string) (*catalogEnv, error) {
	var progress io.Writer
	if logger.Default().GetLevel() <= charm.DebugLevel {
		progress = logger.Writer(logger.Scoped("git"))
	}

	var caches []*catalog.Cache
	for _, n := range registry.Catalogs() {
		c, err := catalog.NewCache(n, config.CatalogURL(n))
		if err != nil {
			return nil, err
		}
		c.Progress = progress
		caches = append(caches, c)
	}
	manager := catalog.NewManager(caches...)

	links, err := linker.NewStore()
	if err != nil {
		return nil, err
	}

	scopes := registry.Scopes{Internal: config.Scope(), Block: config.BlockScope()}
	log := logger.Scoped(name)

	return &catalogEnv{
		name:    name,
		manager: manager,
		links:   links,
		log:     log,
		installer: &installer.Installer{
			Catalogs: manager,
			NPM:      &npm.Exec{Bin: config.Get(config.KeyNpmClient), Out: logger.Writer(logger.Scoped("npm"))},
			Git:      &vcs.Git{Out: logger.Writer(logger.Scoped("git"))},
			Scopes:   scopes,
			Log:      logger.Default(),
			Out:      cmd.OutOrStdout(),
		},
	}, nil
}

// load clones or pulls this env's catalog and reports skipped package files.
func (e *catalogEnv) load(ctx context.Context) (*catalog.Snapshot, error) {
	e.log.Info("loading catalog", "url", config.CatalogURL(e.name))
	snap, err := e.manager.Load(ctx, e.name)
	if err != nil {
		return nil, err
	}
	for _, w := range snap.Warnings {
		e.log.Warn(w)
	}
	return snap, nil
}

func artifactNames(list []*registry.Artifact) []string {
	names := make([]string, len(list))
	for i, a := range list {
		names[i] = a.Name
	}
	return names
}
