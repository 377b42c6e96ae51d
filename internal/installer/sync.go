package installer

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/qg-labs/qgi/internal/registry"
)

// LinkSource lists the projects linked to an artifact.
type LinkSource interface {
	Projects(catalog, name string) ([]string, error)
}

// Sync reinstalls each artifact into every project linked to it. Artifacts
// are processed in order; the projects of one artifact are updated
// concurrently. A failing project does not stop the others: all errors are
// returned joined once every project has finished.
func (i *Installer) Sync(ctx context.Context, artifacts []*registry.Artifact, links LinkSource, opts Options) ([]*Result, error) {
	opts.Action = ActionUpdate

	var (
		mu      sync.Mutex
		results []*Result
		errs    []error
	)

	for _, a := range artifacts {
		projects, err := links.Projects(a.Catalog, a.Name)
		if err != nil {
			errs = append(errs, fmt.Errorf("listing projects linked to %s: %w", a.Name, err))
			continue
		}
		if len(projects) == 0 {
			i.log().WithPrefix(a.Catalog).Warn("no linked projects", "artifact", a.Name)
			continue
		}

		var wg sync.WaitGroup
		for _, project := range projects {
			wg.Go(func() {
				r, err := i.syncOne(ctx, project, a, opts)

				mu.Lock()
				defer mu.Unlock()
				if r != nil {
					results = append(results, r)
				}
				if err != nil {
					errs = append(errs, fmt.Errorf("%s in %s: %w", a.Name, project, err))
				}
			})
		}
		wg.Wait()
	}

	return results, errors.Join(errs...)
}

func (i *Installer) syncOne(ctx context.Context, project string, a *registry.Artifact, opts Options) (*Result, error) {
	if err := projectExists(project); err != nil {
		return nil, err
	}
	return i.install(ctx, newSession(project), a, opts, a.Catalog+":"+filepath.Base(project))
}
