package npm

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/git-pkgs/registries"
	_ "github.com/git-pkgs/registries/all"
	"golang.org/x/sync/errgroup"
)

const defaultConcurrency = 8

// Status is the registry state of one dependency.
type Status struct {
	Name     string
	Current  string // as declared in package.json
	Latest   string // empty when the lookup failed
	Outdated bool
	Err      error // lookup failure; not-found packages are reported here too
}

// Checker looks up latest versions on an npm registry.
type Checker struct {
	Registry    registries.Registry
	Concurrency int
}

// NewChecker returns a checker for the registry at baseURL. An empty URL
// means registry.npmjs.org.
func NewChecker(baseURL string) (*Checker, error) {
	client := registries.NewClient(
		registries.WithTimeout(20*time.Second),
		registries.WithMaxRetries(2),
	)
	reg, err := registries.New("npm", baseURL, client)
	if err != nil {
		return nil, fmt.Errorf("creating npm registry client: %w", err)
	}
	return &Checker{Registry: reg, Concurrency: defaultConcurrency}, nil
}

// Check looks up every dependency concurrently and returns their status
// sorted by name. Individual lookup failures are recorded on the entry;
// only context cancellation aborts the whole check.
func (c *Checker) Check(ctx context.Context, deps map[string]string) ([]Status, error) {
	var (
		mu      sync.Mutex
		results = make([]Status, 0, len(deps))
	)

	g, ctx := errgroup.WithContext(ctx)
	limit := c.Concurrency
	if limit <= 0 {
		limit = defaultConcurrency
	}
	g.SetLimit(limit)

	for name, current := range deps {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			st := c.check(ctx, name, current)

			mu.Lock()
			results = append(results, st)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Name < results[j].Name
	})
	return results, nil
}

func (c *Checker) check(ctx context.Context, name, current string) Status {
	st := Status{Name: name, Current: current}

	latest, err := c.latest(ctx, name)
	if err != nil {
		st.Err = err
		return st
	}
	st.Latest = latest

	older, err := isOlder(current, latest)
	if err != nil {
		// Tags, git URLs and file: specs cannot be compared.
		return st
	}
	st.Outdated = older
	return st
}

// latest prefers the registry's "latest" dist-tag and falls back to the
// newest published stable version.
func (c *Checker) latest(ctx context.Context, name string) (string, error) {
	pkg, err := c.Registry.FetchPackage(ctx, name)
	if err != nil {
		if errors.Is(err, registries.ErrNotFound) {
			return "", fmt.Errorf("%s: not published on the registry", name)
		}
		return "", fmt.Errorf("fetching %s: %w", name, err)
	}
	if tags, ok := pkg.Metadata["dist-tags"].(map[string]string); ok && tags["latest"] != "" {
		return tags["latest"], nil
	}

	v, err := registries.FetchLatestVersion(ctx, c.Registry, name)
	if err != nil {
		return "", fmt.Errorf("fetching versions of %s: %w", name, err)
	}
	if v == nil {
		return "", fmt.Errorf("%s: no published versions", name)
	}
	return v.Number, nil
}

func isOlder(current, latest string) (bool, error) {
	c, err := semver.NewVersion(stripRange(current))
	if err != nil {
		return false, err
	}
	l, err := semver.NewVersion(latest)
	if err != nil {
		return false, err
	}
	return c.LessThan(l), nil
}

func stripRange(v string) string {
	for len(v) > 0 && (v[0] == '^' || v[0] == '~' || v[0] == '=' || v[0] == 'v') {
		v = v[1:]
	}
	return v
}

// OnlyOutdated filters statuses down to the outdated ones.
func OnlyOutdated(all []Status) []Status {
	var out []Status
	for _, st := range all {
		if st.Outdated {
			out = append(out, st)
		}
	}
	return out
}
