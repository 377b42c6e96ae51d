// Package catalog manages the local clones of the com and block catalog
// repositories: cloning, pulling, freshness tracking and discovery of the
// artifacts they hold.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-git/go-git/v5"

	"github.com/qg-labs/qgi/internal/userdata"
)

const (
	// freshnessFile is the name of the timestamp marker file.
	freshnessFile = ".catalog-updated"

	// DefaultMaxAge is the default staleness threshold (7 days).
	DefaultMaxAge = 7 * 24 * time.Hour

	// tmpSuffix is appended to the target dir during atomic clone.
	tmpSuffix = ".tmp"
)

// ErrNoURL is returned when a catalog has no repository URL configured.
var ErrNoURL = errors.New("no repository URL configured")

// Cache is the local clone of one catalog repository.
type Cache struct {
	Name string
	URL  string
	Dir  string

	// Progress receives git transfer progress when set.
	Progress io.Writer
}

// NewCache returns the cache for catalog name under the home directory.
func NewCache(name, url string) (*Cache, error) {
	dir, err := userdata.GetCacheDir(name)
	if err != nil {
		return nil, err
	}
	return &Cache{Name: name, URL: url, Dir: dir}, nil
}

// Exists reports whether the cache holds a git checkout.
func (c *Cache) Exists() bool {
	_, err := os.Stat(filepath.Join(c.Dir, git.GitDirName))
	return err == nil
}

// Load brings the cache up to date: a missing cache is cloned, an existing
// one is pulled. A cache cloned from a different URL, or one that can no
// longer be pulled, is cloned again.
func (c *Cache) Load(ctx context.Context) error {
	if c.URL == "" {
		return fmt.Errorf("%w for %s catalog", ErrNoURL, c.Name)
	}
	if !c.Exists() {
		return c.Clone(ctx)
	}

	repo, err := git.PlainOpen(c.Dir)
	if err != nil {
		return c.Clone(ctx)
	}
	if origin := originURL(repo); origin != c.URL {
		return c.Clone(ctx)
	}

	if err := c.pull(ctx, repo); err != nil {
		if cloneErr := c.Clone(ctx); cloneErr != nil {
			return fmt.Errorf("updating %s catalog: %w", c.Name, errors.Join(err, cloneErr))
		}
		return nil
	}

	WriteFreshnessMarker(c.Dir)
	return nil
}

// Clone performs a shallow clone of the catalog repository.
//
// The clone is atomic: it writes to a .tmp directory first, then renames
// on success. On failure the .tmp directory is cleaned up and an existing
// cache is left untouched.
func (c *Cache) Clone(ctx context.Context) error {
	tmpDir := c.Dir + tmpSuffix
	_ = os.RemoveAll(tmpDir)

	if err := os.MkdirAll(filepath.Dir(tmpDir), userdata.DirPermNormal); err != nil {
		return fmt.Errorf("creating parent directory: %w", err)
	}

	_, err := git.PlainCloneContext(ctx, tmpDir, false, &git.CloneOptions{
		URL:          c.URL,
		Depth:        1,
		SingleBranch: true,
		Progress:     c.Progress,
	})
	if err != nil {
		_ = os.RemoveAll(tmpDir)
		return fmt.Errorf("cloning %s: %w", c.URL, err)
	}

	if err := os.RemoveAll(c.Dir); err != nil {
		_ = os.RemoveAll(tmpDir)
		return fmt.Errorf("removing existing cache dir: %w", err)
	}
	if err := os.Rename(tmpDir, c.Dir); err != nil {
		_ = os.RemoveAll(tmpDir)
		return fmt.Errorf("finalizing catalog clone: %w", err)
	}

	WriteFreshnessMarker(c.Dir)
	return nil
}

func (c *Cache) pull(ctx context.Context, repo *git.Repository) error {
	wt, err := repo.Worktree()
	if err != nil {
		return fmt.Errorf("opening worktree: %w", err)
	}
	err = wt.PullContext(ctx, &git.PullOptions{
		RemoteName:   git.DefaultRemoteName,
		Depth:        1,
		SingleBranch: true,
		Force:        true,
		Progress:     c.Progress,
	})
	if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return fmt.Errorf("pulling %s: %w", c.URL, err)
	}
	return nil
}

// Clear removes the cache directory.
func (c *Cache) Clear() error {
	if err := os.RemoveAll(c.Dir); err != nil {
		return fmt.Errorf("removing %s: %w", c.Dir, err)
	}
	_ = os.RemoveAll(c.Dir + tmpSuffix)
	_ = os.Remove(c.indexPath())
	return nil
}

// IsStale reports whether the cache was last updated more than maxAge ago.
func (c *Cache) IsStale(maxAge time.Duration) bool {
	return IsStale(c.Dir, maxAge)
}

func originURL(repo *git.Repository) string {
	remote, err := repo.Remote(git.DefaultRemoteName)
	if err != nil {
		return ""
	}
	urls := remote.Config().URLs
	if len(urls) == 0 {
		return ""
	}
	return urls[0]
}

// WriteFreshnessMarker writes the current Unix timestamp to the freshness file.
func WriteFreshnessMarker(dir string) {
	markerPath := filepath.Join(dir, freshnessFile)
	ts := strconv.FormatInt(time.Now().Unix(), 10)
	_ = os.WriteFile(markerPath, []byte(ts), userdata.FilePermNormal)
}

// ReadFreshnessMarker reads the timestamp from the freshness file.
// Returns zero time if the file doesn't exist or can't be parsed.
func ReadFreshnessMarker(dir string) time.Time {
	data, err := os.ReadFile(filepath.Join(dir, freshnessFile))
	if err != nil {
		return time.Time{}
	}
	ts, err := strconv.ParseInt(strings.TrimSpace(string(data)), 10, 64)
	if err != nil {
		return time.Time{}
	}
	return time.Unix(ts, 0)
}

// IsStale returns true if dir was last updated more than maxAge ago.
// Returns true if the freshness marker doesn't exist.
func IsStale(dir string, maxAge time.Duration) bool {
	lastUpdated := ReadFreshnessMarker(dir)
	if lastUpdated.IsZero() {
		return true
	}
	return time.Since(lastUpdated) > maxAge
}
