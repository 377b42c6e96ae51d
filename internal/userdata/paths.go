package userdata

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/qg-labs/qgi/internal/branding"
)

// Directory and file name constants for the home layout.
const (
	CacheDir    = "cache"
	LinksFile   = "links.yaml"
	ConfigFile  = "config.yaml"
	PackageJSON = "package.json"
)

// Permission constants.
const (
	DirPermNormal  os.FileMode = 0755
	FilePermNormal os.FileMode = 0644
)

// ErrNoProject is returned when no package.json is found above a directory.
var ErrNoProject = errors.New("no package.json found in this directory or any parent")

// Root returns the tool's home directory. QGI_HOME overrides ~/.qgi.
func Root() (string, error) {
	if v := os.Getenv(branding.EnvVar("HOME")); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, branding.HomeDir()), nil
}

// GetCacheDir returns the local clone location for a catalog,
// e.g. ~/.qgi/cache/com.
func GetCacheDir(catalog string) (string, error) {
	root, err := Root()
	if err != nil {
		return "", err
	}
	return filepath.Join(root, CacheDir, catalog), nil
}

// GetLinksPath returns the path to the link registry file.
func GetLinksPath() (string, error) {
	root, err := Root()
	if err != nil {
		return "", err
	}
	return filepath.Join(root, LinksFile), nil
}

// GetConfigPath returns the path to config.yaml.
func GetConfigPath() (string, error) {
	root, err := Root()
	if err != nil {
		return "", err
	}
	return filepath.Join(root, ConfigFile), nil
}

// EnsureRoot creates the home directory if it does not exist.
func EnsureRoot() error {
	root, err := Root()
	if err != nil {
		return err
	}
	return EnsureDir(root)
}

// EnsureDir creates dir and its parents with normal permissions.
func EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, DirPermNormal); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}
	return nil
}

// FindProjectRoot walks up from start to the nearest directory holding a
// package.json and returns it as an absolute path.
func FindProjectRoot(start string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", start, err)
	}
	for {
		if info, err := os.Stat(filepath.Join(dir, PackageJSON)); err == nil && !info.IsDir() {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("%w (searched from %s)", ErrNoProject, start)
		}
		dir = parent
	}
}
