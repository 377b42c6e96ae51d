// Package branding provides compile-time identity values for the CLI.
//
// Forks edit branding.yaml in this package; Go's //go:embed bakes it into
// the binary so the command name, home directory and default repositories
// can change without touching code.
package branding

import (
	_ "embed"
	"strings"
	"sync"

	"go.yaml.in/yaml/v3"
)

//go:embed branding.yaml
var rawBranding []byte

var (
	once     sync.Once
	defaults brand
)

type brand struct {
	CLIName      string `yaml:"cli_name"`
	DisplayName  string `yaml:"display_name"`
	Description  string `yaml:"description"`
	HomeDir      string `yaml:"home_dir"`
	EnvPrefix    string `yaml:"env_prefix"`
	GoModule     string `yaml:"go_module"`
	ComRepoURL   string `yaml:"com_repo_url"`
	BlockRepoURL string `yaml:"block_repo_url"`
}

func load() {
	once.Do(func() {
		// Hard defaults in case the embedded file is empty.
		defaults = brand{
			CLIName:     "qgi",
			DisplayName: "QGI",
			Description: "Install shared UI components and blocks into your project",
			HomeDir:     ".qgi",
			EnvPrefix:   "QGI",
			GoModule:    "github.com/qg-labs/qgi",
		}
		_ = yaml.Unmarshal(rawBranding, &defaults)
	})
}

// CLIName returns the root command name (e.g., "qgi").
func CLIName() string { load(); return defaults.CLIName }

// DisplayName returns the human-readable product name.
func DisplayName() string { load(); return defaults.DisplayName }

// Description returns the short product description.
func Description() string { load(); return defaults.Description }

// HomeDir returns the dot-directory name under $HOME (e.g., ".qgi").
func HomeDir() string { load(); return defaults.HomeDir }

// EnvPrefix returns the environment variable prefix (e.g., "QGI").
func EnvPrefix() string { load(); return defaults.EnvPrefix }

// DefaultRepoURL returns the built-in repository URL for a catalog
// ("com" or "block"). Unknown catalogs return "".
func DefaultRepoURL(catalog string) string {
	load()
	switch catalog {
	case "com":
		return defaults.ComRepoURL
	case "block":
		return defaults.BlockRepoURL
	default:
		return ""
	}
}

// EnvVar returns a fully qualified env var name, e.g., EnvVar("HOME") → "QGI_HOME".
func EnvVar(suffix string) string {
	load()
	return defaults.EnvPrefix + "_" + strings.ToUpper(suffix)
}
