package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/qg-labs/qgi/internal/branding"
	"github.com/qg-labs/qgi/internal/userdata"
	"github.com/spf13/viper"
)

const fileType = "yaml"

// Keys understood by the CLI.
const (
	KeyScope          = "scope"
	KeyBlockScope     = "block_scope"
	KeyLogLevel       = "log_level"
	KeyNpmClient      = "npm.client"
	KeyNpmRegistry    = "npm.registry"
	DefaultScope      = "@qg-"
	DefaultBlockScope = "@qg-block"
)

// URLKey returns the config key holding a catalog's repository URL.
func URLKey(catalog string) string {
	return catalog + ".url"
}

// FilePath returns the full path to the config file (~/.qgi/config.yaml).
func FilePath() string {
	p, err := userdata.GetConfigPath()
	if err != nil {
		return filepath.Join(".", branding.HomeDir(), userdata.ConfigFile)
	}
	return p
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(URLKey("com"), branding.DefaultRepoURL("com"))
	v.SetDefault(URLKey("block"), branding.DefaultRepoURL("block"))
	v.SetDefault(KeyScope, DefaultScope)
	v.SetDefault(KeyBlockScope, DefaultBlockScope)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyNpmClient, "npm")
	v.SetDefault(KeyNpmRegistry, "")
}

// Load initializes Viper to read from the config file and environment.
// A missing config file is created with the defaults on first run.
func Load() error {
	setDefaults(viper.GetViper())
	viper.SetConfigFile(FilePath())
	viper.SetConfigType(fileType)
	viper.SetEnvPrefix(branding.EnvPrefix())
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if _, err := os.Stat(FilePath()); os.IsNotExist(err) {
		if err := writeDefaults(); err != nil {
			return err
		}
	}

	if err := viper.ReadInConfig(); err != nil {
		return fmt.Errorf("reading config file %s: %w", FilePath(), err)
	}
	return nil
}

// writeDefaults writes the built-in defaults only, never environment values.
func writeDefaults() error {
	if err := userdata.EnsureRoot(); err != nil {
		return err
	}
	defaults := viper.New()
	setDefaults(defaults)
	if err := defaults.SafeWriteConfigAs(FilePath()); err != nil {
		return fmt.Errorf("initializing config file %s: %w", FilePath(), err)
	}
	return nil
}

// Get returns a config value by key. Returns empty string if not set.
func Get(key string) string {
	return viper.GetString(key)
}

// Override sets a value for the current process without persisting it.
func Override(key, value string) {
	viper.Set(key, value)
}

// Set writes a key to the config file and applies it to this process.
// Only the keys already in the file plus key are written: QGI_ environment
// values and Override calls stay out of the file.
func Set(key, value string) error {
	file := viper.New()
	file.SetConfigFile(FilePath())
	file.SetConfigType(fileType)
	if err := file.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("reading config file %s: %w", FilePath(), err)
	}
	file.Set(key, value)

	if err := userdata.EnsureRoot(); err != nil {
		return err
	}
	if err := file.WriteConfigAs(FilePath()); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	viper.Set(key, value)
	return nil
}

// Show returns the raw content of the config file.
func Show() (string, error) {
	data, err := os.ReadFile(FilePath())
	if err != nil {
		return "", fmt.Errorf("reading config file: %w", err)
	}
	return string(data), nil
}

// CatalogURL returns the repository URL configured for a catalog.
func CatalogURL(catalog string) string {
	return viper.GetString(URLKey(catalog))
}

// Scope returns the name prefix marking internal shared artifacts.
func Scope() string {
	return viper.GetString(KeyScope)
}

// BlockScope returns the name prefix marking internal blocks.
func BlockScope() string {
	return viper.GetString(KeyBlockScope)
}
