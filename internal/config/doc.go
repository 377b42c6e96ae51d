// Package config manages user-level settings stored at ~/.qgi/config.yaml:
// the repository URL of each catalog, the internal package scope prefixes,
// the npm client and registry, and the log level. Values may be overridden
// with QGI_* environment variables.
package config
