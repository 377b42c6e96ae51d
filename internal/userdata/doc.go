// Package userdata resolves the on-disk layout used by the CLI: the home
// directory (~/.qgi or $QGI_HOME) holding config.yaml, links.yaml and the
// catalog caches, and the consumer project root found by walking up to the
// nearest package.json.
package userdata
