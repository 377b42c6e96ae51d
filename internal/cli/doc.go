// Package cli defines the Cobra command tree for the qgi CLI. The com and
// block catalogs share one command factory; top-level commands (config,
// doctor, outdated, version) each live in their own file. Commands only
// handle flag parsing, prompting and output formatting, and delegate the
// work to the internal packages.
package cli
