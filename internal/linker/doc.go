// Package linker records which consumer projects use which shared
// artifacts. Links drive `sync`: reinstalling an artifact into every
// project linked to it. The registry lives in ~/.qgi/links.yaml and is
// guarded by a file lock so concurrent invocations do not lose updates.
package linker
