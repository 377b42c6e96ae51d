// Package installer copies shared artifacts into consumer projects.
//
// Installing an artifact reconciles its declared dependencies with the
// project: external packages that are missing or too old go through one
// npm install, shared artifacts are installed recursively, then the
// artifact's files are copied from the catalog checkout and the result is
// optionally committed and pushed.
package installer
