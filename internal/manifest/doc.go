// Package manifest reads the package.json files that describe shared
// artifacts and consumer projects, and validates artifact packages against
// an embedded JSON schema.
package manifest
