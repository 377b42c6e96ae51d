// Package npm wraps the npm command line and the npm registry. Installs go
// through the npm binary so the project's lockfile and .npmrc are honored;
// version lookups for outdated checks go straight to the registry API.
package npm
