// Package registry discovers shared artifacts (components, utils and blocks)
// in a catalog checkout or a consumer project, resolves where their files
// live, and classifies an artifact's declared dependencies against what a
// project already has to produce an install plan.
package registry
