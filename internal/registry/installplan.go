package registry

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// BuildInstallPlan classifies each declared dependency of a against the
// versions the project already has:
//
//   - present and not older than declared: satisfied
//   - present but older: update (external) or internal
//   - absent: install (external) or internal
//
// Dependencies are visited in name order so plans are deterministic.
// A present version that cannot be compared is treated as satisfied and
// reported as a warning.
func BuildInstallPlan(a *Artifact, projectDeps map[string]string, scopes Scopes) *InstallPlan {
	plan := &InstallPlan{Artifact: a}

	names := make([]string, 0, len(a.Dependencies))
	for name := range a.Dependencies {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		declared := a.Dependencies[name]
		dep := Dependency{
			Name:     name,
			Version:  StripRange(declared),
			Declared: declared,
			Present:  projectDeps[name],
		}
		internal := IsInternal(name, scopes)

		if dep.Present == "" {
			if internal {
				plan.Internal = append(plan.Internal, dep)
			} else {
				plan.Install = append(plan.Install, dep)
			}
			continue
		}

		older, err := IsOlder(dep.Present, declared)
		if err != nil {
			plan.Warnings = append(plan.Warnings,
				fmt.Sprintf("%s: cannot compare %q with %q, keeping project version", name, dep.Present, declared))
			plan.Satisfied = append(plan.Satisfied, dep)
			continue
		}
		switch {
		case !older:
			plan.Satisfied = append(plan.Satisfied, dep)
		case internal:
			plan.Internal = append(plan.Internal, dep)
		default:
			plan.Update = append(plan.Update, dep)
		}
	}

	return plan
}

// StripRange removes caret and tilde range markers: "^1.2.0" -> "1.2.0".
func StripRange(version string) string {
	return strings.TrimSpace(strings.NewReplacer("^", "", "~", "").Replace(version))
}

// IsOlder reports whether present is a lower version than declared after
// stripping range markers.
func IsOlder(present, declared string) (bool, error) {
	pv, err := semver.NewVersion(StripRange(present))
	if err != nil {
		return false, fmt.Errorf("parsing version %q: %w", present, err)
	}
	dv, err := semver.NewVersion(StripRange(declared))
	if err != nil {
		return false, fmt.Errorf("parsing version %q: %w", declared, err)
	}
	return pv.LessThan(dv), nil
}

// Specs returns the npm install arguments for every install and update
// entry, installs first.
func (p *InstallPlan) Specs() []string {
	specs := make([]string, 0, len(p.Install)+len(p.Update))
	for _, d := range p.Install {
		specs = append(specs, d.Spec())
	}
	for _, d := range p.Update {
		specs = append(specs, d.Spec())
	}
	return specs
}

// Empty reports whether nothing beyond copying the artifact is needed.
func (p *InstallPlan) Empty() bool {
	return len(p.Install) == 0 && len(p.Update) == 0 && len(p.Internal) == 0
}

// PrintPlan prints a summary of the plan.
func PrintPlan(w io.Writer, plan *InstallPlan) {
	fmt.Fprintf(w, "  %s@%s\n", plan.Artifact.Name, plan.Artifact.Version)

	if plan.Empty() {
		fmt.Fprintf(w, "    dependencies satisfied (%d)\n", len(plan.Satisfied))
		return
	}
	if len(plan.Install) > 0 {
		fmt.Fprintf(w, "    install (%d):\n", len(plan.Install))
		for _, d := range plan.Install {
			fmt.Fprintf(w, "      %s\n", d.Spec())
		}
	}
	if len(plan.Update) > 0 {
		fmt.Fprintf(w, "    update (%d):\n", len(plan.Update))
		for _, d := range plan.Update {
			fmt.Fprintf(w, "      %s (from %s)\n", d.Spec(), d.Present)
		}
	}
	if len(plan.Internal) > 0 {
		fmt.Fprintf(w, "    shared (%d):\n", len(plan.Internal))
		for _, d := range plan.Internal {
			fmt.Fprintf(w, "      %s\n", d.Name)
		}
	}
	for _, warning := range plan.Warnings {
		fmt.Fprintf(w, "    warning: %s\n", warning)
	}
}
