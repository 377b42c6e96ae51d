package installer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	charm "github.com/charmbracelet/log"

	"github.com/qg-labs/qgi/internal/catalog"
	"github.com/qg-labs/qgi/internal/logger"
	"github.com/qg-labs/qgi/internal/npm"
	"github.com/qg-labs/qgi/internal/registry"
	"github.com/qg-labs/qgi/internal/vcs"
)

// Actions recorded in commit messages.
const (
	ActionInstall = "install"
	ActionUpdate  = "update"
)

// ErrConflict is returned for artifacts skipped because the project
// already has unrelated files at their target path.
var ErrConflict = errors.New("target exists and is not a shared artifact")

// CommitOptions enables committing and pushing after each install.
type CommitOptions struct {
	Message string // defaults to "chore(<catalog>): <action> <name>"
}

// Options control one install run.
type Options struct {
	Overwrite bool
	Commit    *CommitOptions
	Action    string // ActionInstall when empty
	DryRun    bool   // print plans only
}

func (o Options) action() string {
	if o.Action == "" {
		return ActionInstall
	}
	return o.Action
}

// nested returns the options used for recursive installs: only Overwrite
// and DryRun are inherited.
func (o Options) nested() Options {
	return Options{Overwrite: o.Overwrite, Action: o.action(), DryRun: o.DryRun}
}

// Result describes what happened to one artifact.
type Result struct {
	Artifact *registry.Artifact
	Project  string
	Plan     *registry.InstallPlan
	Files    []string
	Skipped  error     // non-nil when the artifact was not installed
	Deps     []*Result // recursive installs of shared dependencies
}

// Installer wires the collaborators an install needs.
type Installer struct {
	Catalogs catalog.Loader
	NPM      npm.Client
	Git      vcs.Committer
	Scopes   registry.Scopes
	Log      *charm.Logger
	Out      io.Writer // receives plans in dry-run mode
}

// session tracks artifacts being installed in one project so an artifact
// that depends on itself, directly or through others, is not re-entered.
type session struct {
	project    string
	inProgress map[string]bool
}

func newSession(project string) *session {
	return &session{project: project, inProgress: make(map[string]bool)}
}

func (i *Installer) log() *charm.Logger {
	if i.Log != nil {
		return i.Log
	}
	return logger.Default()
}

// Install installs artifacts into project in order and stops at the first
// error. Artifacts skipped because of a conflict are reported in their
// Result, not as an error.
func (i *Installer) Install(ctx context.Context, project string, artifacts []*registry.Artifact, opts Options) ([]*Result, error) {
	s := newSession(project)
	results := make([]*Result, 0, len(artifacts))
	for _, a := range artifacts {
		r, err := i.install(ctx, s, a, opts, a.Catalog)
		if r != nil {
			results = append(results, r)
		}
		if err != nil {
			return results, err
		}
	}
	return results, nil
}

func (i *Installer) install(ctx context.Context, s *session, a *registry.Artifact, opts Options, scope string) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	key := a.Catalog + ":" + a.Name
	if s.inProgress[key] {
		i.log().WithPrefix(scope).Debug("already being installed", "artifact", a.Name)
		return nil, nil
	}
	s.inProgress[key] = true
	defer delete(s.inProgress, key)

	l := i.log().WithPrefix(scope)
	r := &Result{Artifact: a, Project: s.project}

	if registry.HasConflict(s.project, a) {
		target := registry.TargetPath(a)
		if !opts.Overwrite {
			l.Warn("skipping: target exists and is not a shared artifact (use --overwrite)", "path", target)
			r.Skipped = fmt.Errorf("%s: %w", target, ErrConflict)
			return r, nil
		}
		l.Warn("overwriting existing files", "path", target)
	}

	projectDeps, err := registry.ProjectDeps(s.project, catalogsVisibleFrom(a.Catalog)...)
	if err != nil {
		return r, fmt.Errorf("reading project dependencies: %w", err)
	}

	plan := registry.BuildInstallPlan(a, projectDeps, i.Scopes)
	r.Plan = plan
	l.Info("resolved dependencies",
		"artifact", a.Name,
		"satisfied", len(plan.Satisfied),
		"install", len(plan.Install),
		"update", len(plan.Update),
		"shared", len(plan.Internal))
	for _, w := range plan.Warnings {
		l.Warn(w)
	}

	if opts.DryRun && i.Out != nil {
		registry.PrintPlan(i.Out, plan)
	}

	if specs := plan.Specs(); len(specs) > 0 && !opts.DryRun {
		l.Info("npm install", "packages", strings.Join(specs, " "))
		if err := i.NPM.Install(ctx, s.project, specs); err != nil {
			return r, fmt.Errorf("installing dependencies of %s: %w", a.Name, err)
		}
	}

	for _, dep := range plan.Internal {
		depArtifact, err := i.resolve(ctx, dep.Name)
		if err != nil {
			return r, fmt.Errorf("resolving %s (required by %s): %w", dep.Name, a.Name, err)
		}
		child, err := i.install(ctx, s, depArtifact, opts.nested(), scope+"->"+dep.Name)
		if child != nil {
			r.Deps = append(r.Deps, child)
		}
		if err != nil {
			return r, err
		}
	}

	if opts.DryRun {
		return r, nil
	}

	snap, err := i.Catalogs.Load(ctx, a.Catalog)
	if err != nil {
		return r, fmt.Errorf("loading %s catalog: %w", a.Catalog, err)
	}
	files, err := registry.InstallArtifact(snap.Dir, s.project, a)
	if err != nil {
		return r, fmt.Errorf("copying %s: %w", a.Name, err)
	}
	r.Files = files
	l.Info("copied", "artifact", a.Name, "version", a.Version, "files", len(files))

	if opts.Commit != nil {
		msg := vcs.Message(opts.Commit.Message, a.Catalog, opts.action(), a.Name)
		l.Info("committing", "message", msg)
		if err := i.Git.Commit(ctx, s.project, msg); err != nil {
			return r, fmt.Errorf("committing %s: %w", a.Name, err)
		}
	}

	return r, nil
}

// resolve finds an internal dependency in the catalog its name maps to.
func (i *Installer) resolve(ctx context.Context, name string) (*registry.Artifact, error) {
	cat := registry.CatalogFor(name, i.Scopes)
	snap, err := i.Catalogs.Load(ctx, cat)
	if err != nil {
		return nil, fmt.Errorf("loading %s catalog: %w", cat, err)
	}
	return snap.Find(name)
}

// catalogsVisibleFrom lists the catalogs whose installed artifacts count as
// project dependencies: blocks can depend on components, not vice versa.
func catalogsVisibleFrom(name string) []string {
	if name == registry.CatalogBlock {
		return []string{registry.CatalogCom, registry.CatalogBlock}
	}
	return []string{registry.CatalogCom}
}

func projectExists(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("project %s: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("project %s is not a directory", dir)
	}
	return nil
}
