// Package vcs commits and publishes changes in a consumer project.
//
// Commits shell out to the git binary so the user's credentials, hooks and
// signing configuration apply. Repository detection uses go-git.
package vcs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"

	"github.com/go-git/go-git/v5"
)

// ErrNotRepo is returned when a directory is not inside a git repository.
var ErrNotRepo = errors.New("not a git repository")

// Committer records and publishes all changes in a project.
type Committer interface {
	Commit(ctx context.Context, dir, message string) error
}

// Git runs the git binary.
type Git struct {
	Out io.Writer // receives command output; discarded when nil
}

// Steps returns the git invocations Commit performs, in order.
func Steps(message string) [][]string {
	return [][]string{
		{"add", "-A"},
		{"commit", "-m", message},
		{"pull"},
		{"push"},
	}
}

// Commit stages everything, commits with message, pulls and pushes.
// It stops at the first failing step.
func (g *Git) Commit(ctx context.Context, dir, message string) error {
	if !IsRepo(dir) {
		return fmt.Errorf("%w: %s", ErrNotRepo, dir)
	}
	path, err := exec.LookPath("git")
	if err != nil {
		return fmt.Errorf("git is required but not found in PATH")
	}

	for _, args := range Steps(message) {
		cmd := exec.CommandContext(ctx, path, args...)
		cmd.Dir = dir
		if g.Out != nil {
			cmd.Stdout = g.Out
			cmd.Stderr = g.Out
		}
		if err := cmd.Run(); err != nil {
			return fmt.Errorf("git %s: %w", args[0], err)
		}
	}
	return nil
}

// IsRepo reports whether dir is inside a git working tree.
func IsRepo(dir string) bool {
	_, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	return err == nil
}

// Message returns the commit message for an install, using custom when set
// and "chore(<catalog>): <action> <name>" otherwise.
func Message(custom, catalog, action, name string) string {
	if custom != "" {
		return custom
	}
	return fmt.Sprintf("chore(%s): %s %s", catalog, action, name)
}
