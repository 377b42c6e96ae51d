package npm

import (
	"context"
	"fmt"
	"io"
	"os/exec"
)

// Client installs packages into a project.
type Client interface {
	// Install adds the given name@version specs to the project's
	// dependencies. An empty list is a no-op.
	Install(ctx context.Context, dir string, specs []string) error
}

// Exec runs the npm binary (or a compatible client such as pnpm).
type Exec struct {
	Bin string    // defaults to "npm"
	Out io.Writer // receives stdout and stderr; discarded when nil
}

// Args returns the command line arguments used to install specs.
func Args(specs []string) []string {
	return append([]string{"install", "-S"}, specs...)
}

// Install runs `npm install -S <specs...>` in dir.
func (e *Exec) Install(ctx context.Context, dir string, specs []string) error {
	if len(specs) == 0 {
		return nil
	}

	bin := e.Bin
	if bin == "" {
		bin = "npm"
	}
	path, err := exec.LookPath(bin)
	if err != nil {
		return fmt.Errorf("%s is required but not found in PATH", bin)
	}

	cmd := exec.CommandContext(ctx, path, Args(specs)...)
	cmd.Dir = dir
	if e.Out != nil {
		cmd.Stdout = e.Out
		cmd.Stderr = e.Out
	}
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s install in %s: %w", bin, dir, err)
	}
	return nil
}
