//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/qg-labs/qgi/internal/catalog"
	"github.com/qg-labs/qgi/internal/installer"
	"github.com/qg-labs/qgi/internal/linker"
	"github.com/qg-labs/qgi/internal/registry"
)

// testEnv holds an isolated home, two catalog origins and a project.
type testEnv struct {
	HomeDir    string // QGI_HOME
	ComOrigin  string
	BlockOrig  string
	ProjectDir string

	comRepo *git.Repository
	npm     *recordingNPM
	git     *recordingGit
	links   *linker.Store
	manager *catalog.Manager
}

// setupTestEnv creates origin repositories for both catalogs, a consumer
// project and an installer wired to real caches and a real link registry.
// npm and project commits are recorded instead of executed.
func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available for the local file transport")
	}

	env := &testEnv{
		HomeDir:    t.TempDir(),
		ComOrigin:  t.TempDir(),
		BlockOrig:  t.TempDir(),
		ProjectDir: t.TempDir(),
		npm:        &recordingNPM{},
		git:        &recordingGit{},
	}
	t.Setenv("QGI_HOME", env.HomeDir)

	env.comRepo = initOrigin(t, env.ComOrigin, map[string]string{
		"src/components/DatePicker/package.json": `{"name": "@qg-com/date-picker", "version": "1.2.0",
  "dependencies": {"dayjs": "^1.11.10", "react": "^18.2.0", "@qg-com/format-date": "^0.3.0"}}`,
		"src/components/DatePicker/index.tsx":     "export const DatePicker = () => null\n",
		"src/utils/format-date.package.json":      `{"name": "@qg-com/format-date", "version": "0.3.0", "dependencies": {"dayjs": "^1.11.10"}}`,
		"src/utils/format-date.ts":                "export const formatDate = () => ''\n",
		"src/utils/locales/format-date.en.json":   "{}\n",
		"src/utils/__tests__/format-date.test.ts": "test('x', () => {})\n",
	})
	initOrigin(t, env.BlockOrig, map[string]string{
		"src/pages/Checkout/package.json": `{"name": "@qg-block/checkout", "version": "2.0.0",
  "dependencies": {"axios": "1.6.0", "@qg-com/date-picker": "^1.2.0"}}`,
		"src/pages/Checkout/index.tsx": "export default function Checkout() { return null }\n",
	})

	writeFile(t, filepath.Join(env.ProjectDir, "package.json"),
		`{"name": "shop", "version": "0.1.0", "dependencies": {"react": "^18.2.0", "dayjs": "^1.10.0"}}`)

	com, err := catalog.NewCache("com", env.ComOrigin)
	if err != nil {
		t.Fatalf("NewCache(com): %v", err)
	}
	block, err := catalog.NewCache("block", env.BlockOrig)
	if err != nil {
		t.Fatalf("NewCache(block): %v", err)
	}
	env.manager = catalog.NewManager(com, block)

	env.links, err = linker.NewStore()
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	return env
}

func (e *testEnv) installer() *installer.Installer {
	return &installer.Installer{
		Catalogs: e.manager,
		NPM:      e.npm,
		Git:      e.git,
		Scopes:   registry.Scopes{Internal: "@qg-", Block: "@qg-block"},
	}
}

// artifacts loads a catalog and returns the named artifacts.
func (e *testEnv) artifacts(t *testing.T, catalogName string, names ...string) []*registry.Artifact {
	t.Helper()
	snap, err := e.manager.Load(context.Background(), catalogName)
	if err != nil {
		t.Fatalf("loading %s: %v", catalogName, err)
	}
	found, err := registry.FindAll(snap.Artifacts, names)
	if err != nil {
		t.Fatalf("FindAll: %v", err)
	}
	return found
}

// newProject creates another consumer project with the same dependencies.
func newProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "package.json"),
		`{"name": "admin", "version": "0.1.0", "dependencies": {"react": "^18.2.0"}}`)
	return dir
}

func initOrigin(t *testing.T, dir string, files map[string]string) *git.Repository {
	t.Helper()
	repo, err := git.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("git init %s: %v", dir, err)
	}
	for rel, content := range files {
		writeFile(t, filepath.Join(dir, filepath.FromSlash(rel)), content)
	}
	commitAll(t, repo, "init")
	return repo
}

func commitAll(t *testing.T, repo *git.Repository, msg string) {
	t.Helper()
	wt, err := repo.Worktree()
	if err != nil {
		t.Fatalf("worktree: %v", err)
	}
	if err := wt.AddWithOptions(&git.AddOptions{All: true}); err != nil {
		t.Fatalf("git add: %v", err)
	}
	_, err = wt.Commit(msg, &git.CommitOptions{
		Author: &object.Signature{Name: "test", Email: "test@example.com", When: time.Now()},
	})
	if err != nil {
		t.Fatalf("git commit: %v", err)
	}
}

// recordingNPM writes installed specs into package.json like npm install -S.
type recordingNPM struct {
	mu    sync.Mutex
	calls map[string][][]string
}

func (r *recordingNPM) Install(_ context.Context, dir string, specs []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.calls == nil {
		r.calls = map[string][][]string{}
	}
	r.calls[dir] = append(r.calls[dir], specs)

	path := filepath.Join(dir, "package.json")
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var pkg map[string]any
	if err := json.Unmarshal(data, &pkg); err != nil {
		return err
	}
	deps, _ := pkg["dependencies"].(map[string]any)
	if deps == nil {
		deps = map[string]any{}
	}
	for _, spec := range specs {
		at := strings.LastIndex(spec, "@")
		deps[spec[:at]] = "^" + spec[at+1:]
	}
	pkg["dependencies"] = deps
	out, err := json.Marshal(pkg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, out, 0644)
}

func (r *recordingNPM) callsIn(dir string) [][]string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls[dir]
}

type recordingGit struct {
	mu       sync.Mutex
	messages []string
}

func (r *recordingGit) Commit(_ context.Context, _ string, message string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, message)
	return nil
}

// writeFile creates a file at the given path with the given content.
func writeFile(t *testing.T, path, content string) {
	t.Helper()
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("creating dir %s: %v", dir, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
}

// assertFileExists fails the test if the file does not exist.
func assertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected file to exist: %s (error: %v)", path, err)
	}
}

// assertFileNotExists fails the test if the file exists.
func assertFileNotExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err == nil {
		t.Errorf("expected file NOT to exist: %s", path)
	}
}

// assertFileContains fails if the file doesn't exist or doesn't contain substr.
func assertFileContains(t *testing.T, path, substr string) {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Errorf("reading %s: %v", path, err)
		return
	}
	if !strings.Contains(string(data), substr) {
		t.Errorf("file %s does not contain %q.\nContents:\n%s", path, substr, string(data))
	}
}
