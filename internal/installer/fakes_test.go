package installer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	charm "github.com/charmbracelet/log"
	"github.com/stretchr/testify/require"

	"github.com/qg-labs/qgi/internal/catalog"
	"github.com/qg-labs/qgi/internal/registry"
)

// fakeNPM records installs and writes the specs into the project's
// package.json the way npm install -S would.
type fakeNPM struct {
	mu     sync.Mutex
	calls  map[string][][]string // dir -> specs per call
	failIn string
}

func (f *fakeNPM) Install(_ context.Context, dir string, specs []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls == nil {
		f.calls = map[string][][]string{}
	}
	f.calls[dir] = append(f.calls[dir], specs)
	if dir == f.failIn {
		return fmt.Errorf("npm ERR! code E404")
	}

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
	return os.WriteFile(path, out, 0o644)
}

func (f *fakeNPM) callsIn(dir string) [][]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[dir]
}

type fakeGit struct {
	mu       sync.Mutex
	messages []string
	err      error
}

func (f *fakeGit) Commit(_ context.Context, dir, message string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, message)
	return f.err
}

// fakeLoader serves pre-discovered snapshots and counts loads.
type fakeLoader struct {
	mu        sync.Mutex
	snapshots map[string]*catalog.Snapshot
	loads     map[string]int
}

func (f *fakeLoader) Load(_ context.Context, name string) (*catalog.Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loads == nil {
		f.loads = map[string]int{}
	}
	f.loads[name]++
	s, ok := f.snapshots[name]
	if !ok {
		return nil, fmt.Errorf("unknown catalog %q", name)
	}
	return s, nil
}

type fakeLinks map[string][]string

func (f fakeLinks) Projects(catalog, name string) ([]string, error) {
	return f[catalog+":"+name], nil
}

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func snapshot(t *testing.T, name, dir string) *catalog.Snapshot {
	t.Helper()
	artifacts, warnings, err := registry.Discover(dir, name)
	require.NoError(t, err)
	require.Empty(t, warnings)
	return &catalog.Snapshot{Name: name, Dir: dir, Artifacts: artifacts}
}

func comCatalog(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeFile(t, root, "src/components/DatePicker/package.json", `{
  "name": "@qg-com/date-picker",
  "version": "1.2.0",
  "dependencies": {
    "react": "^18.2.0",
    "dayjs": "^1.11.10",
    "@qg-com/format-date": "^1.0.0"
  }
}`)
	writeFile(t, root, "src/components/DatePicker/index.tsx", "export const DatePicker = 1\n")
	writeFile(t, root, "src/utils/format-date.package.json", `{
  "name": "@qg-com/format-date",
  "version": "1.0.0",
  "dependencies": {"dayjs": "^1.11.10"}
}`)
	writeFile(t, root, "src/utils/format-date.ts", "export {}\n")
	writeFile(t, root, "src/components/Broken/package.json", `{
  "name": "@qg-com/broken",
  "version": "0.1.0",
  "dependencies": {"@qg-com/ghost": "^1.0.0"}
}`)
	writeFile(t, root, "src/components/Broken/index.tsx", "export {}\n")
	return root
}

func blockCatalog(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeFile(t, root, "src/pages/Login/package.json", `{
  "name": "@qg-block/login",
  "version": "2.0.0",
  "dependencies": {
    "axios": "^1.6.0",
    "@qg-block/layout": "^1.0.0",
    "@qg-com/date-picker": "^1.2.0"
  }
}`)
	writeFile(t, root, "src/pages/Login/index.tsx", "export {}\n")
	writeFile(t, root, "src/pages/Layout/package.json", `{
  "name": "@qg-block/layout",
  "version": "1.0.0",
  "dependencies": {"@qg-block/login": "^2.0.0"}
}`)
	writeFile(t, root, "src/pages/Layout/index.tsx", "export {}\n")
	return root
}

func newProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, dir, "package.json", `{
  "name": "app",
  "dependencies": {"react": "^18.2.0", "dayjs": "^1.10.0"}
}`)
	return dir
}

// syncBuffer is a bytes.Buffer safe for concurrent loggers.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

type fixture struct {
	installer *Installer
	npm       *fakeNPM
	git       *fakeGit
	loader    *fakeLoader
	logs      *syncBuffer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		npm:  &fakeNPM{},
		git:  &fakeGit{},
		logs: &syncBuffer{},
		loader: &fakeLoader{snapshots: map[string]*catalog.Snapshot{
			registry.CatalogCom:   snapshot(t, registry.CatalogCom, comCatalog(t)),
			registry.CatalogBlock: snapshot(t, registry.CatalogBlock, blockCatalog(t)),
		}},
	}
	f.installer = &Installer{
		Catalogs: f.loader,
		NPM:      f.npm,
		Git:      f.git,
		Scopes:   registry.Scopes{Internal: "@qg-", Block: "@qg-block"},
		Log:      charm.NewWithOptions(f.logs, charm.Options{Level: charm.DebugLevel}),
	}
	return f
}

func (f *fixture) artifact(t *testing.T, catalogName, name string) *registry.Artifact {
	t.Helper()
	a, err := f.loader.snapshots[catalogName].Find(name)
	require.NoError(t, err)
	return a
}
