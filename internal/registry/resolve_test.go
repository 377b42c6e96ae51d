package registry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qg-labs/qgi/internal/manifest"
)

func artifact(name string, kind Kind) *Artifact {
	return &Artifact{Package: manifest.Package{Name: name, Version: "1.0.0"}, Kind: kind}
}

func TestPascalName(t *testing.T) {
	tests := map[string]string{
		"button":      "Button",
		"date-picker": "DatePicker",
		"user_card":   "UserCard",
		"qr-code-v2":  "QrCodeV2",
		"a11y-helper": "A11yHelper",
		"table2col":   "Table2col",
		"h5page":      "H5page",
		"XMLParser":   "XmlParser",
		"v2Beta":      "V2Beta",
		"foo-2bar":    "Foo_2bar",
	}
	for in, want := range tests {
		if got := PascalName(in); got != want {
			t.Errorf("PascalName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestTargetPath(t *testing.T) {
	tests := []struct {
		a    *Artifact
		want string
	}{
		{artifact("@qg-com/date-picker", KindComponent), "src/components/DatePicker"},
		{artifact("@qg-com/format-date", KindUtil), "src/utils/format-date.ts"},
		{artifact("@qg-block/login", KindBlock), "src/pages/Login"},
		{&Artifact{Package: manifest.Package{Name: "@qg-com/a11y-helper"}, Kind: KindComponent, Dir: "src/components/A11YHelper"}, "src/components/A11YHelper"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TargetPath(tt.a), tt.a.Name)
	}
}

func TestFilesUtil(t *testing.T) {
	root := comCatalog(t)

	files, err := Files(root, artifact("@qg-com/format-date", KindUtil))
	require.NoError(t, err)
	assert.Equal(t, []string{
		"src/utils/__tests__/format-date.test.ts",
		"src/utils/format-date.package.json",
		"src/utils/format-date.ts",
		"src/utils/locales/format-date",
	}, files)
}

func TestFilesComponent(t *testing.T) {
	files, err := Files(comCatalog(t), artifact("@qg-com/date-picker", KindComponent))
	require.NoError(t, err)
	assert.Equal(t, []string{"src/components/DatePicker"}, files)
}

func TestHasConflict(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T, root string)
		a     *Artifact
		want  bool
	}{
		{
			name:  "component absent",
			setup: func(*testing.T, string) {},
			a:     artifact("@qg-com/date-picker", KindComponent),
		},
		{
			name: "component dir without package.json",
			setup: func(t *testing.T, root string) {
				writeFile(t, root, "src/components/DatePicker/index.tsx", "x")
			},
			a:    artifact("@qg-com/date-picker", KindComponent),
			want: true,
		},
		{
			name: "component previously installed",
			setup: func(t *testing.T, root string) {
				writeFile(t, root, "src/components/DatePicker/package.json", "{}")
			},
			a: artifact("@qg-com/date-picker", KindComponent),
		},
		{
			name: "util ts without package file",
			setup: func(t *testing.T, root string) {
				writeFile(t, root, "src/utils/format-date.ts", "x")
			},
			a:    artifact("@qg-com/format-date", KindUtil),
			want: true,
		},
		{
			name: "util previously installed",
			setup: func(t *testing.T, root string) {
				writeFile(t, root, "src/utils/format-date.ts", "x")
				writeFile(t, root, "src/utils/format-date.package.json", "{}")
			},
			a: artifact("@qg-com/format-date", KindUtil),
		},
		{
			name: "block page without package.json",
			setup: func(t *testing.T, root string) {
				require.NoError(t, os.MkdirAll(filepath.Join(root, "src/pages/Login"), 0o755))
			},
			a:    artifact("@qg-block/login", KindBlock),
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			tt.setup(t, root)
			assert.Equal(t, tt.want, HasConflict(root, tt.a))
		})
	}
}

func TestCatalogFor(t *testing.T) {
	assert.Equal(t, CatalogBlock, CatalogFor("@qg-block/login", testScopes))
	assert.Equal(t, CatalogCom, CatalogFor("@qg-com/button", testScopes))
	assert.Equal(t, CatalogCom, CatalogFor("@qg-com/button", Scopes{Internal: "@qg-"}))
}

func TestIsInternal(t *testing.T) {
	assert.True(t, IsInternal("@qg-com/button", testScopes))
	assert.True(t, IsInternal("@qg-block/login", testScopes))
	assert.False(t, IsInternal("react", testScopes))
	assert.False(t, IsInternal("@qg-com/button", Scopes{}))
}

func TestProjectDeps(t *testing.T) {
	project := t.TempDir()
	writeFile(t, project, "package.json", `{
  "name": "app",
  "dependencies": {"react": "^18.2.0", "@qg-com/format-date": "0.9.0"},
  "devDependencies": {"typescript": "^5.3.0"}
}`)
	writeFile(t, project, "src/utils/format-date.package.json", `{"name": "@qg-com/format-date", "version": "1.0.0"}`)
	writeFile(t, project, "src/pages/Login/package.json", `{"name": "@qg-block/login", "version": "2.0.0"}`)

	deps, err := ProjectDeps(project, CatalogCom)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"react":               "^18.2.0",
		"typescript":          "^5.3.0",
		"@qg-com/format-date": "^1.0.0",
	}, deps)

	deps, err = ProjectDeps(project, CatalogCom, CatalogBlock)
	require.NoError(t, err)
	assert.Equal(t, "^2.0.0", deps["@qg-block/login"])
}

func TestProjectDepsMissingPackageJSON(t *testing.T) {
	_, err := ProjectDeps(t.TempDir(), CatalogCom)
	assert.Error(t, err)
}
