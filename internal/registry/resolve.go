package registry

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"unicode"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/qg-labs/qgi/internal/manifest"
)

// PascalName converts an artifact short name to its directory name:
// "date-picker" -> "DatePicker", "a11y-helper" -> "A11yHelper". Digits
// stay inside their word; a word starting with a digit is joined with "_".
func PascalName(short string) string {
	var b strings.Builder
	for i, w := range splitWords(short) {
		r := []rune(strings.ToLower(w))
		if i > 0 && unicode.IsDigit(r[0]) {
			b.WriteByte('_')
		}
		r[0] = unicode.ToUpper(r[0])
		b.WriteString(string(r))
	}
	return b.String()
}

// splitWords breaks s at non-alphanumerics, at lower-or-digit to upper
// transitions and before the last capital of an acronym ("XMLParser").
func splitWords(s string) []string {
	var (
		words []string
		cur   []rune
	)
	flush := func() {
		if len(cur) > 0 {
			words = append(words, string(cur))
			cur = nil
		}
	}
	rs := []rune(s)
	for i, r := range rs {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			flush()
			continue
		}
		if unicode.IsUpper(r) && len(cur) > 0 {
			prev := cur[len(cur)-1]
			nextLower := i+1 < len(rs) && unicode.IsLower(rs[i+1])
			if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
				flush()
			}
		}
		cur = append(cur, r)
	}
	flush()
	return words
}

// TargetPath returns the slash-separated path, relative to a repository
// root, that identifies the artifact on disk. Components and blocks are
// directories: the one they were discovered in, else the PascalCase name.
// Utils are identified by their .ts entry file.
func TargetPath(a *Artifact) string {
	short := a.ShortName()
	if a.Dir != "" && (a.Kind == KindComponent || a.Kind == KindBlock) {
		return a.Dir
	}
	switch a.Kind {
	case KindComponent:
		return path.Join("src/components", PascalName(short))
	case KindBlock:
		return path.Join("src/pages", PascalName(short))
	case KindUtil:
		return path.Join("src/utils", short+".ts")
	default:
		return ""
	}
}

// markerPath returns the package.json that proves the target path belongs
// to an installed artifact rather than to hand-written project code.
func markerPath(a *Artifact) string {
	short := a.ShortName()
	switch a.Kind {
	case KindComponent, KindBlock:
		return path.Join(TargetPath(a), "package.json")
	case KindUtil:
		return path.Join("src/utils", short+".package.json")
	default:
		return ""
	}
}

// HasConflict reports whether the project already has a file or directory
// with the artifact's target name that is not an installed artifact.
func HasConflict(projectRoot string, a *Artifact) bool {
	target := TargetPath(a)
	if target == "" {
		return false
	}
	if !exists(filepath.Join(projectRoot, filepath.FromSlash(target))) {
		return false
	}
	return !exists(filepath.Join(projectRoot, filepath.FromSlash(markerPath(a))))
}

// Files returns the slash-separated paths, relative to root, that make up
// the artifact. Components and blocks are a single directory; utils are
// src/utils/<short>.*, src/utils/*/<short>.* and src/utils/*/<short>.
func Files(root string, a *Artifact) ([]string, error) {
	var pattern string
	switch a.Kind {
	case KindComponent, KindBlock:
		pattern = TargetPath(a)
	case KindUtil:
		short := a.ShortName()
		pattern = fmt.Sprintf("src/utils/{%s.*,*/%s.*,*/%s}", short, short, short)
	default:
		return nil, fmt.Errorf("unknown artifact kind %q", a.Kind)
	}

	matches, err := doublestar.Glob(os.DirFS(root), pattern)
	if err != nil {
		return nil, fmt.Errorf("globbing %s in %s: %w", pattern, root, err)
	}
	sort.Strings(matches)
	return matches, nil
}

// CatalogFor returns the catalog an internal dependency name resolves from.
func CatalogFor(name string, scopes Scopes) string {
	if scopes.Block != "" && strings.HasPrefix(name, scopes.Block) {
		return CatalogBlock
	}
	return CatalogCom
}

// IsInternal reports whether a dependency name is a shared artifact.
func IsInternal(name string, scopes Scopes) bool {
	return scopes.Internal != "" && strings.HasPrefix(name, scopes.Internal)
}

// ArtifactDeps returns "name -> ^version" for every artifact of the given
// catalogs already present under projectRoot.
func ArtifactDeps(projectRoot string, catalogs ...string) (map[string]string, error) {
	deps := make(map[string]string)
	for _, catalog := range catalogs {
		artifacts, _, err := Discover(projectRoot, catalog)
		if err != nil {
			return nil, err
		}
		for _, a := range artifacts {
			deps[a.Name] = "^" + a.Version
		}
	}
	return deps, nil
}

// ProjectDeps returns everything the project already has: package.json
// dependencies and devDependencies plus installed shared artifacts of the
// given catalogs. Artifacts win over package.json entries of the same name.
func ProjectDeps(projectRoot string, catalogs ...string) (map[string]string, error) {
	pkg, err := manifest.ParseProject(filepath.Join(projectRoot, "package.json"))
	if err != nil {
		return nil, err
	}
	deps := pkg.AllDependencies()

	artifacts, err := ArtifactDeps(projectRoot, catalogs...)
	if err != nil {
		return nil, err
	}
	for k, v := range artifacts {
		deps[k] = v
	}
	return deps, nil
}

func exists(p string) bool {
	_, err := os.Stat(p)
	return !errors.Is(err, fs.ErrNotExist)
}
