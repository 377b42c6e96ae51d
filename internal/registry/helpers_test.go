package registry

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

// comCatalog lays out a small com catalog checkout:
// one component, one util and one invalid component.
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
	writeFile(t, root, "src/components/DatePicker/index.tsx", "export {}\n")
	writeFile(t, root, "src/components/DatePicker/node_modules/leftover.js", "x\n")
	writeFile(t, root, "src/components/Broken/package.json", `{"name": "@qg-com/broken"}`)
	writeFile(t, root, "src/utils/format-date.package.json", `{
  "name": "@qg-com/format-date",
  "version": "1.0.0",
  "dependencies": {"dayjs": "^1.11.10"}
}`)
	writeFile(t, root, "src/utils/format-date.ts", "export {}\n")
	writeFile(t, root, "src/utils/__tests__/format-date.test.ts", "test\n")
	writeFile(t, root, "src/utils/locales/format-date/en.json", "{}\n")
	writeFile(t, root, "src/utils/other.ts", "export {}\n")
	return root
}

// blockCatalog lays out a block catalog whose two blocks depend on each
// other and on a com component.
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
	return root
}

var testScopes = Scopes{Internal: "@qg-", Block: "@qg-block"}
