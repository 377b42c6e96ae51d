package registry

import (
	"fmt"
	"os"
	"path/filepath"

	cp "github.com/otiai10/copy"
)

// excludedNames are files and directories never copied out of a catalog.
var excludedNames = map[string]bool{
	"node_modules": true,
	".git":         true,
	".DS_Store":    true,
}

// CopyArtifact copies the given slash-separated paths from srcRoot to the
// same relative location under dstRoot. Existing directories are merged
// and existing files overwritten. Symlinks are skipped.
func CopyArtifact(srcRoot, dstRoot string, files []string) error {
	opts := cp.Options{
		Skip: func(info os.FileInfo, src, dest string) (bool, error) {
			return excludedNames[info.Name()], nil
		},
		OnSymlink: func(string) cp.SymlinkAction {
			return cp.Skip
		},
		PreserveTimes: false,
	}

	for _, rel := range files {
		src := filepath.Join(srcRoot, filepath.FromSlash(rel))
		dst := filepath.Join(dstRoot, filepath.FromSlash(rel))

		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", filepath.Dir(dst), err)
		}
		if err := cp.Copy(src, dst, opts); err != nil {
			return fmt.Errorf("copying %s to %s: %w", src, dst, err)
		}
	}
	return nil
}

// InstallArtifact copies every file of a from the catalog checkout at
// catalogRoot into projectRoot and returns the copied paths.
func InstallArtifact(catalogRoot, projectRoot string, a *Artifact) ([]string, error) {
	files, err := Files(catalogRoot, a)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no files for %s in %s", a.Name, catalogRoot)
	}
	if err := CopyArtifact(catalogRoot, projectRoot, files); err != nil {
		return nil, err
	}
	return files, nil
}
