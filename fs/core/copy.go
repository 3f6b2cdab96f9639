package core

import (
	"io/fs"
	"path"
	"strings"
)

// CopyFS copies every file of a read-only filesystem (typically embed.FS or
// fstest.MapFS) into a writable FS, preserving the directory structure.
//
// srcRoot selects the directory of src to copy; "." copies everything.
// Directories are created with MkdirAll, including empty ones, and file
// permissions are carried over.
//
// Example:
//
//	//go:embed testdata/tree
//	var tree embed.FS
//
//	mem := billy.NewMemory()
//	err := core.CopyFS(tree, mem, "testdata/tree")
func CopyFS(src fs.FS, dst FS, srcRoot string) error {
	return fs.WalkDir(src, srcRoot, func(filePath string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		dstPath := filePath
		if srcRoot != "." && srcRoot != "" {
			dstPath = strings.TrimPrefix(filePath, srcRoot)
			dstPath = strings.TrimPrefix(dstPath, "/")
		}

		if d.IsDir() {
			if dstPath == "" || dstPath == "." {
				return nil
			}
			return dst.MkdirAll(dstPath, 0o755)
		}

		data, err := fs.ReadFile(src, filePath)
		if err != nil {
			return err
		}

		info, err := d.Info()
		if err != nil {
			return err
		}

		if dir := path.Dir(dstPath); dir != "." && dir != "" {
			if err := dst.MkdirAll(dir, 0o755); err != nil {
				return err
			}
		}

		return dst.WriteFile(dstPath, data, info.Mode().Perm())
	})
}
