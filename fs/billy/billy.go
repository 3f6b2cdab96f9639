package billy

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/jmgilman/storage/fs/core"
)

// LocalFS wraps billy's osfs for local filesystem access.
// All names are resolved below the root directory given to NewLocal.
type LocalFS struct {
	filesystem
	root string
}

// MemoryFS wraps billy's memfs for in-memory filesystem access.
type MemoryFS struct {
	filesystem
}

// filesystem holds the operations LocalFS and MemoryFS share.
type filesystem struct {
	bfs billy.Filesystem
}

// NewLocal creates a go-billy-backed local filesystem rooted at root.
// Names passed to the filesystem cannot escape root.
func NewLocal(root string) *LocalFS {
	return &LocalFS{
		filesystem: filesystem{bfs: osfs.New(root)},
		root:       root,
	}
}

// NewMemory creates a go-billy-backed in-memory filesystem.
// The filesystem is initially empty.
func NewMemory() *MemoryFS {
	return &MemoryFS{
		filesystem: filesystem{bfs: memfs.New()},
	}
}

// Root returns the directory the filesystem is rooted at.
func (lfs *LocalFS) Root() string {
	return lfs.root
}

// Unwrap returns the underlying billy.Filesystem.
func (f *filesystem) Unwrap() billy.Filesystem {
	return f.bfs
}

// normalize converts paths to use forward slashes consistently.
// This is a simplified path normalization since billy handles security.
func normalize(name string) string {
	return filepath.ToSlash(filepath.Clean(name))
}

// dirEntry wraps fs.FileInfo to implement fs.DirEntry.
type dirEntry struct {
	info fs.FileInfo
}

func (d *dirEntry) Name() string               { return d.info.Name() }
func (d *dirEntry) IsDir() bool                { return d.info.IsDir() }
func (d *dirEntry) Type() fs.FileMode          { return d.info.Mode().Type() }
func (d *dirEntry) Info() (fs.FileInfo, error) { return d.info, nil }

// ReadFS interface implementation

// Open opens the named file for reading.
// Returns a File that also implements fs.File.
func (f *filesystem) Open(name string) (fs.File, error) {
	name = normalize(name)
	file, err := f.bfs.Open(name)
	if err != nil {
		return nil, err
	}
	return &File{file: file, fs: f.bfs, name: name}, nil
}

// Stat returns file metadata for the named file.
func (f *filesystem) Stat(name string) (fs.FileInfo, error) {
	return f.bfs.Stat(normalize(name))
}

// ReadDir reads the directory named by dirname and returns
// a list of directory entries sorted by filename.
func (f *filesystem) ReadDir(name string) ([]fs.DirEntry, error) {
	// Billy's ReadDir returns []fs.FileInfo, we need to convert to []fs.DirEntry
	infos, err := f.bfs.ReadDir(normalize(name))
	if err != nil {
		return nil, err
	}
	entries := make([]fs.DirEntry, len(infos))
	for i, info := range infos {
		entries[i] = &dirEntry{info: info}
	}
	return entries, nil
}

// ReadFile reads the named file and returns its contents.
func (f *filesystem) ReadFile(name string) ([]byte, error) {
	file, err := f.bfs.Open(normalize(name))
	if err != nil {
		return nil, err
	}
	defer func() { _ = file.Close() }()
	return io.ReadAll(file)
}

// Exists reports whether the named file or directory exists.
func (f *filesystem) Exists(name string) (bool, error) {
	_, err := f.bfs.Stat(normalize(name))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}

// WriteFS interface implementation

// Create creates or truncates the named file for writing.
// Returns a File that also implements fs.File.
func (f *filesystem) Create(name string) (core.File, error) {
	name = normalize(name)
	file, err := f.bfs.Create(name)
	if err != nil {
		return nil, err
	}
	return &File{file: file, fs: f.bfs, name: name}, nil
}

// WriteFile writes data to the named file, creating it if necessary.
func (f *filesystem) WriteFile(name string, data []byte, perm fs.FileMode) error {
	file, err := f.bfs.OpenFile(normalize(name), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	_, err = file.Write(data)
	if cerr := file.Close(); err == nil {
		err = cerr
	}
	return err
}

// Mkdir creates a new directory with the specified name and permission bits.
// Unlike MkdirAll, this will fail if the parent directory does not exist.
func (f *filesystem) Mkdir(name string, perm fs.FileMode) error {
	name = normalize(name)
	if _, err := f.bfs.Stat(name); err == nil {
		return &fs.PathError{Op: "mkdir", Path: name, Err: fs.ErrExist}
	}
	parent := path.Dir(name)
	if parent != "." && parent != "/" {
		if _, err := f.bfs.Stat(parent); err != nil {
			return err
		}
	}
	// The parent exists, so MkdirAll creates exactly one directory.
	return f.bfs.MkdirAll(name, perm)
}

// MkdirAll creates a directory named path, along with any necessary parents.
func (f *filesystem) MkdirAll(name string, perm fs.FileMode) error {
	return f.bfs.MkdirAll(normalize(name), perm)
}

// ManageFS interface implementation

// Remove removes the named file or empty directory.
func (f *filesystem) Remove(name string) error {
	return f.bfs.Remove(normalize(name))
}

// RemoveAll removes path and any children it contains.
func (f *filesystem) RemoveAll(name string) error {
	name = normalize(name)
	// Billy doesn't have RemoveAll, implement via recursive removal
	info, err := f.bfs.Stat(name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}

	if !info.IsDir() {
		return f.bfs.Remove(name)
	}

	entries, err := f.bfs.ReadDir(name)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if err := f.RemoveAll(path.Join(name, entry.Name())); err != nil {
			return err
		}
	}

	// The root of the filesystem cannot be removed; emptying it is enough.
	if name == "." || name == "/" {
		return nil
	}
	return f.bfs.Remove(name)
}

// Rename renames (moves) oldpath to newpath.
//
// The rename is atomic. When the operating system refuses it because the
// paths live on different devices the returned error matches
// core.ErrCrossDevice.
func (lfs *LocalFS) Rename(oldpath, newpath string) error {
	return renameError(lfs.bfs.Rename(normalize(oldpath), normalize(newpath)))
}

// renameError marks EXDEV failures with core.ErrCrossDevice, keeping the
// original error in the chain.
func renameError(err error) error {
	if err != nil && errors.Is(err, syscall.EXDEV) {
		return fmt.Errorf("%w: %w", core.ErrCrossDevice, err)
	}
	return err
}

// Rename renames (moves) oldpath to newpath.
//
// memfs relocates every path sharing oldpath as a string prefix, siblings
// included, so MemoryFS moves the tree itself. An existing file at newpath
// is replaced; an existing directory is an error.
func (mfs *MemoryFS) Rename(oldpath, newpath string) error {
	oldpath, newpath = normalize(oldpath), normalize(newpath)

	info, err := mfs.bfs.Stat(oldpath)
	if err != nil {
		return &fs.PathError{Op: "rename", Path: oldpath, Err: err}
	}
	if oldpath == newpath {
		return nil
	}
	if strings.HasPrefix(newpath, oldpath+"/") {
		return &fs.PathError{Op: "rename", Path: newpath, Err: fs.ErrInvalid}
	}
	if dst, err := mfs.bfs.Stat(newpath); err == nil && dst.IsDir() {
		return &fs.PathError{Op: "rename", Path: newpath, Err: fs.ErrExist}
	}

	return mfs.move(oldpath, newpath, info)
}

func (mfs *MemoryFS) move(oldpath, newpath string, info fs.FileInfo) error {
	if !info.IsDir() {
		if err := mfs.bfs.MkdirAll(path.Dir(newpath), 0o755); err != nil {
			return err
		}
		if err := mfs.copyFile(oldpath, newpath, info.Mode().Perm()); err != nil {
			return err
		}
		return mfs.bfs.Remove(oldpath)
	}

	if err := mfs.bfs.MkdirAll(newpath, info.Mode().Perm()); err != nil {
		return err
	}
	entries, err := mfs.bfs.ReadDir(oldpath)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if err := mfs.move(path.Join(oldpath, entry.Name()), path.Join(newpath, entry.Name()), entry); err != nil {
			return err
		}
	}
	return mfs.bfs.Remove(oldpath)
}

func (mfs *MemoryFS) copyFile(src, dst string, perm fs.FileMode) error {
	in, err := mfs.bfs.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	out, err := mfs.bfs.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

// Type returns FSTypeLocal for local filesystem implementations.
func (lfs *LocalFS) Type() core.FSType {
	return core.FSTypeLocal
}

// Type returns FSTypeMemory for in-memory filesystem implementations.
func (mfs *MemoryFS) Type() core.FSType {
	return core.FSTypeMemory
}

// Compile-time interface checks.
var (
	_ core.FS = (*LocalFS)(nil)
	_ core.FS = (*MemoryFS)(nil)
)
