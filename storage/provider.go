package storage

import (
	stderrors "errors"
	"io"
	"io/fs"
	"strings"

	"github.com/jmgilman/storage/fs/core"
)

// Provider is the storage backend consumed by the transfer engine.
//
// Paths are absolute and slash-separated. Folder paths may carry a trailing
// slash; providers must accept both forms. Errors should match fs.ErrNotExist,
// fs.ErrExist or fs.ErrInvalid where those conditions apply so the engine can
// classify them.
type Provider interface {
	// Exists reports whether anything exists at path.
	Exists(path string) (bool, error)

	// Kind reports what exists at path, or ItemTypeNone.
	Kind(path string) (ItemType, error)

	// CreateDirectory creates path and any missing parents. It succeeds if
	// the directory already exists.
	CreateDirectory(path string) error

	// Delete removes path. Directories are removed recursively.
	Delete(path string) error

	// Rename moves oldpath to newpath. Implementations should be atomic where
	// the backend allows it.
	Rename(oldpath, newpath string) error

	// CopyBytes duplicates the file src at dst, replacing any file at dst.
	CopyBytes(src, dst string) error

	// ListChildren returns the paths of the direct children of the folder at
	// path. Folder children end with a slash.
	ListChildren(path string) ([]string, error)

	// CaseInsensitive reports whether the backend treats names differing
	// only in case as the same item. Identity and collision checks fold case
	// only when it returns true; otherwise "a.txt" and "A.txt" are distinct.
	CaseInsensitive() bool

	// ReservedChars returns the characters the backend forbids in a single
	// path segment, in addition to the separator.
	ReservedChars() string
}

// ContentProvider is implemented by providers that can read and write whole
// files. Storage.CreateFile and File.ReadAll require it.
type ContentProvider interface {
	ReadFile(path string) ([]byte, error)
	WriteFile(path string, data []byte) error
}

// ProviderOption configures an FSProvider.
type ProviderOption func(*FSProvider)

// WithCaseInsensitive declares that the wrapped filesystem folds case.
func WithCaseInsensitive(insensitive bool) ProviderOption {
	return func(p *FSProvider) {
		p.caseInsensitive = insensitive
	}
}

// WithReservedChars sets the characters forbidden in a single path segment.
func WithReservedChars(chars string) ProviderOption {
	return func(p *FSProvider) {
		p.reserved = chars
	}
}

// FSProvider adapts a core.FS to the Provider contract.
//
// Byte copies use the filesystem's core.Copier capability when present and
// otherwise stream the file through Open and Create.
type FSProvider struct {
	fsys            core.FS
	caseInsensitive bool
	reserved        string
}

// NewFSProvider wraps fsys.
func NewFSProvider(fsys core.FS, opts ...ProviderOption) *FSProvider {
	p := &FSProvider{fsys: fsys}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// FS returns the wrapped filesystem.
func (p *FSProvider) FS() core.FS {
	return p.fsys
}

// rel converts an absolute storage path into a name relative to the
// filesystem root.
func rel(p string) string {
	p = strings.Trim(p, "/")
	if p == "" {
		return "."
	}
	return p
}

// Exists reports whether a file or directory exists at path.
func (p *FSProvider) Exists(path string) (bool, error) {
	return p.fsys.Exists(rel(path))
}

// Kind stats path and reports whether it is a file or a folder. A missing
// path yields ItemTypeNone and no error.
func (p *FSProvider) Kind(path string) (ItemType, error) {
	info, err := p.fsys.Stat(rel(path))
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return ItemTypeNone, nil
		}
		return ItemTypeNone, err
	}
	if info.IsDir() {
		return ItemTypeFolder, nil
	}
	return ItemTypeFile, nil
}

// CreateDirectory creates path and its parents with mode 0755. The root
// always exists.
func (p *FSProvider) CreateDirectory(path string) error {
	name := rel(path)
	if name == "." {
		return nil
	}
	return p.fsys.MkdirAll(name, 0o755)
}

// Delete removes path and everything below it. A missing path fails with
// fs.ErrNotExist.
func (p *FSProvider) Delete(path string) error {
	name := rel(path)
	ok, err := p.fsys.Exists(name)
	if err != nil {
		return err
	}
	if !ok {
		return &fs.PathError{Op: "delete", Path: path, Err: fs.ErrNotExist}
	}
	return p.fsys.RemoveAll(name)
}

// Rename renames oldpath to newpath using the filesystem's own rename.
func (p *FSProvider) Rename(oldpath, newpath string) error {
	return p.fsys.Rename(rel(oldpath), rel(newpath))
}

// CopyBytes copies the file src to dst, replacing dst.
func (p *FSProvider) CopyBytes(src, dst string) error {
	if c, ok := p.fsys.(core.Copier); ok {
		return c.Copy(rel(src), rel(dst))
	}

	in, err := p.fsys.Open(rel(src))
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	out, err := p.fsys.Create(rel(dst))
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

// ListChildren returns the absolute paths of the entries directly below
// path. Directories end with a slash.
func (p *FSProvider) ListChildren(path string) ([]string, error) {
	entries, err := p.fsys.ReadDir(rel(path))
	if err != nil {
		return nil, err
	}

	prefix := strings.TrimSuffix(path, "/") + "/"
	children := make([]string, 0, len(entries))
	for _, entry := range entries {
		child := prefix + entry.Name()
		if entry.IsDir() {
			child += "/"
		}
		children = append(children, child)
	}
	return children, nil
}

// CaseInsensitive reports the value set by WithCaseInsensitive.
func (p *FSProvider) CaseInsensitive() bool {
	return p.caseInsensitive
}

// ReservedChars reports the characters set by WithReservedChars.
func (p *FSProvider) ReservedChars() string {
	return p.reserved
}

// ReadFile returns the contents of the file at path.
func (p *FSProvider) ReadFile(path string) ([]byte, error) {
	return p.fsys.ReadFile(rel(path))
}

// WriteFile creates or truncates the file at path and writes data to it.
func (p *FSProvider) WriteFile(path string, data []byte) error {
	return p.fsys.WriteFile(rel(path), data, 0o644)
}

// Compile-time interface checks.
var (
	_ Provider        = (*FSProvider)(nil)
	_ ContentProvider = (*FSProvider)(nil)
)
