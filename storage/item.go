package storage

import (
	"path"
	"strings"

	"github.com/jmgilman/storage/errors"
)

// ItemType discriminates files from folders.
type ItemType int

const (
	// ItemTypeNone reports that nothing exists at a path.
	ItemTypeNone ItemType = iota
	// ItemTypeFile is a regular file.
	ItemTypeFile
	// ItemTypeFolder is a directory.
	ItemTypeFolder
)

// String returns a string representation of the ItemType.
func (t ItemType) String() string {
	switch t {
	case ItemTypeFile:
		return "file"
	case ItemTypeFolder:
		return "folder"
	default:
		return "none"
	}
}

// Item is a file or folder handle. The set of implementations is closed:
// every Item is either a *File or a *Folder.
//
// An Item's type is fixed when it is constructed. Its existence is queried
// from the provider on every call and never cached.
type Item interface {
	// Path returns the absolute, normalized path. Folder paths end with a
	// slash; the root folder is "/".
	Path() string

	// Name returns the last path segment. The root folder's name is "".
	Name() string

	// Type returns ItemTypeFile or ItemTypeFolder.
	Type() ItemType

	// Parent returns the containing folder, or nil for the root.
	Parent() *Folder

	// Exists reports whether an item of this type exists at Path.
	Exists() (bool, error)

	// Delete removes the item. Folders are removed recursively.
	Delete() error

	// Equal reports whether other refers to the same item.
	Equal(other Item) bool

	handle() *item
}

// item holds the identity shared by files and folders.
type item struct {
	s      *Storage
	path   string
	parent *Folder
}

func (i *item) handle() *item { return i }

func (i *item) Path() string { return i.path }

func (i *item) Name() string { return baseName(i.path) }

// Parent returns the containing folder. The result is cached until the item
// is moved or renamed.
func (i *item) Parent() *Folder {
	if i.parent != nil {
		return i.parent
	}
	p := parentPath(i.path)
	if p == "" {
		return nil
	}
	i.parent = newFolder(i.s, p)
	return i.parent
}

// relocate points the handle at p and drops the cached parent.
func (i *item) relocate(p string) {
	i.path = p
	i.parent = nil
}

// Path helpers. Storage paths are absolute and slash-separated; folders end
// with exactly one slash and files never do.

// cleanPath normalizes p into an absolute path without a trailing slash.
func cleanPath(p string) (string, error) {
	if strings.TrimSpace(p) == "" {
		return "", errors.New(errors.CodeInvalidArgument, "path must not be blank")
	}
	if strings.ContainsRune(p, 0) {
		return "", errors.WithContext(
			errors.New(errors.CodeInvalidArgument, "path contains a NUL character"), "path", p)
	}
	return path.Clean("/" + p), nil
}

func normalizeFilePath(p string) (string, error) {
	c, err := cleanPath(p)
	if err != nil {
		return "", err
	}
	if c == "/" {
		return "", errors.WithContext(
			errors.New(errors.CodeInvalidArgument, "the root folder is not a file path"), "path", p)
	}
	return c, nil
}

func normalizeFolderPath(p string) (string, error) {
	c, err := cleanPath(p)
	if err != nil {
		return "", err
	}
	return folderForm(c), nil
}

func folderForm(p string) string {
	if p == "/" {
		return p
	}
	return strings.TrimSuffix(p, "/") + "/"
}

func trimSlash(p string) string {
	if p == "/" {
		return p
	}
	return strings.TrimSuffix(p, "/")
}

func baseName(p string) string {
	t := trimSlash(p)
	if t == "/" {
		return ""
	}
	return path.Base(t)
}

// parentPath returns the folder path containing p, or "" for the root.
func parentPath(p string) string {
	t := trimSlash(p)
	if t == "/" {
		return ""
	}
	return folderForm(path.Dir(t))
}

// within reports whether p lies strictly below the folder path dir.
func within(p, dir string) bool {
	dir = folderForm(dir)
	return p != dir && strings.HasPrefix(p, dir)
}
