package storage

import (
	"log/slog"
	"strings"

	"github.com/jmgilman/storage/errors"
)

// Storage binds items to a provider. It is the entry point for resolving
// paths into files and folders.
//
// A Storage holds no mutable state of its own and may be shared; the items
// it returns are not safe for concurrent mutation.
type Storage struct {
	provider Provider
	locator  *Locator
	logger   *slog.Logger
	observer Observer
}

// New creates a Storage over provider.
func New(provider Provider, opts ...Option) *Storage {
	options := DefaultOptions()
	for _, opt := range opts {
		opt(options)
	}

	s := &Storage{
		provider: provider,
		logger:   options.Logger,
		observer: options.Observer,
	}
	s.locator = &Locator{s: s}
	return s
}

// Provider returns the provider backing s.
func (s *Storage) Provider() Provider {
	return s.provider
}

// Locator returns the locator used to classify destinations.
func (s *Storage) Locator() *Locator {
	return s.locator
}

// Root returns the root folder.
func (s *Storage) Root() *Folder {
	return newFolder(s, "/")
}

// File returns a handle for the file at path. The file need not exist, but
// a folder at path is rejected with INVALID_ARGUMENT.
func (s *Storage) File(path string) (*File, error) {
	p, err := normalizeFilePath(path)
	if err != nil {
		return nil, err
	}

	kind, err := s.provider.Kind(p)
	if err != nil {
		return nil, classify(err, "stat failed", p)
	}
	if kind == ItemTypeFolder {
		return nil, errors.WithContext(
			errors.New(errors.CodeInvalidArgument, "path is a folder, not a file"), "path", p)
	}
	return newFile(s, p), nil
}

// Folder returns a handle for the existing folder at path. A missing path,
// or one occupied by a file, fails with SOURCE_NOT_FOUND.
func (s *Storage) Folder(path string) (*Folder, error) {
	p, err := normalizeFolderPath(path)
	if err != nil {
		return nil, err
	}
	if p == "/" {
		return s.Root(), nil
	}

	kind, err := s.provider.Kind(p)
	if err != nil {
		return nil, classify(err, "stat failed", p)
	}
	if kind != ItemTypeFolder {
		return nil, errors.WithContext(
			errors.New(errors.CodeSourceNotFound, "folder does not exist"), "path", p)
	}
	return newFolder(s, p), nil
}

// Locate resolves path into a *File, a *Folder, or nil when nothing exists.
func (s *Storage) Locate(path string) (Item, error) {
	p, err := cleanPath(path)
	if err != nil {
		return nil, err
	}
	return s.locator.Locate(p)
}

// Exists reports whether a file or folder exists at path.
func (s *Storage) Exists(path string) (bool, error) {
	p, err := cleanPath(path)
	if err != nil {
		return false, err
	}
	ok, err := s.provider.Exists(p)
	if err != nil {
		return false, classify(err, "existence check failed", p)
	}
	return ok, nil
}

// FileExists reports whether a file exists at path.
func (s *Storage) FileExists(path string) (bool, error) {
	return s.existsAs(path, ItemTypeFile)
}

// FolderExists reports whether a folder exists at path.
func (s *Storage) FolderExists(path string) (bool, error) {
	return s.existsAs(path, ItemTypeFolder)
}

func (s *Storage) existsAs(path string, want ItemType) (bool, error) {
	p, err := cleanPath(path)
	if err != nil {
		return false, err
	}
	return s.kindIs(p, want)
}

func (s *Storage) kindIs(p string, want ItemType) (bool, error) {
	if want == ItemTypeFolder && p == "/" {
		return true, nil
	}
	kind, err := s.provider.Kind(p)
	if err != nil {
		return false, classify(err, "stat failed", p)
	}
	return kind == want, nil
}

// CreateFile writes data to the file at path, creating missing parent
// folders. An existing file is handled according to opt. The provider must
// implement ContentProvider.
func (s *Storage) CreateFile(path string, data []byte, opt NameCollisionOption) (*File, error) {
	p, err := normalizeFilePath(path)
	if err != nil {
		return nil, err
	}
	return s.createFile(p, data, opt)
}

// fold returns the form of p used for identity comparisons.
func (s *Storage) fold(p string) string {
	p = trimSlash(p)
	if s.provider.CaseInsensitive() {
		return strings.ToLower(p)
	}
	return p
}

// samePath reports whether a and b name the same item on the provider.
func (s *Storage) samePath(a, b string) bool {
	return s.fold(a) == s.fold(b)
}

// contains reports whether p lies strictly below the folder dir.
func (s *Storage) contains(dir, p string) bool {
	return within(s.fold(p)+"/", s.fold(dir)) && !s.samePath(dir, p)
}
