package storage

import (
	"sort"
	"strings"

	"github.com/jmgilman/storage/errors"
)

// Folder is a handle to a folder path. Its path always ends with a slash.
type Folder struct {
	item
}

func newFolder(s *Storage, p string) *Folder {
	return &Folder{item: item{s: s, path: p}}
}

// Type returns ItemTypeFolder.
func (f *Folder) Type() ItemType {
	return ItemTypeFolder
}

// Exists reports whether a folder exists at the path.
func (f *Folder) Exists() (bool, error) {
	return f.s.kindIs(f.path, ItemTypeFolder)
}

// Copy duplicates the folder and everything beneath it at dest.
func (f *Folder) Copy(dest string, opt NameCollisionOption) (*Folder, error) {
	return f.s.copyFolder(f, dest, opt)
}

// CopyTo copies the folder into parent as name. An empty name keeps the
// current name.
func (f *Folder) CopyTo(parent *Folder, name string, opt NameCollisionOption) (*Folder, error) {
	dest, err := f.s.destination(parent, name, f.Name())
	if err != nil {
		return nil, err
	}
	return f.Copy(dest, opt)
}

// Move relocates the folder to dest. On success f points at the final path.
func (f *Folder) Move(dest string, opt NameCollisionOption) error {
	return f.s.move(opMove, f, dest, opt)
}

// MoveTo moves the folder into parent as name. An empty name keeps the
// current name.
func (f *Folder) MoveTo(parent *Folder, name string, opt NameCollisionOption) error {
	dest, err := f.s.destination(parent, name, f.Name())
	if err != nil {
		return err
	}
	return f.Move(dest, opt)
}

// Rename changes the folder's name within its parent.
func (f *Folder) Rename(name string, opt NameCollisionOption) error {
	return f.s.renameItem(opRename, f, name, opt)
}

// Delete removes the folder and its contents.
func (f *Folder) Delete() error {
	return f.s.deleteItem(f)
}

// Equal reports whether other is a folder at the same path.
func (f *Folder) Equal(other Item) bool {
	o, ok := other.(*Folder)
	if !ok || o == nil {
		return false
	}
	return f.s.samePath(f.path, o.path)
}

// Create creates the folder and any missing parents. It succeeds if the
// folder already exists.
func (f *Folder) Create() error {
	return f.s.createFolder(f)
}

// CreateSubfolder creates the folder name directly below f.
func (f *Folder) CreateSubfolder(name string) (*Folder, error) {
	if err := f.s.validateName(name); err != nil {
		return nil, err
	}
	sub := newFolder(f.s, f.path+name+"/")
	if err := sub.Create(); err != nil {
		return nil, err
	}
	return sub, nil
}

// Files returns the files in the folder, and below it when recursive is set.
func (f *Folder) Files(recursive bool) ([]*File, error) {
	paths, err := f.s.walk(f.path, recursive)
	if err != nil {
		return nil, err
	}

	var files []*File
	for _, p := range paths {
		if !strings.HasSuffix(p, "/") {
			files = append(files, newFile(f.s, p))
		}
	}
	return files, nil
}

// Folders returns the subfolders of the folder, and their descendants when
// recursive is set.
func (f *Folder) Folders(recursive bool) ([]*Folder, error) {
	paths, err := f.s.walk(f.path, recursive)
	if err != nil {
		return nil, err
	}

	var folders []*Folder
	for _, p := range paths {
		if strings.HasSuffix(p, "/") {
			folders = append(folders, newFolder(f.s, p))
		}
	}
	return folders, nil
}

// Items returns files and folders together.
func (f *Folder) Items(recursive bool) ([]Item, error) {
	paths, err := f.s.walk(f.path, recursive)
	if err != nil {
		return nil, err
	}

	items := make([]Item, 0, len(paths))
	for _, p := range paths {
		if strings.HasSuffix(p, "/") {
			items = append(items, newFolder(f.s, p))
		} else {
			items = append(items, newFile(f.s, p))
		}
	}
	return items, nil
}

// IsEmpty reports whether the folder has no contents. When includeFolders
// is false, subfolders that contain no files anywhere beneath them are
// ignored.
func (f *Folder) IsEmpty(includeFolders bool) (bool, error) {
	if includeFolders {
		children, err := f.s.children(f.path)
		if err != nil {
			return false, err
		}
		return len(children) == 0, nil
	}

	files, err := f.Files(true)
	if err != nil {
		return false, err
	}
	return len(files) == 0, nil
}

// children lists the direct children of dir in natural order.
func (s *Storage) children(dir string) ([]string, error) {
	ok, err := s.kindIs(dir, ItemTypeFolder)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.WithContext(
			errors.New(errors.CodeSourceNotFound, "folder does not exist"), "path", dir)
	}

	children, err := s.provider.ListChildren(dir)
	if err != nil {
		return nil, classify(err, "list failed", dir)
	}
	sort.Slice(children, func(i, j int) bool {
		return naturalLess(children[i], children[j])
	})
	return children, nil
}

// walk lists dir's children, depth-first when recursive, and returns them
// in natural path order.
func (s *Storage) walk(dir string, recursive bool) ([]string, error) {
	children, err := s.children(dir)
	if err != nil {
		return nil, err
	}
	if !recursive {
		return children, nil
	}

	all := make([]string, 0, len(children))
	for _, child := range children {
		all = append(all, child)
		if strings.HasSuffix(child, "/") {
			below, err := s.walk(child, true)
			if err != nil {
				return nil, err
			}
			all = append(all, below...)
		}
	}
	sort.Slice(all, func(i, j int) bool {
		return naturalLess(all[i], all[j])
	})
	return all, nil
}

// Compile-time interface checks.
var (
	_ Item = (*File)(nil)
	_ Item = (*Folder)(nil)
)
