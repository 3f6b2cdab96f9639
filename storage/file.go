package storage

import (
	"strings"

	"github.com/jmgilman/storage/errors"
)

// File is a handle to a file path.
type File struct {
	item
}

func newFile(s *Storage, p string) *File {
	return &File{item: item{s: s, path: p}}
}

// Type returns ItemTypeFile.
func (f *File) Type() ItemType {
	return ItemTypeFile
}

// Exists reports whether a file exists at the path. A folder at the same
// path does not count.
func (f *File) Exists() (bool, error) {
	return f.s.kindIs(f.path, ItemTypeFile)
}

// PureName returns the name without its final extension.
func (f *File) PureName() string {
	name := f.Name()
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		return name[:i]
	}
	return name
}

// Extension returns the name from its last dot, inclusive, or "".
func (f *File) Extension() string {
	name := f.Name()
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		return name[i:]
	}
	return ""
}

// ReadAll returns the file's contents.
func (f *File) ReadAll() ([]byte, error) {
	cp, ok := f.s.provider.(ContentProvider)
	if !ok {
		return nil, errors.New(errors.CodeProviderFailure, "provider cannot read file contents")
	}
	data, err := cp.ReadFile(f.path)
	if err != nil {
		return nil, classify(err, "read failed", f.path)
	}
	return data, nil
}

// Copy duplicates the file at dest and returns the copy. Under
// GenerateUniqueName the copy's path may differ from dest.
func (f *File) Copy(dest string, opt NameCollisionOption) (*File, error) {
	return f.s.copyFile(f, dest, opt)
}

// CopyTo copies the file into folder as name. An empty name keeps the
// current name.
func (f *File) CopyTo(folder *Folder, name string, opt NameCollisionOption) (*File, error) {
	dest, err := f.s.destination(folder, name, f.Name())
	if err != nil {
		return nil, err
	}
	return f.Copy(dest, opt)
}

// Move relocates the file to dest. On success f points at the final path.
func (f *File) Move(dest string, opt NameCollisionOption) error {
	return f.s.move(opMove, f, dest, opt)
}

// MoveTo moves the file into folder as name. An empty name keeps the
// current name.
func (f *File) MoveTo(folder *Folder, name string, opt NameCollisionOption) error {
	dest, err := f.s.destination(folder, name, f.Name())
	if err != nil {
		return err
	}
	return f.Move(dest, opt)
}

// Rename changes the file's name within its folder.
func (f *File) Rename(name string, opt NameCollisionOption) error {
	return f.s.renameItem(opRename, f, name, opt)
}

// RenameIgnoreExtension renames the file to base followed by its current
// extension.
func (f *File) RenameIgnoreExtension(base string, opt NameCollisionOption) error {
	return f.Rename(base+f.Extension(), opt)
}

// Replace moves the file onto other's path, deleting whatever is there.
func (f *File) Replace(other *File) error {
	if other == nil {
		return errors.New(errors.CodeInvalidArgument, "file to replace must not be nil")
	}
	return f.s.move(opReplace, f, other.path, ReplaceExisting)
}

// Delete removes the file.
func (f *File) Delete() error {
	return f.s.deleteItem(f)
}

// Equal reports whether other is a file at the same path.
func (f *File) Equal(other Item) bool {
	o, ok := other.(*File)
	if !ok || o == nil {
		return false
	}
	return f.s.samePath(f.path, o.path)
}
