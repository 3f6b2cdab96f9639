package core

import (
	"io"
	"io/fs"
)

// FSType represents the underlying type of filesystem implementation.
type FSType int

const (
	// FSTypeUnknown indicates the filesystem type is unknown or unspecified.
	FSTypeUnknown FSType = iota
	// FSTypeLocal indicates a local, disk-backed filesystem.
	FSTypeLocal
	// FSTypeMemory indicates an in-memory filesystem.
	FSTypeMemory
	// FSTypeRemote indicates a remote filesystem (object storage, SFTP).
	FSTypeRemote
)

// String returns a string representation of the FSType.
func (t FSType) String() string {
	switch t {
	case FSTypeLocal:
		return "local"
	case FSTypeMemory:
		return "memory"
	case FSTypeRemote:
		return "remote"
	default:
		return "unknown"
	}
}

// FS is the filesystem contract every storage backend implements.
// FS embeds fs.FS for stdlib compatibility.
//
// Names are slash-separated and relative to the filesystem root; "." names
// the root itself.
type FS interface {
	fs.FS // Provides Open returning fs.File
	ReadFS
	WriteFS
	ManageFS

	// Type returns the underlying filesystem type.
	Type() FSType
}

// ReadFS defines read-only filesystem operations.
type ReadFS interface {
	// Open opens the named file for reading.
	// The returned file should be closed when no longer needed.
	Open(name string) (fs.File, error)

	// Stat returns metadata for the named file or directory.
	// If there is an error, it will be of type *fs.PathError.
	Stat(name string) (fs.FileInfo, error)

	// ReadDir reads the named directory and returns its entries sorted by
	// filename.
	ReadDir(name string) ([]fs.DirEntry, error)

	// ReadFile reads the named file and returns its contents.
	ReadFile(name string) ([]byte, error)

	// Exists reports whether the named file or directory exists.
	//
	// A false result with a non-nil error means existence could not be
	// determined, not that the path is absent.
	Exists(name string) (bool, error)
}

// WriteFS defines write operations.
type WriteFS interface {
	// Create creates or truncates the named file for writing.
	// The returned file must be closed for the write to be durable.
	Create(name string) (File, error)

	// WriteFile writes data to the named file, creating it if necessary.
	// An existing file is truncated first.
	WriteFile(name string, data []byte, perm fs.FileMode) error

	// Mkdir creates a single directory. It fails with ErrExist if the
	// directory already exists.
	Mkdir(name string, perm fs.FileMode) error

	// MkdirAll creates a directory along with any necessary parents.
	// It does nothing if the path is already a directory.
	MkdirAll(path string, perm fs.FileMode) error
}

// ManageFS defines file and directory management operations.
type ManageFS interface {
	// Remove removes the named file or empty directory.
	Remove(name string) error

	// RemoveAll removes path and any children it contains.
	// It returns nil if the path does not exist.
	RemoveAll(path string) error

	// Rename moves oldpath to newpath.
	//
	// Local providers use an atomic rename and report ErrCrossDevice when the
	// paths live on different devices. Object stores implement rename as
	// copy+delete.
	Rename(oldpath, newpath string) error
}

// File represents an open file handle.
// File extends fs.File with write operations.
type File interface {
	fs.File // Embeds: Read, Close, Stat
	io.Writer

	// Name returns the name of the file as provided to Open or Create.
	Name() string
}

// Copier is implemented by filesystems that can duplicate a file without
// streaming its bytes through the caller, such as an object store's
// server-side copy.
//
//	if c, ok := filesystem.(core.Copier); ok {
//	    err := c.Copy("a.txt", "b.txt")
//	}
type Copier interface {
	// Copy duplicates the file src at dst, replacing any file already there.
	Copy(src, dst string) error
}

// Syncer allows syncing file contents to stable storage.
type Syncer interface {
	Sync() error
}
