// Package core defines the filesystem contract shared by every storage
// backend of this module.
//
// Backends (go-billy local and memory filesystems, MinIO object storage,
// SFTP servers) implement FS. The storage package consumes an FS through its
// FSProvider adapter and never talks to a backend directly.
//
// # Interface Hierarchy
//
// FS is composed of three sub-interfaces plus Type:
//
//   - ReadFS: Open, Stat, ReadDir, ReadFile, Exists
//   - WriteFS: Create, WriteFile, Mkdir, MkdirAll
//   - ManageFS: Remove, RemoveAll, Rename
//
// Optional capabilities are discovered with type assertions:
//
//   - Copier: duplicate a file without streaming it through the caller
//   - Syncer: flush an open File to stable storage
//
// # Errors
//
// Providers report missing, occupied and invalid paths with errors matching
// fs.ErrNotExist, fs.ErrExist and fs.ErrInvalid so callers can use errors.Is
// regardless of backend. A Rename that cannot be performed atomically across
// devices reports ErrCrossDevice.
//
// # Stdlib Compatibility
//
// FS embeds fs.FS, so fs.WalkDir and friends work on any provider:
//
//	err := fs.WalkDir(filesystem, ".", func(path string, d fs.DirEntry, err error) error {
//	    fmt.Println(path)
//	    return nil
//	})
package core
