// Package billy provides go-billy-backed implementations of core.FS.
//
// LocalFS wraps go-billy's osfs and is rooted at a directory on disk;
// MemoryFS wraps memfs and starts empty.
//
// Usage:
//
//	// Local filesystem rooted at a directory
//	fs := billy.NewLocal("/srv/storage")
//	data, err := fs.ReadFile("docs/report.txt")
//
//	// In-memory filesystem for tests
//	mem := billy.NewMemory()
//	err := mem.WriteFile("temp.txt", []byte("data"), 0644)
//
// # Rename
//
// LocalFS renames atomically and reports core.ErrCrossDevice when the
// operating system refuses a rename across devices, letting callers fall back
// to copy and delete. MemoryFS moves trees entry by entry.
package billy
