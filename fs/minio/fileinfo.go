package minio

import (
	"io/fs"
	"time"
)

// fileInfo describes an object or a directory prefix.
type fileInfo struct {
	name    string
	size    int64
	modTime time.Time
	dir     bool
}

func newFileInfo(name string, size int64, modTime time.Time) *fileInfo {
	return &fileInfo{name: name, size: size, modTime: modTime}
}

func newDirInfo(name string) *fileInfo {
	return &fileInfo{name: name, dir: true}
}

func (fi *fileInfo) Name() string       { return fi.name }
func (fi *fileInfo) Size() int64        { return fi.size }
func (fi *fileInfo) ModTime() time.Time { return fi.modTime }
func (fi *fileInfo) IsDir() bool        { return fi.dir }
func (fi *fileInfo) Sys() interface{}   { return nil }

func (fi *fileInfo) Mode() fs.FileMode {
	if fi.dir {
		return fs.ModeDir | 0o755
	}
	return 0o644
}

// dirEntry adapts a fileInfo to fs.DirEntry.
type dirEntry struct {
	info *fileInfo
}

func (e dirEntry) Name() string               { return e.info.name }
func (e dirEntry) IsDir() bool                { return e.info.dir }
func (e dirEntry) Type() fs.FileMode          { return e.info.Mode().Type() }
func (e dirEntry) Info() (fs.FileInfo, error) { return e.info, nil }

// Compile-time interface checks.
var (
	_ fs.FileInfo = (*fileInfo)(nil)
	_ fs.DirEntry = dirEntry{}
)
