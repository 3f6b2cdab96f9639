package minio

import (
	"bytes"
	"context"
	"errors"
	"io"
	"io/fs"
	"time"

	"github.com/minio/minio-go/v7"

	"github.com/jmgilman/storage/fs/core"
	"github.com/jmgilman/storage/fs/minio/internal/errs"
	"github.com/jmgilman/storage/fs/minio/internal/pathutil"
)

// File is an object handle. Files returned by Open stream the object and
// support Seek and ReadAt through range requests. Files returned by Create
// buffer writes and upload them on Sync or Close.
type File struct {
	fs   *MinioFS
	key  string
	name string

	// read mode
	obj  *minio.Object
	info *fileInfo

	// write mode
	buf *bytes.Buffer

	closed bool
}

func newReadFile(m *MinioFS, key, name string) (*File, error) {
	obj, err := m.client.GetObject(context.Background(), m.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, errs.PathError("open", name, errs.Translate(err))
	}

	st, err := obj.Stat()
	if err != nil {
		_ = obj.Close()
		return nil, errs.PathError("open", name, errs.Translate(err))
	}

	return &File{
		fs:   m,
		key:  key,
		name: name,
		obj:  obj,
		info: newFileInfo(pathutil.Base(name), st.Size, st.LastModified),
	}, nil
}

func newWriteFile(m *MinioFS, key, name string) *File {
	return &File{
		fs:   m,
		key:  key,
		name: name,
		buf:  new(bytes.Buffer),
	}
}

// Read reads from the object. It fails on files opened for writing.
func (f *File) Read(p []byte) (int, error) {
	if f.closed {
		return 0, errs.PathError("read", f.name, fs.ErrClosed)
	}
	if f.obj == nil {
		return 0, errs.PathError("read", f.name, fs.ErrInvalid)
	}
	n, err := f.obj.Read(p)
	if err != nil && !errors.Is(err, io.EOF) {
		return n, errs.PathError("read", f.name, errs.Translate(err))
	}
	return n, err
}

// ReadAt reads len(p) bytes starting at off.
func (f *File) ReadAt(p []byte, off int64) (int, error) {
	if f.closed {
		return 0, errs.PathError("readat", f.name, fs.ErrClosed)
	}
	if f.obj == nil {
		return 0, errs.PathError("readat", f.name, fs.ErrInvalid)
	}
	n, err := f.obj.ReadAt(p, off)
	if err != nil && !errors.Is(err, io.EOF) {
		return n, errs.PathError("readat", f.name, errs.Translate(err))
	}
	return n, err
}

// Seek sets the offset for the next Read.
func (f *File) Seek(offset int64, whence int) (int64, error) {
	if f.closed {
		return 0, errs.PathError("seek", f.name, fs.ErrClosed)
	}
	if f.obj == nil {
		return 0, errs.PathError("seek", f.name, fs.ErrInvalid)
	}
	return f.obj.Seek(offset, whence)
}

// Write appends p to the pending upload.
func (f *File) Write(p []byte) (int, error) {
	if f.closed {
		return 0, errs.PathError("write", f.name, fs.ErrClosed)
	}
	if f.buf == nil {
		return 0, errs.PathError("write", f.name, fs.ErrInvalid)
	}
	return f.buf.Write(p)
}

// Stat returns the object's metadata. For files being written the size is
// the number of bytes written so far.
func (f *File) Stat() (fs.FileInfo, error) {
	if f.info != nil {
		return f.info, nil
	}
	return newFileInfo(pathutil.Base(f.name), int64(f.buf.Len()), time.Now()), nil
}

// Name returns the name passed to Open or Create.
func (f *File) Name() string {
	return f.name
}

// Sync uploads everything written so far. The file stays open.
func (f *File) Sync() error {
	if f.closed {
		return errs.PathError("sync", f.name, fs.ErrClosed)
	}
	if f.buf == nil {
		return nil
	}
	return f.upload()
}

// Close releases a read handle or uploads a write handle's contents.
func (f *File) Close() error {
	if f.closed {
		return errs.PathError("close", f.name, fs.ErrClosed)
	}
	f.closed = true

	if f.obj != nil {
		return f.obj.Close()
	}
	return f.upload()
}

func (f *File) upload() error {
	data := f.buf.Bytes()
	_, err := f.fs.client.PutObject(
		context.Background(),
		f.fs.bucket,
		f.key,
		bytes.NewReader(data),
		int64(len(data)),
		minio.PutObjectOptions{ContentType: "application/octet-stream"},
	)
	return errs.PathError("write", f.name, errs.Translate(err))
}

// Compile-time interface checks.
var (
	_ core.File   = (*File)(nil)
	_ core.Syncer = (*File)(nil)
	_ io.Seeker   = (*File)(nil)
	_ io.ReaderAt = (*File)(nil)
)
