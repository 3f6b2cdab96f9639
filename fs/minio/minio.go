package minio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"sort"
	"strings"
	"sync"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"golang.org/x/sync/errgroup"

	"github.com/jmgilman/storage/fs/core"
	"github.com/jmgilman/storage/fs/minio/internal/errs"
	"github.com/jmgilman/storage/fs/minio/internal/pathutil"
)

const (
	defaultRenameConcurrency = 10
	markerContentType        = "application/x-directory"
)

// MinioFS implements core.FS over a MinIO/S3 bucket.
//
//nolint:revive // matches the LocalFS/MemoryFS naming used by the other backends
type MinioFS struct {
	client            *minio.Client
	bucket            string
	prefix            string
	renameConcurrency int
}

// NewMinIO creates a MinIO-backed filesystem. The bucket is not checked.
func NewMinIO(cfg Config) (*MinioFS, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	client := cfg.Client
	if client == nil {
		var err error
		client, err = minio.New(cfg.Endpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
			Secure: cfg.UseSSL,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create minio client: %w", err)
		}
	}

	concurrency := cfg.MaxRenameConcurrency
	if concurrency == 0 {
		concurrency = defaultRenameConcurrency
	}

	return &MinioFS{
		client:            client,
		bucket:            cfg.Bucket,
		prefix:            pathutil.NormalizePrefix(cfg.Prefix),
		renameConcurrency: concurrency,
	}, nil
}

func (m *MinioFS) joinPath(name string) string {
	return pathutil.JoinPath(m.prefix, name)
}

// Open opens the named object for streaming reads.
func (m *MinioFS) Open(name string) (fs.File, error) {
	name = pathutil.Normalize(name)
	return newReadFile(m, m.joinPath(name), name)
}

// Stat reports on an object or a directory. A name is a directory when its
// marker exists or any object lives below it.
func (m *MinioFS) Stat(name string) (fs.FileInfo, error) {
	name = pathutil.Normalize(name)
	if name == "." {
		return newDirInfo("."), nil
	}

	ctx := context.Background()
	key := m.joinPath(name)

	info, err := m.client.StatObject(ctx, m.bucket, key, minio.StatObjectOptions{})
	if err == nil {
		return newFileInfo(pathutil.Base(name), info.Size, info.LastModified), nil
	}
	if err = errs.Translate(err); !errors.Is(err, fs.ErrNotExist) {
		return nil, errs.PathError("stat", name, err)
	}

	ok, err := m.isDir(ctx, key)
	if err != nil {
		return nil, errs.PathError("stat", name, err)
	}
	if !ok {
		return nil, errs.PathError("stat", name, fs.ErrNotExist)
	}
	return newDirInfo(pathutil.Base(name)), nil
}

// isDir reports whether anything, the marker included, exists below key.
func (m *MinioFS) isDir(ctx context.Context, key string) (bool, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	for object := range m.client.ListObjects(ctx, m.bucket, minio.ListObjectsOptions{
		Prefix:  pathutil.DirKey(key),
		MaxKeys: 1,
	}) {
		if object.Err != nil {
			return false, errs.Translate(object.Err)
		}
		return true, nil
	}
	return false, nil
}

// ReadDir lists a directory's direct children sorted by name.
func (m *MinioFS) ReadDir(name string) ([]fs.DirEntry, error) {
	name = pathutil.Normalize(name)

	info, err := m.Stat(name)
	if err != nil {
		return nil, errs.PathError("readdir", name, errors.Unwrap(err))
	}
	if !info.IsDir() {
		return nil, errs.PathErrorf("readdir", name, "not a directory")
	}

	prefix := pathutil.DirKey(m.joinPath(name))
	var entries []fs.DirEntry
	for object := range m.client.ListObjects(context.Background(), m.bucket, minio.ListObjectsOptions{
		Prefix: prefix,
	}) {
		if object.Err != nil {
			return nil, errs.PathError("readdir", name, errs.Translate(object.Err))
		}
		if object.Key == prefix {
			continue
		}

		rel := strings.TrimPrefix(object.Key, prefix)
		if strings.HasSuffix(rel, "/") {
			rel = strings.TrimSuffix(rel, "/")
			if rel != "" {
				entries = append(entries, dirEntry{newDirInfo(rel)})
			}
			continue
		}
		entries = append(entries, dirEntry{newFileInfo(rel, object.Size, object.LastModified)})
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})
	return entries, nil
}

// ReadFile reads the whole object.
func (m *MinioFS) ReadFile(name string) ([]byte, error) {
	name = pathutil.Normalize(name)
	f, err := newReadFile(m, m.joinPath(name), name)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = f.Close()
	}()

	buf := make([]byte, f.info.Size())
	if _, err := io.ReadFull(f.obj, buf); err != nil {
		return nil, errs.PathError("readfile", name, errs.Translate(err))
	}
	return buf, nil
}

// Exists reports whether the named object or directory exists.
func (m *MinioFS) Exists(name string) (bool, error) {
	_, err := m.Stat(name)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}

// Create opens a write handle. Nothing is uploaded until Sync or Close.
func (m *MinioFS) Create(name string) (core.File, error) {
	name = pathutil.Normalize(name)
	if name == "." {
		return nil, errs.PathError("create", name, fs.ErrInvalid)
	}
	return newWriteFile(m, m.joinPath(name), name), nil
}

// WriteFile uploads data as the named object. Permissions are ignored.
func (m *MinioFS) WriteFile(name string, data []byte, _ fs.FileMode) error {
	name = pathutil.Normalize(name)
	if name == "." {
		return errs.PathError("writefile", name, fs.ErrInvalid)
	}
	_, err := m.client.PutObject(
		context.Background(),
		m.bucket,
		m.joinPath(name),
		bytes.NewReader(data),
		int64(len(data)),
		minio.PutObjectOptions{ContentType: "application/octet-stream"},
	)
	return errs.PathError("writefile", name, errs.Translate(err))
}

// Mkdir writes the directory's marker. It fails with fs.ErrExist if the
// name already exists.
func (m *MinioFS) Mkdir(name string, _ fs.FileMode) error {
	name = pathutil.Normalize(name)
	ok, err := m.Exists(name)
	if err != nil {
		return errs.PathError("mkdir", name, errors.Unwrap(err))
	}
	if ok {
		return errs.PathError("mkdir", name, fs.ErrExist)
	}
	return errs.PathError("mkdir", name, m.putMarker(m.joinPath(name)))
}

// MkdirAll writes the directory's marker unless the directory exists.
// Parents are implicit.
func (m *MinioFS) MkdirAll(name string, _ fs.FileMode) error {
	name = pathutil.Normalize(name)
	if name == "." {
		return nil
	}

	info, err := m.Stat(name)
	switch {
	case err == nil && info.IsDir():
		return nil
	case err == nil:
		return errs.PathErrorf("mkdir", name, "%w: not a directory", fs.ErrExist)
	case !errors.Is(err, fs.ErrNotExist):
		return err
	}
	return errs.PathError("mkdir", name, m.putMarker(m.joinPath(name)))
}

func (m *MinioFS) putMarker(key string) error {
	_, err := m.client.PutObject(
		context.Background(),
		m.bucket,
		pathutil.DirKey(key),
		bytes.NewReader(nil),
		0,
		minio.PutObjectOptions{ContentType: markerContentType},
	)
	return errs.Translate(err)
}

// Remove deletes an object or an empty directory. Removing a missing name
// succeeds, as object stores report no error for it.
func (m *MinioFS) Remove(name string) error {
	name = pathutil.Normalize(name)
	if name == "." {
		return errs.PathError("remove", name, fs.ErrInvalid)
	}

	ctx := context.Background()
	key := m.joinPath(name)

	_, err := m.client.StatObject(ctx, m.bucket, key, minio.StatObjectOptions{})
	if err == nil {
		err = m.client.RemoveObject(ctx, m.bucket, key, minio.RemoveObjectOptions{})
		return errs.PathError("remove", name, errs.Translate(err))
	}
	if err = errs.Translate(err); !errors.Is(err, fs.ErrNotExist) {
		return errs.PathError("remove", name, err)
	}

	prefix := pathutil.DirKey(key)
	keys, err := m.listKeys(ctx, prefix, 2)
	if err != nil {
		return errs.PathError("remove", name, err)
	}
	for _, k := range keys {
		if k != prefix {
			return errs.PathErrorf("remove", name, "directory not empty")
		}
	}
	if len(keys) == 0 {
		return nil
	}
	err = m.client.RemoveObject(ctx, m.bucket, prefix, minio.RemoveObjectOptions{})
	return errs.PathError("remove", name, errs.Translate(err))
}

// listKeys returns up to limit keys below prefix, recursively. A limit of
// zero lists everything.
func (m *MinioFS) listKeys(ctx context.Context, prefix string, limit int) ([]string, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var keys []string
	for object := range m.client.ListObjects(ctx, m.bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	}) {
		if object.Err != nil {
			return nil, errs.Translate(object.Err)
		}
		keys = append(keys, object.Key)
		if limit > 0 && len(keys) >= limit {
			break
		}
	}
	return keys, nil
}

// RemoveAll deletes the named object and everything below it.
func (m *MinioFS) RemoveAll(name string) error {
	name = pathutil.Normalize(name)
	ctx := context.Background()
	key := m.joinPath(name)

	if name != "." {
		err := m.client.RemoveObject(ctx, m.bucket, key, minio.RemoveObjectOptions{})
		if err != nil && !errors.Is(errs.Translate(err), fs.ErrNotExist) {
			return errs.PathError("removeall", name, errs.Translate(err))
		}
	}

	keys, err := m.listKeys(ctx, pathutil.DirKey(key), 0)
	if err != nil {
		return errs.PathError("removeall", name, err)
	}
	return errs.PathError("removeall", name, m.removeKeys(ctx, keys))
}

func (m *MinioFS) removeKeys(ctx context.Context, keys []string) error {
	if len(keys) == 0 {
		return nil
	}

	objects := make(chan minio.ObjectInfo, len(keys))
	for _, k := range keys {
		objects <- minio.ObjectInfo{Key: k}
	}
	close(objects)

	var first error
	for rerr := range m.client.RemoveObjects(ctx, m.bucket, objects, minio.RemoveObjectsOptions{}) {
		if rerr.Err != nil && first == nil {
			first = errs.Translate(rerr.Err)
		}
	}
	return first
}

// Rename moves an object or a whole directory. It is not atomic: objects
// are copied first and the originals removed once every copy succeeded.
// The destination must not exist.
func (m *MinioFS) Rename(oldpath, newpath string) error {
	oldName := pathutil.Normalize(oldpath)
	newName := pathutil.Normalize(newpath)
	if oldName == "." || newName == "." {
		return errs.PathError("rename", oldName, fs.ErrInvalid)
	}
	if oldName == newName {
		return nil
	}
	if strings.HasPrefix(newName, oldName+"/") {
		return errs.PathErrorf("rename", oldName, "%w: destination is inside source", fs.ErrInvalid)
	}

	info, err := m.Stat(oldName)
	if err != nil {
		return errs.PathError("rename", oldName, errors.Unwrap(err))
	}

	dst, err := m.Stat(newName)
	switch {
	case err == nil && (dst.IsDir() || info.IsDir()):
		return errs.PathError("rename", newName, fs.ErrExist)
	case err != nil && !errors.Is(err, fs.ErrNotExist):
		return err
	}

	ctx := context.Background()
	oldKey, newKey := m.joinPath(oldName), m.joinPath(newName)

	if !info.IsDir() {
		if err := m.copyObject(ctx, oldKey, newKey); err != nil {
			return errs.PathError("rename", oldName, err)
		}
		err := m.client.RemoveObject(ctx, m.bucket, oldKey, minio.RemoveObjectOptions{})
		return errs.PathError("rename", oldName, errs.Translate(err))
	}

	oldPrefix, newPrefix := pathutil.DirKey(oldKey), pathutil.DirKey(newKey)
	copied, err := m.parallelCopy(ctx, oldPrefix, newPrefix)
	if err != nil {
		return errs.PathError("rename", oldName, errs.Translate(err))
	}
	if err := m.putMarker(newKey); err != nil {
		return errs.PathError("rename", newName, err)
	}
	return errs.PathError("rename", oldName, m.removeKeys(ctx, copied))
}

// Copy duplicates an object server side.
func (m *MinioFS) Copy(src, dst string) error {
	srcName := pathutil.Normalize(src)
	dstName := pathutil.Normalize(dst)
	if srcName == "." || dstName == "." {
		return errs.PathError("copy", srcName, fs.ErrInvalid)
	}
	err := m.copyObject(context.Background(), m.joinPath(srcName), m.joinPath(dstName))
	return errs.PathError("copy", srcName, err)
}

func (m *MinioFS) copyObject(ctx context.Context, from, to string) error {
	_, err := m.client.CopyObject(ctx,
		minio.CopyDestOptions{Bucket: m.bucket, Object: to},
		minio.CopySrcOptions{Bucket: m.bucket, Object: from},
	)
	return errs.Translate(err)
}

// parallelCopy copies every object below oldPrefix to newPrefix through a
// bounded worker pool and returns the keys that were copied.
func (m *MinioFS) parallelCopy(ctx context.Context, oldPrefix, newPrefix string) ([]string, error) {
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(m.renameConcurrency)

	var (
		mu     sync.Mutex
		copied []string
	)

	keys, err := m.listKeys(ctx, oldPrefix, 0)
	if err != nil {
		return nil, err
	}

	for _, key := range keys {
		eg.Go(func() error {
			newKey := newPrefix + strings.TrimPrefix(key, oldPrefix)
			if err := m.copyObject(egCtx, key, newKey); err != nil {
				return fmt.Errorf("copy object %s to %s: %w", key, newKey, err)
			}
			mu.Lock()
			copied = append(copied, key)
			mu.Unlock()
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return copied, fmt.Errorf("parallel copy failed: %w", err)
	}
	return copied, nil
}

// Type returns core.FSTypeRemote.
func (m *MinioFS) Type() core.FSType {
	return core.FSTypeRemote
}

// Compile-time interface checks.
var (
	_ core.FS     = (*MinioFS)(nil)
	_ core.Copier = (*MinioFS)(nil)
)
