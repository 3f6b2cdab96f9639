package sftp

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"

	"github.com/jmgilman/storage/fs/core"
)

const posixRenameExtension = "posix-rename@openssh.com"

// SFTPFS implements core.FS over an SFTP session.
//
//nolint:revive // matches the LocalFS/MinioFS naming used by the other backends
type SFTPFS struct {
	client      *sftp.Client
	conn        *ssh.Client
	root        string
	posixRename bool
}

// Dial connects to the server in cfg and opens an SFTP session. Close
// releases both the session and the SSH connection.
func Dial(cfg Config) (*SFTPFS, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	sshConfig, err := cfg.clientConfig()
	if err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	conn, err := ssh.Dial("tcp", cfg.Addr, sshConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %w", cfg.Addr, err)
	}

	client, err := sftp.NewClient(conn)
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to start sftp session: %w", err)
	}

	s := New(client, cfg.Root)
	s.conn = conn
	return s, nil
}

// New wraps an existing SFTP client. Names resolve below root, which
// defaults to "/". Close closes the client.
func New(client *sftp.Client, root string) *SFTPFS {
	if root == "" {
		root = "/"
	}
	_, posix := client.HasExtension(posixRenameExtension)
	return &SFTPFS{
		client:      client,
		root:        path.Clean("/" + root),
		posixRename: posix,
	}
}

// Close ends the SFTP session and the SSH connection opened by Dial.
func (s *SFTPFS) Close() error {
	err := s.client.Close()
	if s.conn != nil {
		if cerr := s.conn.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// Root returns the directory names are resolved below.
func (s *SFTPFS) Root() string {
	return s.root
}

// normalize cleans name and keeps it inside the root. The root is ".".
func normalize(name string) string {
	name = strings.Trim(path.Clean("/"+strings.ReplaceAll(name, "\\", "/")), "/")
	if name == "" {
		return "."
	}
	return name
}

func (s *SFTPFS) resolve(name string) string {
	return path.Join(s.root, normalize(name))
}

func pathError(op, name string, err error) error {
	if err == nil {
		return nil
	}
	var pe *fs.PathError
	if errors.As(err, &pe) {
		err = pe.Err
	}
	return &fs.PathError{Op: op, Path: name, Err: err}
}

// file reports the name it was opened with rather than the server path.
type file struct {
	*sftp.File
	name string
}

func (f *file) Name() string { return f.name }

// Open opens the named file for reading.
func (s *SFTPFS) Open(name string) (fs.File, error) {
	f, err := s.client.Open(s.resolve(name))
	if err != nil {
		return nil, pathError("open", name, err)
	}
	return &file{File: f, name: name}, nil
}

func (s *SFTPFS) Stat(name string) (fs.FileInfo, error) {
	info, err := s.client.Stat(s.resolve(name))
	if err != nil {
		return nil, pathError("stat", name, err)
	}
	return info, nil
}

// ReadDir lists the directory sorted by name.
func (s *SFTPFS) ReadDir(name string) ([]fs.DirEntry, error) {
	infos, err := s.client.ReadDir(s.resolve(name))
	if err != nil {
		return nil, pathError("readdir", name, err)
	}

	entries := make([]fs.DirEntry, 0, len(infos))
	for _, info := range infos {
		entries = append(entries, fs.FileInfoToDirEntry(info))
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})
	return entries, nil
}

func (s *SFTPFS) ReadFile(name string) ([]byte, error) {
	f, err := s.client.Open(s.resolve(name))
	if err != nil {
		return nil, pathError("readfile", name, err)
	}
	defer func() {
		_ = f.Close()
	}()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, pathError("readfile", name, err)
	}
	return data, nil
}

func (s *SFTPFS) Exists(name string) (bool, error) {
	_, err := s.Stat(name)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}

// Create creates or truncates the named file.
func (s *SFTPFS) Create(name string) (core.File, error) {
	f, err := s.client.OpenFile(s.resolve(name), os.O_WRONLY|os.O_CREATE|os.O_TRUNC)
	if err != nil {
		return nil, pathError("create", name, err)
	}
	return &file{File: f, name: name}, nil
}

// WriteFile writes data to the named file. Permissions are applied after
// the write.
func (s *SFTPFS) WriteFile(name string, data []byte, perm fs.FileMode) error {
	p := s.resolve(name)
	f, err := s.client.OpenFile(p, os.O_WRONLY|os.O_CREATE|os.O_TRUNC)
	if err != nil {
		return pathError("writefile", name, err)
	}

	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return pathError("writefile", name, err)
	}
	if err := f.Close(); err != nil {
		return pathError("writefile", name, err)
	}
	if perm != 0 {
		// best effort: some servers refuse chmod
		_ = s.client.Chmod(p, perm)
	}
	return nil
}

func (s *SFTPFS) Mkdir(name string, _ fs.FileMode) error {
	ok, err := s.Exists(name)
	if err != nil {
		return pathError("mkdir", name, err)
	}
	if ok {
		return pathError("mkdir", name, fs.ErrExist)
	}
	return pathError("mkdir", name, s.client.Mkdir(s.resolve(name)))
}

func (s *SFTPFS) MkdirAll(name string, _ fs.FileMode) error {
	if normalize(name) == "." {
		return nil
	}
	return pathError("mkdir", name, s.client.MkdirAll(s.resolve(name)))
}

// Remove removes a file or an empty directory.
func (s *SFTPFS) Remove(name string) error {
	if normalize(name) == "." {
		return pathError("remove", name, fs.ErrInvalid)
	}

	p := s.resolve(name)
	info, err := s.client.Stat(p)
	if err != nil {
		return pathError("remove", name, err)
	}
	if info.IsDir() {
		return pathError("remove", name, s.client.RemoveDirectory(p))
	}
	return pathError("remove", name, s.client.Remove(p))
}

// RemoveAll removes name and everything below it. A missing name is not an
// error.
func (s *SFTPFS) RemoveAll(name string) error {
	if normalize(name) == "." {
		return pathError("removeall", name, fs.ErrInvalid)
	}

	ok, err := s.Exists(name)
	if err != nil || !ok {
		return err
	}
	return pathError("removeall", name, s.client.RemoveAll(s.resolve(name)))
}

// Rename moves oldpath to newpath, replacing an existing file at newpath.
func (s *SFTPFS) Rename(oldpath, newpath string) error {
	from, to := s.resolve(oldpath), s.resolve(newpath)
	if s.posixRename {
		return pathError("rename", oldpath, s.client.PosixRename(from, to))
	}

	if _, err := s.client.Stat(from); err != nil {
		return pathError("rename", oldpath, err)
	}
	info, err := s.client.Stat(to)
	if err == nil && !info.IsDir() {
		if err := s.client.Remove(to); err != nil {
			return pathError("rename", newpath, err)
		}
	}
	return pathError("rename", oldpath, s.client.Rename(from, to))
}

// Type returns core.FSTypeRemote.
func (s *SFTPFS) Type() core.FSType {
	return core.FSTypeRemote
}

// Compile-time interface checks.
var (
	_ core.FS   = (*SFTPFS)(nil)
	_ core.File = (*file)(nil)
)
