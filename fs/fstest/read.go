package fstest

import (
	"bytes"
	"errors"
	"io"
	"io/fs"
	"testing"
	stdfstest "testing/fstest"

	"github.com/jmgilman/storage/fs/core"
)

// TestReadFS tests Open, Stat, ReadDir, ReadFile and Exists.
func TestReadFS(t *testing.T, filesystem core.FS) {
	TestReadFSWithConfig(t, filesystem, POSIXTestConfig())
}

// TestReadFSWithConfig tests read operations with behavior configuration.
func TestReadFSWithConfig(t *testing.T, filesystem core.FS, config FSTestConfig) {
	content := []byte("test file content")

	tree := stdfstest.MapFS{
		"testdir/sub":   &stdfstest.MapFile{Mode: fs.ModeDir | 0o755},
		"testdir/b.txt": &stdfstest.MapFile{Data: content, Mode: 0o644},
		"testdir/a.txt": &stdfstest.MapFile{Data: content, Mode: 0o644},
	}
	if err := core.CopyFS(tree, filesystem, "."); err != nil {
		t.Fatalf("CopyFS(testdir): setup failed: %v", err)
	}

	t.Run("Open", func(t *testing.T) {
		config.skip(t, "ReadFS/Open")
		f, err := filesystem.Open("testdir/a.txt")
		if err != nil {
			t.Fatalf("Open(testdir/a.txt): got error %v, want nil", err)
		}
		defer func() { _ = f.Close() }()

		data, err := io.ReadAll(f)
		if err != nil {
			t.Fatalf("ReadAll(): got error %v, want nil", err)
		}
		if !bytes.Equal(data, content) {
			t.Errorf("ReadAll(): got %q, want %q", data, content)
		}
	})

	t.Run("Stat", func(t *testing.T) {
		config.skip(t, "ReadFS/Stat")
		info, err := filesystem.Stat("testdir/a.txt")
		if err != nil {
			t.Fatalf("Stat(testdir/a.txt): got error %v, want nil", err)
		}
		if info.IsDir() {
			t.Errorf("Stat(testdir/a.txt): IsDir() = true, want false")
		}
		if info.Size() != int64(len(content)) {
			t.Errorf("Stat(testdir/a.txt): Size() = %d, want %d", info.Size(), len(content))
		}

		info, err = filesystem.Stat("testdir/sub")
		if err != nil {
			t.Fatalf("Stat(testdir/sub): got error %v, want nil", err)
		}
		if !info.IsDir() {
			t.Errorf("Stat(testdir/sub): IsDir() = false, want true")
		}

		info, err = filesystem.Stat(".")
		if err != nil {
			t.Fatalf("Stat(.): got error %v, want nil", err)
		}
		if !info.IsDir() {
			t.Errorf("Stat(.): IsDir() = false, want true")
		}
	})

	t.Run("StatNotExist", func(t *testing.T) {
		config.skip(t, "ReadFS/StatNotExist")
		_, err := filesystem.Stat("testdir/missing.txt")
		if !errors.Is(err, fs.ErrNotExist) {
			t.Errorf("Stat(testdir/missing.txt): got error %v, want fs.ErrNotExist", err)
		}
	})

	t.Run("ReadDir", func(t *testing.T) {
		config.skip(t, "ReadFS/ReadDir")
		entries, err := filesystem.ReadDir("testdir")
		if err != nil {
			t.Fatalf("ReadDir(testdir): got error %v, want nil", err)
		}

		want := []struct {
			name string
			dir  bool
		}{{"a.txt", false}, {"b.txt", false}, {"sub", true}}
		if len(entries) != len(want) {
			t.Fatalf("ReadDir(testdir): got %d entries, want %d", len(entries), len(want))
		}
		for i, w := range want {
			if entries[i].Name() != w.name || entries[i].IsDir() != w.dir {
				t.Errorf("ReadDir(testdir)[%d]: got (%q, dir=%v), want (%q, dir=%v)",
					i, entries[i].Name(), entries[i].IsDir(), w.name, w.dir)
			}
		}
	})

	t.Run("ReadDirRoot", func(t *testing.T) {
		config.skip(t, "ReadFS/ReadDirRoot")
		entries, err := filesystem.ReadDir(".")
		if err != nil {
			t.Fatalf("ReadDir(.): got error %v, want nil", err)
		}
		if len(entries) != 1 || entries[0].Name() != "testdir" || !entries[0].IsDir() {
			t.Errorf("ReadDir(.): got %v, want [testdir/]", entries)
		}
	})

	t.Run("ReadFile", func(t *testing.T) {
		config.skip(t, "ReadFS/ReadFile")
		data, err := filesystem.ReadFile("testdir/b.txt")
		if err != nil {
			t.Fatalf("ReadFile(testdir/b.txt): got error %v, want nil", err)
		}
		if !bytes.Equal(data, content) {
			t.Errorf("ReadFile(testdir/b.txt): got %q, want %q", data, content)
		}

		_, err = filesystem.ReadFile("missing.txt")
		if !errors.Is(err, fs.ErrNotExist) {
			t.Errorf("ReadFile(missing.txt): got error %v, want fs.ErrNotExist", err)
		}
	})

	t.Run("Exists", func(t *testing.T) {
		config.skip(t, "ReadFS/Exists")
		for name, want := range map[string]bool{
			"testdir/a.txt":   true,
			"testdir/sub":     true,
			"testdir":         true,
			"testdir/missing": false,
			"missing/a.txt":   false,
		} {
			got, err := filesystem.Exists(name)
			if err != nil {
				t.Errorf("Exists(%q): got error %v, want nil", name, err)
				continue
			}
			if got != want {
				t.Errorf("Exists(%q): got %v, want %v", name, got, want)
			}
		}
	})
}
