package fstest

import (
	"bytes"
	"errors"
	"io/fs"
	"testing"

	"github.com/jmgilman/storage/fs/core"
)

// TestWriteFS tests Create, WriteFile, Mkdir and MkdirAll.
func TestWriteFS(t *testing.T, filesystem core.FS) {
	TestWriteFSWithConfig(t, filesystem, POSIXTestConfig())
}

// TestWriteFSWithConfig tests write operations with behavior configuration.
func TestWriteFSWithConfig(t *testing.T, filesystem core.FS, config FSTestConfig) {
	t.Run("Create", func(t *testing.T) {
		config.skip(t, "WriteFS/Create")
		data := []byte("written through Create")

		f, err := filesystem.Create("created.txt")
		if err != nil {
			t.Fatalf("Create(created.txt): got error %v, want nil", err)
		}
		if n, err := f.Write(data); err != nil || n != len(data) {
			_ = f.Close()
			t.Fatalf("Write(): got (%d, %v), want (%d, nil)", n, err, len(data))
		}
		if err := f.Close(); err != nil {
			t.Fatalf("Close(): got error %v, want nil", err)
		}

		got, err := filesystem.ReadFile("created.txt")
		if err != nil {
			t.Fatalf("ReadFile(created.txt): got error %v, want nil", err)
		}
		if !bytes.Equal(got, data) {
			t.Errorf("ReadFile(created.txt): got %q, want %q", got, data)
		}
	})

	t.Run("WriteFileTruncates", func(t *testing.T) {
		config.skip(t, "WriteFS/WriteFileTruncates")
		if err := filesystem.WriteFile("trunc.txt", []byte("a much longer first version"), 0o644); err != nil {
			t.Fatalf("WriteFile(trunc.txt): got error %v, want nil", err)
		}
		if err := filesystem.WriteFile("trunc.txt", []byte("short"), 0o644); err != nil {
			t.Fatalf("WriteFile(trunc.txt): got error %v, want nil", err)
		}

		got, err := filesystem.ReadFile("trunc.txt")
		if err != nil {
			t.Fatalf("ReadFile(trunc.txt): got error %v, want nil", err)
		}
		if string(got) != "short" {
			t.Errorf("ReadFile(trunc.txt): got %q, want %q", got, "short")
		}
	})

	t.Run("Mkdir", func(t *testing.T) {
		config.skip(t, "WriteFS/Mkdir")
		if err := filesystem.Mkdir("single", 0o755); err != nil {
			t.Fatalf("Mkdir(single): got error %v, want nil", err)
		}
		info, err := filesystem.Stat("single")
		if err != nil {
			t.Fatalf("Stat(single): got error %v, want nil", err)
		}
		if !info.IsDir() {
			t.Errorf("Stat(single): IsDir() = false, want true")
		}

		err = filesystem.Mkdir("single", 0o755)
		if !errors.Is(err, fs.ErrExist) {
			t.Errorf("Mkdir(single) again: got error %v, want fs.ErrExist", err)
		}
	})

	t.Run("MkdirAll", func(t *testing.T) {
		config.skip(t, "WriteFS/MkdirAll")
		if err := filesystem.MkdirAll("x/y/z", 0o755); err != nil {
			t.Fatalf("MkdirAll(x/y/z): got error %v, want nil", err)
		}
		for _, name := range []string{"x", "x/y", "x/y/z"} {
			info, err := filesystem.Stat(name)
			if err != nil {
				t.Errorf("Stat(%q): got error %v, want nil", name, err)
				continue
			}
			if !info.IsDir() {
				t.Errorf("Stat(%q): IsDir() = false, want true", name)
			}
		}

		if err := filesystem.MkdirAll("x/y/z", 0o755); err != nil {
			t.Errorf("MkdirAll(x/y/z) again: got error %v, want nil", err)
		}
	})

	t.Run("ImplicitParents", func(t *testing.T) {
		config.skip(t, "WriteFS/ImplicitParents")
		if !config.ImplicitParentDirs {
			t.Skip("filesystem requires parent directories")
		}
		if err := filesystem.WriteFile("p/q/r.txt", []byte("r"), 0o644); err != nil {
			t.Fatalf("WriteFile(p/q/r.txt): got error %v, want nil", err)
		}
		info, err := filesystem.Stat("p/q")
		if err != nil {
			t.Fatalf("Stat(p/q): got error %v, want nil", err)
		}
		if !info.IsDir() {
			t.Errorf("Stat(p/q): IsDir() = false, want true")
		}
	})
}
