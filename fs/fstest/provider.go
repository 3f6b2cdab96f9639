package fstest

import (
	"errors"
	"io/fs"
	"slices"
	"testing"

	"github.com/jmgilman/storage/storage"
)

// TestProvider tests a storage.Provider against the contract the transfer
// engine consumes. newProvider must return a provider over a fresh, empty
// backend on each call. Providers that implement storage.ContentProvider
// are also driven through a storage.Storage.
func TestProvider(t *testing.T, newProvider func() storage.Provider) {
	t.Run("Kind", func(t *testing.T) {
		p := newProvider()
		seed(t, p)

		for path, want := range map[string]storage.ItemType{
			"/":            storage.ItemTypeFolder,
			"/docs":        storage.ItemTypeFolder,
			"/docs/":       storage.ItemTypeFolder,
			"/docs/a.txt":  storage.ItemTypeFile,
			"/docs/a.txt/": storage.ItemTypeFile,
			"/missing":     storage.ItemTypeNone,
			"/doc":         storage.ItemTypeNone,
		} {
			got, err := p.Kind(path)
			if err != nil {
				t.Errorf("Kind(%q): got error %v, want nil", path, err)
				continue
			}
			if got != want {
				t.Errorf("Kind(%q): got %s, want %s", path, got, want)
			}
		}
	})

	t.Run("Exists", func(t *testing.T) {
		p := newProvider()
		seed(t, p)

		for path, want := range map[string]bool{
			"/docs/":      true,
			"/docs/a.txt": true,
			"/docs/b.txt": false,
		} {
			got, err := p.Exists(path)
			if err != nil {
				t.Errorf("Exists(%q): got error %v, want nil", path, err)
				continue
			}
			if got != want {
				t.Errorf("Exists(%q): got %v, want %v", path, got, want)
			}
		}
	})

	t.Run("CreateDirectory", func(t *testing.T) {
		p := newProvider()
		for range 2 {
			if err := p.CreateDirectory("/a/b/c/"); err != nil {
				t.Fatalf("CreateDirectory(/a/b/c/): got error %v, want nil", err)
			}
		}
		for _, path := range []string{"/a/", "/a/b/", "/a/b/c/"} {
			assertKind(t, p, path, storage.ItemTypeFolder)
		}
		if err := p.CreateDirectory("/"); err != nil {
			t.Errorf("CreateDirectory(/): got error %v, want nil", err)
		}
	})

	t.Run("ListChildren", func(t *testing.T) {
		p := newProvider()
		seed(t, p)

		got, err := p.ListChildren("/docs/")
		if err != nil {
			t.Fatalf("ListChildren(/docs/): got error %v, want nil", err)
		}
		slices.Sort(got)
		want := []string{"/docs/a.txt", "/docs/nested/"}
		if !slices.Equal(got, want) {
			t.Errorf("ListChildren(/docs/): got %v, want %v", got, want)
		}

		got, err = p.ListChildren("/")
		if err != nil {
			t.Fatalf("ListChildren(/): got error %v, want nil", err)
		}
		if !slices.Equal(got, []string{"/docs/"}) {
			t.Errorf("ListChildren(/): got %v, want [/docs/]", got)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		p := newProvider()
		seed(t, p)

		if err := p.Delete("/docs/"); err != nil {
			t.Fatalf("Delete(/docs/): got error %v, want nil", err)
		}
		assertKind(t, p, "/docs/", storage.ItemTypeNone)
		assertKind(t, p, "/docs/nested/b.txt", storage.ItemTypeNone)

		err := p.Delete("/docs/")
		if !errors.Is(err, fs.ErrNotExist) {
			t.Errorf("Delete(/docs/) again: got error %v, want fs.ErrNotExist", err)
		}
	})

	t.Run("Rename", func(t *testing.T) {
		p := newProvider()
		seed(t, p)

		if err := p.Rename("/docs/a.txt", "/docs/renamed.txt"); err != nil {
			t.Fatalf("Rename(file): got error %v, want nil", err)
		}
		assertKind(t, p, "/docs/a.txt", storage.ItemTypeNone)
		assertKind(t, p, "/docs/renamed.txt", storage.ItemTypeFile)

		if err := p.Rename("/docs/", "/moved/"); err != nil {
			t.Fatalf("Rename(folder): got error %v, want nil", err)
		}
		assertKind(t, p, "/docs/", storage.ItemTypeNone)
		assertKind(t, p, "/moved/nested/b.txt", storage.ItemTypeFile)

		err := p.Rename("/ghost.txt", "/other.txt")
		if !errors.Is(err, fs.ErrNotExist) {
			t.Errorf("Rename(missing): got error %v, want fs.ErrNotExist", err)
		}
	})

	t.Run("CopyBytes", func(t *testing.T) {
		p := newProvider()
		seed(t, p)

		if err := p.CopyBytes("/docs/a.txt", "/docs/copy.txt"); err != nil {
			t.Fatalf("CopyBytes: got error %v, want nil", err)
		}
		assertKind(t, p, "/docs/a.txt", storage.ItemTypeFile)
		assertKind(t, p, "/docs/copy.txt", storage.ItemTypeFile)

		if cp, ok := p.(storage.ContentProvider); ok {
			data, err := cp.ReadFile("/docs/copy.txt")
			if err != nil {
				t.Fatalf("ReadFile(/docs/copy.txt): got error %v, want nil", err)
			}
			if string(data) != "alpha" {
				t.Errorf("ReadFile(/docs/copy.txt): got %q, want %q", data, "alpha")
			}
		}
	})

	t.Run("Transfers", func(t *testing.T) {
		p := newProvider()
		if _, ok := p.(storage.ContentProvider); !ok {
			t.Skip("provider does not implement storage.ContentProvider")
		}
		testTransfers(t, storage.New(p))
	})
}

// testTransfers drives the engine end to end over the provider.
func testTransfers(t *testing.T, s *storage.Storage) {
	f, err := s.CreateFile("/in/report.txt", []byte("v1"), storage.FailIfExists)
	if err != nil {
		t.Fatalf("CreateFile: got error %v, want nil", err)
	}

	copied, err := f.Copy("/in/report.txt", storage.GenerateUniqueName)
	if err == nil {
		t.Errorf("Copy onto itself: got path %s, want an error", copied.Path())
	}

	copied, err = f.Copy("/out/report.txt", storage.FailIfExists)
	if err != nil {
		t.Fatalf("Copy: got error %v, want nil", err)
	}
	copied, err = f.Copy("/out/report.txt", storage.GenerateUniqueName)
	if err != nil {
		t.Fatalf("Copy unique: got error %v, want nil", err)
	}
	if copied.Path() != "/out/report(2).txt" {
		t.Errorf("Copy unique: got %s, want /out/report(2).txt", copied.Path())
	}

	if err := f.Rename("final.txt", storage.FailIfExists); err != nil {
		t.Fatalf("Rename: got error %v, want nil", err)
	}
	if f.Path() != "/in/final.txt" {
		t.Errorf("Rename: got %s, want /in/final.txt", f.Path())
	}

	in, err := s.Folder("/in")
	if err != nil {
		t.Fatalf("Folder(/in): got error %v, want nil", err)
	}
	if err := in.Move("/out", storage.GenerateUniqueName); err != nil {
		t.Fatalf("Move folder: got error %v, want nil", err)
	}
	if in.Path() != "/out(2)/" {
		t.Errorf("Move folder: got %s, want /out(2)/", in.Path())
	}

	items, err := s.Root().Items(true)
	if err != nil {
		t.Fatalf("Items: got error %v, want nil", err)
	}
	var got []string
	for _, it := range items {
		got = append(got, it.Path())
	}
	want := []string{
		"/out/",
		"/out/report.txt",
		"/out/report(2).txt",
		"/out(2)/",
		"/out(2)/final.txt",
	}
	slices.Sort(got)
	slices.Sort(want)
	if !slices.Equal(got, want) {
		t.Errorf("Items(true): got %v, want %v", got, want)
	}
}

// seed creates /docs/a.txt and /docs/nested/b.txt.
func seed(t *testing.T, p storage.Provider) {
	t.Helper()
	if err := p.CreateDirectory("/docs/nested/"); err != nil {
		t.Fatalf("CreateDirectory(/docs/nested/): setup failed: %v", err)
	}

	cp, ok := p.(storage.ContentProvider)
	if !ok {
		t.Skip("provider cannot be seeded without storage.ContentProvider")
	}
	if err := cp.WriteFile("/docs/a.txt", []byte("alpha")); err != nil {
		t.Fatalf("WriteFile(/docs/a.txt): setup failed: %v", err)
	}
	if err := cp.WriteFile("/docs/nested/b.txt", []byte("beta")); err != nil {
		t.Fatalf("WriteFile(/docs/nested/b.txt): setup failed: %v", err)
	}
}

func assertKind(t *testing.T, p storage.Provider, path string, want storage.ItemType) {
	t.Helper()
	got, err := p.Kind(path)
	if err != nil {
		t.Errorf("Kind(%q): got error %v, want nil", path, err)
		return
	}
	if got != want {
		t.Errorf("Kind(%q): got %s, want %s", path, got, want)
	}
}
