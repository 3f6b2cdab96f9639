package fstest

import (
	"bytes"
	"errors"
	"io/fs"
	"path"
	"testing"

	"github.com/jmgilman/storage/fs/core"
)

// TestManageFS tests Remove, RemoveAll and Rename.
func TestManageFS(t *testing.T, filesystem core.FS) {
	TestManageFSWithConfig(t, filesystem, POSIXTestConfig())
}

// TestManageFSWithConfig tests management operations with behavior
// configuration.
func TestManageFSWithConfig(t *testing.T, filesystem core.FS, config FSTestConfig) {
	t.Run("RemoveFile", func(t *testing.T) {
		config.skip(t, "ManageFS/RemoveFile")
		mustWrite(t, filesystem, "remove.txt", "x")

		if err := filesystem.Remove("remove.txt"); err != nil {
			t.Fatalf("Remove(remove.txt): got error %v, want nil", err)
		}
		assertNotExist(t, filesystem, "remove.txt")
	})

	t.Run("RemoveEmptyDir", func(t *testing.T) {
		config.skip(t, "ManageFS/RemoveEmptyDir")
		if err := filesystem.MkdirAll("emptydir", 0o755); err != nil {
			t.Fatalf("MkdirAll(emptydir): setup failed: %v", err)
		}

		if err := filesystem.Remove("emptydir"); err != nil {
			t.Fatalf("Remove(emptydir): got error %v, want nil", err)
		}
		assertNotExist(t, filesystem, "emptydir")
	})

	t.Run("RemoveNotExist", func(t *testing.T) {
		config.skip(t, "ManageFS/RemoveNotExist")
		if config.IdempotentDelete {
			t.Skip("filesystem has idempotent delete")
		}
		err := filesystem.Remove("nonexistent.txt")
		if !errors.Is(err, fs.ErrNotExist) {
			t.Errorf("Remove(nonexistent.txt): got error %v, want fs.ErrNotExist", err)
		}
	})

	t.Run("RemoveAll", func(t *testing.T) {
		config.skip(t, "ManageFS/RemoveAll")
		mustWrite(t, filesystem, "tree/a.txt", "a")
		mustWrite(t, filesystem, "tree/sub/b.txt", "b")
		mustWrite(t, filesystem, "treehouse.txt", "sibling")

		if err := filesystem.RemoveAll("tree"); err != nil {
			t.Fatalf("RemoveAll(tree): got error %v, want nil", err)
		}
		assertNotExist(t, filesystem, "tree")
		assertNotExist(t, filesystem, "tree/sub/b.txt")
		assertContent(t, filesystem, "treehouse.txt", "sibling")

		if err := filesystem.RemoveAll("tree"); err != nil {
			t.Errorf("RemoveAll(tree) on missing path: got error %v, want nil", err)
		}
	})

	t.Run("RenameFile", func(t *testing.T) {
		config.skip(t, "ManageFS/RenameFile")
		mustWrite(t, filesystem, "old.txt", "payload")

		if err := filesystem.Rename("old.txt", "new.txt"); err != nil {
			t.Fatalf("Rename(old.txt, new.txt): got error %v, want nil", err)
		}
		assertNotExist(t, filesystem, "old.txt")
		assertContent(t, filesystem, "new.txt", "payload")
	})

	t.Run("RenameReplacesFile", func(t *testing.T) {
		config.skip(t, "ManageFS/RenameReplacesFile")
		mustWrite(t, filesystem, "src.txt", "new")
		mustWrite(t, filesystem, "dst.txt", "old content")

		if err := filesystem.Rename("src.txt", "dst.txt"); err != nil {
			t.Fatalf("Rename(src.txt, dst.txt): got error %v, want nil", err)
		}
		assertNotExist(t, filesystem, "src.txt")
		assertContent(t, filesystem, "dst.txt", "new")
	})

	t.Run("RenameDir", func(t *testing.T) {
		config.skip(t, "ManageFS/RenameDir")
		mustWrite(t, filesystem, "olddir/f.txt", "f")
		mustWrite(t, filesystem, "olddir/nested/g.txt", "g")
		mustWrite(t, filesystem, "olddir2/h.txt", "h")

		if err := filesystem.Rename("olddir", "newdir"); err != nil {
			t.Fatalf("Rename(olddir, newdir): got error %v, want nil", err)
		}
		assertNotExist(t, filesystem, "olddir")
		assertContent(t, filesystem, "newdir/f.txt", "f")
		assertContent(t, filesystem, "newdir/nested/g.txt", "g")
		assertContent(t, filesystem, "olddir2/h.txt", "h")
	})

	t.Run("RenameNotExist", func(t *testing.T) {
		config.skip(t, "ManageFS/RenameNotExist")
		err := filesystem.Rename("ghost.txt", "other.txt")
		if !errors.Is(err, fs.ErrNotExist) {
			t.Errorf("Rename(ghost.txt, other.txt): got error %v, want fs.ErrNotExist", err)
		}
	})
}

// TestCopier tests the optional core.Copier capability. Filesystems without
// it are skipped.
func TestCopier(t *testing.T, filesystem core.FS) {
	c, ok := filesystem.(core.Copier)
	if !ok {
		t.Skip("filesystem does not implement core.Copier")
	}

	mustWrite(t, filesystem, "copy/src.txt", "original")
	mustWrite(t, filesystem, "copy/dst.txt", "to be replaced")

	if err := c.Copy("copy/src.txt", "copy/new.txt"); err != nil {
		t.Fatalf("Copy(copy/src.txt, copy/new.txt): got error %v, want nil", err)
	}
	assertContent(t, filesystem, "copy/new.txt", "original")
	assertContent(t, filesystem, "copy/src.txt", "original")

	if err := c.Copy("copy/src.txt", "copy/dst.txt"); err != nil {
		t.Fatalf("Copy(copy/src.txt, copy/dst.txt): got error %v, want nil", err)
	}
	assertContent(t, filesystem, "copy/dst.txt", "original")

	err := c.Copy("copy/missing.txt", "copy/x.txt")
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("Copy(copy/missing.txt): got error %v, want fs.ErrNotExist", err)
	}
}

func mustWrite(t *testing.T, filesystem core.FS, name, content string) {
	t.Helper()
	if dir := path.Dir(name); dir != "." {
		if err := filesystem.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("MkdirAll(%s): setup failed: %v", dir, err)
		}
	}
	if err := filesystem.WriteFile(name, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile(%s): setup failed: %v", name, err)
	}
}

func assertNotExist(t *testing.T, filesystem core.FS, name string) {
	t.Helper()
	_, err := filesystem.Stat(name)
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("Stat(%s): got error %v, want fs.ErrNotExist", name, err)
	}
}

func assertContent(t *testing.T, filesystem core.FS, name, want string) {
	t.Helper()
	got, err := filesystem.ReadFile(name)
	if err != nil {
		t.Errorf("ReadFile(%s): got error %v, want nil", name, err)
		return
	}
	if !bytes.Equal(got, []byte(want)) {
		t.Errorf("ReadFile(%s): got %q, want %q", name, got, want)
	}
}
