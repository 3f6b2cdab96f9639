package core_test

import (
	"io/fs"
	"testing"
	"testing/fstest"

	"github.com/jmgilman/storage/fs/billy"
	"github.com/jmgilman/storage/fs/core"
)

func seedTree() fstest.MapFS {
	return fstest.MapFS{
		"site/index.html":      &fstest.MapFile{Data: []byte("<html>"), Mode: 0o644},
		"site/css/main.css":    &fstest.MapFile{Data: []byte("body{}"), Mode: 0o644},
		"site/empty":           &fstest.MapFile{Mode: fs.ModeDir | 0o755},
		"other/readme.txt":     &fstest.MapFile{Data: []byte("other"), Mode: 0o644},
		"site/img/logo(2).png": &fstest.MapFile{Data: []byte{0x89, 'P', 'N', 'G'}, Mode: 0o644},
	}
}

// TestCopyFS_All verifies "." copies the whole tree.
func TestCopyFS_All(t *testing.T) {
	dst := billy.NewMemory()
	if err := core.CopyFS(seedTree(), dst, "."); err != nil {
		t.Fatalf("CopyFS(.): got error %v, want nil", err)
	}

	for name, want := range map[string]string{
		"site/index.html":      "<html>",
		"site/css/main.css":    "body{}",
		"other/readme.txt":     "other",
		"site/img/logo(2).png": "\x89PNG",
	} {
		got, err := dst.ReadFile(name)
		if err != nil {
			t.Errorf("ReadFile(%q): got error %v, want nil", name, err)
			continue
		}
		if string(got) != want {
			t.Errorf("ReadFile(%q): got %q, want %q", name, got, want)
		}
	}

	info, err := dst.Stat("site/empty")
	if err != nil {
		t.Fatalf("Stat(site/empty): got error %v, want nil", err)
	}
	if !info.IsDir() {
		t.Errorf("Stat(site/empty): IsDir() = false, want true")
	}
}

// TestCopyFS_Subtree verifies srcRoot is stripped from destination names.
func TestCopyFS_Subtree(t *testing.T) {
	dst := billy.NewMemory()
	if err := core.CopyFS(seedTree(), dst, "site"); err != nil {
		t.Fatalf("CopyFS(site): got error %v, want nil", err)
	}

	for name, want := range map[string]bool{
		"index.html":       true,
		"css/main.css":     true,
		"empty":            true,
		"site":             false,
		"other/readme.txt": false,
	} {
		got, err := dst.Exists(name)
		if err != nil {
			t.Errorf("Exists(%q): got error %v, want nil", name, err)
			continue
		}
		if got != want {
			t.Errorf("Exists(%q): got %v, want %v", name, got, want)
		}
	}
}

// TestCopyFS_MissingRoot verifies a missing srcRoot is reported.
func TestCopyFS_MissingRoot(t *testing.T) {
	if err := core.CopyFS(seedTree(), billy.NewMemory(), "missing"); err == nil {
		t.Error("CopyFS(missing): got nil error, want error")
	}
}
