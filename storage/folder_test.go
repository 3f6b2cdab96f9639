package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmgilman/storage/errors"
)

func paths[T Item](items []T) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.Path())
	}
	return out
}

func seedTree(t *testing.T, s *Storage) *Folder {
	t.Helper()
	writeFile(t, s, "/root/file10.txt", "")
	writeFile(t, s, "/root/file2.txt", "")
	writeFile(t, s, "/root/file1.txt", "")
	writeFile(t, s, "/root/dir10/deep.txt", "")
	writeFile(t, s, "/root/dir2/inner/leaf.txt", "")
	mkdir(t, s, "/root/empty")
	return newFolder(s, "/root/")
}

func TestFolder_Files(t *testing.T) {
	s := newTestStorage(t)
	root := seedTree(t, s)

	files, err := root.Files(false)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"/root/file1.txt",
		"/root/file2.txt",
		"/root/file10.txt",
	}, paths(files))

	files, err = root.Files(true)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"/root/dir2/inner/leaf.txt",
		"/root/dir10/deep.txt",
		"/root/file1.txt",
		"/root/file2.txt",
		"/root/file10.txt",
	}, paths(files))
}

func TestFolder_Folders(t *testing.T) {
	s := newTestStorage(t)
	root := seedTree(t, s)

	folders, err := root.Folders(false)
	require.NoError(t, err)
	assert.Equal(t, []string{"/root/dir2/", "/root/dir10/", "/root/empty/"}, paths(folders))

	folders, err = root.Folders(true)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"/root/dir2/",
		"/root/dir2/inner/",
		"/root/dir10/",
		"/root/empty/",
	}, paths(folders))
}

func TestFolder_Items(t *testing.T) {
	s := newTestStorage(t)
	root := seedTree(t, s)

	items, err := root.Items(false)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"/root/dir2/",
		"/root/dir10/",
		"/root/empty/",
		"/root/file1.txt",
		"/root/file2.txt",
		"/root/file10.txt",
	}, paths(items))

	for _, it := range items {
		switch v := it.(type) {
		case *File:
			assert.Equal(t, ItemTypeFile, v.Type())
		case *Folder:
			assert.Equal(t, ItemTypeFolder, v.Type())
		default:
			t.Fatalf("unexpected item %T", it)
		}
	}

	all, err := root.Items(true)
	require.NoError(t, err)
	assert.Len(t, all, 9)
}

func TestFolder_List_Missing(t *testing.T) {
	s := newTestStorage(t)
	_, err := newFolder(s, "/nope/").Items(false)
	assertCode(t, err, errors.CodeSourceNotFound)
}

func TestFolder_IsEmpty(t *testing.T) {
	s := newTestStorage(t)
	mkdir(t, s, "/a/b/c")
	a := newFolder(s, "/a/")
	c := newFolder(s, "/a/b/c/")

	empty, err := a.IsEmpty(true)
	require.NoError(t, err)
	assert.False(t, empty, "subfolders count when includeFolders is set")

	empty, err = a.IsEmpty(false)
	require.NoError(t, err)
	assert.True(t, empty, "no files anywhere beneath")

	empty, err = c.IsEmpty(true)
	require.NoError(t, err)
	assert.True(t, empty)

	writeFile(t, s, "/a/b/c/f.txt", "f")
	empty, err = a.IsEmpty(false)
	require.NoError(t, err)
	assert.False(t, empty)
}

func TestFolder_Create(t *testing.T) {
	s := newTestStorage(t)
	d := newFolder(s, "/x/y/")

	require.NoError(t, d.Create())
	require.NoError(t, d.Create(), "create is idempotent")

	ok, err := d.Exists()
	require.NoError(t, err)
	assert.True(t, ok)

	writeFile(t, s, "/file", "f")
	assertCode(t, newFolder(s, "/file/").Create(), errors.CodeAlreadyExists)
}

func TestFolder_CreateSubfolder(t *testing.T) {
	s := newTestStorage(t)
	d := mkdir(t, s, "/x")

	sub, err := d.CreateSubfolder("child")
	require.NoError(t, err)
	assert.Equal(t, "/x/child/", sub.Path())
	assert.True(t, sub.Parent().Equal(d))

	_, err = d.CreateSubfolder("a/b")
	assertCode(t, err, errors.CodeInvalidArgument)
}

func TestFolder_Delete(t *testing.T) {
	s := newTestStorage(t)
	root := seedTree(t, s)

	require.NoError(t, root.Delete())

	ok, err := root.Exists()
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = s.Exists("/root/dir2/inner/leaf.txt")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFolder_CopyTo(t *testing.T) {
	s := newTestStorage(t)
	writeFile(t, s, "/a/x.txt", "x")
	a := newFolder(s, "/a/")
	dst := mkdir(t, s, "/dst")

	copied, err := a.CopyTo(dst, "", FailIfExists)
	require.NoError(t, err)
	assert.Equal(t, "/dst/a/", copied.Path())

	copied, err = a.CopyTo(dst, "", GenerateUniqueName)
	require.NoError(t, err)
	assert.Equal(t, "/dst/a(2)/", copied.Path())

	require.NoError(t, a.MoveTo(dst, "moved", FailIfExists))
	assert.Equal(t, "/dst/moved/", a.Path())
	assert.Equal(t, "x", readFile(t, s, "/dst/moved/x.txt"))
}
