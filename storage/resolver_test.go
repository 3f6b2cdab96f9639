package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmgilman/storage/errors"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name     string
		dest     string
		opt      NameCollisionOption
		move     bool
		action   action
		path     string
		wantCode errors.ErrorCode
	}{
		{"free destination", "/free.txt", FailIfExists, false, proceed, "/free.txt", ""},
		{"free destination replace", "/free.txt", ReplaceExisting, false, proceed, "/free.txt", ""},
		{"occupied fail", "/taken.txt", FailIfExists, false, fail, "/taken.txt", errors.CodeAlreadyExists},
		{"occupied replace", "/taken.txt", ReplaceExisting, false, deleteThenProceed, "/taken.txt", ""},
		{"occupied unique", "/taken.txt", GenerateUniqueName, false, proceedWithPath, "/taken(2).txt", ""},
		{"self copy", "/src.txt", ReplaceExisting, false, fail, "/src.txt", errors.CodeSourceEqualsDestination},
		{"self move", "/src.txt", GenerateUniqueName, true, fail, "/src.txt", errors.CodeSourceEqualsDestination},
		{"unknown option", "/taken.txt", NameCollisionOption(42), false, fail, "/taken.txt", errors.CodeInvalidArgument},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestStorage(t)
			src := writeFile(t, s, "/src.txt", "s")
			writeFile(t, s, "/taken.txt", "t")

			d, err := s.resolve(src, tt.dest, tt.opt, tt.move)
			require.NoError(t, err)
			assert.Equal(t, tt.action, d.action, "got %s", d.action)
			assert.Equal(t, tt.path, d.path)
			if tt.wantCode != "" {
				assertCode(t, d.err, tt.wantCode)
			} else {
				assert.NoError(t, d.err)
			}
		})
	}
}

func TestResolve_DoesNotMutate(t *testing.T) {
	s := newTestStorage(t)
	src := writeFile(t, s, "/src.txt", "s")
	writeFile(t, s, "/taken.txt", "t")

	for _, opt := range allOptions {
		_, err := s.resolve(src, "/taken.txt", opt, true)
		require.NoError(t, err)
	}

	assert.Equal(t, "t", readFile(t, s, "/taken.txt"))
	assert.Equal(t, "s", readFile(t, s, "/src.txt"))
}

func TestResolve_CaseOnlyMove(t *testing.T) {
	s := New(newFoldingProvider())
	src := writeFile(t, s, "/dir/temp.file", "x")
	writeFile(t, s, "/dir/temp(2).file", "y")

	d, err := s.resolve(src, "/dir/TeMp.file", FailIfExists, true)
	require.NoError(t, err)
	assert.Equal(t, reroutedRename, d.action)
	assert.Equal(t, "/dir/TeMp.file", d.path)
	assert.Equal(t, "/dir/temp(3).file", d.temp)

	d, err = s.resolve(src, "/dir/TeMp.file", FailIfExists, false)
	require.NoError(t, err)
	assert.Equal(t, fail, d.action)
	assertCode(t, d.err, errors.CodeSourceEqualsDestination)
}

func TestUniquePath_Folder(t *testing.T) {
	s := newTestStorage(t)
	src := mkdir(t, s, "/src")
	mkdir(t, s, "/dst/A")
	mkdir(t, s, "/dst/A(2)")

	p, err := s.uniquePath(src, "/dst/A/")
	require.NoError(t, err)
	assert.Equal(t, "/dst/A(3)/", p)
}
