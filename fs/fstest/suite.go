// Package fstest provides conformance tests for core.FS implementations and
// for storage.Provider implementations built on top of them.
//
// Filesystem packages call the suites from their own tests:
//
//	func TestMyFS(t *testing.T) {
//	    fstest.TestSuite(t, func() core.FS {
//	        return myfs.New()
//	    })
//	}
//
//	func TestMyProvider(t *testing.T) {
//	    fstest.TestProvider(t, func() storage.Provider {
//	        return storage.NewFSProvider(myfs.New())
//	    })
//	}
//
// The suites check the contracts the transfer engine relies on, not backend
// specifics. FSTestConfig describes the documented differences between
// POSIX-like filesystems and object stores.
package fstest

import (
	"slices"
	"testing"

	"github.com/jmgilman/storage/fs/core"
)

// FSTestConfig configures the suite to match filesystem behavior.
type FSTestConfig struct {
	// IdempotentDelete indicates Remove succeeds on names that do not exist.
	IdempotentDelete bool

	// ImplicitParentDirs indicates files can be created without creating
	// their parent directories first.
	ImplicitParentDirs bool

	// SkipTests lists test names to skip, such as "WriteFS/Mkdir".
	SkipTests []string
}

// POSIXTestConfig returns the configuration for local, in-memory and SFTP
// filesystems.
func POSIXTestConfig() FSTestConfig {
	return FSTestConfig{}
}

// ObjectStoreTestConfig returns the configuration for object stores such as
// MinIO.
func ObjectStoreTestConfig() FSTestConfig {
	return FSTestConfig{
		IdempotentDelete:   true,
		ImplicitParentDirs: true,
	}
}

func (c FSTestConfig) skip(t *testing.T, name string) {
	t.Helper()
	if slices.Contains(c.SkipTests, name) {
		t.Skip("Skipped by provider configuration")
	}
}

// TestSuite runs every filesystem conformance test using POSIXTestConfig.
// newFS must return a fresh, empty filesystem on each call.
func TestSuite(t *testing.T, newFS func() core.FS) {
	TestSuiteWithConfig(t, newFS, POSIXTestConfig())
}

// TestSuiteWithConfig runs every filesystem conformance test.
func TestSuiteWithConfig(t *testing.T, newFS func() core.FS, config FSTestConfig) {
	t.Run("ReadFS", func(t *testing.T) {
		config.skip(t, "ReadFS")
		TestReadFSWithConfig(t, newFS(), config)
	})

	t.Run("WriteFS", func(t *testing.T) {
		config.skip(t, "WriteFS")
		TestWriteFSWithConfig(t, newFS(), config)
	})

	t.Run("ManageFS", func(t *testing.T) {
		config.skip(t, "ManageFS")
		TestManageFSWithConfig(t, newFS(), config)
	})

	t.Run("Copier", func(t *testing.T) {
		config.skip(t, "Copier")
		TestCopier(t, newFS())
	})
}
