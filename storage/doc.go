// Package storage copies, moves, renames and deletes files and folders on a
// pluggable Provider, resolving name collisions by policy.
//
// A Storage wraps a Provider and hands out typed handles:
//
//	s := storage.New(storage.NewFSProvider(billy.NewMemory()))
//	f, err := s.File("/reports/q1.txt")
//	copied, err := f.Copy("/archive/q1.txt", storage.GenerateUniqueName)
//
// # Collisions
//
// Every transfer names a NameCollisionOption. FailIfExists, the zero value,
// refuses an occupied destination. ReplaceExisting deletes the occupant
// first, recursively for folders, and does not restore it if the transfer
// then fails. GenerateUniqueName sequences the name ("q1(2).txt",
// "q1(3).txt", ...) until it finds a free path.
//
// Transferring an item onto itself always fails with
// SOURCE_EQUALS_DESTINATION. On a case-insensitive provider a rename that
// only changes case is carried out through a temporary name.
//
// # Moves
//
// Moves use the provider's rename. If the rename fails for any reason other
// than a collision, an invalid name or a missing source, the item is copied
// and the source deleted instead. After a successful move or rename the
// handle points at the final path.
//
// # Observing operations
//
// Each operation is logged with an operation id through the configured
// slog.Logger. An Observer registered with WithObserver is told about every
// committed operation; see the journal package for a SQLite-backed one.
package storage
