package storage

import (
	"log/slog"
	"time"
)

// NameCollisionOption selects what happens when a copy, move or rename
// targets an occupied path. The zero value is FailIfExists.
type NameCollisionOption int

const (
	// FailIfExists refuses the operation with ALREADY_EXISTS.
	FailIfExists NameCollisionOption = iota
	// GenerateUniqueName picks the first free sequenced name, such as
	// "report(2).txt".
	GenerateUniqueName
	// ReplaceExisting deletes the occupant, recursively for folders, before
	// committing.
	ReplaceExisting
)

// String returns a string representation of the NameCollisionOption.
func (o NameCollisionOption) String() string {
	switch o {
	case FailIfExists:
		return "FailIfExists"
	case GenerateUniqueName:
		return "GenerateUniqueName"
	case ReplaceExisting:
		return "ReplaceExisting"
	default:
		return "unknown"
	}
}

// Event describes a committed operation.
type Event struct {
	// ID is the operation id also attached to log records.
	ID string
	// Op is the operation name: copy, move, rename, replace, delete or create.
	Op string
	// Type is the kind of item the operation acted on.
	Type ItemType
	// Source is the item's path before the operation.
	Source string
	// Destination is the final path, after collision resolution. It is empty
	// for deletions.
	Destination string
	// Option is the collision policy the caller requested.
	Option NameCollisionOption
	// Fallback reports that a move was completed by copy and delete.
	Fallback bool
	// CommittedAt is when the operation finished.
	CommittedAt time.Time
}

// Observer is notified after every committed operation. An error returned
// by OnCommit is reported to the caller with code JOURNAL_FAILURE; the
// operation itself is not undone.
type Observer interface {
	OnCommit(event Event) error
}

// Options contains configuration for a Storage.
type Options struct {
	// Logger receives per-operation records. Defaults to a logger that
	// discards everything.
	Logger *slog.Logger

	// Observer, if set, is notified of every committed operation.
	Observer Observer
}

// Option is a functional option for configuring a Storage.
type Option func(*Options)

// DefaultOptions returns the default storage options.
func DefaultOptions() *Options {
	return &Options{
		Logger:   slog.New(slog.DiscardHandler),
		Observer: nil,
	}
}

// WithLogger sets the logger used for operation records.
func WithLogger(logger *slog.Logger) Option {
	return func(opts *Options) {
		if logger != nil {
			opts.Logger = logger
		}
	}
}

// WithObserver registers an observer for committed operations.
func WithObserver(observer Observer) Option {
	return func(opts *Options) {
		opts.Observer = observer
	}
}
