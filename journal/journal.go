// Package journal records committed storage operations in SQLite.
//
// A Journal is a storage.Observer: attach it with storage.WithObserver and
// every copy, move, rename, replace, delete and create that commits is
// appended as one row.
//
//	j, err := journal.Open("/var/lib/storage/journal.db")
//	if err != nil {
//	    return err
//	}
//	defer j.Close()
//
//	s := storage.New(provider, storage.WithObserver(j))
//
// Rows are kept in commit order and can be queried with List.
package journal

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/jmgilman/storage/errors"
	"github.com/jmgilman/storage/storage"
)

// InMemory opens a journal that lives only as long as the Journal.
const InMemory = ":memory:"

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS events (
		seq          INTEGER PRIMARY KEY AUTOINCREMENT,
		id           TEXT    NOT NULL,
		op           TEXT    NOT NULL,
		item_type    INTEGER NOT NULL,
		source       TEXT    NOT NULL,
		destination  TEXT    NOT NULL DEFAULT '',
		option       INTEGER NOT NULL,
		fallback     INTEGER NOT NULL DEFAULT 0,
		committed_at INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_events_id ON events(id)`,
	`CREATE INDEX IF NOT EXISTS idx_events_committed_at ON events(committed_at)`,
}

// Journal is an append-only record of committed operations.
type Journal struct {
	db *sql.DB
}

// Open opens or creates the journal database at path, creating missing
// parent directories. Pass InMemory for a throwaway journal.
func Open(path string) (*Journal, error) {
	if path == "" {
		return nil, errors.New(errors.CodeInvalidConfig, "journal path is required")
	}

	dsn := InMemory
	if path != InMemory {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, errors.Wrap(err, errors.CodeJournal, "failed to create journal directory")
		}
		dsn = "file:" + path + "?_busy_timeout=5000&_journal_mode=WAL"
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeJournal, "failed to open journal")
	}
	// One connection: SQLite serializes writers, and each connection to
	// ":memory:" would otherwise see its own empty database.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, errors.CodeJournal, "failed to open journal")
	}

	j := &Journal{db: db}
	if err := j.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return j, nil
}

func (j *Journal) migrate(ctx context.Context) error {
	for _, m := range migrations {
		if _, err := j.db.ExecContext(ctx, m); err != nil {
			return errors.Wrap(err, errors.CodeJournal, "journal migration failed")
		}
	}
	return nil
}

// Close closes the database.
func (j *Journal) Close() error {
	return j.db.Close()
}

// OnCommit records the event. It implements storage.Observer.
func (j *Journal) OnCommit(event storage.Event) error {
	return j.Record(context.Background(), event)
}

// Record appends one event.
func (j *Journal) Record(ctx context.Context, event storage.Event) error {
	committed := event.CommittedAt
	if committed.IsZero() {
		committed = time.Now()
	}

	_, err := j.db.ExecContext(ctx,
		`INSERT INTO events (id, op, item_type, source, destination, option, fallback, committed_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		event.ID,
		event.Op,
		int(event.Type),
		event.Source,
		event.Destination,
		int(event.Option),
		event.Fallback,
		committed.UnixNano(),
	)
	if err != nil {
		return errors.WrapWithContext(err, errors.CodeJournal, "failed to record event", map[string]interface{}{
			"op": event.ID,
		})
	}
	return nil
}

// Filter narrows List. Zero fields match everything.
type Filter struct {
	// ID matches a single operation.
	ID string
	// Op matches the operation name, such as "move".
	Op string
	// Path matches events whose source or destination is Path or lies
	// below it.
	Path string
	// Since keeps events committed at or after the given time.
	Since time.Time
	// Limit caps the number of events returned.
	Limit int
}

func (f Filter) query() (string, []interface{}) {
	var (
		where []string
		args  []interface{}
	)

	if f.ID != "" {
		where = append(where, "id = ?")
		args = append(args, f.ID)
	}
	if f.Op != "" {
		where = append(where, "op = ?")
		args = append(args, f.Op)
	}
	if f.Path != "" {
		prefix := strings.TrimSuffix(f.Path, "/")
		where = append(where, "(source = ? OR destination = ? OR substr(source, 1, ?) = ? OR substr(destination, 1, ?) = ?)")
		args = append(args, f.Path, f.Path, len(prefix)+1, prefix+"/", len(prefix)+1, prefix+"/")
	}
	if !f.Since.IsZero() {
		where = append(where, "committed_at >= ?")
		args = append(args, f.Since.UnixNano())
	}

	q := `SELECT id, op, item_type, source, destination, option, fallback, committed_at FROM events`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY seq"
	if f.Limit > 0 {
		q += " LIMIT ?"
		args = append(args, f.Limit)
	}
	return q, args
}

// List returns matching events in commit order.
func (j *Journal) List(ctx context.Context, filter Filter) ([]storage.Event, error) {
	q, args := filter.query()
	rows, err := j.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeJournal, "failed to query journal")
	}
	defer func() {
		_ = rows.Close()
	}()

	var events []storage.Event
	for rows.Next() {
		var (
			e         storage.Event
			itemType  int
			option    int
			committed int64
		)
		if err := rows.Scan(&e.ID, &e.Op, &itemType, &e.Source, &e.Destination, &option, &e.Fallback, &committed); err != nil {
			return nil, errors.Wrap(err, errors.CodeJournal, "failed to read journal row")
		}
		e.Type = storage.ItemType(itemType)
		e.Option = storage.NameCollisionOption(option)
		e.CommittedAt = time.Unix(0, committed).UTC()
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.CodeJournal, "failed to read journal")
	}
	return events, nil
}

// Compile-time interface check.
var _ storage.Observer = (*Journal)(nil)
