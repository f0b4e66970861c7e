package library

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	jsoniter "github.com/json-iterator/go"
	_ "github.com/mattn/go-sqlite3"
)

// MemoryJournal keeps the journal for the lifetime of the process only.
const MemoryJournal = ":memory:"

// Journal actions.
const (
	ActionBookAdded        = "book_added"
	ActionBookRemoved      = "book_removed"
	ActionMemberRegistered = "member_registered"
	ActionBorrowed         = "borrowed"
	ActionBorrowDenied     = "borrow_denied"
	ActionReturned         = "returned"
	ActionMerged           = "merged"
	ActionDisposed         = "disposed"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Event is one row of the audit journal. MemberID and BookID are NULL when
// the action does not involve a member or a book; 0 is a valid id.
type Event struct {
	ID         int64         `db:"id"`
	SessionID  string        `db:"session_id"`
	Catalog    string        `db:"catalog"`
	Action     string        `db:"action"`
	MemberID   sql.NullInt64 `db:"member_id"`
	BookID     sql.NullInt64 `db:"book_id"`
	Detail     string        `db:"detail"`
	RecordedAt time.Time     `db:"recorded_at"`
}

// Ref marks id as present in an Event.
func Ref(id int64) sql.NullInt64 { return sql.NullInt64{Int64: id, Valid: true} }

// Fields decodes the JSON detail of the event.
func (e Event) Fields() (map[string]any, error) {
	fields := map[string]any{}
	if e.Detail == "" {
		return fields, nil
	}
	if err := json.UnmarshalFromString(e.Detail, &fields); err != nil {
		return nil, fmt.Errorf("decode detail of event %d: %w", e.ID, err)
	}
	return fields, nil
}

// Journal is an append-only SQLite audit trail of catalog activity. It does
// not hold catalog state; catalogs live in memory only.
type Journal struct {
	db *sqlx.DB

	recordStmt *sqlx.Stmt
}

// OpenJournal opens (or creates) the journal at path. Use MemoryJournal for a
// throwaway in-memory journal.
func OpenJournal(path string) (*Journal, error) {
	dsn := "file::memory:?_foreign_keys=1"
	if path != MemoryJournal {
		// Ensure directory exists so first-run succeeds.
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create journal dir: %w", err)
			}
		}
		dsn = fmt.Sprintf("file:%s?_busy_timeout=5000&_foreign_keys=1", path)
	}

	db, err := sqlx.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// Every connection to :memory: is a separate database.
	db.SetMaxOpenConns(1)

	if err := applyMigrations(db); err != nil {
		db.Close()
		return nil, err
	}

	j := &Journal{db: db}
	if j.recordStmt, err = db.Preparex(`INSERT INTO events(session_id,catalog,action,member_id,book_id,detail,recorded_at) VALUES(?,?,?,?,?,?,?)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("prepare: %w", err)
	}
	return j, nil
}

// Close releases the prepared statement and closes the DB.
func (j *Journal) Close() error {
	if j.recordStmt != nil {
		j.recordStmt.Close()
	}
	return j.db.Close()
}

// ---------------------------------------------------------------------------
// Schema migration
// ---------------------------------------------------------------------------

const schemaVersion = 1

func applyMigrations(db *sqlx.DB) error {
	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		return fmt.Errorf("enable WAL: %w", err)
	}

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS meta (key TEXT PRIMARY KEY, value TEXT);`); err != nil {
		return err
	}

	var current int
	_ = db.QueryRow(`SELECT value FROM meta WHERE key='schema_version';`).Scan(&current)
	if current >= schemaVersion {
		return nil
	}

	tx, err := db.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmts := []string{
		`CREATE TABLE IF NOT EXISTS events (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            session_id TEXT NOT NULL,
            catalog TEXT NOT NULL,
            action TEXT NOT NULL,
            member_id INTEGER,
            book_id INTEGER,
            detail TEXT NOT NULL DEFAULT '',
            recorded_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
        );`,
		`CREATE INDEX IF NOT EXISTS idx_events_session ON events(session_id, id);`,
	}
	for _, stmt := range stmts {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("apply migration: %w", err)
		}
	}
	if _, err := tx.Exec(`INSERT INTO meta(key,value) VALUES('schema_version',?)
            ON CONFLICT(key) DO UPDATE SET value=excluded.value;`, schemaVersion); err != nil {
		return fmt.Errorf("apply migration: %w", err)
	}

	return tx.Commit()
}

// ---------------------------------------------------------------------------
// Recording and reading
// ---------------------------------------------------------------------------

// Record appends e. RecordedAt defaults to now; fields, if non-empty, are
// stored as the JSON detail.
func (j *Journal) Record(e Event, fields map[string]any) (int64, error) {
	if len(fields) > 0 {
		detail, err := json.MarshalToString(fields)
		if err != nil {
			return 0, fmt.Errorf("encode detail: %w", err)
		}
		e.Detail = detail
	}
	if e.RecordedAt.IsZero() {
		e.RecordedAt = time.Now().UTC()
	}
	res, err := j.recordStmt.Exec(e.SessionID, e.Catalog, e.Action, e.MemberID, e.BookID, e.Detail, e.RecordedAt)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

const eventColumns = `id,session_id,catalog,action,member_id,book_id,detail,recorded_at`

// Events returns every event in insertion order.
func (j *Journal) Events() ([]Event, error) {
	var events []Event
	if err := j.db.Select(&events, `SELECT `+eventColumns+` FROM events ORDER BY id`); err != nil {
		return nil, err
	}
	return events, nil
}

// SessionEvents returns the events of one session in insertion order.
func (j *Journal) SessionEvents(sessionID string) ([]Event, error) {
	var events []Event
	if err := j.db.Select(&events, `SELECT `+eventColumns+` FROM events WHERE session_id=? ORDER BY id`, sessionID); err != nil {
		return nil, err
	}
	return events, nil
}
