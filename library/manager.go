package library

import (
	"errors"
	"fmt"
	"slices"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// LibraryManager holds the catalogs of one interactive session, the index of
// the active catalog and the audit journal. Menu code talks to it instead of
// to catalogs directly so that every change is journaled.
//
// LibraryManager is not safe for concurrent use.
type LibraryManager struct {
	catalogs  []*Catalog
	active    int
	journal   *Journal
	sessionID string
	log       zerolog.Logger
}

// NewLibraryManager opens the journal at journalPath and starts a session over
// catalogs, the first of which becomes active.
func NewLibraryManager(journalPath string, catalogs []*Catalog, log zerolog.Logger) (*LibraryManager, error) {
	if len(catalogs) == 0 {
		return nil, fmt.Errorf("no catalogs to manage: %w", ErrInvalidInput)
	}
	j, err := OpenJournal(journalPath)
	if err != nil {
		return nil, err
	}
	lm := &LibraryManager{
		catalogs:  catalogs,
		journal:   j,
		sessionID: uuid.NewString(),
	}
	lm.log = log.With().Str("session", lm.sessionID).Logger()
	lm.log.Debug().Str("journal", journalPath).Int("catalogs", len(catalogs)).Msg("session started")
	return lm, nil
}

// Close closes the journal. Call Dispose first to journal the end of the session.
func (lm *LibraryManager) Close() error { return lm.journal.Close() }

func (lm *LibraryManager) SessionID() string { return lm.sessionID }

// Events returns the journal entries of this session.
func (lm *LibraryManager) Events() ([]Event, error) {
	return lm.journal.SessionEvents(lm.sessionID)
}

// ------------------ Catalog selection ------------------

func (lm *LibraryManager) Catalogs() []*Catalog { return slices.Clone(lm.catalogs) }
func (lm *LibraryManager) Active() *Catalog     { return lm.catalogs[lm.active] }
func (lm *LibraryManager) ActiveIndex() int     { return lm.active }

// Switch makes the catalog at index i active.
func (lm *LibraryManager) Switch(i int) error {
	if i < 0 || i >= len(lm.catalogs) {
		return fmt.Errorf("index %d out of range: %w", i, ErrInvalidInput)
	}
	lm.active = i
	lm.log.Debug().Str("catalog", lm.Active().Name).Msg("switched active catalog")
	return nil
}

// Merge merges the active catalog with the catalog at index other, appends
// the result and makes it active.
func (lm *LibraryManager) Merge(other int) (*Catalog, error) {
	if other < 0 || other >= len(lm.catalogs) {
		return nil, fmt.Errorf("index %d out of range: %w", other, ErrInvalidInput)
	}
	if other == lm.active {
		return nil, fmt.Errorf("cannot merge '%s' with itself: %w", lm.Active().Name, ErrInvalidInput)
	}
	src, with := lm.Active(), lm.catalogs[other]
	merged := Merge(src, with)
	lm.catalogs = append(lm.catalogs, merged)
	lm.active = len(lm.catalogs) - 1

	lm.record(Event{Catalog: merged.Name, Action: ActionMerged}, map[string]any{
		"sources": []string{src.Name, with.Name},
		"books":   len(merged.books),
		"members": len(merged.members),
	})
	return merged, nil
}

// Dispose ends the session: every catalog is journaled as disposed, in list
// order. It returns the names of the disposed catalogs.
func (lm *LibraryManager) Dispose() []string {
	names := make([]string, 0, len(lm.catalogs))
	for _, c := range lm.catalogs {
		lm.record(Event{Catalog: c.Name, Action: ActionDisposed}, nil)
		names = append(names, c.Name)
	}
	return names
}

// ------------------ Book helpers ------------------

// AddBook adds a new book to the active catalog. Unlike Catalog.AddBook it
// refuses an id that is already present.
func (lm *LibraryManager) AddBook(title, author string, id int64) (*Book, error) {
	c := lm.Active()
	if _, exists := c.FindBook(id); exists {
		return nil, fmt.Errorf("a book with ID %d already exists: %w", id, ErrDuplicateID)
	}
	b := NewBook(title, author, id)
	c.AddBook(b)
	lm.record(Event{Catalog: c.Name, Action: ActionBookAdded, BookID: Ref(id)}, map[string]any{"title": title, "author": author})
	return b, nil
}

func (lm *LibraryManager) RemoveBook(id int64) (*Book, error) {
	c := lm.Active()
	b, err := c.RemoveBook(id)
	if err != nil {
		return nil, err
	}
	lm.record(Event{Catalog: c.Name, Action: ActionBookRemoved, BookID: Ref(id)}, map[string]any{"title": b.Title})
	return b, nil
}

func (lm *LibraryManager) Books() []*Book                 { return lm.Active().Books() }
func (lm *LibraryManager) GetBook(id int64) (*Book, bool) { return lm.Active().FindBook(id) }

// ------------------ Member helpers ------------------

// RegisterMember adds a member with the given role ("student" or "faculty")
// to the active catalog. Duplicate member ids are refused.
func (lm *LibraryManager) RegisterMember(name, role string, id int64) (*Member, error) {
	r, err := ParseRole(role)
	if err != nil {
		return nil, err
	}
	c := lm.Active()
	if _, exists := c.Member(id); exists {
		return nil, fmt.Errorf("a member with ID %d already exists: %w", id, ErrDuplicateID)
	}
	m := NewMember(name, id, r)
	c.AddMember(m)
	lm.record(Event{Catalog: c.Name, Action: ActionMemberRegistered, MemberID: Ref(id)}, map[string]any{"name": name, "role": r.String()})
	return m, nil
}

func (lm *LibraryManager) GetMember(id int64) (*Member, bool) { return lm.Active().Member(id) }

// ------------------ Circulation ------------------

// Borrow lends a book of the active catalog and returns the confirmation text.
func (lm *LibraryManager) Borrow(memberID, bookID int64) (string, error) {
	c := lm.Active()
	m, b, err := c.Borrow(memberID, bookID)
	if err != nil {
		if errors.Is(err, ErrPolicyLimitExceeded) || errors.Is(err, ErrUnavailable) {
			lm.record(Event{Catalog: c.Name, Action: ActionBorrowDenied, MemberID: Ref(memberID), BookID: Ref(bookID)}, map[string]any{"reason": err.Error()})
		}
		return "", err
	}
	lm.record(Event{Catalog: c.Name, Action: ActionBorrowed, MemberID: Ref(memberID), BookID: Ref(bookID)}, map[string]any{"role": m.Label()})
	return m.BorrowMessage(b), nil
}

// ReturnBook takes a book back from a member of the active catalog.
func (lm *LibraryManager) ReturnBook(memberID, bookID int64) (*Member, *Book, error) {
	c := lm.Active()
	m, b, err := c.ReturnBook(memberID, bookID)
	if err != nil {
		return nil, nil, err
	}
	lm.record(Event{Catalog: c.Name, Action: ActionReturned, MemberID: Ref(memberID), BookID: Ref(bookID)}, nil)
	return m, b, nil
}

// record journals e for this session. Journal failures are logged and do not
// fail the catalog operation that already happened.
func (lm *LibraryManager) record(e Event, fields map[string]any) {
	e.SessionID = lm.sessionID
	ev := lm.log.Debug().Str("catalog", e.Catalog).Str("action", e.Action)
	if e.MemberID.Valid {
		ev = ev.Int64("member", e.MemberID.Int64)
	}
	if e.BookID.Valid {
		ev = ev.Int64("book", e.BookID.Int64)
	}
	ev.Msg("catalog event")

	if _, err := lm.journal.Record(e, fields); err != nil {
		lm.log.Warn().Err(err).Str("action", e.Action).Msg("journal write failed")
	}
}
