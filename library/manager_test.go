package library

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newManager(t *testing.T) *LibraryManager {
	t.Helper()
	mgr, err := NewLibraryManager(MemoryJournal, DefaultCatalogs(), zerolog.Nop())
	require.NoError(t, err, "mgr")
	t.Cleanup(func() { mgr.Close() })
	return mgr
}

func actions(t *testing.T, mgr *LibraryManager) []string {
	t.Helper()
	events, err := mgr.Events()
	require.NoError(t, err)
	out := make([]string, 0, len(events))
	for _, e := range events {
		out = append(out, e.Action)
	}
	return out
}

func TestNewManagerRequiresCatalogs(t *testing.T) {
	_, err := NewLibraryManager(MemoryJournal, nil, zerolog.Nop())
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestManagerBorrowAndReturn(t *testing.T) {
	mgr := newManager(t)
	assert.NotEmpty(t, mgr.SessionID())
	assert.Equal(t, "Central Library", mgr.Active().Name)

	msg, err := mgr.Borrow(1, 101)
	require.NoError(t, err)
	assert.Equal(t, "Alice (Student) borrowed 'Python Basics' for 7 days.", msg)

	_, err = mgr.Borrow(2, 101)
	require.ErrorIs(t, err, ErrUnavailable)

	_, err = mgr.Borrow(99, 101)
	require.ErrorIs(t, err, ErrNotFound)

	m, b, err := mgr.ReturnBook(1, 101)
	require.NoError(t, err)
	assert.Equal(t, "Alice", m.Name)
	assert.True(t, b.Available())

	assert.Equal(t, []string{ActionBorrowed, ActionBorrowDenied, ActionReturned}, actions(t, mgr))

	events, err := mgr.Events()
	require.NoError(t, err)
	fields, err := events[1].Fields()
	require.NoError(t, err)
	assert.Contains(t, fields["reason"], "is not available")
}

func TestManagerAddAndRemoveBook(t *testing.T) {
	mgr := newManager(t)

	_, err := mgr.AddBook("Duplicate", "X", 101)
	require.ErrorIs(t, err, ErrDuplicateID)

	b, err := mgr.AddBook("Compilers", "Aho", 103)
	require.NoError(t, err)
	got, ok := mgr.GetBook(103)
	require.True(t, ok)
	assert.Same(t, b, got)
	assert.Len(t, mgr.Books(), 3)

	_, err = mgr.Borrow(2, 103)
	require.NoError(t, err)
	_, err = mgr.RemoveBook(103)
	require.ErrorIs(t, err, ErrNotRemovable)

	removed, err := mgr.RemoveBook(102)
	require.NoError(t, err)
	assert.Equal(t, "Data Structures", removed.Title)
	assert.Equal(t, []int64{101, 103}, bookIDs(mgr.Books()))

	assert.Equal(t, []string{ActionBookAdded, ActionBorrowed, ActionBookRemoved}, actions(t, mgr))
}

func TestManagerRegisterMember(t *testing.T) {
	mgr := newManager(t)

	m, err := mgr.RegisterMember("Erin", "Faculty", 10)
	require.NoError(t, err)
	assert.Equal(t, RoleFaculty, m.Role())
	got, ok := mgr.GetMember(10)
	require.True(t, ok)
	assert.Same(t, m, got)

	_, err = mgr.RegisterMember("Erin Again", "student", 10)
	require.ErrorIs(t, err, ErrDuplicateID)

	_, err = mgr.RegisterMember("Zed", "visitor", 11)
	require.ErrorIs(t, err, ErrInvalidInput)
	_, ok = mgr.GetMember(11)
	assert.False(t, ok)

	events, err := mgr.Events()
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, Ref(10), events[0].MemberID)
}

func TestManagerSwitch(t *testing.T) {
	mgr := newManager(t)

	require.NoError(t, mgr.Switch(1))
	assert.Equal(t, "AI Library", mgr.Active().Name)
	assert.Equal(t, 1, mgr.ActiveIndex())

	require.ErrorIs(t, mgr.Switch(2), ErrInvalidInput)
	require.ErrorIs(t, mgr.Switch(-1), ErrInvalidInput)
	assert.Equal(t, 1, mgr.ActiveIndex())

	// Lookups follow the active catalog.
	_, ok := mgr.GetBook(101)
	assert.False(t, ok)
	_, ok = mgr.GetBook(201)
	assert.True(t, ok)
}

func TestManagerMerge(t *testing.T) {
	mgr := newManager(t)
	require.NoError(t, mgr.Switch(1))

	_, err := mgr.Merge(1)
	require.ErrorIs(t, err, ErrInvalidInput)
	_, err = mgr.Merge(5)
	require.ErrorIs(t, err, ErrInvalidInput)

	merged, err := mgr.Merge(0)
	require.NoError(t, err)
	assert.Equal(t, "AI Library & Central Library", merged.Name)
	assert.Equal(t, []int64{201, 202, 101, 102}, bookIDs(merged.Books()))
	assert.Equal(t, []int64{3, 4, 1, 2}, memberIDs(merged.Members()))
	assert.Len(t, mgr.Catalogs(), 3)
	assert.Equal(t, 2, mgr.ActiveIndex())
	assert.Same(t, merged, mgr.Active())

	// Borrowing through the merged catalog is visible in the source.
	_, err = mgr.Borrow(1, 201)
	require.NoError(t, err)
	src, _ := mgr.Catalogs()[1].FindBook(201)
	assert.False(t, src.Available())

	events, err := mgr.Events()
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, ActionMerged, events[0].Action)
	fields, err := events[0].Fields()
	require.NoError(t, err)
	assert.Equal(t, []any{"AI Library", "Central Library"}, fields["sources"])
	assert.EqualValues(t, 4, fields["books"])
}

func TestManagerDispose(t *testing.T) {
	mgr := newManager(t)
	_, err := mgr.Merge(1)
	require.NoError(t, err)

	names := mgr.Dispose()
	assert.Equal(t, []string{"Central Library", "AI Library", "Central Library & AI Library"}, names)
	assert.Equal(t, []string{ActionMerged, ActionDisposed, ActionDisposed, ActionDisposed}, actions(t, mgr))
}

func TestManagerJournalsMemberZero(t *testing.T) {
	mgr := newManager(t)
	_, err := mgr.RegisterMember("Zero", "student", 0)
	require.NoError(t, err)
	_, err = mgr.Borrow(0, 101)
	require.NoError(t, err)

	events, err := mgr.Events()
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, Ref(0), events[0].MemberID)
	assert.False(t, events[0].BookID.Valid)
	assert.Equal(t, Ref(0), events[1].MemberID)
	assert.Equal(t, Ref(101), events[1].BookID)
}
