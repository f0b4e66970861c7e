package library

import (
	"fmt"
	"slices"
	"strings"
)

// Book represents a catalog item and its current availability.
// The id is fixed at construction. Availability only changes through
// Member.Borrow and Member.Return.
type Book struct {
	id        int64
	Title     string
	Author    string
	available bool
}

// NewBook creates an available book. Uniqueness of id is not checked here.
func NewBook(title, author string, id int64) *Book {
	return &Book{id: id, Title: title, Author: author, available: true}
}

func (b *Book) ID() int64       { return b.id }
func (b *Book) Available() bool { return b.available }

// String renders "[id] title by author - Available|Borrowed".
func (b *Book) String() string {
	status := "Available"
	if !b.available {
		status = "Borrowed"
	}
	return fmt.Sprintf("[%d] %s by %s - %s", b.id, b.Title, b.Author, status)
}

// Role selects the borrowing policy of a member.
type Role int

const (
	RoleMember Role = iota
	RoleStudent
	RoleFaculty
)

// Policy holds the data that differs between roles.
// A Limit of zero means the role has no numeric cap.
type Policy struct {
	Label  string
	Limit  int
	Period string
}

var policies = map[Role]Policy{
	RoleMember:  {Label: "Member"},
	RoleStudent: {Label: "Student", Limit: 3, Period: "7 days"},
	RoleFaculty: {Label: "Faculty", Limit: 10, Period: "30 days"},
}

// Policy returns the policy of r. An unknown role gets a policy labelled
// with its number; members with such a role cannot borrow.
func (r Role) Policy() Policy {
	if p, ok := policies[r]; ok {
		return p
	}
	return Policy{Label: fmt.Sprintf("Role(%d)", int(r))}
}

func (r Role) Valid() bool {
	_, ok := policies[r]
	return ok
}

func (r Role) String() string { return r.Policy().Label }

// ParseRole maps "student"/"faculty" (any case, surrounding space ignored) to a Role.
// The uncapped RoleMember has no textual form; it is only reachable through NewMember.
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "student":
		return RoleStudent, nil
	case "faculty":
		return RoleFaculty, nil
	default:
		return RoleMember, fmt.Errorf("unknown role %q, use 'student' or 'faculty': %w", s, ErrInvalidInput)
	}
}

// Member is a person allowed to borrow books under the policy of its role.
// Borrowed books are references to books owned by a Catalog.
//
// Member is not safe for concurrent use.
type Member struct {
	id       int64
	Name     string
	role     Role
	borrowed []*Book
}

func NewMember(name string, id int64, role Role) *Member {
	return &Member{id: id, Name: name, role: role}
}

func NewStudent(name string, id int64) *Member { return NewMember(name, id, RoleStudent) }
func NewFaculty(name string, id int64) *Member { return NewMember(name, id, RoleFaculty) }

func (m *Member) ID() int64     { return m.id }
func (m *Member) Role() Role    { return m.role }
func (m *Member) Label() string { return m.role.Policy().Label }

// Borrow applies the role's policy and, on success, marks the book borrowed
// and appends it to the member's borrowed list. On failure nothing changes.
func (m *Member) Borrow(b *Book) error {
	if !m.role.Valid() {
		return fmt.Errorf("%s has unknown role %s: %w", m.Name, m.role, ErrInvalidInput)
	}
	p := m.role.Policy()
	if p.Limit > 0 && len(m.borrowed) >= p.Limit {
		return fmt.Errorf("%s (%s) reached limit of %d books: %w", m.Name, p.Label, p.Limit, ErrPolicyLimitExceeded)
	}
	if !b.available {
		return fmt.Errorf("'%s' is not available: %w", b.Title, ErrUnavailable)
	}
	b.available = false
	m.borrowed = append(m.borrowed, b)
	return nil
}

// BorrowMessage is the confirmation text for a successful borrow.
func (m *Member) BorrowMessage(b *Book) string {
	p := m.role.Policy()
	if p.Period == "" {
		return fmt.Sprintf("%s borrowed '%s'.", m.Name, b.Title)
	}
	return fmt.Sprintf("%s (%s) borrowed '%s' for %s.", m.Name, p.Label, b.Title, p.Period)
}

// Return gives back the borrowed book with the given id and marks it available.
func (m *Member) Return(bookID int64) (*Book, error) {
	for i, b := range m.borrowed {
		if b.ID() == bookID {
			b.available = true
			m.borrowed = slices.Delete(m.borrowed, i, i+1)
			return b, nil
		}
	}
	return nil, fmt.Errorf("%s does not have a book with ID %d: %w", m.Name, bookID, ErrNotBorrowed)
}

// Borrowed returns a copy of the borrowed list in borrow order.
func (m *Member) Borrowed() []*Book { return slices.Clone(m.borrowed) }

// Holds reports whether the member currently holds b.
func (m *Member) Holds(b *Book) bool { return slices.Contains(m.borrowed, b) }

func (m *Member) String() string {
	return fmt.Sprintf("%s '%s' (ID: %d)", m.Label(), m.Name, m.id)
}

// Describe renders the member header followed by one line per borrowed book.
func (m *Member) Describe() string {
	var sb strings.Builder
	sb.WriteString(m.String())
	if len(m.borrowed) == 0 {
		sb.WriteString("\n  no borrowed books")
		return sb.String()
	}
	for _, b := range m.borrowed {
		fmt.Fprintf(&sb, "\n  - %s", b)
	}
	return sb.String()
}
