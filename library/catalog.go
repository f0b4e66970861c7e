package library

import (
	"fmt"
	"slices"
)

// Catalog is a named collection of books and members ("a library").
// Books keep insertion order for listing.
//
// Ids are not checked for uniqueness on insert: a second book or member with
// an id already present is kept for listing, but lookups by id return the
// first match only.
//
// A Catalog is not safe for concurrent use. Callers that need concurrency
// should funnel all calls for one catalog through a single goroutine.
type Catalog struct {
	Name    string
	books   []*Book
	members []*Member
}

func NewCatalog(name string) *Catalog {
	return &Catalog{Name: name}
}

func (c *Catalog) AddBook(b *Book) { c.books = append(c.books, b) }

// RemoveBook removes the first book with id, provided it is not borrowed.
func (c *Catalog) RemoveBook(id int64) (*Book, error) {
	i := slices.IndexFunc(c.books, func(b *Book) bool { return b.ID() == id })
	if i < 0 {
		return nil, fmt.Errorf("book ID %d: %w", id, ErrNotFound)
	}
	b := c.books[i]
	if !b.Available() {
		return nil, fmt.Errorf("book ID %d '%s' is currently borrowed; cannot remove: %w", id, b.Title, ErrNotRemovable)
	}
	c.books = slices.Delete(c.books, i, i+1)
	return b, nil
}

// FindBook returns the first book with id.
func (c *Catalog) FindBook(id int64) (*Book, bool) {
	for _, b := range c.books {
		if b.ID() == id {
			return b, true
		}
	}
	return nil, false
}

func (c *Catalog) Books() []*Book { return slices.Clone(c.books) }

func (c *Catalog) AddMember(m *Member) { c.members = append(c.members, m) }

// Member returns the first member with id.
func (c *Catalog) Member(id int64) (*Member, bool) {
	for _, m := range c.members {
		if m.ID() == id {
			return m, true
		}
	}
	return nil, false
}

func (c *Catalog) Members() []*Member { return slices.Clone(c.members) }

// Borrow lends the book to the member, subject to the member's policy.
func (c *Catalog) Borrow(memberID, bookID int64) (*Member, *Book, error) {
	m, ok := c.Member(memberID)
	if !ok {
		return nil, nil, fmt.Errorf("no member with ID %d: %w", memberID, ErrNotFound)
	}
	b, ok := c.FindBook(bookID)
	if !ok {
		return m, nil, fmt.Errorf("no book with ID %d: %w", bookID, ErrNotFound)
	}
	return m, b, m.Borrow(b)
}

// ReturnBook takes the book back from the member. Only the member is resolved
// against the catalog; the book is looked up in the member's borrowed list.
func (c *Catalog) ReturnBook(memberID, bookID int64) (*Member, *Book, error) {
	m, ok := c.Member(memberID)
	if !ok {
		return nil, nil, fmt.Errorf("no member with ID %d: %w", memberID, ErrNotFound)
	}
	b, err := m.Return(bookID)
	if err != nil {
		return m, nil, err
	}
	return m, b, nil
}

// Merge returns a new catalog named "<c> & <other>" holding the books of c
// followed by the books of other, and likewise the members. Entries whose id
// was already seen are dropped, so the first occurrence wins. Books and
// members are shared with c and other, not copied.
func Merge(c, other *Catalog) *Catalog {
	merged := NewCatalog(fmt.Sprintf("%s & %s", c.Name, other.Name))

	seenBooks := make(map[int64]struct{})
	for _, b := range append(slices.Clone(c.books), other.books...) {
		if _, dup := seenBooks[b.ID()]; dup {
			continue
		}
		seenBooks[b.ID()] = struct{}{}
		merged.books = append(merged.books, b)
	}

	seenMembers := make(map[int64]struct{})
	for _, m := range append(slices.Clone(c.members), other.members...) {
		if _, dup := seenMembers[m.ID()]; dup {
			continue
		}
		seenMembers[m.ID()] = struct{}{}
		merged.members = append(merged.members, m)
	}
	return merged
}

// Merge is shorthand for Merge(c, other).
func (c *Catalog) Merge(other *Catalog) *Catalog { return Merge(c, other) }
