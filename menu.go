package main

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"library-catalog/library"
)

const defaultWidth = 80

// menu is the interactive session: it reads choices from sc and reports to out.
type menu struct {
	sc    *bufio.Scanner
	out   io.Writer
	mgr   *library.LibraryManager
	width int
}

func newMenu(in io.Reader, out io.Writer, mgr *library.LibraryManager, width int) *menu {
	if width <= 0 {
		width = defaultWidth
	}
	return &menu{sc: bufio.NewScanner(in), out: out, mgr: mgr, width: width}
}

func (m *menu) printf(format string, args ...any) { fmt.Fprintf(m.out, format, args...) }

// run loops until the exit option is chosen or input ends. Either way every
// catalog is disposed before returning.
func (m *menu) run() {
	defer m.dispose()

	m.printf("\nActive library: %s\n", m.mgr.Active().Name)
	for {
		m.printMenu()
		line, ok := m.prompt("Choose an option: ")
		if !ok {
			return
		}
		choice, err := strconv.Atoi(line)
		if err != nil {
			m.printf("Please enter a valid number.\n")
			continue
		}

		switch choice {
		case 1:
			m.showBooks()
		case 2:
			m.registerMember()
		case 3:
			m.addBook()
		case 4:
			m.removeBook()
		case 5:
			m.borrow()
		case 6:
			m.returnBook()
		case 7:
			m.showBorrowed()
		case 8:
			m.merge()
		case 9:
			m.switchLibrary()
		case 0:
			m.printf("Goodbye!\n")
			return
		default:
			m.printf("Unknown option.\n")
		}
	}
}

func (m *menu) printMenu() {
	m.printf("\n--- Library Menu ---\n")
	m.printf("1. Show books\n")
	m.printf("2. Register member\n")
	m.printf("3. Add book\n")
	m.printf("4. Remove book\n")
	m.printf("5. Borrow book\n")
	m.printf("6. Return book\n")
	m.printf("7. Show member borrowed books\n")
	m.printf("8. Merge with another library\n")
	m.printf("9. Switch active library\n")
	m.printf("0. Exit\n")
}

// prompt prints p and returns the next trimmed line; ok is false at end of input.
func (m *menu) prompt(p string) (string, bool) {
	m.printf("%s", p)
	if !m.sc.Scan() {
		return "", false
	}
	return strings.TrimSpace(m.sc.Text()), true
}

// promptInt re-prompts until an integer is entered or input ends.
func (m *menu) promptInt(p string) (int64, bool) {
	for {
		line, ok := m.prompt(p)
		if !ok {
			return 0, false
		}
		n, err := strconv.ParseInt(line, 10, 64)
		if err == nil {
			return n, true
		}
		m.printf("Invalid number: %q. Please enter an integer.\n", line)
	}
}

func (m *menu) showBooks() {
	c := m.mgr.Active()
	m.printf("\nBooks in %s:\n", c.Name)
	books := c.Books()
	if len(books) == 0 {
		m.printf("  No books found.\n")
		return
	}

	titleW, authorW := m.columns()
	m.printf("%-6s %s %s %s\n", "ID", library.Cell("Title", titleW), library.Cell("Author", authorW), "Status")
	m.printf("%s\n", strings.Repeat("-", m.width))
	for _, b := range books {
		status := "Available"
		if !b.Available() {
			status = "Borrowed"
		}
		m.printf("%-6d %s %s %s\n",
			b.ID(),
			library.Cell(b.Title, titleW),
			library.Cell(b.Author, authorW),
			status)
	}
}

// columns splits the width left after the id and status columns between
// title and author.
func (m *menu) columns() (title, author int) {
	rest := m.width - 6 - 9 - 3
	title = rest * 55 / 100
	author = rest - title
	return max(title, 10), max(author, 10)
}

func (m *menu) registerMember() {
	name, ok := m.prompt("Member name: ")
	if !ok {
		return
	}
	role, ok := m.prompt("Role (student/faculty): ")
	if !ok {
		return
	}
	id, ok := m.promptInt("Member ID (int): ")
	if !ok {
		return
	}

	member, err := m.mgr.RegisterMember(name, role, id)
	if err != nil {
		m.printf("Error: %v\n", err)
		return
	}
	m.printf("Registered %s '%s' (ID: %d).\n", member.Label(), member.Name, member.ID())
}

func (m *menu) addBook() {
	title, ok := m.prompt("Book title: ")
	if !ok {
		return
	}
	author, ok := m.prompt("Author: ")
	if !ok {
		return
	}
	id, ok := m.promptInt("Book ID (int): ")
	if !ok {
		return
	}

	b, err := m.mgr.AddBook(title, author, id)
	if err != nil {
		m.printf("Error: %v\n", err)
		return
	}
	m.printf("Added '%s' to %s.\n", b.Title, m.mgr.Active().Name)
}

func (m *menu) removeBook() {
	id, ok := m.promptInt("Book ID to remove: ")
	if !ok {
		return
	}
	b, err := m.mgr.RemoveBook(id)
	if err != nil {
		m.printf("Error: %v\n", err)
		return
	}
	m.printf("Removed '%s' from %s.\n", b.Title, m.mgr.Active().Name)
}

func (m *menu) borrow() {
	memberID, ok := m.promptInt("Member ID: ")
	if !ok {
		return
	}
	bookID, ok := m.promptInt("Book ID: ")
	if !ok {
		return
	}

	msg, err := m.mgr.Borrow(memberID, bookID)
	if err != nil {
		m.printf("Error: %v\n", err)
		return
	}
	m.printf("%s\n", msg)
}

func (m *menu) returnBook() {
	memberID, ok := m.promptInt("Member ID: ")
	if !ok {
		return
	}
	bookID, ok := m.promptInt("Book ID: ")
	if !ok {
		return
	}

	member, b, err := m.mgr.ReturnBook(memberID, bookID)
	if err != nil {
		m.printf("Error: %v\n", err)
		return
	}
	m.printf("%s returned '%s'.\n", member.Name, b.Title)
}

func (m *menu) showBorrowed() {
	id, ok := m.promptInt("Member ID: ")
	if !ok {
		return
	}
	member, found := m.mgr.GetMember(id)
	if !found {
		m.printf("Member not found.\n")
		return
	}
	m.printf("%s\n", member.Describe())
}

func (m *menu) listLibraries() {
	m.printf("Available libraries:\n")
	for i, c := range m.mgr.Catalogs() {
		marker := " "
		if i == m.mgr.ActiveIndex() {
			marker = "*"
		}
		m.printf("%s %d: %s\n", marker, i, c.Name)
	}
}

func (m *menu) merge() {
	m.listLibraries()
	idx, ok := m.promptInt(fmt.Sprintf("Merge '%s' with index: ", m.mgr.Active().Name))
	if !ok {
		return
	}
	merged, err := m.mgr.Merge(int(idx))
	if err != nil {
		m.printf("Error: %v\n", err)
		return
	}
	m.printf("Merged libraries into '%s'.\n", merged.Name)
	m.printf("Switched to merged library: %s\n", merged.Name)
}

func (m *menu) switchLibrary() {
	m.listLibraries()
	idx, ok := m.promptInt("Select index: ")
	if !ok {
		return
	}
	if err := m.mgr.Switch(int(idx)); err != nil {
		m.printf("Index out of range.\n")
		return
	}
	m.printf("Now using: %s\n", m.mgr.Active().Name)
}

func (m *menu) dispose() {
	for _, name := range m.mgr.Dispose() {
		m.printf("Library '%s' closed.\n", name)
	}
}
