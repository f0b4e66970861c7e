package main

import (
	"database/sql"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"library-catalog/library"
)

func main() {
	var session string
	cmd := &cobra.Command{
		Use:          "show_journal <journal.db>",
		Short:        "Print the audit journal written by the library session",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return showJournal(cmd.OutOrStdout(), args[0], session)
		},
	}
	cmd.Flags().StringVar(&session, "session", "", "only show events of this session id")
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func showJournal(w io.Writer, path, session string) error {
	// Opening a missing path would create an empty journal.
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("journal not accessible: %w", err)
	}

	journal, err := library.OpenJournal(path)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer journal.Close()

	var events []library.Event
	if session != "" {
		events, err = journal.SessionEvents(session)
	} else {
		events, err = journal.Events()
	}
	if err != nil {
		return fmt.Errorf("read journal: %w", err)
	}

	if len(events) == 0 {
		fmt.Fprintln(w, "No events recorded.")
		return nil
	}

	fmt.Fprintf(w, "%-5s %-20s %-8s %-18s %-30s %-7s %-7s %s\n", "ID", "Time", "Session", "Action", "Catalog", "Member", "Book", "Detail")
	fmt.Fprintln(w, strings.Repeat("-", 130))

	perAction := map[string]int{}
	for _, e := range events {
		perAction[e.Action]++
		fmt.Fprintf(w, "%-5d %-20s %s %-18s %s %-7s %-7s %s\n",
			e.ID,
			e.RecordedAt.Local().Format("2006-01-02 15:04:05"),
			library.Cell(e.SessionID, 8),
			e.Action,
			library.Cell(e.Catalog, 30),
			idOrDash(e.MemberID),
			idOrDash(e.BookID),
			detail(e))
	}

	actions := make([]string, 0, len(perAction))
	for a := range perAction {
		actions = append(actions, a)
	}
	sort.Strings(actions)

	fmt.Fprintf(w, "\nTotal events: %d\n", len(events))
	for _, a := range actions {
		fmt.Fprintf(w, "  %-18s %d\n", a, perAction[a])
	}
	return nil
}

func detail(e library.Event) string {
	fields, err := e.Fields()
	if err != nil {
		return e.Detail
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, fields[k]))
	}
	return strings.Join(parts, " ")
}

func idOrDash(id sql.NullInt64) string {
	if !id.Valid {
		return "-"
	}
	return fmt.Sprint(id.Int64)
}
