package main

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"library-catalog/library"
)

func main() {
	if err := newRootCmd(os.Stdin, os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(in io.Reader, out io.Writer) *cobra.Command {
	var (
		journalPath string
		seedPath    string
		debug       bool
	)

	cmd := &cobra.Command{
		Use:          "library",
		Short:        "Interactive in-memory library catalog manager",
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			log := newLogger(cmd.ErrOrStderr(), debug)

			catalogs := library.DefaultCatalogs()
			if seedPath != "" {
				var err error
				if catalogs, err = library.LoadSeedFile(seedPath); err != nil {
					return err
				}
			}

			manager, err := library.NewLibraryManager(journalPath, catalogs, log)
			if err != nil {
				return err
			}
			defer manager.Close()

			newMenu(in, out, manager, terminalWidth(out)).run()
			return nil
		},
	}

	cmd.Flags().StringVar(&journalPath, "journal", library.MemoryJournal, "SQLite file for the audit journal")
	cmd.Flags().StringVar(&seedPath, "seed", "", "YAML file with initial catalogs (default: built-in demo data)")
	cmd.Flags().BoolVar(&debug, "debug", false, "enable debug logging on stderr")
	return cmd
}

func newLogger(w io.Writer, debug bool) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339
	level := zerolog.WarnLevel
	if debug {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: w}).Level(level).With().Timestamp().Logger()
}

// terminalWidth reports the width of out when it is a terminal, 0 otherwise.
func terminalWidth(out io.Writer) int {
	f, ok := out.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return 0
	}
	w, _, err := term.GetSize(int(f.Fd()))
	if err != nil {
		return 0
	}
	return w
}
