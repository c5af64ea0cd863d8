package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"video-library/internal/database"
	"video-library/internal/logging"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

const defaultDatabaseDir = "/database"

const (
	outputAuto  = "auto"
	outputTable = "table"
	outputIDs   = "ids"
)

type commandContext struct {
	dbPath  string
	verbose bool
	output  string
}

func defaultDatabasePath() string {
	dir := os.Getenv("DATABASE_DIR")
	if dir == "" {
		dir = defaultDatabaseDir
	}
	return filepath.Join(dir, "videos.db")
}

// withDatabase opens the database for the duration of fn.
func (c *commandContext) withDatabase(cmd *cobra.Command, fn func(db *database.Database) error) error {
	path := strings.TrimSpace(c.dbPath)
	if path == "" {
		return fmt.Errorf("database path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create database directory: %w", err)
	}
	db, err := database.New(cmd.Context(), path)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Warn("close database: %v", err)
		}
	}()
	return fn(db)
}

// tableOutput reports whether views render as tables on cmd's output.
func (c *commandContext) tableOutput(cmd *cobra.Command) bool {
	switch c.output {
	case outputTable:
		return true
	case outputIDs:
		return false
	}
	f, ok := cmd.OutOrStdout().(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func newRootCommand() *cobra.Command {
	ctx := &commandContext{}

	rootCmd := &cobra.Command{
		Use:           "viewctl",
		Short:         "Video library command line",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logging.SetOutput(cmd.ErrOrStderr())
			if ctx.verbose {
				logging.SetLevel(logging.LevelDebug)
			} else {
				logging.SetLevel(logging.LevelWarn)
			}
			switch ctx.output {
			case outputAuto, outputTable, outputIDs:
				return nil
			default:
				return fmt.Errorf("unknown output %q (want %s, %s or %s)", ctx.output, outputAuto, outputTable, outputIDs)
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVar(&ctx.dbPath, "db", defaultDatabasePath(), "Path to the video database")
	rootCmd.PersistentFlags().BoolVarP(&ctx.verbose, "verbose", "v", false, "Log debug messages to stderr")
	rootCmd.PersistentFlags().StringVarP(&ctx.output, "output", "o", outputAuto, "Output format: auto, table or ids")

	rootCmd.AddCommand(newAddCommand(ctx))
	rootCmd.AddCommand(newDeleteCommand(ctx))
	rootCmd.AddCommand(newPropCommand(ctx))
	rootCmd.AddCommand(newViewCommand(ctx))
	rootCmd.AddCommand(newGroupsCommand(ctx))
	rootCmd.AddCommand(newReindexCommand(ctx))

	return rootCmd
}
