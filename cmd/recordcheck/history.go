package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/nao1215/recordcheck/internal/config"
	"github.com/nao1215/recordcheck/internal/database"
	"github.com/nao1215/recordcheck/internal/model"
	"github.com/spf13/cobra"
)

// errNoHistory is returned when there is nothing to compare.
var errNoHistory = errors.New("no validation history found")

// historyDateLayout is the date format accepted by --prune-before.
const historyDateLayout = "2006-01-02"

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [file]",
		Short: "List past runs and compare the latest runs of a file",
		Long: `History reads the run history recorded by 'recordcheck validate'.

Given a file, it compares the two most recent runs of that file and shows
which checks found new problems, which were resolved and which changed.
Without a file it lists the files that have recorded runs.

Examples:
  # List the files with recorded runs
  recordcheck history

  # Compare the latest two runs of a file
  recordcheck history records.csv

  # Compare the latest run with a specific run
  recordcheck history --with-run-id 5 records.csv

  # List every recorded run, or only the runs of one file
  recordcheck history --list
  recordcheck history --list records.csv

  # Include the stored issues of each run
  recordcheck history --list --verbose records.csv

  # Output the comparison as Markdown
  recordcheck history --markdown records.csv

  # Remove runs recorded before 2024
  recordcheck history --prune-before 2024-01-01`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	// Listing flags
	cmd.Flags().BoolP("list", "l", false,
		"List recorded runs (all files, or the given file)")
	cmd.Flags().IntP("limit", "n", 0,
		"Maximum number of runs to list (0 means all)")

	// Comparison flags
	cmd.Flags().Int64P("with-run-id", "i", 0,
		"Compare the latest run with the run of this ID (see --list)")

	// Maintenance flags
	cmd.Flags().String("prune-before", "",
		"Delete runs recorded before this date (format: YYYY-MM-DD)")
	cmd.Flags().String("db-dir", "",
		"History database directory (default: XDG data directory)")

	// Output format flags
	cmd.Flags().BoolP("json", "j", false, "Output comparison in JSON format")
	cmd.Flags().BoolP("markdown", "m", false, "Output comparison in Markdown format")
	cmd.Flags().Bool("csv", false, "Output comparison in CSV format")

	return cmd
}

// historyOptions holds the parsed history flags.
type historyOptions struct {
	dbDir       string
	list        bool
	limit       int
	withRunID   int64
	pruneBefore string
	format      outputFormat
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, args []string) error {
	opts, err := parseHistoryFlags(cmd)
	if err != nil {
		return err
	}

	var source string
	if len(args) > 0 {
		source = args[0]
	}

	db, err := database.Open(opts.dbDir, database.Options{CreateIfNotExists: false, EnableWAL: true})
	if errors.Is(err, database.ErrDatabaseNotFound) {
		if opts.list || (source == "" && opts.pruneBefore == "") {
			fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded yet.")
			fmt.Fprintln(cmd.OutOrStdout(), "\nUse 'recordcheck validate <file>' to validate a file.")
			return nil
		}
		return fmt.Errorf("%w (run 'recordcheck validate' first)", errNoHistory)
	}
	if err != nil {
		return fmt.Errorf("failed to open history database: %w", err)
	}
	defer db.Close()

	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	switch {
	case opts.pruneBefore != "":
		return pruneRuns(ctx, out, db, opts.pruneBefore)
	case opts.list:
		return listRuns(ctx, out, db, source, opts.limit, opts.format.verbose)
	case source == "":
		return listSources(ctx, out, db)
	default:
		return compareRuns(ctx, out, db, source, opts)
	}
}

// parseHistoryFlags reads the history flags. The database directory
// follows the same precedence as validate: flag, environment, default.
func parseHistoryFlags(cmd *cobra.Command) (historyOptions, error) {
	var opts historyOptions

	env, err := config.ParseEnv(nil)
	if err != nil {
		return opts, fmt.Errorf("configuration error: %w", err)
	}
	cfg := config.NewConfig()
	env.Apply(cfg)
	if err := changedString(cmd, "db-dir", &cfg.DBDir); err != nil {
		return opts, err
	}
	opts.dbDir = cfg.DBDir

	if opts.list, err = cmd.Flags().GetBool("list"); err != nil {
		return opts, err
	}
	if opts.limit, err = cmd.Flags().GetInt("limit"); err != nil {
		return opts, err
	}
	if opts.withRunID, err = cmd.Flags().GetInt64("with-run-id"); err != nil {
		return opts, err
	}
	if opts.pruneBefore, err = cmd.Flags().GetString("prune-before"); err != nil {
		return opts, err
	}
	if opts.format.json, err = cmd.Flags().GetBool("json"); err != nil {
		return opts, err
	}
	if opts.format.markdown, err = cmd.Flags().GetBool("markdown"); err != nil {
		return opts, err
	}
	if opts.format.csv, err = cmd.Flags().GetBool("csv"); err != nil {
		return opts, err
	}
	opts.format.verbose = getVerboseFlag(cmd)

	selected := 0
	for _, on := range []bool{opts.format.json, opts.format.markdown, opts.format.csv} {
		if on {
			selected++
		}
	}
	if selected > 1 {
		return opts, fmt.Errorf("configuration error: %w", config.ErrConflictingReportFormats)
	}

	return opts, nil
}

// listSources prints every file with recorded runs.
func listSources(ctx context.Context, out io.Writer, db *database.HistoryDB) error {
	sources, err := db.ListSources(ctx)
	if err != nil {
		return err
	}

	if len(sources) == 0 {
		fmt.Fprintln(out, "No runs recorded yet.")
		fmt.Fprintln(out, "\nUse 'recordcheck validate <file>' to validate a file.")
		return nil
	}

	fmt.Fprintf(out, "Recorded sources (%d):\n\n", len(sources))
	for _, source := range sources {
		fmt.Fprintf(out, "  %s\n", source)
	}

	fmt.Fprintln(out, "\nUse 'recordcheck history <file>' to compare the latest two runs of a file,")
	fmt.Fprintln(out, "or 'recordcheck history --list' to list every run.")
	return nil
}

// listRuns prints recorded runs, newest first. In verbose mode the stored
// issues of each run are listed under it.
func listRuns(ctx context.Context, out io.Writer, db *database.HistoryDB, source string, limit int, verbose bool) error {
	runs, err := db.ListRuns(ctx, source, limit)
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		if source != "" {
			fmt.Fprintf(out, "No runs recorded for %s\n", source)
		} else {
			fmt.Fprintln(out, "No runs recorded yet.")
		}
		fmt.Fprintln(out, "\nUse 'recordcheck validate <file>' to validate a file.")
		return nil
	}

	fmt.Fprintf(out, "Recorded runs (%d):\n\n", len(runs))
	fmt.Fprintf(out, "  %-6s  %-19s  %8s  %8s  %8s  %-6s  %s\n",
		"ID", "Date", "Records", "Complete", "Affected", "Review", "Source")
	fmt.Fprintln(out, "  "+strings.Repeat("-", 90))

	for _, run := range runs {
		review := "no"
		if run.NeedsReview {
			review = "yes"
		}
		fmt.Fprintf(out, "  %-6d  %-19s  %8d  %7.2f%%  %8d  %-6s  %s\n",
			run.ID,
			run.Timestamp.Local().Format(time.DateTime),
			run.TotalRecords,
			run.CompletenessRate,
			run.AffectedRecords,
			review,
			run.Source,
		)

		if !verbose {
			continue
		}
		issues, err := db.GetRunIssues(ctx, run.ID)
		if err != nil {
			return err
		}
		for _, issue := range issues {
			if issue.Count == 0 {
				continue
			}
			fmt.Fprintf(out, "  %-6s  [%-6s] %s\n", "", issue.Severity, issue.Description)
		}
	}

	fmt.Fprintln(out, "\nUse 'recordcheck history <file>' to compare the latest two runs of a file.")
	return nil
}

// compareRuns compares the latest run of source with the previous run, or
// with the run given by --with-run-id.
func compareRuns(ctx context.Context, out io.Writer, db *database.HistoryDB, source string, opts historyOptions) error {
	latest, err := db.GetLatestRuns(ctx, source, 2)
	if err != nil {
		return err
	}
	if len(latest) == 0 {
		return fmt.Errorf("%w for %s", errNoHistory, source)
	}

	current := latest[0]
	var previous *model.ValidationReport

	if opts.withRunID > 0 {
		previous, err = db.GetRunByID(ctx, opts.withRunID)
		if err != nil {
			return err
		}
		if database.SourceKey(previous.Source) != database.SourceKey(source) {
			return fmt.Errorf("run %d belongs to %s, not %s", opts.withRunID, previous.Source, source)
		}
	} else {
		if len(latest) < 2 {
			return fmt.Errorf("at least 2 runs are required for comparison (found %d)", len(latest))
		}
		previous = latest[1]
	}

	c := model.Compare(previous, current)
	_, err = newReportWriter(out, opts.format).WriteComparison(c)
	return err
}

// pruneRuns deletes runs recorded before the given date.
func pruneRuns(ctx context.Context, out io.Writer, db *database.HistoryDB, before string) error {
	cutoff, err := time.ParseInLocation(historyDateLayout, before, time.Local)
	if err != nil {
		return fmt.Errorf("invalid date format (use YYYY-MM-DD): %w", err)
	}

	removed, err := db.DeleteRunsBefore(ctx, cutoff)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Removed %d run(s) recorded before %s\n", removed, before)
	return nil
}
