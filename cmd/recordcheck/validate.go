package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/nao1215/recordcheck/internal/config"
	"github.com/nao1215/recordcheck/internal/database"
	"github.com/nao1215/recordcheck/internal/log"
	"github.com/nao1215/recordcheck/internal/model"
	"github.com/nao1215/recordcheck/internal/pipeline"
	"github.com/nao1215/recordcheck/internal/report"
	"github.com/nao1215/recordcheck/internal/tabular"
	"github.com/spf13/cobra"
)

// errLoadFailed is returned when at least one input file could not be loaded.
var errLoadFailed = errors.New("input files could not be loaded")

// artifactStampLayout is the timestamp suffix of every output file name.
const artifactStampLayout = "20060102_150405"

// NewValidateCmd creates the validate command.
func NewValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate [file...]",
		Short: "Validate and clean health record files",
		Long: `Validate runs the check catalog over one or more CSV/TSV files.

The checks run in a fixed order:
- Remove duplicate records (same patient_id and test_date), keeping the first
- Flag test dates in the future or before 2000, and ages outside 0-110
- Flag vital signs outside physiological ranges
- Report missing required fields (patient_id, test_date, facility_code)
- Normalize phone numbers to digits and flag invalid ones

For every file three artifacts are written to the output directory:
  cleaned_<name>_<YYYYMMDD_HHMMSS>.csv             the cleaned data
  validation_report_<name>_<YYYYMMDD_HHMMSS>.json  the full report
  validation_summary_<name>_<YYYYMMDD_HHMMSS>.csv  one row per check
When another run already uses a name, a _2, _3, ... suffix is added.

Issues found in the data never make the command fail. It exits non-zero
only when a file cannot be read or the configuration is invalid.

Examples:
  # Validate one file
  recordcheck validate records.csv

  # Validate several files, two at a time
  recordcheck validate --batch 2 clinic-a.csv clinic-b.tsv

  # Print the report as Markdown into a file
  recordcheck validate --markdown -o report.md records.csv

  # Use a custom rules file and skip the cleaned output
  recordcheck validate -c rules.yaml --no-clean records.csv

Environment variables (also read from .env):
  RECORDCHECK_OUTPUT_DIR, RECORDCHECK_BATCH_SIZE, RECORDCHECK_CONFIG,
  RECORDCHECK_DB_DIR, RECORDCHECK_LOG_FORMAT, RECORDCHECK_NO_DB,
  RECORDCHECK_NO_CLEAN, RECORDCHECK_VERBOSE`,
		Args: cobra.ArbitraryArgs,
		RunE: runValidateCmd,
	}

	// Output flags
	cmd.Flags().StringP("output-dir", "d", config.DefaultOutputDir,
		"Directory for cleaned data, JSON reports and CSV summaries")
	cmd.Flags().Bool("no-clean", false,
		"Do not write the cleaned dataset")

	// Batch flags
	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize,
		"Number of files validated concurrently")

	// Rules file
	cmd.Flags().StringP("config", "c", "",
		"Rules file path (default: .recordcheck in current dir, XDG config dir or home dir)")

	// History flags
	cmd.Flags().Bool("no-db", false,
		"Do not record the run in the history database")
	cmd.Flags().String("db-dir", "",
		"History database directory (default: XDG data directory)")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")
	cmd.Flags().String("log-format", config.LogFormatText,
		"Log format: text or json")

	return cmd
}

// runValidateCmd executes the validate command.
func runValidateCmd(cmd *cobra.Command, args []string) error {
	if err := config.LoadDotEnv(); err != nil {
		return err
	}
	env, err := config.ParseEnv(nil)
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	cfg, err := buildConfig(cmd, args, env)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := log.New(cmd.ErrOrStderr(), cfg.LogFormat, cfg.Verbose)
	slog.SetDefault(logger)

	// Cancel between checks and between files on interrupt
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runValidate(ctx, cfg, logger, cmd.OutOrStdout(), cmd.ErrOrStderr())
}

// buildConfig creates a Config from defaults, the environment and the
// command flags, in that order. Only flags the user set override earlier
// layers.
func buildConfig(cmd *cobra.Command, args []string, env config.Env) (*config.Config, error) {
	cfg := config.NewConfig()
	env.Apply(cfg)

	if err := changedString(cmd, "output-dir", &cfg.OutputDir); err != nil {
		return nil, err
	}
	if err := changedString(cmd, "config", &cfg.ConfigFilePath); err != nil {
		return nil, err
	}
	if err := changedString(cmd, "db-dir", &cfg.DBDir); err != nil {
		return nil, err
	}
	if err := changedString(cmd, "log-format", &cfg.LogFormat); err != nil {
		return nil, err
	}

	if cmd.Flags().Changed("batch") {
		n, err := cmd.Flags().GetInt("batch")
		if err != nil {
			return nil, err
		}
		cfg.BatchSize = n
	}

	noClean, err := cmd.Flags().GetBool("no-clean")
	if err != nil {
		return nil, err
	}
	if noClean {
		cfg.WriteCleaned = false
	}

	noDB, err := cmd.Flags().GetBool("no-db")
	if err != nil {
		return nil, err
	}
	if noDB {
		cfg.SaveToDB = false
	}

	cfg.JSONReport, err = cmd.Flags().GetBool("json")
	if err != nil {
		return nil, err
	}

	cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown")
	if err != nil {
		return nil, err
	}

	cfg.ReportFile, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, err
	}

	if getVerboseFlag(cmd) {
		cfg.Verbose = true
	}

	cfg.Inputs = args

	// An explicit rules file that does not exist is an error; without one
	// the built-in catalog applies.
	if err := config.LoadRules(cfg); err != nil {
		return nil, fmt.Errorf("failed to load rules: %w", err)
	}

	return cfg, nil
}

// changedString copies a string flag into dst if the user set it.
func changedString(cmd *cobra.Command, name string, dst *string) error {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, err := cmd.Flags().GetString(name)
	if err != nil {
		return err
	}
	*dst = v
	return nil
}

// runValidate validates every input and writes artifacts, history and the
// console report.
func runValidate(ctx context.Context, cfg *config.Config, logger *slog.Logger, stdout, stderr io.Writer) error {
	rules, err := cfg.Rules()
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger.Info("starting validation",
		"inputs", len(cfg.Inputs),
		"batchSize", cfg.BatchSize,
		"outputDir", cfg.OutputDir,
		"saveToDB", cfg.SaveToDB,
	)

	var db *database.HistoryDB
	if cfg.SaveToDB {
		db, err = database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open history database: %w", err)
		}
		defer db.Close()
		logger.Debug("history database opened", "path", db.Path())
	}

	logger.Debug("check catalog", "checks", pipeline.DefaultPipeline(rules).StepNames())

	bp := pipeline.NewBatchProcessor(
		func() *pipeline.Pipeline {
			return pipeline.DefaultPipeline(rules,
				pipeline.WithLogger(logger),
				pipeline.WithContinueOnError(true),
			)
		},
		pipeline.WithConcurrency(cfg.BatchSize),
		pipeline.WithBatchLogger(logger),
		pipeline.WithVersion(getVersion()),
	)

	total := len(cfg.Inputs)
	results := make([]*pipeline.Result, total)
	startTime := time.Now()

	// Guarded by mu, like results.
	usedBases := make(map[string]bool)

	var mu sync.Mutex
	batchErr := bp.ProcessBatchWithCallback(ctx, cfg.Inputs, func(res *pipeline.Result, index int) {
		mu.Lock()
		defer mu.Unlock()

		results[index] = res
		if !res.Loaded() {
			fmt.Fprintf(stderr, "[%d/%d] Failed to load %s: %v\n", index+1, total, res.Path, res.Err)
			return
		}

		if err := emitArtifacts(ctx, cfg, db, res, usedBases, logger); err != nil {
			logger.Error("failed to write outputs", "source", res.Path, "error", err)
			fmt.Fprintf(stderr, "[%d/%d] Output error for %s: %v\n", index+1, total, res.Path, err)
			return
		}
		fmt.Fprintf(stderr, "[%d/%d] Validated %s (%d of %d records kept)\n",
			index+1, total, res.Path, res.Report.ValidRecords, res.Report.TotalRecords)
	})

	logger.Info("validation finished", "elapsed", time.Since(startTime).Round(time.Millisecond))

	if err := outputReports(cfg, stdout, results); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	if batchErr != nil {
		return fmt.Errorf("validation interrupted: %w", batchErr)
	}

	failed := 0
	for _, res := range results {
		if res != nil && !res.Loaded() {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%w: %d of %d", errLoadFailed, failed, total)
	}
	return nil
}

// emitArtifacts writes the cleaned dataset, the JSON report and the CSV
// summary of one run, then records it in the history database.
// Cancelled runs produce no output. usedBases holds the artifact names taken
// by earlier runs of the batch.
func emitArtifacts(
	ctx context.Context,
	cfg *config.Config,
	db *database.HistoryDB,
	res *pipeline.Result,
	usedBases map[string]bool,
	logger *slog.Logger,
) error {
	rep := res.Report
	if rep.Cancelled {
		logger.Warn("run cancelled, outputs skipped", "source", res.Path)
		return nil
	}

	if err := os.MkdirAll(cfg.OutputDir, 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	base := uniqueArtifactBase(cfg.OutputDir, artifactBase(res.Path, rep.Timestamp), usedBases)
	paths := artifactPaths(cfg.OutputDir, base)

	if cfg.WriteCleaned {
		if err := tabular.WriteCSV(res.Dataset, paths.cleaned); err != nil {
			return err
		}
		rep.CleanedFile = paths.cleaned
	}

	if err := writeReportFile(paths.report, rep, func(w io.Writer) report.Writer {
		return report.NewJSONWriter(w, report.WithPrettyPrint())
	}); err != nil {
		return err
	}

	if err := writeReportFile(paths.summary, rep, func(w io.Writer) report.Writer {
		return report.NewCSVWriter(w)
	}); err != nil {
		return err
	}

	logger.Debug("outputs written", "source", res.Path, "report", paths.report, "summary", paths.summary)

	if db != nil {
		// A completed run is recorded even if the batch is interrupted later.
		id, err := db.SaveRun(context.WithoutCancel(ctx), rep)
		if err != nil {
			return err
		}
		logger.Debug("run saved to history", "source", res.Path, "id", id)
	}

	return nil
}

// artifactBase returns "<name>_<YYYYMMDD_HHMMSS>" for an input path, where
// name is the file name without its extension.
func artifactBase(path string, ts time.Time) string {
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return name + "_" + ts.Format(artifactStampLayout)
}

// runArtifacts are the output file paths of one run.
type runArtifacts struct {
	cleaned string
	report  string
	summary string
}

// artifactPaths returns the output file paths for base inside dir.
func artifactPaths(dir, base string) runArtifacts {
	return runArtifacts{
		cleaned: filepath.Join(dir, "cleaned_"+base+".csv"),
		report:  filepath.Join(dir, "validation_report_"+base+".json"),
		summary: filepath.Join(dir, "validation_summary_"+base+".csv"),
	}
}

// uniqueArtifactBase returns base, or base with a "_2", "_3", ... suffix when
// an earlier run of the batch or a file in dir already uses that name. Two
// inputs with the same file name validated in the same second would
// otherwise overwrite each other's outputs. The chosen name is added to used.
func uniqueArtifactBase(dir, base string, used map[string]bool) string {
	candidate := base
	for n := 2; used[candidate] || artifactsExist(artifactPaths(dir, candidate)); n++ {
		candidate = fmt.Sprintf("%s_%d", base, n)
	}
	used[candidate] = true
	return candidate
}

// artifactsExist reports whether any of the run's output files exists.
func artifactsExist(a runArtifacts) bool {
	for _, path := range []string{a.cleaned, a.report, a.summary} {
		if _, err := os.Stat(path); err == nil {
			return true
		}
	}
	return false
}

// writeReportFile renders rep into path with owner-only permissions.
func writeReportFile(path string, rep *model.ValidationReport, newWriter func(io.Writer) report.Writer) (err error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600) //nolint:gosec // path is built from the output directory
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	if _, err := newWriter(f).Write(rep); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
