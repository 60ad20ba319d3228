// Package main provides the CLI entrypoint for specklerr.
package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/verte-zerg/specklerr/internal/aggregate"
	"github.com/verte-zerg/specklerr/internal/artifact"
	"github.com/verte-zerg/specklerr/internal/config"
	"github.com/verte-zerg/specklerr/internal/discovery"
	"github.com/verte-zerg/specklerr/internal/export"
	"github.com/verte-zerg/specklerr/internal/model"
	"github.com/verte-zerg/specklerr/internal/render"
	"github.com/verte-zerg/specklerr/internal/stats"
)

const (
	defaultInputDir     = "data/csv_error_data"
	defaultOutputDir    = "plots/DGaO_revised_plots"
	defaultExtension    = ".csv"
	defaultDelimiter    = ","
	defaultConfidence   = stats.DefaultConfidenceLevel
	defaultSingleSample = string(model.SingleSampleZero)
	defaultDPI          = render.DefaultDPI
	defaultErrorFigure  = "Fig_2.png"
	defaultTrackFigure  = "Fig_3.png"
	defaultWorkbook     = "summary.xlsx"
	defaultCurveWindow  = 1
	defaultCurveHeight  = 10
)

var (
	runConfigPath   string
	runInputDir     string
	runExtension    string
	runDelimiter    string
	runConfidence   float64
	runSingleSample string
	runVerbose      bool

	runOutputDir  string
	runDPI        float64
	runNoFigures  bool
	runNoWorkbook bool

	summaryWindow int
	summaryHeight int
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "specklerr",
		Short:         "Laser speckle tracking error statistics and figures",
		SilenceUsage:  true,
		SilenceErrors: false,
		Args:          cobra.NoArgs,
		RunE:          runRunCmd,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&runConfigPath, "config", "", "config file (default: $XDG_CONFIG_HOME/specklerr/config.toml)")
	flags.StringVar(&runInputDir, "input", defaultInputDir, "directory with measurement logs")
	flags.StringVar(&runExtension, "ext", defaultExtension, "file extension of measurement logs")
	flags.StringVar(&runDelimiter, "delimiter", defaultDelimiter, "field delimiter (single character or \"tab\")")
	flags.Float64Var(&runConfidence, "confidence", defaultConfidence, "two-tailed confidence level (0-1)")
	flags.StringVar(&runSingleSample, "single-sample", defaultSingleSample, "single-frame series policy: zero|error")
	flags.BoolVar(&runVerbose, "verbose", false, "print debug diagnostics to stderr")
	addOutputFlags(rootCmd)

	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newSummaryCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

func addOutputFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&runOutputDir, "output", defaultOutputDir, "directory for figures and workbook")
	cmd.Flags().Float64Var(&runDPI, "dpi", defaultDPI, "figure resolution in dots per inch")
	cmd.Flags().BoolVar(&runNoFigures, "no-figures", false, "skip PNG figures")
	cmd.Flags().BoolVar(&runNoWorkbook, "no-workbook", false, "skip the xlsx workbook")
}

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Aggregate logs and write figures and workbook",
		Args:  cobra.NoArgs,
		RunE:  runRunCmd,
	}
	addOutputFlags(cmd)
	return cmd
}

func runRunCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	logger := newLogger(cmd.ErrOrStderr(), runVerbose)
	logger.Debug("resolved config", "input", cfg.InputDir, "output", cfg.OutputDir, "ext", cfg.Extension,
		"confidence", cfg.ConfidenceLevel, "single_sample", cfg.SingleSample, "dpi", cfg.DPI)

	collection, err := aggregate.New(cfg,
		aggregate.WithSummaryWriter(cmd.OutOrStdout()),
		aggregate.WithLogger(logger),
	).Run()
	if err != nil {
		return inputLoadError(cfg, err)
	}
	if collection.Len() == 0 {
		logErrf("No %s files found in %s\n", cfg.Extension, cfg.InputDir)
	}
	logger.Debug("aggregated series", "labels", collection.Labels())
	return writeArtifacts(cfg, collection)
}

func writeArtifacts(cfg model.Config, collection model.SeriesCollection) error {
	var files []artifact.File
	add := func(name string, fill func(io.Writer) error) {
		files = append(files, artifact.File{Path: filepath.Join(cfg.OutputDir, name), Fill: fill})
	}
	if !runNoFigures {
		opts := render.Options{DPI: cfg.DPI}
		add(cfg.ErrorFigure, func(w io.Writer) error { return render.ErrorFigure(w, collection, opts) })
		add(cfg.TrackFigure, func(w io.Writer) error { return render.TrackFigure(w, collection, opts) })
	}
	if !runNoWorkbook {
		add(cfg.Workbook, func(w io.Writer) error { return export.Workbook(w, collection) })
	}
	if len(files) == 0 {
		logErrln("Nothing to write: --no-figures and --no-workbook are both set")
		return nil
	}

	if err := artifact.EnsureDir(cfg.OutputDir); err != nil {
		return err
	}
	if err := artifact.WriteAll(files); err != nil {
		return err
	}
	for _, f := range files {
		logErrf("Wrote %s\n", f.Path)
	}
	return nil
}

func newSummaryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print the summary table and error curves without writing files",
		Args:  cobra.NoArgs,
		RunE:  runSummaryCmd,
	}
	cmd.Flags().IntVar(&summaryWindow, "window", defaultCurveWindow, "moving average window for the error curves")
	cmd.Flags().IntVar(&summaryHeight, "height", defaultCurveHeight, "plot height in rows")
	return cmd
}

func runSummaryCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	if summaryWindow <= 0 {
		return fmt.Errorf("--window must be > 0")
	}
	if summaryHeight <= 0 {
		return fmt.Errorf("--height must be > 0")
	}
	logger := newLogger(cmd.ErrOrStderr(), runVerbose)

	collection, err := aggregate.New(cfg,
		aggregate.WithSummaryWriter(nil),
		aggregate.WithLogger(logger),
	).Run()
	if err != nil {
		return inputLoadError(cfg, err)
	}

	out := cmd.OutOrStdout()
	if isTerminal(out) {
		err = stats.RenderStyledSummary(out, collection)
	} else {
		err = stats.RenderSummary(out, collection)
	}
	if err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}
	if err := stats.RenderErrorCurves(out, collection, summaryWindow, 0, summaryHeight, false); err != nil {
		return fmt.Errorf("failed to write error curves: %w", err)
	}
	return nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := configPath()
	if err := ensureConfigFile(path); err != nil {
		return err
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func ensureConfigFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}
	return nil
}

func configPath() string {
	if runConfigPath != "" {
		return runConfigPath
	}
	return config.DefaultConfigPath()
}

// resolveConfig merges flag values with the config file. Explicit flags win.
func resolveConfig(cmd *cobra.Command) (model.Config, error) {
	fileCfg, err := config.LoadConfig(configPath())
	if err != nil {
		return model.Config{}, fmt.Errorf("failed to load config: %w", err)
	}
	run := fileCfg.Run
	applyStringConfig(cmd, "input", &runInputDir, run.InputDir)
	applyStringConfig(cmd, "output", &runOutputDir, run.OutputDir)
	applyStringConfig(cmd, "ext", &runExtension, run.Extension)
	applyStringConfig(cmd, "delimiter", &runDelimiter, run.Delimiter)
	applyFloatConfig(cmd, "confidence", &runConfidence, run.Confidence)
	applyStringConfig(cmd, "single-sample", &runSingleSample, run.SingleSample)
	applyFloatConfig(cmd, "dpi", &runDPI, run.DPI)

	delimiter, err := parseDelimiter(runDelimiter)
	if err != nil {
		return model.Config{}, err
	}
	cfg := model.Config{
		InputDir:        runInputDir,
		OutputDir:       runOutputDir,
		Extension:       runExtension,
		Delimiter:       delimiter,
		ConfidenceLevel: runConfidence,
		SingleSample:    model.SingleSamplePolicy(strings.ToLower(strings.TrimSpace(runSingleSample))),
		DPI:             runDPI,
		ErrorFigure:     stringOr(run.ErrorFigure, defaultErrorFigure),
		TrackFigure:     stringOr(run.TrackFigure, defaultTrackFigure),
		Workbook:        stringOr(run.Workbook, defaultWorkbook),
	}
	if err := validateConfig(cfg); err != nil {
		return model.Config{}, err
	}
	return cfg, nil
}

func parseDelimiter(value string) (rune, error) {
	switch value {
	case "tab", `\t`:
		return '\t', nil
	}
	if utf8.RuneCountInString(value) != 1 {
		return 0, fmt.Errorf("--delimiter must be a single character")
	}
	r, _ := utf8.DecodeRuneInString(value)
	if r == '"' || r == '\r' || r == '\n' || r == utf8.RuneError {
		return 0, fmt.Errorf("--delimiter %q is not allowed", value)
	}
	return r, nil
}

func validateConfig(cfg model.Config) error {
	if strings.TrimSpace(cfg.InputDir) == "" {
		return fmt.Errorf("--input must not be empty")
	}
	if strings.TrimSpace(cfg.OutputDir) == "" {
		return fmt.Errorf("--output must not be empty")
	}
	if cfg.Extension == "" {
		return fmt.Errorf("--ext must not be empty")
	}
	if !(cfg.ConfidenceLevel > 0 && cfg.ConfidenceLevel < 1) {
		return fmt.Errorf("--confidence must be between 0 and 1 (exclusive)")
	}
	switch cfg.SingleSample {
	case model.SingleSampleZero, model.SingleSampleError:
	default:
		return fmt.Errorf("--single-sample must be %q or %q", model.SingleSampleZero, model.SingleSampleError)
	}
	if cfg.DPI <= 0 {
		return fmt.Errorf("--dpi must be > 0")
	}
	for _, name := range []string{cfg.ErrorFigure, cfg.TrackFigure, cfg.Workbook} {
		if name == "" || filepath.Base(name) != name {
			return fmt.Errorf("output file name %q must be a plain file name", name)
		}
	}
	return nil
}

func inputLoadError(cfg model.Config, err error) error {
	var derr *discovery.DiscoveryError
	if !errors.As(err, &derr) {
		return err
	}
	lines := []string{
		err.Error(),
		fmt.Sprintf("expected measurement logs (*%s) in: %s", cfg.Extension, cfg.InputDir),
		"Set the directory with --input or [run] input in the config file",
	}
	return fmt.Errorf("%s", strings.Join(lines, "\n"))
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyFloatConfig(cmd *cobra.Command, name string, target, value *float64) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func stringOr(value *string, fallback string) string {
	if value == nil {
		return fallback
	}
	return *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# specklerr configuration
# Uncomment a value to enable it. CLI flags override config values.

[run]
# input = %q         # Directory with measurement logs
# output = %q   # Directory for figures and workbook
# ext = %q                         # File extension of measurement logs
# delimiter = %q                     # Field delimiter ("tab" for tab separated)
# confidence = %.2f                    # Two-tailed confidence level (0-1)
# single-sample = %q                # Single-frame series policy: zero|error
# dpi = %.0f                            # Figure resolution
# error-figure = %q          # Error curve figure file name
# track-figure = %q          # Position tracking figure file name
# workbook = %q           # Summary workbook file name
`,
		defaultInputDir,
		defaultOutputDir,
		defaultExtension,
		defaultDelimiter,
		defaultConfidence,
		defaultSingleSample,
		float64(defaultDPI),
		defaultErrorFigure,
		defaultTrackFigure,
		defaultWorkbook,
	)
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

func logErrln(args ...any) {
	if _, err := fmt.Fprintln(os.Stderr, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
