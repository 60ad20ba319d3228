// Package aggregate drives discovery, loading and summarizing of all logs in a directory.
package aggregate

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/verte-zerg/specklerr/internal/discovery"
	"github.com/verte-zerg/specklerr/internal/loader"
	"github.com/verte-zerg/specklerr/internal/model"
	"github.com/verte-zerg/specklerr/internal/stats"
)

// Aggregator builds a SeriesCollection from one input directory.
type Aggregator struct {
	cfg      model.Config
	summary  io.Writer
	logger   *slog.Logger
	strategy discovery.Strategy
}

// Option customizes an Aggregator.
type Option func(*Aggregator)

// WithSummaryWriter sets where per-series summary lines go. Nil discards them.
func WithSummaryWriter(w io.Writer) Option {
	return func(a *Aggregator) {
		if w == nil {
			w = io.Discard
		}
		a.summary = w
	}
}

// WithLogger sets the diagnostic logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Aggregator) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithStrategy replaces the filename convention.
func WithStrategy(strategy discovery.Strategy) Option {
	return func(a *Aggregator) {
		if strategy != nil {
			a.strategy = strategy
		}
	}
}

// New returns an Aggregator for cfg. Summary lines default to stderr.
func New(cfg model.Config, opts ...Option) *Aggregator {
	a := &Aggregator{
		cfg:      cfg,
		summary:  os.Stderr,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		strategy: discovery.LaserDiameter{},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Run processes every matching file in sort order. The first failure aborts the run and
// no partial collection is returned.
func (a *Aggregator) Run() (model.SeriesCollection, error) {
	files, err := discovery.List(a.cfg.InputDir, a.cfg.Extension)
	if err != nil {
		return model.SeriesCollection{}, err
	}
	if err := discovery.Resolve(files, a.strategy); err != nil {
		return model.SeriesCollection{}, err
	}
	discovery.Sort(files)
	a.logger.Debug("discovered input files", slog.String("dir", a.cfg.InputDir), slog.Int("count", len(files)))

	loadOpts := loader.DefaultOptions()
	if a.cfg.Delimiter != 0 {
		loadOpts.Delimiter = a.cfg.Delimiter
	}
	statOpts := stats.Options{
		ConfidenceLevel: a.cfg.ConfidenceLevel,
		SingleSample:    a.cfg.SingleSample,
	}

	series := make([]model.Series, 0, len(files))
	for _, file := range files {
		s, err := a.process(file, loadOpts, statOpts)
		if err != nil {
			return model.SeriesCollection{}, fmt.Errorf("failed to aggregate %s: %w", file.Path, err)
		}
		if err := writeSummaryLine(a.summary, s); err != nil {
			return model.SeriesCollection{}, fmt.Errorf("failed to write summary: %w", err)
		}
		series = append(series, s)
	}
	return model.SeriesCollection{Series: series}, nil
}

func (a *Aggregator) process(file model.InputFile, loadOpts loader.Options, statOpts stats.Options) (model.Series, error) {
	frames, err := loader.Load(file.Path, loadOpts)
	if err != nil {
		return model.Series{}, err
	}
	a.logger.Debug("loaded series",
		slog.String("file", file.Name),
		slog.String("label", file.Label),
		slog.Int("sort_key", file.SortKey),
		slog.Int("frames", len(frames)))
	return stats.BuildSeries(file, frames, statOpts)
}

func writeSummaryLine(w io.Writer, s model.Series) error {
	sum := s.Summary
	line := fmt.Sprintf("For %s - Mean: %s, CI: (%s, %s), RMSE: %s",
		model.LegendLabel(s.Label),
		formatValue(sum.MeanError), formatValue(sum.LowerBand), formatValue(sum.UpperBand), formatValue(sum.RMSE))
	if sum.Degenerate {
		line += " [single sample]"
	}
	_, err := fmt.Fprintln(w, line)
	return err
}

// formatValue prints the shortest round-trip decimal, keeping ".0" on whole numbers.
func formatValue(v float64) string {
	out := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsAny(out, ".IN") {
		out += ".0"
	}
	return out
}
