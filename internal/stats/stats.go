package stats

import (
	"fmt"
	"io"
	"math"
	"strings"

	"gonum.org/v1/gonum/floats"

	"github.com/verte-zerg/specklerr/internal/model"
)

const (
	sparkChars = " .:-=+*#%@"
	trendWidth = 16
)

// MovingAverage computes a rolling mean over the provided window size. The first
// window-1 points average over what is available so far.
func MovingAverage(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	if window <= 1 || len(values) == 0 {
		copy(out, values)
		return out
	}
	sums := floats.CumSum(make([]float64, len(values)), values)
	for i, total := range sums {
		if i < window {
			out[i] = total / float64(i+1)
			continue
		}
		out[i] = (total - sums[i-window]) / float64(window)
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	lo, hi := floats.Min(values), floats.Max(values)
	if hi-lo < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	top := len(sparkChars) - 1
	out := make([]byte, len(values))
	for i, v := range values {
		level := int(math.Round((v - lo) / (hi - lo) * float64(top)))
		out[i] = sparkChars[min(max(level, 0), top)]
	}
	return string(out)
}

// RenderSummary prints the per-series summary table.
func RenderSummary(w io.Writer, collection model.SeriesCollection) error {
	if collection.Len() == 0 {
		_, err := fmt.Fprintln(w, "No series found.")
		return err
	}
	report := BuildReport(collection)
	if _, err := fmt.Fprintf(w, "Summary (%.0f%% confidence)\n", report.ConfidenceLevel*100); err != nil {
		return err
	}
	rows := make([][]string, 0, len(report.Rows))
	for _, r := range report.Rows {
		rows = append(rows, append(r.Cells(), r.Trend))
	}
	headers := append(append([]string(nil), summaryHeaders...), "Trend")
	rightAlign := map[int]bool{1: true, 2: true, 3: true, 4: true, 5: true, 6: true, 7: true, 8: true, 9: true}
	for _, line := range formatTable(headers, rows, rightAlign) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	if err := renderFootnotes(w, report); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// RenderErrorCurves plots the absolute error of every series against frame number.
func RenderErrorCurves(w io.Writer, collection model.SeriesCollection, window, totalWidth, height int, useColor bool) error {
	if collection.Len() == 0 {
		return nil
	}
	series := make([]Series, 0, collection.Len())
	for _, s := range collection.Series {
		series = append(series, Series{
			Name:   model.LegendLabel(s.Label),
			Values: MovingAverage(s.AbsoluteError, window),
		})
	}
	width := 0
	if totalWidth > 0 {
		width = PlotWidthFor(totalWidth)
	}
	title := "Error in XY plane"
	if window > 1 {
		title = fmt.Sprintf("%s (moving average, window %d)", title, window)
	}
	return PlotSeries(w, title, series, width, height, useColor)
}

func renderFootnotes(w io.Writer, report Report) error {
	if report.Best != "" {
		if _, err := fmt.Fprintf(w, "Lowest RMSE: %s\n", model.LegendLabel(report.Best)); err != nil {
			return err
		}
	}
	if report.Degenerate > 0 {
		if _, err := fmt.Fprintln(w, "* single frame: std and confidence band reported as 0"); err != nil {
			return err
		}
	}
	return nil
}
