package stats

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/verte-zerg/specklerr/internal/model"
)

var summaryHeaders = []string{"Series", "Frames", "Mean", "Std", "CI Low", "CI High", "RMSE", "Median", "P95", "Max"}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#C89A3A")).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	numberStyle = cellStyle.Align(lipgloss.Right)
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#4A4A4A"))
)

// Report contains precomputed rows for summary rendering.
type Report struct {
	ConfidenceLevel float64
	Rows            []ReportRow
	Best            string
	Degenerate      int
}

// ReportRow is one series of the summary table.
type ReportRow struct {
	Label      string
	Frames     int
	Summary    model.SummaryStatistics
	Trend      string
	Degenerate bool
}

// Cells formats the row in summaryHeaders order.
func (r ReportRow) Cells() []string {
	label := model.LegendLabel(r.Label)
	if r.Degenerate {
		label += "*"
	}
	s := r.Summary
	return []string{
		label,
		fmt.Sprintf("%d", r.Frames),
		formatMM(s.MeanError),
		formatMM(s.StdError),
		formatMM(s.LowerBand),
		formatMM(s.UpperBand),
		formatMM(s.RMSE),
		formatMM(s.MedianError),
		formatMM(s.P95Error),
		formatMM(s.MaxError),
	}
}

// BuildReport prepares summary rows in collection order.
func BuildReport(collection model.SeriesCollection) Report {
	report := Report{ConfidenceLevel: DefaultConfidenceLevel}
	if collection.Len() > 0 {
		report.ConfidenceLevel = collection.Series[0].Summary.ConfidenceLevel
	}
	for _, s := range collection.Series {
		width := len(s.AbsoluteError)
		if width > trendWidth {
			width = trendWidth
		}
		report.Rows = append(report.Rows, ReportRow{
			Label:      s.Label,
			Frames:     len(s.Frames),
			Summary:    s.Summary,
			Trend:      Sparkline(resampleSeries(s.AbsoluteError, width)),
			Degenerate: s.Summary.Degenerate,
		})
		if s.Summary.Degenerate {
			report.Degenerate++
		}
	}
	if best := RankByRMSE(collection, 1); len(best) == 1 {
		report.Best = best[0]
	}
	return report
}

// RenderStyledSummary prints the summary as a bordered lipgloss table, for terminals.
func RenderStyledSummary(w io.Writer, collection model.SeriesCollection) error {
	if collection.Len() == 0 {
		_, err := fmt.Fprintln(w, mutedStyle.Render("No series found."))
		return err
	}
	report := BuildReport(collection)
	rows := make([][]string, 0, len(report.Rows))
	for _, r := range report.Rows {
		rows = append(rows, r.Cells())
	}
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col == 0:
				return cellStyle
			default:
				return numberStyle
			}
		}).
		Headers(summaryHeaders...).
		Rows(rows...)

	title := fmt.Sprintf("Summary (%.0f%% confidence)", report.ConfidenceLevel*100)
	if _, err := fmt.Fprintln(w, headerStyle.Render(title)); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, t.String()); err != nil {
		return err
	}
	return renderFootnotes(w, report)
}

func formatMM(v float64) string {
	return fmt.Sprintf("%.4f", v)
}
