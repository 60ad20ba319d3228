// Package model defines shared data structures.
package model

// SingleSamplePolicy decides how a one-frame series is summarized.
type SingleSamplePolicy string

const (
	// SingleSampleZero clamps std and confidence half-width to 0 and marks the summary degenerate.
	SingleSampleZero SingleSamplePolicy = "zero"
	// SingleSampleError rejects one-frame series.
	SingleSampleError SingleSamplePolicy = "error"
)

// Config defines a single run.
type Config struct {
	InputDir        string
	OutputDir       string
	Extension       string
	Delimiter       rune
	ConfidenceLevel float64
	SingleSample    SingleSamplePolicy
	DPI             float64
	ErrorFigure     string
	TrackFigure     string
	Workbook        string
}

// InputFile identifies one measurement log.
type InputFile struct {
	Path    string
	Name    string
	SortKey int
	Label   string
}

// FrameRecord is one row of a measurement log.
type FrameRecord struct {
	FrameIndex int
	ErrorX     float64
	ErrorY     float64
	DistX      float64
	DistY      float64
}

// SummaryStatistics holds the error summary of one series.
type SummaryStatistics struct {
	SampleCount         int
	MeanError           float64
	StdError            float64
	ConfidenceLevel     float64
	ConfidenceHalfWidth float64
	LowerBand           float64
	UpperBand           float64
	RMSE                float64
	MedianError         float64
	MaxError            float64
	P95Error            float64
	// Degenerate is set when SampleCount is 1 and std/half-width were clamped to 0.
	Degenerate bool
}

// Series is all measurements and derived statistics of one input file.
type Series struct {
	Label         string
	Source        InputFile
	Frames        []FrameRecord
	AbsoluteError []float64
	Summary       SummaryStatistics
}

// SeriesCollection is the ordered result of one aggregation run.
type SeriesCollection struct {
	Series []Series
}

// Len returns the number of series.
func (c SeriesCollection) Len() int {
	return len(c.Series)
}

// Labels returns the series labels in collection order.
func (c SeriesCollection) Labels() []string {
	labels := make([]string, len(c.Series))
	for i, s := range c.Series {
		labels[i] = s.Label
	}
	return labels
}

// LegendLabel formats a series label the way figures and summaries show it.
func LegendLabel(label string) string {
	return label + " mm"
}
