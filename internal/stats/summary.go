// Package stats contains error statistics and terminal reporting.
package stats

import (
	"errors"
	"fmt"
	"math"

	mstats "github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/verte-zerg/specklerr/internal/model"
)

// DefaultConfidenceLevel is the two-tailed level of the band around the mean.
const DefaultConfidenceLevel = 0.95

// ErrInvalidConfidence is returned for confidence levels outside (0, 1).
var ErrInvalidConfidence = errors.New("confidence level must be between 0 and 1")

// InsufficientSampleError reports a series too short for the requested summary.
type InsufficientSampleError struct {
	Count int
}

func (e *InsufficientSampleError) Error() string {
	if e.Count == 0 {
		return "series has no frames"
	}
	return fmt.Sprintf("series has %d frame(s); confidence band needs at least 2", e.Count)
}

// NonFiniteError reports a statistic that overflowed to Inf or NaN.
type NonFiniteError struct {
	Statistic string
	Value     float64
}

func (e *NonFiniteError) Error() string {
	return fmt.Sprintf("%s is not finite (%v)", e.Statistic, e.Value)
}

// Options controls Summarize.
type Options struct {
	ConfidenceLevel float64
	SingleSample    model.SingleSamplePolicy
}

// DefaultOptions returns a 95% band with single samples clamped to zero.
func DefaultOptions() Options {
	return Options{
		ConfidenceLevel: DefaultConfidenceLevel,
		SingleSample:    model.SingleSampleZero,
	}
}

// AbsoluteErrors returns sqrt(errorX² + errorY²) for every frame, in frame order.
func AbsoluteErrors(frames []model.FrameRecord) []float64 {
	out := make([]float64, len(frames))
	for i, f := range frames {
		out[i] = math.Hypot(f.ErrorX, f.ErrorY)
	}
	return out
}

// Summarize computes mean, sample standard deviation, Student's-t band and RMSE of abs.
//
// With one sample the standard deviation and the band are undefined. SingleSampleZero
// reports both as 0 and sets Degenerate; SingleSampleError returns InsufficientSampleError.
func Summarize(abs []float64, opts Options) (model.SummaryStatistics, error) {
	level := opts.ConfidenceLevel
	if level == 0 {
		level = DefaultConfidenceLevel
	}
	if !(level > 0 && level < 1) {
		return model.SummaryStatistics{}, ErrInvalidConfidence
	}
	n := len(abs)
	if n == 0 {
		return model.SummaryStatistics{}, &InsufficientSampleError{Count: 0}
	}
	if n == 1 && opts.SingleSample == model.SingleSampleError {
		return model.SummaryStatistics{}, &InsufficientSampleError{Count: 1}
	}

	mean := stat.Mean(abs, nil)
	summary := model.SummaryStatistics{
		SampleCount:     n,
		MeanError:       mean,
		ConfidenceLevel: level,
		RMSE:            rootMeanSquare(abs),
	}
	if n == 1 {
		summary.Degenerate = true
	} else {
		summary.StdError = stat.StdDev(abs, nil)
		summary.ConfidenceHalfWidth = halfWidth(summary.StdError, n, level)
	}
	summary.LowerBand = mean - summary.ConfidenceHalfWidth
	summary.UpperBand = mean + summary.ConfidenceHalfWidth
	if err := checkFinite(summary); err != nil {
		return model.SummaryStatistics{}, err
	}

	if err := describe(abs, &summary); err != nil {
		return model.SummaryStatistics{}, err
	}
	return summary, nil
}

// rootMeanSquare falls back to gonum's scaled norm when the plain sum of squares overflows.
func rootMeanSquare(abs []float64) float64 {
	n := float64(len(abs))
	if sumSq := floats.Dot(abs, abs); !math.IsInf(sumSq, 1) {
		return math.Sqrt(sumSq / n)
	}
	return floats.Norm(abs, 2) / math.Sqrt(n)
}

// TQuantile returns the quantile of Student's t with df degrees of freedom at p.
func TQuantile(p float64, df int) float64 {
	t := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(df)}
	return t.Quantile(p)
}

func halfWidth(std float64, n int, level float64) float64 {
	if std == 0 {
		return 0
	}
	alpha := 1 - level
	return TQuantile(1-alpha/2, n-1) * std / math.Sqrt(float64(n))
}

// checkFinite rejects summaries whose inputs were finite but overflowed on the way.
func checkFinite(s model.SummaryStatistics) error {
	for _, stat := range []struct {
		name  string
		value float64
	}{
		{"mean error", s.MeanError},
		{"standard deviation", s.StdError},
		{"confidence half-width", s.ConfidenceHalfWidth},
		{"lower band", s.LowerBand},
		{"upper band", s.UpperBand},
		{"rmse", s.RMSE},
	} {
		if math.IsNaN(stat.value) || math.IsInf(stat.value, 0) {
			return &NonFiniteError{Statistic: stat.name, Value: stat.value}
		}
	}
	return nil
}

func describe(abs []float64, summary *model.SummaryStatistics) error {
	median, err := mstats.Median(abs)
	if err != nil {
		return fmt.Errorf("failed to compute median: %w", err)
	}
	maxVal, err := mstats.Max(abs)
	if err != nil {
		return fmt.Errorf("failed to compute max: %w", err)
	}
	p95, err := mstats.Percentile(abs, 95)
	if err != nil {
		return fmt.Errorf("failed to compute percentile: %w", err)
	}
	summary.MedianError = median
	summary.MaxError = maxVal
	summary.P95Error = p95
	return nil
}

// BuildSeries derives the absolute error and summary of one loaded file.
func BuildSeries(file model.InputFile, frames []model.FrameRecord, opts Options) (model.Series, error) {
	abs := AbsoluteErrors(frames)
	summary, err := Summarize(abs, opts)
	if err != nil {
		return model.Series{}, err
	}
	return model.Series{
		Label:         file.Label,
		Source:        file,
		Frames:        frames,
		AbsoluteError: abs,
		Summary:       summary,
	}, nil
}
