// Package render draws the report figures as PNG images.
package render

import (
	"fmt"
	"io"
	"math"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/verte-zerg/specklerr/internal/model"
)

// DefaultDPI is used when Options.DPI is unset.
const DefaultDPI = 150

const (
	trackLimit = 1.3
	hexapodXY  = 0.3
)

// Options controls figure resolution.
type Options struct {
	DPI float64
}

func (o Options) dpi() float64 {
	if o.DPI <= 0 {
		return DefaultDPI
	}
	return o.DPI
}

func (o Options) size(widthIn, heightIn float64) (int, int) {
	return int(math.Round(widthIn * o.dpi())), int(math.Round(heightIn * o.dpi()))
}

var (
	gridStyle = chart.Style{
		StrokeColor:     drawing.Color{R: 128, G: 128, B: 128, A: 255},
		StrokeWidth:     0.5,
		StrokeDashArray: []float64{4, 4},
	}
	zeroAxisStyle = chart.Style{
		StrokeColor: drawing.ColorBlack,
		StrokeWidth: 1.5,
	}
)

func seriesColor(i int) drawing.Color {
	return chart.GetDefaultColor(i)
}

// ErrorFigure plots absolute error against frame number for every series, with the
// confidence band around each series mean drawn as dashed lines.
func ErrorFigure(w io.Writer, collection model.SeriesCollection, opts Options) error {
	width, height := opts.size(10, 6)

	var lines, bands []chart.Series
	maxFrames := 0
	yMin, yMax := 0.0, 0.0
	for i, s := range collection.Series {
		color := seriesColor(i)
		n := len(s.AbsoluteError)
		if n > maxFrames {
			maxFrames = n
		}
		xs := make([]float64, n)
		for j := range xs {
			xs[j] = float64(j)
		}
		lines = append(lines, chart.ContinuousSeries{
			Name: model.LegendLabel(s.Label),
			Style: chart.Style{
				StrokeColor:     color,
				StrokeWidth:     1.5,
				StrokeDashArray: []float64{2, 3},
				DotColor:        color,
				DotWidth:        3,
			},
			XValues: xs,
			YValues: s.AbsoluteError,
		})

		bandX := []float64{0, math.Max(float64(n-1), 0)}
		bandStyle := chart.Style{
			StrokeColor:     color.WithAlpha(110),
			StrokeWidth:     1,
			StrokeDashArray: []float64{6, 4},
		}
		lo, hi := s.Summary.LowerBand, s.Summary.UpperBand
		bands = append(bands,
			chart.ContinuousSeries{Style: bandStyle, XValues: bandX, YValues: []float64{lo, lo}},
			chart.ContinuousSeries{Style: bandStyle, XValues: bandX, YValues: []float64{hi, hi}},
		)

		yMin = math.Min(yMin, lo)
		yMax = math.Max(yMax, hi)
		for _, v := range s.AbsoluteError {
			yMax = math.Max(yMax, v)
		}
	}
	if yMax-yMin < 1e-9 {
		yMax = yMin + 1
	}
	pad := (yMax - yMin) * 0.05

	graph := chart.Chart{
		Title:  "Error in XY plane for different laser spot diameters",
		Width:  width,
		Height: height,
		DPI:    opts.dpi(),
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 20, Right: 20, Bottom: 20},
		},
		XAxis: chart.XAxis{
			Name:           "Frame Number",
			Range:          &chart.ContinuousRange{Min: 0, Max: math.Max(float64(maxFrames-1), 1)},
			GridMajorStyle: gridStyle,
		},
		YAxis: chart.YAxis{
			Name:           "Error (mm)",
			Range:          &chart.ContinuousRange{Min: yMin - pad, Max: yMax + pad},
			GridMajorStyle: gridStyle,
		},
		Series: append(lines, bands...),
	}
	if len(graph.Series) == 0 {
		graph.Series = []chart.Series{placeholder()}
	}
	addLegend(&graph, lines)
	if err := graph.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("failed to render error figure: %w", err)
	}
	return nil
}

// TrackFigure plots tracked Dist X against Dist Y for every series around the hexapod coordinate.
func TrackFigure(w io.Writer, collection model.SeriesCollection, opts Options) error {
	width, height := opts.size(8, 6)

	var tracks []chart.Series
	for i, s := range collection.Series {
		color := seriesColor(i)
		xs := make([]float64, len(s.Frames))
		ys := make([]float64, len(s.Frames))
		for j, f := range s.Frames {
			xs[j] = f.DistX
			ys[j] = f.DistY
		}
		tracks = append(tracks, chart.ContinuousSeries{
			Name: model.LegendLabel(s.Label),
			Style: chart.Style{
				StrokeColor:     color,
				StrokeWidth:     1.5,
				StrokeDashArray: []float64{2, 3},
				DotColor:        color,
				DotWidth:        3,
			},
			XValues: xs,
			YValues: ys,
		})
	}

	hexapod := chart.AnnotationSeries{
		Annotations: []chart.Value2{
			{XValue: hexapodXY, YValue: hexapodXY, Label: "Hexapod Coordinate"},
		},
	}

	graph := chart.Chart{
		Title:  "Laser speckle template position tracking",
		Width:  width,
		Height: height,
		DPI:    opts.dpi(),
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 20, Right: 20, Bottom: 20},
		},
		XAxis: chart.XAxis{
			Name:      "Position X-Axis (mm)",
			Range:     &chart.ContinuousRange{Min: -trackLimit, Max: trackLimit},
			GridLines: trackGrid(),
		},
		YAxis: chart.YAxis{
			Name:      "Position Y-Axis (mm)",
			Range:     &chart.ContinuousRange{Min: -trackLimit, Max: trackLimit},
			GridLines: trackGrid(),
		},
		Series: append(tracks, hexapod),
	}
	addLegend(&graph, tracks)
	if err := graph.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("failed to render track figure: %w", err)
	}
	return nil
}

// trackGrid draws dashed lines every 0.5 mm and a solid zero axis.
func trackGrid() []chart.GridLine {
	var lines []chart.GridLine
	for _, v := range []float64{-1, -0.5, 0.5, 1} {
		lines = append(lines, chart.GridLine{Value: v, Style: gridStyle})
	}
	return append(lines, chart.GridLine{Value: 0, Style: zeroAxisStyle})
}

// addLegend lists only the named data series; band and reference series stay out of it.
func addLegend(graph *chart.Chart, named []chart.Series) {
	if len(named) == 0 {
		return
	}
	legendSource := *graph
	legendSource.Series = named
	graph.Elements = []chart.Renderable{chart.Legend(&legendSource)}
}

// placeholder keeps an empty figure renderable with axes only. go-chart refuses charts
// without a visible series, so it is drawn in a transparent stroke.
func placeholder() chart.Series {
	return chart.ContinuousSeries{
		Style:   chart.Style{StrokeColor: drawing.ColorTransparent},
		XValues: []float64{0, 1},
		YValues: []float64{0, 0},
	}
}
