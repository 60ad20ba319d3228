package stats

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/term"
	"gonum.org/v1/gonum/floats"
)

// Series represents a named data series for plotting.
type Series struct {
	Name   string
	Values []float64
}

type seriesMinMaxRange struct {
	min float64
	max float64
}

type lineStyle struct {
	name   string
	period int
	on     int
}

const (
	defaultPlotHeight   = 10
	minPlotWidth        = 10
	axisLabelWidth      = 7
	axisSeparator       = " \u2502 "
	scaleNote           = "Absolute error (mm), shared scale:"
	colorReset          = "\x1b[0m"
	terminalWidthBackup = 80
)

var lineStyles = []lineStyle{
	{name: "solid", period: 1, on: 1},
	{name: "dashed", period: 6, on: 3},
	{name: "dotted", period: 4, on: 1},
	{name: "dashdot", period: 8, on: 3},
}

// ANSI foreground colours: cyan, magenta, yellow, green, blue.
var colorCodes = []string{"\x1b[36m", "\x1b[35m", "\x1b[33m", "\x1b[32m", "\x1b[34m"}

// PlotSeries renders a braille text plot of the series on one shared value scale.
// Colour is used on terminals, or always when forceColor is set.
func PlotSeries(w io.Writer, title string, series []Series, width, height int, forceColor bool) error {
	series = nonEmpty(series)
	if len(series) == 0 {
		return nil
	}
	if height <= 0 {
		height = defaultPlotHeight
	}
	if width <= 0 {
		width = autoPlotWidth()
	}
	width = max(width, minPlotWidth)

	frames := longest(series)
	yRange := sharedRange(series)
	c := newCanvas(width, height, len(series))

	// Frame i of every series lands in the same column, so shorter series end early.
	for si, s := range series {
		cols := max(int(math.Round(float64(len(s.Values))/float64(frames)*float64(width))), 1)
		style := lineStyles[si%len(lineStyles)]
		px, py := -1, -1
		for col, v := range resampleSeries(s.Values, cols) {
			x, y := col*2, rowOf(v, yRange.min, yRange.max, c.dotHeight())
			if px < 0 {
				c.set(si, x, y)
			} else {
				c.line(si, px, py, x, y, style)
			}
			px, py = x, y
		}
	}

	p := &plotWriter{w: w}
	if title != "" {
		p.println(title)
	}
	p.printf("%s min=%.3f max=%.3f\n", scaleNote, yRange.min, yRange.max)

	useColor := shouldUseColor(w, forceColor)
	labels := axisLabels(height, yRange)
	for row := 0; row < height; row++ {
		var b strings.Builder
		fmt.Fprintf(&b, "%*s%s", axisLabelWidth, labels[row], axisSeparator)
		for col := 0; col < width; col++ {
			ch, owner := c.cell(col, row)
			if useColor && owner >= 0 {
				b.WriteString(colorCodes[owner%len(colorCodes)])
				b.WriteRune(ch)
				b.WriteString(colorReset)
				continue
			}
			b.WriteRune(ch)
		}
		p.println(b.String())
	}
	p.printf("%*s%s%s\n", axisLabelWidth, "", axisSeparator, frameAxis(frames, width))
	p.println(legend(series, useColor))
	p.println("")
	return p.err
}

// plotWriter keeps the first write error so the layout code stays linear.
type plotWriter struct {
	w   io.Writer
	err error
}

func (p *plotWriter) printf(format string, args ...any) {
	if p.err == nil {
		_, p.err = fmt.Fprintf(p.w, format, args...)
	}
}

func (p *plotWriter) println(line string) {
	if p.err == nil {
		_, p.err = fmt.Fprintln(p.w, line)
	}
}

// sharedRange spans all values, anchored at 0 for non-negative data.
func sharedRange(series []Series) seriesMinMaxRange {
	r := seriesMinMaxRange{min: math.Inf(1), max: math.Inf(-1)}
	for _, s := range series {
		if len(s.Values) == 0 {
			continue
		}
		r.min = math.Min(r.min, floats.Min(s.Values))
		r.max = math.Max(r.max, floats.Max(s.Values))
	}
	if math.IsInf(r.min, 1) {
		r.min, r.max = 0, 0
	}
	r.min = math.Min(r.min, 0)
	if r.max-r.min < 1e-9 {
		r.max = r.min + 1
	}
	return r
}

func frameAxis(frames, width int) string {
	left := "0"
	right := fmt.Sprintf("frame %d", frames-1)
	gap := width - utf8.RuneCountInString(left) - utf8.RuneCountInString(right)
	return left + strings.Repeat(" ", max(gap, 1)) + right
}

func nonEmpty(series []Series) []Series {
	out := make([]Series, 0, len(series))
	for _, s := range series {
		if len(s.Values) > 0 {
			out = append(out, s)
		}
	}
	return out
}

func longest(series []Series) int {
	n := 0
	for _, s := range series {
		n = max(n, len(s.Values))
	}
	return n
}

func autoPlotWidth() int {
	return PlotWidthFor(terminalWidth())
}

// PlotWidthFor computes a plot width that fits within the total available width.
func PlotWidthFor(totalWidth int) int {
	if totalWidth <= 0 {
		return minPlotWidth
	}
	axisWidth := axisLabelWidth + utf8.RuneCountInString(axisSeparator)
	return max(totalWidth-axisWidth, minPlotWidth)
}

func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}

func shouldUseColor(w io.Writer, force bool) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if force {
		return true
	}
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}

// axisLabels puts the range ends and midpoint on the top, middle and bottom rows.
func axisLabels(height int, r seriesMinMaxRange) []string {
	labels := make([]string, height)
	if height == 0 {
		return labels
	}
	labels[0] = fmt.Sprintf("%.2f", r.max)
	if height > 1 {
		labels[height-1] = fmt.Sprintf("%.2f", r.min)
	}
	if height > 2 {
		labels[height/2] = fmt.Sprintf("%.2f", (r.min+r.max)/2)
	}
	return labels
}

// resampleSeries fits values into width points: bin means when shrinking,
// linear interpolation when stretching.
func resampleSeries(values []float64, width int) []float64 {
	switch {
	case len(values) == 0 || width <= 0:
		return nil
	case len(values) == width:
		return append([]float64(nil), values...)
	case len(values) > width:
		return binMeans(values, width)
	default:
		return interpolate(values, width)
	}
}

func binMeans(values []float64, width int) []float64 {
	out := make([]float64, width)
	n := len(values)
	for i := range out {
		start := i * n / width
		end := min(max((i+1)*n/width, start+1), n)
		out[i] = floats.Sum(values[start:end]) / float64(end-start)
	}
	return out
}

func interpolate(values []float64, width int) []float64 {
	out := make([]float64, width)
	last := len(values) - 1
	if width == 1 || last == 0 {
		for i := range out {
			out[i] = values[0]
		}
		return out
	}
	for i := range out {
		pos := float64(i) * float64(last) / float64(width-1)
		idx := int(pos)
		if idx >= last {
			out[i] = values[last]
			continue
		}
		frac := pos - float64(idx)
		out[i] = values[idx] + (values[idx+1]-values[idx])*frac
	}
	return out
}

func legend(series []Series, useColor bool) string {
	parts := make([]string, len(series))
	for i, s := range series {
		label := fmt.Sprintf("%c %s (%s)", braille(dotBits[0][0]), s.Name, lineStyles[i%len(lineStyles)].name)
		if useColor {
			label = colorCodes[i%len(colorCodes)] + label + colorReset
		}
		parts[i] = label
	}
	return "Legend: " + strings.Join(parts, "  ")
}
