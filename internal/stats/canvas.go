package stats

import "math"

// dotBits maps a sub-cell position (column, row) to its braille dot bit.
var dotBits = [2][4]uint8{
	{0x01, 0x02, 0x04, 0x40},
	{0x08, 0x10, 0x20, 0x80},
}

// canvas is a grid of braille cells with one bit layer per plotted series.
// Each cell holds 2x4 dots, so the dot resolution is (2*cols)x(4*rows).
type canvas struct {
	cols, rows int
	layers     [][]uint8
}

func newCanvas(cols, rows, layers int) *canvas {
	c := &canvas{cols: cols, rows: rows, layers: make([][]uint8, layers)}
	for i := range c.layers {
		c.layers[i] = make([]uint8, cols*rows)
	}
	return c
}

func (c *canvas) dotWidth() int  { return c.cols * 2 }
func (c *canvas) dotHeight() int { return c.rows * 4 }

func (c *canvas) set(layer, x, y int) {
	if x < 0 || y < 0 || x >= c.dotWidth() || y >= c.dotHeight() {
		return
	}
	c.layers[layer][(y/4)*c.cols+x/2] |= dotBits[x%2][y%4]
}

// line connects two dots, skipping the dots the pattern leaves blank.
func (c *canvas) line(layer, x0, y0, x1, y1 int, pattern lineStyle) {
	dx, dy := x1-x0, y1-y0
	steps := max(abs(dx), abs(dy))
	if steps == 0 {
		c.set(layer, x0, y0)
		return
	}
	for i := 0; i <= steps; i++ {
		x := x0 + int(math.Round(float64(i*dx)/float64(steps)))
		y := y0 + int(math.Round(float64(i*dy)/float64(steps)))
		if pattern.shouldPlot(x) {
			c.set(layer, x, y)
		}
	}
}

// cell merges all layers at one cell and reports the first layer that has dots, or -1.
func (c *canvas) cell(col, row int) (rune, int) {
	var bits uint8
	owner := -1
	idx := row*c.cols + col
	for i, layer := range c.layers {
		if layer[idx] == 0 {
			continue
		}
		if owner < 0 {
			owner = i
		}
		bits |= layer[idx]
	}
	return braille(bits), owner
}

func braille(bits uint8) rune {
	return 0x2800 + rune(bits)
}

func (ls lineStyle) shouldPlot(x int) bool {
	if ls.period <= 1 {
		return true
	}
	return abs(x)%ls.period < ls.on
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// rowOf maps v onto a dot row, top row being hi.
func rowOf(v, lo, hi float64, dots int) int {
	if dots <= 1 || hi == lo {
		return 0
	}
	frac := (hi - v) / (hi - lo)
	row := int(math.Round(frac * float64(dots-1)))
	return min(max(row, 0), dots-1)
}
