package viz

import (
	"math"
	"strings"
)

// Braille Patterns: 2x4 dots
// 1 4
// 2 5
// 3 6
// 7 8
//
// Unicode offset 0x2800
var pixelMap = [4][2]int{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

type Canvas struct {
	Width, Height int
	Grid          [][]rune
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{
		Width:  w,
		Height: h,
		Grid:   make([][]rune, h),
	}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
		for j := range c.Grid[i] {
			c.Grid[i][j] = 0x2800 // Empty braille char
		}
	}
	return c
}

// Set sets a pixel at (x, y) in sub-pixel coordinates. The canvas size
// in sub-pixels is (Width*2) x (Height*4).
func (c *Canvas) Set(x, y int) {
	if x < 0 || y < 0 {
		return
	}

	col := x / 2
	row := y / 4
	if col >= c.Width || row >= c.Height {
		return
	}

	subX := x % 2
	subY := y % 4

	c.Grid[row][col] |= rune(pixelMap[subY][subX])
}

// Clear resets the canvas
func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = 0x2800
		}
	}
}

// DrawLine draws a line using Bresenham's algorithm
func (c *Canvas) DrawLine(x0, y0, x1, y1 int) {
	dx := absInt(x1 - x0)
	dy := absInt(y1 - y0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy

	for {
		c.Set(x0, y0)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row) + "\n")
	}
	return b.String()
}

// Viewport maps a world-coordinate window onto canvas sub-pixels. The y
// axis is flipped so world-up renders upward.
type Viewport struct {
	MinX, MaxX float64
	MinY, MaxY float64
}

// FitViewport computes a square-aspect window covering the given path
// with a relative margin.
func FitViewport(xs, ys []float64, margin float64) Viewport {
	vp := Viewport{MinX: math.Inf(1), MaxX: math.Inf(-1), MinY: math.Inf(1), MaxY: math.Inf(-1)}
	for i := range xs {
		vp.MinX = math.Min(vp.MinX, xs[i])
		vp.MaxX = math.Max(vp.MaxX, xs[i])
		vp.MinY = math.Min(vp.MinY, ys[i])
		vp.MaxY = math.Max(vp.MaxY, ys[i])
	}
	span := math.Max(vp.MaxX-vp.MinX, vp.MaxY-vp.MinY)
	if span == 0 {
		span = 1
	}
	pad := span * margin
	cx, cy := (vp.MinX+vp.MaxX)/2, (vp.MinY+vp.MaxY)/2
	half := span/2 + pad
	return Viewport{MinX: cx - half, MaxX: cx + half, MinY: cy - half, MaxY: cy + half}
}

// Project converts world coordinates to canvas sub-pixel coordinates.
func (c *Canvas) Project(vp Viewport, x, y float64) (int, int) {
	w := float64(c.Width * 2)
	h := float64(c.Height * 4)
	px := (x - vp.MinX) / (vp.MaxX - vp.MinX) * (w - 1)
	py := (1 - (y-vp.MinY)/(vp.MaxY-vp.MinY)) * (h - 1)
	return int(px), int(py)
}

// PlotPath draws line segments between consecutive path points.
func (c *Canvas) PlotPath(vp Viewport, xs, ys []float64) {
	for i := 1; i < len(xs); i++ {
		x0, y0 := c.Project(vp, xs[i-1], ys[i-1])
		x1, y1 := c.Project(vp, xs[i], ys[i])
		c.DrawLine(x0, y0, x1, y1)
	}
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
