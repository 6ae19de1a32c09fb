package viz

import (
	"strings"

	"gonum.org/v1/gonum/mat"
)

// Braille cells hold 2x4 dots, offset 0x2800:
// 1 4
// 2 5
// 3 6
// 7 8
var pixelMap = [4][2]int{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

const brailleBlank = 0x2800

// shadeRamp maps normalized concentration to glyph density.
var shadeRamp = []rune(" .:-=+*#%@")

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
	}
	c.Clear()
	return c
}

// Set turns on the dot at sub-pixel (x, y). The canvas spans
// (Width*2) x (Height*4) sub-pixels.
func (c *Canvas) Set(x, y int) {
	if x < 0 || y < 0 {
		return
	}
	col, row := x/2, y/4
	if col >= c.Width || row >= c.Height {
		return
	}
	c.Grid[row][col] |= rune(pixelMap[y%4][x%2])
}

func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = brailleBlank
		}
	}
}

// DrawThreshold samples the field onto the dot grid and sets every dot
// whose min-max scaled value exceeds threshold.
func (c *Canvas) DrawThreshold(data *mat.Dense, threshold float64) {
	c.Clear()
	rows, cols := data.Dims()
	lo, hi := mat.Min(data), mat.Max(data)
	span := hi - lo
	if span == 0 {
		return
	}
	w, h := c.Width*2, c.Height*4
	for y := 0; y < h; y++ {
		i := y * rows / h
		for x := 0; x < w; x++ {
			j := x * cols / w
			if (data.At(i, j)-lo)/span > threshold {
				c.Set(x, y)
			}
		}
	}
}

// DrawShade fills each character cell with a density glyph for the mean
// of the cells it covers.
func (c *Canvas) DrawShade(data *mat.Dense) {
	rows, cols := data.Dims()
	lo, hi := mat.Min(data), mat.Max(data)
	span := hi - lo
	last := len(shadeRamp) - 1

	for r := 0; r < c.Height; r++ {
		i0, i1 := r*rows/c.Height, (r+1)*rows/c.Height
		if i1 <= i0 {
			i1 = i0 + 1
		}
		for col := 0; col < c.Width; col++ {
			j0, j1 := col*cols/c.Width, (col+1)*cols/c.Width
			if j1 <= j0 {
				j1 = j0 + 1
			}
			if span == 0 {
				c.Grid[r][col] = shadeRamp[0]
				continue
			}
			sum := 0.0
			for i := i0; i < i1 && i < rows; i++ {
				for j := j0; j < j1 && j < cols; j++ {
					sum += data.At(i, j)
				}
			}
			mean := sum / float64((i1-i0)*(j1-j0))
			idx := int((mean - lo) / span * float64(last))
			if idx < 0 {
				idx = 0
			}
			if idx > last {
				idx = last
			}
			c.Grid[r][col] = shadeRamp[idx]
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
