package heatmap

import (
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// Colors used for the cells that fall outside the palette.
var (
	ZeroColor   = color.RGBA{R: 0xff, G: 0xff, B: 0xe0, A: 0xff} // lightyellow
	NoDataColor = color.RGBA{R: 0xbe, G: 0xbe, B: 0xbe, A: 0xff}
	lightBlue   = color.RGBA{R: 0xad, G: 0xd8, B: 0xe6, A: 0xff}
	darkBlue    = color.RGBA{R: 0x00, G: 0x00, B: 0x8b, A: 0xff}
)

// MinPositive is the smallest ratio drawn from the palette. Anything below
// it, in practice exactly zero, gets ZeroColor.
const MinPositive = 1e-10

// gradient is a linear palette between two colors.
type gradient struct {
	from, to color.RGBA
	steps    int
}

func (g gradient) Colors() []color.Color {
	lerp := func(a, b uint8, t float64) uint8 {
		return uint8(math.Round(float64(a) + (float64(b)-float64(a))*t))
	}
	cs := make([]color.Color, g.steps)
	for i := range cs {
		t := float64(i) / float64(g.steps-1)
		cs[i] = color.RGBA{
			R: lerp(g.from.R, g.to.R, t),
			G: lerp(g.from.G, g.to.G, t),
			B: lerp(g.from.B, g.to.B, t),
			A: 0xff,
		}
	}
	return cs
}

// grid adapts a Matrix to plotter.GridXYZ. Row 0 of the matrix is drawn
// at the top.
type grid struct {
	m Matrix
}

func (g grid) Dims() (c, r int) { return len(g.m.Schedulers), len(g.m.Rows) }

func (g grid) Z(c, r int) float64 { return g.m.Z[len(g.m.Rows)-1-r][c] }

func (g grid) X(c int) float64 { return float64(c) }

func (g grid) Y(r int) float64 { return float64(r) }

// Render plots the matrix to path. The image format is taken from the
// file extension.
func Render(m Matrix, path string) error {
	if len(m.Rows) == 0 || len(m.Schedulers) == 0 {
		return fmt.Errorf("heatmap has no cells (%d rows, %d schedulers)", len(m.Rows), len(m.Schedulers))
	}

	p := plot.New()
	p.Title.Text = "Pass ratio"
	p.X.Label.Text = "scheduler"
	p.Y.Label.Text = "model"

	hm := plotter.NewHeatMap(grid{m: m}, gradient{from: lightBlue, to: darkBlue, steps: 256})
	hm.Min = MinPositive
	hm.Max = 1
	hm.Underflow = ZeroColor
	hm.Overflow = darkBlue
	hm.NaN = NoDataColor
	p.Add(hm)

	p.NominalX(m.Schedulers...)
	labels := m.RowLabels()
	reversed := make([]string, len(labels))
	for i, l := range labels {
		reversed[len(labels)-1-i] = l
	}
	p.NominalY(reversed...)
	p.X.Tick.Label.Rotation = math.Pi / 4
	p.X.Tick.Label.XAlign = draw.XRight
	p.X.Tick.Label.YAlign = draw.YCenter

	width := vg.Length(len(m.Schedulers)+2) * 2 * vg.Centimeter
	height := vg.Length(len(m.Rows)+4) * 0.8 * vg.Centimeter
	if err := p.Save(width, height, path); err != nil {
		return fmt.Errorf("save heatmap: %w", err)
	}
	return nil
}
