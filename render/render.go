// Package render turns a resolved chart layout into output files. The
// SVG emitter is the primary backend; raster formats are produced by
// screenshotting the SVG in headless Chrome. It also provides the text
// measurement the layout engine needs, backed by real font metrics.
package render

import (
	"math"

	"github.com/buffos/lifeweeks/chart"
)

// gridXMin mirrors the chart's left data limit: half a cell of slack
// so the first column of squares is not clipped.
const gridXMin = -0.5

// Frame maps chart data units onto canvas pixels. The grid occupies
// the chart's axes rect, centered, with equal scaling on both axes so
// the week squares stay square.
type Frame struct {
	// W, H are the canvas size in pixels.
	W int
	H int

	// U is pixels per data unit.
	U float64

	// x0, y0 are the pixel position of data point (gridXMin, minAge-0.5).
	x0 float64
	y0 float64

	// axes rect in pixels, for placing axis labels.
	axLeft float64
	axTop  float64
	axW    float64
	axH    float64

	minAge int
	maxAge int
}

// NewFrame computes the pixel mapping for a chart at its configured
// paper size and DPI.
func NewFrame(c *chart.Chart) Frame {
	p := c.Params()
	w := p.Size.Width * p.DPI
	h := p.Size.Height * p.DPI

	minAge, maxAge := c.Window()

	rect := p.AxesRect
	axLeft := rect[0] * w
	axWidth := rect[2] * w
	axHeight := rect[3] * h
	// AxesRect is bottom-origin; the canvas is top-origin.
	axTop := (1 - rect[1] - rect[3]) * h

	xSpan := float64(chart.WeeksPerRow) - gridXMin
	ySpan := float64(maxAge-minAge) + 0.5

	u := math.Min(axWidth/xSpan, axHeight/ySpan)

	// Center the grid inside the axes rect.
	x0 := axLeft + (axWidth-u*xSpan)/2
	y0 := axTop + (axHeight-u*ySpan)/2

	return Frame{
		W:      int(math.Round(w)),
		H:      int(math.Round(h)),
		U:      u,
		x0:     x0,
		y0:     y0,
		axLeft: axLeft,
		axTop:  axTop,
		axW:    axWidth,
		axH:    axHeight,
		minAge: minAge,
		maxAge: maxAge,
	}
}

// AxesPos converts axes-fraction coordinates (bottom-origin, as the
// styling parameters use them) to canvas pixels.
func (f Frame) AxesPos(fx, fy float64) (x, y float64) {
	return f.axLeft + fx*f.axW, f.axTop + (1-fy)*f.axH
}

// X converts a data x coordinate to canvas pixels.
func (f Frame) X(x float64) float64 {
	return f.x0 + (x-gridXMin)*f.U
}

// Y converts a data y coordinate to canvas pixels. Rows grow downward
// in both spaces, so no inversion is needed.
func (f Frame) Y(y float64) float64 {
	return f.y0 + (y-(float64(f.minAge)-0.5))*f.U
}

// Window returns the visible row range the frame was built for.
func (f Frame) Window() (minAge, maxAge int) {
	return f.minAge, f.maxAge
}

func px(v float64) int {
	return int(math.Round(v))
}
