package render

import (
	"encoding/base64"
	"fmt"
	"io"
	"math"
	"mime"
	"os"
	"path/filepath"
	"strings"

	svg "github.com/ajstarks/svgo"

	"github.com/buffos/lifeweeks/chart"
	"github.com/buffos/lifeweeks/geometry"
)

const (
	fontFamily = "Go, 'Go Regular', sans-serif"

	gridSquareColor = "#b8b8b8"
	tickColor       = "#555555"
	defaultInk      = "#222222"

	// squareSide is the side of a week square as a fraction of a cell.
	squareSide = 0.7
)

// SVG measures, lays out and draws the chart as an SVG document.
func SVG(c *chart.Chart, w io.Writer) error {
	f := NewFrame(c)
	p := c.Params()

	measurer, err := NewTextMeasurer(f, p.DPI)
	if err != nil {
		return fmt.Errorf("text measurement: %w", err)
	}
	resolved, err := c.Layout(measurer)
	if err != nil {
		return fmt.Errorf("layout: %w", err)
	}

	canvas := svg.New(w)
	canvas.Start(f.W, f.H)
	canvas.Rect(0, 0, f.W, f.H, "fill:white")

	if err := drawBackgroundImage(canvas, c, f); err != nil {
		return err
	}
	drawEras(canvas, c, f)
	drawGrid(canvas, f)
	drawEraSpans(canvas, c, f, p)
	drawAnnotations(canvas, f, p, resolved)
	drawTicks(canvas, f, p)
	drawAxisLabels(canvas, c, f, p)
	drawTitle(canvas, c, f, p)
	drawWatermark(canvas, c, f, p)
	drawMaxAgeLabel(canvas, c, f, p)

	canvas.End()
	return nil
}

// ptToPx converts point-denominated style values to canvas pixels.
func ptToPx(pts, dpi float64) float64 {
	return pts * dpi / 72
}

func fontStyle(color string, sizePx float64, extra string) string {
	s := fmt.Sprintf("fill:%s;font-size:%.1fpx;font-family:%s", color, sizePx, fontFamily)
	if extra != "" {
		s += ";" + extra
	}
	return s
}

func drawGrid(canvas *svg.SVG, f Frame) {
	minAge, maxAge := f.Window()
	side := squareSide * f.U
	offset := side / 2

	// Colored and circled cells are drawn with the annotations; the
	// base grid is a uniform field of outline squares.
	strokeW := math.Max(1, f.U*0.04)
	style := fmt.Sprintf("fill:none;stroke:%s;stroke-width:%.2f", gridSquareColor, strokeW)
	for row := minAge; row < maxAge; row++ {
		for col := 1; col <= chart.WeeksPerRow; col++ {
			canvas.Rect(px(f.X(float64(col))-offset), px(f.Y(float64(row))-offset),
				px(side), px(side), style)
		}
	}
}

// drawEras paints one horizontal band per row of each era: the first
// row starts at the era's start column, the last row ends at its end
// column, and rows between span the full grid.
func drawEras(canvas *svg.SVG, c *chart.Chart, f Frame) {
	minAge, maxAge := f.Window()
	gridLeft := f.X(0.5)
	gridRight := f.X(float64(chart.WeeksPerRow) + 0.5)

	for _, era := range c.Eras() {
		for row := era.Start.Year; row <= era.End.Year; row++ {
			if row < minAge || row >= maxAge {
				continue
			}
			x1, x2 := gridLeft, gridRight
			switch row {
			case era.Start.Year:
				x1 = f.X(era.Start.Point.X - 0.5)
			case era.End.Year:
				x2 = f.X(era.End.Point.X + 0.5)
			}
			y1 := f.Y(float64(row) - 0.5)
			y2 := f.Y(float64(row) + 0.5)
			canvas.Rect(px(x1), px(y1), px(x2-x1), px(y2-y1),
				fmt.Sprintf("fill:%s;fill-opacity:%.2f", era.Color, era.Alpha))
		}
	}
}

// drawEraSpans draws each span as a dumbbell: circles on the start and
// end cells, joined by a line that runs between the nearest points on
// the two circle edges.
func drawEraSpans(canvas *svg.SVG, c *chart.Chart, f Frame, p chart.Params) {
	minAge, maxAge := f.Window()
	radius := 0.5

	for _, span := range c.EraSpans() {
		if float64(span.End.Year) < float64(minAge) || float64(span.Start.Year) >= float64(maxAge) {
			continue
		}
		start, end := span.Start.Point, span.End.Point

		circleStyle := fmt.Sprintf("fill:none;stroke:%s;stroke-width:%.2f",
			span.Color, ptToPx(p.AnnotationEdgeWidth, p.DPI))
		canvas.Circle(px(f.X(start.X)), px(f.Y(start.Y)), px(radius*f.U), circleStyle)
		canvas.Circle(px(f.X(end.X)), px(f.Y(end.Y)), px(radius*f.U), circleStyle)

		// Quadrant-sensitive angles from each circle toward the other.
		a1 := math.Atan2(end.Y-start.Y, end.X-start.X)
		a2 := math.Atan2(start.Y-end.Y, start.X-end.X)
		x1 := start.X + math.Cos(a1)*radius
		y1 := start.Y + math.Sin(a1)*radius
		x2 := end.X + math.Cos(a2)*radius
		y2 := end.Y + math.Sin(a2)*radius

		canvas.Line(px(f.X(x1)), px(f.Y(y1)), px(f.X(x2)), px(f.Y(y2)),
			fmt.Sprintf("stroke:%s;stroke-width:%.2f", span.Color, ptToPx(p.AnnotationLineWidth, p.DPI)))

		for _, m := range []*chart.Marker{span.StartMarker, span.EndMarker} {
			if m != nil {
				drawMarker(canvas, f, m)
			}
		}
	}
}

func drawMarker(canvas *svg.SVG, f Frame, m *chart.Marker) {
	side := squareSide * f.U
	canvas.Rect(px(f.X(m.At.X)-side/2), px(f.Y(m.At.Y)-side/2), px(side), px(side),
		fmt.Sprintf("fill:%s", m.Color))
}

func drawAnnotations(canvas *svg.SVG, f Frame, p chart.Params, resolved []*chart.Annotation) {
	fontPx := ptToPx(p.FontSize, p.DPI)
	lineW := ptToPx(p.AnnotationLineWidth, p.DPI)
	edgeW := ptToPx(p.AnnotationEdgeWidth, p.DPI)

	for _, a := range resolved {
		if a.Marker != nil {
			drawMarker(canvas, f, a.Marker)
		}
		if a.CircleEventPoint {
			canvas.Circle(px(f.X(a.EventPoint.X)), px(f.Y(a.EventPoint.Y)), px(0.5*f.U),
				fmt.Sprintf("fill:none;stroke:%s;stroke-width:%.2f", a.Color, edgeW))
		}

		// Connector from the label's relpos anchor to the event cell,
		// stopping at the circle's edge.
		box := a.BBox()
		from := geometry.Point{
			X: box.XMin + a.RelPos.X*box.Width(),
			Y: box.YMin + a.RelPos.Y*box.Height(),
		}
		to := shrinkToward(a.EventPoint, from, 0.5)
		canvas.Line(px(f.X(from.X)), px(f.Y(from.Y)), px(f.X(to.X)), px(f.Y(to.Y)),
			fmt.Sprintf("stroke:%s;stroke-width:%.2f", a.Color, lineW))

		canvas.Text(px(f.X(box.XMin)), px(f.Y((box.YMin+box.YMax)/2)), a.Text,
			fontStyle(a.Color, fontPx, "font-weight:bold;text-anchor:start;dominant-baseline:middle"))
	}
}

// shrinkToward returns the point a fixed data-unit distance short of
// target on the segment from source, so connector lines end at the
// edge of the event circle instead of its center.
func shrinkToward(target, source geometry.Point, by float64) geometry.Point {
	dx, dy := target.X-source.X, target.Y-source.Y
	dist := math.Hypot(dx, dy)
	if dist <= by || dist == 0 {
		return target
	}
	scale := (dist - by) / dist
	return geometry.Point{X: source.X + dx*scale, Y: source.Y + dy*scale}
}

func drawTicks(canvas *svg.SVG, f Frame, p chart.Params) {
	minAge, maxAge := f.Window()
	fontPx := ptToPx(p.TickFontSize, p.DPI)
	style := fontStyle(tickColor, fontPx, "text-anchor:middle")

	// Week numbers run along the top: 1, then every fifth week.
	ticks := []int{1}
	for t := 5; t <= chart.WeeksPerRow; t += 5 {
		ticks = append(ticks, t)
	}
	yTop := f.Y(float64(minAge)-0.5) - 0.4*f.U
	for _, t := range ticks {
		canvas.Text(px(f.X(float64(t))), px(yTop), fmt.Sprintf("%d", t), style)
	}

	// Ages run down the left edge at multiples of five.
	left := f.X(0.5) - 0.8*f.U
	rowStyle := fontStyle(tickColor, fontPx, "text-anchor:end;dominant-baseline:middle")
	first := minAge
	if rem := first % 5; rem != 0 {
		first += 5 - rem
	}
	for t := first; t < maxAge; t += 5 {
		canvas.Text(px(left), px(f.Y(float64(t))), fmt.Sprintf("%d", t), rowStyle)
	}
}

func drawAxisLabels(canvas *svg.SVG, c *chart.Chart, f Frame, p chart.Params) {
	xText, xStyle := c.XAxis()
	yText, yStyle := c.YAxis()

	xPos := p.XLabelPos
	if xStyle.PositionX != nil {
		xPos[0] = *xStyle.PositionX
	}
	if xStyle.PositionY != nil {
		xPos[1] = *xStyle.PositionY
	}
	xColor := defaultInk
	if xStyle.Color != nil {
		xColor = *xStyle.Color
	}
	xFont := p.AxisLabelFontSize
	if xStyle.FontSize != nil {
		xFont = *xStyle.FontSize
	}
	xx, xy := f.AxesPos(xPos[0], xPos[1])
	canvas.Text(px(xx), px(xy), xText, fontStyle(xColor, ptToPx(xFont, p.DPI), "text-anchor:middle"))

	yPos := p.YLabelPos
	if yStyle.PositionX != nil {
		yPos[0] = *yStyle.PositionX
	}
	if yStyle.PositionY != nil {
		yPos[1] = *yStyle.PositionY
	}
	yColor := defaultInk
	if yStyle.Color != nil {
		yColor = *yStyle.Color
	}
	yFont := p.AxisLabelFontSize
	if yStyle.FontSize != nil {
		yFont = *yStyle.FontSize
	}
	yx, yy := f.AxesPos(yPos[0], yPos[1])
	canvas.TranslateRotate(px(yx), px(yy), -90)
	canvas.Text(0, 0, yText, fontStyle(yColor, ptToPx(yFont, p.DPI), "text-anchor:middle"))
	canvas.Gend()
}

func drawTitle(canvas *svg.SVG, c *chart.Chart, f Frame, p chart.Params) {
	title, fontSize := c.Title()
	if title == "" {
		return
	}
	if fontSize == 0 {
		fontSize = p.TitleFontSize
	}
	y := (1 - p.TitleYPos) * float64(f.H)
	canvas.Text(f.W/2, px(y), title,
		fontStyle(defaultInk, ptToPx(fontSize, p.DPI), "text-anchor:middle;dominant-baseline:middle"))
}

func drawWatermark(canvas *svg.SVG, c *chart.Chart, f Frame, p chart.Params) {
	text := c.Watermark()
	if text == "" {
		return
	}
	cx, cy := f.AxesPos(0.5, 0.5)
	canvas.TranslateRotate(px(cx), px(cy), -65)
	canvas.Text(0, 0, text,
		fontStyle("gray", ptToPx(p.WatermarkFontSize, p.DPI), "text-anchor:middle;fill-opacity:0.3"))
	canvas.Gend()
}

func drawMaxAgeLabel(canvas *svg.SVG, c *chart.Chart, f Frame, p chart.Params) {
	if !c.MaxAgeLabelShown() {
		return
	}
	_, maxAge := f.Window()
	canvas.Text(px(f.X(float64(chart.WeeksPerRow)+3)), px(f.Y(float64(maxAge))),
		fmt.Sprintf("%d", c.MaxAge()),
		fontStyle(defaultInk, ptToPx(p.MaxAgeFontSize, p.DPI), "text-anchor:middle"))
}

// drawBackgroundImage embeds the configured image as a base64 data
// URI, clipped to the grid area, so the SVG stays self-contained.
func drawBackgroundImage(canvas *svg.SVG, c *chart.Chart, f Frame) error {
	path, alpha := c.Image()
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read background image %s: %w", path, err)
	}
	mimeType := mime.TypeByExtension(strings.ToLower(filepath.Ext(path)))
	if mimeType == "" {
		mimeType = "image/png"
	}
	href := "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)

	minAge, maxAge := f.Window()
	x1 := f.X(0.5)
	y1 := f.Y(float64(minAge) - 0.5)
	x2 := f.X(float64(chart.WeeksPerRow) + 0.5)
	y2 := f.Y(float64(maxAge) - 0.5)
	canvas.Image(px(x1), px(y1), px(x2-x1), px(y2-y1), href,
		fmt.Sprintf("opacity:%.2f", alpha))
	return nil
}
