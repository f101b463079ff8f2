// Package chart implements the life-calendar chart: a grid of one
// square per week of a lifespan, annotated with labeled events,
// colored eras and span markers. The package owns the grid coordinate
// mapping, the annotation model and the label placement engine;
// drawing is delegated to a renderer that consumes the resolved
// layout.
package chart

import (
	"fmt"
	"time"

	"github.com/buffos/lifeweeks/geometry"
)

const (
	// DefaultMaxAge is the last row of the grid when none is configured.
	DefaultMaxAge = 90

	// DefaultEpsilon is the minimum spacing kept between label
	// bounding boxes, in data units.
	DefaultEpsilon = 0.2

	// DefaultEraAlpha is the background opacity of era bands.
	DefaultEraAlpha = 0.3

	// defaultHintEdgeTolerance is how far past a grid edge a hint may
	// float before it is snapped back onto the edge.
	defaultHintEdgeTolerance = 10
)

// gridXMin is the left data limit; negative so the first column of
// squares is not cut off.
const gridXMin = -0.5

// Measurer supplies text bounding boxes in data units. The box is
// centered on the given anchor point. Rendering backends implement it;
// layout requires one before any label can be placed.
type Measurer interface {
	Measure(text string, at geometry.Point, fontSize float64) geometry.BBox
}

// Chart represents a lifespan as a grid of week squares and owns every
// registered annotation, era and span. Registrations all happen before
// a render pass; render passes are repeatable and never mutate the
// registered state.
type Chart struct {
	birthdate time.Time
	maxAge    int

	// visible row window [minVisible, maxVisible); defaults to the
	// whole lifespan.
	minVisible int
	maxVisible int

	size    Papersize
	params  Params
	epsilon float64
	colors  ColorSource

	hintEdgeTolerance float64

	title         string
	titleFontSize float64
	watermark     string
	imagePath     string
	imageAlpha    float64
	drawMaxAge    bool

	xAxisLabel string
	yAxisLabel string
	xAxis      AxisStyle
	yAxis      AxisStyle

	annotations []*Annotation
	eras        []Era
	eraSpans    []EraSpan

	eventRecords []EventRecord
	eraRecords   []EraRecord
	spanRecords  []EraSpanRecord
}

// AxisStyle overrides the position, color and font size of an axis
// label. Nil fields keep the scaled defaults.
type AxisStyle struct {
	PositionX *float64
	PositionY *float64
	Color     *string
	FontSize  *float64
}

// EventRecord keeps the original parameters of a life event
// registration, so config export round-trips losslessly regardless of
// computed layout state.
type EventRecord struct {
	Text        string
	Date        time.Time
	Color       string
	Hint        *geometry.Point
	Side        Side
	ColorSquare bool
}

// EraRecord keeps the original parameters of an era registration.
type EraRecord struct {
	Text      string
	StartDate time.Time
	EndDate   time.Time
	Color     string
	Side      Side
	Alpha     float64
}

// EraSpanRecord keeps the original parameters of an era span
// registration.
type EraSpanRecord struct {
	Text         string
	StartDate    time.Time
	EndDate      time.Time
	Color        string
	Hint         *geometry.Point
	Side         Side
	ColorMarkers bool
}

// Option configures a Chart at construction time.
type Option func(*Chart)

// WithSize sets the paper size, rescaling every styling parameter.
func WithSize(size Papersize) Option {
	return func(c *Chart) {
		c.size = size
		c.params = NewParams(size)
	}
}

// WithDPI overrides the export resolution.
func WithDPI(dpi float64) Option {
	return func(c *Chart) { c.params.DPI = dpi }
}

// WithMaxAge sets the final row of the grid.
func WithMaxAge(age int) Option {
	return func(c *Chart) { c.maxAge = age }
}

// WithEpsilon sets the minimum spacing between label bounding boxes.
func WithEpsilon(eps float64) Option {
	return func(c *Chart) { c.epsilon = eps }
}

// WithColorSource injects the palette used for registrations that do
// not name a color.
func WithColorSource(cs ColorSource) Option {
	return func(c *Chart) { c.colors = cs }
}

// New creates an empty chart starting at birthdate. The zero window is
// the whole lifespan.
func New(birthdate time.Time, opts ...Option) (*Chart, error) {
	if birthdate.IsZero() {
		return nil, fmt.Errorf("birthdate must be a valid date")
	}
	c := &Chart{
		birthdate:         dateOnly(birthdate),
		maxAge:            DefaultMaxAge,
		size:              PapersizeA3,
		params:            NewParams(PapersizeA3),
		epsilon:           DefaultEpsilon,
		colors:            NewRandomPalette(time.Now().UnixNano()),
		hintEdgeTolerance: defaultHintEdgeTolerance,
		imageAlpha:        1,
		xAxisLabel:        "Week of the Year ⟶",
		yAxisLabel:        "⟵ Age",
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.maxAge <= 0 {
		return nil, fmt.Errorf("max age must be positive, got %d", c.maxAge)
	}
	c.minVisible = 0
	c.maxVisible = c.maxAge
	return c, nil
}

// Birthdate returns the date the grid starts at.
func (c *Chart) Birthdate() time.Time { return c.birthdate }

// MaxAge returns the final row of the grid.
func (c *Chart) MaxAge() int { return c.maxAge }

// Params returns the styling parameters scaled to the chart's size.
func (c *Chart) Params() Params { return c.params }

// Epsilon returns the configured label spacing tolerance.
func (c *Chart) Epsilon() float64 { return c.epsilon }

// Size returns the chart's paper size.
func (c *Chart) Size() Papersize { return c.size }

// Window returns the visible row range [min, max).
func (c *Chart) Window() (minAge, maxAge int) { return c.minVisible, c.maxVisible }

// SetAgeWindow restricts rendering to the rows [minAge, maxAge).
// Registrations outside the window stay stored, so exports remain
// lossless; they are only excluded from layout and drawing.
func (c *Chart) SetAgeWindow(minAge, maxAge int) error {
	if minAge < 0 {
		return fmt.Errorf("min age must not be negative, got %d", minAge)
	}
	if minAge >= maxAge {
		return fmt.Errorf("min age %d must be smaller than max age %d", minAge, maxAge)
	}
	if maxAge > c.maxAge {
		return fmt.Errorf("max age %d exceeds the chart's lifespan of %d years", maxAge, c.maxAge)
	}
	c.minVisible = minAge
	c.maxVisible = maxAge
	return nil
}

// AddTitle puts a title above the grid. A zero fontSize keeps the
// size-scaled default.
func (c *Chart) AddTitle(text string, fontSize float64) {
	c.title = text
	c.titleFontSize = fontSize
}

// Title returns the chart title and its font size override.
func (c *Chart) Title() (string, float64) { return c.title, c.titleFontSize }

// AddWatermark draws text diagonally across the grid at low opacity.
func (c *Chart) AddWatermark(text string) { c.watermark = text }

// Watermark returns the watermark text, empty if none was set.
func (c *Chart) Watermark() string { return c.watermark }

// AddImage clips a background image to the grid area.
func (c *Chart) AddImage(path string, alpha float64) {
	c.imagePath = path
	c.imageAlpha = alpha
}

// Image returns the background image path and opacity.
func (c *Chart) Image() (string, float64) { return c.imagePath, c.imageAlpha }

// ShowMaxAgeLabel places the max age at the bottom right of the grid.
func (c *Chart) ShowMaxAgeLabel() { c.drawMaxAge = true }

// MaxAgeLabelShown reports whether the max age label was requested.
func (c *Chart) MaxAgeLabelShown() bool { return c.drawMaxAge }

// FormatXAxis changes the x axis label text and styling. An empty text
// keeps the current label.
func (c *Chart) FormatXAxis(text string, style AxisStyle) {
	if text != "" {
		c.xAxisLabel = text
	}
	mergeAxisStyle(&c.xAxis, style)
}

// FormatYAxis changes the y axis label text and styling. An empty text
// keeps the current label.
func (c *Chart) FormatYAxis(text string, style AxisStyle) {
	if text != "" {
		c.yAxisLabel = text
	}
	mergeAxisStyle(&c.yAxis, style)
}

func mergeAxisStyle(dst *AxisStyle, src AxisStyle) {
	if src.PositionX != nil {
		dst.PositionX = src.PositionX
	}
	if src.PositionY != nil {
		dst.PositionY = src.PositionY
	}
	if src.Color != nil {
		dst.Color = src.Color
	}
	if src.FontSize != nil {
		dst.FontSize = src.FontSize
	}
}

// XAxis returns the x axis label and styling overrides.
func (c *Chart) XAxis() (string, AxisStyle) { return c.xAxisLabel, c.xAxis }

// YAxis returns the y axis label and styling overrides.
func (c *Chart) YAxis() (string, AxisStyle) { return c.yAxisLabel, c.yAxis }

// Eras returns the registered era drawing records.
func (c *Chart) Eras() []Era { return c.eras }

// EraSpans returns the registered era span drawing records.
func (c *Chart) EraSpans() []EraSpan { return c.eraSpans }

// EventRecords returns the original life event registrations.
func (c *Chart) EventRecords() []EventRecord { return c.eventRecords }

// EraRecords returns the original era registrations.
func (c *Chart) EraRecords() []EraRecord { return c.eraRecords }

// EraSpanRecords returns the original era span registrations.
func (c *Chart) EraSpanRecords() []EraSpanRecord { return c.spanRecords }

// EntryOption configures a single event, era or span registration.
type EntryOption func(*entryOptions)

type entryOptions struct {
	color        string
	hint         *geometry.Point
	side         Side
	plainSquare  bool
	alpha        float64
	colorMarkers bool
}

// WithColor sets the color of the entry and its label. When absent, a
// color is drawn from the chart's color source.
func WithColor(color string) EntryOption {
	return func(o *entryOptions) { o.color = color }
}

// WithHint suggests an approximate label position in data units. The
// layout honors it where possible; hints inside the grid body snap to
// the nearest edge. Mutually exclusive with WithSide.
func WithHint(x, y float64) EntryOption {
	return func(o *entryOptions) { o.hint = &geometry.Point{X: x, Y: y} }
}

// WithSide forces the label onto the given side of the grid. Mutually
// exclusive with WithHint.
func WithSide(side Side) EntryOption {
	return func(o *entryOptions) { o.side = side }
}

// WithPlainSquare leaves the event's grid square in the default grid
// color instead of coloring it like the label.
func WithPlainSquare() EntryOption {
	return func(o *entryOptions) { o.plainSquare = true }
}

// WithAlpha sets the background opacity of an era band.
func WithAlpha(alpha float64) EntryOption {
	return func(o *entryOptions) { o.alpha = alpha }
}

// WithColoredEndMarkers colors an era span's start and end squares the
// same color as its label.
func WithColoredEndMarkers() EntryOption {
	return func(o *entryOptions) { o.colorMarkers = true }
}

func buildEntryOptions(opts []EntryOption) (entryOptions, error) {
	o := entryOptions{alpha: DefaultEraAlpha}
	for _, opt := range opts {
		opt(&o)
	}
	if o.hint != nil && o.side != SideAuto {
		return o, fmt.Errorf("hint and side are mutually exclusive; specify only one of them")
	}
	return o, nil
}

// validateDate rejects dates outside [birthdate, birthdate+maxAge].
// Both boundaries are inclusive.
func (c *Chart) validateDate(date time.Time) error {
	limit := c.birthdate.AddDate(c.maxAge, 0, 0)
	if date.Before(c.birthdate) || date.After(limit) {
		return fmt.Errorf("date %s is outside the lifespan [%s, %s]",
			date.Format("2006-01-02"),
			c.birthdate.Format("2006-01-02"),
			limit.Format("2006-01-02"))
	}
	return nil
}

// AddLifeEvent labels a single date on the grid. The event's square is
// circled and, unless WithPlainSquare is given, colored to match.
func (c *Chart) AddLifeEvent(text string, date time.Time, opts ...EntryOption) error {
	date = dateOnly(date)
	if err := c.validateDate(date); err != nil {
		return fmt.Errorf("life event %q: %w", text, err)
	}
	o, err := buildEntryOptions(opts)
	if err != nil {
		return fmt.Errorf("life event %q: %w", text, err)
	}

	pos := dateToPosition(c.birthdate, date)
	color := o.color
	if color == "" {
		color = c.colors.Next()
	}

	defaultX := 0.0
	if pos.Point.X >= WeeksPerRow/2 {
		defaultX = WeeksPerRow
	}
	labelPoint := c.labelPoint(o.hint, o.side, defaultX, pos.Point.Y)

	var marker *Marker
	if !o.plainSquare {
		marker = &Marker{At: pos.Point, Color: color}
	}

	c.annotations = append(c.annotations, &Annotation{
		Date:             date,
		Text:             text,
		Color:            color,
		EventPoint:       pos.Point,
		CircleEventPoint: true,
		Marker:           marker,
		SourceRange:      &YRange{Lo: pos.Point.Y, Hi: pos.Point.Y},
		pos:              labelPoint,
	})
	c.eventRecords = append(c.eventRecords, EventRecord{
		Text:        text,
		Date:        date,
		Color:       color,
		Hint:        o.hint,
		Side:        o.side,
		ColorSquare: !o.plainSquare,
	})
	return nil
}

// AddEra colors in a contiguous section of the grid between two dates
// and labels it. Only WithColor, WithSide and WithAlpha apply.
func (c *Chart) AddEra(text string, startDate, endDate time.Time, opts ...EntryOption) error {
	startDate, endDate = dateOnly(startDate), dateOnly(endDate)
	if err := c.validateDate(startDate); err != nil {
		return fmt.Errorf("era %q: %w", text, err)
	}
	if err := c.validateDate(endDate); err != nil {
		return fmt.Errorf("era %q: %w", text, err)
	}
	o, err := buildEntryOptions(opts)
	if err != nil {
		return fmt.Errorf("era %q: %w", text, err)
	}
	if o.hint != nil {
		return fmt.Errorf("era %q: hints are not supported for eras; use a side", text)
	}

	start := dateToPosition(c.birthdate, startDate)
	end := dateToPosition(c.birthdate, endDate)
	color := o.color
	if color == "" {
		color = c.colors.Next()
	}

	c.eras = append(c.eras, Era{
		Text:  text,
		Start: start,
		End:   end,
		Color: color,
		Alpha: o.alpha,
	})

	midY := (start.Point.Y + end.Point.Y) / 2
	labelPoint := c.labelPoint(nil, o.side, WeeksPerRow, midY)

	// The midpoint date keeps the label sorted as close to the middle
	// of the era as possible.
	middle := startDate.Add(endDate.Sub(startDate) / 2)

	c.annotations = append(c.annotations, &Annotation{
		Date:        middle,
		Text:        text,
		Color:       color,
		EventPoint:  labelPoint,
		SourceRange: &YRange{Lo: start.Point.Y, Hi: end.Point.Y},
		pos:         labelPoint,
	})
	c.eraRecords = append(c.eraRecords, EraRecord{
		Text:      text,
		StartDate: startDate,
		EndDate:   endDate,
		Color:     color,
		Side:      o.side,
		Alpha:     o.alpha,
	})
	return nil
}

// AddEraSpan draws a dumbbell over a section of the grid: circles at
// the start and end dates joined by a line, with a label.
func (c *Chart) AddEraSpan(text string, startDate, endDate time.Time, opts ...EntryOption) error {
	startDate, endDate = dateOnly(startDate), dateOnly(endDate)
	if err := c.validateDate(startDate); err != nil {
		return fmt.Errorf("era span %q: %w", text, err)
	}
	if err := c.validateDate(endDate); err != nil {
		return fmt.Errorf("era span %q: %w", text, err)
	}
	o, err := buildEntryOptions(opts)
	if err != nil {
		return fmt.Errorf("era span %q: %w", text, err)
	}

	start := dateToPosition(c.birthdate, startDate)
	end := dateToPosition(c.birthdate, endDate)
	color := o.color
	if color == "" {
		color = c.colors.Next()
	}

	midY := (start.Point.Y + end.Point.Y) / 2
	labelPoint := c.labelPoint(o.hint, o.side, WeeksPerRow, midY)

	var startMarker, endMarker *Marker
	if o.colorMarkers {
		startMarker = &Marker{At: start.Point, Color: color}
		endMarker = &Marker{At: end.Point, Color: color}
	}

	c.eraSpans = append(c.eraSpans, EraSpan{
		Text:        text,
		Start:       start,
		End:         end,
		Color:       color,
		StartMarker: startMarker,
		EndMarker:   endMarker,
	})

	middle := startDate.Add(endDate.Sub(startDate) / 2)
	eventPoint := geometry.Point{
		X: (start.Point.X + end.Point.X) / 2,
		Y: midY,
	}

	c.annotations = append(c.annotations, &Annotation{
		Date:        middle,
		Text:        text,
		Color:       color,
		EventPoint:  eventPoint,
		SourceRange: &YRange{Lo: start.Point.Y, Hi: end.Point.Y},
		pos:         labelPoint,
	})
	c.spanRecords = append(c.spanRecords, EraSpanRecord{
		Text:         text,
		StartDate:    startDate,
		EndDate:      endDate,
		Color:        color,
		Hint:         o.hint,
		Side:         o.side,
		ColorMarkers: o.colorMarkers,
	})
	return nil
}

// labelPoint derives the initial label anchor from the hint or side,
// falling back to the defaults.
func (c *Chart) labelPoint(hint *geometry.Point, side Side, defaultX, defaultY float64) geometry.Point {
	hint = c.sanitizeHint(hint)

	x, y := defaultX, defaultY
	if hint != nil {
		x, y = hint.X, hint.Y
	}
	switch side {
	case SideLeft:
		x = 0
	case SideRight:
		x = WeeksPerRow
	}
	return geometry.Point{X: x, Y: y}
}

// sanitizeHint snaps a hint whose x falls inside the grid body, or
// absurdly far past an edge, onto the nearest grid edge. Hints already
// parked within tolerance of an edge are preserved.
func (c *Chart) sanitizeHint(hint *geometry.Point) *geometry.Point {
	if hint == nil {
		return nil
	}
	h := *hint
	edge := c.hintEdgeTolerance
	if h.Y >= 0 && h.Y <= float64(c.maxAge) {
		if (h.X >= WeeksPerRow/2 && h.X < WeeksPerRow) || h.X > WeeksPerRow+edge {
			h.X = WeeksPerRow
		}
		if (h.X > 0 && h.X < WeeksPerRow/2) || h.X < -edge {
			h.X = 0
		}
	}
	return &h
}

// Layout runs a full render pass over the visible annotations: measure
// every label, then resolve conflicts. The returned annotations are
// copies; the registered set is left untouched, so repeated calls
// reproduce the same layout.
func (c *Chart) Layout(m Measurer) ([]*Annotation, error) {
	visible := make([]*Annotation, 0, len(c.annotations))
	for _, a := range c.annotations {
		if !c.annotationVisible(a) {
			continue
		}
		clone := *a
		clone.bbox = m.Measure(clone.Text, clone.pos, c.params.FontSize)
		clone.measured = true
		visible = append(visible, &clone)
	}
	return resolveConflicts(visible, resolveConfig{
		xMin:        gridXMin,
		xMax:        WeeksPerRow,
		minAge:      float64(c.minVisible),
		maxAge:      float64(c.maxVisible),
		leftOffset:  c.params.AnnotationLeftOffset,
		rightOffset: c.params.AnnotationRightOffset,
		epsilon:     c.epsilon,
	})
}

// annotationVisible applies the age window to an annotation's source
// row range. Annotations without a range are whole-figure elements and
// always visible.
func (c *Chart) annotationVisible(a *Annotation) bool {
	if a.SourceRange == nil {
		return true
	}
	return a.SourceRange.Hi >= float64(c.minVisible) && a.SourceRange.Lo < float64(c.maxVisible)
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
