package chart

import (
	"fmt"
	"time"

	"github.com/buffos/lifeweeks/geometry"
)

// Side is a forced left/right placement constraint for a label.
type Side int

const (
	// SideAuto lets the layout pick a side from the event's column.
	SideAuto Side = iota
	SideLeft
	SideRight
)

// String returns the config-file spelling of the side.
func (s Side) String() string {
	switch s {
	case SideLeft:
		return "left"
	case SideRight:
		return "right"
	default:
		return "auto"
	}
}

// ParseSide converts a config-file spelling back into a Side.
func ParseSide(s string) (Side, error) {
	switch s {
	case "left":
		return SideLeft, nil
	case "right":
		return SideRight, nil
	case "", "auto":
		return SideAuto, nil
	}
	return SideAuto, fmt.Errorf("unknown side %q: must be \"left\" or \"right\"", s)
}

// RelPos is a normalized (0..1, 0..1) anchor on a label's bounding box
// describing where its connector line originates. (0, 0.5) is the
// middle of the left edge, (0.5, 1) the middle of the bottom edge.
type RelPos struct {
	X float64
	Y float64
}

// Marker describes a colored marker to draw on a grid cell.
type Marker struct {
	At    geometry.Point
	Color string
}

// YRange is the inclusive [Lo, Hi] extent of rows an event, era or
// span occupies. The visibility filter uses it to decide whether an
// annotation belongs to the current age window.
type YRange struct {
	Lo float64
	Hi float64
}

// Annotation binds a label's text and event metadata to a mutable
// on-canvas position. The label anchor and its measured bounding box
// only ever move together, through Translate, so the pair cannot fall
// out of step during conflict resolution.
type Annotation struct {
	// Date orders labels during layout. For events it is the event
	// date; for eras and spans the midpoint of the range.
	Date time.Time
	Text string

	Color string

	// EventPoint is the grid location the connector line points at.
	EventPoint geometry.Point

	// CircleEventPoint marks single-date events whose grid cell gets a
	// circle drawn around it.
	CircleEventPoint bool

	Marker *Marker

	// RelPos is assigned during layout from the side the label lands on.
	RelPos RelPos

	// SourceRange is the row extent of the underlying event, era or
	// span. Nil means the annotation is a whole-figure element that is
	// never windowed out.
	SourceRange *YRange

	pos      geometry.Point
	bbox     geometry.BBox
	measured bool
}

// Pos returns the current label anchor point.
func (a *Annotation) Pos() geometry.Point { return a.pos }

// BBox returns the label's current bounding box. Valid only after
// SetBBox has been called.
func (a *Annotation) BBox() geometry.BBox { return a.bbox }

// Measured reports whether the label has a measured bounding box.
func (a *Annotation) Measured() bool { return a.measured }

// SetBBox attaches the measured bounding box for the label's text.
func (a *Annotation) SetBBox(b geometry.BBox) {
	a.bbox = b
	a.measured = true
}

// Translate moves the label anchor and its bounding box together.
func (a *Annotation) Translate(dx, dy float64) {
	a.pos = a.pos.Translate(dx, dy)
	a.bbox = a.bbox.Translate(dx, dy)
}

// alignLeftEdge places the label anchor at x, dragging the box so its
// left edge sits on the anchor. Used once the layout has decided a side.
func (a *Annotation) alignLeftEdge(x float64) {
	width := a.bbox.Width()
	a.pos.X = x
	a.bbox.XMin = x
	a.bbox.XMax = x + width
}

func (a *Annotation) String() string {
	return fmt.Sprintf("Annotation %q at (%g, %g)", a.Text, a.pos.X, a.pos.Y)
}

// Era is a colored background highlight over a contiguous range of
// rows, from Start to End grid positions.
type Era struct {
	Text  string
	Start DatePosition
	End   DatePosition
	Color string
	Alpha float64
}

// EraSpan is a dumbbell-style range marker: two circles at Start and
// End joined by a line, with no background fill. The endpoint markers
// are optional.
type EraSpan struct {
	Text        string
	Start       DatePosition
	End         DatePosition
	Color       string
	StartMarker *Marker
	EndMarker   *Marker
}
