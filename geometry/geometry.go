// Package geometry provides the point and bounding box primitives used
// by the chart layout engine. Coordinates are in data units: x counts
// week columns, y counts years of life and grows downward.
package geometry

import "math"

// Point is an (x, y) pair in data units.
type Point struct {
	X float64
	Y float64
}

// Translate returns the point shifted by (dx, dy).
func (p Point) Translate(dx, dy float64) Point {
	return Point{X: p.X + dx, Y: p.Y + dy}
}

// BBox is an axis-aligned rectangle in data units.
type BBox struct {
	XMin float64
	YMin float64
	XMax float64
	YMax float64
}

// NewBBox builds a bounding box of the given size centered on p.
func NewBBox(p Point, width, height float64) BBox {
	return BBox{
		XMin: p.X - width/2,
		YMin: p.Y - height/2,
		XMax: p.X + width/2,
		YMax: p.Y + height/2,
	}
}

// Width returns the horizontal extent of the box.
func (b BBox) Width() float64 { return b.XMax - b.XMin }

// Height returns the vertical extent of the box.
func (b BBox) Height() float64 { return b.YMax - b.YMin }

// Translate returns the box shifted by (dx, dy).
func (b BBox) Translate(dx, dy float64) BBox {
	return BBox{
		XMin: b.XMin + dx,
		YMin: b.YMin + dy,
		XMax: b.XMax + dx,
		YMax: b.YMax + dy,
	}
}

// Overlaps reports whether the two boxes geometrically overlap. Boxes
// that merely touch on an edge do not overlap.
func (b BBox) Overlaps(o BBox) bool {
	if b.XMin >= o.XMax || o.XMin >= b.XMax {
		return false
	}
	if b.YMin >= o.YMax || o.YMin >= b.YMax {
		return false
	}
	return true
}

// WithinEpsilon reports whether the two boxes are closer than eps on
// both axes, i.e. a near miss that still needs separating.
func (b BBox) WithinEpsilon(o BBox, eps float64) bool {
	if b.XMin-eps > o.XMax || o.XMin-eps > b.XMax {
		return false
	}
	if b.YMin-eps > o.YMax || o.YMin-eps > b.YMax {
		return false
	}
	return true
}

// Correction returns the displacement that would move b clear of the
// already placed box o, with eps of breathing room added on each axis.
// The layout engine only applies the vertical component; the horizontal
// term is reported for completeness.
func (b BBox) Correction(o BBox, eps float64) (dx, dy float64) {
	dx = math.Abs(o.XMax-b.XMin) + eps
	dy = math.Abs(o.YMax-b.YMin) + eps
	return dx, dy
}
