package chart

import (
	"fmt"
	"sort"
)

// resolveConfig carries the grid extents, side offsets and spacing
// tolerance the resolver works with.
type resolveConfig struct {
	xMin   float64
	xMax   float64
	minAge float64
	maxAge float64

	leftOffset  float64
	rightOffset float64
	epsilon     float64
}

// resolveConflicts assigns every measured annotation a final,
// non-overlapping position.
//
// Labels are first snapped to a fixed offset past the left or right
// edge of the grid, chosen from their provisional x (which encodes the
// default side, a sanitized hint, or a forced side). Each side is then
// sorted so that connector lines cross as little as possible, and
// walked top to bottom: any label whose box collides with an already
// placed one is pushed down by the overlap plus epsilon, rechecked
// against every placed label in turn. The greedy pass is O(n²) per
// side and fully deterministic; it does not minimize total
// displacement, but it keeps labels near their chronological
// neighbors and guarantees no two same-side boxes overlap.
func resolveConflicts(annotations []*Annotation, cfg resolveConfig) ([]*Annotation, error) {
	var left, right []*Annotation

	for _, a := range annotations {
		if !a.Measured() {
			return nil, fmt.Errorf("annotation %q has no measured bounding box; measure all labels before resolving", a.Text)
		}

		switch {
		case a.pos.Y >= cfg.minAge && a.pos.Y <= cfg.maxAge:
			// Snap to the offset past the grid edge. Hints that are
			// already parked further out than the offset are honored
			// as-is.
			width := a.bbox.Width()
			x := a.pos.X
			if (x >= cfg.xMax/2 && x < cfg.xMax) ||
				(x >= cfg.xMax && x < cfg.xMax+cfg.rightOffset) {
				a.alignLeftEdge(cfg.xMax + cfg.rightOffset)
			} else if (x >= 0 && x < cfg.xMax/2) ||
				(x <= cfg.xMin && x > cfg.xMin-cfg.leftOffset) {
				a.alignLeftEdge(cfg.xMin - cfg.leftOffset - width)
			} else {
				a.alignLeftEdge(x)
			}
			if a.pos.X >= cfg.xMax/2 {
				a.RelPos = RelPos{X: 0, Y: 0.5}
				right = append(right, a)
			} else {
				a.RelPos = RelPos{X: 1, Y: 0.5}
				left = append(left, a)
			}
		case a.pos.Y < cfg.minAge:
			// Above the visible rows; drawn as a band over the grid,
			// pointing down at it.
			a.RelPos = RelPos{X: 0.5, Y: 0}
			right = append(right, a)
		default:
			a.RelPos = RelPos{X: 0.5, Y: 1}
			right = append(right, a)
		}
	}

	// On the left, lower event columns go first; on the right, higher
	// ones. Each side then places its labels working outward from the
	// grid, which minimizes connector line crossings.
	sort.SliceStable(left, func(i, j int) bool {
		if left[i].EventPoint.Y != left[j].EventPoint.Y {
			return left[i].EventPoint.Y < left[j].EventPoint.Y
		}
		return left[i].EventPoint.X < left[j].EventPoint.X
	})
	sort.SliceStable(right, func(i, j int) bool {
		if right[i].EventPoint.Y != right[j].EventPoint.Y {
			return right[i].EventPoint.Y < right[j].EventPoint.Y
		}
		return right[i].EventPoint.X > right[j].EventPoint.X
	})

	final := make([]*Annotation, 0, len(annotations))
	for _, side := range [][]*Annotation{left, right} {
		placed := make([]*Annotation, 0, len(side))
		for _, candidate := range side {
			for _, other := range placed {
				if candidate.bbox.Overlaps(other.bbox) {
					_, dy := candidate.bbox.Correction(other.bbox, cfg.epsilon)
					candidate.Translate(0, dy)
				}
				if candidate.bbox.WithinEpsilon(other.bbox, cfg.epsilon) {
					candidate.Translate(0, cfg.epsilon)
				}
			}
			placed = append(placed, candidate)
		}
		final = append(final, placed...)
	}

	return final, nil
}
