package chart

import (
	"fmt"
	"math"
)

// Papersize names a standard paper size in inches. All styling
// parameters scale with the size's diagonal relative to A3, the
// reference size.
type Papersize struct {
	Name   string
	Width  float64
	Height float64
}

var (
	PapersizeA0          = Papersize{"A0", 33.1, 46.8}
	PapersizeA1          = Papersize{"A1", 23.4, 33.1}
	PapersizeA2          = Papersize{"A2", 16.5, 23.4}
	PapersizeA3          = Papersize{"A3", 11.7, 16.5}
	PapersizeA4          = Papersize{"A4", 8.3, 11.7}
	PapersizeA5          = Papersize{"A5", 5.8, 8.3}
	PapersizeA6          = Papersize{"A6", 4.1, 5.8}
	PapersizeA7          = Papersize{"A7", 2.9, 4.1}
	PapersizeA8          = Papersize{"A8", 2.0, 2.9}
	PapersizeA9          = Papersize{"A9", 1.5, 2.0}
	PapersizeA10         = Papersize{"A10", 1.0, 1.5}
	PapersizeHalfLetter  = Papersize{"HalfLetter", 5.5, 8.5}
	PapersizeLetter      = Papersize{"Letter", 8.5, 11.0}
	PapersizeLegal       = Papersize{"Legal", 8.5, 14.0}
	PapersizeJuniorLegal = Papersize{"JuniorLegal", 5.0, 8.0}
	PapersizeLedger      = Papersize{"Ledger", 11.0, 17.0}
	PapersizeTabloid     = Papersize{"Tabloid", 17.0, 11.0}
)

var papersizes = map[string]Papersize{
	"A0": PapersizeA0, "A1": PapersizeA1, "A2": PapersizeA2,
	"A3": PapersizeA3, "A4": PapersizeA4, "A5": PapersizeA5,
	"A6": PapersizeA6, "A7": PapersizeA7, "A8": PapersizeA8,
	"A9": PapersizeA9, "A10": PapersizeA10,
	"HalfLetter": PapersizeHalfLetter, "Letter": PapersizeLetter,
	"Legal": PapersizeLegal, "JuniorLegal": PapersizeJuniorLegal,
	"Ledger": PapersizeLedger, "Tabloid": PapersizeTabloid,
}

// ParsePapersize resolves a paper size by name, e.g. "A3" or "Letter".
func ParsePapersize(name string) (Papersize, error) {
	if p, ok := papersizes[name]; ok {
		return p, nil
	}
	return Papersize{}, fmt.Errorf("unknown paper size %q", name)
}

func (p Papersize) diagonal() float64 {
	return math.Hypot(p.Width, p.Height)
}

var a3Diagonal = PapersizeA3.diagonal()

func clampInt(v, lo, hi int) float64 {
	if v < lo {
		v = lo
	}
	if v > hi {
		v = hi
	}
	return float64(v)
}

// round2 rounds to 2 decimal places, matching the granularity the
// style tables were tuned at.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Params holds every styling knob for a chart, pre-scaled to a paper
// size. Font sizes are in points, line widths in points, offsets in
// data units.
type Params struct {
	Size Papersize
	DPI  float64

	// AxesRect is the [left, bottom, width, height] fraction of the
	// figure occupied by the grid axes.
	AxesRect [4]float64

	AxisLabelFontSize float64
	TitleFontSize     float64
	FontSize          float64
	LineWidth         float64
	MarkerSize        float64
	MarkerEdgeWidth   float64
	TickFontSize      float64

	XLabelPos      [2]float64
	XLabelColor    string
	XLabelFontSize float64
	YLabelPos      [2]float64
	YLabelColor    string
	YLabelFontSize float64

	MaxAgeFontSize float64
	TitleYPos      float64

	AnnotationMarkerSize float64
	AnnotationEdgeWidth  float64
	AnnotationLineWidth  float64

	// AnnotationLeftOffset and AnnotationRightOffset are how far past
	// the grid edge (in week columns) labels are parked on each side.
	AnnotationLeftOffset  float64
	AnnotationRightOffset float64

	EraLineWidth      float64
	WatermarkFontSize float64
}

// NewParams builds the styling parameters for a paper size, scaling
// every knob by the diagonal ratio to A3 with the same floors and
// clamps the reference style table uses.
func NewParams(size Papersize) Params {
	s := size.diagonal() / a3Diagonal

	p := Params{
		Size:     size,
		DPI:      300,
		AxesRect: [4]float64{0.25, 0.1, 0.5, 0.8},

		AxisLabelFontSize: clampInt(int(math.Round(16*s)), 1, 40),
		TitleFontSize:     clampInt(int(math.Round(28*s)), 4, 128),
		FontSize:          clampInt(int(math.Round(18*s)), 1, 60),
		LineWidth:         round2(math.Max(0.2, 0.5*s)),
		MarkerSize:        round2(math.Max(0.5, 4.5*s)),
		MarkerEdgeWidth:   round2(math.Max(0.01, 0.50*s)),
		TickFontSize:      clampInt(int(math.Round(10*s)), 1, 20),

		XLabelPos: [2]float64{0.20, 1.05},
		YLabelPos: [2]float64{-0.03, 0.95},

		MaxAgeFontSize: clampInt(int(math.Round(20*s)), 2, 38),

		AnnotationMarkerSize: round2(math.Max(0.001, 8.0*s)),
		AnnotationEdgeWidth:  round2(math.Max(0.1, 0.8*s)),
		AnnotationLineWidth:  round2(math.Max(0.1, 1.0*s)),

		EraLineWidth:      round2(math.Max(0.2, 1.0*s)),
		WatermarkFontSize: clampInt(int(math.Round(120*s)), 18, 200),
	}

	if s > 0.3 {
		p.TitleYPos = 0.95
	} else {
		p.TitleYPos = 0.97
	}

	// Small papers need more clearance for labels than large ones,
	// relative to the grid.
	if s < 1.5 {
		p.AnnotationLeftOffset = 6
		p.AnnotationRightOffset = 5
	} else {
		p.AnnotationLeftOffset = 3
		p.AnnotationRightOffset = 3
	}

	return p
}
