package render

import (
	"fmt"

	"github.com/fogleman/gg"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"

	"github.com/buffos/lifeweeks/geometry"
)

// TextMeasurer measures label text with real font metrics and reports
// bounding boxes in data units, centered on the anchor point, which is
// the contract the layout engine expects. One instance serves a whole
// render pass; it is not safe for concurrent use, which the
// single-threaded render loop never needs.
type TextMeasurer struct {
	sfnt  *opentype.Font
	dc    *gg.Context
	dpi   float64
	u     float64
	faces map[float64]font.Face
}

// NewTextMeasurer builds a measurer for the given frame and export
// DPI. Text is measured in the bundled Go Regular face, the same one
// the SVG output is styled after.
func NewTextMeasurer(f Frame, dpi float64) (*TextMeasurer, error) {
	sfnt, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse bundled font: %w", err)
	}
	return &TextMeasurer{
		sfnt:  sfnt,
		dc:    gg.NewContext(1, 1),
		dpi:   dpi,
		u:     f.U,
		faces: make(map[float64]font.Face),
	}, nil
}

func (m *TextMeasurer) face(sizePts float64) (font.Face, error) {
	if f, ok := m.faces[sizePts]; ok {
		return f, nil
	}
	f, err := opentype.NewFace(m.sfnt, &opentype.FaceOptions{
		Size:    sizePts,
		DPI:     m.dpi,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, err
	}
	m.faces[sizePts] = f
	return f, nil
}

// Measure returns the bounding box the text occupies at the given
// anchor, in data units. Falls back to an average-advance estimate if
// a face cannot be built at the requested size, so layout can always
// proceed.
func (m *TextMeasurer) Measure(text string, at geometry.Point, fontPts float64) geometry.BBox {
	wPx, hPx := m.measurePx(text, fontPts)
	return geometry.NewBBox(at, wPx/m.u, hPx/m.u)
}

func (m *TextMeasurer) measurePx(text string, fontPts float64) (w, h float64) {
	face, err := m.face(fontPts)
	if err != nil {
		// Rough heuristic: average glyph advance is about 0.6 em.
		pxSize := fontPts * m.dpi / 72
		return float64(len([]rune(text))) * pxSize * 0.6, pxSize * 1.2
	}
	m.dc.SetFontFace(face)
	return m.dc.MeasureString(text)
}
