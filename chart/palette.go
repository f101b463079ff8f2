package chart

import "math/rand"

// defaultPalette is the pool colors are drawn from when a registration
// does not name one. A readable subset of the CSS named colors.
var defaultPalette = []string{
	"crimson", "royalblue", "seagreen", "darkorange", "mediumorchid",
	"teal", "firebrick", "steelblue", "olivedrab", "chocolate",
	"darkmagenta", "cadetblue", "indianred", "darkslateblue",
	"darkgoldenrod", "mediumvioletred", "forestgreen", "sienna",
	"slategray", "rebeccapurple",
}

// ColorSource hands out colors for registrations that did not specify
// one. Implementations must be deterministic for a fixed seed so that
// repeated renders of the same config agree.
type ColorSource interface {
	Next() string
}

type randomPalette struct {
	colors []string
	rng    *rand.Rand
}

// NewRandomPalette returns a ColorSource picking uniformly from the
// default palette with its own seeded generator, so color assignment
// carries no process-wide state.
func NewRandomPalette(seed int64) ColorSource {
	return &randomPalette{
		colors: defaultPalette,
		rng:    rand.New(rand.NewSource(seed)),
	}
}

func (p *randomPalette) Next() string {
	return p.colors[p.rng.Intn(len(p.colors))]
}

type cyclePalette struct {
	colors []string
	i      int
}

// NewCyclePalette returns a ColorSource walking the given colors in
// order, wrapping around. Handy for tests and for charts that want a
// fixed scheme.
func NewCyclePalette(colors []string) ColorSource {
	if len(colors) == 0 {
		colors = defaultPalette
	}
	return &cyclePalette{colors: colors}
}

func (p *cyclePalette) Next() string {
	c := p.colors[p.i%len(p.colors)]
	p.i++
	return c
}
