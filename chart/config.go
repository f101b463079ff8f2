package chart

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/buffos/lifeweeks/geometry"
)

// ConfigVersion is the schema version written to exported configs.
const ConfigVersion = 1

const dateLayout = "2006-01-02"

// configFile is the flat wire form of a chart definition. Defaults are
// elided on export so shared configs stay small; layout state is never
// written, only the original registration parameters.
type configFile struct {
	Version           int             `json:"version" yaml:"version"`
	Birthdate         string          `json:"birthdate" yaml:"birthdate"`
	MaxAge            int             `json:"max_age,omitempty" yaml:"max_age,omitempty"`
	MinAge            int             `json:"min_age,omitempty" yaml:"min_age,omitempty"`
	VisibleMaxAge     int             `json:"visible_max_age,omitempty" yaml:"visible_max_age,omitempty"`
	Size              string          `json:"size,omitempty" yaml:"size,omitempty"`
	DPI               float64         `json:"dpi,omitempty" yaml:"dpi,omitempty"`
	LabelSpaceEpsilon float64         `json:"label_space_epsilon,omitempty" yaml:"label_space_epsilon,omitempty"`
	Title             *titleConfig    `json:"title,omitempty" yaml:"title,omitempty"`
	Watermark         string          `json:"watermark,omitempty" yaml:"watermark,omitempty"`
	Image             *imageConfig    `json:"image,omitempty" yaml:"image,omitempty"`
	ShowMaxAgeLabel   bool            `json:"show_max_age_label,omitempty" yaml:"show_max_age_label,omitempty"`
	Events            []eventConfig   `json:"events,omitempty" yaml:"events,omitempty"`
	Eras              []eraConfig     `json:"eras,omitempty" yaml:"eras,omitempty"`
	EraSpans          []spanConfig    `json:"era_spans,omitempty" yaml:"era_spans,omitempty"`
	Styling           *stylingConfig  `json:"styling,omitempty" yaml:"styling,omitempty"`
}

// titleConfig accepts either a plain string or a {text, fontsize}
// object, and writes the plain string back when no fontsize was given.
type titleConfig struct {
	Text     string  `json:"text" yaml:"text"`
	FontSize float64 `json:"fontsize,omitempty" yaml:"fontsize,omitempty"`
}

func (t *titleConfig) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		t.Text = s
		return nil
	}
	type plain titleConfig
	return json.Unmarshal(data, (*plain)(t))
}

func (t titleConfig) MarshalJSON() ([]byte, error) {
	if t.FontSize == 0 {
		return json.Marshal(t.Text)
	}
	type plain titleConfig
	return json.Marshal(plain(t))
}

func (t *titleConfig) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		t.Text = node.Value
		return nil
	}
	type plain titleConfig
	return node.Decode((*plain)(t))
}

func (t titleConfig) MarshalYAML() (interface{}, error) {
	if t.FontSize == 0 {
		return t.Text, nil
	}
	type plain titleConfig
	return plain(t), nil
}

type imageConfig struct {
	Path  string  `json:"path" yaml:"path"`
	Alpha float64 `json:"alpha,omitempty" yaml:"alpha,omitempty"`
}

type eventConfig struct {
	Text        string     `json:"text" yaml:"text"`
	Date        string     `json:"date" yaml:"date"`
	Color       string     `json:"color,omitempty" yaml:"color,omitempty"`
	Hint        []float64  `json:"hint,omitempty" yaml:"hint,omitempty,flow"`
	Side        string     `json:"side,omitempty" yaml:"side,omitempty"`
	ColorSquare *bool      `json:"color_square,omitempty" yaml:"color_square,omitempty"`
}

type eraConfig struct {
	Text      string  `json:"text" yaml:"text"`
	StartDate string  `json:"start_date" yaml:"start_date"`
	EndDate   string  `json:"end_date" yaml:"end_date"`
	Color     string  `json:"color,omitempty" yaml:"color,omitempty"`
	Side      string  `json:"side,omitempty" yaml:"side,omitempty"`
	Alpha     float64 `json:"alpha,omitempty" yaml:"alpha,omitempty"`
}

type spanConfig struct {
	Text         string    `json:"text" yaml:"text"`
	StartDate    string    `json:"start_date" yaml:"start_date"`
	EndDate      string    `json:"end_date" yaml:"end_date"`
	Color        string    `json:"color,omitempty" yaml:"color,omitempty"`
	Hint         []float64 `json:"hint,omitempty" yaml:"hint,omitempty,flow"`
	Side         string    `json:"side,omitempty" yaml:"side,omitempty"`
	ColorMarkers bool      `json:"color_start_and_end_markers,omitempty" yaml:"color_start_and_end_markers,omitempty"`
}

type stylingConfig struct {
	XAxis *axisConfig `json:"x_axis,omitempty" yaml:"x_axis,omitempty"`
	YAxis *axisConfig `json:"y_axis,omitempty" yaml:"y_axis,omitempty"`
}

type axisConfig struct {
	Text      string   `json:"text,omitempty" yaml:"text,omitempty"`
	PositionX *float64 `json:"positionx,omitempty" yaml:"positionx,omitempty"`
	PositionY *float64 `json:"positiony,omitempty" yaml:"positiony,omitempty"`
	Color     *string  `json:"color,omitempty" yaml:"color,omitempty"`
	FontSize  *float64 `json:"fontsize,omitempty" yaml:"fontsize,omitempty"`
}

func hintConfig(h *geometry.Point) []float64 {
	if h == nil {
		return nil
	}
	return []float64{h.X, h.Y}
}

func parseHint(h []float64) (*geometry.Point, error) {
	if h == nil {
		return nil, nil
	}
	if len(h) != 2 {
		return nil, fmt.Errorf("hint must be an [x, y] pair, got %d values", len(h))
	}
	return &geometry.Point{X: h[0], Y: h[1]}, nil
}

func sideConfig(s Side) string {
	if s == SideAuto {
		return ""
	}
	return s.String()
}

// buildConfig collects every registration's original parameters into
// the wire form, eliding values still at their defaults.
func (c *Chart) buildConfig() configFile {
	cf := configFile{
		Version:   ConfigVersion,
		Birthdate: c.birthdate.Format(dateLayout),
	}

	if c.maxAge != DefaultMaxAge {
		cf.MaxAge = c.maxAge
	}
	if c.minVisible != 0 {
		cf.MinAge = c.minVisible
	}
	if c.maxVisible != c.maxAge {
		cf.VisibleMaxAge = c.maxVisible
	}
	if c.size != PapersizeA3 {
		cf.Size = c.size.Name
	}
	if c.params.DPI != 300 {
		cf.DPI = c.params.DPI
	}
	if c.epsilon != DefaultEpsilon {
		cf.LabelSpaceEpsilon = c.epsilon
	}
	if c.title != "" {
		cf.Title = &titleConfig{Text: c.title, FontSize: c.titleFontSize}
	}
	cf.Watermark = c.watermark
	if c.imagePath != "" {
		img := &imageConfig{Path: c.imagePath}
		if c.imageAlpha != 1 {
			img.Alpha = c.imageAlpha
		}
		cf.Image = img
	}
	cf.ShowMaxAgeLabel = c.drawMaxAge

	for _, rec := range c.eventRecords {
		ev := eventConfig{
			Text:  rec.Text,
			Date:  rec.Date.Format(dateLayout),
			Color: rec.Color,
			Hint:  hintConfig(rec.Hint),
			Side:  sideConfig(rec.Side),
		}
		if !rec.ColorSquare {
			f := false
			ev.ColorSquare = &f
		}
		cf.Events = append(cf.Events, ev)
	}
	for _, rec := range c.eraRecords {
		era := eraConfig{
			Text:      rec.Text,
			StartDate: rec.StartDate.Format(dateLayout),
			EndDate:   rec.EndDate.Format(dateLayout),
			Color:     rec.Color,
			Side:      sideConfig(rec.Side),
		}
		if rec.Alpha != DefaultEraAlpha {
			era.Alpha = rec.Alpha
		}
		cf.Eras = append(cf.Eras, era)
	}
	for _, rec := range c.spanRecords {
		cf.EraSpans = append(cf.EraSpans, spanConfig{
			Text:         rec.Text,
			StartDate:    rec.StartDate.Format(dateLayout),
			EndDate:      rec.EndDate.Format(dateLayout),
			Color:        rec.Color,
			Hint:         hintConfig(rec.Hint),
			Side:         sideConfig(rec.Side),
			ColorMarkers: rec.ColorMarkers,
		})
	}

	styling := &stylingConfig{}
	if x := axisToConfig(c.xAxisLabel, "Week of the Year ⟶", c.xAxis); x != nil {
		styling.XAxis = x
	}
	if y := axisToConfig(c.yAxisLabel, "⟵ Age", c.yAxis); y != nil {
		styling.YAxis = y
	}
	if styling.XAxis != nil || styling.YAxis != nil {
		cf.Styling = styling
	}

	return cf
}

func axisToConfig(label, defaultLabel string, st AxisStyle) *axisConfig {
	ax := &axisConfig{
		PositionX: st.PositionX,
		PositionY: st.PositionY,
		Color:     st.Color,
		FontSize:  st.FontSize,
	}
	if label != defaultLabel {
		ax.Text = label
	}
	if ax.Text == "" && ax.PositionX == nil && ax.PositionY == nil && ax.Color == nil && ax.FontSize == nil {
		return nil
	}
	return ax
}

// ExportConfig serializes the chart definition to JSON or YAML,
// inferring the format from the path's extension (.json, .yaml, .yml).
func (c *Chart) ExportConfig(path string) error {
	format, err := inferFormat(path)
	if err != nil {
		return err
	}
	cf := c.buildConfig()

	var data []byte
	switch format {
	case "json":
		data, err = json.MarshalIndent(cf, "", "  ")
	case "yaml":
		data, err = yaml.Marshal(cf)
	}
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}
	return nil
}

// LoadConfig reads a chart definition from a JSON or YAML file and
// rebuilds the chart through the public registration API, so every
// validation rule applies to file input as well.
func LoadConfig(path string) (*Chart, error) {
	format, err := inferFormat(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	var cf configFile
	switch format {
	case "json":
		err = json.Unmarshal(data, &cf)
	case "yaml":
		err = yaml.Unmarshal(data, &cf)
	}
	if err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return fromConfig(cf)
}

func fromConfig(cf configFile) (*Chart, error) {
	if cf.Version != ConfigVersion {
		return nil, fmt.Errorf("unsupported config version %d, expected %d", cf.Version, ConfigVersion)
	}
	birthdate, err := time.Parse(dateLayout, cf.Birthdate)
	if err != nil {
		return nil, fmt.Errorf("parse birthdate %q: %w", cf.Birthdate, err)
	}

	opts := []Option{}
	if cf.MaxAge != 0 {
		opts = append(opts, WithMaxAge(cf.MaxAge))
	}
	if cf.Size != "" {
		size, err := ParsePapersize(cf.Size)
		if err != nil {
			return nil, err
		}
		opts = append(opts, WithSize(size))
	}
	if cf.DPI != 0 {
		opts = append(opts, WithDPI(cf.DPI))
	}
	if cf.LabelSpaceEpsilon != 0 {
		opts = append(opts, WithEpsilon(cf.LabelSpaceEpsilon))
	}

	c, err := New(birthdate, opts...)
	if err != nil {
		return nil, err
	}

	if cf.MinAge != 0 || cf.VisibleMaxAge != 0 {
		maxVisible := cf.VisibleMaxAge
		if maxVisible == 0 {
			maxVisible = c.maxAge
		}
		if err := c.SetAgeWindow(cf.MinAge, maxVisible); err != nil {
			return nil, err
		}
	}

	if cf.Title != nil {
		c.AddTitle(cf.Title.Text, cf.Title.FontSize)
	}
	if cf.Watermark != "" {
		c.AddWatermark(cf.Watermark)
	}
	if cf.Image != nil {
		alpha := cf.Image.Alpha
		if alpha == 0 {
			alpha = 1
		}
		c.AddImage(cf.Image.Path, alpha)
	}
	if cf.ShowMaxAgeLabel {
		c.ShowMaxAgeLabel()
	}

	for _, ev := range cf.Events {
		date, err := time.Parse(dateLayout, ev.Date)
		if err != nil {
			return nil, fmt.Errorf("event %q: parse date %q: %w", ev.Text, ev.Date, err)
		}
		entryOpts, err := entryOptionsFrom(ev.Color, ev.Hint, ev.Side)
		if err != nil {
			return nil, fmt.Errorf("event %q: %w", ev.Text, err)
		}
		if ev.ColorSquare != nil && !*ev.ColorSquare {
			entryOpts = append(entryOpts, WithPlainSquare())
		}
		if err := c.AddLifeEvent(ev.Text, date, entryOpts...); err != nil {
			return nil, err
		}
	}
	for _, era := range cf.Eras {
		start, err := time.Parse(dateLayout, era.StartDate)
		if err != nil {
			return nil, fmt.Errorf("era %q: parse start date %q: %w", era.Text, era.StartDate, err)
		}
		end, err := time.Parse(dateLayout, era.EndDate)
		if err != nil {
			return nil, fmt.Errorf("era %q: parse end date %q: %w", era.Text, era.EndDate, err)
		}
		entryOpts, err := entryOptionsFrom(era.Color, nil, era.Side)
		if err != nil {
			return nil, fmt.Errorf("era %q: %w", era.Text, err)
		}
		if era.Alpha != 0 {
			entryOpts = append(entryOpts, WithAlpha(era.Alpha))
		}
		if err := c.AddEra(era.Text, start, end, entryOpts...); err != nil {
			return nil, err
		}
	}
	for _, span := range cf.EraSpans {
		start, err := time.Parse(dateLayout, span.StartDate)
		if err != nil {
			return nil, fmt.Errorf("era span %q: parse start date %q: %w", span.Text, span.StartDate, err)
		}
		end, err := time.Parse(dateLayout, span.EndDate)
		if err != nil {
			return nil, fmt.Errorf("era span %q: parse end date %q: %w", span.Text, span.EndDate, err)
		}
		entryOpts, err := entryOptionsFrom(span.Color, span.Hint, span.Side)
		if err != nil {
			return nil, fmt.Errorf("era span %q: %w", span.Text, err)
		}
		if span.ColorMarkers {
			entryOpts = append(entryOpts, WithColoredEndMarkers())
		}
		if err := c.AddEraSpan(span.Text, start, end, entryOpts...); err != nil {
			return nil, err
		}
	}

	if cf.Styling != nil {
		if x := cf.Styling.XAxis; x != nil {
			c.FormatXAxis(x.Text, AxisStyle{
				PositionX: x.PositionX, PositionY: x.PositionY,
				Color: x.Color, FontSize: x.FontSize,
			})
		}
		if y := cf.Styling.YAxis; y != nil {
			c.FormatYAxis(y.Text, AxisStyle{
				PositionX: y.PositionX, PositionY: y.PositionY,
				Color: y.Color, FontSize: y.FontSize,
			})
		}
	}

	return c, nil
}

func entryOptionsFrom(color string, hint []float64, side string) ([]EntryOption, error) {
	var opts []EntryOption
	if color != "" {
		opts = append(opts, WithColor(color))
	}
	h, err := parseHint(hint)
	if err != nil {
		return nil, err
	}
	if h != nil {
		opts = append(opts, WithHint(h.X, h.Y))
	}
	s, err := ParseSide(side)
	if err != nil {
		return nil, err
	}
	if s != SideAuto {
		opts = append(opts, WithSide(s))
	}
	return opts, nil
}

func inferFormat(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return "json", nil
	case ".yaml", ".yml":
		return "yaml", nil
	}
	return "", fmt.Errorf("unsupported config file extension %q: use .json, .yaml, or .yml", filepath.Ext(path))
}
