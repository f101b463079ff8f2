package chart

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

func buildRichChart(t *testing.T) *Chart {
	t.Helper()
	c, err := New(date(1990, time.January, 1),
		WithSize(PapersizeA4),
		WithDPI(150),
		WithMaxAge(80),
		WithEpsilon(0.3),
		WithColorSource(NewCyclePalette(nil)),
	)
	if err != nil {
		t.Fatal(err)
	}
	if err := c.SetAgeWindow(10, 70); err != nil {
		t.Fatal(err)
	}
	c.AddTitle("My Life", 24)
	c.AddWatermark("DRAFT")
	c.AddImage("background.png", 0.5)
	c.ShowMaxAgeLabel()
	c.FormatXAxis("Weeks", AxisStyle{})
	c.FormatYAxis("", AxisStyle{Color: strPtr("gray")})

	if err := c.AddLifeEvent("Started school", date(1996, time.September, 1), WithColor("royalblue")); err != nil {
		t.Fatal(err)
	}
	if err := c.AddLifeEvent("Hinted event", date(2000, time.June, 1), WithColor("teal"), WithHint(-8, 11)); err != nil {
		t.Fatal(err)
	}
	if err := c.AddLifeEvent("Sided event", date(2002, time.June, 1), WithColor("crimson"), WithSide(SideLeft), WithPlainSquare()); err != nil {
		t.Fatal(err)
	}
	if err := c.AddEra("University", date(2008, time.September, 1), date(2012, time.May, 15),
		WithColor("seagreen"), WithSide(SideRight), WithAlpha(0.5)); err != nil {
		t.Fatal(err)
	}
	if err := c.AddEraSpan("First flat", date(2012, time.June, 1), date(2015, time.March, 1),
		WithColor("darkorange"), WithColoredEndMarkers()); err != nil {
		t.Fatal(err)
	}
	return c
}

func strPtr(s string) *string { return &s }

func assertChartsEqual(t *testing.T, want, got *Chart) {
	t.Helper()
	if !want.Birthdate().Equal(got.Birthdate()) {
		t.Errorf("birthdate: %v vs %v", want.Birthdate(), got.Birthdate())
	}
	if want.MaxAge() != got.MaxAge() {
		t.Errorf("max age: %d vs %d", want.MaxAge(), got.MaxAge())
	}
	wMin, wMax := want.Window()
	gMin, gMax := got.Window()
	if wMin != gMin || wMax != gMax {
		t.Errorf("window: [%d,%d) vs [%d,%d)", wMin, wMax, gMin, gMax)
	}
	if want.Size() != got.Size() {
		t.Errorf("size: %v vs %v", want.Size(), got.Size())
	}
	if want.Epsilon() != got.Epsilon() {
		t.Errorf("epsilon: %g vs %g", want.Epsilon(), got.Epsilon())
	}
	wTitle, wFS := want.Title()
	gTitle, gFS := got.Title()
	if wTitle != gTitle || wFS != gFS {
		t.Errorf("title: %q/%g vs %q/%g", wTitle, wFS, gTitle, gFS)
	}
	if want.Watermark() != got.Watermark() {
		t.Errorf("watermark: %q vs %q", want.Watermark(), got.Watermark())
	}
	wImg, wAlpha := want.Image()
	gImg, gAlpha := got.Image()
	if wImg != gImg || wAlpha != gAlpha {
		t.Errorf("image: %q/%g vs %q/%g", wImg, wAlpha, gImg, gAlpha)
	}
	if want.MaxAgeLabelShown() != got.MaxAgeLabelShown() {
		t.Error("max age label flag differs")
	}
	if !reflect.DeepEqual(want.EventRecords(), got.EventRecords()) {
		t.Errorf("event records differ:\n%+v\nvs\n%+v", want.EventRecords(), got.EventRecords())
	}
	if !reflect.DeepEqual(want.EraRecords(), got.EraRecords()) {
		t.Errorf("era records differ:\n%+v\nvs\n%+v", want.EraRecords(), got.EraRecords())
	}
	if !reflect.DeepEqual(want.EraSpanRecords(), got.EraSpanRecords()) {
		t.Errorf("era span records differ:\n%+v\nvs\n%+v", want.EraSpanRecords(), got.EraSpanRecords())
	}
	wLabel, _ := want.XAxis()
	gLabel, _ := got.XAxis()
	if wLabel != gLabel {
		t.Errorf("x axis label: %q vs %q", wLabel, gLabel)
	}
}

func TestConfigRoundTrip(t *testing.T) {
	for _, ext := range []string{".json", ".yaml"} {
		t.Run(strings.TrimPrefix(ext, "."), func(t *testing.T) {
			c := buildRichChart(t)
			path := filepath.Join(t.TempDir(), "chart"+ext)
			if err := c.ExportConfig(path); err != nil {
				t.Fatalf("ExportConfig: %v", err)
			}
			got, err := LoadConfig(path)
			if err != nil {
				t.Fatalf("LoadConfig: %v", err)
			}
			assertChartsEqual(t, c, got)

			// A second export must reproduce the file byte for byte.
			path2 := filepath.Join(t.TempDir(), "again"+ext)
			if err := got.ExportConfig(path2); err != nil {
				t.Fatal(err)
			}
			first, _ := os.ReadFile(path)
			second, _ := os.ReadFile(path2)
			if string(first) != string(second) {
				t.Error("re-export differs from the original export")
			}
		})
	}
}

func TestConfigDefaultsElided(t *testing.T) {
	c, err := New(date(1990, time.January, 1), WithColorSource(NewCyclePalette(nil)))
	if err != nil {
		t.Fatal(err)
	}
	cf := c.buildConfig()
	if cf.MaxAge != 0 || cf.Size != "" || cf.DPI != 0 || cf.LabelSpaceEpsilon != 0 {
		t.Errorf("defaults must be elided from export, got %+v", cf)
	}
	if cf.MinAge != 0 || cf.VisibleMaxAge != 0 {
		t.Errorf("full-lifespan window must be elided, got %+v", cf)
	}
}

func TestConfigTitleShortForm(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "short.json")
	body := `{"version": 1, "birthdate": "1990-01-01", "title": "Just a title"}`
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	c, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	title, fs := c.Title()
	if title != "Just a title" || fs != 0 {
		t.Errorf("title = %q/%g, want plain string form", title, fs)
	}
}

func TestConfigTitleShortFormYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "short.yaml")
	body := "version: 1\nbirthdate: 1990-01-01\ntitle: Just a title\n"
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	c, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if title, _ := c.Title(); title != "Just a title" {
		t.Errorf("title = %q, want plain string form", title)
	}
}

func TestConfigRejectsUnknownVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "v2.json")
	if err := os.WriteFile(path, []byte(`{"version": 2, "birthdate": "1990-01-01"}`), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Fatal("expected an error for an unsupported config version")
	}
}

func TestConfigRejectsUnknownExtension(t *testing.T) {
	if _, err := LoadConfig("chart.toml"); err == nil {
		t.Fatal("expected an error for an unsupported extension")
	}
}

func TestConfigValidationPropagates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	body := `{"version": 1, "birthdate": "1990-01-01",
		"events": [{"text": "too early", "date": "1980-01-01"}]}`
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	_, err := LoadConfig(path)
	if err == nil {
		t.Fatal("expected out-of-range event date to fail the load")
	}
	if !strings.Contains(err.Error(), "outside the lifespan") {
		t.Errorf("error should identify the constraint, got: %v", err)
	}
}
