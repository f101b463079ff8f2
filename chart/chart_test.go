package chart

import (
	"strings"
	"testing"
	"time"
)

func TestDateRangeValidation(t *testing.T) {
	c := newTestChart(t)
	birth := c.Birthdate()

	if err := c.AddLifeEvent("before birth", birth.AddDate(0, 0, -1)); err == nil {
		t.Error("expected error for an event one day before the birthdate")
	} else if !strings.Contains(err.Error(), "outside the lifespan") {
		t.Errorf("error should name the constraint, got: %v", err)
	}

	// The boundary date itself is inclusive.
	if err := c.AddLifeEvent("last day", birth.AddDate(c.MaxAge(), 0, 0)); err != nil {
		t.Errorf("boundary date must be accepted: %v", err)
	}

	if err := c.AddLifeEvent("too late", birth.AddDate(c.MaxAge(), 0, 1)); err == nil {
		t.Error("expected error for a date past the lifespan")
	}

	if err := c.AddEra("bad era", birth.AddDate(0, 0, -10), birth.AddDate(1, 0, 0)); err == nil {
		t.Error("expected error for an era starting before the birthdate")
	}
}

func TestAgeWindowValidation(t *testing.T) {
	c := newTestChart(t)
	if err := c.SetAgeWindow(-1, 50); err == nil {
		t.Error("expected error for negative min age")
	}
	if err := c.SetAgeWindow(50, 50); err == nil {
		t.Error("expected error for min age equal to max age")
	}
	if err := c.SetAgeWindow(60, 50); err == nil {
		t.Error("expected error for min age above max age")
	}
	if err := c.SetAgeWindow(0, 200); err == nil {
		t.Error("expected error for window past the lifespan")
	}
	if err := c.SetAgeWindow(20, 65); err != nil {
		t.Errorf("valid window rejected: %v", err)
	}
}

func TestVisibilityWindowing(t *testing.T) {
	c := newTestChart(t)
	if err := c.AddLifeEvent("age five", date(1995, time.June, 1)); err != nil {
		t.Fatal(err)
	}
	if err := c.AddLifeEvent("age thirty", date(2020, time.June, 1)); err != nil {
		t.Fatal(err)
	}
	// Era over ages 15..25 straddles the window edge and must be kept.
	if err := c.AddEra("straddling era", date(2005, time.June, 1), date(2015, time.June, 1)); err != nil {
		t.Fatal(err)
	}

	if err := c.SetAgeWindow(20, 65); err != nil {
		t.Fatal(err)
	}

	resolved, err := c.Layout(testMeasurer())
	if err != nil {
		t.Fatal(err)
	}

	texts := map[string]bool{}
	for _, a := range resolved {
		texts[a.Text] = true
	}
	if texts["age five"] {
		t.Error("event at age 5 must be excluded from the visible set")
	}
	if !texts["age thirty"] {
		t.Error("event at age 30 must be visible")
	}
	if !texts["straddling era"] {
		t.Error("era spanning ages 15-25 overlaps the window and must be visible")
	}

	// The excluded event is still stored for export.
	if len(c.EventRecords()) != 2 {
		t.Errorf("stored %d event records, want 2", len(c.EventRecords()))
	}
}

func TestAnnotationWithoutSourceRangeAlwaysVisible(t *testing.T) {
	c := newTestChart(t)
	if err := c.SetAgeWindow(20, 65); err != nil {
		t.Fatal(err)
	}
	a := &Annotation{Text: "figure element"}
	if !c.annotationVisible(a) {
		t.Error("annotation without a source range must always be visible")
	}
}

func TestRegistrationsUntouchedByLayout(t *testing.T) {
	c := newTestChart(t)
	if err := c.AddLifeEvent("event", date(2000, time.June, 1)); err != nil {
		t.Fatal(err)
	}
	before := *c.annotations[0]

	if _, err := c.Layout(testMeasurer()); err != nil {
		t.Fatal(err)
	}

	after := *c.annotations[0]
	if before.pos != after.pos {
		t.Errorf("stored annotation position mutated by layout: %+v -> %+v", before.pos, after.pos)
	}
	if after.measured {
		t.Error("stored annotation gained a bbox; layout must work on copies")
	}
}

func TestEraAnnotationUsesMidpoint(t *testing.T) {
	c := newTestChart(t)
	start := date(2000, time.January, 1)
	end := date(2004, time.January, 1)
	if err := c.AddEra("middle years", start, end); err != nil {
		t.Fatal(err)
	}

	a := c.annotations[0]
	wantMid := start.Add(end.Sub(start) / 2)
	if !a.Date.Equal(wantMid) {
		t.Errorf("annotation date = %s, want midpoint %s", a.Date, wantMid)
	}
	if a.CircleEventPoint {
		t.Error("era labels must not circle a grid cell")
	}
	if a.SourceRange == nil || a.SourceRange.Lo != 10 || a.SourceRange.Hi != 14 {
		t.Errorf("source range = %+v, want rows 10..14", a.SourceRange)
	}
}

func TestEraSpanMarkers(t *testing.T) {
	c := newTestChart(t)
	if err := c.AddEraSpan("deployment", date(2010, time.March, 1), date(2011, time.March, 1),
		WithColor("teal"), WithColoredEndMarkers()); err != nil {
		t.Fatal(err)
	}

	spans := c.EraSpans()
	if len(spans) != 1 {
		t.Fatalf("got %d spans, want 1", len(spans))
	}
	sp := spans[0]
	if sp.StartMarker == nil || sp.EndMarker == nil {
		t.Fatal("expected colored start and end markers")
	}
	if sp.StartMarker.Color != "teal" {
		t.Errorf("marker color = %q, want teal", sp.StartMarker.Color)
	}
	if sp.StartMarker.At != sp.Start.Point {
		t.Error("start marker must sit on the span's start cell")
	}
}

func TestEventMarkerAndCircle(t *testing.T) {
	c := newTestChart(t)
	if err := c.AddLifeEvent("plain", date(2000, time.June, 1), WithPlainSquare()); err != nil {
		t.Fatal(err)
	}
	if err := c.AddLifeEvent("colored", date(2001, time.June, 1), WithColor("crimson")); err != nil {
		t.Fatal(err)
	}

	if c.annotations[0].Marker != nil {
		t.Error("WithPlainSquare must suppress the cell marker")
	}
	if !c.annotations[0].CircleEventPoint {
		t.Error("events always circle their cell")
	}
	m := c.annotations[1].Marker
	if m == nil || m.Color != "crimson" {
		t.Errorf("marker = %+v, want crimson marker", m)
	}
}

func TestPaletteFallback(t *testing.T) {
	c := newTestChart(t) // cycle palette starting at defaultPalette[0]
	if err := c.AddLifeEvent("no color", date(2000, time.June, 1)); err != nil {
		t.Fatal(err)
	}
	if got := c.annotations[0].Color; got != defaultPalette[0] {
		t.Errorf("color = %q, want first palette entry %q", got, defaultPalette[0])
	}
}
