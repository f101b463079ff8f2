package render

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/buffos/lifeweeks/chart"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// TestSVGGeneration performs SVG comparison testing against snapshots
// in testdata. Missing snapshots are created on first run.
func TestSVGGeneration(t *testing.T) {
	testDataDir := "testdata"

	configFiles, err := filepath.Glob(filepath.Join(testDataDir, "*.json"))
	if err != nil {
		t.Fatalf("Error finding config files: %v", err)
	}
	if len(configFiles) == 0 {
		t.Fatalf("No config files found in %s", testDataDir)
	}

	for _, configFile := range configFiles {
		baseName := strings.TrimSuffix(filepath.Base(configFile), ".json")
		t.Run(baseName, func(t *testing.T) {
			expectedSVGFile := filepath.Join(testDataDir, baseName+".expected.svg")

			c, err := chart.LoadConfig(configFile)
			if err != nil {
				t.Fatalf("Error loading config %s: %v", configFile, err)
			}

			var buf bytes.Buffer
			if err := SVG(c, &buf); err != nil {
				t.Fatalf("Error generating SVG for %s: %v", baseName, err)
			}
			generatedSVG := buf.String()

			expectedSVGBytes, err := os.ReadFile(expectedSVGFile)
			if err != nil {
				if os.IsNotExist(err) {
					t.Logf("Expected SVG file %s not found. Creating it.", expectedSVGFile)
					if writeErr := os.WriteFile(expectedSVGFile, []byte(generatedSVG), 0644); writeErr != nil {
						t.Errorf("Failed to write new expected SVG %s: %v", expectedSVGFile, writeErr)
					}
					return
				}
				t.Fatalf("Error reading expected SVG file %s: %v", expectedSVGFile, err)
			}

			normalizedGenerated := strings.ReplaceAll(generatedSVG, "\r\n", "\n")
			normalizedExpected := strings.ReplaceAll(string(expectedSVGBytes), "\r\n", "\n")

			if normalizedGenerated != normalizedExpected {
				diff := findFirstDifference(normalizedGenerated, normalizedExpected)
				t.Errorf("Generated SVG for %s does not match %s.\nFirst difference near character %d:\nEXPECTED:\n...%s...\nGOT:\n...%s...",
					baseName, expectedSVGFile,
					diff.Index, diff.ExpectedContext, diff.GotContext)
				failedFile := filepath.Join(testDataDir, baseName+".failed.svg")
				os.WriteFile(failedFile, []byte(generatedSVG), 0644)
				t.Logf("Wrote differing output to %s", failedFile)
			}
		})
	}
}

func TestSVGDeterministic(t *testing.T) {
	c := buildStructureChart(t)

	var first, second bytes.Buffer
	if err := SVG(c, &first); err != nil {
		t.Fatalf("first render: %v", err)
	}
	if err := SVG(c, &second); err != nil {
		t.Fatalf("second render: %v", err)
	}
	if first.String() != second.String() {
		diff := findFirstDifference(first.String(), second.String())
		t.Errorf("Repeated renders differ near character %d:\n...%s...\nvs\n...%s...",
			diff.Index, diff.ExpectedContext, diff.GotContext)
	}
}

func TestSVGStructure(t *testing.T) {
	c := buildStructureChart(t)

	var buf bytes.Buffer
	if err := SVG(c, &buf); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"<svg",
		"Milestone",
		"Chapter",
		"Structure Test",
		"WATERMARK",
		"Week of the Year",
		"rotate(-90)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("SVG output missing %q", want)
		}
	}

	// One outlined square per week of every visible row.
	squares := strings.Count(out, "fill:none;stroke:#b8b8b8")
	wantSquares := chart.WeeksPerRow * c.MaxAge()
	if squares != wantSquares {
		t.Errorf("grid squares = %d, want %d", squares, wantSquares)
	}
}

func TestSVGWindowedGridSize(t *testing.T) {
	c := buildStructureChart(t)
	if err := c.SetAgeWindow(20, 40); err != nil {
		t.Fatalf("SetAgeWindow: %v", err)
	}

	var buf bytes.Buffer
	if err := SVG(c, &buf); err != nil {
		t.Fatalf("render: %v", err)
	}
	squares := strings.Count(buf.String(), "fill:none;stroke:#b8b8b8")
	if want := chart.WeeksPerRow * 20; squares != want {
		t.Errorf("windowed grid squares = %d, want %d", squares, want)
	}
}

func buildStructureChart(t *testing.T) *chart.Chart {
	t.Helper()
	c, err := chart.New(date(1990, 1, 1),
		chart.WithSize(chart.PapersizeA5),
		chart.WithDPI(150),
		chart.WithColorSource(chart.NewCyclePalette([]string{"navy", "maroon"})),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	c.AddTitle("Structure Test", 0)
	c.AddWatermark("WATERMARK")
	if err := c.AddLifeEvent("Milestone", date(2005, 6, 1)); err != nil {
		t.Fatalf("AddLifeEvent: %v", err)
	}
	if err := c.AddEra("Chapter", date(2010, 1, 1), date(2014, 1, 1)); err != nil {
		t.Fatalf("AddEra: %v", err)
	}
	return c
}

// diffResult helps show context around the first difference.
type diffResult struct {
	Index           int
	ExpectedContext string
	GotContext      string
}

// findFirstDifference finds the first differing character and provides context.
func findFirstDifference(s1, s2 string) diffResult {
	limit := len(s1)
	if len(s2) < limit {
		limit = len(s2)
	}
	idx := -1
	for i := 0; i < limit; i++ {
		if s1[i] != s2[i] {
			idx = i
			break
		}
	}
	if idx == -1 && len(s1) != len(s2) {
		idx = limit
	}
	if idx == -1 {
		return diffResult{Index: 0, ExpectedContext: "(identical)", GotContext: "(identical)"}
	}

	contextSize := 20
	start := idx - contextSize
	if start < 0 {
		start = 0
	}
	clip := func(s string) string {
		end := idx + contextSize
		if end > len(s) {
			end = len(s)
		}
		if start > len(s) {
			return ""
		}
		return s[start:end]
	}
	return diffResult{Index: idx, ExpectedContext: clip(s1), GotContext: clip(s2)}
}
