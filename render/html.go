package render

import (
	"bytes"
	"fmt"
	"html"
	"io"

	"github.com/buffos/lifeweeks/chart"
)

// HTML writes a standalone HTML page with the chart's SVG inlined, so
// the result opens in any browser without extra assets.
func HTML(c *chart.Chart, w io.Writer) error {
	var svgBuf bytes.Buffer
	if err := SVG(c, &svgBuf); err != nil {
		return err
	}

	title, _ := c.Title()
	if title == "" {
		title = "Life in Weeks"
	}

	var b bytes.Buffer
	b.WriteString("<!DOCTYPE html>\n<html>\n<head>\n")
	b.WriteString("<meta charset=\"utf-8\">\n")
	fmt.Fprintf(&b, "<title>%s</title>\n", html.EscapeString(title))
	b.WriteString("<style>\nbody { margin: 0; background: #fafafa; }\n")
	b.WriteString("svg { display: block; margin: 0 auto; max-width: 100%; height: auto; }\n")
	b.WriteString("</style>\n</head>\n<body>\n")
	b.Write(svgBuf.Bytes())
	b.WriteString("\n</body>\n</html>\n")

	if _, err := w.Write(b.Bytes()); err != nil {
		return fmt.Errorf("failed to write HTML output: %w", err)
	}
	return nil
}
