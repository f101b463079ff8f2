package render

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image/jpeg"
	"image/png"
	"io"
	"log"

	"github.com/chromedp/chromedp"

	"github.com/buffos/lifeweeks/chart"
)

const jpegQuality = 90

// Raster renders the chart to a raster format ("png", "jpg" or
// "jpeg") by screenshotting the SVG in a headless browser. The SVG is
// loaded through a base64 data URI, so no temporary file is written.
func Raster(c *chart.Chart, format string, w io.Writer) error {
	var buf bytes.Buffer
	if err := SVG(c, &buf); err != nil {
		return fmt.Errorf("failed to generate intermediate SVG: %w", err)
	}

	dataURI := "data:image/svg+xml;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Headless,
	)
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), opts...)
	defer cancelAlloc()

	ctx, cancelCtx := chromedp.NewContext(allocCtx)
	defer cancelCtx()

	var screenshot []byte
	tasks := chromedp.Tasks{
		chromedp.Navigate(dataURI),
		chromedp.WaitVisible(`svg`, chromedp.ByQuery),
		chromedp.Screenshot(`svg`, &screenshot, chromedp.ByQuery),
	}

	log.Println("Running chromedp tasks (navigate and screenshot)...")
	if err := chromedp.Run(ctx, tasks); err != nil {
		return fmt.Errorf("chromedp execution failed: %w", err)
	}
	if len(screenshot) == 0 {
		return fmt.Errorf("screenshot buffer is empty, screenshot failed")
	}

	switch format {
	case "png":
		// The screenshot already is a PNG.
		if _, err := w.Write(screenshot); err != nil {
			return fmt.Errorf("failed to write PNG screenshot data: %w", err)
		}
	case "jpg", "jpeg":
		img, err := png.Decode(bytes.NewReader(screenshot))
		if err != nil {
			return fmt.Errorf("failed to decode PNG screenshot: %w", err)
		}
		if err := jpeg.Encode(w, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
			return fmt.Errorf("failed to encode JPEG: %w", err)
		}
	default:
		return fmt.Errorf("unsupported raster format %q", format)
	}
	return nil
}
