// Package capture renders web pages to PNG through headless Chromium.
package capture

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"

	appLog "weekendplan/internal/log"
)

// Defaults match the layout of the /print page.
const (
	DefaultWidth      = 800
	DefaultHeight     = 600
	DefaultTimeoutSec = 30
)

// ReadySelector is the element a page exposes once it has finished
// rendering.
const ReadySelector = `[data-ready="true"]`

// ErrNoURL is returned when no page address is given.
var ErrNoURL = errors.New("capture: URL is required")

// Options defines one screenshot.
type Options struct {
	// URL to capture, e.g. "http://127.0.0.1:8080/print".
	URL string

	// Width and Height are the viewport size in pixels; zero uses the
	// defaults. The screenshot covers the full page, so Height is a minimum.
	Width  int
	Height int

	// Timeout bounds the whole capture; zero uses DefaultTimeoutSec.
	Timeout time.Duration
}

func (o *Options) applyDefaults() error {
	if o.URL == "" {
		return ErrNoURL
	}
	if o.Width <= 0 {
		o.Width = DefaultWidth
	}
	if o.Height <= 0 {
		o.Height = DefaultHeight
	}
	if o.Timeout <= 0 {
		o.Timeout = time.Duration(DefaultTimeoutSec) * time.Second
	}
	return nil
}

// CapturePagePNG starts a headless Chromium, loads opts.URL, waits for
// ReadySelector to become visible and returns a full-page PNG.
func CapturePagePNG(parentCtx context.Context, opts Options) ([]byte, error) {
	if err := opts.applyDefaults(); err != nil {
		return nil, err
	}

	ctx, cancel := chromedp.NewContext(parentCtx)
	defer cancel()

	ctx, timeoutCancel := context.WithTimeout(ctx, opts.Timeout)
	defer timeoutCancel()

	started := time.Now()
	var png []byte
	tasks := chromedp.Tasks{
		chromedp.EmulateViewport(int64(opts.Width), int64(opts.Height)),
		chromedp.Navigate(opts.URL),
		chromedp.WaitVisible(ReadySelector, chromedp.ByQuery),
		// Let web fonts and emoji finish painting.
		chromedp.Sleep(300 * time.Millisecond),
		chromedp.FullScreenshot(&png, 100),
	}
	if err := chromedp.Run(ctx, tasks); err != nil {
		return nil, fmt.Errorf("capture: chromedp run failed: %w", err)
	}

	appLog.Debug("capture: page captured", "bytes", len(png), "elapsed", time.Since(started).String())
	return png, nil
}

// Capturer produces a PNG of a page. The web layer depends on this so a
// browser is only needed where image export is enabled.
type Capturer interface {
	CapturePNG(ctx context.Context, url string) ([]byte, error)
}

// Chromium is the Capturer backed by CapturePagePNG.
type Chromium struct {
	Width   int
	Height  int
	Timeout time.Duration
}

// CapturePNG implements Capturer.
func (c Chromium) CapturePNG(ctx context.Context, url string) ([]byte, error) {
	return CapturePagePNG(ctx, Options{URL: url, Width: c.Width, Height: c.Height, Timeout: c.Timeout})
}
