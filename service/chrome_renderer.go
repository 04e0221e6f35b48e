package service

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
)

// awaitPromise makes chromedp.Evaluate block until the expression's promise settles
func awaitPromise(p *runtime.EvaluateParams) *runtime.EvaluateParams {
	return p.WithAwaitPromise(true)
}

// ChromeRenderer drives headless Chrome to turn rendered contract HTML into
// print PDFs and high-resolution page rasters.
// Implements PagePrinterInterface and PageRasterizerInterface.
type ChromeRenderer struct {
	execPath string
}

// NewChromeRenderer creates a ChromeRenderer, detecting the Chrome binary
func NewChromeRenderer() *ChromeRenderer {
	return &ChromeRenderer{execPath: detectChromePath()}
}

// Ensure ChromeRenderer implements both rendering interfaces
var (
	_ PagePrinterInterface    = (*ChromeRenderer)(nil)
	_ PageRasterizerInterface = (*ChromeRenderer)(nil)
)

// detectChromePath detects the path to the Chrome/Chromium executable.
// Checks CHROME_PATH env var first, then common installation paths.
func detectChromePath() string {
	if chromePath := os.Getenv("CHROME_PATH"); chromePath != "" {
		if _, err := os.Stat(chromePath); err == nil {
			return chromePath
		}
	}

	paths := []string{
		"/usr/bin/chromium",
		"/usr/bin/chromium-browser",
		"/usr/bin/google-chrome",
		"/usr/bin/google-chrome-stable",
		"/snap/bin/chromium",
	}
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

func (r *ChromeRenderer) allocator(ctx context.Context) (context.Context, context.CancelFunc) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.NoSandbox, // Required for running in Docker/containers
	)
	if r.execPath != "" {
		opts = append(opts, chromedp.ExecPath(r.execPath))
	}
	return chromedp.NewExecAllocator(ctx, opts...)
}

// imagesReadyJS waits for fonts and every image (including CSS backgrounds
// swapped in by the print orchestrator) to settle before capture.
const imagesReadyJS = `
	(function() {
		return Promise.all([
			document.fonts.ready,
			Promise.all(Array.from(document.querySelectorAll('img')).map(img => {
				return new Promise((resolve) => {
					if (img.complete && img.naturalWidth > 0 && img.naturalHeight > 0) {
						resolve();
						return;
					}
					const timeout = setTimeout(() => resolve(), 5000);
					img.onload = () => { clearTimeout(timeout); resolve(); };
					img.onerror = () => { clearTimeout(timeout); resolve(); };
				});
			}))
		]);
	})();
`

func dataURL(html string) string {
	return "data:text/html;charset=utf-8;base64," + base64.StdEncoding.EncodeToString([]byte(html))
}

// PrintHTML rasterizes the document through Chrome's print subsystem into a
// PDF with the given physical paper size (inches) and orientation.
func (r *ChromeRenderer) PrintHTML(ctx context.Context, html string, paperWidthIn, paperHeightIn float64, landscape bool) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	allocCtx, allocCancel := r.allocator(ctx)
	defer allocCancel()

	chromedpCtx, chromedpCancel := chromedp.NewContext(allocCtx)
	defer chromedpCancel()

	var pdfBuf []byte
	err := chromedp.Run(chromedpCtx,
		chromedp.EmulateViewport(int64(paperWidthIn*96), int64(paperHeightIn*96)),
		chromedp.Navigate(dataURL(html)),
		chromedp.WaitReady("body"),
		chromedp.Sleep(500*time.Millisecond),
		chromedp.Evaluate(imagesReadyJS, nil, awaitPromise),
		chromedp.Sleep(500*time.Millisecond),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			pdfBuf, _, err = page.PrintToPDF().
				WithPrintBackground(true).
				WithLandscape(landscape).
				WithPaperWidth(paperWidthIn).
				WithPaperHeight(paperHeightIn).
				WithMarginTop(0).
				WithMarginBottom(0).
				WithMarginLeft(0).
				WithMarginRight(0).
				Do(ctx)
			return err
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to print document: %w", err)
	}
	return pdfBuf, nil
}

// CapturePage screenshots a standalone page document at the given viewport
// size and device scale factor (3x for print sharpness on export).
func (r *ChromeRenderer) CapturePage(ctx context.Context, html string, widthPx, heightPx int, scale float64) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	allocCtx, allocCancel := r.allocator(ctx)
	defer allocCancel()

	chromedpCtx, chromedpCancel := chromedp.NewContext(allocCtx)
	defer chromedpCancel()

	var buf []byte
	err := chromedp.Run(chromedpCtx,
		chromedp.EmulateViewport(int64(widthPx), int64(heightPx), chromedp.EmulateScale(scale)),
		chromedp.Navigate(dataURL(html)),
		chromedp.WaitReady("body"),
		chromedp.Sleep(500*time.Millisecond),
		chromedp.Evaluate(imagesReadyJS, nil, awaitPromise),
		chromedp.Sleep(500*time.Millisecond),
		chromedp.CaptureScreenshot(&buf),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to capture page: %w", err)
	}
	return buf, nil
}
