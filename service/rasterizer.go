package service

import (
	"bytes"
	"context"
	"fmt"
	"image/jpeg"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/disintegration/imaging"
)

const (
	// printTargetWidth is the fixed raster width for physical output:
	// 2480px is the 300dpi-equivalent width of an A4 sheet
	printTargetWidth = 2480
	// printJPEGQuality matches the 0.92 lossy encode of the print pipeline
	printJPEGQuality = 92
)

// PrintRasterizer upgrades a background image to a print-quality raster.
// Implements PrintRasterizerInterface.
type PrintRasterizer struct {
	store  *HandleStore
	client *http.Client
}

// NewPrintRasterizer creates a PrintRasterizer over the given handle store
func NewPrintRasterizer(store *HandleStore) *PrintRasterizer {
	return &PrintRasterizer{
		store:  store,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

// Ensure PrintRasterizer implements PrintRasterizerInterface
var _ PrintRasterizerInterface = (*PrintRasterizer)(nil)

// RasterizeForPrint loads the image referenced by url (a remote URL or an
// outstanding blob handle), resamples it to the fixed 2480px print width
// preserving aspect ratio, and returns a handle over the quality-92 JPEG
// result. Any failure resolves with the original url so the print flow is
// never blocked. Never returns an error.
func (r *PrintRasterizer) RasterizeForPrint(ctx context.Context, url string) string {
	if url == "" {
		return ""
	}
	handle, err := r.rasterize(ctx, url)
	if err != nil {
		log.Printf("⚠️  Print rasterization degraded to source for %s: %v", url, err)
		return url
	}
	return handle
}

func (r *PrintRasterizer) rasterize(ctx context.Context, url string) (string, error) {
	data, err := r.load(ctx, url)
	if err != nil {
		return "", err
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	if width <= 0 || height <= 0 {
		return "", fmt.Errorf("image has empty bounds %v", bounds)
	}

	targetHeight := int(float64(height) * float64(printTargetWidth) / float64(width))
	resized := imaging.Resize(img, printTargetWidth, targetHeight, imaging.Lanczos)
	log.Printf("🖨  Print raster: %dx%d -> %dx%d", width, height, printTargetWidth, targetHeight)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, resized, &jpeg.Options{Quality: printJPEGQuality}); err != nil {
		return "", fmt.Errorf("failed to encode print raster: %w", err)
	}

	return r.store.Put(buf.Bytes(), "image/jpeg"), nil
}

// load fetches the raw bytes behind a URL, short-circuiting through the
// handle store when the URL is itself an outstanding blob handle.
func (r *PrintRasterizer) load(ctx context.Context, url string) ([]byte, error) {
	if r.store.IsHandle(url) {
		if h, ok := r.store.Get(url); ok {
			return h.Data, nil
		}
		return nil, fmt.Errorf("blob handle %s has been released", url)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build image request: %w", err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("image fetch returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read image body: %w", err)
	}
	return data, nil
}
