package service

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wali1264/mihangps/models"
)

// fakePageRasterizer returns a real PNG for every captured page and records
// the requested dimensions
type fakePageRasterizer struct {
	mu      sync.Mutex
	widths  []int
	heights []int
	scales  []float64
	block   chan struct{}
	fail    bool
	png     []byte
}

func (f *fakePageRasterizer) CapturePage(ctx context.Context, html string, widthPx, heightPx int, scale float64) ([]byte, error) {
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	f.widths = append(f.widths, widthPx)
	f.heights = append(f.heights, heightPx)
	f.scales = append(f.scales, scale)
	f.mu.Unlock()
	if f.fail {
		return nil, errors.New("capture failed")
	}
	return f.png, nil
}

// fakeShare simulates the export share path
type fakeShare struct {
	available bool
	fail      bool
	mu        sync.Mutex
	shared    []string
}

func (f *fakeShare) Available() bool { return f.available }

func (f *fakeShare) SharePDF(ctx context.Context, filename string, data []byte, note string) (string, error) {
	if f.fail {
		return "", errors.New("share backend down")
	}
	f.mu.Lock()
	f.shared = append(f.shared, filename)
	f.mu.Unlock()
	return "https://drive.example.com/" + filename, nil
}

func newTestExportService(t *testing.T, share ShareServiceInterface) (*ExportService, *fakePageRasterizer, *HandleStore) {
	t.Helper()
	store := NewHandleStore()
	rasterizer := &fakePageRasterizer{png: encodePNG(t, 8, 8)}
	svc := NewExportService(&fakeImageCache{}, store, rasterizer, share)
	svc.exportDir = t.TempDir()
	return svc, rasterizer, store
}

func TestExportDocumentSavesPDF(t *testing.T) {
	svc, rasterizer, _ := newTestExportService(t, nil)

	result, err := svc.ExportDocument(context.Background(), threePageTemplate(), models.FormData{"clientName": "Ahmad"}, "Ahmad Karimi", "KBL-1234", "Vazirmatn", false)
	require.NoError(t, err)

	assert.Equal(t, "Contract_Ahmad_Karimi_KBL-1234.pdf", result.Filename)
	assert.False(t, result.Shared)
	require.NotEmpty(t, result.SavedPath)

	data, err := os.ReadFile(result.SavedPath)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))

	// Two included pages, each captured once at the 3x export scale
	assert.Len(t, rasterizer.widths, 2)
	assert.Equal(t, []float64{3.0, 3.0}, rasterizer.scales)
	// A4 portrait at the 96dpi screen scale
	assert.Equal(t, 794, rasterizer.widths[0])
	assert.Equal(t, 1123, rasterizer.heights[0])
}

func TestExportDocumentSkipsEmptyMiddlePage(t *testing.T) {
	svc, rasterizer, _ := newTestExportService(t, nil)

	_, err := svc.ExportDocument(context.Background(), threePageTemplate(), nil, "A", "B", "Vazirmatn", false)
	require.NoError(t, err)

	// Page 2 (no background, no active fields) never reaches the rasterizer
	assert.Len(t, rasterizer.widths, 2)
}

func TestExportDocumentFailedPageBecomesBlank(t *testing.T) {
	store := NewHandleStore()
	rasterizer := &fakePageRasterizer{fail: true}
	svc := NewExportService(&fakeImageCache{}, store, rasterizer, nil)
	svc.exportDir = t.TempDir()

	// Rasterization failures still produce a document with blank pages
	result, err := svc.ExportDocument(context.Background(), threePageTemplate(), nil, "A", "B", "Vazirmatn", false)
	require.NoError(t, err)
	assert.NotEmpty(t, result.SavedPath)
}

func TestExportDocumentRejectsConcurrentExports(t *testing.T) {
	svc, rasterizer, _ := newTestExportService(t, nil)
	rasterizer.block = make(chan struct{})

	done := make(chan error, 1)
	go func() {
		_, err := svc.ExportDocument(context.Background(), threePageTemplate(), nil, "A", "B", "Vazirmatn", false)
		done <- err
	}()

	// Second export while the first is mid-capture
	assert.Eventually(t, func() bool {
		_, err := svc.ExportDocument(context.Background(), threePageTemplate(), nil, "A", "B", "Vazirmatn", false)
		return errors.Is(err, ErrExportInFlight)
	}, time.Second, 5*time.Millisecond)

	close(rasterizer.block)
	require.NoError(t, <-done)

	// Guard is released once the export finishes
	_, err := svc.ExportDocument(context.Background(), threePageTemplate(), nil, "A", "B", "Vazirmatn", false)
	assert.NoError(t, err)
}

func TestExportDocumentShares(t *testing.T) {
	share := &fakeShare{available: true}
	svc, _, _ := newTestExportService(t, share)

	result, err := svc.ExportDocument(context.Background(), threePageTemplate(), nil, "Ahmad", "KBL-1", "Vazirmatn", true)
	require.NoError(t, err)

	assert.True(t, result.Shared)
	assert.Equal(t, "https://drive.example.com/Contract_Ahmad_KBL-1.pdf", result.ShareLink)
	// Shared documents are not additionally written to disk
	assert.Empty(t, result.SavedPath)
}

func TestExportDocumentShareFailureFallsBackToSave(t *testing.T) {
	share := &fakeShare{available: true, fail: true}
	svc, _, _ := newTestExportService(t, share)

	result, err := svc.ExportDocument(context.Background(), threePageTemplate(), nil, "Ahmad", "KBL-1", "Vazirmatn", true)
	require.NoError(t, err)

	assert.False(t, result.Shared)
	assert.NotEmpty(t, result.SavedPath)
	assert.NotEmpty(t, result.Note)
}

func TestExportDocumentShareUnavailableSavesDirectly(t *testing.T) {
	share := &fakeShare{available: false}
	svc, _, _ := newTestExportService(t, share)

	result, err := svc.ExportDocument(context.Background(), threePageTemplate(), nil, "Ahmad", "KBL-1", "Vazirmatn", true)
	require.NoError(t, err)
	assert.False(t, result.Shared)
	assert.NotEmpty(t, result.SavedPath)
	assert.Empty(t, share.shared)
}

func TestExportDocumentEmptyTemplateFails(t *testing.T) {
	svc, _, _ := newTestExportService(t, nil)

	_, err := svc.ExportDocument(context.Background(), &models.ContractTemplate{}, nil, "A", "B", "Vazirmatn", false)
	assert.Error(t, err)
}

func TestExportFilesLandInExportDir(t *testing.T) {
	svc, _, _ := newTestExportService(t, nil)

	result, err := svc.ExportDocument(context.Background(), threePageTemplate(), nil, "Ahmad", "KBL-1", "Vazirmatn", false)
	require.NoError(t, err)
	assert.Equal(t, svc.exportDir, filepath.Dir(result.SavedPath))
}
