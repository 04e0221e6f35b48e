package service

import (
	"bytes"
	"context"
	"image"
	"image/jpeg"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wali1264/mihangps/models"
	"github.com/wali1264/mihangps/repository"
)

// fakePrinter records the print invocation and returns canned PDF bytes
type fakePrinter struct {
	mu        sync.Mutex
	html      string
	widthIn   float64
	heightIn  float64
	landscape bool
	calls     int
}

func (f *fakePrinter) PrintHTML(ctx context.Context, html string, paperWidthIn, paperHeightIn float64, landscape bool) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.html = html
	f.widthIn = paperWidthIn
	f.heightIn = paperHeightIn
	f.landscape = landscape
	f.calls++
	return []byte("%PDF-fake"), nil
}

// fakePrintRasterizer swaps any source for a real JPEG handle, optionally
// stalling to simulate a slow background upgrade
type fakePrintRasterizer struct {
	store *HandleStore
	delay time.Duration
	mu    sync.Mutex
	seen  []string
}

func (f *fakePrintRasterizer) RasterizeForPrint(ctx context.Context, url string) string {
	f.mu.Lock()
	f.seen = append(f.seen, url)
	f.mu.Unlock()
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return url
		}
	}
	var buf bytes.Buffer
	jpeg.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 4, 4)), nil)
	return f.store.Put(buf.Bytes(), "image/jpeg")
}

// fakeContractRepo records UpdateLastPrintedAt calls
type fakeContractRepo struct {
	mu      sync.Mutex
	printed []string
}

func (f *fakeContractRepo) Insert(ctx context.Context, req *models.CreateContractRequest) (*models.Contract, error) {
	return nil, nil
}

func (f *fakeContractRepo) GetByID(ctx context.Context, id string) (*models.Contract, error) {
	return nil, nil
}

func (f *fakeContractRepo) ListForReport(ctx context.Context, filter repository.ReportFilter) ([]models.Contract, error) {
	return nil, nil
}

func (f *fakeContractRepo) UpdateLastPrintedAt(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.printed = append(f.printed, id)
	return nil
}

func (f *fakeContractRepo) printedIDs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.printed...)
}

func newTestPrintService(t *testing.T) (*PrintService, *fakePrinter, *fakeContractRepo, *HandleStore) {
	t.Helper()
	store := NewHandleStore()
	printer := &fakePrinter{}
	contracts := &fakeContractRepo{}
	svc := NewPrintService(
		NewPrintLayerRenderer(&fakeImageCache{}),
		&fakePrintRasterizer{store: store},
		store,
		printer,
		contracts,
		"http://localhost:8080",
	)
	return svc, printer, contracts, store
}

func TestPrintDocumentProducesPDF(t *testing.T) {
	svc, printer, _, _ := newTestPrintService(t)

	pdf, err := svc.PrintDocument(context.Background(), threePageTemplate(), models.FormData{"clientName": "Ahmad"}, "Vazirmatn", "")
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-fake"), pdf)

	assert.Equal(t, 1, printer.calls)
	assert.Contains(t, printer.html, ">Ahmad</div>")
	// A4 portrait in inches
	assert.InDelta(t, 8.27, printer.widthIn, 0.005)
	assert.InDelta(t, 11.69, printer.heightIn, 0.005)
	assert.False(t, printer.landscape)
}

func TestPrintDocumentUpgradesBackgrounds(t *testing.T) {
	svc, printer, _, store := newTestPrintService(t)

	_, err := svc.PrintDocument(context.Background(), threePageTemplate(), nil, "Vazirmatn", "")
	require.NoError(t, err)

	// Both included backgrounds were swapped for print-quality handles and
	// absolutized against the base URL
	assert.Equal(t, 2, strings.Count(printer.html, "http://localhost:8080"+HandleBasePath))
	assert.Equal(t, 2, store.Len())
}

func TestPrintDocumentGatesOnSlowBackground(t *testing.T) {
	store := NewHandleStore()
	printer := &fakePrinter{}
	slow := &fakePrintRasterizer{store: store, delay: 300 * time.Millisecond}
	svc := NewPrintService(NewPrintLayerRenderer(&fakeImageCache{}), slow, store, printer, &fakeContractRepo{}, "")

	start := time.Now()
	_, err := svc.PrintDocument(context.Background(), threePageTemplate(), nil, "Vazirmatn", "")
	require.NoError(t, err)

	// Print waited for the slow raster swap plus the settle delay
	assert.GreaterOrEqual(t, time.Since(start), 800*time.Millisecond)
	assert.Equal(t, 1, printer.calls)
	// The HTML handed to print carries the upgraded handles, not the sources
	assert.NotContains(t, printer.html, "cached_page1.png")
}

func TestPrintDocumentMarksContractPrinted(t *testing.T) {
	svc, _, contracts, _ := newTestPrintService(t)

	_, err := svc.PrintDocument(context.Background(), threePageTemplate(), nil, "Vazirmatn", "contract-42")
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		ids := contracts.printedIDs()
		return len(ids) == 1 && ids[0] == "contract-42"
	}, 2*time.Second, 10*time.Millisecond)
}

func TestPrintDocumentWithoutContractSkipsTimestamp(t *testing.T) {
	svc, _, contracts, _ := newTestPrintService(t)

	_, err := svc.PrintDocument(context.Background(), threePageTemplate(), nil, "Vazirmatn", "")
	require.NoError(t, err)

	time.Sleep(50 * time.Millisecond)
	assert.Empty(t, contracts.printedIDs())
}

func TestScheduleCleanupCoalescesPerSession(t *testing.T) {
	svc, _, _, store := newTestPrintService(t)

	a := store.Put([]byte("a"), "image/jpeg")
	b := store.Put([]byte("b"), "image/jpeg")

	svc.scheduleCleanup("contract-1", []string{a})
	svc.scheduleCleanup("contract-1", []string{b})

	// Re-printing the same contract merges the pending release instead of
	// double-scheduling it
	svc.mu.Lock()
	pending, ok := svc.cleanups["contract-1"]
	require.True(t, ok)
	assert.Len(t, pending.handles, 2)
	assert.Len(t, svc.cleanups, 1)
	pending.timer.Stop()
	svc.mu.Unlock()

	// Nothing released before the delay elapses
	assert.Equal(t, 2, store.Len())
}

func TestScheduleCleanupSeparateSessions(t *testing.T) {
	svc, _, _, store := newTestPrintService(t)

	svc.scheduleCleanup("contract-1", []string{store.Put([]byte("a"), "image/jpeg")})
	svc.scheduleCleanup("contract-2", []string{store.Put([]byte("b"), "image/jpeg")})

	svc.mu.Lock()
	assert.Len(t, svc.cleanups, 2)
	for _, pc := range svc.cleanups {
		pc.timer.Stop()
	}
	svc.mu.Unlock()
}

func TestScheduleCleanupNoHandlesIsNoop(t *testing.T) {
	svc, _, _, _ := newTestPrintService(t)

	svc.scheduleCleanup("adhoc", nil)

	svc.mu.Lock()
	assert.Empty(t, svc.cleanups)
	svc.mu.Unlock()
}
