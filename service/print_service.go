package service

import (
	"bytes"
	"context"
	"image"
	"log"
	"sync"
	"time"

	_ "image/jpeg"
	_ "image/png"

	"github.com/wali1264/mihangps/layout"
	"github.com/wali1264/mihangps/models"
	"github.com/wali1264/mihangps/repository"
)

const (
	// printSettleDelay lets layout and paint flush before print is invoked
	printSettleDelay = 500 * time.Millisecond
	// printCleanupDelay defers handle release until the print subsystem has
	// finished streaming the rasters
	printCleanupDelay = 10 * time.Second
	// unitPrepTimeout bounds each page unit's raster swap so the gating join
	// always settles, even when a background load hangs
	unitPrepTimeout = 15 * time.Second
)

// PrintService is the print orchestrator: it upgrades page backgrounds to
// print-quality rasters, gates the print call on every unit settling, and
// defers resource cleanup past the print subsystem's read window.
type PrintService struct {
	layer      *PrintLayerRenderer
	rasterizer PrintRasterizerInterface
	store      *HandleStore
	printer    PagePrinterInterface
	contracts  repository.ContractRepositoryInterface
	baseURL    string

	mu       sync.Mutex
	cleanups map[string]*pendingCleanup
}

// pendingCleanup is a cancellable deferred release keyed by print session
type pendingCleanup struct {
	timer   *time.Timer
	handles []string
}

// NewPrintService creates a PrintService
func NewPrintService(
	layer *PrintLayerRenderer,
	rasterizer PrintRasterizerInterface,
	store *HandleStore,
	printer PagePrinterInterface,
	contracts repository.ContractRepositoryInterface,
	baseURL string,
) *PrintService {
	return &PrintService{
		layer:      layer,
		rasterizer: rasterizer,
		store:      store,
		printer:    printer,
		contracts:  contracts,
		baseURL:    baseURL,
		cleanups:   make(map[string]*pendingCleanup),
	}
}

// PrintDocument prepares the print layer for the given template and form
// data and invokes the print path. Preparation failures are logged and
// tolerated: print is always attempted with whatever state exists. When
// contractID is set, the contract's last_printed_at is updated best-effort.
func (s *PrintService) PrintDocument(ctx context.Context, tpl *models.ContractTemplate, formData models.FormData, fontName string, contractID string) ([]byte, error) {
	log.Printf("🖨  Preparing document for print (landscape=%v contract=%s)", tpl.IsLandscape, contractID)

	if contractID != "" {
		// Fire-and-forget timestamp update; printing never waits on it
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := s.contracts.UpdateLastPrintedAt(ctx, contractID); err != nil {
				log.Printf("⚠️  Failed to mark contract %s as printed: %v", contractID, err)
			}
		}()
	}

	sessionKey := contractID
	if sessionKey == "" {
		sessionKey = "adhoc"
	}

	units := s.layer.BuildPageUnits(ctx, tpl, formData)

	// Upgrade every background concurrently; the print call is gated on all
	// units settling, success or failure alike.
	var (
		handlesMu   sync.Mutex
		tempHandles []string
		wg          sync.WaitGroup
	)
	for i := range units {
		if units[i].Background == "" {
			continue
		}
		wg.Add(1)
		go func(unit *PrintPageUnit) {
			defer wg.Done()
			unitCtx, cancel := context.WithTimeout(ctx, unitPrepTimeout)
			defer cancel()

			optimized := s.rasterizer.RasterizeForPrint(unitCtx, unit.Background)
			if s.store.IsHandle(optimized) {
				handlesMu.Lock()
				tempHandles = append(tempHandles, optimized)
				handlesMu.Unlock()
				// Wait for the raster to be fully loadable before the unit
				// counts as ready
				if !s.rasterLoaded(optimized) {
					log.Printf("⚠️  Print raster for page %d did not verify, keeping it anyway", unit.PageNumber)
				}
			}
			unit.Background = optimized
		}(&units[i])
	}
	wg.Wait()

	time.Sleep(printSettleDelay)

	pdf, err := s.invokePrint(ctx, tpl, units, fontName)

	s.scheduleCleanup(sessionKey, tempHandles)

	return pdf, err
}

// invokePrint renders the print layer and drives the print path. A render
// failure is logged and print is still invoked with an empty layer rather
// than silently skipped.
func (s *PrintService) invokePrint(ctx context.Context, tpl *models.ContractTemplate, units []PrintPageUnit, fontName string) ([]byte, error) {
	html, err := s.layer.RenderHTML(units, fontName, tpl.IsLandscape, s.baseURL)
	if err != nil {
		log.Printf("❌ Print preparation failed, invoking print anyway: %v", err)
		html = "<!DOCTYPE html><html><body></body></html>"
	}

	paperSize := models.PaperA4
	if len(tpl.Pages) > 0 {
		paperSize = tpl.Pages[0].PaperSize
	}
	wMM, hMM := layout.PaperDimensions(paperSize, tpl.IsLandscape)

	pdf, err := s.printer.PrintHTML(ctx, html, layout.MMToInches(wMM), layout.MMToInches(hMM), tpl.IsLandscape)
	if err != nil {
		log.Printf("❌ Print invocation failed: %v", err)
		return nil, err
	}
	log.Printf("✅ Print document produced (%d bytes, %d pages prepared)", len(pdf), len(units))
	return pdf, nil
}

// rasterLoaded verifies the optimized raster decodes as an image
func (s *PrintService) rasterLoaded(handle string) bool {
	h, ok := s.store.Get(handle)
	if !ok {
		return false
	}
	_, _, err := image.DecodeConfig(bytes.NewReader(h.Data))
	return err == nil
}

// scheduleCleanup defers releasing the print cycle's temporary handles by a
// fixed delay so the print subsystem can finish streaming them. Cleanups are
// keyed by print session: re-printing the same contract coalesces the
// pending release instead of double-scheduling it.
func (s *PrintService) scheduleCleanup(sessionKey string, handles []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if prev, ok := s.cleanups[sessionKey]; ok {
		prev.timer.Stop()
		handles = append(handles, prev.handles...)
		delete(s.cleanups, sessionKey)
	}

	if len(handles) == 0 {
		return
	}

	pc := &pendingCleanup{handles: handles}
	pc.timer = time.AfterFunc(printCleanupDelay, func() {
		s.mu.Lock()
		if s.cleanups[sessionKey] == pc {
			delete(s.cleanups, sessionKey)
		}
		s.mu.Unlock()
		s.store.ReleaseAll(pc.handles)
	})
	s.cleanups[sessionKey] = pc
}
