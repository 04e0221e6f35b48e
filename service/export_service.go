package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"log"
	"math"
	"os"
	"path/filepath"
	"sync"

	"github.com/signintech/gopdf"

	"github.com/wali1264/mihangps/layout"
	"github.com/wali1264/mihangps/models"
	"github.com/wali1264/mihangps/utils"
)

// exportScale rasterizes each reconstructed page at 3x for print sharpness
const exportScale = 3.0

// ErrExportInFlight is returned when an export is already running; exports
// are serialized to keep double-clicks from racing.
var ErrExportInFlight = errors.New("an export is already in progress")

// ExportResult describes where the generated document ended up
type ExportResult struct {
	Filename  string `json:"filename"`
	SavedPath string `json:"savedPath,omitempty"`
	Shared    bool   `json:"shared"`
	ShareLink string `json:"shareLink,omitempty"`
	Note      string `json:"note,omitempty"`
}

// ExportService reconstructs each contract page independently of the live
// canvas, rasterizes it and assembles a multi-page PDF, with an optional
// share delivery path alongside direct save.
type ExportService struct {
	cache      ImageCacheInterface
	store      *HandleStore
	rasterizer PageRasterizerInterface
	share      ShareServiceInterface
	exportDir  string

	mu       sync.Mutex
	inFlight bool
}

// NewExportService creates an ExportService. share may be nil when no share
// mechanism is configured; exports then always save directly.
func NewExportService(cache ImageCacheInterface, store *HandleStore, rasterizer PageRasterizerInterface, share ShareServiceInterface) *ExportService {
	return &ExportService{
		cache:      cache,
		store:      store,
		rasterizer: rasterizer,
		share:      share,
		exportDir:  defaultExportDir(),
	}
}

// defaultExportDir returns the save directory: EXPORT_DIR when set,
// otherwise a folder under the user's Downloads directory.
func defaultExportDir() string {
	if dir := os.Getenv("EXPORT_DIR"); dir != "" {
		return dir
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "exports"
	}
	return filepath.Join(homeDir, "Downloads", "mihangps-contracts")
}

// ExportDocument reconstructs every included template page as a detached,
// correctly dimensioned page document, rasterizes each at 3x scale, and
// assembles the multi-page PDF. shareMode hands the document to the share
// mechanism when available; every failure path still attempts a direct save.
func (s *ExportService) ExportDocument(ctx context.Context, tpl *models.ContractTemplate, formData models.FormData, clientName, plateNumber, fontName string, shareMode bool) (*ExportResult, error) {
	s.mu.Lock()
	if s.inFlight {
		s.mu.Unlock()
		return nil, ErrExportInFlight
	}
	s.inFlight = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.inFlight = false
		s.mu.Unlock()
	}()

	log.Printf("📄 Generating contract document for %s (%s)", clientName, plateNumber)

	pdfData, err := s.buildPDF(ctx, tpl, formData, fontName)
	if err != nil {
		return nil, fmt.Errorf("failed to build contract document: %w", err)
	}

	filename := utils.ExportFilename("Contract", clientName, plateNumber)
	result := &ExportResult{Filename: filename}

	if shareMode && s.share != nil && s.share.Available() {
		note := fmt.Sprintf("قرارداد %s - پلاک %s", clientName, plateNumber)
		link, shareErr := s.share.SharePDF(ctx, filename, pdfData, note)
		if shareErr == nil {
			result.Shared = true
			result.ShareLink = link
			log.Printf("✅ Contract shared: %s", link)
			return result, nil
		}
		log.Printf("⚠️  Sharing failed, falling back to direct save: %v", shareErr)
		result.Note = "sharing unavailable, saved to disk instead"
	}

	savedPath, saveErr := s.save(filename, pdfData)
	if saveErr != nil {
		return nil, fmt.Errorf("failed to save contract document: %w", saveErr)
	}
	result.SavedPath = savedPath
	log.Printf("✅ Contract saved: %s", savedPath)
	return result, nil
}

// buildPDF synthesizes, rasterizes and assembles the included pages. A page
// that fails to rasterize is appended blank rather than aborting the export.
func (s *ExportService) buildPDF(ctx context.Context, tpl *models.ContractTemplate, formData models.FormData, fontName string) ([]byte, error) {
	pdf := gopdf.GoPdf{}
	pdf.Start(gopdf.Config{PageSize: *gopdf.PageSizeA4})

	pages := 0
	for i, pg := range tpl.Pages {
		if !layout.IncludePage(pg, i == 0) {
			continue
		}

		wMM, hMM := layout.PaperDimensions(pg.PaperSize, tpl.IsLandscape)
		wPt, hPt := layout.MMToPoints(wMM), layout.MMToPoints(hMM)
		wPx, hPx := layout.PaperPixels(pg.PaperSize, tpl.IsLandscape)

		pdf.AddPageWithOption(gopdf.PageOption{PageSize: &gopdf.Rect{W: wPt, H: hPt}})
		pages++

		html, err := s.renderPageHTML(ctx, pg, tpl.IsLandscape, formData, fontName, wMM, hMM, wPx, hPx)
		if err != nil {
			log.Printf("⚠️  Export page %d reconstruction failed, emitting blank page: %v", pg.PageNumber, err)
			continue
		}

		raster, err := s.rasterizer.CapturePage(ctx, html, int(math.Round(wPx)), int(math.Round(hPx)), exportScale)
		if err != nil {
			log.Printf("⚠️  Export page %d rasterization failed, emitting blank page: %v", pg.PageNumber, err)
			continue
		}

		holder, err := gopdf.ImageHolderByBytes(raster)
		if err != nil {
			log.Printf("⚠️  Export page %d raster unusable, emitting blank page: %v", pg.PageNumber, err)
			continue
		}
		if err := pdf.ImageByHolder(holder, 0, 0, &gopdf.Rect{W: wPt, H: hPt}); err != nil {
			log.Printf("⚠️  Export page %d placement failed, emitting blank page: %v", pg.PageNumber, err)
		}
	}

	if pages == 0 {
		return nil, fmt.Errorf("template produced no pages")
	}

	var buf bytes.Buffer
	if err := pdf.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write document: %w", err)
	}
	return buf.Bytes(), nil
}

// exportPageTemplate reconstructs a single page detached from the live
// canvas, using the same placement rule as the canvas and print layer.
const exportPageTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<style>
  html, body { margin: 0; padding: 0; }
  body { font-family: '{{.FontName}}', sans-serif; }
  .export-page {
    position: relative;
    overflow: hidden;
    width: {{printf "%.2f" .WidthMM}}mm;
    height: {{printf "%.2f" .HeightMM}}mm;
    background-size: 100% 100%;
    background-repeat: no-repeat;
    {{if .Background}}background-image: url('{{.Background}}');{{end}}
  }
  .contract-field {
    position: absolute;
    display: flex;
    align-items: center;
    white-space: pre-wrap;
    transform-origin: center left;
  }
</style>
</head>
<body>
<div class="export-page">
{{range .Fields}}  <div class="contract-field" style="left: {{printf "%.2f" .Placement.LeftPx}}px; top: {{printf "%.2f" .Placement.TopPx}}px; width: {{printf "%.2f" .Placement.WidthPx}}px; font-size: {{printf "%.1f" .FontSizePx}}px; transform: {{css .Placement.Transform}}; text-align: {{.Placement.TextAlign}}; justify-content: {{.Placement.JustifyContent}};">{{.Value}}</div>
{{end}}</div>
</body>
</html>`

var exportPageTmpl = template.Must(template.New("exportpage").Funcs(template.FuncMap{"css": css}).Parse(exportPageTemplate))

func (s *ExportService) renderPageHTML(ctx context.Context, pg models.ContractPage, landscape bool, formData models.FormData, fontName string, wMM, hMM, wPx, hPx float64) (string, error) {
	background := ""
	if pg.BgImage != "" && pg.ShowBackgroundInPrint {
		resolved := s.cache.Resolve(ctx, pg.BgImage, false)
		background = s.inlineBackground(resolved)
	}

	var fields []PlacedField
	for _, f := range pg.ActiveFields() {
		fields = append(fields, PlacedField{
			Key:        f.Key,
			Value:      formData[f.Key],
			FontSizePx: f.FontSize,
			Placement:  layout.FieldLayout(f, wPx, hPx),
		})
	}

	data := struct {
		FontName   string
		WidthMM    float64
		HeightMM   float64
		Background template.URL
		Fields     []PlacedField
	}{
		FontName:   fontName,
		WidthMM:    wMM,
		HeightMM:   hMM,
		Background: template.URL(background),
		Fields:     fields,
	}

	var buf bytes.Buffer
	if err := exportPageTmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render export page: %w", err)
	}
	return buf.String(), nil
}

// inlineBackground embeds blob-handle backgrounds as data URIs so the
// detached page document needs no live server to resolve them.
func (s *ExportService) inlineBackground(src string) string {
	if !s.store.IsHandle(src) {
		return src
	}
	h, found := s.store.Get(src)
	if !found {
		return src
	}
	return utils.DataURI(h.ContentType, h.Data)
}

func (s *ExportService) save(filename string, data []byte) (string, error) {
	if err := os.MkdirAll(s.exportDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}
	path := filepath.Join(s.exportDir, filename)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write export file: %w", err)
	}
	return path, nil
}
