package service

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strings"

	"github.com/wali1264/mihangps/layout"
	"github.com/wali1264/mihangps/models"
)

// PrintPageUnit is one physical sheet's worth of rendered content, sized and
// oriented to match a real paper format.
type PrintPageUnit struct {
	PageNumber int
	WidthMM    float64
	HeightMM   float64
	WidthPx    float64
	HeightPx   float64
	// Background is the resolved background source for this unit, empty when
	// the page has no background or background-in-print is disabled
	Background string
	Fields     []PlacedField
}

// PlacedField is a field with its layout resolved and its form value bound
type PlacedField struct {
	Key        string
	Value      string
	FontSizePx float64
	Placement  layout.Placement
}

// PrintLayerRenderer renders the template read-only into the dedicated print
// layer. Backgrounds go through the image cache only; the print-quality
// upgrade happens at print time in the orchestrator, not at render time.
type PrintLayerRenderer struct {
	cache ImageCacheInterface
}

// NewPrintLayerRenderer creates a PrintLayerRenderer
func NewPrintLayerRenderer(cache ImageCacheInterface) *PrintLayerRenderer {
	return &PrintLayerRenderer{cache: cache}
}

// BuildPageUnits maps the template and form data to ordered print-page
// units. The first page is always emitted; later pages are emitted only if
// they carry a background image or at least one active field.
func (p *PrintLayerRenderer) BuildPageUnits(ctx context.Context, tpl *models.ContractTemplate, formData models.FormData) []PrintPageUnit {
	var units []PrintPageUnit
	for i, page := range tpl.Pages {
		if !layout.IncludePage(page, i == 0) {
			continue
		}

		wMM, hMM := layout.PaperDimensions(page.PaperSize, tpl.IsLandscape)
		wPx, hPx := layout.PaperPixels(page.PaperSize, tpl.IsLandscape)
		unit := PrintPageUnit{
			PageNumber: page.PageNumber,
			WidthMM:    wMM,
			HeightMM:   hMM,
			WidthPx:    wPx,
			HeightPx:   hPx,
		}

		if page.BgImage != "" && page.ShowBackgroundInPrint {
			unit.Background = p.cache.Resolve(ctx, page.BgImage, false)
		}

		for _, f := range page.ActiveFields() {
			unit.Fields = append(unit.Fields, PlacedField{
				Key:        f.Key,
				Value:      formData[f.Key],
				FontSizePx: f.FontSize,
				Placement:  layout.FieldLayout(f, wPx, hPx),
			})
		}

		units = append(units, unit)
	}
	return units
}

// printLayerTemplate must keep the same placement rule as the interactive
// canvas and the export reconstruction: absolute positioning off the
// percentage anchor with a translateY(-50%) rotate() transform.
const printLayerTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<style>
  @page { size: {{.Orientation}}; margin: 0; }
  html, body { margin: 0; padding: 0; }
  body { font-family: '{{.FontName}}', sans-serif; }
  .print-root-layer { position: relative; }
  .print-page-unit {
    position: relative;
    overflow: hidden;
    background-size: 100% 100%;
    background-repeat: no-repeat;
    page-break-after: always;
  }
  .print-page-unit:last-child { page-break-after: auto; }
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
<div class="print-root-layer">
{{range .Units}}  <div class="print-page-unit" data-page="{{.PageNumber}}" style="width: {{printf "%.2f" .WidthMM}}mm; height: {{printf "%.2f" .HeightMM}}mm;{{if .Background}} background-image: url('{{.Background}}');{{end}}">
{{range .Fields}}    <div class="contract-field" data-key="{{.Key}}" style="left: {{printf "%.2f" .Placement.LeftPx}}px; top: {{printf "%.2f" .Placement.TopPx}}px; width: {{printf "%.2f" .Placement.WidthPx}}px; font-size: {{printf "%.1f" .FontSizePx}}px; transform: {{css .Placement.Transform}}; text-align: {{.Placement.TextAlign}}; justify-content: {{.Placement.JustifyContent}};">{{.Value}}</div>
{{end}}  </div>
{{end}}</div>
</body>
</html>`

// css lets the transform value through the template's CSS sanitizer; the
// string is built by the layout engine, never from user input
func css(v string) template.CSS { return template.CSS(v) }

var printLayerTmpl = template.Must(template.New("printlayer").Funcs(template.FuncMap{"css": css}).Parse(printLayerTemplate))

// RenderHTML renders the page units into the print layer document. Handle
// paths are rewritten against baseURL so the headless print path can load
// them over HTTP.
func (p *PrintLayerRenderer) RenderHTML(units []PrintPageUnit, fontName string, isLandscape bool, baseURL string) (string, error) {
	orientation := "portrait"
	if isLandscape {
		orientation = "landscape"
	}

	rewritten := make([]PrintPageUnit, len(units))
	copy(rewritten, units)
	for i := range rewritten {
		rewritten[i].Background = absolutizeHandle(rewritten[i].Background, baseURL)
	}

	data := struct {
		Orientation string
		FontName    string
		Units       []PrintPageUnit
	}{
		Orientation: orientation,
		FontName:    fontName,
		Units:       rewritten,
	}

	var buf bytes.Buffer
	if err := printLayerTmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render print layer: %w", err)
	}
	return buf.String(), nil
}

// absolutizeHandle prefixes relative blob-handle paths with the service base
// URL; remote URLs pass through untouched.
func absolutizeHandle(src, baseURL string) string {
	if src == "" || baseURL == "" {
		return src
	}
	if strings.HasPrefix(src, HandleBasePath) {
		return strings.TrimRight(baseURL, "/") + src
	}
	return src
}
