// Package layout is the field coordinate engine: pure geometry shared by the
// interactive canvas, the print layer and the PDF export reconstruction so
// that the three renderings never visually diverge.
package layout

import (
	"fmt"

	"github.com/wali1264/mihangps/models"
)

const (
	// ScreenDPI is the CSS reference resolution used for mm to px conversion
	ScreenDPI = 96.0
	mmPerInch = 25.4

	// DragClampMax keeps the field anchor inside the visible page area
	DragClampMax = 98.0
)

// Rect is an on-screen bounding box in pixels
type Rect struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Placement is the concrete on-canvas layout of one field. Transform always
// vertically centers the box on its anchor before applying rotation, so
// Field.X/Y address the visual center line, not the top-left corner.
type Placement struct {
	LeftPx         float64 `json:"leftPx"`
	TopPx          float64 `json:"topPx"`
	WidthPx        float64 `json:"widthPx"`
	Transform      string  `json:"transform"`
	TextAlign      string  `json:"textAlign"`
	JustifyContent string  `json:"justifyContent"`
}

// FieldLayout converts a field's percentage anchor, pixel width, rotation and
// alignment into a concrete placement on a canvas of the given pixel size.
func FieldLayout(f models.ContractField, canvasWidthPx, canvasHeightPx float64) Placement {
	p := Placement{
		LeftPx:    f.X / 100.0 * canvasWidthPx,
		TopPx:     f.Y / 100.0 * canvasHeightPx,
		WidthPx:   f.Width,
		Transform: fmt.Sprintf("translateY(-50%%) rotate(%gdeg)", f.Rotation),
	}
	switch f.Alignment {
	case models.AlignCenter:
		p.TextAlign = "center"
		p.JustifyContent = "center"
	case models.AlignRight:
		p.TextAlign = "right"
		p.JustifyContent = "flex-end"
	default:
		p.TextAlign = "left"
		p.JustifyContent = "flex-start"
	}
	return p
}

// DragUpdate converts an absolute pointer position into percentage
// coordinates relative to the canvas bounding box, clamped to [0, 98] on
// both axes. Stateless; called once per pointer-move during a drag.
func DragUpdate(pointerX, pointerY float64, canvasBox Rect) (xPct, yPct float64) {
	if canvasBox.Width > 0 {
		xPct = (pointerX - canvasBox.Left) / canvasBox.Width * 100.0
	}
	if canvasBox.Height > 0 {
		yPct = (pointerY - canvasBox.Top) / canvasBox.Height * 100.0
	}
	xPct = clamp(xPct, 0, DragClampMax)
	yPct = clamp(yPct, 0, DragClampMax)
	return xPct, yPct
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// TabOrder returns the next active field after currentKey in array order,
// or nil if the current field is the last active one (or not found).
func TabOrder(fields []models.ContractField, currentKey string) *models.ContractField {
	var active []models.ContractField
	for _, f := range fields {
		if f.IsActive {
			active = append(active, f)
		}
	}
	for i, f := range active {
		if f.Key == currentKey {
			if i+1 < len(active) {
				next := active[i+1]
				return &next
			}
			return nil
		}
	}
	return nil
}

// PaperDimensions returns the physical page size in millimeters for the
// given paper format, swapping width and height when landscape.
func PaperDimensions(size models.PaperSize, landscape bool) (widthMM, heightMM float64) {
	switch size {
	case models.PaperA5:
		widthMM, heightMM = 148, 210
	default: // A4
		widthMM, heightMM = 210, 297
	}
	if landscape {
		widthMM, heightMM = heightMM, widthMM
	}
	return widthMM, heightMM
}

// PaperPixels returns the page size in CSS pixels at the 96dpi screen scale
func PaperPixels(size models.PaperSize, landscape bool) (widthPx, heightPx float64) {
	wMM, hMM := PaperDimensions(size, landscape)
	return MMToPixels(wMM), MMToPixels(hMM)
}

// MMToPixels converts millimeters to CSS pixels at 96dpi
func MMToPixels(mm float64) float64 {
	return mm * ScreenDPI / mmPerInch
}

// MMToInches converts millimeters to inches (Chrome's PrintToPDF unit)
func MMToInches(mm float64) float64 {
	return mm / mmPerInch
}

// MMToPoints converts millimeters to PDF points (1pt = 1/72")
func MMToPoints(mm float64) float64 {
	return mm * 72.0 / mmPerInch
}

// IncludePage is the shared page inclusion rule for the print layer and the
// PDF export: the first page is always emitted; any later page is emitted
// only if it carries a background image or at least one active field.
func IncludePage(p models.ContractPage, isFirst bool) bool {
	if isFirst {
		return true
	}
	if p.BgImage != "" {
		return true
	}
	return len(p.ActiveFields()) > 0
}
