package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wali1264/mihangps/models"
)

func TestFieldLayoutPlacement(t *testing.T) {
	f := models.ContractField{
		Key:       "f_plate",
		X:         25,
		Y:         50,
		Width:     160,
		Rotation:  15,
		Alignment: models.AlignCenter,
	}

	p := FieldLayout(f, 800, 1131)

	assert.Equal(t, 200.0, p.LeftPx)
	assert.Equal(t, 565.5, p.TopPx)
	assert.Equal(t, 160.0, p.WidthPx)
	assert.Equal(t, "translateY(-50%) rotate(15deg)", p.Transform)
	assert.Equal(t, "center", p.TextAlign)
	assert.Equal(t, "center", p.JustifyContent)
}

func TestFieldLayoutScalesWithCanvasSize(t *testing.T) {
	f := models.ContractField{X: 10, Y: 20, Width: 100}

	small := FieldLayout(f, 400, 565)
	large := FieldLayout(f, 800, 1130)

	// Anchors are percentages: doubling the canvas doubles the pixel offset
	assert.Equal(t, small.LeftPx*2, large.LeftPx)
	assert.Equal(t, small.TopPx*2, large.TopPx)
	// Width is stored in pixels and does not scale
	assert.Equal(t, small.WidthPx, large.WidthPx)
}

func TestFieldLayoutAlignment(t *testing.T) {
	tests := []struct {
		alignment models.TextAlignment
		textAlign string
		justify   string
	}{
		{models.AlignLeft, "left", "flex-start"},
		{models.AlignCenter, "center", "center"},
		{models.AlignRight, "right", "flex-end"},
		{"", "left", "flex-start"},
	}
	for _, tt := range tests {
		p := FieldLayout(models.ContractField{Alignment: tt.alignment}, 800, 1131)
		assert.Equal(t, tt.textAlign, p.TextAlign)
		assert.Equal(t, tt.justify, p.JustifyContent)
	}
}

func TestFieldLayoutZeroRotation(t *testing.T) {
	p := FieldLayout(models.ContractField{}, 800, 1131)
	assert.Equal(t, "translateY(-50%) rotate(0deg)", p.Transform)
}

func TestDragUpdate(t *testing.T) {
	box := Rect{Left: 100, Top: 50, Width: 800, Height: 1000}

	x, y := DragUpdate(500, 550, box)
	assert.Equal(t, 50.0, x)
	assert.Equal(t, 50.0, y)
}

func TestDragUpdateClampsOutsideBox(t *testing.T) {
	box := Rect{Left: 100, Top: 50, Width: 800, Height: 1000}

	// Pointer left of and above the canvas
	x, y := DragUpdate(0, 0, box)
	assert.Equal(t, 0.0, x)
	assert.Equal(t, 0.0, y)

	// Pointer far beyond the bottom-right corner
	x, y = DragUpdate(5000, 5000, box)
	assert.Equal(t, DragClampMax, x)
	assert.Equal(t, DragClampMax, y)
}

func TestDragUpdateZeroSizedBox(t *testing.T) {
	x, y := DragUpdate(300, 300, Rect{})
	assert.Equal(t, 0.0, x)
	assert.Equal(t, 0.0, y)
}

func TestTabOrderSkipsInactive(t *testing.T) {
	fields := []models.ContractField{
		{Key: "a", IsActive: true},
		{Key: "b", IsActive: false},
		{Key: "c", IsActive: true},
		{Key: "d", IsActive: false},
	}

	next := TabOrder(fields, "a")
	require.NotNil(t, next)
	assert.Equal(t, "c", next.Key)

	// c is the last active field
	assert.Nil(t, TabOrder(fields, "c"))
	// inactive or unknown keys have no successor
	assert.Nil(t, TabOrder(fields, "b"))
	assert.Nil(t, TabOrder(fields, "missing"))
}

func TestPaperDimensions(t *testing.T) {
	w, h := PaperDimensions(models.PaperA4, false)
	assert.Equal(t, 210.0, w)
	assert.Equal(t, 297.0, h)

	w, h = PaperDimensions(models.PaperA5, false)
	assert.Equal(t, 148.0, w)
	assert.Equal(t, 210.0, h)

	// Landscape swaps the axes
	w, h = PaperDimensions(models.PaperA4, true)
	assert.Equal(t, 297.0, w)
	assert.Equal(t, 210.0, h)
}

func TestUnitConversions(t *testing.T) {
	assert.InDelta(t, 793.7, MMToPixels(210), 0.05)
	assert.InDelta(t, 8.27, MMToInches(210), 0.005)
	assert.InDelta(t, 595.28, MMToPoints(210), 0.01)
}

func TestIncludePage(t *testing.T) {
	bgOnly := models.ContractPage{PageNumber: 3, BgImage: "https://example.com/bg.png"}
	empty := models.ContractPage{PageNumber: 2}
	withField := models.ContractPage{
		PageNumber: 2,
		Fields:     []models.ContractField{{Key: "f", IsActive: true}},
	}
	inactiveOnly := models.ContractPage{
		PageNumber: 2,
		Fields:     []models.ContractField{{Key: "f", IsActive: false}},
	}

	// First page always ships, even when blank
	assert.True(t, IncludePage(empty, true))
	// Later pages need a background or an active field
	assert.False(t, IncludePage(empty, false))
	assert.True(t, IncludePage(bgOnly, false))
	assert.True(t, IncludePage(withField, false))
	assert.False(t, IncludePage(inactiveOnly, false))
}
