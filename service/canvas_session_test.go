package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wali1264/mihangps/layout"
	"github.com/wali1264/mihangps/models"
)

func canvasTemplate() *models.ContractTemplate {
	return &models.ContractTemplate{
		ID: "tpl",
		Pages: []models.ContractPage{
			{
				PageNumber: 1,
				PaperSize:  models.PaperA4,
				BgImage:    "https://example.com/page1.png",
				Fields: []models.ContractField{
					{Key: "clientName", IsActive: true, X: 35, Y: 30, Width: 150},
					{Key: "inactive", IsActive: false},
					{Key: "serviceType", IsActive: true, X: 50, Y: 45, Width: 200, IsDropdown: true, Options: []string{"ردیاب استاندارد", "ردیاب پیشرفته"}},
					{Key: "date", IsActive: true, X: 78, Y: 30, Width: 100},
				},
			},
			{
				PageNumber: 2,
				PaperSize:  models.PaperA4,
				Fields: []models.ContractField{
					{Key: "notes", IsActive: true, X: 20, Y: 20, Width: 300},
				},
			},
		},
	}
}

func openSession(t *testing.T) (*CanvasSessionManager, *CanvasSession) {
	t.Helper()
	m := NewCanvasSessionManager(&fakeImageCache{})
	s, err := m.Open(context.Background(), canvasTemplate(), nil, 1)
	require.NoError(t, err)
	return m, s
}

func TestOpenSessionStartsIdle(t *testing.T) {
	_, s := openSession(t)

	assert.Equal(t, ModeIdle, s.Mode)
	assert.Empty(t, s.SelectedKey)
	assert.Equal(t, 1, s.PageNumber)
	// Background resolved through the cache on mount
	assert.Equal(t, HandleBasePath+"cached_page1.png", s.Background)
}

func TestOpenSessionRejectsUnknownPage(t *testing.T) {
	m := NewCanvasSessionManager(&fakeImageCache{})
	_, err := m.Open(context.Background(), canvasTemplate(), nil, 7)
	assert.Error(t, err)
}

func TestOpenSessionSeedsDropdownDefaults(t *testing.T) {
	_, s := openSession(t)
	assert.Equal(t, "ردیاب استاندارد", s.FormData["serviceType"])
}

func TestDropdownSeedingHappensOncePerPage(t *testing.T) {
	m, s := openSession(t)
	ctx := context.Background()

	// The operator clears the seeded value, then flips pages and back
	s.Input("serviceType", "")
	require.NoError(t, m.SetPage(ctx, s, 2))
	require.NoError(t, m.SetPage(ctx, s, 1))

	// Re-mounting page 1 must not re-seed over the cleared value
	assert.Equal(t, "", s.FormData["serviceType"])
}

func TestSessionLifecycle(t *testing.T) {
	m, s := openSession(t)

	got, ok := m.Get(s.ID)
	require.True(t, ok)
	assert.Same(t, s, got)

	m.Close(s.ID)
	_, ok = m.Get(s.ID)
	assert.False(t, ok)
}

func TestClickFieldSelects(t *testing.T) {
	_, s := openSession(t)

	require.NoError(t, s.ClickField("clientName"))
	assert.Equal(t, ModeFieldSelected, s.Mode)
	assert.Equal(t, "clientName", s.SelectedKey)
	assert.False(t, s.OptionsOpen)
}

func TestClickDropdownOpensOptions(t *testing.T) {
	_, s := openSession(t)

	require.NoError(t, s.ClickField("serviceType"))
	assert.True(t, s.OptionsOpen)
}

func TestClickFieldRejectsInactive(t *testing.T) {
	_, s := openSession(t)

	assert.Error(t, s.ClickField("inactive"))
	assert.Error(t, s.ClickField("missing"))
	assert.Equal(t, ModeIdle, s.Mode)
}

func TestClickCanvasDeselects(t *testing.T) {
	_, s := openSession(t)
	require.NoError(t, s.ClickField("serviceType"))

	s.ClickCanvas()
	assert.Equal(t, ModeIdle, s.Mode)
	assert.Empty(t, s.SelectedKey)
	assert.False(t, s.OptionsOpen)
}

func TestDragMovesSelectedField(t *testing.T) {
	_, s := openSession(t)
	require.NoError(t, s.ClickField("clientName"))
	require.NoError(t, s.PointerDown("clientName"))
	assert.Equal(t, ModeEditing, s.Mode)
	assert.True(t, s.Dragging)

	box := layout.Rect{Left: 0, Top: 0, Width: 800, Height: 1000}
	s.PointerMove(400, 250, box)

	f := s.Template.Pages[0].FieldByKey("clientName")
	assert.Equal(t, 50.0, f.X)
	assert.Equal(t, 25.0, f.Y)

	s.PointerUp()
	assert.Equal(t, ModeFieldSelected, s.Mode)
	assert.False(t, s.Dragging)
}

func TestDragClampsToPageBounds(t *testing.T) {
	_, s := openSession(t)
	require.NoError(t, s.ClickField("clientName"))
	require.NoError(t, s.PointerDown("clientName"))

	s.PointerMove(-500, 99999, layout.Rect{Width: 800, Height: 1000})

	f := s.Template.Pages[0].FieldByKey("clientName")
	assert.Equal(t, 0.0, f.X)
	assert.Equal(t, layout.DragClampMax, f.Y)
}

func TestPointerDownRejectsOverlappingDrag(t *testing.T) {
	_, s := openSession(t)
	require.NoError(t, s.ClickField("clientName"))
	require.NoError(t, s.PointerDown("clientName"))

	assert.Error(t, s.PointerDown("clientName"))
}

func TestPointerDownRequiresSelection(t *testing.T) {
	_, s := openSession(t)
	assert.Error(t, s.PointerDown("clientName"))
}

func TestPointerMoveWithoutDragIsIgnored(t *testing.T) {
	_, s := openSession(t)
	require.NoError(t, s.ClickField("clientName"))

	s.PointerMove(400, 250, layout.Rect{Width: 800, Height: 1000})

	f := s.Template.Pages[0].FieldByKey("clientName")
	assert.Equal(t, 35.0, f.X)
}

func TestInputTracksEveryKeystroke(t *testing.T) {
	_, s := openSession(t)

	s.Input("clientName", "ا")
	s.Input("clientName", "اح")
	s.Input("clientName", "احمد")
	assert.Equal(t, "احمد", s.FormData["clientName"])
}

func TestSelectOptionClosesDropdown(t *testing.T) {
	_, s := openSession(t)
	require.NoError(t, s.ClickField("serviceType"))
	require.True(t, s.OptionsOpen)

	s.SelectOption("serviceType", "ردیاب پیشرفته")
	assert.Equal(t, "ردیاب پیشرفته", s.FormData["serviceType"])
	assert.False(t, s.OptionsOpen)
}

func TestEnterAdvancesInTabOrder(t *testing.T) {
	_, s := openSession(t)
	require.NoError(t, s.ClickField("clientName"))

	// clientName -> serviceType (dropdown: options open)
	next := s.EnterPressed("clientName")
	require.NotNil(t, next)
	assert.Equal(t, "serviceType", next.Key)
	assert.Equal(t, "serviceType", s.SelectedKey)
	assert.True(t, s.OptionsOpen)

	// serviceType -> date (plain field)
	next = s.EnterPressed("serviceType")
	require.NotNil(t, next)
	assert.Equal(t, "date", next.Key)
	assert.False(t, s.OptionsOpen)

	// date is last: selection state stays put
	assert.Nil(t, s.EnterPressed("date"))
	assert.Equal(t, "date", s.SelectedKey)
}

func TestSetPageResetsEditingState(t *testing.T) {
	m, s := openSession(t)
	require.NoError(t, s.ClickField("clientName"))
	require.NoError(t, s.PointerDown("clientName"))

	require.NoError(t, m.SetPage(context.Background(), s, 2))

	assert.Equal(t, 2, s.PageNumber)
	assert.Equal(t, ModeIdle, s.Mode)
	assert.Empty(t, s.SelectedKey)
	assert.False(t, s.Dragging)
	// Page 2 has no background image
	assert.Empty(t, s.Background)
}

func TestSetPageRejectsUnknownPage(t *testing.T) {
	m, s := openSession(t)
	assert.Error(t, m.SetPage(context.Background(), s, 9))
	assert.Equal(t, 1, s.PageNumber)
}

func TestFormDataSharedAcrossPages(t *testing.T) {
	m, s := openSession(t)
	s.Input("clientName", "احمد")

	require.NoError(t, m.SetPage(context.Background(), s, 2))
	s.Input("notes", "yearly")
	require.NoError(t, m.SetPage(context.Background(), s, 1))

	// One form data dictionary spans all pages
	assert.Equal(t, "احمد", s.FormData["clientName"])
	assert.Equal(t, "yearly", s.FormData["notes"])
}

func TestRenderModel(t *testing.T) {
	_, s := openSession(t)
	s.Input("clientName", "احمد")
	require.NoError(t, s.ClickField("clientName"))

	model := s.RenderModel(800, 1131)

	assert.Equal(t, s.ID, model.SessionID)
	assert.Equal(t, ModeFieldSelected, model.Mode)
	// Only the three active fields are rendered
	require.Len(t, model.Fields, 3)

	first := model.Fields[0]
	assert.Equal(t, "clientName", first.Field.Key)
	assert.Equal(t, "احمد", first.Value)
	assert.True(t, first.Selected)
	assert.False(t, model.Fields[1].Selected)
	// Placement comes from the shared coordinate engine
	assert.InDelta(t, 280.0, first.Placement.LeftPx, 0.001)
}
