package service

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/wali1264/mihangps/layout"
	"github.com/wali1264/mihangps/models"
)

// CanvasMode is the explicit editing state of a canvas session, replacing
// the ad hoc global listener state of a DOM-driven editor.
type CanvasMode string

const (
	ModeIdle          CanvasMode = "idle"
	ModeFieldSelected CanvasMode = "fieldSelected"
	ModeEditing       CanvasMode = "editing"
)

// CanvasSession is one user's interactive editing surface over a single
// template page: selection, drag repositioning, keystroke form input and
// tab-order advancement all run through its state machine.
type CanvasSession struct {
	ID         string
	Template   *models.ContractTemplate
	FormData   models.FormData
	PageNumber int

	Mode        CanvasMode
	SelectedKey string
	OptionsOpen bool
	Dragging    bool

	// Background is the page background resolved through the image cache,
	// refreshed once per page mount or background change
	Background string

	seededPages map[int]bool
	mu          sync.Mutex
}

// CanvasSessionManager owns all live canvas sessions
type CanvasSessionManager struct {
	cache    ImageCacheInterface
	mu       sync.RWMutex
	sessions map[string]*CanvasSession
	counter  int
}

// NewCanvasSessionManager creates a CanvasSessionManager
func NewCanvasSessionManager(cache ImageCacheInterface) *CanvasSessionManager {
	return &CanvasSessionManager{
		cache:    cache,
		sessions: make(map[string]*CanvasSession),
	}
}

// Open starts an editing session on the given template page. The form data
// map is created empty when nil (a fresh contract). Dropdown fields receive
// their first option as default value on this mount, once per page.
func (m *CanvasSessionManager) Open(ctx context.Context, tpl *models.ContractTemplate, formData models.FormData, pageNumber int) (*CanvasSession, error) {
	if tpl.PageByNumber(pageNumber) == nil {
		return nil, fmt.Errorf("template has no page %d", pageNumber)
	}
	if formData == nil {
		formData = make(models.FormData)
	}

	m.mu.Lock()
	m.counter++
	id := fmt.Sprintf("canvas_%d_%d", time.Now().UnixNano(), m.counter)
	s := &CanvasSession{
		ID:          id,
		Template:    tpl,
		FormData:    formData,
		Mode:        ModeIdle,
		seededPages: make(map[int]bool),
	}
	m.sessions[id] = s
	m.mu.Unlock()

	s.mountPage(ctx, m.cache, pageNumber)
	log.Printf("🎨 Canvas session %s opened on page %d", id, pageNumber)
	return s, nil
}

// Get returns the session with the given id
func (m *CanvasSessionManager) Get(id string) (*CanvasSession, bool) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	return s, ok
}

// Close discards a session
func (m *CanvasSessionManager) Close(id string) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}

// SetPage switches the session to another page of the template (a re-mount:
// background re-resolved, dropdown defaults seeded once for that page)
func (m *CanvasSessionManager) SetPage(ctx context.Context, s *CanvasSession, pageNumber int) error {
	if s.Template.PageByNumber(pageNumber) == nil {
		return fmt.Errorf("template has no page %d", pageNumber)
	}
	s.mu.Lock()
	s.Mode = ModeIdle
	s.SelectedKey = ""
	s.OptionsOpen = false
	s.Dragging = false
	s.mu.Unlock()
	s.mountPage(ctx, m.cache, pageNumber)
	return nil
}

func (s *CanvasSession) mountPage(ctx context.Context, cache ImageCacheInterface, pageNumber int) {
	page := s.Template.PageByNumber(pageNumber)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.PageNumber = pageNumber
	s.Background = ""

	if !s.seededPages[pageNumber] {
		// Dropdown defaults are applied once per page mount, not per keystroke
		for _, f := range page.ActiveFields() {
			if f.IsDropdown && len(f.Options) > 0 && s.FormData[f.Key] == "" {
				s.FormData[f.Key] = f.Options[0]
			}
		}
		s.seededPages[pageNumber] = true
	}

	if page.BgImage != "" {
		s.Background = cache.Resolve(ctx, page.BgImage, false)
	}
}

func (s *CanvasSession) page() *models.ContractPage {
	return s.Template.PageByNumber(s.PageNumber)
}

// ClickCanvas handles a click on empty canvas area: back to Idle
func (s *CanvasSession) ClickCanvas() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Mode = ModeIdle
	s.SelectedKey = ""
	s.OptionsOpen = false
	s.Dragging = false
}

// ClickField selects a field; dropdown fields immediately open their options
func (s *CanvasSession) ClickField(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f := s.page().FieldByKey(key)
	if f == nil || !f.IsActive {
		return fmt.Errorf("no active field %q on page %d", key, s.PageNumber)
	}
	s.Mode = ModeFieldSelected
	s.SelectedKey = key
	s.OptionsOpen = f.IsDropdown
	s.Dragging = false
	return nil
}

// PointerDown begins a drag on the selected field. Starting a second drag
// before the first ends is rejected.
func (s *CanvasSession) PointerDown(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Dragging {
		return fmt.Errorf("a drag is already in progress")
	}
	if s.SelectedKey != key || s.page().FieldByKey(key) == nil {
		return fmt.Errorf("field %q is not selected", key)
	}
	s.Mode = ModeEditing
	s.Dragging = true
	return nil
}

// PointerMove updates the dragged field's anchor from the pointer position,
// mutating x/y live for immediate visual feedback
func (s *CanvasSession) PointerMove(pointerX, pointerY float64, canvasBox layout.Rect) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.Dragging {
		return
	}
	f := s.page().FieldByKey(s.SelectedKey)
	if f == nil {
		return
	}
	f.X, f.Y = layout.DragUpdate(pointerX, pointerY, canvasBox)
}

// PointerUp ends the drag and returns to FieldSelected
func (s *CanvasSession) PointerUp() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.Dragging {
		return
	}
	s.Dragging = false
	s.Mode = ModeFieldSelected
}

// Input records a keystroke's worth of form data for the field key. No
// debouncing: live preview tracks every keystroke.
func (s *CanvasSession) Input(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.FormData[key] = value
}

// SelectOption picks a dropdown option and closes the option list
func (s *CanvasSession) SelectOption(key, option string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.FormData[key] = option
	if s.SelectedKey == key {
		s.OptionsOpen = false
	}
}

// EnterPressed advances selection to the next active field in tab order.
// Returns the next field (nil when the current field is last); dropdown
// targets open their option list, plain fields expect focus.
func (s *CanvasSession) EnterPressed(key string) *models.ContractField {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := layout.TabOrder(s.page().Fields, key)
	if next == nil {
		return nil
	}
	s.Mode = ModeFieldSelected
	s.SelectedKey = next.Key
	s.OptionsOpen = next.IsDropdown
	s.Dragging = false
	return next
}

// CanvasFieldView is one field's render model on the editable surface
type CanvasFieldView struct {
	Field     models.ContractField `json:"field"`
	Value     string               `json:"value"`
	Placement layout.Placement     `json:"placement"`
	Selected  bool                 `json:"selected"`
}

// CanvasRenderModel is the full render model of the editable surface at a
// given canvas size, sharing the exact placement rule of the print layer
// and the export reconstruction.
type CanvasRenderModel struct {
	SessionID   string            `json:"sessionId"`
	PageNumber  int               `json:"pageNumber"`
	Background  string            `json:"background,omitempty"`
	Mode        CanvasMode        `json:"mode"`
	SelectedKey string            `json:"selectedKey,omitempty"`
	OptionsOpen bool              `json:"optionsOpen"`
	Dragging    bool              `json:"dragging"`
	Fields      []CanvasFieldView `json:"fields"`
}

// RenderModel lays the page's active fields out on a canvas of the given
// pixel size
func (s *CanvasSession) RenderModel(canvasWidthPx, canvasHeightPx float64) CanvasRenderModel {
	s.mu.Lock()
	defer s.mu.Unlock()

	model := CanvasRenderModel{
		SessionID:   s.ID,
		PageNumber:  s.PageNumber,
		Background:  s.Background,
		Mode:        s.Mode,
		SelectedKey: s.SelectedKey,
		OptionsOpen: s.OptionsOpen,
		Dragging:    s.Dragging,
	}
	for _, f := range s.page().ActiveFields() {
		model.Fields = append(model.Fields, CanvasFieldView{
			Field:     f,
			Value:     s.FormData[f.Key],
			Placement: layout.FieldLayout(f, canvasWidthPx, canvasHeightPx),
			Selected:  f.Key == s.SelectedKey,
		})
	}
	return model
}
