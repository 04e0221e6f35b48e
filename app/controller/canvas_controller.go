package controller

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/wali1264/mihangps/layout"
	"github.com/wali1264/mihangps/models"
	"github.com/wali1264/mihangps/repository"
	"github.com/wali1264/mihangps/service"
)

// CanvasController handles HTTP requests for interactive canvas sessions.
// A session holds the editing state machine server-side; clients post
// interaction events and read back the resulting render model.
type CanvasController struct {
	sessions  *service.CanvasSessionManager
	templates repository.TemplateRepositoryInterface
}

// NewCanvasController creates a new CanvasController
func NewCanvasController(sessions *service.CanvasSessionManager, templates repository.TemplateRepositoryInterface) *CanvasController {
	return &CanvasController{
		sessions:  sessions,
		templates: templates,
	}
}

// canvasOpenRequest starts a session on the current template
type canvasOpenRequest struct {
	FormData   models.FormData `json:"formData"`
	PageNumber int             `json:"pageNumber"`
}

// canvasEventRequest is one interaction event against a session
type canvasEventRequest struct {
	// Type is one of: clickCanvas, clickField, pointerDown, pointerMove,
	// pointerUp, input, selectOption, enter, setPage
	Type       string      `json:"type"`
	Key        string      `json:"key,omitempty"`
	Value      string      `json:"value,omitempty"`
	Option     string      `json:"option,omitempty"`
	PointerX   float64     `json:"pointerX,omitempty"`
	PointerY   float64     `json:"pointerY,omitempty"`
	CanvasBox  layout.Rect `json:"canvasBox,omitempty"`
	PageNumber int         `json:"pageNumber,omitempty"`
}

// OpenSession handles POST /admin/canvas/sessions
func (c *CanvasController) OpenSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req canvasOpenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}
	if req.PageNumber == 0 {
		req.PageNumber = 1
	}

	ctx := context.Background()
	tpl, err := c.templates.Get(ctx)
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to load template: %v", err), http.StatusInternalServerError)
		return
	}

	session, err := c.sessions.Open(ctx, tpl, req.FormData, req.PageNumber)
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to open canvas session: %v", err), http.StatusBadRequest)
		return
	}

	c.writeRenderModel(w, r, session)
}

// GetSession handles GET /admin/canvas/sessions/:id
// Returns the render model at the canvas size given by width/height params
func (c *CanvasController) GetSession(w http.ResponseWriter, r *http.Request) {
	session, ok := c.sessionFromPath(w, r)
	if !ok {
		return
	}
	c.writeRenderModel(w, r, session)
}

// ApplyEvent handles POST /admin/canvas/sessions/:id/events
// Applies one interaction event and returns the updated render model
func (c *CanvasController) ApplyEvent(w http.ResponseWriter, r *http.Request) {
	session, ok := c.sessionFromPath(w, r)
	if !ok {
		return
	}

	var event canvasEventRequest
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	var err error
	switch event.Type {
	case "clickCanvas":
		session.ClickCanvas()
	case "clickField":
		err = session.ClickField(event.Key)
	case "pointerDown":
		err = session.PointerDown(event.Key)
	case "pointerMove":
		session.PointerMove(event.PointerX, event.PointerY, event.CanvasBox)
	case "pointerUp":
		session.PointerUp()
	case "input":
		session.Input(event.Key, event.Value)
	case "selectOption":
		session.SelectOption(event.Key, event.Option)
	case "enter":
		session.EnterPressed(event.Key)
	case "setPage":
		err = c.sessions.SetPage(context.Background(), session, event.PageNumber)
	default:
		http.Error(w, fmt.Sprintf("Unknown event type %q", event.Type), http.StatusBadRequest)
		return
	}
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to apply %s event: %v", event.Type, err), http.StatusConflict)
		return
	}

	c.writeRenderModel(w, r, session)
}

// CloseSession handles DELETE /admin/canvas/sessions/:id
func (c *CanvasController) CloseSession(w http.ResponseWriter, r *http.Request) {
	id := c.sessionID(r)
	if id == "" {
		http.Error(w, "session id is required", http.StatusBadRequest)
		return
	}
	c.sessions.Close(id)
	w.WriteHeader(http.StatusNoContent)
}

func (c *CanvasController) sessionID(r *http.Request) string {
	// Path format: /admin/canvas/sessions/{id}[/events]
	path := strings.TrimPrefix(r.URL.Path, "/admin/canvas/sessions/")
	path = strings.TrimSuffix(path, "/events")
	return strings.Trim(path, "/")
}

func (c *CanvasController) sessionFromPath(w http.ResponseWriter, r *http.Request) (*service.CanvasSession, bool) {
	id := c.sessionID(r)
	if id == "" {
		http.Error(w, "session id is required", http.StatusBadRequest)
		return nil, false
	}
	session, ok := c.sessions.Get(id)
	if !ok {
		http.Error(w, fmt.Sprintf("canvas session %s not found", id), http.StatusNotFound)
		return nil, false
	}
	return session, true
}

func (c *CanvasController) writeRenderModel(w http.ResponseWriter, r *http.Request, session *service.CanvasSession) {
	width := queryFloat(r, "width", 800)
	height := queryFloat(r, "height", 1131)

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(session.RenderModel(width, height)); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

func queryFloat(r *http.Request, name string, fallback float64) float64 {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}
