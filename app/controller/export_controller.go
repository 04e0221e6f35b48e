package controller

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/wali1264/mihangps/models"
	"github.com/wali1264/mihangps/repository"
	"github.com/wali1264/mihangps/service"
)

// ExportController handles HTTP requests for the PDF export pipeline
type ExportController struct {
	exportService *service.ExportService
	templates     repository.TemplateRepositoryInterface
}

// NewExportController creates a new ExportController
func NewExportController(exportService *service.ExportService, templates repository.TemplateRepositoryInterface) *ExportController {
	return &ExportController{
		exportService: exportService,
		templates:     templates,
	}
}

// exportRequest carries the form data to export against the current template
type exportRequest struct {
	FormData    models.FormData `json:"formData"`
	ClientName  string          `json:"clientName"`
	PlateNumber string          `json:"plateNumber"`
	FontName    string          `json:"fontName,omitempty"`
	Share       bool            `json:"share"`
}

// Export handles POST /admin/contracts/export
// Reconstructs every included page, assembles the PDF and either shares it
// or saves it to the export directory. Concurrent exports are rejected.
func (c *ExportController) Export(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req exportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}
	if req.FontName == "" {
		req.FontName = "Vazirmatn"
	}

	ctx := context.Background()
	tpl, err := c.templates.Get(ctx)
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to load template: %v", err), http.StatusInternalServerError)
		return
	}

	result, err := c.exportService.ExportDocument(ctx, tpl, req.FormData, req.ClientName, req.PlateNumber, req.FontName, req.Share)
	if errors.Is(err, service.ErrExportInFlight) {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to export document: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(result); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}
