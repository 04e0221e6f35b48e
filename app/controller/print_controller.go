package controller

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/wali1264/mihangps/models"
	"github.com/wali1264/mihangps/repository"
	"github.com/wali1264/mihangps/service"
)

// PrintController handles HTTP requests for the print pipeline
type PrintController struct {
	printService *service.PrintService
	templates    repository.TemplateRepositoryInterface
}

// NewPrintController creates a new PrintController
func NewPrintController(printService *service.PrintService, templates repository.TemplateRepositoryInterface) *PrintController {
	return &PrintController{
		printService: printService,
		templates:    templates,
	}
}

// printRequest carries the form data to print against the current template
type printRequest struct {
	FormData   models.FormData `json:"formData"`
	ContractID string          `json:"contractId,omitempty"`
	FontName   string          `json:"fontName,omitempty"`
}

// Print handles POST /admin/contracts/print
// Builds the print layer for the current template and streams back the
// paginated PDF document
func (c *PrintController) Print(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req printRequest
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

	pdf, err := c.printService.PrintDocument(ctx, tpl, req.FormData, req.FontName, req.ContractID)
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to print document: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `inline; filename="contract.pdf"`)
	w.Write(pdf)
}
