package controller

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/wali1264/mihangps/models"
	"github.com/wali1264/mihangps/repository"
)

// TemplateController handles HTTP requests for the contract template blob
type TemplateController struct {
	templates repository.TemplateRepositoryInterface
}

// NewTemplateController creates a new TemplateController
func NewTemplateController(templates repository.TemplateRepositoryInterface) *TemplateController {
	return &TemplateController{templates: templates}
}

// GetTemplate handles GET /admin/template
// Returns the saved template, or the default seed when none is saved yet
func (c *TemplateController) GetTemplate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	ctx := context.Background()
	tpl, err := c.templates.Get(ctx)
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to load template: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(tpl); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

// SaveTemplate handles PUT /admin/template
// Persists the full template blob after validating the page budget
func (c *TemplateController) SaveTemplate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var tpl models.ContractTemplate
	if err := json.NewDecoder(r.Body).Decode(&tpl); err != nil {
		http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}
	if len(tpl.Pages) == 0 {
		http.Error(w, "template must have at least one page", http.StatusBadRequest)
		return
	}
	if len(tpl.Pages) > models.MaxPages {
		http.Error(w, fmt.Sprintf("template cannot have more than %d pages", models.MaxPages), http.StatusBadRequest)
		return
	}

	ctx := context.Background()
	if err := c.templates.Save(ctx, &tpl); err != nil {
		http.Error(w, fmt.Sprintf("Failed to save template: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"saved"}`))
}
