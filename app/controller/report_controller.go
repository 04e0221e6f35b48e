package controller

import (
	"context"
	"encoding/json"
	"fmt"
	"mime"
	"net/http"
	"time"

	"github.com/wali1264/mihangps/models"
	"github.com/wali1264/mihangps/repository"
	"github.com/wali1264/mihangps/service"
)

// ReportController handles HTTP requests for the reports screen
type ReportController struct {
	reportService *service.ReportService
	templates     repository.TemplateRepositoryInterface
}

// NewReportController creates a new ReportController
func NewReportController(reportService *service.ReportService, templates repository.TemplateRepositoryInterface) *ReportController {
	return &ReportController{
		reportService: reportService,
		templates:     templates,
	}
}

// filterFromQuery reads start/end (RFC 3339 or YYYY-MM-DD), employee and type
func filterFromQuery(r *http.Request) (repository.ReportFilter, error) {
	filter := repository.ReportFilter{
		EmployeeID: r.URL.Query().Get("employee"),
		Type:       r.URL.Query().Get("type"),
	}
	if filter.Type == "" {
		filter.Type = "all"
	}

	parse := func(raw string) (*time.Time, error) {
		if raw == "" {
			return nil, nil
		}
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			return &t, nil
		}
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return nil, fmt.Errorf("invalid date %q", raw)
		}
		return &t, nil
	}

	var err error
	if filter.Start, err = parse(r.URL.Query().Get("start")); err != nil {
		return filter, err
	}
	if filter.End, err = parse(r.URL.Query().Get("end")); err != nil {
		return filter, err
	}
	// End date from a date picker means "through that day"
	if filter.End != nil && filter.End.Hour() == 0 && filter.End.Minute() == 0 {
		end := filter.End.Add(24*time.Hour - time.Nanosecond)
		filter.End = &end
	}
	return filter, nil
}

// ListContracts handles GET /admin/reports/contracts
// Returns the filtered contract list with summary stats
func (c *ReportController) ListContracts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	filter, err := filterFromQuery(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx := context.Background()
	contracts, err := c.reportService.ListContracts(ctx, filter)
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to list contracts: %v", err), http.StatusInternalServerError)
		return
	}

	response := models.ContractListResponse{
		Contracts: contracts,
		Stats:     c.reportService.Stats(contracts),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

// ExportCSV handles GET /admin/reports/csv
// Streams the filtered contracts as a UTF-8-BOM CSV attachment
func (c *ReportController) ExportCSV(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	filter, err := filterFromQuery(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx := context.Background()
	tpl, err := c.templates.Get(ctx)
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to load template: %v", err), http.StatusInternalServerError)
		return
	}

	data, filename, err := c.reportService.BuildCSV(ctx, tpl, filter)
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to build report: %v", err), http.StatusInternalServerError)
		return
	}

	// Persian filenames need the RFC 5987 encoded form
	disposition := mime.FormatMediaType("attachment", map[string]string{"filename": filename})
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", disposition)
	w.Write(data)
}
