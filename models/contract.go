package models

import "time"

// Contract represents a saved contract record in the database.
// FormData is stored as an opaque jsonb blob; the rendering core reads
// form_data, client_name and the template reference, and writes back only
// last_printed_at as a side effect of printing.
type Contract struct {
	ID            string     `json:"id"`
	ClientID      string     `json:"clientId"`
	ClientName    string     `json:"clientName"`
	FormData      FormData   `json:"formData"`
	Timestamp     time.Time  `json:"timestamp"`
	ExpiryDate    *time.Time `json:"expiryDate,omitempty"`
	TemplateID    string     `json:"templateId"`
	IsExtended    bool       `json:"isExtended"`
	AssignedTo    string     `json:"assignedTo,omitempty"`
	LastPrintedAt *time.Time `json:"lastPrintedAt,omitempty"`
}

// CreateContractRequest represents the request body for saving a contract
// Example: {"clientId": "c1", "clientName": "Ahmad", "formData": {"plateNumber": "KBL-1234"}, "isExtended": false}
type CreateContractRequest struct {
	ClientID   string   `json:"clientId"`
	ClientName string   `json:"clientName"`
	FormData   FormData `json:"formData"`
	ExpiryDate string   `json:"expiryDate,omitempty"`
	TemplateID string   `json:"templateId"`
	IsExtended bool     `json:"isExtended"`
	AssignedTo string   `json:"assignedTo,omitempty"`
}

// ContractListResponse represents the response for listing contracts
type ContractListResponse struct {
	Contracts []Contract  `json:"contracts"`
	Stats     ReportStats `json:"stats"`
}

// ReportStats summarizes a filtered set of contracts for the reports screen
type ReportStats struct {
	Total         int `json:"total"`
	MainCount     int `json:"mainCount"`
	ExtendedCount int `json:"extendedCount"`
}
