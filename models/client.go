package models

import "time"

// ClientProfile represents a registered client.
// Tazkira doubles as the vehicle plate identifier on reports.
type ClientProfile struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	FatherName string    `json:"fatherName"`
	Tazkira    string    `json:"tazkira"`
	Phone      string    `json:"phone"`
	CreatedAt  time.Time `json:"createdAt"`
}

// CreateClientRequest represents the request body for registering a client
type CreateClientRequest struct {
	Name       string `json:"name"`
	FatherName string `json:"fatherName"`
	Tazkira    string `json:"tazkira"`
	Phone      string `json:"phone"`
}

// ClientListResponse represents the response for listing clients
type ClientListResponse struct {
	Clients []ClientProfile `json:"clients"`
	Total   int             `json:"total"`
}
