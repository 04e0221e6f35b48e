package models

// User represents a staff account. Credentials live in the hosted users
// table and are checked as-is; identity is trusted external glue, not a
// security boundary of this service.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role,omitempty"`
}

// LoginRequest represents the request body for the credential check
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}
