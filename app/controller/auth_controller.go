package controller

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/wali1264/mihangps/models"
	"github.com/wali1264/mihangps/repository"
)

// AuthController handles HTTP requests for staff authentication
type AuthController struct {
	users repository.UserRepositoryInterface
}

// NewAuthController creates a new AuthController
func NewAuthController(users repository.UserRepositoryInterface) *AuthController {
	return &AuthController{users: users}
}

// Login handles POST /auth/login
func (c *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}
	if req.Username == "" || req.Password == "" {
		http.Error(w, "username and password are required", http.StatusBadRequest)
		return
	}

	ctx := context.Background()
	user, err := c.users.CheckCredentials(ctx, req.Username, req.Password)
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to check credentials: %v", err), http.StatusInternalServerError)
		return
	}
	if user == nil {
		http.Error(w, "invalid username or password", http.StatusUnauthorized)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(user); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

// ListEmployees handles GET /admin/employees
// Returns non-admin accounts for the report filter dropdown
func (c *AuthController) ListEmployees(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	ctx := context.Background()
	employees, err := c.users.ListEmployees(ctx)
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to list employees: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(employees); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}
