package controller

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/wali1264/mihangps/models"
	"github.com/wali1264/mihangps/repository"
)

// ContractController handles HTTP requests for contract records
type ContractController struct {
	contracts repository.ContractRepositoryInterface
}

// NewContractController creates a new ContractController
func NewContractController(contracts repository.ContractRepositoryInterface) *ContractController {
	return &ContractController{contracts: contracts}
}

// CreateContract handles POST /admin/contracts
// Saves the contract record with its opaque form data blob
func (c *ContractController) CreateContract(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req models.CreateContractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}
	if req.ClientID == "" || req.ClientName == "" {
		http.Error(w, "clientId and clientName are required", http.StatusBadRequest)
		return
	}

	ctx := context.Background()
	contract, err := c.contracts.Insert(ctx, &req)
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to create contract: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(contract); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

// GetContract handles GET /admin/contracts/:id
func (c *ContractController) GetContract(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// Path format: /admin/contracts/{id}
	id := strings.TrimPrefix(r.URL.Path, "/admin/contracts/")
	if id == "" || strings.Contains(id, "/") {
		http.Error(w, "id parameter is required", http.StatusBadRequest)
		return
	}

	ctx := context.Background()
	contract, err := c.contracts.GetByID(ctx, id)
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to get contract: %v", err), http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(contract); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}
