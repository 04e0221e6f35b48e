package repository

import (
	"context"
	"time"

	"github.com/wali1264/mihangps/models"
)

// ReportFilter represents optional filter parameters for the reports screen
type ReportFilter struct {
	Start      *time.Time
	End        *time.Time
	EmployeeID string
	// Type is "all", "main" or "extended"
	Type string
}

// TemplateRepositoryInterface defines the contract for template blob persistence
type TemplateRepositoryInterface interface {
	Get(ctx context.Context) (*models.ContractTemplate, error)
	Save(ctx context.Context, tpl *models.ContractTemplate) error
}

// ContractRepositoryInterface defines the contract for contract record operations
type ContractRepositoryInterface interface {
	Insert(ctx context.Context, req *models.CreateContractRequest) (*models.Contract, error)
	GetByID(ctx context.Context, id string) (*models.Contract, error)
	ListForReport(ctx context.Context, filter ReportFilter) ([]models.Contract, error)
	UpdateLastPrintedAt(ctx context.Context, id string) error
}

// ClientRepositoryInterface defines the contract for client profile operations
type ClientRepositoryInterface interface {
	Insert(ctx context.Context, req *models.CreateClientRequest) (*models.ClientProfile, error)
	GetByID(ctx context.Context, id string) (*models.ClientProfile, error)
	List(ctx context.Context, search string) ([]models.ClientProfile, error)
}

// UserRepositoryInterface defines the contract for staff account lookups
type UserRepositoryInterface interface {
	CheckCredentials(ctx context.Context, username, password string) (*models.User, error)
	ListEmployees(ctx context.Context) ([]models.User, error)
}
