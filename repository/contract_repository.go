package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/wali1264/mihangps/db"
	"github.com/wali1264/mihangps/models"
)

// ContractRepository handles database operations for contract records.
// Implements ContractRepositoryInterface.
type ContractRepository struct{}

// NewContractRepository creates a new ContractRepository
func NewContractRepository() *ContractRepository {
	return &ContractRepository{}
}

// Ensure ContractRepository implements ContractRepositoryInterface
var _ ContractRepositoryInterface = (*ContractRepository)(nil)

const contractColumns = `
	id, client_id, client_name, form_data, timestamp, expiry_date,
	COALESCE(template_id, '') as template_id, is_extended,
	COALESCE(assigned_to, '') as assigned_to, last_printed_at
`

// Insert saves a new contract record with its opaque form_data blob
func (r *ContractRepository) Insert(ctx context.Context, req *models.CreateContractRequest) (*models.Contract, error) {
	formData := req.FormData
	if formData == nil {
		formData = make(models.FormData)
	}
	raw, err := json.Marshal(formData)
	if err != nil {
		return nil, fmt.Errorf("failed to encode form data: %w", err)
	}

	var expiry *time.Time
	if req.ExpiryDate != "" {
		t, err := time.Parse(time.RFC3339, req.ExpiryDate)
		if err != nil {
			return nil, fmt.Errorf("invalid expiry date %q: %w", req.ExpiryDate, err)
		}
		expiry = &t
	}

	query := `
		INSERT INTO contracts (
			client_id, client_name, form_data, timestamp, expiry_date,
			template_id, is_extended, assigned_to
		) VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''))
		RETURNING ` + contractColumns

	row := db.DB.QueryRowContext(ctx, query,
		req.ClientID,
		req.ClientName,
		raw,
		time.Now(),
		expiry,
		req.TemplateID,
		req.IsExtended,
		req.AssignedTo,
	)

	contract, err := scanContract(row)
	if err != nil {
		return nil, fmt.Errorf("failed to insert contract: %w", err)
	}

	log.Printf("💾 Contract saved: id=%s client=%s extended=%v", contract.ID, contract.ClientName, contract.IsExtended)
	return contract, nil
}

// GetByID retrieves a contract by its ID
func (r *ContractRepository) GetByID(ctx context.Context, id string) (*models.Contract, error) {
	query := `SELECT ` + contractColumns + ` FROM contracts WHERE id = $1`

	contract, err := scanContract(db.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get contract %s: %w", id, err)
	}
	return contract, nil
}

// ListForReport retrieves contracts matching the report filter, newest first
func (r *ContractRepository) ListForReport(ctx context.Context, filter ReportFilter) ([]models.Contract, error) {
	baseQuery := `SELECT ` + contractColumns + ` FROM contracts WHERE 1=1`

	var conditions []string
	var args []interface{}
	argIndex := 1

	if filter.Start != nil {
		conditions = append(conditions, fmt.Sprintf("timestamp >= $%d", argIndex))
		args = append(args, *filter.Start)
		argIndex++
	}
	if filter.End != nil {
		conditions = append(conditions, fmt.Sprintf("timestamp <= $%d", argIndex))
		args = append(args, *filter.End)
		argIndex++
	}
	if filter.EmployeeID != "" {
		conditions = append(conditions, fmt.Sprintf("assigned_to = $%d", argIndex))
		args = append(args, filter.EmployeeID)
		argIndex++
	}
	switch filter.Type {
	case "main":
		conditions = append(conditions, "is_extended = false")
	case "extended":
		conditions = append(conditions, "is_extended = true")
	}

	if len(conditions) > 0 {
		baseQuery += " AND " + strings.Join(conditions, " AND ")
	}
	baseQuery += " ORDER BY timestamp DESC"

	rows, err := db.DB.QueryContext(ctx, baseQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list contracts: %w", err)
	}
	defer rows.Close()

	var contracts []models.Contract
	for rows.Next() {
		contract, err := scanContract(rows)
		if err != nil {
			log.Printf("❌ Error scanning contract row: %v", err)
			continue
		}
		contracts = append(contracts, *contract)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate contracts: %w", err)
	}

	log.Printf("✓ Report query matched %d contracts", len(contracts))
	return contracts, nil
}

// UpdateLastPrintedAt marks the contract as printed now. Callers treat this
// as best-effort; printing never depends on it succeeding.
func (r *ContractRepository) UpdateLastPrintedAt(ctx context.Context, id string) error {
	query := `UPDATE contracts SET last_printed_at = $1 WHERE id = $2`

	result, err := db.DB.ExecContext(ctx, query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update last_printed_at: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("contract %s not found", id)
	}
	return nil
}

// scanner covers both *sql.Row and *sql.Rows
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanContract(row scanner) (*models.Contract, error) {
	var (
		c       models.Contract
		raw     []byte
		expiry  sql.NullTime
		printed sql.NullTime
	)
	err := row.Scan(
		&c.ID,
		&c.ClientID,
		&c.ClientName,
		&raw,
		&c.Timestamp,
		&expiry,
		&c.TemplateID,
		&c.IsExtended,
		&c.AssignedTo,
		&printed,
	)
	if err != nil {
		return nil, err
	}

	if expiry.Valid {
		c.ExpiryDate = &expiry.Time
	}
	if printed.Valid {
		c.LastPrintedAt = &printed.Time
	}

	c.FormData = make(models.FormData)
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &c.FormData); err != nil {
			// Stale or malformed blobs are tolerated, not surfaced
			log.Printf("⚠️  Contract %s has unreadable form_data, continuing empty: %v", c.ID, err)
		}
	}
	return &c, nil
}
