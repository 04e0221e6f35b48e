package repository

import (
	"context"
	"fmt"
	"log"

	"github.com/wali1264/mihangps/db"
	"github.com/wali1264/mihangps/models"
)

// ClientRepository handles database operations for client profiles.
// Implements ClientRepositoryInterface.
type ClientRepository struct{}

// NewClientRepository creates a new ClientRepository
func NewClientRepository() *ClientRepository {
	return &ClientRepository{}
}

// Ensure ClientRepository implements ClientRepositoryInterface
var _ ClientRepositoryInterface = (*ClientRepository)(nil)

// Insert saves a new client profile
func (r *ClientRepository) Insert(ctx context.Context, req *models.CreateClientRequest) (*models.ClientProfile, error) {
	query := `
		INSERT INTO clients (name, father_name, tazkira, phone)
		VALUES ($1, $2, $3, $4)
		RETURNING id, name, COALESCE(father_name, '') as father_name,
			COALESCE(tazkira, '') as tazkira, COALESCE(phone, '') as phone, created_at
	`

	var c models.ClientProfile
	err := db.DB.QueryRowContext(ctx, query,
		req.Name,
		req.FatherName,
		req.Tazkira,
		req.Phone,
	).Scan(&c.ID, &c.Name, &c.FatherName, &c.Tazkira, &c.Phone, &c.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert client: %w", err)
	}

	log.Printf("💾 Client saved: id=%s name=%s", c.ID, c.Name)
	return &c, nil
}

// GetByID retrieves a client profile by ID
func (r *ClientRepository) GetByID(ctx context.Context, id string) (*models.ClientProfile, error) {
	query := `
		SELECT id, name, COALESCE(father_name, '') as father_name,
			COALESCE(tazkira, '') as tazkira, COALESCE(phone, '') as phone, created_at
		FROM clients WHERE id = $1
	`

	var c models.ClientProfile
	err := db.DB.QueryRowContext(ctx, query, id).
		Scan(&c.ID, &c.Name, &c.FatherName, &c.Tazkira, &c.Phone, &c.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to get client %s: %w", id, err)
	}
	return &c, nil
}

// List retrieves client profiles, optionally filtered by a case-insensitive
// search over name, tazkira and phone
func (r *ClientRepository) List(ctx context.Context, search string) ([]models.ClientProfile, error) {
	query := `
		SELECT id, name, COALESCE(father_name, '') as father_name,
			COALESCE(tazkira, '') as tazkira, COALESCE(phone, '') as phone, created_at
		FROM clients
	`
	var args []interface{}
	if search != "" {
		query += ` WHERE name ILIKE $1 OR tazkira ILIKE $1 OR phone ILIKE $1`
		args = append(args, "%"+search+"%")
	}
	query += ` ORDER BY created_at DESC`

	rows, err := db.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	defer rows.Close()

	var clients []models.ClientProfile
	for rows.Next() {
		var c models.ClientProfile
		if err := rows.Scan(&c.ID, &c.Name, &c.FatherName, &c.Tazkira, &c.Phone, &c.CreatedAt); err != nil {
			log.Printf("❌ Error scanning client row: %v", err)
			continue
		}
		clients = append(clients, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate clients: %w", err)
	}
	return clients, nil
}
