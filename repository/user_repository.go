package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"github.com/wali1264/mihangps/db"
	"github.com/wali1264/mihangps/models"
)

// UserRepository handles staff account lookups.
// Implements UserRepositoryInterface.
type UserRepository struct{}

// NewUserRepository creates a new UserRepository
func NewUserRepository() *UserRepository {
	return &UserRepository{}
}

// Ensure UserRepository implements UserRepositoryInterface
var _ UserRepositoryInterface = (*UserRepository)(nil)

// CheckCredentials validates a username/password pair and returns the matching
// account. Returns nil (no error) when the credentials do not match.
func (r *UserRepository) CheckCredentials(ctx context.Context, username, password string) (*models.User, error) {
	query := `SELECT id, username, role FROM users WHERE username = $1 AND password = $2`

	var u models.User
	err := db.DB.QueryRowContext(ctx, query, username, password).
		Scan(&u.ID, &u.Username, &u.Role)
	if err == sql.ErrNoRows {
		log.Printf("⚠️  Failed login attempt for %q", username)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to check credentials: %w", err)
	}
	return &u, nil
}

// ListEmployees retrieves all non-admin accounts for the report filter dropdown
func (r *UserRepository) ListEmployees(ctx context.Context) ([]models.User, error) {
	query := `SELECT id, username, role FROM users WHERE username != 'admin' ORDER BY username`

	rows, err := db.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Username, &u.Role); err != nil {
			log.Printf("❌ Error scanning user row: %v", err)
			continue
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate users: %w", err)
	}
	return users, nil
}
