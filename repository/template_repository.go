package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"

	"github.com/wali1264/mihangps/db"
	"github.com/wali1264/mihangps/models"
)

// TemplateRepository persists the contract template as a single serialized
// blob under the well-known settings key. Round-trip fidelity is required:
// re-loading a saved template must reproduce identical page count, field
// positions and flags.
// Implements TemplateRepositoryInterface.
type TemplateRepository struct{}

// NewTemplateRepository creates a new TemplateRepository
func NewTemplateRepository() *TemplateRepository {
	return &TemplateRepository{}
}

// Ensure TemplateRepository implements TemplateRepositoryInterface
var _ TemplateRepositoryInterface = (*TemplateRepository)(nil)

// Get loads the template blob; when no blob has been saved yet the seed
// template is returned.
func (r *TemplateRepository) Get(ctx context.Context) (*models.ContractTemplate, error) {
	query := `SELECT value FROM app_settings WHERE key = $1`

	var raw []byte
	err := db.DB.QueryRowContext(ctx, query, models.TemplateSettingsKey).Scan(&raw)
	if err == sql.ErrNoRows {
		log.Printf("ℹ️  No saved template, using the default seed")
		return models.DefaultTemplate(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load template: %w", err)
	}

	var tpl models.ContractTemplate
	if err := json.Unmarshal(raw, &tpl); err != nil {
		return nil, fmt.Errorf("failed to decode template blob: %w", err)
	}
	return &tpl, nil
}

// Save upserts the serialized template under the settings key
func (r *TemplateRepository) Save(ctx context.Context, tpl *models.ContractTemplate) error {
	raw, err := json.Marshal(tpl)
	if err != nil {
		return fmt.Errorf("failed to encode template: %w", err)
	}

	query := `
		INSERT INTO app_settings (key, value)
		VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value
	`
	if _, err := db.DB.ExecContext(ctx, query, models.TemplateSettingsKey, raw); err != nil {
		return fmt.Errorf("failed to save template: %w", err)
	}

	log.Printf("💾 Template saved (%d pages)", len(tpl.Pages))
	return nil
}
