// AngelaMos | 2026
// repository.go

package mail

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/carterperez-dev/templates/roster-api/internal/core"
)

type Repository interface {
	GetTemplate(ctx context.Context, t EmailType) (*Template, error)
	GetSettings(ctx context.Context) (*Settings, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) GetTemplate(ctx context.Context, t EmailType) (*Template, error) {
	query := `
		SELECT id, email_type, subject, message, updated_at
		FROM email_templates
		WHERE email_type = $1`

	var tpl Template
	err := r.db.GetContext(ctx, &tpl, query, t)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get email template %s: %w", t, core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get email template %s: %w", t, err)
	}

	return &tpl, nil
}

// GetSettings falls back to sending enabled when the row is missing.
func (r *repository) GetSettings(ctx context.Context) (*Settings, error) {
	query := `SELECT send_emails FROM email_settings WHERE id = 1`

	var s Settings
	err := r.db.GetContext(ctx, &s, query)
	if errors.Is(err, sql.ErrNoRows) {
		return &Settings{SendEmails: true}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get email settings: %w", err)
	}

	return &s, nil
}
