// AngelaMos | 2026
// repository.go

package admin

import (
	"context"
	"fmt"

	"github.com/carterperez-dev/templates/roster-api/internal/core"
)

type Repository interface {
	Inventory(ctx context.Context) (*Inventory, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) Inventory(ctx context.Context) (*Inventory, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM users)                                   AS users,
			(SELECT COUNT(*) FROM users WHERE email_confirmed)             AS confirmed_users,
			(SELECT COUNT(*) FROM characters)                              AS characters,
			(SELECT COUNT(*) FROM characters WHERE is_available)           AS available_characters,
			(SELECT COUNT(*) FROM access_keys)                             AS access_keys,
			(SELECT COUNT(*) FROM access_keys WHERE NOT is_active)         AS revoked_keys,
			(SELECT COUNT(*) FROM refresh_tokens WHERE revoked_at IS NULL
			    AND is_used = false AND expires_at > NOW())                AS active_sessions`

	var inv Inventory
	if err := r.db.GetContext(ctx, &inv, query); err != nil {
		return nil, fmt.Errorf("inventory: %w", err)
	}

	return &inv, nil
}
