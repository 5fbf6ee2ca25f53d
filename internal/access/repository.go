// AngelaMos | 2026
// repository.go

package access

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/carterperez-dev/templates/roster-api/internal/core"
)

type Repository interface {
	GetByKey(ctx context.Context, key string) (*Key, error)
	GetOrCreate(ctx context.Context, level Level, key string) (*Key, error)
	DeactivatedLevels(ctx context.Context) ([]Level, error)
	SetActive(ctx context.Context, key string, active bool) (*Key, error)
	List(ctx context.Context) ([]Key, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

const keyColumns = `id, key, access_level, is_active, created_at`

func (r *repository) GetByKey(ctx context.Context, key string) (*Key, error) {
	query := `SELECT ` + keyColumns + ` FROM access_keys WHERE key = $1`

	var k Key
	err := r.db.GetContext(ctx, &k, query, key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get access key: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get access key: %w", err)
	}

	return &k, nil
}

// GetOrCreate inserts a key for level unless one exists. The unique index
// on access_level makes concurrent first calls converge on a single row.
func (r *repository) GetOrCreate(
	ctx context.Context,
	level Level,
	key string,
) (*Key, error) {
	insert := `
		INSERT INTO access_keys (key, access_level)
		VALUES ($1, $2)
		ON CONFLICT (access_level) DO NOTHING
		RETURNING ` + keyColumns

	var k Key
	err := r.db.GetContext(ctx, &k, insert, key, level)
	if err == nil {
		return &k, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("insert access key: %w", err)
	}

	query := `SELECT ` + keyColumns + ` FROM access_keys WHERE access_level = $1`

	err = r.db.GetContext(ctx, &k, query, level)
	if err != nil {
		return nil, fmt.Errorf("fetch access key for level %d: %w", level, err)
	}

	return &k, nil
}

func (r *repository) DeactivatedLevels(ctx context.Context) ([]Level, error) {
	query := `
		SELECT DISTINCT access_level
		FROM access_keys
		WHERE is_active = FALSE
		ORDER BY access_level`

	var levels []Level
	if err := r.db.SelectContext(ctx, &levels, query); err != nil {
		return nil, fmt.Errorf("list deactivated levels: %w", err)
	}

	return levels, nil
}

func (r *repository) SetActive(
	ctx context.Context,
	key string,
	active bool,
) (*Key, error) {
	query := `
		UPDATE access_keys
		SET is_active = $2
		WHERE key = $1
		RETURNING ` + keyColumns

	var k Key
	err := r.db.GetContext(ctx, &k, query, key, active)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("set key active: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("set key active: %w", err)
	}

	return &k, nil
}

func (r *repository) List(ctx context.Context) ([]Key, error) {
	query := `SELECT ` + keyColumns + ` FROM access_keys ORDER BY access_level`

	var keys []Key
	if err := r.db.SelectContext(ctx, &keys, query); err != nil {
		return nil, fmt.Errorf("list access keys: %w", err)
	}

	return keys, nil
}
