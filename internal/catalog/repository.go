// AngelaMos | 2026
// repository.go

package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/carterperez-dev/templates/roster-api/internal/core"
)

type Repository interface {
	List(ctx context.Context, f Filter) ([]Character, error)
	GetByID(ctx context.Context, id int64) (*Character, error)
	Create(ctx context.Context, c *Character) error
	Update(ctx context.Context, c *Character) error
	SetImage(ctx context.Context, id int64, image string) error
	SetAvailability(ctx context.Context, ids []int64, available bool) (int64, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

const characterColumns = `id, name, hp, attack, speed, image, level, is_available, created_at`

func (r *repository) List(ctx context.Context, f Filter) ([]Character, error) {
	var conditions []string
	var args []any
	argIdx := 1

	if f.MaxLevel != nil {
		conditions = append(conditions, fmt.Sprintf("level <= $%d", argIdx))
		args = append(args, *f.MaxLevel)
		argIdx++
	}

	if f.Level != nil {
		conditions = append(conditions, fmt.Sprintf("level = $%d", argIdx))
		args = append(args, *f.Level)
		argIdx++
	}

	if f.OnlyAvailable {
		conditions = append(conditions, "is_available = TRUE")
	}

	if len(f.ExcludeLevels) > 0 {
		conditions = append(conditions, fmt.Sprintf(
			"level NOT IN (%s)",
			core.Placeholders(argIdx, len(f.ExcludeLevels)),
		))
		for _, lvl := range f.ExcludeLevels {
			args = append(args, lvl)
		}
		argIdx += len(f.ExcludeLevels)
	}

	if len(f.IDs) > 0 {
		conditions = append(conditions, fmt.Sprintf(
			"id IN (%s)",
			core.Placeholders(argIdx, len(f.IDs)),
		))
		for _, id := range f.IDs {
			args = append(args, id)
		}
	}

	query := `SELECT ` + characterColumns + ` FROM characters`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY id"

	characters := []Character{}
	if err := r.db.SelectContext(ctx, &characters, query, args...); err != nil {
		return nil, fmt.Errorf("list characters: %w", err)
	}

	return characters, nil
}

func (r *repository) GetByID(ctx context.Context, id int64) (*Character, error) {
	query := `SELECT ` + characterColumns + ` FROM characters WHERE id = $1`

	var c Character
	err := r.db.GetContext(ctx, &c, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get character: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get character: %w", err)
	}

	return &c, nil
}

func (r *repository) Create(ctx context.Context, c *Character) error {
	query := `
		INSERT INTO characters (name, hp, attack, speed, level, is_available)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`

	err := r.db.GetContext(ctx, c, query,
		c.Name,
		c.HP,
		c.Attack,
		c.Speed,
		c.Level,
		c.IsAvailable,
	)
	if err != nil {
		if core.IsUniqueViolation(err) {
			return fmt.Errorf("create character: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("create character: %w", err)
	}

	return nil
}

func (r *repository) Update(ctx context.Context, c *Character) error {
	query := `
		UPDATE characters
		SET name = $2, hp = $3, attack = $4, speed = $5, level = $6,
		    is_available = $7
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query,
		c.ID,
		c.Name,
		c.HP,
		c.Attack,
		c.Speed,
		c.Level,
		c.IsAvailable,
	)
	if err != nil {
		if core.IsUniqueViolation(err) {
			return fmt.Errorf("update character: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("update character: %w", err)
	}

	return expectOneRow(result, "update character")
}

func (r *repository) SetImage(ctx context.Context, id int64, image string) error {
	query := `UPDATE characters SET image = $2 WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, image)
	if err != nil {
		return fmt.Errorf("set character image: %w", err)
	}

	return expectOneRow(result, "set character image")
}

// SetAvailability flips is_available for every listed id and reports how
// many rows changed.
func (r *repository) SetAvailability(
	ctx context.Context,
	ids []int64,
	available bool,
) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	args := make([]any, 0, len(ids)+1)
	args = append(args, available)
	for _, id := range ids {
		args = append(args, id)
	}

	query := fmt.Sprintf(
		`UPDATE characters SET is_available = $1 WHERE id IN (%s)`,
		core.Placeholders(2, len(ids)),
	)

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("set availability: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("set availability: %w", err)
	}

	return rows, nil
}

func expectOneRow(result sql.Result, op string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if rows == 0 {
		return fmt.Errorf("%s: %w", op, core.ErrNotFound)
	}
	return nil
}
