// AngelaMos | 2026
// entity.go

package access

import (
	"time"
)

type Key struct {
	ID          int64     `db:"id"`
	Key         string    `db:"key"`
	AccessLevel Level     `db:"access_level"`
	IsActive    bool      `db:"is_active"`
	CreatedAt   time.Time `db:"created_at"`
}
