// AngelaMos | 2026
// entity.go

package catalog

import (
	"time"

	"github.com/carterperez-dev/templates/roster-api/internal/access"
)

type Character struct {
	ID          int64        `db:"id"`
	Name        string       `db:"name"`
	HP          int          `db:"hp"`
	Attack      int          `db:"attack"`
	Speed       int          `db:"speed"`
	Image       *string      `db:"image"`
	Level       access.Level `db:"level"`
	IsAvailable bool         `db:"is_available"`
	CreatedAt   time.Time    `db:"created_at"`
}

// Filter narrows a catalog query. Nil or empty fields disable their
// clause.
type Filter struct {
	MaxLevel      *access.Level
	ExcludeLevels []access.Level
	IDs           []int64
	OnlyAvailable bool
	Level         *access.Level
}
