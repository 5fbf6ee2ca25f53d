// AngelaMos | 2026
// dto.go

package catalog

import (
	"time"

	"github.com/carterperez-dev/templates/roster-api/internal/access"
)

type ByIDsRequest struct {
	CharacterIDs []int64 `json:"characters_ids" validate:"required,max=1000,dive,min=1"`
}

type CreateCharacterRequest struct {
	Name        string `json:"name"         validate:"required,min=1,max=100"`
	HP          int    `json:"hp"           validate:"min=0"`
	Attack      int    `json:"attack"       validate:"min=0"`
	Speed       int    `json:"speed"        validate:"min=0"`
	Level       int16  `json:"level"        validate:"min=0,max=3"`
	IsAvailable *bool  `json:"is_available"`
}

type UpdateCharacterRequest struct {
	Name        *string `json:"name"         validate:"omitempty,min=1,max=100"`
	HP          *int    `json:"hp"           validate:"omitempty,min=0"`
	Attack      *int    `json:"attack"       validate:"omitempty,min=0"`
	Speed       *int    `json:"speed"        validate:"omitempty,min=0"`
	Level       *int16  `json:"level"        validate:"omitempty,min=0,max=3"`
	IsAvailable *bool   `json:"is_available"`
}

type SetAvailabilityRequest struct {
	IDs         []int64 `json:"ids"          validate:"required,min=1,max=1000,dive,min=1"`
	IsAvailable *bool   `json:"is_available" validate:"required"`
}

type SetAvailabilityResponse struct {
	Updated int64 `json:"updated"`
}

type CharacterResponse struct {
	ID          int64        `json:"id"`
	Name        string       `json:"name"`
	HP          int          `json:"hp"`
	Attack      int          `json:"attack"`
	Speed       int          `json:"speed"`
	Image       string       `json:"image"`
	Level       access.Level `json:"level"`
	LevelLabel  string       `json:"level_label"`
	IsAvailable bool         `json:"is_available"`
	CreatedAt   time.Time    `json:"created_at"`
}

// URLFunc turns a stored object key into a public URL.
type URLFunc func(key string) string

func ToCharacterResponse(c *Character, urlFor URLFunc) CharacterResponse {
	var image string
	if c.Image != nil && urlFor != nil {
		image = urlFor(*c.Image)
	}

	return CharacterResponse{
		ID:          c.ID,
		Name:        c.Name,
		HP:          c.HP,
		Attack:      c.Attack,
		Speed:       c.Speed,
		Image:       image,
		Level:       c.Level,
		LevelLabel:  c.Level.Label(),
		IsAvailable: c.IsAvailable,
		CreatedAt:   c.CreatedAt,
	}
}

func ToCharacterResponses(chars []Character, urlFor URLFunc) []CharacterResponse {
	out := make([]CharacterResponse, len(chars))
	for i := range chars {
		out[i] = ToCharacterResponse(&chars[i], urlFor)
	}
	return out
}
