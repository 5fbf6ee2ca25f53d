// AngelaMos | 2026
// dto.go

package access

import (
	"time"
)

type APIKeyResponse struct {
	APIKey string `json:"api_key"`
}

type KeyResponse struct {
	ID          int64     `json:"id"`
	Key         string    `json:"key"`
	AccessLevel Level     `json:"access_level"`
	LevelLabel  string    `json:"level_label"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

type ProvisionKeyRequest struct {
	Level *int16 `json:"level" validate:"required,min=0"`
}

type SetActiveRequest struct {
	IsActive *bool `json:"is_active" validate:"required"`
}

func ToKeyResponse(k *Key) KeyResponse {
	return KeyResponse{
		ID:          k.ID,
		Key:         k.Key,
		AccessLevel: k.AccessLevel,
		LevelLabel:  k.AccessLevel.Label(),
		IsActive:    k.IsActive,
		CreatedAt:   k.CreatedAt,
	}
}

func ToKeyResponses(keys []Key) []KeyResponse {
	out := make([]KeyResponse, len(keys))
	for i := range keys {
		out[i] = ToKeyResponse(&keys[i])
	}
	return out
}
