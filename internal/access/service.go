// AngelaMos | 2026
// service.go

package access

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/carterperez-dev/templates/roster-api/internal/core"
)

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// ResolveLevel maps an API key to its tier. An empty key is anonymous
// access and resolves to DefaultLevel. The key's activation flag is not
// consulted.
func (s *Service) ResolveLevel(ctx context.Context, apiKey string) (Level, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return DefaultLevel, nil
	}

	key, err := s.repo.GetByKey(ctx, apiKey)
	if err != nil {
		return DefaultLevel, fmt.Errorf("resolve level: %w", err)
	}

	return key.AccessLevel, nil
}

// GetOrCreateKey returns the key bound to level, minting it on first use.
func (s *Service) GetOrCreateKey(ctx context.Context, level Level) (*Key, error) {
	if !level.Valid() {
		return nil, fmt.Errorf("get or create key for level %d: %w", level, core.ErrInvalidInput)
	}

	key, err := s.repo.GetOrCreate(ctx, level, uuid.New().String())
	if err != nil {
		return nil, err
	}

	s.logger.Info("access key issued",
		"level", level.Label(),
		"key_id", key.ID,
	)

	return key, nil
}

// DeactivatedLevels lists tiers that have an inactive key. Entries at
// these exact tiers are hidden from every caller.
func (s *Service) DeactivatedLevels(ctx context.Context) ([]Level, error) {
	return s.repo.DeactivatedLevels(ctx)
}

func (s *Service) SetKeyActive(
	ctx context.Context,
	apiKey string,
	active bool,
) (*Key, error) {
	key, err := s.repo.SetActive(ctx, apiKey, active)
	if err != nil {
		return nil, err
	}

	s.logger.Info("access key activation changed",
		"key_id", key.ID,
		"level", key.AccessLevel.Label(),
		"is_active", active,
	)

	return key, nil
}

func (s *Service) ListKeys(ctx context.Context) ([]Key, error) {
	return s.repo.List(ctx)
}
