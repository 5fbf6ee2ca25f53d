// AngelaMos | 2026
// service.go

package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/carterperez-dev/templates/roster-api/internal/access"
	"github.com/carterperez-dev/templates/roster-api/internal/core"
	"github.com/carterperez-dev/templates/roster-api/internal/storage"
)

// LevelResolver is the slice of the access service the entitlement gate
// needs.
type LevelResolver interface {
	ResolveLevel(ctx context.Context, apiKey string) (access.Level, error)
	DeactivatedLevels(ctx context.Context) ([]access.Level, error)
}

type ObjectStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Remove(ctx context.Context, key string) error
}

type Service struct {
	repo     Repository
	resolver LevelResolver
	objects  ObjectStore
	metrics  *core.Metrics
	logger   *slog.Logger
}

func NewService(
	repo Repository,
	resolver LevelResolver,
	objects ObjectStore,
	metrics *core.Metrics,
	logger *slog.Logger,
) *Service {
	return &Service{
		repo:     repo,
		resolver: resolver,
		objects:  objects,
		metrics:  metrics,
		logger:   logger,
	}
}

// ListByLevel returns every available character visible to apiKey.
func (s *Service) ListByLevel(ctx context.Context, apiKey string) ([]Character, error) {
	return s.gate(ctx, "catalog.ListByLevel", apiKey, nil)
}

// ListByIDs is ListByLevel intersected with ids. An empty id list matches
// nothing.
func (s *Service) ListByIDs(
	ctx context.Context,
	apiKey string,
	ids []int64,
) ([]Character, error) {
	if len(ids) == 0 {
		return []Character{}, nil
	}
	return s.gate(ctx, "catalog.ListByIDs", apiKey, ids)
}

func (s *Service) gate(
	ctx context.Context,
	spanName string,
	apiKey string,
	ids []int64,
) (_ []Character, err error) {
	ctx, span := core.StartSpan(ctx, spanName,
		attribute.Bool("catalog.anonymous", apiKey == ""),
		attribute.Int("catalog.requested_ids", len(ids)),
	)
	defer func() { core.EndSpan(span, err) }()

	level, err := s.resolver.ResolveLevel(ctx, apiKey)
	if err != nil {
		s.observe("unresolved", err)
		return nil, err
	}
	span.SetAttributes(attribute.Int("catalog.level", int(level)))

	deactivated, err := s.resolver.DeactivatedLevels(ctx)
	if err != nil {
		s.observe(level.Label(), err)
		return nil, err
	}

	chars, err := s.repo.List(ctx, Filter{
		MaxLevel:      &level,
		ExcludeLevels: deactivated,
		IDs:           ids,
		OnlyAvailable: true,
	})
	if err != nil {
		s.observe(level.Label(), err)
		return nil, err
	}

	s.observe(level.Label(), nil)
	if s.metrics != nil {
		s.metrics.CatalogResults.Observe(float64(len(chars)))
	}
	span.SetAttributes(attribute.Int("catalog.results", len(chars)))

	return chars, nil
}

func (s *Service) observe(level string, err error) {
	if s.metrics == nil {
		return
	}

	outcome := "ok"
	switch {
	case err == nil:
	case errors.Is(err, core.ErrNotFound):
		outcome = "unknown_key"
	default:
		outcome = "error"
	}

	s.metrics.CatalogRequests.WithLabelValues(level, outcome).Inc()
}

// ListAll is the operator view: every character, optionally at one level,
// regardless of availability or revocation.
func (s *Service) ListAll(ctx context.Context, level *access.Level) ([]Character, error) {
	return s.repo.List(ctx, Filter{Level: level})
}

func (s *Service) Get(ctx context.Context, id int64) (*Character, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Create(ctx context.Context, req CreateCharacterRequest) (*Character, error) {
	c := &Character{
		Name:        req.Name,
		HP:          req.HP,
		Attack:      req.Attack,
		Speed:       req.Speed,
		Level:       access.Level(req.Level),
		IsAvailable: true,
	}
	if req.IsAvailable != nil {
		c.IsAvailable = *req.IsAvailable
	}

	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}

	s.logger.Info("character created",
		"character_id", c.ID,
		"name", c.Name,
		"level", c.Level.Label(),
	)

	return c, nil
}

func (s *Service) Update(
	ctx context.Context,
	id int64,
	req UpdateCharacterRequest,
) (*Character, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		c.Name = *req.Name
	}
	if req.HP != nil {
		c.HP = *req.HP
	}
	if req.Attack != nil {
		c.Attack = *req.Attack
	}
	if req.Speed != nil {
		c.Speed = *req.Speed
	}
	if req.Level != nil {
		c.Level = access.Level(*req.Level)
	}
	if req.IsAvailable != nil {
		c.IsAvailable = *req.IsAvailable
	}

	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}

	return c, nil
}

func (s *Service) SetAvailability(
	ctx context.Context,
	ids []int64,
	available bool,
) (int64, error) {
	n, err := s.repo.SetAvailability(ctx, ids, available)
	if err != nil {
		return 0, err
	}

	s.logger.Info("character availability changed",
		"requested", len(ids),
		"updated", n,
		"is_available", available,
	)

	return n, nil
}

// UploadImage re-encodes the upload as JPEG and points the character at
// the stored object. The replaced object is removed afterwards.
func (s *Service) UploadImage(ctx context.Context, id int64, r io.Reader) (*Character, error) {
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	img, err := storage.DecodeImage(r)
	if err != nil {
		return nil, fmt.Errorf("upload character image: %w", core.ErrInvalidInput)
	}

	data, err := storage.EncodeJPEG(img)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("characters/%d/%s.jpeg", id, uuid.NewString())
	if err := s.objects.Put(ctx, key, data, "image/jpeg"); err != nil {
		return nil, err
	}

	if err := s.repo.SetImage(ctx, id, key); err != nil {
		s.removeImage(context.WithoutCancel(ctx), id, key)
		return nil, err
	}

	if current.Image != nil && *current.Image != "" {
		s.removeImage(ctx, id, *current.Image)
	}

	return s.repo.GetByID(ctx, id)
}

func (s *Service) removeImage(ctx context.Context, id int64, key string) {
	if err := s.objects.Remove(ctx, key); err != nil {
		s.logger.Warn("failed to remove character image",
			"character_id", id,
			"key", key,
			"error", err,
		)
	}
}
