// AngelaMos | 2026
// fakes_test.go

package catalog

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"github.com/carterperez-dev/templates/roster-api/internal/access"
	"github.com/carterperez-dev/templates/roster-api/internal/core"
)

type memRepo struct {
	mu          sync.Mutex
	chars       []Character
	calls       int
	setImageErr error
}

func (m *memRepo) List(_ context.Context, f Filter) ([]Character, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++

	out := []Character{}
	for _, c := range m.chars {
		if f.MaxLevel != nil && c.Level > *f.MaxLevel {
			continue
		}
		if f.Level != nil && c.Level != *f.Level {
			continue
		}
		if f.OnlyAvailable && !c.IsAvailable {
			continue
		}
		if slices.Contains(f.ExcludeLevels, c.Level) {
			continue
		}
		if len(f.IDs) > 0 && !slices.Contains(f.IDs, c.ID) {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func (m *memRepo) GetByID(_ context.Context, id int64) (*Character, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.chars {
		if m.chars[i].ID == id {
			c := m.chars[i]
			return &c, nil
		}
	}
	return nil, core.ErrNotFound
}

func (m *memRepo) Create(_ context.Context, c *Character) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.chars {
		if existing.Name == c.Name {
			return core.ErrDuplicateKey
		}
	}
	c.ID = int64(len(m.chars) + 1)
	m.chars = append(m.chars, *c)
	return nil
}

func (m *memRepo) Update(_ context.Context, c *Character) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.chars {
		if m.chars[i].ID == c.ID {
			m.chars[i] = *c
			return nil
		}
	}
	return core.ErrNotFound
}

func (m *memRepo) SetImage(_ context.Context, id int64, image string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setImageErr != nil {
		return m.setImageErr
	}
	for i := range m.chars {
		if m.chars[i].ID == id {
			m.chars[i].Image = &image
			return nil
		}
	}
	return core.ErrNotFound
}

func (m *memRepo) SetAvailability(_ context.Context, ids []int64, available bool) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for i := range m.chars {
		if slices.Contains(ids, m.chars[i].ID) {
			m.chars[i].IsAvailable = available
			n++
		}
	}
	return n, nil
}

type memKeys struct {
	keys []access.Key
}

func (m *memKeys) GetByKey(_ context.Context, key string) (*access.Key, error) {
	for i := range m.keys {
		if m.keys[i].Key == key {
			k := m.keys[i]
			return &k, nil
		}
	}
	return nil, core.ErrNotFound
}

func (m *memKeys) GetOrCreate(_ context.Context, level access.Level, key string) (*access.Key, error) {
	for i := range m.keys {
		if m.keys[i].AccessLevel == level {
			k := m.keys[i]
			return &k, nil
		}
	}
	k := access.Key{ID: int64(len(m.keys) + 1), Key: key, AccessLevel: level, IsActive: true}
	m.keys = append(m.keys, k)
	return &k, nil
}

func (m *memKeys) DeactivatedLevels(context.Context) ([]access.Level, error) {
	var out []access.Level
	for _, k := range m.keys {
		if !k.IsActive {
			out = append(out, k.AccessLevel)
		}
	}
	return out, nil
}

func (m *memKeys) SetActive(_ context.Context, key string, active bool) (*access.Key, error) {
	for i := range m.keys {
		if m.keys[i].Key == key {
			m.keys[i].IsActive = active
			k := m.keys[i]
			return &k, nil
		}
	}
	return nil, core.ErrNotFound
}

func (m *memKeys) List(context.Context) ([]access.Key, error) {
	return m.keys, nil
}

type memObjects struct {
	puts map[string][]byte
}

func (m *memObjects) Put(_ context.Context, key string, data []byte, _ string) error {
	if m.puts == nil {
		m.puts = map[string][]byte{}
	}
	m.puts[key] = data
	return nil
}

func (m *memObjects) Remove(_ context.Context, key string) error {
	delete(m.puts, key)
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// fixture builds a catalog with one available character per tier, one
// unavailable Premium character, and one key per tier.
func fixture() (*Service, *memRepo, *memKeys) {
	repo := &memRepo{chars: []Character{
		{ID: 1, Name: "Peasant", Level: access.LevelFree, IsAvailable: true},
		{ID: 2, Name: "Squire", Level: access.LevelBasic, IsAvailable: true},
		{ID: 3, Name: "Knight", Level: access.LevelAdvanced, IsAvailable: true},
		{ID: 4, Name: "Paladin", Level: access.LevelPremium, IsAvailable: true},
		{ID: 5, Name: "Archmage", Level: access.LevelPremium, IsAvailable: false},
		{ID: 6, Name: "Farmer", Level: access.LevelFree, IsAvailable: true},
	}}
	keys := &memKeys{keys: []access.Key{
		{ID: 1, Key: "free-key", AccessLevel: access.LevelFree, IsActive: true},
		{ID: 2, Key: "basic-key", AccessLevel: access.LevelBasic, IsActive: true},
		{ID: 3, Key: "advanced-key", AccessLevel: access.LevelAdvanced, IsActive: true},
		{ID: 4, Key: "premium-key", AccessLevel: access.LevelPremium, IsActive: true},
	}}

	resolver := access.NewService(keys, discardLogger())
	svc := NewService(repo, resolver, &memObjects{}, core.NewMetrics("test"), discardLogger())
	return svc, repo, keys
}
