package catalog

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"github.com/duelarena/server/internal/model"
)

// Source supplies character definitions to the catalog
type Source interface {
	Characters(ctx context.Context) ([]model.Character, error)
}

// Service holds the character/ability catalog. The coordinator consumes
// definitions from it; nothing in the core mutates them.
type Service struct {
	mu         sync.RWMutex
	characters map[model.CharacterID]*model.Character
	logger     *slog.Logger
}

// New creates an empty catalog Service
func New(logger *slog.Logger) *Service {
	return &Service{
		characters: make(map[model.CharacterID]*model.Character),
		logger:     logger,
	}
}

// Load replaces the catalog contents with the source's definitions
func (s *Service) Load(ctx context.Context, source Source) error {
	characters, err := source.Characters(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.characters = make(map[model.CharacterID]*model.Character, len(characters))
	for i := range characters {
		ch := characters[i]
		s.characters[ch.ID] = &ch
	}

	s.logger.Info("catalog loaded", slog.Int("characters", len(characters)))
	return nil
}

// Get returns the character with the given ID
func (s *Service) Get(id model.CharacterID) (*model.Character, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ch, ok := s.characters[id]
	if !ok {
		return nil, model.ErrCharacterNotFound
	}
	return ch, nil
}

// List returns every character in the catalog, ordered by ID
func (s *Service) List() []model.Character {
	s.mu.RLock()
	defer s.mu.RUnlock()
	characters := make([]model.Character, 0, len(s.characters))
	for _, ch := range s.characters {
		characters = append(characters, *ch)
	}
	sort.Slice(characters, func(i, j int) bool {
		return characters[i].ID < characters[j].ID
	})
	return characters
}
