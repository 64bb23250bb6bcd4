package service

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/jengzang/arena-zones-backend/internal/arena"
	"github.com/jengzang/arena-zones-backend/internal/logger"
	"github.com/jengzang/arena-zones-backend/internal/models"
	"github.com/jengzang/arena-zones-backend/internal/repository"
)

const maxListLimit = 500

// ArenaService handles arena business logic and caches built layouts
type ArenaService struct {
	repo *repository.ArenaRepository
	log  *logger.Logger

	mu      sync.RWMutex
	layouts map[string]*arena.Layout
}

// NewArenaService creates a new arena service
func NewArenaService(repo *repository.ArenaRepository, log *logger.Logger) *ArenaService {
	return &ArenaService{
		repo:    repo,
		log:     log.With("service", "arena"),
		layouts: make(map[string]*arena.Layout),
	}
}

// Create validates the arena by building its layout, then stores it under a new id
func (s *ArenaService) Create(ctx context.Context, cfg models.ArenaConfig, createdBy string) (*models.ArenaConfig, error) {
	if strings.TrimSpace(cfg.Name) == "" {
		return nil, fmt.Errorf("arena name is required: %w", models.ErrInvalidArgument)
	}

	cfg.ID = uuid.NewString()
	cfg.CreatedBy = createdBy
	layout, err := arena.Validate(cfg)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, &cfg); err != nil {
		return nil, err
	}
	s.logWarnings(layout)
	s.cache(layout)

	s.log.Info("arena created", "arena_id", cfg.ID, "zones", layout.Len())
	return &cfg, nil
}

// Get returns a stored arena
func (s *ArenaService) Get(ctx context.Context, id string) (*models.ArenaConfig, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns stored arenas, newest first
func (s *ArenaService) List(ctx context.Context, limit, offset int) ([]*models.ArenaConfig, error) {
	if limit <= 0 || limit > maxListLimit {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.List(ctx, limit, offset)
}

// Delete removes an arena and forgets its layout
func (s *ArenaService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.mu.Lock()
	delete(s.layouts, id)
	s.mu.Unlock()

	s.log.Info("arena deleted", "arena_id", id)
	return nil
}

// Layout returns the built layout of an arena, building it on first use.
// Layouts are immutable and shared between requests.
func (s *ArenaService) Layout(ctx context.Context, id string) (*arena.Layout, error) {
	s.mu.RLock()
	layout, ok := s.layouts[id]
	s.mu.RUnlock()
	if ok {
		return layout, nil
	}

	cfg, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	layout, err = arena.Build(*cfg)
	if err != nil {
		return nil, fmt.Errorf("stored arena %s no longer builds: %w", id, err)
	}
	s.logWarnings(layout)
	s.cache(layout)
	return layout, nil
}

func (s *ArenaService) cache(layout *arena.Layout) {
	s.mu.Lock()
	s.layouts[layout.ArenaID()] = layout
	s.mu.Unlock()
}

func (s *ArenaService) logWarnings(layout *arena.Layout) {
	for _, w := range layout.Warnings() {
		s.log.Warn("arena layout warning", "arena_id", layout.ArenaID(), "warning", w)
	}
}
