package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jengzang/arena-zones-backend/internal/models"
)

// ArenaRepository handles database operations for arena configurations
type ArenaRepository struct {
	db *sql.DB
}

// NewArenaRepository creates a new arena repository
func NewArenaRepository(db *sql.DB) *ArenaRepository {
	return &ArenaRepository{db: db}
}

// arenaDocument is the part of an arena stored as JSON
type arenaDocument struct {
	Scale  *float64                `json:"scale,omitempty"`
	Points []models.ReferencePoint `json:"points"`
	Zones  []models.ZoneConfig     `json:"zones"`
}

// Create stores a new arena; the caller assigns the id
func (r *ArenaRepository) Create(ctx context.Context, arena *models.ArenaConfig) error {
	doc, err := json.Marshal(arenaDocument{Scale: arena.Scale, Points: arena.Points, Zones: arena.Zones})
	if err != nil {
		return fmt.Errorf("failed to encode arena %s: %w", arena.ID, err)
	}

	now := time.Now().UTC().Truncate(time.Millisecond)
	query := `
		INSERT INTO arenas (id, name, config_json, zone_count, created_by, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err = r.db.ExecContext(ctx, query,
		arena.ID,
		arena.Name,
		string(doc),
		len(arena.Zones),
		arena.CreatedBy,
		now.UnixMilli(),
		now.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to create arena: %w", err)
	}

	arena.CreatedAt = now
	arena.UpdatedAt = now
	return nil
}

// GetByID retrieves an arena by ID
func (r *ArenaRepository) GetByID(ctx context.Context, id string) (*models.ArenaConfig, error) {
	query := `
		SELECT id, name, config_json, created_by, created_at, updated_at
		FROM arenas
		WHERE id = ?
	`
	arena, err := scanArena(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("arena %s: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get arena: %w", err)
	}
	return arena, nil
}

// List retrieves arenas, newest first
func (r *ArenaRepository) List(ctx context.Context, limit, offset int) ([]*models.ArenaConfig, error) {
	query := `
		SELECT id, name, config_json, created_by, created_at, updated_at
		FROM arenas
		ORDER BY created_at DESC, id
		LIMIT ? OFFSET ?
	`
	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list arenas: %w", err)
	}
	defer rows.Close()

	arenas := []*models.ArenaConfig{}
	for rows.Next() {
		arena, err := scanArena(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan arena: %w", err)
		}
		arenas = append(arenas, arena)
	}
	return arenas, rows.Err()
}

// Delete removes an arena and, through the foreign keys, its tasks and metrics
func (r *ArenaRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM arenas WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete arena: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("arena %s: %w", id, models.ErrNotFound)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanArena(row rowScanner) (*models.ArenaConfig, error) {
	var (
		arena                models.ArenaConfig
		doc                  string
		createdAt, updatedAt int64
	)
	if err := row.Scan(&arena.ID, &arena.Name, &doc, &arena.CreatedBy, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	var d arenaDocument
	if err := json.Unmarshal([]byte(doc), &d); err != nil {
		return nil, fmt.Errorf("failed to decode arena %s: %w", arena.ID, err)
	}
	arena.Scale = d.Scale
	arena.Points = d.Points
	arena.Zones = d.Zones
	arena.CreatedAt = fromMillis(createdAt)
	arena.UpdatedAt = fromMillis(updatedAt)
	return &arena, nil
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

func nullableMillis(v sql.NullInt64) *time.Time {
	if !v.Valid {
		return nil
	}
	t := fromMillis(v.Int64)
	return &t
}
