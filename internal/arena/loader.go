package arena

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jengzang/arena-zones-backend/internal/models"
)

const maxArenaFileSize = 1 * 1024 * 1024 // 1MB

// LoadFile reads an arena description from a .yaml, .yml or .json file and
// returns it with its resolved layout.
func LoadFile(path string) (*models.ArenaConfig, *Layout, error) {
	cleanPath := filepath.Clean(path)
	ext := strings.ToLower(filepath.Ext(cleanPath))
	if ext != ".yaml" && ext != ".yml" && ext != ".json" {
		return nil, nil, fmt.Errorf("arena file must be .yaml, .yml or .json, got %q", ext)
	}

	info, err := os.Stat(cleanPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to stat arena file: %w", err)
	}
	if info.Size() > maxArenaFileSize {
		return nil, nil, fmt.Errorf("arena file too large: %d bytes (max %d)", info.Size(), maxArenaFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read arena file: %w", err)
	}

	return Parse(data, ext == ".json")
}

// Parse decodes an arena description and builds its layout
func Parse(data []byte, isJSON bool) (*models.ArenaConfig, *Layout, error) {
	var cfg models.ArenaConfig
	if isJSON {
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, nil, fmt.Errorf("failed to parse arena JSON: %w", err)
		}
	} else {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, nil, fmt.Errorf("failed to parse arena YAML: %w", err)
		}
	}

	layout, err := Validate(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid arena %q: %w", cfg.Name, err)
	}
	return &cfg, layout, nil
}

// Validate checks scalar fields and builds the layout, so every zone must resolve
func Validate(cfg models.ArenaConfig) (*Layout, error) {
	if cfg.Scale != nil && (!isFinite(*cfg.Scale) || *cfg.Scale <= 0) {
		return nil, fmt.Errorf("scale must be positive, got %v: %w", *cfg.Scale, models.ErrInvalidArgument)
	}
	return Build(cfg)
}
