package models

import "time"

// Zone type tags accepted in arena configuration
const (
	ZoneTypePoints     = "points"
	ZoneTypeRectangle  = "rectangle"
	ZoneTypeCircle     = "circle"
	ZoneTypeProportion = "proportion"
)

// ReferencePoint is a named coordinate anchor that zones are built from
type ReferencePoint struct {
	Name string  `json:"name" yaml:"name"`
	X    float64 `json:"x" yaml:"x"`
	Y    float64 `json:"y" yaml:"y"`
}

// ZoneConfig is the declarative, tag-discriminated zone record as it appears
// in arena files and in the database. Which fields are required depends on Type.
type ZoneConfig struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
	Type string `json:"type" yaml:"type"` // points, rectangle, circle, proportion

	// points / rectangle
	Points []string `json:"points,omitempty" yaml:"points,omitempty"`

	// circle
	CenterPoint string  `json:"center_point,omitempty" yaml:"center_point,omitempty"`
	RadiusCm    float64 `json:"radius_cm,omitempty" yaml:"radius_cm,omitempty"`

	// proportion: [left, top, right, bottom] as fractions of the parent bounding box
	ParentZone string    `json:"parent_zone,omitempty" yaml:"parent_zone,omitempty"`
	Proportion []float64 `json:"proportion,omitempty" yaml:"proportion,omitempty"`
}

// ArenaConfig is the resolved in-memory arena description
type ArenaConfig struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`

	// Scale is coordinate units per centimetre (pixels per cm). Nil when unset.
	Scale *float64 `json:"scale,omitempty" yaml:"scale,omitempty"`

	Points []ReferencePoint `json:"points" yaml:"points"`
	Zones  []ZoneConfig     `json:"zones" yaml:"zones"`

	CreatedBy string    `json:"created_by,omitempty" yaml:"-"`
	CreatedAt time.Time `json:"created_at,omitempty" yaml:"-"`
	UpdatedAt time.Time `json:"updated_at,omitempty" yaml:"-"`
}
