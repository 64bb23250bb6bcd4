package arena

import (
	"fmt"
	"math"
	"strings"

	"github.com/jengzang/arena-zones-backend/internal/models"
)

// ZoneSpec is the declarative description of one zone. The set of
// implementations is closed: PointsZone, RectangleZone, CircleZone and ProportionZone.
type ZoneSpec interface {
	ZoneID() string
	ZoneName() string
	isZoneSpec()
}

// PointsZone is a polygon through named reference points in declared order
type PointsZone struct {
	ID, Name   string
	PointNames []string
}

// RectangleZone is an axis-aligned rectangle from two opposite named corners
type RectangleZone struct {
	ID, Name   string
	PointNames [2]string
}

// CircleZone is a disk around a named point, radius in centimetres
type CircleZone struct {
	ID, Name    string
	CenterPoint string
	RadiusCm    float64
}

// ProportionZone is a rectangle carved out of (or extending) a parent zone's bounding box.
// Proportion is [left, top, right, bottom] as fractions of the parent's width and height.
type ProportionZone struct {
	ID, Name   string
	ParentZone string
	Proportion [4]float64
}

func (z PointsZone) ZoneID() string     { return z.ID }
func (z RectangleZone) ZoneID() string  { return z.ID }
func (z CircleZone) ZoneID() string     { return z.ID }
func (z ProportionZone) ZoneID() string { return z.ID }

func (z PointsZone) ZoneName() string     { return z.Name }
func (z RectangleZone) ZoneName() string  { return z.Name }
func (z CircleZone) ZoneName() string     { return z.Name }
func (z ProportionZone) ZoneName() string { return z.Name }

func (PointsZone) isZoneSpec()     {}
func (RectangleZone) isZoneSpec()  {}
func (CircleZone) isZoneSpec()     {}
func (ProportionZone) isZoneSpec() {}

// DecodeZone converts a tag-discriminated config record into its ZoneSpec
func DecodeZone(cfg models.ZoneConfig) (ZoneSpec, error) {
	if strings.TrimSpace(cfg.ID) == "" {
		return nil, fmt.Errorf("zone %q: missing id: %w", cfg.Name, ErrInvalidZoneSpec)
	}
	name := cfg.Name
	if name == "" {
		name = cfg.ID
	}

	switch strings.ToLower(strings.TrimSpace(cfg.Type)) {
	case models.ZoneTypePoints:
		if len(cfg.Points) < 3 {
			return nil, fmt.Errorf("zone %q: polygon needs at least 3 points, got %d: %w",
				cfg.ID, len(cfg.Points), ErrInsufficientPoints)
		}
		names := make([]string, len(cfg.Points))
		copy(names, cfg.Points)
		return PointsZone{ID: cfg.ID, Name: name, PointNames: names}, nil

	case models.ZoneTypeRectangle:
		if len(cfg.Points) != 2 {
			return nil, fmt.Errorf("zone %q: rectangle needs exactly 2 points, got %d: %w",
				cfg.ID, len(cfg.Points), ErrInvalidZoneSpec)
		}
		return RectangleZone{ID: cfg.ID, Name: name, PointNames: [2]string{cfg.Points[0], cfg.Points[1]}}, nil

	case models.ZoneTypeCircle:
		if cfg.CenterPoint == "" {
			return nil, fmt.Errorf("zone %q: circle has no center_point: %w", cfg.ID, ErrInvalidZoneSpec)
		}
		// a zero radius is a degenerate disk holding only its center
		if !isFinite(cfg.RadiusCm) || cfg.RadiusCm < 0 {
			return nil, fmt.Errorf("zone %q: circle radius_cm must be finite and non-negative, got %v: %w",
				cfg.ID, cfg.RadiusCm, ErrInvalidZoneSpec)
		}
		return CircleZone{ID: cfg.ID, Name: name, CenterPoint: cfg.CenterPoint, RadiusCm: cfg.RadiusCm}, nil

	case models.ZoneTypeProportion:
		if cfg.ParentZone == "" {
			return nil, fmt.Errorf("zone %q: proportion zone has no parent_zone: %w", cfg.ID, ErrInvalidZoneSpec)
		}
		if len(cfg.Proportion) != 4 {
			return nil, fmt.Errorf("zone %q: proportion needs [left, top, right, bottom], got %d values: %w",
				cfg.ID, len(cfg.Proportion), ErrInvalidZoneSpec)
		}
		var prop [4]float64
		for i, v := range cfg.Proportion {
			if !isFinite(v) {
				return nil, fmt.Errorf("zone %q: proportion value %d is %v: %w", cfg.ID, i, v, ErrInvalidZoneSpec)
			}
			prop[i] = v
		}
		return ProportionZone{ID: cfg.ID, Name: name, ParentZone: cfg.ParentZone, Proportion: prop}, nil

	default:
		return nil, fmt.Errorf("zone %q: unknown zone type %q: %w", cfg.ID, cfg.Type, ErrInvalidZoneSpec)
	}
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
