package arena

import (
	"fmt"

	"github.com/jengzang/arena-zones-backend/internal/models"
	"github.com/jengzang/arena-zones-backend/internal/spatial"
)

// ZoneGeometry is a resolved zone: its primitive plus the ids used for reporting
type ZoneGeometry struct {
	ZoneID   string        `json:"zone_id"`
	ZoneName string        `json:"zone_name"`
	Shape    spatial.Shape `json:"-"`
}

// Layout is the resolved geometry of one arena. It is built once and never
// modified afterwards, so it can be shared between goroutines without locking.
type Layout struct {
	arenaID  string
	name     string
	scale    *float64
	zones    []ZoneGeometry
	byID     map[string]int
	warnings []string
}

// Build resolves every zone of the arena into concrete geometry.
//
// Non-proportional zones are resolved first straight from the reference points.
// Proportional zones are then resolved in repeated passes, each pass resolving
// every zone whose parent is already known, for at most len(zones) passes or
// until a pass makes no progress. This accepts children declared before their
// parents and chains of any depth.
func Build(cfg models.ArenaConfig) (*Layout, error) {
	points := make(map[string]spatial.Point, len(cfg.Points))
	for _, p := range cfg.Points {
		if _, dup := points[p.Name]; dup {
			return nil, fmt.Errorf("reference point %q declared twice: %w", p.Name, ErrInvalidZoneSpec)
		}
		points[p.Name] = spatial.Point{X: p.X, Y: p.Y}
	}

	specs := make([]ZoneSpec, 0, len(cfg.Zones))
	declared := make(map[string]bool, len(cfg.Zones))
	for _, zc := range cfg.Zones {
		spec, err := DecodeZone(zc)
		if err != nil {
			return nil, err
		}
		if declared[spec.ZoneID()] {
			return nil, fmt.Errorf("zone %q declared twice: %w", spec.ZoneID(), ErrInvalidZoneSpec)
		}
		declared[spec.ZoneID()] = true
		specs = append(specs, spec)
	}

	layout := &Layout{
		arenaID: cfg.ID,
		name:    cfg.Name,
		scale:   cfg.Scale,
		byID:    make(map[string]int, len(specs)),
	}
	resolved := make(map[string]ZoneGeometry, len(specs))

	// Phase 1: zones that only need reference points
	var pending []ProportionZone
	for _, spec := range specs {
		switch z := spec.(type) {
		case PointsZone:
			geom, err := resolvePoints(z, points)
			if err != nil {
				return nil, err
			}
			resolved[z.ID] = geom
		case RectangleZone:
			geom, err := resolveRectangle(z, points)
			if err != nil {
				return nil, err
			}
			resolved[z.ID] = geom
		case CircleZone:
			geom, warning, err := resolveCircle(z, points, cfg.Scale)
			if err != nil {
				return nil, err
			}
			if warning != "" {
				layout.warnings = append(layout.warnings, warning)
			}
			resolved[z.ID] = geom
		case ProportionZone:
			pending = append(pending, z)
		default:
			return nil, fmt.Errorf("zone %q: unhandled spec %T: %w", spec.ZoneID(), spec, ErrInvalidZoneSpec)
		}
	}

	// Phase 2: proportional zones, bounded fixed-point iteration
	for pass := 0; pass < len(specs) && len(pending) > 0; pass++ {
		var next []ProportionZone
		for _, z := range pending {
			parent, ok := resolved[z.ParentZone]
			if !ok {
				next = append(next, z)
				continue
			}
			geom, err := resolveProportion(z, parent)
			if err != nil {
				return nil, err
			}
			resolved[z.ID] = geom
		}
		progress := len(next) < len(pending)
		pending = next
		if !progress {
			break
		}
	}

	if len(pending) > 0 {
		// a chain ending at an undeclared parent is not a cycle
		for _, z := range pending {
			if !declared[z.ParentZone] {
				return nil, fmt.Errorf("zone %q: parent zone %q is not defined: %w", z.ID, z.ParentZone, ErrUnresolvedParent)
			}
		}
		z := pending[0]
		return nil, fmt.Errorf("zone %q: parent chain through %q never resolves (%d zones left): %w",
			z.ID, z.ParentZone, len(pending), ErrCyclicDependency)
	}

	for _, spec := range specs {
		layout.byID[spec.ZoneID()] = len(layout.zones)
		layout.zones = append(layout.zones, resolved[spec.ZoneID()])
	}

	return layout, nil
}

func lookupPoint(zoneID, name string, points map[string]spatial.Point) (spatial.Point, error) {
	p, ok := points[name]
	if !ok {
		return spatial.Point{}, fmt.Errorf("zone %q: reference point %q: %w", zoneID, name, ErrMissingReferencePoint)
	}
	return p, nil
}

// resolvePoints keeps the declared vertex order; out-of-order points give a
// self-intersecting polygon.
func resolvePoints(z PointsZone, points map[string]spatial.Point) (ZoneGeometry, error) {
	vertices := make([]spatial.Point, 0, len(z.PointNames))
	for _, name := range z.PointNames {
		p, err := lookupPoint(z.ID, name, points)
		if err != nil {
			return ZoneGeometry{}, err
		}
		vertices = append(vertices, p)
	}
	return ZoneGeometry{ZoneID: z.ID, ZoneName: z.Name, Shape: spatial.Polygon{Vertices: vertices}}, nil
}

func resolveRectangle(z RectangleZone, points map[string]spatial.Point) (ZoneGeometry, error) {
	a, err := lookupPoint(z.ID, z.PointNames[0], points)
	if err != nil {
		return ZoneGeometry{}, err
	}
	b, err := lookupPoint(z.ID, z.PointNames[1], points)
	if err != nil {
		return ZoneGeometry{}, err
	}
	return ZoneGeometry{ZoneID: z.ID, ZoneName: z.Name, Shape: spatial.RectanglePolygon(a, b)}, nil
}

// resolveCircle converts the radius with the arena scale. Without a scale the
// centimetre value is used as a coordinate radius and a warning is returned.
func resolveCircle(z CircleZone, points map[string]spatial.Point, scale *float64) (ZoneGeometry, string, error) {
	center, err := lookupPoint(z.ID, z.CenterPoint, points)
	if err != nil {
		return ZoneGeometry{}, "", err
	}

	radius := z.RadiusCm
	warning := ""
	if scale != nil {
		radius = z.RadiusCm * *scale
	} else {
		warning = fmt.Sprintf("zone %q: arena has no scale, radius_cm %v used as coordinate radius", z.ID, z.RadiusCm)
	}

	return ZoneGeometry{
		ZoneID:   z.ID,
		ZoneName: z.Name,
		Shape:    spatial.Circle{Center: center, Radius: radius},
	}, warning, nil
}

func resolveProportion(z ProportionZone, parent ZoneGeometry) (ZoneGeometry, error) {
	if _, ok := parent.Shape.(spatial.Polygon); !ok {
		return ZoneGeometry{}, fmt.Errorf("zone %q: parent %q is a %T, only polygons can be subdivided: %w",
			z.ID, parent.ZoneID, parent.Shape, ErrUnsupportedParentType)
	}

	bounds := spatial.Bounds(parent.Shape)
	xMin, yMin := bounds.X.Lo, bounds.Y.Lo
	width := bounds.X.Hi - bounds.X.Lo
	height := bounds.Y.Hi - bounds.Y.Lo

	left, top, right, bottom := z.Proportion[0], z.Proportion[1], z.Proportion[2], z.Proportion[3]
	corner1 := spatial.Point{X: xMin + left*width, Y: yMin + top*height}
	corner2 := spatial.Point{X: xMin + right*width, Y: yMin + bottom*height}

	return ZoneGeometry{ZoneID: z.ID, ZoneName: z.Name, Shape: spatial.RectanglePolygon(corner1, corner2)}, nil
}

// ArenaID returns the id of the arena the layout was built from
func (l *Layout) ArenaID() string { return l.arenaID }

// Name returns the arena name
func (l *Layout) Name() string { return l.name }

// Scale returns the pixels-per-cm scale and whether it is set
func (l *Layout) Scale() (float64, bool) {
	if l.scale == nil {
		return 0, false
	}
	return *l.scale, true
}

// Len returns the number of zones
func (l *Layout) Len() int { return len(l.zones) }

// Zones returns a copy of the zones in declaration order
func (l *Layout) Zones() []ZoneGeometry {
	out := make([]ZoneGeometry, len(l.zones))
	for i, z := range l.zones {
		out[i] = z.clone()
	}
	return out
}

// ZoneIDs returns the zone ids in declaration order
func (l *Layout) ZoneIDs() []string {
	ids := make([]string, len(l.zones))
	for i, z := range l.zones {
		ids[i] = z.ZoneID
	}
	return ids
}

// Zone looks up a zone by id
func (l *Layout) Zone(id string) (ZoneGeometry, error) {
	i, ok := l.byID[id]
	if !ok {
		return ZoneGeometry{}, fmt.Errorf("zone %q: %w", id, models.ErrNotFound)
	}
	return l.zones[i].clone(), nil
}

// clone copies polygon vertices so callers cannot write into a shared layout
func (g ZoneGeometry) clone() ZoneGeometry {
	if p, ok := g.Shape.(spatial.Polygon); ok {
		vertices := make([]spatial.Point, len(p.Vertices))
		copy(vertices, p.Vertices)
		g.Shape = spatial.Polygon{Vertices: vertices}
	}
	return g
}

// Warnings returns conditions tolerated while building, such as circles without a scale
func (l *Layout) Warnings() []string {
	out := make([]string, len(l.warnings))
	copy(out, l.warnings)
	return out
}
