package arena

import (
	"encoding/json"
	"fmt"

	"github.com/jengzang/arena-zones-backend/internal/spatial"
)

type geometryJSON struct {
	ZoneID   string          `json:"zone_id"`
	ZoneName string          `json:"zone_name"`
	Type     string          `json:"type"`
	Vertices []spatial.Point `json:"vertices,omitempty"`
	Center   *spatial.Point  `json:"center,omitempty"`
	Radius   float64         `json:"radius,omitempty"`
	Centroid spatial.Point   `json:"centroid"`
	Area     float64         `json:"area"`
}

// MarshalJSON flattens the shape into a "polygon" or "circle" record for plotting clients
func (g ZoneGeometry) MarshalJSON() ([]byte, error) {
	out := geometryJSON{ZoneID: g.ZoneID, ZoneName: g.ZoneName}
	switch s := g.Shape.(type) {
	case spatial.Polygon:
		out.Type = "polygon"
		out.Vertices = s.Vertices
	case spatial.Circle:
		out.Type = "circle"
		center := s.Center
		out.Center = &center
		out.Radius = s.Radius
	default:
		return nil, fmt.Errorf("zone %q: unhandled shape %T", g.ZoneID, g.Shape)
	}
	out.Centroid = spatial.Centroid(g.Shape)
	out.Area = spatial.Area(g.Shape)
	return json.Marshal(out)
}
