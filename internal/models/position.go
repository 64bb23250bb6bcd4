package models

import (
	"encoding/json"
	"math"
)

// PositionSample is one tracked landmark position in one frame.
// Missing coordinates are NaN.
type PositionSample struct {
	Frame    int     `json:"frame"`
	Time     float64 `json:"time"`
	Landmark string  `json:"landmark"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
}

// positionJSON carries missing coordinates as null, since JSON has no NaN
type positionJSON struct {
	Frame    int      `json:"frame"`
	Time     float64  `json:"time"`
	Landmark string   `json:"landmark"`
	X        *float64 `json:"x"`
	Y        *float64 `json:"y"`
}

// MarshalJSON writes NaN coordinates as null
func (p PositionSample) MarshalJSON() ([]byte, error) {
	return json.Marshal(positionJSON{
		Frame:    p.Frame,
		Time:     p.Time,
		Landmark: p.Landmark,
		X:        finiteOrNil(p.X),
		Y:        finiteOrNil(p.Y),
	})
}

// UnmarshalJSON reads null or absent coordinates as NaN
func (p *PositionSample) UnmarshalJSON(data []byte) error {
	var aux positionJSON
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*p = PositionSample{
		Frame:    aux.Frame,
		Time:     aux.Time,
		Landmark: aux.Landmark,
		X:        math.NaN(),
		Y:        math.NaN(),
	}
	if aux.X != nil {
		p.X = *aux.X
	}
	if aux.Y != nil {
		p.Y = *aux.Y
	}
	return nil
}

func finiteOrNil(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// FrameMembership is one (frame, landmark, zone) row produced by the frame
// classifier. ZoneID is nil when the point is in no zone or its position is missing.
type FrameMembership struct {
	Frame    int      `json:"frame"`
	Time     float64  `json:"time"`
	Landmark string   `json:"landmark"`
	X        *float64 `json:"x"`
	Y        *float64 `json:"y"`
	ZoneID   *string  `json:"zone_id"`
}

// InZone reports whether the row belongs to zoneID
func (m FrameMembership) InZone(zoneID string) bool {
	return m.ZoneID != nil && *m.ZoneID == zoneID
}

// Subject is one tracked animal and its samples
type Subject struct {
	ID        string           `json:"id"`
	Positions []PositionSample `json:"positions"`
}
