package models

// OutsideZoneID labels frames that fall in no zone of a partition
const OutsideZoneID = "outside"

// ZoneOccupancy is the time a series spends inside a zone
type ZoneOccupancy struct {
	FramesInZone int     `json:"frames_in_zone"`
	TotalFrames  int     `json:"total_frames"`
	TimeSeconds  float64 `json:"time_seconds"`
	Percentage   float64 `json:"percentage"`
}

// ZoneVisit is a maximal run of consecutive in-zone frames.
// StartFrame and EndFrame are inclusive positions within the series.
type ZoneVisit struct {
	StartFrame      int     `json:"start_frame"`
	EndFrame        int     `json:"end_frame"`
	DurationSeconds float64 `json:"duration_seconds"`
}

// ZoneSummary collects the temporal metrics of one landmark in one zone
type ZoneSummary struct {
	SubjectID string `json:"subject_id,omitempty" db:"subject_id"`
	Landmark  string `json:"landmark" db:"landmark"`
	ZoneID    string `json:"zone_id" db:"zone_id"`
	ZoneName  string `json:"zone_name" db:"zone_name"`

	ZoneOccupancy

	Entries int `json:"entries" db:"entries"`
	Exits   int `json:"exits" db:"exits"`

	// LatencySeconds is nil when no visit meets the minimum duration
	LatencySeconds *float64 `json:"latency_seconds" db:"latency_seconds"`
}

// ZoneTransition counts moves between two consecutive qualifying visits
type ZoneTransition struct {
	SubjectID string `json:"subject_id,omitempty"`
	Landmark  string `json:"landmark"`
	From      string `json:"from"`
	To        string `json:"to"`
	Count     int    `json:"count"`
}

// MovementSummary describes distance travelled and speed for one landmark
type MovementSummary struct {
	Landmark    string   `json:"landmark"`
	Frames      int      `json:"frames"`
	ValidFrames int      `json:"valid_frames"`
	Distance    float64  `json:"distance"`              // coordinate units
	DistanceCm  *float64 `json:"distance_cm,omitempty"` // set when the arena has a scale
	MeanSpeed   float64  `json:"mean_speed"`            // coordinate units per second
	MedianSpeed float64  `json:"median_speed"`
	MaxSpeed    float64  `json:"max_speed"`
	SpeedStdDev float64  `json:"speed_std_dev"`
}

// LandmarkVisits lists every visit of one landmark to one zone
type LandmarkVisits struct {
	Landmark string      `json:"landmark"`
	ZoneID   string      `json:"zone_id"`
	Visits   []ZoneVisit `json:"visits"`
}

// SubjectResult holds the output of every skill run for one subject.
// Sections of skills that were not requested stay nil.
type SubjectResult struct {
	SubjectID   string            `json:"subject_id"`
	Samples     int               `json:"samples"`
	Summaries   []ZoneSummary     `json:"summaries,omitempty"`
	Transitions []ZoneTransition  `json:"transitions,omitempty"`
	Visits      []LandmarkVisits  `json:"visits,omitempty"`
	Movement    []MovementSummary `json:"movement,omitempty"`
}
