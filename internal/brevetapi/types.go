package brevetapi

// ControlTimes is the check-in window of one control as served by the API.
type ControlTimes struct {
	ControlKm float64 `json:"control_km"`
	Open      string  `json:"open"`
	Close     string  `json:"close"`
}

// ScheduleRequest asks for the windows of a whole route sheet. Controls are
// kilometres, or strings with a "km" or "mi" suffix.
type ScheduleRequest struct {
	BrevetDistKm int      `json:"brevet_dist_km"`
	BeginDate    string   `json:"begin_date"`
	Controls     []string `json:"controls"`
}

// Schedule is the answer to a ScheduleRequest.
type Schedule struct {
	BrevetDistKm int            `json:"brevet_dist_km"`
	BeginDate    string         `json:"begin_date"`
	Controls     []ControlTimes `json:"controls"`
}

// Bracket is one row of the speed table.
type Bracket struct {
	UpperKm int64   `json:"upper_km"`
	MinKmh  float64 `json:"min_kmh"`
	MaxKmh  float64 `json:"max_kmh"`
}

// Brevets describes the canonical distances and the speed table.
type Brevets struct {
	Distances    []int           `json:"distances"`
	MaxControlKm map[int]float64 `json:"max_control_km"`
	SpeedTable   []Bracket       `json:"speed_table"`
}
