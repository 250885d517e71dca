package model

// VersionedRecord captures schema and codec evolution for persistent data.
type VersionedRecord struct {
	SchemaVersion int `json:"schema_version"`
	CodecVersion  int `json:"codec_version"`
}

// Run is the persisted outcome of one colony run.
type Run struct {
	VersionedRecord
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Ants         int     `json:"ants"`
	Ticks        int     `json:"ticks"`
	Seed         int64   `json:"seed"`
	Learning     bool    `json:"learning"`
	TotalFood    int     `json:"total_food"`
	FoodPerAnt   []int   `json:"food_per_ant"`
	HomeMass     float64 `json:"home_mass"`
	TargetMass   float64 `json:"target_mass"`
	Fingerprint  string  `json:"fingerprint"`
	CreatedAtUTC string  `json:"created_at_utc"`
}

// Brain is one ant's learner table at the end of a run, in state-major order.
type Brain struct {
	VersionedRecord
	RunID       string    `json:"run_id"`
	Ant         int       `json:"ant"`
	States      int       `json:"states"`
	Actions     int       `json:"actions"`
	Exploration float64   `json:"exploration"`
	Values      []float64 `json:"values"`
}

type CumulativeEntry struct {
	TotalFood    int     `json:"total_food"`
	AverageSteps float64 `json:"average_steps"`
}

// Cumulative holds the per-ant food counters of a run, in ant order.
type Cumulative struct {
	VersionedRecord
	RunID   string            `json:"run_id"`
	Entries []CumulativeEntry `json:"entries"`
}
