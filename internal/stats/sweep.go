package stats

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
)

const sweepsDir = "sweeps"

// Sweep records a set of runs that differ only by seed.
type Sweep struct {
	ID             string       `json:"id"`
	Seeds          []int64      `json:"seeds"`
	RunIDs         []string     `json:"run_ids"`
	Summaries      []RunSummary `json:"summaries,omitempty"`
	Food           FoodStats    `json:"food"`
	StartedAtUTC   string       `json:"started_at_utc,omitempty"`
	CompletedAtUTC string       `json:"completed_at_utc,omitempty"`
}

// FoodStats summarises total food across runs.
type FoodStats struct {
	Runs int     `json:"runs"`
	Mean float64 `json:"mean"`
	Std  float64 `json:"std"`
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
}

func BuildFoodStats(summaries []RunSummary) FoodStats {
	out := FoodStats{Runs: len(summaries)}
	if len(summaries) == 0 {
		return out
	}
	out.Min = math.Inf(1)
	out.Max = math.Inf(-1)
	sum := 0.0
	for _, s := range summaries {
		v := float64(s.TotalFood)
		sum += v
		out.Min = math.Min(out.Min, v)
		out.Max = math.Max(out.Max, v)
	}
	out.Mean = sum / float64(len(summaries))
	variance := 0.0
	for _, s := range summaries {
		d := float64(s.TotalFood) - out.Mean
		variance += d * d
	}
	out.Std = math.Sqrt(variance / float64(len(summaries)))
	return out
}

func WriteSweep(baseDir string, sweep Sweep) error {
	if sweep.ID == "" {
		return fmt.Errorf("sweep id is required")
	}
	path := sweepPath(baseDir, sweep.ID)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return writeJSON(path, sweep)
}

func ReadSweep(baseDir, id string) (Sweep, bool, error) {
	if id == "" {
		return Sweep{}, false, fmt.Errorf("sweep id is required")
	}
	var sweep Sweep
	ok, err := readJSON(sweepPath(baseDir, id), &sweep)
	return sweep, ok, err
}

// ListSweeps returns every recorded sweep, most recently started first.
func ListSweeps(baseDir string) ([]Sweep, error) {
	entries, err := os.ReadDir(filepath.Join(baseDir, sweepsDir))
	if err != nil {
		if os.IsNotExist(err) {
			return []Sweep{}, nil
		}
		return nil, err
	}

	sweeps := make([]Sweep, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		sweep, ok, err := ReadSweep(baseDir, entry.Name())
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		sweeps = append(sweeps, sweep)
	}
	sort.Slice(sweeps, func(i, j int) bool {
		if sweeps[i].StartedAtUTC == sweeps[j].StartedAtUTC {
			return sweeps[i].ID < sweeps[j].ID
		}
		return sweeps[i].StartedAtUTC > sweeps[j].StartedAtUTC
	})
	return sweeps, nil
}

func sweepPath(baseDir, id string) string {
	return filepath.Join(baseDir, sweepsDir, id, "sweep.json")
}
