package stats

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"antcolony/internal/ant"
	"antcolony/internal/colony"
)

const (
	runIndexFile      = "run_index.json"
	logDir            = "Log"
	cumulativeFile    = "Cumulative.csv"
	cumulativeHeader0 = "Total_Food_Collected"
	cumulativeHeader1 = "Average_Steps_Before_Collection"
)

type RunConfig struct {
	RunID         string        `json:"run_id"`
	WarmStartFrom string        `json:"warm_start_from,omitempty"`
	BatchSize     int           `json:"batch_size"`
	Colony        colony.Config `json:"colony"`
}

type RunSummary struct {
	RunID         string    `json:"run_id"`
	Name          string    `json:"name"`
	Ants          int       `json:"ants"`
	Ticks         int       `json:"ticks"`
	Seed          int64     `json:"seed"`
	Learning      bool      `json:"learning"`
	TotalFood     int       `json:"total_food"`
	FoodPerAnt    []int     `json:"food_per_ant"`
	AverageSteps  []float64 `json:"average_steps"`
	Exploration   []float64 `json:"exploration,omitempty"`
	HomeMass      float64   `json:"home_mass"`
	TargetMass    float64   `json:"target_mass"`
	Fingerprint   string    `json:"fingerprint"`
	ElapsedMillis int64     `json:"elapsed_ms"`
	CreatedAtUTC  string    `json:"created_at_utc"`
}

// CumulativeRow is one ant's line in Log/Cumulative.csv.
type CumulativeRow struct {
	TotalFood    int     `json:"total_food"`
	AverageSteps float64 `json:"average_steps"`
}

type RunArtifacts struct {
	Config     RunConfig
	Summary    RunSummary
	Batches    []Batch
	Cumulative []CumulativeRow
}

type RunIndexEntry struct {
	RunID        string `json:"run_id"`
	Name         string `json:"name"`
	Ants         int    `json:"ants"`
	Ticks        int    `json:"ticks"`
	Seed         int64  `json:"seed"`
	Learning     bool   `json:"learning"`
	TotalFood    int    `json:"total_food"`
	Fingerprint  string `json:"fingerprint"`
	CreatedAtUTC string `json:"created_at_utc"`
}

// IndexEntry condenses a summary for the run index.
func (s RunSummary) IndexEntry() RunIndexEntry {
	return RunIndexEntry{
		RunID:        s.RunID,
		Name:         s.Name,
		Ants:         s.Ants,
		Ticks:        s.Ticks,
		Seed:         s.Seed,
		Learning:     s.Learning,
		TotalFood:    s.TotalFood,
		Fingerprint:  s.Fingerprint,
		CreatedAtUTC: s.CreatedAtUTC,
	}
}

// CumulativeFromAnts reads the food counters of every ant in index order.
func CumulativeFromAnts(ants []*ant.Ant) []CumulativeRow {
	rows := make([]CumulativeRow, len(ants))
	for i, a := range ants {
		rows[i] = CumulativeRow{TotalFood: a.TotalFood(), AverageSteps: a.AverageStepsToFood()}
	}
	return rows
}

// RunDir is where a run's artifacts live.
func RunDir(baseDir, runID string) string {
	return filepath.Join(baseDir, runID)
}

// LogDir holds the per-ant logs, brains and the cumulative table of a run.
func LogDir(baseDir, runID string) string {
	return filepath.Join(baseDir, runID, logDir)
}

func WriteRunArtifacts(baseDir string, artifacts RunArtifacts) (string, error) {
	if artifacts.Config.RunID == "" {
		return "", fmt.Errorf("run id is required")
	}

	runDir := RunDir(baseDir, artifacts.Config.RunID)
	if err := os.MkdirAll(filepath.Join(runDir, logDir), 0o755); err != nil {
		return "", err
	}

	if err := writeJSON(filepath.Join(runDir, "config.json"), artifacts.Config); err != nil {
		return "", err
	}
	if err := writeJSON(filepath.Join(runDir, "summary.json"), artifacts.Summary); err != nil {
		return "", err
	}
	if err := WriteBatches(runDir, artifacts.Batches); err != nil {
		return "", err
	}
	if err := WriteCumulative(filepath.Join(runDir, logDir), artifacts.Cumulative); err != nil {
		return "", err
	}
	return runDir, nil
}

// WriteCumulative rewrites Cumulative.csv in dir.
func WriteCumulative(dir string, rows []CumulativeRow) error {
	file, err := os.Create(filepath.Join(dir, cumulativeFile))
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write([]string{cumulativeHeader0, cumulativeHeader1}); err != nil {
		return err
	}
	for _, row := range rows {
		if err := writer.Write([]string{
			strconv.Itoa(row.TotalFood),
			strconv.FormatFloat(row.AverageSteps, 'f', -1, 64),
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func ReadCumulative(baseDir, runID string) ([]CumulativeRow, bool, error) {
	file, err := os.Open(filepath.Join(LogDir(baseDir, runID), cumulativeFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return []CumulativeRow{}, true, nil
		}
		return nil, false, err
	}
	if len(header) != 2 || header[0] != cumulativeHeader0 {
		return nil, false, fmt.Errorf("unexpected cumulative header %v", header)
	}

	rows := make([]CumulativeRow, 0, 32)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, false, err
		}
		food, err := strconv.Atoi(record[0])
		if err != nil {
			return nil, false, err
		}
		avg, err := strconv.ParseFloat(record[1], 64)
		if err != nil {
			return nil, false, err
		}
		rows = append(rows, CumulativeRow{TotalFood: food, AverageSteps: avg})
	}
	return rows, true, nil
}

func AppendRunIndex(baseDir string, entry RunIndexEntry) error {
	if entry.RunID == "" {
		return fmt.Errorf("run id is required")
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return err
	}

	index, err := ListRunIndex(baseDir)
	if err != nil {
		return err
	}

	for i := range index {
		if index[i].RunID == entry.RunID {
			index[i] = entry
			return writeJSON(filepath.Join(baseDir, runIndexFile), index)
		}
	}

	index = append(index, entry)
	return writeJSON(filepath.Join(baseDir, runIndexFile), index)
}

// ListRunIndex returns the indexed runs, newest first.
func ListRunIndex(baseDir string) ([]RunIndexEntry, error) {
	data, err := os.ReadFile(filepath.Join(baseDir, runIndexFile))
	if err != nil {
		if os.IsNotExist(err) {
			return []RunIndexEntry{}, nil
		}
		return nil, err
	}

	var entries []RunIndexEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, err
	}

	type indexedEntry struct {
		entry RunIndexEntry
		idx   int
	}
	indexed := make([]indexedEntry, len(entries))
	for i := range entries {
		indexed[i] = indexedEntry{entry: entries[i], idx: i}
	}
	sort.Slice(indexed, func(i, j int) bool {
		if indexed[i].entry.CreatedAtUTC == indexed[j].entry.CreatedAtUTC {
			// Prefer later appended entries for equal timestamps.
			return indexed[i].idx > indexed[j].idx
		}
		return indexed[i].entry.CreatedAtUTC > indexed[j].entry.CreatedAtUTC
	})

	sorted := make([]RunIndexEntry, 0, len(indexed))
	for _, item := range indexed {
		sorted = append(sorted, item.entry)
	}
	return sorted, nil
}

// ExportRunArtifacts copies every file under a run directory, Log included, to outDir/runID.
func ExportRunArtifacts(baseDir, runID, outDir string) (string, error) {
	if strings.TrimSpace(runID) == "" {
		return "", fmt.Errorf("run id is required")
	}

	src := RunDir(baseDir, runID)
	if _, err := os.Stat(filepath.Join(src, "config.json")); err != nil {
		return "", err
	}

	dst := RunDir(outDir, runID)
	err := filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		return copyFile(path, target)
	})
	if err != nil {
		return "", err
	}
	return dst, nil
}

func ReadRunConfig(baseDir, runID string) (RunConfig, bool, error) {
	var cfg RunConfig
	ok, err := readJSON(filepath.Join(RunDir(baseDir, runID), "config.json"), &cfg)
	return cfg, ok, err
}

func ReadRunSummary(baseDir, runID string) (RunSummary, bool, error) {
	var summary RunSummary
	ok, err := readJSON(filepath.Join(RunDir(baseDir, runID), "summary.json"), &summary)
	return summary, ok, err
}

func readJSON(path string, out any) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return false, err
	}
	return true, nil
}

func writeJSON(path string, value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o644)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Sync()
}
