package stats

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"antcolony/internal/ant"
	"antcolony/internal/colony"
)

const (
	DefaultBatchSize = 1000

	foodBatchFile    = "food_per_batch.csv"
	actionsBatchFile = "actions_per_batch.csv"
)

// Batch aggregates the ticks [Start, Start+Ticks).
type Batch struct {
	Start   int                 `json:"start"`
	Ticks   int                 `json:"ticks"`
	Food    int                 `json:"food"`
	Actions [ant.NumActions]int `json:"actions"`
}

// BatchRecorder folds tick summaries into fixed-size batches. The trailing partial batch is kept.
type BatchRecorder struct {
	size    int
	batches []Batch
}

func NewBatchRecorder(size int) (*BatchRecorder, error) {
	if size <= 0 {
		return nil, fmt.Errorf("batch size must be > 0, got %d", size)
	}
	return &BatchRecorder{size: size}, nil
}

func (r *BatchRecorder) Size() int {
	return r.size
}

func (r *BatchRecorder) ObserveStep(colony.StepRecord) {}

func (r *BatchRecorder) ObserveTick(s colony.TickSummary) {
	start := (s.Tick / r.size) * r.size
	if n := len(r.batches); n == 0 || r.batches[n-1].Start != start {
		r.batches = append(r.batches, Batch{Start: start})
	}
	b := &r.batches[len(r.batches)-1]
	b.Ticks++
	b.Food += s.FoodTotal()
	for i, count := range s.Actions {
		b.Actions[i] += count
	}
}

// Batches copies the batches recorded so far.
func (r *BatchRecorder) Batches() []Batch {
	return append([]Batch(nil), r.batches...)
}

// WriteBatches writes food_per_batch.csv and actions_per_batch.csv into runDir.
func WriteBatches(runDir string, batches []Batch) error {
	food := [][]string{{"start_tick", "ticks", "food"}}
	actions := [][]string{append([]string{"start_tick"}, ant.ActionNames()...)}
	for _, b := range batches {
		food = append(food, []string{strconv.Itoa(b.Start), strconv.Itoa(b.Ticks), strconv.Itoa(b.Food)})
		row := []string{strconv.Itoa(b.Start)}
		for _, count := range b.Actions {
			row = append(row, strconv.Itoa(count))
		}
		actions = append(actions, row)
	}
	if err := writeCSV(filepath.Join(runDir, foodBatchFile), food); err != nil {
		return err
	}
	return writeCSV(filepath.Join(runDir, actionsBatchFile), actions)
}

// ReadBatches joins both batch files of a run back into batches.
func ReadBatches(baseDir, runID string) ([]Batch, bool, error) {
	runDir := RunDir(baseDir, runID)
	food, ok, err := readCSV(filepath.Join(runDir, foodBatchFile))
	if err != nil || !ok {
		return nil, ok, err
	}
	actions, ok, err := readCSV(filepath.Join(runDir, actionsBatchFile))
	if err != nil || !ok {
		return nil, ok, err
	}
	if len(food) != len(actions) {
		return nil, false, fmt.Errorf("batch files disagree: %d food rows, %d action rows", len(food), len(actions))
	}

	batches := make([]Batch, 0, len(food))
	for i := 1; i < len(food); i++ {
		if len(food[i]) != 3 || len(actions[i]) != ant.NumActions+1 {
			return nil, false, fmt.Errorf("batch row %d has unexpected width", i)
		}
		values, err := atoiAll(append(food[i], actions[i][1:]...))
		if err != nil {
			return nil, false, fmt.Errorf("batch row %d: %w", i, err)
		}
		b := Batch{Start: values[0], Ticks: values[1], Food: values[2]}
		copy(b.Actions[:], values[3:])
		batches = append(batches, b)
	}
	return batches, true, nil
}

func atoiAll(fields []string) ([]int, error) {
	out := make([]int, len(fields))
	for i, f := range fields {
		v, err := strconv.Atoi(f)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func writeCSV(path string, rows [][]string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.WriteAll(rows); err != nil {
		return err
	}
	return writer.Error()
}

func readCSV(path string) ([][]string, bool, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	defer file.Close()

	rows, err := csv.NewReader(file).ReadAll()
	if err != nil && err != io.EOF {
		return nil, false, err
	}
	if len(rows) == 0 {
		return nil, false, fmt.Errorf("%s is empty", filepath.Base(path))
	}
	return rows, true, nil
}
