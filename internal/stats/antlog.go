package stats

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/sirupsen/logrus"

	"antcolony/internal/ant"
	"antcolony/internal/colony"
	"antcolony/internal/qlearn"
)

// AntLog appends one line per ant per tick to Log/Ant_<i>.csv:
// state_key,action,transition_label,food_flag. Lines are flushed at the end of every tick.
// A failing writer is reported once and then skipped; it never stops the run.
type AntLog struct {
	dir     string
	log     logrus.FieldLogger
	files   []*os.File
	writers []*bufio.Writer
	failed  []bool
}

func NewAntLog(dir string, ants int, log logrus.FieldLogger) (*AntLog, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	l := &AntLog{
		dir:     dir,
		log:     log,
		files:   make([]*os.File, ants),
		writers: make([]*bufio.Writer, ants),
		failed:  make([]bool, ants),
	}
	for i := 0; i < ants; i++ {
		file, err := os.OpenFile(antLogPath(dir, i), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			l.Close()
			return nil, err
		}
		l.files[i] = file
		l.writers[i] = bufio.NewWriter(file)
	}
	return l, nil
}

func antLogPath(dir string, i int) string {
	return filepath.Join(dir, fmt.Sprintf("Ant_%d.csv", i))
}

func (l *AntLog) ObserveStep(r colony.StepRecord) {
	if r.Ant < 0 || r.Ant >= len(l.writers) || l.failed[r.Ant] {
		return
	}
	food := "0"
	if r.FoodCollected {
		food = "1"
	}
	w := l.writers[r.Ant]
	_, err := w.WriteString(r.State.String() + "," + r.Action.String() + "," + string(r.Label) + "," + food + "\n")
	if err != nil {
		l.fail(r.Ant, err)
	}
}

func (l *AntLog) ObserveTick(colony.TickSummary) {
	for i, w := range l.writers {
		if w == nil || l.failed[i] {
			continue
		}
		if err := w.Flush(); err != nil {
			l.fail(i, err)
		}
	}
}

func (l *AntLog) fail(i int, err error) {
	l.failed[i] = true
	l.log.WithFields(logrus.Fields{"ant": i, "path": antLogPath(l.dir, i)}).WithError(err).Error("ant log disabled")
}

// Close flushes and closes every file and returns the first error.
func (l *AntLog) Close() error {
	var first error
	for i := range l.files {
		if l.files[i] == nil {
			continue
		}
		if !l.failed[i] {
			if err := l.writers[i].Flush(); err != nil {
				l.fail(i, err)
				if first == nil {
					first = err
				}
			}
		}
		if err := l.files[i].Close(); err != nil && first == nil {
			first = err
		}
		l.files[i] = nil
	}
	return first
}

// WriteBrains dumps every table to Ant_<i>_Brain.csv in dir. Nil tables are skipped.
func WriteBrains(dir string, tables []*qlearn.Table) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	labels := ant.StateLabels()
	for i, table := range tables {
		if table == nil {
			continue
		}
		if err := writeBrain(filepath.Join(dir, "Ant_"+strconv.Itoa(i)+"_Brain.csv"), table, labels); err != nil {
			return fmt.Errorf("ant %d brain: %w", i, err)
		}
	}
	return nil
}

func writeBrain(path string, table *qlearn.Table, labels []string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	w := bufio.NewWriter(file)
	if err := table.WriteCSV(w, labels, ant.ActionNames()); err != nil {
		return err
	}
	return w.Flush()
}

// ReadBrain loads Ant_<i>_Brain.csv of a run.
func ReadBrain(baseDir, runID string, i int) (*qlearn.Table, bool, error) {
	file, err := os.Open(filepath.Join(LogDir(baseDir, runID), "Ant_"+strconv.Itoa(i)+"_Brain.csv"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	defer file.Close()
	table, err := qlearn.ReadCSV(bufio.NewReader(file))
	if err != nil {
		return nil, false, fmt.Errorf("ant %d brain: %w", i, err)
	}
	return table, true, nil
}
