package qlearn

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// Table is a dense action-value table. Every (state, action) cell exists from construction.
type Table struct {
	states  int
	actions int
	values  []float64
}

func NewTable(states, actions int) (*Table, error) {
	if states <= 0 || actions <= 0 {
		return nil, fmt.Errorf("table dimensions must be positive, got %dx%d", states, actions)
	}
	return &Table{states: states, actions: actions, values: make([]float64, states*actions)}, nil
}

func (t *Table) States() int {
	return t.states
}

func (t *Table) Actions() int {
	return t.actions
}

func (t *Table) Get(state, action int) float64 {
	return t.values[t.index(state, action)]
}

func (t *Table) Set(state, action int, value float64) {
	t.values[t.index(state, action)] = value
}

// Row copies the values of every action for state.
func (t *Table) Row(state int) []float64 {
	start := t.index(state, 0)
	return append([]float64(nil), t.values[start:start+t.actions]...)
}

// Best returns the highest-valued action for state; ties go to the lowest index.
func (t *Table) Best(state int) int {
	start := t.index(state, 0)
	best := 0
	for a := 1; a < t.actions; a++ {
		if t.values[start+a] > t.values[start+best] {
			best = a
		}
	}
	return best
}

func (t *Table) Max(state int) float64 {
	return t.Get(state, t.Best(state))
}

// Snapshot copies the table in state-major order.
func (t *Table) Snapshot() []float64 {
	return append([]float64(nil), t.values...)
}

func (t *Table) Load(values []float64) error {
	if len(values) != len(t.values) {
		return fmt.Errorf("table expects %d values, got %d", len(t.values), len(values))
	}
	copy(t.values, values)
	return nil
}

func (t *Table) index(state, action int) int {
	if state < 0 || state >= t.states || action < 0 || action >= t.actions {
		panic(fmt.Sprintf("qlearn: cell (%d,%d) outside %dx%d table", state, action, t.states, t.actions))
	}
	return state*t.actions + action
}

// StateHeader is the first column title of brain dumps.
const StateHeader = "State(HasFood_TimeSinceLstPherDrp_HomeLike_TargetLike)"

// WriteCSV dumps one row per state labelled by stateLabels, one column per action.
func (t *Table) WriteCSV(w io.Writer, stateLabels, actionNames []string) error {
	if len(stateLabels) != t.states {
		return fmt.Errorf("expected %d state labels, got %d", t.states, len(stateLabels))
	}
	if len(actionNames) != t.actions {
		return fmt.Errorf("expected %d action names, got %d", t.actions, len(actionNames))
	}
	writer := csv.NewWriter(w)
	if err := writer.Write(append([]string{StateHeader}, actionNames...)); err != nil {
		return err
	}
	row := make([]string, t.actions+1)
	for s := 0; s < t.states; s++ {
		row[0] = stateLabels[s]
		for a := 0; a < t.actions; a++ {
			row[a+1] = strconv.FormatFloat(t.Get(s, a), 'f', -1, 64)
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// ReadCSV parses a WriteCSV dump back into a table. Labels are not checked; rows are taken
// in file order.
func ReadCSV(r io.Reader) (*Table, error) {
	rows, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("brain csv has no states")
	}
	if rows[0][0] != StateHeader {
		return nil, fmt.Errorf("unexpected brain csv header %q", rows[0][0])
	}
	table, err := NewTable(len(rows)-1, len(rows[0])-1)
	if err != nil {
		return nil, err
	}
	for s, row := range rows[1:] {
		for a, field := range row[1:] {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("state %d action %d: %w", s, a, err)
			}
			table.Set(s, a, v)
		}
	}
	return table, nil
}
