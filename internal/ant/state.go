package ant

import (
	"errors"
	"fmt"
	"math"
)

// Action is one of the five behaviours an ant can choose. The order is stable and is used
// as the column index in learner tables and action histograms.
type Action int

const (
	MoveRandom Action = iota
	GoHome
	GoTarget
	DropHome
	DropTarget
)

const NumActions = 5

var actionNames = [NumActions]string{"move_random", "go_home", "go_target", "drop_home", "drop_target"}

// Actions lists every action in index order.
func Actions() []Action {
	return []Action{MoveRandom, GoHome, GoTarget, DropHome, DropTarget}
}

// ActionNames lists the action labels in index order.
func ActionNames() []string {
	return append([]string(nil), actionNames[:]...)
}

func (a Action) Valid() bool {
	return a >= 0 && a < NumActions
}

func (a Action) String() string {
	if !a.Valid() {
		return fmt.Sprintf("action(%d)", int(a))
	}
	return actionNames[a]
}

// IsDrop reports whether the action deposits pheromone.
func (a Action) IsDrop() bool {
	return a == DropHome || a == DropTarget
}

func ParseAction(name string) (Action, error) {
	for i, n := range actionNames {
		if n == name {
			return Action(i), nil
		}
	}
	return 0, fmt.Errorf("unknown action %q", name)
}

const (
	// DropCycle is the period of the steps-since-drop counter.
	DropCycle = 5
	// Buckets is the number of likeness levels per trail.
	Buckets = 10
	// NumStates is the size of the discrete state space.
	NumStates = 2 * DropCycle * Buckets * Buckets
)

var ErrStateEncoding = errors.New("state encoding out of range")

// State packs carrying, steps-since-drop, home bucket and target bucket into [0, NumStates).
type State int

// Observation is the unpacked form of a State.
type Observation struct {
	Carrying       bool
	StepsSinceDrop int
	HomeBucket     int
	TargetBucket   int
}

// Encode packs obs. Any sub-field outside its range is an invariant violation.
func Encode(obs Observation) (State, error) {
	if obs.StepsSinceDrop < 0 || obs.StepsSinceDrop >= DropCycle {
		return 0, fmt.Errorf("%w: steps since drop %d", ErrStateEncoding, obs.StepsSinceDrop)
	}
	if obs.HomeBucket < 0 || obs.HomeBucket >= Buckets {
		return 0, fmt.Errorf("%w: home bucket %d", ErrStateEncoding, obs.HomeBucket)
	}
	if obs.TargetBucket < 0 || obs.TargetBucket >= Buckets {
		return 0, fmt.Errorf("%w: target bucket %d", ErrStateEncoding, obs.TargetBucket)
	}
	carry := 0
	if obs.Carrying {
		carry = 1
	}
	s := State(((carry*DropCycle+obs.StepsSinceDrop)*Buckets+obs.HomeBucket)*Buckets + obs.TargetBucket)
	return s, nil
}

func (s State) Valid() bool {
	return s >= 0 && s < NumStates
}

// Decode unpacks s. s must be valid.
func (s State) Decode() Observation {
	v := int(s)
	target := v % Buckets
	v /= Buckets
	home := v % Buckets
	v /= Buckets
	steps := v % DropCycle
	v /= DropCycle
	return Observation{Carrying: v == 1, StepsSinceDrop: steps, HomeBucket: home, TargetBucket: target}
}

// String renders the log key HasFood_StepsSinceDrop_HomeBucket_TargetBucket, e.g. True_3_9_0.
func (s State) String() string {
	if !s.Valid() {
		return fmt.Sprintf("state(%d)", int(s))
	}
	obs := s.Decode()
	carrying := "False"
	if obs.Carrying {
		carrying = "True"
	}
	return fmt.Sprintf("%s_%d_%d_%d", carrying, obs.StepsSinceDrop, obs.HomeBucket, obs.TargetBucket)
}

// StateLabels returns the log key of every state, indexed by State.
func StateLabels() []string {
	labels := make([]string, NumStates)
	for i := range labels {
		labels[i] = State(i).String()
	}
	return labels
}

// Bucket quantizes a likeness in [0,1] to [0, Buckets).
func Bucket(likeness float64) (int, error) {
	if math.IsNaN(likeness) {
		return 0, fmt.Errorf("%w: likeness is NaN", ErrStateEncoding)
	}
	b := int(math.Round(likeness * (Buckets - 1)))
	if b < 0 || b >= Buckets {
		return 0, fmt.Errorf("%w: likeness %v maps to bucket %d", ErrStateEncoding, likeness, b)
	}
	return b, nil
}
