package qlearn

import (
	"fmt"
	"math"
	"math/rand"
)

type Config struct {
	MinExploration   float64 `json:"min_exploration" yaml:"min_exploration"`
	ExplorationRate  float64 `json:"exploration_rate" yaml:"exploration_rate"`
	ExplorationDecay float64 `json:"exploration_decay" yaml:"exploration_decay"`
	LearningRate     float64 `json:"learning_rate" yaml:"learning_rate"`
	DiscountedReturn float64 `json:"discounted_return" yaml:"discounted_return"`
}

func DefaultConfig() Config {
	return Config{
		MinExploration:   0.05,
		ExplorationRate:  0.9,
		ExplorationDecay: 0.0001,
		LearningRate:     0.4,
		DiscountedReturn: 0.85,
	}
}

func (c Config) Validate() error {
	for _, p := range []struct {
		name  string
		value float64
	}{
		{"min exploration", c.MinExploration},
		{"exploration rate", c.ExplorationRate},
		{"exploration decay", c.ExplorationDecay},
		{"learning rate", c.LearningRate},
		{"discounted return", c.DiscountedReturn},
	} {
		if math.IsNaN(p.value) || p.value < 0 || p.value > 1 {
			return fmt.Errorf("%s must be in [0,1], got %v", p.name, p.value)
		}
	}
	if c.MinExploration > c.ExplorationRate {
		return fmt.Errorf("min exploration %v exceeds exploration rate %v", c.MinExploration, c.ExplorationRate)
	}
	return nil
}

// Agent is an epsilon-greedy Q-learner over a dense Table.
type Agent struct {
	cfg         Config
	table       *Table
	rng         *rand.Rand
	exploration float64
	updates     int
}

func NewAgent(cfg Config, table *Table, rng *rand.Rand) (*Agent, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if table == nil {
		return nil, fmt.Errorf("table is required")
	}
	if rng == nil {
		return nil, fmt.Errorf("rng is required")
	}
	return &Agent{cfg: cfg, table: table, rng: rng, exploration: cfg.ExplorationRate}, nil
}

func (a *Agent) Table() *Table {
	return a.table
}

// Exploration is the current probability of a random action.
func (a *Agent) Exploration() float64 {
	return a.exploration
}

func (a *Agent) Updates() int {
	return a.updates
}

// SelectAction explores with the current exploration probability, else exploits.
func (a *Agent) SelectAction(state int) int {
	if a.rng.Float64() < a.exploration {
		return a.rng.Intn(a.table.Actions())
	}
	return a.table.Best(state)
}

// Update applies Q(s,a) += alpha * (r + gamma * max Q(s') - Q(s,a)) and then decays
// exploration towards its floor.
func (a *Agent) Update(state, action int, reward float64, next int) {
	current := a.table.Get(state, action)
	target := reward + a.cfg.DiscountedReturn*a.table.Max(next)
	a.table.Set(state, action, current+a.cfg.LearningRate*(target-current))

	a.exploration *= 1 - a.cfg.ExplorationDecay
	if a.exploration < a.cfg.MinExploration {
		a.exploration = a.cfg.MinExploration
	}
	a.updates++
}

// SetExploration restores a saved exploration probability, clamped to [MinExploration, 1].
func (a *Agent) SetExploration(e float64) {
	if math.IsNaN(e) || e > 1 {
		e = 1
	}
	if e < a.cfg.MinExploration {
		e = a.cfg.MinExploration
	}
	a.exploration = e
}
