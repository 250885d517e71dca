package colony

import (
	"errors"
	"fmt"
	"math"

	"antcolony/internal/ant"
	"antcolony/internal/geom"
	"antcolony/internal/pheromone"
	"antcolony/internal/qlearn"
	"antcolony/internal/world"
)

var ErrConfiguration = errors.New("invalid configuration")

// ZoneConfig is a square block of cells with its top-left corner at (X, Y).
type ZoneConfig struct {
	X    int `json:"x" yaml:"x"`
	Y    int `json:"y" yaml:"y"`
	Size int `json:"size" yaml:"size"`
}

func (z ZoneConfig) Cells() []geom.Vec {
	return world.SquareZone("", geom.Vec{X: z.X, Y: z.Y}, z.Size).Cells()
}

type Config struct {
	Name          string           `json:"name" yaml:"name"`
	Ants          int              `json:"ants" yaml:"ants"`
	Cols          int              `json:"cols" yaml:"cols"`
	Rows          int              `json:"rows" yaml:"rows"`
	Home          ZoneConfig       `json:"home" yaml:"home"`
	Target        ZoneConfig       `json:"target" yaml:"target"`
	Pheromone     pheromone.Params `json:"pheromone" yaml:"pheromone"`
	DropAmount    float64          `json:"drop_amount" yaml:"drop_amount"`
	MaxSteps      int              `json:"max_steps" yaml:"max_steps"`
	Learner       qlearn.Config    `json:"learner" yaml:"learner"`
	Rewards       ant.Rewards      `json:"rewards" yaml:"rewards"`
	Seed          int64            `json:"seed" yaml:"seed"`
	Learning      bool             `json:"learning" yaml:"learning"`
	Log           bool             `json:"log" yaml:"log"`
	ResetInterval int              `json:"reset_interval" yaml:"reset_interval"`
}

func DefaultConfig() Config {
	return Config{
		Name:   "Test",
		Ants:   30,
		Cols:   30,
		Rows:   30,
		Home:   ZoneConfig{X: 15, Y: 15, Size: 2},
		Target: ZoneConfig{X: 10, Y: 10, Size: 2},
		Pheromone: pheromone.Params{
			Cap:            1,
			DecayRate:      0.03,
			DispersionRate: 0.1,
		},
		DropAmount: 0.05,
		MaxSteps:   80000,
		Learner:    qlearn.DefaultConfig(),
		Rewards:    ant.DefaultRewards(),
		Seed:       12345,
		Learning:   true,
		Log:        true,
	}
}

// Layout is the world geometry the config describes.
func (c Config) Layout() world.Layout {
	return world.Layout{
		Bounds: geom.Bounds{Cols: c.Cols, Rows: c.Rows},
		Home:   c.Home.Cells(),
		Target: c.Target.Cells(),
	}
}

// Validate wraps every violation in ErrConfiguration.
func (c Config) Validate() error {
	if c.Ants < 1 {
		return fmt.Errorf("%w: ants must be >= 1, got %d", ErrConfiguration, c.Ants)
	}
	for _, z := range []struct {
		name string
		zone ZoneConfig
	}{{"home", c.Home}, {"target", c.Target}} {
		if z.zone.Size < 1 {
			return fmt.Errorf("%w: %s zone size must be >= 1, got %d", ErrConfiguration, z.name, z.zone.Size)
		}
	}
	if err := c.Layout().Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrConfiguration, err)
	}
	if err := c.Pheromone.Validate(); err != nil {
		return fmt.Errorf("%w: pheromone: %v", ErrConfiguration, err)
	}
	if math.IsNaN(c.DropAmount) || math.IsInf(c.DropAmount, 0) || c.DropAmount < 0 {
		return fmt.Errorf("%w: drop amount must be a finite value >= 0, got %v", ErrConfiguration, c.DropAmount)
	}
	if c.MaxSteps < 0 {
		return fmt.Errorf("%w: max steps must be >= 0, got %d", ErrConfiguration, c.MaxSteps)
	}
	if c.ResetInterval < 0 {
		return fmt.Errorf("%w: reset interval must be >= 0, got %d", ErrConfiguration, c.ResetInterval)
	}
	if err := c.Learner.Validate(); err != nil {
		return fmt.Errorf("%w: learner: %v", ErrConfiguration, err)
	}
	for name, v := range map[string]float64{
		"deliver_food": c.Rewards.DeliverFood,
		"home_empty":   c.Rewards.HomeEmpty,
		"target_full":  c.Rewards.TargetFull,
		"pickup_food":  c.Rewards.PickupFood,
		"wander":       c.Rewards.Wander,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: reward %s must be finite, got %v", ErrConfiguration, name, v)
		}
	}
	return nil
}
