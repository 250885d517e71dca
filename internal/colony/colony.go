package colony

import (
	"context"
	"errors"
	"fmt"
	"math/rand"

	"antcolony/internal/ant"
	"antcolony/internal/geom"
	"antcolony/internal/world"
)

var ErrFinished = errors.New("colony finished")

// StepRecord is what one ant did during one tick.
type StepRecord struct {
	Tick int
	Ant  int
	ant.Step
	From          geom.Vec
	To            geom.Vec
	Label         ant.Label
	FoodCollected bool
}

// TickSummary aggregates one tick over every ant.
type TickSummary struct {
	Tick    int
	Food    []int
	Actions [ant.NumActions]int
	Reset   bool
}

// FoodTotal is the number of deliveries during the tick.
func (s TickSummary) FoodTotal() int {
	total := 0
	for _, f := range s.Food {
		total += f
	}
	return total
}

// Observer receives every step record followed by the tick summary.
type Observer interface {
	ObserveStep(StepRecord)
	ObserveTick(TickSummary)
}

// Options carries collaborators. Nil Learners gives every ant its own Brain.
type Options struct {
	Learners  []ant.Learner
	Observers []Observer
}

// Colony runs the per-tick loop over a world and its ants. It is not safe for concurrent use.
type Colony struct {
	cfg       Config
	world     *world.World
	ants      []*ant.Ant
	learners  []ant.Learner
	observers []Observer
	rng       *rand.Rand
	tick      int
}

func New(cfg Config, opts Options) (*Colony, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if opts.Learners != nil && len(opts.Learners) != cfg.Ants {
		return nil, fmt.Errorf("%w: %d learners for %d ants", ErrConfiguration, len(opts.Learners), cfg.Ants)
	}
	w, err := world.New(cfg.Layout(), cfg.Pheromone, cfg.Pheromone)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	c := &Colony{
		cfg:       cfg,
		world:     w,
		ants:      make([]*ant.Ant, cfg.Ants),
		learners:  make([]ant.Learner, cfg.Ants),
		observers: append([]Observer(nil), opts.Observers...),
		rng:       rng,
	}
	compass := geom.Compass()
	for i := range c.ants {
		c.ants[i] = ant.New(i, w.Home().RandomCell(rng), compass[rng.Intn(len(compass))], cfg.DropAmount)
		if opts.Learners != nil {
			if opts.Learners[i] == nil {
				return nil, fmt.Errorf("%w: learner %d is nil", ErrConfiguration, i)
			}
			c.learners[i] = opts.Learners[i]
			continue
		}
		brain, err := NewBrain(cfg.Learner, rng)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
		}
		c.learners[i] = brain
	}
	return c, nil
}

func (c *Colony) Config() Config {
	return c.cfg
}

func (c *Colony) World() *world.World {
	return c.world
}

// Ants returns the ants in processing order.
func (c *Colony) Ants() []*ant.Ant {
	return append([]*ant.Ant(nil), c.ants...)
}

func (c *Colony) Learner(i int) ant.Learner {
	return c.learners[i]
}

// Brain returns the tabular learner of ant i, if it has one.
func (c *Colony) Brain(i int) (*Brain, bool) {
	b, ok := c.learners[i].(*Brain)
	return b, ok
}

// Tick is the number of ticks run so far.
func (c *Colony) Tick() int {
	return c.tick
}

func (c *Colony) Done() bool {
	return c.tick >= c.cfg.MaxSteps
}

func (c *Colony) AddObserver(o Observer) {
	c.observers = append(c.observers, o)
}

// Step runs one tick: every ant in index order, then one field evolution.
func (c *Colony) Step() (TickSummary, error) {
	if c.Done() {
		return TickSummary{}, ErrFinished
	}
	summary := TickSummary{Tick: c.tick, Food: make([]int, len(c.ants))}
	for i, a := range c.ants {
		record, err := c.stepAnt(i, a)
		if err != nil {
			return summary, fmt.Errorf("tick %d: %w", c.tick, err)
		}
		summary.Actions[record.Action]++
		if record.FoodCollected {
			summary.Food[i] = 1
		}
		for _, o := range c.observers {
			o.ObserveStep(record)
		}
	}
	c.world.Evolve()
	c.tick++

	if c.cfg.ResetInterval > 0 && c.tick%c.cfg.ResetInterval == 0 && !c.Done() {
		c.Reset()
		summary.Reset = true
	}
	for _, o := range c.observers {
		o.ObserveTick(summary)
	}
	return summary, nil
}

func (c *Colony) stepAnt(i int, a *ant.Ant) (StepRecord, error) {
	pre, err := a.SenseState(c.world)
	if err != nil {
		return StepRecord{}, err
	}
	action := c.learners[i].SelectAction(pre)
	if !action.Valid() {
		return StepRecord{}, fmt.Errorf("ant %d: learner chose invalid action %d", i, int(action))
	}
	move, err := a.Execute(c.world, c.rng, action)
	if err != nil {
		return StepRecord{}, err
	}
	post, err := a.SenseState(c.world)
	if err != nil {
		return StepRecord{}, err
	}
	outcome := a.Transition(c.world, c.cfg.Rewards, action, c.tick)
	if c.cfg.Learning {
		c.learners[i].Learn(pre, action, outcome.Reward, post)
	}
	return StepRecord{
		Tick: c.tick,
		Ant:  i,
		Step: ant.Step{
			State:  pre,
			Action: action,
			Reward: outcome.Reward,
			Next:   post,
		},
		From:          move.From,
		To:            move.To,
		Label:         outcome.Label,
		FoodCollected: outcome.FoodCollected,
	}, nil
}

// Run steps until MaxSteps ticks have run or ctx is cancelled.
func (c *Colony) Run(ctx context.Context) error {
	for !c.Done() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := c.Step(); err != nil {
			return err
		}
	}
	return nil
}

// Reset drops all food, moves every ant to a random home cell and zeroes the fields.
// Learners and counters are kept.
func (c *Colony) Reset() {
	for _, a := range c.ants {
		a.Reset(c.world.Home().RandomCell(c.rng))
	}
	c.world.ResetFields()
}
