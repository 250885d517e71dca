package ant

import (
	"fmt"

	"antcolony/internal/geom"
	"antcolony/internal/pheromone"
	"antcolony/internal/world"
)

// Likeness is how strongly cell resembles the zone a trail leads to, in [0,1].
func Likeness(w *world.World, trail pheromone.Trail, cell geom.Vec) float64 {
	if w.Zone(trail).Contains(cell) {
		return 1
	}
	field := w.Field(trail)
	return field.Read(cell) / field.Cap()
}

// Sense computes the discrete state of a at its current cell without changing anything.
func Sense(w *world.World, a *Ant) (State, error) {
	cell := a.Position()
	if !w.InBounds(cell) {
		return 0, fmt.Errorf("%w: ant %d at %s is off-grid", ErrStateEncoding, a.ID(), cell)
	}
	home, err := Bucket(Likeness(w, pheromone.Home, cell))
	if err != nil {
		return 0, fmt.Errorf("ant %d home likeness: %w", a.ID(), err)
	}
	target, err := Bucket(Likeness(w, pheromone.Target, cell))
	if err != nil {
		return 0, fmt.Errorf("ant %d target likeness: %w", a.ID(), err)
	}
	return Encode(Observation{
		Carrying:       a.Carrying(),
		StepsSinceDrop: a.StepsSinceDrop(),
		HomeBucket:     home,
		TargetBucket:   target,
	})
}

// SenseState senses and remembers the state as the ant's current one.
func (a *Ant) SenseState(w *world.World) (State, error) {
	s, err := Sense(w, a)
	if err != nil {
		return 0, err
	}
	a.state = s
	return s, nil
}
