package ant

import (
	"fmt"
	"math/rand"

	"antcolony/internal/geom"
	"antcolony/internal/pheromone"
	"antcolony/internal/world"
)

// Move describes where an action left the ant.
type Move struct {
	From      geom.Vec
	To        geom.Vec
	Facing    geom.Direction
	Deposited float64
}

// Moved reports whether the ant changed cell.
func (m Move) Moved() bool {
	return m.From != m.To
}

// Execute applies the effects of action. Random choices draw from rng only.
func (a *Ant) Execute(w *world.World, rng *rand.Rand, action Action) (Move, error) {
	move := Move{From: a.position}
	switch action {
	case MoveRandom:
		compass := geom.Compass()
		a.Face(compass[rng.Intn(len(compass))])
		a.stepForward(w)
	case GoHome:
		a.seek(w, rng, pheromone.Home)
	case GoTarget:
		a.seek(w, rng, pheromone.Target)
	case DropHome:
		if err := w.Field(pheromone.Home).Deposit(a.position, a.dropAmount); err != nil {
			return move, fmt.Errorf("ant %d drop home: %w", a.id, err)
		}
		move.Deposited = a.dropAmount
	case DropTarget:
		if err := w.Field(pheromone.Target).Deposit(a.position, a.dropAmount); err != nil {
			return move, fmt.Errorf("ant %d drop target: %w", a.id, err)
		}
		move.Deposited = a.dropAmount
	default:
		return move, fmt.Errorf("ant %d: unknown action %d", a.id, int(action))
	}
	move.To = a.position
	move.Facing = a.direction
	return move, nil
}

// stepForward moves one cell along the facing. A step that would leave the grid is refused
// and the ant turns around instead.
func (a *Ant) stepForward(w *world.World) {
	next := a.position.Add(a.direction.Vec())
	if !w.InBounds(next) {
		a.TurnAround()
		return
	}
	a.MoveBy(a.direction.Vec())
}

// seek hill-climbs the trail over the three forward cells. Cells of the destination zone
// win outright; otherwise the highest reading wins, with ties kept. The final pick among
// candidates is uniform. With no in-bounds forward cell the ant turns around in place.
func (a *Ant) seek(w *world.World, rng *rand.Rand, trail pheromone.Trail) {
	candidates := ForwardCandidates(w, trail, a.position, a.direction)
	if len(candidates) == 0 {
		a.TurnAround()
		return
	}
	a.Face(candidates[rng.Intn(len(candidates))])
	a.MoveBy(a.direction.Vec())
}

// ForwardCandidates returns the facings tied for the best forward cell, probed in
// forward-left, forward, forward-right order.
func ForwardCandidates(w *world.World, trail pheromone.Trail, from geom.Vec, facing geom.Direction) []geom.Direction {
	zone := w.Zone(trail)
	field := w.Field(trail)

	var (
		inZone []geom.Direction
		best   []geom.Direction
		peak   = 0.0
	)
	for _, d := range []geom.Direction{facing.Left(), facing, facing.Right()} {
		cell := from.Add(d.Vec())
		if !w.InBounds(cell) {
			continue
		}
		if zone.Contains(cell) {
			inZone = append(inZone, d)
			continue
		}
		if len(inZone) > 0 {
			continue
		}
		reading := field.Read(cell)
		switch {
		case reading > peak:
			peak = reading
			best = []geom.Direction{d}
		case reading == peak:
			best = append(best, d)
		}
	}
	if len(inZone) > 0 {
		return inZone
	}
	return best
}
