package ant

import (
	"antcolony/internal/geom"
)

// Label names the leg of the round trip an ant last committed to.
type Label string

const (
	SearchFood Label = "Search_Food"
	SearchHome Label = "Search_Home"
)

// Ant is a single forager. Its position only changes through MoveBy and MoveTo.
type Ant struct {
	id        int
	position  geom.Vec
	direction geom.Direction

	carrying       bool
	stepsSinceDrop int
	state          State
	label          Label

	totalFood          int
	averageStepsToFood float64
	dropAmount         float64
}

func New(id int, position geom.Vec, direction geom.Direction, dropAmount float64) *Ant {
	return &Ant{
		id:                 id,
		position:           position,
		direction:          direction,
		dropAmount:         dropAmount,
		averageStepsToFood: -1,
	}
}

func (a *Ant) ID() int {
	return a.id
}

func (a *Ant) Position() geom.Vec {
	return a.position
}

// MoveBy translates the ant in place.
func (a *Ant) MoveBy(delta geom.Vec) {
	a.position = a.position.Add(delta)
}

// MoveTo relocates the ant in place.
func (a *Ant) MoveTo(cell geom.Vec) {
	a.MoveBy(cell.Sub(a.position))
}

func (a *Ant) Direction() geom.Direction {
	return a.direction
}

func (a *Ant) Face(d geom.Direction) {
	a.direction = d
}

// TurnAround reverses the facing by 180 degrees.
func (a *Ant) TurnAround() {
	a.direction = a.direction.Reverse()
}

func (a *Ant) Carrying() bool {
	return a.carrying
}

func (a *Ant) SetCarrying(carrying bool) {
	a.carrying = carrying
}

func (a *Ant) StepsSinceDrop() int {
	return a.stepsSinceDrop
}

// State is the most recently sensed state.
func (a *Ant) State() State {
	return a.state
}

func (a *Ant) Label() Label {
	return a.label
}

func (a *Ant) TotalFood() int {
	return a.totalFood
}

// AverageStepsToFood is (tick+1)/TotalFood as of the last transition, or -1 before any food.
func (a *Ant) AverageStepsToFood() float64 {
	return a.averageStepsToFood
}

func (a *Ant) DropAmount() float64 {
	return a.dropAmount
}

// Reset drops any food and moves the ant in place to cell. Counters are kept.
func (a *Ant) Reset(cell geom.Vec) {
	a.carrying = false
	a.MoveTo(cell)
}
