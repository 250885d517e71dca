package ant

import (
	"antcolony/internal/world"
)

// Rewards holds the reward for every zone outcome.
type Rewards struct {
	DeliverFood float64 `json:"deliver_food" yaml:"deliver_food"`
	HomeEmpty   float64 `json:"home_empty" yaml:"home_empty"`
	TargetFull  float64 `json:"target_full" yaml:"target_full"`
	PickupFood  float64 `json:"pickup_food" yaml:"pickup_food"`
	Wander      float64 `json:"wander" yaml:"wander"`
}

func DefaultRewards() Rewards {
	return Rewards{
		DeliverFood: 100,
		HomeEmpty:   -5,
		TargetFull:  -5,
		PickupFood:  5,
		Wander:      -1,
	}
}

// Outcome is the result of one transition.
type Outcome struct {
	Reward        float64
	FoodCollected bool
	Label         Label
}

// Transition applies the zone rule for the ant's current cell after it acted during tick.
// It updates carrying, facing, counters and the drop cycle.
func (a *Ant) Transition(w *world.World, rewards Rewards, action Action, tick int) Outcome {
	if action.IsDrop() {
		a.stepsSinceDrop = 0
	} else {
		a.stepsSinceDrop = (a.stepsSinceDrop + 1) % DropCycle
	}

	var out Outcome
	switch cell := a.position; {
	case w.Home().Contains(cell):
		a.TurnAround()
		if a.carrying {
			out.Reward = rewards.DeliverFood
			out.FoodCollected = true
			a.carrying = false
			a.totalFood++
		} else {
			out.Reward = rewards.HomeEmpty
		}
		a.label = SearchFood
	case w.Target().Contains(cell):
		a.TurnAround()
		if a.carrying {
			out.Reward = rewards.TargetFull
		} else {
			out.Reward = rewards.PickupFood
			a.carrying = true
		}
		a.label = SearchHome
	default:
		out.Reward = rewards.Wander
		if a.label == "" {
			a.label = SearchFood
		}
	}
	out.Label = a.label

	if a.totalFood > 0 {
		a.averageStepsToFood = float64(tick+1) / float64(a.totalFood)
	} else {
		a.averageStepsToFood = -1
	}
	return out
}
