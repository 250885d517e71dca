package ant

import (
	"testing"

	"antcolony/internal/geom"
)

func TestTransitionRewardTable(t *testing.T) {
	cases := []struct {
		name         string
		cell         geom.Vec
		carrying     bool
		wantReward   float64
		wantCarrying bool
		wantFood     bool
		wantTurn     bool
		wantLabel    Label
	}{
		{"home with food", geom.Vec{X: 0, Y: 1}, true, 100, false, true, true, SearchFood},
		{"home empty", geom.Vec{X: 1, Y: 0}, false, -5, false, false, true, SearchFood},
		{"target with food", geom.Vec{X: 6, Y: 7}, true, -5, true, false, true, SearchHome},
		{"target empty", geom.Vec{X: 7, Y: 6}, false, 5, true, false, true, SearchHome},
		{"wandering", geom.Vec{X: 4, Y: 4}, true, -1, true, false, false, SearchFood},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := newTestWorld(t)
			a := New(0, tc.cell, geom.East, 0.05)
			a.carrying = tc.carrying
			out := a.Transition(w, DefaultRewards(), MoveRandom, 9)
			if out.Reward != tc.wantReward {
				t.Fatalf("expected reward %v, got %v", tc.wantReward, out.Reward)
			}
			if a.Carrying() != tc.wantCarrying {
				t.Fatalf("expected carrying=%t, got %t", tc.wantCarrying, a.Carrying())
			}
			if out.FoodCollected != tc.wantFood {
				t.Fatalf("expected food=%t, got %t", tc.wantFood, out.FoodCollected)
			}
			wantFacing := geom.East
			if tc.wantTurn {
				wantFacing = geom.West
			}
			if a.Direction() != wantFacing {
				t.Fatalf("expected facing %s, got %s", wantFacing, a.Direction())
			}
			if out.Label != tc.wantLabel || a.Label() != tc.wantLabel {
				t.Fatalf("expected label %s, got %s", tc.wantLabel, out.Label)
			}
			if a.Position() != tc.cell {
				t.Fatalf("transition must not move the ant, got %v", a.Position())
			}
		})
	}
}

func TestTransitionFoodCountersAndAverage(t *testing.T) {
	w := newTestWorld(t)
	a := New(0, geom.Vec{X: 4, Y: 4}, geom.North, 0.05)
	a.Transition(w, DefaultRewards(), GoHome, 0)
	if a.TotalFood() != 0 || a.AverageStepsToFood() != -1 {
		t.Fatalf("expected no food yet, got %d avg %v", a.TotalFood(), a.AverageStepsToFood())
	}

	a.MoveTo(geom.Vec{X: 7, Y: 7})
	a.Transition(w, DefaultRewards(), GoTarget, 4)
	a.MoveTo(geom.Vec{X: 0, Y: 0})
	a.Transition(w, DefaultRewards(), GoHome, 9)
	if a.TotalFood() != 1 || a.AverageStepsToFood() != 10 {
		t.Fatalf("expected 1 food avg 10, got %d avg %v", a.TotalFood(), a.AverageStepsToFood())
	}

	a.MoveTo(geom.Vec{X: 7, Y: 7})
	a.Transition(w, DefaultRewards(), GoTarget, 20)
	a.MoveTo(geom.Vec{X: 1, Y: 1})
	a.Transition(w, DefaultRewards(), GoHome, 29)
	if a.TotalFood() != 2 || a.AverageStepsToFood() != 15 {
		t.Fatalf("expected 2 food avg 15, got %d avg %v", a.TotalFood(), a.AverageStepsToFood())
	}
}

func TestTransitionDropCycle(t *testing.T) {
	w := newTestWorld(t)
	a := New(0, geom.Vec{X: 4, Y: 4}, geom.North, 0.05)
	want := []int{1, 2, 3, 4, 0, 1}
	for i, expected := range want {
		a.Transition(w, DefaultRewards(), GoHome, i)
		if a.StepsSinceDrop() != expected {
			t.Fatalf("step %d: expected %d, got %d", i, expected, a.StepsSinceDrop())
		}
	}
	a.Transition(w, DefaultRewards(), DropTarget, 6)
	if a.StepsSinceDrop() != 0 {
		t.Fatalf("expected reset after drop, got %d", a.StepsSinceDrop())
	}
}

func TestTransitionUsesConfiguredRewards(t *testing.T) {
	w := newTestWorld(t)
	rewards := DefaultRewards()
	rewards.Wander = -0.5
	a := New(0, geom.Vec{X: 3, Y: 3}, geom.North, 0.05)
	if out := a.Transition(w, rewards, MoveRandom, 0); out.Reward != -0.5 {
		t.Fatalf("expected -0.5, got %v", out.Reward)
	}
}
