package ant

import (
	"errors"
	"testing"

	"antcolony/internal/geom"
	"antcolony/internal/pheromone"
)

func TestEncodeIsTotalAndInjective(t *testing.T) {
	seen := make(map[State]Observation, NumStates)
	for _, carrying := range []bool{false, true} {
		for steps := 0; steps < DropCycle; steps++ {
			for home := 0; home < Buckets; home++ {
				for target := 0; target < Buckets; target++ {
					obs := Observation{Carrying: carrying, StepsSinceDrop: steps, HomeBucket: home, TargetBucket: target}
					s, err := Encode(obs)
					if err != nil {
						t.Fatalf("encode %+v: %v", obs, err)
					}
					if !s.Valid() {
						t.Fatalf("state %d outside space", s)
					}
					if prev, dup := seen[s]; dup {
						t.Fatalf("state %d produced by %+v and %+v", s, prev, obs)
					}
					seen[s] = obs
					if got := s.Decode(); got != obs {
						t.Fatalf("decode %d: expected %+v, got %+v", s, obs, got)
					}
				}
			}
		}
	}
	if len(seen) != NumStates || NumStates != 1000 {
		t.Fatalf("expected 1000 states, got %d (NumStates=%d)", len(seen), NumStates)
	}
}

func TestEncodeRejectsOutOfRange(t *testing.T) {
	bad := []Observation{
		{StepsSinceDrop: DropCycle},
		{StepsSinceDrop: -1},
		{HomeBucket: Buckets},
		{TargetBucket: -1},
	}
	for _, obs := range bad {
		if _, err := Encode(obs); !errors.Is(err, ErrStateEncoding) {
			t.Fatalf("expected ErrStateEncoding for %+v, got %v", obs, err)
		}
	}
}

func TestBucketCoversRange(t *testing.T) {
	cases := map[float64]int{0: 0, 1: 9, 0.5: 5, 1.0 / 9: 1, 0.05: 0, 0.95: 9}
	for likeness, want := range cases {
		got, err := Bucket(likeness)
		if err != nil {
			t.Fatalf("bucket %v: %v", likeness, err)
		}
		if got != want {
			t.Fatalf("bucket %v: expected %d, got %d", likeness, want, got)
		}
	}
	for _, bad := range []float64{-0.2, 1.2} {
		if _, err := Bucket(bad); !errors.Is(err, ErrStateEncoding) {
			t.Fatalf("expected ErrStateEncoding for %v, got %v", bad, err)
		}
	}
}

func TestStateStringFormat(t *testing.T) {
	s, err := Encode(Observation{Carrying: true, StepsSinceDrop: 3, HomeBucket: 9, TargetBucket: 0})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if s.String() != "True_3_9_0" {
		t.Fatalf("expected True_3_9_0, got %s", s)
	}
	labels := StateLabels()
	if labels[0] != "False_0_0_0" || labels[NumStates-1] != "True_4_9_9" {
		t.Fatalf("unexpected label bounds %s %s", labels[0], labels[NumStates-1])
	}
}

func TestActionNamesAndParse(t *testing.T) {
	names := ActionNames()
	if len(names) != NumActions {
		t.Fatalf("expected %d names, got %d", NumActions, len(names))
	}
	for _, a := range Actions() {
		got, err := ParseAction(a.String())
		if err != nil || got != a {
			t.Fatalf("parse %s: got %v err=%v", a, got, err)
		}
	}
	if _, err := ParseAction("fly"); err == nil {
		t.Fatal("expected unknown action error")
	}
	if !DropHome.IsDrop() || !DropTarget.IsDrop() || GoHome.IsDrop() {
		t.Fatal("drop classification mismatch")
	}
}

func TestEveryStateReachableBySensing(t *testing.T) {
	w := newTestWorld(t)
	cell := geom.Vec{X: 3, Y: 3}
	reached := make(map[State]bool, NumStates)
	for home := 0; home < Buckets; home++ {
		for target := 0; target < Buckets; target++ {
			setCell(t, w.Field(pheromone.Home), cell, float64(home)/(Buckets-1))
			setCell(t, w.Field(pheromone.Target), cell, float64(target)/(Buckets-1))
			for _, carrying := range []bool{false, true} {
				for steps := 0; steps < DropCycle; steps++ {
					a := New(0, cell, geom.North, 0.05)
					a.carrying = carrying
					a.stepsSinceDrop = steps
					s, err := Sense(w, a)
					if err != nil {
						t.Fatalf("sense: %v", err)
					}
					want, _ := Encode(Observation{Carrying: carrying, StepsSinceDrop: steps, HomeBucket: home, TargetBucket: target})
					if s != want {
						t.Fatalf("expected %s, got %s", want, s)
					}
					reached[s] = true
				}
			}
		}
	}
	if len(reached) != NumStates {
		t.Fatalf("expected all %d states reachable, got %d", NumStates, len(reached))
	}
}
