package storage

import (
	"context"
	"testing"

	"antcolony/internal/model"
)

// exerciseStore runs the round trips every backend must support.
func exerciseStore(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	older := model.Run{VersionedRecord: Versioned(), ID: "run-a", Ants: 2, TotalFood: 3, FoodPerAnt: []int{1, 2}, CreatedAtUTC: "2026-01-01T00:00:00Z"}
	newer := model.Run{VersionedRecord: Versioned(), ID: "run-b", Ants: 1, TotalFood: 7, FoodPerAnt: []int{7}, CreatedAtUTC: "2026-02-01T00:00:00Z"}
	for _, run := range []model.Run{older, newer} {
		if err := store.SaveRun(ctx, run); err != nil {
			t.Fatalf("save run %s: %v", run.ID, err)
		}
	}

	loaded, ok, err := store.GetRun(ctx, "run-a")
	if err != nil || !ok {
		t.Fatalf("get run: ok=%t err=%v", ok, err)
	}
	if loaded.TotalFood != 3 || len(loaded.FoodPerAnt) != 2 || loaded.FoodPerAnt[1] != 2 {
		t.Fatalf("unexpected run loaded: %+v", loaded)
	}
	if _, ok, err := store.GetRun(ctx, "missing"); ok || err != nil {
		t.Fatalf("expected missing run, got ok=%t err=%v", ok, err)
	}

	runs, err := store.ListRuns(ctx)
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(runs) != 2 || runs[0].ID != "run-b" || runs[1].ID != "run-a" {
		t.Fatalf("expected newest first, got %+v", runs)
	}

	for ant := 1; ant >= 0; ant-- {
		brain := model.Brain{
			VersionedRecord: Versioned(),
			RunID:           "run-a",
			Ant:             ant,
			States:          2,
			Actions:         2,
			Exploration:     0.5,
			Values:          []float64{float64(ant), 1, 2, 3},
		}
		if err := store.SaveBrain(ctx, brain); err != nil {
			t.Fatalf("save brain %d: %v", ant, err)
		}
	}
	brain, ok, err := store.GetBrain(ctx, "run-a", 1)
	if err != nil || !ok {
		t.Fatalf("get brain: ok=%t err=%v", ok, err)
	}
	if brain.Values[0] != 1 || brain.Exploration != 0.5 {
		t.Fatalf("unexpected brain: %+v", brain)
	}
	brains, err := store.ListBrains(ctx, "run-a")
	if err != nil {
		t.Fatalf("list brains: %v", err)
	}
	if len(brains) != 2 || brains[0].Ant != 0 || brains[1].Ant != 1 {
		t.Fatalf("expected brains in ant order, got %+v", brains)
	}
	if brains, err := store.ListBrains(ctx, "run-b"); err != nil || len(brains) != 0 {
		t.Fatalf("expected no brains for run-b, got %d err=%v", len(brains), err)
	}

	cumulative := model.Cumulative{
		VersionedRecord: Versioned(),
		RunID:           "run-a",
		Entries:         []model.CumulativeEntry{{TotalFood: 1, AverageSteps: 10}, {TotalFood: 0, AverageSteps: -1}},
	}
	if err := store.SaveCumulative(ctx, cumulative); err != nil {
		t.Fatalf("save cumulative: %v", err)
	}
	loadedCumulative, ok, err := store.GetCumulative(ctx, "run-a")
	if err != nil || !ok {
		t.Fatalf("get cumulative: ok=%t err=%v", ok, err)
	}
	if len(loadedCumulative.Entries) != 2 || loadedCumulative.Entries[1].AverageSteps != -1 {
		t.Fatalf("unexpected cumulative: %+v", loadedCumulative)
	}
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	store := NewMemoryStore()
	if err := store.Init(context.Background()); err != nil {
		t.Fatalf("init: %v", err)
	}
	exerciseStore(t, store)
}

func TestMemoryStoreCopiesOnSave(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}
	values := []float64{1, 2}
	if err := store.SaveBrain(ctx, model.Brain{VersionedRecord: Versioned(), RunID: "r", States: 1, Actions: 2, Values: values}); err != nil {
		t.Fatalf("save brain: %v", err)
	}
	values[0] = 99
	brain, _, _ := store.GetBrain(ctx, "r", 0)
	if brain.Values[0] != 1 {
		t.Fatalf("expected stored copy, got %v", brain.Values)
	}
	brain.Values[1] = 42
	again, _, _ := store.GetBrain(ctx, "r", 0)
	if again.Values[1] != 2 {
		t.Fatalf("expected returned copy, got %v", again.Values)
	}
}

func TestMemoryStoreRequiresInit(t *testing.T) {
	store := NewMemoryStore()
	if err := store.SaveRun(context.Background(), model.Run{ID: "x"}); err == nil {
		t.Fatal("expected uninitialized store error")
	}
}
