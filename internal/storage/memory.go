package storage

import (
	"context"
	"errors"
	"sort"
	"sync"

	"antcolony/internal/model"
)

var errNotInitialized = errors.New("store is not initialized")

type brainKey struct {
	runID string
	ant   int
}

type MemoryStore struct {
	mu          sync.RWMutex
	initialized bool
	runs        map[string]model.Run
	brains      map[brainKey]model.Brain
	cumulative  map[string]model.Cumulative
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.initialized = true
	s.runs = make(map[string]model.Run)
	s.brains = make(map[brainKey]model.Brain)
	s.cumulative = make(map[string]model.Cumulative)
	return nil
}

func (s *MemoryStore) SaveRun(_ context.Context, run model.Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return errNotInitialized
	}
	run.FoodPerAnt = append([]int(nil), run.FoodPerAnt...)
	s.runs[run.ID] = run
	return nil
}

func (s *MemoryStore) GetRun(_ context.Context, id string) (model.Run, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.initialized {
		return model.Run{}, false, errNotInitialized
	}
	run, ok := s.runs[id]
	if !ok {
		return model.Run{}, false, nil
	}
	run.FoodPerAnt = append([]int(nil), run.FoodPerAnt...)
	return run, true, nil
}

// ListRuns returns every run, newest first.
func (s *MemoryStore) ListRuns(_ context.Context) ([]model.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.initialized {
		return nil, errNotInitialized
	}
	runs := make([]model.Run, 0, len(s.runs))
	for _, run := range s.runs {
		run.FoodPerAnt = append([]int(nil), run.FoodPerAnt...)
		runs = append(runs, run)
	}
	sortRuns(runs)
	return runs, nil
}

func (s *MemoryStore) SaveBrain(_ context.Context, brain model.Brain) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return errNotInitialized
	}
	brain.Values = append([]float64(nil), brain.Values...)
	s.brains[brainKey{runID: brain.RunID, ant: brain.Ant}] = brain
	return nil
}

func (s *MemoryStore) GetBrain(_ context.Context, runID string, ant int) (model.Brain, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.initialized {
		return model.Brain{}, false, errNotInitialized
	}
	brain, ok := s.brains[brainKey{runID: runID, ant: ant}]
	if !ok {
		return model.Brain{}, false, nil
	}
	brain.Values = append([]float64(nil), brain.Values...)
	return brain, true, nil
}

// ListBrains returns the brains of a run in ant order.
func (s *MemoryStore) ListBrains(_ context.Context, runID string) ([]model.Brain, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.initialized {
		return nil, errNotInitialized
	}
	brains := make([]model.Brain, 0)
	for key, brain := range s.brains {
		if key.runID != runID {
			continue
		}
		brain.Values = append([]float64(nil), brain.Values...)
		brains = append(brains, brain)
	}
	sort.Slice(brains, func(i, j int) bool { return brains[i].Ant < brains[j].Ant })
	return brains, nil
}

func (s *MemoryStore) SaveCumulative(_ context.Context, cumulative model.Cumulative) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return errNotInitialized
	}
	cumulative.Entries = append([]model.CumulativeEntry(nil), cumulative.Entries...)
	s.cumulative[cumulative.RunID] = cumulative
	return nil
}

func (s *MemoryStore) GetCumulative(_ context.Context, runID string) (model.Cumulative, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.initialized {
		return model.Cumulative{}, false, errNotInitialized
	}
	cumulative, ok := s.cumulative[runID]
	if !ok {
		return model.Cumulative{}, false, nil
	}
	cumulative.Entries = append([]model.CumulativeEntry(nil), cumulative.Entries...)
	return cumulative, true, nil
}

func sortRuns(runs []model.Run) {
	sort.Slice(runs, func(i, j int) bool {
		if runs[i].CreatedAtUTC == runs[j].CreatedAtUTC {
			return runs[i].ID < runs[j].ID
		}
		return runs[i].CreatedAtUTC > runs[j].CreatedAtUTC
	})
}
