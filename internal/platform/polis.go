package platform

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"antcolony/internal/colony"
	"antcolony/internal/model"
	"antcolony/internal/pheromone"
	"antcolony/internal/stats"
	"antcolony/internal/storage"
)

type Config struct {
	Store  storage.Store
	Logger logrus.FieldLogger
}

type StopReason string

const (
	StopReasonNormal   StopReason = "normal"
	StopReasonShutdown StopReason = "shutdown"
)

var ErrRunStopped = errors.New("run stopped")

type RunConfig struct {
	RunID         string
	Colony        colony.Config
	BatchSize     int
	ProgressEvery int
	// LogDir receives the per-ant logs when Colony.Log is set.
	LogDir        string
	WarmStartFrom string
	Observers     []colony.Observer
}

type RunResult struct {
	RunID       string
	Colony      *colony.Colony
	Batches     []stats.Batch
	Cumulative  []stats.CumulativeRow
	Exploration []float64
	Fingerprint string
	Elapsed     time.Duration
	CreatedAt   time.Time
}

// Polis owns the store and tracks active colony runs so they can be stopped by id.
type Polis struct {
	store storage.Store
	log   logrus.FieldLogger

	mu             sync.RWMutex
	started        bool
	lastStopReason StopReason
	runs           map[string]context.CancelCauseFunc
}

func NewPolis(cfg Config) *Polis {
	log := cfg.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Polis{
		store:          cfg.Store,
		log:            log,
		runs:           make(map[string]context.CancelCauseFunc),
		lastStopReason: StopReasonNormal,
	}
}

func (p *Polis) Init(ctx context.Context) error {
	if p.store == nil {
		return fmt.Errorf("store is required")
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started {
		return nil
	}
	if err := p.store.Init(ctx); err != nil {
		return err
	}
	p.started = true
	return nil
}

func (p *Polis) Store() storage.Store {
	return p.store
}

// RunColony builds a colony from cfg, runs it to MaxSteps and persists its run record,
// brains and cumulative table. Artifacts on disk are left to the caller.
func (p *Polis) RunColony(ctx context.Context, cfg RunConfig) (RunResult, error) {
	if cfg.RunID == "" {
		return RunResult{}, fmt.Errorf("run id is required")
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = stats.DefaultBatchSize
	}
	if !p.Started() {
		return RunResult{}, fmt.Errorf("polis is not initialized")
	}

	recorder, err := stats.NewBatchRecorder(cfg.BatchSize)
	if err != nil {
		return RunResult{}, err
	}
	observers := append([]colony.Observer{recorder}, cfg.Observers...)
	log := p.log.WithField("run_id", cfg.RunID)
	if cfg.ProgressEvery > 0 {
		observers = append(observers, newProgress(log, cfg.ProgressEvery, cfg.Colony.MaxSteps))
	}
	var antLog *stats.AntLog
	if cfg.Colony.Log && cfg.LogDir != "" {
		antLog, err = stats.NewAntLog(cfg.LogDir, cfg.Colony.Ants, log)
		if err != nil {
			return RunResult{}, err
		}
		defer antLog.Close()
		observers = append(observers, antLog)
	}

	c, err := colony.New(cfg.Colony, colony.Options{Observers: observers})
	if err != nil {
		return RunResult{}, err
	}
	if cfg.WarmStartFrom != "" {
		if err := p.warmStart(ctx, c, cfg.WarmStartFrom); err != nil {
			return RunResult{}, err
		}
	}

	runCtx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)
	if err := p.registerRun(cfg.RunID, cancel); err != nil {
		return RunResult{}, err
	}
	defer p.unregisterRun(cfg.RunID)

	started := time.Now()
	if err := c.Run(runCtx); err != nil {
		if cause := context.Cause(runCtx); errors.Is(cause, ErrRunStopped) {
			return RunResult{}, fmt.Errorf("%s at tick %d: %w", cfg.RunID, c.Tick(), cause)
		}
		return RunResult{}, err
	}
	if antLog != nil {
		if err := antLog.Close(); err != nil {
			log.WithError(err).Warn("closing ant logs")
		}
	}

	result := RunResult{
		RunID:       cfg.RunID,
		Colony:      c,
		Batches:     recorder.Batches(),
		Cumulative:  stats.CumulativeFromAnts(c.Ants()),
		Exploration: explorations(c),
		Fingerprint: c.Fingerprint(),
		Elapsed:     time.Since(started),
		CreatedAt:   time.Now().UTC(),
	}
	if err := p.persist(ctx, result); err != nil {
		return RunResult{}, err
	}
	log.WithFields(logrus.Fields{
		"ticks": c.Tick(),
		"food":  totalFood(result.Cumulative),
	}).Info("run complete")
	return result, nil
}

func (p *Polis) warmStart(ctx context.Context, c *colony.Colony, fromRunID string) error {
	brains, err := p.store.ListBrains(ctx, fromRunID)
	if err != nil {
		return err
	}
	if len(brains) == 0 {
		return fmt.Errorf("no brains stored for run id: %s", fromRunID)
	}
	// Ants without a stored brain start fresh.
	for _, stored := range brains {
		if stored.Ant < 0 || stored.Ant >= c.Config().Ants {
			continue
		}
		brain, ok := c.Brain(stored.Ant)
		if !ok {
			continue
		}
		if err := brain.Table().Load(stored.Values); err != nil {
			return fmt.Errorf("warm start ant %d: %w", stored.Ant, err)
		}
		brain.Agent().SetExploration(stored.Exploration)
	}
	return nil
}

func (p *Polis) persist(ctx context.Context, result RunResult) error {
	c := result.Colony
	cfg := c.Config()
	food := make([]int, len(result.Cumulative))
	entries := make([]model.CumulativeEntry, len(result.Cumulative))
	for i, row := range result.Cumulative {
		food[i] = row.TotalFood
		entries[i] = model.CumulativeEntry{TotalFood: row.TotalFood, AverageSteps: row.AverageSteps}
	}
	w := c.World()
	run := model.Run{
		VersionedRecord: storage.Versioned(),
		ID:              result.RunID,
		Name:            cfg.Name,
		Ants:            cfg.Ants,
		Ticks:           c.Tick(),
		Seed:            cfg.Seed,
		Learning:        cfg.Learning,
		TotalFood:       totalFood(result.Cumulative),
		FoodPerAnt:      food,
		HomeMass:        w.Field(pheromone.Home).Sum(),
		TargetMass:      w.Field(pheromone.Target).Sum(),
		Fingerprint:     result.Fingerprint,
		CreatedAtUTC:    result.CreatedAt.Format(time.RFC3339Nano),
	}
	if err := p.store.SaveRun(ctx, run); err != nil {
		return err
	}
	for i := 0; i < cfg.Ants; i++ {
		brain, ok := c.Brain(i)
		if !ok {
			continue
		}
		table := brain.Table()
		if err := p.store.SaveBrain(ctx, model.Brain{
			VersionedRecord: storage.Versioned(),
			RunID:           result.RunID,
			Ant:             i,
			States:          table.States(),
			Actions:         table.Actions(),
			Exploration:     brain.Agent().Exploration(),
			Values:          table.Snapshot(),
		}); err != nil {
			return err
		}
	}
	return p.store.SaveCumulative(ctx, model.Cumulative{
		VersionedRecord: storage.Versioned(),
		RunID:           result.RunID,
		Entries:         entries,
	})
}

// StopRun cancels an active run between ticks.
func (p *Polis) StopRun(runID string) error {
	if runID == "" {
		return fmt.Errorf("run id is required")
	}
	p.mu.RLock()
	cancel, ok := p.runs[runID]
	p.mu.RUnlock()
	if !ok {
		return fmt.Errorf("run not active: %s", runID)
	}
	cancel(ErrRunStopped)
	return nil
}

// ActiveRuns lists the ids of runs in progress, sorted.
func (p *Polis) ActiveRuns() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	ids := make([]string, 0, len(p.runs))
	for id := range p.runs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (p *Polis) registerRun(runID string, cancel context.CancelCauseFunc) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.started {
		return fmt.Errorf("polis is not initialized")
	}
	if _, exists := p.runs[runID]; exists {
		return fmt.Errorf("run already active: %s", runID)
	}
	p.runs[runID] = cancel
	return nil
}

func (p *Polis) unregisterRun(runID string) {
	p.mu.Lock()
	delete(p.runs, runID)
	p.mu.Unlock()
}

// StopWithReason cancels every active run and marks the polis stopped.
func (p *Polis) StopWithReason(reason StopReason) error {
	if !isValidStopReason(reason) {
		return fmt.Errorf("invalid stop reason: %s", reason)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, cancel := range p.runs {
		cancel(ErrRunStopped)
	}
	p.runs = make(map[string]context.CancelCauseFunc)
	p.started = false
	p.lastStopReason = reason
	return nil
}

func (p *Polis) Stop() {
	_ = p.StopWithReason(StopReasonNormal)
}

func (p *Polis) Started() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.started
}

func (p *Polis) LastStopReason() StopReason {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.lastStopReason
}

func isValidStopReason(reason StopReason) bool {
	switch reason {
	case StopReasonNormal, StopReasonShutdown:
		return true
	default:
		return false
	}
}

func explorations(c *colony.Colony) []float64 {
	out := make([]float64, 0, c.Config().Ants)
	for i := 0; i < c.Config().Ants; i++ {
		if brain, ok := c.Brain(i); ok {
			out = append(out, brain.Agent().Exploration())
		}
	}
	return out
}

func totalFood(rows []stats.CumulativeRow) int {
	total := 0
	for _, row := range rows {
		total += row.TotalFood
	}
	return total
}
