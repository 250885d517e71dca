package antcolony

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"antcolony/internal/ant"
	"antcolony/internal/colony"
	"antcolony/internal/pheromone"
	"antcolony/internal/platform"
	"antcolony/internal/plot"
	"antcolony/internal/qlearn"
	"antcolony/internal/stats"
	"antcolony/internal/storage"
)

const (
	defaultOutDir     = "runs"
	defaultExportsDir = "exports"
	defaultDBPath     = "antcolony.db"
)

type Options struct {
	StoreKind  string
	DBPath     string
	OutDir     string
	ExportsDir string
	Logger     logrus.FieldLogger
}

type Client struct {
	store   storage.Store
	polisMu sync.Mutex
	polis   *platform.Polis
	log     logrus.FieldLogger

	outDir     string
	exportsDir string

	// guards run_index.json while sweeps write concurrently
	indexMu sync.Mutex
}

type RunRequest struct {
	// Config is used as given; the zero value runs colony.DefaultConfig().
	Config        colony.Config
	RunID         string
	BatchSize     int
	ProgressEvery int
	Plots         bool
	WarmStartRun  string
}

type RunSummary struct {
	RunID        string
	ArtifactsDir string
	Ticks        int
	TotalFood    int
	FoodPerAnt   []int
	Exploration  []float64
	Fingerprint  string
	Elapsed      time.Duration
}

type SweepRequest struct {
	Config    colony.Config
	Seeds     []int64
	SweepID   string
	Workers   int
	BatchSize int
	Plots     bool
}

type SweepSummary struct {
	SweepID string
	RunIDs  []string
	Food    stats.FoodStats
}

type RunsRequest struct {
	Limit int
}

type RunItem struct {
	RunID        string
	CreatedAtUTC string
	Name         string
	Ants         int
	Ticks        int
	Seed         int64
	Learning     bool
	TotalFood    int
}

type CumulativeRequest struct {
	RunID  string
	Latest bool
}

type CumulativeRow struct {
	Ant          int
	TotalFood    int
	AverageSteps float64
}

type BrainRequest struct {
	RunID  string
	Latest bool
	Ant    int
}

type BrainItem struct {
	RunID       string
	Ant         int
	States      int
	Actions     int
	Exploration float64
	Values      []float64
}

type ExportRequest struct {
	RunID  string
	Latest bool
	OutDir string
}

type ExportSummary struct {
	RunID     string
	Directory string
}

func New(opts Options) (*Client, error) {
	storeKind := opts.StoreKind
	if storeKind == "" {
		storeKind = storage.DefaultStoreKind()
	}
	dbPath := opts.DBPath
	if dbPath == "" {
		dbPath = defaultDBPath
	}
	outDir := opts.OutDir
	if outDir == "" {
		outDir = defaultOutDir
	}
	exportsDir := opts.ExportsDir
	if exportsDir == "" {
		exportsDir = defaultExportsDir
	}
	log := opts.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}

	store, err := storage.NewStore(storeKind, dbPath)
	if err != nil {
		return nil, err
	}

	return &Client{
		store:      store,
		log:        log,
		outDir:     outDir,
		exportsDir: exportsDir,
	}, nil
}

func (c *Client) Close() error {
	return storage.CloseIfSupported(c.store)
}

func (c *Client) Init(ctx context.Context) error {
	_, err := c.ensurePolis(ctx)
	return err
}

// Stop cancels an in-flight run started by this client.
func (c *Client) Stop(runID string) error {
	c.polisMu.Lock()
	p := c.polis
	c.polisMu.Unlock()
	if p == nil {
		return fmt.Errorf("run not active: %s", runID)
	}
	return p.StopRun(runID)
}

func (c *Client) Run(ctx context.Context, req RunRequest) (RunSummary, error) {
	summary, err := c.run(ctx, req)
	if err != nil {
		return RunSummary{}, err
	}
	return RunSummary{
		RunID:        summary.RunID,
		ArtifactsDir: filepath.Clean(stats.RunDir(c.outDir, summary.RunID)),
		Ticks:        summary.Ticks,
		TotalFood:    summary.TotalFood,
		FoodPerAnt:   append([]int(nil), summary.FoodPerAnt...),
		Exploration:  append([]float64(nil), summary.Exploration...),
		Fingerprint:  summary.Fingerprint,
		Elapsed:      time.Duration(summary.ElapsedMillis) * time.Millisecond,
	}, nil
}

func (c *Client) run(ctx context.Context, req RunRequest) (stats.RunSummary, error) {
	if req.Config == (colony.Config{}) {
		req.Config = colony.DefaultConfig()
	}
	if req.BatchSize <= 0 {
		req.BatchSize = stats.DefaultBatchSize
	}
	if req.RunID == "" {
		req.RunID = uuid.NewString()
	}
	if err := req.Config.Validate(); err != nil {
		return stats.RunSummary{}, err
	}
	p, err := c.ensurePolis(ctx)
	if err != nil {
		return stats.RunSummary{}, err
	}

	result, err := p.RunColony(ctx, platform.RunConfig{
		RunID:         req.RunID,
		Colony:        req.Config,
		BatchSize:     req.BatchSize,
		ProgressEvery: req.ProgressEvery,
		LogDir:        stats.LogDir(c.outDir, req.RunID),
		WarmStartFrom: req.WarmStartRun,
	})
	if err != nil {
		return stats.RunSummary{}, err
	}

	w := result.Colony.World()
	food := make([]int, len(result.Cumulative))
	steps := make([]float64, len(result.Cumulative))
	total := 0
	for i, row := range result.Cumulative {
		food[i] = row.TotalFood
		steps[i] = row.AverageSteps
		total += row.TotalFood
	}
	summary := stats.RunSummary{
		RunID:         req.RunID,
		Name:          req.Config.Name,
		Ants:          req.Config.Ants,
		Ticks:         result.Colony.Tick(),
		Seed:          req.Config.Seed,
		Learning:      req.Config.Learning,
		TotalFood:     total,
		FoodPerAnt:    food,
		AverageSteps:  steps,
		Exploration:   result.Exploration,
		HomeMass:      w.Field(pheromone.Home).Sum(),
		TargetMass:    w.Field(pheromone.Target).Sum(),
		Fingerprint:   result.Fingerprint,
		ElapsedMillis: result.Elapsed.Milliseconds(),
		CreatedAtUTC:  result.CreatedAt.Format(time.RFC3339Nano),
	}

	runDir, err := stats.WriteRunArtifacts(c.outDir, stats.RunArtifacts{
		Config: stats.RunConfig{
			RunID:         req.RunID,
			WarmStartFrom: req.WarmStartRun,
			BatchSize:     req.BatchSize,
			Colony:        req.Config,
		},
		Summary:    summary,
		Batches:    result.Batches,
		Cumulative: result.Cumulative,
	})
	if err != nil {
		return stats.RunSummary{}, err
	}
	if err := stats.WriteBrains(stats.LogDir(c.outDir, req.RunID), brainTables(result.Colony)); err != nil {
		return stats.RunSummary{}, err
	}
	if req.Plots {
		if err := writePlots(runDir, result, req.BatchSize); err != nil {
			return stats.RunSummary{}, err
		}
	}

	c.indexMu.Lock()
	err = stats.AppendRunIndex(c.outDir, summary.IndexEntry())
	c.indexMu.Unlock()
	if err != nil {
		return stats.RunSummary{}, err
	}
	return summary, nil
}

// Sweep runs one colony per seed in parallel and records the food statistics across them.
func (c *Client) Sweep(ctx context.Context, req SweepRequest) (SweepSummary, error) {
	if len(req.Seeds) == 0 {
		return SweepSummary{}, errors.New("sweep requires at least one seed")
	}
	if req.Config == (colony.Config{}) {
		req.Config = colony.DefaultConfig()
	}
	if req.Workers <= 0 {
		req.Workers = 4
	}
	if req.SweepID == "" {
		req.SweepID = uuid.NewString()
	}
	seen := make(map[int64]struct{}, len(req.Seeds))
	for _, seed := range req.Seeds {
		if _, dup := seen[seed]; dup {
			return SweepSummary{}, fmt.Errorf("duplicate sweep seed: %d", seed)
		}
		seen[seed] = struct{}{}
	}
	if _, err := c.ensurePolis(ctx); err != nil {
		return SweepSummary{}, err
	}

	started := time.Now().UTC()
	summaries := make([]stats.RunSummary, len(req.Seeds))
	runIDs := make([]string, len(req.Seeds))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(req.Workers)
	for i, seed := range req.Seeds {
		i, seed := i, seed
		cfg := req.Config
		cfg.Seed = seed
		runIDs[i] = fmt.Sprintf("%s-seed-%d", req.SweepID, seed)
		g.Go(func() error {
			summary, err := c.run(gctx, RunRequest{
				Config:    cfg,
				RunID:     runIDs[i],
				BatchSize: req.BatchSize,
				Plots:     req.Plots,
			})
			if err != nil {
				return fmt.Errorf("seed %d: %w", seed, err)
			}
			summaries[i] = summary
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return SweepSummary{}, err
	}

	sweep := stats.Sweep{
		ID:             req.SweepID,
		Seeds:          append([]int64(nil), req.Seeds...),
		RunIDs:         runIDs,
		Summaries:      summaries,
		Food:           stats.BuildFoodStats(summaries),
		StartedAtUTC:   started.Format(time.RFC3339Nano),
		CompletedAtUTC: time.Now().UTC().Format(time.RFC3339Nano),
	}
	if err := stats.WriteSweep(c.outDir, sweep); err != nil {
		return SweepSummary{}, err
	}
	c.log.WithFields(logrus.Fields{
		"sweep_id": sweep.ID,
		"runs":     sweep.Food.Runs,
		"mean":     sweep.Food.Mean,
	}).Info("sweep complete")
	return SweepSummary{SweepID: sweep.ID, RunIDs: append([]string(nil), runIDs...), Food: sweep.Food}, nil
}

func (c *Client) Sweeps(_ context.Context) ([]stats.Sweep, error) {
	return stats.ListSweeps(c.outDir)
}

func (c *Client) Runs(_ context.Context, req RunsRequest) ([]RunItem, error) {
	if req.Limit <= 0 {
		req.Limit = 20
	}

	entries, err := stats.ListRunIndex(c.outDir)
	if err != nil {
		return nil, err
	}
	if len(entries) > req.Limit {
		entries = entries[:req.Limit]
	}

	out := make([]RunItem, 0, len(entries))
	for _, e := range entries {
		out = append(out, RunItem{
			RunID:        e.RunID,
			CreatedAtUTC: e.CreatedAtUTC,
			Name:         e.Name,
			Ants:         e.Ants,
			Ticks:        e.Ticks,
			Seed:         e.Seed,
			Learning:     e.Learning,
			TotalFood:    e.TotalFood,
		})
	}
	return out, nil
}

// Cumulative reads a run's per-ant food table from the store, falling back to Log/Cumulative.csv.
func (c *Client) Cumulative(ctx context.Context, req CumulativeRequest) ([]CumulativeRow, error) {
	runID, err := c.resolveRunID(req.RunID, req.Latest, "cumulative")
	if err != nil {
		return nil, err
	}
	if _, err := c.ensurePolis(ctx); err != nil {
		return nil, err
	}

	var rows []CumulativeRow
	stored, ok, err := c.store.GetCumulative(ctx, runID)
	if err != nil {
		return nil, err
	}
	if ok {
		for i, e := range stored.Entries {
			rows = append(rows, CumulativeRow{Ant: i, TotalFood: e.TotalFood, AverageSteps: e.AverageSteps})
		}
		return rows, nil
	}

	fromDisk, ok, err := stats.ReadCumulative(c.outDir, runID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("cumulative not found for run id: %s", runID)
	}
	for i, r := range fromDisk {
		rows = append(rows, CumulativeRow{Ant: i, TotalFood: r.TotalFood, AverageSteps: r.AverageSteps})
	}
	return rows, nil
}

// Brain reads one ant's table from the store, falling back to Log/Ant_<i>_Brain.csv.
func (c *Client) Brain(ctx context.Context, req BrainRequest) (BrainItem, error) {
	runID, err := c.resolveRunID(req.RunID, req.Latest, "brain")
	if err != nil {
		return BrainItem{}, err
	}
	if req.Ant < 0 {
		return BrainItem{}, errors.New("ant must be >= 0")
	}
	if _, err := c.ensurePolis(ctx); err != nil {
		return BrainItem{}, err
	}
	brain, ok, err := c.store.GetBrain(ctx, runID, req.Ant)
	if err != nil {
		return BrainItem{}, err
	}
	if !ok {
		return c.brainFromArtifacts(runID, req.Ant)
	}
	return BrainItem{
		RunID:       brain.RunID,
		Ant:         brain.Ant,
		States:      brain.States,
		Actions:     brain.Actions,
		Exploration: brain.Exploration,
		Values:      append([]float64(nil), brain.Values...),
	}, nil
}

func (c *Client) brainFromArtifacts(runID string, antIndex int) (BrainItem, error) {
	table, ok, err := stats.ReadBrain(c.outDir, runID, antIndex)
	if err != nil {
		return BrainItem{}, err
	}
	if !ok {
		return BrainItem{}, fmt.Errorf("brain not found for run id %s ant %d", runID, antIndex)
	}
	item := BrainItem{
		RunID:   runID,
		Ant:     antIndex,
		States:  table.States(),
		Actions: table.Actions(),
		Values:  table.Snapshot(),
	}
	summary, ok, err := stats.ReadRunSummary(c.outDir, runID)
	if err != nil {
		return BrainItem{}, err
	}
	if ok && antIndex < len(summary.Exploration) {
		item.Exploration = summary.Exploration[antIndex]
	}
	return item, nil
}

// WriteCSV writes the brain in the Ant_<i>_Brain.csv layout.
func (b BrainItem) WriteCSV(w io.Writer) error {
	table, err := qlearn.NewTable(b.States, b.Actions)
	if err != nil {
		return err
	}
	if err := table.Load(b.Values); err != nil {
		return err
	}
	return table.WriteCSV(w, ant.StateLabels(), ant.ActionNames())
}

func (c *Client) Export(_ context.Context, req ExportRequest) (ExportSummary, error) {
	if req.RunID != "" && req.Latest {
		return ExportSummary{}, errors.New("use either run id or latest")
	}
	if req.RunID == "" && !req.Latest {
		return ExportSummary{}, errors.New("export requires run id or latest")
	}
	if req.OutDir == "" {
		req.OutDir = c.exportsDir
	}

	runID, err := c.resolveRunID(req.RunID, req.Latest, "export")
	if err != nil {
		return ExportSummary{}, err
	}
	exportedDir, err := stats.ExportRunArtifacts(c.outDir, runID, req.OutDir)
	if err != nil {
		return ExportSummary{}, err
	}
	return ExportSummary{RunID: runID, Directory: filepath.Clean(exportedDir)}, nil
}

func (c *Client) resolveRunID(runID string, latest bool, what string) (string, error) {
	if runID != "" && latest {
		return "", errors.New("use either run id or latest")
	}
	if latest {
		entries, err := stats.ListRunIndex(c.outDir)
		if err != nil {
			return "", err
		}
		if len(entries) == 0 {
			return "", errors.New("no runs available")
		}
		return entries[0].RunID, nil
	}
	if runID == "" {
		return "", fmt.Errorf("%s requires run id or latest", what)
	}
	return runID, nil
}

func (c *Client) ensurePolis(ctx context.Context) (*platform.Polis, error) {
	c.polisMu.Lock()
	defer c.polisMu.Unlock()
	if c.polis != nil {
		return c.polis, nil
	}
	p := platform.NewPolis(platform.Config{Store: c.store, Logger: c.log})
	if err := p.Init(ctx); err != nil {
		return nil, err
	}
	c.polis = p
	return c.polis, nil
}

func brainTables(c *colony.Colony) []*qlearn.Table {
	tables := make([]*qlearn.Table, c.Config().Ants)
	for i := range tables {
		if brain, ok := c.Brain(i); ok {
			tables[i] = brain.Table()
		}
	}
	return tables
}

func writePlots(runDir string, result platform.RunResult, batchSize int) error {
	if len(result.Batches) > 0 {
		if err := plot.WritePNG(filepath.Join(runDir, "food_per_batch.png"), func(w io.Writer) error {
			return plot.FoodPerBatch(w, result.Batches, batchSize)
		}); err != nil {
			return err
		}
		if err := plot.WritePNG(filepath.Join(runDir, "actions_per_batch.png"), func(w io.Writer) error {
			return plot.ActionDistribution(w, result.Batches, batchSize)
		}); err != nil {
			return err
		}
	}
	w := result.Colony.World()
	for _, trail := range pheromone.Trails() {
		field := w.Field(trail)
		path := filepath.Join(runDir, fmt.Sprintf("%s_field.png", trail))
		if err := plot.FieldHeatmap(path, trail, w.Bounds(), field.Snapshot(), field.Cap()); err != nil {
			return err
		}
	}
	return plot.FoodPerAnt(filepath.Join(runDir, "food_per_ant.png"), result.Cumulative)
}
