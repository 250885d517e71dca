package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"

	"antcolony/internal/platform"
	"antcolony/internal/storage"
	antsapi "antcolony/pkg/antcolony"
)

const (
	runsDir       = "runs"
	exportsDir    = "exports"
	defaultDBPath = "antcolony.db"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := run(ctx, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageError("missing command")
	}

	switch args[0] {
	case "init":
		return runInit(ctx, args[1:])
	case "run":
		return runRun(ctx, args[1:])
	case "sweep":
		return runSweep(ctx, args[1:])
	case "sweeps":
		return runSweeps(ctx, args[1:])
	case "runs":
		return runRuns(ctx, args[1:])
	case "cumulative":
		return runCumulative(ctx, args[1:])
	case "brain":
		return runBrain(ctx, args[1:])
	case "export":
		return runExport(ctx, args[1:])
	default:
		return usageError(fmt.Sprintf("unknown command: %s", args[0]))
	}
}

type storeFlags struct {
	storeKind *string
	dbPath    *string
	outDir    *string
}

func registerStoreFlags(fs *flag.FlagSet) storeFlags {
	return storeFlags{
		storeKind: fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite"),
		dbPath:    fs.String("db-path", defaultDBPath, "sqlite database path"),
		outDir:    fs.String("out", runsDir, "run artifacts directory"),
	}
}

func (s storeFlags) client(log logrus.FieldLogger) (*antsapi.Client, error) {
	return antsapi.New(antsapi.Options{
		StoreKind:  *s.storeKind,
		DBPath:     *s.dbPath,
		OutDir:     *s.outDir,
		ExportsDir: exportsDir,
		Logger:     log,
	})
}

func newLogger(level string) (*logrus.Logger, error) {
	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetLevel(parsed)
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return log, nil
}

func runInit(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", defaultDBPath, "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	store, err := storage.NewStore(*storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = storage.CloseIfSupported(store)
	}()

	polis := platform.NewPolis(platform.Config{Store: store})
	if err := polis.Init(ctx); err != nil {
		return err
	}

	fmt.Printf("initialized store=%s\n", *storeKind)
	return nil
}

func runRun(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	cf := registerColonyFlags(fs)
	sf := registerStoreFlags(fs)
	logLevel := fs.String("log-level", "info", "log level: debug|info|warn|error")
	if err := fs.Parse(args); err != nil {
		return err
	}
	opts, err := cf.resolve(fs)
	if err != nil {
		return err
	}
	if err := opts.Validate(); err != nil {
		return err
	}
	log, err := newLogger(*logLevel)
	if err != nil {
		return err
	}

	client, err := sf.client(log)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	summary, err := client.Run(ctx, antsapi.RunRequest{
		Config:        opts.Config,
		RunID:         opts.RunID,
		BatchSize:     opts.BatchSize,
		ProgressEvery: opts.ProgressEvery,
		Plots:         opts.Plots,
		WarmStartRun:  opts.WarmStartRun,
	})
	if err != nil {
		return err
	}
	fmt.Printf("run completed run_id=%s name=%s ants=%d ticks=%d seed=%d learning=%t\n",
		summary.RunID, opts.Name, opts.Ants, summary.Ticks, opts.Seed, opts.Learning)
	for i, food := range summary.FoodPerAnt {
		fmt.Printf("ant=%d total_food=%d\n", i, food)
	}
	fmt.Printf("total_food=%s fingerprint=%s elapsed=%s\n", humanize.Comma(int64(summary.TotalFood)), summary.Fingerprint, summary.Elapsed)
	fmt.Printf("artifacts_dir=%s\n", filepath.Clean(summary.ArtifactsDir))
	return nil
}

func runSweep(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("sweep", flag.ContinueOnError)
	cf := registerColonyFlags(fs)
	sf := registerStoreFlags(fs)
	seedsFlag := fs.String("seeds", "", "comma separated seeds")
	count := fs.Int("count", 0, "run seeds seed..seed+count-1 when --seeds is empty")
	workers := fs.Int("workers", 4, "parallel runs")
	sweepID := fs.String("sweep-id", "", "explicit sweep id (default: generated uuid)")
	logLevel := fs.String("log-level", "info", "log level: debug|info|warn|error")
	if err := fs.Parse(args); err != nil {
		return err
	}
	opts, err := cf.resolve(fs)
	if err != nil {
		return err
	}
	if err := opts.Validate(); err != nil {
		return err
	}
	seeds, err := sweepSeeds(*seedsFlag, opts.Seed, *count)
	if err != nil {
		return err
	}
	if *workers <= 0 {
		return errors.New("workers must be > 0")
	}
	log, err := newLogger(*logLevel)
	if err != nil {
		return err
	}

	client, err := sf.client(log)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	summary, err := client.Sweep(ctx, antsapi.SweepRequest{
		Config:    opts.Config,
		Seeds:     seeds,
		SweepID:   *sweepID,
		Workers:   *workers,
		BatchSize: opts.BatchSize,
		Plots:     opts.Plots,
	})
	if err != nil {
		return err
	}
	fmt.Printf("sweep completed sweep_id=%s runs=%d\n", summary.SweepID, summary.Food.Runs)
	for i, runID := range summary.RunIDs {
		fmt.Printf("seed=%d run_id=%s\n", seeds[i], runID)
	}
	fmt.Printf("food_mean=%.3f food_std=%.3f food_min=%.0f food_max=%.0f\n", summary.Food.Mean, summary.Food.Std, summary.Food.Min, summary.Food.Max)
	return nil
}

func sweepSeeds(list string, base int64, count int) ([]int64, error) {
	if strings.TrimSpace(list) == "" {
		if count <= 0 {
			return nil, errors.New("sweep requires --seeds or --count")
		}
		seeds := make([]int64, count)
		for i := range seeds {
			seeds[i] = base + int64(i)
		}
		return seeds, nil
	}
	parts := strings.Split(list, ",")
	seeds := make([]int64, 0, len(parts))
	for _, part := range parts {
		seed, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid seed %q: %w", part, err)
		}
		seeds = append(seeds, seed)
	}
	return seeds, nil
}

func runSweeps(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("sweeps", flag.ContinueOnError)
	sf := registerStoreFlags(fs)
	jsonOut := fs.Bool("json", false, "emit sweeps as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	client, err := sf.client(nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	sweeps, err := client.Sweeps(ctx)
	if err != nil {
		return err
	}
	if *jsonOut {
		return writeJSON(os.Stdout, sweeps)
	}
	if len(sweeps) == 0 {
		fmt.Println("no sweeps found")
		return nil
	}
	for _, s := range sweeps {
		fmt.Printf("sweep_id=%s started_at=%s runs=%d food_mean=%.3f food_std=%.3f\n", s.ID, s.StartedAtUTC, s.Food.Runs, s.Food.Mean, s.Food.Std)
	}
	return nil
}

func runRuns(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("runs", flag.ContinueOnError)
	sf := registerStoreFlags(fs)
	limit := fs.Int("limit", 20, "max runs to list")
	jsonOut := fs.Bool("json", false, "emit runs list as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *limit <= 0 {
		return errors.New("limit must be > 0")
	}
	client, err := sf.client(nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	items, err := client.Runs(ctx, antsapi.RunsRequest{Limit: *limit})
	if err != nil {
		return err
	}
	if *jsonOut {
		type runsItem struct {
			RunID        string `json:"run_id"`
			CreatedAtUTC string `json:"created_at_utc"`
			Name         string `json:"name"`
			Ants         int    `json:"ants"`
			Ticks        int    `json:"ticks"`
			Seed         int64  `json:"seed"`
			Learning     bool   `json:"learning"`
			TotalFood    int    `json:"total_food"`
		}
		out := make([]runsItem, 0, len(items))
		for _, item := range items {
			out = append(out, runsItem(item))
		}
		return writeJSON(os.Stdout, out)
	}
	if len(items) == 0 {
		fmt.Println("no runs found")
		return nil
	}
	for _, item := range items {
		fmt.Printf("run_id=%s created_at=%s name=%s ants=%d ticks=%d seed=%d learning=%t total_food=%d\n",
			item.RunID, item.CreatedAtUTC, item.Name, item.Ants, item.Ticks, item.Seed, item.Learning, item.TotalFood)
	}
	return nil
}

func runCumulative(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("cumulative", flag.ContinueOnError)
	sf := registerStoreFlags(fs)
	runID := fs.String("run-id", "", "run id")
	latest := fs.Bool("latest", false, "use the most recent run from run index")
	jsonOut := fs.Bool("json", false, "emit rows as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *runID != "" && *latest {
		return errors.New("use either --run-id or --latest, not both")
	}
	client, err := sf.client(nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	rows, err := client.Cumulative(ctx, antsapi.CumulativeRequest{RunID: *runID, Latest: *latest})
	if err != nil {
		return err
	}
	if *jsonOut {
		type cumulativeItem struct {
			Ant          int     `json:"ant"`
			TotalFood    int     `json:"total_food"`
			AverageSteps float64 `json:"average_steps"`
		}
		out := make([]cumulativeItem, 0, len(rows))
		for _, row := range rows {
			out = append(out, cumulativeItem(row))
		}
		return writeJSON(os.Stdout, out)
	}
	for _, row := range rows {
		fmt.Printf("ant=%d total_food=%d average_steps=%.3f\n", row.Ant, row.TotalFood, row.AverageSteps)
	}
	return nil
}

func runBrain(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("brain", flag.ContinueOnError)
	sf := registerStoreFlags(fs)
	runID := fs.String("run-id", "", "run id")
	latest := fs.Bool("latest", false, "use the most recent run from run index")
	antIndex := fs.Int("ant", 0, "ant index")
	to := fs.String("to", "", "write the brain csv to this path instead of stdout")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *runID != "" && *latest {
		return errors.New("use either --run-id or --latest, not both")
	}
	client, err := sf.client(nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	brain, err := client.Brain(ctx, antsapi.BrainRequest{RunID: *runID, Latest: *latest, Ant: *antIndex})
	if err != nil {
		return err
	}
	if *to == "" {
		return brain.WriteCSV(os.Stdout)
	}
	file, err := os.Create(*to)
	if err != nil {
		return err
	}
	if err := brain.WriteCSV(file); err != nil {
		_ = file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return err
	}
	fmt.Printf("brain run_id=%s ant=%d exploration=%.6f to=%s\n", brain.RunID, brain.Ant, brain.Exploration, filepath.Clean(*to))
	return nil
}

func runExport(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	sf := registerStoreFlags(fs)
	runID := fs.String("run-id", "", "run id")
	latest := fs.Bool("latest", false, "export the most recent run from run index")
	dest := fs.String("dest", exportsDir, "export output directory")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *runID != "" && *latest {
		return errors.New("use either --run-id or --latest, not both")
	}
	if *runID == "" && !*latest {
		return errors.New("export requires --run-id or --latest")
	}
	client, err := sf.client(nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	exported, err := client.Export(ctx, antsapi.ExportRequest{RunID: *runID, Latest: *latest, OutDir: *dest})
	if err != nil {
		return err
	}
	fmt.Printf("exported run_id=%s to=%s\n", exported.RunID, exported.Directory)
	return nil
}

func writeJSON(w io.Writer, value any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(value)
}

func usageError(msg string) error {
	return fmt.Errorf("%s\nusage: antsctl <init|run|sweep|sweeps|runs|cumulative|brain|export> [flags]", msg)
}
