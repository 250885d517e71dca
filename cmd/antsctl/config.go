package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"antcolony/internal/colony"
)

const envPrefix = "ANTS_"

// runOptions is everything a run can take from a config file.
type runOptions struct {
	colony.Config `yaml:",inline"`
	RunID         string `json:"run_id" yaml:"run_id"`
	BatchSize     int    `json:"batch_size" yaml:"batch_size"`
	ProgressEvery int    `json:"progress_every" yaml:"progress_every"`
	Plots         bool   `json:"plots" yaml:"plots"`
	WarmStartRun  string `json:"warm_start_run" yaml:"warm_start_run"`
}

func defaultRunOptions() runOptions {
	return runOptions{Config: colony.DefaultConfig()}
}

// loadRunOptions decodes path over the defaults, so keys missing from the file keep their
// default values.
func loadRunOptions(path string) (runOptions, error) {
	opts := defaultRunOptions()
	if path == "" {
		return opts, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return runOptions{}, fmt.Errorf("load config: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &opts)
	default:
		err = json.Unmarshal(data, &opts)
	}
	if err != nil {
		return runOptions{}, fmt.Errorf("load config %s: %w", path, err)
	}
	return opts, nil
}

// envName maps a flag name to its environment variable, e.g. max-steps -> ANTS_MAX_STEPS.
func envName(flagName string) string {
	return envPrefix + strings.ToUpper(strings.ReplaceAll(flagName, "-", "_"))
}

// applyEnv sets every flag not given on the command line from the environment, then from
// envFile. It returns the names of all flags that now carry a user value.
func applyEnv(fs *flag.FlagSet, envFile string) (map[string]bool, error) {
	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) {
		set[f.Name] = true
	})

	fileEnv := map[string]string{}
	if envFile != "" {
		var err error
		fileEnv, err = godotenv.Read(envFile)
		if err != nil {
			return nil, fmt.Errorf("load env file: %w", err)
		}
	}

	var applyErr error
	fs.VisitAll(func(f *flag.Flag) {
		if applyErr != nil || set[f.Name] || f.Name == "env-file" {
			return
		}
		name := envName(f.Name)
		value, ok := os.LookupEnv(name)
		if !ok {
			value, ok = fileEnv[name]
		}
		if !ok {
			return
		}
		if err := fs.Set(f.Name, value); err != nil {
			applyErr = fmt.Errorf("%s: %w", name, err)
			return
		}
		set[f.Name] = true
	})
	if applyErr != nil {
		return nil, applyErr
	}
	return set, nil
}

type colonyFlags struct {
	configPath       *string
	envFile          *string
	runID            *string
	simName          *string
	ants             *int
	cols             *int
	rows             *int
	maxSteps         *int
	minExploration   *float64
	explorationRate  *float64
	explorationDecay *float64
	learningRate     *float64
	discountedReturn *float64
	dropAmount       *float64
	dispersionRate   *float64
	decayRate        *float64
	pheromoneCap     *float64
	seed             *int64
	noLog            *bool
	noLearning       *bool
	plots            *bool
	batchSize        *int
	resetInterval    *int
	progressEvery    *int
	warmStartRun     *string
}

func registerColonyFlags(fs *flag.FlagSet) *colonyFlags {
	def := colony.DefaultConfig()
	return &colonyFlags{
		configPath:       fs.String("config", "", "optional run config path (.json, .yaml or .yml)"),
		envFile:          fs.String("env-file", "", "optional dotenv file with "+envPrefix+"* variables"),
		runID:            fs.String("run-id", "", "explicit run id (default: generated uuid)"),
		simName:          fs.String("sim-name", def.Name, "simulation name"),
		ants:             fs.Int("ants", def.Ants, "number of ants"),
		cols:             fs.Int("cols", def.Cols, "grid columns"),
		rows:             fs.Int("rows", def.Rows, "grid rows"),
		maxSteps:         fs.Int("max-steps", def.MaxSteps, "ticks to run"),
		minExploration:   fs.Float64("min-exploration", def.Learner.MinExploration, "exploration floor"),
		explorationRate:  fs.Float64("exploration-rate", def.Learner.ExplorationRate, "initial exploration probability"),
		explorationDecay: fs.Float64("exploration-decay", def.Learner.ExplorationDecay, "exploration decay per update"),
		learningRate:     fs.Float64("learning-rate", def.Learner.LearningRate, "q-learning step size"),
		discountedReturn: fs.Float64("discounted-return", def.Learner.DiscountedReturn, "q-learning discount"),
		dropAmount:       fs.Float64("drop-amount", def.DropAmount, "pheromone deposited per drop"),
		dispersionRate:   fs.Float64("dispersion-rate", def.Pheromone.DispersionRate, "pheromone dispersion per tick"),
		decayRate:        fs.Float64("decay-rate", def.Pheromone.DecayRate, "pheromone decay per tick"),
		pheromoneCap:     fs.Float64("pheromone-cap", def.Pheromone.Cap, "maximum pheromone per cell"),
		seed:             fs.Int64("seed", def.Seed, "rng seed"),
		noLog:            fs.Bool("no-log", false, "disable per-ant logs"),
		noLearning:       fs.Bool("no-learning", false, "select actions without updating brains"),
		plots:            fs.Bool("plots", false, "render png charts into the run directory"),
		batchSize:        fs.Int("batch-size", 1000, "ticks per aggregated batch"),
		resetInterval:    fs.Int("reset-interval", 0, "reset ants and fields every N ticks (0 disables)"),
		progressEvery:    fs.Int("progress-every", 0, "log progress every N ticks (0 disables)"),
		warmStartRun:     fs.String("warm-start-run", "", "seed brains from a stored run"),
	}
}

func (f *colonyFlags) values() map[string]any {
	return map[string]any{
		"run-id":            *f.runID,
		"sim-name":          *f.simName,
		"ants":              *f.ants,
		"cols":              *f.cols,
		"rows":              *f.rows,
		"max-steps":         *f.maxSteps,
		"min-exploration":   *f.minExploration,
		"exploration-rate":  *f.explorationRate,
		"exploration-decay": *f.explorationDecay,
		"learning-rate":     *f.learningRate,
		"discounted-return": *f.discountedReturn,
		"drop-amount":       *f.dropAmount,
		"dispersion-rate":   *f.dispersionRate,
		"decay-rate":        *f.decayRate,
		"pheromone-cap":     *f.pheromoneCap,
		"seed":              *f.seed,
		"no-log":            *f.noLog,
		"no-learning":       *f.noLearning,
		"plots":             *f.plots,
		"batch-size":        *f.batchSize,
		"reset-interval":    *f.resetInterval,
		"progress-every":    *f.progressEvery,
		"warm-start-run":    *f.warmStartRun,
	}
}

// resolve layers defaults, the config file, the environment and explicit flags, in that order.
func (f *colonyFlags) resolve(fs *flag.FlagSet) (runOptions, error) {
	set, err := applyEnv(fs, *f.envFile)
	if err != nil {
		return runOptions{}, err
	}
	opts, err := loadRunOptions(*f.configPath)
	if err != nil {
		return runOptions{}, err
	}
	overrideFromFlags(&opts, set, f.values())
	if opts.BatchSize <= 0 {
		opts.BatchSize = 1000
	}
	return opts, nil
}

func overrideFromFlags(opts *runOptions, set map[string]bool, flagValue map[string]any) {
	for name := range set {
		v, ok := flagValue[name]
		if !ok {
			continue
		}
		switch name {
		case "run-id":
			opts.RunID = v.(string)
		case "sim-name":
			opts.Name = v.(string)
		case "ants":
			opts.Ants = v.(int)
		case "cols":
			opts.Cols = v.(int)
		case "rows":
			opts.Rows = v.(int)
		case "max-steps":
			opts.MaxSteps = v.(int)
		case "min-exploration":
			opts.Learner.MinExploration = v.(float64)
		case "exploration-rate":
			opts.Learner.ExplorationRate = v.(float64)
		case "exploration-decay":
			opts.Learner.ExplorationDecay = v.(float64)
		case "learning-rate":
			opts.Learner.LearningRate = v.(float64)
		case "discounted-return":
			opts.Learner.DiscountedReturn = v.(float64)
		case "drop-amount":
			opts.DropAmount = v.(float64)
		case "dispersion-rate":
			opts.Pheromone.DispersionRate = v.(float64)
		case "decay-rate":
			opts.Pheromone.DecayRate = v.(float64)
		case "pheromone-cap":
			opts.Pheromone.Cap = v.(float64)
		case "seed":
			opts.Seed = v.(int64)
		case "no-log":
			opts.Log = !v.(bool)
		case "no-learning":
			opts.Learning = !v.(bool)
		case "plots":
			opts.Plots = v.(bool)
		case "batch-size":
			opts.BatchSize = v.(int)
		case "reset-interval":
			opts.ResetInterval = v.(int)
		case "progress-every":
			opts.ProgressEvery = v.(int)
		case "warm-start-run":
			opts.WarmStartRun = v.(string)
		}
	}
}
