// Package main replays a recorded drive through the particle filter and
// reports localization accuracy against ground truth.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/exp/rand"

	"github.com/banshee-data/localization/internal/config"
	"github.com/banshee-data/localization/internal/mcl"
	"github.com/banshee-data/localization/internal/version"
	"github.com/banshee-data/localization/internal/storage/sqlite"
	"github.com/banshee-data/localization/internal/telemetry"
	"github.com/banshee-data/localization/internal/worldmap"
)

// Config holds the replay settings.
type Config struct {
	DataDir    string
	TuningPath string
	DBPath     string
	OutPath    string
	Notes      string
	Seed        int64
	MaxSteps    int
	Dt          float64
	ShowVersion bool
}

func parseFlags() Config {
	cfg := Config{}

	flag.StringVar(&cfg.DataDir, "data", "data", "Data directory (map_data.txt, control_data.txt, gt_data.txt, observation/)")
	flag.StringVar(&cfg.TuningPath, "config", "", "Tuning config JSON (default: search standard locations)")
	flag.StringVar(&cfg.DBPath, "db", "", "SQLite database to persist the run (empty disables persistence)")
	flag.StringVar(&cfg.OutPath, "out", "", "CSV file for per-step estimates (empty disables)")
	flag.StringVar(&cfg.Notes, "notes", "", "Free-form notes stored with the run")
	flag.Int64Var(&cfg.Seed, "seed", 0, "Random seed (0 seeds from the clock)")
	flag.IntVar(&cfg.MaxSteps, "steps", 0, "Maximum timesteps to replay (0 replays all)")
	flag.Float64Var(&cfg.Dt, "dt", 0.1, "Timestep duration in seconds")
	flag.BoolVar(&cfg.ShowVersion, "version", false, "Print version and exit")

	flag.Parse()
	return cfg
}

func main() {
	cfg := parseFlags()

	if cfg.ShowVersion {
		fmt.Printf("mcl %s (%s, built %s)\n", version.Version, version.GitSHA, version.BuildTime)
		return
	}

	var tuning *config.TuningConfig
	var err error
	if cfg.TuningPath != "" {
		tuning, err = config.LoadTuningConfig(cfg.TuningPath)
		if err != nil {
			log.Fatalf("Failed to load tuning config: %v", err)
		}
	} else {
		tuning = config.MustLoadDefaultConfig()
	}
	filterCfg := mcl.FilterConfigFromTuning(tuning)

	mapPath := filepath.Join(cfg.DataDir, "map_data.txt")
	m, err := worldmap.Load(mapPath)
	if err != nil {
		log.Fatalf("Failed to load map: %v", err)
	}
	controls, err := telemetry.ReadControls(filepath.Join(cfg.DataDir, "control_data.txt"))
	if err != nil {
		log.Fatalf("Failed to load controls: %v", err)
	}
	groundTruth, err := telemetry.ReadGroundTruth(filepath.Join(cfg.DataDir, "gt_data.txt"))
	if err != nil {
		log.Fatalf("Failed to load ground truth: %v", err)
	}
	if len(groundTruth) == 0 {
		log.Fatal("Ground truth file is empty")
	}

	numSteps := len(groundTruth)
	// Control row i drives the transition into step i+1.
	if len(controls)+1 < numSteps {
		numSteps = len(controls) + 1
	}
	if cfg.MaxSteps > 0 && cfg.MaxSteps < numSteps {
		numSteps = cfg.MaxSteps
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	filter, err := mcl.New(filterCfg, rand.NewSource(uint64(seed)))
	if err != nil {
		log.Fatalf("Failed to create filter: %v", err)
	}

	var store *sqlite.RunStore
	var run *sqlite.Run
	if cfg.DBPath != "" {
		db, err := sqlite.Open(cfg.DBPath)
		if err != nil {
			log.Fatalf("Failed to open run database: %v", err)
		}
		defer db.Close()
		store = sqlite.NewRunStore(db)
		if err := store.InitSchema(); err != nil {
			log.Fatalf("Failed to initialize schema: %v", err)
		}
		run = &sqlite.Run{
			MapPath:      mapPath,
			NumParticles: filterCfg.NumParticles,
			Seed:         seed,
			Notes:        cfg.Notes,
		}
		if err := store.InsertRun(run); err != nil {
			log.Fatalf("Failed to register run: %v", err)
		}
		log.Printf("Registered run %s", run.RunID)
	}

	var estOut *telemetry.EstimateWriter
	if cfg.OutPath != "" {
		f, err := os.Create(cfg.OutPath)
		if err != nil {
			log.Fatalf("Failed to create estimate file: %v", err)
		}
		defer f.Close()
		estOut, err = telemetry.NewEstimateWriter(f)
		if err != nil {
			log.Fatalf("Failed to write estimate header: %v", err)
		}
	}

	log.Printf("Replaying %d steps with %d particles (seed %d)", numSteps, filterCfg.NumParticles, seed)
	start := time.Now()

	var sumSqX, sumSqY, sumSqTheta float64
	for step := 1; step <= numSteps; step++ {
		obs, err := telemetry.ReadObservations(telemetry.ObservationFile(cfg.DataDir, step))
		if err != nil {
			log.Fatalf("Step %d: failed to read observations: %v", step, err)
		}

		if step == 1 {
			gt := groundTruth[0]
			filter.Init(gt.X, gt.Y, gt.Theta)
			if err := filter.Update(obs, m); err != nil {
				log.Fatalf("Step %d: update failed: %v", step, err)
			}
			if err := filter.Resample(); err != nil {
				log.Fatalf("Step %d: resample failed: %v", step, err)
			}
		} else {
			ctrl := mcl.Control{
				Dt:       cfg.Dt,
				Velocity: controls[step-2].Velocity,
				YawRate:  controls[step-2].YawRate,
			}
			if err := filter.Step(ctrl, obs, m); err != nil {
				log.Fatalf("Step %d: %v", step, err)
			}
		}

		best, err := filter.Best()
		if err != nil {
			log.Fatalf("Step %d: %v", step, err)
		}

		gt := groundTruth[step-1]
		errX := best.X - gt.X
		errY := best.Y - gt.Y
		errTheta := math.Atan2(math.Sin(best.Theta-gt.Theta), math.Cos(best.Theta-gt.Theta))
		sumSqX += errX * errX
		sumSqY += errY * errY
		sumSqTheta += errTheta * errTheta

		if estOut != nil {
			if err := estOut.Write(step, mcl.Pose{X: best.X, Y: best.Y, Theta: best.Theta}); err != nil {
				log.Fatalf("Step %d: %v", step, err)
			}
		}
		if store != nil {
			assoc, _ := json.Marshal(best.Associations)
			rec := &sqlite.StepRecord{
				RunID:        run.RunID,
				Step:         step,
				X:            best.X,
				Y:            best.Y,
				Theta:        best.Theta,
				Weight:       best.Weight,
				Associations: string(assoc),
				ErrX:         errX,
				ErrY:         errY,
				ErrTheta:     errTheta,
			}
			if err := store.InsertStep(rec); err != nil {
				log.Fatalf("Step %d: failed to persist: %v", step, err)
			}
		}

		if step%100 == 0 {
			log.Printf("Step %d/%d: best (%.3f, %.3f, %.3f), error (%.3f, %.3f, %.3f)",
				step, numSteps, best.X, best.Y, best.Theta, errX, errY, errTheta)
		}
	}

	n := float64(numSteps)
	fmt.Printf("Completed %d steps in %s\n", numSteps, time.Since(start).Round(time.Millisecond))
	fmt.Printf("RMSE: x=%.4f y=%.4f theta=%.4f\n",
		math.Sqrt(sumSqX/n), math.Sqrt(sumSqY/n), math.Sqrt(sumSqTheta/n))
	if run != nil {
		fmt.Printf("Run ID: %s\n", run.RunID)
	}
}
