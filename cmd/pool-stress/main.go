package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"runtime"
	"time"

	"github.com/pkg/errors"
	"github.com/pkg/profile"
	"github.com/plus3/poolecs/ecs"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
)

var rootCmd = &cobra.Command{
	Use:   "pool-stress",
	Short: "Churn fixed-capacity component pools and report timings.",
	Long: `Runs a scheduler over a storage whose component pools have a fixed
capacity, spawning, deleting and re-shaping entities every frame. Pool
invariants are validated periodically and the run aborts on the first
violation.`,
	RunE: run,
}

func init() {
	rootCmd.Flags().Duration("duration", 10*time.Second, "total duration of the run")
	rootCmd.Flags().Int("capacity", 10000, "capacity of every component pool")
	rootCmd.Flags().Int("entities", 5000, "number of entities spawned before the run")
	rootCmd.Flags().Int("ops", 200, "structural operations queued per frame")
	rootCmd.Flags().Int64("seed", 1, "random seed")
	rootCmd.Flags().Int("validate-every", 100, "validate pool invariants every N frames (0 disables)")
	rootCmd.Flags().Bool("recycle-ids", false, "reuse ids of deleted entities")
	rootCmd.Flags().String("profile", "none", "profile mode: cpu, mem or none")
	rootCmd.Flags().BoolP("verbose", "v", false, "log rejected pool operations")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, _ []string) error {
	flags := cmd.Flags()
	duration, _ := flags.GetDuration("duration")
	capacity, _ := flags.GetInt("capacity")
	entityCount, _ := flags.GetInt("entities")
	opsPerTick, _ := flags.GetInt("ops")
	seed, _ := flags.GetInt64("seed")
	validateEvery, _ := flags.GetInt("validate-every")
	recycle, _ := flags.GetBool("recycle-ids")
	profileMode, _ := flags.GetString("profile")
	verbose, _ := flags.GetBool("verbose")

	if capacity <= 0 {
		return errors.Errorf("--capacity must be positive, got %d", capacity)
	}
	if entityCount < 0 || opsPerTick < 0 {
		return errors.Errorf("--entities and --ops must not be negative")
	}

	if verbose {
		log.SetLevel(log.DebugLevel)
	}

	switch profileMode {
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.NoShutdownHook).Stop()
	case "mem":
		defer profile.Start(profile.MemProfileAllocs, profile.ProfilePath("."), profile.NoShutdownHook).Stop()
	case "none":
	default:
		return errors.Errorf("unknown profile mode %q", profileMode)
	}

	var ids ecs.IdSource = ecs.NewSequentialIds()
	if recycle {
		ids = ecs.NewRecyclingIds(uint(capacity))
	}

	logger := log.WithField("component", "pool-stress")
	storage, err := ecs.NewStorage(newRegistry(),
		ecs.WithCapacity(capacity),
		ecs.WithStorageIdSource(ids),
		ecs.WithStorageLogger(logger),
	)
	if err != nil {
		return err
	}
	defer storage.Free()

	rng := rand.New(rand.NewSource(seed))
	churn := &churnSystem{rng: rng, opsPerTick: opsPerTick}
	lifetime := &lifetimeSystem{}

	scheduler := ecs.NewScheduler(storage)
	scheduler.Register(&movementSystem{})
	scheduler.Register(lifetime)
	scheduler.Register(churn)

	logger.Infof("populating storage with %d entities", entityCount)
	initial := &ecs.Commands{}
	for i := 0; i < entityCount; i++ {
		spawnRandomEntity(initial, rng)
	}
	if err := initial.Flush(storage); err != nil {
		logger.WithField("rejected", len(multierr.Errors(err))).Warn("initial population exceeded pool capacity")
	}

	report := &Report{
		Duration:      duration,
		Capacity:      capacity,
		Entities:      entityCount,
		OpsPerTick:    opsPerTick,
		Seed:          seed,
		RecycleIds:    recycle,
		ValidateEvery: validateEvery,
	}
	runtime.ReadMemStats(&report.MemStatsStart)

	logger.Infof("running for %s", duration)
	ctx, cancel := context.WithTimeout(cmd.Context(), duration)
	defer cancel()

	startTime := time.Now()
	lastFrameTime := startTime

Loop:
	for {
		select {
		case <-ctx.Done():
			break Loop
		default:
		}

		deltaTime := time.Since(lastFrameTime)
		lastFrameTime = time.Now()

		updateStart := time.Now()
		err := scheduler.Once(deltaTime.Seconds())
		report.UpdateTime.Samples = append(report.UpdateTime.Samples, time.Since(updateStart))
		report.Rejections.Add(err)
		report.TotalUpdates++

		if validateEvery > 0 && report.TotalUpdates%int64(validateEvery) == 0 {
			if err := storage.Validate(); err != nil {
				logger.WithError(err).WithField("frame", report.TotalUpdates).Error("invariant violated")
				return err
			}
			report.Validations++
		}
	}

	if err := storage.Validate(); err != nil {
		return err
	}
	report.Validations++

	report.TotalTime = time.Since(startTime)
	report.UpdateTime.Finalize()
	runtime.ReadMemStats(&report.MemStatsEnd)
	report.Spawns, report.Deletes, report.Adds, report.Removes = churn.spawns, churn.deletes, churn.adds, churn.removes
	report.Expired = lifetime.expired
	report.Storage = storage.CollectStats()
	report.Scheduler = scheduler.GetStats()

	logger.Info("run finished")

	fmt.Println("\n\n--- Pool Stress Report ---")
	if err := report.Generate(os.Stdout); err != nil {
		return errors.Wrap(err, "failed to generate report")
	}
	fmt.Println("--- End of Report ---")
	return nil
}
