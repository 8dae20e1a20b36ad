// Package main runs a headless desert terraforming simulation for a fixed
// number of ticks, writing telemetry, perf, and milestone CSVs alongside a
// snapshot of the config used.
package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"time"

	"github.com/duskwell/oasis/config"
	"github.com/duskwell/oasis/engine"
	"github.com/duskwell/oasis/telemetry"
)

func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%dh%02dm%02ds", h, m, s)
	}
	return fmt.Sprintf("%dm%02ds", m, s)
}

func main() {
	configPath := flag.String("config", "", "Config YAML file (empty = use defaults)")
	seed := flag.Int64("seed", 42, "World generation seed")
	ticks := flag.Int64("ticks", 10000, "Number of ticks to simulate")
	outputDir := flag.String("output", "", "Output directory for telemetry/perf/milestones CSVs (empty = disabled)")
	logProgress := flag.Bool("progress", true, "Log world-generation progress")
	flag.Parse()

	if err := config.Init(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	cfg := config.Cfg()

	out, err := telemetry.NewOutputManager(*outputDir)
	if err != nil {
		log.Fatalf("failed to create output manager: %v", err)
	}
	defer out.Close()

	if err := out.WriteConfig(cfg); err != nil {
		log.Printf("failed to write config snapshot: %v", err)
	}

	progress := func(phase string, frac float64) {}
	if *logProgress {
		progress = func(phase string, frac float64) {
			slog.Info("worldgen", "phase", phase, "frac", frac)
		}
	}

	world, err := engine.NewWorld(cfg, *seed, progress)
	if err != nil {
		log.Fatalf("world generation failed: %v", err)
	}

	sch := engine.NewScheduler(world)
	perf := telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow)
	sch.SetPhaseHook(perf.StartPhase)

	collector := telemetry.NewCollector(cfg.Telemetry.WindowDurationTicks)
	detector := telemetry.NewMilestoneDetector(cfg.Telemetry.MilestoneHistory)

	startTime := time.Now()
	var lastEventTick int64 = -1

	for i := int64(0); i < *ticks; i++ {
		tickStart := world.Tick
		perf.StartTick()
		sch.Tick(world)
		perf.EndTick()

		view := world.Snapshot()
		for _, e := range view.Events().Recent(view.Events().Len()) {
			if e.Tick >= tickStart && e.Tick > lastEventTick {
				collector.RecordEvent(e)
			}
		}
		lastEventTick = tickStart

		if collector.ShouldFlush(world.Tick) {
			stats := collector.Flush(view)
			if err := out.WriteTelemetry(stats); err != nil {
				log.Printf("failed to write telemetry: %v", err)
			}

			perfStats := perf.Stats()
			if err := out.WritePerf(perfStats, world.Tick); err != nil {
				log.Printf("failed to write perf: %v", err)
			}

			for _, m := range detector.Check(stats) {
				m.LogMilestone()
				if err := out.WriteMilestone(m); err != nil {
					log.Printf("failed to write milestone: %v", err)
				}
			}
		}
	}

	elapsed := time.Since(startTime)
	fmt.Printf("Simulated %d ticks in %s (%.0f ticks/sec)\n", *ticks, formatDuration(elapsed), float64(*ticks)/elapsed.Seconds())
}
