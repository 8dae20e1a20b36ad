package telemetry

import (
	"fmt"
	"log/slog"

	"github.com/duskwell/oasis/config"
)

// MilestoneType identifies the type of milestone.
type MilestoneType string

const (
	MilestoneFloodSurge         MilestoneType = "flood_surge"
	MilestoneDroughtOnset       MilestoneType = "drought_onset"
	MilestoneOasisStable        MilestoneType = "oasis_stable"
	MilestoneWellspringRecovery MilestoneType = "wellspring_recovery"
	MilestoneErosionSurge       MilestoneType = "erosion_surge"
)

// Milestone represents an automatically triggered milestone.
type Milestone struct {
	Type        MilestoneType `csv:"type"`
	Tick        int64         `csv:"tick"`
	Description string        `csv:"description"`
}

// LogMilestone logs the milestone using slog.
func (m Milestone) LogMilestone() {
	slog.Info("milestone",
		"type", string(m.Type),
		"tick", m.Tick,
		"description", m.Description,
	)
}

// MilestoneDetector detects interesting moments in the simulation from a
// rolling history of window stats.
type MilestoneDetector struct {
	history     []WindowStats
	historySize int
	historyIdx  int
	historyFull bool

	recentWaterMin  int64 // minimum free pool seen in recent history
	recentWaterPeak int64 // peak surface water seen in recent history

	stableWindowsCount int
}

// NewMilestoneDetector creates a detector with the given history size.
func NewMilestoneDetector(historySize int) *MilestoneDetector {
	if historySize < 5 {
		historySize = 5 // minimum for oasis-stable detection
	}
	return &MilestoneDetector{
		history:     make([]WindowStats, historySize),
		historySize: historySize,
	}
}

// Check analyzes the latest stats and returns any triggered milestones.
func (md *MilestoneDetector) Check(stats WindowStats) []Milestone {
	var milestones []Milestone

	if md.historyFull || md.historyIdx > 0 {
		if m := md.checkFloodSurge(stats); m != nil {
			milestones = append(milestones, *m)
		}
		if m := md.checkDroughtOnset(stats); m != nil {
			milestones = append(milestones, *m)
		}
		if m := md.checkWellspringRecovery(stats); m != nil {
			milestones = append(milestones, *m)
		}
		if m := md.checkErosionSurge(stats); m != nil {
			milestones = append(milestones, *m)
		}
		if m := md.checkOasisStable(stats); m != nil {
			milestones = append(milestones, *m)
		}
	}

	md.addToHistory(stats)

	if stats.PoolFree < md.recentWaterMin || md.recentWaterMin == 0 {
		md.recentWaterMin = stats.PoolFree
	}
	if stats.TotalSurfaceWater > md.recentWaterPeak {
		md.recentWaterPeak = stats.TotalSurfaceWater
	}

	return milestones
}

func (md *MilestoneDetector) addToHistory(stats WindowStats) {
	md.history[md.historyIdx] = stats
	md.historyIdx = (md.historyIdx + 1) % md.historySize
	if md.historyIdx == 0 {
		md.historyFull = true
	}
}

func (md *MilestoneDetector) getHistory() []WindowStats {
	if md.historyFull {
		return md.history
	}
	return md.history[:md.historyIdx]
}

func (md *MilestoneDetector) checkFloodSurge(stats WindowStats) *Milestone {
	history := md.getHistory()
	if len(history) < 3 {
		return nil
	}

	cfg := config.Cfg().Milestones.FloodSurge

	var total int64
	for _, h := range history {
		total += h.TotalSurfaceWater
	}
	avg := float64(total) / float64(len(history))
	if avg == 0 {
		return nil
	}

	if float64(stats.TotalSurfaceWater) > avg*cfg.Multiplier && stats.TotalSurfaceWater >= cfg.MinSurge {
		return &Milestone{
			Type:        MilestoneFloodSurge,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("surface water %d is %.1fx the rolling average (%.0f)", stats.TotalSurfaceWater, float64(stats.TotalSurfaceWater)/avg, avg),
		}
	}
	return nil
}

func (md *MilestoneDetector) checkDroughtOnset(stats WindowStats) *Milestone {
	if md.recentWaterPeak == 0 {
		return nil
	}

	cfg := config.Cfg().Milestones.DroughtOnset

	dropPercent := 1.0 - float64(stats.TotalSurfaceWater)/float64(md.recentWaterPeak)
	if dropPercent > cfg.DropPercent && stats.TotalSurfaceWater < md.recentWaterPeak-cfg.MinDrop {
		oldPeak := md.recentWaterPeak
		md.recentWaterPeak = stats.TotalSurfaceWater

		return &Milestone{
			Type:        MilestoneDroughtOnset,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("surface water dropped %.0f%% from peak %d to %d", dropPercent*100, oldPeak, stats.TotalSurfaceWater),
		}
	}
	return nil
}

func (md *MilestoneDetector) checkWellspringRecovery(stats WindowStats) *Milestone {
	cfg := config.Cfg().Milestones.WellspringRecovery

	if md.recentWaterMin == 0 || md.recentWaterMin > cfg.MinPoolFloor {
		return nil
	}

	threshold := md.recentWaterMin * cfg.RecoveryMultiplier
	if stats.PoolFree >= threshold && stats.PoolFree >= cfg.MinFinal {
		oldMin := md.recentWaterMin
		md.recentWaterMin = stats.PoolFree

		return &Milestone{
			Type:        MilestoneWellspringRecovery,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("free water pool recovered from %d to %d", oldMin, stats.PoolFree),
		}
	}
	return nil
}

func (md *MilestoneDetector) checkErosionSurge(stats WindowStats) *Milestone {
	history := md.getHistory()
	if len(history) < 3 {
		return nil
	}

	cfg := config.Cfg().Milestones.ErosionSurge

	var total int
	for _, h := range history {
		total += h.ErosionEvents
	}
	avg := float64(total) / float64(len(history))
	if avg == 0 || stats.ErosionEvents < cfg.MinEvents {
		return nil
	}

	if float64(stats.ErosionEvents) > avg*cfg.Multiplier {
		return &Milestone{
			Type:        MilestoneErosionSurge,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("erosion events %d is %.1fx the rolling average (%.1f)", stats.ErosionEvents, float64(stats.ErosionEvents)/avg, avg),
		}
	}
	return nil
}

func (md *MilestoneDetector) checkOasisStable(stats WindowStats) *Milestone {
	cfg := config.Cfg().Milestones.OasisStable

	if stats.WadiCells < cfg.MinWadiCells {
		md.stableWindowsCount = 0
		return nil
	}

	history := md.getHistory()
	if len(history) < 4 {
		return nil
	}

	recent := history[len(history)-4:]
	var moistureSum float64
	for _, h := range recent {
		moistureSum += h.MoistureMean
	}
	moistureMean := moistureSum / 4

	var moistureVar float64
	for _, h := range recent {
		diff := h.MoistureMean - moistureMean
		moistureVar += diff * diff
	}
	moistureVar /= 4

	cv := 0.0
	if moistureMean > 0 {
		cv = moistureVar / (moistureMean * moistureMean)
	}

	if cv < cfg.CVThreshold {
		md.stableWindowsCount++
	} else {
		md.stableWindowsCount = 0
	}

	if md.stableWindowsCount == cfg.StableWindows {
		return &Milestone{
			Type:        MilestoneOasisStable,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("oasis stable with %d wadi cells over %d+ windows", stats.WadiCells, cfg.StableWindows),
		}
	}
	return nil
}
