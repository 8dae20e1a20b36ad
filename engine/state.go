// Package engine implements the water-balance terraforming simulation: a
// dense cellular grid advanced by whole-array stencil operations under a
// fixed tick schedule. All state lives in State; subsystems read and
// mutate it directly, never through per-cell objects.
package engine

import (
	"github.com/duskwell/oasis/config"
)

// DayPhase identifies the point in the day/night cycle (spec §4.1, GLOSSARY).
type DayPhase uint8

const (
	Dawn DayPhase = iota
	Day
	Dusk
	Night
)

func (d DayPhase) String() string {
	switch d {
	case Dawn:
		return "Dawn"
	case Day:
		return "Day"
	case Dusk:
		return "Dusk"
	case Night:
		return "Night"
	default:
		return "Unknown"
	}
}

// State owns every dense array of the simulation. There is exactly one
// State per running world; it is passed explicitly to every subsystem
// (spec §9: "no hidden singletons").
type State struct {
	cfg *config.Config

	W, H, L int

	BedrockBase      []int32
	TerrainLayers    []int32 // L*W*H, depth
	TerrainMaterials []Material // L*W*H
	ElevationGrid    []int32    // W*H, derived

	WaterGrid          []int32   // W*H
	SubsurfaceWater    []int32   // L*W*H
	Porosity           []float32 // L*W*H, in [0,1]
	PermeabilityVert   []float32 // L*W*H, in [0,1]
	PermeabilityHoriz  []float32 // L*W*H, in [0,1]

	KindGrid     []Biome   // W*H
	Wellspring   []int32   // W*H
	Humidity     []float32 // W*H, in [0,1]
	Wind         []float32 // W*H*2, (x,y) components
	Moisture     []float32 // W*H, EMA of surface+subsurface water
	WaterPassage []float32 // W*H, daily accumulator
	WindExposure []float32 // W*H, daily accumulator

	StructureID []int32 // W*H, -1 if unoccupied

	dirtyCells    map[[2]int]struct{}
	terrainChanged bool

	Tick     int64
	DayPhase DayPhase
	Heat     float64

	Pool WaterPool

	events *EventLog

	connectivity *connectivityCache

	structures *structureWorld

	seed int64
}

// Idx2 maps a 2D cell coordinate to its flat index in a W*H array.
func (s *State) Idx2(x, y int) int { return y*s.W + x }

// Idx3 maps a (layer, x, y) coordinate to its flat index in an L*W*H array.
func (s *State) Idx3(l Layer, x, y int) int { return int(l)*s.W*s.H + y*s.W + x }

// InBounds reports whether (x,y) lies within the grid.
func (s *State) InBounds(x, y int) bool {
	return x >= 0 && x < s.W && y >= 0 && y < s.H
}

// NewState allocates a zeroed state of the configured dimensions. Callers
// normally use NewWorld (worldgen.go) to obtain a populated state; NewState
// is exposed for tests that want to hand-construct small grids (spec §8
// scenarios S1-S6).
func NewState(cfg *config.Config, width, height int) *State {
	w, h, l := width, height, NumLayers
	s := &State{
		cfg: cfg,
		W:   w, H: h, L: l,

		BedrockBase:      make([]int32, w*h),
		TerrainLayers:    make([]int32, l*w*h),
		TerrainMaterials: make([]Material, l*w*h),
		ElevationGrid:    make([]int32, w*h),

		WaterGrid:         make([]int32, w*h),
		SubsurfaceWater:   make([]int32, l*w*h),
		Porosity:          make([]float32, l*w*h),
		PermeabilityVert:  make([]float32, l*w*h),
		PermeabilityHoriz: make([]float32, l*w*h),

		KindGrid:     make([]Biome, w*h),
		Wellspring:   make([]int32, w*h),
		Humidity:     make([]float32, w*h),
		Wind:         make([]float32, w*h*2),
		Moisture:     make([]float32, w*h),
		WaterPassage: make([]float32, w*h),
		WindExposure: make([]float32, w*h),

		StructureID: make([]int32, w*h),

		dirtyCells: make(map[[2]int]struct{}),

		events: NewEventLog(cfg.Scheduler.EventLogCapacity),

		DayPhase: Dawn,
	}
	for i := range s.StructureID {
		s.StructureID[i] = -1
	}
	s.structures = newStructureWorld()
	s.connectivity = newConnectivityCache(s)
	return s
}

// Config returns the configuration this state was built with.
func (s *State) Config() *config.Config { return s.cfg }

// Events returns the event log (spec §6.4).
func (s *State) Events() *EventLog { return s.events }

// MarkDirty records a cell whose static render needs invalidation.
func (s *State) MarkDirty(x, y int) {
	s.dirtyCells[[2]int{x, y}] = struct{}{}
}

// TakeDirty returns and clears the accumulated dirty-cell set.
func (s *State) TakeDirty() [][2]int {
	out := make([][2]int, 0, len(s.dirtyCells))
	for c := range s.dirtyCells {
		out = append(out, c)
	}
	s.dirtyCells = make(map[[2]int]struct{})
	return out
}

// MarkTerrainChanged flags that elevation and the connectivity cache must
// be rebuilt before the next stencil pass reads them (spec §3 invariant 6,
// §4.5 connectivity cache, §4.11).
func (s *State) MarkTerrainChanged() {
	s.terrainChanged = true
}

// RebuildElevation recomputes elevation_grid = bedrock_base + sum(terrain_layers)
// and the connectivity cache, then clears terrain_changed. Idempotent.
func (s *State) RebuildElevation() {
	if !s.terrainChanged {
		return
	}
	for y := 0; y < s.H; y++ {
		for x := 0; x < s.W; x++ {
			i2 := s.Idx2(x, y)
			total := s.BedrockBase[i2]
			for l := 0; l < s.L; l++ {
				total += s.TerrainLayers[int(l)*s.W*s.H+i2]
			}
			s.ElevationGrid[i2] = total
		}
	}
	s.connectivity.rebuild(s)
	s.terrainChanged = false
}

// TotalElevation returns elevation_grid(x,y) (spec §6.1).
func (s *State) TotalElevation(x, y int) int32 {
	return s.ElevationGrid[s.Idx2(x, y)]
}

// ExposedMaterial returns the material of the topmost non-empty layer at
// (x,y), or MaterialEmpty if every layer is bare (spec §6.1).
func (s *State) ExposedMaterial(x, y int) Material {
	l, ok := s.topmostNonEmpty(x, y)
	if !ok {
		return MaterialEmpty
	}
	return s.TerrainMaterials[s.Idx3(l, x, y)]
}

// CellTotalWater returns surface water plus the sum of subsurface water
// across all layers at (x,y) (spec §6.1).
func (s *State) CellTotalWater(x, y int) int64 {
	total := int64(s.WaterGrid[s.Idx2(x, y)])
	for l := 0; l < s.L; l++ {
		total += int64(s.SubsurfaceWater[int(l)*s.W*s.H+s.Idx2(x, y)])
	}
	return total
}

// AverageMoisture returns the mean moisture_grid value over a rectangular
// region [x0,x1) x [y0,y1) (spec §6.1).
func (s *State) AverageMoisture(x0, y0, x1, y1 int) float64 {
	if x0 < 0 {
		x0 = 0
	}
	if y0 < 0 {
		y0 = 0
	}
	if x1 > s.W {
		x1 = s.W
	}
	if y1 > s.H {
		y1 = s.H
	}
	if x1 <= x0 || y1 <= y0 {
		return 0
	}
	var sum float64
	count := 0
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			sum += float64(s.Moisture[s.Idx2(x, y)])
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}

// topmostNonEmpty returns the highest layer index with non-zero depth at
// (x,y), strata ordered bottom-up so "topmost" is the largest Layer value.
func (s *State) topmostNonEmpty(x, y int) (Layer, bool) {
	for l := s.L - 1; l >= 0; l-- {
		if s.TerrainLayers[s.Idx3(Layer(l), x, y)] > 0 {
			return Layer(l), true
		}
	}
	return 0, false
}

// LayerCapacity returns the maximum water a layer cell can hold:
// porosity * depth (GLOSSARY "Capacity").
func (s *State) LayerCapacity(l Layer, x, y int) int32 {
	i3 := s.Idx3(l, x, y)
	depth := s.TerrainLayers[i3]
	if depth == 0 {
		return 0
	}
	cap := float32(depth) * s.Porosity[i3]
	return int32(cap)
}

// clampNonNegativeInt32 clamps a slice to >=0, logging each clamp as a
// low-priority invariant-drift event (spec §7 "Invariant-drift").
func (s *State) clampNonNegativeInt32(arr []int32, kind EventKind) {
	for i, v := range arr {
		if v < 0 {
			arr[i] = 0
			s.events.Push(Event{Tick: s.Tick, Kind: kind, Message: "clamped negative value to zero"})
		}
	}
}
