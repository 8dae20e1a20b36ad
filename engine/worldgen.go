package engine

import (
	"fmt"
	"math"
	"math/rand"

	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/duskwell/oasis/config"
)

// ProgressFunc reports coarse-grained world-generation progress: a phase
// name and a fraction in [0,1]. The callback only observes progress:
// NewWorld cannot be interrupted or paused through it and always runs
// every phase to completion.
type ProgressFunc func(phase string, frac float64)

// NewWorld generates a fresh State: bedrock terrain from simplex noise, a
// biome layout produced by wave-function-collapse constraint propagation,
// per-cell soil strata biased by biome, wellspring placement, and the
// initial water-pool balance (spec §4.10).
func NewWorld(cfg *config.Config, seed int64, progress ProgressFunc) (*State, error) {
	if progress == nil {
		progress = func(string, float64) {}
	}
	s := NewState(cfg, cfg.World.Width, cfg.World.Height)
	s.seed = seed
	rng := rand.New(rand.NewSource(seed))

	progress("bedrock", 0)
	generateBedrock(s, rng, seed)
	progress("bedrock", 1)

	progress("biomes", 0)
	coarse, err := generateBiomeLayout(s, rng, cfg.WorldGen.CoarseCellSize, cfg.WorldGen.MaxWFCRestarts)
	if err != nil {
		return nil, err
	}
	upsampleBiomes(s, coarse, cfg.WorldGen.CoarseCellSize)
	progress("biomes", 1)

	progress("layers", 0)
	generateLayers(s, rng)
	progress("layers", 1)

	progress("wellsprings", 0)
	placeWellsprings(s, rng, cfg.WorldGen.WellspringDensity, cfg.WorldGen.WellspringMinOutput, cfg.WorldGen.WellspringMaxOutput)
	progress("wellsprings", 1)

	s.MarkTerrainChanged()
	s.RebuildElevation()
	s.Pool.Free = int64(cfg.WorldGen.InitialWaterPool)

	progress("done", 1)
	return s, nil
}

// generateBedrock samples 2D simplex noise for low-frequency elevation,
// applies a non-linear sharpness transform to accentuate basins and
// ridges, and writes BedrockBase (spec §4.10.1).
func generateBedrock(s *State, rng *rand.Rand, seed int64) {
	noise := opensimplex.NewNormalized(seed)
	cfg := s.cfg.WorldGen
	scale := cfg.BedrockNoiseScale
	if scale <= 0 {
		scale = 1
	}
	amplitude := cfg.BedrockAmplitude
	sharpness := cfg.BedrockSharpness
	if sharpness <= 0 {
		sharpness = 1
	}
	floor := int32(s.cfg.World.MinBedrockElevation)

	for y := 0; y < s.H; y++ {
		for x := 0; x < s.W; x++ {
			n := noise.Eval2(float64(x)/scale, float64(y)/scale)
			shaped := math.Pow(n, sharpness)
			elev := floor + int32(shaped*amplitude)
			if elev < floor {
				elev = floor
			}
			s.BedrockBase[s.Idx2(x, y)] = elev
		}
	}
}

// generateLayers populates terrain_layers and terrain_materials per cell,
// biased by the cell's biome via layerDepthRange, with depth jittered
// uniformly within each layer's biome-specific range (spec §4.10.3).
func generateLayers(s *State, rng *rand.Rand) {
	for y := 0; y < s.H; y++ {
		for x := 0; x < s.W; x++ {
			biome := s.KindGrid[s.Idx2(x, y)]
			for l := 0; l < s.L; l++ {
				layer := Layer(l)
				if layer == Bedrock {
					continue
				}
				lo, hi := layerDepthRange(layer, biome)
				depth := lo
				if hi > lo {
					depth = lo + rng.Intn(hi-lo+1)
				}
				i3 := s.Idx3(layer, x, y)
				s.TerrainLayers[i3] = int32(depth)
				if depth > 0 {
					s.TerrainMaterials[i3] = defaultMaterial(layer)
				} else {
					s.TerrainMaterials[i3] = MaterialEmpty
				}
				s.Porosity[i3] = porosityFor(layer, s.TerrainMaterials[i3])
				s.PermeabilityVert[i3] = permeabilityFor(layer, s.TerrainMaterials[i3])
				s.PermeabilityHoriz[i3] = s.PermeabilityVert[i3]
			}
		}
	}
}

// porosityFor and permeabilityFor give coarse, materially-distinct
// defaults: coarser materials (gravel, sand) hold less water per unit
// depth but pass it more readily than fine materials (clay, loam).
func porosityFor(l Layer, m Material) float32 {
	switch m {
	case MaterialGravel, MaterialSand:
		return 0.35
	case MaterialClay:
		return 0.45
	case MaterialLoam:
		return 0.5
	case MaterialHumus:
		return 0.6
	case MaterialSalt:
		return 0.3
	case MaterialStone:
		return 0.05
	default:
		return 0
	}
}

func permeabilityFor(l Layer, m Material) float32 {
	switch m {
	case MaterialGravel, MaterialSand:
		return 0.6
	case MaterialClay:
		return 0.1
	case MaterialLoam:
		return 0.3
	case MaterialHumus:
		return 0.4
	case MaterialSalt:
		return 0.05
	case MaterialStone:
		return 0.01
	default:
		return 0
	}
}

// placeWellsprings scatters wellspring sources across the grid at the
// given density, each with a random output in [minOut, maxOut] (spec
// §4.10.4, §4.5 wellspring injection).
func placeWellsprings(s *State, rng *rand.Rand, density float64, minOut, maxOut int) {
	if maxOut < minOut {
		maxOut = minOut
	}
	spread := maxOut - minOut + 1
	for y := 0; y < s.H; y++ {
		for x := 0; x < s.W; x++ {
			if rng.Float64() >= density {
				continue
			}
			out := minOut
			if spread > 1 {
				out += rng.Intn(spread)
			}
			s.Wellspring[s.Idx2(x, y)] = int32(out)
		}
	}
}

// coarseGrid is the WFC working state: one cell per CoarseCellSize x
// CoarseCellSize block of the fine grid.
type coarseGrid struct {
	w, h    int
	domain  [][]bool // domain[i][biome]
	settled []bool
}

const numBiomes = 5

func newCoarseGrid(w, h int) *coarseGrid {
	g := &coarseGrid{w: w, h: h}
	g.domain = make([][]bool, w*h)
	g.settled = make([]bool, w*h)
	for i := range g.domain {
		g.domain[i] = make([]bool, numBiomes)
		for b := range g.domain[i] {
			g.domain[i][b] = true
		}
	}
	return g
}

func (g *coarseGrid) entropy(i int) int {
	n := 0
	for _, v := range g.domain[i] {
		if v {
			n++
		}
	}
	return n
}

func (g *coarseGrid) only(i int) (Biome, bool) {
	found := -1
	for b, v := range g.domain[i] {
		if v {
			if found != -1 {
				return 0, false
			}
			found = b
		}
	}
	if found == -1 {
		return 0, false
	}
	return Biome(found), true
}

// biomeCompatible encodes the adjacency constraints used by the WFC pass
// (spec §4.10.2): wet lowland biomes (Wadi, Salt) never border dry
// highland biomes (Dune, Rock) directly.
func biomeCompatible(a, b Biome) bool {
	if a == b {
		return true
	}
	dry := func(x Biome) bool { return x == BiomeDune || x == BiomeRock }
	wet := func(x Biome) bool { return x == BiomeWadi || x == BiomeSalt }
	if dry(a) && wet(b) {
		return false
	}
	if wet(a) && dry(b) {
		return false
	}
	if a == BiomeSalt && b == BiomeDune {
		return false
	}
	if a == BiomeDune && b == BiomeSalt {
		return false
	}
	return true
}

var coarseNeighbor4 = []struct{ dx, dy int }{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}

// generateBiomeLayout runs wave-function collapse over the coarse grid,
// restarting on contradiction up to maxRestarts times (spec §4.10.2). On
// exhaustion it falls back to an all-Flat layout and logs the failure
// rather than leaving the world half-generated.
func generateBiomeLayout(s *State, rng *rand.Rand, cellSize, maxRestarts int) (*coarseGrid, error) {
	if cellSize < 1 {
		cellSize = 1
	}
	cw := (s.W + cellSize - 1) / cellSize
	ch := (s.H + cellSize - 1) / cellSize
	elevFrac := coarseElevationFractions(s, cw, ch, cellSize)

	for attempt := 0; attempt <= maxRestarts; attempt++ {
		g, ok := tryCollapse(cw, ch, rng, elevFrac)
		if ok {
			return g, nil
		}
		s.events.Push(Event{Tick: s.Tick, Kind: EventGenerationContradiction, Message: fmt.Sprintf("wfc contradiction on attempt %d", attempt)})
	}

	// Fallback: uniform Flat layout, still a valid (if uninteresting) world.
	g := newCoarseGrid(cw, ch)
	for i := range g.domain {
		for b := range g.domain[i] {
			g.domain[i][b] = b == int(BiomeFlat)
		}
		g.settled[i] = true
	}
	return g, nil
}

func tryCollapse(cw, ch int, rng *rand.Rand, elevFrac []float64) (*coarseGrid, bool) {
	g := newCoarseGrid(cw, ch)
	remaining := cw * ch

	for remaining > 0 {
		idx, ok := lowestEntropyCell(g)
		if !ok {
			return nil, false
		}
		choices := make([]int, 0, numBiomes)
		for b, v := range g.domain[idx] {
			if v {
				choices = append(choices, b)
			}
		}
		if len(choices) == 0 {
			return nil, false
		}
		chosen := weightedBiomeChoice(choices, elevFrac[idx], rng)
		for b := range g.domain[idx] {
			g.domain[idx][b] = b == chosen
		}
		g.settled[idx] = true
		remaining--

		if !propagate(g, idx, cw, ch) {
			return nil, false
		}
	}
	return g, true
}

// coarseElevationFractions averages bedrock_base over each coarse cell and
// normalizes the result to [0,1] across the whole grid, giving the WFC pass
// a per-cell elevation signal to weight its collapse against (spec §4.10.2
// "collapse it to a tag weighted by bedrock elevation").
func coarseElevationFractions(s *State, cw, ch, cellSize int) []float64 {
	avg := make([]float64, cw*ch)
	minE, maxE := math.Inf(1), math.Inf(-1)

	for cy := 0; cy < ch; cy++ {
		for cx := 0; cx < cw; cx++ {
			x0, y0 := cx*cellSize, cy*cellSize
			x1, y1 := min(x0+cellSize, s.W), min(y0+cellSize, s.H)
			var sum float64
			var n int
			for y := y0; y < y1; y++ {
				for x := x0; x < x1; x++ {
					sum += float64(s.BedrockBase[s.Idx2(x, y)])
					n++
				}
			}
			if n > 0 {
				sum /= float64(n)
			}
			idx := cy*cw + cx
			avg[idx] = sum
			if sum < minE {
				minE = sum
			}
			if sum > maxE {
				maxE = sum
			}
		}
	}

	span := maxE - minE
	if span <= 0 {
		span = 1
	}
	for i := range avg {
		avg[i] = (avg[i] - minE) / span
	}
	return avg
}

// biomeElevationWeight gives the relative likelihood of a biome collapsing
// at a coarse cell with normalized bedrock elevation elev in [0,1]: Rock
// and Dune favor high ground, Wadi and Salt favor the lowlands water
// drains to, Flat peaks at the middle band (spec §4.10.2).
func biomeElevationWeight(b Biome, elev float64) float64 {
	switch b {
	case BiomeRock:
		return 0.1 + 0.9*elev
	case BiomeDune:
		return 0.2 + 0.8*elev
	case BiomeWadi:
		return 0.1 + 0.9*(1-elev)
	case BiomeSalt:
		return 0.1 + 0.8*(1-elev)
	default: // BiomeFlat
		return 0.2 + 0.8*(1-math.Abs(elev-0.5)*2)
	}
}

// weightedBiomeChoice picks among choices with probability proportional to
// biomeElevationWeight, falling back to a uniform pick if every weight is
// non-positive (shouldn't happen given the weight floors above).
func weightedBiomeChoice(choices []int, elev float64, rng *rand.Rand) int {
	weights := make([]float64, len(choices))
	var total float64
	for i, b := range choices {
		w := biomeElevationWeight(Biome(b), elev)
		if w < 0 {
			w = 0
		}
		weights[i] = w
		total += w
	}
	if total <= 0 {
		return choices[rng.Intn(len(choices))]
	}
	r := rng.Float64() * total
	for i, w := range weights {
		r -= w
		if r <= 0 {
			return choices[i]
		}
	}
	return choices[len(choices)-1]
}

// lowestEntropyCell returns the unsettled cell with the fewest remaining
// candidates (ties broken by first scan order, spec §4.10.2 "lowest
// entropy"), or false if every cell is already settled.
func lowestEntropyCell(g *coarseGrid) (int, bool) {
	best := -1
	bestEntropy := numBiomes + 1
	for i := range g.domain {
		if g.settled[i] {
			continue
		}
		e := g.entropy(i)
		if e == 0 {
			return i, true // caller detects the contradiction via empty choices
		}
		if e < bestEntropy {
			bestEntropy = e
			best = i
		}
	}
	if best == -1 {
		return 0, false
	}
	return best, true
}

// propagate removes incompatible domain values from neighbors of a
// just-settled cell, cascading via a simple work queue (AC-3 style).
func propagate(g *coarseGrid, start, cw, ch int) bool {
	queue := []int{start}
	for len(queue) > 0 {
		i := queue[0]
		queue = queue[1:]
		x, y := i%cw, i/cw

		for _, n := range coarseNeighbor4 {
			nx, ny := x+n.dx, y+n.dy
			if nx < 0 || nx >= cw || ny < 0 || ny >= ch {
				continue
			}
			ni := ny*cw + nx
			if g.settled[ni] {
				continue
			}
			changed := false
			for b := range g.domain[ni] {
				if !g.domain[ni][b] {
					continue
				}
				compatible := false
				for sb := range g.domain[i] {
					if g.domain[i][sb] && biomeCompatible(Biome(sb), Biome(b)) {
						compatible = true
						break
					}
				}
				if !compatible {
					g.domain[ni][b] = false
					changed = true
				}
			}
			if g.entropy(ni) == 0 {
				return false
			}
			if changed {
				queue = append(queue, ni)
			}
		}
	}
	return true
}

// upsampleBiomes expands the settled coarse grid onto the fine KindGrid,
// each fine cell taking its containing coarse cell's biome.
func upsampleBiomes(s *State, g *coarseGrid, cellSize int) {
	if cellSize < 1 {
		cellSize = 1
	}
	cw := (s.W + cellSize - 1) / cellSize
	for y := 0; y < s.H; y++ {
		cy := y / cellSize
		for x := 0; x < s.W; x++ {
			cx := x / cellSize
			ci := cy*cw + cx
			b, ok := g.only(ci)
			if !ok {
				b = BiomeFlat
			}
			s.KindGrid[s.Idx2(x, y)] = b
		}
	}
}
