package engine

import (
	"math/rand"
	"testing"

	"github.com/duskwell/oasis/config"
)

func TestNewWorldProducesConsistentGrid(t *testing.T) {
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("config.Load: %v", err)
	}
	cfg.World.Width = 12
	cfg.World.Height = 12

	var phases []string
	s, err := NewWorld(cfg, 42, func(phase string, frac float64) {
		if frac == 0 {
			phases = append(phases, phase)
		}
	})
	if err != nil {
		t.Fatalf("NewWorld: %v", err)
	}
	if s.W != 12 || s.H != 12 {
		t.Fatalf("grid size = %dx%d, want 12x12", s.W, s.H)
	}

	for _, want := range []string{"bedrock", "biomes", "layers", "wellsprings"} {
		found := false
		for _, p := range phases {
			if p == want {
				found = true
			}
		}
		if !found {
			t.Fatalf("expected a progress callback for phase %q, got %v", want, phases)
		}
	}

	for y := 0; y < s.H; y++ {
		for x := 0; x < s.W; x++ {
			i2 := s.Idx2(x, y)
			want := s.BedrockBase[i2]
			for l := 0; l < s.L; l++ {
				want += s.TerrainLayers[s.Idx3(Layer(l), x, y)]
			}
			if got := s.ElevationGrid[i2]; got != want {
				t.Fatalf("cell (%d,%d): elevation %d != bedrock+layers %d", x, y, got, want)
			}
		}
	}

	if int64(s.Pool.Free) != int64(cfg.WorldGen.InitialWaterPool) {
		t.Fatalf("initial free pool = %d, want %d", s.Pool.Free, cfg.WorldGen.InitialWaterPool)
	}
}

// Wave-function-collapse biome placement must never leave a cell outside
// the five known biomes, even after a contradiction forces a restart or
// fallback (spec §4.10 step 2).
func TestGenerateBiomeLayoutAlwaysResolves(t *testing.T) {
	s := newTestState(t, 20, 20)
	rng := rand.New(rand.NewSource(7))

	coarse, err := generateBiomeLayout(s, rng, 4, 3)
	if err != nil {
		t.Fatalf("generateBiomeLayout: %v", err)
	}
	upsampleBiomes(s, coarse, 4)

	valid := map[Biome]bool{
		BiomeFlat: true, BiomeDune: true, BiomeWadi: true,
		BiomeSalt: true, BiomeRock: true,
	}
	for _, b := range s.KindGrid {
		if !valid[b] {
			t.Fatalf("unexpected biome value %v after upsampling", b)
		}
	}
}
