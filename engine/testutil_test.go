package engine

import (
	"testing"

	"github.com/duskwell/oasis/config"
)

// newTestState builds a small, hand-configured state for scenario tests,
// bypassing world generation entirely (spec §8 scenarios are specified as
// literal inputs on tiny grids).
func newTestState(t *testing.T, width, height int) *State {
	t.Helper()
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("config.Load: %v", err)
	}
	cfg.World.Width = width
	cfg.World.Height = height
	return NewState(cfg, width, height)
}

// fillFlat sets bedrock_base to a uniform elevation and every cell's
// layer stack empty, so TotalElevation(x,y) == elevation for all cells
// once RebuildElevation runs.
func fillFlat(s *State, elevation int32) {
	for i := range s.BedrockBase {
		s.BedrockBase[i] = elevation
	}
	s.MarkTerrainChanged()
	s.RebuildElevation()
}
