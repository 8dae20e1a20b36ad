package engine

import (
	"math/rand"
	"testing"
)

// S6 Humidity smoothing: a single spike of humidity with zero everywhere
// else should spread out and its peak should fall monotonically under
// repeated diffusion, with no cell ever leaving [0,1] (spec §8 S6).
func TestAtmosphereHumiditySpikeSmooths(t *testing.T) {
	s := newTestState(t, 7, 7)
	fillFlat(s, 10)
	s.cfg.Atmosphere.HumidityDrift = 0
	s.cfg.Atmosphere.WindDrift = 0
	s.cfg.Atmosphere.HeatDryBias = 0
	s.Heat = 0.5 // heatBias = (Heat-0.5)*HeatDryBias = 0

	center := s.Idx2(3, 3)
	s.Humidity[center] = 1.0

	rng := rand.New(rand.NewSource(1))

	prevMax := float32(1.0)
	for tick := 0; tick < 10; tick++ {
		Atmosphere(s, rng)

		var max float32
		for _, v := range s.Humidity {
			if v < 0 || v > 1 {
				t.Fatalf("tick %d: humidity %f left [0,1]", tick, v)
			}
			if v > max {
				max = v
			}
		}
		if max > prevMax {
			t.Fatalf("tick %d: peak humidity rose from %f to %f", tick, prevMax, max)
		}
		prevMax = max
	}
	if prevMax >= 1.0 {
		t.Fatalf("expected the spike to have spread out, peak is still %f", prevMax)
	}
}
