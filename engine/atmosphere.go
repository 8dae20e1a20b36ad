package engine

import (
	"math/rand"

	"gonum.org/v1/gonum/blas/blas32"
)

// Atmosphere advances humidity and wind: each drifts by a small random walk
// plus a directional bias, then is blurred across its neighborhood to
// approximate diffusion (spec §4.7). The blur's weighted combine is
// expressed as a blas32 AXPY accumulation rather than a hand-rolled inner
// loop (see blurBox).
func Atmosphere(s *State, rng *rand.Rand) {
	cfg := s.cfg.Atmosphere
	w, h := s.W, s.H
	n := w * h

	heatBias := float32((s.Heat - 0.5) * cfg.HeatDryBias)
	humiditySrc := blas32.Vector{N: n, Data: make([]float32, n), Inc: 1}
	for i := 0; i < n; i++ {
		drift := float32(rng.NormFloat64() * cfg.HumidityDrift)
		humiditySrc.Data[i] = s.Humidity[i] + drift - heatBias
	}
	blurred := blas32.Vector{N: n, Data: make([]float32, n), Inc: 1}
	weightSum := blurBox(s, humiditySrc.Data, blurred.Data, cfg.BlurRadius)

	for i := 0; i < n; i++ {
		avg := blurred.Data[i]
		if weightSum[i] > 0 {
			avg /= weightSum[i]
		}
		s.Humidity[i] = clamp01(avg)
	}

	windX := make([]float32, n)
	windY := make([]float32, n)
	for i := 0; i < n; i++ {
		windX[i] = s.Wind[i*2] + float32(rng.NormFloat64()*cfg.WindDrift)
		windY[i] = s.Wind[i*2+1] + float32(rng.NormFloat64()*cfg.WindDrift)
	}
	blurredX := make([]float32, n)
	blurredY := make([]float32, n)
	wSumX := blurBox(s, windX, blurredX, cfg.BlurRadius)
	wSumY := blurBox(s, windY, blurredY, cfg.BlurRadius)

	maxSpeed := float32(cfg.MaxWindSpeed)
	for i := 0; i < n; i++ {
		ax, ay := blurredX[i], blurredY[i]
		if wSumX[i] > 0 {
			ax /= wSumX[i]
		}
		if wSumY[i] > 0 {
			ay /= wSumY[i]
		}

		mag := windMagnitude(ax, ay)
		if mag > maxSpeed && mag > 0 {
			scale := maxSpeed / mag
			ax *= scale
			ay *= scale
		}
		s.Wind[i*2] = ax
		s.Wind[i*2+1] = ay
	}
}

// Rain triggers localized precipitation wherever humidity has built up past
// a threshold: water moves from the atmospheric reserve back to the grid
// through WaterPool.Rain (spec §4.2 "rain(n) moves n from atmospheric to
// free and schedules surface injection for a rain event"), queued via
// ScheduleRainInjection and applied in the same pass via DrainPendingRain.
// Each injection is drawn back out of Free as it lands on the surface, so
// a rain pass leaves State.Total() unchanged.
func Rain(s *State) {
	cfg := s.cfg.Atmosphere
	if cfg.RainHumidityThreshold <= 0 || cfg.RainAmountPerTick <= 0 {
		return
	}
	w, h := s.W, s.H
	threshold := float32(cfg.RainHumidityThreshold)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := s.Idx2(x, y)
			if s.Humidity[i] < threshold {
				continue
			}
			moved := s.Pool.Rain(int64(cfg.RainAmountPerTick))
			if moved <= 0 {
				continue
			}
			s.Pool.ScheduleRainInjection(x, y, int32(moved))
			s.Humidity[i] = clamp01(s.Humidity[i] - float32(cfg.RainHumidityDrawdown))
		}
	}

	for _, inj := range s.Pool.DrainPendingRain() {
		got := int32(s.Pool.Draw(int64(inj.amount)))
		if got <= 0 {
			continue
		}
		i := s.Idx2(inj.x, inj.y)
		s.WaterGrid[i] += got
		s.MarkDirty(inj.x, inj.y)
	}
}

// blurBox accumulates a (2*radius+1)^2 box sum of src into dst via blas32
// AXPY per offset (dst += 1*shifted(src)), returning the per-cell weight
// sum used to normalize into a true average. Out-of-bounds neighbors are
// skipped, so edge cells are normalized over fewer samples rather than
// zero-padded (spec §4.7: "no wraparound").
func blurBox(s *State, src, dst []float32, radius int) []float32 {
	w, h := s.W, s.H
	weight := make([]float32, w*h)
	vSrc := blas32.Vector{N: len(src), Data: src, Inc: 1}

	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			shifted := make([]float32, w*h)
			for y := 0; y < h; y++ {
				sy := y + dy
				if sy < 0 || sy >= h {
					continue
				}
				for x := 0; x < w; x++ {
					sx := x + dx
					if sx < 0 || sx >= w {
						continue
					}
					i := y*w + x
					shifted[i] = vSrc.Data[sy*w+sx]
					weight[i]++
				}
			}
			vDst := blas32.Vector{N: len(dst), Data: dst, Inc: 1}
			blas32.Axpy(1, blas32.Vector{N: len(shifted), Data: shifted, Inc: 1}, vDst)
		}
	}
	return weight
}
