package engine

import "math"

// clamp01 clamps a float32 value to the [0, 1] range.
func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// clampFloat clamps a float32 value between minVal and maxVal.
func clampFloat(v, minVal, maxVal float32) float32 {
	if v < minVal {
		return minVal
	}
	if v > maxVal {
		return maxVal
	}
	return v
}

// clampInt clamps an int between minVal and maxVal.
func clampInt(v, minVal, maxVal int) int {
	if v < minVal {
		return minVal
	}
	if v > maxVal {
		return maxVal
	}
	return v
}

// floorDiv returns floor(a/b) for positive b, matching the spec's
// "floor(...)" transfer formulas (§4.3, §4.4) without float rounding
// surprises for negative numerators.
func floorDiv(a, b int32) int32 {
	if b == 0 {
		return 0
	}
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// fastSqrt approximates sqrt(x) using a fast inverse-square-root pass
// followed by one Newton iteration. Used on the per-tick wind-magnitude
// hot path (spec §4.7, §4.8) where float64 math.Sqrt's conversion cost
// shows up in profiles.
func fastSqrt(x float32) float32 {
	if x <= 0 {
		return 0
	}
	i := math.Float32bits(x)
	i = 0x5f375a86 - (i >> 1)
	y := math.Float32frombits(i)
	y = y * (1.5 - 0.5*x*y*y)
	return x * y
}

// windMagnitude returns |wind| for the wind vector stored at a cell.
func windMagnitude(wx, wy float32) float32 {
	return fastSqrt(wx*wx + wy*wy)
}
