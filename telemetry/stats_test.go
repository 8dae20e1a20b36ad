package telemetry

import "testing"

func TestPercentileBasic(t *testing.T) {
	sorted := []float64{1, 2, 3, 4, 5}

	if got := Percentile(sorted, 0); got != 1 {
		t.Errorf("p0 = %v, want 1", got)
	}
	if got := Percentile(sorted, 1); got != 5 {
		t.Errorf("p100 = %v, want 5", got)
	}
	if got := Percentile(sorted, 0.5); got != 3 {
		t.Errorf("p50 = %v, want 3", got)
	}
}

func TestPercentileEmpty(t *testing.T) {
	if got := Percentile(nil, 0.5); got != 0 {
		t.Errorf("percentile of empty slice = %v, want 0", got)
	}
}

func TestComputeFloatStats(t *testing.T) {
	values := []float64{0.1, 0.2, 0.3, 0.4, 0.5}

	mean, p10, p50, p90 := ComputeFloatStats(values)

	if mean < 0.29 || mean > 0.31 {
		t.Errorf("mean = %v, want ~0.3", mean)
	}
	if p50 != 0.3 {
		t.Errorf("p50 = %v, want 0.3", p50)
	}
	if p10 > p50 {
		t.Errorf("p10 (%v) should not exceed p50 (%v)", p10, p50)
	}
	if p90 < p50 {
		t.Errorf("p90 (%v) should not be less than p50 (%v)", p90, p50)
	}
}

func TestComputeFloatStatsEmpty(t *testing.T) {
	mean, p10, p50, p90 := ComputeFloatStats(nil)
	if mean != 0 || p10 != 0 || p50 != 0 || p90 != 0 {
		t.Errorf("expected all zeros for empty input, got %v %v %v %v", mean, p10, p50, p90)
	}
}
