package stats

import (
	"math"
	"testing"
)

func TestCalculateXmR_Limits(t *testing.T) {
	values := []float64{10, 12, 10, 12, 10, 12}
	r := CalculateXmR(values, nil)

	if r.Average != 11 {
		t.Errorf("expected average 11, got %v", r.Average)
	}
	if r.AmR != 2 {
		t.Errorf("expected AmR 2, got %v", r.AmR)
	}
	if math.Abs(r.UNPL-16.32) > 1e-9 || math.Abs(r.LNPL-5.68) > 1e-9 {
		t.Errorf("unexpected limits: %v / %v", r.LNPL, r.UNPL)
	}
	if !r.Stable() {
		t.Errorf("expected no signals, got %+v", r.Signals)
	}
}

func TestCalculateXmR_Outlier(t *testing.T) {
	values := []float64{10, 11, 10, 11, 10, 11, 10, 40, 10, 11}
	labels := []string{"h1", "h2", "h3", "h4", "h5", "h6", "h7", "h8", "h9", "h10"}
	r := CalculateXmR(values, labels)

	found := false
	for _, s := range r.Signals {
		if s.Type == "outlier" && s.Index == 7 && s.Label == "h8" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected outlier at index 7, got %+v", r.Signals)
	}
}

func TestCalculateXmR_Shift(t *testing.T) {
	values := []float64{5, 5, 5, 5, 5, 5, 5, 5, 9, 9, 9, 9, 9, 9, 9, 9}
	r := CalculateXmR(values, nil)

	shifts := 0
	for _, s := range r.Signals {
		if s.Type == "shift" {
			shifts++
		}
	}
	if shifts != 2 {
		t.Errorf("expected a shift below and above the average, got %+v", r.Signals)
	}
}

func TestCalculateXmR_LowerLimitFloor(t *testing.T) {
	r := CalculateXmR([]float64{0, 10, 0, 10}, nil)
	if r.LNPL != 0 {
		t.Errorf("lower limit should be floored at 0, got %v", r.LNPL)
	}
	if empty := CalculateXmR(nil, nil); empty.Average != 0 || empty.Signals != nil {
		t.Error("expected zero result for empty input")
	}
}
