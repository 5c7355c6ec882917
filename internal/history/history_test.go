package history

import (
	"errors"
	"math/rand"
	"reflect"
	"testing"
	"time"
)

func TestGenerate_Window(t *testing.T) {
	now := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	points, err := Generate(48, now, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatal(err)
	}

	if len(points) != 48 {
		t.Fatalf("expected 48 points, got %d", len(points))
	}
	if !points[0].Timestamp.Equal(now.Add(-48 * time.Hour)) {
		t.Errorf("first point at %v", points[0].Timestamp)
	}
	if !points[47].Timestamp.Equal(now.Add(-time.Hour)) {
		t.Errorf("last point at %v", points[47].Timestamp)
	}
	for _, p := range points {
		if p.Volume < 0 || p.Breaches < 0 || p.AvgProcessTime < 0 {
			t.Fatalf("negative values in %+v", p)
		}
		if p.ActiveEmployees < 10 || p.ActiveEmployees > 20 {
			t.Fatalf("staffing %d outside the 10-20 cycle", p.ActiveEmployees)
		}
	}
}

func TestGenerate_Reproducible(t *testing.T) {
	now := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	a, _ := Generate(24, now, rand.New(rand.NewSource(7)))
	b, _ := Generate(24, now, rand.New(rand.NewSource(7)))
	if !reflect.DeepEqual(a, b) {
		t.Error("same seed produced different history")
	}
}

func TestGenerate_InvalidWindow(t *testing.T) {
	for _, h := range []int{0, -3, MaxHours + 1} {
		if _, err := Generate(h, time.Now(), rand.New(rand.NewSource(1))); !errors.Is(err, ErrInvalidWindow) {
			t.Errorf("hours %d: expected ErrInvalidWindow, got %v", h, err)
		}
	}
}

func TestPoisson_Mean(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	total := 0
	const n = 5000
	for i := 0; i < n; i++ {
		total += poisson(rng, 8)
	}
	mean := float64(total) / n
	if mean < 7.7 || mean > 8.3 {
		t.Errorf("sample mean %.2f too far from 8", mean)
	}
}

func TestSummarize(t *testing.T) {
	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	points := []Point{
		{Timestamp: t0, Volume: 100, Breaches: 2, AvgProcessTime: 30},
		{Timestamp: t0.Add(time.Hour), Volume: 300, Breaches: 5, AvgProcessTime: 40},
		{Timestamp: t0.Add(2 * time.Hour), Volume: 200, Breaches: 1, AvgProcessTime: 35},
	}

	s := Summarize(points)
	if s.TotalVolume != 600 || s.TotalBreaches != 8 {
		t.Errorf("totals = %d/%d", s.TotalVolume, s.TotalBreaches)
	}
	if s.MeanVolume != 200 || s.MedianVolume != 200 {
		t.Errorf("mean/median = %v/%v", s.MeanVolume, s.MedianVolume)
	}
	if s.PeakVolume != 300 || !s.PeakVolumeAt.Equal(t0.Add(time.Hour)) {
		t.Errorf("peak = %d at %v", s.PeakVolume, s.PeakVolumeAt)
	}
	if s.MeanAvgProcess != 35 {
		t.Errorf("mean process time = %v", s.MeanAvgProcess)
	}
	if s.P85Volume != 300 || s.VolumeFatTail != 1.5 {
		t.Errorf("p85/fat tail = %v/%v", s.P85Volume, s.VolumeFatTail)
	}
	if s.BreachBehavior.AmR != 3.5 || !s.BreachBehavior.Stable() {
		t.Errorf("breach behaviour = %+v", s.BreachBehavior)
	}

	if empty := Summarize(nil); empty.Hours != 0 || empty.TotalVolume != 0 {
		t.Errorf("empty summary = %+v", empty)
	}
}

func TestRollup(t *testing.T) {
	t0 := time.Date(2026, 1, 1, 22, 0, 0, 0, time.UTC)
	points := []Point{
		{Timestamp: t0, Volume: 100, Breaches: 2, AvgProcessTime: 30, ActiveEmployees: 10},
		{Timestamp: t0.Add(time.Hour), Volume: 300, Breaches: 4, AvgProcessTime: 40, ActiveEmployees: 12},
		{Timestamp: t0.Add(2 * time.Hour), Volume: 200, Breaches: 1, AvgProcessTime: 35, ActiveEmployees: 9},
	}

	days, err := Rollup(points, "day")
	if err != nil {
		t.Fatal(err)
	}
	if len(days) != 2 {
		t.Fatalf("expected 2 daily buckets, got %d", len(days))
	}
	first := days[0]
	if first.Hours != 2 || first.Volume != 400 || first.Breaches != 6 || first.PeakActiveStaff != 12 {
		t.Errorf("first bucket = %+v", first)
	}
	if first.MeanProcessTime != 35 || first.BreachesPerVolume != 15 {
		t.Errorf("first bucket ratios = %+v", first)
	}
	if days[1].Hours != 1 || !days[1].Start.Equal(time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("second bucket = %+v", days[1])
	}

	hours, _ := Rollup(points, "hour")
	if len(hours) != 3 {
		t.Errorf("expected 3 hourly buckets, got %d", len(hours))
	}
	if _, err := Rollup(points, "month"); err == nil {
		t.Error("expected error for unsupported bucket")
	}
}
