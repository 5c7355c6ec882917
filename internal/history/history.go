package history

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"

	"opsim/internal/stats"
)

const MaxHours = 720

var ErrInvalidWindow = errors.New("invalid history window")

// Point is one hour of synthetic operational history.
type Point struct {
	Timestamp       time.Time `json:"timestamp"`
	Volume          int       `json:"volume"`
	Breaches        int       `json:"breaches"`
	AvgProcessTime  float64   `json:"avgProcessTime"`
	ActiveEmployees int       `json:"activeEmployees"`
}

// Generate produces hours points ending one hour before now. Volume follows
// a daily cycle peaking mid-afternoon; staffing follows a business-hours
// cycle.
func Generate(hours int, now time.Time, rng *rand.Rand) ([]Point, error) {
	if hours < 1 || hours > MaxHours {
		return nil, fmt.Errorf("%w: %d hours (must be 1-%d)", ErrInvalidWindow, hours, MaxHours)
	}

	points := make([]Point, 0, hours)
	for i := 0; i < hours; i++ {
		ts := now.Add(-time.Duration(hours-i) * time.Hour)
		hod := float64(ts.Hour())

		seasonal := 100 * math.Sin((hod-6)*math.Pi/12)
		volume := math.Round(300 + seasonal + rng.NormFloat64()*25)
		apt := math.Round((35+rng.NormFloat64()*10)*10) / 10
		staff := math.Round(15 + 5*math.Sin((hod-9)*math.Pi/8))

		points = append(points, Point{
			Timestamp:       ts,
			Volume:          int(math.Max(0, volume)),
			Breaches:        poisson(rng, 8),
			AvgProcessTime:  math.Max(0, apt),
			ActiveEmployees: int(staff),
		})
	}
	return points, nil
}

// poisson samples by Knuth's multiplication method, adequate for small means.
func poisson(rng *rand.Rand, lambda float64) int {
	l := math.Exp(-lambda)
	k, p := 0, 1.0
	for {
		p *= rng.Float64()
		if p <= l {
			return k
		}
		k++
	}
}

// Summary condenses a history window.
type Summary struct {
	Hours          int       `json:"hours"`
	TotalVolume    int       `json:"totalVolume"`
	MeanVolume     float64   `json:"meanVolume"`
	MedianVolume   float64   `json:"medianVolume"`
	P85Volume      float64   `json:"p85Volume"`
	VolumeFatTail  float64   `json:"volumeFatTailRatio"`
	TotalBreaches  int       `json:"totalBreaches"`
	PeakVolume     int       `json:"peakVolume"`
	PeakVolumeAt   time.Time `json:"peakVolumeAt"`
	MeanAvgProcess float64   `json:"meanAvgProcessTime"`

	// BreachBehavior is the process behaviour chart of hourly breaches.
	BreachBehavior stats.XmRResult `json:"breachBehavior"`
}

func Summarize(points []Point) Summary {
	s := Summary{Hours: len(points)}
	if len(points) == 0 {
		return s
	}

	volumes := make([]int, len(points))
	fvolumes := make([]float64, len(points))
	apts := make([]float64, len(points))
	breaches := make([]float64, len(points))
	labels := make([]string, len(points))
	for i, p := range points {
		breaches[i] = float64(p.Breaches)
		labels[i] = p.Timestamp.Format(time.RFC3339)
		volumes[i] = p.Volume
		fvolumes[i] = float64(p.Volume)
		apts[i] = p.AvgProcessTime
		s.TotalVolume += p.Volume
		s.TotalBreaches += p.Breaches
	}

	idx, _ := stats.ArgMax(fvolumes)
	s.PeakVolume = points[idx].Volume
	s.PeakVolumeAt = points[idx].Timestamp
	s.MeanVolume = stats.Mean(fvolumes)
	s.MedianVolume = stats.CalculateMedianDiscrete(volumes)
	s.P85Volume = stats.Percentile(fvolumes, 0.85)
	s.VolumeFatTail = math.Round(stats.FatTailRatio(fvolumes)*100) / 100
	s.MeanAvgProcess = stats.Mean(apts)
	s.BreachBehavior = stats.CalculateXmR(breaches, labels)
	return s
}

// Bucket aggregates the points that fall into one rollup period.
type Bucket struct {
	Start             time.Time `json:"start"`
	Hours             int       `json:"hours"`
	Volume            int       `json:"volume"`
	Breaches          int       `json:"breaches"`
	MeanProcessTime   float64   `json:"meanAvgProcessTime"`
	PeakActiveStaff   int       `json:"peakActiveEmployees"`
	BreachesPerVolume float64   `json:"breachesPer1000"`
}

// Rollup groups chronologically ordered points into hour, day or week buckets.
func Rollup(points []Point, bucket string) ([]Bucket, error) {
	if err := stats.ValidBucket(bucket); err != nil {
		return nil, err
	}

	var out []Bucket
	var apts []float64
	flush := func() {
		if len(out) == 0 {
			return
		}
		b := &out[len(out)-1]
		b.MeanProcessTime = math.Round(stats.Mean(apts)*10) / 10
		if b.Volume > 0 {
			b.BreachesPerVolume = math.Round(float64(b.Breaches)/float64(b.Volume)*1000*100) / 100
		}
		apts = apts[:0]
	}

	for _, p := range points {
		start := stats.SnapToStart(p.Timestamp, bucket)
		if len(out) == 0 || !out[len(out)-1].Start.Equal(start) {
			flush()
			out = append(out, Bucket{Start: start})
		}
		b := &out[len(out)-1]
		b.Hours++
		b.Volume += p.Volume
		b.Breaches += p.Breaches
		b.PeakActiveStaff = max(b.PeakActiveStaff, p.ActiveEmployees)
		apts = append(apts, p.AvgProcessTime)
	}
	flush()
	return out, nil
}
