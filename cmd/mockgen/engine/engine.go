package engine

import (
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"opsim/internal/history"
	"opsim/internal/queue"
)

type GeneratorConfig struct {
	Scenario string // "mild", "overload", "idle" or "drift"
	Queues   int
	Seed     int64
	Now      time.Time
}

var stageNames = []struct{ id, name string }{
	{"intake", "Case Intake"},
	{"review", "Manual Review"},
	{"approval", "Final Approval"},
	{"completion", "Case Completion"},
}

// utilizationBand returns the [lo, hi) base utilization range for queue i of n.
func utilizationBand(scenario string, i, n int) (float64, float64, error) {
	switch scenario {
	case "mild":
		return 40, 70, nil
	case "overload":
		return 100, 150, nil
	case "idle":
		return 10, 25, nil
	case "drift":
		// utilization climbs along the pipeline, the last stage is the bottleneck
		ratio := 0.0
		if n > 1 {
			ratio = float64(i) / float64(n-1)
		}
		center := 30 + 100*ratio
		return center - 5, center + 5, nil
	default:
		return 0, 0, fmt.Errorf("unknown scenario %q (want mild, overload, idle or drift)", scenario)
	}
}

// Generate builds a valid operational snapshot whose base utilization follows
// the scenario.
func Generate(cfg GeneratorConfig) (queue.OperationalState, error) {
	if cfg.Now.IsZero() {
		cfg.Now = time.Now()
	}
	if cfg.Queues < 1 {
		return queue.OperationalState{}, fmt.Errorf("queues must be at least 1, got %d", cfg.Queues)
	}
	rng := rand.New(rand.NewSource(cfg.Seed))

	state := queue.OperationalState{
		IncomingRate: math.Round((5+rng.Float64()*10)*10) / 10,
		Timestamp:    cfg.Now,
		SLAThreshold: 120,
	}
	for i := 0; i < cfg.Queues; i++ {
		lo, hi, err := utilizationBand(cfg.Scenario, i, cfg.Queues)
		if err != nil {
			return queue.OperationalState{}, err
		}

		id, name := fmt.Sprintf("stage-%d", i+1), fmt.Sprintf("Stage %d", i+1)
		if i < len(stageNames) {
			id, name = stageNames[i].id, stageNames[i].name
		}

		capacity := 30 + rng.Intn(51)
		util := lo + rng.Float64()*(hi-lo)
		// floor keeps the realised utilization inside the band
		wip := int(math.Floor(util * float64(capacity) / 100))
		if float64(wip)*100/float64(capacity) < lo {
			wip++
		}

		state.WorkQueues = append(state.WorkQueues, queue.WorkQueue{
			ID:             id,
			Name:           name,
			WorkInProgress: wip,
			Capacity:       capacity,
			AvgProcessTime: float64(10 + rng.Intn(51)),
			Employees:      2 + rng.Intn(9),
			Complexity:     math.Round((1+rng.Float64()*2)*10) / 10,
		})
	}
	return state, state.Validate()
}

// Save writes <name>.json with the snapshot and, when hours > 0,
// <name>_history.json with a matching synthetic history.
func Save(outDir, name string, state queue.OperationalState, hours int, seed int64) error {
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return err
	}
	if err := queue.SaveSnapshot(filepath.Join(outDir, name+".json"), state); err != nil {
		return err
	}
	if hours <= 0 {
		return nil
	}

	points, err := history.Generate(hours, state.Timestamp, rand.New(rand.NewSource(seed)))
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(map[string]any{
		"summary": history.Summarize(points),
		"points":  points,
	}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(outDir, name+"_history.json"), data, 0644)
}
