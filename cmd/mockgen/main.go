package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"opsim/cmd/mockgen/engine"
)

func main() {
	scenario := flag.String("scenario", "mild", "Scenario to generate: mild, overload, idle, drift")
	queues := flag.Int("queues", 4, "Number of work queues")
	seed := flag.Int64("seed", time.Now().UnixNano(), "Random seed")
	outDir := flag.String("out", "./.data", "Output directory for generated files")
	hours := flag.Int("history-hours", 0, "Also write a synthetic history of this many hours (0 to skip)")
	flag.Parse()

	cfg := engine.GeneratorConfig{
		Scenario: *scenario,
		Queues:   *queues,
		Seed:     *seed,
		Now:      time.Now(),
	}

	fmt.Printf("Generating scenario '%s' (Queues: %d, Seed: %d) to %s...\n", cfg.Scenario, cfg.Queues, cfg.Seed, *outDir)

	state, err := engine.Generate(cfg)
	if err != nil {
		fmt.Printf("Failed to generate snapshot: %v\n", err)
		os.Exit(1)
	}

	if err := engine.Save(*outDir, cfg.Scenario, state, *hours, cfg.Seed); err != nil {
		fmt.Printf("Failed to save mock data: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Done.")
}
