package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/consilium-health/consilium/internal/application/services"
	"github.com/consilium-health/consilium/internal/evaluation"
)

func main() {
	goldenPath := flag.String("golden", "config/golden_triage.json", "path to the golden triage case set")
	flag.Parse()

	cases, err := evaluation.LoadGoldenCases(*goldenPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load golden cases: %v\n", err)
		os.Exit(1)
	}
	if err := evaluation.ValidateGoldenCases(cases); err != nil {
		fmt.Fprintf(os.Stderr, "invalid golden cases: %v\n", err)
		os.Exit(1)
	}

	runner := evaluation.NewRunner(
		services.NewEmergencyDetectionService(),
		services.NewSpecialtyConfidenceService(nil),
		nil,
	)
	summary := runner.Run(cases)

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(summary); err != nil {
		fmt.Fprintf(os.Stderr, "failed to encode summary: %v\n", err)
		os.Exit(1)
	}
}
