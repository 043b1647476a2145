package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/TejPotu/case-twin/internal/adapters/providers/extraction"
	"github.com/TejPotu/case-twin/internal/domain/providers"
	"github.com/TejPotu/case-twin/internal/evaluation"
	"github.com/TejPotu/case-twin/internal/infrastructure/clients/medgemma"
	"github.com/TejPotu/case-twin/pkg/config"
)

func main() {
	var goldenPath string
	var minAccuracy float64
	var minCoverage float64
	flag.StringVar(&goldenPath, "golden", "config/golden_cases.json", "path to the golden case file")
	flag.Float64Var(&minAccuracy, "min-accuracy", 0, "fail when average field accuracy drops below this")
	flag.Float64Var(&minCoverage, "min-coverage", 0, "fail when average field coverage drops below this")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// The medllm extractor needs a live insight model; the heuristic extractor
	// runs offline.
	var insight providers.InsightProvider
	if cfg.Extraction.Provider == "medllm" {
		client, err := medgemma.NewClient(&cfg.HuggingFace)
		if err != nil {
			log.Fatalf("Failed to initialize insight model client: %v", err)
		}
		insight = client
	}

	extractor := extraction.NewExtractionProvider(extraction.ProviderConfig{
		Provider: cfg.Extraction.Provider,
		Insight:  insight,
	})

	cases, err := evaluation.LoadGoldenCases(goldenPath)
	if err != nil {
		log.Fatalf("Failed to load golden cases: %v", err)
	}
	if err := evaluation.ValidateGoldenCases(cases); err != nil {
		log.Fatalf("Invalid golden cases: %v", err)
	}

	runner := evaluation.NewRunner(extractor)
	summary, err := runner.Run(context.Background(), cases)
	if err != nil {
		log.Fatalf("Evaluation failed: %v", err)
	}

	// Output results as JSON
	out, _ := json.MarshalIndent(summary, "", "  ")
	fmt.Println(string(out))

	guardrails := evaluation.NewGuardrails(evaluation.GuardrailConfig{
		MinAccuracy: minAccuracy,
		MinCoverage: minCoverage,
	})
	if violations := guardrails.Check(summary); len(violations) > 0 {
		for _, v := range violations {
			log.Printf("Guardrail violated: %s", v)
		}
		os.Exit(1)
	}
}
