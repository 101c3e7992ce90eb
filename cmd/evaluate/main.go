package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/suplementia/supplement-discovery/internal/application/services"
	"github.com/suplementia/supplement-discovery/internal/evaluation"
	"github.com/suplementia/supplement-discovery/pkg/config"
)

// Offline scorecard for the query normalizer: runs the golden query set
// through the real vocabulary files and prints accuracy as JSON.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	aliasPath := cfg.Normalizer.AliasPath
	spellingPath := cfg.Normalizer.SpellingPath
	goldenPath := "config/golden_queries.json"
	if _, err := os.Stat("backend/" + goldenPath); err == nil {
		aliasPath = "backend/" + aliasPath
		spellingPath = "backend/" + spellingPath
		goldenPath = "backend/" + goldenPath
	}

	normalizer, err := services.NewQueryNormalizerService(aliasPath, spellingPath)
	if err != nil {
		log.Fatalf("Failed to load normalizer vocabulary: %v", err)
	}

	queries, err := evaluation.LoadGoldenQueries(goldenPath)
	if err != nil {
		log.Fatalf("Failed to load golden queries: %v", err)
	}
	if err := evaluation.ValidateGoldenQueries(queries); err != nil {
		log.Fatalf("Invalid golden queries: %v", err)
	}

	summary := evaluation.NewRunner(normalizer).Run(queries)

	out, _ := json.MarshalIndent(summary, "", "  ")
	fmt.Println(string(out))
}
