package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/GustavoLR548/market-digest/internal/ai"
	"github.com/GustavoLR548/market-digest/internal/config"
	"github.com/joho/godotenv"
	"github.com/samber/lo"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using environment variables")
	}

	cfg, err := config.Load(os.Args[1:])
	if errors.Is(err, config.ErrHelp) {
		return
	}
	if errors.Is(err, config.ErrMissingAPIKey) {
		fmt.Println(config.MissingAPIKeyMessage())
		return
	}
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	fmt.Printf("🔍 Listing available Gemini models (%s API)...\n", cfg.APIStyle)
	fmt.Println()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := ai.NewClient(ctx, cfg)
	if err != nil {
		log.Fatalf("Error creating client: %v", err)
	}
	defer client.Close()

	models, err := client.ListModels(ctx)
	if err != nil {
		log.Fatalf("Error listing models: %v", err)
	}

	if len(models) == 0 {
		fmt.Println("❌ No models found")
		return
	}

	fmt.Printf("✅ Found %d available model(s):\n", len(models))
	for i, model := range models {
		marker := ""
		if !model.SupportsGenerateContent() {
			marker = " (no generateContent)"
		}
		fmt.Printf("%d. %s%s\n", i+1, model.Name, marker)
	}

	fmt.Println("\n📋 Configured candidates:")
	available := lo.SliceToMap(models, func(m ai.ModelInfo) (string, bool) {
		return m.Name, m.SupportsGenerateContent()
	})
	for i, name := range cfg.Models {
		status := "❌ unavailable"
		if available[ai.NormalizeModelName(name)] {
			status = "✅ available"
		}
		fmt.Printf("%d. %s %s\n", i+1, name, status)
	}

	resolved := ai.ResolveCandidates(cfg.Models, models)
	fmt.Printf("\n💡 With --discover the digest would try: %v\n", resolved)
}
