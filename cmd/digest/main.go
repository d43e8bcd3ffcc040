package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/GustavoLR548/market-digest/internal/ai"
	"github.com/GustavoLR548/market-digest/internal/config"
	"github.com/GustavoLR548/market-digest/internal/digest"
	"github.com/GustavoLR548/market-digest/internal/news"
	"github.com/GustavoLR548/market-digest/internal/notify"
	"github.com/GustavoLR548/market-digest/internal/ratelimit"
	"github.com/joho/godotenv"
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

	log.Printf("Using %s API key, %s API style, candidates %v", cfg.APIKeyEnv, cfg.APIStyle, cfg.Models)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := ai.NewClient(ctx, cfg)
	if err != nil {
		fmt.Printf("Error during analysis: %v\n", err)
		return
	}
	defer client.Close()

	rateLimiter := ratelimit.NewManager(ratelimit.Config{AttemptPause: cfg.RetryPause})
	fallback := ai.NewModelFallback(client, rateLimiter)

	notifiers := []notify.Notifier{notify.NewConsoleNotifier(os.Stdout)}
	if cfg.DiscordWebhookURL != "" {
		discord, err := notify.NewDiscordNotifier(cfg.DiscordWebhookURL)
		if err != nil {
			log.Printf("WARNING: Discord delivery disabled: %v", err)
		} else {
			notifiers = append(notifiers, discord)
		}
	}

	runner := digest.NewRunner(
		news.NewRSSFetcher(cfg.FeedURL, cfg.FeedTimeout, cfg.UserAgent),
		fallback,
		client,
		notifiers,
		os.Stdout,
		digest.Options{
			Title:          cfg.ReportTitle,
			HeadlineLimit:  cfg.HeadlineLimit,
			Candidates:     cfg.Models,
			DiscoverModels: cfg.DiscoverModels,
		},
	)

	// Designed failures were already printed by the runner
	if _, err := runner.Run(ctx); err != nil {
		log.Printf("Digest run finished without a summary: %v", err)
	}

	stats := rateLimiter.GetStatistics()
	log.Printf("Model attempts: %d total, %d failed, %d rate-limited",
		stats.TotalAttempts, stats.TotalFailures, stats.TotalRateLimited)
}
