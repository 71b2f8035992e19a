package main

import (
	"context"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/example/tableside/internal/config"
	"github.com/example/tableside/internal/routes"
	"github.com/example/tableside/internal/services"
)

func main() {
	cfg := config.Load()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	upstream := services.NewUpstreamClient(cfg.UpstreamBaseURL, cfg.UpstreamAuthURL, cfg.UpstreamAPIKey)

	trackers := services.NewTrackerManager(upstream, cfg.OrderPollInterval, cfg.SurveyPromptDelay)
	defer trackers.CloseAll()

	badges := services.NewBadgeCountPoller(
		upstream.UnreadNotificationCount,
		upstream.NewContactCount,
		cfg.BadgePollInterval,
		cfg.BadgeStaleWindow,
	)
	badges.Start(ctx)
	defer badges.Stop()

	app := fiber.New(fiber.Config{
		AppName: "Tableside Gateway",
	})

	app.Use(recover.New())
	app.Use(logger.New())

	routes.Register(app, ctx, cfg, upstream, trackers, badges)

	if _, err := upstream.Token(ctx); err != nil {
		log.Printf("Upstream token warm-up failed: %v", err)
	}

	log.Printf("Starting server on :%s", cfg.AppPort)
	if err := app.Listen(":" + cfg.AppPort); err != nil {
		log.Fatalf("fiber.Listen error: %v", err)
	}
}
