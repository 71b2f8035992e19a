package routes

import (
	"context"
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/example/tableside/internal/config"
	"github.com/example/tableside/internal/handlers"
	"github.com/example/tableside/internal/middleware"
	"github.com/example/tableside/internal/services"
	"github.com/example/tableside/internal/utils"
)

// Register wires up all HTTP routes.
func Register(app *fiber.App, baseCtx context.Context, cfg *config.Config, upstream *services.UpstreamClient, trackers *services.TrackerManager, badges *services.BadgeCountPoller) {
	telegramService := services.NewTelegramService(cfg.TelegramBotToken, cfg.TelegramAdminChat)
	cartStore := services.NewCartStore()
	optimisticStore := services.NewOptimisticStore()

	hours, err := utils.ParseOperatingHours(cfg.OpeningTime, cfg.ClosingTime)
	if err != nil {
		log.Fatalf("invalid operating hours: %v", err)
	}

	cartHandler := handlers.NewCartHandler(cartStore, cfg)
	orderHandler := handlers.NewOrderHandler(upstream, cartStore, optimisticStore, telegramService, hours, cfg)
	trackingHandler := handlers.NewTrackingHandler(baseCtx, trackers, upstream, telegramService)
	badgeHandler := handlers.NewBadgeHandler(badges)

	api := app.Group("/api")

	// Customer cart
	cart := api.Group("/cart")
	cart.Post("/", cartHandler.CreateSession)
	cart.Get("/:session", cartHandler.GetCart)
	cart.Delete("/:session", cartHandler.ResetCart)
	cart.Post("/:session/items", cartHandler.AddItem)
	cart.Put("/:session/items/:product_id", cartHandler.SetQuantity)
	cart.Delete("/:session/items/:product_id", cartHandler.RemoveItem)

	// Customer ordering
	api.Post("/customer/orders", orderHandler.CreateOrder)
	api.Post("/customer/orders/:id/payment", orderHandler.SubmitPayment)

	// Order tracking
	track := api.Group("/track")
	track.Post("/:id", trackingHandler.StartTracking)
	track.Get("/:id", trackingHandler.GetTracking)
	track.Delete("/:id", trackingHandler.StopTracking)
	track.Post("/:id/survey", trackingHandler.SubmitSurvey)

	// Staff routes
	admin := api.Group("/admin", middleware.AuthMiddleware(cfg))
	admin.Get("/orders", orderHandler.ListOrders)
	admin.Get("/badge-counts", badgeHandler.GetBadgeCounts)
	admin.Post("/badge-counts/refresh", badgeHandler.RefreshBadgeCounts)
}
