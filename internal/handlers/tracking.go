package handlers

import (
	"context"
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/example/tableside/internal/models"
	"github.com/example/tableside/internal/services"
)

// TrackingHandler manages the customer order-tracking view.
type TrackingHandler struct {
	trackers *services.TrackerManager
	upstream *services.UpstreamClient
	telegram *services.TelegramService
	baseCtx  context.Context
}

// NewTrackingHandler constructs TrackingHandler. baseCtx bounds the lifetime
// of polling sessions opened by this handler.
func NewTrackingHandler(baseCtx context.Context, trackers *services.TrackerManager, upstream *services.UpstreamClient, telegram *services.TelegramService) *TrackingHandler {
	return &TrackingHandler{
		trackers: trackers,
		upstream: upstream,
		telegram: telegram,
		baseCtx:  baseCtx,
	}
}

// StartTracking opens (or reuses) a polling session for an order.
func (h *TrackingHandler) StartTracking(c *fiber.Ctx) error {
	orderID := c.Params("id")
	if orderID == "" {
		return fiber.NewError(fiber.StatusBadRequest, "order id is required")
	}

	session := h.trackers.Open(h.baseCtx, orderID)
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    session.Snapshot(),
	})
}

// GetTracking returns the current view model for a tracking session.
func (h *TrackingHandler) GetTracking(c *fiber.Ctx) error {
	session, ok := h.trackers.Get(c.Params("id"))
	if !ok {
		return fiber.NewError(fiber.StatusNotFound, "tracking session not found")
	}

	view := session.Snapshot()
	if view.NotFound {
		// Order-not-found is terminal for the session; the view renders a
		// dedicated card.
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"data":    view,
		})
	}

	return c.JSON(fiber.Map{"success": true, "data": view})
}

// StopTracking tears down a tracking session.
func (h *TrackingHandler) StopTracking(c *fiber.Ctx) error {
	h.trackers.Close(c.Params("id"))
	return c.SendStatus(fiber.StatusNoContent)
}

type surveyRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

// SubmitSurvey forwards the satisfaction survey upstream and retires the
// prompt for the session.
func (h *TrackingHandler) SubmitSurvey(c *fiber.Ctx) error {
	orderID := c.Params("id")

	session, ok := h.trackers.Get(orderID)
	if !ok {
		return fiber.NewError(fiber.StatusNotFound, "tracking session not found")
	}

	var req surveyRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if req.Rating < 1 || req.Rating > 5 {
		return fiber.NewError(fiber.StatusBadRequest, "rating must be between 1 and 5")
	}

	survey := models.SurveySubmission{
		OrderID: orderID,
		Rating:  req.Rating,
		Comment: req.Comment,
	}
	if err := h.upstream.SubmitSurvey(c.Context(), survey); err != nil {
		log.Printf("[Tracking] survey submission failed for order %s: %v", orderID, err)
		return fiber.NewError(fiber.StatusBadGateway, "survey submission failed")
	}

	session.MarkSurveySubmitted()

	if h.telegram != nil {
		go func() {
			if err := h.telegram.NotifySurveySubmitted(survey); err != nil {
				log.Printf("[Tracking] Telegram notification failed: %v", err)
			}
		}()
	}

	return c.JSON(fiber.Map{"success": true, "data": session.Snapshot()})
}
