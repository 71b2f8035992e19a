package handlers

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/example/tableside/internal/config"
	"github.com/example/tableside/internal/models"
	"github.com/example/tableside/internal/services"
	"github.com/example/tableside/internal/utils"
)

// OrderHandler manages the customer ordering flow.
type OrderHandler struct {
	upstream   *services.UpstreamClient
	carts      *services.CartStore
	optimistic *services.OptimisticStore
	telegram   *services.TelegramService
	hours      utils.OperatingHours
	cfg        *config.Config
}

// NewOrderHandler constructs OrderHandler.
func NewOrderHandler(upstream *services.UpstreamClient, carts *services.CartStore, optimistic *services.OptimisticStore, telegram *services.TelegramService, hours utils.OperatingHours, cfg *config.Config) *OrderHandler {
	return &OrderHandler{
		upstream:   upstream,
		carts:      carts,
		optimistic: optimistic,
		telegram:   telegram,
		hours:      hours,
		cfg:        cfg,
	}
}

type createOrderRequest struct {
	SessionID    string `json:"session_id"`
	TableNumber  int    `json:"table_number"`
	CustomerName string `json:"customer_name"`
	Notes        string `json:"notes"`
}

// CreateOrder submits the session cart as a customer order.
func (h *OrderHandler) CreateOrder(c *fiber.Ctx) error {
	var req createOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if req.SessionID == "" {
		return fiber.NewError(fiber.StatusBadRequest, "session_id is required")
	}
	if req.TableNumber <= 0 {
		return fiber.NewError(fiber.StatusBadRequest, "table_number is required")
	}

	if !h.hours.Contains(time.Now()) {
		return fiber.NewError(fiber.StatusUnprocessableEntity, "the restaurant is currently closed")
	}

	cart, err := h.carts.Snapshot(req.SessionID)
	if err != nil {
		if errors.Is(err, services.ErrCartNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "cart session not found")
		}
		return err
	}
	if cart.IsEmpty() {
		return fiber.NewError(fiber.StatusBadRequest, "cart is empty")
	}

	totals := cart.Totals(h.cfg.TaxRatePercent)
	upstreamReq := services.CreateOrderRequest{
		TableNumber:  req.TableNumber,
		CustomerName: req.CustomerName,
		Subtotal:     totals.Subtotal,
		TaxAmount:    totals.TaxAmount,
		TotalAmount:  totals.Total,
		Notes:        req.Notes,
	}
	for _, item := range cart.Items {
		upstreamReq.Items = append(upstreamReq.Items, services.CreateOrderItem{
			ProductID:           item.ProductID,
			ProductName:         item.ProductName,
			Quantity:            item.Quantity,
			UnitPrice:           item.UnitPrice,
			SpecialInstructions: item.SpecialInstructions,
		})
	}

	var receipt *models.OrderReceipt
	err = h.optimistic.Perform(c.Context(), "order:"+req.SessionID, services.UpdateCreate, upstreamReq, func(ctx context.Context) error {
		var createErr error
		receipt, createErr = h.upstream.CreateOrder(ctx, upstreamReq)
		return createErr
	})
	if err != nil {
		log.Printf("[Order] create failed for session %s: %v", req.SessionID, err)
		return fiber.NewError(fiber.StatusBadGateway, "order submission failed")
	}

	// Cart is destroyed only on successful submission.
	h.carts.Drop(req.SessionID)

	go h.notifyNewOrder(receipt, req, cart)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"order_id":     receipt.OrderID,
			"order_number": receipt.OrderNumber,
			"total_amount": receipt.TotalAmount,
		},
	})
}

func (h *OrderHandler) notifyNewOrder(receipt *models.OrderReceipt, req createOrderRequest, cart models.Cart) {
	if h.telegram == nil {
		return
	}

	notification := services.OrderNotification{
		OrderNumber:  receipt.OrderNumber,
		TableNumber:  req.TableNumber,
		CustomerName: req.CustomerName,
		Items:        cart.Items,
		TotalAmount:  receipt.TotalAmount,
	}
	if err := h.telegram.NotifyNewOrder(notification); err != nil {
		log.Printf("[Order] Telegram notification failed: %v", err)
	}
}

type paymentRequest struct {
	Method string  `json:"method"`
	Amount float64 `json:"amount"`
}

// SubmitPayment forwards a customer payment for an order. Failures surface
// inline; there is no automatic retry.
func (h *OrderHandler) SubmitPayment(c *fiber.Ctx) error {
	orderID := c.Params("id")

	var req paymentRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if req.Method == "" {
		return fiber.NewError(fiber.StatusBadRequest, "method is required")
	}

	var confirmation *models.PaymentConfirmation
	err := h.optimistic.Perform(c.Context(), "payment:"+orderID, services.UpdateUpdate, req, func(ctx context.Context) error {
		var payErr error
		confirmation, payErr = h.upstream.SubmitPayment(ctx, orderID, services.PaymentRequest{
			Method: req.Method,
			Amount: req.Amount,
		})
		return payErr
	})
	if err != nil {
		if errors.Is(err, services.ErrOrderNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "order not found")
		}
		log.Printf("[Order] payment failed for order %s: %v", orderID, err)
		return fiber.NewError(fiber.StatusBadGateway, "payment submission failed")
	}

	return c.JSON(fiber.Map{"success": true, "data": confirmation})
}

// ListOrders proxies the staff order listing from the upstream API.
func (h *OrderHandler) ListOrders(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c)
	status := models.OrderStatus(c.Query("status"))
	if status != "" && !status.IsValid() {
		return fiber.NewError(fiber.StatusBadRequest, "unknown status")
	}

	page, err := h.upstream.ListOrders(c.Context(), status, pg.Page, pg.Limit)
	if err != nil {
		log.Printf("[Order] list failed: %v", err)
		return fiber.NewError(fiber.StatusBadGateway, "order listing failed")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    page.Orders,
		"pagination": fiber.Map{
			"current_page":   pg.Page,
			"items_per_page": pg.Limit,
			"total_items":    page.TotalItems,
		},
	})
}
