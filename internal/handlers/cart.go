package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/example/tableside/internal/config"
	"github.com/example/tableside/internal/models"
	"github.com/example/tableside/internal/services"
)

// CartHandler manages the customer cart endpoints.
type CartHandler struct {
	carts *services.CartStore
	cfg   *config.Config
}

// NewCartHandler constructs CartHandler.
func NewCartHandler(carts *services.CartStore, cfg *config.Config) *CartHandler {
	return &CartHandler{carts: carts, cfg: cfg}
}

// CreateSession opens a new cart session.
func (h *CartHandler) CreateSession(c *fiber.Ctx) error {
	sessionID := h.carts.CreateSession()
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    fiber.Map{"session_id": sessionID},
	})
}

// GetCart returns the cart contents and totals preview for a session.
func (h *CartHandler) GetCart(c *fiber.Ctx) error {
	cart, err := h.carts.Snapshot(c.Params("session"))
	if err != nil {
		return cartError(err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"items":  cart.Items,
			"totals": cart.Totals(h.cfg.TaxRatePercent),
		},
	})
}

type addItemRequest struct {
	ProductID           string  `json:"product_id"`
	ProductName         string  `json:"product_name"`
	UnitPrice           float64 `json:"unit_price"`
	Quantity            int     `json:"quantity"`
	SpecialInstructions string  `json:"special_instructions"`
}

// AddItem adds a product line to the cart.
func (h *CartHandler) AddItem(c *fiber.Ctx) error {
	var req addItemRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if req.ProductID == "" {
		return fiber.NewError(fiber.StatusBadRequest, "product_id is required")
	}
	if req.UnitPrice < 0 {
		return fiber.NewError(fiber.StatusBadRequest, "unit_price must not be negative")
	}

	err := h.carts.Mutate(c.Params("session"), func(cart *models.Cart) {
		cart.AddItem(models.CartItem{
			ProductID:           req.ProductID,
			ProductName:         req.ProductName,
			UnitPrice:           req.UnitPrice,
			Quantity:            req.Quantity,
			SpecialInstructions: req.SpecialInstructions,
		})
	})
	if err != nil {
		return cartError(err)
	}

	return h.GetCart(c)
}

type setQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// SetQuantity updates the quantity of a cart line. Zero removes the line.
func (h *CartHandler) SetQuantity(c *fiber.Ctx) error {
	var req setQuantityRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	var found bool
	err := h.carts.Mutate(c.Params("session"), func(cart *models.Cart) {
		found = cart.SetQuantity(c.Params("product_id"), req.Quantity)
	})
	if err != nil {
		return cartError(err)
	}
	if !found {
		return fiber.NewError(fiber.StatusNotFound, "product not in cart")
	}

	return h.GetCart(c)
}

// RemoveItem drops a cart line.
func (h *CartHandler) RemoveItem(c *fiber.Ctx) error {
	var found bool
	err := h.carts.Mutate(c.Params("session"), func(cart *models.Cart) {
		found = cart.RemoveItem(c.Params("product_id"))
	})
	if err != nil {
		return cartError(err)
	}
	if !found {
		return fiber.NewError(fiber.StatusNotFound, "product not in cart")
	}

	return h.GetCart(c)
}

// ResetCart empties the cart for a session.
func (h *CartHandler) ResetCart(c *fiber.Ctx) error {
	err := h.carts.Mutate(c.Params("session"), func(cart *models.Cart) {
		cart.Reset()
	})
	if err != nil {
		return cartError(err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func cartError(err error) error {
	if errors.Is(err, services.ErrCartNotFound) {
		return fiber.NewError(fiber.StatusNotFound, "cart session not found")
	}
	return err
}
