package services

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/example/tableside/internal/models"
)

// OrderFetcher is the read side of the upstream API the tracker depends on.
type OrderFetcher interface {
	GetOrder(ctx context.Context, id string) (*models.Order, error)
}

// GetOrder fetches a single customer order projection.
func (c *UpstreamClient) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	resp, err := c.do(ctx, http.MethodGet, "/customer/orders/"+id, nil, nil)
	if err != nil {
		return nil, err
	}
	if resp.Status == http.StatusNotFound {
		return nil, fmt.Errorf("order %s: %w", id, ErrOrderNotFound)
	}

	var order models.Order
	if err := decode(resp, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// OrderPage is one page of the staff order listing.
type OrderPage struct {
	Orders     []models.Order `json:"orders"`
	TotalItems int64          `json:"total_items"`
}

// ListOrders fetches a page of orders for the staff dashboard, optionally
// filtered by status.
func (c *UpstreamClient) ListOrders(ctx context.Context, status models.OrderStatus, page, limit int) (*OrderPage, error) {
	query := map[string]string{
		"page":  strconv.Itoa(page),
		"limit": strconv.Itoa(limit),
	}
	if status != "" {
		query["status"] = string(status)
	}

	resp, err := c.do(ctx, http.MethodGet, "/orders", query, nil)
	if err != nil {
		return nil, err
	}

	var result OrderPage
	if err := decode(resp, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// CreateOrderItem is a line in a customer order submission.
type CreateOrderItem struct {
	ProductID           string  `json:"product_id"`
	ProductName         string  `json:"product_name"`
	Quantity            int     `json:"quantity"`
	UnitPrice           float64 `json:"unit_price"`
	SpecialInstructions string  `json:"special_instructions,omitempty"`
}

// CreateOrderRequest is the customer order submission payload.
type CreateOrderRequest struct {
	TableNumber  int               `json:"table_number"`
	CustomerName string            `json:"customer_name,omitempty"`
	Items        []CreateOrderItem `json:"items"`
	Subtotal     float64           `json:"subtotal"`
	TaxAmount    float64           `json:"tax_amount"`
	TotalAmount  float64           `json:"total_amount"`
	Notes        string            `json:"notes,omitempty"`
}

// CreateOrder submits a customer order. The upstream API assigns the order
// number and recomputes all totals.
func (c *UpstreamClient) CreateOrder(ctx context.Context, req CreateOrderRequest) (*models.OrderReceipt, error) {
	resp, err := c.do(ctx, http.MethodPost, "/customer/orders", nil, req)
	if err != nil {
		return nil, err
	}

	var receipt models.OrderReceipt
	if err := decode(resp, &receipt); err != nil {
		return nil, err
	}
	return &receipt, nil
}

// PaymentRequest is the customer payment submission payload.
type PaymentRequest struct {
	Method string  `json:"method"`
	Amount float64 `json:"amount"`
}

// SubmitPayment forwards a customer payment for an order.
func (c *UpstreamClient) SubmitPayment(ctx context.Context, orderID string, req PaymentRequest) (*models.PaymentConfirmation, error) {
	resp, err := c.do(ctx, http.MethodPost, "/customer/orders/"+orderID+"/payment", nil, req)
	if err != nil {
		return nil, err
	}
	if resp.Status == http.StatusNotFound {
		return nil, fmt.Errorf("order %s: %w", orderID, ErrOrderNotFound)
	}

	var confirmation models.PaymentConfirmation
	if err := decode(resp, &confirmation); err != nil {
		return nil, err
	}
	return &confirmation, nil
}

// SubmitSurvey submits a satisfaction survey. Only success or failure is
// consumed from the response.
func (c *UpstreamClient) SubmitSurvey(ctx context.Context, survey models.SurveySubmission) error {
	resp, err := c.do(ctx, http.MethodPost, "/customer/surveys", nil, survey)
	if err != nil {
		return err
	}
	return decode(resp, nil)
}

type countResponse struct {
	Count int `json:"count"`
}

// UnreadNotificationCount fetches the staff unread-notification counter.
func (c *UpstreamClient) UnreadNotificationCount(ctx context.Context) (int, error) {
	resp, err := c.do(ctx, http.MethodGet, "/admin/notifications/unread-count", nil, nil)
	if err != nil {
		return 0, err
	}
	var result countResponse
	if err := decode(resp, &result); err != nil {
		return 0, err
	}
	return result.Count, nil
}

// NewContactCount fetches the staff new-contact counter.
func (c *UpstreamClient) NewContactCount(ctx context.Context) (int, error) {
	resp, err := c.do(ctx, http.MethodGet, "/admin/contacts/new-count", nil, nil)
	if err != nil {
		return 0, err
	}
	var result countResponse
	if err := decode(resp, &result); err != nil {
		return 0, err
	}
	return result.Count, nil
}
