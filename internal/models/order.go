package models

import "time"

// OrderStatus is the server-reported lifecycle status of an order. The
// upstream API owns all transitions; this service only renders them.
type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusConfirmed OrderStatus = "confirmed"
	StatusPreparing OrderStatus = "preparing"
	StatusReady     OrderStatus = "ready"
	StatusServed    OrderStatus = "served"
	StatusCompleted OrderStatus = "completed"
	StatusCancelled OrderStatus = "cancelled"
)

// statusOrder is the linear display progression. Cancelled sits outside it.
var statusOrder = []OrderStatus{
	StatusPending,
	StatusConfirmed,
	StatusPreparing,
	StatusReady,
	StatusServed,
	StatusCompleted,
}

// ProgressionIndex returns the ordinal position of the status in the linear
// progression, or -1 for cancelled and unknown statuses.
func (s OrderStatus) ProgressionIndex() int {
	for i, st := range statusOrder {
		if st == s {
			return i
		}
	}
	return -1
}

// ProgressPercent maps the status to a progress-bar fill percentage.
// Cancelled always reports 0.
func (s OrderStatus) ProgressPercent() float64 {
	idx := s.ProgressionIndex()
	if idx < 0 {
		return 0
	}
	return float64(idx) / float64(len(statusOrder)-1) * 100
}

// TriggersSurvey reports whether reaching this status should prompt the
// satisfaction survey.
func (s OrderStatus) TriggersSurvey() bool {
	return s == StatusServed || s == StatusCompleted
}

// IsValid reports whether the status belongs to the known enumeration.
func (s OrderStatus) IsValid() bool {
	return s == StatusCancelled || s.ProgressionIndex() >= 0
}

// StatusDisplay carries the render-ready metadata for a status.
type StatusDisplay struct {
	Label       string `json:"label"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// Display returns the presentation metadata for the status.
func (s OrderStatus) Display() StatusDisplay {
	switch s {
	case StatusPending:
		return StatusDisplay{"Order Received", "We have received your order", "clock"}
	case StatusConfirmed:
		return StatusDisplay{"Confirmed", "The kitchen has confirmed your order", "check-circle"}
	case StatusPreparing:
		return StatusDisplay{"Preparing", "Your food is being prepared", "chef-hat"}
	case StatusReady:
		return StatusDisplay{"Ready", "Your order is ready to be served", "bell"}
	case StatusServed:
		return StatusDisplay{"Served", "Enjoy your meal", "utensils"}
	case StatusCompleted:
		return StatusDisplay{"Completed", "Thank you for dining with us", "flag"}
	case StatusCancelled:
		return StatusDisplay{"Cancelled", "This order has been cancelled", "x-circle"}
	default:
		return StatusDisplay{string(s), "", "help-circle"}
	}
}

// Order is a read-only projection of an upstream order. Totals are computed
// by the upstream API and never recomputed here after submission.
type Order struct {
	ID          string      `json:"id"`
	OrderNumber string      `json:"order_number"`
	Status      OrderStatus `json:"status"`
	TableNumber int         `json:"table_number,omitempty"`
	Items       []OrderItem `json:"items"`
	Subtotal    float64     `json:"subtotal"`
	TaxAmount   float64     `json:"tax_amount"`
	TotalAmount float64     `json:"total_amount"`
	PlacedAt    time.Time   `json:"placed_at"`
}

type OrderItem struct {
	ProductID           string  `json:"product_id"`
	ProductName         string  `json:"product_name"`
	Quantity            int     `json:"quantity"`
	UnitPrice           float64 `json:"unit_price"`
	TotalPrice          float64 `json:"total_price"`
	SpecialInstructions string  `json:"special_instructions,omitempty"`
}

// OrderReceipt is the upstream response to a customer order submission.
type OrderReceipt struct {
	OrderID     string  `json:"order_id"`
	OrderNumber string  `json:"order_number"`
	TotalAmount float64 `json:"total_amount"`
}

// PaymentConfirmation is the upstream response to a payment submission.
type PaymentConfirmation struct {
	ID     string    `json:"id"`
	Status string    `json:"status"`
	Method string    `json:"method"`
	Amount float64   `json:"amount"`
	PaidAt time.Time `json:"paid_at"`
}

// SurveySubmission is the satisfaction survey payload, keyed by order id.
type SurveySubmission struct {
	OrderID string `json:"order_id"`
	Rating  int    `json:"rating"`
	Comment string `json:"comment,omitempty"`
}

// BadgeCounts is the merged admin badge object.
type BadgeCounts struct {
	Notifications int `json:"notifications"`
	Contacts      int `json:"contacts"`
	Total         int `json:"total"`
}
