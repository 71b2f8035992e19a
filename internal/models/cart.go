package models

// CartItem is a client-local line in a customer cart. Carts never leave
// process memory; a submitted order is rebuilt from them upstream.
type CartItem struct {
	ProductID           string  `json:"product_id"`
	ProductName         string  `json:"product_name"`
	UnitPrice           float64 `json:"unit_price"`
	Quantity            int     `json:"quantity"`
	SpecialInstructions string  `json:"special_instructions,omitempty"`
}

// LineTotal returns the preview total for this line.
func (i CartItem) LineTotal() float64 {
	return i.UnitPrice * float64(i.Quantity)
}

// Cart holds the ephemeral per-session cart contents.
type Cart struct {
	Items []CartItem `json:"items"`
}

// AddItem appends a product, or raises the quantity of an existing line for
// the same product.
func (c *Cart) AddItem(item CartItem) {
	if item.Quantity < 1 {
		item.Quantity = 1
	}
	for i := range c.Items {
		if c.Items[i].ProductID == item.ProductID {
			c.Items[i].Quantity += item.Quantity
			if item.SpecialInstructions != "" {
				c.Items[i].SpecialInstructions = item.SpecialInstructions
			}
			return
		}
	}
	c.Items = append(c.Items, item)
}

// SetQuantity sets the quantity for a product line. A quantity of zero or
// less removes the line. Returns false when the product is not in the cart.
func (c *Cart) SetQuantity(productID string, quantity int) bool {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			if quantity <= 0 {
				c.Items = append(c.Items[:i], c.Items[i+1:]...)
			} else {
				c.Items[i].Quantity = quantity
			}
			return true
		}
	}
	return false
}

// RemoveItem drops the line for a product. Returns false when absent.
func (c *Cart) RemoveItem(productID string) bool {
	return c.SetQuantity(productID, 0)
}

// Reset empties the cart.
func (c *Cart) Reset() {
	c.Items = nil
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// Subtotal returns the sum of line totals.
func (c *Cart) Subtotal() float64 {
	var subtotal float64
	for _, item := range c.Items {
		subtotal += item.LineTotal()
	}
	return subtotal
}

// CartTotals is the local preview of order totals. The upstream-computed
// totals are authoritative once the order is placed.
type CartTotals struct {
	Subtotal  float64 `json:"subtotal"`
	TaxAmount float64 `json:"tax_amount"`
	Total     float64 `json:"total"`
}

// Totals computes the preview totals for the given tax rate percentage.
func (c *Cart) Totals(taxRatePercent float64) CartTotals {
	subtotal := c.Subtotal()
	tax := subtotal * taxRatePercent / 100
	return CartTotals{
		Subtotal:  subtotal,
		TaxAmount: tax,
		Total:     subtotal + tax,
	}
}
