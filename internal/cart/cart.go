// Package cart holds the storefront cart rules. Quantities are clamped to
// [1, stock]; out-of-range changes are ignored rather than reported.
package cart

import "github.com/google/uuid"

// Item is one cart line
type Item struct {
	ProductID uuid.UUID `json:"productId"`
	Quantity  int       `json:"quantity"`
}

// Cart is an ordered list of lines, at most one per product
type Cart struct {
	Items []Item `json:"items"`
}

// New wraps stored lines into a Cart
func New(items []Item) *Cart {
	if items == nil {
		items = []Item{}
	}
	return &Cart{Items: items}
}

// Quantity returns the quantity of a product, or 0 when absent
func (c *Cart) Quantity(productID uuid.UUID) int {
	if i := c.index(productID); i >= 0 {
		return c.Items[i].Quantity
	}
	return 0
}

// Add increases the quantity of a product by qty, appending a new line if
// needed. The resulting quantity never exceeds stock; a product without
// stock is not added.
func (c *Cart) Add(productID uuid.UUID, qty, stock int) bool {
	if qty < 1 || stock < 1 {
		return false
	}

	i := c.index(productID)
	if i < 0 {
		c.Items = append(c.Items, Item{ProductID: productID, Quantity: clamp(qty, stock)})
		return true
	}

	current := c.Items[i].Quantity
	next := clamp(current+qty, stock)
	if next == current {
		return false
	}
	c.Items[i].Quantity = next
	return true
}

// SetQuantity sets the quantity of an existing line. Values below 1 or above
// stock are refused and the line keeps its quantity.
func (c *Cart) SetQuantity(productID uuid.UUID, qty, stock int) bool {
	i := c.index(productID)
	if i < 0 || qty < 1 || qty > stock {
		return false
	}
	c.Items[i].Quantity = qty
	return true
}

// Remove drops the line for a product
func (c *Cart) Remove(productID uuid.UUID) bool {
	i := c.index(productID)
	if i < 0 {
		return false
	}
	c.Items = append(c.Items[:i], c.Items[i+1:]...)
	return true
}

// Clear empties the cart
func (c *Cart) Clear() {
	c.Items = []Item{}
}

// IsEmpty reports whether the cart has no lines
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// Count returns the total number of units
func (c *Cart) Count() int {
	n := 0
	for _, it := range c.Items {
		n += it.Quantity
	}
	return n
}

func (c *Cart) index(productID uuid.UUID) int {
	for i, it := range c.Items {
		if it.ProductID == productID {
			return i
		}
	}
	return -1
}

func clamp(qty, stock int) int {
	if qty > stock {
		return stock
	}
	if qty < 1 {
		return 1
	}
	return qty
}
