package order

import (
	"time"

	"github.com/georgemunganga/jerseyx-backend/internal/modules/cart"
	"github.com/georgemunganga/jerseyx-backend/internal/modules/catalog"
	"github.com/georgemunganga/jerseyx-backend/internal/modules/payment"
)

// Status is the fulfilment state of an order. Orders are only ever created
// as Processing; the other states exist for display.
type Status string

const (
	StatusProcessing Status = "Processing"
	StatusPacked     Status = "Packed"
	StatusShipped    Status = "Shipped"
	StatusDelivered  Status = "Delivered"
	StatusCancelled  Status = "Cancelled"
)

type PaymentStatus string

const (
	PaymentPaid    PaymentStatus = "Paid"
	PaymentPending PaymentStatus = "Pending"
)

type Payment struct {
	Method    payment.Method `json:"method"`
	Status    PaymentStatus  `json:"status"`
	Reference string         `json:"reference,omitempty"`
}

// Totals satisfies Total = Subtotal + Shipping - Discount.
type Totals struct {
	Subtotal float64 `json:"subtotal"`
	Shipping float64 `json:"shipping"`
	Discount float64 `json:"discount"`
	Total    float64 `json:"total"`
}

// Item is a value copy of a cart line at the moment of purchase.
type Item struct {
	ProductID string              `json:"id"`
	Name      string              `json:"name"`
	Size      string              `json:"size"`
	Qty       int                 `json:"qty"`
	Price     float64             `json:"price"`
	Images    []string            `json:"images"`
	Team      string              `json:"team,omitempty"`
	Sport     catalog.Sport       `json:"sport,omitempty"`
	Custom    *cart.Customization `json:"custom,omitempty"`
}

type Shipping struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
}

// Order is immutable once placed.
type Order struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	Status    Status    `json:"status"`
	Payment   Payment   `json:"payment"`
	Totals    Totals    `json:"totals"`
	Items     []Item    `json:"items"`
	Shipping  Shipping  `json:"shipping"`
}

func (o Order) clone() Order {
	c := o
	c.Items = make([]Item, len(o.Items))
	for i, it := range o.Items {
		c.Items[i] = it.clone()
	}
	return c
}

func (it Item) clone() Item {
	c := it
	c.Images = append([]string(nil), it.Images...)
	if it.Custom != nil {
		custom := *it.Custom
		c.Custom = &custom
	}
	return c
}

// Adjustments are optional pricing changes applied on top of the subtotal.
type Adjustments struct {
	Shipping float64 `json:"shipping,omitempty"`
	Discount float64 `json:"discount,omitempty"`
}

// PlaceOrderRequest carries a frozen copy of the cart's detailed lines.
type PlaceOrderRequest struct {
	Items     []cart.DetailedLine `json:"items"`
	Shipping  Shipping            `json:"shipping"`
	Method    payment.Method      `json:"method"`
	Reference string              `json:"reference,omitempty"`
	Pricing   *Adjustments        `json:"pricing,omitempty"`
}
