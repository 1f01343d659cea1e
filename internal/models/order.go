package models

import (
	"time"

	"github.com/uptrace/bun"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// IsTerminal reports whether an order may no longer change status.
// Transitions only run forward: pending -> paid, pending -> cancelled.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusPaid || s == OrderStatusCancelled
}

type Order struct {
	bun.BaseModel `bun:"table:orders"`

	OrderID         string      `bun:"order_id,pk" json:"order_id"`
	UserID          string      `bun:"user_id,notnull" json:"user_id"`
	Status          OrderStatus `bun:"status,notnull" json:"status"`
	Total           float64     `bun:"total,notnull" json:"total"`
	PaymentIntentID string      `bun:"payment_intent_id,nullzero" json:"payment_intent_id,omitempty"`
	CreatedAt       time.Time   `bun:"created_at,notnull" json:"created_at"`
	UpdatedAt       time.Time   `bun:"updated_at,nullzero" json:"updated_at,omitempty"`
}

// OrderItem is one purchased size/quantity of one product. Items are
// written once at checkout and read-only afterwards.
type OrderItem struct {
	bun.BaseModel `bun:"table:order_items"`

	ItemID          string  `bun:"item_id,pk" json:"item_id"`
	OrderID         string  `bun:"order_id,notnull" json:"order_id"`
	ProductID       string  `bun:"product_id,notnull" json:"product_id"`
	Size            string  `bun:"size,notnull" json:"size"`
	Color           string  `bun:"color" json:"color"`
	Quantity        int     `bun:"quantity,notnull" json:"quantity"`
	PriceAtPurchase float64 `bun:"price_at_purchase,notnull" json:"price_at_purchase"`
}

type OrderWithItems struct {
	Order
	Items []OrderItem `json:"items"`
}

type CheckoutRequest struct {
	SessionID string `json:"session_id"`
	UserID    string `json:"user_id"`
}

type CheckoutResponse struct {
	OrderID      string  `json:"order_id"`
	Total        float64 `json:"total"`
	ClientSecret string  `json:"client_secret"`
}
