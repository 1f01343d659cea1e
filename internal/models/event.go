package models

import "time"

// PaymentEventKind is the closed set of webhook event kinds the
// reconciler acts on. Anything else maps to PaymentEventUnhandled and is
// acknowledged without touching the datastore.
type PaymentEventKind int

const (
	PaymentEventUnhandled PaymentEventKind = iota
	PaymentEventSucceeded
	PaymentEventFailed
)

const (
	stripePaymentSucceeded = "payment_intent.succeeded"
	stripePaymentFailed    = "payment_intent.payment_failed"
)

func ParsePaymentEventKind(eventType string) PaymentEventKind {
	switch eventType {
	case stripePaymentSucceeded:
		return PaymentEventSucceeded
	case stripePaymentFailed:
		return PaymentEventFailed
	default:
		return PaymentEventUnhandled
	}
}

func (k PaymentEventKind) String() string {
	switch k {
	case PaymentEventSucceeded:
		return stripePaymentSucceeded
	case PaymentEventFailed:
		return stripePaymentFailed
	default:
		return "unhandled"
	}
}

// OrderEvent is the payload published to Kafka when an order changes
// state.
type OrderEvent struct {
	Type      string    `json:"type"`
	OrderID   string    `json:"order_id"`
	Status    string    `json:"status"`
	Total     float64   `json:"total"`
	Timestamp time.Time `json:"timestamp"`
}
