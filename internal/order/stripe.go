package order

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"ms-storefront/internal/models"
	orderdb "ms-storefront/internal/order/db"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/paymentintent"
	"github.com/stripe/stripe-go/v82/webhook"
)

// ErrMissingOrderMetadata means an authentic event arrived without the
// order linkage the checkout flow is supposed to attach. Retrying the
// same event cannot fix it.
var ErrMissingOrderMetadata = errors.New("payment event has no order_id in metadata")

// InitStripe sets the Stripe API key for the process.
func InitStripe(secretKey string) {
	stripe.Key = secretKey
}

// CreatePaymentIntent creates a Stripe payment intent for a pending
// order. The order ID travels in the intent metadata; the webhook relies
// on it to find its way back to the order.
func (s *OrderService) CreatePaymentIntent(orderID string) (*stripe.PaymentIntent, error) {
	s.logger.Info("PAYMENT", fmt.Sprintf("Creating payment intent for order: %s", orderID))

	order, err := s.DB.GetOrderByID(orderID)
	if err != nil {
		s.logger.Error("PAYMENT", fmt.Sprintf("Failed to find order %s: %v", orderID, err))
		return nil, err
	}

	if order.Status != models.OrderStatusPending {
		s.logger.Warn("PAYMENT", fmt.Sprintf("Cannot create payment intent for order %s with status %s", orderID, order.Status))
		return nil, errors.New("cannot create payment intent for an order that is not pending")
	}

	amountInCents := int64(order.Total * 100)

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amountInCents),
		Currency: stripe.String("usd"),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.AddMetadata("order_id", orderID)

	intent, err := paymentintent.New(params)
	if err != nil {
		s.logger.Error("PAYMENT", fmt.Sprintf("Failed to create Stripe payment intent: %v", err))
		return nil, err
	}

	if err := s.DB.SetPaymentIntentID(orderID, intent.ID); err != nil {
		s.logger.Error("PAYMENT", fmt.Sprintf("Failed to record payment intent ID on order %s: %v", orderID, err))
		return nil, err
	}

	s.logger.Info("PAYMENT", fmt.Sprintf("Created payment intent %s for order %s (USD %0.2f)", intent.ID, orderID, order.Total))
	return intent, nil
}

// WebhookError carries an HTTP status and a client-safe message for a
// failed webhook request. Only the verification class of failures
// produces one; everything after a verified event is acknowledged.
type WebhookError struct {
	Category      string // "configuration" or "validation"
	StatusCode    int
	PublicError   string
	InternalError string
	OriginalErr   error
}

func (e *WebhookError) Error() string {
	return e.InternalError
}

// HandleStripeWebhook runs the webhook pipeline: raw body first, then
// signature verification, then dispatch on event kind. The raw bytes must
// be read before any JSON decoding because the signature covers the exact
// payload. A non-nil return means the caller should answer 400; nil means
// the event is acknowledged, whatever happened during reconciliation.
func (s *OrderService) HandleStripeWebhook(r *http.Request) error {
	if s.webhookSecret == "" {
		s.logger.Error("WEBHOOK", "Stripe webhook secret is not configured")
		return &WebhookError{
			Category:      "configuration",
			StatusCode:    http.StatusInternalServerError,
			PublicError:   "Webhook processing error",
			InternalError: "Stripe webhook secret is not configured",
		}
	}

	signature := r.Header.Get("Stripe-Signature")
	if signature == "" {
		s.logger.Warn("WEBHOOK", "Request rejected: no Stripe-Signature header")
		return &WebhookError{
			Category:      "validation",
			StatusCode:    http.StatusBadRequest,
			PublicError:   "Missing Stripe signature",
			InternalError: "Request has no Stripe-Signature header",
		}
	}

	payload, err := io.ReadAll(r.Body)
	if err != nil {
		s.logger.Error("WEBHOOK", fmt.Sprintf("Failed to read webhook payload: %v", err))
		return &WebhookError{
			Category:      "validation",
			StatusCode:    http.StatusBadRequest,
			PublicError:   "Invalid webhook payload",
			InternalError: fmt.Sprintf("Failed to read webhook payload: %v", err),
			OriginalErr:   err,
		}
	}

	opts := webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	}
	event, err := webhook.ConstructEventWithOptions(payload, signature, s.webhookSecret, opts)
	if err != nil {
		s.logger.Error("WEBHOOK", fmt.Sprintf("Webhook signature verification failed: %v", err))
		return &WebhookError{
			Category:      "validation",
			StatusCode:    http.StatusBadRequest,
			PublicError:   "Webhook signature verification failed",
			InternalError: fmt.Sprintf("Webhook signature verification failed: %v", err),
			OriginalErr:   err,
		}
	}

	if s.Guard != nil {
		seen, err := s.Guard.MarkProcessed(event.ID)
		if err != nil {
			// Guard trouble must not drop a paid order; fall through and
			// process the event.
			s.logger.Warn("WEBHOOK", fmt.Sprintf("Duplicate-delivery guard unavailable for event %s: %v", event.ID, err))
		} else if seen {
			s.logger.LogWebhook("DUPLICATE", event.ID, "event already processed, acknowledging without action")
			return nil
		}
	}

	kind := models.ParsePaymentEventKind(string(event.Type))
	s.logger.LogWebhook("DISPATCH", event.ID, fmt.Sprintf("event type %s", event.Type))

	switch kind {
	case models.PaymentEventSucceeded:
		orderID, err := orderIDFromEvent(event)
		if err != nil {
			s.logger.Error("WEBHOOK", fmt.Sprintf("Event %s: %v", event.ID, err))
			return nil
		}
		if orderID == "" {
			s.logger.Error("WEBHOOK", fmt.Sprintf("Event %s: %v", event.ID, ErrMissingOrderMetadata))
			return nil
		}
		if err := s.MarkOrderPaid(orderID); err != nil {
			// Payment is already captured; the processor must not be told
			// to retry. Log and acknowledge.
			if IsOrderNotFound(err) {
				s.logger.Warn("WEBHOOK", fmt.Sprintf("Order %s cannot be reconciled: %v", orderID, err))
			} else {
				s.logger.Error("WEBHOOK", fmt.Sprintf("Reconciliation for order %s: %v", orderID, err))
			}
		} else {
			s.logger.LogWebhook("RECONCILED", event.ID, fmt.Sprintf("order %s paid", orderID))
		}

	case models.PaymentEventFailed:
		orderID, err := orderIDFromEvent(event)
		if err != nil {
			s.logger.Error("WEBHOOK", fmt.Sprintf("Event %s: %v", event.ID, err))
			return nil
		}
		if orderID == "" {
			s.logger.Error("WEBHOOK", fmt.Sprintf("Event %s: %v", event.ID, ErrMissingOrderMetadata))
			return nil
		}
		if err := s.MarkOrderCancelled(orderID); err != nil {
			if IsOrderNotFound(err) {
				s.logger.Warn("WEBHOOK", fmt.Sprintf("Order %s cannot be cancelled: %v", orderID, err))
			} else {
				s.logger.Error("WEBHOOK", fmt.Sprintf("Cancellation for order %s: %v", orderID, err))
			}
		} else {
			s.logger.LogWebhook("RECONCILED", event.ID, fmt.Sprintf("order %s cancelled", orderID))
		}

	default:
		s.logger.LogWebhook("IGNORED", event.ID, fmt.Sprintf("unhandled event type: %s", event.Type))
	}

	return nil
}

// orderIDFromEvent unpacks the payment intent carried in a verified event
// and returns the order ID from its metadata. The event already passed
// signature verification, so a failure here is logged and acknowledged
// rather than turned into a retryable status.
func orderIDFromEvent(event stripe.Event) (string, error) {
	var paymentIntent stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &paymentIntent); err != nil {
		return "", fmt.Errorf("failed to unmarshal payment intent: %w", err)
	}
	return paymentIntent.Metadata["order_id"], nil
}

// IsOrderNotFound reports whether a reconciliation error was a missing or
// already-final order, which the handler logs but never converts into a
// retryable response.
func IsOrderNotFound(err error) bool {
	return errors.Is(err, orderdb.ErrOrderNotFound) || errors.Is(err, orderdb.ErrOrderFinal)
}
