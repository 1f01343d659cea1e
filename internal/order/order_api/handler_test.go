package order_api_test

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"ms-storefront/internal/logger"
	"ms-storefront/internal/models"
	"ms-storefront/internal/order"
	"ms-storefront/internal/order/order_api"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v82/webhook"
)

const testWebhookSecret = "whsec_test_secret"

// stubDB records status transitions and serves a single known order.
type stubDB struct {
	statusCalls []models.OrderStatus
}

func (s *stubDB) GetOrderByID(id string) (*models.Order, error) {
	return &models.Order{OrderID: id, UserID: "user123", Status: models.OrderStatusPaid}, nil
}

func (s *stubDB) CreateOrder(order models.Order, items []models.OrderItem) error { return nil }

func (s *stubDB) UpdateOrderStatus(orderID string, status models.OrderStatus) error {
	s.statusCalls = append(s.statusCalls, status)
	return nil
}

func (s *stubDB) SetPaymentIntentID(orderID, paymentIntentID string) error { return nil }

func (s *stubDB) GetItemsByOrder(orderID string) ([]models.OrderItem, error) {
	return []models.OrderItem{}, nil
}

func (s *stubDB) GetOrdersByUser(userID string) ([]models.OrderWithItems, error) {
	return []models.OrderWithItems{}, nil
}

type stubInventory struct{}

func (stubInventory) DecreaseInventory(productID, size string, quantity int) error { return nil }

type stubCart struct{}

func (stubCart) GetCart(sessionID string) (*models.Cart, error) {
	return &models.Cart{SessionID: sessionID}, nil
}

func (stubCart) ClearCart(sessionID string) error { return nil }

func newTestHandler(db *stubDB) *order_api.Handler {
	svc := order.NewOrderService(db, stubInventory{}, stubCart{}, nil, nil, nil, logger.NewLogger(), testWebhookSecret)
	return &order_api.Handler{OrderService: svc, Logger: logger.NewLogger()}
}

func signedHeader(payload []byte, secret string) string {
	ts := time.Now()
	sig := webhook.ComputeSignature(ts, payload, secret)
	return fmt.Sprintf("t=%d,v1=%s", ts.Unix(), hex.EncodeToString(sig))
}

func TestStripeWebhookMissingSignature(t *testing.T) {
	handler := newTestHandler(&stubDB{})

	req := httptest.NewRequest(http.MethodPost, "/api/webhooks/stripe", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()

	handler.StripeWebhook(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Missing Stripe signature", body["error"])
}

func TestStripeWebhookAcknowledgesVerifiedEvent(t *testing.T) {
	db := &stubDB{}
	handler := newTestHandler(db)

	payload := []byte(`{"id":"evt_1","type":"payment_intent.succeeded","data":{"object":{"id":"pi_1","object":"payment_intent","metadata":{"order_id":"order-1"}}}}`)
	req := httptest.NewRequest(http.MethodPost, "/api/webhooks/stripe", bytes.NewReader(payload))
	req.Header.Set("Stripe-Signature", signedHeader(payload, testWebhookSecret))
	rec := httptest.NewRecorder()

	handler.StripeWebhook(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]bool
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body["received"])

	require.Equal(t, 1, len(db.statusCalls))
	assert.Equal(t, models.OrderStatusPaid, db.statusCalls[0])
}

func TestStripeWebhookAcknowledgesUnhandledType(t *testing.T) {
	db := &stubDB{}
	handler := newTestHandler(db)

	payload := []byte(`{"id":"evt_2","type":"charge.refunded","data":{"object":{"id":"ch_1"}}}`)
	req := httptest.NewRequest(http.MethodPost, "/api/webhooks/stripe", bytes.NewReader(payload))
	req.Header.Set("Stripe-Signature", signedHeader(payload, testWebhookSecret))
	rec := httptest.NewRecorder()

	handler.StripeWebhook(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]bool
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body["received"])
	assert.Empty(t, db.statusCalls)
}

func TestCheckoutRejectsEmptyCart(t *testing.T) {
	handler := newTestHandler(&stubDB{})

	payload := []byte(`{"session_id":"session1","user_id":"user123"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/checkout", bytes.NewReader(payload))
	rec := httptest.NewRecorder()

	handler.Checkout(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCheckoutRejectsMissingFields(t *testing.T) {
	handler := newTestHandler(&stubDB{})

	payload := []byte(`{"session_id":"","user_id":""}`)
	req := httptest.NewRequest(http.MethodPost, "/api/checkout", bytes.NewReader(payload))
	rec := httptest.NewRecorder()

	handler.Checkout(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
