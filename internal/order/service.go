package order

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"ms-storefront/internal/kafka"
	"ms-storefront/internal/logger"
	"ms-storefront/internal/models"

	"github.com/google/uuid"
)

var ErrEmptyCart = errors.New("cart is empty")

type DBLayer interface {
	GetOrderByID(id string) (*models.Order, error)
	CreateOrder(order models.Order, items []models.OrderItem) error
	UpdateOrderStatus(orderID string, status models.OrderStatus) error
	SetPaymentIntentID(orderID, paymentIntentID string) error
	GetItemsByOrder(orderID string) ([]models.OrderItem, error)
	GetOrdersByUser(userID string) ([]models.OrderWithItems, error)
}

type InventoryLayer interface {
	DecreaseInventory(productID, size string, quantity int) error
}

type CartLayer interface {
	GetCart(sessionID string) (*models.Cart, error)
	ClearCart(sessionID string) error
}

type ProductLookup interface {
	GetProductByID(id string) (*models.Product, error)
}

type KafkaPublisher interface {
	Publish(topic string, key string, value []byte) error
}

// EventGuard tracks processed webhook event IDs. MarkProcessed returns
// true when the event was already handled by an earlier delivery.
type EventGuard interface {
	MarkProcessed(eventID string) (bool, error)
}

type OrderService struct {
	DB        DBLayer
	Inventory InventoryLayer
	Cart      CartLayer
	Products  ProductLookup
	Kafka     KafkaPublisher
	Guard     EventGuard // nil disables duplicate-delivery detection

	logger        *logger.Logger
	webhookSecret string
}

func NewOrderService(db DBLayer, inv InventoryLayer, cart CartLayer, products ProductLookup, producer KafkaPublisher, guard EventGuard, log *logger.Logger, webhookSecret string) *OrderService {
	return &OrderService{
		DB:            db,
		Inventory:     inv,
		Cart:          cart,
		Products:      products,
		Kafka:         producer,
		Guard:         guard,
		logger:        log,
		webhookSecret: webhookSecret,
	}
}

// ---------------- ORDERS ----------------

func (s *OrderService) GetOrder(id string) (*models.OrderWithItems, error) {
	order, err := s.DB.GetOrderByID(id)
	if err != nil {
		return nil, err
	}

	items, err := s.DB.GetItemsByOrder(id)
	if err != nil {
		return nil, fmt.Errorf("failed to load items for order %s: %w", id, err)
	}

	return &models.OrderWithItems{Order: *order, Items: items}, nil
}

func (s *OrderService) GetOrdersByUser(userID string) ([]models.OrderWithItems, error) {
	return s.DB.GetOrdersByUser(userID)
}

// Checkout turns a session cart into a pending order plus a Stripe
// payment intent carrying the order ID in its metadata. Line prices are
// re-read from the catalog so the client can never set its own amount.
func (s *OrderService) Checkout(sessionID, userID string) (*models.CheckoutResponse, error) {
	cart, err := s.Cart.GetCart(sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart for session %s: %w", sessionID, err)
	}
	if len(cart.Items) == 0 {
		return nil, ErrEmptyCart
	}

	orderID := uuid.NewString()
	items := make([]models.OrderItem, 0, len(cart.Items))
	total := 0.0

	for _, line := range cart.Items {
		product, err := s.Products.GetProductByID(line.ProductID)
		if err != nil {
			return nil, fmt.Errorf("product %s no longer available: %w", line.ProductID, err)
		}

		items = append(items, models.OrderItem{
			ItemID:          uuid.NewString(),
			OrderID:         orderID,
			ProductID:       product.ProductID,
			Size:            line.Size,
			Color:           line.Color,
			Quantity:        line.Quantity,
			PriceAtPurchase: product.Price,
		})
		total += product.Price * float64(line.Quantity)
	}

	order := models.Order{
		OrderID:   orderID,
		UserID:    userID,
		Status:    models.OrderStatusPending,
		Total:     total,
		CreatedAt: time.Now(),
	}

	if err := s.DB.CreateOrder(order, items); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}
	s.logger.LogOrder("CREATE", orderID, fmt.Sprintf("pending order for user %s, total %.2f", userID, total))

	intent, err := s.CreatePaymentIntent(orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to create payment intent for order %s: %w", orderID, err)
	}

	if err := s.Cart.ClearCart(sessionID); err != nil {
		s.logger.Warn("CART", fmt.Sprintf("Failed to clear cart for session %s: %v", sessionID, err))
	}

	s.publishOrderEvent(kafka.TopicOrderCreated, order)

	return &models.CheckoutResponse{
		OrderID:      orderID,
		Total:        total,
		ClientSecret: intent.ClientSecret,
	}, nil
}

// ---------------- RECONCILIATION ----------------

// MarkOrderPaid transitions a pending order to paid and decrements
// inventory for every line item. Every decrement is attempted even when
// earlier ones fail; failures come back aggregated so the caller can log
// them without treating the order update as failed.
func (s *OrderService) MarkOrderPaid(orderID string) error {
	if err := s.DB.UpdateOrderStatus(orderID, models.OrderStatusPaid); err != nil {
		return err
	}
	s.logger.LogOrder("PAID", orderID, "order status updated to paid")

	items, err := s.DB.GetItemsByOrder(orderID)
	if err != nil {
		return fmt.Errorf("order %s marked paid but items could not be loaded: %w", orderID, err)
	}

	var failures []error
	for _, item := range items {
		if err := s.Inventory.DecreaseInventory(item.ProductID, item.Size, item.Quantity); err != nil {
			s.logger.Error("INVENTORY", fmt.Sprintf("Decrement failed for product %s size %s qty %d: %v",
				item.ProductID, item.Size, item.Quantity, err))
			failures = append(failures, fmt.Errorf("product %s size %s: %w", item.ProductID, item.Size, err))
			continue
		}
		s.logger.Info("INVENTORY", fmt.Sprintf("Decremented product %s size %s by %d", item.ProductID, item.Size, item.Quantity))
	}

	if order, err := s.DB.GetOrderByID(orderID); err == nil {
		s.publishOrderEvent(kafka.TopicOrderPaid, *order)
	}

	if len(failures) > 0 {
		return fmt.Errorf("order %s paid with %d inventory decrement failures: %w",
			orderID, len(failures), errors.Join(failures...))
	}
	return nil
}

// MarkOrderCancelled transitions a pending order to cancelled. Nothing
// was decremented for it, so inventory is untouched.
func (s *OrderService) MarkOrderCancelled(orderID string) error {
	if err := s.DB.UpdateOrderStatus(orderID, models.OrderStatusCancelled); err != nil {
		return err
	}
	s.logger.LogOrder("CANCEL", orderID, "order status updated to cancelled")

	if order, err := s.DB.GetOrderByID(orderID); err == nil {
		s.publishOrderEvent(kafka.TopicOrderCancelled, *order)
	}
	return nil
}

func (s *OrderService) publishOrderEvent(topic string, order models.Order) {
	if s.Kafka == nil {
		return
	}

	event := models.OrderEvent{
		Type:      topic,
		OrderID:   order.OrderID,
		Status:    string(order.Status),
		Total:     order.Total,
		Timestamp: time.Now(),
	}

	value, err := json.Marshal(event)
	if err != nil {
		s.logger.Error("KAFKA", fmt.Sprintf("Failed to marshal order event: %v", err))
		return
	}

	if err := s.Kafka.Publish(topic, order.OrderID, value); err != nil {
		s.logger.Error("KAFKA", fmt.Sprintf("Failed to publish %s for order %s: %v", topic, order.OrderID, err))
	} else {
		s.logger.Info("KAFKA", fmt.Sprintf("Published %s for order %s", topic, order.OrderID))
	}
}
