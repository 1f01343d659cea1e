package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"ms-storefront/internal/models"

	"github.com/uptrace/bun"
)

var (
	// ErrOrderNotFound means the referenced order does not exist at all.
	ErrOrderNotFound = errors.New("order not found")
	// ErrOrderFinal means the order exists but already reached a terminal
	// status and may not transition again.
	ErrOrderFinal = errors.New("order already in a terminal status")
)

type DB struct {
	Bun *bun.DB
}

// ---------------- ORDERS ----------------

// GetOrderByID fetches one order by its ID.
func (d *DB) GetOrderByID(id string) (*models.Order, error) {
	var order models.Order
	err := d.Bun.NewSelect().
		Model(&order).
		Where("order_id = ?", id).
		Limit(1).
		Scan(context.Background())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrOrderNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// CreateOrder inserts the order and its line items in one transaction.
func (d *DB) CreateOrder(order models.Order, items []models.OrderItem) error {
	ctx := context.Background()
	return d.Bun.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(&order).Exec(ctx); err != nil {
			return err
		}
		if len(items) > 0 {
			if _, err := tx.NewInsert().Model(&items).Exec(ctx); err != nil {
				return err
			}
		}
		return nil
	})
}

// UpdateOrderStatus moves a pending order to the given status. Orders in
// a terminal status never transition again, so a redelivered webhook
// cannot flip paid to cancelled or back.
func (d *DB) UpdateOrderStatus(orderID string, status models.OrderStatus) error {
	res, err := d.Bun.NewUpdate().
		Model((*models.Order)(nil)).
		Set("status = ?", string(status)).
		Set("updated_at = ?", time.Now()).
		Where("order_id = ?", orderID).
		Where("status = ?", string(models.OrderStatusPending)).
		Exec(context.Background())
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		exists, err := d.Bun.NewSelect().
			Model((*models.Order)(nil)).
			Where("order_id = ?", orderID).
			Exists(context.Background())
		if err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("%w: %s", ErrOrderNotFound, orderID)
		}
		return fmt.Errorf("%w: %s", ErrOrderFinal, orderID)
	}

	return nil
}

// SetPaymentIntentID records the Stripe payment intent created for an
// order.
func (d *DB) SetPaymentIntentID(orderID, paymentIntentID string) error {
	_, err := d.Bun.NewUpdate().
		Model((*models.Order)(nil)).
		Set("payment_intent_id = ?", paymentIntentID).
		Where("order_id = ?", orderID).
		Exec(context.Background())
	return err
}

// ---------------- LINE ITEMS ----------------

// GetItemsByOrder fetches all line items belonging to an order.
func (d *DB) GetItemsByOrder(orderID string) ([]models.OrderItem, error) {
	var items []models.OrderItem
	err := d.Bun.NewSelect().
		Model(&items).
		Where("order_id = ?", orderID).
		Order("item_id").
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return items, nil
}

// GetOrdersByUser fetches a user's orders, newest first, with items.
func (d *DB) GetOrdersByUser(userID string) ([]models.OrderWithItems, error) {
	var orders []models.Order
	err := d.Bun.NewSelect().
		Model(&orders).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Scan(context.Background())
	if err != nil {
		return nil, err
	}

	if len(orders) == 0 {
		return []models.OrderWithItems{}, nil
	}

	orderIDs := make([]string, len(orders))
	for i, order := range orders {
		orderIDs[i] = order.OrderID
	}

	var items []models.OrderItem
	err = d.Bun.NewSelect().
		Model(&items).
		Where("order_id IN (?)", bun.In(orderIDs)).
		Order("order_id", "item_id").
		Scan(context.Background())
	if err != nil {
		return nil, err
	}

	itemsByOrder := make(map[string][]models.OrderItem)
	for _, item := range items {
		itemsByOrder[item.OrderID] = append(itemsByOrder[item.OrderID], item)
	}

	result := make([]models.OrderWithItems, len(orders))
	for i, order := range orders {
		result[i] = models.OrderWithItems{
			Order: order,
			Items: itemsByOrder[order.OrderID],
		}
		if result[i].Items == nil {
			result[i].Items = []models.OrderItem{}
		}
	}

	return result, nil
}
