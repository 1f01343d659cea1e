package inventory

import (
	"context"
	"errors"
	"fmt"

	"ms-storefront/internal/models"

	"github.com/uptrace/bun"
)

var (
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrRecordNotFound    = errors.New("inventory record not found")
)

type DB struct {
	Bun *bun.DB
}

// DecreaseInventory subtracts quantity from one product/size count. The
// conditional UPDATE is the whole concurrency story: the database rejects
// a decrement that would go below zero, so parallel webhook deliveries
// cannot oversell a SKU.
func (d *DB) DecreaseInventory(productID, size string, quantity int) error {
	if quantity <= 0 {
		return fmt.Errorf("decrement quantity must be positive, got %d", quantity)
	}

	res, err := d.Bun.NewUpdate().
		Model((*models.InventoryRecord)(nil)).
		Set("quantity = quantity - ?", quantity).
		Where("product_id = ?", productID).
		Where("size = ?", size).
		Where("quantity >= ?", quantity).
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
			Model((*models.InventoryRecord)(nil)).
			Where("product_id = ?", productID).
			Where("size = ?", size).
			Exists(context.Background())
		if err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("%w: product %s size %s", ErrRecordNotFound, productID, size)
		}
		return fmt.Errorf("%w: product %s size %s qty %d", ErrInsufficientStock, productID, size, quantity)
	}

	return nil
}

// GetQuantity returns the available count for one product/size.
func (d *DB) GetQuantity(productID, size string) (int, error) {
	var record models.InventoryRecord
	err := d.Bun.NewSelect().
		Model(&record).
		Where("product_id = ?", productID).
		Where("size = ?", size).
		Limit(1).
		Scan(context.Background())
	if err != nil {
		return 0, err
	}
	return record.Quantity, nil
}

// UpsertRecord creates or replaces a product/size count. Used by seeding
// and consignment intake, never by the webhook path.
func (d *DB) UpsertRecord(record models.InventoryRecord) error {
	_, err := d.Bun.NewInsert().
		Model(&record).
		On("CONFLICT (product_id, size) DO UPDATE").
		Set("quantity = EXCLUDED.quantity").
		Exec(context.Background())
	return err
}
