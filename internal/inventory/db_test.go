package inventory_test

import (
	"context"
	"database/sql"
	"testing"

	"ms-storefront/internal/inventory"
	"ms-storefront/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	_ "github.com/uptrace/bun/driver/sqliteshim"
)

func setupTestDB(t *testing.T) (*inventory.DB, *bun.DB) {
	sqldb, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to connect to in-memory database: %v", err)
	}

	bunDB := bun.NewDB(sqldb, sqlitedialect.New())

	_, err = bunDB.NewCreateTable().Model((*models.InventoryRecord)(nil)).Exec(context.Background())
	if err != nil {
		t.Fatalf("Failed to create inventory table: %v", err)
	}

	return &inventory.DB{Bun: bunDB}, bunDB
}

func seedRecord(t *testing.T, bunDB *bun.DB, productID, size string, quantity int) {
	record := models.InventoryRecord{ProductID: productID, Size: size, Quantity: quantity}
	_, err := bunDB.NewInsert().Model(&record).Exec(context.Background())
	assert.NoError(t, err)
}

func TestDecreaseInventory(t *testing.T) {
	invDB, bunDB := setupTestDB(t)
	defer bunDB.Close()

	seedRecord(t, bunDB, "prod-aj1", "9", 3)

	// Test case: Normal decrement
	err := invDB.DecreaseInventory("prod-aj1", "9", 2)
	assert.NoError(t, err)

	qty, err := invDB.GetQuantity("prod-aj1", "9")
	assert.NoError(t, err)
	assert.Equal(t, 1, qty)

	// Test case: Decrement to exactly zero is allowed
	err = invDB.DecreaseInventory("prod-aj1", "9", 1)
	assert.NoError(t, err)

	qty, err = invDB.GetQuantity("prod-aj1", "9")
	assert.NoError(t, err)
	assert.Equal(t, 0, qty)
}

func TestDecreaseInventoryInsufficientStock(t *testing.T) {
	invDB, bunDB := setupTestDB(t)
	defer bunDB.Close()

	seedRecord(t, bunDB, "prod-aj1", "9", 1)

	err := invDB.DecreaseInventory("prod-aj1", "9", 2)
	assert.ErrorIs(t, err, inventory.ErrInsufficientStock)

	// The count must be untouched after a refused decrement.
	qty, err := invDB.GetQuantity("prod-aj1", "9")
	assert.NoError(t, err)
	assert.Equal(t, 1, qty)
}

func TestDecreaseInventoryUnknownRecord(t *testing.T) {
	invDB, bunDB := setupTestDB(t)
	defer bunDB.Close()

	seedRecord(t, bunDB, "prod-aj1", "9", 1)

	// Known product, unknown size
	err := invDB.DecreaseInventory("prod-aj1", "13", 1)
	assert.ErrorIs(t, err, inventory.ErrRecordNotFound)

	// Unknown product
	err = invDB.DecreaseInventory("prod-ghost", "9", 1)
	assert.ErrorIs(t, err, inventory.ErrRecordNotFound)
}

func TestDecreaseInventoryRejectsNonPositiveQuantity(t *testing.T) {
	invDB, bunDB := setupTestDB(t)
	defer bunDB.Close()

	seedRecord(t, bunDB, "prod-aj1", "9", 5)

	assert.Error(t, invDB.DecreaseInventory("prod-aj1", "9", 0))
	assert.Error(t, invDB.DecreaseInventory("prod-aj1", "9", -1))

	qty, err := invDB.GetQuantity("prod-aj1", "9")
	assert.NoError(t, err)
	assert.Equal(t, 5, qty)
}

func TestUpsertRecord(t *testing.T) {
	invDB, bunDB := setupTestDB(t)
	defer bunDB.Close()

	// Insert
	err := invDB.UpsertRecord(models.InventoryRecord{ProductID: "prod-nb", Size: "11", Quantity: 3})
	assert.NoError(t, err)

	qty, err := invDB.GetQuantity("prod-nb", "11")
	assert.NoError(t, err)
	assert.Equal(t, 3, qty)

	// Replace
	err = invDB.UpsertRecord(models.InventoryRecord{ProductID: "prod-nb", Size: "11", Quantity: 7})
	assert.NoError(t, err)

	qty, err = invDB.GetQuantity("prod-nb", "11")
	assert.NoError(t, err)
	assert.Equal(t, 7, qty)
}
