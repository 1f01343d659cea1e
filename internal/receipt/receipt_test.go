package receipt_test

import (
	"bytes"
	"testing"
	"time"

	"ms-storefront/internal/models"
	"ms-storefront/internal/receipt"
)

func testOrder(orderID string) (models.Order, []models.OrderItem) {
	order := models.Order{
		OrderID:   orderID,
		UserID:    "user123",
		Status:    models.OrderStatusPaid,
		Total:     680.0,
		CreatedAt: time.Now(),
	}
	items := []models.OrderItem{
		{ItemID: "i1", OrderID: orderID, ProductID: "prod-aj1", Size: "9", Quantity: 1, PriceAtPurchase: 420.0},
		{ItemID: "i2", OrderID: orderID, ProductID: "prod-yzy", Size: "10", Quantity: 1, PriceAtPurchase: 260.0},
	}
	return order, items
}

func TestGenerateOrderReceipt(t *testing.T) {
	gen := receipt.NewGenerator("test-secret-key")

	order, items := testOrder("order-1")
	png, err := gen.GenerateOrderReceipt(order, items)
	if err != nil {
		t.Fatalf("Failed to generate receipt: %v", err)
	}

	if len(png) == 0 {
		t.Error("Generated receipt is empty")
	}

	// PNG magic bytes
	if !bytes.HasPrefix(png, []byte("\x89PNG")) {
		t.Error("Generated receipt is not a PNG image")
	}
}

func TestGenerateOrderReceiptDiffersPerOrder(t *testing.T) {
	gen := receipt.NewGenerator("test-secret-key")

	order1, items1 := testOrder("order-1")
	order2, items2 := testOrder("order-2")

	png1, err := gen.GenerateOrderReceipt(order1, items1)
	if err != nil {
		t.Fatalf("Failed to generate first receipt: %v", err)
	}

	png2, err := gen.GenerateOrderReceipt(order2, items2)
	if err != nil {
		t.Fatalf("Failed to generate second receipt: %v", err)
	}

	if bytes.Equal(png1, png2) {
		t.Error("Receipts for different orders should not be identical")
	}
}

func TestGenerateOrderReceiptSecretIndependentOfLength(t *testing.T) {
	// The secret is hashed to a fixed-size key, so any length works.
	for _, secret := range []string{"s", "a-much-longer-secret-than-thirty-two-bytes-for-sure"} {
		gen := receipt.NewGenerator(secret)
		order, items := testOrder("order-1")
		if _, err := gen.GenerateOrderReceipt(order, items); err != nil {
			t.Fatalf("Failed to generate receipt with secret %q: %v", secret, err)
		}
	}
}
