package models

import "github.com/uptrace/bun"

// InventoryRecord is the per-product-per-size available count. Only the
// webhook reconciler decrements it; correctness of concurrent decrements
// relies on the database's conditional UPDATE, not on in-process locks.
type InventoryRecord struct {
	bun.BaseModel `bun:"table:inventory"`

	ProductID string `bun:"product_id,pk" json:"product_id"`
	Size      string `bun:"size,pk" json:"size"`
	Quantity  int    `bun:"quantity,notnull" json:"quantity"`
}
