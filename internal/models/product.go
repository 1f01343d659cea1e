package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/uptrace/bun"
)

type ProductCondition string

const (
	ConditionNew        ProductCondition = "new"
	ConditionLikeNew    ProductCondition = "like new"
	ConditionGentlyUsed ProductCondition = "gently used"
	ConditionWellWorn   ProductCondition = "well worn"
)

// StringList is stored as a JSON text column so the same model works on
// Postgres and the in-memory SQLite used in tests.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	data, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func (l *StringList) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*l = nil
		return nil
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	default:
		return fmt.Errorf("unsupported type %T for StringList", src)
	}
}

type Product struct {
	bun.BaseModel `bun:"table:products"`

	ProductID     string           `bun:"product_id,pk" json:"product_id"`
	Name          string           `bun:"name,notnull" json:"name"`
	Brand         string           `bun:"brand,notnull" json:"brand"`
	Price         float64          `bun:"price,notnull" json:"price"`
	OriginalPrice float64          `bun:"original_price" json:"original_price"`
	Description   string           `bun:"description" json:"description"`
	Condition     ProductCondition `bun:"condition,notnull" json:"condition"`
	Images        StringList       `bun:"images,type:text" json:"images"`
	Colors        StringList       `bun:"colors,type:text" json:"colors"`
	Tags          StringList       `bun:"tags,type:text" json:"tags"`
	Rating        float64          `bun:"rating" json:"rating"`
	Authenticity  bool             `bun:"authenticity" json:"authenticity"`
	Featured      bool             `bun:"featured" json:"featured"`
	CreatedAt     time.Time        `bun:"created_at,notnull" json:"created_at"`
}

type Review struct {
	bun.BaseModel `bun:"table:reviews"`

	ReviewID  string    `bun:"review_id,pk" json:"review_id"`
	ProductID string    `bun:"product_id,notnull" json:"product_id"`
	UserName  string    `bun:"user_name,notnull" json:"user_name"`
	Content   string    `bun:"content" json:"content"`
	Rating    int       `bun:"rating,notnull" json:"rating"`
	CreatedAt time.Time `bun:"created_at,notnull" json:"created_at"`
}

// ProductWithSizes is a product plus the sizes currently in stock,
// derived from the inventory table.
type ProductWithSizes struct {
	Product
	Sizes []string `json:"sizes"`
}

type ProductDetail struct {
	Product
	Sizes   []string `json:"sizes"`
	Reviews []Review `json:"reviews"`
}
