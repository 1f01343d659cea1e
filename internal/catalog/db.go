package catalog

import (
	"context"
	"strings"

	"ms-storefront/internal/models"

	"github.com/uptrace/bun"
)

type DB struct {
	Bun *bun.DB
}

// ---------------- PRODUCTS ----------------

// GetProductByID fetches one product by its ID.
func (d *DB) GetProductByID(id string) (*models.Product, error) {
	var product models.Product
	err := d.Bun.NewSelect().
		Model(&product).
		Where("product_id = ?", id).
		Limit(1).
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// ListProducts applies the catalog filters and sort in one query. Size
// filtering goes through the inventory table so only in-stock sizes match.
func (d *DB) ListProducts(filter Filter) ([]models.Product, error) {
	var products []models.Product
	q := d.Bun.NewSelect().Model(&products)

	if filter.Search != "" {
		pattern := "%" + strings.ToLower(filter.Search) + "%"
		q = q.WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.
				Where("lower(name) LIKE ?", pattern).
				WhereOr("lower(brand) LIKE ?", pattern).
				WhereOr("lower(description) LIKE ?", pattern)
		})
	}

	if len(filter.Brands) > 0 {
		q = q.Where("brand IN (?)", bun.In(filter.Brands))
	}

	if len(filter.Sizes) > 0 {
		q = q.Where("product_id IN (SELECT product_id FROM inventory WHERE size IN (?) AND quantity > 0)",
			bun.In(filter.Sizes))
	}

	if filter.MaxPrice > 0 {
		q = q.Where("price BETWEEN ? AND ?", filter.MinPrice, filter.MaxPrice)
	} else if filter.MinPrice > 0 {
		q = q.Where("price >= ?", filter.MinPrice)
	}

	if filter.Condition != "" && filter.Condition != "all" {
		q = q.Where("condition = ?", string(filter.Condition))
	}

	switch filter.Sort {
	case SortPriceLow:
		q = q.Order("price ASC")
	case SortPriceHigh:
		q = q.Order("price DESC")
	case SortTopRated:
		q = q.Order("rating DESC")
	default:
		q = q.Order("created_at DESC")
	}

	err := q.Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return products, nil
}

// GetFeaturedProducts returns the products flagged for the landing page.
func (d *DB) GetFeaturedProducts() ([]models.Product, error) {
	var products []models.Product
	err := d.Bun.NewSelect().
		Model(&products).
		Where("featured = ?", true).
		Order("created_at DESC").
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return products, nil
}

// GetSizesInStock returns the sizes with available inventory for a product.
func (d *DB) GetSizesInStock(productID string) ([]string, error) {
	var sizes []string
	err := d.Bun.NewSelect().
		Column("size").
		Table("inventory").
		Where("product_id = ?", productID).
		Where("quantity > 0").
		Order("size").
		Scan(context.Background(), &sizes)
	if err != nil {
		return nil, err
	}
	return sizes, nil
}

// ---------------- REVIEWS ----------------

func (d *DB) GetReviewsByProduct(productID string) ([]models.Review, error) {
	var reviews []models.Review
	err := d.Bun.NewSelect().
		Model(&reviews).
		Where("product_id = ?", productID).
		Order("created_at DESC").
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return reviews, nil
}

func (d *DB) CreateReview(review models.Review) error {
	_, err := d.Bun.NewInsert().Model(&review).Exec(context.Background())
	return err
}

// RefreshProductRating recomputes the denormalized product rating from its
// reviews.
func (d *DB) RefreshProductRating(productID string) error {
	_, err := d.Bun.NewUpdate().
		Model((*models.Product)(nil)).
		Set("rating = (SELECT COALESCE(AVG(rating), 0) FROM reviews WHERE product_id = ?)", productID).
		Where("product_id = ?", productID).
		Exec(context.Background())
	return err
}
