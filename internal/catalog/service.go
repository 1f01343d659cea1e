package catalog

import (
	"fmt"
	"time"

	"ms-storefront/internal/models"

	"github.com/google/uuid"
)

type SortOption string

const (
	SortNewest    SortOption = "newest"
	SortPriceLow  SortOption = "price-low"
	SortPriceHigh SortOption = "price-high"
	SortTopRated  SortOption = "top-rated"
)

// Filter is the full set of catalog predicates. Zero values mean "no
// constraint"; all populated predicates must match.
type Filter struct {
	Search    string
	Brands    []string
	Sizes     []string
	MinPrice  float64
	MaxPrice  float64
	Condition models.ProductCondition
	Sort      SortOption
}

type DBLayer interface {
	GetProductByID(id string) (*models.Product, error)
	ListProducts(filter Filter) ([]models.Product, error)
	GetFeaturedProducts() ([]models.Product, error)
	GetSizesInStock(productID string) ([]string, error)
	GetReviewsByProduct(productID string) ([]models.Review, error)
	CreateReview(review models.Review) error
	RefreshProductRating(productID string) error
}

type Service struct {
	DB DBLayer
}

func NewService(db DBLayer) *Service {
	return &Service{DB: db}
}

func (s *Service) ListProducts(filter Filter) ([]models.Product, error) {
	return s.DB.ListProducts(filter)
}

func (s *Service) FeaturedProducts() ([]models.Product, error) {
	return s.DB.GetFeaturedProducts()
}

// GetProductDetail returns the product together with its in-stock sizes
// and reviews.
func (s *Service) GetProductDetail(productID string) (*models.ProductDetail, error) {
	product, err := s.DB.GetProductByID(productID)
	if err != nil {
		return nil, fmt.Errorf("product %s not found: %w", productID, err)
	}

	sizes, err := s.DB.GetSizesInStock(productID)
	if err != nil {
		return nil, fmt.Errorf("failed to load sizes for product %s: %w", productID, err)
	}

	reviews, err := s.DB.GetReviewsByProduct(productID)
	if err != nil {
		return nil, fmt.Errorf("failed to load reviews for product %s: %w", productID, err)
	}

	return &models.ProductDetail{
		Product: *product,
		Sizes:   sizes,
		Reviews: reviews,
	}, nil
}

func (s *Service) AddReview(productID, userName, content string, rating int) (*models.Review, error) {
	if rating < 1 || rating > 5 {
		return nil, fmt.Errorf("rating must be between 1 and 5, got %d", rating)
	}

	if _, err := s.DB.GetProductByID(productID); err != nil {
		return nil, fmt.Errorf("product %s not found: %w", productID, err)
	}

	review := models.Review{
		ReviewID:  uuid.NewString(),
		ProductID: productID,
		UserName:  userName,
		Content:   content,
		Rating:    rating,
		CreatedAt: time.Now(),
	}

	if err := s.DB.CreateReview(review); err != nil {
		return nil, fmt.Errorf("failed to create review: %w", err)
	}

	if err := s.DB.RefreshProductRating(productID); err != nil {
		return nil, fmt.Errorf("failed to refresh product rating: %w", err)
	}

	return &review, nil
}
