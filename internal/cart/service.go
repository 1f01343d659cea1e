package cart

import (
	"fmt"

	"ms-storefront/internal/models"
)

type ItemStore interface {
	GetItems(sessionID string) ([]models.CartItem, error)
	SaveItems(sessionID string, items []models.CartItem) error
	Clear(sessionID string) error
}

type ProductLookup interface {
	GetProductByID(id string) (*models.Product, error)
}

type Service struct {
	Store    ItemStore
	Products ProductLookup
}

func NewService(store ItemStore, products ProductLookup) *Service {
	return &Service{Store: store, Products: products}
}

func itemID(productID, size, color string) string {
	return fmt.Sprintf("%s-%s-%s", productID, size, color)
}

// AddItem puts a product line into the session cart. Adding the same
// product+size+color again merges into the existing line. Price and name
// always come from the catalog, never from the client.
func (s *Service) AddItem(sessionID string, req models.AddCartItemRequest) (*models.Cart, error) {
	if req.Quantity <= 0 {
		return nil, fmt.Errorf("quantity must be positive, got %d", req.Quantity)
	}

	product, err := s.Products.GetProductByID(req.ProductID)
	if err != nil {
		return nil, fmt.Errorf("product %s not found: %w", req.ProductID, err)
	}

	items, err := s.Store.GetItems(sessionID)
	if err != nil {
		return nil, err
	}

	id := itemID(req.ProductID, req.Size, req.Color)
	merged := false
	for i := range items {
		if items[i].ID == id {
			items[i].Quantity += req.Quantity
			merged = true
			break
		}
	}

	if !merged {
		image := ""
		if len(product.Images) > 0 {
			image = product.Images[0]
		}
		items = append(items, models.CartItem{
			ID:        id,
			ProductID: product.ProductID,
			Name:      product.Name,
			Brand:     product.Brand,
			Price:     product.Price,
			Image:     image,
			Size:      req.Size,
			Color:     req.Color,
			Quantity:  req.Quantity,
		})
	}

	if err := s.Store.SaveItems(sessionID, items); err != nil {
		return nil, err
	}

	return buildCart(sessionID, items), nil
}

// UpdateQuantity sets a line's quantity; zero or less removes the line.
func (s *Service) UpdateQuantity(sessionID, id string, quantity int) (*models.Cart, error) {
	items, err := s.Store.GetItems(sessionID)
	if err != nil {
		return nil, err
	}

	found := false
	updated := items[:0]
	for _, item := range items {
		if item.ID == id {
			found = true
			if quantity <= 0 {
				continue
			}
			item.Quantity = quantity
		}
		updated = append(updated, item)
	}

	if !found {
		return nil, fmt.Errorf("cart item %s not found", id)
	}

	if err := s.Store.SaveItems(sessionID, updated); err != nil {
		return nil, err
	}

	return buildCart(sessionID, updated), nil
}

func (s *Service) RemoveItem(sessionID, id string) (*models.Cart, error) {
	items, err := s.Store.GetItems(sessionID)
	if err != nil {
		return nil, err
	}

	updated := items[:0]
	for _, item := range items {
		if item.ID != id {
			updated = append(updated, item)
		}
	}

	if err := s.Store.SaveItems(sessionID, updated); err != nil {
		return nil, err
	}

	return buildCart(sessionID, updated), nil
}

func (s *Service) GetCart(sessionID string) (*models.Cart, error) {
	items, err := s.Store.GetItems(sessionID)
	if err != nil {
		return nil, err
	}
	return buildCart(sessionID, items), nil
}

func (s *Service) ClearCart(sessionID string) error {
	return s.Store.Clear(sessionID)
}

func buildCart(sessionID string, items []models.CartItem) *models.Cart {
	cart := &models.Cart{
		SessionID: sessionID,
		Items:     items,
	}
	for _, item := range items {
		cart.Total += item.Price * float64(item.Quantity)
		cart.Count += item.Quantity
	}
	return cart
}
