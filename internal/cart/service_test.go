package cart_test

import (
	"errors"
	"testing"

	"ms-storefront/internal/cart"
	"ms-storefront/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// fakeStore keeps carts in a map so service tests need no Redis.
type fakeStore struct {
	carts map[string][]models.CartItem
}

func newFakeStore() *fakeStore {
	return &fakeStore{carts: make(map[string][]models.CartItem)}
}

func (f *fakeStore) GetItems(sessionID string) ([]models.CartItem, error) {
	items, ok := f.carts[sessionID]
	if !ok {
		return []models.CartItem{}, nil
	}
	return items, nil
}

func (f *fakeStore) SaveItems(sessionID string, items []models.CartItem) error {
	f.carts[sessionID] = items
	return nil
}

func (f *fakeStore) Clear(sessionID string) error {
	delete(f.carts, sessionID)
	return nil
}

type MockProductLookup struct {
	mock.Mock
}

func (m *MockProductLookup) GetProductByID(id string) (*models.Product, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func newTestService() (*cart.Service, *fakeStore, *MockProductLookup) {
	store := newFakeStore()
	products := new(MockProductLookup)
	return cart.NewService(store, products), store, products
}

func TestAddItemUsesCatalogPrice(t *testing.T) {
	svc, _, products := newTestService()

	product := &models.Product{
		ProductID: "prod-aj1",
		Name:      "Air Jordan 1",
		Brand:     "Nike",
		Price:     420.0,
		Images:    models.StringList{"/img/aj1.jpg"},
	}
	products.On("GetProductByID", "prod-aj1").Return(product, nil)

	result, err := svc.AddItem("session1", models.AddCartItemRequest{
		ProductID: "prod-aj1",
		Size:      "10",
		Color:     "red",
		Quantity:  1,
	})

	assert.NoError(t, err)
	assert.Equal(t, 1, len(result.Items))
	// Price and name come from the catalog, whatever the client sent.
	assert.Equal(t, 420.0, result.Items[0].Price)
	assert.Equal(t, "Air Jordan 1", result.Items[0].Name)
	assert.Equal(t, "/img/aj1.jpg", result.Items[0].Image)
	assert.Equal(t, 420.0, result.Total)
	assert.Equal(t, 1, result.Count)
}

func TestAddItemMergesSameLine(t *testing.T) {
	svc, _, products := newTestService()

	product := &models.Product{ProductID: "prod-aj1", Name: "Air Jordan 1", Price: 420.0}
	products.On("GetProductByID", "prod-aj1").Return(product, nil)

	req := models.AddCartItemRequest{ProductID: "prod-aj1", Size: "10", Color: "red", Quantity: 1}
	_, err := svc.AddItem("session1", req)
	assert.NoError(t, err)

	result, err := svc.AddItem("session1", req)
	assert.NoError(t, err)

	assert.Equal(t, 1, len(result.Items))
	assert.Equal(t, 2, result.Items[0].Quantity)
	assert.Equal(t, 840.0, result.Total)

	// A different size is a separate line.
	result, err = svc.AddItem("session1", models.AddCartItemRequest{
		ProductID: "prod-aj1", Size: "9", Color: "red", Quantity: 1,
	})
	assert.NoError(t, err)
	assert.Equal(t, 2, len(result.Items))
	assert.Equal(t, 3, result.Count)
}

func TestAddItemRejectsBadInput(t *testing.T) {
	svc, _, products := newTestService()

	_, err := svc.AddItem("session1", models.AddCartItemRequest{ProductID: "prod-aj1", Quantity: 0})
	assert.Error(t, err)

	products.On("GetProductByID", "prod-ghost").Return(nil, errors.New("not found"))
	_, err = svc.AddItem("session1", models.AddCartItemRequest{ProductID: "prod-ghost", Quantity: 1})
	assert.Error(t, err)
}

func TestUpdateQuantity(t *testing.T) {
	svc, _, products := newTestService()

	product := &models.Product{ProductID: "prod-aj1", Price: 420.0}
	products.On("GetProductByID", "prod-aj1").Return(product, nil)

	added, err := svc.AddItem("session1", models.AddCartItemRequest{
		ProductID: "prod-aj1", Size: "10", Color: "red", Quantity: 1,
	})
	assert.NoError(t, err)
	id := added.Items[0].ID

	result, err := svc.UpdateQuantity("session1", id, 3)
	assert.NoError(t, err)
	assert.Equal(t, 3, result.Items[0].Quantity)

	// Zero removes the line
	result, err = svc.UpdateQuantity("session1", id, 0)
	assert.NoError(t, err)
	assert.Equal(t, 0, len(result.Items))

	// Unknown line is an error
	_, err = svc.UpdateQuantity("session1", "missing", 2)
	assert.Error(t, err)
}

func TestRemoveItemAndClear(t *testing.T) {
	svc, store, products := newTestService()

	product := &models.Product{ProductID: "prod-aj1", Price: 420.0}
	products.On("GetProductByID", "prod-aj1").Return(product, nil)

	added, err := svc.AddItem("session1", models.AddCartItemRequest{
		ProductID: "prod-aj1", Size: "10", Color: "red", Quantity: 2,
	})
	assert.NoError(t, err)

	result, err := svc.RemoveItem("session1", added.Items[0].ID)
	assert.NoError(t, err)
	assert.Equal(t, 0, len(result.Items))
	assert.Equal(t, 0.0, result.Total)

	_, err = svc.AddItem("session1", models.AddCartItemRequest{
		ProductID: "prod-aj1", Size: "10", Color: "red", Quantity: 1,
	})
	assert.NoError(t, err)

	assert.NoError(t, svc.ClearCart("session1"))
	_, ok := store.carts["session1"]
	assert.False(t, ok)

	// A fresh session reads as an empty cart
	fresh, err := svc.GetCart("session1")
	assert.NoError(t, err)
	assert.Equal(t, 0, len(fresh.Items))
	assert.Equal(t, 0, fresh.Count)
}
