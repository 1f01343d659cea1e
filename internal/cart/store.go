package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"ms-storefront/internal/models"

	"github.com/go-redis/redis/v8"
)

// Store keeps one JSON-encoded item list per session in Redis. Carts
// expire after a TTL so abandoned sessions clean themselves up.
type Store struct {
	Client *redis.Client
}

func NewStore(client *redis.Client) *Store {
	return &Store{Client: client}
}

func cartKey(sessionID string) string {
	return "cart:" + sessionID
}

// getCartTTL returns the cart expiry from the environment or the default.
func (s *Store) getCartTTL() time.Duration {
	defaultTTL := 72 * time.Hour

	ttlStr := os.Getenv("CART_TTL_HOURS")
	if ttlStr == "" {
		return defaultTTL
	}

	ttlHours, err := strconv.Atoi(ttlStr)
	if err != nil {
		return defaultTTL
	}

	return time.Duration(ttlHours) * time.Hour
}

// GetItems loads a session's cart items. A missing key is an empty cart,
// not an error.
func (s *Store) GetItems(sessionID string) ([]models.CartItem, error) {
	val, err := s.Client.Get(context.Background(), cartKey(sessionID)).Result()
	if err == redis.Nil {
		return []models.CartItem{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get error: %w", err)
	}

	var items []models.CartItem
	if err := json.Unmarshal([]byte(val), &items); err != nil {
		return nil, fmt.Errorf("failed to decode cart for session %s: %w", sessionID, err)
	}
	return items, nil
}

func (s *Store) SaveItems(sessionID string, items []models.CartItem) error {
	data, err := json.Marshal(items)
	if err != nil {
		return err
	}
	return s.Client.Set(context.Background(), cartKey(sessionID), data, s.getCartTTL()).Err()
}

func (s *Store) Clear(sessionID string) error {
	return s.Client.Del(context.Background(), cartKey(sessionID)).Err()
}
