package cart_test

import (
	"context"
	"testing"
	"time"

	"ms-storefront/internal/cart"
	"ms-storefront/internal/models"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestCartStoreIntegration exercises the store against a real Redis
// container.
func TestCartStoreIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping Redis integration test in short mode")
	}

	ctx := context.Background()
	redisContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:latest",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections"),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("Failed to start Redis container: %v", err)
	}
	defer redisContainer.Terminate(ctx)

	host, err := redisContainer.Host(ctx)
	require.NoError(t, err)

	port, err := redisContainer.MappedPort(ctx, "6379")
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{
		Addr: host + ":" + port.Port(),
	})
	defer client.Close()

	store := cart.NewStore(client)

	// Missing key reads as an empty cart
	items, err := store.GetItems("session-integration")
	require.NoError(t, err)
	assert.Empty(t, items)

	// Save and read back
	saved := []models.CartItem{
		{ID: "prod-aj1-10-red", ProductID: "prod-aj1", Name: "Air Jordan 1", Price: 420.0, Size: "10", Color: "red", Quantity: 1},
		{ID: "prod-yzy-8.5-white", ProductID: "prod-yzy", Name: "Yeezy 350", Price: 260.0, Size: "8.5", Color: "white", Quantity: 2},
	}
	err = store.SaveItems("session-integration", saved)
	require.NoError(t, err)

	items, err = store.GetItems("session-integration")
	require.NoError(t, err)
	assert.Equal(t, saved, items)

	// Cart keys expire on their own
	ttl := client.TTL(ctx, "cart:session-integration").Val()
	assert.Greater(t, ttl, time.Duration(0), "Cart keys must carry a TTL")

	// Clear drops the key
	err = store.Clear("session-integration")
	require.NoError(t, err)

	items, err = store.GetItems("session-integration")
	require.NoError(t, err)
	assert.Empty(t, items)
}
