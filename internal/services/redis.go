package services

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/courease/courease-backend/internal/models"
	"github.com/redis/go-redis/v9"
)

var RedisClient *redis.Client

const (
	fieldsCacheKey = "fields:all"
	fieldsCacheTTL = 5 * time.Minute

	paymentUpdatesChannel = "payment:updates"
)

// InitRedis initializes the Redis client
func InitRedis() error {
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		redisURL = "redis://redis:6379" // Default Redis address for Docker
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return fmt.Errorf("failed to parse Redis URL: %v", err)
	}

	RedisClient = redis.NewClient(opt)

	// Test the connection
	ctx := context.Background()
	_, err = RedisClient.Ping(ctx).Result()
	if err != nil {
		return fmt.Errorf("failed to connect to Redis: %v", err)
	}

	return nil
}

// CacheFields stores the field catalog in Redis
func CacheFields(ctx context.Context, fields []models.Field) error {
	if RedisClient == nil {
		return nil
	}

	data, err := json.Marshal(fields)
	if err != nil {
		return err
	}

	return RedisClient.Set(ctx, fieldsCacheKey, data, fieldsCacheTTL).Err()
}

// CachedFields retrieves the field catalog from Redis, nil on a cache miss
func CachedFields(ctx context.Context) ([]models.Field, error) {
	if RedisClient == nil {
		return nil, nil
	}

	data, err := RedisClient.Get(ctx, fieldsCacheKey).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var fields []models.Field
	if err := json.Unmarshal([]byte(data), &fields); err != nil {
		return nil, err
	}

	return fields, nil
}

// InvalidateFieldCache drops the cached field catalog after an admin write
func InvalidateFieldCache(ctx context.Context) error {
	if RedisClient == nil {
		return nil
	}
	return RedisClient.Del(ctx, fieldsCacheKey).Err()
}

// PublishPaymentUpdate publishes a payment state change to Redis pub/sub
func PublishPaymentUpdate(ctx context.Context, bookingID uint, paymentID, status string) error {
	if RedisClient == nil {
		return nil
	}

	updateData := map[string]interface{}{
		"bookingId": bookingID,
		"paymentId": paymentID,
		"status":    status,
		"timestamp": time.Now().Unix(),
	}

	data, err := json.Marshal(updateData)
	if err != nil {
		return err
	}

	return RedisClient.Publish(ctx, paymentUpdatesChannel, data).Err()
}
