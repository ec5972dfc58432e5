// Package cache кэширует ответы бэкенда в Redis с группировкой по тегам.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/mmeshcher/parcel-portal/internal/metrics"
)

// Теги кэша, сбрасываемые после изменений соответствующих ресурсов.
const (
	TagOrders       = "orders"
	TagDeliveries   = "deliveries"
	TagShipments    = "shipments"
	TagGoods        = "goods"
	TagRecipients   = "recipients"
	TagMarketplaces = "marketplaces"
	TagAddresses    = "addresses"
	TagContacts     = "contacts"
	TagCountries    = "countries"
	TagCurrencies   = "currencies"
)

const keyTemplate = "portal:cache:%s:%s"

// TTL задаёт время жизни записей по тегу; справочники живут дольше списков.
var TTL = map[string]time.Duration{
	TagCountries:    24 * time.Hour,
	TagCurrencies:   24 * time.Hour,
	TagMarketplaces: 10 * time.Minute,
}

// DefaultTTL применяется к тегам без собственного значения.
const DefaultTTL = 30 * time.Second

// Cache описывает кэш ответов с инвалидацией по тегу.
type Cache interface {
	Get(ctx context.Context, tag, key string) ([]byte, bool)
	Set(ctx context.Context, tag, key string, value []byte)
	InvalidateTag(ctx context.Context, tag string) error
}

// RedisCache хранит записи под ключами portal:cache:{tag}:{key}.
type RedisCache struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisCache подключается к Redis и проверяет соединение.
func NewRedisCache(ctx context.Context, addr, password string, db int, logger *zap.Logger) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return &RedisCache{client: client, logger: logger}, nil
}

// Ping проверяет соединение с Redis.
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close закрывает соединение с Redis.
func (c *RedisCache) Close() error {
	return c.client.Close()
}

func (c *RedisCache) Get(ctx context.Context, tag, key string) ([]byte, bool) {
	data, err := c.client.Get(ctx, fmt.Sprintf(keyTemplate, tag, key)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("cache get error", zap.Error(err), zap.String("tag", tag))
		}
		metrics.CacheMisses.WithLabelValues(tag).Inc()
		return nil, false
	}

	metrics.CacheHits.WithLabelValues(tag).Inc()
	return data, true
}

func (c *RedisCache) Set(ctx context.Context, tag, key string, value []byte) {
	ttl, ok := TTL[tag]
	if !ok {
		ttl = DefaultTTL
	}

	if err := c.client.Set(ctx, fmt.Sprintf(keyTemplate, tag, key), value, ttl).Err(); err != nil {
		c.logger.Warn("cache set error", zap.Error(err), zap.String("tag", tag))
	}
}

// InvalidateTag удаляет все записи тега.
func (c *RedisCache) InvalidateTag(ctx context.Context, tag string) error {
	iter := c.client.Scan(ctx, 0, fmt.Sprintf(keyTemplate, tag, "*"), 100).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("delete %s: %w", iter.Val(), err)
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("scan tag %s: %w", tag, err)
	}
	return nil
}

// Nop ничего не кэширует; используется, когда Redis не настроен.
type Nop struct{}

func (Nop) Get(context.Context, string, string) ([]byte, bool) { return nil, false }

func (Nop) Set(context.Context, string, string, []byte) {}

func (Nop) InvalidateTag(context.Context, string) error { return nil }
