package prefs

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	orderQtyHash = "orderprep:order_qty"
	themeKey     = "orderprep:theme"
)

// RedisConfig mirrors the cache settings block of the app config.
type RedisConfig struct {
	URL      string
	Host     string
	Port     string
	Password string
	DB       int
}

// RedisStore persists preferences in Redis: one hash for order quantities,
// one string for the theme.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(cfg RedisConfig) (*RedisStore, error) {
	opts, err := buildRedisOptions(cfg)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &RedisStore{client: client}, nil
}

func buildRedisOptions(cfg RedisConfig) (*redis.Options, error) {
	if cfg.URL != "" {
		opt, err := redis.ParseURL(cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("invalid redis url: %w", err)
		}
		return opt, nil
	}

	host := cfg.Host
	if host == "" {
		host = "127.0.0.1"
	}

	port := cfg.Port
	if port == "" {
		port = "6379"
	}

	return &redis.Options{
		Addr:     net.JoinHostPort(host, port),
		Password: cfg.Password,
		DB:       cfg.DB,
	}, nil
}

func (r *RedisStore) OrderQuantities(ctx context.Context) (map[string]string, error) {
	vals, err := r.client.HGetAll(ctx, orderQtyHash).Result()
	if err != nil {
		return nil, fmt.Errorf("redis hgetall failed: %w", err)
	}
	return vals, nil
}

func (r *RedisStore) SetOrderQty(ctx context.Context, key string, qty float64) error {
	if qty <= 0 {
		return r.client.HDel(ctx, orderQtyHash, key).Err()
	}
	return r.client.HSet(ctx, orderQtyHash, key, formatQty(qty)).Err()
}

func (r *RedisStore) Theme(ctx context.Context) (string, error) {
	v, err := r.client.Get(ctx, themeKey).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("redis get failed: %w", err)
	}
	return v, nil
}

func (r *RedisStore) SetTheme(ctx context.Context, theme string) error {
	return r.client.Set(ctx, themeKey, theme, 0).Err()
}

func formatQty(qty float64) string {
	return strconv.FormatFloat(qty, 'f', -1, 64)
}

var _ Store = (*RedisStore)(nil)
