package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/airbooking-desk/config"
	"github.com/Domenick1991/airbooking-desk/internal/domain"
	"github.com/redis/go-redis/v9"
)

// RedisCache caches backend reference data and stores booking sessions and
// their submit locks.
type RedisCache struct {
	client       *redis.Client
	referenceTTL time.Duration
}

func NewRedisCache(cfg config.RedisConfig, referenceTTL time.Duration) *RedisCache {
	return NewRedisCacheWithClient(
		redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		referenceTTL,
	)
}

func NewRedisCacheWithClient(client *redis.Client, referenceTTL time.Duration) *RedisCache {
	return &RedisCache{client: client, referenceTTL: referenceTTL}
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

func (c *RedisCache) GetCountries(ctx context.Context) ([]domain.Country, error) {
	var countries []domain.Country
	ok, err := c.getJSON(ctx, countriesKey(), &countries)
	if err != nil || !ok {
		return nil, err
	}
	return countries, nil
}

func (c *RedisCache) SetCountries(ctx context.Context, countries []domain.Country) error {
	return c.setJSON(ctx, countriesKey(), countries, c.referenceTTL)
}

func (c *RedisCache) GetDollarRate(ctx context.Context) (*domain.DollarRate, error) {
	var rate domain.DollarRate
	ok, err := c.getJSON(ctx, dollarKey(), &rate)
	if err != nil || !ok {
		return nil, err
	}
	return &rate, nil
}

func (c *RedisCache) SetDollarRate(ctx context.Context, rate domain.DollarRate) error {
	return c.setJSON(ctx, dollarKey(), rate, c.referenceTTL)
}

func (c *RedisCache) GetDestinations(ctx context.Context) ([]domain.Destination, error) {
	var destinations []domain.Destination
	ok, err := c.getJSON(ctx, destinationsKey(), &destinations)
	if err != nil || !ok {
		return nil, err
	}
	return destinations, nil
}

func (c *RedisCache) SetDestinations(ctx context.Context, destinations []domain.Destination) error {
	return c.setJSON(ctx, destinationsKey(), destinations, c.referenceTTL)
}

func (c *RedisCache) GetSession(ctx context.Context, id string) (*domain.BookingSession, error) {
	var session domain.BookingSession
	ok, err := c.getJSON(ctx, sessionKey(id), &session)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &session, nil
}

func (c *RedisCache) SaveSession(ctx context.Context, session *domain.BookingSession, ttl time.Duration) error {
	return c.setJSON(ctx, sessionKey(session.ID), session, ttl)
}

func (c *RedisCache) AcquireSubmitLock(ctx context.Context, sessionID string, ttl time.Duration) (bool, error) {
	return c.client.SetNX(ctx, submitLockKey(sessionID), "locked", ttl).Result()
}

func (c *RedisCache) ReleaseSubmitLock(ctx context.Context, sessionID string) error {
	return c.client.Del(ctx, submitLockKey(sessionID)).Err()
}

// MarkPaymentReturned records a payment status for a reservation and
// reports whether it was seen for the first time.
func (c *RedisCache) MarkPaymentReturned(ctx context.Context, reservationIDTemp, status string, ttl time.Duration) (bool, error) {
	return c.client.SetNX(ctx, paymentKey(reservationIDTemp, status), "notified", ttl).Result()
}

func (c *RedisCache) ClearPaymentReturned(ctx context.Context, reservationIDTemp, status string) error {
	return c.client.Del(ctx, paymentKey(reservationIDTemp, status)).Err()
}

func (c *RedisCache) getJSON(ctx context.Context, key string, out any) (bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func (c *RedisCache) setJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, payload, ttl).Err()
}

func countriesKey() string {
	return "cache:reference:countries"
}

func dollarKey() string {
	return "cache:reference:dollar"
}

func destinationsKey() string {
	return "cache:reference:destinations"
}

func sessionKey(id string) string {
	return fmt.Sprintf("booking:session:%s", id)
}

func submitLockKey(id string) string {
	return fmt.Sprintf("lock:booking:%s:submit", id)
}

func paymentKey(reservationIDTemp, status string) string {
	return fmt.Sprintf("payment:returned:%s:%s", reservationIDTemp, status)
}
