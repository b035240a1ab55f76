package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/farmcart/checkout-service/internal/config"
	"github.com/farmcart/checkout-service/internal/errors"
	"github.com/farmcart/checkout-service/internal/models"
	"github.com/redis/go-redis/v9"
)

// SessionRepository is the persisted buyer session store: auth token and
// buyer profile, keyed by buyer id. The checkout core reads it; the only
// mutation it performs is the clear-on-logout.
type SessionRepository interface {
	Save(ctx context.Context, session *models.UserSession) error
	Get(ctx context.Context, buyerID string) (*models.UserSession, error)
	Clear(ctx context.Context, buyerID string) error
}

type redisSessionRepository struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSessionRepository(client *redis.Client, ttl time.Duration) SessionRepository {
	return &redisSessionRepository{client: client, ttl: ttl}
}

func NewRedisClient(cfg *config.Config) (*redis.Client, error) {

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisConnect.Host,
		Username: cfg.RedisConnect.Username,
		Password: cfg.RedisConnect.Password,
		DB:       cfg.RedisConnect.DB,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return client, nil
}

func sessionKey(buyerID string) string {
	return "session:" + buyerID
}

func (r *redisSessionRepository) Save(ctx context.Context, session *models.UserSession) error {

	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session for buyer %s: %w", session.BuyerID, err)
	}

	if err := r.client.Set(ctx, sessionKey(session.BuyerID), data, r.ttl).Err(); err != nil {
		return errors.DatabaseError("Failed to store session").WithError(err)
	}

	return nil
}

func (r *redisSessionRepository) Get(ctx context.Context, buyerID string) (*models.UserSession, error) {

	data, err := r.client.Get(ctx, sessionKey(buyerID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, errors.NotFoundError("No active session for buyer")
		}

		return nil, errors.DatabaseError("Failed to read session").WithError(err)
	}

	var session models.UserSession
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, errors.InternalError("Corrupt session payload").WithError(err)
	}

	return &session, nil
}

func (r *redisSessionRepository) Clear(ctx context.Context, buyerID string) error {

	if err := r.client.Del(ctx, sessionKey(buyerID)).Err(); err != nil {
		return errors.DatabaseError("Failed to clear session").WithError(err)
	}

	return nil
}
