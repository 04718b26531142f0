package redis

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"StockVoice/internal/entity"

	jsoniter "github.com/json-iterator/go"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const (
	pendingKeyPrefix = "assistant:pending:"
	historyKey       = "assistant:history"
	historyCap       = 100
)

// ErrNotFound is returned when a pending command is missing or expired.
var ErrNotFound = errors.New("redis: key not found")

type IRedis interface {
	// SetPendingCommand stores a command awaiting confirmation on the
	// one-shot HTTP path; expiration mirrors the confirmation window.
	SetPendingCommand(ctx context.Context, cmd entity.ParsedCommand, expiration time.Duration) error
	GetPendingCommand(ctx context.Context, commandID string) (entity.ParsedCommand, error)
	DeletePendingCommand(ctx context.Context, commandID string) error

	PushHistory(ctx context.Context, record entity.CommandRecord) error
	GetHistory(ctx context.Context, limit int) ([]entity.CommandRecord, error)
}

type redisClient struct {
	client *redis.Client
}

func New() IRedis {
	db, _ := strconv.Atoi(os.Getenv("REDIS_DB"))
	redisAddr := os.Getenv("REDIS_ADDRESS")
	redisPassword := os.Getenv("REDIS_PASSWORD")

	logrus.Info(fmt.Sprintf("Connecting to Redis at %s...", redisAddr))

	client := redis.NewClient(&redis.Options{
		Addr:     redisAddr,
		Password: redisPassword,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		logrus.Error(fmt.Sprintf("Failed to connect to Redis: %v", err))
	} else {
		logrus.Info("Successfully connected to Redis")
	}

	return &redisClient{client: client}
}

func (r *redisClient) SetPendingCommand(ctx context.Context, cmd entity.ParsedCommand, expiration time.Duration) error {
	payload, err := jsoniter.Marshal(cmd)
	if err != nil {
		return err
	}

	if err := r.client.Set(ctx, pendingKeyPrefix+cmd.ID, payload, expiration).Err(); err != nil {
		logrus.Error(fmt.Sprintf("Error storing pending command %s: %v", cmd.ID, err))
		return err
	}
	return nil
}

func (r *redisClient) GetPendingCommand(ctx context.Context, commandID string) (entity.ParsedCommand, error) {
	var cmd entity.ParsedCommand

	val, err := r.client.Get(ctx, pendingKeyPrefix+commandID).Result()
	if errors.Is(err, redis.Nil) {
		return cmd, ErrNotFound
	} else if err != nil {
		logrus.Error(fmt.Sprintf("Error loading pending command %s: %v", commandID, err))
		return cmd, err
	}

	if err := jsoniter.UnmarshalFromString(val, &cmd); err != nil {
		return cmd, err
	}
	return cmd, nil
}

func (r *redisClient) DeletePendingCommand(ctx context.Context, commandID string) error {
	return r.client.Del(ctx, pendingKeyPrefix+commandID).Err()
}

func (r *redisClient) PushHistory(ctx context.Context, record entity.CommandRecord) error {
	payload, err := jsoniter.Marshal(record)
	if err != nil {
		return err
	}

	pipe := r.client.TxPipeline()
	pipe.LPush(ctx, historyKey, payload)
	pipe.LTrim(ctx, historyKey, 0, historyCap-1)
	if _, err := pipe.Exec(ctx); err != nil {
		logrus.Error(fmt.Sprintf("Error recording command history: %v", err))
		return err
	}
	return nil
}

func (r *redisClient) GetHistory(ctx context.Context, limit int) ([]entity.CommandRecord, error) {
	if limit <= 0 || limit > historyCap {
		limit = historyCap
	}

	vals, err := r.client.LRange(ctx, historyKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}

	records := make([]entity.CommandRecord, 0, len(vals))
	for _, val := range vals {
		var record entity.CommandRecord
		if err := jsoniter.UnmarshalFromString(val, &record); err != nil {
			continue
		}
		records = append(records, record)
	}
	return records, nil
}
