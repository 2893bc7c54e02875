package kv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Keys under which the assistant persists its state.
const (
	KeyQuestionCache       = "questionCache"
	KeyLearningData        = "learningData"
	KeyCurrentConversation = "currentConversation"
	KeyConversationHistory = "conversationHistory"
	KeyCurrentJobContext   = "currentJobContext"
	KeyApplicationHistory  = "applicationHistory"
	KeyActivityFeed        = "activityFeed"
	KeyUserProfile         = "userProfile"
	KeyUserPreferences     = "userPreferences"
	KeyStats               = "stats"
)

// ErrNotFound is returned by Get when the key holds no value.
var ErrNotFound = errors.New("key not found")

// Store is a durable key-value store. Values are opaque JSON documents and every
// Set replaces the whole value (last write wins).
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// GetJSON decodes the value stored under key into dest. It reports false when the key is absent
// or holds JSON null.
func GetJSON(ctx context.Context, store Store, key string, dest any) (bool, error) {
	data, err := store.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read %s: %w", key, err)
	}

	if len(data) == 0 || strings.TrimSpace(string(data)) == "null" {
		return false, nil
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}

	return true, nil
}

// SetJSON encodes value and stores it under key.
func SetJSON(ctx context.Context, store Store, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}

	if err := store.Set(ctx, key, data); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}

	return nil
}

// Config selects and configures a backend.
type Config struct {
	Driver   string `mapstructure:"driver"`
	Path     string `mapstructure:"path"`
	RedisURL string `mapstructure:"redis-url"`
	Prefix   string `mapstructure:"prefix"`
}

const (
	DriverSQLite = "sqlite"
	DriverRedis  = "redis"
	DriverMemory = "memory"
)

// Open builds the store described by cfg.
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case "", DriverSQLite:
		return NewSQLite(cfg.Path)
	case DriverRedis:
		return NewRedis(ctx, cfg.RedisURL, cfg.Prefix)
	case DriverMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
