package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"callintake_backend/internal/calls/transport"

	"github.com/redis/go-redis/v9"
)

// callRecordsKey holds the JSON-encoded records as a Redis list, oldest
// first.
const callRecordsKey = "calls:records"

// RedisStore keeps call records as a list of JSON documents. It serves
// deployments that run Redis for the task queue anyway and don't want a
// relational database.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a store backed by the given Redis client.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Name identifies the backend for logging.
func (s *RedisStore) Name() string { return "redis" }

// Save appends the record to the list.
func (s *RedisStore) Save(ctx context.Context, record transport.CallRecord) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal call record: %w", err)
	}

	if err := s.client.RPush(ctx, callRecordsKey, payload).Err(); err != nil {
		return fmt.Errorf("push call record: %w", err)
	}
	return nil
}

// List returns all records, newest first.
func (s *RedisStore) List(ctx context.Context) ([]transport.CallRecord, error) {
	entries, err := s.client.LRange(ctx, callRecordsKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("range call records: %w", err)
	}

	records := make([]transport.CallRecord, 0, len(entries))
	// The list is oldest first; walk it backwards.
	for i := len(entries) - 1; i >= 0; i-- {
		var record transport.CallRecord
		if err := json.Unmarshal([]byte(entries[i]), &record); err != nil {
			return nil, fmt.Errorf("unmarshal call record: %w", err)
		}
		records = append(records, record)
	}
	return records, nil
}

// Clear removes all records.
func (s *RedisStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, callRecordsKey).Err(); err != nil {
		return fmt.Errorf("clear call records: %w", err)
	}
	return nil
}

// Compile-time check that RedisStore implements Store.
var _ Store = (*RedisStore)(nil)
