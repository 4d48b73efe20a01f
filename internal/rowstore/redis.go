package rowstore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps each table as a Redis list of JSON-encoded rows.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore wraps a connected client.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client, prefix: "rowstore:"}
}

func (s *RedisStore) key(table string) string {
	return s.prefix + table
}

func (s *RedisStore) ReadAll(ctx context.Context, table string) ([][]string, error) {
	raw, err := s.client.LRange(ctx, s.key(table), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	rows := make([][]string, 0, len(raw))
	for _, item := range raw {
		var row []string
		if err := json.Unmarshal([]byte(item), &row); err != nil {
			return nil, fmt.Errorf("rowstore: decode row in table %s: %w", table, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (s *RedisStore) AppendRow(ctx context.Context, table string, row []string) error {
	encoded, err := json.Marshal(row)
	if err != nil {
		return err
	}
	return s.client.RPush(ctx, s.key(table), encoded).Err()
}

func (s *RedisStore) SetCell(ctx context.Context, table string, rowIndex, colIndex int, value string) error {
	raw, err := s.client.LIndex(ctx, s.key(table), int64(rowIndex)).Result()
	if err != nil {
		if err == redis.Nil {
			return fmt.Errorf("rowstore: row %d out of range in table %s", rowIndex, table)
		}
		return err
	}
	var row []string
	if err := json.Unmarshal([]byte(raw), &row); err != nil {
		return fmt.Errorf("rowstore: decode row in table %s: %w", table, err)
	}
	for len(row) <= colIndex {
		row = append(row, "")
	}
	row[colIndex] = value
	encoded, err := json.Marshal(row)
	if err != nil {
		return err
	}
	return s.client.LSet(ctx, s.key(table), int64(rowIndex), encoded).Err()
}

func (s *RedisStore) CreateColumn(ctx context.Context, table, name string) error {
	length, err := s.client.LLen(ctx, s.key(table)).Result()
	if err != nil {
		return err
	}
	if length == 0 {
		return s.AppendRow(ctx, table, []string{name})
	}
	raw, err := s.client.LIndex(ctx, s.key(table), 0).Result()
	if err != nil {
		return err
	}
	var row []string
	if err := json.Unmarshal([]byte(raw), &row); err != nil {
		return fmt.Errorf("rowstore: decode header in table %s: %w", table, err)
	}
	row = append(row, name)
	encoded, err := json.Marshal(row)
	if err != nil {
		return err
	}
	return s.client.LSet(ctx, s.key(table), 0, encoded).Err()
}
