package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/eslsoft/neurostudy/internal/entity"
	"github.com/eslsoft/neurostudy/internal/repository"
)

// Record keys inside the key-value store.
const (
	statsKeyPrefix   = "stats:"
	accountKeyPrefix = "users:"
	sessionKey       = "session-progress"
	currentUserKey   = "current-user"
	documentKey      = "document:current"
)

func statsKey(identity string) string   { return statsKeyPrefix + identity }
func accountKey(identity string) string { return accountKeyPrefix + identity }

// getJSON decodes the value stored at key into dst. Missing keys return
// entity.ErrRecordNotFound and undecodable values entity.ErrCorruptRecord.
func getJSON(ctx context.Context, kv repository.KeyValueStore, key string, dst any) error {
	raw, found, err := kv.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("get %s: %w", key, err)
	}
	if !found || strings.TrimSpace(raw) == "" {
		return entity.ErrRecordNotFound
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return fmt.Errorf("%w: %s: %v", entity.ErrCorruptRecord, key, err)
	}
	return nil
}

func setJSON(ctx context.Context, kv repository.KeyValueStore, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := kv.Set(ctx, key, string(b)); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}
