package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// GetJSON lê e desserializa a chave em dst. Devolve false em cache miss.
func GetJSON(ctx context.Context, c Client, key string, dst interface{}) (bool, error) {
	raw, err := c.Get(ctx, key)
	if errors.Is(err, ErrCacheMiss) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return false, err
	}
	return true, nil
}

// SetJSON serializa value e grava com expiração.
func SetJSON(ctx context.Context, c Client, key string, value interface{}, expiration time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.Set(ctx, key, raw, expiration)
}
