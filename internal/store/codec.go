package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// LoadJSON decodes the snapshot stored under key into a T. The boolean is
// false when the key is absent, in which case the caller substitutes its
// seed data.
func LoadJSON[T any](ctx context.Context, b Backend, key string) (T, bool, error) {
	var out T
	data, err := b.Load(ctx, key)
	if errors.Is(err, ErrAbsent) {
		return out, false, nil
	}
	if err != nil {
		return out, false, err
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, false, fmt.Errorf("decoding %s: %w", key, err)
	}
	return out, true, nil
}

// SaveJSON encodes v and writes it under key. Write failures come back as
// *SaveError.
func SaveJSON(ctx context.Context, b Backend, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}
	if err := b.Save(ctx, key, data); err != nil {
		var saveErr *SaveError
		if errors.As(err, &saveErr) {
			return err
		}
		return &SaveError{Key: key, Err: err}
	}
	return nil
}
