package repository

import (
	"context"
	"encoding/json"
	"fmt"

	appErrors "github.com/noah-isme/academic-records-api/pkg/errors"
)

// CollectionStore persists one JSON-encoded record array per named key.
//
// Load returns appErrors.ErrCollectionMissing when nothing was ever saved under key,
// so callers can tell an absent collection apart from an empty one.
type CollectionStore interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, payload []byte) error
}

// LoadCollection decodes the collection stored under key. The boolean reports whether
// the key was present; an absent key yields an empty slice and no error.
func LoadCollection[T any](ctx context.Context, store CollectionStore, key string) ([]T, bool, error) {
	raw, err := store.Load(ctx, key)
	if err != nil {
		if appErrors.Is(err, appErrors.ErrCollectionMissing) {
			return []T{}, false, nil
		}
		return nil, false, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, fmt.Sprintf("failed to load %s", key))
	}
	items := []T{}
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, true, appErrors.Wrap(err, appErrors.ErrStorageCorrupt.Code, appErrors.ErrStorageCorrupt.Status, fmt.Sprintf("persisted %s is not a valid record array", key))
	}
	if items == nil {
		// A persisted JSON null decodes to nil.
		items = []T{}
	}
	return items, true, nil
}

// SaveCollection encodes items and overwrites the collection under key.
func SaveCollection[T any](ctx context.Context, store CollectionStore, key string, items []T) error {
	if items == nil {
		items = []T{}
	}
	payload, err := json.Marshal(items)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, fmt.Sprintf("failed to encode %s", key))
	}
	if err := store.Save(ctx, key, payload); err != nil {
		return appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, fmt.Sprintf("failed to save %s", key))
	}
	return nil
}

func missing(key string) error {
	return appErrors.Clone(appErrors.ErrCollectionMissing, fmt.Sprintf("collection %s not persisted", key))
}

// Ping checks that the store answers a load. An absent collection counts as healthy.
func Ping(ctx context.Context, store CollectionStore, key string) error {
	if _, err := store.Load(ctx, key); err != nil && !appErrors.Is(err, appErrors.ErrCollectionMissing) {
		return appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "collection store unavailable")
	}
	return nil
}
