package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/noah-isme/academic-records-api/pkg/storage"
)

// FileStore keeps each collection in its own <key>.json file.
type FileStore struct {
	files *storage.LocalStorage
}

// NewFileStore constructs a file-backed store over local storage.
func NewFileStore(files *storage.LocalStorage) *FileStore {
	return &FileStore{files: files}
}

// Load implements CollectionStore.
func (s *FileStore) Load(ctx context.Context, key string) ([]byte, error) {
	raw, err := s.files.Read(filename(key))
	if err != nil {
		if errors.Is(err, storage.ErrNotExist) {
			return nil, missing(key)
		}
		return nil, fmt.Errorf("read collection %s: %w", key, err)
	}
	return raw, nil
}

// Save implements CollectionStore.
func (s *FileStore) Save(ctx context.Context, key string, payload []byte) error {
	if _, err := s.files.Save(filename(key), payload); err != nil {
		return fmt.Errorf("write collection %s: %w", key, err)
	}
	return nil
}

func filename(key string) string {
	return key + ".json"
}
