package repository

import (
	"context"
	"time"

	"go.uber.org/zap"

	appErrors "github.com/noah-isme/academic-records-api/pkg/errors"
)

// StoreObserver receives timing for every store operation.
type StoreObserver interface {
	ObserveStoreOperation(op, key string, failed bool, duration time.Duration)
}

// InstrumentedStore decorates a CollectionStore with metrics and debug logging.
type InstrumentedStore struct {
	inner    CollectionStore
	observer StoreObserver
	logger   *zap.Logger
}

// NewInstrumentedStore wraps inner. A nil observer or logger disables that concern.
func NewInstrumentedStore(inner CollectionStore, observer StoreObserver, logger *zap.Logger) *InstrumentedStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InstrumentedStore{inner: inner, observer: observer, logger: logger}
}

// Load implements CollectionStore.
func (s *InstrumentedStore) Load(ctx context.Context, key string) ([]byte, error) {
	start := time.Now()
	raw, err := s.inner.Load(ctx, key)
	// An absent collection is an expected outcome, not a failure.
	failed := err != nil && !appErrors.Is(err, appErrors.ErrCollectionMissing)
	s.record("load", key, failed, time.Since(start), len(raw), err)
	return raw, err
}

// Save implements CollectionStore.
func (s *InstrumentedStore) Save(ctx context.Context, key string, payload []byte) error {
	start := time.Now()
	err := s.inner.Save(ctx, key, payload)
	s.record("save", key, err != nil, time.Since(start), len(payload), err)
	return err
}

func (s *InstrumentedStore) record(op, key string, failed bool, duration time.Duration, size int, err error) {
	if s.observer != nil {
		s.observer.ObserveStoreOperation(op, key, failed, duration)
	}
	if failed {
		s.logger.Warn("collection store operation failed", zap.String("op", op), zap.String("key", key), zap.Error(err))
		return
	}
	s.logger.Debug("collection store operation", zap.String("op", op), zap.String("key", key), zap.Int("bytes", size), zap.Duration("duration", duration))
}
