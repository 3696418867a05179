package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/academic-records-api/pkg/config"
)

func TestOpenCollectionStoreFile(t *testing.T) {
	cfg := &config.Config{Store: config.StoreConfig{Driver: config.StoreDriverFile, FileDir: t.TempDir()}}
	store, closer, err := OpenCollectionStore(context.Background(), cfg, nil, zap.NewNop())
	require.NoError(t, err)
	defer closer() //nolint:errcheck

	require.NoError(t, store.Save(context.Background(), "results", []byte(`[]`)))
	raw, err := store.Load(context.Background(), "results")
	require.NoError(t, err)
	assert.Equal(t, "[]", string(raw))
}

func TestOpenCollectionStoreMemory(t *testing.T) {
	cfg := &config.Config{Store: config.StoreConfig{Driver: config.StoreDriverMemory}}
	store, closer, err := OpenCollectionStore(context.Background(), cfg, nil, nil)
	require.NoError(t, err)
	assert.NoError(t, closer())
	assert.IsType(t, &InstrumentedStore{}, store)
}

func TestOpenCollectionStoreUnknownDriver(t *testing.T) {
	cfg := &config.Config{Store: config.StoreConfig{Driver: "cassandra"}}
	_, _, err := OpenCollectionStore(context.Background(), cfg, nil, zap.NewNop())
	assert.Error(t, err)
}
