package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/academic-records-api/internal/repository"
)

var fixedNow = time.Date(2024, 3, 20, 9, 0, 0, 0, time.UTC)

type fakeTimer struct {
	delay   time.Duration
	fn      func()
	stopped bool
}

func (t *fakeTimer) Stop() bool {
	was := !t.stopped
	t.stopped = true
	return was
}

func (t *fakeTimer) fire() {
	if !t.stopped {
		t.fn()
	}
}

type fakeScheduler struct {
	mu     sync.Mutex
	timers []*fakeTimer
}

func (s *fakeScheduler) schedule(d time.Duration, fn func()) Cancelable {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &fakeTimer{delay: d, fn: fn}
	s.timers = append(s.timers, t)
	return t
}

func (s *fakeScheduler) last() *fakeTimer {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.timers) == 0 {
		return nil
	}
	return s.timers[len(s.timers)-1]
}

// countingStore counts saves per collection.
type countingStore struct {
	*repository.MemoryStore
	mu       sync.Mutex
	saves    map[string]int
	failures map[string]error
}

func newCountingStore() *countingStore {
	return &countingStore{MemoryStore: repository.NewMemoryStore(), saves: map[string]int{}}
}

func (s *countingStore) Save(ctx context.Context, key string, payload []byte) error {
	s.mu.Lock()
	s.saves[key]++
	failure := s.failures[key]
	s.mu.Unlock()
	if failure != nil {
		return failure
	}
	return s.MemoryStore.Save(ctx, key, payload)
}

// failSaves makes every save of key return err; a nil err restores normal saves.
func (s *countingStore) failSaves(key string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failures == nil {
		s.failures = map[string]error{}
	}
	s.failures[key] = err
}

func (s *countingStore) savesOf(key string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves[key]
}

type recordingNotifications struct {
	mu     sync.Mutex
	counts map[string]int
}

func (r *recordingNotifications) RecordNotification(entity string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.counts == nil {
		r.counts = map[string]int{}
	}
	r.counts[entity]++
}

type testEnv struct {
	store     *countingStore
	scheduler *fakeScheduler
	deps      ManagerDeps
}

func newTestEnv(t *testing.T, seed bool) *testEnv {
	t.Helper()
	store := newCountingStore()
	scheduler := &fakeScheduler{}
	ids := NewIDGenerator(func() time.Time { return fixedNow })
	logger := zap.NewNop()
	return &testEnv{
		store:     store,
		scheduler: scheduler,
		deps: ManagerDeps{
			Store:          store,
			IDs:            ids,
			References:     NewReferenceResolver(store, ids, "", logger),
			Validator:      NewValidator(),
			Logger:         logger,
			Scheduler:      scheduler.schedule,
			SeedSampleData: seed,
		},
	}
}

func put[T any](t *testing.T, store repository.CollectionStore, key string, items []T) {
	t.Helper()
	require.NoError(t, repository.SaveCollection(context.Background(), store, key, items))
}

func get[T any](t *testing.T, store repository.CollectionStore, key string) []T {
	t.Helper()
	items, _, err := repository.LoadCollection[T](context.Background(), store, key)
	require.NoError(t, err)
	return items
}

func strPtr(s string) *string { return &s }

func intPtr(i int) *int { return &i }
