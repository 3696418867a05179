package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/academic-records-api/pkg/errors"
)

type stubView struct {
	initErr error
	closed  bool
	calls   int
}

func (v *stubView) Initialize(ctx context.Context) error { return v.initErr }

func (v *stubView) Close() { v.closed = true }

type recordingViews struct {
	mu     sync.Mutex
	counts map[string]int
}

func (r *recordingViews) SetOpenViews(kind string, count int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.counts == nil {
		r.counts = map[string]int{}
	}
	r.counts[kind] = count
}

func TestViewRegistryLifecycle(t *testing.T) {
	observer := &recordingViews{}
	var built []*stubView
	reg := NewViewRegistry("stub", func() *stubView {
		v := &stubView{}
		built = append(built, v)
		return v
	}, time.Minute, observer, nil)

	id, err := reg.Open(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.Equal(t, 1, reg.Len())
	assert.Equal(t, 1, observer.counts["stub"])

	require.NoError(t, reg.With(id, func(v *stubView) error {
		v.calls++
		return nil
	}))
	assert.Equal(t, 1, built[0].calls)

	assert.True(t, reg.Close(id))
	assert.True(t, built[0].closed)
	assert.Equal(t, 0, observer.counts["stub"])
	assert.False(t, reg.Close(id))

	err = reg.With(id, func(v *stubView) error { return nil })
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestViewRegistryOpenFailureClosesView(t *testing.T) {
	boom := errors.New("boom")
	var built *stubView
	reg := NewViewRegistry("stub", func() *stubView {
		built = &stubView{initErr: boom}
		return built
	}, time.Minute, nil, nil)

	_, err := reg.Open(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.True(t, built.closed)
	assert.Zero(t, reg.Len())
}

func TestViewRegistrySweepDropsIdleViews(t *testing.T) {
	now := fixedNow
	reg := NewViewRegistry("stub", func() *stubView { return &stubView{} }, time.Minute, nil, nil)
	reg.now = func() time.Time { return now }

	stale, err := reg.Open(context.Background())
	require.NoError(t, err)
	now = now.Add(45 * time.Second)
	fresh, err := reg.Open(context.Background())
	require.NoError(t, err)

	now = now.Add(30 * time.Second)
	assert.Equal(t, 1, reg.Sweep())

	assert.True(t, appErrors.Is(reg.With(stale, func(*stubView) error { return nil }), appErrors.ErrNotFound))
	assert.NoError(t, reg.With(fresh, func(*stubView) error { return nil }))
}

func TestViewRegistryBuildDoesNotRegister(t *testing.T) {
	reg := NewViewRegistry("stub", func() *stubView { return &stubView{} }, time.Minute, nil, nil)

	view, err := reg.Build(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, view)
	assert.Zero(t, reg.Len())
}

func TestViewsIsolateManagers(t *testing.T) {
	env := newTestEnv(t, true)
	views := NewViews(env.deps, time.Minute, nil, nil)
	t.Cleanup(views.CloseAll)

	first, err := views.Results.Open(context.Background())
	require.NoError(t, err)
	second, err := views.Results.Open(context.Background())
	require.NoError(t, err)

	require.NoError(t, views.Results.With(first, func(m *ResultManager) error {
		m.OpenCreateModal()
		return nil
	}))
	require.NoError(t, views.Results.With(second, func(m *ResultManager) error {
		view, err := m.Render(context.Background())
		require.NoError(t, err)
		assert.False(t, view.Modal.Open)
		return nil
	}))

	views.CloseAll()
	assert.Zero(t, views.Results.Len())
}

func TestViewsRunStopsWithContext(t *testing.T) {
	env := newTestEnv(t, true)
	views := NewViews(env.deps, time.Minute, nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	go func() { done <- views.Run(ctx, time.Second) }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("sweeper did not stop")
	}
}
