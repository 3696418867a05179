package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	appErrors "github.com/noah-isme/academic-records-api/pkg/errors"
)

// DefaultViewIdleTTL discards views nobody touched for this long.
const DefaultViewIdleTTL = 30 * time.Minute

// View is a manager owned by the registry.
type View interface {
	Initialize(ctx context.Context) error
	Close()
}

// ViewObserver is told how many views of a kind are open.
type ViewObserver interface {
	SetOpenViews(kind string, count int)
}

type viewEntry[V View] struct {
	mu       sync.Mutex
	view     V
	lastUsed time.Time
	closed   bool
}

// ViewRegistry keeps one manager per open view keyed by a random id. Operations on a
// view are serialised by the view's own mutex.
type ViewRegistry[V View] struct {
	kind     string
	factory  func() V
	idleTTL  time.Duration
	now      func() time.Time
	observer ViewObserver
	logger   *zap.Logger

	mu    sync.Mutex
	views map[string]*viewEntry[V]
}

// NewViewRegistry constructs a registry building views with factory.
func NewViewRegistry[V View](kind string, factory func() V, idleTTL time.Duration, observer ViewObserver, logger *zap.Logger) *ViewRegistry[V] {
	if idleTTL <= 0 {
		idleTTL = DefaultViewIdleTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ViewRegistry[V]{
		kind:     kind,
		factory:  factory,
		idleTTL:  idleTTL,
		now:      time.Now,
		observer: observer,
		logger:   logger.With(zap.String("view_kind", kind)),
		views:    make(map[string]*viewEntry[V]),
	}
}

// Build returns an initialized view that is not registered. The caller must Close it.
func (r *ViewRegistry[V]) Build(ctx context.Context) (V, error) {
	view := r.factory()
	if err := view.Initialize(ctx); err != nil {
		view.Close()
		var zero V
		return zero, err
	}
	return view, nil
}

// Open builds, initializes and registers a view.
func (r *ViewRegistry[V]) Open(ctx context.Context) (string, error) {
	view, err := r.Build(ctx)
	if err != nil {
		return "", err
	}
	id := uuid.NewString()

	r.mu.Lock()
	r.views[id] = &viewEntry[V]{view: view, lastUsed: r.now()}
	count := len(r.views)
	r.mu.Unlock()

	r.report(count)
	r.logger.Debug("view opened", zap.String("view_id", id))
	return id, nil
}

// With runs fn against the view id while holding its lock.
func (r *ViewRegistry[V]) With(id string, fn func(view V) error) error {
	r.mu.Lock()
	entry, ok := r.views[id]
	r.mu.Unlock()
	if !ok {
		return r.notFound(id)
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	if entry.closed {
		return r.notFound(id)
	}
	entry.lastUsed = r.now()
	return fn(entry.view)
}

// Close discards the view id. It reports whether the view existed.
func (r *ViewRegistry[V]) Close(id string) bool {
	r.mu.Lock()
	entry, ok := r.views[id]
	if ok {
		delete(r.views, id)
	}
	count := len(r.views)
	r.mu.Unlock()
	if !ok {
		return false
	}

	r.shutdown(entry)
	r.report(count)
	r.logger.Debug("view closed", zap.String("view_id", id))
	return true
}

// Sweep discards views idle for longer than the TTL and returns how many were dropped.
func (r *ViewRegistry[V]) Sweep() int {
	cutoff := r.now().Add(-r.idleTTL)
	var stale []*viewEntry[V]

	r.mu.Lock()
	for id, entry := range r.views {
		entry.mu.Lock()
		idle := entry.lastUsed.Before(cutoff)
		entry.mu.Unlock()
		if idle {
			stale = append(stale, entry)
			delete(r.views, id)
		}
	}
	count := len(r.views)
	r.mu.Unlock()

	for _, entry := range stale {
		r.shutdown(entry)
	}
	if len(stale) > 0 {
		r.report(count)
		r.logger.Info("idle views discarded", zap.Int("count", len(stale)))
	}
	return len(stale)
}

// CloseAll discards every view.
func (r *ViewRegistry[V]) CloseAll() {
	r.mu.Lock()
	entries := make([]*viewEntry[V], 0, len(r.views))
	for id, entry := range r.views {
		entries = append(entries, entry)
		delete(r.views, id)
	}
	r.mu.Unlock()
	for _, entry := range entries {
		r.shutdown(entry)
	}
	r.report(0)
}

// Len returns the number of open views.
func (r *ViewRegistry[V]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.views)
}

func (r *ViewRegistry[V]) shutdown(entry *viewEntry[V]) {
	entry.mu.Lock()
	defer entry.mu.Unlock()
	if entry.closed {
		return
	}
	entry.closed = true
	entry.view.Close()
}

func (r *ViewRegistry[V]) report(count int) {
	if r.observer != nil {
		r.observer.SetOpenViews(r.kind, count)
	}
}

func (r *ViewRegistry[V]) notFound(id string) error {
	return appErrors.Clone(appErrors.ErrNotFound, "view "+id+" not found")
}
