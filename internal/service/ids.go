package service

import (
	"sync"
	"time"
)

// IDGenerator issues creation-timestamp ids in milliseconds. Ids are strictly
// increasing per generator and skip values the caller reports as taken.
type IDGenerator struct {
	mu   sync.Mutex
	now  func() time.Time
	last int64
}

// NewIDGenerator constructs a generator. A nil clock uses time.Now.
func NewIDGenerator(now func() time.Time) *IDGenerator {
	if now == nil {
		now = time.Now
	}
	return &IDGenerator{now: now}
}

// Next returns a fresh id. taken may be nil.
func (g *IDGenerator) Next(taken func(int64) bool) int64 {
	g.mu.Lock()
	defer g.mu.Unlock()

	id := g.now().UnixMilli()
	if id <= g.last {
		id = g.last + 1
	}
	for taken != nil && taken(id) {
		id++
	}
	g.last = id
	return id
}
