package service

import (
	"sync"
	"time"

	"github.com/noah-isme/academic-records-api/internal/models"
)

// DefaultNotificationTTL is how long a notification stays visible.
const DefaultNotificationTTL = 3 * time.Second

// Cancelable is a scheduled task that can be stopped before it fires.
type Cancelable interface {
	Stop() bool
}

// Scheduler runs fn once after d. time.AfterFunc satisfies it through AfterFunc.
type Scheduler func(d time.Duration, fn func()) Cancelable

// AfterFunc schedules fn on the runtime timer.
func AfterFunc(d time.Duration, fn func()) Cancelable {
	return time.AfterFunc(d, fn)
}

// Notifier holds the single transient message of a view. A newer message replaces
// the visible one and cancels the pending dismissal of the previous one.
type Notifier struct {
	mu       sync.Mutex
	ttl      time.Duration
	schedule Scheduler
	current  models.Notification
	pending  Cancelable
	seq      uint64
	closed   bool
}

// NewNotifier constructs a Notifier. Non-positive ttl uses DefaultNotificationTTL and a
// nil scheduler uses AfterFunc.
func NewNotifier(ttl time.Duration, schedule Scheduler) *Notifier {
	if ttl <= 0 {
		ttl = DefaultNotificationTTL
	}
	if schedule == nil {
		schedule = AfterFunc
	}
	return &Notifier{ttl: ttl, schedule: schedule}
}

// Show makes message visible and schedules its dismissal.
func (n *Notifier) Show(message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		return
	}
	n.cancelLocked()
	n.seq++
	seq := n.seq
	n.current = models.Notification{Visible: true, Message: message}
	n.pending = n.schedule(n.ttl, func() { n.expire(seq) })
}

// Current returns the visible notification, if any.
func (n *Notifier) Current() models.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.current
}

// Dismiss hides the current message immediately.
func (n *Notifier) Dismiss() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.cancelLocked()
	n.current = models.Notification{}
}

// Close stops any pending dismissal. Later Show calls are ignored.
func (n *Notifier) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.cancelLocked()
	n.current = models.Notification{}
	n.closed = true
}

func (n *Notifier) expire(seq uint64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if seq != n.seq {
		return
	}
	n.current = models.Notification{}
	n.pending = nil
}

func (n *Notifier) cancelLocked() {
	if n.pending != nil {
		n.pending.Stop()
		n.pending = nil
	}
}
