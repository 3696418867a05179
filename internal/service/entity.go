package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/academic-records-api/internal/models"
	"github.com/noah-isme/academic-records-api/internal/repository"
)

// NotificationObserver is told about every notification a view shows.
type NotificationObserver interface {
	RecordNotification(entity string)
}

// ManagerDeps carries the collaborators shared by the entity managers.
type ManagerDeps struct {
	Store           repository.CollectionStore
	References      *ReferenceResolver
	IDs             *IDGenerator
	Validator       *validator.Validate
	Logger          *zap.Logger
	Observer        NotificationObserver
	NotificationTTL time.Duration
	Scheduler       Scheduler
	// SeedSampleData persists the sample records when a collection was never saved.
	SeedSampleData bool
}

func (d ManagerDeps) withDefaults() ManagerDeps {
	if d.Store == nil {
		d.Store = repository.NewMemoryStore()
	}
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.IDs == nil {
		d.IDs = NewIDGenerator(nil)
	}
	if d.Validator == nil {
		d.Validator = NewValidator()
	}
	if d.References == nil {
		d.References = NewReferenceResolver(d.Store, d.IDs, "", d.Logger)
	}
	return d
}

// mutation reports the outcome of an upsert.
type mutation[T models.Record] struct {
	Before  *T
	After   T
	Created bool
	Applied bool
}

// entityCore is the modal and two-step delete state machine shared by every manager.
// It is not safe for concurrent use; the view registry serialises access.
type entityCore[T models.Record] struct {
	key      string
	label    string
	store    repository.CollectionStore
	notifier *Notifier
	observer NotificationObserver
	logger   *zap.Logger

	items      []T
	form       T
	modalOpen  bool
	editingID  *int64
	deleteOpen bool
	pendingID  *int64
}

func newEntityCore[T models.Record](key, label string, deps ManagerDeps) *entityCore[T] {
	return &entityCore[T]{
		key:      key,
		label:    label,
		store:    deps.Store,
		notifier: NewNotifier(deps.NotificationTTL, deps.Scheduler),
		observer: deps.Observer,
		logger:   deps.Logger.With(zap.String("collection", key)),
	}
}

// load reads the collection. When it was never persisted and seed is non-nil the seed
// is persisted and used instead.
func (c *entityCore[T]) load(ctx context.Context, seed []T) error {
	items, found, err := repository.LoadCollection[T](ctx, c.store, c.key)
	if err != nil {
		return err
	}
	if !found && seed != nil {
		if err := repository.SaveCollection(ctx, c.store, c.key, seed); err != nil {
			return err
		}
		c.logger.Info("sample records seeded", zap.Int("count", len(seed)))
		items = seed
	}
	c.items = items
	return nil
}

func (c *entityCore[T]) snapshot() []T {
	out := make([]T, len(c.items))
	copy(out, c.items)
	return out
}

func (c *entityCore[T]) indexOf(id int64) int {
	for i, item := range c.items {
		if item.RecordID() == id {
			return i
		}
	}
	return -1
}

func (c *entityCore[T]) taken(id int64) bool {
	return c.indexOf(id) >= 0
}

func (c *entityCore[T]) openCreate() {
	var zero T
	c.editingID = nil
	c.form = zero
	c.modalOpen = true
}

// openEdit pre-fills the form from the record with id. Unknown ids are ignored.
func (c *entityCore[T]) openEdit(id int64) bool {
	idx := c.indexOf(id)
	if idx < 0 {
		return false
	}
	editing := id
	c.editingID = &editing
	c.form = c.items[idx]
	c.modalOpen = true
	return true
}

func (c *entityCore[T]) closeModal() {
	var zero T
	c.modalOpen = false
	c.editingID = nil
	c.form = zero
}

func (c *entityCore[T]) requestDelete(id int64) {
	pending := id
	c.pendingID = &pending
	c.deleteOpen = true
}

func (c *entityCore[T]) cancelDelete() {
	c.pendingID = nil
	c.deleteOpen = false
}

// upsert replaces the edited record with build(current) or appends build(nil).
// An edited record that vanished meanwhile closes the modal and changes nothing.
// propagate runs after the collection is saved. The change is adopted only once it
// returns nil.
func (c *entityCore[T]) upsert(ctx context.Context, build func(current *T) T, propagate func(mutation[T]) error) (mutation[T], error) {
	next := c.snapshot()
	var result mutation[T]
	if c.editingID != nil {
		idx := c.indexOf(*c.editingID)
		if idx < 0 {
			c.logger.Debug("edited record vanished", zap.Int64("id", *c.editingID))
			c.closeModal()
			return result, nil
		}
		before := next[idx]
		result.Before = &before
		next[idx] = build(&before)
		result.After = next[idx]
	} else {
		result.After = build(nil)
		result.Created = true
		next = append(next, result.After)
	}

	if err := repository.SaveCollection(ctx, c.store, c.key, next); err != nil {
		return mutation[T]{}, err
	}
	if propagate != nil {
		if err := propagate(result); err != nil {
			return mutation[T]{}, err
		}
	}
	c.items = next
	result.Applied = true
	return result, nil
}

// announce notifies about an applied upsert and closes the modal.
func (c *entityCore[T]) announce(m mutation[T]) {
	if !m.Applied {
		return
	}
	if m.Created {
		c.notify(c.label + " added successfully!")
	} else {
		c.notify(c.label + " updated successfully!")
	}
	c.closeModal()
}

// confirmDelete removes the staged record. It reports whether anything was removed.
func (c *entityCore[T]) confirmDelete(ctx context.Context) (bool, error) {
	pending := c.pendingID
	c.cancelDelete()
	if pending == nil {
		return false, nil
	}
	idx := c.indexOf(*pending)
	if idx < 0 {
		return false, nil
	}
	next := make([]T, 0, len(c.items)-1)
	next = append(next, c.items[:idx]...)
	next = append(next, c.items[idx+1:]...)
	if err := repository.SaveCollection(ctx, c.store, c.key, next); err != nil {
		return false, err
	}
	c.items = next
	c.notify(c.label + " deleted successfully!")
	return true, nil
}

func (c *entityCore[T]) notify(message string) {
	c.notifier.Show(message)
	if c.observer != nil {
		c.observer.RecordNotification(c.key)
	}
}

func (c *entityCore[T]) dismissNotification() {
	c.notifier.Dismiss()
}

func (c *entityCore[T]) modal() models.ModalState {
	if !c.modalOpen {
		return models.ModalState{}
	}
	if c.editingID == nil {
		return models.ModalState{
			Open:        true,
			Mode:        models.ModalModeCreate,
			Title:       "Add New " + c.label,
			SubmitLabel: "Create " + c.label,
		}
	}
	editing := *c.editingID
	return models.ModalState{
		Open:        true,
		Mode:        models.ModalModeEdit,
		Title:       "Edit " + c.label,
		SubmitLabel: "Update " + c.label,
		EditingID:   &editing,
	}
}

func (c *entityCore[T]) deleteDialog() models.DeleteDialog {
	if !c.deleteOpen {
		return models.DeleteDialog{}
	}
	dialog := models.DeleteDialog{Open: true}
	if c.pendingID != nil {
		pending := *c.pendingID
		dialog.PendingID = &pending
	}
	return dialog
}

func (c *entityCore[T]) close() {
	c.notifier.Close()
}

func displayDate(value string) string {
	if value == "" {
		return "-"
	}
	t, err := time.Parse(models.DateLayout, value)
	if err != nil {
		return value
	}
	return t.Format("Jan 2, 2006")
}

func orDash(value string) string {
	if value == "" {
		return "-"
	}
	return value
}

func placeholderFor(rows int) string {
	if rows == 0 {
		return models.EmptyPlaceholder
	}
	return ""
}
