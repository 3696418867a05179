package service

import (
	"context"
	"strconv"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/academic-records-api/internal/dto"
	"github.com/noah-isme/academic-records-api/internal/models"
	"github.com/noah-isme/academic-records-api/pkg/export"
)

// SectionManager drives one sections view. Student counts are recomputed from the
// store on every render.
type SectionManager struct {
	core      *entityCore[models.Section]
	refs      *ReferenceResolver
	ids       *IDGenerator
	validator *validator.Validate
	seed      bool
	logger    *zap.Logger
}

// NewSectionManager constructs a SectionManager. Call Initialize before use.
func NewSectionManager(deps ManagerDeps) *SectionManager {
	deps = deps.withDefaults()
	return &SectionManager{
		core:      newEntityCore[models.Section](models.CollectionSections, "Section", deps),
		refs:      deps.References,
		ids:       deps.IDs,
		validator: deps.Validator,
		seed:      deps.SeedSampleData,
		logger:    deps.Logger,
	}
}

// Initialize loads the sections, seeding sample data when none were ever saved.
func (m *SectionManager) Initialize(ctx context.Context) error {
	var seed []models.Section
	if m.seed {
		seed = SampleSections()
	}
	return m.core.load(ctx, seed)
}

// Sections returns a copy of the full collection.
func (m *SectionManager) Sections() []models.Section {
	return m.core.snapshot()
}

// OpenCreateModal opens an empty form.
func (m *SectionManager) OpenCreateModal() {
	m.core.openCreate()
}

// OpenEditModal opens the form pre-filled with the section id. Unknown ids are ignored.
func (m *SectionManager) OpenEditModal(id int64) {
	m.core.openEdit(id)
}

// CloseModal discards the form.
func (m *SectionManager) CloseModal() {
	m.core.closeModal()
}

// Submit creates or updates a section. Renaming a section renames it on every student.
func (m *SectionManager) Submit(ctx context.Context, form dto.SectionForm) error {
	if err := validateForm(m.validator, form, nil); err != nil {
		return err
	}
	mut, err := m.core.upsert(ctx, func(current *models.Section) models.Section {
		var rec models.Section
		if current != nil {
			rec = *current
		} else {
			rec.ID = m.ids.Next(m.core.taken)
		}
		if form.Name != nil {
			rec.Name = *form.Name
		}
		if form.Description != nil {
			rec.Description = *form.Description
		}
		return rec
	}, func(mut mutation[models.Section]) error {
		if mut.Before == nil || mut.Before.Name == mut.After.Name {
			return nil
		}
		_, err := m.refs.Rename(ctx, ReferenceSection, mut.Before.Name, mut.After.Name)
		return err
	})
	if err != nil {
		return err
	}
	m.core.announce(mut)
	return nil
}

// RequestDelete stages id and opens the confirmation dialog.
func (m *SectionManager) RequestDelete(id int64) {
	m.core.requestDelete(id)
}

// ConfirmDelete removes the staged section. Students keep the deleted name.
func (m *SectionManager) ConfirmDelete(ctx context.Context) error {
	_, err := m.core.confirmDelete(ctx)
	return err
}

// CancelDelete closes the dialog without deleting.
func (m *SectionManager) CancelDelete() {
	m.core.cancelDelete()
}

// DismissNotification hides the current notification before it expires.
func (m *SectionManager) DismissNotification() {
	m.core.dismissNotification()
}

// CountStudentsIn counts the persisted students enrolled in the named section.
func (m *SectionManager) CountStudentsIn(ctx context.Context, name string) (int, error) {
	students, err := m.refs.Students(ctx)
	if err != nil {
		return 0, err
	}
	return m.refs.CountStudentsIn(students, name), nil
}

// Render builds the view payload.
func (m *SectionManager) Render(ctx context.Context) (dto.SectionView, error) {
	students, err := m.refs.Students(ctx)
	if err != nil {
		return dto.SectionView{}, err
	}
	rows := make([]dto.SectionRow, 0, len(m.core.items))
	for _, s := range m.core.items {
		rows = append(rows, dto.SectionRow{
			ID:           s.ID,
			Name:         s.Name,
			Description:  orDash(s.Description),
			StudentCount: m.refs.CountStudentsIn(students, s.Name),
		})
	}
	return dto.SectionView{
		Rows:         rows,
		Placeholder:  placeholderFor(len(rows)),
		Total:        len(m.core.items),
		Modal:        m.core.modal(),
		Form:         m.core.form,
		DeleteDialog: m.core.deleteDialog(),
		Notification: m.core.notifier.Current(),
	}, nil
}

// Table returns the rendered sections as an export dataset.
func (m *SectionManager) Table(ctx context.Context) (export.Dataset, error) {
	view, err := m.Render(ctx)
	if err != nil {
		return export.Dataset{}, err
	}
	rows := make([][]string, 0, len(view.Rows))
	for _, r := range view.Rows {
		rows = append(rows, []string{r.Name, r.Description, strconv.Itoa(r.StudentCount)})
	}
	return export.Dataset{
		Title:   "Sections",
		Headers: []string{"Section", "Description", "Students"},
		Rows:    rows,
	}, nil
}

// Close stops the view's notification timer.
func (m *SectionManager) Close() {
	m.core.close()
}
