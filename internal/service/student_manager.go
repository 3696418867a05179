package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/academic-records-api/internal/dto"
	"github.com/noah-isme/academic-records-api/internal/models"
	"github.com/noah-isme/academic-records-api/pkg/export"
)

var studentFieldMessages = map[string]string{
	"EnrollmentDate": "Enrollment date must use YYYY-MM-DD",
}

// StudentManager drives one students view.
type StudentManager struct {
	core      *entityCore[models.Student]
	refs      *ReferenceResolver
	ids       *IDGenerator
	validator *validator.Validate
	seed      bool
	logger    *zap.Logger
}

// NewStudentManager constructs a StudentManager. Call Initialize before use.
func NewStudentManager(deps ManagerDeps) *StudentManager {
	deps = deps.withDefaults()
	return &StudentManager{
		core:      newEntityCore[models.Student](models.CollectionStudents, "Student", deps),
		refs:      deps.References,
		ids:       deps.IDs,
		validator: deps.Validator,
		seed:      deps.SeedSampleData,
		logger:    deps.Logger,
	}
}

// Initialize loads the students, seeding sample data when none were ever saved.
func (m *StudentManager) Initialize(ctx context.Context) error {
	var seed []models.Student
	if m.seed {
		seed = SampleStudents()
	}
	return m.core.load(ctx, seed)
}

// Students returns a copy of the full collection.
func (m *StudentManager) Students() []models.Student {
	return m.core.snapshot()
}

// OpenCreateModal opens an empty form.
func (m *StudentManager) OpenCreateModal() {
	m.core.openCreate()
}

// OpenEditModal opens the form pre-filled with the student id. Unknown ids are ignored.
func (m *StudentManager) OpenEditModal(id int64) {
	m.core.openEdit(id)
}

// CloseModal discards the form.
func (m *StudentManager) CloseModal() {
	m.core.closeModal()
}

// Submit creates or updates a student. Renames are not propagated to results.
func (m *StudentManager) Submit(ctx context.Context, form dto.StudentForm) error {
	if err := validateForm(m.validator, form, studentFieldMessages); err != nil {
		return err
	}
	mut, err := m.core.upsert(ctx, func(current *models.Student) models.Student {
		var rec models.Student
		if current != nil {
			rec = *current
		} else {
			rec.ID = m.ids.Next(m.core.taken)
		}
		if form.Name != nil {
			rec.Name = *form.Name
		}
		if form.Email != nil {
			rec.Email = *form.Email
		}
		if form.Section != nil {
			rec.Section = *form.Section
		}
		if form.EnrollmentDate != nil {
			rec.EnrollmentDate = *form.EnrollmentDate
		}
		return rec
	}, func(mut mutation[models.Student]) error {
		if mut.Before == nil || mut.Before.Name == mut.After.Name {
			return nil
		}
		_, err := m.refs.Rename(ctx, ReferenceStudent, mut.Before.Name, mut.After.Name)
		return err
	})
	if err != nil {
		return err
	}
	m.core.announce(mut)
	return nil
}

// RequestDelete stages id and opens the confirmation dialog.
func (m *StudentManager) RequestDelete(id int64) {
	m.core.requestDelete(id)
}

// ConfirmDelete removes the staged student.
func (m *StudentManager) ConfirmDelete(ctx context.Context) error {
	_, err := m.core.confirmDelete(ctx)
	return err
}

// CancelDelete closes the dialog without deleting.
func (m *StudentManager) CancelDelete() {
	m.core.cancelDelete()
}

// DismissNotification hides the current notification before it expires.
func (m *StudentManager) DismissNotification() {
	m.core.dismissNotification()
}

// Render builds the view payload. Section options are re-read from the store.
func (m *StudentManager) Render(ctx context.Context) (dto.StudentView, error) {
	options, err := m.refs.SectionOptions(ctx)
	if err != nil {
		return dto.StudentView{}, err
	}
	rows := make([]dto.StudentRow, 0, len(m.core.items))
	for _, s := range m.core.items {
		rows = append(rows, dto.StudentRow{
			ID:                    s.ID,
			Name:                  s.Name,
			Email:                 s.Email,
			Section:               orDash(s.Section),
			EnrollmentDate:        s.EnrollmentDate,
			EnrollmentDateDisplay: displayDate(s.EnrollmentDate),
		})
	}
	return dto.StudentView{
		Rows:           rows,
		Placeholder:    placeholderFor(len(rows)),
		Total:          len(m.core.items),
		SectionOptions: options,
		Modal:          m.core.modal(),
		Form:           m.core.form,
		DeleteDialog:   m.core.deleteDialog(),
		Notification:   m.core.notifier.Current(),
	}, nil
}

// Table returns the students as an export dataset.
func (m *StudentManager) Table(ctx context.Context) (export.Dataset, error) {
	rows := make([][]string, 0, len(m.core.items))
	for _, s := range m.core.items {
		rows = append(rows, []string{s.Name, s.Email, orDash(s.Section), displayDate(s.EnrollmentDate)})
	}
	return export.Dataset{
		Title:   "Students",
		Headers: []string{"Name", "Email", "Section", "Enrollment Date"},
		Rows:    rows,
	}, nil
}

// Close stops the view's notification timer.
func (m *StudentManager) Close() {
	m.core.close()
}
