package service

import (
	"context"
	"strconv"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/academic-records-api/internal/dto"
	"github.com/noah-isme/academic-records-api/internal/models"
	appErrors "github.com/noah-isme/academic-records-api/pkg/errors"
	"github.com/noah-isme/academic-records-api/pkg/export"
)

// ResultManager drives one results view: table, filters, modal and delete dialog.
type ResultManager struct {
	core      *entityCore[models.Result]
	refs      *ReferenceResolver
	ids       *IDGenerator
	validator *validator.Validate
	seed      bool
	logger    *zap.Logger

	filter models.ResultFilter
}

// NewResultManager constructs a ResultManager. Call Initialize before use.
func NewResultManager(deps ManagerDeps) *ResultManager {
	deps = deps.withDefaults()
	return &ResultManager{
		core:      newEntityCore[models.Result](models.CollectionResults, "Result", deps),
		refs:      deps.References,
		ids:       deps.IDs,
		validator: deps.Validator,
		seed:      deps.SeedSampleData,
		logger:    deps.Logger,
	}
}

// Initialize loads the results, seeding sample data when none were ever saved, and
// resolves the student roster.
func (m *ResultManager) Initialize(ctx context.Context) error {
	var seed []models.Result
	if m.seed {
		seed = SampleResults()
	}
	if err := m.core.load(ctx, seed); err != nil {
		return err
	}
	_, err := m.refs.Roster(ctx, m.core.items)
	return err
}

// Results returns a copy of the full collection.
func (m *ResultManager) Results() []models.Result {
	return m.core.snapshot()
}

// OpenCreateModal opens an empty form.
func (m *ResultManager) OpenCreateModal() {
	m.core.openCreate()
}

// OpenEditModal opens the form pre-filled with the result id. Unknown ids are ignored.
func (m *ResultManager) OpenEditModal(id int64) {
	m.core.openEdit(id)
}

// CloseModal discards the form.
func (m *ResultManager) CloseModal() {
	m.core.closeModal()
}

// Submit validates form and creates or updates a result. Invalid marks leave the form
// and the store untouched.
func (m *ResultManager) Submit(ctx context.Context, form dto.ResultForm) error {
	if err := m.validate(form); err != nil {
		return err
	}
	if m.core.editingID == nil && form.Marks == nil {
		return appErrors.Clone(appErrors.ErrValidation, marksRangeMessage)
	}

	mut, err := m.core.upsert(ctx, func(current *models.Result) models.Result {
		var rec models.Result
		if current != nil {
			rec = *current
		} else {
			rec.ID = m.ids.Next(m.core.taken)
		}
		if form.StudentName != nil {
			rec.StudentName = *form.StudentName
		}
		if form.Subject != nil {
			rec.Subject = *form.Subject
		}
		if form.Marks != nil {
			rec.Marks = *form.Marks
		}
		if form.ExamDate != nil {
			rec.ExamDate = *form.ExamDate
		}
		return rec
	}, nil)
	if err != nil {
		return err
	}
	if mut.Applied {
		if _, err := m.refs.Roster(ctx, m.core.items); err != nil {
			m.logger.Warn("roster refresh failed", zap.Error(err))
		}
	}
	m.core.announce(mut)
	return nil
}

// RequestDelete stages id and opens the confirmation dialog.
func (m *ResultManager) RequestDelete(id int64) {
	m.core.requestDelete(id)
}

// ConfirmDelete removes the staged result.
func (m *ResultManager) ConfirmDelete(ctx context.Context) error {
	_, err := m.core.confirmDelete(ctx)
	return err
}

// CancelDelete closes the dialog without deleting.
func (m *ResultManager) CancelDelete() {
	m.core.cancelDelete()
}

// DismissNotification hides the current notification before it expires.
func (m *ResultManager) DismissNotification() {
	m.core.dismissNotification()
}

// ApplyFilters sets the visible subset. Empty fields match every result.
func (m *ResultManager) ApplyFilters(filter models.ResultFilter) {
	m.filter = filter
}

// Filter returns the active filter.
func (m *ResultManager) Filter() models.ResultFilter {
	return m.filter
}

// Visible returns the results matching the active filter in collection order.
func (m *ResultManager) Visible() []models.Result {
	visible := make([]models.Result, 0, len(m.core.items))
	for _, r := range m.core.items {
		if m.filter.StudentName != "" && r.StudentName != m.filter.StudentName {
			continue
		}
		if m.filter.Subject != "" && r.Subject != m.filter.Subject {
			continue
		}
		visible = append(visible, r)
	}
	return visible
}

// FilterOptions lists the distinct student names and subjects in first-seen order.
func (m *ResultManager) FilterOptions() dto.ResultFilterOptions {
	opts := dto.ResultFilterOptions{Students: []string{}, Subjects: []string{}}
	seenStudents := map[string]struct{}{}
	seenSubjects := map[string]struct{}{}
	for _, r := range m.core.items {
		if _, ok := seenStudents[r.StudentName]; !ok && r.StudentName != "" {
			seenStudents[r.StudentName] = struct{}{}
			opts.Students = append(opts.Students, r.StudentName)
		}
		if _, ok := seenSubjects[r.Subject]; !ok && r.Subject != "" {
			seenSubjects[r.Subject] = struct{}{}
			opts.Subjects = append(opts.Subjects, r.Subject)
		}
	}
	return opts
}

// Render builds the view payload. The roster is re-read from the store.
func (m *ResultManager) Render(ctx context.Context) (dto.ResultView, error) {
	roster, err := m.refs.Roster(ctx, m.core.items)
	if err != nil {
		return dto.ResultView{}, err
	}
	studentOptions := make([]string, 0, len(roster))
	for _, s := range roster {
		studentOptions = append(studentOptions, s.Name)
	}

	visible := m.Visible()
	rows := make([]dto.ResultRow, 0, len(visible))
	for _, r := range visible {
		rows = append(rows, dto.ResultRow{
			ID:              r.ID,
			StudentName:     r.StudentName,
			Subject:         r.Subject,
			Marks:           r.Marks,
			Grade:           ComputeGrade(r.Marks),
			ExamDate:        r.ExamDate,
			ExamDateDisplay: displayDate(r.ExamDate),
		})
	}

	return dto.ResultView{
		Rows:           rows,
		Placeholder:    placeholderFor(len(rows)),
		Total:          len(m.core.items),
		Filter:         m.filter,
		FilterOptions:  m.FilterOptions(),
		StudentOptions: studentOptions,
		Modal:          m.core.modal(),
		Form:           m.core.form,
		DeleteDialog:   m.core.deleteDialog(),
		Notification:   m.core.notifier.Current(),
	}, nil
}

// Table returns the visible results as an export dataset.
func (m *ResultManager) Table(ctx context.Context) (export.Dataset, error) {
	visible := m.Visible()
	rows := make([][]string, 0, len(visible))
	for _, r := range visible {
		grade := ComputeGrade(r.Marks)
		rows = append(rows, []string{r.StudentName, r.Subject, strconv.Itoa(r.Marks), grade.Letter, displayDate(r.ExamDate)})
	}
	return export.Dataset{
		Title:   "Results",
		Headers: []string{"Student", "Subject", "Marks", "Grade", "Exam Date"},
		Rows:    rows,
	}, nil
}

// Close stops the view's notification timer.
func (m *ResultManager) Close() {
	m.core.close()
}

const marksRangeMessage = "Marks must be between 0 and 100"

var resultFieldMessages = map[string]string{
	"Marks":    marksRangeMessage,
	"ExamDate": "Exam date must use YYYY-MM-DD",
}

func (m *ResultManager) validate(form dto.ResultForm) error {
	return validateForm(m.validator, form, resultFieldMessages)
}
