package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/academic-records-api/internal/dto"
	"github.com/noah-isme/academic-records-api/internal/models"
	appErrors "github.com/noah-isme/academic-records-api/pkg/errors"
)

func newResultManager(t *testing.T, env *testEnv) *ResultManager {
	t.Helper()
	m := NewResultManager(env.deps)
	require.NoError(t, m.Initialize(context.Background()))
	t.Cleanup(m.Close)
	return m
}

func TestResultManagerSeedsSampleData(t *testing.T) {
	env := newTestEnv(t, true)
	m := newResultManager(t, env)

	assert.Len(t, m.Results(), 5)
	assert.Len(t, get[models.Result](t, env.store, models.CollectionResults), 5)
	// The roster is derived from the seeded results.
	assert.Len(t, get[models.Student](t, env.store, models.CollectionStudents), 3)

	view, err := m.Render(context.Background())
	require.NoError(t, err)
	require.Len(t, view.Rows, 5)
	assert.Equal(t, "A+", view.Rows[0].Grade.Letter)
	assert.Equal(t, "Mar 15, 2024", view.Rows[0].ExamDateDisplay)
	assert.Equal(t, []string{"John Doe", "Jane Smith", "Mike Johnson"}, view.StudentOptions)
	assert.Empty(t, view.Placeholder)
}

func TestResultManagerEmptyCollectionRendersPlaceholder(t *testing.T) {
	env := newTestEnv(t, true)
	put(t, env.store, models.CollectionResults, []models.Result{})
	m := newResultManager(t, env)

	view, err := m.Render(context.Background())
	require.NoError(t, err)
	assert.Empty(t, view.Rows)
	assert.Equal(t, models.EmptyPlaceholder, view.Placeholder)
}

func TestResultManagerCreate(t *testing.T) {
	env := newTestEnv(t, false)
	m := newResultManager(t, env)

	m.OpenCreateModal()
	view, err := m.Render(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Add New Result", view.Modal.Title)
	assert.Equal(t, "Create Result", view.Modal.SubmitLabel)

	err = m.Submit(context.Background(), dto.ResultForm{
		StudentName: strPtr("Ana"),
		Subject:     strPtr("Biology"),
		Marks:       intPtr(71),
		ExamDate:    strPtr("2024-04-01"),
	})
	require.NoError(t, err)

	persisted := get[models.Result](t, env.store, models.CollectionResults)
	require.Len(t, persisted, 1)
	assert.Equal(t, fixedNow.UnixMilli(), persisted[0].ID)
	assert.Equal(t, 71, persisted[0].Marks)

	view, err = m.Render(context.Background())
	require.NoError(t, err)
	assert.False(t, view.Modal.Open)
	assert.Equal(t, "Result added successfully!", view.Notification.Message)
	assert.Equal(t, "B", view.Rows[0].Grade.Letter)
}

func TestResultManagerRejectsOutOfRangeMarks(t *testing.T) {
	env := newTestEnv(t, true)
	m := newResultManager(t, env)
	m.OpenCreateModal()
	saves := env.store.savesOf(models.CollectionResults)

	for _, marks := range []int{-1, 101} {
		err := m.Submit(context.Background(), dto.ResultForm{StudentName: strPtr("Ana"), Subject: strPtr("Art"), Marks: intPtr(marks)})
		require.Error(t, err)
		assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
		assert.Equal(t, "Marks must be between 0 and 100", appErrors.FromError(err).Message)
	}

	assert.Equal(t, saves, env.store.savesOf(models.CollectionResults))
	assert.Len(t, m.Results(), 5)
	view, err := m.Render(context.Background())
	require.NoError(t, err)
	assert.True(t, view.Modal.Open)
	assert.False(t, view.Notification.Visible)
}

func TestResultManagerRequiresMarksOnCreate(t *testing.T) {
	env := newTestEnv(t, false)
	m := newResultManager(t, env)
	m.OpenCreateModal()

	err := m.Submit(context.Background(), dto.ResultForm{StudentName: strPtr("Ana")})
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
	assert.Empty(t, m.Results())
}

func TestResultManagerRejectsBadDate(t *testing.T) {
	env := newTestEnv(t, false)
	m := newResultManager(t, env)
	m.OpenCreateModal()

	err := m.Submit(context.Background(), dto.ResultForm{Marks: intPtr(50), ExamDate: strPtr("15/03/2024")})
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))

	err = m.Submit(context.Background(), dto.ResultForm{Marks: intPtr(50), ExamDate: strPtr("")})
	assert.NoError(t, err)
}

func TestResultManagerEditMergesAndKeepsID(t *testing.T) {
	env := newTestEnv(t, true)
	m := newResultManager(t, env)

	m.OpenEditModal(2)
	view, err := m.Render(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Edit Result", view.Modal.Title)
	assert.Equal(t, "Update Result", view.Modal.SubmitLabel)
	assert.Equal(t, "Jane Smith", view.Form.StudentName)

	require.NoError(t, m.Submit(context.Background(), dto.ResultForm{Marks: intPtr(40)}))

	results := get[models.Result](t, env.store, models.CollectionResults)
	require.Len(t, results, 5)
	assert.Equal(t, models.Result{ID: 2, StudentName: "Jane Smith", Subject: "Physics", Marks: 40, ExamDate: "2024-03-16"}, results[1])

	view, err = m.Render(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Result updated successfully!", view.Notification.Message)
	assert.Equal(t, "F", view.Rows[1].Grade.Letter)
}

func TestResultManagerOpenEditUnknownIDIsNoop(t *testing.T) {
	env := newTestEnv(t, true)
	m := newResultManager(t, env)

	m.OpenEditModal(999)
	view, err := m.Render(context.Background())
	require.NoError(t, err)
	assert.False(t, view.Modal.Open)
}

func TestResultManagerEditOfVanishedRecordIsNoop(t *testing.T) {
	env := newTestEnv(t, true)
	m := newResultManager(t, env)
	m.OpenEditModal(3)

	// Another view deletes the record.
	other := newResultManager(t, env)
	other.RequestDelete(3)
	require.NoError(t, other.ConfirmDelete(context.Background()))
	m.core.items = get[models.Result](t, env.store, models.CollectionResults)
	saves := env.store.savesOf(models.CollectionResults)

	require.NoError(t, m.Submit(context.Background(), dto.ResultForm{Marks: intPtr(10)}))
	assert.Equal(t, saves, env.store.savesOf(models.CollectionResults))
	assert.Len(t, m.Results(), 4)
}

func TestResultManagerDeleteFlow(t *testing.T) {
	env := newTestEnv(t, true)
	m := newResultManager(t, env)

	m.RequestDelete(1)
	view, err := m.Render(context.Background())
	require.NoError(t, err)
	assert.True(t, view.DeleteDialog.Open)
	require.NotNil(t, view.DeleteDialog.PendingID)
	assert.Equal(t, int64(1), *view.DeleteDialog.PendingID)

	require.NoError(t, m.ConfirmDelete(context.Background()))
	results := get[models.Result](t, env.store, models.CollectionResults)
	require.Len(t, results, 4)
	assert.Equal(t, int64(2), results[0].ID)

	view, err = m.Render(context.Background())
	require.NoError(t, err)
	assert.False(t, view.DeleteDialog.Open)
	assert.Equal(t, "Result deleted successfully!", view.Notification.Message)
}

func TestResultManagerConfirmWithoutStagedIDDoesNotPersist(t *testing.T) {
	env := newTestEnv(t, true)
	m := newResultManager(t, env)
	saves := env.store.savesOf(models.CollectionResults)

	require.NoError(t, m.ConfirmDelete(context.Background()))
	m.RequestDelete(12345)
	require.NoError(t, m.ConfirmDelete(context.Background()))

	assert.Equal(t, saves, env.store.savesOf(models.CollectionResults))
	assert.Len(t, m.Results(), 5)
}

func TestResultManagerCancelDelete(t *testing.T) {
	env := newTestEnv(t, true)
	m := newResultManager(t, env)

	m.RequestDelete(1)
	m.CancelDelete()
	require.NoError(t, m.ConfirmDelete(context.Background()))

	assert.Len(t, m.Results(), 5)
}

func TestResultManagerDismissNotification(t *testing.T) {
	env := newTestEnv(t, true)
	m := newResultManager(t, env)

	m.RequestDelete(1)
	require.NoError(t, m.ConfirmDelete(context.Background()))
	view, err := m.Render(context.Background())
	require.NoError(t, err)
	require.True(t, view.Notification.Visible)

	m.DismissNotification()
	view, err = m.Render(context.Background())
	require.NoError(t, err)
	assert.False(t, view.Notification.Visible)
	assert.True(t, env.scheduler.last().stopped)
}

func TestResultManagerApplyFilters(t *testing.T) {
	env := newTestEnv(t, true)
	m := newResultManager(t, env)

	m.ApplyFilters(models.ResultFilter{StudentName: "John Doe"})
	visible := m.Visible()
	require.Len(t, visible, 2)
	assert.Equal(t, int64(1), visible[0].ID)
	assert.Equal(t, int64(4), visible[1].ID)

	m.ApplyFilters(models.ResultFilter{StudentName: "John Doe", Subject: "Physics"})
	visible = m.Visible()
	require.Len(t, visible, 1)
	assert.Equal(t, int64(4), visible[0].ID)

	m.ApplyFilters(models.ResultFilter{Subject: "History"})
	view, err := m.Render(context.Background())
	require.NoError(t, err)
	assert.Empty(t, view.Rows)
	assert.Equal(t, models.EmptyPlaceholder, view.Placeholder)
	assert.Equal(t, 5, view.Total)

	m.ApplyFilters(models.ResultFilter{})
	assert.Len(t, m.Visible(), 5)
}

func TestResultManagerFiltersSurviveMutation(t *testing.T) {
	env := newTestEnv(t, true)
	m := newResultManager(t, env)
	m.ApplyFilters(models.ResultFilter{Subject: "Physics"})

	m.OpenCreateModal()
	require.NoError(t, m.Submit(context.Background(), dto.ResultForm{StudentName: strPtr("Ana"), Subject: strPtr("Physics"), Marks: intPtr(65)}))

	view, err := m.Render(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Physics", view.Filter.Subject)
	assert.Len(t, view.Rows, 3)
}

func TestResultManagerFilterOptions(t *testing.T) {
	env := newTestEnv(t, true)
	m := newResultManager(t, env)

	opts := m.FilterOptions()
	assert.Equal(t, []string{"John Doe", "Jane Smith", "Mike Johnson"}, opts.Students)
	assert.Equal(t, []string{"Mathematics", "Physics", "Chemistry"}, opts.Subjects)
}

func TestResultManagerCorruptCollection(t *testing.T) {
	env := newTestEnv(t, true)
	require.NoError(t, env.store.Save(context.Background(), models.CollectionResults, []byte("{not json")))

	m := NewResultManager(env.deps)
	err := m.Initialize(context.Background())
	assert.True(t, appErrors.Is(err, appErrors.ErrStorageCorrupt))
}

func TestResultManagerTableHonoursFilter(t *testing.T) {
	env := newTestEnv(t, true)
	m := newResultManager(t, env)
	m.ApplyFilters(models.ResultFilter{Subject: "Mathematics"})

	table, err := m.Table(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Student", "Subject", "Marks", "Grade", "Exam Date"}, table.Headers)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, []string{"John Doe", "Mathematics", "95", "A+", "Mar 15, 2024"}, table.Rows[0])
}

func TestResultManagerNotificationsAreObserved(t *testing.T) {
	env := newTestEnv(t, true)
	observer := &recordingNotifications{}
	env.deps.Observer = observer
	m := newResultManager(t, env)

	m.RequestDelete(1)
	require.NoError(t, m.ConfirmDelete(context.Background()))

	assert.Equal(t, 1, observer.counts[models.CollectionResults])
}
