package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/academic-records-api/internal/dto"
	"github.com/noah-isme/academic-records-api/internal/models"
)

func newSectionManager(t *testing.T, env *testEnv) *SectionManager {
	t.Helper()
	m := NewSectionManager(env.deps)
	require.NoError(t, m.Initialize(context.Background()))
	t.Cleanup(m.Close)
	return m
}

func TestSectionManagerRendersStudentCounts(t *testing.T) {
	env := newTestEnv(t, true)
	put(t, env.store, models.CollectionStudents, []models.Student{
		{ID: 1, Name: "A", Section: "Physics"},
		{ID: 2, Name: "B", Section: "Physics"},
		{ID: 3, Name: "C", Section: "Chemistry"},
	})
	m := newSectionManager(t, env)

	view, err := m.Render(context.Background())
	require.NoError(t, err)
	require.Len(t, view.Rows, 4)
	counts := map[string]int{}
	for _, row := range view.Rows {
		counts[row.Name] = row.StudentCount
	}
	assert.Equal(t, map[string]int{"Computer Science": 0, "Mathematics": 0, "Physics": 2, "Chemistry": 1}, counts)

	// Counts are recomputed from the store on every render.
	put(t, env.store, models.CollectionStudents, []models.Student{{ID: 4, Name: "D", Section: "Mathematics"}})
	count, err := m.CountStudentsIn(context.Background(), "Mathematics")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	view, err = m.Render(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, view.Rows[2].StudentCount)
	assert.Equal(t, 1, view.Rows[1].StudentCount)
}

func TestSectionManagerRenameCascadesToStudents(t *testing.T) {
	env := newTestEnv(t, true)
	put(t, env.store, models.CollectionStudents, []models.Student{
		{ID: 1, Name: "A", Section: "Mathematics"},
		{ID: 2, Name: "B", Section: "Physics"},
	})
	m := newSectionManager(t, env)

	m.OpenEditModal(2)
	require.NoError(t, m.Submit(context.Background(), dto.SectionForm{Name: strPtr("Applied Mathematics")}))

	sections := get[models.Section](t, env.store, models.CollectionSections)
	assert.Equal(t, "Applied Mathematics", sections[1].Name)
	assert.Equal(t, "Advanced mathematical concepts and problem-solving techniques", sections[1].Description)

	students := get[models.Student](t, env.store, models.CollectionStudents)
	assert.Equal(t, "Applied Mathematics", students[0].Section)
	assert.Equal(t, "Physics", students[1].Section)

	view, err := m.Render(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Section updated successfully!", view.Notification.Message)
	assert.Equal(t, 1, view.Rows[1].StudentCount)
}

func TestSectionManagerRenameRetriesCascadeAfterStudentSaveFailure(t *testing.T) {
	env := newTestEnv(t, true)
	put(t, env.store, models.CollectionStudents, []models.Student{{ID: 1, Name: "A", Section: "Physics"}})
	m := newSectionManager(t, env)

	env.store.failSaves(models.CollectionStudents, errors.New("disk full"))
	m.OpenEditModal(3)
	err := m.Submit(context.Background(), dto.SectionForm{Name: strPtr("Applied Physics")})
	require.Error(t, err)

	view, err := m.Render(context.Background())
	require.NoError(t, err)
	assert.True(t, view.Modal.Open)
	assert.Equal(t, models.ModalModeEdit, view.Modal.Mode)
	assert.Equal(t, "Physics", view.Rows[2].Name)
	assert.Equal(t, "Physics", get[models.Student](t, env.store, models.CollectionStudents)[0].Section)

	env.store.failSaves(models.CollectionStudents, nil)
	require.NoError(t, m.Submit(context.Background(), dto.SectionForm{Name: strPtr("Applied Physics")}))

	assert.Equal(t, "Applied Physics", get[models.Section](t, env.store, models.CollectionSections)[2].Name)
	assert.Equal(t, "Applied Physics", get[models.Student](t, env.store, models.CollectionStudents)[0].Section)
	view, err = m.Render(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, view.Rows[2].StudentCount)
}

func TestSectionManagerDescriptionOnlyEditSkipsCascade(t *testing.T) {
	env := newTestEnv(t, true)
	put(t, env.store, models.CollectionStudents, []models.Student{{ID: 1, Name: "A", Section: "Physics"}})
	m := newSectionManager(t, env)
	saves := env.store.savesOf(models.CollectionStudents)

	m.OpenEditModal(3)
	require.NoError(t, m.Submit(context.Background(), dto.SectionForm{Description: strPtr("")}))

	assert.Equal(t, saves, env.store.savesOf(models.CollectionStudents))
	view, err := m.Render(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "-", view.Rows[2].Description)
}

func TestSectionManagerCreateAndDelete(t *testing.T) {
	env := newTestEnv(t, false)
	m := newSectionManager(t, env)

	view, err := m.Render(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.EmptyPlaceholder, view.Placeholder)

	m.OpenCreateModal()
	view, err = m.Render(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Add New Section", view.Modal.Title)
	assert.Equal(t, "Create Section", view.Modal.SubmitLabel)

	require.NoError(t, m.Submit(context.Background(), dto.SectionForm{Name: strPtr("Biology"), Description: strPtr("Life")}))
	sections := m.Sections()
	require.Len(t, sections, 1)

	m.RequestDelete(sections[0].ID)
	require.NoError(t, m.ConfirmDelete(context.Background()))
	assert.Empty(t, get[models.Section](t, env.store, models.CollectionSections))

	view, err = m.Render(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Section deleted successfully!", view.Notification.Message)
}

func TestSectionManagerTable(t *testing.T) {
	env := newTestEnv(t, true)
	put(t, env.store, models.CollectionStudents, []models.Student{{ID: 1, Name: "A", Section: "Physics"}})
	m := newSectionManager(t, env)

	table, err := m.Table(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Section", "Description", "Students"}, table.Headers)
	require.Len(t, table.Rows, 4)
	assert.Equal(t, "1", table.Rows[2][2])
}
