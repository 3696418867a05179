package handler

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/academic-records-api/internal/dto"
	"github.com/noah-isme/academic-records-api/internal/models"
	"github.com/noah-isme/academic-records-api/internal/repository"
	"github.com/noah-isme/academic-records-api/internal/service"
)

type manualTimer struct{}

func (manualTimer) Stop() bool { return true }

func newTestRouter(t *testing.T) (*gin.Engine, *repository.MemoryStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	store := repository.NewMemoryStore()
	deps := service.ManagerDeps{
		Store:          store,
		Logger:         zap.NewNop(),
		SeedSampleData: true,
		Scheduler:      func(time.Duration, func()) service.Cancelable { return manualTimer{} },
	}
	views := service.NewViews(deps, time.Minute, nil, nil)
	t.Cleanup(views.CloseAll)
	exports := service.NewExportService(zap.NewNop())

	r := gin.New()
	api := r.Group("/api/v1")
	NewResultHandler(views.Results, exports).Register(api.Group("/results"))
	NewSectionHandler(views.Sections, exports).Register(api.Group("/sections"))
	NewStudentHandler(views.Students, exports).Register(api.Group("/students"))
	return r, store
}

type envelope[T any] struct {
	Data  T                      `json:"data"`
	Meta  map[string]interface{} `json:"meta"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func do[T any](t *testing.T, r *gin.Engine, method, path string, body interface{}) (int, envelope[T]) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, _ := http.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope[T]
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w.Code, env
}

func openView[T any](t *testing.T, r *gin.Engine, entity string) (string, T) {
	t.Helper()
	status, env := do[T](t, r, http.MethodPost, "/api/v1/"+entity+"/views", nil)
	require.Equal(t, http.StatusCreated, status)
	id, _ := env.Meta["viewId"].(string)
	require.NotEmpty(t, id)
	return id, env.Data
}

func TestResultViewCreateFlow(t *testing.T) {
	r, store := newTestRouter(t)
	id, view := openView[dto.ResultView](t, r, "results")
	require.Len(t, view.Rows, 5)
	base := "/api/v1/results/views/" + id

	status, env := do[dto.ResultView](t, r, http.MethodPost, base+"/modal", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Add New Result", env.Data.Modal.Title)

	status, env = do[dto.ResultView](t, r, http.MethodPost, base+"/submit", map[string]interface{}{
		"studentName": "Ana", "subject": "Art", "marks": 150,
	})
	require.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
	assert.Equal(t, "Marks must be between 0 and 100", env.Error.Message)

	status, env = do[dto.ResultView](t, r, http.MethodPost, base+"/submit", map[string]interface{}{
		"studentName": "Ana", "subject": "Art", "marks": 55, "examDate": "2024-05-01",
	})
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, env.Data.Rows, 6)
	assert.False(t, env.Data.Modal.Open)
	assert.Equal(t, "Result added successfully!", env.Data.Notification.Message)
	assert.Equal(t, "D", env.Data.Rows[5].Grade.Letter)

	persisted, _, err := repository.LoadCollection[models.Result](context.Background(), store, models.CollectionResults)
	require.NoError(t, err)
	assert.Len(t, persisted, 6)
}

func TestResultViewFiltersAndDelete(t *testing.T) {
	r, _ := newTestRouter(t)
	id, _ := openView[dto.ResultView](t, r, "results")
	base := "/api/v1/results/views/" + id

	status, env := do[dto.ResultView](t, r, http.MethodPut, base+"/filters", models.ResultFilter{Subject: "Physics"})
	require.Equal(t, http.StatusOK, status)
	require.Len(t, env.Data.Rows, 2)

	status, env = do[dto.ResultView](t, r, http.MethodPut, base+"/pending-delete", map[string]int64{"id": 2})
	require.Equal(t, http.StatusOK, status)
	assert.True(t, env.Data.DeleteDialog.Open)

	status, env = do[dto.ResultView](t, r, http.MethodPost, base+"/pending-delete/confirm", nil)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, env.Data.Rows, 1)
	assert.Equal(t, int64(4), env.Data.Rows[0].ID)
	assert.Equal(t, "Physics", env.Data.Filter.Subject)
	assert.Equal(t, 4, env.Data.Total)
	assert.True(t, env.Data.Notification.Visible)

	status, env = do[dto.ResultView](t, r, http.MethodDelete, base+"/notification", nil)
	require.Equal(t, http.StatusOK, status)
	assert.False(t, env.Data.Notification.Visible)
}

func TestViewHandlerUnknownView(t *testing.T) {
	r, _ := newTestRouter(t)

	status, env := do[dto.SectionView](t, r, http.MethodGet, "/api/v1/sections/views/missing", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)

	status, _ = do[dto.SectionView](t, r, http.MethodDelete, "/api/v1/sections/views/missing", nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestViewHandlerDiscard(t *testing.T) {
	r, _ := newTestRouter(t)
	id, _ := openView[dto.StudentView](t, r, "students")

	req, _ := http.NewRequest(http.MethodDelete, "/api/v1/students/views/"+id, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)

	status, _ := do[dto.StudentView](t, r, http.MethodGet, "/api/v1/students/views/"+id, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestSectionRenameCascadesThroughHTTP(t *testing.T) {
	r, _ := newTestRouter(t)
	studentsID, _ := openView[dto.StudentView](t, r, "students")
	sectionsID, _ := openView[dto.SectionView](t, r, "sections")
	base := "/api/v1/sections/views/" + sectionsID

	status, env := do[dto.SectionView](t, r, http.MethodPost, base+"/modal/3", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Edit Section", env.Data.Modal.Title)
	assert.Equal(t, "Physics", env.Data.Form.Name)

	status, env = do[dto.SectionView](t, r, http.MethodPost, base+"/submit", map[string]string{"name": "Physical Sciences"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Physical Sciences", env.Data.Rows[2].Name)
	assert.Equal(t, 1, env.Data.Rows[2].StudentCount)

	// A fresh students view sees the cascaded name.
	newStudents, view := openView[dto.StudentView](t, r, "students")
	assert.NotEqual(t, studentsID, newStudents)
	assert.Equal(t, "Physical Sciences", view.Rows[2].Section)
	assert.Contains(t, view.SectionOptions, "Physical Sciences")
}

func TestViewHandlerRejectsBadPayloads(t *testing.T) {
	r, _ := newTestRouter(t)
	id, _ := openView[dto.StudentView](t, r, "students")
	base := "/api/v1/students/views/" + id

	status, _ := do[dto.StudentView](t, r, http.MethodPost, base+"/modal/abc", nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = do[dto.StudentView](t, r, http.MethodPut, base+"/pending-delete", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, status)

	req, _ := http.NewRequest(http.MethodPost, base+"/submit", strings.NewReader("invalid"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExportEndpoints(t *testing.T) {
	r, _ := newTestRouter(t)

	req, _ := http.NewRequest(http.MethodGet, "/api/v1/results/export?format=csv&studentName=John%20Doe", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "results-")
	records, err := csv.NewReader(w.Body).ReadAll()
	require.NoError(t, err)
	assert.Len(t, records, 3)

	req, _ = http.NewRequest(http.MethodGet, "/api/v1/sections/export?format=pdf", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))

	status, env := do[dto.StudentView](t, r, http.MethodGet, "/api/v1/students/export?format=xml", nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "UNSUPPORTED_FORMAT", env.Error.Code)
}
