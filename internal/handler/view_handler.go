package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/academic-records-api/internal/dto"
	"github.com/noah-isme/academic-records-api/internal/service"
	appErrors "github.com/noah-isme/academic-records-api/pkg/errors"
	"github.com/noah-isme/academic-records-api/pkg/export"
	"github.com/noah-isme/academic-records-api/pkg/response"
)

// viewManager is the operation set every entity view exposes.
type viewManager[F any, R any] interface {
	service.View
	OpenCreateModal()
	OpenEditModal(id int64)
	CloseModal()
	Submit(ctx context.Context, form F) error
	RequestDelete(id int64)
	ConfirmDelete(ctx context.Context) error
	CancelDelete()
	DismissNotification()
	Render(ctx context.Context) (R, error)
	Table(ctx context.Context) (export.Dataset, error)
}

type viewRegistry[V any] interface {
	Open(ctx context.Context) (string, error)
	With(id string, fn func(view V) error) error
	Close(id string) bool
	Build(ctx context.Context) (V, error)
}

type exportRenderer interface {
	Render(ctx context.Context, src service.TableSource, format string) (*service.ExportFile, error)
}

// ViewHandler exposes the modal, delete and export endpoints of one entity.
type ViewHandler[V viewManager[F, R], F any, R any] struct {
	views   viewRegistry[V]
	exports exportRenderer
	// prepareExport adjusts a transient view from the export query before rendering.
	prepareExport func(c *gin.Context, view V)
}

// NewViewHandler constructs a handler over a view registry.
func NewViewHandler[V viewManager[F, R], F any, R any](views viewRegistry[V], exports exportRenderer) *ViewHandler[V, F, R] {
	return &ViewHandler[V, F, R]{views: views, exports: exports}
}

// Register mounts the view routes on group.
func (h *ViewHandler[V, F, R]) Register(group *gin.RouterGroup) {
	group.POST("/views", h.Open)
	group.GET("/views/:viewId", h.Get)
	group.DELETE("/views/:viewId", h.Discard)
	group.POST("/views/:viewId/modal", h.OpenCreateModal)
	group.POST("/views/:viewId/modal/:id", h.OpenEditModal)
	group.DELETE("/views/:viewId/modal", h.CloseModal)
	group.POST("/views/:viewId/submit", h.Submit)
	group.PUT("/views/:viewId/pending-delete", h.RequestDelete)
	group.POST("/views/:viewId/pending-delete/confirm", h.ConfirmDelete)
	group.DELETE("/views/:viewId/pending-delete", h.CancelDelete)
	group.DELETE("/views/:viewId/notification", h.DismissNotification)
	group.GET("/export", h.Export)
}

// Open godoc
// @Summary Open a view
// @Tags Views
// @Produce json
// @Param entity path string true "results, sections or students"
// @Success 201 {object} response.Envelope
// @Router /api/v1/{entity}/views [post]
func (h *ViewHandler[V, F, R]) Open(c *gin.Context) {
	id, err := h.views.Open(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	h.respond(c, http.StatusCreated, id, nil)
}

// Get godoc
// @Summary Render a view
// @Tags Views
// @Produce json
// @Param entity path string true "results, sections or students"
// @Param viewId path string true "View ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /api/v1/{entity}/views/{viewId} [get]
func (h *ViewHandler[V, F, R]) Get(c *gin.Context) {
	h.respond(c, http.StatusOK, c.Param("viewId"), nil)
}

// Discard godoc
// @Summary Discard a view
// @Tags Views
// @Param entity path string true "results, sections or students"
// @Param viewId path string true "View ID"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Router /api/v1/{entity}/views/{viewId} [delete]
func (h *ViewHandler[V, F, R]) Discard(c *gin.Context) {
	if !h.views.Close(c.Param("viewId")) {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "view not found"))
		return
	}
	response.NoContent(c)
}

// OpenCreateModal godoc
// @Summary Open the create form
// @Tags Views
// @Produce json
// @Param entity path string true "results, sections or students"
// @Param viewId path string true "View ID"
// @Success 200 {object} response.Envelope
// @Router /api/v1/{entity}/views/{viewId}/modal [post]
func (h *ViewHandler[V, F, R]) OpenCreateModal(c *gin.Context) {
	h.respond(c, http.StatusOK, c.Param("viewId"), func(ctx context.Context, v V) error {
		v.OpenCreateModal()
		return nil
	})
}

// OpenEditModal godoc
// @Summary Open the edit form
// @Tags Views
// @Produce json
// @Param entity path string true "results, sections or students"
// @Param viewId path string true "View ID"
// @Param id path int true "Record ID"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /api/v1/{entity}/views/{viewId}/modal/{id} [post]
func (h *ViewHandler[V, F, R]) OpenEditModal(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid record id"))
		return
	}
	h.respond(c, http.StatusOK, c.Param("viewId"), func(ctx context.Context, v V) error {
		v.OpenEditModal(id)
		return nil
	})
}

// CloseModal godoc
// @Summary Close the form
// @Tags Views
// @Produce json
// @Param entity path string true "results, sections or students"
// @Param viewId path string true "View ID"
// @Success 200 {object} response.Envelope
// @Router /api/v1/{entity}/views/{viewId}/modal [delete]
func (h *ViewHandler[V, F, R]) CloseModal(c *gin.Context) {
	h.respond(c, http.StatusOK, c.Param("viewId"), func(ctx context.Context, v V) error {
		v.CloseModal()
		return nil
	})
}

// Submit godoc
// @Summary Submit the form
// @Description Creates a record, or updates the one being edited.
// @Tags Views
// @Accept json
// @Produce json
// @Param entity path string true "results, sections or students"
// @Param viewId path string true "View ID"
// @Param payload body object true "ResultForm, SectionForm or StudentForm"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /api/v1/{entity}/views/{viewId}/submit [post]
func (h *ViewHandler[V, F, R]) Submit(c *gin.Context) {
	var form F
	if err := c.ShouldBindJSON(&form); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid form payload"))
		return
	}
	h.respond(c, http.StatusOK, c.Param("viewId"), func(ctx context.Context, v V) error {
		return v.Submit(ctx, form)
	})
}

// RequestDelete godoc
// @Summary Stage a record for deletion
// @Tags Views
// @Accept json
// @Produce json
// @Param entity path string true "results, sections or students"
// @Param viewId path string true "View ID"
// @Param payload body dto.DeleteRequest true "Record to delete"
// @Success 200 {object} response.Envelope
// @Router /api/v1/{entity}/views/{viewId}/pending-delete [put]
func (h *ViewHandler[V, F, R]) RequestDelete(c *gin.Context) {
	var req dto.DeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid delete payload"))
		return
	}
	h.respond(c, http.StatusOK, c.Param("viewId"), func(ctx context.Context, v V) error {
		v.RequestDelete(*req.ID)
		return nil
	})
}

// ConfirmDelete godoc
// @Summary Delete the staged record
// @Tags Views
// @Produce json
// @Param entity path string true "results, sections or students"
// @Param viewId path string true "View ID"
// @Success 200 {object} response.Envelope
// @Router /api/v1/{entity}/views/{viewId}/pending-delete/confirm [post]
func (h *ViewHandler[V, F, R]) ConfirmDelete(c *gin.Context) {
	h.respond(c, http.StatusOK, c.Param("viewId"), func(ctx context.Context, v V) error {
		return v.ConfirmDelete(ctx)
	})
}

// CancelDelete godoc
// @Summary Cancel the pending deletion
// @Tags Views
// @Produce json
// @Param entity path string true "results, sections or students"
// @Param viewId path string true "View ID"
// @Success 200 {object} response.Envelope
// @Router /api/v1/{entity}/views/{viewId}/pending-delete [delete]
func (h *ViewHandler[V, F, R]) CancelDelete(c *gin.Context) {
	h.respond(c, http.StatusOK, c.Param("viewId"), func(ctx context.Context, v V) error {
		v.CancelDelete()
		return nil
	})
}

// DismissNotification godoc
// @Summary Dismiss the current notification
// @Tags Views
// @Produce json
// @Param entity path string true "results, sections or students"
// @Param viewId path string true "View ID"
// @Success 200 {object} response.Envelope
// @Router /api/v1/{entity}/views/{viewId}/notification [delete]
func (h *ViewHandler[V, F, R]) DismissNotification(c *gin.Context) {
	h.respond(c, http.StatusOK, c.Param("viewId"), func(ctx context.Context, v V) error {
		v.DismissNotification()
		return nil
	})
}

// Export godoc
// @Summary Export the table
// @Description Renders the table from a fresh view. Results accept studentName and subject filters.
// @Tags Views
// @Produce text/csv
// @Produce application/pdf
// @Param entity path string true "results, sections or students"
// @Param format query string false "csv or pdf" default(csv)
// @Param studentName query string false "Results only: exact student name"
// @Param subject query string false "Results only: exact subject"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Router /api/v1/{entity}/export [get]
func (h *ViewHandler[V, F, R]) Export(c *gin.Context) {
	ctx := c.Request.Context()
	view, err := h.views.Build(ctx)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer view.Close()
	if h.prepareExport != nil {
		h.prepareExport(c, view)
	}
	file, err := h.exports.Render(ctx, view, c.DefaultQuery("format", export.FormatCSV))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Payload)
}

// respond runs op on the view and renders it in the same critical section.
func (h *ViewHandler[V, F, R]) respond(c *gin.Context, status int, viewID string, op func(ctx context.Context, v V) error) {
	ctx := c.Request.Context()
	var rendered R
	err := h.views.With(viewID, func(v V) error {
		if op != nil {
			if err := op(ctx, v); err != nil {
				return err
			}
		}
		var err error
		rendered, err = v.Render(ctx)
		return err
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, status, rendered, map[string]interface{}{"viewId": viewID})
}
