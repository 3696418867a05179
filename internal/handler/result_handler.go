package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/academic-records-api/internal/dto"
	"github.com/noah-isme/academic-records-api/internal/models"
	"github.com/noah-isme/academic-records-api/internal/service"
	appErrors "github.com/noah-isme/academic-records-api/pkg/errors"
	"github.com/noah-isme/academic-records-api/pkg/response"
)

// ResultHandler adds filtering to the shared result view routes.
type ResultHandler struct {
	*ViewHandler[*service.ResultManager, dto.ResultForm, dto.ResultView]
}

// NewResultHandler constructs a result handler.
func NewResultHandler(views viewRegistry[*service.ResultManager], exports exportRenderer) *ResultHandler {
	h := &ResultHandler{ViewHandler: NewViewHandler[*service.ResultManager, dto.ResultForm, dto.ResultView](views, exports)}
	h.prepareExport = func(c *gin.Context, m *service.ResultManager) {
		m.ApplyFilters(models.ResultFilter{
			StudentName: c.Query("studentName"),
			Subject:     c.Query("subject"),
		})
	}
	return h
}

// Register mounts the result routes on group.
func (h *ResultHandler) Register(group *gin.RouterGroup) {
	h.ViewHandler.Register(group)
	group.PUT("/views/:viewId/filters", h.ApplyFilters)
}

// ApplyFilters godoc
// @Summary Filter visible results
// @Tags Results
// @Accept json
// @Produce json
// @Param viewId path string true "View ID"
// @Param payload body models.ResultFilter true "Filter payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /api/v1/results/views/{viewId}/filters [put]
func (h *ResultHandler) ApplyFilters(c *gin.Context) {
	var filter models.ResultFilter
	if err := c.ShouldBindJSON(&filter); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid filter payload"))
		return
	}
	h.respond(c, http.StatusOK, c.Param("viewId"), func(ctx context.Context, m *service.ResultManager) error {
		m.ApplyFilters(filter)
		return nil
	})
}
