package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/uniplan/scheduler-api/internal/dto"
	appErrors "github.com/uniplan/scheduler-api/pkg/errors"
	"github.com/uniplan/scheduler-api/pkg/response"
)

type scheduleGenerator interface {
	Generate(ctx context.Context, req dto.GenerateScheduleRequest) (*dto.GenerateScheduleResponse, error)
}

// ScheduleGeneratorHandler exposes the bulk timetable generation endpoint.
type ScheduleGeneratorHandler struct {
	generator scheduleGenerator
}

// NewScheduleGeneratorHandler constructs ScheduleGeneratorHandler.
func NewScheduleGeneratorHandler(generator scheduleGenerator) *ScheduleGeneratorHandler {
	return &ScheduleGeneratorHandler{generator: generator}
}

// Generate godoc
// @Summary Generate schedules for a set of courses
// @Description Assigns each course a slot, professor and classroom within one term. Courses that cannot be placed are returned with a reason rather than failing the run.
// @Tags Schedules
// @Accept json
// @Produce json
// @Param payload body dto.GenerateScheduleRequest true "Generation payload"
// @Success 200 {object} response.Envelope{data=dto.GenerateScheduleResponse}
// @Failure 404 {object} response.Envelope "Unknown course"
// @Router /schedules/generate [post]
func (h *ScheduleGeneratorHandler) Generate(c *gin.Context) {
	var req dto.GenerateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	result, err := h.generator.Generate(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}
