package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/uniplan/scheduler-api/internal/dto"
	"github.com/uniplan/scheduler-api/internal/models"
	"github.com/uniplan/scheduler-api/internal/service"
	appErrors "github.com/uniplan/scheduler-api/pkg/errors"
	"github.com/uniplan/scheduler-api/pkg/response"
)

type scheduleService interface {
	List(ctx context.Context, q dto.ScheduleQuery) ([]dto.ScheduleDetail, *models.Pagination, error)
	Get(ctx context.Context, id int64) (*dto.ScheduleDetail, error)
	Create(ctx context.Context, req dto.CreateScheduleRequest) (*dto.ScheduleDetail, error)
	Delete(ctx context.Context, id int64) error
	ListByTerm(ctx context.Context, semester, academicYear string) ([]dto.ScheduleDetail, error)
	ListByCourse(ctx context.Context, courseID int64) ([]dto.ScheduleDetail, error)
	ListByProfessor(ctx context.Context, professorID int64) ([]dto.ScheduleDetail, error)
	ListByClassroom(ctx context.Context, classroomID int64) ([]dto.ScheduleDetail, error)
}

type exportService interface {
	ExportTerm(ctx context.Context, semester, academicYear string, format service.ExportFormat) (*service.ExportResult, error)
}

// ScheduleHandler exposes schedule endpoints.
type ScheduleHandler struct {
	schedules scheduleService
	exports   exportService
}

// NewScheduleHandler constructs ScheduleHandler.
func NewScheduleHandler(schedules scheduleService, exports exportService) *ScheduleHandler {
	return &ScheduleHandler{schedules: schedules, exports: exports}
}

func idParam(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id < 1 {
		return 0, appErrors.Clone(appErrors.ErrValidation, "invalid identifier")
	}
	return id, nil
}

// List godoc
// @Summary List schedules
// @Tags Schedules
// @Produce json
// @Param semester query string false "Filter by semester"
// @Param academicYear query string false "Filter by academic year"
// @Param courseId query int false "Filter by course"
// @Param professorId query int false "Filter by professor"
// @Param roomId query int false "Filter by classroom"
// @Param dayOfWeek query string false "Filter by day"
// @Param page query int false "Page"
// @Param pageSize query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /schedules [get]
func (h *ScheduleHandler) List(c *gin.Context) {
	var q dto.ScheduleQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid query"))
		return
	}
	schedules, pagination, err := h.schedules.List(c.Request.Context(), q)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, schedules, pagination)
}

// Get godoc
// @Summary Get one schedule
// @Tags Schedules
// @Produce json
// @Param id path int true "Schedule ID"
// @Success 200 {object} response.Envelope
// @Router /schedules/{id} [get]
func (h *ScheduleHandler) Get(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	schedule, err := h.schedules.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, schedule, nil)
}

// Create godoc
// @Summary Create a schedule manually
// @Tags Schedules
// @Accept json
// @Produce json
// @Param payload body dto.CreateScheduleRequest true "Schedule payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope "Professor or classroom already booked"
// @Router /schedules [post]
func (h *ScheduleHandler) Create(c *gin.Context) {
	var req dto.CreateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	schedule, err := h.schedules.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, schedule)
}

// Delete godoc
// @Summary Delete a schedule
// @Tags Schedules
// @Param id path int true "Schedule ID"
// @Success 204
// @Router /schedules/{id} [delete]
func (h *ScheduleHandler) Delete(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.schedules.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ByTerm godoc
// @Summary Full weekly timetable for a term
// @Tags Schedules
// @Produce json
// @Param semester query string true "Semester"
// @Param academicYear query string true "Academic year"
// @Success 200 {object} response.Envelope
// @Router /schedules/term [get]
func (h *ScheduleHandler) ByTerm(c *gin.Context) {
	schedules, err := h.schedules.ListByTerm(c.Request.Context(), c.Query("semester"), c.Query("academicYear"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, schedules, nil)
}

// ByCourse godoc
// @Summary Schedules of a course
// @Tags Schedules
// @Produce json
// @Param id path int true "Course ID"
// @Success 200 {object} response.Envelope
// @Router /courses/{id}/schedules [get]
func (h *ScheduleHandler) ByCourse(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	schedules, err := h.schedules.ListByCourse(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, schedules, nil)
}

// ByProfessor godoc
// @Summary Schedules taught by a professor
// @Tags Schedules
// @Produce json
// @Param id path int true "Professor ID"
// @Success 200 {object} response.Envelope
// @Router /professors/{id}/schedules [get]
func (h *ScheduleHandler) ByProfessor(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	schedules, err := h.schedules.ListByProfessor(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, schedules, nil)
}

// ByClassroom godoc
// @Summary Schedules hosted in a classroom
// @Tags Schedules
// @Produce json
// @Param id path int true "Classroom ID"
// @Success 200 {object} response.Envelope
// @Router /classrooms/{id}/schedules [get]
func (h *ScheduleHandler) ByClassroom(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	schedules, err := h.schedules.ListByClassroom(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, schedules, nil)
}

// Export godoc
// @Summary Export a term timetable as CSV or PDF
// @Tags Schedules
// @Produce text/csv
// @Produce application/pdf
// @Param semester query string true "Semester"
// @Param academicYear query string true "Academic year"
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} file
// @Router /schedules/export [get]
func (h *ScheduleHandler) Export(c *gin.Context) {
	result, err := h.exports.ExportTerm(c.Request.Context(),
		c.Query("semester"), c.Query("academicYear"),
		service.ExportFormat(c.DefaultQuery("format", "csv")))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+result.Filename+`"`)
	c.Data(http.StatusOK, result.ContentType, result.Payload)
}
