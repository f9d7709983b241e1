package handler

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/uniplan/scheduler-api/internal/dto"
	"github.com/uniplan/scheduler-api/internal/models"
	"github.com/uniplan/scheduler-api/internal/service"
	appErrors "github.com/uniplan/scheduler-api/pkg/errors"
)

type scheduleServiceMock struct {
	detail   *dto.ScheduleDetail
	details  []dto.ScheduleDetail
	err      error
	captured dto.CreateScheduleRequest
}

func (m *scheduleServiceMock) List(ctx context.Context, q dto.ScheduleQuery) ([]dto.ScheduleDetail, *models.Pagination, error) {
	if m.err != nil {
		return nil, nil, m.err
	}
	return m.details, &models.Pagination{Page: 1, PageSize: 20, TotalCount: len(m.details)}, nil
}

func (m *scheduleServiceMock) Get(ctx context.Context, id int64) (*dto.ScheduleDetail, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.detail, nil
}

func (m *scheduleServiceMock) Create(ctx context.Context, req dto.CreateScheduleRequest) (*dto.ScheduleDetail, error) {
	m.captured = req
	if m.err != nil {
		return nil, m.err
	}
	return m.detail, nil
}

func (m *scheduleServiceMock) Delete(ctx context.Context, id int64) error {
	return m.err
}

func (m *scheduleServiceMock) ListByTerm(ctx context.Context, semester, academicYear string) ([]dto.ScheduleDetail, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.details, nil
}

func (m *scheduleServiceMock) ListByCourse(ctx context.Context, courseID int64) ([]dto.ScheduleDetail, error) {
	return m.details, m.err
}

func (m *scheduleServiceMock) ListByProfessor(ctx context.Context, professorID int64) ([]dto.ScheduleDetail, error) {
	return m.details, m.err
}

func (m *scheduleServiceMock) ListByClassroom(ctx context.Context, classroomID int64) ([]dto.ScheduleDetail, error) {
	return m.details, m.err
}

type exportServiceMock struct {
	result *service.ExportResult
	err    error
}

func (m *exportServiceMock) ExportTerm(ctx context.Context, semester, academicYear string, format service.ExportFormat) (*service.ExportResult, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}

func validSchedulePayload() []byte {
	return []byte(`{
		"courseId": 10,
		"professorId": 9,
		"roomId": 2,
		"dayOfWeek": "MONDAY",
		"startTime": "09:00",
		"endTime": "11:00",
		"semester": "FALL",
		"academicYear": "2025-2026"
	}`)
}

func sampleDetail() *dto.ScheduleDetail {
	return &dto.ScheduleDetail{
		ID:           1,
		Course:       dto.CourseRef{ID: 10, Code: "CS101", Name: "Intro to Programming"},
		Professor:    dto.ProfessorRef{ID: 9, FirstName: "Ada", LastName: "Lovelace"},
		Classroom:    dto.ClassroomRef{ID: 2, RoomNumber: "B-204", Capacity: 40},
		DayOfWeek:    models.Monday,
		StartTime:    9 * 60,
		EndTime:      11 * 60,
		Semester:     "FALL",
		AcademicYear: "2025-2026",
	}
}

func TestScheduleHandlerCreateSuccess(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &scheduleServiceMock{detail: sampleDetail()}
	handler := NewScheduleHandler(mockSvc, &exportServiceMock{})
	req, _ := http.NewRequest(http.MethodPost, "/schedules", bytes.NewReader(validSchedulePayload()))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	handler.Create(c)

	require.Equal(t, http.StatusCreated, w.Code)
	require.Equal(t, int64(10), mockSvc.captured.CourseID)
	require.Contains(t, w.Body.String(), "CS101")
}

func TestScheduleHandlerCreateConflict(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &scheduleServiceMock{err: appErrors.Clone(appErrors.ErrConflict, "professor is already booked by schedule 4 in that time slot")}
	handler := NewScheduleHandler(mockSvc, &exportServiceMock{})
	req, _ := http.NewRequest(http.MethodPost, "/schedules", bytes.NewReader(validSchedulePayload()))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	handler.Create(c)

	require.Equal(t, http.StatusConflict, w.Code)
	require.Contains(t, w.Body.String(), "already booked")
}

func TestScheduleHandlerCreateValidation(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewScheduleHandler(&scheduleServiceMock{}, &exportServiceMock{})
	req, _ := http.NewRequest(http.MethodPost, "/schedules", bytes.NewReader([]byte(`{"courseId":`)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	handler.Create(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestScheduleHandlerGetRejectsBadID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewScheduleHandler(&scheduleServiceMock{}, &exportServiceMock{})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/schedules/abc", nil)
	c.Params = gin.Params{{Key: "id", Value: "abc"}}

	handler.Get(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestScheduleHandlerDelete(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewScheduleHandler(&scheduleServiceMock{}, &exportServiceMock{})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodDelete, "/schedules/1", nil)
	c.Params = gin.Params{{Key: "id", Value: "1"}}

	handler.Delete(c)
	c.Writer.WriteHeaderNow()

	require.Equal(t, http.StatusNoContent, w.Code)
}

func TestScheduleHandlerExport(t *testing.T) {
	gin.SetMode(gin.TestMode)
	exports := &exportServiceMock{result: &service.ExportResult{
		Payload:     []byte("Day,Start,End\n"),
		ContentType: "text/csv",
		Filename:    "timetable_fall_2025-2026.csv",
	}}
	handler := NewScheduleHandler(&scheduleServiceMock{}, exports)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/schedules/export?semester=FALL&academicYear=2025-2026", nil)

	handler.Export(c)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	require.Contains(t, w.Header().Get("Content-Disposition"), "timetable_fall_2025-2026.csv")
	require.Equal(t, "Day,Start,End\n", w.Body.String())
}
