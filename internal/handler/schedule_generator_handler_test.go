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
	appErrors "github.com/uniplan/scheduler-api/pkg/errors"
)

type scheduleGeneratorMock struct {
	captured dto.GenerateScheduleRequest
	result   *dto.GenerateScheduleResponse
	err      error
}

func (m *scheduleGeneratorMock) Generate(ctx context.Context, req dto.GenerateScheduleRequest) (*dto.GenerateScheduleResponse, error) {
	m.captured = req
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}

func validGeneratorPayload() []byte {
	return []byte(`{
		"courseIds": [1, 2],
		"semester": "FALL",
		"academicYear": "2025-2026",
		"daysOfWeek": ["MONDAY", "WEDNESDAY"],
		"startTimes": ["09:00", "11:00"]
	}`)
}

func TestScheduleGeneratorHandlerSuccess(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &scheduleGeneratorMock{result: &dto.GenerateScheduleResponse{
		RunID:        "run-1",
		Semester:     "FALL",
		AcademicYear: "2025-2026",
	}}
	handler := NewScheduleGeneratorHandler(mockSvc)
	req, _ := http.NewRequest(http.MethodPost, "/schedules/generate", bytes.NewReader(validGeneratorPayload()))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	handler.Generate(c)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "FALL", mockSvc.captured.Semester)
	require.Equal(t, []int64{1, 2}, mockSvc.captured.CourseIDs)
	require.Contains(t, w.Body.String(), "run-1")
}

func TestScheduleGeneratorHandlerValidation(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewScheduleGeneratorHandler(&scheduleGeneratorMock{})
	req, _ := http.NewRequest(http.MethodPost, "/schedules/generate", bytes.NewReader([]byte(`{"courseIds":`)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	handler.Generate(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestScheduleGeneratorHandlerUnknownCourse(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &scheduleGeneratorMock{err: appErrors.Clone(appErrors.ErrNotFound, "course not found")}
	handler := NewScheduleGeneratorHandler(mockSvc)
	req, _ := http.NewRequest(http.MethodPost, "/schedules/generate", bytes.NewReader(validGeneratorPayload()))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	handler.Generate(c)

	require.Equal(t, http.StatusNotFound, w.Code)
	require.Contains(t, w.Body.String(), "course not found")
}
