package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/uniplan/scheduler-api/internal/models"
	appErrors "github.com/uniplan/scheduler-api/pkg/errors"
	"github.com/uniplan/scheduler-api/pkg/export"
)

type termScheduleLister interface {
	ListRowsByTerm(ctx context.Context, term models.TermKey) ([]models.ScheduleRow, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportFormat selects the rendered output type.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

// ExportResult carries a rendered timetable document.
type ExportResult struct {
	Payload     []byte
	ContentType string
	Filename    string
}

// ExportService renders a term's timetable as a downloadable document.
type ExportService struct {
	schedules termScheduleLister
	csv       csvRenderer
	pdf       pdfRenderer
	logger    *zap.Logger
}

// NewExportService constructs an ExportService.
func NewExportService(schedules termScheduleLister, csv csvRenderer, pdf pdfRenderer, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{schedules: schedules, csv: csv, pdf: pdf, logger: logger}
}

// ExportTerm renders the full weekly timetable of one term.
func (s *ExportService) ExportTerm(ctx context.Context, semester, academicYear string, format ExportFormat) (*ExportResult, error) {
	if semester == "" || academicYear == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "semester and academic year are required")
	}
	term := models.TermKey{Semester: semester, AcademicYear: academicYear}
	rows, err := s.schedules.ListRowsByTerm(ctx, term)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load term schedules")
	}

	dataset := buildTimetableDataset(rows)
	title := fmt.Sprintf("Timetable %s %s", term.Semester, term.AcademicYear)
	base := fmt.Sprintf("timetable_%s_%s", strings.ToLower(term.Semester), term.AcademicYear)

	switch format {
	case ExportFormatCSV, "":
		payload, err := s.csv.Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv export")
		}
		return &ExportResult{Payload: payload, ContentType: "text/csv", Filename: base + ".csv"}, nil
	case ExportFormatPDF:
		payload, err := s.pdf.Render(dataset, title)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf export")
		}
		return &ExportResult{Payload: payload, ContentType: "application/pdf", Filename: base + ".pdf"}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
}

func buildTimetableDataset(rows []models.ScheduleRow) export.Dataset {
	dataset := export.Dataset{
		Headers: []string{"Day", "Start", "End", "Course Code", "Course Name", "Professor", "Room", "Capacity"},
	}
	for _, row := range rows {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Day":         string(row.DayOfWeek),
			"Start":       row.StartTime.String(),
			"End":         row.EndTime.String(),
			"Course Code": row.CourseCode,
			"Course Name": row.CourseName,
			"Professor":   strings.TrimSpace(row.ProfessorFirstName + " " + row.ProfessorLastName),
			"Room":        row.RoomNumber,
			"Capacity":    fmt.Sprintf("%d", row.RoomCapacity),
		})
	}
	return dataset
}
