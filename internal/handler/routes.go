package handler

import (
	"github.com/gin-gonic/gin"
)

// Handlers bundles everything RegisterRoutes needs.
type Handlers struct {
	Schedules   *ScheduleHandler
	Generator   *ScheduleGeneratorHandler
	Courses     *CourseHandler
	Professors  *ProfessorHandler
	Classrooms  *ClassroomHandler
	Students    *StudentHandler
	Enrollments *EnrollmentHandler
	Metrics     *MetricsHandler

	ExportEnabled bool
}

// RegisterRoutes mounts every API endpoint under the given prefix.
// Static segments (term, export, generate) are registered alongside the
// :id parameter; gin resolves static routes before parameters.
func RegisterRoutes(r *gin.Engine, prefix string, h Handlers) {
	r.GET("/health", h.Metrics.Health)
	r.GET("/ready", h.Metrics.Ready)
	r.GET("/metrics", h.Metrics.Prometheus)

	api := r.Group(prefix)

	schedules := api.Group("/schedules")
	{
		schedules.GET("", h.Schedules.List)
		schedules.POST("", h.Schedules.Create)
		schedules.POST("/generate", h.Generator.Generate)
		schedules.GET("/term", h.Schedules.ByTerm)
		if h.ExportEnabled {
			schedules.GET("/export", h.Schedules.Export)
		}
		schedules.GET("/:id", h.Schedules.Get)
		schedules.DELETE("/:id", h.Schedules.Delete)
	}

	courses := api.Group("/courses")
	{
		courses.GET("", h.Courses.List)
		courses.POST("", h.Courses.Create)
		courses.GET("/:id", h.Courses.Get)
		courses.PUT("/:id", h.Courses.Update)
		courses.DELETE("/:id", h.Courses.Delete)
		courses.GET("/:id/schedules", h.Schedules.ByCourse)
	}

	professors := api.Group("/professors")
	{
		professors.GET("", h.Professors.List)
		professors.POST("", h.Professors.Create)
		professors.GET("/:id", h.Professors.Get)
		professors.PUT("/:id", h.Professors.Update)
		professors.DELETE("/:id", h.Professors.Delete)
		professors.GET("/:id/schedules", h.Schedules.ByProfessor)
	}

	classrooms := api.Group("/classrooms")
	{
		classrooms.GET("", h.Classrooms.List)
		classrooms.POST("", h.Classrooms.Create)
		classrooms.GET("/:id", h.Classrooms.Get)
		classrooms.PUT("/:id", h.Classrooms.Update)
		classrooms.DELETE("/:id", h.Classrooms.Delete)
		classrooms.GET("/:id/schedules", h.Schedules.ByClassroom)
	}

	students := api.Group("/students")
	{
		students.GET("", h.Students.List)
		students.POST("", h.Students.Create)
		students.GET("/:id", h.Students.Get)
		students.PUT("/:id", h.Students.Update)
		students.DELETE("/:id", h.Students.Delete)
	}

	enrollments := api.Group("/enrollments")
	{
		enrollments.GET("", h.Enrollments.List)
		enrollments.POST("", h.Enrollments.Create)
		enrollments.GET("/:id", h.Enrollments.Get)
		enrollments.PUT("/:id", h.Enrollments.Update)
		enrollments.DELETE("/:id", h.Enrollments.Delete)
	}
}
