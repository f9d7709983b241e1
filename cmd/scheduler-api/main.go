package main

import (
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/uniplan/scheduler-api/api/swagger"
	"github.com/uniplan/scheduler-api/internal/handler"
	internalmiddleware "github.com/uniplan/scheduler-api/internal/middleware"
	"github.com/uniplan/scheduler-api/internal/repository"
	"github.com/uniplan/scheduler-api/internal/service"
	"github.com/uniplan/scheduler-api/internal/timetable"
	"github.com/uniplan/scheduler-api/pkg/cache"
	"github.com/uniplan/scheduler-api/pkg/config"
	"github.com/uniplan/scheduler-api/pkg/database"
	"github.com/uniplan/scheduler-api/pkg/logger"
	corsmiddleware "github.com/uniplan/scheduler-api/pkg/middleware/cors"
	reqidmiddleware "github.com/uniplan/scheduler-api/pkg/middleware/requestid"
)

// @title University Scheduler API
// @version 1.0.0
// @description Timetable assignment and conflict detection for courses, professors and classrooms
// @BasePath /api
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := database.RunMigrations(db.DB, logr); err != nil {
			logr.Sugar().Fatalw("failed to run migrations", "error", err)
		}
	}

	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient, err = cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, continuing without cache", "error", err)
			redisClient = nil
		}
	}

	courseRepo := repository.NewCourseRepository(db)
	professorRepo := repository.NewProfessorRepository(db)
	classroomRepo := repository.NewClassroomRepository(db)
	scheduleRepo := repository.NewScheduleRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	index := timetable.NewConflictIndex()
	metrics := service.NewMetricsService()

	var estimator service.CapacityEstimator
	switch cfg.Scheduler.CapacityEstimator {
	case config.CapacityEstimatorEnrollmentCount:
		estimator = service.NewEnrollmentCountEstimator(enrollmentRepo, cfg.Scheduler.DefaultMinCapacity)
	default:
		estimator = service.FixedCapacityEstimator{Min: cfg.Scheduler.DefaultMinCapacity}
	}

	strategy := timetable.Strategy(cfg.Scheduler.Strategy)

	scheduleSvc := service.NewScheduleService(db, scheduleRepo, courseRepo, professorRepo, classroomRepo,
		cacheRepo, index, estimator, metrics, cfg.Scheduler.CacheTTL, nil, logr)
	generatorSvc := service.NewScheduleGeneratorService(db, scheduleRepo, courseRepo, professorRepo, classroomRepo,
		cacheRepo, index, estimator, strategy, metrics, nil, logr)
	courseSvc := service.NewCourseService(courseRepo, scheduleRepo, nil, logr)
	professorSvc := service.NewProfessorService(professorRepo, scheduleRepo, nil, logr)
	classroomSvc := service.NewClassroomService(classroomRepo, scheduleRepo, nil, logr)
	studentSvc := service.NewStudentService(studentRepo, enrollmentRepo, nil, logr)
	enrollmentSvc := service.NewEnrollmentService(enrollmentRepo, scheduleRepo, nil, logr)
	exportSvc := service.NewExportService(scheduleRepo, nil, nil, logr)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metrics))

	handler.RegisterRoutes(r, cfg.APIPrefix, handler.Handlers{
		Schedules:     handler.NewScheduleHandler(scheduleSvc, exportSvc),
		Generator:     handler.NewScheduleGeneratorHandler(generatorSvc),
		Courses:       handler.NewCourseHandler(courseSvc),
		Professors:    handler.NewProfessorHandler(professorSvc),
		Classrooms:    handler.NewClassroomHandler(classroomSvc),
		Students:      handler.NewStudentHandler(studentSvc),
		Enrollments:   handler.NewEnrollmentHandler(enrollmentSvc),
		Metrics:       handler.NewMetricsHandler(metrics),
		ExportEnabled: cfg.Export.Enabled,
	})

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env, "strategy", cfg.Scheduler.Strategy)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
