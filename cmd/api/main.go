package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	_ "github.com/noah-isme/iut-charges-api/api/swagger"
	"github.com/noah-isme/iut-charges-api/internal/handler"
	"github.com/noah-isme/iut-charges-api/internal/repository"
	"github.com/noah-isme/iut-charges-api/internal/router"
	"github.com/noah-isme/iut-charges-api/internal/service"
	"github.com/noah-isme/iut-charges-api/pkg/cache"
	"github.com/noah-isme/iut-charges-api/pkg/config"
	"github.com/noah-isme/iut-charges-api/pkg/database"
	"github.com/noah-isme/iut-charges-api/pkg/jobs"
	"github.com/noah-isme/iut-charges-api/pkg/logger"
)

// @title IUT Charges API
// @version 1.0.0
// @description Course-load administration: teachers, statuses, interventions and room bookings.
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(ctx, cfg.Database, logr)
	if err != nil {
		logr.Fatal("database connection failed", zap.Error(err))
	}
	defer db.Close()

	if cfg.Database.MigrateOnStart {
		if err := database.RunMigrations(db.DB, logr); err != nil {
			logr.Fatal("database migration failed", zap.Error(err))
		}
	}

	redisClient, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, report cache disabled", zap.Error(err))
		redisClient = nil
	}

	metrics := service.NewMetricsService()
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	defer cacheRepo.Close() //nolint:errcheck
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Reports.CacheTTL, logr, cfg.Reports.CacheEnabled && redisClient != nil)

	validate := service.NewValidator()
	tx := repository.NewTxManager(db, cfg.Planning.TxMaxRetries, logr)

	users := repository.NewUserRepository(db)
	departments := repository.NewDepartmentRepository(db)
	courses := repository.NewCourseRepository(db)
	statuses := repository.NewTeachingStatusRepository(db)
	teachers := repository.NewTeacherRepository(db)
	rooms := repository.NewRoomRepository(db)
	interventions := repository.NewInterventionRepository(db)
	slots := repository.NewScheduleSlotRepository(db)
	allocations := repository.NewAllocationRepository(db)
	reportsRepo := repository.NewReportRepository(db)

	jobRouter := jobs.NewRouter()
	queue := jobs.NewQueue("reports", jobRouter.Dispatch, jobs.QueueConfig{
		Workers:    cfg.Jobs.Workers,
		MaxRetries: cfg.Jobs.MaxRetries,
		RetryDelay: cfg.Jobs.RetryDelay,
		Logger:     logr,
	})

	authSvc := service.NewAuthService(users, validate, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
	})
	reportSvc := service.NewReportService(reportsRepo, cacheSvc, queue, metrics, service.ReportServiceConfig{
		CacheTTL:    cfg.Reports.CacheTTL,
		DefaultYear: cfg.Planning.DefaultAcademicYear,
	}, logr)
	jobRouter.Handle(service.JobTypeInvalidateReports, reportSvc.HandleInvalidation)
	queue.Start(ctx)
	defer queue.Stop()

	quota := service.NewQuotaValidator(teachers, interventions, logr)
	checker := service.NewConflictChecker(slots, logr)

	interventionSvc := service.NewInterventionService(service.InterventionDeps{
		Repo:        interventions,
		Slots:       slots,
		Teachers:    teachers,
		Courses:     courses,
		Quota:       quota,
		Checker:     checker,
		Tx:          tx,
		Invalidator: reportSvc,
		Metrics:     metrics,
		DefaultYear: cfg.Planning.DefaultAcademicYear,
	}, validate, logr)
	slotSvc := service.NewScheduleSlotService(service.ScheduleSlotDeps{
		Repo:          slots,
		Interventions: interventions,
		Rooms:         rooms,
		Checker:       checker,
		Tx:            tx,
		Metrics:       metrics,
	}, validate, logr)
	teacherSvc := service.NewTeacherService(service.TeacherDeps{
		Repo:        teachers,
		Departments: departments,
		Statuses:    statuses,
		Tx:          tx,
		Reports:     reportSvc,
	}, validate, logr)
	allocationSvc := service.NewAllocationService(allocations, courses, cfg.Planning.DefaultAcademicYear, validate, logr)

	if cfg.Admin.Email != "" && cfg.Admin.Password != "" {
		if _, err := authSvc.EnsureAdmin(ctx, cfg.Admin.Email, cfg.Admin.Password, cfg.Admin.FullName); err != nil {
			logr.Fatal("admin bootstrap failed", zap.Error(err))
		}
	}

	engine := router.Setup(cfg, router.Handlers{
		Auth:           handler.NewAuthHandler(authSvc),
		Metrics:        handler.NewMetricsHandler(metrics, db, logr),
		Departments:    handler.NewDepartmentHandler(service.NewDepartmentService(departments, reportSvc, validate, logr)),
		Courses:        handler.NewCourseHandler(service.NewCourseService(courses, departments, reportSvc, validate, logr)),
		TeachingStatus: handler.NewTeachingStatusHandler(service.NewTeachingStatusService(statuses, reportSvc, validate, logr)),
		Teachers:       handler.NewTeacherHandler(teacherSvc),
		Rooms:          handler.NewRoomHandler(service.NewRoomService(rooms, validate, logr)),
		Interventions:  handler.NewInterventionHandler(interventionSvc),
		ScheduleSlots:  handler.NewScheduleSlotHandler(slotSvc),
		Allocations:    handler.NewAllocationHandler(allocationSvc),
		Reports:        handler.NewReportHandler(reportSvc, service.NewExportService(reportSvc, logr)),
	}, authSvc, metrics, logr)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logr.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("server shutdown failed", zap.Error(err))
	}
	logr.Info("server stopped")
}
