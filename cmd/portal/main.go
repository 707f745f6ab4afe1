package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/greenfield-academy/portal/internal/handler"
	"github.com/greenfield-academy/portal/internal/notify"
	"github.com/greenfield-academy/portal/internal/repository"
	"github.com/greenfield-academy/portal/internal/router"
	"github.com/greenfield-academy/portal/internal/scheduler"
	"github.com/greenfield-academy/portal/internal/service"
	"github.com/greenfield-academy/portal/pkg/cache"
	"github.com/greenfield-academy/portal/pkg/config"
	"github.com/greenfield-academy/portal/pkg/database"
	"github.com/greenfield-academy/portal/pkg/export"
	"github.com/greenfield-academy/portal/pkg/jobs"
	"github.com/greenfield-academy/portal/pkg/logger"
)

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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		logr.Fatal("failed to apply migrations", zap.Error(err))
	}

	rdb, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer rdb.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Repositories.
	userRepo := repository.NewUserRepository(db)
	teacherRepo := repository.NewTeacherRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	parentRepo := repository.NewParentRepository(db)
	classRepo := repository.NewClassRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	gradeRepo := repository.NewGradeRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	announcementRepo := repository.NewAnnouncementRepository(db)
	eventRepo := repository.NewEventRepository(db)
	cacheRepo := repository.NewCacheRepository(rdb, logr)

	// Services.
	metricsSvc := service.NewMetricsService()
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Dashboard.CacheTTL, logr)

	authSvc := service.NewAuthService(userRepo, nil, logr, service.AuthConfig{
		Secret:      cfg.Session.Secret,
		TTL:         cfg.Session.TTL,
		RememberTTL: cfg.Session.RememberTTL,
		Issuer:      "portal",
	})
	userSvc := service.NewUserService(userRepo, cacheSvc, nil, logr)

	dashboardSvc := service.NewDashboardService(service.DashboardServiceParams{
		Users:         userRepo,
		Classes:       classRepo,
		Teachers:      teacherRepo,
		Students:      studentRepo,
		Parents:       parentRepo,
		Assignments:   assignmentRepo,
		Announcements: announcementRepo,
		Events:        eventRepo,
		Cache:         cacheSvc,
		Logger:        logr,
	})

	classSvc := service.NewClassService(service.ClassServiceParams{
		Classes:     classRepo,
		Teachers:    teacherRepo,
		Students:    studentRepo,
		Parents:     parentRepo,
		Users:       userRepo,
		Assignments: assignmentRepo,
		Grades:      gradeRepo,
		Audit:       userRepo,
		Cache:       cacheSvc,
		Exporter:    export.NewCSVExporter(),
		Logger:      logr,
	})

	assignmentSvc := service.NewAssignmentService(assignmentRepo, classRepo, teacherRepo, studentRepo, userRepo, logr)
	gradeSvc := service.NewGradeService(gradeRepo, classRepo, teacherRepo, studentRepo, userRepo, export.NewPDFExporter(), logr)
	attendanceSvc := service.NewAttendanceService(attendanceRepo, teacherRepo, classRepo, userRepo, logr)
	parentSvc := service.NewParentService(parentRepo, studentRepo, classRepo, gradeRepo, attendanceRepo, logr)
	announcementSvc := service.NewAnnouncementService(announcementRepo, eventRepo, userRepo, logr)

	notifier, err := notify.New(cfg.Notify, logr)
	if err != nil {
		logr.Fatal("failed to build notifier", zap.Error(err))
	}

	// The reminder queue drains into the maintenance service, which is
	// also the one enqueueing, so wire the handler through a closure.
	var maintenanceSvc *service.MaintenanceService
	queue := jobs.NewQueue("reminders", func(ctx context.Context, job jobs.Job) error {
		return maintenanceSvc.DeliverReminder(ctx, job)
	}, jobs.QueueConfig{
		Workers:    cfg.Scheduler.QueueWorkers,
		MaxRetries: cfg.Scheduler.QueueMaxRetries,
		RetryDelay: cfg.Scheduler.QueueRetryDelay,
		Logger:     logr,
	})
	maintenanceSvc = service.NewMaintenanceService(
		attendanceRepo,
		assignmentRepo,
		queue,
		notifier,
		metricsSvc,
		cfg.Scheduler.ReminderWindow,
		logr,
	)
	queue.Start(ctx)

	// Seed the default admin so a fresh install can sign in.
	bootCtx, cancelBoot := context.WithTimeout(ctx, 10*time.Second)
	if err := userSvc.EnsureDefaultAdmin(bootCtx, cfg.Bootstrap.AdminUsername, cfg.Bootstrap.AdminEmail, cfg.Bootstrap.AdminPassword); err != nil {
		cancelBoot()
		logr.Fatal("failed to seed default admin", zap.Error(err))
	}
	cancelBoot()

	sched := scheduler.New(cfg.Scheduler.TickInterval, metricsSvc, logr)
	sched.Add("attendance_sweep", cfg.Scheduler.AttendanceSweep, func(ctx context.Context) error {
		_, err := maintenanceSvc.AttendanceSweep(ctx)
		return err
	})
	sched.Add("reminder_sweep", cfg.Scheduler.ReminderSweep, func(ctx context.Context) error {
		_, err := maintenanceSvc.ReminderSweep(ctx)
		return err
	})
	if cfg.Scheduler.Enabled {
		sched.Start(ctx)
	}

	engine := router.New(cfg, logr, authSvc, metricsSvc, router.Handlers{
		Auth:          handler.NewAuthHandler(authSvc, cfg.Session),
		Dashboard:     handler.NewDashboardHandler(dashboardSvc),
		Users:         handler.NewUserHandler(userSvc),
		Classes:       handler.NewClassHandler(classSvc),
		Announcements: handler.NewAnnouncementHandler(announcementSvc),
		Teacher:       handler.NewTeacherHandler(classSvc, assignmentSvc, gradeSvc),
		Student:       handler.NewStudentHandler(gradeSvc, assignmentSvc),
		Parent:        handler.NewParentHandler(parentSvc),
		Attendance:    handler.NewAttendanceHandler(attendanceSvc),
		Metrics:       handler.NewMetricsHandler(metricsSvc, db, rdb),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Error("server failed", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Warn("http shutdown incomplete", zap.Error(err))
	}

	if cfg.Scheduler.Enabled {
		sched.Stop()
	}
	queue.Stop()

	logr.Info("goodbye")
}
