package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lmittmann/tint"
	"github.com/matkarim/taskdesk/config"
	"github.com/matkarim/taskdesk/internal/email"
	"github.com/matkarim/taskdesk/internal/health"
	"github.com/matkarim/taskdesk/internal/infrastructure/postgres"
	ctxlog "github.com/matkarim/taskdesk/internal/log"
	"github.com/matkarim/taskdesk/internal/metrics"
	"github.com/matkarim/taskdesk/internal/notify"
	"github.com/matkarim/taskdesk/internal/report"
	httptransport "github.com/matkarim/taskdesk/internal/transport/http"
	"github.com/matkarim/taskdesk/internal/transport/http/handler"
	"github.com/matkarim/taskdesk/internal/usecase"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := newLogger(cfg.Env, cfg.SlogLevel())

	if cfg.Env != "local" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		stop()
		log.Fatalf("db: %v", err)
	}
	defer pool.Close()

	logger.Info("db connected")

	departmentRepo := postgres.NewDepartmentRepository(pool)
	projectRepo := postgres.NewProjectRepository(pool)
	taskRepo := postgres.NewTaskRepository(pool)
	settingsRepo := postgres.NewSettingsRepository(pool)
	scheduleRepo := postgres.NewScheduleRepository(pool)
	deliveryRepo := postgres.NewDeliveryRepository(pool)

	departmentHandler := handler.NewDepartmentHandler(usecase.NewDepartmentUsecase(departmentRepo), logger)
	projectHandler := handler.NewProjectHandler(usecase.NewProjectUsecase(projectRepo, departmentRepo), logger)
	taskHandler := handler.NewTaskHandler(usecase.NewTaskUsecase(taskRepo, projectRepo), logger)
	notificationHandler := handler.NewNotificationHandler(
		usecase.NewNotificationUsecase(settingsRepo, scheduleRepo, departmentRepo, deliveryRepo),
		logger,
	)

	metrics.Register()
	checker := health.NewChecker(pool, logger, prometheus.DefaultRegisterer)

	// Notification scheduler: started once at boot, stopped at shutdown.
	// Horizontal scaling is fine: the day-claim in Postgres picks one winner
	// per schedule no matter how many instances tick.
	sender := email.NewSender(cfg.Env, cfg.ResendAPIKey, cfg.ResendFrom, logger)
	executor := notify.NewExecutor(
		report.NewTaskReportGenerator(taskRepo),
		sender,
		deliveryRepo,
		scheduleRepo,
		logger,
	)
	scheduler := notify.NewScheduler(
		settingsRepo,
		scheduleRepo,
		executor,
		logger,
		time.Duration(cfg.TickIntervalSec)*time.Second,
		cfg.MaxConcurrentReports,
	)
	scheduler.Start()
	defer scheduler.Stop()

	srv := http.Server{
		Addr: ":" + cfg.Port,
		Handler: httptransport.NewRouter(logger, httptransport.Handlers{
			Departments:   departmentHandler,
			Projects:      projectHandler,
			Tasks:         taskHandler,
			Notifications: notificationHandler,
		}, []byte(cfg.JWTSecret)),
	}

	metricsSrv := metrics.NewServer(":"+cfg.MetricsPort, checker)

	go func() {
		logger.Info("server started", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server: %v", err)
		}
	}()

	go func() {
		logger.Info("metrics server started", "port", cfg.MetricsPort)
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server", "error", err)
		}
	}()

	<-ctx.Done()
	stop()
	logger.Info("shutting down...")

	scheduler.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", "error", err)
	}
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("metrics server shutdown", "error", err)
	}
}

func newLogger(env string, level slog.Level) *slog.Logger {
	var inner slog.Handler
	if env == "local" {
		inner = tint.NewHandler(os.Stdout, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
		})
	} else {
		inner = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		})
	}
	return slog.New(ctxlog.NewContextHandler(inner))
}
