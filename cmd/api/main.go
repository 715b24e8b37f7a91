package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cmlabs-hris/hrm-backend-go/internal/config"
	"github.com/cmlabs-hris/hrm-backend-go/internal/domain/user"
	appHTTP "github.com/cmlabs-hris/hrm-backend-go/internal/handler/http"
	"github.com/cmlabs-hris/hrm-backend-go/internal/pkg/cron"
	"github.com/cmlabs-hris/hrm-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/hrm-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/hrm-backend-go/internal/pkg/logger"
	"github.com/cmlabs-hris/hrm-backend-go/internal/pkg/metrics"
	"github.com/cmlabs-hris/hrm-backend-go/internal/pkg/worktime"
	"github.com/cmlabs-hris/hrm-backend-go/internal/repository/postgresql"
	attendanceService "github.com/cmlabs-hris/hrm-backend-go/internal/service/attendance"
	auditService "github.com/cmlabs-hris/hrm-backend-go/internal/service/audit"
	serviceAuth "github.com/cmlabs-hris/hrm-backend-go/internal/service/auth"
	reportService "github.com/cmlabs-hris/hrm-backend-go/internal/service/report"
	"golang.org/x/sync/errgroup"
)

const (
	appName    = "hrm-attendance"
	appVersion = "v1.0.0"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log := logger.New(logger.Options{
		App:     appName,
		Version: appVersion,
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL(), database.PoolOptions{
		MaxConns: cfg.Database.MaxConns,
		MinConns: cfg.Database.MinConns,
	})
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := postgresql.ApplySchema(ctx, db); err != nil {
			return fmt.Errorf("applying schema: %w", err)
		}
		log.Info("Database schema applied")
	}

	loc := cfg.Location()
	policy := user.NewRolePolicy()
	m := metrics.New()
	calc := worktime.NewCalculator(
		cfg.Attendance.StandardHours,
		worktime.WithLogger(log),
		worktime.WithFailureHook(m.RecordCalculationError),
	)

	userRepo := postgresql.NewUserRepository(db)
	employeeRepo := postgresql.NewEmployeeRepository(db)
	attendanceRepo := postgresql.NewAttendanceRepository(db)
	auditRepo := postgresql.NewAuditRepository(db)
	reportRepo := postgresql.NewReportRepository(db)
	transactor := postgresql.NewTransactor(db)

	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)

	authService := serviceAuth.NewAuthService(userRepo, JWTService)
	attendanceSvc := attendanceService.NewAttendanceService(
		transactor,
		attendanceRepo,
		employeeRepo,
		auditRepo,
		policy,
		calc,
		m,
		loc,
	)
	reportSvc := reportService.NewReportService(reportRepo, policy, calc, loc)
	auditSvc := auditService.NewAuditService(auditRepo, policy, loc)

	router := appHTTP.NewRouter(
		appHTTP.RouterOptions{
			Logger:         log,
			AllowedOrigins: cfg.App.AllowedOrigins,
			Metrics:        m.Handler(),
		},
		JWTService,
		policy,
		appHTTP.NewAuthHandler(authService),
		appHTTP.NewAttendanceHandler(attendanceSvc),
		appHTTP.NewReportHandler(reportSvc),
		appHTTP.NewAuditHandler(auditSvc),
	)

	scheduler := cron.NewScheduler(log)
	cron.NewAttendanceJobs(attendanceSvc, cfg.Attendance.AbsenceSweepInterval, loc).RegisterJobs(scheduler)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("Server running", "addr", server.Addr, "timezone", loc.String())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		scheduler.Start(gctx)
		<-gctx.Done()
		scheduler.Stop()
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
