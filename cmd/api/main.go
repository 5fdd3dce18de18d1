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

	"github.com/cmlabs-hris/office-portal-go/internal/config"
	"github.com/cmlabs-hris/office-portal-go/internal/domain/attendance"
	appHTTP "github.com/cmlabs-hris/office-portal-go/internal/handler/http"
	"github.com/cmlabs-hris/office-portal-go/internal/pkg/clock"
	"github.com/cmlabs-hris/office-portal-go/internal/pkg/cron"
	"github.com/cmlabs-hris/office-portal-go/internal/pkg/database"
	"github.com/cmlabs-hris/office-portal-go/internal/pkg/email"
	"github.com/cmlabs-hris/office-portal-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/office-portal-go/internal/pkg/oauth"
	"github.com/cmlabs-hris/office-portal-go/internal/pkg/sse"
	"github.com/cmlabs-hris/office-portal-go/internal/repository/postgresql"
	assetService "github.com/cmlabs-hris/office-portal-go/internal/service/asset"
	attendanceService "github.com/cmlabs-hris/office-portal-go/internal/service/attendance"
	serviceAuth "github.com/cmlabs-hris/office-portal-go/internal/service/auth"
	exceptionService "github.com/cmlabs-hris/office-portal-go/internal/service/exception"
	notificationService "github.com/cmlabs-hris/office-portal-go/internal/service/notification"
	projectService "github.com/cmlabs-hris/office-portal-go/internal/service/project"
	supplyService "github.com/cmlabs-hris/office-portal-go/internal/service/supply"
	userService "github.com/cmlabs-hris/office-portal-go/internal/service/user"
	vacationService "github.com/cmlabs-hris/office-portal-go/internal/service/vacation"
)

const version = "v1.0.0"

func main() {
	if err := run(); err != nil {
		slog.Error("Server exited with error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgreSQLDB(cfg.DatabaseURL())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	policy, err := attendance.NewPolicy(
		cfg.Office.Timezone,
		cfg.Office.StartTime,
		cfg.Office.EndTime,
		cfg.Office.GracePeriodMinutes,
		cfg.Office.RequiredDailyHours,
		cfg.Office.WeekendDays,
	)
	if err != nil {
		return fmt.Errorf("invalid office policy: %w", err)
	}
	clk := clock.Real()

	userRepo := postgresql.NewUserRepository(db)
	refreshTokenRepo := postgresql.NewRefreshTokenRepository(db)
	attendanceRepo := postgresql.NewAttendanceRepository(db)
	overtimeRepo := postgresql.NewOvertimeRepository(db)
	exceptionRepo := postgresql.NewExceptionRepository(db)
	vacationRepo := postgresql.NewVacationRepository(db)
	assetRepo := postgresql.NewAssetRepository(db)
	assignmentRepo := postgresql.NewAssignmentRepository(db)
	assetRequestRepo := postgresql.NewAssetRequestRepository(db)
	supplyRepo := postgresql.NewSupplyRepository(db)
	supplyRequestRepo := postgresql.NewSupplyRequestRepository(db)
	projectRepo := postgresql.NewProjectRepository(db)
	allocationRepo := postgresql.NewAllocationRepository(db)
	dailyUpdateRepo := postgresql.NewDailyUpdateRepository(db)

	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration, cfg.JWT.RefreshExpiration)
	GoogleService := oauth.NewGoogleService(cfg.OAuth2Google.ClientID, cfg.OAuth2Google.ClientSecret, cfg.OAuth2Google.RedirectURL, cfg.OAuth2Google.Scopes)

	emailService, err := email.NewEmailService(cfg.SMTP)
	if err != nil {
		return fmt.Errorf("failed to initialize email service: %w", err)
	}
	hub := sse.NewHub()
	notifier := notificationService.NewNotificationService(userRepo, emailService, hub, notificationService.Config{
		PortalURL: cfg.App.FrontendURL,
	})
	defer notifier.Close()

	authSvc := serviceAuth.NewAuthService(db, userRepo, refreshTokenRepo, JWTService)
	userSvc := userService.NewUserService(db, userRepo, refreshTokenRepo)
	attendanceSvc := attendanceService.NewAttendanceService(db, attendanceRepo, overtimeRepo, userRepo, vacationRepo, notifier, clk, policy)
	exceptionSvc := exceptionService.NewExceptionService(exceptionRepo, userRepo, notifier, clk, policy.Location)
	vacationSvc := vacationService.NewVacationService(db, vacationRepo, userRepo, notifier, clk)
	assetSvc := assetService.NewAssetService(db, assetRepo, assignmentRepo, assetRequestRepo, userRepo, notifier, clk, policy.Location)
	supplySvc := supplyService.NewSupplyService(db, supplyRepo, supplyRequestRepo, userRepo, notifier, clk)
	projectSvc := projectService.NewProjectService(projectRepo, allocationRepo, dailyUpdateRepo, userRepo, notifier, clk, policy.Location)

	router := appHTTP.NewRouter(
		appHTTP.RouterConfig{
			AllowedOrigins: cfg.App.AllowedOrigins,
			Env:            cfg.App.Env,
			Version:        version,
			LogLevel:       cfg.SlogLevel(),
		},
		JWTService,
		appHTTP.Handlers{
			Auth:       appHTTP.NewAuthHandler(JWTService, authSvc, userSvc, GoogleService, cfg.App.FrontendURL),
			User:       appHTTP.NewUserHandler(userSvc),
			Attendance: appHTTP.NewAttendanceHandler(attendanceSvc),
			Exception:  appHTTP.NewExceptionHandler(exceptionSvc),
			Vacation:   appHTTP.NewVacationHandler(vacationSvc),
			Asset:      appHTTP.NewAssetHandler(assetSvc),
			Supply:     appHTTP.NewSupplyHandler(supplySvc),
			Project:    appHTTP.NewProjectHandler(projectSvc),
			Event:      appHTTP.NewEventHandler(notifier, JWTService),
		},
	)

	scheduler := cron.NewScheduler(ctx)
	cron.NewAttendanceJobs(attendanceSvc).RegisterJobs(scheduler)
	scheduler.Start()
	defer scheduler.Stop()

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	// Shutdown does not wait on hijacked or streaming requests by itself.
	server.RegisterOnShutdown(hub.CloseAll)

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("Server running", "addr", server.Addr, "env", cfg.App.Env)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
	}

	slog.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
