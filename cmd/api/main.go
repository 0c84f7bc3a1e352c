package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/cmlabs-hris/attendance-summary-go/internal/config"
	appHTTP "github.com/cmlabs-hris/attendance-summary-go/internal/handler/http"
	"github.com/cmlabs-hris/attendance-summary-go/internal/pkg/cron"
	"github.com/cmlabs-hris/attendance-summary-go/internal/pkg/database"
	"github.com/cmlabs-hris/attendance-summary-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/attendance-summary-go/internal/pkg/sse"
	"github.com/cmlabs-hris/attendance-summary-go/internal/pkg/storage"
	"github.com/cmlabs-hris/attendance-summary-go/internal/repository/postgresql"
	calendarService "github.com/cmlabs-hris/attendance-summary-go/internal/service/calendar"
	"github.com/cmlabs-hris/attendance-summary-go/internal/service/file"
	leaveService "github.com/cmlabs-hris/attendance-summary-go/internal/service/leave"
	summaryService "github.com/cmlabs-hris/attendance-summary-go/internal/service/summary"
)

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		return
	}

	logLevel := parseLogLevel(cfg.App.LogLevel)
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})).With(
		slog.String("app", "attendance-summary"),
		slog.String("env", cfg.App.Env),
	))

	dsn := cfg.DatabaseURL()
	db, err := database.NewPostgreSQLDB(dsn)
	if err != nil {
		fmt.Println("Error connecting to database:", err)
		return
	}
	defer db.Close()

	transactor := postgresql.NewTransactor(db)
	summaryRepo := postgresql.NewAttendanceSummaryRepository(db)
	attendanceRepo := postgresql.NewAttendanceRepository(db)
	employeeRepo := postgresql.NewEmployeeRepository(db)
	holidayRepo := postgresql.NewHolidayRepository(db)
	shiftRepo := postgresql.NewShiftRepository(db)
	leaveRequestRepo := postgresql.NewLeaveRequestRepository(db)

	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)

	var fileStorage storage.FileStorage
	switch cfg.Storage.Type {
	case "local":
		fileStorage, err = storage.NewLocalStorage(cfg.Storage.BasePath)
		if err != nil {
			log.Fatal("Failed to initialize local storage:", err)
		}
	default:
		log.Fatal("Unsupported storage types: ", cfg.Storage.Type)
	}
	fileService := file.NewFileService(fileStorage)

	calendarSvc := calendarService.NewCalendarService(holidayRepo, shiftRepo)
	leaveSvc := leaveService.NewLeaveService(leaveRequestRepo)
	eventHub := sse.NewHub()
	summarySvc := summaryService.NewSummaryService(
		transactor,
		summaryRepo,
		attendanceRepo,
		employeeRepo,
		calendarSvc,
		leaveSvc,
		fileService,
		eventHub,
	)

	summaryHandler := appHTTP.NewAttendanceSummaryHandler(summarySvc, cfg.Summary.MaxImportSize)
	calendarHandler := appHTTP.NewCalendarHandler(calendarSvc)
	leaveHandler := appHTTP.NewLeaveHandler(leaveSvc)

	router := appHTTP.NewRouter(
		appHTTP.RouterConfig{
			AllowedOrigins: cfg.App.AllowedOrigins,
			Env:            cfg.App.Env,
			LogLevel:       logLevel,
		},
		JWTService,
		summaryHandler,
		calendarHandler,
		leaveHandler,
	)

	var scheduler *cron.Scheduler
	if cfg.Summary.AutoRecalcInterval > 0 {
		scheduler = cron.NewScheduler()
		summaryJobs := cron.NewSummaryJobs(summaryRepo, summarySvc)
		if err := summaryJobs.RegisterJobs(scheduler, cfg.Summary.AutoRecalcInterval); err != nil {
			log.Fatal("Failed to register cron jobs:", err)
		}
		scheduler.Start()
	}

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("Server running", "addr", "http://localhost"+server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server error: ", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Shutting down server...")
	if scheduler != nil {
		scheduler.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}
	slog.Info("Server stopped")
}
