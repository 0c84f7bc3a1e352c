package http

import (
	"log/slog"
	"os"

	"github.com/cmlabs-hris/attendance-summary-go/internal/domain/user"
	"github.com/cmlabs-hris/attendance-summary-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/attendance-summary-go/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

type RouterConfig struct {
	AllowedOrigins []string
	Env            string
	LogLevel       slog.Level
}

func NewRouter(
	cfg RouterConfig,
	JWTService jwt.Service,
	summaryHandler AttendanceSummaryHandler,
	calendarHandler CalendarHandler,
	leaveHandler LeaveHandler,
) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(cfg.Env != "production")
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
		Level:       cfg.LogLevel,
	})).With(
		slog.String("app", "attendance-summary"),
		slog.String("version", "v1.0.0"),
		slog.String("env", cfg.Env),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link", "Content-Disposition"},
		MaxAge:           300,
	}))

	r.Use(chiMiddleware.RequestID)
	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  cfg.LogLevel,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Route("/api/v1", func(r chi.Router) {

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired)
			r.Use(middleware.RequireTenant)

			r.Route("/attendance-summaries", func(r chi.Router) {
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionSummaryView))
					r.Get("/", summaryHandler.List)
					r.Get("/exists", summaryHandler.Exists)
					r.Get("/export", summaryHandler.Export)
					r.Get("/events", summaryHandler.Events)
					r.Get("/{id}", summaryHandler.Get)
				})

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionSummaryManage))
					r.Post("/build", summaryHandler.Build)
					r.Post("/recalculate", summaryHandler.Recalculate)
					r.Post("/import", summaryHandler.Import)
					r.Put("/{id}", summaryHandler.Update)
					r.Delete("/{id}", summaryHandler.Delete)
				})
			})

			r.Route("/calendar", func(r chi.Router) {
				r.Use(middleware.RequirePermission(user.PermissionCalendarView))
				r.Get("/non-working-days", calendarHandler.GetNonWorkingDays)
			})

			r.Route("/leave", func(r chi.Router) {
				r.Use(middleware.RequirePermission(user.PermissionLeaveViewAll))
				r.Get("/status-map", leaveHandler.GetStatusMap)
			})
		})
	})
	return r
}
