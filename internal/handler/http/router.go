package http

import (
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/hrm-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/hrm-backend-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/hrm-backend-go/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

// RouterOptions carries the cross-cutting dependencies of the router.
type RouterOptions struct {
	Logger         *slog.Logger
	AllowedOrigins []string
	Metrics        http.Handler
}

func NewRouter(
	opts RouterOptions,
	JWTService jwt.Service,
	policy user.Policy,
	authHandler AuthHandler,
	attendanceHandler AttendanceHandler,
	reportHandler ReportHandler,
	auditHandler AuditHandler,
) *chi.Mux {
	r := chi.NewRouter()

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token", "User-Agent"},
		ExposedHeaders:   []string{"Link", "Content-Disposition"},
		MaxAge:           300,
	}))

	// RealIP stays off: clientinfo.IP reads the forwarding headers itself.

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelInfo,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics)
	}

	can := func(perm user.Permission) func(http.Handler) http.Handler {
		return middleware.RequirePermission(policy, perm)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(chiMiddleware.AllowContentType("application/json"))

		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", authHandler.Login)
		})

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired)

			r.Route("/attendance", func(r chi.Router) {
				r.With(can(user.PermissionAttendanceCreate)).Post("/check-in", attendanceHandler.CheckIn)
				r.With(can(user.PermissionAttendanceCreate)).Post("/check-out", attendanceHandler.CheckOut)

				r.With(can(user.PermissionAttendanceViewOwn)).Get("/", attendanceHandler.List)

				r.Route("/{id}", func(r chi.Router) {
					r.With(can(user.PermissionAttendanceViewOwn)).Get("/", attendanceHandler.Get)
					r.With(can(user.PermissionAttendanceCorrect)).Put("/", attendanceHandler.Update)
					r.With(can(user.PermissionAttendanceDelete)).Delete("/", attendanceHandler.Delete)
				})
			})

			r.Route("/timekeeping", func(r chi.Router) {
				r.Use(can(user.PermissionAttendanceViewAll))
				r.Get("/attendance-records", attendanceHandler.ListTimekeeping)
			})

			r.Route("/reports", func(r chi.Router) {
				r.Use(can(user.PermissionReportsView))
				r.Get("/attendance/export", reportHandler.ExportAttendance)
			})

			r.With(can(user.PermissionAuditView)).Get("/audit-logs", auditHandler.List)
		})
	})
	return r
}
