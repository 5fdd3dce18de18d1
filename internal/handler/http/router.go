package http

import (
	"log/slog"
	"os"

	"github.com/cmlabs-hris/office-portal-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/office-portal-go/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

// RouterConfig carries the deployment settings the router needs.
type RouterConfig struct {
	AllowedOrigins []string
	Env            string
	Version        string
	LogLevel       slog.Level
}

type Handlers struct {
	Auth       AuthHandler
	User       UserHandler
	Attendance AttendanceHandler
	Exception  ExceptionHandler
	Vacation   VacationHandler
	Asset      AssetHandler
	Supply     SupplyHandler
	Project    ProjectHandler
	Event      EventHandler
}

func NewRouter(cfg RouterConfig, JWTService jwt.Service, h Handlers) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(cfg.Env != "development")
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:       cfg.LogLevel,
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "office-portal"),
		slog.String("version", cfg.Version),
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

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  cfg.LogLevel,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Route("/api/v1", func(r chi.Router) {

		r.Route("/auth", func(r chi.Router) {
			r.Post("/refresh", h.Auth.RefreshToken)
			r.Post("/logout", h.Auth.Logout)
			r.Route("/oauth/callback", func(r chi.Router) {
				r.Get("/google", h.Auth.OAuthCallbackGoogle)
			})

			r.Route("/login", func(r chi.Router) {
				r.Post("/", h.Auth.Login)
				r.Route("/oauth", func(r chi.Router) {
					r.Get("/google", h.Auth.LoginWithGoogle)
				})
			})
		})

		// Authenticated by the stream token in the query string.
		r.Get("/events/stream", h.Event.Stream)

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired)

			r.Get("/auth/me", h.Auth.Me)
			r.Post("/auth/stream-token", h.Auth.StreamToken)

			r.Route("/users", func(r chi.Router) {
				r.Use(middleware.AdminOnly)
				r.Get("/", h.User.List)
				r.Post("/", h.User.Create)
				r.Get("/{id}", h.User.Get)
				r.Put("/{id}", h.User.Update)
				r.Delete("/{id}", h.User.Deactivate)
			})

			r.Route("/attendance", func(r chi.Router) {
				r.Get("/today", h.Attendance.Today)
				r.Get("/my", h.Attendance.GetMyAttendance)
				r.Post("/clock-in", h.Attendance.ClockIn)
				r.Post("/break-in", h.Attendance.BreakIn)
				r.Post("/break-out", h.Attendance.BreakOut)
				r.Post("/clock-out", h.Attendance.ClockOut)
				r.Route("/overtime", func(r chi.Router) {
					r.Get("/my", h.Attendance.GetMyOvertime)
					r.Post("/start", h.Attendance.StartOvertime)
					r.Post("/end", h.Attendance.EndOvertime)

					r.With(middleware.AdminOnly).Get("/", h.Attendance.ListOvertime)
				})
				r.Get("/{id}", h.Attendance.Get)

				r.With(middleware.AdminOnly).Get("/", h.Attendance.List)
			})

			r.Route("/exceptions", func(r chi.Router) {
				r.Post("/", h.Exception.Submit)
				r.Get("/my", h.Exception.ListMine)
				r.Get("/{id}", h.Exception.Get)

				// Admin only
				r.Group(func(r chi.Router) {
					r.Use(middleware.AdminOnly)
					r.Get("/", h.Exception.List)
					r.Post("/{id}/approve", h.Exception.Approve)
					r.Post("/{id}/reject", h.Exception.Reject)
				})
			})

			r.Route("/vacations", func(r chi.Router) {
				r.Post("/", h.Vacation.Create)
				r.Get("/my", h.Vacation.ListMine)
				r.Get("/{id}", h.Vacation.Get)
				r.Get("/{id}/history", h.Vacation.History)
				r.Post("/{id}/resubmit", h.Vacation.Resubmit)
				r.Post("/{id}/cancel", h.Vacation.Cancel)
				r.Delete("/{id}", h.Vacation.Delete)

				// Admin only
				r.Group(func(r chi.Router) {
					r.Use(middleware.AdminOnly)
					r.Get("/", h.Vacation.List)
					r.Post("/{id}/approve", h.Vacation.Approve)
					r.Post("/{id}/reject", h.Vacation.Reject)
				})
			})

			r.Route("/assets", func(r chi.Router) {
				r.Route("/assignments", func(r chi.Router) {
					r.Get("/my", h.Asset.ListMyAssignments)
					r.Post("/{id}/return", h.Asset.Return)

					r.Group(func(r chi.Router) {
						r.Use(middleware.AdminOnly)
						r.Get("/", h.Asset.ListAssignments)
						r.Post("/", h.Asset.Assign)
					})
				})

				r.Route("/requests", func(r chi.Router) {
					r.Post("/", h.Asset.CreateRequest)
					r.Get("/my", h.Asset.ListMyRequests)
					r.Get("/{id}", h.Asset.GetRequest)

					r.Group(func(r chi.Router) {
						r.Use(middleware.AdminOnly)
						r.Get("/", h.Asset.ListRequests)
						r.Post("/{id}/approve", h.Asset.ApproveRequest)
						r.Post("/{id}/fulfill", h.Asset.FulfillRequest)
						r.Post("/{id}/reject", h.Asset.RejectRequest)
					})
				})

				// Admin only
				r.Group(func(r chi.Router) {
					r.Use(middleware.AdminOnly)
					r.Get("/", h.Asset.List)
					r.Post("/", h.Asset.Create)
					r.Get("/{id}", h.Asset.Get)
					r.Put("/{id}", h.Asset.Update)
					r.Delete("/{id}", h.Asset.Delete)
				})
			})

			r.Route("/supplies", func(r chi.Router) {
				r.Get("/", h.Supply.List)

				r.Route("/requests", func(r chi.Router) {
					r.Post("/", h.Supply.CreateRequest)
					r.Get("/my", h.Supply.ListMyRequests)
					r.Get("/{id}", h.Supply.GetRequest)

					r.Group(func(r chi.Router) {
						r.Use(middleware.AdminOnly)
						r.Get("/", h.Supply.ListRequests)
						r.Post("/{id}/approve", h.Supply.ApproveRequest)
						r.Post("/{id}/reject", h.Supply.RejectRequest)
						r.Post("/{id}/fulfill", h.Supply.FulfillRequest)
					})
				})

				r.Get("/{id}", h.Supply.Get)

				// Admin only
				r.Group(func(r chi.Router) {
					r.Use(middleware.AdminOnly)
					r.Get("/low-stock", h.Supply.LowStock)
					r.Post("/", h.Supply.Create)
					r.Put("/{id}", h.Supply.Update)
					r.Delete("/{id}", h.Supply.Delete)
				})
			})

			r.Route("/projects", func(r chi.Router) {
				r.Get("/allocations/my", h.Project.ListMyAllocations)

				r.Route("/updates", func(r chi.Router) {
					r.Post("/", h.Project.SubmitDailyUpdate)
					r.Get("/my", h.Project.ListMyDailyUpdates)
					r.Put("/{id}", h.Project.EditDailyUpdate)

					r.With(middleware.AdminOnly).Get("/", h.Project.ListDailyUpdates)
				})

				// Admin only
				r.Group(func(r chi.Router) {
					r.Use(middleware.AdminOnly)
					r.Get("/", h.Project.List)
					r.Post("/", h.Project.Create)
					r.Get("/report", h.Project.Report)
					r.Get("/report/export", h.Project.ExportReport)
					r.Get("/allocations", h.Project.ListAllocations)
					r.Put("/allocations/{id}", h.Project.UpdateAllocation)
					r.Delete("/allocations/{id}", h.Project.DeactivateAllocation)
					r.Get("/{id}", h.Project.Get)
					r.Put("/{id}", h.Project.Update)
					r.Delete("/{id}", h.Project.Delete)
					r.Get("/{id}/allocations", h.Project.ListAllocations)
					r.Post("/{id}/allocations", h.Project.CreateAllocation)
				})
			})
		})
	})
	return r
}
