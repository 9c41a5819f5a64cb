package http

import (
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"

	"github.com/kintai-cloud/kintai-backend-go/internal/config"
	"github.com/kintai-cloud/kintai-backend-go/internal/handler/http/middleware"
	"github.com/kintai-cloud/kintai-backend-go/internal/pkg/jwt"
)

func NewRouter(
	cfg *config.Config,
	verifier *jwt.Verifier,
	attendanceHandler AttendanceHandler,
	staffHandler StaffHandler,
	holidayHandler HolidayHandler,
	policyHandler PolicyHandler,
) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(false)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "kintai-backend"),
		slog.String("version", "v1.0.0"),
		slog.String("env", cfg.App.Env),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.App.FrontendURL},
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		MaxAge:           300,
	}))

	r.Use(middleware.RequestID)

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelDebug,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Route("/api/v1", func(r chi.Router) {

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(verifier.JWTAuth()))
			r.Use(middleware.AuthRequired)

			r.Route("/attendances", func(r chi.Router) {
				r.Post("/clock-in", attendanceHandler.ClockIn)
				r.Post("/clock-out", attendanceHandler.ClockOut)
				r.Post("/rest-start", attendanceHandler.RestStart)
				r.Post("/rest-end", attendanceHandler.RestEnd)

				r.Get("/me", attendanceHandler.GetDay)
				r.Get("/me/month", attendanceHandler.GetMonth)

				r.Post("/{id}/change-requests", attendanceHandler.SubmitChangeRequest)

				// Approver or admin
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireApprover)
					r.Get("/staff/{staffId}/month", attendanceHandler.GetStaffMonth)
					r.Get("/change-requests/pending", attendanceHandler.ListPending)
					r.Put("/{id}", attendanceHandler.Update)
					r.Post("/{id}/approve", attendanceHandler.Approve)
					r.Post("/{id}/reject", attendanceHandler.Reject)
				})
			})

			r.Route("/staffs", func(r chi.Router) {
				r.Get("/{id}", staffHandler.Get)

				// Admin only
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireAdmin)
					r.Get("/", staffHandler.List)
					r.Post("/", staffHandler.Create)
					r.Put("/{id}", staffHandler.Update)
					r.Delete("/{id}", staffHandler.Delete)
				})
			})

			r.Route("/holidays/{kind}", func(r chi.Router) {
				r.Get("/", holidayHandler.List)

				// Admin only
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireAdmin)
					r.Post("/", holidayHandler.Create)
					r.Put("/{id}", holidayHandler.Update)
					r.Delete("/{id}", holidayHandler.Delete)
				})
			})

			r.Route("/policy", func(r chi.Router) {
				r.Get("/", policyHandler.Get)

				// Admin only
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireAdmin)
					r.Put("/", policyHandler.Update)
				})
			})
		})
	})
	return r
}
