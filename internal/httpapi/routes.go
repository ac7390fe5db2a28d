package httpapi

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/emplix/emplix/internal/logger"
	"github.com/emplix/emplix/internal/tenant"
)

// Config carries everything the router needs.
type Config struct {
	Logger        zerolog.Logger
	Resolver      *tenant.Resolver
	SessionSecret []byte
	RateLimiter   *RateLimiter

	Auth       *AuthHandler
	Attendance *AttendanceHandler
	Requests   *RequestHandler
	Kudos      *KudoHandler
	Employees  *EmployeeHandler
	Documents  *DocumentHandler
}

// NewRouter builds the full route table. Three middleware tiers: /health
// and signed downloads are open; auth endpoints require a resolved tenant;
// everything else additionally requires a session, with admin routes gated
// on role.
func NewRouter(cfg Config) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("GET /files/{container}/{key}", cfg.Documents.Download)

	tenantOnly := func(h http.HandlerFunc) http.Handler {
		return chain(h, ResolveTenant(cfg.Resolver), cfg.RateLimiter.Middleware)
	}
	protected := func(h http.HandlerFunc) http.Handler {
		return chain(h, ResolveTenant(cfg.Resolver), cfg.RateLimiter.Middleware, Authenticate(cfg.SessionSecret))
	}
	admin := func(h http.HandlerFunc) http.Handler {
		return chain(RequireAdmin(http.HandlerFunc(h)), ResolveTenant(cfg.Resolver), cfg.RateLimiter.Middleware, Authenticate(cfg.SessionSecret))
	}

	mux.Handle("POST /api/auth/login", tenantOnly(cfg.Auth.Login))
	mux.Handle("POST /api/auth/register", tenantOnly(cfg.Auth.Register))
	mux.Handle("POST /api/auth/microsoft", tenantOnly(cfg.Auth.FederatedLogin))
	mux.Handle("GET /api/auth/me", protected(cfg.Auth.Profile))

	mux.Handle("GET /api/attendance/today", protected(cfg.Attendance.Today))
	mux.Handle("POST /api/attendance/check-in", protected(cfg.Attendance.ClockIn))
	mux.Handle("POST /api/attendance/check-out", protected(cfg.Attendance.ClockOut))
	mux.Handle("GET /api/attendance/history", protected(cfg.Attendance.History))
	mux.Handle("GET /api/attendance/report", admin(cfg.Attendance.Report))

	mux.Handle("POST /api/requests", protected(cfg.Requests.Create))
	mux.Handle("GET /api/requests/mine", protected(cfg.Requests.ListMine))
	mux.Handle("GET /api/requests/balance", protected(cfg.Requests.Balance))
	mux.Handle("GET /api/requests", admin(cfg.Requests.ListAll))
	mux.Handle("PATCH /api/requests/{id}/status", admin(cfg.Requests.UpdateStatus))

	mux.Handle("POST /api/kudos", protected(cfg.Kudos.Create))
	mux.Handle("GET /api/kudos/wall", protected(cfg.Kudos.Wall))
	mux.Handle("GET /api/kudos/ranking", admin(cfg.Kudos.Ranking))

	mux.Handle("GET /api/employees", protected(cfg.Employees.List))
	mux.Handle("GET /api/employees/{id}", protected(cfg.Employees.Get))
	mux.Handle("POST /api/employees", admin(cfg.Employees.Create))
	mux.Handle("PATCH /api/employees/{id}/assignment", admin(cfg.Employees.Assign))
	mux.Handle("GET /api/employees/{id}/labor-data", admin(cfg.Employees.GetLaborData))
	mux.Handle("PUT /api/employees/{id}/labor-data", admin(cfg.Employees.UpsertLaborData))

	mux.Handle("GET /api/employees/{id}/documents", protected(cfg.Documents.List))
	mux.Handle("POST /api/employees/{id}/documents", admin(cfg.Documents.Upload))
	mux.Handle("DELETE /api/documents/{id}", admin(cfg.Documents.Delete))

	return logger.Requests(cfg.Logger)(mux)
}
