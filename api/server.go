/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for frontend
  5. Authenticated + RequirePermission on everything except /api/login

ROUTE GROUPS:
  /api/login            Session token
  /api/clients/*        Clients            (read: any role, write: clients)
  /api/items/*          Stock materials    (read: any role, write: items)
  /api/daily/*          Daily entry        (daily_entry)
  /api/drafts/*         Autosaved drafts   (drafts)
  /api/reports/*        Reports            (reports)
  /api/jobs/*           Accounts billing   (billing)
  /api/dashboard/*      Cost dashboard     (dashboard)
  /api/scenarios/*      Demo data          (scenarios, Admin only)
  /*                    Static files (frontend)

SEE ALSO:
  - handlers.go: Handler implementations
  - middleware.go: Token and permission checks
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/warp/print-tracker/auth"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Post("/login", h.Login)

		r.Group(func(r chi.Router) {
			r.Use(h.Authenticated)

			r.Route("/clients", func(r chi.Router) {
				r.Get("/", h.ListClients)
				r.With(RequirePermission(auth.PermClients)).Post("/", h.CreateClient)
				r.With(RequirePermission(auth.PermClients)).Put("/{id}", h.UpdateClient)
			})

			r.Route("/items", func(r chi.Router) {
				r.Get("/", h.ListItems)
				r.Get("/low", h.ListLowStock)
				r.Group(func(r chi.Router) {
					r.Use(RequirePermission(auth.PermItems))
					r.Post("/", h.CreateItem)
					r.Put("/{sku}", h.UpdateItem)
					r.Post("/{sku}/stock", h.AdjustStock)
				})
			})

			r.Route("/daily/{date}", func(r chi.Router) {
				r.Use(RequirePermission(auth.PermDailyEntry))
				r.Get("/", h.GetDailyEntry)
				r.Post("/", h.SaveDailyEntry)
				r.Get("/previous", h.GetPreviousHeader)
				r.Get("/export.csv", h.ExportDailyCSV)
				r.Get("/export.pdf", h.ExportDailyPDF)
			})

			r.Route("/drafts", func(r chi.Router) {
				r.Use(RequirePermission(auth.PermDrafts))
				r.Get("/", h.ListDrafts)
				r.Get("/{date}", h.GetDraft)
				r.Put("/{date}", h.SaveDraft)
				r.Delete("/{date}", h.DeleteDraft)
			})

			r.Route("/reports", func(r chi.Router) {
				r.Use(RequirePermission(auth.PermReports))
				r.Get("/", h.GetReport)
				r.Get("/export.csv", h.ExportReportCSV)
			})

			r.Route("/jobs", func(r chi.Router) {
				r.Use(RequirePermission(auth.PermBilling))
				r.Get("/", h.ListJobs)
				r.Get("/export.csv", h.ExportJobsCSV)
				r.Put("/{id}/billing", h.UpdateBilling)
			})

			r.Route("/dashboard", func(r chi.Router) {
				r.Use(RequirePermission(auth.PermDashboard))
				r.Get("/", h.GetDashboard)
				r.Get("/export.csv", h.ExportDashboardCSV)
			})

			r.Route("/scenarios", func(r chi.Router) {
				r.Use(RequirePermission(auth.PermScenarios))
				r.Get("/", h.ListScenarios)
				r.Get("/current", h.GetCurrentScenario)
				r.Post("/load", h.LoadScenario)
			})
		})
	})

	// Serve static files (frontend build)
	staticDir := "./web/dist"
	if _, err := os.Stat(staticDir); os.IsNotExist(err) {
		exe, _ := os.Executable()
		staticDir = filepath.Join(filepath.Dir(exe), "web", "dist")
	}

	if _, err := os.Stat(staticDir); err == nil {
		fileServer := http.FileServer(http.Dir(staticDir))
		r.Get("/*", func(w http.ResponseWriter, r *http.Request) {
			fullPath := filepath.Join(staticDir, r.URL.Path)
			if _, err := os.Stat(fullPath); os.IsNotExist(err) {
				// SPA routing: serve index.html
				http.ServeFile(w, r, filepath.Join(staticDir, "index.html"))
				return
			}
			fileServer.ServeHTTP(w, r)
		})
	} else {
		r.Get("/*", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			w.Write([]byte(`<!DOCTYPE html>
<html>
<head><title>Print Production Tracker</title></head>
<body style="font-family: system-ui; max-width: 800px; margin: 50px auto; padding: 20px;">
<h1>Print Production Tracker API</h1>
<p>The frontend is not built. Log in with <code>POST /api/login</code> and send the token as <code>Authorization: Bearer &lt;token&gt;</code>.</p>
<h2>API Endpoints</h2>
<ul>
<li>/api/daily/{date} - Daily production sheet</li>
<li>/api/items - Stock materials</li>
<li>/api/jobs - Accounts billing</li>
<li>/api/reports - Production reports</li>
<li>/api/dashboard - Cost dashboard</li>
</ul>
</body>
</html>`))
		})
	}

	return r
}
