// Package router sets up all HTTP routes and middleware chains for the
// CMS. It organizes routes into the public page, the public read API, and
// the authenticated editor API.
package router

import (
	"context"
	"io/fs"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"refexcms/internal/handlers"
	"refexcms/internal/httputil"
	"refexcms/internal/middleware"
	"refexcms/internal/models"
	"refexcms/web"
)

// Check reports whether a dependency is reachable.
type Check func(ctx context.Context) error

// Options configures the router beyond its handler groups.
type Options struct {
	Tokens         middleware.TokenVerifier
	AllowedOrigins []string
	// UploadDir is served at /uploads/ when files are stored on local disk.
	UploadDir     string
	LoginLimiter  *middleware.RateLimiter
	UploadLimiter *middleware.RateLimiter
	// Checks are run by GET /ready, keyed by dependency name.
	Checks map[string]Check
}

// Handlers groups the handler sets the router dispatches to.
type Handlers struct {
	RelatedLinks *handlers.RelatedLinks
	Auth         *handlers.Auth
	Upload       *handlers.Upload
	Public       *handlers.Public
}

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(opts Options, h Handlers) chi.Router {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID", "Retry-After"},
		MaxAge:         300,
	}))

	r.Get("/health", healthHandler)
	r.Get("/ready", readyHandler(opts.Checks))

	static, _ := fs.Sub(web.StaticFS, "static")
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(static))))
	if opts.UploadDir != "" {
		r.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(opts.UploadDir))))
	}

	r.Get("/investors/related-links", h.Public.RelatedLinks)

	bearer := middleware.RequireBearer(opts.Tokens)
	canEdit := middleware.RequirePermission(models.PermissionInvestorRelations)

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.NoStore)

		r.Route("/auth", func(r chi.Router) {
			r.With(limit(opts.LoginLimiter)).Post("/login", h.Auth.Login)
			r.With(bearer).Get("/me", h.Auth.Me)
		})

		r.Route("/cms/investors/related-links", func(r chi.Router) {
			r.Get("/", h.RelatedLinks.Get)

			r.Group(func(r chi.Router) {
				r.Use(bearer, canEdit)
				r.Put("/", h.RelatedLinks.Save)
				r.Post("/", h.RelatedLinks.Save)
				r.Get("/findings", h.RelatedLinks.Findings)
				r.Get("/revisions", h.RelatedLinks.Revisions)
				r.Get("/revisions/{id}", h.RelatedLinks.Revision)
				r.Post("/revisions/{id}/restore", h.RelatedLinks.Restore)
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(bearer, canEdit, limit(opts.UploadLimiter))
			r.Post("/upload", h.Upload.Image)
			r.Post("/upload/pdf", h.Upload.PDF)
		})
	})

	return r
}

// limit applies rl, or nothing when rl is nil.
func limit(rl *middleware.RateLimiter) func(http.Handler) http.Handler {
	if rl == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	return rl.Middleware
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

// readyHandler runs every check with a short timeout and answers 503 if
// any fails.
func readyHandler(checks map[string]Check) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		body := make(map[string]string, len(checks)+1)
		for name, check := range checks {
			if err := check(ctx); err != nil {
				body[name] = err.Error()
				status = http.StatusServiceUnavailable
				continue
			}
			body[name] = "ok"
		}
		body["status"] = "ok"
		if status != http.StatusOK {
			body["status"] = "unavailable"
		}
		httputil.RespondJSON(w, status, body)
	}
}
