// internal/web/router.go
//
// Route table and middleware chain.
//
// Public:        POST /signup, POST /login, GET /healthz, GET /metrics.
// Authenticated: account, dashboard, and the three resource groups.
// The upload group manages hosted websites, mirroring the classic
// "upload a zip" flow; redirects and GitHub mappings are plain JSON.
package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/sriox/platform/internal/middleware"
	"github.com/sriox/platform/internal/requestinfo"
)

// NewRouter assembles the chi router around h.
func NewRouter(h *Handler, log *zap.SugaredLogger) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(requestinfo.Enrich)
	r.Use(middleware.AccessLog(log))
	r.Use(middleware.Security)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Post("/signup", h.signup)
	r.Post("/login", h.login)

	r.Group(func(r chi.Router) {
		r.Use(requireAuth(h.accounts))

		r.Get("/me", h.me)
		r.Get("/dashboard", h.dashboard)

		r.Route("/uploads", func(r chi.Router) {
			r.Get("/", h.listWebsites)
			r.Get("/count", h.countWebsites)
			r.Post("/", h.createWebsite)
			r.Put("/{id}", h.updateWebsite)
			r.Delete("/{id}", h.deleteWebsite)
		})

		r.Route("/redirects", func(r chi.Router) {
			r.Get("/", h.listRedirects)
			r.Get("/count", h.countRedirects)
			r.Post("/", h.createRedirect)
			r.Put("/{id}", h.updateRedirect)
			r.Delete("/{id}", h.deleteRedirect)
		})

		r.Route("/github-mappings", func(r chi.Router) {
			r.Get("/", h.listMappings)
			r.Get("/count", h.countMappings)
			r.Post("/", h.createMapping)
			r.Put("/{id}", h.updateMapping)
			r.Delete("/{id}", h.deleteMapping)
		})
	})

	return r
}
