package app

import (
	"io/fs"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/chezflora/flora-admin/internal/audit"
	"github.com/chezflora/flora-admin/internal/auth"
	"github.com/chezflora/flora-admin/internal/catalog"
	"github.com/chezflora/flora-admin/internal/content"
	"github.com/chezflora/flora-admin/internal/dashboard"
	"github.com/chezflora/flora-admin/internal/observability"
	"github.com/chezflora/flora-admin/internal/offerings"
	"github.com/chezflora/flora-admin/internal/orders"
	"github.com/chezflora/flora-admin/internal/payments"
	"github.com/chezflora/flora-admin/internal/settings"
	"github.com/chezflora/flora-admin/internal/shared"
	"github.com/chezflora/flora-admin/internal/users"
	"github.com/chezflora/flora-admin/internal/workshops"
	"github.com/chezflora/flora-admin/jobs"
	"github.com/chezflora/flora-admin/web"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	SessionManager *shared.SessionManager
	CSRFManager    *shared.CSRFManager
	TokenVault     *shared.TokenVault
	Metrics        *observability.Metrics

	AuthHandler      *auth.Handler
	DashboardHandler *dashboard.Handler
	UsersModule      *users.Module
	OrdersModule     *orders.Module
	CatalogModule    *catalog.Module
	WorkshopsModule  *workshops.Module
	OfferingsModule  *offerings.Module
	ContentModule    *content.Module
	PaymentsModule   *payments.Module
	SettingsModule   *settings.Module
	AuditModule      *audit.Module
	ExportsHandler   *jobs.ExportsHandler
}

// NewRouter constructs the chi.Router of the panel.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		Metrics:        params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/admin", http.StatusSeeOther)
	})

	r.Route("/auth", params.AuthHandler.Routes)
	r.Route("/ui", func(r chi.Router) {
		mountUIPrefs(r, params.CSRFManager)
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(auth.RequireAuth(params.TokenVault))
		r.Get("/", params.DashboardHandler.Home)
		params.UsersModule.Routes(r)
		params.OrdersModule.Routes(r)
		params.CatalogModule.Routes(r)
		params.WorkshopsModule.Routes(r)
		params.OfferingsModule.Routes(r)
		params.ContentModule.Routes(r)
		params.PaymentsModule.Routes(r)
		params.SettingsModule.Routes(r)
		if params.AuditModule != nil {
			params.AuditModule.Routes(r)
		}
		if params.ExportsHandler != nil {
			params.ExportsHandler.Routes(r)
		}
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	staticFS, err := fs.Sub(web.Static, "static")
	if err != nil {
		params.Logger.Error("create static sub filesystem", slog.Any("error", err))
	} else {
		fileServer := http.StripPrefix("/static/", http.FileServer(http.FS(staticFS)))
		r.Handle("/static/*", staticCacheHandler(fileServer))
	}

	return r
}

// mountUIPrefs wires the layout preference toggles. Each toggle is a plain
// POST form so the shell works without JavaScript; the response bounces
// back to the page the form was on.
func mountUIPrefs(r chi.Router, csrf *shared.CSRFManager) {
	accept := func(w http.ResponseWriter, req *http.Request) (*shared.Session, bool) {
		if err := req.ParseForm(); err != nil {
			http.Error(w, "formulaire invalide", http.StatusBadRequest)
			return nil, false
		}
		sess := shared.SessionFromContext(req.Context())
		if err := csrf.VerifyToken(req.Context(), sess, req.PostFormValue(shared.CSRFFormField)); err != nil {
			http.Redirect(w, req, returnPath(req), http.StatusSeeOther)
			return nil, false
		}
		return sess, true
	}

	r.Post("/sidebar", func(w http.ResponseWriter, req *http.Request) {
		if sess, ok := accept(w, req); ok {
			prefs := shared.LoadUIPrefs(sess)
			shared.SaveSidebarOpen(sess, !prefs.SidebarOpen)
			http.Redirect(w, req, returnPath(req), http.StatusSeeOther)
		}
	})
	r.Post("/theme", func(w http.ResponseWriter, req *http.Request) {
		if sess, ok := accept(w, req); ok {
			prefs := shared.LoadUIPrefs(sess)
			shared.SaveTheme(sess, !prefs.ThemeIsDark)
			http.Redirect(w, req, returnPath(req), http.StatusSeeOther)
		}
	})
	r.Post("/nav/{slug}", func(w http.ResponseWriter, req *http.Request) {
		if sess, ok := accept(w, req); ok {
			shared.ToggleSection(sess, chi.URLParam(req, "slug"))
			http.Redirect(w, req, returnPath(req), http.StatusSeeOther)
		}
	})
}

// returnPath extracts the local redirect target of a preference form.
// Anything that is not a same-site absolute path falls back to /admin.
func returnPath(r *http.Request) string {
	target := r.PostFormValue("return")
	if !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") {
		return "/admin"
	}
	return target
}

// staticCacheHandler wraps a file server with Cache-Control headers.
func staticCacheHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=3600")
		next.ServeHTTP(w, r)
	})
}
