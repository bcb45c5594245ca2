package view

import (
	"log/slog"
	"net/http"

	"github.com/chezflora/flora-admin/internal/shared"
)

// Renderer assembles the layout shell around page view models: CSRF token,
// flash, sidebar state and the navigation tree. Every HTML handler renders
// through it so the shell stays consistent across screens.
type Renderer struct {
	engine *Engine
	csrf   *shared.CSRFManager
	logger *slog.Logger
}

// NewRenderer constructs a Renderer.
func NewRenderer(engine *Engine, csrf *shared.CSRFManager, logger *slog.Logger) *Renderer {
	return &Renderer{engine: engine, csrf: csrf, logger: logger}
}

// Page renders a named page template inside the layout.
func (rd *Renderer) Page(w http.ResponseWriter, r *http.Request, status int, name, title string, data any) {
	sess := shared.SessionFromContext(r.Context())
	td := TemplateData{
		Title:       title,
		CurrentPath: r.URL.Path,
		Data:        data,
	}
	if sess != nil {
		if token, err := rd.csrf.EnsureToken(r.Context(), sess); err == nil {
			td.CSRFToken = token
		}
		td.Flash = sess.PopFlash()
		td.UserName = sess.Get(shared.SessionKeyUserName)
	}
	td.Prefs = shared.LoadUIPrefs(sess)
	td.Nav = BuildNav(r.URL.Path, td.Prefs)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := rd.engine.Render(w, name, td); err != nil {
		rd.logger.Error("render page", "template", name, "error", err)
	}
}
