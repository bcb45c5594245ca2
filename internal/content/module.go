// Package content serves the editorial screens: blog articles, comment
// moderation and the realisations showcase.
package content

import (
	"context"
	"log/slog"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/chezflora/flora-admin/internal/crud"
	"github.com/chezflora/flora-admin/internal/flora"
	"github.com/chezflora/flora-admin/internal/shared"
	"github.com/chezflora/flora-admin/internal/view"
)

// Module bundles the content screens.
type Module struct {
	logger   *slog.Logger
	client   *flora.Client
	renderer *view.Renderer
	csrf     *shared.CSRFManager
	audit    crud.Recorder
}

// NewModule constructs the content module.
func NewModule(logger *slog.Logger, client *flora.Client, renderer *view.Renderer, csrf *shared.CSRFManager, audit crud.Recorder) *Module {
	return &Module{logger: logger, client: client, renderer: renderer, csrf: csrf, audit: audit}
}

// Routes mounts the content screens under the admin router.
func (m *Module) Routes(r chi.Router) {
	articles := crud.NewPages(crud.PagesConfig[flora.Article, ArticleDraft]{
		Logger:   m.logger,
		Renderer: m.renderer,
		CSRF:     m.csrf,
		Backend:  crud.RemoteBackend[flora.Article, ArticleDraft](m.client, "/articles"),
		Schema:   articleSchema(),
		BasePath: "/admin/articles",
		Decode:   decodeArticle,
		Audit:    m.audit,
		Resource: "article",
	})

	comments := crud.NewPages(crud.PagesConfig[flora.Comment, struct{}]{
		Logger:   m.logger,
		Renderer: m.renderer,
		CSRF:     m.csrf,
		Backend:  crud.RemoteBackend[flora.Comment, struct{}](m.client, "/commentaires"),
		Schema:   commentSchema(),
		BasePath: "/admin/comments",
		Decode:   func(url.Values) (struct{}, map[string]string) { return struct{}{}, nil },
		Actions: map[string]crud.Action{
			"hide": {Flash: "Commentaire masqué.", Run: func(ctx context.Context, id string) error {
				return m.moderate(ctx, id, false)
			}},
			"show": {Flash: "Commentaire rétabli.", Run: func(ctx context.Context, id string) error {
				return m.moderate(ctx, id, true)
			}},
		},
		Audit:    m.audit,
		Resource: "commentaire",
	})

	showcases := crud.NewPages(crud.PagesConfig[flora.Showcase, ShowcaseDraft]{
		Logger:   m.logger,
		Renderer: m.renderer,
		CSRF:     m.csrf,
		Backend:  crud.RemoteBackend[flora.Showcase, ShowcaseDraft](m.client, "/realisations"),
		Schema:   showcaseSchema(),
		BasePath: "/admin/realisations",
		Decode:   decodeShowcase,
		Options:  m.showcaseOptions,
		Audit:    m.audit,
		Resource: "realisation",
	})

	r.Route("/articles", func(r chi.Router) { articles.Mount(r) })
	r.Route("/comments", func(r chi.Router) { comments.Mount(r) })
	r.Route("/realisations", func(r chi.Router) { showcases.Mount(r) })
}

// moderate flips the visibility flag of one comment.
func (m *Module) moderate(ctx context.Context, id string, visible bool) error {
	payload := map[string]bool{"is_active": visible}
	_, err := flora.Patch[flora.Comment](ctx, m.client, "/commentaires/"+id+"/", payload)
	return err
}

// showcaseOptions feeds the service select of the realisation form.
func (m *Module) showcaseOptions(ctx context.Context) map[string][]crud.Option {
	services, _, err := flora.List[flora.Service](ctx, m.client, "/services/", url.Values{"per_page": {"200"}})
	if err != nil {
		m.logger.Warn("load service options", "error", err)
		return nil
	}
	options := make([]crud.Option, 0, len(services))
	for _, s := range services {
		options = append(options, crud.Option{Value: s.ID, Label: s.Name})
	}
	return map[string][]crud.Option{"service": options}
}
