// Package offerings serves the service screens: floral services, quote
// requests (devis) and product subscriptions with their statistics page.
package offerings

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/chezflora/flora-admin/internal/charts"
	"github.com/chezflora/flora-admin/internal/crud"
	"github.com/chezflora/flora-admin/internal/flora"
	"github.com/chezflora/flora-admin/internal/shared"
	"github.com/chezflora/flora-admin/internal/view"
)

// Module bundles the service screens.
type Module struct {
	logger   *slog.Logger
	client   *flora.Client
	renderer *view.Renderer
	csrf     *shared.CSRFManager
	audit    crud.Recorder
}

// NewModule constructs the offerings module.
func NewModule(logger *slog.Logger, client *flora.Client, renderer *view.Renderer, csrf *shared.CSRFManager, audit crud.Recorder) *Module {
	return &Module{logger: logger, client: client, renderer: renderer, csrf: csrf, audit: audit}
}

// Routes mounts the service screens under the admin router.
func (m *Module) Routes(r chi.Router) {
	services := crud.NewPages(crud.PagesConfig[flora.Service, ServiceDraft]{
		Logger:   m.logger,
		Renderer: m.renderer,
		CSRF:     m.csrf,
		Backend:  crud.RemoteBackend[flora.Service, ServiceDraft](m.client, "/services"),
		Schema:   serviceSchema(),
		BasePath: "/admin/services",
		Decode:   decodeService,
		Audit:    m.audit,
		Resource: "service",
	})

	quotes := crud.NewPages(crud.PagesConfig[flora.Quote, QuoteDraft]{
		Logger:   m.logger,
		Renderer: m.renderer,
		CSRF:     m.csrf,
		Backend:  crud.RemoteBackend[flora.Quote, QuoteDraft](m.client, "/devis"),
		Schema:   quoteSchema(),
		BasePath: "/admin/devis",
		Decode:   decodeQuote,
		Audit:    m.audit,
		Resource: "devis",
	})

	subscriptions := crud.NewPages(crud.PagesConfig[flora.Subscription, SubscriptionDraft]{
		Logger:   m.logger,
		Renderer: m.renderer,
		CSRF:     m.csrf,
		Backend:  crud.RemoteBackend[flora.Subscription, SubscriptionDraft](m.client, "/abonnements"),
		Schema:   subscriptionSchema(),
		BasePath: "/admin/subscriptions",
		Decode:   decodeSubscription,
		Audit:    m.audit,
		Resource: "abonnement",
	})

	r.Route("/services", func(r chi.Router) { services.Mount(r) })
	r.Route("/devis", func(r chi.Router) { quotes.Mount(r) })
	r.Route("/subscriptions", func(r chi.Router) {
		r.Get("/stats", m.SubscriptionStats)
		subscriptions.Mount(r)
	})
}

// SubscriptionStats renders /abonnements/stats/.
func (m *Module) SubscriptionStats(w http.ResponseWriter, r *http.Request) {
	page := view.StatsView{Heading: "Statistiques des abonnements"}
	stats, err := flora.Fetch[flora.SubscriptionStats](r.Context(), m.client, "/abonnements/stats/", nil)
	if err != nil {
		if crud.RedirectExpired(w, r, err) {
			return
		}
		m.logger.Error("subscription stats", "error", err)
		page.Err = "Erreur lors du chargement des statistiques."
	} else {
		page.Cards = []view.StatCard{
			{Label: "Abonnements", Value: strconv.Itoa(stats.Total)},
			{Label: "Abonnements actifs", Value: strconv.Itoa(stats.Active)},
			{Label: "Revenus", Value: view.Euro(stats.Revenue)},
		}
		byType := make(map[string]int, len(stats.ByType))
		for _, t := range stats.ByType {
			byType[t.Type] = t.Total
		}
		page.Charts = append(page.Charts, charts.Pie("Abonnements par type", byType))
	}
	m.renderer.Page(w, r, http.StatusOK, "stats.html", "Statistiques des abonnements", page)
}
