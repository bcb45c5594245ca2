// Package orders serves the order screens: the order list with status
// filters and cancel action, the read-only order-line listing, client
// carts, the pending-orders view and the revenue report.
package orders

import (
	"context"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/chezflora/flora-admin/internal/charts"
	"github.com/chezflora/flora-admin/internal/crud"
	"github.com/chezflora/flora-admin/internal/flora"
	"github.com/chezflora/flora-admin/internal/shared"
	"github.com/chezflora/flora-admin/internal/view"
)

// Module bundles the order screens.
type Module struct {
	logger   *slog.Logger
	client   *flora.Client
	renderer *view.Renderer
	csrf     *shared.CSRFManager
	audit    crud.Recorder
}

// NewModule constructs the orders module.
func NewModule(logger *slog.Logger, client *flora.Client, renderer *view.Renderer, csrf *shared.CSRFManager, audit crud.Recorder) *Module {
	return &Module{logger: logger, client: client, renderer: renderer, csrf: csrf, audit: audit}
}

// Routes mounts the order screens under the admin router.
func (m *Module) Routes(r chi.Router) {
	cancelAction := map[string]crud.Action{
		"cancel": {
			Flash: "Commande annulée.",
			Run: func(ctx context.Context, id string) error {
				return flora.Post(ctx, m.client, "/commandes/"+id+"/cancel/", nil)
			},
		},
	}

	commands := crud.NewPages(crud.PagesConfig[flora.Order, OrderDraft]{
		Logger:   m.logger,
		Renderer: m.renderer,
		CSRF:     m.csrf,
		Backend:  crud.RemoteBackend[flora.Order, OrderDraft](m.client, "/commandes"),
		Schema:   orderSchema(),
		BasePath: "/admin/commands",
		Decode:   decodeOrder,
		Actions:  cancelAction,
		Audit:    m.audit,
		Resource: "commande",
	})

	pendingSchema := orderSchema()
	pendingSchema.Title = "Commandes en attente"
	pendingSchema.Filters = nil
	pending := crud.NewPages(crud.PagesConfig[flora.Order, OrderDraft]{
		Logger:   m.logger,
		Renderer: m.renderer,
		CSRF:     m.csrf,
		Backend:  crud.RemoteBackend[flora.Order, OrderDraft](m.client, "/commandes"),
		Schema:   pendingSchema,
		BasePath: "/admin/commands/pending",
		Decode:   decodeOrder,
		Fixed:    map[string]string{"statut": flora.OrderPending},
		Actions:  cancelAction,
		Audit:    m.audit,
		Resource: "commande",
	})

	lines := crud.NewPages(crud.PagesConfig[flora.OrderLine, struct{}]{
		Logger:   m.logger,
		Renderer: m.renderer,
		CSRF:     m.csrf,
		Backend:  crud.RemoteBackend[flora.OrderLine, struct{}](m.client, "/lignes-commande"),
		Schema:   lineSchema(),
		BasePath: "/admin/command-lines",
		Decode:   func(url.Values) (struct{}, map[string]string) { return struct{}{}, nil },
		Resource: "ligne de commande",
	})

	carts := crud.NewPages(crud.PagesConfig[flora.Cart, struct{}]{
		Logger:   m.logger,
		Renderer: m.renderer,
		CSRF:     m.csrf,
		Backend:  crud.RemoteBackend[flora.Cart, struct{}](m.client, "/paniers"),
		Schema:   cartSchema(),
		BasePath: "/admin/carts",
		Decode:   func(url.Values) (struct{}, map[string]string) { return struct{}{}, nil },
		Audit:    m.audit,
		Resource: "panier",
	})

	r.Route("/commands", func(r chi.Router) {
		r.Get("/revenue", m.Revenue)
		r.Route("/pending", func(r chi.Router) { pending.Mount(r) })
		commands.Mount(r)
	})
	r.Route("/command-lines", func(r chi.Router) { lines.Mount(r) })
	r.Route("/carts", func(r chi.Router) { carts.Mount(r) })
}

// Revenue renders the revenue report of /commandes/revenue/.
func (m *Module) Revenue(w http.ResponseWriter, r *http.Request) {
	page := view.StatsView{Heading: "Revenus"}
	report, err := flora.Fetch[flora.RevenueReport](r.Context(), m.client, "/commandes/revenue/", nil)
	if err != nil {
		if crud.RedirectExpired(w, r, err) {
			return
		}
		m.logger.Error("revenue report", "error", err)
		page.Err = "Erreur lors du chargement des revenus."
	} else {
		page.Cards = []view.StatCard{
			{Label: "Revenu total", Value: view.Euro(report.TotalRevenue)},
		}
		section := view.StatSection{Title: "Revenus par statut"}
		for _, s := range report.RevenueByStatus {
			section.Rows = append(section.Rows, view.StatRow{Label: s.Status, Value: view.Euro(s.Total)})
		}
		page.Sections = []view.StatSection{section}
		page.Charts = []template.HTML{charts.RevenueLine("Revenus par jour", report.RevenueByDay)}
	}
	m.renderer.Page(w, r, http.StatusOK, "stats.html", "Revenus", page)
}
