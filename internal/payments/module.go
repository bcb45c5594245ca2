// Package payments serves the payment screens: the transaction list with
// its simulate and refund actions, and the payment statistics page.
package payments

import (
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/chezflora/flora-admin/internal/charts"
	"github.com/chezflora/flora-admin/internal/crud"
	"github.com/chezflora/flora-admin/internal/flora"
	"github.com/chezflora/flora-admin/internal/shared"
	"github.com/chezflora/flora-admin/internal/view"
)

var statusOptions = []crud.Option{
	{Value: "en_attente", Label: "En attente"},
	{Value: "succes", Label: "Succès"},
	{Value: "echec", Label: "Échec"},
}

var methodOptions = []crud.Option{
	{Value: "carte", Label: "Carte bancaire"},
	{Value: "paypal", Label: "PayPal"},
	{Value: "virement", Label: "Virement"},
}

// Module bundles the payment screens.
type Module struct {
	logger   *slog.Logger
	client   *flora.Client
	renderer *view.Renderer
	csrf     *shared.CSRFManager
	audit    crud.Recorder
}

// NewModule constructs the payments module.
func NewModule(logger *slog.Logger, client *flora.Client, renderer *view.Renderer, csrf *shared.CSRFManager, audit crud.Recorder) *Module {
	return &Module{logger: logger, client: client, renderer: renderer, csrf: csrf, audit: audit}
}

func paymentSchema() crud.Schema[flora.Payment] {
	return crud.Schema[flora.Payment]{
		Title:      "Paiements",
		Singular:   "Paiement",
		ID:         func(p flora.Payment) string { return p.ID },
		Searchable: true,
		HasDetail:  true,
		Columns: []crud.Column[flora.Payment]{
			{Label: "Type", Value: func(p flora.Payment) template.HTML { return crud.Cell(p.TransactionType) }},
			{Label: "Méthode", Value: func(p flora.Payment) template.HTML { return crud.Cell(p.Method) }},
			{Label: "Montant", Value: func(p flora.Payment) template.HTML { return crud.Cell(view.Euro(p.Amount)) }},
			{Label: "Statut", Value: func(p flora.Payment) template.HTML { return crud.StatusBadge(p.Status) }},
			{Label: "Date", Value: func(p flora.Payment) template.HTML { return crud.Cell(p.Date) }},
		},
		Filters: []crud.Filter{
			{Name: "statut", Label: "Statut", Options: statusOptions},
			{Name: "methode_paiement", Label: "Méthode", Options: methodOptions},
		},
		Detail: func(p flora.Payment) []crud.DetailRow {
			return []crud.DetailRow{
				{Label: "Type de transaction", Value: crud.Cell(p.TransactionType)},
				{Label: "Méthode", Value: crud.Cell(p.Method)},
				{Label: "Montant", Value: crud.Cell(view.Euro(p.Amount))},
				{Label: "Statut", Value: crud.StatusBadge(p.Status)},
				{Label: "Date", Value: crud.Cell(p.Date)},
			}
		},
		Describe: func(p flora.Payment) string { return "paiement de " + p.Amount + " €" },
		RowActions: []crud.RowAction[flora.Payment]{
			{Label: "Simuler", Slug: "simulate", Confirm: "Simuler ce paiement ?", Show: func(p flora.Payment) bool { return p.Status == "en_attente" }},
			{Label: "Rembourser", Slug: "refund", Class: "btn-danger", Confirm: "Rembourser ce paiement ?", Show: func(p flora.Payment) bool { return p.Status == "succes" }},
		},
	}
}

// Routes mounts the payment screens under the admin router.
func (m *Module) Routes(r chi.Router) {
	pages := crud.NewPages(crud.PagesConfig[flora.Payment, struct{}]{
		Logger:   m.logger,
		Renderer: m.renderer,
		CSRF:     m.csrf,
		Backend:  crud.RemoteBackend[flora.Payment, struct{}](m.client, "/paiements"),
		Schema:   paymentSchema(),
		BasePath: "/admin/payments",
		Decode:   func(url.Values) (struct{}, map[string]string) { return struct{}{}, nil },
		Actions: map[string]crud.Action{
			"simulate": {Flash: "Paiement simulé.", Run: func(ctx context.Context, id string) error {
				return flora.Post(ctx, m.client, "/paiements/"+id+"/simuler/", nil)
			}},
			"refund": {Flash: "Paiement remboursé.", Run: func(ctx context.Context, id string) error {
				return flora.Post(ctx, m.client, "/paiements/"+id+"/rembourser/", nil)
			}},
		},
		Audit:    m.audit,
		Resource: "paiement",
	})

	r.Route("/payments", func(r chi.Router) {
		r.Get("/stats", m.Stats)
		pages.Mount(r)
	})
}

// Stats renders /paiements/stats/.
func (m *Module) Stats(w http.ResponseWriter, r *http.Request) {
	page := view.StatsView{Heading: "Statistiques des paiements"}
	stats, err := flora.Fetch[flora.PaymentStats](r.Context(), m.client, "/paiements/stats/", nil)
	if err != nil {
		if crud.RedirectExpired(w, r, err) {
			return
		}
		m.logger.Error("payment stats", "error", err)
		page.Err = "Erreur lors du chargement des statistiques."
	} else {
		page.Cards = []view.StatCard{
			{Label: "Paiements", Value: strconv.Itoa(stats.Global.TotalPayments)},
			{Label: "Montant total", Value: view.Euro(stats.Global.TotalAmount)},
			{Label: "Taux de succès", Value: fmt.Sprintf("%.1f %%", stats.Global.SuccessRate)},
			{Label: "Délai moyen", Value: fmt.Sprintf("%.1f jours", stats.Global.AvgDelayDays)},
		}
		page.Sections = []view.StatSection{{
			Title: "Montants",
			Rows: []view.StatRow{
				{Label: "Montant moyen", Value: view.Euro(stats.Global.AvgAmount)},
				{Label: "Montant maximum", Value: view.Euro(stats.Global.MaxAmount)},
				{Label: "Montant minimum", Value: view.Euro(stats.Global.MinAmount)},
			},
		}, {
			Title: "30 derniers jours",
			Rows: []view.StatRow{
				{Label: "Paiements", Value: strconv.Itoa(stats.Last30Days.TotalPayments)},
				{Label: "Montant", Value: view.Euro(stats.Last30Days.TotalAmount)},
			},
		}}
		page.Charts = append(page.Charts, charts.RevenueLine("Paiements par jour", stats.Last30Days.ByDay))
	}
	m.renderer.Page(w, r, http.StatusOK, "stats.html", "Statistiques des paiements", page)
}
