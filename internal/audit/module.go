package audit

import (
	"context"
	"errors"
	"html/template"
	"log/slog"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/chezflora/flora-admin/internal/crud"
	"github.com/chezflora/flora-admin/internal/shared"
	"github.com/chezflora/flora-admin/internal/view"
)

var actionOptions = []crud.Option{
	{Value: "create", Label: "Création"},
	{Value: "update", Label: "Modification"},
	{Value: "delete", Label: "Suppression"},
	{Value: "ban", Label: "Bannissement"},
	{Value: "unban", Label: "Débannissement"},
	{Value: "cancel", Label: "Annulation"},
	{Value: "simulate", Label: "Simulation"},
	{Value: "refund", Label: "Remboursement"},
	{Value: "hide", Label: "Masquage"},
	{Value: "show", Label: "Rétablissement"},
	{Value: "upload-photo", Label: "Ajout de photo"},
}

var resourceOptions = []crud.Option{
	{Value: "utilisateur", Label: "Utilisateur"},
	{Value: "adresse", Label: "Adresse"},
	{Value: "commande", Label: "Commande"},
	{Value: "panier", Label: "Panier"},
	{Value: "produit", Label: "Produit"},
	{Value: "categorie", Label: "Catégorie"},
	{Value: "promotion", Label: "Promotion"},
	{Value: "atelier", Label: "Atelier"},
	{Value: "service", Label: "Service"},
	{Value: "devis", Label: "Devis"},
	{Value: "abonnement", Label: "Abonnement"},
	{Value: "article", Label: "Article"},
	{Value: "commentaire", Label: "Commentaire"},
	{Value: "realisation", Label: "Réalisation"},
	{Value: "paiement", Label: "Paiement"},
	{Value: "parametre", Label: "Paramètre"},
}

// Module serves the audit trail screen.
type Module struct {
	logger   *slog.Logger
	store    *Store
	renderer *view.Renderer
	csrf     *shared.CSRFManager
}

// NewModule constructs the audit screen module.
func NewModule(logger *slog.Logger, store *Store, renderer *view.Renderer, csrf *shared.CSRFManager) *Module {
	return &Module{logger: logger, store: store, renderer: renderer, csrf: csrf}
}

func entrySchema() crud.Schema[Entry] {
	return crud.Schema[Entry]{
		Title:      "Journal d'audit",
		Singular:   "Entrée",
		ID:         func(e Entry) string { return e.ID.String() },
		Searchable: true,
		HasDetail:  true,
		Columns: []crud.Column[Entry]{
			{Label: "Date", Value: func(e Entry) template.HTML { return crud.Cell(e.OccurredAt.Format("02/01/2006 15:04")) }},
			{Label: "Opérateur", Value: func(e Entry) template.HTML { return crud.Cell(e.Actor) }},
			{Label: "Action", Value: func(e Entry) template.HTML { return crud.Cell(e.Action) }},
			{Label: "Ressource", Value: func(e Entry) template.HTML { return crud.Cell(e.Resource) }},
			{Label: "Détail", Value: func(e Entry) template.HTML { return crud.Cell(e.Detail) }},
		},
		Filters: []crud.Filter{
			{Name: "action", Label: "Action", Options: actionOptions},
			{Name: "resource", Label: "Ressource", Options: resourceOptions},
		},
		Detail: func(e Entry) []crud.DetailRow {
			return []crud.DetailRow{
				{Label: "Date", Value: crud.Cell(e.OccurredAt.Format("02/01/2006 15:04:05"))},
				{Label: "Opérateur", Value: crud.Cell(e.Actor)},
				{Label: "Action", Value: crud.Cell(e.Action)},
				{Label: "Ressource", Value: crud.Cell(e.Resource)},
				{Label: "Identifiant cible", Value: crud.Cell(e.TargetID)},
				{Label: "Détail", Value: crud.Cell(e.Detail)},
			}
		},
		Describe: func(e Entry) string { return e.Action + " " + e.Resource },
	}
}

// backend adapts the Postgres store to the generic list screen.
func (m *Module) backend() crud.Backend[Entry, struct{}] {
	return crud.Backend[Entry, struct{}]{
		List: func(ctx context.Context, q crud.Query) ([]Entry, int, error) {
			perPage := q.PerPage
			if perPage <= 0 {
				perPage = shared.DefaultPerPage
			}
			filters := Filters{
				Action:   q.Filters["action"],
				Resource: q.Filters["resource"],
				Search:   q.Search,
			}
			return m.store.List(ctx, filters, (q.Page-1)*perPage, perPage)
		},
		Get: func(ctx context.Context, id string) (Entry, error) {
			parsed, err := uuid.Parse(id)
			if err != nil {
				return Entry{}, errors.New("audit: bad entry id")
			}
			return m.store.Get(ctx, parsed)
		},
	}
}

// Routes mounts the audit screen under the admin router.
func (m *Module) Routes(r chi.Router) {
	pages := crud.NewPages(crud.PagesConfig[Entry, struct{}]{
		Logger:   m.logger,
		Renderer: m.renderer,
		CSRF:     m.csrf,
		Backend:  m.backend(),
		Schema:   entrySchema(),
		BasePath: "/admin/audit",
		Decode:   func(url.Values) (struct{}, map[string]string) { return struct{}{}, nil },
	})
	r.Route("/audit", func(r chi.Router) { pages.Mount(r) })
}
