// Package workshops serves the atelier screens: the workshop list, the
// per-workshop participant roster and the attendance statistics page.
package workshops

import (
	"html/template"
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

// Module bundles the atelier screens.
type Module struct {
	logger   *slog.Logger
	client   *flora.Client
	renderer *view.Renderer
	csrf     *shared.CSRFManager
	audit    crud.Recorder
}

// NewModule constructs the workshops module.
func NewModule(logger *slog.Logger, client *flora.Client, renderer *view.Renderer, csrf *shared.CSRFManager, audit crud.Recorder) *Module {
	return &Module{logger: logger, client: client, renderer: renderer, csrf: csrf, audit: audit}
}

// Routes mounts the atelier screens under the admin router.
func (m *Module) Routes(r chi.Router) {
	workshops := crud.NewPages(crud.PagesConfig[flora.Workshop, WorkshopDraft]{
		Logger:   m.logger,
		Renderer: m.renderer,
		CSRF:     m.csrf,
		Backend:  crud.RemoteBackend[flora.Workshop, WorkshopDraft](m.client, "/ateliers"),
		Schema:   workshopSchema(),
		BasePath: "/admin/ateliers",
		Decode:   decodeWorkshop,
		Audit:    m.audit,
		Resource: "atelier",
	})

	r.Route("/ateliers", func(r chi.Router) {
		r.Get("/stats", m.Stats)
		r.Get("/{id}/participants", m.Participants)
		workshops.Mount(r)
	})
}

// participantsView is the page model of the roster screen.
type participantsView struct {
	Workshop     flora.Workshop
	Participants []flora.WorkshopParticipant
	BackURL      string
	Err          string
}

// Participants renders the registration roster of one atelier.
func (m *Module) Participants(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	workshop, err := flora.Get[flora.Workshop](r.Context(), m.client, "/ateliers/"+id+"/")
	if err != nil {
		if crud.RedirectExpired(w, r, err) {
			return
		}
		http.Redirect(w, r, "/admin/ateliers", http.StatusSeeOther)
		return
	}

	page := participantsView{Workshop: workshop, BackURL: "/admin/ateliers"}
	participants, err := flora.Fetch[[]flora.WorkshopParticipant](r.Context(), m.client, "/ateliers/"+id+"/participants/", nil)
	if err != nil {
		if crud.RedirectExpired(w, r, err) {
			return
		}
		m.logger.Error("load participants", "atelier", id, "error", err)
		page.Err = "Erreur lors du chargement des participants."
	} else {
		page.Participants = participants
	}
	m.renderer.Page(w, r, http.StatusOK, "participants.html", "Participants : "+workshop.Name, page)
}

// Stats renders the attendance statistics of /ateliers/stats/.
func (m *Module) Stats(w http.ResponseWriter, r *http.Request) {
	page := view.StatsView{Heading: "Statistiques des ateliers"}
	stats, err := flora.Fetch[flora.WorkshopStats](r.Context(), m.client, "/ateliers/stats/", nil)
	if err != nil {
		if crud.RedirectExpired(w, r, err) {
			return
		}
		m.logger.Error("workshop stats", "error", err)
		page.Err = "Erreur lors du chargement des statistiques."
	} else {
		page.Cards = []view.StatCard{
			{Label: "Ateliers", Value: strconv.Itoa(stats.Total)},
			{Label: "Ateliers actifs", Value: strconv.Itoa(stats.Active)},
			{Label: "Participants", Value: strconv.Itoa(stats.TotalParticipants)},
		}
		page.Charts = []template.HTML{charts.Line("Inscriptions par jour", stats.ByDay)}
	}
	m.renderer.Page(w, r, http.StatusOK, "stats.html", "Statistiques des ateliers", page)
}
