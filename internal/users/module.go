// Package users serves the account screens: the user list with role and
// activity filters, the banned-accounts screen, client addresses and
// wishlists, plus the registration statistics page.
package users

import (
	"context"
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

// Module bundles the user screens.
type Module struct {
	logger   *slog.Logger
	client   *flora.Client
	renderer *view.Renderer
	csrf     *shared.CSRFManager
	audit    crud.Recorder
}

// NewModule constructs the users module.
func NewModule(logger *slog.Logger, client *flora.Client, renderer *view.Renderer, csrf *shared.CSRFManager, audit crud.Recorder) *Module {
	return &Module{logger: logger, client: client, renderer: renderer, csrf: csrf, audit: audit}
}

// Routes mounts the user screens under the admin router.
func (m *Module) Routes(r chi.Router) {
	userActions := map[string]crud.Action{
		"ban": {
			Flash: "Utilisateur banni.",
			Run:   func(ctx context.Context, id string) error { return m.setBanned(ctx, id, true) },
		},
		"unban": {
			Flash: "Utilisateur débanni.",
			Run:   func(ctx context.Context, id string) error { return m.setBanned(ctx, id, false) },
		},
	}

	withBanActions := userSchema()
	withBanActions.RowActions = []crud.RowAction[flora.User]{
		{Label: "Bannir", Slug: "ban", Class: "btn-danger", Confirm: "Bannir cet utilisateur ?", Show: func(u flora.User) bool { return !u.IsBanned }},
		{Label: "Débannir", Slug: "unban", Show: func(u flora.User) bool { return u.IsBanned }},
	}

	users := crud.NewPages(crud.PagesConfig[flora.User, UserDraft]{
		Logger:   m.logger,
		Renderer: m.renderer,
		CSRF:     m.csrf,
		Backend:  crud.RemoteBackend[flora.User, UserDraft](m.client, "/utilisateurs"),
		Schema:   withBanActions,
		BasePath: "/admin/users",
		Decode:   decodeUser,
		Actions:  userActions,
		Audit:    m.audit,
		Resource: "utilisateur",
	})

	// Same resource scoped to banned accounts; the filter is fixed, not
	// user-editable.
	bansSchema := userSchema()
	bansSchema.Title = "Bannissements"
	bansSchema.CanCreate = false
	bansSchema.Filters = nil
	bansSchema.RowActions = []crud.RowAction[flora.User]{
		{Label: "Débannir", Slug: "unban", Confirm: "Débannir cet utilisateur ?"},
	}
	bans := crud.NewPages(crud.PagesConfig[flora.User, UserDraft]{
		Logger:   m.logger,
		Renderer: m.renderer,
		CSRF:     m.csrf,
		Backend:  crud.RemoteBackend[flora.User, UserDraft](m.client, "/utilisateurs"),
		Schema:   bansSchema,
		BasePath: "/admin/users/bans",
		Decode:   decodeUser,
		Fixed:    map[string]string{"is_banned": "true"},
		Actions:  userActions,
		Audit:    m.audit,
		Resource: "utilisateur",
	})

	addresses := crud.NewPages(crud.PagesConfig[flora.Address, AddressDraft]{
		Logger:   m.logger,
		Renderer: m.renderer,
		CSRF:     m.csrf,
		Backend:  crud.RemoteBackend[flora.Address, AddressDraft](m.client, "/adresses"),
		Schema:   addressSchema(),
		BasePath: "/admin/addresses",
		Decode:   decodeAddress,
		Audit:    m.audit,
		Resource: "adresse",
	})

	wishlists := crud.NewPages(crud.PagesConfig[flora.Wishlist, struct{}]{
		Logger:   m.logger,
		Renderer: m.renderer,
		CSRF:     m.csrf,
		Backend:  crud.RemoteBackend[flora.Wishlist, struct{}](m.client, "/wishlist"),
		Schema:   wishlistSchema(),
		BasePath: "/admin/wishlists",
		Decode:   func(url.Values) (struct{}, map[string]string) { return struct{}{}, nil },
		Audit:    m.audit,
		Resource: "wishlist",
	})

	r.Route("/users", func(r chi.Router) {
		r.Get("/stats", m.Stats)
		r.Route("/bans", func(r chi.Router) { bans.Mount(r) })
		users.Mount(r)
	})
	r.Route("/addresses", func(r chi.Router) { addresses.Mount(r) })
	r.Route("/wishlists", func(r chi.Router) { wishlists.Mount(r) })
}

// Stats renders the registration and login series.
func (m *Module) Stats(w http.ResponseWriter, r *http.Request) {
	page := view.StatsView{Heading: "Statistiques des utilisateurs"}
	stats, err := flora.Fetch[flora.UserStats](r.Context(), m.client, "/utilisateurs/stats/", nil)
	if err != nil {
		if crud.RedirectExpired(w, r, err) {
			return
		}
		m.logger.Error("user stats", "error", err)
		page.Err = "Erreur lors du chargement des statistiques."
	} else {
		page.Charts = append(page.Charts,
			charts.Line("Inscriptions par jour", stats.RegistrationsByDay),
			charts.Line("Connexions par jour", stats.LoginsByDay),
		)
	}
	m.renderer.Page(w, r, http.StatusOK, "stats.html", "Statistiques des utilisateurs", page)
}

// setBanned flips the ban flag through a full update, since the API has no
// partial toggle endpoint.
func (m *Module) setBanned(ctx context.Context, id string, banned bool) error {
	user, err := flora.Get[flora.User](ctx, m.client, "/utilisateurs/"+id+"/")
	if err != nil {
		return err
	}
	draft := UserDraft{
		Username: user.Username,
		Email:    user.Email,
		Role:     user.Role,
		IsActive: user.IsActive,
		IsBanned: banned,
	}
	_, err = flora.Update[flora.User](ctx, m.client, "/utilisateurs/"+id+"/", draft)
	return err
}
