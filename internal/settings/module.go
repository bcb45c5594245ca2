// Package settings serves the key/value shop parameters screen.
package settings

import (
	"html/template"
	"log/slog"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/chezflora/flora-admin/internal/crud"
	"github.com/chezflora/flora-admin/internal/flora"
	"github.com/chezflora/flora-admin/internal/shared"
	"github.com/chezflora/flora-admin/internal/view"
)

// SettingDraft is the write payload of /parametres/.
type SettingDraft struct {
	Key         string `json:"cle"`
	Value       string `json:"valeur"`
	Description string `json:"description,omitempty"`
}

// Module bundles the settings screen.
type Module struct {
	logger   *slog.Logger
	client   *flora.Client
	renderer *view.Renderer
	csrf     *shared.CSRFManager
	audit    crud.Recorder
}

// NewModule constructs the settings module.
func NewModule(logger *slog.Logger, client *flora.Client, renderer *view.Renderer, csrf *shared.CSRFManager, audit crud.Recorder) *Module {
	return &Module{logger: logger, client: client, renderer: renderer, csrf: csrf, audit: audit}
}

func settingSchema() crud.Schema[flora.Setting] {
	return crud.Schema[flora.Setting]{
		Title:      "Paramètres",
		Singular:   "Paramètre",
		ID:         func(s flora.Setting) string { return strconv.Itoa(s.ID) },
		Searchable: true,
		CanCreate:  true,
		CanEdit:    true,
		CanDelete:  true,
		Columns: []crud.Column[flora.Setting]{
			{Label: "Clé", Value: func(s flora.Setting) template.HTML { return crud.Cell(s.Key) }},
			{Label: "Valeur", Value: func(s flora.Setting) template.HTML { return crud.Cell(s.Value) }},
			{Label: "Description", Value: func(s flora.Setting) template.HTML {
				if s.Description == nil {
					return crud.Cell("—")
				}
				return crud.Cell(*s.Description)
			}},
			{Label: "Mis à jour", Value: func(s flora.Setting) template.HTML { return crud.Cell(s.UpdatedAt) }},
		},
		Fields: []crud.Field{
			{Name: "cle", Label: "Clé", Kind: crud.FieldText, Required: true, Placeholder: "ex. livraison_gratuite_seuil"},
			{Name: "valeur", Label: "Valeur", Kind: crud.FieldText, Required: true},
			{Name: "description", Label: "Description", Kind: crud.FieldTextarea, Rows: 3},
		},
		Draft: func(s flora.Setting) url.Values {
			values := url.Values{
				"cle":    {s.Key},
				"valeur": {s.Value},
			}
			if s.Description != nil {
				values.Set("description", *s.Description)
			}
			return values
		},
		Describe: func(s flora.Setting) string { return s.Key },
	}
}

func decodeSetting(values url.Values) (SettingDraft, map[string]string) {
	errs := map[string]string{}
	draft := SettingDraft{
		Key:         strings.TrimSpace(values.Get("cle")),
		Value:       strings.TrimSpace(values.Get("valeur")),
		Description: strings.TrimSpace(values.Get("description")),
	}
	if draft.Key == "" {
		errs["cle"] = "La clé est requise."
	}
	if draft.Value == "" {
		errs["valeur"] = "La valeur est requise."
	}
	if len(errs) > 0 {
		return SettingDraft{}, errs
	}
	return draft, nil
}

// Routes mounts the settings screen under the admin router.
func (m *Module) Routes(r chi.Router) {
	pages := crud.NewPages(crud.PagesConfig[flora.Setting, SettingDraft]{
		Logger:   m.logger,
		Renderer: m.renderer,
		CSRF:     m.csrf,
		Backend:  crud.RemoteBackend[flora.Setting, SettingDraft](m.client, "/parametres"),
		Schema:   settingSchema(),
		BasePath: "/admin/settings",
		Decode:   decodeSetting,
		Audit:    m.audit,
		Resource: "parametre",
	})
	r.Route("/settings", func(r chi.Router) { pages.Mount(r) })
}
