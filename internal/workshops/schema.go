package workshops

import (
	"html/template"
	"net/url"
	"strconv"
	"strings"

	"github.com/chezflora/flora-admin/internal/crud"
	"github.com/chezflora/flora-admin/internal/flora"
	"github.com/chezflora/flora-admin/internal/view"
)

// WorkshopDraft is the write payload of /ateliers/.
type WorkshopDraft struct {
	Name        string `json:"nom"`
	Description string `json:"description"`
	Date        string `json:"date"`
	Duration    int    `json:"duree"`
	Price       string `json:"prix"`
	Location    string `json:"lieu"`
	Tags        string `json:"tags"`
	TotalPlaces int    `json:"places_totales"`
	IsActive    bool   `json:"is_active"`
}

func workshopSchema() crud.Schema[flora.Workshop] {
	return crud.Schema[flora.Workshop]{
		Title:      "Ateliers",
		Singular:   "Atelier",
		ID:         func(a flora.Workshop) string { return a.ID },
		Searchable: true,
		CanCreate:  true,
		CanEdit:    true,
		CanDelete:  true,
		HasDetail:  true,
		Columns: []crud.Column[flora.Workshop]{
			{Label: "Nom", Value: func(a flora.Workshop) template.HTML { return crud.Cell(a.Name) }},
			{Label: "Date", Value: func(a flora.Workshop) template.HTML { return crud.Cell(a.Date) }},
			{Label: "Lieu", Value: func(a flora.Workshop) template.HTML { return crud.Cell(a.Location) }},
			{Label: "Prix", Value: func(a flora.Workshop) template.HTML { return crud.Cell(view.Euro(a.Price)) }},
			{Label: "Places", Value: func(a flora.Workshop) template.HTML {
				return crud.Cell(strconv.Itoa(a.AvailablePlaces) + " / " + strconv.Itoa(a.TotalPlaces))
			}},
			{Label: "Actif", Value: func(a flora.Workshop) template.HTML { return crud.BoolBadge(a.IsActive) }},
			{Label: "Participants", Value: func(a flora.Workshop) template.HTML {
				return template.HTML(`<a class="btn btn-sm" href="/admin/ateliers/` + template.HTMLEscapeString(a.ID) + `/participants">Voir</a>`)
			}},
		},
		Fields: []crud.Field{
			{Name: "nom", Label: "Nom", Kind: crud.FieldText, Required: true},
			{Name: "description", Label: "Description", Kind: crud.FieldTextarea, Rows: 4},
			{Name: "date", Label: "Date", Kind: crud.FieldDateTime, Required: true},
			{Name: "duree", Label: "Durée (minutes)", Kind: crud.FieldNumber, Required: true},
			{Name: "prix", Label: "Prix (€)", Kind: crud.FieldNumber, Step: "0.01", Required: true},
			{Name: "lieu", Label: "Lieu", Kind: crud.FieldText, Required: true},
			{Name: "tags", Label: "Tags", Kind: crud.FieldText, Placeholder: "séparés par des virgules"},
			{Name: "places_totales", Label: "Places totales", Kind: crud.FieldNumber, Required: true},
			{Name: "is_active", Label: "Atelier actif", Kind: crud.FieldCheckbox},
		},
		Filters: []crud.Filter{
			{Name: "is_active", Label: "Actif", Options: []crud.Option{
				{Value: "true", Label: "Actif"},
				{Value: "false", Label: "Inactif"},
			}},
		},
		Draft: func(a flora.Workshop) url.Values {
			return url.Values{
				"nom":            {a.Name},
				"description":    {a.Description},
				"date":           {a.Date},
				"duree":          {strconv.Itoa(a.Duration)},
				"prix":           {a.Price},
				"lieu":           {a.Location},
				"tags":           {a.Tags},
				"places_totales": {strconv.Itoa(a.TotalPlaces)},
				"is_active":      {crud.BoolField(a.IsActive)},
			}
		},
		Detail: func(a flora.Workshop) []crud.DetailRow {
			return []crud.DetailRow{
				{Label: "Nom", Value: crud.Cell(a.Name)},
				{Label: "Description", Value: crud.Cell(a.Description)},
				{Label: "Date", Value: crud.Cell(a.Date)},
				{Label: "Durée", Value: crud.Cell(strconv.Itoa(a.Duration) + " min")},
				{Label: "Lieu", Value: crud.Cell(a.Location)},
				{Label: "Tags", Value: crud.Cell(a.Tags)},
				{Label: "Places disponibles", Value: crud.Cell(strconv.Itoa(a.AvailablePlaces) + " / " + strconv.Itoa(a.TotalPlaces))},
			}
		},
		Describe: func(a flora.Workshop) string { return a.Name },
	}
}

func decodeWorkshop(values url.Values) (WorkshopDraft, map[string]string) {
	errs := map[string]string{}
	draft := WorkshopDraft{
		Name:        strings.TrimSpace(values.Get("nom")),
		Description: values.Get("description"),
		Date:        values.Get("date"),
		Price:       strings.TrimSpace(values.Get("prix")),
		Location:    strings.TrimSpace(values.Get("lieu")),
		Tags:        strings.TrimSpace(values.Get("tags")),
		IsActive:    crud.Checked(values, "is_active"),
	}
	if draft.Name == "" {
		errs["nom"] = "Le nom est requis."
	}
	if draft.Date == "" {
		errs["date"] = "La date est requise."
	}
	if draft.Price == "" {
		errs["prix"] = "Le prix est requis."
	}
	if draft.Location == "" {
		errs["lieu"] = "Le lieu est requis."
	}
	duration, err := strconv.Atoi(values.Get("duree"))
	if err != nil || duration <= 0 {
		errs["duree"] = "La durée doit être un entier positif."
	}
	draft.Duration = duration
	places, err := strconv.Atoi(values.Get("places_totales"))
	if err != nil || places <= 0 {
		errs["places_totales"] = "Le nombre de places doit être un entier positif."
	}
	draft.TotalPlaces = places
	if len(errs) > 0 {
		return WorkshopDraft{}, errs
	}
	return draft, nil
}
