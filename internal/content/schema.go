package content

import (
	"html/template"
	"net/url"
	"strings"

	"github.com/chezflora/flora-admin/internal/crud"
	"github.com/chezflora/flora-admin/internal/flora"
)

// ArticleDraft is the write payload of /articles/.
type ArticleDraft struct {
	Title    string `json:"titre"`
	Content  string `json:"contenu"`
	IsActive bool   `json:"is_active"`
}

// ShowcaseDraft is the write payload of /realisations/.
type ShowcaseDraft struct {
	Service     string `json:"service"`
	Title       string `json:"titre"`
	Description string `json:"description"`
	Date        string `json:"date"`
	IsActive    bool   `json:"is_active"`
}

func articleSchema() crud.Schema[flora.Article] {
	return crud.Schema[flora.Article]{
		Title:      "Articles",
		Singular:   "Article",
		ID:         func(a flora.Article) string { return a.ID },
		Searchable: true,
		CanCreate:  true,
		CanEdit:    true,
		CanDelete:  true,
		HasDetail:  true,
		Columns: []crud.Column[flora.Article]{
			{Label: "Titre", Value: func(a flora.Article) template.HTML { return crud.Cell(a.Title) }},
			{Label: "Auteur", Value: func(a flora.Article) template.HTML { return crud.Cell(a.Author) }},
			{Label: "Publié le", Value: func(a flora.Article) template.HTML { return crud.Cell(a.PublishedAt) }},
			{Label: "Actif", Value: func(a flora.Article) template.HTML { return crud.BoolBadge(a.IsActive) }},
		},
		Fields: []crud.Field{
			{Name: "titre", Label: "Titre", Kind: crud.FieldText, Required: true},
			{Name: "contenu", Label: "Contenu", Kind: crud.FieldTextarea, Rows: 10, Required: true},
			{Name: "is_active", Label: "Article publié", Kind: crud.FieldCheckbox},
		},
		Filters: []crud.Filter{
			{Name: "is_active", Label: "Publié", Options: []crud.Option{
				{Value: "true", Label: "Publié"},
				{Value: "false", Label: "Masqué"},
			}},
		},
		Draft: func(a flora.Article) url.Values {
			return url.Values{
				"titre":     {a.Title},
				"contenu":   {a.Content},
				"is_active": {crud.BoolField(a.IsActive)},
			}
		},
		Detail: func(a flora.Article) []crud.DetailRow {
			return []crud.DetailRow{
				{Label: "Titre", Value: crud.Cell(a.Title)},
				{Label: "Auteur", Value: crud.Cell(a.Author)},
				{Label: "Publié le", Value: crud.Cell(a.PublishedAt)},
				{Label: "Contenu", Value: crud.Cell(a.Content)},
			}
		},
		Describe: func(a flora.Article) string { return a.Title },
	}
}

func decodeArticle(values url.Values) (ArticleDraft, map[string]string) {
	errs := map[string]string{}
	draft := ArticleDraft{
		Title:    strings.TrimSpace(values.Get("titre")),
		Content:  values.Get("contenu"),
		IsActive: crud.Checked(values, "is_active"),
	}
	if draft.Title == "" {
		errs["titre"] = "Le titre est requis."
	}
	if strings.TrimSpace(draft.Content) == "" {
		errs["contenu"] = "Le contenu est requis."
	}
	if len(errs) > 0 {
		return ArticleDraft{}, errs
	}
	return draft, nil
}

func commentSchema() crud.Schema[flora.Comment] {
	return crud.Schema[flora.Comment]{
		Title:      "Commentaires",
		Singular:   "Commentaire",
		ID:         func(c flora.Comment) string { return c.ID },
		Searchable: true,
		CanDelete:  true,
		HasDetail:  true,
		Columns: []crud.Column[flora.Comment]{
			{Label: "Client", Value: func(c flora.Comment) template.HTML { return crud.Cell(c.Client) }},
			{Label: "Article", Value: func(c flora.Comment) template.HTML { return crud.Cell(c.Article) }},
			{Label: "Texte", Value: func(c flora.Comment) template.HTML { return crud.Cell(truncate(c.Text, 80)) }},
			{Label: "Date", Value: func(c flora.Comment) template.HTML { return crud.Cell(c.Date) }},
			{Label: "Visible", Value: func(c flora.Comment) template.HTML { return crud.BoolBadge(c.IsActive) }},
		},
		Detail: func(c flora.Comment) []crud.DetailRow {
			rows := []crud.DetailRow{
				{Label: "Client", Value: crud.Cell(c.Client)},
				{Label: "Article", Value: crud.Cell(c.Article)},
				{Label: "Date", Value: crud.Cell(c.Date)},
				{Label: "Texte", Value: crud.Cell(c.Text)},
			}
			if c.Parent != nil {
				rows = append(rows, crud.DetailRow{Label: "Réponse à", Value: crud.Cell(*c.Parent)})
			}
			return rows
		},
		Describe: func(c flora.Comment) string { return "commentaire de " + c.Client },
		RowActions: []crud.RowAction[flora.Comment]{
			{Label: "Masquer", Slug: "hide", Class: "btn-danger", Confirm: "Masquer ce commentaire ?", Show: func(c flora.Comment) bool { return c.IsActive }},
			{Label: "Rétablir", Slug: "show", Show: func(c flora.Comment) bool { return !c.IsActive }},
		},
	}
}

func showcaseSchema() crud.Schema[flora.Showcase] {
	return crud.Schema[flora.Showcase]{
		Title:      "Réalisations",
		Singular:   "Réalisation",
		ID:         func(s flora.Showcase) string { return s.ID },
		Searchable: true,
		CanCreate:  true,
		CanEdit:    true,
		CanDelete:  true,
		HasDetail:  true,
		Columns: []crud.Column[flora.Showcase]{
			{Label: "Titre", Value: func(s flora.Showcase) template.HTML { return crud.Cell(s.Title) }},
			{Label: "Service", Value: func(s flora.Showcase) template.HTML { return crud.Cell(s.Service.Name) }},
			{Label: "Date", Value: func(s flora.Showcase) template.HTML { return crud.Cell(s.Date) }},
			{Label: "Photos", Value: func(s flora.Showcase) template.HTML { return crud.CountBadge(len(s.Photos)) }},
			{Label: "Visible", Value: func(s flora.Showcase) template.HTML { return crud.BoolBadge(s.IsActive) }},
		},
		Fields: []crud.Field{
			{Name: "titre", Label: "Titre", Kind: crud.FieldText, Required: true},
			{Name: "service", Label: "Service", Kind: crud.FieldSelect, Required: true},
			{Name: "description", Label: "Description", Kind: crud.FieldTextarea, Rows: 5},
			{Name: "date", Label: "Date", Kind: crud.FieldDate, Required: true},
			{Name: "is_active", Label: "Réalisation visible", Kind: crud.FieldCheckbox},
		},
		Draft: func(s flora.Showcase) url.Values {
			return url.Values{
				"titre":       {s.Title},
				"service":     {s.Service.ID},
				"description": {s.Description},
				"date":        {s.Date},
				"is_active":   {crud.BoolField(s.IsActive)},
			}
		},
		Detail: func(s flora.Showcase) []crud.DetailRow {
			return []crud.DetailRow{
				{Label: "Titre", Value: crud.Cell(s.Title)},
				{Label: "Service", Value: crud.Cell(s.Service.Name)},
				{Label: "Description", Value: crud.Cell(s.Description)},
				{Label: "Date", Value: crud.Cell(s.Date)},
				{Label: "Photos", Value: crud.CountBadge(len(s.Photos))},
			}
		},
		Describe: func(s flora.Showcase) string { return s.Title },
	}
}

func decodeShowcase(values url.Values) (ShowcaseDraft, map[string]string) {
	errs := map[string]string{}
	draft := ShowcaseDraft{
		Service:     values.Get("service"),
		Title:       strings.TrimSpace(values.Get("titre")),
		Description: values.Get("description"),
		Date:        values.Get("date"),
		IsActive:    crud.Checked(values, "is_active"),
	}
	if draft.Title == "" {
		errs["titre"] = "Le titre est requis."
	}
	if draft.Service == "" {
		errs["service"] = "Le service est requis."
	}
	if draft.Date == "" {
		errs["date"] = "La date est requise."
	}
	if len(errs) > 0 {
		return ShowcaseDraft{}, errs
	}
	return draft, nil
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "…"
}
