package catalog

import (
	"html/template"
	"net/url"
	"strconv"
	"strings"

	"github.com/chezflora/flora-admin/internal/crud"
	"github.com/chezflora/flora-admin/internal/flora"
	"github.com/chezflora/flora-admin/internal/view"
)

// ProductDraft is the write payload of /produits/.
type ProductDraft struct {
	Name        string  `json:"nom"`
	Price       string  `json:"prix"`
	Stock       int     `json:"stock"`
	IsActive    bool    `json:"is_active"`
	Category    *string `json:"categorie"`
	Description string  `json:"description"`
}

// CategoryDraft is the write payload of /categories/.
type CategoryDraft struct {
	Name     string `json:"nom"`
	IsActive bool   `json:"is_active"`
}

// PromotionDraft is the write payload of /promotions/. Its target is a
// tagged choice: either a product list or one category, never both. The
// decoder enforces the exclusivity before anything reaches the API.
type PromotionDraft struct {
	Name      string   `json:"nom"`
	Discount  float64  `json:"reduction"`
	StartDate string   `json:"date_debut"`
	EndDate   string   `json:"date_fin"`
	Products  []string `json:"produits,omitempty"`
	Category  *string  `json:"categorie,omitempty"`
}

// Promotion target choices in the form.
const (
	targetProducts = "produits"
	targetCategory = "categorie"
)

func productSchema() crud.Schema[flora.Product] {
	return crud.Schema[flora.Product]{
		Title:      "Produits",
		Singular:   "Produit",
		ID:         func(p flora.Product) string { return p.ID },
		Searchable: true,
		CanCreate:  true,
		CanEdit:    true,
		CanDelete:  true,
		HasDetail:  true,
		Columns: []crud.Column[flora.Product]{
			{Label: "Nom", Value: func(p flora.Product) template.HTML { return crud.Cell(p.Name) }},
			{Label: "Prix", Value: func(p flora.Product) template.HTML { return crud.Cell(view.Euro(p.Price)) }},
			{Label: "Stock", Value: func(p flora.Product) template.HTML { return crud.CountBadge(p.Stock) }},
			{Label: "Catégorie", Value: func(p flora.Product) template.HTML {
				if p.Category == nil {
					return crud.Cell("—")
				}
				return crud.Cell(p.Category.Name)
			}},
			{Label: "Actif", Value: func(p flora.Product) template.HTML { return crud.BoolBadge(p.IsActive) }},
		},
		Fields: []crud.Field{
			{Name: "nom", Label: "Nom", Kind: crud.FieldText, Required: true},
			{Name: "prix", Label: "Prix (€)", Kind: crud.FieldNumber, Step: "0.01", Required: true},
			{Name: "stock", Label: "Stock", Kind: crud.FieldNumber, Required: true},
			{Name: "categorie", Label: "Catégorie", Kind: crud.FieldSelect},
			{Name: "description", Label: "Description", Kind: crud.FieldTextarea, Rows: 5},
			{Name: "is_active", Label: "Produit actif", Kind: crud.FieldCheckbox},
		},
		Filters: []crud.Filter{
			{Name: "categorie", Label: "Catégorie"},
			{Name: "is_active", Label: "Actif", Options: []crud.Option{
				{Value: "true", Label: "Actif"},
				{Value: "false", Label: "Inactif"},
			}},
		},
		Draft: func(p flora.Product) url.Values {
			values := url.Values{
				"nom":         {p.Name},
				"prix":        {p.Price},
				"stock":       {strconv.Itoa(p.Stock)},
				"description": {p.Description},
				"is_active":   {crud.BoolField(p.IsActive)},
			}
			if p.Category != nil {
				values.Set("categorie", p.Category.ID)
			}
			return values
		},
		Detail: func(p flora.Product) []crud.DetailRow {
			rows := []crud.DetailRow{
				{Label: "Nom", Value: crud.Cell(p.Name)},
				{Label: "Prix", Value: crud.Cell(view.Euro(p.Price))},
				{Label: "Stock", Value: crud.CountBadge(p.Stock)},
				{Label: "Description", Value: crud.Cell(p.Description)},
				{Label: "Photos", Value: crud.CountBadge(len(p.Photos))},
			}
			for _, promo := range p.Promotions {
				rows = append(rows, crud.DetailRow{Label: "Promotion", Value: crud.Cell(promo.Name)})
			}
			return rows
		},
		Describe: func(p flora.Product) string { return p.Name },
	}
}

func decodeProduct(values url.Values) (ProductDraft, map[string]string) {
	errs := map[string]string{}
	draft := ProductDraft{
		Name:        strings.TrimSpace(values.Get("nom")),
		Price:       strings.TrimSpace(values.Get("prix")),
		IsActive:    crud.Checked(values, "is_active"),
		Description: values.Get("description"),
	}
	if draft.Name == "" {
		errs["nom"] = "Le nom est requis."
	}
	if draft.Price == "" {
		errs["prix"] = "Le prix est requis."
	}
	stock, err := strconv.Atoi(values.Get("stock"))
	if err != nil || stock < 0 {
		errs["stock"] = "Le stock doit être un entier positif."
	}
	draft.Stock = stock
	if cat := values.Get("categorie"); cat != "" {
		draft.Category = &cat
	}
	if len(errs) > 0 {
		return ProductDraft{}, errs
	}
	return draft, nil
}

func categorySchema() crud.Schema[flora.Category] {
	return crud.Schema[flora.Category]{
		Title:      "Catégories",
		Singular:   "Catégorie",
		ID:         func(c flora.Category) string { return c.ID },
		Searchable: true,
		CanCreate:  true,
		CanEdit:    true,
		CanDelete:  true,
		Columns: []crud.Column[flora.Category]{
			{Label: "Nom", Value: func(c flora.Category) template.HTML { return crud.Cell(c.Name) }},
			{Label: "Créée le", Value: func(c flora.Category) template.HTML { return crud.Cell(c.CreatedAt) }},
			{Label: "Active", Value: func(c flora.Category) template.HTML { return crud.BoolBadge(c.IsActive) }},
		},
		Fields: []crud.Field{
			{Name: "nom", Label: "Nom", Kind: crud.FieldText, Required: true},
			{Name: "is_active", Label: "Catégorie active", Kind: crud.FieldCheckbox},
		},
		Draft: func(c flora.Category) url.Values {
			return url.Values{
				"nom":       {c.Name},
				"is_active": {crud.BoolField(c.IsActive)},
			}
		},
		Describe: func(c flora.Category) string { return c.Name },
	}
}

func decodeCategory(values url.Values) (CategoryDraft, map[string]string) {
	draft := CategoryDraft{
		Name:     strings.TrimSpace(values.Get("nom")),
		IsActive: crud.Checked(values, "is_active"),
	}
	if draft.Name == "" {
		return CategoryDraft{}, map[string]string{"nom": "Le nom est requis."}
	}
	return draft, nil
}

func promotionSchema() crud.Schema[flora.Promotion] {
	return crud.Schema[flora.Promotion]{
		Title:      "Promotions",
		Singular:   "Promotion",
		ID:         func(p flora.Promotion) string { return p.ID },
		Searchable: true,
		CanCreate:  true,
		CanEdit:    true,
		CanDelete:  true,
		HasDetail:  true,
		Columns: []crud.Column[flora.Promotion]{
			{Label: "Nom", Value: func(p flora.Promotion) template.HTML { return crud.Cell(p.Name) }},
			{Label: "Réduction", Value: func(p flora.Promotion) template.HTML {
				return crud.Cell(strconv.FormatFloat(p.Discount, 'f', -1, 64) + " %")
			}},
			{Label: "Début", Value: func(p flora.Promotion) template.HTML { return crud.Cell(p.StartDate) }},
			{Label: "Fin", Value: func(p flora.Promotion) template.HTML { return crud.Cell(p.EndDate) }},
			{Label: "Cible", Value: func(p flora.Promotion) template.HTML {
				if p.Category != nil {
					return crud.Cell("Catégorie : " + p.Category.Name)
				}
				return crud.CountBadge(len(p.Products))
			}},
		},
		Fields: []crud.Field{
			{Name: "nom", Label: "Nom", Kind: crud.FieldText, Required: true},
			{Name: "reduction", Label: "Réduction (%)", Kind: crud.FieldNumber, Step: "0.1", Required: true},
			{Name: "date_debut", Label: "Date de début", Kind: crud.FieldDate, Required: true},
			{Name: "date_fin", Label: "Date de fin", Kind: crud.FieldDate, Required: true},
			{Name: "cible", Label: "Cible", Kind: crud.FieldSelect, Required: true, Options: []crud.Option{
				{Value: targetProducts, Label: "Produits"},
				{Value: targetCategory, Label: "Catégorie entière"},
			}},
			{Name: "produits", Label: "Produits ciblés", Kind: crud.FieldMultiSelect},
			{Name: "categorie", Label: "Catégorie ciblée", Kind: crud.FieldSelect},
		},
		Draft: func(p flora.Promotion) url.Values {
			values := url.Values{
				"nom":        {p.Name},
				"reduction":  {strconv.FormatFloat(p.Discount, 'f', -1, 64)},
				"date_debut": {p.StartDate},
				"date_fin":   {p.EndDate},
			}
			if p.Category != nil {
				values.Set("cible", targetCategory)
				values.Set("categorie", p.Category.ID)
			} else {
				values.Set("cible", targetProducts)
				for _, prod := range p.Products {
					values.Add("produits", prod.ID)
				}
			}
			return values
		},
		Detail: func(p flora.Promotion) []crud.DetailRow {
			rows := []crud.DetailRow{
				{Label: "Nom", Value: crud.Cell(p.Name)},
				{Label: "Réduction", Value: crud.Cell(strconv.FormatFloat(p.Discount, 'f', -1, 64) + " %")},
				{Label: "Période", Value: crud.Cell(p.StartDate + " → " + p.EndDate)},
			}
			if p.Category != nil {
				rows = append(rows, crud.DetailRow{Label: "Catégorie", Value: crud.Cell(p.Category.Name)})
				return rows
			}
			for _, prod := range p.Products {
				rows = append(rows, crud.DetailRow{Label: "Produit", Value: crud.Cell(prod.Name)})
			}
			return rows
		},
		Describe: func(p flora.Promotion) string { return p.Name },
	}
}

func decodePromotion(values url.Values) (PromotionDraft, map[string]string) {
	errs := map[string]string{}
	draft := PromotionDraft{
		Name:      strings.TrimSpace(values.Get("nom")),
		StartDate: values.Get("date_debut"),
		EndDate:   values.Get("date_fin"),
	}
	if draft.Name == "" {
		errs["nom"] = "Le nom est requis."
	}
	discount, err := strconv.ParseFloat(values.Get("reduction"), 64)
	if err != nil || discount <= 0 || discount > 100 {
		errs["reduction"] = "La réduction doit être comprise entre 0 et 100."
	}
	draft.Discount = discount
	if draft.StartDate == "" {
		errs["date_debut"] = "La date de début est requise."
	}
	if draft.EndDate == "" {
		errs["date_fin"] = "La date de fin est requise."
	}

	switch values.Get("cible") {
	case targetProducts:
		products := values["produits"]
		if len(products) == 0 {
			errs["produits"] = "Sélectionnez au moins un produit."
		}
		draft.Products = products
	case targetCategory:
		category := values.Get("categorie")
		if category == "" {
			errs["categorie"] = "Sélectionnez une catégorie."
		} else {
			draft.Category = &category
		}
	default:
		errs["cible"] = "Choisissez une cible : produits ou catégorie."
	}

	if len(errs) > 0 {
		return PromotionDraft{}, errs
	}
	return draft, nil
}
