package offerings

import (
	"html/template"
	"net/url"
	"strings"

	"github.com/chezflora/flora-admin/internal/crud"
	"github.com/chezflora/flora-admin/internal/flora"
	"github.com/chezflora/flora-admin/internal/view"
)

// ServiceDraft is the write payload of /services/.
type ServiceDraft struct {
	Name        string `json:"nom"`
	Description string `json:"description"`
	IsActive    bool   `json:"is_active"`
}

// QuoteDraft is the write payload of /devis/: the panel answers a request
// with a status and a proposed price.
type QuoteDraft struct {
	Status        string  `json:"statut"`
	ProposedPrice *string `json:"prix_propose"`
}

// SubscriptionDraft is the write payload of /abonnements/.
type SubscriptionDraft struct {
	Type      string  `json:"type"`
	Price     string  `json:"prix"`
	StartDate string  `json:"date_debut"`
	EndDate   *string `json:"date_fin"`
	IsActive  bool    `json:"is_active"`
}

var quoteStatusOptions = []crud.Option{
	{Value: "en_attente", Label: "En attente"},
	{Value: "accepte", Label: "Accepté"},
	{Value: "refuse", Label: "Refusé"},
}

var subscriptionTypeOptions = []crud.Option{
	{Value: "hebdomadaire", Label: "Hebdomadaire"},
	{Value: "mensuel", Label: "Mensuel"},
}

func serviceSchema() crud.Schema[flora.Service] {
	return crud.Schema[flora.Service]{
		Title:      "Services",
		Singular:   "Service",
		ID:         func(s flora.Service) string { return s.ID },
		Searchable: true,
		CanCreate:  true,
		CanEdit:    true,
		CanDelete:  true,
		HasDetail:  true,
		Columns: []crud.Column[flora.Service]{
			{Label: "Nom", Value: func(s flora.Service) template.HTML { return crud.Cell(s.Name) }},
			{Label: "Créé le", Value: func(s flora.Service) template.HTML { return crud.Cell(s.CreatedAt) }},
			{Label: "Photos", Value: func(s flora.Service) template.HTML { return crud.CountBadge(len(s.Photos)) }},
			{Label: "Actif", Value: func(s flora.Service) template.HTML { return crud.BoolBadge(s.IsActive) }},
		},
		Fields: []crud.Field{
			{Name: "nom", Label: "Nom", Kind: crud.FieldText, Required: true},
			{Name: "description", Label: "Description", Kind: crud.FieldTextarea, Rows: 5},
			{Name: "is_active", Label: "Service actif", Kind: crud.FieldCheckbox},
		},
		Draft: func(s flora.Service) url.Values {
			return url.Values{
				"nom":         {s.Name},
				"description": {s.Description},
				"is_active":   {crud.BoolField(s.IsActive)},
			}
		},
		Detail: func(s flora.Service) []crud.DetailRow {
			rows := []crud.DetailRow{
				{Label: "Nom", Value: crud.Cell(s.Name)},
				{Label: "Description", Value: crud.Cell(s.Description)},
			}
			for _, photo := range s.Photos {
				rows = append(rows, crud.DetailRow{Label: "Photo", Value: crud.Cell(photo)})
			}
			return rows
		},
		Describe: func(s flora.Service) string { return s.Name },
	}
}

func decodeService(values url.Values) (ServiceDraft, map[string]string) {
	draft := ServiceDraft{
		Name:        strings.TrimSpace(values.Get("nom")),
		Description: values.Get("description"),
		IsActive:    crud.Checked(values, "is_active"),
	}
	if draft.Name == "" {
		return ServiceDraft{}, map[string]string{"nom": "Le nom est requis."}
	}
	return draft, nil
}

func quoteSchema() crud.Schema[flora.Quote] {
	return crud.Schema[flora.Quote]{
		Title:      "Devis",
		Singular:   "Devis",
		ID:         func(q flora.Quote) string { return q.ID },
		Searchable: true,
		CanEdit:    true,
		CanDelete:  true,
		HasDetail:  true,
		Columns: []crud.Column[flora.Quote]{
			{Label: "Client", Value: func(q flora.Quote) template.HTML { return crud.Cell(q.Client) }},
			{Label: "Service", Value: func(q flora.Quote) template.HTML { return crud.Cell(q.Service) }},
			{Label: "Demandé le", Value: func(q flora.Quote) template.HTML { return crud.Cell(q.RequestedAt) }},
			{Label: "Statut", Value: func(q flora.Quote) template.HTML { return crud.StatusBadge(q.Status) }},
			{Label: "Prix proposé", Value: func(q flora.Quote) template.HTML {
				if q.ProposedPrice == nil {
					return crud.Cell("—")
				}
				return crud.Cell(view.Euro(*q.ProposedPrice))
			}},
		},
		Fields: []crud.Field{
			{Name: "statut", Label: "Statut", Kind: crud.FieldSelect, Required: true, Options: quoteStatusOptions},
			{Name: "prix_propose", Label: "Prix proposé (€)", Kind: crud.FieldNumber, Step: "0.01"},
		},
		Filters: []crud.Filter{
			{Name: "statut", Label: "Statut", Options: quoteStatusOptions},
		},
		Draft: func(q flora.Quote) url.Values {
			values := url.Values{"statut": {q.Status}}
			if q.ProposedPrice != nil {
				values.Set("prix_propose", *q.ProposedPrice)
			}
			return values
		},
		Detail: func(q flora.Quote) []crud.DetailRow {
			return []crud.DetailRow{
				{Label: "Client", Value: crud.Cell(q.Client)},
				{Label: "Service", Value: crud.Cell(q.Service)},
				{Label: "Description", Value: crud.Cell(q.Description)},
				{Label: "Demandé le", Value: crud.Cell(q.RequestedAt)},
				{Label: "Statut", Value: crud.StatusBadge(q.Status)},
			}
		},
		Describe: func(q flora.Quote) string { return "devis de " + q.Client },
	}
}

func decodeQuote(values url.Values) (QuoteDraft, map[string]string) {
	draft := QuoteDraft{Status: values.Get("statut")}
	if draft.Status == "" {
		return QuoteDraft{}, map[string]string{"statut": "Le statut est requis."}
	}
	if price := strings.TrimSpace(values.Get("prix_propose")); price != "" {
		draft.ProposedPrice = &price
	} else if draft.Status == "accepte" {
		return QuoteDraft{}, map[string]string{"prix_propose": "Un prix est requis pour accepter un devis."}
	}
	return draft, nil
}

func subscriptionSchema() crud.Schema[flora.Subscription] {
	return crud.Schema[flora.Subscription]{
		Title:      "Abonnements",
		Singular:   "Abonnement",
		ID:         func(s flora.Subscription) string { return s.ID },
		Searchable: true,
		CanEdit:    true,
		CanDelete:  true,
		HasDetail:  true,
		Columns: []crud.Column[flora.Subscription]{
			{Label: "Client", Value: func(s flora.Subscription) template.HTML { return crud.Cell(s.Client) }},
			{Label: "Type", Value: func(s flora.Subscription) template.HTML { return crud.Cell(s.Type) }},
			{Label: "Prix", Value: func(s flora.Subscription) template.HTML { return crud.Cell(view.Euro(s.Price)) }},
			{Label: "Début", Value: func(s flora.Subscription) template.HTML { return crud.Cell(s.StartDate) }},
			{Label: "Actif", Value: func(s flora.Subscription) template.HTML { return crud.BoolBadge(s.IsActive) }},
		},
		Fields: []crud.Field{
			{Name: "type", Label: "Type", Kind: crud.FieldSelect, Required: true, Options: subscriptionTypeOptions},
			{Name: "prix", Label: "Prix (€)", Kind: crud.FieldNumber, Step: "0.01", Required: true},
			{Name: "date_debut", Label: "Date de début", Kind: crud.FieldDate, Required: true},
			{Name: "date_fin", Label: "Date de fin", Kind: crud.FieldDate},
			{Name: "is_active", Label: "Abonnement actif", Kind: crud.FieldCheckbox},
		},
		Filters: []crud.Filter{
			{Name: "type", Label: "Type", Options: subscriptionTypeOptions},
			{Name: "is_active", Label: "Actif", Options: []crud.Option{
				{Value: "true", Label: "Actif"},
				{Value: "false", Label: "Inactif"},
			}},
		},
		Draft: func(s flora.Subscription) url.Values {
			values := url.Values{
				"type":       {s.Type},
				"prix":       {s.Price},
				"date_debut": {s.StartDate},
				"is_active":  {crud.BoolField(s.IsActive)},
			}
			if s.EndDate != nil {
				values.Set("date_fin", *s.EndDate)
			}
			return values
		},
		Detail: func(s flora.Subscription) []crud.DetailRow {
			rows := []crud.DetailRow{
				{Label: "Client", Value: crud.Cell(s.Client)},
				{Label: "Type", Value: crud.Cell(s.Type)},
				{Label: "Prix", Value: crud.Cell(view.Euro(s.Price))},
				{Label: "Début", Value: crud.Cell(s.StartDate)},
			}
			if s.NextDelivery != nil {
				rows = append(rows, crud.DetailRow{Label: "Prochaine livraison", Value: crud.Cell(*s.NextDelivery)})
			}
			for _, p := range s.Products {
				rows = append(rows, crud.DetailRow{Label: "Produit", Value: crud.Cell(p.Name)})
			}
			return rows
		},
		Describe: func(s flora.Subscription) string { return "abonnement de " + s.Client },
	}
}

func decodeSubscription(values url.Values) (SubscriptionDraft, map[string]string) {
	errs := map[string]string{}
	draft := SubscriptionDraft{
		Type:      values.Get("type"),
		Price:     strings.TrimSpace(values.Get("prix")),
		StartDate: values.Get("date_debut"),
		IsActive:  crud.Checked(values, "is_active"),
	}
	if draft.Type == "" {
		errs["type"] = "Le type est requis."
	}
	if draft.Price == "" {
		errs["prix"] = "Le prix est requis."
	}
	if draft.StartDate == "" {
		errs["date_debut"] = "La date de début est requise."
	}
	if end := values.Get("date_fin"); end != "" {
		draft.EndDate = &end
	}
	if len(errs) > 0 {
		return SubscriptionDraft{}, errs
	}
	return draft, nil
}
