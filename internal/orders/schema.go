package orders

import (
	"fmt"
	"html/template"
	"net/url"

	"github.com/chezflora/flora-admin/internal/crud"
	"github.com/chezflora/flora-admin/internal/flora"
	"github.com/chezflora/flora-admin/internal/view"
)

// OrderDraft is the write payload of /commandes/: the panel only ever
// edits the status.
type OrderDraft struct {
	Status string `json:"statut"`
}

var statusOptions = []crud.Option{
	{Value: flora.OrderPending, Label: "En attente"},
	{Value: flora.OrderInProcess, Label: "En cours"},
	{Value: flora.OrderShipped, Label: "Expédiée"},
	{Value: flora.OrderDelivered, Label: "Livrée"},
	{Value: flora.OrderCancelled, Label: "Annulée"},
}

func orderSchema() crud.Schema[flora.Order] {
	return crud.Schema[flora.Order]{
		Title:      "Commandes",
		Singular:   "Commande",
		ID:         func(o flora.Order) string { return o.ID },
		Searchable: true,
		CanEdit:    true,
		CanDelete:  true,
		HasDetail:  true,
		Columns: []crud.Column[flora.Order]{
			{Label: "Client", Value: func(o flora.Order) template.HTML { return crud.Cell(o.Client.Username) }},
			{Label: "Date", Value: func(o flora.Order) template.HTML { return crud.Cell(o.Date) }},
			{Label: "Total", Value: func(o flora.Order) template.HTML { return crud.Cell(view.Euro(o.Total)) }},
			{Label: "Statut", Value: func(o flora.Order) template.HTML { return crud.StatusBadge(o.Status) }},
			{Label: "Lignes", Value: func(o flora.Order) template.HTML { return crud.CountBadge(len(o.Lines)) }},
		},
		Fields: []crud.Field{
			{Name: "statut", Label: "Statut", Kind: crud.FieldSelect, Required: true, Options: statusOptions},
		},
		Filters: []crud.Filter{
			{Name: "statut", Label: "Statut", Options: statusOptions},
		},
		Draft: func(o flora.Order) url.Values {
			return url.Values{"statut": {o.Status}}
		},
		Detail: func(o flora.Order) []crud.DetailRow {
			rows := []crud.DetailRow{
				{Label: "Client", Value: crud.Cell(o.Client.Username + " <" + o.Client.Email + ">")},
				{Label: "Date", Value: crud.Cell(o.Date)},
				{Label: "Statut", Value: crud.StatusBadge(o.Status)},
				{Label: "Total", Value: crud.Cell(view.Euro(o.Total))},
				{Label: "Adresse", Value: crud.Cell(fmt.Sprintf("%s, %s %s %s, %s", o.Address.Street, o.Address.PostalCode, o.Address.City, o.Address.Name, o.Address.Country))},
			}
			for _, line := range o.Lines {
				rows = append(rows, crud.DetailRow{
					Label: line.Product.Name,
					Value: crud.Cell(fmt.Sprintf("%d × %s", line.Quantity, view.Euro(line.UnitPrice))),
				})
			}
			return rows
		},
		Describe: func(o flora.Order) string { return "commande de " + o.Client.Username },
		RowActions: []crud.RowAction[flora.Order]{
			{Label: "Annuler", Slug: "cancel", Class: "btn-danger", Confirm: "Annuler cette commande ?", Show: flora.Order.CanCancel},
		},
	}
}

func decodeOrder(values url.Values) (OrderDraft, map[string]string) {
	draft := OrderDraft{Status: values.Get("statut")}
	if draft.Status == "" {
		return OrderDraft{}, map[string]string{"statut": "Le statut est requis."}
	}
	return draft, nil
}

func lineSchema() crud.Schema[flora.OrderLine] {
	return crud.Schema[flora.OrderLine]{
		Title:    "Lignes de commande",
		Singular: "Ligne de commande",
		ID:       func(l flora.OrderLine) string { return l.ID },
		Columns: []crud.Column[flora.OrderLine]{
			{Label: "Commande", Value: func(l flora.OrderLine) template.HTML { return crud.Cell(l.OrderID) }},
			{Label: "Produit", Value: func(l flora.OrderLine) template.HTML { return crud.Cell(l.Product.Name) }},
			{Label: "Quantité", Value: func(l flora.OrderLine) template.HTML { return crud.CountBadge(l.Quantity) }},
			{Label: "Prix unitaire", Value: func(l flora.OrderLine) template.HTML { return crud.Cell(view.Euro(l.UnitPrice)) }},
		},
	}
}

func cartSchema() crud.Schema[flora.Cart] {
	return crud.Schema[flora.Cart]{
		Title:     "Paniers",
		Singular:  "Panier",
		ID:        func(c flora.Cart) string { return c.ID },
		CanDelete: true,
		HasDetail: true,
		Columns: []crud.Column[flora.Cart]{
			{Label: "Client", Value: func(c flora.Cart) template.HTML { return crud.Cell(c.Client.Username) }},
			{Label: "E-mail", Value: func(c flora.Cart) template.HTML { return crud.Cell(c.Client.Email) }},
			{Label: "Articles", Value: func(c flora.Cart) template.HTML { return crud.CountBadge(len(c.Items)) }},
		},
		Detail: func(c flora.Cart) []crud.DetailRow {
			rows := []crud.DetailRow{
				{Label: "Client", Value: crud.Cell(c.Client.Username + " <" + c.Client.Email + ">")},
			}
			for _, item := range c.Items {
				rows = append(rows, crud.DetailRow{
					Label: item.Product.Name,
					Value: crud.Cell(fmt.Sprintf("× %d", item.Quantity)),
				})
			}
			return rows
		},
		Describe: func(c flora.Cart) string { return "panier de " + c.Client.Username },
	}
}
