package users

import (
	"html/template"
	"net/url"
	"strings"

	"github.com/chezflora/flora-admin/internal/crud"
	"github.com/chezflora/flora-admin/internal/flora"
)

// UserDraft is the write payload of /utilisateurs/.
type UserDraft struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password,omitempty"`
	Role     string `json:"role"`
	IsActive bool   `json:"is_active"`
	IsBanned bool   `json:"is_banned"`
}

// AddressDraft is the write payload of /adresses/.
type AddressDraft struct {
	Client     string `json:"client"`
	Name       string `json:"nom"`
	Street     string `json:"rue"`
	City       string `json:"ville"`
	PostalCode string `json:"code_postal"`
	Country    string `json:"pays"`
}

var roleOptions = []crud.Option{
	{Value: "admin", Label: "Administrateur"},
	{Value: "client", Label: "Client"},
}

func userSchema() crud.Schema[flora.User] {
	return crud.Schema[flora.User]{
		Title:      "Utilisateurs",
		Singular:   "Utilisateur",
		ID:         func(u flora.User) string { return u.ID },
		Searchable: true,
		CanCreate:  true,
		CanEdit:    true,
		CanDelete:  true,
		Columns: []crud.Column[flora.User]{
			{Label: "Nom d'utilisateur", Value: func(u flora.User) template.HTML { return crud.Cell(u.Username) }},
			{Label: "E-mail", Value: func(u flora.User) template.HTML { return crud.Cell(u.Email) }},
			{Label: "Rôle", Value: func(u flora.User) template.HTML { return crud.Cell(u.Role) }},
			{Label: "Actif", Value: func(u flora.User) template.HTML { return crud.BoolBadge(u.IsActive) }},
			{Label: "Banni", Value: func(u flora.User) template.HTML { return crud.BoolBadge(u.IsBanned) }},
		},
		Fields: []crud.Field{
			{Name: "username", Label: "Nom d'utilisateur", Kind: crud.FieldText, Required: true},
			{Name: "email", Label: "E-mail", Kind: crud.FieldEmail, Required: true},
			{Name: "password", Label: "Mot de passe", Kind: crud.FieldPassword, Placeholder: "Laisser vide pour conserver"},
			{Name: "role", Label: "Rôle", Kind: crud.FieldSelect, Required: true, Options: roleOptions},
			{Name: "is_active", Label: "Compte actif", Kind: crud.FieldCheckbox},
			{Name: "is_banned", Label: "Compte banni", Kind: crud.FieldCheckbox},
		},
		Filters: []crud.Filter{
			{Name: "role", Label: "Rôle", Options: roleOptions},
			{Name: "is_active", Label: "Actif", Options: []crud.Option{
				{Value: "true", Label: "Actif"},
				{Value: "false", Label: "Inactif"},
			}},
		},
		Draft: func(u flora.User) url.Values {
			return url.Values{
				"username":  {u.Username},
				"email":     {u.Email},
				"role":      {u.Role},
				"is_active": {crud.BoolField(u.IsActive)},
				"is_banned": {crud.BoolField(u.IsBanned)},
			}
		},
		Describe: func(u flora.User) string { return u.Username },
	}
}

func decodeUser(values url.Values) (UserDraft, map[string]string) {
	draft := UserDraft{
		Username: strings.TrimSpace(values.Get("username")),
		Email:    strings.TrimSpace(values.Get("email")),
		Password: values.Get("password"),
		Role:     values.Get("role"),
		IsActive: crud.Checked(values, "is_active"),
		IsBanned: crud.Checked(values, "is_banned"),
	}
	errs := map[string]string{}
	if draft.Username == "" {
		errs["username"] = "Le nom d'utilisateur est requis."
	}
	if draft.Email == "" {
		errs["email"] = "L'adresse e-mail est requise."
	}
	if draft.Role == "" {
		errs["role"] = "Le rôle est requis."
	}
	if len(errs) > 0 {
		return UserDraft{}, errs
	}
	return draft, nil
}

func addressSchema() crud.Schema[flora.Address] {
	return crud.Schema[flora.Address]{
		Title:      "Adresses",
		Singular:   "Adresse",
		ID:         func(a flora.Address) string { return a.ID },
		Searchable: true,
		CanEdit:    true,
		CanDelete:  true,
		HasDetail:  true,
		Columns: []crud.Column[flora.Address]{
			{Label: "Client", Value: func(a flora.Address) template.HTML { return crud.Cell(a.Client.Username) }},
			{Label: "Nom", Value: func(a flora.Address) template.HTML { return crud.Cell(a.Name) }},
			{Label: "Ville", Value: func(a flora.Address) template.HTML { return crud.Cell(a.City) }},
			{Label: "Code postal", Value: func(a flora.Address) template.HTML { return crud.Cell(a.PostalCode) }},
			{Label: "Pays", Value: func(a flora.Address) template.HTML { return crud.Cell(a.Country) }},
		},
		Fields: []crud.Field{
			{Name: "nom", Label: "Nom", Kind: crud.FieldText, Required: true},
			{Name: "rue", Label: "Rue", Kind: crud.FieldText, Required: true},
			{Name: "ville", Label: "Ville", Kind: crud.FieldText, Required: true},
			{Name: "code_postal", Label: "Code postal", Kind: crud.FieldText, Required: true},
			{Name: "pays", Label: "Pays", Kind: crud.FieldText, Required: true},
		},
		Draft: func(a flora.Address) url.Values {
			return url.Values{
				"nom":         {a.Name},
				"rue":         {a.Street},
				"ville":       {a.City},
				"code_postal": {a.PostalCode},
				"pays":        {a.Country},
			}
		},
		Detail: func(a flora.Address) []crud.DetailRow {
			return []crud.DetailRow{
				{Label: "Client", Value: crud.Cell(a.Client.Username + " <" + a.Client.Email + ">")},
				{Label: "Nom", Value: crud.Cell(a.Name)},
				{Label: "Rue", Value: crud.Cell(a.Street)},
				{Label: "Ville", Value: crud.Cell(a.City)},
				{Label: "Code postal", Value: crud.Cell(a.PostalCode)},
				{Label: "Pays", Value: crud.Cell(a.Country)},
			}
		},
		Describe: func(a flora.Address) string { return a.Name + ", " + a.City },
	}
}

func decodeAddress(values url.Values) (AddressDraft, map[string]string) {
	draft := AddressDraft{
		Client:     values.Get("client"),
		Name:       strings.TrimSpace(values.Get("nom")),
		Street:     strings.TrimSpace(values.Get("rue")),
		City:       strings.TrimSpace(values.Get("ville")),
		PostalCode: strings.TrimSpace(values.Get("code_postal")),
		Country:    strings.TrimSpace(values.Get("pays")),
	}
	errs := map[string]string{}
	if draft.Name == "" {
		errs["nom"] = "Le nom est requis."
	}
	if draft.Street == "" {
		errs["rue"] = "La rue est requise."
	}
	if draft.City == "" {
		errs["ville"] = "La ville est requise."
	}
	if len(errs) > 0 {
		return AddressDraft{}, errs
	}
	return draft, nil
}

func wishlistSchema() crud.Schema[flora.Wishlist] {
	return crud.Schema[flora.Wishlist]{
		Title:      "Wishlists",
		Singular:   "Wishlist",
		ID:         func(wl flora.Wishlist) string { return wl.ID },
		Searchable: true,
		CanDelete:  true,
		HasDetail:  true,
		Columns: []crud.Column[flora.Wishlist]{
			{Label: "Client", Value: func(wl flora.Wishlist) template.HTML { return crud.Cell(wl.Client.Username) }},
			{Label: "E-mail", Value: func(wl flora.Wishlist) template.HTML { return crud.Cell(wl.Client.Email) }},
			{Label: "Produits", Value: func(wl flora.Wishlist) template.HTML { return crud.CountBadge(len(wl.Products)) }},
		},
		Detail: func(wl flora.Wishlist) []crud.DetailRow {
			rows := []crud.DetailRow{
				{Label: "Client", Value: crud.Cell(wl.Client.Username + " <" + wl.Client.Email + ">")},
			}
			for _, p := range wl.Products {
				rows = append(rows, crud.DetailRow{Label: "Produit", Value: crud.Cell(p.Name)})
			}
			return rows
		},
		Describe: func(wl flora.Wishlist) string { return "wishlist de " + wl.Client.Username },
	}
}
