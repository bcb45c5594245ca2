package view

import "github.com/chezflora/flora-admin/internal/shared"

// NavItem is one sidebar entry. An entry is active only when its path
// exactly equals the current location path; there is no prefix matching.
type NavItem struct {
	Label  string
	Path   string
	Active bool
}

// NavSection is a collapsible sidebar group. Sections with no Items render
// as a single link (Dashboard); the rest expand independently and default
// to collapsed.
type NavSection struct {
	Label    string
	Slug     string
	Icon     string
	Path     string
	Items    []NavItem
	Expanded bool
	Active   bool
}

// adminNav is the navigation tree of the panel.
var adminNav = []NavSection{
	{Label: "Tableau de bord", Slug: "dashboard", Icon: "home", Path: "/admin"},
	{Label: "Utilisateurs", Slug: "users", Icon: "users", Items: []NavItem{
		{Label: "Tous les utilisateurs", Path: "/admin/users"},
		{Label: "Statistiques", Path: "/admin/users/stats"},
		{Label: "Bannissements", Path: "/admin/users/bans"},
		{Label: "Adresses", Path: "/admin/addresses"},
		{Label: "Wishlists", Path: "/admin/wishlists"},
	}},
	{Label: "Commandes", Slug: "orders", Icon: "cart", Items: []NavItem{
		{Label: "Liste des commandes", Path: "/admin/commands"},
		{Label: "Lignes de commande", Path: "/admin/command-lines"},
		{Label: "Paniers", Path: "/admin/carts"},
		{Label: "Revenus", Path: "/admin/commands/revenue"},
		{Label: "En attente", Path: "/admin/commands/pending"},
	}},
	{Label: "Produits", Slug: "products", Icon: "package", Items: []NavItem{
		{Label: "Tous les produits", Path: "/admin/products"},
		{Label: "Statistiques", Path: "/admin/products/stats"},
		{Label: "Catégories", Path: "/admin/categories"},
		{Label: "Promotions", Path: "/admin/promotions"},
		{Label: "Stock faible", Path: "/admin/products/low-stock"},
	}},
	{Label: "Ateliers", Slug: "workshops", Icon: "flower", Items: []NavItem{
		{Label: "Liste des ateliers", Path: "/admin/ateliers"},
		{Label: "Statistiques", Path: "/admin/ateliers/stats"},
	}},
	{Label: "Services", Slug: "services", Icon: "scissors", Items: []NavItem{
		{Label: "Liste des services", Path: "/admin/services"},
		{Label: "Devis", Path: "/admin/devis"},
		{Label: "Abonnements", Path: "/admin/subscriptions"},
		{Label: "Statistiques abonnements", Path: "/admin/subscriptions/stats"},
	}},
	{Label: "Contenu", Slug: "content", Icon: "pen", Items: []NavItem{
		{Label: "Articles", Path: "/admin/articles"},
		{Label: "Commentaires", Path: "/admin/comments"},
		{Label: "Réalisations", Path: "/admin/realisations"},
	}},
	{Label: "Paiements", Slug: "payments", Icon: "credit-card", Items: []NavItem{
		{Label: "Liste des paiements", Path: "/admin/payments"},
		{Label: "Statistiques", Path: "/admin/payments/stats"},
	}},
	{Label: "Paramètres", Slug: "settings", Icon: "cog", Items: []NavItem{
		{Label: "Paramètres généraux", Path: "/admin/settings"},
		{Label: "Audit", Path: "/admin/audit"},
		{Label: "Exports", Path: "/admin/exports"},
	}},
}

// BuildNav computes the sidebar for the current path and preferences.
// Sections containing the active entry are force-expanded so the active
// link is never hidden.
func BuildNav(currentPath string, prefs shared.UIPrefs) []NavSection {
	nav := make([]NavSection, len(adminNav))
	for i, section := range adminNav {
		out := section
		out.Expanded = prefs.ExpandedSections[section.Slug]
		out.Active = section.Path != "" && section.Path == currentPath
		out.Items = make([]NavItem, len(section.Items))
		for j, item := range section.Items {
			item.Active = item.Path == currentPath
			if item.Active {
				out.Expanded = true
			}
			out.Items[j] = item
		}
		nav[i] = out
	}
	return nav
}
