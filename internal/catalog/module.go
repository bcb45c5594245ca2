// Package catalog serves the product screens: the catalogue with category
// and activity filters, photo management, categories, promotions with
// their product-or-category targeting, the low stock report and the
// product statistics page.
package catalog

import (
	"context"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/chezflora/flora-admin/internal/charts"
	"github.com/chezflora/flora-admin/internal/crud"
	"github.com/chezflora/flora-admin/internal/flora"
	"github.com/chezflora/flora-admin/internal/shared"
	"github.com/chezflora/flora-admin/internal/view"
)

const optionPageSize = 200

// Module bundles the catalogue screens.
type Module struct {
	logger   *slog.Logger
	client   *flora.Client
	renderer *view.Renderer
	csrf     *shared.CSRFManager
	audit    crud.Recorder
}

// NewModule constructs the catalog module.
func NewModule(logger *slog.Logger, client *flora.Client, renderer *view.Renderer, csrf *shared.CSRFManager, audit crud.Recorder) *Module {
	return &Module{logger: logger, client: client, renderer: renderer, csrf: csrf, audit: audit}
}

// Routes mounts the catalogue screens under the admin router.
func (m *Module) Routes(r chi.Router) {
	products := crud.NewPages(crud.PagesConfig[flora.Product, ProductDraft]{
		Logger:   m.logger,
		Renderer: m.renderer,
		CSRF:     m.csrf,
		Backend:  crud.RemoteBackend[flora.Product, ProductDraft](m.client, "/produits"),
		Schema:   productSchema(),
		BasePath: "/admin/products",
		Decode:   decodeProduct,
		Options:  m.categoryOnlyOptions,
		Audit:    m.audit,
		Resource: "produit",
	})

	categories := crud.NewPages(crud.PagesConfig[flora.Category, CategoryDraft]{
		Logger:   m.logger,
		Renderer: m.renderer,
		CSRF:     m.csrf,
		Backend:  crud.RemoteBackend[flora.Category, CategoryDraft](m.client, "/categories"),
		Schema:   categorySchema(),
		BasePath: "/admin/categories",
		Decode:   decodeCategory,
		Audit:    m.audit,
		Resource: "catégorie",
	})

	promotions := crud.NewPages(crud.PagesConfig[flora.Promotion, PromotionDraft]{
		Logger:   m.logger,
		Renderer: m.renderer,
		CSRF:     m.csrf,
		Backend:  crud.RemoteBackend[flora.Promotion, PromotionDraft](m.client, "/promotions"),
		Schema:   promotionSchema(),
		BasePath: "/admin/promotions",
		Decode:   decodePromotion,
		Options:  m.promotionOptions,
		Audit:    m.audit,
		Resource: "promotion",
	})

	r.Route("/products", func(r chi.Router) {
		r.Get("/stats", m.Stats)
		r.Get("/low-stock", m.LowStock)
		r.Get("/{id}/photos", m.Photos)
		r.Post("/{id}/photos", m.UploadPhoto)
		r.Post("/{id}/photos/{photoID}/delete", m.DeletePhoto)
		products.Mount(r)
	})
	r.Route("/categories", func(r chi.Router) { categories.Mount(r) })
	r.Route("/promotions", func(r chi.Router) { promotions.Mount(r) })
}

// categoryOnlyOptions feeds the category select of the product form and
// filter bar.
func (m *Module) categoryOnlyOptions(ctx context.Context) map[string][]crud.Option {
	return map[string][]crud.Option{"categorie": m.categoryOptions(ctx)}
}

// promotionOptions feeds both branches of the promotion target choice.
func (m *Module) promotionOptions(ctx context.Context) map[string][]crud.Option {
	return map[string][]crud.Option{
		"categorie": m.categoryOptions(ctx),
		"produits":  m.productOptions(ctx),
	}
}

func (m *Module) categoryOptions(ctx context.Context) []crud.Option {
	query := url.Values{"per_page": {strconv.Itoa(optionPageSize)}}
	cats, _, err := flora.List[flora.Category](ctx, m.client, "/categories/", query)
	if err != nil {
		m.logger.Error("load category options", "error", err)
		return nil
	}
	options := make([]crud.Option, 0, len(cats))
	for _, c := range cats {
		options = append(options, crud.Option{Value: c.ID, Label: c.Name})
	}
	return options
}

func (m *Module) productOptions(ctx context.Context) []crud.Option {
	query := url.Values{"per_page": {strconv.Itoa(optionPageSize)}}
	prods, _, err := flora.List[flora.Product](ctx, m.client, "/produits/", query)
	if err != nil {
		m.logger.Error("load product options", "error", err)
		return nil
	}
	options := make([]crud.Option, 0, len(prods))
	for _, p := range prods {
		options = append(options, crud.Option{Value: p.ID, Label: p.Name})
	}
	return options
}

// photosView is the page model of the product photo manager.
type photosView struct {
	Product flora.Product
	BackURL string
}

// Photos renders the photo manager of one product.
func (m *Module) Photos(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	product, err := flora.Get[flora.Product](r.Context(), m.client, "/produits/"+id+"/")
	if err != nil {
		if crud.RedirectExpired(w, r, err) {
			return
		}
		http.Redirect(w, r, "/admin/products", http.StatusSeeOther)
		return
	}
	m.renderer.Page(w, r, http.StatusOK, "photos.html", "Photos : "+product.Name, photosView{
		Product: product,
		BackURL: "/admin/products",
	})
}

// UploadPhoto attaches one image to a product.
func (m *Module) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	redirect := "/admin/products/" + id + "/photos"
	sess := shared.SessionFromContext(r.Context())

	if err := r.ParseMultipartForm(10 << 20); err != nil {
		m.flash(sess, "error", "Fichier invalide.")
		http.Redirect(w, r, redirect, http.StatusSeeOther)
		return
	}
	if err := m.csrf.VerifyToken(r.Context(), sess, r.PostFormValue(shared.CSRFFormField)); err != nil {
		m.flash(sess, "error", "La session a expiré, veuillez réessayer.")
		http.Redirect(w, r, redirect, http.StatusSeeOther)
		return
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		m.flash(sess, "error", "Sélectionnez une image.")
		http.Redirect(w, r, redirect, http.StatusSeeOther)
		return
	}
	defer file.Close()

	err = m.client.Upload(r.Context(), "/photos/", "image", header.Filename, file, map[string]string{"produit": id})
	if err != nil {
		if crud.RedirectExpired(w, r, err) {
			return
		}
		m.logger.Error("upload photo", "product", id, "error", err)
		m.flash(sess, "error", "L'envoi de la photo a échoué.")
	} else {
		m.audit.Record(r.Context(), "upload-photo", "produit", id, header.Filename)
		m.flash(sess, "success", "Photo ajoutée.")
	}
	http.Redirect(w, r, redirect, http.StatusSeeOther)
}

// DeletePhoto removes one image from a product.
func (m *Module) DeletePhoto(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	photoID := chi.URLParam(r, "photoID")
	redirect := "/admin/products/" + id + "/photos"
	sess := shared.SessionFromContext(r.Context())

	if err := r.ParseForm(); err == nil {
		if err := m.csrf.VerifyToken(r.Context(), sess, r.PostFormValue(shared.CSRFFormField)); err == nil {
			if err := flora.Delete(r.Context(), m.client, "/photos/"+photoID+"/"); err != nil {
				if crud.RedirectExpired(w, r, err) {
					return
				}
				m.logger.Error("delete photo", "photo", photoID, "error", err)
				m.flash(sess, "error", "La suppression de la photo a échoué.")
			} else {
				m.audit.Record(r.Context(), "delete-photo", "produit", id, photoID)
				m.flash(sess, "success", "Photo supprimée.")
			}
		}
	}
	http.Redirect(w, r, redirect, http.StatusSeeOther)
}

// LowStock renders the low stock report of /produits/low_stock/.
func (m *Module) LowStock(w http.ResponseWriter, r *http.Request) {
	page := view.StatsView{Heading: "Stock faible"}
	report, err := flora.Fetch[flora.LowStockReport](r.Context(), m.client, "/produits/low_stock/", nil)
	if err != nil {
		if crud.RedirectExpired(w, r, err) {
			return
		}
		m.logger.Error("low stock report", "error", err)
		page.Err = "Erreur lors du chargement du rapport."
	} else {
		page.Cards = []view.StatCard{
			{Label: "Produits sous le seuil", Value: strconv.Itoa(report.TotalLowStock), Hint: "Seuil : " + strconv.Itoa(report.Threshold)},
		}
		section := view.StatSection{Title: "Produits concernés"}
		for _, item := range report.Products {
			label := item.Name
			if item.CategoryName != nil {
				label += " (" + *item.CategoryName + ")"
			}
			section.Rows = append(section.Rows, view.StatRow{Label: label, Value: strconv.Itoa(item.Stock) + " en stock"})
		}
		page.Sections = []view.StatSection{section}
	}
	m.renderer.Page(w, r, http.StatusOK, "stats.html", "Stock faible", page)
}

// Stats renders the catalogue statistics of /produits/stats/.
func (m *Module) Stats(w http.ResponseWriter, r *http.Request) {
	page := view.StatsView{Heading: "Statistiques des produits"}
	stats, err := flora.Fetch[flora.ProductStats](r.Context(), m.client, "/produits/stats/", nil)
	if err != nil {
		if crud.RedirectExpired(w, r, err) {
			return
		}
		m.logger.Error("product stats", "error", err)
		page.Err = "Erreur lors du chargement des statistiques."
	} else {
		page.Cards = []view.StatCard{
			{Label: "Produits", Value: strconv.Itoa(stats.Total)},
			{Label: "Produits actifs", Value: strconv.Itoa(stats.Active)},
		}
		section := view.StatSection{Title: "Meilleures ventes"}
		for _, top := range stats.TopSellers {
			section.Rows = append(section.Rows, view.StatRow{Label: top.Name, Value: view.Euro(top.Price)})
		}
		page.Sections = []view.StatSection{section}
		page.Charts = []template.HTML{charts.Bar("Produits par catégorie", stats.ByCategory)}
	}
	m.renderer.Page(w, r, http.StatusOK, "stats.html", "Statistiques des produits", page)
}

func (m *Module) flash(sess *shared.Session, kind, message string) {
	if sess != nil {
		sess.AddFlash(shared.FlashMessage{Kind: kind, Message: message})
	}
}
