package catalog

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chezflora/flora-admin/internal/flora"
)

func TestDecodeProduct(t *testing.T) {
	draft, errs := decodeProduct(url.Values{
		"nom":         {"  Bouquet champêtre  "},
		"prix":        {"24.90"},
		"stock":       {"12"},
		"categorie":   {"c-3"},
		"description": {"Fleurs de saison"},
		"is_active":   {"on"},
	})
	require.Empty(t, errs)
	assert.Equal(t, "Bouquet champêtre", draft.Name)
	assert.Equal(t, "24.90", draft.Price)
	assert.Equal(t, 12, draft.Stock)
	require.NotNil(t, draft.Category)
	assert.Equal(t, "c-3", *draft.Category)
	assert.True(t, draft.IsActive)
}

func TestDecodeProductErrors(t *testing.T) {
	_, errs := decodeProduct(url.Values{
		"nom":   {"   "},
		"prix":  {""},
		"stock": {"-2"},
	})
	assert.Contains(t, errs, "nom")
	assert.Contains(t, errs, "prix")
	assert.Contains(t, errs, "stock")
}

func TestDecodeProductOmitsEmptyCategory(t *testing.T) {
	draft, errs := decodeProduct(url.Values{
		"nom":   {"Rose"},
		"prix":  {"5"},
		"stock": {"0"},
	})
	require.Empty(t, errs)
	assert.Nil(t, draft.Category)
	assert.False(t, draft.IsActive)
}

func TestDecodeCategory(t *testing.T) {
	draft, errs := decodeCategory(url.Values{"nom": {"Plantes vertes"}, "is_active": {"on"}})
	require.Empty(t, errs)
	assert.Equal(t, "Plantes vertes", draft.Name)
	assert.True(t, draft.IsActive)

	_, errs = decodeCategory(url.Values{"nom": {"  "}})
	assert.Contains(t, errs, "nom")
}

func TestDecodePromotionProductTarget(t *testing.T) {
	draft, errs := decodePromotion(url.Values{
		"nom":        {"Soldes d'été"},
		"reduction":  {"15"},
		"date_debut": {"2026-07-01"},
		"date_fin":   {"2026-07-31"},
		"cible":      {"produits"},
		"produits":   {"p1", "p2"},
	})
	require.Empty(t, errs)
	assert.Equal(t, []string{"p1", "p2"}, draft.Products)
	assert.Nil(t, draft.Category)
	assert.Equal(t, 15.0, draft.Discount)
}

func TestDecodePromotionCategoryTarget(t *testing.T) {
	draft, errs := decodePromotion(url.Values{
		"nom":        {"Fête des mères"},
		"reduction":  {"10"},
		"date_debut": {"2026-05-01"},
		"date_fin":   {"2026-05-31"},
		"cible":      {"categorie"},
		"categorie":  {"c-2"},
	})
	require.Empty(t, errs)
	require.NotNil(t, draft.Category)
	assert.Equal(t, "c-2", *draft.Category)
	assert.Empty(t, draft.Products)
}

func TestDecodePromotionTargetIsExclusive(t *testing.T) {
	// A missing or unknown target choice is refused outright.
	_, errs := decodePromotion(url.Values{
		"nom":        {"Promo"},
		"reduction":  {"10"},
		"date_debut": {"2026-05-01"},
		"date_fin":   {"2026-05-31"},
	})
	assert.Contains(t, errs, "cible")

	// Product target without products, category target without category.
	_, errs = decodePromotion(url.Values{
		"nom":        {"Promo"},
		"reduction":  {"10"},
		"date_debut": {"2026-05-01"},
		"date_fin":   {"2026-05-31"},
		"cible":      {"produits"},
	})
	assert.Contains(t, errs, "produits")

	_, errs = decodePromotion(url.Values{
		"nom":        {"Promo"},
		"reduction":  {"10"},
		"date_debut": {"2026-05-01"},
		"date_fin":   {"2026-05-31"},
		"cible":      {"categorie"},
	})
	assert.Contains(t, errs, "categorie")
}

func TestDecodePromotionDiscountBounds(t *testing.T) {
	for _, bad := range []string{"0", "-5", "101", "abc", ""} {
		_, errs := decodePromotion(url.Values{
			"nom":        {"Promo"},
			"reduction":  {bad},
			"date_debut": {"2026-05-01"},
			"date_fin":   {"2026-05-31"},
			"cible":      {"produits"},
			"produits":   {"p1"},
		})
		assert.Contains(t, errs, "reduction", "reduction %q must be rejected", bad)
	}
}

func TestPromotionDraftRoundTrip(t *testing.T) {
	schema := promotionSchema()
	category := &flora.CategoryRef{ID: "c-9", Name: "Orchidées"}
	values := schema.Draft(flora.Promotion{
		ID:        "pr-1",
		Name:      "Promo orchidées",
		Discount:  12.5,
		StartDate: "2026-06-01",
		EndDate:   "2026-06-30",
		Category:  category,
	})

	assert.Equal(t, "categorie", values.Get("cible"))
	assert.Equal(t, "c-9", values.Get("categorie"))
	assert.Equal(t, "12.5", values.Get("reduction"))

	draft, errs := decodePromotion(values)
	require.Empty(t, errs)
	require.NotNil(t, draft.Category)
	assert.Equal(t, "c-9", *draft.Category)
}
