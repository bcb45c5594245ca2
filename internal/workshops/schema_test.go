package workshops

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeWorkshop(t *testing.T) {
	draft, errs := decodeWorkshop(url.Values{
		"nom":            {" Atelier bouquet de saison "},
		"description":    {"Composition guidée"},
		"date":           {"2026-09-12T14:00"},
		"duree":          {"90"},
		"prix":           {"45.00"},
		"lieu":           {"Boutique de Lyon"},
		"tags":           {"débutant,automne"},
		"places_totales": {"12"},
		"is_active":      {"on"},
	})
	require.Empty(t, errs)
	assert.Equal(t, "Atelier bouquet de saison", draft.Name)
	assert.Equal(t, 90, draft.Duration)
	assert.Equal(t, 12, draft.TotalPlaces)
	assert.True(t, draft.IsActive)
}

func TestDecodeWorkshopMissingFields(t *testing.T) {
	_, errs := decodeWorkshop(url.Values{})
	for _, field := range []string{"nom", "date", "prix", "lieu", "duree", "places_totales"} {
		assert.Contains(t, errs, field)
	}
}

func TestDecodeWorkshopRejectsNonPositiveNumbers(t *testing.T) {
	_, errs := decodeWorkshop(url.Values{
		"nom":            {"Atelier"},
		"date":           {"2026-09-12T14:00"},
		"prix":           {"45"},
		"lieu":           {"Lyon"},
		"duree":          {"0"},
		"places_totales": {"-3"},
	})
	assert.Contains(t, errs, "duree")
	assert.Contains(t, errs, "places_totales")
}
