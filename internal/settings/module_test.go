package settings

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chezflora/flora-admin/internal/flora"
)

func TestDecodeSetting(t *testing.T) {
	draft, errs := decodeSetting(url.Values{
		"cle":         {" livraison_minimum "},
		"valeur":      {"25"},
		"description": {"Montant minimum de commande"},
	})
	require.Empty(t, errs)
	assert.Equal(t, "livraison_minimum", draft.Key)
	assert.Equal(t, "25", draft.Value)

	_, errs = decodeSetting(url.Values{"cle": {" "}})
	assert.Contains(t, errs, "cle")
	assert.Contains(t, errs, "valeur")
}

func TestSettingSchemaUsesNumericID(t *testing.T) {
	schema := settingSchema()
	assert.Equal(t, "42", schema.ID(flora.Setting{ID: 42, Key: "tva"}))

	values := schema.Draft(flora.Setting{ID: 42, Key: "tva", Value: "20"})
	assert.Equal(t, "tva", values.Get("cle"))
	assert.Equal(t, "20", values.Get("valeur"))
}
