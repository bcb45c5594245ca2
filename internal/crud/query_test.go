package crud

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseQuery(t *testing.T) {
	req := httptest.NewRequest("GET", "/admin/produits?page=3&search=rose&category=2&statut=actif&rogue=x", nil)
	q := ParseQuery(req, 10, []string{"category", "statut"})

	assert.Equal(t, 3, q.Page)
	assert.Equal(t, 10, q.PerPage)
	assert.Equal(t, "rose", q.Search)
	assert.Equal(t, map[string]string{"category": "2", "statut": "actif"}, q.Filters)
}

func TestParseQueryDefaults(t *testing.T) {
	req := httptest.NewRequest("GET", "/admin/produits?page=-2", nil)
	q := ParseQuery(req, 0, nil)

	assert.Equal(t, 1, q.Page)
	assert.Equal(t, 10, q.PerPage)
	assert.Empty(t, q.Search)
	assert.Empty(t, q.Filters)
}

func TestParseQueryDropsAllSentinel(t *testing.T) {
	req := httptest.NewRequest("GET", "/admin/produits?category=all", nil)
	q := ParseQuery(req, 10, []string{"category"})
	assert.NotContains(t, q.Filters, "category")
}

func TestQueryWithSearchResetsPage(t *testing.T) {
	q := Query{Page: 4, PerPage: 10, Filters: map[string]string{"statut": "actif"}}
	out := q.WithSearch("tulipe")

	assert.Equal(t, 1, out.Page)
	assert.Equal(t, "tulipe", out.Search)
	assert.Equal(t, 4, q.Page, "receiver must stay untouched")
}

func TestQueryWithFilterIsCopyOnWrite(t *testing.T) {
	q := Query{Page: 2, Filters: map[string]string{"statut": "actif"}}
	out := q.WithFilter("category", "3")

	assert.Equal(t, 1, out.Page)
	assert.Equal(t, "3", out.Filters["category"])
	assert.NotContains(t, q.Filters, "category", "original filter map must not be mutated")

	cleared := out.WithFilter("statut", "")
	assert.NotContains(t, cleared.Filters, "statut")
}

func TestQueryValues(t *testing.T) {
	q := Query{Page: 2, PerPage: 25, Search: "orchidée", Filters: map[string]string{"statut": "actif"}}
	values := q.Values()

	assert.Equal(t, "2", values.Get("page"))
	assert.Equal(t, "25", values.Get("per_page"))
	assert.Equal(t, "orchidée", values.Get("search"))
	assert.Equal(t, "actif", values.Get("statut"))
}

func TestQueryEncodeOmitsDefaults(t *testing.T) {
	assert.Empty(t, Query{Page: 1, PerPage: 10}.Encode())

	q := Query{Page: 3, Search: "lys", Filters: map[string]string{"statut": "actif"}}
	assert.Equal(t, "page=3&search=lys&statut=actif", q.Encode())
}

func TestQueryURL(t *testing.T) {
	assert.Equal(t, "/admin/produits", Query{Page: 1}.URL("/admin/produits"))
	assert.Equal(t, "/admin/produits?page=2", Query{Page: 2}.URL("/admin/produits"))
}
