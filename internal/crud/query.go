// Package crud generalises the paginated list screens of the admin panel:
// one controller drives fetch/filter/paginate/mutate for any resource, and
// one schema-driven handler renders the table, filter bar and modals.
package crud

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/chezflora/flora-admin/internal/shared"
)

// Query captures the list parameters of one page view: the requested page
// plus the search and filter state. A zero Query means page 1, no search.
type Query struct {
	Page    int
	PerPage int
	Search  string
	Filters map[string]string
}

// ParseQuery reads the list parameters from the request. Only filter names
// in allowed are accepted; everything else is dropped.
func ParseQuery(r *http.Request, perPage int, allowed []string) Query {
	if perPage <= 0 {
		perPage = shared.DefaultPerPage
	}
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	q := Query{
		Page:    page,
		PerPage: perPage,
		Search:  r.URL.Query().Get("search"),
		Filters: map[string]string{},
	}
	for _, name := range allowed {
		if value := r.URL.Query().Get(name); value != "" && value != "all" {
			q.Filters[name] = value
		}
	}
	return q
}

// WithPage returns a copy of the query pointing at another page.
func (q Query) WithPage(page int) Query {
	out := q.clone()
	out.Page = page
	return out
}

// WithSearch returns a copy with a new search term, reset to page 1.
// A search change never preserves a stale page index.
func (q Query) WithSearch(search string) Query {
	out := q.clone()
	out.Search = search
	out.Page = 1
	return out
}

// WithFilter returns a copy with one filter changed, reset to page 1.
func (q Query) WithFilter(name, value string) Query {
	out := q.clone()
	if value == "" || value == "all" {
		delete(out.Filters, name)
	} else {
		out.Filters[name] = value
	}
	out.Page = 1
	return out
}

// Values renders the query as API parameters: page, per_page, search plus
// the active filters.
func (q Query) Values() url.Values {
	values := url.Values{}
	values.Set("page", strconv.Itoa(q.Page))
	values.Set("per_page", strconv.Itoa(q.effectivePerPage()))
	if q.Search != "" {
		values.Set("search", q.Search)
	}
	for name, value := range q.Filters {
		values.Set(name, value)
	}
	return values
}

// Encode renders the query as a browser query string, omitting defaults so
// list URLs stay short.
func (q Query) Encode() string {
	values := url.Values{}
	if q.Page > 1 {
		values.Set("page", strconv.Itoa(q.Page))
	}
	if q.Search != "" {
		values.Set("search", q.Search)
	}
	for name, value := range q.Filters {
		values.Set(name, value)
	}
	return values.Encode()
}

// URL builds a list URL for the query under the given base path.
func (q Query) URL(basePath string) string {
	if encoded := q.Encode(); encoded != "" {
		return basePath + "?" + encoded
	}
	return basePath
}

func (q Query) effectivePerPage() int {
	if q.PerPage <= 0 {
		return shared.DefaultPerPage
	}
	return q.PerPage
}

func (q Query) clone() Query {
	filters := make(map[string]string, len(q.Filters))
	for name, value := range q.Filters {
		filters[name] = value
	}
	q.Filters = filters
	return q
}
