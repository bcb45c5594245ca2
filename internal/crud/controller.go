package crud

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/chezflora/flora-admin/internal/flora"
	"github.com/chezflora/flora-admin/internal/shared"
)

// Backend binds a controller to one remote resource. Create, Update and
// Delete talk to the mutation endpoints; List and Get to the read side.
type Backend[T any, D any] struct {
	List   func(ctx context.Context, q Query) ([]T, int, error)
	Get    func(ctx context.Context, id string) (T, error)
	Create func(ctx context.Context, draft D) (T, error)
	Update func(ctx context.Context, id string, draft D) (T, error)
	Delete func(ctx context.Context, id string) error
}

// PageState is the list view state computed for one request.
type PageState[T any] struct {
	Items      []T
	Pagination shared.Pagination
	Query      Query
	Err        string
}

// Controller drives the list view of one resource: load, search, paginate,
// and mutate-then-refetch. It holds no mutable state of its own, so one
// controller serves every session concurrently and each request computes
// its own PageState. The last page an operator saw is remembered in their
// session so a failed refresh can keep showing it under the error banner.
type Controller[T any, D any] struct {
	backend   Backend[T, D]
	perPage   int
	loadError string
	retainKey string
}

// retainedPage is the session-stored snapshot of the last successful load.
type retainedPage[T any] struct {
	Items      []T               `json:"items"`
	Pagination shared.Pagination `json:"pagination"`
}

// NewController constructs a controller. loadError is the user-facing
// message shown when a list fetch fails. retainKey names the session slot
// holding the remembered page; empty disables retention.
func NewController[T any, D any](backend Backend[T, D], perPage int, loadError, retainKey string) *Controller[T, D] {
	if perPage <= 0 {
		perPage = shared.DefaultPerPage
	}
	if loadError == "" {
		loadError = "Erreur lors du chargement des données."
	}
	return &Controller[T, D]{
		backend:   backend,
		perPage:   perPage,
		loadError: loadError,
		retainKey: retainKey,
	}
}

// Load fetches the page described by q. On failure the last page this
// operator successfully saw is restored from their session and Err carries
// a user-facing message; the raw error is also returned so callers can
// detect authentication expiry. A page past the end of the result set
// (after deleting the last item of the last page, or a hand-edited page
// number) re-issues the load at the last valid page — the remote paginator
// signals past-the-end either with an empty list or with a 404.
func (c *Controller[T, D]) Load(ctx context.Context, q Query) (PageState[T], error) {
	q.PerPage = c.perPage
	if q.Page < 1 {
		q.Page = 1
	}

	for {
		items, total, err := c.backend.List(ctx, q)
		if err != nil {
			if errors.Is(err, flora.ErrNotFound) && q.Page > 1 {
				q = q.WithPage(q.Page - 1)
				continue
			}
			state := c.retained(ctx)
			state.Query = q
			state.Err = c.loadError
			return state, err
		}

		pag := shared.NewPagination(q.Page, c.perPage, total)
		if len(items) == 0 && q.Page > 1 {
			retry := pag.TotalPages
			if retry < 1 {
				retry = 1
			}
			if retry < q.Page {
				q = q.WithPage(retry)
				continue
			}
		}

		state := PageState[T]{Items: items, Pagination: pag, Query: q.WithPage(pag.Page)}
		c.remember(ctx, state)
		return state, nil
	}
}

// SetSearch applies a new search term to q, resets to page 1 and reloads.
func (c *Controller[T, D]) SetSearch(ctx context.Context, q Query, search string) (PageState[T], error) {
	return c.Load(ctx, q.WithSearch(search))
}

// SetFilter applies one filter value to q, resets to page 1 and reloads.
func (c *Controller[T, D]) SetFilter(ctx context.Context, q Query, name, value string) (PageState[T], error) {
	return c.Load(ctx, q.WithFilter(name, value))
}

// GoToPage navigates from current to page n. Requests outside
// [1, TotalPages] are ignored and current is returned unchanged.
func (c *Controller[T, D]) GoToPage(ctx context.Context, current PageState[T], n int) (PageState[T], error) {
	if n < 1 {
		return current, nil
	}
	if current.Pagination.TotalPages > 0 && n > current.Pagination.TotalPages {
		return current, nil
	}
	return c.Load(ctx, current.Query.WithPage(n))
}

// Create submits a draft to the creation endpoint. On success the list is
// refetched exactly once at the current query; the new item is therefore
// only visible if server-side ordering places it on the current page.
func (c *Controller[T, D]) Create(ctx context.Context, q Query, draft D) (T, PageState[T], error) {
	created, err := c.backend.Create(ctx, draft)
	if err != nil {
		var zero T
		return zero, PageState[T]{Query: q}, err
	}
	state, _ := c.Load(ctx, q)
	return created, state, nil
}

// Update submits a draft to the edit endpoint for id, then refetches once.
func (c *Controller[T, D]) Update(ctx context.Context, q Query, id string, draft D) (T, PageState[T], error) {
	updated, err := c.backend.Update(ctx, id, draft)
	if err != nil {
		var zero T
		return zero, PageState[T]{Query: q}, err
	}
	state, _ := c.Load(ctx, q)
	return updated, state, nil
}

// Remove deletes id, then refetches once. Load handles the step-back when
// the removed record was the only item of the last page.
func (c *Controller[T, D]) Remove(ctx context.Context, q Query, id string) (PageState[T], error) {
	if err := c.backend.Delete(ctx, id); err != nil {
		return PageState[T]{Query: q}, err
	}
	state, _ := c.Load(ctx, q)
	return state, nil
}

// remember stores the rendered page in the operator's session. The write
// is skipped when the snapshot is unchanged so plain navigation does not
// dirty the session on every request.
func (c *Controller[T, D]) remember(ctx context.Context, state PageState[T]) {
	if c.retainKey == "" {
		return
	}
	sess := shared.SessionFromContext(ctx)
	if sess == nil {
		return
	}
	raw, err := json.Marshal(retainedPage[T]{Items: state.Items, Pagination: state.Pagination})
	if err != nil {
		return
	}
	if sess.Get(c.retainKey) == string(raw) {
		return
	}
	sess.Set(c.retainKey, string(raw))
}

// retained restores the last remembered page of this operator, or an empty
// state when there is none.
func (c *Controller[T, D]) retained(ctx context.Context) PageState[T] {
	var state PageState[T]
	if c.retainKey == "" {
		return state
	}
	sess := shared.SessionFromContext(ctx)
	if sess == nil {
		return state
	}
	raw := sess.Get(c.retainKey)
	if raw == "" {
		return state
	}
	var page retainedPage[T]
	if err := json.Unmarshal([]byte(raw), &page); err != nil {
		return state
	}
	state.Items = page.Items
	state.Pagination = page.Pagination
	return state
}
