package crud

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chezflora/flora-admin/internal/flora"
	"github.com/chezflora/flora-admin/internal/shared"
)

type fleur struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type fleurDraft struct {
	Name string
}

// fakeBackend serves a fixed slice with server-side paging, like the
// remote API would, and counts List calls for refetch assertions. With
// strictPages it answers past-the-end pages with a 404 the way the remote
// paginator does, instead of an empty list.
type fakeBackend struct {
	items       []fleur
	listCalls   int
	listErr     error
	strictPages bool
	lastQuery   Query
}

func (b *fakeBackend) list(ctx context.Context, q Query) ([]fleur, int, error) {
	b.listCalls++
	b.lastQuery = q
	if b.listErr != nil {
		return nil, 0, b.listErr
	}
	start := (q.Page - 1) * q.PerPage
	if start >= len(b.items) {
		if b.strictPages && q.Page > 1 {
			return nil, 0, flora.ErrNotFound
		}
		return []fleur{}, len(b.items), nil
	}
	end := start + q.PerPage
	if end > len(b.items) {
		end = len(b.items)
	}
	return b.items[start:end], len(b.items), nil
}

func (b *fakeBackend) backend() Backend[fleur, fleurDraft] {
	return Backend[fleur, fleurDraft]{
		List: b.list,
		Get: func(ctx context.Context, id string) (fleur, error) {
			for _, item := range b.items {
				if item.ID == id {
					return item, nil
				}
			}
			return fleur{}, errors.New("not found")
		},
		Create: func(ctx context.Context, draft fleurDraft) (fleur, error) {
			item := fleur{ID: fmt.Sprintf("f%d", len(b.items)+1), Name: draft.Name}
			b.items = append(b.items, item)
			return item, nil
		},
		Update: func(ctx context.Context, id string, draft fleurDraft) (fleur, error) {
			for i, item := range b.items {
				if item.ID == id {
					b.items[i].Name = draft.Name
					return b.items[i], nil
				}
			}
			return fleur{}, errors.New("not found")
		},
		Delete: func(ctx context.Context, id string) error {
			for i, item := range b.items {
				if item.ID == id {
					b.items = append(b.items[:i], b.items[i+1:]...)
					return nil
				}
			}
			return errors.New("not found")
		},
	}
}

func seedFleurs(n int) []fleur {
	items := make([]fleur, 0, n)
	for i := 1; i <= n; i++ {
		items = append(items, fleur{ID: fmt.Sprintf("f%d", i), Name: fmt.Sprintf("Rose %d", i)})
	}
	return items
}

func sessionContext(id string) context.Context {
	return shared.ContextWithSession(context.Background(), &shared.Session{ID: id})
}

func TestControllerLoadFirstPage(t *testing.T) {
	fake := &fakeBackend{items: seedFleurs(25)}
	ctrl := NewController(fake.backend(), 10, "", "")

	state, err := ctrl.Load(context.Background(), Query{Page: 1})
	require.NoError(t, err)

	assert.Len(t, state.Items, 10)
	assert.Equal(t, 25, state.Pagination.Total)
	assert.Equal(t, 3, state.Pagination.TotalPages)
	assert.Equal(t, 1, state.Query.Page)
	assert.Empty(t, state.Err)
}

func TestControllerLoadStepsBackPastEnd(t *testing.T) {
	// 20 items, page size 10: a reload of page 3 finds it empty and must
	// land on page 2.
	fake := &fakeBackend{items: seedFleurs(20)}
	ctrl := NewController(fake.backend(), 10, "", "")

	state, err := ctrl.Load(context.Background(), Query{Page: 3})
	require.NoError(t, err)

	assert.Equal(t, 2, state.Query.Page)
	assert.Equal(t, 2, state.Pagination.Page)
	assert.Len(t, state.Items, 10)
}

func TestControllerLoadStepsBackWhenRemoteRejectsPage(t *testing.T) {
	// The remote paginator answers a past-the-end page with a 404, not an
	// empty list. A hand-edited page=5 of a two-page set must still land
	// on the last valid page instead of an error banner.
	fake := &fakeBackend{items: seedFleurs(20), strictPages: true}
	ctrl := NewController(fake.backend(), 10, "", "")

	state, err := ctrl.Load(context.Background(), Query{Page: 5})
	require.NoError(t, err)

	assert.Equal(t, 2, state.Query.Page)
	assert.Len(t, state.Items, 10)
	assert.Empty(t, state.Err)
}

func TestControllerRemoveLastItemStepsBackOn404(t *testing.T) {
	// Three items, page size two: page 2 holds one record. Deleting it
	// makes the refetch of page 2 come back as a 404; the operator must
	// land on page 1, not on an error banner.
	fake := &fakeBackend{items: seedFleurs(3), strictPages: true}
	ctrl := NewController(fake.backend(), 2, "", "")

	state, err := ctrl.Load(context.Background(), Query{Page: 2})
	require.NoError(t, err)
	require.Len(t, state.Items, 1)

	state, err = ctrl.Remove(context.Background(), state.Query, state.Items[0].ID)
	require.NoError(t, err)

	assert.Empty(t, state.Err)
	assert.Equal(t, 1, state.Query.Page)
	assert.Len(t, state.Items, 2)
}

func TestControllerLoadEmptyResultStaysOnPageOne(t *testing.T) {
	fake := &fakeBackend{items: nil}
	ctrl := NewController(fake.backend(), 10, "", "")

	state, err := ctrl.Load(context.Background(), Query{Page: 4})
	require.NoError(t, err)

	assert.Equal(t, 1, state.Query.Page)
	assert.Empty(t, state.Items)
	assert.Equal(t, 0, state.Pagination.Total)
}

func TestControllerLoadFailureRetainsItems(t *testing.T) {
	fake := &fakeBackend{items: seedFleurs(5)}
	ctrl := NewController(fake.backend(), 10, "Erreur lors du chargement des fleurs.", "retained_page:/admin/fleurs")
	ctx := sessionContext("sess-1")

	_, err := ctrl.Load(ctx, Query{Page: 1})
	require.NoError(t, err)

	fake.listErr = errors.New("boom")
	state, err := ctrl.Load(ctx, Query{Page: 1})
	require.Error(t, err)

	assert.Len(t, state.Items, 5, "items from the last good load must survive")
	assert.Equal(t, "Erreur lors du chargement des fleurs.", state.Err)
}

func TestControllerRetentionIsPerSession(t *testing.T) {
	fake := &fakeBackend{items: seedFleurs(5)}
	ctrl := NewController(fake.backend(), 10, "", "retained_page:/admin/fleurs")
	alice := sessionContext("sess-alice")
	bruno := sessionContext("sess-bruno")

	_, err := ctrl.Load(alice, Query{Page: 1})
	require.NoError(t, err)

	fake.listErr = errors.New("boom")

	// A session that never saw a good page gets an empty error state, not
	// another operator's rows.
	state, err := ctrl.Load(bruno, Query{Page: 1})
	require.Error(t, err)
	assert.Empty(t, state.Items)
	assert.NotEmpty(t, state.Err)

	state, err = ctrl.Load(alice, Query{Page: 1})
	require.Error(t, err)
	assert.Len(t, state.Items, 5)
}

func TestControllerErrorClearedOnRecovery(t *testing.T) {
	fake := &fakeBackend{items: seedFleurs(3)}
	ctrl := NewController(fake.backend(), 10, "", "")

	fake.listErr = errors.New("boom")
	_, err := ctrl.Load(context.Background(), Query{Page: 1})
	require.Error(t, err)

	fake.listErr = nil
	state, err := ctrl.Load(context.Background(), Query{Page: 1})
	require.NoError(t, err)
	assert.Empty(t, state.Err)
	assert.Len(t, state.Items, 3)
}

func TestControllerSearchResetsPage(t *testing.T) {
	fake := &fakeBackend{items: seedFleurs(30)}
	ctrl := NewController(fake.backend(), 10, "", "")

	current, err := ctrl.Load(context.Background(), Query{Page: 3})
	require.NoError(t, err)

	state, err := ctrl.SetSearch(context.Background(), current.Query, "rose")
	require.NoError(t, err)

	assert.Equal(t, 1, state.Query.Page)
	assert.Equal(t, "rose", state.Query.Search)
	assert.Equal(t, "rose", fake.lastQuery.Search)
}

func TestControllerFilterResetsPage(t *testing.T) {
	fake := &fakeBackend{items: seedFleurs(30)}
	ctrl := NewController(fake.backend(), 10, "", "")

	current, err := ctrl.Load(context.Background(), Query{Page: 2})
	require.NoError(t, err)

	state, err := ctrl.SetFilter(context.Background(), current.Query, "category", "bouquets")
	require.NoError(t, err)
	assert.Equal(t, 1, state.Query.Page)
	assert.Equal(t, "bouquets", state.Query.Filters["category"])

	// Selecting "all" clears the filter again.
	state, err = ctrl.SetFilter(context.Background(), state.Query, "category", "all")
	require.NoError(t, err)
	assert.NotContains(t, state.Query.Filters, "category")
}

func TestControllerGoToPageBounds(t *testing.T) {
	fake := &fakeBackend{items: seedFleurs(25)}
	ctrl := NewController(fake.backend(), 10, "", "")

	current, err := ctrl.Load(context.Background(), Query{Page: 1})
	require.NoError(t, err)
	calls := fake.listCalls

	state, err := ctrl.GoToPage(context.Background(), current, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, state.Query.Page)

	state, err = ctrl.GoToPage(context.Background(), current, 4)
	require.NoError(t, err)
	assert.Equal(t, 1, state.Query.Page)
	assert.Equal(t, calls, fake.listCalls, "out-of-range navigation must not hit the backend")

	state, err = ctrl.GoToPage(context.Background(), current, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, state.Query.Page)
	assert.Len(t, state.Items, 5)
}

func TestControllerMutationsRefetchOnce(t *testing.T) {
	fake := &fakeBackend{items: seedFleurs(5)}
	ctrl := NewController(fake.backend(), 10, "", "")

	q := Query{Page: 1, Filters: map[string]string{}}
	_, err := ctrl.Load(context.Background(), q)
	require.NoError(t, err)

	calls := fake.listCalls
	created, state, err := ctrl.Create(context.Background(), q, fleurDraft{Name: "Pivoine"})
	require.NoError(t, err)
	assert.Equal(t, "Pivoine", created.Name)
	assert.Equal(t, calls+1, fake.listCalls)
	assert.Len(t, state.Items, 6)

	calls = fake.listCalls
	updated, state, err := ctrl.Update(context.Background(), q, created.ID, fleurDraft{Name: "Pivoine rose"})
	require.NoError(t, err)
	assert.Equal(t, "Pivoine rose", updated.Name)
	assert.Equal(t, calls+1, fake.listCalls)
	require.Len(t, state.Items, 6)

	calls = fake.listCalls
	state, err = ctrl.Remove(context.Background(), q, created.ID)
	require.NoError(t, err)
	assert.Equal(t, calls+1, fake.listCalls)
	assert.Len(t, state.Items, 5)
}

func TestControllerRemoveLastItemStepsBack(t *testing.T) {
	fake := &fakeBackend{items: seedFleurs(11)}
	ctrl := NewController(fake.backend(), 10, "", "")

	q := Query{Page: 2, Filters: map[string]string{}}
	state, err := ctrl.Load(context.Background(), q)
	require.NoError(t, err)
	require.Len(t, state.Items, 1)

	state, err = ctrl.Remove(context.Background(), state.Query, state.Items[0].ID)
	require.NoError(t, err)

	assert.Equal(t, 1, state.Query.Page)
	assert.Len(t, state.Items, 10)
	assert.Equal(t, 10, state.Pagination.Total)
}

func TestControllerCreateFailureSkipsRefetch(t *testing.T) {
	fake := &fakeBackend{items: seedFleurs(3)}
	backend := fake.backend()
	backend.Create = func(ctx context.Context, draft fleurDraft) (fleur, error) {
		return fleur{}, errors.New("validation")
	}
	ctrl := NewController(backend, 10, "", "")

	q := Query{Page: 1, Filters: map[string]string{}}
	_, err := ctrl.Load(context.Background(), q)
	require.NoError(t, err)
	calls := fake.listCalls

	_, _, err = ctrl.Create(context.Background(), q, fleurDraft{Name: "x"})
	require.Error(t, err)
	assert.Equal(t, calls, fake.listCalls, "no refetch after a failed create")
}

func TestControllerConcurrentLoadsKeepOwnResults(t *testing.T) {
	// Two operators hit the same screen at once; the slower response must
	// come back with its own query and rows, never the other request's.
	release := make(chan struct{})
	backend := Backend[fleur, fleurDraft]{
		List: func(ctx context.Context, q Query) ([]fleur, int, error) {
			if q.Search == "lent" {
				<-release
			}
			return []fleur{{ID: "f1", Name: q.Search}}, 1, nil
		},
	}
	ctrl := NewController(backend, 10, "", "")

	var wg sync.WaitGroup
	var slow PageState[fleur]
	wg.Add(1)
	go func() {
		defer wg.Done()
		slow, _ = ctrl.Load(context.Background(), Query{Page: 1, Search: "lent"})
	}()

	fast, err := ctrl.Load(context.Background(), Query{Page: 1, Search: "rapide"})
	require.NoError(t, err)
	close(release)
	wg.Wait()

	assert.Equal(t, "rapide", fast.Query.Search)
	require.Len(t, fast.Items, 1)
	assert.Equal(t, "rapide", fast.Items[0].Name)

	assert.Equal(t, "lent", slow.Query.Search)
	require.Len(t, slow.Items, 1)
	assert.Equal(t, "lent", slow.Items[0].Name)
}
