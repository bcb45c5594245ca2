package flora

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memCredentials is a test double for the session-backed credentials.
type memCredentials struct {
	mu      sync.Mutex
	access  string
	refresh string
	cleared bool
}

func (c *memCredentials) AccessToken() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.access
}

func (c *memCredentials) RefreshToken() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.refresh
}

func (c *memCredentials) RotateAccess(access string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.access = access
}

func (c *memCredentials) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.access, c.refresh, c.cleared = "", "", true
}

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client, err := NewClient(ClientConfig{BaseURL: server.URL})
	require.NoError(t, err)
	return client
}

func TestNewClientRequiresBaseURL(t *testing.T) {
	_, err := NewClient(ClientConfig{})
	require.Error(t, err)
}

func TestLogin(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/token/", r.URL.Path)
		var payload map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "fleuriste", payload["username"])
		json.NewEncoder(w).Encode(TokenPair{Access: "acc", Refresh: "ref"})
	}))

	pair, err := client.Login(context.Background(), "fleuriste", "secret")
	require.NoError(t, err)
	assert.Equal(t, "acc", pair.Access)
	assert.Equal(t, "ref", pair.Refresh)
}

func TestListSendsBearerAndQuery(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer acc", r.Header.Get("Authorization"))
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		json.NewEncoder(w).Encode(ListEnvelope[Product]{
			Results: []Product{{ID: "p1", Name: "Bouquet champêtre"}},
			Count:   11,
		})
	}))

	ctx := ContextWithCredentials(context.Background(), &memCredentials{access: "acc", refresh: "ref"})
	items, total, err := List[Product](ctx, client, "/produits/", url.Values{"page": {"2"}})
	require.NoError(t, err)
	assert.Equal(t, 11, total)
	require.Len(t, items, 1)
	assert.Equal(t, "Bouquet champêtre", items[0].Name)
}

func TestExecuteRefreshesOnceOn401(t *testing.T) {
	var refreshed bool
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/token/refresh/":
			var payload map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
			assert.Equal(t, "ref", payload["refresh"])
			refreshed = true
			json.NewEncoder(w).Encode(TokenPair{Access: "fresh"})
		case r.Header.Get("Authorization") == "Bearer fresh":
			json.NewEncoder(w).Encode(User{ID: "u1", Username: "admin"})
		default:
			w.WriteHeader(http.StatusUnauthorized)
		}
	}))

	creds := &memCredentials{access: "stale", refresh: "ref"}
	ctx := ContextWithCredentials(context.Background(), creds)
	user, err := client.Me(ctx)
	require.NoError(t, err)

	assert.True(t, refreshed)
	assert.Equal(t, "admin", user.Username)
	assert.Equal(t, "fresh", creds.AccessToken(), "rotated access token must be stored")
	assert.False(t, creds.cleared)
}

func TestExecuteRefreshFailureClearsCredentials(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))

	creds := &memCredentials{access: "stale", refresh: "ref"}
	ctx := ContextWithCredentials(context.Background(), creds)
	_, err := client.Me(ctx)

	require.ErrorIs(t, err, ErrAuthExpired)
	assert.True(t, creds.cleared)
	assert.Empty(t, creds.AccessToken())
}

func TestExecuteSecond401ClearsCredentials(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/token/refresh/" {
			json.NewEncoder(w).Encode(TokenPair{Access: "fresh"})
			return
		}
		w.WriteHeader(http.StatusUnauthorized)
	}))

	creds := &memCredentials{access: "stale", refresh: "ref"}
	ctx := ContextWithCredentials(context.Background(), creds)
	_, err := client.Me(ctx)

	require.ErrorIs(t, err, ErrAuthExpired)
	assert.True(t, creds.cleared)
}

func TestExecute401WithoutCredentials(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))

	_, err := client.Me(context.Background())
	require.ErrorIs(t, err, ErrAuthExpired)
}

func TestDecodeErrorFieldValidation(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]any{
			"nom":  []string{"Ce champ est obligatoire."},
			"prix": []string{"Un nombre valide est requis."},
		})
	}))

	_, err := Create[Product](context.Background(), client, "/produits/", map[string]string{})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)

	fields := verr.FieldErrors()
	assert.Equal(t, "Ce champ est obligatoire.", fields["nom"])
	assert.Equal(t, "Un nombre valide est requis.", fields["prix"])
}

func TestDecodeErrorDetail(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(map[string]string{"detail": "Commande déjà annulée."})
	}))

	err := Post(context.Background(), client, "/commandes/9/annuler/", nil)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusConflict, apiErr.Status)
	assert.Equal(t, "Commande déjà annulée.", apiErr.Detail)
}

func TestNotFound(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	_, err := Get[Product](context.Background(), client, "/produits/404/")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestPatchSendsPartialPayload(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPatch, r.Method)
		var payload map[string]bool
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, map[string]bool{"is_active": false}, payload)
		json.NewEncoder(w).Encode(Comment{ID: "c1", IsActive: false})
	}))

	comment, err := Patch[Comment](context.Background(), client, "/commentaires/c1/", map[string]bool{"is_active": false})
	require.NoError(t, err)
	assert.False(t, comment.IsActive)
}

func TestUploadMultipart(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "p7", r.FormValue("produit"))
		file, header, err := r.FormFile("image")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "rose.jpg", header.Filename)
		w.WriteHeader(http.StatusCreated)
	}))

	err := client.Upload(context.Background(), "/photos/", "image", "rose.jpg",
		strings.NewReader("fake-jpeg-bytes"), map[string]string{"produit": "p7"})
	require.NoError(t, err)
}
