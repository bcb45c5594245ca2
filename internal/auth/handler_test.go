package auth_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"github.com/chezflora/flora-admin/internal/auth"
	"github.com/chezflora/flora-admin/internal/flora"
	"github.com/chezflora/flora-admin/internal/shared"
	"github.com/chezflora/flora-admin/internal/view"
	_ "github.com/chezflora/flora-admin/testing"
)

// fakeAPI imitates the remote ChezFlora API endpoints the auth flow hits.
type fakeAPI struct {
	role        string
	otpPending  bool
	otpVerified bool
}

func (a *fakeAPI) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/token/", func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]string
		_ = json.NewDecoder(r.Body).Decode(&payload)
		if a.otpPending {
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]any{
				"detail":  "Compte non vérifié.",
				"user_id": []string{"u-42"},
			})
			return
		}
		if payload["password"] != "correct" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(flora.TokenPair{Access: "acc", Refresh: "ref"})
	})
	mux.HandleFunc("/utilisateurs/me/", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(flora.User{ID: "u-1", Username: "marguerite", Role: a.role})
	})
	mux.HandleFunc("/verify-otp/", func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]string
		_ = json.NewDecoder(r.Body).Decode(&payload)
		if payload["code"] != "123456" {
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]string{"detail": "Code invalide."})
			return
		}
		a.otpVerified = true
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/resend-otp/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/reset_password/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return mux
}

type authHarness struct {
	router   chi.Router
	sessions *shared.SessionManager
	csrf     *shared.CSRFManager
	vault    *shared.TokenVault
}

// commitWriter mirrors the production session middleware: the session is
// committed on the first header write so the cookie reaches the response.
type commitWriter struct {
	http.ResponseWriter
	sess          *shared.Session
	sessions      *shared.SessionManager
	ctx           context.Context
	req           *http.Request
	headerWritten bool
}

func (w *commitWriter) WriteHeader(statusCode int) {
	if !w.headerWritten {
		w.headerWritten = true
		_ = w.sessions.Commit(w.ctx, w.ResponseWriter, w.req, w.sess)
	}
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *commitWriter) Write(data []byte) (int, error) {
	if !w.headerWritten {
		w.WriteHeader(http.StatusOK)
	}
	return w.ResponseWriter.Write(data)
}

func newAuthHarness(t *testing.T, api *fakeAPI) *authHarness {
	t.Helper()
	server := httptest.NewServer(api.handler())
	t.Cleanup(server.Close)

	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	sessions := shared.NewSessionManager(redisClient, "test_session", "secret", time.Hour, false)
	csrf := shared.NewCSRFManager("csrfsecret")
	vault, err := shared.NewTokenVault(base64.StdEncoding.EncodeToString([]byte("0123456789abcdef0123456789abcdef")))
	if err != nil {
		t.Fatalf("vault: %v", err)
	}
	engine, err := view.NewEngine()
	if err != nil {
		t.Fatalf("templates: %v", err)
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	renderer := view.NewRenderer(engine, csrf, logger)
	client, err := flora.NewClient(flora.ClientConfig{BaseURL: server.URL})
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	handler := auth.NewHandler(logger, client, sessions, vault, csrf, renderer)

	router := chi.NewRouter()
	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, err := sessions.Load(r.Context(), r)
			if err != nil {
				t.Fatalf("load session: %v", err)
			}
			ctx := shared.ContextWithSession(r.Context(), sess)
			cw := &commitWriter{ResponseWriter: w, sess: sess, sessions: sessions, ctx: ctx, req: r.WithContext(ctx)}
			next.ServeHTTP(cw, r.WithContext(ctx))
			if !cw.headerWritten {
				if err := sessions.Commit(ctx, w, r, sess); err != nil {
					t.Fatalf("commit session: %v", err)
				}
			}
		})
	})
	router.Route("/auth", handler.Routes)
	return &authHarness{router: router, sessions: sessions, csrf: csrf, vault: vault}
}

// prime issues one GET so the harness has a session cookie and CSRF token.
func (h *authHarness) prime(t *testing.T) (*http.Cookie, string) {
	t.Helper()
	res := httptest.NewRecorder()
	h.router.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/auth/login", nil))
	if res.Code != http.StatusOK {
		t.Fatalf("login page: status %d", res.Code)
	}
	cookies := res.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatalf("expected a session cookie")
	}
	cookie := cookies[0]

	req := httptest.NewRequest(http.MethodGet, "/auth/login", nil)
	req.AddCookie(cookie)
	sess, err := h.sessions.Load(context.Background(), req)
	if err != nil {
		t.Fatalf("load session: %v", err)
	}
	token, err := h.csrf.EnsureToken(context.Background(), sess)
	if err != nil {
		t.Fatalf("csrf: %v", err)
	}
	return cookie, token
}

func (h *authHarness) post(path string, cookie *http.Cookie, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	res := httptest.NewRecorder()
	h.router.ServeHTTP(res, req)
	return res
}

func (h *authHarness) session(t *testing.T, cookie *http.Cookie) *shared.Session {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/auth/login", nil)
	req.AddCookie(cookie)
	sess, err := h.sessions.Load(context.Background(), req)
	if err != nil {
		t.Fatalf("load session: %v", err)
	}
	return sess
}

func TestLoginPageRendersForm(t *testing.T) {
	h := newAuthHarness(t, &fakeAPI{role: "admin"})

	res := httptest.NewRecorder()
	h.router.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/auth/login", nil))

	if res.Code != http.StatusOK {
		t.Fatalf("status %d", res.Code)
	}
	if !strings.Contains(res.Body.String(), "<form") {
		t.Fatalf("expected a login form")
	}
}

func TestLoginSuccessStoresTokens(t *testing.T) {
	h := newAuthHarness(t, &fakeAPI{role: "admin"})
	cookie, token := h.prime(t)

	res := h.post("/auth/login", cookie, url.Values{
		"email":              {"admin@chezflora.fr"},
		"password":           {"correct"},
		shared.CSRFFormField: {token},
	})

	if res.Code != http.StatusSeeOther {
		t.Fatalf("status %d: %s", res.Code, res.Body.String())
	}
	if got := res.Header().Get("Location"); got != "/admin" {
		t.Fatalf("redirect to %q", got)
	}

	sess := h.session(t, cookie)
	if got := h.vault.AccessToken(sess); got != "acc" {
		t.Fatalf("access token not stored, got %q", got)
	}
	if got := sess.Get(shared.SessionKeyUserName); got != "marguerite" {
		t.Fatalf("username not stored, got %q", got)
	}
}

func TestLoginRejectsNonAdmin(t *testing.T) {
	h := newAuthHarness(t, &fakeAPI{role: "client"})
	cookie, token := h.prime(t)

	res := h.post("/auth/login", cookie, url.Values{
		"email":              {"client@chezflora.fr"},
		"password":           {"correct"},
		shared.CSRFFormField: {token},
	})

	if res.Code != http.StatusForbidden {
		t.Fatalf("status %d", res.Code)
	}
	if !strings.Contains(res.Body.String(), "Accès réservé aux administrateurs.") {
		t.Fatalf("expected the admin-only message")
	}
	sess := h.session(t, cookie)
	if h.vault.AccessToken(sess) != "" {
		t.Fatalf("tokens must not be stored for non-admins")
	}
}

func TestLoginInvalidCredentials(t *testing.T) {
	h := newAuthHarness(t, &fakeAPI{role: "admin"})
	cookie, token := h.prime(t)

	res := h.post("/auth/login", cookie, url.Values{
		"email":              {"admin@chezflora.fr"},
		"password":           {"wrong"},
		shared.CSRFFormField: {token},
	})

	if res.Code != http.StatusUnauthorized {
		t.Fatalf("status %d", res.Code)
	}
	if !strings.Contains(res.Body.String(), "Identifiants invalides.") {
		t.Fatalf("expected the rejection message")
	}
}

func TestLoginRejectsBadCSRF(t *testing.T) {
	h := newAuthHarness(t, &fakeAPI{role: "admin"})
	cookie, _ := h.prime(t)

	res := h.post("/auth/login", cookie, url.Values{
		"email":              {"admin@chezflora.fr"},
		"password":           {"correct"},
		shared.CSRFFormField: {"forged"},
	})

	if res.Code != http.StatusBadRequest {
		t.Fatalf("status %d", res.Code)
	}
}

func TestLoginValidatesEmail(t *testing.T) {
	h := newAuthHarness(t, &fakeAPI{role: "admin"})
	cookie, token := h.prime(t)

	res := h.post("/auth/login", cookie, url.Values{
		"email":              {"not-an-email"},
		"password":           {"correct"},
		shared.CSRFFormField: {token},
	})

	if res.Code != http.StatusBadRequest {
		t.Fatalf("status %d", res.Code)
	}
	if !strings.Contains(res.Body.String(), "Adresse e-mail invalide.") {
		t.Fatalf("expected the email validation message")
	}
}

func TestLoginPendingOTPRedirects(t *testing.T) {
	api := &fakeAPI{role: "admin", otpPending: true}
	h := newAuthHarness(t, api)
	cookie, token := h.prime(t)

	res := h.post("/auth/login", cookie, url.Values{
		"email":              {"pending@chezflora.fr"},
		"password":           {"correct"},
		shared.CSRFFormField: {token},
	})

	if res.Code != http.StatusSeeOther {
		t.Fatalf("status %d", res.Code)
	}
	if got := res.Header().Get("Location"); got != "/auth/otp" {
		t.Fatalf("redirect to %q", got)
	}

	// The OTP screen now knows which account is pending.
	req := httptest.NewRequest(http.MethodGet, "/auth/otp", nil)
	req.AddCookie(cookie)
	page := httptest.NewRecorder()
	h.router.ServeHTTP(page, req)
	if page.Code != http.StatusOK {
		t.Fatalf("otp page: status %d", page.Code)
	}

	verify := h.post("/auth/otp", cookie, url.Values{
		"code":               {"123456"},
		shared.CSRFFormField: {token},
	})
	if verify.Code != http.StatusSeeOther {
		t.Fatalf("verify: status %d", verify.Code)
	}
	if got := verify.Header().Get("Location"); got != "/auth/login" {
		t.Fatalf("verify redirect to %q", got)
	}
	if !api.otpVerified {
		t.Fatalf("verification must reach the API")
	}
}

func TestOTPFormWithoutPendingUser(t *testing.T) {
	h := newAuthHarness(t, &fakeAPI{role: "admin"})

	res := httptest.NewRecorder()
	h.router.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/auth/otp", nil))

	if res.Code != http.StatusSeeOther {
		t.Fatalf("status %d", res.Code)
	}
	if got := res.Header().Get("Location"); got != "/auth/login" {
		t.Fatalf("redirect to %q", got)
	}
}

func TestPasswordResetAlwaysConfirms(t *testing.T) {
	h := newAuthHarness(t, &fakeAPI{role: "admin"})
	cookie, token := h.prime(t)

	res := h.post("/auth/password-reset", cookie, url.Values{
		"email":              {"unknown@chezflora.fr"},
		shared.CSRFFormField: {token},
	})

	if res.Code != http.StatusOK {
		t.Fatalf("status %d", res.Code)
	}
}

func TestLogoutDestroysSession(t *testing.T) {
	h := newAuthHarness(t, &fakeAPI{role: "admin"})
	cookie, token := h.prime(t)

	res := h.post("/auth/login", cookie, url.Values{
		"email":              {"admin@chezflora.fr"},
		"password":           {"correct"},
		shared.CSRFFormField: {token},
	})
	if res.Code != http.StatusSeeOther {
		t.Fatalf("login: status %d", res.Code)
	}

	out := h.post("/auth/logout", cookie, url.Values{shared.CSRFFormField: {token}})
	if out.Code != http.StatusSeeOther {
		t.Fatalf("logout: status %d", out.Code)
	}

	sess := h.session(t, cookie)
	if h.vault.AccessToken(sess) != "" {
		t.Fatalf("tokens must be gone after logout")
	}
}
