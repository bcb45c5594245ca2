package shared_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/chezflora/flora-admin/internal/shared"
	_ "github.com/chezflora/flora-admin/testing"
)

func newSessionManager(t *testing.T) *shared.SessionManager {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return shared.NewSessionManager(client, "flora_session", "secret", time.Hour, false)
}

func TestSessionRoundTrip(t *testing.T) {
	sm := newSessionManager(t)
	ctx := context.Background()

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	sess, err := sm.Load(ctx, req)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	sess.Set(shared.SessionKeyUserName, "fleuriste")
	sess.SetUser("u-12")

	res := httptest.NewRecorder()
	if err := sm.Commit(ctx, res, req, sess); err != nil {
		t.Fatalf("commit: %v", err)
	}

	cookies := res.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != "flora_session" {
		t.Fatalf("expected session cookie, got %v", cookies)
	}
	if !cookies[0].HttpOnly {
		t.Fatalf("cookie must be http-only")
	}

	second := httptest.NewRequest(http.MethodGet, "/admin", nil)
	second.AddCookie(cookies[0])
	reloaded, err := sm.Load(ctx, second)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got := reloaded.Get(shared.SessionKeyUserName); got != "fleuriste" {
		t.Fatalf("expected username to survive reload, got %q", got)
	}
	if got := reloaded.User(); got != "u-12" {
		t.Fatalf("expected user id to survive reload, got %q", got)
	}
}

func TestSessionDestroyClearsCookieAndStore(t *testing.T) {
	sm := newSessionManager(t)
	ctx := context.Background()

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	sess, _ := sm.Load(ctx, req)
	sess.Set("k", "v")
	res := httptest.NewRecorder()
	if err := sm.Commit(ctx, res, req, sess); err != nil {
		t.Fatalf("commit: %v", err)
	}
	cookie := res.Result().Cookies()[0]

	second := httptest.NewRequest(http.MethodGet, "/admin", nil)
	second.AddCookie(cookie)
	sess, _ = sm.Load(ctx, second)
	sm.Destroy(sess)
	res = httptest.NewRecorder()
	if err := sm.Commit(ctx, res, second, sess); err != nil {
		t.Fatalf("commit destroy: %v", err)
	}
	expired := res.Result().Cookies()
	if len(expired) != 1 || expired[0].MaxAge != -1 {
		t.Fatalf("expected expired cookie, got %v", expired)
	}

	third := httptest.NewRequest(http.MethodGet, "/admin", nil)
	third.AddCookie(cookie)
	reloaded, err := sm.Load(ctx, third)
	if err != nil {
		t.Fatalf("reload after destroy: %v", err)
	}
	if reloaded.Get("k") != "" {
		t.Fatalf("destroyed session data must be gone")
	}
}

func TestFlashConsumedOnce(t *testing.T) {
	sm := newSessionManager(t)
	ctx := context.Background()

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	sess, _ := sm.Load(ctx, req)
	sess.AddFlash(shared.FlashMessage{Kind: "success", Message: "Produit créé avec succès."})
	res := httptest.NewRecorder()
	if err := sm.Commit(ctx, res, req, sess); err != nil {
		t.Fatalf("commit: %v", err)
	}
	cookie := res.Result().Cookies()[0]

	second := httptest.NewRequest(http.MethodGet, "/admin", nil)
	second.AddCookie(cookie)
	sess, _ = sm.Load(ctx, second)
	flash := sess.PopFlash()
	if flash == nil || flash.Message != "Produit créé avec succès." {
		t.Fatalf("expected queued flash, got %v", flash)
	}
	res = httptest.NewRecorder()
	if err := sm.Commit(ctx, res, second, sess); err != nil {
		t.Fatalf("commit: %v", err)
	}

	third := httptest.NewRequest(http.MethodGet, "/admin", nil)
	third.AddCookie(cookie)
	sess, _ = sm.Load(ctx, third)
	if sess.PopFlash() != nil {
		t.Fatalf("flash must not survive a second load")
	}
}
