package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/chezflora/flora-admin/internal/flora"
	"github.com/chezflora/flora-admin/internal/shared"
	"github.com/chezflora/flora-admin/internal/view"
)

// Session keys of an OTP verification in progress.
const (
	otpUserIDKey = "otp_user_id"
	otpEmailKey  = "otp_email"
)

// Handler serves the authentication screens: login, OTP verification,
// password reset request and logout.
type Handler struct {
	logger   *slog.Logger
	client   *flora.Client
	sessions *shared.SessionManager
	vault    *shared.TokenVault
	csrf     *shared.CSRFManager
	renderer *view.Renderer
	validate *validator.Validate
}

// NewHandler constructs the auth handler.
func NewHandler(logger *slog.Logger, client *flora.Client, sessions *shared.SessionManager, vault *shared.TokenVault, csrf *shared.CSRFManager, renderer *view.Renderer) *Handler {
	return &Handler{
		logger:   logger,
		client:   client,
		sessions: sessions,
		vault:    vault,
		csrf:     csrf,
		renderer: renderer,
		validate: validator.New(),
	}
}

// Routes mounts the auth endpoints.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/login", h.LoginForm)
	r.Post("/login", h.Login)
	r.Get("/otp", h.OTPForm)
	r.Post("/otp", h.VerifyOTP)
	r.Post("/otp/resend", h.ResendOTP)
	r.Get("/password-reset", h.ResetForm)
	r.Post("/password-reset", h.RequestReset)
	r.Post("/logout", h.Logout)
}

type loginView struct {
	Email   string
	Errors  map[string]string
	General string
}

type otpView struct {
	Email   string
	General string
}

type resetView struct {
	Email   string
	Sent    bool
	General string
}

type loginForm struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

// LoginForm renders the sign-in screen.
func (h *Handler) LoginForm(w http.ResponseWriter, r *http.Request) {
	h.renderer.Page(w, r, http.StatusOK, "login.html", "Connexion", loginView{})
}

// Login exchanges the submitted credentials for an API token pair, verifies
// that the account carries the admin role, and only then persists the
// encrypted tokens in the session.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	if err := r.ParseForm(); err != nil {
		h.renderer.Page(w, r, http.StatusBadRequest, "login.html", "Connexion", loginView{General: "Formulaire invalide."})
		return
	}
	if err := h.csrf.VerifyToken(r.Context(), sess, r.PostFormValue(shared.CSRFFormField)); err != nil {
		h.renderer.Page(w, r, http.StatusBadRequest, "login.html", "Connexion", loginView{General: "La session a expiré, veuillez réessayer."})
		return
	}

	form := loginForm{
		Email:    strings.TrimSpace(r.PostFormValue("email")),
		Password: r.PostFormValue("password"),
	}
	if err := h.validate.Struct(form); err != nil {
		fieldErrs := map[string]string{}
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				switch fe.Field() {
				case "Email":
					fieldErrs["email"] = "Adresse e-mail invalide."
				case "Password":
					fieldErrs["password"] = "Le mot de passe est requis."
				}
			}
		}
		h.renderer.Page(w, r, http.StatusBadRequest, "login.html", "Connexion", loginView{Email: form.Email, Errors: fieldErrs})
		return
	}

	pair, err := h.client.Login(r.Context(), form.Email, form.Password)
	if err != nil {
		if userID := pendingOTPUser(err); userID != "" {
			sess.Set(otpUserIDKey, userID)
			sess.Set(otpEmailKey, form.Email)
			http.Redirect(w, r, "/auth/otp", http.StatusSeeOther)
			return
		}
		h.logger.Info("login rejected", "email", form.Email)
		h.renderer.Page(w, r, http.StatusUnauthorized, "login.html", "Connexion", loginView{Email: form.Email, General: "Identifiants invalides."})
		return
	}

	// Profile lookup with the fresh pair, before anything is stored.
	creds := &staticCredentials{access: pair.Access, refresh: pair.Refresh}
	user, err := h.client.Me(flora.ContextWithCredentials(r.Context(), creds))
	if err != nil {
		h.logger.Error("profile lookup failed after login", "error", err)
		h.renderer.Page(w, r, http.StatusBadGateway, "login.html", "Connexion", loginView{Email: form.Email, General: "Connexion impossible pour le moment, veuillez réessayer."})
		return
	}
	if user.Role != "admin" {
		h.renderer.Page(w, r, http.StatusForbidden, "login.html", "Connexion", loginView{Email: form.Email, General: "Accès réservé aux administrateurs."})
		return
	}

	if err := h.vault.StoreTokens(sess, pair.Access, pair.Refresh); err != nil {
		h.logger.Error("store tokens", "error", err)
		h.renderer.Page(w, r, http.StatusInternalServerError, "login.html", "Connexion", loginView{Email: form.Email, General: "Connexion impossible pour le moment, veuillez réessayer."})
		return
	}
	sess.SetUser(user.ID)
	sess.Set(shared.SessionKeyUserName, user.Username)
	sess.Delete(otpUserIDKey)
	sess.Delete(otpEmailKey)

	h.logger.Info("admin signed in", "user", user.ID)
	sess.AddFlash(shared.FlashMessage{Kind: "success", Message: "Bienvenue, " + user.Username + "."})
	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

// OTPForm renders the verification screen for a pending account.
func (h *Handler) OTPForm(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	if sess.Get(otpUserIDKey) == "" {
		http.Redirect(w, r, "/auth/login", http.StatusSeeOther)
		return
	}
	h.renderer.Page(w, r, http.StatusOK, "otp.html", "Vérification", otpView{Email: sess.Get(otpEmailKey)})
}

// VerifyOTP submits the one-time code; a verified account goes back to the
// login screen to sign in normally.
func (h *Handler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	userID := sess.Get(otpUserIDKey)
	if userID == "" {
		http.Redirect(w, r, "/auth/login", http.StatusSeeOther)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Redirect(w, r, "/auth/otp", http.StatusSeeOther)
		return
	}
	if err := h.csrf.VerifyToken(r.Context(), sess, r.PostFormValue(shared.CSRFFormField)); err != nil {
		h.renderer.Page(w, r, http.StatusBadRequest, "otp.html", "Vérification", otpView{Email: sess.Get(otpEmailKey), General: "La session a expiré, veuillez réessayer."})
		return
	}

	code := strings.TrimSpace(r.PostFormValue("code"))
	if err := h.client.VerifyOTP(r.Context(), userID, code); err != nil {
		h.renderer.Page(w, r, http.StatusBadRequest, "otp.html", "Vérification", otpView{Email: sess.Get(otpEmailKey), General: "Code invalide ou expiré."})
		return
	}

	sess.Delete(otpUserIDKey)
	sess.Delete(otpEmailKey)
	sess.AddFlash(shared.FlashMessage{Kind: "success", Message: "Compte vérifié, vous pouvez vous connecter."})
	http.Redirect(w, r, "/auth/login", http.StatusSeeOther)
}

// ResendOTP re-sends the verification code.
func (h *Handler) ResendOTP(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	userID := sess.Get(otpUserIDKey)
	if userID == "" {
		http.Redirect(w, r, "/auth/login", http.StatusSeeOther)
		return
	}
	if err := r.ParseForm(); err == nil {
		if err := h.csrf.VerifyToken(r.Context(), sess, r.PostFormValue(shared.CSRFFormField)); err == nil {
			if err := h.client.ResendOTP(r.Context(), userID); err != nil {
				h.logger.Error("resend otp", "error", err)
			} else {
				sess.AddFlash(shared.FlashMessage{Kind: "success", Message: "Un nouveau code vient d'être envoyé."})
			}
		}
	}
	http.Redirect(w, r, "/auth/otp", http.StatusSeeOther)
}

// ResetForm renders the password reset request screen.
func (h *Handler) ResetForm(w http.ResponseWriter, r *http.Request) {
	h.renderer.Page(w, r, http.StatusOK, "password_reset.html", "Mot de passe oublié", resetView{})
}

// RequestReset triggers the reset email. The rendered response is the same
// whether or not an account exists for the address.
func (h *Handler) RequestReset(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	if err := r.ParseForm(); err != nil {
		h.renderer.Page(w, r, http.StatusBadRequest, "password_reset.html", "Mot de passe oublié", resetView{General: "Formulaire invalide."})
		return
	}
	if err := h.csrf.VerifyToken(r.Context(), sess, r.PostFormValue(shared.CSRFFormField)); err != nil {
		h.renderer.Page(w, r, http.StatusBadRequest, "password_reset.html", "Mot de passe oublié", resetView{General: "La session a expiré, veuillez réessayer."})
		return
	}

	email := strings.TrimSpace(r.PostFormValue("email"))
	if err := h.validate.Var(email, "required,email"); err != nil {
		h.renderer.Page(w, r, http.StatusBadRequest, "password_reset.html", "Mot de passe oublié", resetView{Email: email, General: "Adresse e-mail invalide."})
		return
	}
	if err := h.client.RequestPasswordReset(r.Context(), email); err != nil {
		h.logger.Error("password reset request", "error", err)
	}
	h.renderer.Page(w, r, http.StatusOK, "password_reset.html", "Mot de passe oublié", resetView{Email: email, Sent: true})
}

// Logout destroys the session, tokens included.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	if err := r.ParseForm(); err == nil {
		if err := h.csrf.VerifyToken(r.Context(), sess, r.PostFormValue(shared.CSRFFormField)); err == nil {
			h.sessions.Destroy(sess)
		}
	}
	http.Redirect(w, r, "/auth/login", http.StatusSeeOther)
}

// pendingOTPUser extracts the user id a rejected login carries when the
// account still awaits OTP verification.
func pendingOTPUser(err error) string {
	var vErr *flora.ValidationError
	if !errors.As(err, &vErr) {
		return ""
	}
	if ids := vErr.Fields["user_id"]; len(ids) > 0 {
		return ids[0]
	}
	return ""
}
