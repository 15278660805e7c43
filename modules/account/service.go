package account

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/Eerick6/infanps/pkg/auth"
	"github.com/Eerick6/infanps/pkg/flash"
	"github.com/Eerick6/infanps/pkg/reqctx"
	"github.com/Eerick6/infanps/pkg/session"
)

// oauthStateKey holds the anti-forgery nonce between the provider redirect
// and its callback.
const oauthStateKey = "oauth_state"

// Service wires the authentication routes: login, register and logout, plus
// the provider redirect pair when an OAuth strategy is configured.
type Service struct {
	auth  *auth.Service
	local *auth.LocalStrategy
	oauth *auth.OAuthStrategy
	log   *slog.Logger
}

// Option configures the account route group.
type Option func(*Service)

// WithOAuth mounts the provider login routes backed by the given strategy.
func WithOAuth(strategy *auth.OAuthStrategy) Option {
	return func(s *Service) {
		s.oauth = strategy
	}
}

// NewService creates the account route group.
func NewService(authSvc *auth.Service, local *auth.LocalStrategy, log *slog.Logger, opts ...Option) *Service {
	if log == nil {
		log = slog.Default()
	}
	s := &Service{auth: authSvc, local: local, log: log}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register mounts the account routes on the router.
func (s *Service) Register(r chi.Router) {
	r.Get("/login", s.loginPage)
	r.Post("/login", s.login)
	r.Get("/register", s.registerPage)
	r.Post("/register", s.register)
	r.Get("/logout", s.logout)

	if s.oauth != nil {
		r.Get("/auth/oauth", s.oauthStart)
		r.Get("/auth/oauth/callback", s.oauthCallback)
	}
}

func (s *Service) loginPage(w http.ResponseWriter, r *http.Request) {
	if s.auth.IsAuthenticated(r.Context()) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	rc := reqctx.MustFromContext(r.Context())
	renderPage(w, "Iniciar sesión", loginForm, rc)
}

func (s *Service) login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Cuerpo de la petición inválido", http.StatusBadRequest)
		return
	}
	creds := auth.Credentials{
		Email:    r.PostFormValue("email"),
		Password: r.PostFormValue("password"),
	}

	identity, err := s.auth.Login(ctx, w, string(auth.MethodLocal), creds)
	if err != nil {
		sess := session.MustFromContext(ctx)
		if errors.Is(err, auth.ErrInvalidCredentials) {
			flash.Push(sess, flash.CategoryMessage, "Nombre de usuario o contraseña incorrecta")
		} else {
			s.log.ErrorContext(ctx, "login failed", slog.Any("error", err))
			flash.Push(sess, flash.CategoryMessage, "No se pudo iniciar sesión, inténtelo de nuevo")
		}
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	s.log.InfoContext(ctx, "user logged in", slog.String("user_id", identity.ID.String()))
	flash.Push(session.MustFromContext(ctx), flash.CategorySuccess, "Bienvenido, "+identity.Name)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Service) registerPage(w http.ResponseWriter, r *http.Request) {
	if s.auth.IsAuthenticated(r.Context()) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	rc := reqctx.MustFromContext(r.Context())
	renderPage(w, "Registro", registerForm, rc)
}

func (s *Service) register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Cuerpo de la petición inválido", http.StatusBadRequest)
		return
	}
	sess := session.MustFromContext(ctx)

	email := r.PostFormValue("email")
	name := r.PostFormValue("name")
	password := r.PostFormValue("password")
	if email == "" || password == "" {
		flash.Push(sess, flash.CategoryMessage, "Correo y contraseña son obligatorios")
		http.Redirect(w, r, "/register", http.StatusSeeOther)
		return
	}

	identity, err := s.local.Register(ctx, email, name, password)
	if err != nil {
		if errors.Is(err, auth.ErrEmailAlreadyExists) {
			flash.Push(sess, flash.CategoryMessage, "El correo ya está registrado")
		} else {
			s.log.ErrorContext(ctx, "registration failed", slog.Any("error", err))
			flash.Push(sess, flash.CategoryMessage, "No se pudo completar el registro")
		}
		http.Redirect(w, r, "/register", http.StatusSeeOther)
		return
	}

	s.log.InfoContext(ctx, "user registered", slog.String("user_id", identity.ID.String()))
	flash.Push(sess, flash.CategorySuccess, "Registro exitoso, ya puede iniciar sesión")
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// oauthStart sends the browser to the provider's consent page. The state
// nonce lives in the session until the callback checks it.
func (s *Service) oauthStart(w http.ResponseWriter, r *http.Request) {
	if s.auth.IsAuthenticated(r.Context()) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	state := uuid.New().String()
	session.MustFromContext(r.Context()).Set(oauthStateKey, state)
	http.Redirect(w, r, s.oauth.AuthCodeURL(state), http.StatusFound)
}

// oauthCallback completes the provider flow: the returned state must match
// the session's nonce before the authorization code is exchanged.
func (s *Service) oauthCallback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess := session.MustFromContext(ctx)

	expected, ok := sess.GetString(oauthStateKey)
	sess.Delete(oauthStateKey)

	state := r.URL.Query().Get("state")
	if !ok || state == "" || state != expected {
		flash.Push(sess, flash.CategoryMessage, "No se pudo iniciar sesión con el proveedor")
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	creds := auth.Credentials{
		Code:  r.URL.Query().Get("code"),
		State: state,
	}
	identity, err := s.auth.Login(ctx, w, string(auth.MethodOAuth), creds)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			flash.Push(sess, flash.CategoryMessage, "El proveedor rechazó el inicio de sesión")
		} else {
			s.log.ErrorContext(ctx, "oauth login failed", slog.Any("error", err))
			flash.Push(sess, flash.CategoryMessage, "No se pudo iniciar sesión, inténtelo de nuevo")
		}
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	s.log.InfoContext(ctx, "user logged in", slog.String("user_id", identity.ID.String()))
	flash.Push(sess, flash.CategorySuccess, "Bienvenido, "+identity.Name)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Service) logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := s.auth.Logout(ctx, w); err != nil {
		s.log.ErrorContext(ctx, "logout failed", slog.Any("error", err))
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
