package auth

import (
	"errors"
	"net/http"
	"time"

	"carteira/internal/api"
	"carteira/internal/log"
)

const CookieName = "carteira_session"

// Guard ties the session cookie to a Store.
type Guard struct {
	store     Store
	secure    bool
	loginPath string
}

func NewGuard(store Store, secureCookie bool) *Guard {
	return &Guard{store: store, secure: secureCookie, loginPath: "/login"}
}

// Require lets the request through only with a live session. The session
// and its bearer token are placed in the request context.
func (g *Guard) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s, err := g.lookup(r)
		if err != nil {
			if !errors.Is(err, ErrNoSession) {
				log.FromContext(r.Context()).ErrorContext(r.Context(), "Session lookup failed",
					log.FieldComponent, log.ComponentAuth,
					log.FieldError, err.Error())
			}
			g.clearCookie(w)
			Redirect(w, r, g.loginPath)
			return
		}

		ctx := WithSession(r.Context(), s)
		ctx = api.WithToken(ctx, s.Token)
		ctx = log.NewContext(ctx, log.FromContext(ctx).With(log.FieldSessionID, s.ID))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Current returns the session behind the request cookie, if any.
func (g *Guard) Current(r *http.Request) (Session, bool) {
	s, err := g.lookup(r)
	return s, err == nil
}

func (g *Guard) lookup(r *http.Request) (Session, error) {
	c, err := r.Cookie(CookieName)
	if err != nil || !validID(c.Value) {
		return Session{}, ErrNoSession
	}
	return g.store.Get(r.Context(), c.Value)
}

// Login stores token in a new session and sets the cookie.
func (g *Guard) Login(w http.ResponseWriter, r *http.Request, token string) (Session, error) {
	s, err := g.store.Create(r.Context(), token)
	if err != nil {
		return Session{}, err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    s.ID,
		Path:     "/",
		Expires:  s.ExpiresAt,
		MaxAge:   int(time.Until(s.ExpiresAt).Seconds()),
		HttpOnly: true,
		Secure:   g.secure,
		SameSite: http.SameSiteLaxMode,
	})
	log.FromContext(r.Context()).InfoContext(r.Context(), "User logged in",
		log.FieldComponent, log.ComponentAuth,
		log.FieldOperation, log.OpLogin,
		log.FieldSessionID, s.ID)
	return s, nil
}

// Logout destroys the session and clears the cookie. It is also used when
// the backend answers 401 for a stored token.
func (g *Guard) Logout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(CookieName); err == nil && validID(c.Value) {
		if err := g.store.Delete(r.Context(), c.Value); err != nil {
			log.FromContext(r.Context()).WarnContext(r.Context(), "Failed to delete session",
				log.FieldComponent, log.ComponentAuth,
				log.FieldError, err.Error())
		}
	}
	g.clearCookie(w)
}

func (g *Guard) clearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   g.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Redirect sends the browser to path. htmx requests get HX-Redirect so the
// whole page navigates instead of swapping the login form into a fragment.
func Redirect(w http.ResponseWriter, r *http.Request, path string) {
	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", path)
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, path, http.StatusSeeOther)
}
