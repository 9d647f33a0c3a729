package httpserver

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/damage-control/apps/go-client/internal/session"
)

const (
	sessionCookieName  = "dc_session"
	sessionTokenHeader = "X-Session-Token"
)

// sessionFor returns the caller's live session, or creates one (and
// issues a fresh cookie) when the token is missing, invalid or expired.
func (s *Server) sessionFor(w http.ResponseWriter, r *http.Request) (*session.Session, error) {
	if id, err := s.parseSessionToken(tokenFrom(r)); err == nil {
		if sess, err := s.store.Get(r.Context(), id); err == nil {
			return sess, nil
		}
	}

	sess := s.newSession()
	if err := s.store.Save(r.Context(), sess); err != nil {
		return nil, err
	}
	tok, exp, err := s.signSessionToken(sess.ID())
	if err != nil {
		return nil, err
	}
	s.setSessionCookie(w, tok, exp)
	w.Header().Set(sessionTokenHeader, tok)
	log.Debug().Str("session", sess.ID()).Msg("session created")
	return sess, nil
}

// signSessionToken creates an HS256 JWT carrying the session id.
func (s *Server) signSessionToken(id string) (string, time.Time, error) {
	now := s.now()
	exp := now.Add(s.opts.CookieTTL)
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sid": id,
		"exp": exp.Unix(),
		"iat": now.Unix(),
	})
	ss, err := t.SignedString([]byte(s.opts.Secret))
	return ss, exp, err
}

// parseSessionToken validates a token and returns its session id.
func (s *Server) parseSessionToken(tok string) (string, error) {
	if tok == "" {
		return "", errors.New("no token")
	}
	claims := jwt.MapClaims{}
	t, err := jwt.ParseWithClaims(tok, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(s.opts.Secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !t.Valid {
		return "", errors.New("invalid token")
	}
	id, _ := claims["sid"].(string)
	if id == "" {
		return "", errors.New("invalid token")
	}
	return id, nil
}

// setSessionCookie writes the session cookie with appropriate security attributes.
func (s *Server) setSessionCookie(w http.ResponseWriter, token string, exp time.Time) {
	sameSite := http.SameSiteLaxMode
	if s.opts.Secure {
		sameSite = http.SameSiteNoneMode // required for third-party contexts when Secure
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.opts.Secure,
		SameSite: sameSite,
		Expires:  exp,
	})
}

// tokenFrom extracts a bearer token from the Authorization header or the session cookie.
func tokenFrom(r *http.Request) string {
	if a := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(a), "bearer ") {
		return strings.TrimSpace(a[7:])
	}
	if c, err := r.Cookie(sessionCookieName); err == nil {
		return c.Value
	}
	return ""
}
