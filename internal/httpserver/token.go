package httpserver

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/hlog"
)

var errTokenSubject = errors.New("token is for another game")

// tokens signs and checks per-game bearer tokens (HS256, sub = game id).
type tokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func newTokens(secret []byte, ttl time.Duration) *tokens {
	if len(secret) == 0 {
		secret = []byte("dev_secret_change_me")
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &tokens{secret: secret, ttl: ttl, now: time.Now}
}

// issue returns a signed token for gameID and its expiry.
func (t *tokens) issue(gameID string) (string, time.Time, error) {
	now := t.now()
	exp := now.Add(t.ttl)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   gameID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	})
	ss, err := token.SignedString(t.secret)
	return ss, exp, err
}

// verify checks signature and expiry and returns the game id it was issued for.
func (t *tokens) verify(tokenStr string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(tokenStr, claims, func(*jwt.Token) (any, error) {
		return t.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(t.now))
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

// bearerOrQuery reads the token from the Authorization header, falling back to
// ?token= (browsers cannot set headers on WebSocket upgrades).
func bearerOrQuery(r *http.Request) string {
	// Authorization: Bearer <token>
	if a := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(a), "bearer ") {
		return strings.TrimSpace(a[7:])
	}
	return r.URL.Query().Get("token")
}

// requireGameToken rejects requests whose token was not issued for {id}.
func (s *Server) requireGameToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenStr := bearerOrQuery(r)
		if tokenStr == "" {
			writeJSON(w, http.StatusUnauthorized, errorRes{Error: "unauthorized"})
			return
		}
		gameID, err := s.tokens.verify(tokenStr)
		if err == nil && gameID != chi.URLParam(r, "id") {
			err = errTokenSubject
		}
		if err != nil {
			hlog.FromRequest(r).Debug().Err(err).Msg("rejected token")
			writeJSON(w, http.StatusUnauthorized, errorRes{Error: "invalid_token"})
			return
		}
		next.ServeHTTP(w, r)
	})
}
