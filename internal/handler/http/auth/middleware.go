// Package auth guards routes with HS256 bearer tokens.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"blog-summarizer/internal/handler/http/respond"
	"blog-summarizer/internal/observability/logging"
)

type ctxKey string

const ctxSubject ctxKey = "subject"

// Claims identifies the caller of an authenticated request.
type Claims struct {
	Subject string
	Role    string
}

// FromContext returns the claims stored by Middleware.
func FromContext(ctx context.Context) (Claims, bool) {
	c, ok := ctx.Value(ctxSubject).(Claims)
	return c, ok
}

// Middleware rejects requests without a valid bearer token with a 401
// envelope. An empty secret disables the check.
func Middleware(secret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if len(secret) == 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			claims, err := validateJWT(r.Header.Get("Authorization"), secret, time.Now())
			if err != nil {
				recordAuth("failure", time.Since(start).Seconds())
				logging.FromContext(r.Context()).Warn("authentication failed",
					"path", r.URL.Path,
					"reason", err.Error())
				respond.Failure(w, r, http.StatusUnauthorized, "Authentication failed", nil)
				return
			}
			recordAuth("success", time.Since(start).Seconds())

			ctx := context.WithValue(r.Context(), ctxSubject, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func validateJWT(authz string, secret []byte, now time.Time) (Claims, error) {
	const prefix = "Bearer "
	if !strings.HasPrefix(authz, prefix) {
		return Claims{}, errors.New("missing bearer token")
	}
	tokenString := strings.TrimSpace(strings.TrimPrefix(authz, prefix))

	tok, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing method %s", t.Method.Alg())
		}
		return secret, nil
	}, jwt.WithTimeFunc(func() time.Time { return now }))
	if err != nil || !tok.Valid {
		return Claims{}, errors.New("invalid token")
	}

	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, errors.New("invalid claims")
	}
	if exp, ok := claims["exp"].(float64); !ok || int64(exp) < now.Unix() {
		return Claims{}, errors.New("token expired")
	}
	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return Claims{}, errors.New("invalid sub claim")
	}
	role, _ := claims["role"].(string)
	return Claims{Subject: sub, Role: role}, nil
}
