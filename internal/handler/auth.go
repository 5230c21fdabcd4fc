package handler

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/Shivanand-hulikatti/event-ticketing/internal/model"
	"github.com/golang-jwt/jwt/v5"
)

type ctxKey int

const callerKey ctxKey = iota

// Claims are the token claims issued by the identity service. The subject
// is the user id.
type Claims struct {
	Role     model.Role `json:"role"`
	Approved bool       `json:"approved,omitempty"`
	jwt.RegisteredClaims
}

// Identify parses an optional Bearer token and stores the caller in the
// request context. Requests without a token pass through anonymous; a
// token that is present but invalid is rejected.
func Identify(secret string) func(http.Handler) http.Handler {
	keyFunc := func(t *jwt.Token) (any, error) { return []byte(secret), nil }

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			if auth == "" {
				next.ServeHTTP(w, r)
				return
			}
			raw, ok := strings.CutPrefix(auth, "Bearer ")
			if !ok {
				writeError(w, http.StatusUnauthorized, "missing bearer token")
				return
			}

			var claims Claims
			tok, err := jwt.ParseWithClaims(raw, &claims, keyFunc,
				jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
			if err != nil || !tok.Valid || claims.Subject == "" {
				writeError(w, http.StatusUnauthorized, "invalid token")
				return
			}

			caller := model.Caller{UserID: claims.Subject, Role: claims.Role, Approved: claims.Approved}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), callerKey, caller)))
		})
	}
}

// RequireRole rejects anonymous callers with 401 and callers whose role is
// not listed with 403.
func RequireRole(roles ...model.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			caller, ok := r.Context().Value(callerKey).(model.Caller)
			if !ok {
				writeError(w, http.StatusUnauthorized, "authentication required")
				return
			}
			if !slices.Contains(roles, caller.Role) {
				writeError(w, http.StatusForbidden, "insufficient role")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func callerFrom(r *http.Request) model.Caller {
	caller, _ := r.Context().Value(callerKey).(model.Caller)
	return caller
}

// SignToken issues an HS256 token for caller, valid for ttl.
func SignToken(secret string, caller model.Caller, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", errors.New("empty signing secret")
	}
	now := time.Now()
	claims := Claims{
		Role:     caller.Role,
		Approved: caller.Approved,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   caller.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}
