package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/priyanshu3301/civic-report-backend/internal/domain"
)

type ctxKey string

const identityKey ctxKey = "identity"

// Identity parses the trusted X-User-Id / X-User-Role headers set by the
// upstream auth gateway. Missing or malformed headers yield an anonymous
// identity; routes that need a user apply RequireUser/RequireAdmin on top.
func Identity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ident := domain.Identity{Role: domain.RoleUser}

		if raw := r.Header.Get("X-User-Id"); raw != "" {
			if id, err := uuid.Parse(raw); err == nil {
				ident.UserID = &id
			}
		}
		if r.Header.Get("X-User-Role") == string(domain.RoleAdmin) {
			ident.Role = domain.RoleAdmin
		}

		ctx := context.WithValue(r.Context(), identityKey, ident)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func IdentityFrom(ctx context.Context) domain.Identity {
	if ident, ok := ctx.Value(identityKey).(domain.Identity); ok {
		return ident
	}
	return domain.Identity{Role: domain.RoleUser}
}

func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if IdentityFrom(r.Context()).UserID == nil {
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ident := IdentityFrom(r.Context())
		if ident.UserID == nil || !ident.IsAdmin() {
			http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}
