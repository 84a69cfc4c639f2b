package http

import (
	"context"
	"net/http"
	"strings"
	"time"

	"planvault-backend/internal/domain"
	"planvault-backend/internal/logger"
	"planvault-backend/internal/repository"
	"planvault-backend/internal/security"
)

type contextKey string

const (
	contextKeyAccountID contextKey = "account_id"
	contextKeyIsAdmin   contextKey = "is_admin"
)

func accountIDFromContext(ctx context.Context) int64 {
	id, _ := ctx.Value(contextKeyAccountID).(int64)
	return id
}

// authMiddleware validates the bearer token, checks the account still
// exists and is not blocked, and stashes identity into the request context.
func authMiddleware(tokens security.TokenManager, accounts repository.AccountRepository) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "missing bearer token"})
				return
			}
			claims, err := tokens.ValidateToken(strings.TrimPrefix(header, "Bearer "))
			if err != nil {
				writeError(w, err)
				return
			}
			if claims.Type != security.TokenTypeAccess {
				writeError(w, security.ErrWrongTokenType)
				return
			}

			acct, err := accounts.GetByID(r.Context(), claims.AccountID)
			if err != nil {
				writeError(w, err)
				return
			}
			if acct.IsBlocked {
				writeError(w, domain.ErrAccountBlocked)
				return
			}

			ctx := context.WithValue(r.Context(), contextKeyAccountID, acct.ID)
			ctx = context.WithValue(ctx, contextKeyIsAdmin, acct.IsAdmin)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// adminOnly rejects requests whose authenticated account is not an admin.
// Must be chained after authMiddleware.
func adminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if isAdmin, _ := r.Context().Value(contextKeyIsAdmin).(bool); !isAdmin {
			writeJSON(w, http.StatusForbidden, errorResponse{Error: "admin access required"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		logger.Debug("request handled",
			"method", r.Method,
			"path", r.URL.Path,
			"duration_ms", time.Since(start).Milliseconds())
	})
}
