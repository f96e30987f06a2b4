package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/organimart/organimart-backend/api/responses"
	pkgAuth "github.com/organimart/organimart-backend/pkg/auth"
	"github.com/organimart/organimart-backend/pkg/config"
	"github.com/organimart/organimart-backend/pkg/db/models"
	"github.com/organimart/organimart-backend/pkg/enums"
	pkgerrors "github.com/organimart/organimart-backend/pkg/errors"
	"github.com/organimart/organimart-backend/pkg/logger"
)

// UserLoader resolves the account backing a token so status changes take
// effect immediately instead of at token expiry.
type UserLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// Auth validates a bearer token, loads the account row and seeds the request
// context. Suspended, rejected and still-pending accounts are rejected even
// when the token itself is valid.
func Auth(cfg config.JWTConfig, users UserLoader, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get("Authorization"))
			if raw == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			token := raw
			if strings.HasPrefix(strings.ToLower(token), "bearer ") {
				token = strings.TrimSpace(token[7:])
			}
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			claims, err := pkgAuth.ParseAccessToken(cfg, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
				return
			}
			if claims.UserID == uuid.Nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing subject"))
				return
			}

			if users == nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "user loader unavailable"))
				return
			}

			user, err := users.FindByID(r.Context(), claims.UserID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "account unavailable"))
					return
				}
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load account"))
				return
			}
			if user.Status != enums.UserStatusActive {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "account is not active"))
				return
			}

			ctx := context.WithValue(r.Context(), ctxUserID, user.ID.String())
			ctx = context.WithValue(ctx, ctxRole, string(user.Role))

			if logg != nil {
				ctx = logg.WithFields(ctx, map[string]any{
					"user_id":    user.ID.String(),
					"actor_role": string(user.Role),
				})
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
