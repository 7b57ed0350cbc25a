package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/angelmondragon/promotion-manager/api/responses"
	"github.com/angelmondragon/promotion-manager/internal/policy"
	"github.com/angelmondragon/promotion-manager/pkg/db/models"
	pkgerrors "github.com/angelmondragon/promotion-manager/pkg/errors"
	"github.com/angelmondragon/promotion-manager/pkg/logger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserLookup loads the account behind an authenticated request.
type UserLookup interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// ResolveActor loads the authenticated user so policy decisions use the
// stored role rather than the one frozen into the token. Requests without
// claims pass through anonymously.
func ResolveActor(users UserLookup, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := UserIDFromContext(r.Context())
			if raw == "" || users == nil {
				next.ServeHTTP(w, r)
				return
			}

			id, err := uuid.Parse(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid user id"))
				return
			}

			user, err := users.FindByID(r.Context(), id)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) || pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
					responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "account no longer exists"))
					return
				}
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load actor"))
				return
			}

			actor := &policy.Actor{ID: user.ID, Role: user.Role}
			ctx := WithActor(r.Context(), actor)
			if logg != nil && string(user.Role) != RoleFromContext(r.Context()) {
				ctx = logg.WithActor(ctx, "", string(user.Role))
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
