package middleware

import (
	"context"

	"github.com/angelmondragon/promotion-manager/internal/policy"
	"github.com/angelmondragon/promotion-manager/pkg/enums"
	"github.com/google/uuid"
)

type contextKey string

const (
	ctxUserID   contextKey = "user_id"
	ctxRole     contextKey = "actor_role"
	ctxAccessID contextKey = "access_id"
	ctxActor    contextKey = "actor"
)

func UserIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxUserID).(string); ok {
		return v
	}
	return ""
}

func RoleFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxRole).(string); ok {
		return v
	}
	return ""
}

// AccessIDFromContext returns the jti of the access token that authenticated the request.
func AccessIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxAccessID).(string); ok {
		return v
	}
	return ""
}

// ActorFromContext returns the resolved actor, or nil for anonymous requests.
func ActorFromContext(ctx context.Context) *policy.Actor {
	if ctx == nil {
		return nil
	}
	if v, ok := ctx.Value(ctxActor).(*policy.Actor); ok {
		return v
	}
	return nil
}

// WithUserID injects the user identifier into the context.
func WithUserID(ctx context.Context, userID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxUserID, userID)
}

// WithAccessID records the session id of the authenticating access token.
func WithAccessID(ctx context.Context, accessID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxAccessID, accessID)
}

// WithActor stores the actor that policy checks run against.
func WithActor(ctx context.Context, actor *policy.Actor) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if actor == nil {
		return ctx
	}
	ctx = context.WithValue(ctx, ctxUserID, actor.ID.String())
	ctx = context.WithValue(ctx, ctxRole, string(actor.Role))
	return context.WithValue(ctx, ctxActor, actor)
}

func withClaims(ctx context.Context, userID uuid.UUID, role enums.Role, accessID string) context.Context {
	ctx = context.WithValue(ctx, ctxUserID, userID.String())
	ctx = context.WithValue(ctx, ctxRole, string(role))
	return context.WithValue(ctx, ctxAccessID, accessID)
}
