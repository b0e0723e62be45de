package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/rashidkhoury/fleetquote-backend/pkg/logger"
)

const actorIDHeader = "X-Actor-Id"

type contextKey string

const ctxActorID contextKey = "actor_id"

// Actor lifts the caller identity forwarded by the gateway into the request
// context. Identity verification happens upstream; this service only records
// who performed workflow transitions.
func Actor(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actorID := strings.TrimSpace(r.Header.Get(actorIDHeader))
			if actorID == "" {
				next.ServeHTTP(w, r)
				return
			}

			ctx := WithActorID(r.Context(), actorID)
			if logg != nil {
				ctx = logg.WithField(ctx, "actor_id", actorID)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func ActorIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxActorID).(string); ok {
		return v
	}
	return ""
}

// WithActorID injects the actor identifier into the context.
func WithActorID(ctx context.Context, actorID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxActorID, actorID)
}
