package middleware

import (
	"context"
	"net/http"

	"github.com/davberk/microblog/internal/authz"
)

type actorKey struct{}

// Resolver maps a session token to an actor. An unknown token resolves
// to the anonymous actor.
type Resolver interface {
	Resolve(ctx context.Context, token string) (authz.Actor, error)
}

// ActorFrom returns the actor for the request, or the anonymous actor
// when no session was resolved.
func ActorFrom(ctx context.Context) authz.Actor {
	actor, _ := ctx.Value(actorKey{}).(authz.Actor)
	return actor
}

// WithActor resolves the session cookie (when present) and injects the
// resulting actor into the request context. Requests without a valid
// session proceed as anonymous; this middleware never rejects.
func WithActor(cookieName string, sessions Resolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor := authz.Actor{}
			if cookie, err := r.Cookie(cookieName); err == nil {
				if resolved, err := sessions.Resolve(r.Context(), cookie.Value); err == nil {
					actor = resolved
				}
			}
			ctx := context.WithValue(r.Context(), actorKey{}, actor)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAuth rejects anonymous requests with 401. It must run after
// WithActor.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ActorFrom(r.Context()).Anonymous() {
			http.Error(w, `{"error":"not authenticated"}`, http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}
