package domain

import (
	"context"
	"strings"
)

// Capabilities are the per-request authorization hooks a resource implements.
type Capabilities interface {
	CanCreate(ctx context.Context) bool
	CanUpdate(ctx context.Context) bool
	CanDelete(ctx context.Context) bool
}

// Resource is a persisted entity exposed through the CRUD endpoints.
type Resource interface {
	Capabilities
	// ResourceID returns the identifier, or "" before the first persist.
	ResourceID() string
}

// ListPresenter is implemented by resources that serialize differently in
// collection responses than in detail responses.
type ListPresenter interface {
	ListView() any
}

// Actor is the caller a request is evaluated for.
type Actor struct {
	UserID int64
	Role   string
}

// Anonymous reports whether no authenticated user is attached.
func (a Actor) Anonymous() bool { return a.UserID == 0 && a.Role == "" }

// HasRole reports whether the actor holds one of roles (case-insensitive).
func (a Actor) HasRole(roles ...string) bool {
	role := strings.ToLower(strings.TrimSpace(a.Role))
	if role == "" {
		return false
	}
	for _, r := range roles {
		if strings.ToLower(r) == role {
			return true
		}
	}
	return false
}

type actorKey struct{}

// WithActor attaches actor to ctx.
func WithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// ActorFrom returns the actor attached to ctx, or the anonymous actor.
func ActorFrom(ctx context.Context) Actor {
	if ctx == nil {
		return Actor{}
	}
	if a, ok := ctx.Value(actorKey{}).(Actor); ok {
		return a
	}
	return Actor{}
}
