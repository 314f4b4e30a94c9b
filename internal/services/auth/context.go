package auth

import (
	"context"

	"watchlist/proj/internal/domain/models"
)

type ctxKey string

const principalCtxKey ctxKey = "principal"

// Principal is the resolved caller of a request.
type Principal struct {
	User    *models.User
	Session *models.Session
}

func (p *Principal) Identity() models.Identity {
	if p == nil || p.User == nil {
		return models.Identity{}
	}
	identity := models.Identity{UserID: p.User.ID}
	if p.Session != nil {
		identity.SessionID = p.Session.ID
	}
	return identity
}

func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalCtxKey, p)
}

// PrincipalFrom returns nil for anonymous requests.
func PrincipalFrom(ctx context.Context) *Principal {
	p, _ := ctx.Value(principalCtxKey).(*Principal)
	return p
}

// CurrentIdentity is the gate of every protected operation.
func CurrentIdentity(ctx context.Context) (models.Identity, error) {
	identity := PrincipalFrom(ctx).Identity()
	if identity.IsAnonymous() {
		return identity, ErrUnauthenticated
	}
	return identity, nil
}
