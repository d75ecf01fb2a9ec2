package rest

import (
	"context"
	"slices"

	"github.com/dmitrijs2005/jwtkeeper/internal/server/auth"
)

type ctxKey string

const identityKey ctxKey = "identity"

// Authentication methods recorded on an Identity.
const (
	MethodBearer = "bearer"
	MethodBasic  = "basic"
)

// Identity is the authenticated caller attached to a request by the gate.
// Principal is set only for the basic method.
type Identity struct {
	Subject     string
	Authorities []string
	Method      string
	Principal   *auth.Principal
}

// HasAuthority reports whether the identity was granted authority.
func (i *Identity) HasAuthority(authority string) bool {
	return slices.Contains(i.Authorities, authority)
}

func withIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFromContext returns the identity attached by the gate, if any.
func IdentityFromContext(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(identityKey).(*Identity)
	return id, ok && id != nil
}
