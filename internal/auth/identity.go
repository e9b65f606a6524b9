package auth

import (
	"context"

	"github.com/khrees2412/jobsphere/pkg/models"
)

// Identity is the authenticated caller extracted from a verified token
type Identity struct {
	UserID int64
	Email  string
	Role   models.Role
}

// IsAdmin reports whether the caller holds the admin role
func (i Identity) IsAdmin() bool {
	switch i.Role {
	case models.RoleAdmin:
		return true
	case models.RoleUser:
		return false
	}
	return false
}

// CanManage reports whether the caller may modify a record owned by ownerID
func (i Identity) CanManage(ownerID int64) bool {
	switch i.Role {
	case models.RoleAdmin:
		return true
	case models.RoleUser:
		return i.UserID == ownerID
	}
	return false
}

type identityKey struct{}

// WithIdentity stores the caller in ctx
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// FromContext returns the caller stored by WithIdentity
func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok
}
